package commands

import (
	"errors"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ledgerport-dev/ledgerport/internal/config"
	"github.com/ledgerport-dev/ledgerport/internal/ledger"
	"github.com/ledgerport-dev/ledgerport/internal/pipeline"
)

func newImportCommand() *cobra.Command {
	var (
		configPath      string
		file            string
		budgetID        string
		password        string
		currency        string
		reportPath      string
		markCleared     bool
		forceDuplicates bool
		dryRun          bool
		verbose         bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a finance export into the budget ledger",
		Long: `Import reads a delimited export file, normalizes its encoding and
fields, deduplicates rows by content, and uploads the resulting postings
to the budget server. Transfers between two known accounts become linked
posting pairs; transfers into unknown accounts degrade to one-sided
entries.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			if file != "" {
				cfg.Import.File = file
			}
			if budgetID != "" {
				cfg.Budget.ID = budgetID
			}
			if password != "" {
				cfg.Budget.Password = password
			}
			if currency != "" {
				cfg.Budget.Currency = currency
			}
			if cmd.Flags().Changed("mark-cleared") {
				cfg.Import.MarkCleared = markCleared
			}
			if cmd.Flags().Changed("force-duplicates") {
				cfg.Import.ForceDuplicates = forceDuplicates
			}
			if cfg.Budget.Currency == "" {
				cfg.Budget.Currency = "EUR"
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			log := newLogger(verbose)
			svc := ledger.New(ledger.Options{
				URL:      cfg.Server.URL,
				Token:    cfg.Server.Token,
				BudgetID: cfg.Budget.ID,
				Password: cfg.Budget.Password,
			})

			_, err = pipeline.Run(cmd.Context(), svc, pipeline.Options{
				File:            cfg.Import.File,
				DateLayout:      cfg.Import.DateLayout,
				ForceDuplicates: cfg.Import.ForceDuplicates,
				MarkCleared:     cfg.Import.MarkCleared,
				DryRun:          dryRun,
				Currency:        cfg.Budget.Currency,
				ReportPath:      reportPath,
				Repairs:         cfg.Import.Repairs,
			}, log)
			return err
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (default ./"+config.FileName+")")
	cmd.Flags().StringVarP(&file, "file", "f", "", "export file to import")
	cmd.Flags().StringVar(&budgetID, "budget", "", "budget identifier")
	cmd.Flags().StringVar(&password, "password", "", "budget passphrase")
	cmd.Flags().StringVar(&currency, "currency", "", "currency code for summary totals")
	cmd.Flags().StringVar(&reportPath, "report", "", "write a CSV audit of skipped and duplicate rows")
	cmd.Flags().BoolVar(&markCleared, "mark-cleared", false, "mark imported postings as cleared")
	cmd.Flags().BoolVar(&forceDuplicates, "force-duplicates", false, "import duplicate rows with suffixed identities")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "reconcile and report without uploading")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	return cmd
}

// loadConfig loads the named config file, or the default one when present.
// With no path and no default file, flag values must carry the run.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	cfg, err := config.Load(config.FileName)
	if errors.Is(err, os.ErrNotExist) {
		return &config.Config{}, nil
	}
	return cfg, err
}

// newLogger builds the CLI logger. Events go to stderr so report output
// stays pipeable.
func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}
