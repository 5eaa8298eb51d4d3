package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ledgerport-dev/ledgerport/internal/config"
)

func newInitCommand() *cobra.Command {
	var serverURL string
	var budgetID string
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a starter ledgerport.yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, serverURL, budgetID, force)
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "", "budget server URL (required)")
	_ = cmd.MarkFlagRequired("server")
	cmd.Flags().StringVar(&budgetID, "budget", "", "budget identifier (required)")
	_ = cmd.MarkFlagRequired("budget")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")

	return cmd
}

func runInit(cmd *cobra.Command, dir, serverURL, budgetID string, force bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	path := filepath.Join(dir, config.FileName)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists, use --force to overwrite", path)
		}
	}

	if err := config.Save(path, config.Default(serverURL, budgetID)); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	cmd.Printf("Wrote %s\n", path)
	cmd.Println("Add your API token under server.token before the first import.")
	return nil
}
