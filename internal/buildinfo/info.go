// Package buildinfo holds the version identity release builds stamp into
// the ledgerport binary via ldflags.
package buildinfo

var (
	// Version is the release version, stamped at build time.
	Version = "dev"
	// Commit is the source revision the binary was built from.
	Commit = "none"
	// Date is the build timestamp.
	Date = "unknown"
)
