// Command ston is the CLI driver for the STON library (SPEC_FULL.md's
// domain stack): parse, canonicalize, validate, and diff STON text, and
// inspect the result cache — a cobra command tree in the teacher's
// demo/cmd dispatcher shape, one verb per child command.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	lenient    bool
	extTypes   []string
	extMembers []string
	cachePath  string
}

func main() {
	// .ston.env is optional; a missing file is not an error (matches the
	// teacher's own godotenv.Load() usage, which ignores ErrNotExist).
	_ = godotenv.Load(".ston.env")

	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "ston",
		Short:         "Parse, canonicalize, validate, and diff STON documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&opts.lenient, "lenient", false, "demote duplicate-member/duplicate-global conditions to diagnostics instead of aborting")
	root.PersistentFlags().StringSliceVar(&opts.extTypes, "ext-type", nil, "accepted extension type name (repeatable)")
	root.PersistentFlags().StringSliceVar(&opts.extMembers, "ext-member", nil, "accepted extension member name (repeatable)")
	root.PersistentFlags().StringVar(&opts.cachePath, "cache", defaultCachePath(), "result cache path or libsql:// URL")

	root.AddCommand(
		newParseCommand(opts),
		newCanonCommand(opts),
		newValidateCommand(opts),
		newDiffCommand(opts),
		newCacheCommand(opts),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ston: %v\n", err)
		os.Exit(1)
	}
}

func defaultCachePath() string {
	if v := os.Getenv("STON_CACHE_URL"); v != "" {
		return v
	}
	return ".ston-cache.db"
}
