package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oxhq/ston/internal/cache"
)

func newCacheCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the result cache",
	}
	cmd.AddCommand(newCacheLookupCommand(opts))
	return cmd
}

func newCacheLookupCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <file>",
		Short: "Report whether a file's canonical form is already cached",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			c, err := cache.Open(opts.cachePath)
			if err != nil {
				return err
			}
			defer c.Close()
			summary, hit, err := c.Lookup(text)
			if err != nil {
				return err
			}
			if !hit {
				fmt.Printf("%s: not cached (digest %s)\n", args[0], cache.Digest(text))
				return nil
			}
			fmt.Printf("%s: cached (%d global identifiers, %d constructions)\n", args[0], summary.GlobalCount, summary.ConstructCount)
			return nil
		},
	}
}
