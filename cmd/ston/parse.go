package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oxhq/ston"
	"github.com/oxhq/ston/internal/cache"
)

func newParseCommand(opts *rootOptions) *cobra.Command {
	var useCache bool
	cmd := &cobra.Command{
		Use:   "parse <file...>",
		Short: "Parse and resolve one or more STON files, reporting errors",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expandArgs(args)
			if err != nil {
				return err
			}
			var c cache.Cache
			if useCache {
				c, err = cache.Open(opts.cachePath)
				if err != nil {
					return err
				}
				defer c.Close()
			}
			for _, f := range files {
				text, err := readInput(f)
				if err != nil {
					return fmt.Errorf("%s: %w", f, err)
				}
				if c != nil {
					if _, hit, err := c.Lookup(text); err == nil && hit {
						fmt.Printf("%s: ok (cached)\n", f)
						continue
					}
				}
				doc, err := parseDocument(opts, text)
				if err != nil {
					return fmt.Errorf("%s: %w", f, err)
				}
				if c != nil {
					canon, err := ston.ToCanonicalFormDocument(doc)
					if err != nil {
						return fmt.Errorf("%s: %w", f, err)
					}
					_ = c.Store(text, cache.Summary{
						CanonicalForm:  canon,
						GlobalCount:    doc.GlobalCount(),
						ConstructCount: doc.ConstructionCount(),
						Diagnostics:    doc.Diagnostics,
					})
				}
				fmt.Printf("%s: ok (%d global identifiers, %d constructions)\n", f, doc.GlobalCount(), doc.ConstructionCount())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&useCache, "use-cache", false, "skip reparsing files already present in the result cache")
	return cmd
}
