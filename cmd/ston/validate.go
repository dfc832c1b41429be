package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file...>",
		Short: "Parse, validate, and resolve one or more STON files without printing output",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expandArgs(args)
			if err != nil {
				return err
			}
			failed := false
			for _, f := range files {
				text, err := readInput(f)
				if err != nil {
					return fmt.Errorf("%s: %w", f, err)
				}
				doc, err := parseDocument(opts, text)
				if err != nil {
					fmt.Printf("%s: FAIL: %v\n", f, err)
					failed = true
					continue
				}
				fmt.Printf("%s: OK\n", f)
				for _, d := range doc.Diagnostics {
					fmt.Printf("%s: diagnostic: %s\n", f, d)
				}
			}
			if failed {
				return fmt.Errorf("one or more files failed validation")
			}
			return nil
		},
	}
	return cmd
}
