package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oxhq/ston"
)

func newCanonCommand(opts *rootOptions) *cobra.Command {
	var plainNumbers bool
	cmd := &cobra.Command{
		Use:   "canon <file...>",
		Short: "Print the canonical textual form of one or more STON files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expandArgs(args)
			if err != nil {
				return err
			}
			for _, f := range files {
				text, err := readInput(f)
				if err != nil {
					return fmt.Errorf("%s: %w", f, err)
				}
				e, err := ston.ParseEntity(text)
				if err != nil {
					return fmt.Errorf("%s: %w", f, err)
				}
				var out string
				if plainNumbers {
					out, err = ston.ToPlainForm(e)
				} else {
					out, err = ston.ToCanonicalForm(e)
				}
				if err != nil {
					return fmt.Errorf("%s: %w", f, err)
				}
				fmt.Println(out)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&plainNumbers, "plain-numbers", false, "expand numbers into plain positional notation (output is no longer canonical)")
	return cmd
}
