package main

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/oxhq/ston"
)

func newDiffCommand(opts *rootOptions) *cobra.Command {
	var context int
	cmd := &cobra.Command{
		Use:   "diff <file>",
		Short: "Show a unified diff between a file's text and its canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expandArgs(args)
			if err != nil {
				return err
			}
			if len(files) != 1 {
				return fmt.Errorf("diff takes exactly one file")
			}
			f := files[0]
			text, err := readInput(f)
			if err != nil {
				return fmt.Errorf("%s: %w", f, err)
			}
			e, err := ston.ParseEntity(text)
			if err != nil {
				return fmt.Errorf("%s: %w", f, err)
			}
			canon, err := ston.ToCanonicalForm(e)
			if err != nil {
				return fmt.Errorf("%s: %w", f, err)
			}
			ud := difflib.UnifiedDiff{
				A:        difflib.SplitLines(text),
				B:        difflib.SplitLines(canon),
				FromFile: f,
				ToFile:   f + " (canonical)",
				Context:  context,
			}
			out, err := difflib.GetUnifiedDiffString(ud)
			if err != nil {
				return fmt.Errorf("%s: %w", f, err)
			}
			if out == "" {
				fmt.Printf("%s: already canonical\n", f)
				return nil
			}
			fmt.Print(out)
			return nil
		},
	}
	cmd.Flags().IntVarP(&context, "context", "C", 3, "lines of context for the diff")
	return cmd
}
