package main

import (
	"io"
	"os"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/oxhq/ston"
)

// expandArgs glob-expands each argument with doublestar (so
// `ston canon '**/*.ston'` behaves the same whether or not the caller's
// shell already expanded it), falling back to the literal argument when
// it matches no glob pattern (e.g. a plain filename or "-" for stdin).
func expandArgs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		if arg == "-" {
			files = append(files, arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			files = append(files, arg)
			continue
		}
		files = append(files, matches...)
	}
	return files, nil
}

func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

func extensionSets(opts *rootOptions) (map[string]bool, map[string]bool) {
	var types, members map[string]bool
	if len(opts.extTypes) > 0 {
		types = make(map[string]bool, len(opts.extTypes))
		for _, t := range opts.extTypes {
			types[t] = true
		}
	}
	if len(opts.extMembers) > 0 {
		members = make(map[string]bool, len(opts.extMembers))
		for _, m := range opts.extMembers {
			members[m] = true
		}
	}
	return types, members
}

func parseDocument(opts *rootOptions, text string) (*ston.Document, error) {
	extTypes, extMembers := extensionSets(opts)
	if opts.lenient {
		return ston.ParseDocumentLenient(text, extTypes, extMembers, nil, nil)
	}
	return ston.ParseDocument(text, extTypes, extMembers, nil, nil)
}
