package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/plumbvcs/plumb/pkg/object"
	"github.com/plumbvcs/plumb/pkg/tree"
	"github.com/spf13/cobra"
)

func newMktreeCmd(env *cmdEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "mktree",
		Short: "Build tree objects from a file listing on stdin",
		Long: "Reads lines of the form \"<mode> <blob-id>\\t<path>\" from stdin, " +
			"writes the nested tree objects, and prints the root tree id. " +
			"Paths may contain slashes; intermediate trees are created.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := env.openStore()
			if err != nil {
				return err
			}

			var files []tree.FileEntry
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				line := scanner.Text()
				if strings.TrimSpace(line) == "" {
					continue
				}
				f, err := parseMktreeLine(line)
				if err != nil {
					return err
				}
				files = append(files, f)
			}
			if err := scanner.Err(); err != nil {
				return err
			}

			root, err := tree.Build(s, files)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), root)
			return nil
		},
	}
}

func parseMktreeLine(line string) (tree.FileEntry, error) {
	head, path, ok := strings.Cut(line, "\t")
	if !ok {
		return tree.FileEntry{}, fmt.Errorf("mktree: missing tab in %q: %w", line, object.ErrInvalidArgument)
	}
	mode, hex, ok := strings.Cut(strings.TrimSpace(head), " ")
	if !ok {
		return tree.FileEntry{}, fmt.Errorf("mktree: want \"<mode> <id>\" in %q: %w", line, object.ErrInvalidArgument)
	}
	id, err := object.ParseID(strings.TrimSpace(hex))
	if err != nil {
		return tree.FileEntry{}, fmt.Errorf("mktree: %q: %w", line, err)
	}
	return tree.FileEntry{Path: path, Mode: mode, ID: id}, nil
}
