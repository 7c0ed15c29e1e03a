package main

import (
	"fmt"

	"github.com/plumbvcs/plumb/pkg/object"
	"github.com/plumbvcs/plumb/pkg/tree"
	"github.com/spf13/cobra"
)

func newLsTreeCmd(env *cmdEnv) *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "ls-tree <tree>",
		Short: "List the entries of a tree object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := env.openStore()
			if err != nil {
				return err
			}
			id, err := env.resolveID(s, args[0])
			if err != nil {
				return err
			}

			// Accept a commit and use its tree, like the file commands do.
			if typ, _, err := s.Get(id); err == nil && typ == object.TypeCommit {
				c, err := object.GetCommit(s, id)
				if err != nil {
					return err
				}
				id = c.TreeID
			}

			out := cmd.OutOrStdout()
			if recursive {
				files, err := tree.Flatten(s, id)
				if err != nil {
					return err
				}
				for _, f := range files {
					fmt.Fprintf(out, "%s blob %s\t%s\n", f.Mode, f.ID, f.Path)
				}
				return nil
			}

			t, err := tree.Lookup(s, id)
			if err != nil {
				return err
			}
			for _, e := range t.Entries {
				kind := "blob"
				if e.IsDir() {
					kind = "tree"
				}
				fmt.Fprintf(out, "%s %s %s\t%s\n", e.Mode, kind, e.ID, e.Name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "recurse into subtrees")
	return cmd
}
