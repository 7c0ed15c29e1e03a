package main

import (
	"fmt"

	"github.com/plumbvcs/plumb/pkg/history"
	"github.com/plumbvcs/plumb/pkg/object"
	"github.com/spf13/cobra"
)

func newMergeBaseCmd(env *cmdEnv) *cobra.Command {
	var isAncestor bool

	cmd := &cobra.Command{
		Use:   "merge-base <commit> <commit>...",
		Short: "Find the best common ancestor of commits",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := env.openStore()
			if err != nil {
				return err
			}

			ids := make([]object.ID, len(args))
			for i, a := range args {
				id, err := env.resolveID(s, a)
				if err != nil {
					return fmt.Errorf("cannot resolve %q: %w", a, err)
				}
				ids[i] = id
			}

			g := history.NewGraph(s)

			if isAncestor {
				if len(ids) != 2 {
					return fmt.Errorf("--is-ancestor takes exactly two commits: %w", object.ErrInvalidArgument)
				}
				ok, err := g.IsAncestor(ids[0], ids[1])
				if err != nil {
					return err
				}
				if !ok {
					// Mirror the exit-status convention of the git tool.
					return fmt.Errorf("%s is not an ancestor of %s", args[0], args[1])
				}
				return nil
			}

			base, err := g.MergeBaseMany(ids)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), base)
			return nil
		},
	}
	cmd.Flags().BoolVar(&isAncestor, "is-ancestor", false, "test whether the first commit is an ancestor of the second")
	return cmd
}
