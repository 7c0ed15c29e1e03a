package main

import (
	"fmt"

	"github.com/plumbvcs/plumb/pkg/merge"
	"github.com/plumbvcs/plumb/pkg/object"
	"github.com/spf13/cobra"
)

func newMergeTreeCmd(env *cmdEnv) *cobra.Command {
	var automerge string
	var noRenames bool

	cmd := &cobra.Command{
		Use:   "merge-tree <base-tree> <our-tree> <their-tree>",
		Short: "Three-way merge of trees without touching any ref",
		Long: "Runs the tree merge engine and prints the staged result. " +
			"When the merge is clean, the last line is the id of the written merged tree.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := env.openStore()
			if err != nil {
				return err
			}

			cfg, err := env.config()
			if err != nil {
				return err
			}
			opts, err := cfg.mergeOptions()
			if err != nil {
				return err
			}
			if err := applyAutomergeFlag(&opts, automerge); err != nil {
				return err
			}
			if noRenames {
				opts.DetectRenames = false
			}

			var base object.ID
			if args[0] != "none" {
				if base, err = env.resolveID(s, args[0]); err != nil {
					return fmt.Errorf("base %q: %w", args[0], err)
				}
			}
			ours, err := env.resolveID(s, args[1])
			if err != nil {
				return fmt.Errorf("ours %q: %w", args[1], err)
			}
			theirs, err := env.resolveID(s, args[2])
			if err != nil {
				return fmt.Errorf("theirs %q: %w", args[2], err)
			}

			ix, err := merge.Trees(s, base, ours, theirs, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, e := range ix.Entries {
				fmt.Fprintf(out, "%s %s %d\t%s\n", e.Mode, e.ID, e.Stage, e.Path)
			}
			if ix.HasConflicts() {
				return fmt.Errorf("merge conflicts in %v: %w", ix.ConflictPaths(), object.ErrConflict)
			}

			root, err := ix.WriteTree(s)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, root)
			return nil
		},
	}
	cmd.Flags().StringVar(&automerge, "automerge", "", "automerge mode: normal, none, ours, theirs")
	cmd.Flags().BoolVar(&noRenames, "no-renames", false, "disable rename detection")
	return cmd
}

// applyAutomergeFlag overrides the configured automerge mode with the
// command-line flag when it was given.
func applyAutomergeFlag(opts *merge.Options, flag string) error {
	switch flag {
	case "":
	case "normal":
		opts.Automerge = merge.AutomergeNormal
	case "none":
		opts.Automerge = merge.AutomergeNone
	case "ours":
		opts.Automerge = merge.AutomergeFavorOurs
	case "theirs":
		opts.Automerge = merge.AutomergeFavorTheirs
	default:
		return fmt.Errorf("unknown automerge mode %q: %w", flag, object.ErrInvalidArgument)
	}
	return nil
}
