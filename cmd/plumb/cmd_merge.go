package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/plumbvcs/plumb/pkg/history"
	"github.com/plumbvcs/plumb/pkg/merge"
	"github.com/plumbvcs/plumb/pkg/object"
	"github.com/spf13/cobra"
)

func newMergeCmd(env *cmdEnv) *cobra.Command {
	var automerge string
	var ffOnly bool
	var noFF bool
	var message string

	cmd := &cobra.Command{
		Use:   "merge <commit-or-ref>",
		Short: "Merge another line of history into the current branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if ffOnly && noFF {
				return fmt.Errorf("--ff-only and --no-ff are mutually exclusive: %w", object.ErrInvalidArgument)
			}

			s, err := env.openStore()
			if err != nil {
				return err
			}
			refs := env.refs()

			headRef := refs.Target()
			if headRef == "" {
				return fmt.Errorf("HEAD is not on a branch: %w", object.ErrInvalidArgument)
			}
			ours, err := refs.ResolveRef(headRef)
			if err != nil {
				return fmt.Errorf("cannot resolve %q: %w", headRef, err)
			}

			head, err := resolveMergeHead(env, refs, s, args[0])
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
			if ffOnly {
				opts.FastForward = merge.FastForwardOnly
			}
			if noFF {
				opts.FastForward = merge.NoFastForward
			}

			g := history.NewGraph(s)
			res, err := merge.Merge(s, g, ours, []merge.MergeHead{head}, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch res.Kind {
			case merge.ResultUpToDate:
				fmt.Fprintln(out, "Already up to date.")
				return nil

			case merge.ResultFastForward:
				if err := refs.UpdateRef(headRef, res.FastForwardID, &ours); err != nil {
					return err
				}
				fmt.Fprintf(out, "Fast-forward to %s\n", res.FastForwardID)
				return nil

			case merge.ResultMerged:
				if res.Index.HasConflicts() {
					for _, p := range res.Index.ConflictPaths() {
						fmt.Fprintf(out, "CONFLICT: %s\n", p)
					}
					return fmt.Errorf("automatic merge failed: %w", object.ErrConflict)
				}

				treeID, err := res.Index.WriteTree(s)
				if err != nil {
					return err
				}
				log.Debug("merged tree written", "tree", treeID, "base", res.BaseID)

				sig, err := authorSignature(cfg)
				if err != nil {
					return err
				}
				if message == "" {
					message = merge.Message([]merge.MergeHead{head})
				}
				commitID, err := history.Create(s, refs, history.CreateOptions{
					TreeID:      treeID,
					Parents:     []object.ID{ours, head.ID},
					Author:      sig,
					Committer:   sig,
					Message:     message,
					UpdateRef:   headRef,
					ExpectedOld: &ours,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Merge made: %s\n", commitID)
				return nil

			default:
				return fmt.Errorf("unexpected merge result %v", res.Kind)
			}
		},
	}
	cmd.Flags().StringVar(&automerge, "automerge", "", "automerge mode: normal, none, ours, theirs")
	cmd.Flags().BoolVar(&ffOnly, "ff-only", false, "refuse to create a merge commit")
	cmd.Flags().BoolVar(&noFF, "no-ff", false, "always create a merge commit")
	cmd.Flags().StringVarP(&message, "message", "m", "", "merge commit message")
	return cmd
}

// resolveMergeHead resolves the argument as a ref first so the merge
// message can name the branch, then as an id or prefix.
func resolveMergeHead(env *cmdEnv, refs *refStore, s object.Store, arg string) (merge.MergeHead, error) {
	ref := arg
	if !strings.HasPrefix(ref, "refs/") {
		ref = "refs/heads/" + ref
	}
	if id, err := refs.ResolveRef(ref); err == nil {
		return merge.HeadFromRef(ref, id), nil
	}

	id, err := env.resolveID(s, arg)
	if err != nil {
		return merge.MergeHead{}, fmt.Errorf("cannot resolve %q: %w", arg, err)
	}
	return merge.HeadFromID(id), nil
}
