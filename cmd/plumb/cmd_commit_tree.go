package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/plumbvcs/plumb/pkg/history"
	"github.com/plumbvcs/plumb/pkg/object"
	"github.com/spf13/cobra"
)

func newCommitTreeCmd(env *cmdEnv) *cobra.Command {
	var parents []string
	var message string
	var ref string
	var sign bool

	cmd := &cobra.Command{
		Use:   "commit-tree <tree>",
		Short: "Create a commit object from a tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				return fmt.Errorf("commit-tree: message required (-m): %w", object.ErrInvalidArgument)
			}

			s, err := env.openStore()
			if err != nil {
				return err
			}
			treeID, err := env.resolveID(s, args[0])
			if err != nil {
				return err
			}

			var parentIDs []object.ID
			for _, p := range parents {
				id, err := env.resolveID(s, p)
				if err != nil {
					return fmt.Errorf("parent %q: %w", p, err)
				}
				parentIDs = append(parentIDs, id)
			}

			cfg, err := env.config()
			if err != nil {
				return err
			}
			sig, err := authorSignature(cfg)
			if err != nil {
				return err
			}

			opts := history.CreateOptions{
				TreeID:    treeID,
				Parents:   parentIDs,
				Author:    sig,
				Committer: sig,
				Message:   message,
			}

			if sign || cfg.Signing.Key != "" {
				signer, keyPath, err := newSSHCommitSigner(cfg.Signing.Key)
				if err != nil {
					return err
				}
				log.Debug("signing commit", "key", keyPath)
				opts.Signer = signer
			}

			refs := env.refs()
			if ref != "" {
				opts.UpdateRef = ref
				if old, err := refs.ResolveRef(ref); err == nil {
					opts.ExpectedOld = &old
				}
			}

			id, err := history.Create(s, refs, opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&parents, "parent", "p", nil, "parent commit (repeatable; first is the primary lineage)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().StringVar(&ref, "ref", "", "ref to move to the new commit")
	cmd.Flags().BoolVar(&sign, "sign", false, "sign the commit with the configured SSH key")
	return cmd
}

// authorSignature builds a signature from config, with environment
// overrides for scripting.
func authorSignature(cfg *config) (object.Signature, error) {
	name := cfg.User.Name
	if v := os.Getenv("PLUMB_AUTHOR_NAME"); v != "" {
		name = v
	}
	email := cfg.User.Email
	if v := os.Getenv("PLUMB_AUTHOR_EMAIL"); v != "" {
		email = v
	}
	if name == "" || email == "" {
		return object.Signature{}, fmt.Errorf("author identity not configured (set [user] name and email in config.toml): %w", object.ErrInvalidArgument)
	}

	now := time.Now()
	return object.Signature{
		Name:   name,
		Email:  email,
		When:   now.Unix(),
		Offset: now.Format("-0700"),
	}, nil
}
