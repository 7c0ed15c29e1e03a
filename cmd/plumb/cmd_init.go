package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newInitCmd(env *cmdEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create an empty repository directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := env.root()
			for _, sub := range []string{"objects", "refs/heads"} {
				if err := os.MkdirAll(filepath.Join(root, filepath.FromSlash(sub)), 0o755); err != nil {
					return fmt.Errorf("init %q: %w", root, err)
				}
			}

			headPath := filepath.Join(root, "HEAD")
			if _, err := os.Stat(headPath); os.IsNotExist(err) {
				if err := os.WriteFile(headPath, []byte("ref: refs/heads/main\n"), 0o644); err != nil {
					return fmt.Errorf("init %q: %w", root, err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Initialized empty repository in %s\n", root)
			return nil
		},
	}
}
