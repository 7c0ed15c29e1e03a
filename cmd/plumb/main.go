package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func main() {
	var dir string
	var verbose bool

	root := &cobra.Command{
		Use:   "plumb",
		Short: "Content-addressed object store and merge plumbing",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetOutput(cmd.ErrOrStderr())
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
	}
	root.PersistentFlags().StringVar(&dir, "dir", defaultDir(), "repository directory")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	env := &cmdEnv{dir: &dir}

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(env))
	root.AddCommand(newHashObjectCmd(env))
	root.AddCommand(newCatFileCmd(env))
	root.AddCommand(newLsTreeCmd(env))
	root.AddCommand(newMktreeCmd(env))
	root.AddCommand(newCommitTreeCmd(env))
	root.AddCommand(newLogCmd(env))
	root.AddCommand(newMergeBaseCmd(env))
	root.AddCommand(newMergeTreeCmd(env))
	root.AddCommand(newMergeCmd(env))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "plumb 0.1.0-dev")
		},
	}
}

func defaultDir() string {
	if d := os.Getenv("PLUMB_DIR"); d != "" {
		return d
	}
	return ".plumb"
}
