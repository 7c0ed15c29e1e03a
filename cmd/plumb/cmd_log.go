package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/plumbvcs/plumb/pkg/history"
	"github.com/spf13/cobra"
)

func newLogCmd(env *cmdEnv) *cobra.Command {
	var oneline bool
	var limit int

	cmd := &cobra.Command{
		Use:   "log [commit]",
		Short: "Show first-parent commit history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := env.openStore()
			if err != nil {
				return err
			}

			start := "HEAD"
			if len(args) == 1 {
				start = args[0]
			}
			startID, err := env.resolveID(s, start)
			if err != nil {
				return fmt.Errorf("cannot resolve %q: %w", start, err)
			}

			commits, err := history.Log(s, startID, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, c := range commits {
				if oneline {
					subject, _, _ := strings.Cut(c.Message(), "\n")
					fmt.Fprintf(out, "%s %s\n", c.ID().String()[:8], subject)
					continue
				}
				fmt.Fprintf(out, "commit %s\n", c.ID())
				author := c.Author()
				fmt.Fprintf(out, "Author: %s <%s>\n", author.Name, author.Email)
				fmt.Fprintf(out, "Date:   %s\n", time.Unix(c.When(), 0).UTC().Format("2006-01-02 15:04:05"))
				fmt.Fprintln(out)
				for _, line := range strings.Split(strings.TrimRight(c.Message(), "\n"), "\n") {
					fmt.Fprintf(out, "    %s\n", line)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&oneline, "oneline", false, "one line per commit")
	cmd.Flags().IntVarP(&limit, "max-count", "n", 0, "limit the number of commits (0 = all)")
	return cmd
}
