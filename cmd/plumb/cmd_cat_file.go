package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCatFileCmd(env *cmdEnv) *cobra.Command {
	var showType bool
	var showSize bool

	cmd := &cobra.Command{
		Use:   "cat-file <object>",
		Short: "Show an object's type, size, or content",
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

			typ, body, err := s.Get(id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case showType:
				fmt.Fprintln(out, typ)
			case showSize:
				fmt.Fprintln(out, len(body))
			default:
				_, err = out.Write(body)
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&showType, "type", "t", false, "print the object type")
	cmd.Flags().BoolVarP(&showSize, "size", "s", false, "print the object size in bytes")
	return cmd
}
