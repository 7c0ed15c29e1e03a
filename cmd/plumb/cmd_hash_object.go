package main

import (
	"fmt"
	"io"
	"os"

	"github.com/plumbvcs/plumb/pkg/object"
	"github.com/spf13/cobra"
)

func newHashObjectCmd(env *cmdEnv) *cobra.Command {
	var typeName string
	var write bool

	cmd := &cobra.Command{
		Use:   "hash-object [file]",
		Short: "Compute an object id, optionally writing the object",
		Long:  "Reads the file (or stdin when no file is given), prints the content id it would get, and with -w stores it.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if len(args) == 1 {
				data, err = os.ReadFile(args[0])
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return err
			}

			typ := object.Type(typeName)
			switch typ {
			case object.TypeBlob, object.TypeTree, object.TypeCommit, object.TypeTag:
			default:
				return fmt.Errorf("unknown object type %q: %w", typeName, object.ErrInvalidArgument)
			}

			if !write {
				fmt.Fprintln(cmd.OutOrStdout(), object.HashObject(typ, data))
				return nil
			}

			s, err := env.openStore()
			if err != nil {
				return err
			}
			id, err := s.Put(typ, data)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().StringVarP(&typeName, "type", "t", "blob", "object type to hash as")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the object into the store")
	return cmd
}
