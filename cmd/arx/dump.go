package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-arx/arx"
)

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <archive.arx> <path>",
		Short: "write a single file's content to stdout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := arx.Open(args[0])
			if err != nil {
				return err
			}
			defer a.Close()

			f, err := a.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			_, err = io.Copy(os.Stdout, f)
			return err
		},
	}
	return cmd
}
