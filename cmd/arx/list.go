package main

import (
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/go-arx/arx"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <archive.arx> [path]",
		Short: "list archive entries under path (default: root)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := arx.Open(args[0])
			if err != nil {
				return err
			}
			defer a.Close()

			path := "."
			if len(args) > 1 {
				path = args[1]
			}
			return fs.WalkDir(a, path, func(p string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				fmt.Println(p)
				return nil
			})
		},
	}
	return cmd
}
