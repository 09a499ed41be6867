package main

import (
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/go-arx/arx"
)

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <archive.arx>",
		Short: "print summary information about an archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := arx.Open(args[0])
			if err != nil {
				return err
			}
			defer a.Close()

			var files, dirs, links int
			fs.WalkDir(a, ".", func(p string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				info, ierr := d.Info()
				if ierr != nil {
					return nil
				}
				switch {
				case d.IsDir():
					dirs++
				case info.Mode()&fs.ModeSymlink != 0:
					links++
				default:
					files++
				}
				return nil
			})

			fmt.Printf("%s: %d directories, %d files, %d links\n", args[0], dirs, files, links)
			return nil
		},
	}
	return cmd
}
