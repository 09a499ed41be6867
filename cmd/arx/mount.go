//go:build fuse

package main

import (
	"os"
	"os/signal"
	"syscall"

	hfuse "github.com/hanwen/go-fuse/v2/fs"
	"github.com/spf13/cobra"

	"github.com/go-arx/arx"
)

func newMountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mount <archive.arx> <mountpoint>",
		Short: "mount an archive read-only via FUSE",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := arx.Open(args[0])
			if err != nil {
				return err
			}
			defer a.Close()

			root := arx.MountRoot(a)
			server, err := hfuse.Mount(args[1], root, &hfuse.Options{})
			if err != nil {
				return err
			}

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sig
				server.Unmount()
			}()

			server.Wait()
			return nil
		},
	}
	return cmd
}
