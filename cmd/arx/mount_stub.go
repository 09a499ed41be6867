//go:build !fuse

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mount <archive.arx> <mountpoint>",
		Short: "mount an archive read-only via FUSE (requires building with -tags fuse)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("mount support requires building with -tags fuse")
		},
	}
}
