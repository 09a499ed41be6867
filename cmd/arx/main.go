// Command arx packages filesystem trees into mountable, randomly-accessible
// archives and reads them back (create/list/dump/extract/mount/info).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "arx",
		Short:         "arx archive tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newCreateCmd(),
		newListCmd(),
		newDumpCmd(),
		newExtractCmd(),
		newMountCmd(),
		newInfoCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error : %s\n", err)
		os.Exit(1)
	}
}
