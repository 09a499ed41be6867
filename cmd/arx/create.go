package main

import (
	"fmt"
	"os"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"

	"github.com/go-arx/arx"
	"github.com/go-arx/arx/fsinput"
)

// pbProgress adapts a cheggaaa/pb bar to arx.Progress.
type pbProgress struct {
	bar *pb.ProgressBar
}

func newPbProgress(total int) *pbProgress {
	bar := pb.New(total)
	bar.SetTemplateString(`{{counters . }} clusters {{bar . }} {{percent . }}`)
	bar.Start()
	return &pbProgress{bar: bar}
}

func (p *pbProgress) NewCluster(idx int, compressed bool)    {}
func (p *pbProgress) HandleCluster(idx int, compressed bool) { p.bar.Increment() }
func (p *pbProgress) finish()                                { p.bar.Finish() }

func newCreateCmd() *cobra.Command {
	var (
		concat   string
		compress string
		level    int
		force    bool
		progress bool
		follow   bool
	)

	cmd := &cobra.Command{
		Use:   "create <output.arx> <input-dir>...",
		Short: "build an archive from one or more filesystem trees",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := args[0]
			inputs := args[1:]

			for _, in := range inputs {
				if _, err := os.Stat(in); err != nil {
					return fmt.Errorf("Input %s path doesn't exist or cannot be accessed", in)
				}
			}

			mode, err := parseConcatMode(concat)
			if err != nil {
				return err
			}
			codec, err := parseCodec(compress)
			if err != nil {
				return err
			}

			var prog *pbProgress
			var progIface arx.Progress = arx.NoopProgress
			if progress {
				prog = newPbProgress(0)
				progIface = prog
			}

			c, err := arx.NewCreator(output, arx.CreatorOptions{
				ConcatMode: mode,
				Compress:   arx.CompressionConfig{Codec: codec, Level: level},
				Force:      force,
				Progress:   progIface,
			})
			if err != nil {
				return translateCreatorError(err, output)
			}

			for _, in := range inputs {
				tree, err := fsinput.NewTree(in, follow)
				if err != nil {
					return fmt.Errorf("Input %s path doesn't exist or cannot be accessed", in)
				}
				if err := c.Add(tree); err != nil {
					return err
				}
			}

			if err := c.Finalize(); err != nil {
				return err
			}
			if prog != nil {
				prog.finish()
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&concat, "concat", "one-file", "concat mode: one-file|two-files|no-concat")
	cmd.Flags().StringVar(&compress, "compress", "zstd", "compression codec: zstd|xz|gzip|none")
	cmd.Flags().IntVar(&level, "level", 0, "codec level, 0 for default")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing output file")
	cmd.Flags().BoolVar(&progress, "progress", false, "show a progress bar")
	cmd.Flags().BoolVar(&follow, "follow-symlink", false, "resolve symlinks to their targets instead of recording them as links")

	return cmd
}

func parseConcatMode(s string) (arx.ConcatMode, error) {
	switch s {
	case "one-file", "":
		return arx.OneFile, nil
	case "two-files":
		return arx.TwoFiles, nil
	case "no-concat":
		return arx.NoConcat, nil
	default:
		return 0, fmt.Errorf("unknown concat mode %q", s)
	}
}

func parseCodec(s string) (arx.CodecID, error) {
	switch s {
	case "zstd", "":
		return arx.CodecZstd, nil
	case "xz":
		return arx.CodecXz, nil
	case "gzip":
		return arx.CodecGzip, nil
	case "none":
		return arx.CodecNone, nil
	default:
		return 0, fmt.Errorf("unknown compression codec %q", s)
	}
}

// translateCreatorError maps arx's sentinel errors to the exact diagnostic
// strings of the CLI's error paths.
func translateCreatorError(err error, output string) error {
	switch {
	case isErr(err, arx.ErrOutputParentMissing):
		return fmt.Errorf("Directory %s doesn't exist", parentOf(output))
	case isErr(err, arx.ErrOutputExists):
		return fmt.Errorf("File %s already exists. Use option --force to overwrite it.", output)
	default:
		return err
	}
}
