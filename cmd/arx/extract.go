package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-arx/arx"
)

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <archive.arx> <dest-dir> [root-path]",
		Short: "extract an archive, or a subtree of it, to dest-dir",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := arx.Open(args[0])
			if err != nil {
				return err
			}
			defer a.Close()

			dest := args[1]
			root := "."
			if len(args) > 2 {
				root = args[2]
			}

			info, err := fs.Stat(a, root)
			if err != nil {
				return err
			}
			if !info.IsDir() {
				return fmt.Errorf("extraction root %s is not a directory", root)
			}

			if err := os.MkdirAll(dest, 0o755); err != nil {
				return err
			}
			return extractDir(a, root, dest)
		},
	}
	return cmd
}

func extractDir(a *arx.Archive, srcPath, destPath string) error {
	entries, err := fs.ReadDir(a, srcPath)
	if err != nil {
		return err
	}
	for _, e := range entries {
		childSrc := filepath.ToSlash(filepath.Join(srcPath, e.Name()))
		childDest := filepath.Join(destPath, e.Name())

		info, err := e.Info()
		if err != nil {
			return err
		}

		switch {
		case e.IsDir():
			if err := os.MkdirAll(childDest, info.Mode().Perm()); err != nil {
				return err
			}
			if err := extractDir(a, childSrc, childDest); err != nil {
				return err
			}
		case info.Mode()&fs.ModeSymlink != 0:
			target, err := a.Readlink(childSrc)
			if err != nil {
				return err
			}
			if err := os.Symlink(string(target), childDest); err != nil {
				return err
			}
			continue
		default:
			if err := extractFile(a, childSrc, childDest, info); err != nil {
				return err
			}
		}

		applyAttrs(childDest, info)
	}
	return nil
}

func extractFile(a *arx.Archive, srcPath, destPath string, info fs.FileInfo) error {
	src, err := a.Open(srcPath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

func applyAttrs(path string, info fs.FileInfo) {
	os.Chmod(path, info.Mode().Perm())
	os.Chtimes(path, time.Now(), info.ModTime())
	// Preserving uid/gid requires privileges most test environments don't
	// have; best-effort only.
	if sys, ok := info.Sys().(arx.FileAttrs); ok {
		os.Lchown(path, int(sys.Uid()), int(sys.Gid()))
	}
}
