package arx

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// builderState is the Creator's lifecycle.
type builderState uint8

const (
	stateOpen builderState = iota
	stateFinalizing
	stateClosed
)

// CreatorOptions configures a Creator.
type CreatorOptions struct {
	ConcatMode ConcatMode
	Compress   CompressionConfig
	Force      bool
	Progress   Progress
	Cache      CacheProgress
	Log        *logrus.Logger
}

// Creator is the archive builder façade: it wires the tree builder, entry
// store and content pack writer together, accepts entries via Add, and
// produces the manifest at Finalize.
type Creator struct {
	opts       CreatorOptions
	log        *logrus.Entry
	outputPath string

	state builderState

	content *ContentPackWriter
	dirPack *DirectoryPackWriter
	tree    *TreeBuilder

	tmpDirPath     string
	tmpContentPath string
}

// NewCreator validates outputPath and chooses temporary paths next to it
// for the sidecar packs the concat mode needs; Finalize writes them there,
// so that persisting the finalized archive is a same-filesystem rename.
func NewCreator(outputPath string, opts CreatorOptions) (*Creator, error) {
	dir := filepath.Dir(outputPath)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrOutputParentMissing, dir)
	}
	if !opts.Force {
		if _, err := os.Stat(outputPath); err == nil {
			return nil, fmt.Errorf("%w: %s", ErrOutputExists, outputPath)
		}
	}

	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	log := opts.Log.WithField("archive", outputPath)

	dirPack := newDirectoryPackWriter(0)
	content := newContentPackWriter(1, opts.Compress, opts.Progress, opts.Cache)

	c := &Creator{
		opts:       opts,
		log:        log,
		outputPath: outputPath,
		dirPack:    dirPack,
		content:    content,
		tree:       newTreeBuilder(dirPack.EntryStore()),
	}

	if opts.ConcatMode == TwoFiles || opts.ConcatMode == NoConcat {
		c.tmpContentPath = outputPath + ".jbkc.tmp"
	}
	if opts.ConcatMode == NoConcat {
		c.tmpDirPath = outputPath + ".jbkd.tmp"
	}

	return c, nil
}

// Add merges src into the archive's tree under the root; per-entry
// ingestion delegates to the tree builder.
func (c *Creator) Add(src SourceEntry) error {
	if c.state != stateOpen {
		return ErrBuilderClosed
	}
	return c.tree.Add(c.tree.Root(), src, func(s SourceEntry) (uint16, uint32, uint64, error) {
		r, size, err := s.Reader()
		if err != nil {
			return 0, 0, 0, fmt.Errorf("%w: %v", ErrCannotRead, err)
		}
		defer r.Close()
		id, err := c.content.AddContent(r)
		if err != nil {
			return 0, 0, 0, err
		}
		return c.content.packID, id, uint64(size), nil
	})
}

// AddTree walks src depth-first, calling Add for each top-level child
// (convenience wrapper around the tree builder for a SourceDir whose
// children should be added directly under the archive root rather than
// nested one level under src's own name).
func (c *Creator) AddTree(src SourceEntry) error {
	if src.Kind() != SourceDir {
		return c.Add(src)
	}
	children, err := src.Children()
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := c.Add(child); err != nil {
			return err
		}
	}
	return nil
}

// Finalize determines the entry count, registers arx_entries and arx_root,
// finalizes both packs according to concat mode, then writes and persists
// the manifest. On any failure the output file is left absent and
// temporary files are removed.
func (c *Creator) Finalize() (err error) {
	if c.state != stateOpen {
		return ErrBuilderClosed
	}
	c.state = stateFinalizing
	defer func() {
		if err != nil {
			c.cleanupTemp()
			c.state = stateOpen
			return
		}
		c.state = stateClosed
	}()

	rootChildren := c.tree.rootChildCount()

	var contentDesc *ContentPackDescriptor
	var dirDesc *DirectoryPackDescriptor

	switch c.opts.ConcatMode {
	case OneFile:
		contentDesc, err = c.content.Finalize("")
		if err != nil {
			return err
		}
		dirDesc, err = c.dirPack.Finalize("", rootChildren)
		if err != nil {
			return err
		}
	case TwoFiles:
		contentDesc, err = c.content.Finalize(c.tmpContentPath)
		if err != nil {
			return err
		}
		dirDesc, err = c.dirPack.Finalize("", rootChildren)
		if err != nil {
			return err
		}
	case NoConcat:
		contentDesc, err = c.content.Finalize(c.tmpContentPath)
		if err != nil {
			return err
		}
		dirDesc, err = c.dirPack.Finalize(c.tmpDirPath, rootChildren)
		if err != nil {
			return err
		}
	}

	tmpManifest := c.outputPath + ".tmp"
	f, err := os.Create(tmpManifest)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIoFailure, err)
	}

	var dirBytes, contentBytes []byte
	if c.opts.ConcatMode == OneFile || c.opts.ConcatMode == TwoFiles {
		dirBytes = c.dirPack.Bytes()
	}
	if c.opts.ConcatMode == OneFile {
		contentBytes = c.content.Bytes()
	} else {
		contentDesc.Location = filepath.Base(sidecarPath(c.outputPath, ".jbkc"))
	}
	if c.opts.ConcatMode == NoConcat {
		dirDesc.Location = filepath.Base(sidecarPath(c.outputPath, ".jbkd"))
	}

	if werr := writeManifest(f, c.opts.ConcatMode, dirDesc, dirBytes, contentDesc, contentBytes); werr != nil {
		f.Close()
		os.Remove(tmpManifest)
		return fmt.Errorf("%w: %v", ErrIoFailure, werr)
	}
	if cerr := f.Close(); cerr != nil {
		os.Remove(tmpManifest)
		return fmt.Errorf("%w: %v", ErrIoFailure, cerr)
	}

	if err := os.Rename(tmpManifest, c.outputPath); err != nil {
		os.Remove(tmpManifest)
		return fmt.Errorf("%w: %v", ErrIoFailure, err)
	}

	if c.opts.ConcatMode == NoConcat {
		if err := os.Rename(c.tmpDirPath, sidecarPath(c.outputPath, ".jbkd")); err != nil {
			return fmt.Errorf("%w: %v", ErrIoFailure, err)
		}
	}
	if c.opts.ConcatMode == TwoFiles || c.opts.ConcatMode == NoConcat {
		if err := os.Rename(c.tmpContentPath, sidecarPath(c.outputPath, ".jbkc")); err != nil {
			return fmt.Errorf("%w: %v", ErrIoFailure, err)
		}
	}

	c.log.WithFields(logrus.Fields{
		"entries":     c.dirPack.EntryStore().Len(),
		"concat_mode": c.opts.ConcatMode,
	}).Info("archive finalized")

	return nil
}

func (c *Creator) cleanupTemp() {
	for _, p := range []string{c.tmpDirPath, c.tmpContentPath, c.outputPath + ".tmp"} {
		if p != "" {
			os.Remove(p)
		}
	}
}
