package arx

import "errors"

// Package-specific error variables that can be used with errors.Is() for error handling.
var (
	// ErrInputNotFound is returned when an input path passed to the archive builder
	// does not exist or cannot be accessed.
	ErrInputNotFound = errors.New("input path doesn't exist or cannot be accessed")

	// ErrOutputParentMissing is returned when the directory meant to hold the
	// archive output does not exist.
	ErrOutputParentMissing = errors.New("output directory doesn't exist")

	// ErrOutputExists is returned when the target archive already exists and
	// the caller did not request an overwrite.
	ErrOutputExists = errors.New("output file already exists")

	// ErrAbsoluteInputPath names the error kind for an input path that is
	// absolute where a relative path is required. No function in this module
	// returns it; absolute input paths are accepted.
	ErrAbsoluteInputPath = errors.New("input path must be relative")

	// ErrCannotRead is returned when a file's content stream could not be read.
	ErrCannotRead = errors.New("cannot read input content")

	// ErrCompareFailure names the error kind for an extracted tree that does
	// not match the source tree. No function in this module returns it.
	ErrCompareFailure = errors.New("extracted tree does not match source")

	// ErrSchemaViolation is returned when the entry stream violates a schema
	// invariant: a duplicate non-directory name, or a directory added after a
	// child that refers to it.
	ErrSchemaViolation = errors.New("entry schema violation")

	// ErrIoFailure wraps an underlying I/O error encountered while writing or
	// reading a pack.
	ErrIoFailure = errors.New("pack i/o failure")

	// ErrCodecFailure is returned when a compression codec fails to compress
	// a cluster. Decompression errors are returned as the codec reports them.
	ErrCodecFailure = errors.New("codec failure")

	// ErrLinkTargetTooLarge is returned when a symlink target (or any other
	// value-store payload) exceeds the store's 16-bit length prefix. The
	// check runs when the directory pack is serialized, so the error comes
	// from Finalize.
	ErrLinkTargetTooLarge = errors.New("value exceeds value store capacity")

	// ErrBuilderClosed is returned by add_entry once the builder has moved
	// past the Open state (Finalizing or Closed).
	ErrBuilderClosed = errors.New("archive builder is no longer open")

	// ErrNotDirectory names the error kind for a non-directory used where a
	// directory is needed. No function in this module returns it: the CLI's
	// extract rejects a non-directory root with its own error, and reading
	// directory entries from a file fails with the io/fs error.
	ErrNotDirectory = errors.New("not a directory")

	// ErrInvalidManifest is returned when a manifest's signature or footer is
	// unrecognized.
	ErrInvalidManifest = errors.New("invalid arx manifest")

	// ErrInvalidPack is returned when a content or directory pack's magic or
	// checksum does not match.
	ErrInvalidPack = errors.New("invalid arx pack")

	// ErrUnknownCodec is returned when a pack references a codec id with no
	// registered handler.
	ErrUnknownCodec = errors.New("unknown compression codec")
)
