package arx

import "io/fs"

// arx stores entry rights as the raw unix mode bits (type + permission +
// setuid/setgid/sticky), the same representation the source filesystem
// reports via os.FileInfo.Sys(). These helpers translate between that and
// Go's fs.FileMode so the reader side can satisfy io/fs.FS directly.
const (
	unixIFMT  = 0xf000
	unixIFREG = 0x8000
	unixIFDIR = 0x4000
	unixIFLNK = 0xa000

	unixISVTX = 0x200
	unixISGID = 0x400
	unixISUID = 0x800
)

// unixToFileMode converts raw unix mode bits (as recorded in an entry's
// rights field) into a fs.FileMode. Only the file types arx itself ever
// writes (regular file, directory, symlink) are translated; anything else
// falls back to the permission bits alone.
func unixToFileMode(mode uint64) fs.FileMode {
	res := fs.FileMode(mode & 0777)

	switch mode & unixIFMT {
	case unixIFDIR:
		res |= fs.ModeDir
	case unixIFLNK:
		res |= fs.ModeSymlink
	}

	if mode&unixISGID == unixISGID {
		res |= fs.ModeSetgid
	}
	if mode&unixISUID == unixISUID {
		res |= fs.ModeSetuid
	}
	if mode&unixISVTX == unixISVTX {
		res |= fs.ModeSticky
	}

	return res
}

// fileModeToUnix is the inverse of unixToFileMode, used by the filesystem
// traversal helpers in fsinput when no raw unix mode is available from
// info.Sys().
func fileModeToUnix(mode fs.FileMode) uint64 {
	res := uint64(mode.Perm())

	switch {
	case mode&fs.ModeDir != 0:
		res |= unixIFDIR
	case mode&fs.ModeSymlink != 0:
		res |= unixIFLNK
	default:
		res |= unixIFREG
	}

	if mode&fs.ModeSetgid != 0 {
		res |= unixISGID
	}
	if mode&fs.ModeSetuid != 0 {
		res |= unixISUID
	}
	if mode&fs.ModeSticky != 0 {
		res |= unixISVTX
	}

	return res
}
