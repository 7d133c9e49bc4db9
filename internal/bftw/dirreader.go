// dirreader.go - streaming directory enumeration
//
// (c) 2024- the bfs authors
//
// Licensing Terms: GPLv2

package bftw

import (
	"io/fs"
	"os"

	"golang.org/x/sys/unix"
)

// dirent is one name yielded by the platform directory reader, with the
// d_type-derived FileType when the platform provides one (TypeUnknown
// otherwise, which forces a stat before the type can be trusted).
type dirent struct {
	name string
	typ  FileType
}

// readDirents duplicates fd (CLOEXEC) and hands the duplicate to an
// *os.File for streaming enumeration, keeping the original fd available
// for further *at syscalls against the same directory.
func readDirents(fd int) ([]dirent, error) {
	dupfd, err := unix.Dup(fd)
	if err != nil {
		return nil, err
	}
	unix.CloseOnExec(dupfd)

	f := os.NewFile(uintptr(dupfd), ".")
	defer f.Close()

	des, err := f.ReadDir(-1)
	if err != nil {
		return nil, err
	}

	out := make([]dirent, 0, len(des))
	for _, de := range des {
		nm := de.Name()
		if nm == "." || nm == ".." {
			continue
		}
		out = append(out, dirent{name: nm, typ: directTypeOf(de)})
	}
	return out, nil
}

// directTypeOf maps the os.DirEntry's cheap (stat-free) mode bits to our
// FileType enum; TypeUnknown means the caller must stat to be sure.
func directTypeOf(de fs.DirEntry) FileType {
	switch de.Type() & fs.ModeType {
	case 0:
		return TypeRegular
	case fs.ModeDir:
		return TypeDir
	case fs.ModeSymlink:
		return TypeSymlink
	case fs.ModeNamedPipe:
		return TypeFifo
	case fs.ModeSocket:
		return TypeSocket
	case fs.ModeDevice:
		if de.Type()&fs.ModeCharDevice != 0 {
			return TypeChardev
		}
		return TypeBlockdev
	default:
		return TypeUnknown
	}
}
