// stat.go - normalized stat(2) information for a visited entry
//
// (c) 2024- the bfs authors
//
// Licensing Terms: GPLv2

package bftw

import (
	"time"

	"golang.org/x/sys/unix"
)

// FileType classifies a directory entry the way the dirent d_type field
// (or a stat(2) fallback) does.
type FileType int

const (
	TypeUnknown FileType = iota
	TypeRegular
	TypeDir
	TypeSymlink
	TypeChardev
	TypeBlockdev
	TypeFifo
	TypeSocket
	TypeDoor // never produced on Linux/BSD; kept for parity with the d_type enum
	TypeError
)

func (t FileType) String() string {
	switch t {
	case TypeRegular:
		return "f"
	case TypeDir:
		return "d"
	case TypeSymlink:
		return "l"
	case TypeChardev:
		return "c"
	case TypeBlockdev:
		return "b"
	case TypeFifo:
		return "p"
	case TypeSocket:
		return "s"
	case TypeDoor:
		return "D"
	case TypeError:
		return "E"
	default:
		return "U"
	}
}

// Stat is a normalized form of struct stat, filled lazily per entry.
// Modeled on fio.Info but trimmed to the fields the expression engine and
// the cycle detector actually consult.
type Stat struct {
	Dev   uint64
	Rdev  uint64
	Ino   uint64
	Mode  uint32
	Nlink uint64
	Uid   uint32
	Gid   uint32
	Size  int64
	Blksz int64
	Blocks int64

	Atim time.Time
	Mtim time.Time
	Ctim time.Time
}

// Type derives the FileType from the stat mode bits.
func (s *Stat) Type() FileType {
	switch s.Mode & unix.S_IFMT {
	case unix.S_IFREG:
		return TypeRegular
	case unix.S_IFDIR:
		return TypeDir
	case unix.S_IFLNK:
		return TypeSymlink
	case unix.S_IFCHR:
		return TypeChardev
	case unix.S_IFBLK:
		return TypeBlockdev
	case unix.S_IFIFO:
		return TypeFifo
	case unix.S_IFSOCK:
		return TypeSocket
	default:
		return TypeUnknown
	}
}

// fillFromStat normalizes a unix.Stat_t (as returned by Fstatat) into s.
func (s *Stat) fillFromStat(st *unix.Stat_t) {
	s.Dev = uint64(st.Dev)
	s.Rdev = uint64(st.Rdev)
	s.Ino = uint64(st.Ino)
	s.Mode = uint32(st.Mode)
	s.Nlink = uint64(st.Nlink)
	s.Uid = st.Uid
	s.Gid = st.Gid
	s.Size = st.Size
	s.Blksz = int64(st.Blksize)
	s.Blocks = st.Blocks

	s.Atim = timespecToTime(st.Atim)
	s.Mtim = timespecToTime(st.Mtim)
	s.Ctim = timespecToTime(st.Ctim)
}

func timespecToTime(ts unix.Timespec) time.Time {
	return time.Unix(int64(ts.Sec), int64(ts.Nsec))
}

// direntType maps a raw dirent d_type byte to our FileType enum.
// DT_UNKNOWN (0) means the caller must stat to discover the type.
func direntType(dt uint8) FileType {
	switch dt {
	case unix.DT_REG:
		return TypeRegular
	case unix.DT_DIR:
		return TypeDir
	case unix.DT_LNK:
		return TypeSymlink
	case unix.DT_CHR:
		return TypeChardev
	case unix.DT_BLK:
		return TypeBlockdev
	case unix.DT_FIFO:
		return TypeFifo
	case unix.DT_SOCK:
		return TypeSocket
	default:
		return TypeUnknown
	}
}
