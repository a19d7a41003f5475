//go:build linux

package scan

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/dl/godu/internal/attrbuf"
)

// bulkSource emulates bulk attribute retrieval on Linux: getdents64 for the
// names, fstatat per entry, re-encoded into the packed record layout so the
// decoder and everything above it are identical across platforms.
type bulkSource struct {
	fd      int
	dents   []byte
	pending []string // parsed names not yet encoded into a batch
	eof     bool
	err     error // deferred getdents failure, surfaced once drained
}

// Open opens path for bulk attribute retrieval.
func Open(path string) (Source, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_NOATIME, 0)
	if err != nil {
		fd, err = unix.Open(path, unix.O_RDONLY|unix.O_DIRECTORY, 0)
		if err != nil {
			return nil, err
		}
	}
	return &bulkSource{fd: fd, dents: make([]byte, 32*1024)}, nil
}

func (s *bulkSource) ReadBatch(buf []byte) (int, error) {
	count := 0
	out := 0
	var rec attrbuf.Record
	for {
		if len(s.pending) == 0 {
			if s.eof || s.err != nil {
				break
			}
			s.fill()
			continue
		}
		s.record(s.pending[0], &rec)
		n := attrbuf.Encode(buf[out:], &rec)
		if n == 0 {
			if count == 0 {
				return 0, unix.ERANGE
			}
			break
		}
		out += n
		count++
		s.pending = s.pending[1:]
	}
	if count > 0 {
		return count, nil
	}
	if s.err != nil {
		err := s.err
		s.err = nil
		return 0, err
	}
	return 0, nil
}

func (s *bulkSource) Close() error {
	return unix.Close(s.fd)
}

// fill reads one getdents64 batch and parses the names, "." and ".."
// included. Classification happens above; the source only reports.
func (s *bulkSource) fill() {
	n, err := unix.Getdents(s.fd, s.dents)
	if err != nil {
		s.err = err
		return
	}
	if n == 0 {
		s.eof = true
		return
	}

	// linux_dirent64 layout: d_ino (8), d_off (8), d_reclen (2),
	// d_type (1), then the NUL-terminated name.
	offset := 0
	for offset < n {
		if offset+19 > n {
			break
		}
		reclen := *(*uint16)(unsafe.Pointer(&s.dents[offset+16]))
		if reclen == 0 {
			break
		}
		nameStart := offset + 19
		nameEnd := offset + int(reclen)
		if nameEnd > n {
			nameEnd = n
		}
		nameBytes := s.dents[nameStart:nameEnd]
		nameLen := 0
		for nameLen < len(nameBytes) && nameBytes[nameLen] != 0 {
			nameLen++
		}
		if nameLen > 0 {
			s.pending = append(s.pending, string(nameBytes[:nameLen]))
		}
		offset += int(reclen)
	}
}

// record stats one entry and builds its packed-record fields. A failed stat
// becomes an in-band error record carrying the errno.
func (s *bulkSource) record(name string, rec *attrbuf.Record) {
	*rec = attrbuf.Record{Name: name}
	rec.Attrs.Common = attrbuf.CmnName

	var st unix.Stat_t
	if err := unix.Fstatat(s.fd, name, &st, unix.AT_SYMLINK_NOFOLLOW); err != nil {
		rec.Attrs.Common |= attrbuf.CmnError
		if errno, ok := err.(unix.Errno); ok {
			rec.Err = uint32(errno)
		} else {
			rec.Err = uint32(unix.EIO)
		}
		return
	}

	rec.Attrs.Common |= attrbuf.CmnObjType | attrbuf.CmnFileID
	rec.FileID = st.Ino
	switch st.Mode & unix.S_IFMT {
	case unix.S_IFREG:
		rec.ObjType = attrbuf.ObjRegular
		rec.Attrs.File = attrbuf.FileAllocSize
		// st_blocks is in 512-byte units regardless of st_blksize.
		rec.AllocSize = st.Blocks * 512
	case unix.S_IFDIR:
		rec.ObjType = attrbuf.ObjDirectory
	case unix.S_IFLNK:
		rec.ObjType = attrbuf.ObjSymlink
	default:
		rec.ObjType = attrbuf.ObjNone
	}
}
