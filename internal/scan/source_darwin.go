//go:build darwin

package scan

import (
	"golang.org/x/sys/unix"

	"github.com/dl/godu/internal/attrbuf"
)

// bulkSource reads a directory with getattrlistbulk. The kernel fills the
// scratch buffer directly in the packed record layout, so no translation
// happens on this platform.
type bulkSource struct {
	fd    int
	attrs unix.Attrlist
}

// Open opens path for bulk attribute retrieval.
func Open(path string) (Source, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_DIRECTORY, 0)
	if err != nil {
		return nil, err
	}
	return &bulkSource{
		fd: fd,
		attrs: unix.Attrlist{
			Bitmapcount: attrbuf.BitMapCount,
			Commonattr: attrbuf.CmnReturnedAttrs | attrbuf.CmnName |
				attrbuf.CmnError | attrbuf.CmnObjType | attrbuf.CmnFileID,
			Fileattr: attrbuf.FileAllocSize,
		},
	}, nil
}

func (s *bulkSource) ReadBatch(buf []byte) (int, error) {
	n, err := unix.Getattrlistbulk(s.fd, &s.attrs, buf, 0)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (s *bulkSource) Close() error {
	return unix.Close(s.fd)
}
