// Package scan computes one directory level of a disk-usage walk: it drives
// bulk attribute retrieval against an open directory, decodes the packed
// records, and classifies each entry, accumulating block counts for regular
// files and names for subdirectories.
package scan

import (
	"fmt"

	"github.com/dl/godu/internal/attrbuf"
)

const (
	// BlockSize is the disk-usage accounting unit, as in du.
	BlockSize = 512

	// BufSize is the scratch buffer size for one retrieval batch.
	BufSize = 128 * 1024
)

// Source yields batches of packed attribute records for one directory.
type Source interface {
	// ReadBatch fills buf with the next batch of records and returns how
	// many it holds. Zero means the directory is exhausted. An error means
	// the remaining entries are unknowable; entries already returned stand.
	ReadBatch(buf []byte) (int, error)

	Close() error
}

// FileEntry is one regular file's contribution: its 512-byte block count and
// its inode, for hardlink accounting by the caller.
type FileEntry struct {
	Blocks int64
	Inode  uint64
}

// Snapshot is the result of scanning one directory level. Files appear in
// retrieval order; Subdirs never contains "." or "..". The caller owns it.
type Snapshot struct {
	Files   []FileEntry
	Subdirs []string
}

// EntryError reports one entry that could not be inspected. The scan
// continues past it.
type EntryError struct {
	Dir  string
	Name string
	Code uint32
}

func (e *EntryError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("cannot access entry in '%s': error %d", e.Dir, e.Code)
	}
	return fmt.Sprintf("cannot access '%s/%s': error %d", e.Dir, e.Name, e.Code)
}

// ReadError reports a retrieval failure that ended a scan early. The
// snapshot returned alongside it is complete so far, not complete.
type ReadError struct {
	Dir string
	Err error
}

func (e *ReadError) Error() string { return "read " + e.Dir + ": " + e.Err.Error() }

func (e *ReadError) Unwrap() error { return e.Err }

// Options configures one scan.
type Options struct {
	// Reserve bounds container growth; see ReserveFunc. A veto aborts the
	// scan with no snapshot.
	Reserve ReserveFunc

	// Report receives per-entry errors and retrieval failures. It is never
	// consulted for control flow. Nil discards.
	Report func(error)
}

// Blocks converts a byte count to 512-byte blocks, rounding up.
func Blocks(bytes int64) int64 {
	return (bytes + BlockSize - 1) / BlockSize
}

// Scan reads dir through src until exhaustion. buf is the scratch buffer for
// retrieval batches; pass nil to allocate a fresh one. dir is used only in
// diagnostics.
//
// A retrieval failure ends the scan early and yields the entries accumulated
// so far as a valid snapshot. A growth veto is fatal: no snapshot, and the
// veto is returned.
func Scan(dir string, src Source, buf []byte, opts Options) (*Snapshot, error) {
	if buf == nil {
		buf = make([]byte, BufSize)
	}
	report := opts.Report
	if report == nil {
		report = func(error) {}
	}

	files := NewList[FileEntry](opts.Reserve)
	subdirs := NewList[string](opts.Reserve)

	var rec attrbuf.Record
	for {
		n, err := src.ReadBatch(buf)
		if err != nil {
			report(&ReadError{Dir: dir, Err: err})
			break
		}
		if n == 0 {
			break
		}
		dec := attrbuf.NewDecoder(buf, n)
		for dec.Next(&rec) {
			if err := classify(dir, &rec, files, subdirs, report); err != nil {
				return nil, err
			}
		}
	}

	return &Snapshot{Files: files.Items(), Subdirs: subdirs.Items()}, nil
}

// classify routes one decoded record. The returned error is only ever a
// container-growth veto.
func classify(dir string, rec *attrbuf.Record, files *List[FileEntry], subdirs *List[string], report func(error)) error {
	if rec.Name == "." || rec.Name == ".." {
		return nil
	}

	if rec.HasErr() && rec.Err != 0 {
		report(&EntryError{Dir: dir, Name: rec.Name, Code: rec.Err})
		return nil
	}

	if !rec.HasObjType() {
		return nil
	}
	switch rec.ObjType {
	case attrbuf.ObjRegular:
		if rec.HasAllocSize() {
			return files.Append(FileEntry{Blocks: Blocks(rec.AllocSize), Inode: rec.FileID})
		}
	case attrbuf.ObjDirectory:
		// A directory with no decodable name cannot be recursed into and
		// is dropped without diagnostics.
		if rec.HasName() {
			return subdirs.Append(rec.Name)
		}
	case attrbuf.ObjSymlink:
		// Never followed; contributes no blocks.
	}
	return nil
}
