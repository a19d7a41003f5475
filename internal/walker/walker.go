// Package walker descends directory trees in parallel, running one bulk scan
// per directory and aggregating 512-byte block totals across the tree with
// hardlink deduplication.
package walker

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/dl/godu/internal/scan"
)

// MaxOpenDirs bounds the worker count; each worker holds at most one
// directory fd open, keeping the walk clear of fd rlimits.
const MaxOpenDirs = 224

// ErrTooManyEntries is returned through the error channel when a directory
// exceeds Options.MaxDirEntries. The directory contributes nothing.
var ErrTooManyEntries = errors.New("too many directory entries")

// Options configures a walk.
type Options struct {
	Workers       int      // 0 = NumCPU, capped at MaxOpenDirs
	Excludes      []string // gitignore-style patterns; matching directories are pruned
	MaxDirEntries int      // per-directory container capacity cap; 0 = unlimited
}

// Result is the aggregate for one root: deduplicated block total, regular
// files encountered, and subdirectories descended into.
type Result struct {
	Root   string
	Blocks int64
	Files  int64
	Dirs   int64
}

// WalkError wraps a per-directory failure with its path.
type WalkError struct {
	Path string
	Err  error
}

func (e *WalkError) Error() string { return "walk " + e.Path + ": " + e.Err.Error() }

func (e *WalkError) Unwrap() error { return e.Err }

// Walk traverses the given roots and delivers one Result per readable root
// on the first channel, diagnostics on the second. Both channels close when
// the walk completes. A root that cannot be opened yields an error and no
// Result. Unreadable subdirectories yield errors but do not stop the walk.
func Walk(roots []string, opts Options) (<-chan Result, <-chan error) {
	return walk(roots, opts, scan.Open)
}

type openFunc func(string) (scan.Source, error)

func walk(roots []string, opts Options, open openFunc) (<-chan Result, <-chan error) {
	resCh := make(chan Result, len(roots)+1)
	errCh := make(chan error, 16)

	go func() {
		defer close(resCh)
		defer close(errCh)

		pw := &parallelWalker{
			errCh:      errCh,
			open:       open,
			seen:       newInodeSet(),
			maxEntries: opts.MaxDirEntries,
		}
		pw.cond = sync.NewCond(&pw.mu)
		if len(opts.Excludes) > 0 {
			pw.excludes = ignore.CompileIgnoreLines(opts.Excludes...)
		}

		// Roots are opened by the workers like any other directory, so
		// held fds never exceed the worker count. A root whose open
		// fails is marked so it yields an error instead of a zero total.
		totals := make([]*rootTotal, 0, len(roots))
		for _, root := range roots {
			t := &rootTotal{root: root}
			totals = append(totals, t)
			pw.enqueue(walkItem{path: root, total: t, root: true})
		}
		if len(totals) == 0 {
			return
		}

		workers := opts.Workers
		if workers <= 0 {
			workers = runtime.NumCPU()
		}
		if workers > MaxOpenDirs {
			workers = MaxOpenDirs
		}
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				pw.worker()
			}()
		}
		wg.Wait()

		for _, t := range totals {
			if t.failed.Load() {
				continue
			}
			resCh <- Result{
				Root:   t.root,
				Blocks: t.blocks.Load(),
				Files:  t.files.Load(),
				Dirs:   t.dirs.Load(),
			}
		}
	}()

	return resCh, errCh
}

// rootTotal accumulates one root's counters across all workers. failed is
// set when the root itself cannot be opened; such roots emit no Result.
type rootTotal struct {
	root   string
	blocks atomic.Int64
	files  atomic.Int64
	dirs   atomic.Int64
	failed atomic.Bool
}

// walkItem is one directory awaiting a scan.
type walkItem struct {
	path  string
	total *rootTotal
	root  bool
}

// parallelWalker coordinates concurrent BFS directory traversal.
type parallelWalker struct {
	errCh      chan<- error
	open       openFunc
	seen       *inodeSet
	excludes   *ignore.GitIgnore
	maxEntries int

	mu      sync.Mutex
	queue   []walkItem
	pending int        // dirs enqueued but not yet fully processed
	cond    *sync.Cond // signaled when items are enqueued or work is done
	done    bool
}

// enqueue adds a directory to the work queue.
func (pw *parallelWalker) enqueue(item walkItem) {
	pw.mu.Lock()
	pw.queue = append(pw.queue, item)
	pw.pending++
	pw.mu.Unlock()
	pw.cond.Signal()
}

// dequeue retrieves a work item, blocking if the queue is temporarily empty.
// Returns false when all work is complete.
func (pw *parallelWalker) dequeue() (walkItem, bool) {
	pw.mu.Lock()
	for len(pw.queue) == 0 && !pw.done {
		pw.cond.Wait()
	}
	if pw.done && len(pw.queue) == 0 {
		pw.mu.Unlock()
		return walkItem{}, false
	}
	item := pw.queue[0]
	pw.queue = pw.queue[1:]
	pw.mu.Unlock()
	return item, true
}

// finish marks a directory as fully processed.
func (pw *parallelWalker) finish() {
	pw.mu.Lock()
	pw.pending--
	if pw.pending == 0 && len(pw.queue) == 0 {
		pw.done = true
		pw.cond.Broadcast()
	}
	pw.mu.Unlock()
}

// worker processes directories from the work queue until all work is done.
func (pw *parallelWalker) worker() {
	buf := make([]byte, scan.BufSize) // per-worker retrieval buffer
	for {
		item, ok := pw.dequeue()
		if !ok {
			return
		}
		pw.processDir(item, buf)
		pw.finish()
	}
}

// processDir scans one directory level and folds the snapshot into the
// root's counters. The directory fd is closed before subdirectories are
// enqueued, so held fds never exceed the worker count.
func (pw *parallelWalker) processDir(item walkItem, buf []byte) {
	src, err := pw.open(item.path)
	if err != nil {
		pw.errCh <- &WalkError{Path: item.path, Err: err}
		if item.root {
			item.total.failed.Store(true)
		}
		return
	}

	var reserve scan.ReserveFunc
	if pw.maxEntries > 0 {
		limit := pw.maxEntries
		reserve = func(elems int) error {
			if elems > limit {
				return fmt.Errorf("%s: %w", item.path, ErrTooManyEntries)
			}
			return nil
		}
	}

	snap, err := scan.Scan(item.path, src, buf, scan.Options{
		Reserve: reserve,
		Report:  func(err error) { pw.errCh <- err },
	})
	src.Close()
	if err != nil {
		pw.errCh <- &WalkError{Path: item.path, Err: err}
		return
	}

	for _, f := range snap.Files {
		item.total.files.Add(1)
		// Inode 0 means the source returned no file id; count it rather
		// than collapsing all such files onto one dedup key.
		if f.Inode != 0 && !pw.seen.Add(f.Inode) {
			continue
		}
		item.total.blocks.Add(f.Blocks)
	}

	for _, name := range snap.Subdirs {
		full := joinPath(item.path, name)
		if pw.excludes != nil && pw.excludes.MatchesPath(full) {
			continue
		}
		item.total.dirs.Add(1)
		pw.enqueue(walkItem{path: full, total: item.total})
	}
}

// joinPath concatenates a directory and entry name with a single separator.
// Avoids filepath.Join overhead (no Clean, no validation) since we control
// the inputs: dirPath is always a valid directory path, name is a plain
// filename. Uses a single allocation via make+copy.
func joinPath(dirPath, name string) string {
	needsSep := len(dirPath) == 0 || dirPath[len(dirPath)-1] != '/'
	n := len(dirPath) + len(name)
	if needsSep {
		n++
	}
	buf := make([]byte, n)
	copy(buf, dirPath)
	i := len(dirPath)
	if needsSep {
		buf[i] = '/'
		i++
	}
	copy(buf[i:], name)
	return unsafe.String(&buf[0], len(buf))
}
