package cli

import (
	"os"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/dl/godu/internal/output"
	"github.com/dl/godu/internal/walker"
)

// walkFunc starts a traversal and returns its result and diagnostic channels.
type walkFunc func(roots []string, opts walker.Options) (<-chan walker.Result, <-chan error)

// lineWriter receives formatted result lines; output.Writer satisfies it.
type lineWriter interface {
	Write(p []byte) error
}

// Run executes the walk with the given config.
// Returns exit code: 0 = success, 1 = some paths had errors, 2 = fatal error.
func Run(cfg Config) int {
	level := log.WarnLevel
	if cfg.Verbose {
		level = log.InfoLevel
	}
	if cfg.Quiet {
		level = log.ErrorLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level: level,
	})
	return run(cfg, logger, output.NewWriter(), walker.Walk)
}

func run(cfg Config, logger *log.Logger, w lineWriter, walk walkFunc) int {
	// Determine color mode
	useColor := false
	switch cfg.Color {
	case ColorAlways:
		useColor = true
	case ColorNever:
		useColor = false
	case ColorAuto:
		useColor = output.StdoutIsTerminal()
	}

	var styles output.Styles
	if useColor {
		styles = output.NewStyles()
	} else {
		styles = output.NoStyles()
	}
	formatter := output.NewTextFormatter(cfg.Bytes, styles)

	resCh, errCh := walk(cfg.Paths, walker.Options{
		Workers:  cfg.Workers,
		Excludes: cfg.Excludes,
	})

	// Diagnostics drain concurrently with result consumption so a noisy
	// tree cannot stall the workers on the error channel.
	var errCount atomic.Int64
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for err := range errCh {
			errCount.Add(1)
			logger.Warn("cannot read", "err", err)
		}
	}()

	var buf []byte
	for res := range resCh {
		logger.Info("scanned", "root", res.Root, "files", res.Files, "dirs", res.Dirs)
		if cfg.Threshold > 0 && output.BlocksToBytes(res.Blocks) < cfg.Threshold {
			continue
		}
		buf = formatter.Format(buf[:0], res)
		if err := w.Write(buf); err != nil {
			logger.Error("write output", "err", err)
			<-drained
			return 2
		}
	}
	<-drained

	if errCount.Load() > 0 {
		return 1
	}
	return 0
}
