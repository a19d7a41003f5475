package cli

import (
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// Execute parses args, runs the command, and returns the process exit code.
func Execute(args []string, version string) int {
	code := 0
	cmd := newCommand(version, &code)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "godu: "+err.Error())
		return 2
	}
	return code
}

func newCommand(version string, code *int) *cobra.Command {
	var (
		cfg       Config
		colorFlag string
		threshold string
	)

	cmd := &cobra.Command{
		Use:     "godu [flags] [path...]",
		Short:   "summarize disk usage using bulk directory attribute retrieval",
		Version: version,
		Long: heredoc.Doc(`
			godu reports the disk usage of each given directory tree, counting
			regular files in 512-byte blocks with hardlinked files counted once.

			Instead of one metadata call per entry, each directory is read with
			a small fixed number of bulk attribute requests, and directories are
			scanned in parallel. Symbolic links are never followed. Unreadable
			entries are reported on stderr and excluded from the total.
		`),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Paths = args
			if len(cfg.Paths) == 0 {
				cfg.Paths = []string{"."}
			}

			switch colorFlag {
			case "auto":
				cfg.Color = ColorAuto
			case "always":
				cfg.Color = ColorAlways
			case "never":
				cfg.Color = ColorNever
			default:
				return fmt.Errorf("invalid color mode %q: must be auto, always, or never", colorFlag)
			}

			if threshold != "" {
				n, err := humanize.ParseBytes(threshold)
				if err != nil {
					return fmt.Errorf("invalid threshold %q: %w", threshold, err)
				}
				cfg.Threshold = int64(n)
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			*code = Run(cfg)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&cfg.Bytes, "bytes", "b", false, "print byte counts instead of human-readable sizes")
	flags.StringVar(&colorFlag, "color", "auto", "colorize output: auto, always, or never")
	flags.StringSliceVarP(&cfg.Excludes, "exclude", "e", nil, "gitignore-style patterns; matching directories are skipped")
	flags.StringVarP(&threshold, "threshold", "t", "", "omit roots totaling less than this size (e.g. 1MB)")
	flags.IntVarP(&cfg.Workers, "workers", "j", 0, "parallel directory scanners (0 = one per CPU)")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "log per-root file and directory counts")
	flags.BoolVarP(&cfg.Quiet, "quiet", "q", false, "suppress warnings about unreadable entries")
	flags.SortFlags = false

	return cmd
}
