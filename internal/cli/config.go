package cli

import "fmt"

// ColorMode controls when colored output is used.
type ColorMode int

const (
	ColorAuto   ColorMode = iota // color when stdout is a terminal
	ColorAlways                  // always use color
	ColorNever                   // never use color
)

// Config holds all configuration for a godu run.
type Config struct {
	Paths     []string
	Bytes     bool     // print raw byte counts instead of human units
	Color     ColorMode
	Excludes  []string // gitignore-style patterns pruning directories
	Threshold int64    // bytes; roots totaling less are not printed
	Workers   int
	Verbose   bool
	Quiet     bool
}

// Validate checks that the config is valid and returns an error if not.
func (c *Config) Validate() error {
	if len(c.Paths) == 0 {
		return fmt.Errorf("no paths specified")
	}
	if c.Workers < 0 {
		return fmt.Errorf("invalid worker count: %d", c.Workers)
	}
	if c.Threshold < 0 {
		return fmt.Errorf("invalid threshold: %d", c.Threshold)
	}
	if c.Verbose && c.Quiet {
		return fmt.Errorf("cannot use --verbose and --quiet together")
	}
	return nil
}
