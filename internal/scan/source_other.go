//go:build !darwin && !linux

package scan

import (
	"errors"
	"fmt"
	"runtime"
)

// Open reports that bulk directory retrieval is not implemented here.
func Open(path string) (Source, error) {
	return nil, fmt.Errorf("bulk directory scan on %s: %w", runtime.GOOS, errors.ErrUnsupported)
}
