package usecase

import (
	"errors"

	crerr "github.com/cockroachdb/errors"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrConflict              = errors.New("conflict")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	// ErrAggregationAborted marks a final ballot whose rating run failed; nothing was committed.
	ErrAggregationAborted = crerr.New("rating aggregation aborted")
)

// markAborted tags err so callers can detect an aborted aggregation while keeping the cause.
func markAborted(err error, format string, args ...any) error {
	return crerr.Mark(crerr.Wrapf(err, format, args...), ErrAggregationAborted)
}
