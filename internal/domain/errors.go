package domain

import "errors"

var (
	// ErrInvalidConfig is returned before any work when a configuration is unusable.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrEmptyQuery is returned for a query with nothing to search for.
	ErrEmptyQuery = errors.New("empty query")
	// ErrAllStrategiesFailed signals that no retrieval strategy produced candidates.
	ErrAllStrategiesFailed = errors.New("all retrieval strategies failed")
)
