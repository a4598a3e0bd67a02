package analysis

import "fmt"

// NotFoundError is returned when a caller asks about a file that is not part
// of the current snapshot. It surfaces directly to the caller; the snapshot
// is left untouched.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("file not found in analysis: %s", e.Path)
}

// ConsistencyError reports a broken internal invariant discovered while
// assembling a snapshot. It indicates a bug in an upstream builder, not bad
// input, and is fatal during development and testing.
type ConsistencyError struct {
	Invariant string
	Detail    string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("analysis consistency violation (%s): %s", e.Invariant, e.Detail)
}
