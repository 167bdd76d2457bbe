package confounds

import (
	"errors"
	"fmt"
)

// ErrInvalidInput reports an unsupported source shape passed to Load. It is
// terminal; the caller picked the wrong type, there is nothing to retry.
var ErrInvalidInput = errors.New("invalid input type")

// InsufficientDataError reports that motion reduction cannot run on the
// available data: too few complete rows after missing-value filtering, a
// component count beyond the table's rank, or no variance to explain.
type InsufficientDataError struct {
	CompleteRows int
	Reason       string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for motion reduction: %s", e.Reason)
}
