package detect

import (
	"errors"
	"fmt"
)

// ErrNotAGradesheet indicates no usable name column could be
// established, so the grid cannot be treated as a gradesheet. Detection
// is not retried; the caller must supply different input.
var ErrNotAGradesheet = errors.New("not a gradesheet")

// DetectionError carries the reason a grid was rejected.
type DetectionError struct {
	// Sheet is the worksheet name when known, "" otherwise.
	Sheet  string
	Reason string
	Err    error
}

func (e *DetectionError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("detection failed for sheet %q: %s", e.Sheet, e.Reason)
	}
	return fmt.Sprintf("detection failed: %s", e.Reason)
}

func (e *DetectionError) Unwrap() error {
	return e.Err
}
