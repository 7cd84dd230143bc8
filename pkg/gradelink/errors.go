package gradelink

import (
	"github.com/omahdaoui/gradelink-go/pkg/gradelink/detect"
	"github.com/omahdaoui/gradelink-go/pkg/gradelink/insert"
)

// Sheet-level failures surface as hard errors. Record-level conditions
// (unresolved name, missing category column) never do: they are
// aggregated into the preview and outcome structures instead.
var (
	// ErrNotAGradesheet means detection found no usable name column.
	ErrNotAGradesheet = detect.ErrNotAGradesheet
	// ErrStructureNotInitialized means preview or commit ran before a
	// successful detection.
	ErrStructureNotInitialized = insert.ErrStructureNotInitialized
)
