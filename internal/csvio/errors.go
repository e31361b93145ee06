package csvio

import (
	"fmt"
	"strings"
)

// MissingColumnError reports required columns absent from an upload's
// header row. The whole batch is rejected; no partial processing happens.
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// MalformedFileError reports an upload that could not be read as tabular
// data at all.
type MalformedFileError struct {
	Err error
}

func (e *MalformedFileError) Error() string {
	return fmt.Sprintf("file is not a readable CSV: %v", e.Err)
}

func (e *MalformedFileError) Unwrap() error {
	return e.Err
}
