package roomsheet

import (
	"errors"
	"fmt"
)

// ErrFileNotFound indicates the input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrWorkbookUnreadable indicates the input could not be opened as a workbook.
var ErrWorkbookUnreadable = errors.New("workbook unreadable")

// SheetError represents a failure while processing one sheet. Sheet-level
// failures are absorbed by the pipeline (the sheet yields zero records) and
// only surface in logs.
type SheetError struct {
	SheetName string
	Stage     string // "load", "headers", "records"
	Err       error
}

func (e *SheetError) Error() string {
	return fmt.Sprintf("sheet %q (%s): %v", e.SheetName, e.Stage, e.Err)
}

func (e *SheetError) Unwrap() error {
	return e.Err
}

// NewSheetError creates a new SheetError.
func NewSheetError(sheetName, stage string, err error) *SheetError {
	return &SheetError{
		SheetName: sheetName,
		Stage:     stage,
		Err:       err,
	}
}
