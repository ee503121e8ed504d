// Package models defines data structures for rental listing extraction.
package models

import "sort"

// CellKind identifies the variant held by a CellValue.
type CellKind int

const (
	// CellText is a plain text cell.
	CellText CellKind = iota
	// CellNumber is a numeric cell.
	CellNumber
	// CellRichText is a cell whose text is composed of styled runs.
	CellRichText
	// CellHyperlink is a cell carrying a hyperlink.
	CellHyperlink
)

// CellValue is a closed variant over the cell value shapes a worksheet can
// hold. Every variant unwraps to plain text via Text.
type CellValue struct {
	Kind CellKind
	// Raw is the display text of the cell.
	Raw string
	// Number is the parsed numeric value, valid only for CellNumber.
	Number float64
	// Target is the hyperlink target, valid only for CellHyperlink.
	Target string
}

// TextCell returns a plain text cell value.
func TextCell(s string) CellValue {
	return CellValue{Kind: CellText, Raw: s}
}

// NumberCell returns a numeric cell value keeping its display text.
func NumberCell(n float64, raw string) CellValue {
	return CellValue{Kind: CellNumber, Raw: raw, Number: n}
}

// RichTextCell returns a cell value for rich text runs flattened to s.
func RichTextCell(s string) CellValue {
	return CellValue{Kind: CellRichText, Raw: s}
}

// HyperlinkCell returns a cell value for a hyperlinked cell.
func HyperlinkCell(text, target string) CellValue {
	return CellValue{Kind: CellHyperlink, Raw: text, Target: target}
}

// Text unwraps the cell to its plain display text.
func (c CellValue) Text() string {
	return c.Raw
}

// IsNumber reports whether the cell holds a numeric value.
func (c CellValue) IsNumber() bool {
	return c.Kind == CellNumber
}

// Row represents a single non-empty worksheet row.
type Row struct {
	// Index is the row index (1-based).
	Index int
	// Cells maps column index (1-based) to cell value. Empty cells are absent.
	Cells map[int]CellValue
	// FirstCellMerged reports whether the row's first column participates in
	// a merged region.
	FirstCellMerged bool
}

// Columns returns the occupied column positions in ascending order.
func (r Row) Columns() []int {
	cols := make([]int, 0, len(r.Cells))
	for col := range r.Cells {
		cols = append(cols, col)
	}
	sort.Ints(cols)
	return cols
}

// CellCount returns the number of non-empty cells in the row.
func (r Row) CellCount() int {
	return len(r.Cells)
}

// First returns the leftmost non-empty cell.
func (r Row) First() (CellValue, bool) {
	cols := r.Columns()
	if len(cols) == 0 {
		return CellValue{}, false
	}
	return r.Cells[cols[0]], true
}
