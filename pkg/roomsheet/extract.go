package roomsheet

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/roomsheet/roomsheet-go/pkg/roomsheet/models"
	"github.com/roomsheet/roomsheet-go/pkg/roomsheet/parser"
)

// Engine runs the extraction pipeline. It holds no per-file state: the
// address context and header map live inside one sheet traversal, so
// separate Engine calls never share mutable state.
type Engine struct {
	log       *zap.Logger
	suggester ColumnSuggester
}

// NewEngine creates an extraction engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{log: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ProcessFile extracts records from the workbook at path, stamping each
// record with fileSourceID. Only a workbook that cannot be opened at all
// yields an error; sheet and row level faults degrade to fewer records.
func (e *Engine) ProcessFile(ctx context.Context, path, fileSourceID string) ([]models.RoomRecord, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkbookUnreadable, err)
	}
	defer f.Close()

	return e.process(ctx, f, fileSourceID), nil
}

// ProcessReader extracts records from workbook bytes streamed from r, for
// callers holding an upload instead of a file on disk.
func (e *Engine) ProcessReader(ctx context.Context, r io.Reader, fileSourceID string) ([]models.RoomRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkbookUnreadable, err)
	}
	defer f.Close()

	return e.process(ctx, f, fileSourceID), nil
}

func (e *Engine) process(ctx context.Context, f *excelize.File, fileSourceID string) []models.RoomRecord {
	var records []models.RoomRecord

	for _, sheetName := range f.GetSheetList() {
		if visible, err := f.GetSheetVisible(sheetName); err == nil && !visible {
			e.log.Debug("skipping invisible sheet", zap.String("sheet", sheetName))
			continue
		}

		rows, err := parser.LoadSheet(f, sheetName)
		if err != nil {
			e.log.Warn("sheet unreadable", zap.Error(NewSheetError(sheetName, "load", err)))
			continue
		}

		recs := e.processSheet(ctx, rows, sheetName, fileSourceID)
		e.log.Info("sheet processed",
			zap.String("sheet", sheetName),
			zap.Int("rows", len(rows)),
			zap.Int("records", len(recs)))
		records = append(records, recs...)
	}

	return records
}

// processSheet is the per-sheet state machine. The header map is resolved
// once (rules first, suggester second) and fixed for the rest of the sheet;
// the address context starts empty and follows section-header rows.
func (e *Engine) processSheet(ctx context.Context, rows []models.Row, sheetName, fileSourceID string) []models.RoomRecord {
	headerMap, headerRow := resolveHeaders(rows)
	if len(headerMap) == 0 && e.suggester != nil {
		e.log.Info("no header row detected, delegating to column suggester",
			zap.String("sheet", sheetName))
		headerMap = e.suggester.MapColumns(ctx, sampleGrid(rows, sampleRowCount))
		headerRow = -1 // every row is data-eligible
	}
	if len(headerMap) == 0 {
		e.log.Warn("sheet skipped: headers unresolved", zap.String("sheet", sheetName))
		return nil
	}

	address := ""
	var records []models.RoomRecord

	for i, row := range rows {
		switch parser.Classify(row) {
		case parser.KindSectionHeader:
			address = parser.ExtractAddress(row)
			e.log.Debug("address context updated",
				zap.String("sheet", sheetName),
				zap.Int("row", row.Index),
				zap.String("address", address))

		case parser.KindColumnHeader:
			// Header lookalikes after resolution are never data.

		default:
			if headerRow >= 0 && i <= headerRow {
				continue // rows above the resolved header carry no data
			}
			if !parser.RowHasData(row, headerMap) {
				continue
			}
			if rec := parser.BuildRecord(row, headerMap, address, fileSourceID); rec != nil {
				records = append(records, *rec)
			}
		}
	}

	return records
}

// resolveHeaders scans for the first row whose fuzzy mapping passes the
// plausibility rules. It returns the map and the row's slice position, or
// (nil, -1) when the whole sheet has no acceptable header row.
func resolveHeaders(rows []models.Row) (models.HeaderMap, int) {
	for i, row := range rows {
		if parser.Classify(row) != parser.KindColumnHeader {
			continue
		}
		hm := parser.MapHeaders(row)
		if parser.ValidateHeaderMap(hm) {
			return hm, i
		}
	}
	return nil, -1
}

// sampleGrid renders the first n rows as a position-aligned text grid for
// the column suggester, with empty strings for missing cells.
func sampleGrid(rows []models.Row, n int) [][]string {
	if len(rows) > n {
		rows = rows[:n]
	}

	width := 0
	for _, row := range rows {
		for col := range row.Cells {
			if col > width {
				width = col
			}
		}
	}

	grid := make([][]string, 0, len(rows))
	for _, row := range rows {
		line := make([]string, width)
		for col, cell := range row.Cells {
			line[col-1] = cell.Text()
		}
		grid = append(grid, line)
	}
	return grid
}
