// Package parser implements the row-level heuristics of the extraction
// engine: sheet loading, row classification, fuzzy column mapping, and
// record building.
package parser

import (
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/roomsheet/roomsheet-go/pkg/roomsheet/models"
)

// LoadSheet reads the visible, non-empty rows of a sheet.
// Hidden rows are dropped here so they never reach classification.
func LoadSheet(f *excelize.File, sheetName string) ([]models.Row, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}

	merges, err := f.GetMergeCells(sheetName)
	if err != nil {
		merges = nil
	}

	var result []models.Row
	for rowIdx, row := range rows {
		rowNum := rowIdx + 1 // 1-based row index
		if visible, err := f.GetRowVisible(sheetName, rowNum); err == nil && !visible {
			continue
		}

		cells := make(map[int]models.CellValue)
		for colIdx, cellValue := range row {
			if cellValue == "" {
				continue
			}
			cells[colIdx+1] = readCell(f, sheetName, colIdx+1, rowNum, cellValue)
		}
		if len(cells) == 0 {
			continue
		}

		result = append(result, models.Row{
			Index:           rowNum,
			Cells:           cells,
			FirstCellMerged: cellMerged(merges, 1, rowNum),
		})
	}

	return result, nil
}

// readCell wraps a raw cell string into the tagged CellValue variant.
func readCell(f *excelize.File, sheetName string, col, row int, text string) models.CellValue {
	cellName, err := excelize.CoordinatesToCellName(col, row)
	if err == nil {
		if hasLink, target, err := f.GetCellHyperLink(sheetName, cellName); err == nil && hasLink {
			return models.HyperlinkCell(text, target)
		}
		if runs, err := f.GetCellRichText(sheetName, cellName); err == nil && len(runs) > 1 {
			return models.RichTextCell(text)
		}
	}
	if n, err := strconv.ParseFloat(text, 64); err == nil {
		return models.NumberCell(n, text)
	}
	return models.TextCell(text)
}

// cellMerged reports whether the cell at (col, row) lies inside any merged
// region of the sheet.
func cellMerged(merges []excelize.MergeCell, col, row int) bool {
	for _, m := range merges {
		c1, r1, err := excelize.CellNameToCoordinates(m.GetStartAxis())
		if err != nil {
			continue
		}
		c2, r2, err := excelize.CellNameToCoordinates(m.GetEndAxis())
		if err != nil {
			continue
		}
		if col >= c1 && col <= c2 && row >= r1 && row <= r2 {
			return true
		}
	}
	return false
}
