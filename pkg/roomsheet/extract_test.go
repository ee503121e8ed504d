package roomsheet

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/roomsheet/roomsheet-go/pkg/roomsheet/models"
)

// saveWorkbook writes the fixture to a temp file and returns its path.
func saveWorkbook(t *testing.T, f *excelize.File) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

// listingSheet fills a sheet with a banner, a header row, and data rows.
func listingSheet(t *testing.T, f *excelize.File, sheet string) {
	t.Helper()
	require.NoError(t, f.SetCellValue(sheet, "A1", "Địa chỉ: 123 Main"))
	require.NoError(t, f.SetCellValue(sheet, "A2", "Phòng"))
	require.NoError(t, f.SetCellValue(sheet, "B2", "Giá"))
	require.NoError(t, f.SetCellValue(sheet, "C2", "Trạng thái"))
	require.NoError(t, f.SetCellValue(sheet, "A3", "A1"))
	require.NoError(t, f.SetCellValue(sheet, "B3", "5.5tr"))
	require.NoError(t, f.SetCellValue(sheet, "C3", "Đã cọc"))
}

func TestProcessFileEndToEnd(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	listingSheet(t, f, "Sheet1")
	require.NoError(t, f.SetCellValue("Sheet1", "A4", "B2"))
	require.NoError(t, f.SetCellValue("Sheet1", "B4", 3500000))
	require.NoError(t, f.SetCellValue("Sheet1", "C4", "Còn trống"))

	engine := NewEngine()
	records, err := engine.ProcessFile(context.Background(), saveWorkbook(t, f), "data_1.xlsx")
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "123 Main", first.DiaChi)
	assert.Equal(t, "A1", first.SoPhong)
	assert.Equal(t, float64(5_500_000), first.GiaTien)
	assert.Equal(t, models.StatusDeposited, first.TrangThai)
	assert.Equal(t, "data_1.xlsx", first.FileSourceID)

	second := records[1]
	assert.Equal(t, "B2", second.SoPhong)
	assert.Equal(t, float64(3_500_000), second.GiaTien)
	assert.Equal(t, models.StatusAvailable, second.TrangThai)
}

func TestProcessFileAddressPropagation(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Sheet1"
	require.NoError(t, f.SetCellValue(sheet, "A1", "Địa chỉ: 12 Hàng Bài"))
	require.NoError(t, f.SetCellValue(sheet, "A2", "Phòng"))
	require.NoError(t, f.SetCellValue(sheet, "B2", "Giá"))
	require.NoError(t, f.SetCellValue(sheet, "A3", "P1"))
	require.NoError(t, f.SetCellValue(sheet, "B3", "3tr"))
	// A new banner replaces the address for all following rows.
	require.NoError(t, f.SetCellValue(sheet, "A4", "Địa chỉ: 45 Lê Lợi"))
	require.NoError(t, f.SetCellValue(sheet, "A5", "P1"))
	require.NoError(t, f.SetCellValue(sheet, "B5", "4tr"))

	engine := NewEngine()
	records, err := engine.ProcessFile(context.Background(), saveWorkbook(t, f), "f.xlsx")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "12 Hàng Bài", records[0].DiaChi)
	assert.Equal(t, "45 Lê Lợi", records[1].DiaChi)
	assert.NotEqual(t, records[0].IDPhong, records[1].IDPhong,
		"same room under different addresses gets different identifiers")
}

func TestProcessFileSameRoomAcrossSheets(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	listingSheet(t, f, "Sheet1")
	_, err := f.NewSheet("Sheet2")
	require.NoError(t, err)
	listingSheet(t, f, "Sheet2")

	engine := NewEngine()
	records, err := engine.ProcessFile(context.Background(), saveWorkbook(t, f), "data_1.xlsx")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, records[0].IDPhong, records[1].IDPhong,
		"identifier is a pure function of (source, address, room)")
}

// recordingSuggester returns a canned mapping and records invocations.
type recordingSuggester struct {
	mapping models.HeaderMap
	calls   [][][]string
}

func (r *recordingSuggester) MapColumns(_ context.Context, rows [][]string) models.HeaderMap {
	r.calls = append(r.calls, rows)
	return r.mapping
}

func TestProcessFileSuggesterNotCalledWhenRulesSucceed(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	listingSheet(t, f, "Sheet1")

	sug := &recordingSuggester{mapping: models.HeaderMap{}}
	engine := NewEngine(WithColumnSuggester(sug))
	records, err := engine.ProcessFile(context.Background(), saveWorkbook(t, f), "f.xlsx")
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Empty(t, sug.calls, "suggester must only run when the rule scan fails")
}

func TestProcessFileSuggesterFallback(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Sheet1"
	// No recognizable header row anywhere; only a banner and bare data.
	require.NoError(t, f.SetCellValue(sheet, "A1", "Địa chỉ: 123 Main"))
	require.NoError(t, f.SetCellValue(sheet, "A2", "P101"))
	require.NoError(t, f.SetCellValue(sheet, "C2", "4.5tr"))

	sug := &recordingSuggester{mapping: models.HeaderMap{
		1: models.FieldRoom,
		3: models.FieldPrice,
	}}
	engine := NewEngine(WithColumnSuggester(sug))
	records, err := engine.ProcessFile(context.Background(), saveWorkbook(t, f), "f.xlsx")
	require.NoError(t, err)

	require.Len(t, sug.calls, 1)
	sample := sug.calls[0]
	require.Len(t, sample, 2)
	assert.Equal(t, []string{"Địa chỉ: 123 Main", "", ""}, sample[0],
		"sample rows are aligned by position with empty strings for gaps")

	require.Len(t, records, 1)
	assert.Equal(t, "P101", records[0].SoPhong)
	assert.Equal(t, float64(4_500_000), records[0].GiaTien)
	assert.Equal(t, "123 Main", records[0].DiaChi)
}

func TestProcessFileRepeatedHeaderRowIsNotData(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Sheet1"
	require.NoError(t, f.SetCellValue(sheet, "A1", "Địa chỉ: 123 Main"))
	require.NoError(t, f.SetCellValue(sheet, "A2", "Phòng"))
	require.NoError(t, f.SetCellValue(sheet, "B2", "Giá"))
	require.NoError(t, f.SetCellValue(sheet, "A3", "P1"))
	require.NoError(t, f.SetCellValue(sheet, "B3", "3tr"))
	// A header lookalike repeats mid-sheet with the columns swapped. It must
	// yield no record and must not displace the resolved mapping.
	require.NoError(t, f.SetCellValue(sheet, "A4", "Giá"))
	require.NoError(t, f.SetCellValue(sheet, "B4", "Phòng"))
	require.NoError(t, f.SetCellValue(sheet, "A5", "P2"))
	require.NoError(t, f.SetCellValue(sheet, "B5", "4tr"))

	engine := NewEngine()
	records, err := engine.ProcessFile(context.Background(), saveWorkbook(t, f), "f.xlsx")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "P1", records[0].SoPhong)
	assert.Equal(t, "P2", records[1].SoPhong, "rows after the lookalike still follow the first mapping")
	assert.Equal(t, float64(4_000_000), records[1].GiaTien)
}

func TestProcessFileSuggesterAddressColumn(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Sheet1"
	// No banners at all: the address lives in a column, as the suggester
	// reports it.
	require.NoError(t, f.SetCellValue(sheet, "A1", "Ngõ 5 Hàng Bạc"))
	require.NoError(t, f.SetCellValue(sheet, "B1", "P1"))
	require.NoError(t, f.SetCellValue(sheet, "C1", "4tr"))
	require.NoError(t, f.SetCellValue(sheet, "A2", "Ngách 12 Cầu Gỗ"))
	require.NoError(t, f.SetCellValue(sheet, "B2", "P2"))
	require.NoError(t, f.SetCellValue(sheet, "C2", "5tr"))

	sug := &recordingSuggester{mapping: models.HeaderMap{
		1: models.FieldAddress,
		2: models.FieldRoom,
		3: models.FieldPrice,
	}}
	engine := NewEngine(WithColumnSuggester(sug))
	records, err := engine.ProcessFile(context.Background(), saveWorkbook(t, f), "f.xlsx")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Ngõ 5 Hàng Bạc", records[0].DiaChi)
	assert.Equal(t, "Ngách 12 Cầu Gỗ", records[1].DiaChi)
	assert.NotEqual(t, records[0].IDPhong, records[1].IDPhong)
}

func TestProcessFileSheetSkippedWhenHeadersUnresolved(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Địa chỉ: 123 Main"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "P101"))

	// No suggester configured: the sheet yields nothing.
	engine := NewEngine()
	records, err := engine.ProcessFile(context.Background(), saveWorkbook(t, f), "f.xlsx")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestProcessFileSkipsInvisibleSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	listingSheet(t, f, "Sheet1")
	_, err := f.NewSheet("Hidden")
	require.NoError(t, err)
	listingSheet(t, f, "Hidden")
	require.NoError(t, f.SetSheetVisible("Hidden", false))

	engine := NewEngine()
	records, err := engine.ProcessFile(context.Background(), saveWorkbook(t, f), "f.xlsx")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestProcessFileRowsAboveHeaderAreNotData(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Sheet1"
	require.NoError(t, f.SetCellValue(sheet, "A1", "Địa chỉ: 123 Main"))
	// A data-looking row above the header row must not produce a record.
	require.NoError(t, f.SetCellValue(sheet, "A2", "P999"))
	require.NoError(t, f.SetCellValue(sheet, "B2", "9tr"))
	require.NoError(t, f.SetCellValue(sheet, "A3", "Phòng"))
	require.NoError(t, f.SetCellValue(sheet, "B3", "Giá"))
	require.NoError(t, f.SetCellValue(sheet, "A4", "P1"))
	require.NoError(t, f.SetCellValue(sheet, "B4", "3tr"))

	engine := NewEngine()
	records, err := engine.ProcessFile(context.Background(), saveWorkbook(t, f), "f.xlsx")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "P1", records[0].SoPhong)
}

func TestProcessFileMissingFile(t *testing.T) {
	engine := NewEngine()
	_, err := engine.ProcessFile(context.Background(), "does-not-exist.xlsx", "x")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestProcessReader(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	listingSheet(t, f, "Sheet1")

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	engine := NewEngine()
	records, err := engine.ProcessReader(context.Background(), buf, "upload.xlsx")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "upload.xlsx", records[0].FileSourceID)
}
