package parser

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/roomsheet/roomsheet-go/pkg/roomsheet/models"
)

// maxNoteCellLen caps the length (in runes) of unmapped cell text collected
// into the notes field, so long prose cannot flood a record.
const maxNoteCellLen = 100

// noteSeparator joins unmapped cell texts in the notes field.
const noteSeparator = "; "

// idMaxLen is the length the derived identifier is truncated to.
const idMaxLen = 30

// millionToken abbreviates millions of dong in price cells ("5.5tr").
const millionToken = "tr"

// depositMarkers flag a status cell as deposited.
var depositMarkers = []string{"cọc", "đã"}

// RowHasData reports whether at least one column present in the header map
// holds a non-empty value. Rows failing this gate are never offered to the
// builder.
func RowHasData(row models.Row, hm models.HeaderMap) bool {
	for col := range hm {
		if cell, ok := row.Cells[col]; ok && strings.TrimSpace(cell.Text()) != "" {
			return true
		}
	}
	return false
}

// BuildRecord turns one data row into a normalized RoomRecord, or nil when
// the row cannot form a valid record: no mapped column produced data, the
// room label is empty, or no address is known. The address comes from the
// active section banner; a mapped address column overrides it per row.
func BuildRecord(row models.Row, hm models.HeaderMap, address, fileSourceID string) *models.RoomRecord {
	rec := &models.RoomRecord{
		DiaChi:       address,
		FileSourceID: fileSourceID,
	}

	var notes []string
	var statusRaw string
	hasData := false

	for _, col := range row.Columns() {
		cell := row.Cells[col]
		field, mapped := hm[col]
		if !mapped {
			text := cell.Text()
			if text != "" && utf8.RuneCountInString(text) < maxNoteCellLen {
				notes = append(notes, text)
			}
			continue
		}

		text := strings.TrimSpace(cell.Text())
		switch field {
		case models.FieldAddress:
			if text != "" {
				rec.DiaChi = text
			}
		case models.FieldPrice:
			rec.GiaTien = NormalizePrice(cell)
		case models.FieldRoom:
			rec.SoPhong = text
		case models.FieldStatus:
			statusRaw = text
		case models.FieldRoomType:
			rec.LoaiPhong = text
		case models.FieldImage:
			rec.LinkAnh = text
		case models.FieldFurniture:
			rec.NoiThat = text
		case models.FieldServices:
			rec.DichVu = text
		case models.FieldPhone:
			rec.SdtQuanLy = text
		case models.FieldNotes:
			rec.GhiChu = text
		}
		hasData = true
	}

	if !hasData {
		return nil
	}
	if rec.SoPhong == "" {
		return nil
	}
	if rec.DiaChi == "" {
		return nil
	}

	if len(notes) > 0 {
		if rec.GhiChu != "" {
			notes = append([]string{rec.GhiChu}, notes...)
		}
		rec.GhiChu = strings.Join(notes, noteSeparator)
	}

	rec.TrangThai = NormalizeStatus(statusRaw)
	rec.IDPhong = DeriveID(fileSourceID, rec.DiaChi, rec.SoPhong)
	return rec
}

// NormalizePrice converts a price cell to a non-negative amount in dong.
// Numeric cells pass through unchanged; text is stripped down to digits and
// the decimal point, with the million abbreviation applied as a multiplier.
// Unparseable input yields 0.
func NormalizePrice(cell models.CellValue) float64 {
	if cell.IsNumber() {
		return cell.Number
	}

	s := strings.ToLower(strings.TrimSpace(cell.Text()))
	if s == "" {
		return 0
	}

	multiplier := 1.0
	if strings.Contains(s, millionToken) {
		multiplier = 1_000_000
		s = strings.ReplaceAll(s, millionToken, "")
	}

	clean := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, s)

	n, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0
	}
	return n * multiplier
}

// NormalizeStatus maps free status text onto the two-value enum. Any text
// carrying a deposit marker means deposited; everything else, including an
// absent status cell, means available.
func NormalizeStatus(raw string) models.Status {
	lower := strings.ToLower(raw)
	for _, marker := range depositMarkers {
		if strings.Contains(lower, marker) {
			return models.StatusDeposited
		}
	}
	return models.StatusAvailable
}

// DeriveID derives the record identifier from file provenance, address, and
// room label. It is deterministic but not collision-free: the concatenation
// is stripped to alphanumerics and truncated.
func DeriveID(fileSourceID, address, room string) string {
	raw := fileSourceID + "_" + address + "_" + room
	id := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return r
		}
		return -1
	}, raw)
	if len(id) > idMaxLen {
		id = id[:idMaxLen]
	}
	return id
}
