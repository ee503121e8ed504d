package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/roomsheet/roomsheet-go/pkg/roomsheet/models"
)

// headerRule binds a keyword substring to a schema field. Rules are tested
// in order and the first match wins, so more specific phrases must precede
// the generic ones they contain ("loại phòng" before "phòng").
type headerRule struct {
	keyword string
	field   models.Field
}

var headerRules = []headerRule{
	{"số tt", models.FieldIgnore},
	{"stt", models.FieldIgnore},
	{"số phòng", models.FieldRoom},
	{"mã phòng", models.FieldRoom},
	{"loại phòng", models.FieldRoomType},
	{"phòng", models.FieldRoom},
	{"giá tiền", models.FieldPrice},
	{"đơn giá", models.FieldPrice},
	{"tiền thuê", models.FieldPrice},
	{"giá", models.FieldPrice},
	{"trạng thái", models.FieldStatus},
	{"tình trạng", models.FieldStatus},
	{"link ảnh", models.FieldImage},
	{"hình ảnh", models.FieldImage},
	{"ảnh", models.FieldImage},
	{"nội thất", models.FieldFurniture},
	{"đồ đạc", models.FieldFurniture},
	{"dịch vụ", models.FieldServices},
	{"tiện ích", models.FieldServices},
	{"sdt", models.FieldPhone},
	{"liên hệ", models.FieldPhone},
	{"quản lý", models.FieldPhone},
	{"chủ nhà", models.FieldPhone},
	{"ghi chú", models.FieldNotes},
	{"note", models.FieldNotes},
	{"mã", models.FieldRoom},
}

// maxColumnsPerField rejects candidates where one field is claimed by too
// many columns, which usually means a calendar or schedule grid.
const maxColumnsPerField = 3

// minMappedFields is the smallest number of distinct fields a plausible
// header row maps.
const minMappedFields = 2

// MapHeaders maps column positions to schema fields using the ordered
// keyword rule list. Columns matching an ignore rule stay unmapped.
func MapHeaders(row models.Row) models.HeaderMap {
	hm := make(models.HeaderMap)
	for _, col := range row.Columns() {
		text := strings.ToLower(strings.TrimSpace(row.Cells[col].Text()))
		if text == "" || utf8.RuneCountInString(text) > maxHeaderCellLen {
			continue
		}
		for _, rule := range headerRules {
			if strings.Contains(text, rule.keyword) {
				if rule.field != models.FieldIgnore {
					hm[col] = rule.field
				}
				break
			}
		}
	}
	return hm
}

// ValidateHeaderMap applies the plausibility rules for a header candidate:
// at least two distinct fields, no field claimed by more than three columns,
// and both the price and room anchors present.
func ValidateHeaderMap(hm models.HeaderMap) bool {
	counts := hm.Fields()
	if len(counts) < minMappedFields {
		return false
	}
	for _, n := range counts {
		if n > maxColumnsPerField {
			return false
		}
	}
	_, hasPrice := counts[models.FieldPrice]
	_, hasRoom := counts[models.FieldRoom]
	return hasPrice && hasRoom
}
