package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/roomsheet/roomsheet-go/pkg/roomsheet/models"
)

// RowKind is the classification of a worksheet row.
type RowKind int

const (
	// KindData is a candidate data row.
	KindData RowKind = iota
	// KindSectionHeader is an address banner applying to following rows.
	KindSectionHeader
	// KindColumnHeader names the schema meaning of each column.
	KindColumnHeader
)

// maxSectionCells is the largest number of non-empty cells an address banner
// row can have; data rows tend to span many columns.
const maxSectionCells = 5

// maxHeaderCellLen is the longest cell text (in runes) still considered when
// testing header keywords; headers are short.
const maxHeaderCellLen = 50

// fileTitlePhrases mark document titles that must not be read as addresses.
var fileTitlePhrases = []string{"nguồn hàng", "bảng hàng"}

// addressPrefixes introduce an address banner row.
var addressPrefixes = []string{"địa chỉ", "nhà số", "số "}

// leadingNumberRe matches house numbers like "12/34 ..." or "12 Nguyen Trai".
var leadingNumberRe = regexp.MustCompile(`^[0-9]+(/|\s)`)

// addressLabelRe strips the leading address label when extracting the banner
// text.
var addressLabelRe = regexp.MustCompile(`(?i)^địa chỉ:?`)

// headerFamilies are the independent keyword families used to recognize a
// column-header row. A row qualifies when at least two distinct families
// match across its cells.
var headerFamilies = [][]string{
	{"phòng", "mã"},              // room
	{"giá", "cọc", "tiền"},       // price
	{"ảnh"},                      // image
	{"trạng thái", "tình trạng"}, // status
	{"ghi chú"},                  // notes
}

// minHeaderFamilies is the number of distinct keyword families a row must
// match to qualify as a column header.
const minHeaderFamilies = 2

// Classify decides what a row is. The tests run in strict priority order:
// section header first, then column header, otherwise data candidate.
func Classify(row models.Row) RowKind {
	if IsSectionHeader(row) {
		return KindSectionHeader
	}
	if IsColumnHeader(row) {
		return KindColumnHeader
	}
	return KindData
}

// IsSectionHeader reports whether the row announces a new property address.
func IsSectionHeader(row models.Row) bool {
	first, ok := row.First()
	if !ok {
		return false
	}
	if row.CellCount() > maxSectionCells {
		return false
	}

	firstVal := strings.TrimSpace(first.Text())
	lower := strings.ToLower(firstVal)

	for _, phrase := range fileTitlePhrases {
		if strings.Contains(lower, phrase) {
			return false
		}
	}

	for _, prefix := range addressPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	if leadingNumberRe.MatchString(firstVal) {
		return true
	}

	// Banner rows that carry no address wording are still recognizable by
	// their shape: a merged leading cell holding a short standalone text.
	if row.FirstCellMerged &&
		row.CellCount() <= 2 &&
		utf8.RuneCountInString(firstVal) > 5 &&
		!strings.Contains(lower, "stt") {
		return true
	}

	return false
}

// IsColumnHeader reports whether at least two distinct keyword families match
// across the row's cells. A single cell may contribute to several families.
func IsColumnHeader(row models.Row) bool {
	matched := make([]bool, len(headerFamilies))
	for _, col := range row.Columns() {
		text := strings.ToLower(row.Cells[col].Text())
		if utf8.RuneCountInString(text) > maxHeaderCellLen {
			continue
		}
		for i, family := range headerFamilies {
			for _, keyword := range family {
				if strings.Contains(text, keyword) {
					matched[i] = true
					break
				}
			}
		}
	}

	families := 0
	for _, m := range matched {
		if m {
			families++
		}
	}
	return families >= minHeaderFamilies
}

// ExtractAddress joins the banner row's cell texts and strips the leading
// address label.
func ExtractAddress(row models.Row) string {
	parts := make([]string, 0, row.CellCount())
	for _, col := range row.Columns() {
		parts = append(parts, row.Cells[col].Text())
	}
	joined := strings.Join(parts, " ")
	return strings.TrimSpace(addressLabelRe.ReplaceAllString(joined, ""))
}
