package aimap

import (
	"strings"

	"github.com/tyler-sommer/stick"
)

// schemaDescription is the target schema presented to the mapping service.
const schemaDescription = `- dia_chi: Address of the property (string)
- so_phong: Room number or name (string)
- gia_tien: Price (number)
- trang_thai: Status (TRONG or DA_COC)
- link_anh: Image URL (string)
- noi_that: Furniture description (string)
- dich_vu: Service fees description (string)
- sdt_quan_ly: Manager phone number (string)`

// promptTemplate asks for a bare JSON object keyed by 0-based column index.
// Ambiguous columns are omitted by instruction, so the response is already
// confidence-gated.
const promptTemplate = `You are an expert data analyst. I have an Excel file subset below.
Your task is to identify which column index (0-based) corresponds to my target schema fields.

Target Schema:
{{ schema }}

Excel Data (Pipe separated):
{{ data }}

Instructions:
1. Analyze the header row (if present) and data rows.
2. Return a JSON object where keys are the column index (as string) and values are the schema field name.
3. Only include columns you are confident about.
4. If a field is derived from multiple columns or unclear, omit it.
5. Return ONLY the JSON object, no markdown formatting.

Example Output:
{"0": "dia_chi", "3": "so_phong", "4": "gia_tien"}`

// buildPrompt renders the mapping request for the given sample rows.
func buildPrompt(rows [][]string) (string, error) {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, strings.Join(row, "|"))
	}

	env := stick.New(nil)
	var out strings.Builder
	err := env.Execute(promptTemplate, &out, map[string]stick.Value{
		"schema": schemaDescription,
		"data":   strings.Join(lines, "\n"),
	})
	if err != nil {
		return "", err
	}
	return out.String(), nil
}
