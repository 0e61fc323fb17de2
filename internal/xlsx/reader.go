package xlsx

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/eac-lang/eac/internal/interp"
)

// normalizeRange turns the concatenated form "A1G999" into "A1:G999"
// (a colon form passes through unchanged).
func normalizeRange(spec string) string {
	s := strings.ToUpper(strings.TrimSpace(spec))
	if strings.Contains(s, ":") {
		return s
	}
	if len(s) >= 2 && unicode.IsLetter(rune(s[0])) && unicode.IsDigit(rune(s[1])) {
		i := 1
		for i < len(s) && unicode.IsDigit(rune(s[i])) {
			i++
		}
		if i < len(s) {
			return s[:i] + ":" + s[i:]
		}
	}
	return s
}

// readTable implements excel.read_table(workbook, sheet, range): the
// workbook handle resolves the Fixture and the sheet's first row becomes
// headers (blanks replaced by "_c{index}"). The range is canonicalized but
// neither checked nor applied: the whole sheet is read.
func (a *Adapter) readTable(args map[string]any) (any, error) {
	handle, _ := args["workbook"].(string)
	sheetName, _ := args["sheet"].(string)
	rangeSpec, _ := args["range"].(string)
	_ = normalizeRange(rangeSpec) // not applied; this fixture adapter treats the sheet as pre-scoped to it.

	a.mu.Lock()
	fx, ok := a.workbooks[handle]
	a.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no workbook open for handle %q; use Open workbook first", handle)
	}

	sheet, ok := fx.Sheets[sheetName]
	if !ok {
		return nil, fmt.Errorf("sheet %q not found", sheetName)
	}
	if len(sheet) == 0 {
		return interp.Table{}, nil
	}

	headers := make([]string, len(sheet[0]))
	for i, cell := range sheet[0] {
		s := fmt.Sprintf("%v", cell)
		if cell == nil || s == "" {
			s = fmt.Sprintf("_c%d", i)
		}
		headers[i] = s
	}

	var table interp.Table
	for _, row := range sheet[1:] {
		r := make(interp.Row, len(headers))
		for i, h := range headers {
			if i < len(row) {
				r[h] = row[i]
			} else {
				r[h] = nil
			}
		}
		table = append(table, r)
	}
	return table, nil
}
