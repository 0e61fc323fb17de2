package xlsx

import (
	"archive/zip"
	"encoding/csv"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/eac-lang/eac/internal/interp"
)

// export implements excel.export(source, path): CSV when path ends in
// ".csv", otherwise a minimal single-sheet XLSX-equivalent container.
// Empty or non-table sources are no-ops.
func (a *Adapter) export(args map[string]any) (any, error) {
	table, ok := args["source"].(interp.Table)
	if !ok || len(table) == 0 {
		return nil, nil
	}
	path, _ := args["path"].(string)
	if path == "" {
		return nil, fmt.Errorf("export path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && filepath.Dir(path) != "." {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}

	headers := headerOrder(table)
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return nil, writeCSV(path, headers, table)
	}
	return nil, writeMinimalXLSX(path, headers, table)
}

// headerOrder returns the first row's keys in a stable order so repeated
// exports of the same data produce byte-identical output.
func headerOrder(table interp.Table) []string {
	if len(table) == 0 {
		return nil
	}
	headers := make([]string, 0, len(table[0]))
	for k := range table[0] {
		headers = append(headers, k)
	}
	sort.Strings(headers)
	return headers
}

func writeCSV(path string, headers []string, table interp.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(headers); err != nil {
		return err
	}
	for _, row := range table {
		record := make([]string, len(headers))
		for i, h := range headers {
			record[i] = cellString(row[h])
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func cellString(v any) string {
	if v == nil {
		return ""
	}
	if m, ok := v.(interp.Money); ok {
		return m.Currency + " " + m.Amount
	}
	return fmt.Sprintf("%v", v)
}

// writeMinimalXLSX writes a single-sheet workbook using the same
// "zip of XML parts" structure real XLSX files use, trimmed to the parts
// a reader needs for one unstyled sheet with inline strings. This adapter
// is a stub tool, not a general-purpose XLSX writer.
func writeMinimalXLSX(path string, headers []string, table interp.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	defer zw.Close()

	parts := map[string]string{
		"[Content_Types].xml": contentTypesXML,
		"_rels/.rels":         rootRelsXML,
		"xl/workbook.xml":     workbookXML,
		"xl/_rels/workbook.xml.rels": workbookRelsXML,
		"xl/worksheets/sheet1.xml":   sheetXML(headers, table),
	}
	names := make([]string, 0, len(parts))
	for name := range parts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			return err
		}
		if _, err := w.Write([]byte(parts[name])); err != nil {
			return err
		}
	}
	return nil
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/xl/workbook.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"/><Override PartName="/xl/worksheets/sheet1.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"/></Types>`

const rootRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="xl/workbook.xml"/></Relationships>`

const workbookXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheets><sheet name="Sheet1" sheetId="1" r:id="rId1" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"/></sheets></workbook>`

const workbookRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet1.xml"/></Relationships>`

// sheetXML renders header + data rows as inline-string/number cells.
func sheetXML(headers []string, table interp.Table) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>`)

	writeRow := func(values []string) {
		b.WriteString("<row>")
		for _, v := range values {
			b.WriteString(`<c t="inlineStr"><is><t>`)
			xml.EscapeText(&b, []byte(v))
			b.WriteString(`</t></is></c>`)
		}
		b.WriteString("</row>")
	}

	writeRow(headers)
	for _, row := range table {
		values := make([]string, len(headers))
		for i, h := range headers {
			values[i] = cellString(row[h])
		}
		writeRow(values)
	}
	b.WriteString(`</sheetData></worksheet>`)
	return b.String()
}
