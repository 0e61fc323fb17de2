package xlsx

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fixtureDocument is the on-disk shape of a workbook fixture file: one
// workbook path mapping to named sheets, each a row-major grid with the
// header as the first row — matching sqltest/fixture.go's "test fixtures
// as YAML" idiom, adapted from SQL row fixtures to workbook sheets.
type fixtureDocument struct {
	Workbooks map[string]map[string][][]any `yaml:"workbooks"`
}

// LoadFixtureYAML reads a fixture document and registers every workbook it
// declares onto adapter, so tests can declare workbook data as YAML instead
// of hand-building Fixture literals.
func LoadFixtureYAML(adapter *Adapter, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading fixture %s: %w", path, err)
	}
	var doc fixtureDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing fixture %s: %w", path, err)
	}
	for workbookPath, sheets := range doc.Workbooks {
		fx := Fixture{Sheets: make(map[string]Sheet, len(sheets))}
		for name, rows := range sheets {
			sheet := make(Sheet, len(rows))
			for i, row := range rows {
				sheet[i] = row
			}
			fx.Sheets[name] = sheet
		}
		adapter.LoadFixture(workbookPath, fx)
	}
	return nil
}
