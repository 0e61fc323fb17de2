// Package xlsx implements the spreadsheet tool adapter: excel.open_workbook,
// excel.read_table, excel.export, table.add_column, table.filter,
// table.sort.
//
// This adapter keeps no process-wide mutable state: excel.open_workbook
// returns an opaque handle that the interpreter threads through its env,
// and excel.read_table is always called with that handle rather than
// addressing an implicit "current" workbook. Reading real .xlsx files is
// an out-of-scope external concern; this adapter operates on in-memory
// Fixture data registered ahead of time, simulating a workbook open
// without a real file on disk.
package xlsx

import (
	"fmt"
	"sync"

	"github.com/gofrs/uuid"

	"github.com/eac-lang/eac/internal/interp"
)

// Sheet is one worksheet's data, row-major, with the header as row 0.
type Sheet [][]any

// Fixture is the in-memory stand-in for a workbook file: a named set of
// sheets reachable by the path passed to "Open workbook".
type Fixture struct {
	Sheets map[string]Sheet
}

// Adapter owns the workbook handles minted during one or more runs. A
// fresh Adapter should be created per run so workbook handles stay
// owned exclusively by that run.
type Adapter struct {
	mu        sync.Mutex
	fixtures  map[string]Fixture
	workbooks map[string]Fixture
}

// NewAdapter returns an Adapter with no fixtures registered.
func NewAdapter() *Adapter {
	return &Adapter{
		fixtures:  make(map[string]Fixture),
		workbooks: make(map[string]Fixture),
	}
}

// LoadFixture registers fx as what "Open workbook path" yields, simulating
// a real file-open without needing a real XLSX reader library.
func (a *Adapter) LoadFixture(path string, fx Fixture) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fixtures[path] = fx
}

// Register binds every op this adapter implements into reg.
func (a *Adapter) Register(reg *interp.Registry) {
	reg.Register("excel.open_workbook", a.openWorkbook)
	reg.Register("excel.read_table", a.readTable)
	reg.Register("excel.export", a.export)
	reg.Register("table.add_column", a.addColumn)
	reg.Register("table.filter", a.filter)
	reg.Register("table.sort", a.sort)
}

func (a *Adapter) openWorkbook(args map[string]any) (any, error) {
	path, _ := args["path"].(string)
	a.mu.Lock()
	defer a.mu.Unlock()
	fx, ok := a.fixtures[path]
	if !ok {
		return nil, fmt.Errorf("workbook not found: %s", path)
	}
	handle, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("minting workbook handle: %w", err)
	}
	id := handle.String()
	a.workbooks[id] = fx
	return id, nil
}
