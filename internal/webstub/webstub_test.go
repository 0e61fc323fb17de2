package webstub_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eac-lang/eac/internal/interp"
	"github.com/eac-lang/eac/internal/webstub"
)

func TestFullSessionExtractsFieldAndElement(t *testing.T) {
	adapter := webstub.NewAdapter()
	adapter.LoadPage("Invoice", `<html><body>
		<div id="status">Approved</div>
		<span id="total">1234.56</span>
	</body></html>`)
	reg := interp.NewRegistry()
	adapter.Register(reg)

	_, err := reg.Call("web.use_system", map[string]any{"name": "SAP-Portal", "version": "2026.1"})
	require.NoError(t, err)
	_, err = reg.Call("web.login", map[string]any{"credential": "svc-account"})
	require.NoError(t, err)
	_, err = reg.Call("web.goto_page", map[string]any{"page": "Invoice"})
	require.NoError(t, err)
	_, err = reg.Call("web.enter", map[string]any{"field": "comment", "value": "looks good"})
	require.NoError(t, err)
	_, err = reg.Call("web.click", map[string]any{"element": "submit-button"})
	require.NoError(t, err)

	status, err := reg.Call("web.extract", map[string]any{"mode": "element", "selector": "status"})
	require.NoError(t, err)
	assert.Equal(t, "Approved", status)

	total, err := reg.Call("web.extract", map[string]any{"mode": "element", "selector": "total"})
	require.NoError(t, err)
	assert.Equal(t, "1234.56", total)

	comment, err := reg.Call("web.extract", map[string]any{"mode": "field", "selector": "comment"})
	require.NoError(t, err)
	assert.Equal(t, "looks good", comment)

	_, err = reg.Call("web.logout", map[string]any{})
	require.NoError(t, err)
}

func TestGotoPageRequiresLogin(t *testing.T) {
	adapter := webstub.NewAdapter()
	adapter.LoadPage("Home", `<html><body></body></html>`)
	reg := interp.NewRegistry()
	adapter.Register(reg)

	_, err := reg.Call("web.goto_page", map[string]any{"page": "Home"})
	assert.Error(t, err)
}

func TestExtractUnknownElementErrors(t *testing.T) {
	adapter := webstub.NewAdapter()
	adapter.LoadPage("Home", `<html><body><div id="a">x</div></body></html>`)
	reg := interp.NewRegistry()
	adapter.Register(reg)

	_, err := reg.Call("web.use_system", map[string]any{"name": "sys", "version": "1"})
	require.NoError(t, err)
	_, err = reg.Call("web.login", map[string]any{"credential": "c"})
	require.NoError(t, err)
	_, err = reg.Call("web.goto_page", map[string]any{"page": "Home"})
	require.NoError(t, err)

	_, err = reg.Call("web.extract", map[string]any{"mode": "element", "selector": "missing"})
	assert.Error(t, err)
}
