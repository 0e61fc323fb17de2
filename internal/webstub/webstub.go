// Package webstub implements the web/ERP automation tool adapter for
// UseSystem, LogIn, LogOut, GoToPage, EnterField, ClickElement, and
// ExtractField. A real browser-driven backend is out of scope; this
// adapter tracks session state (current system, login, page, entered
// field values) in memory and gives ExtractField's "element" mode a
// genuine, fixture-backed implementation using golang.org/x/net/html,
// rather than a no-op that always returns "".
package webstub

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/eac-lang/eac/internal/interp"
)

// Adapter owns the session state one program run accumulates: which
// system/credential is active, the current page, values entered into
// fields, and the fixture pages registered ahead of time — no process-wide
// state, mirroring the xlsx adapter's per-run ownership.
type Adapter struct {
	mu sync.Mutex

	pages map[string]string // page name -> fixture HTML document

	system       string
	systemVer    string
	loggedIn     bool
	credential   string
	currentPage  string
	fieldValues  map[string]any // field selector -> last entered value
	clickedNodes []string
}

// NewAdapter returns an Adapter with no pages registered and no session
// state.
func NewAdapter() *Adapter {
	return &Adapter{
		pages:       make(map[string]string),
		fieldValues: make(map[string]any),
	}
}

// LoadPage registers html as the fixture document GoToPage(name) navigates
// to, simulating a real browser navigation without a live target system.
func (a *Adapter) LoadPage(name, htmlDoc string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pages[name] = htmlDoc
}

// Register binds every op this adapter implements into reg.
func (a *Adapter) Register(reg *interp.Registry) {
	reg.Register("web.use_system", a.useSystem)
	reg.Register("web.login", a.login)
	reg.Register("web.logout", a.logout)
	reg.Register("web.goto_page", a.gotoPage)
	reg.Register("web.enter", a.enter)
	reg.Register("web.click", a.click)
	reg.Register("web.extract", a.extract)
}

func (a *Adapter) useSystem(args map[string]any) (any, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.system, _ = args["name"].(string)
	a.systemVer, _ = args["version"].(string)
	return nil, nil
}

func (a *Adapter) login(args map[string]any) (any, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.system == "" {
		return nil, fmt.Errorf("web.login: no system configured; call Use system first")
	}
	a.credential, _ = args["credential"].(string)
	a.loggedIn = true
	return nil, nil
}

func (a *Adapter) logout(args map[string]any) (any, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.loggedIn = false
	a.credential = ""
	a.currentPage = ""
	return nil, nil
}

func (a *Adapter) gotoPage(args map[string]any) (any, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.loggedIn {
		return nil, fmt.Errorf("web.goto_page: not logged in")
	}
	page, _ := args["page"].(string)
	if _, ok := a.pages[page]; !ok {
		return nil, fmt.Errorf("web.goto_page: page %q has no fixture registered", page)
	}
	a.currentPage = page
	return nil, nil
}

func (a *Adapter) enter(args map[string]any) (any, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	field, _ := args["field"].(string)
	a.fieldValues[field] = args["value"]
	return nil, nil
}

func (a *Adapter) click(args map[string]any) (any, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	element, _ := args["element"].(string)
	a.clickedNodes = append(a.clickedNodes, element)
	return nil, nil
}

// extract implements web.extract(mode, selector): mode "field" reads back
// the last value entered into that field selector via EnterField; mode
// "element" parses the current page's fixture HTML and returns the text
// content of the element whose id matches selector, a CSS-less tag+id
// walk (no cascading selector grammar).
func (a *Adapter) extract(args map[string]any) (any, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	mode, _ := args["mode"].(string)
	selector, _ := args["selector"].(string)

	switch mode {
	case "field":
		v, ok := a.fieldValues[selector]
		if !ok {
			return "", nil
		}
		return fmt.Sprintf("%v", v), nil
	case "element":
		doc, ok := a.pages[a.currentPage]
		if !ok {
			return nil, fmt.Errorf("web.extract: no page navigated to yet")
		}
		text, found := findByID(doc, selector)
		if !found {
			return nil, fmt.Errorf("web.extract: element %q not found on page %q", selector, a.currentPage)
		}
		return text, nil
	default:
		return nil, fmt.Errorf("web.extract: unknown mode %q", mode)
	}
}

// findByID walks the parsed HTML tree for a node with the given id
// attribute and returns its concatenated text content.
func findByID(document, id string) (string, bool) {
	root, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return "", false
	}

	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode {
			for _, attr := range n.Attr {
				if attr.Key == "id" && attr.Val == id {
					found = n
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
			if found != nil {
				return
			}
		}
	}
	walk(root)
	if found == nil {
		return "", false
	}
	return strings.TrimSpace(textContent(found)), true
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}
