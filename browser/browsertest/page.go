// Package browsertest provides a scripted, in-memory browser.Page for
// exercising crawl logic without a real browser.
package browsertest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"ticket-crawler/browser"
)

// Node is one element of a scripted document.
type Node struct {
	Text  string
	Attrs map[string]string
	// Children maps a relative selector to the descendants it matches.
	Children map[string][]*Node
	// OnClick runs when the node is clicked; it may mutate the document.
	OnClick func(doc *Document) error

	id      int64
	removed bool
}

// Document is the content of the page after a navigation: a selector to
// nodes table.
type Document struct {
	page  *Page
	nodes map[string][]*Node
}

// Add appends nodes under selector.
func (d *Document) Add(selector string, nodes ...*Node) {
	for _, n := range nodes {
		d.page.register(n)
	}
	d.nodes[selector] = append(d.nodes[selector], nodes...)
}

// Clear removes every node under selector.
func (d *Document) Clear(selector string) {
	for _, n := range d.nodes[selector] {
		n.removed = true
	}
	delete(d.nodes, selector)
}

// Route builds the document served for a URL.
type Route func(url string, doc *Document)

// Page is a fake browser.Page. Routes are matched by exact URL first, then by
// the longest registered prefix; unmatched URLs load an empty document.
type Page struct {
	mu      sync.Mutex
	routes  map[string]Route
	doc     *Document
	byID    map[int64]*Node
	nextID  int64
	visits  []string
	pauses  []time.Duration
	removes int

	// NavigateErr, when set, is returned for matching URLs instead of loading them.
	NavigateErr func(url string) error
}

// NewPage creates an empty fake page.
func NewPage() *Page {
	p := &Page{routes: make(map[string]Route), byID: make(map[int64]*Node)}
	p.doc = &Document{page: p, nodes: make(map[string][]*Node)}
	return p
}

// Handle registers the document builder for url (or url prefix).
func (p *Page) Handle(url string, r Route) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.routes[url] = r
}

// Visits returns every URL navigated to, in order.
func (p *Page) Visits() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.visits...)
}

// Pauses returns every pause duration requested.
func (p *Page) Pauses() []time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]time.Duration(nil), p.pauses...)
}

// Removes returns how many elements were removed successfully.
func (p *Page) Removes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.removes
}

func (p *Page) register(n *Node) {
	p.nextID++
	n.id = p.nextID
	n.removed = false
	p.byID[n.id] = n
}

func (p *Page) route(url string) Route {
	if r, ok := p.routes[url]; ok {
		return r
	}
	var best string
	for prefix := range p.routes {
		if strings.HasPrefix(url, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return nil
	}
	return p.routes[best]
}

func (p *Page) lookup(el browser.Element) (*Node, error) {
	n, ok := p.byID[el.ID]
	if !ok || n.removed {
		return nil, browser.ErrStaleElement
	}
	return n, nil
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.NavigateErr != nil {
		if err := p.NavigateErr(url); err != nil {
			return err
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.visits = append(p.visits, url)
	for _, n := range p.byID {
		n.removed = true
	}
	p.byID = make(map[int64]*Node)
	p.doc = &Document{page: p, nodes: make(map[string][]*Node)}
	if r := p.route(url); r != nil {
		r(url, p.doc)
	}
	return nil
}

func (p *Page) FindAll(ctx context.Context, selector string) ([]browser.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []browser.Element
	for _, n := range p.doc.nodes[selector] {
		if !n.removed {
			out = append(out, browser.Element{ID: n.id})
		}
	}
	return out, nil
}

func (p *Page) FindOne(ctx context.Context, parent browser.Element, selector string) (browser.Element, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, err := p.lookup(parent)
	if err != nil {
		return browser.Element{}, false, err
	}
	for _, child := range n.Children[selector] {
		if child.removed {
			continue
		}
		if p.byID[child.id] != child {
			p.register(child)
		}
		return browser.Element{ID: child.id}, true, nil
	}
	return browser.Element{}, false, nil
}

func (p *Page) Text(ctx context.Context, el browser.Element) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, err := p.lookup(el)
	if err != nil {
		return "", err
	}
	return n.Text, nil
}

func (p *Page) Attribute(ctx context.Context, el browser.Element, name string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, err := p.lookup(el)
	if err != nil {
		return "", false, err
	}
	v, ok := n.Attrs[name]
	return v, ok, nil
}

func (p *Page) Click(ctx context.Context, el browser.Element) error {
	p.mu.Lock()
	n, err := p.lookup(el)
	doc := p.doc
	p.mu.Unlock()
	if err != nil {
		return err
	}
	if n.OnClick == nil {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := n.OnClick(doc); err != nil {
		return fmt.Errorf("%w: %v", browser.ErrClickRejected, err)
	}
	return nil
}

func (p *Page) WaitFor(ctx context.Context, selector string, timeout time.Duration) (browser.Element, bool, error) {
	if err := ctx.Err(); err != nil {
		return browser.Element{}, false, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, n := range p.doc.nodes[selector] {
		if !n.removed {
			return browser.Element{ID: n.id}, true, nil
		}
	}
	return browser.Element{}, false, nil
}

func (p *Page) Remove(ctx context.Context, el browser.Element) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, err := p.lookup(el)
	if err != nil {
		return err
	}
	n.removed = true
	p.removes++
	return nil
}

func (p *Page) Pause(ctx context.Context, d time.Duration) error {
	p.mu.Lock()
	p.pauses = append(p.pauses, d)
	p.mu.Unlock()
	return ctx.Err()
}

var _ browser.Page = (*Page)(nil)
