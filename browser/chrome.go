package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
)

const nodeCheckTimeout = 5 * time.Second

// ChromeOptions configures the Chrome session.
type ChromeOptions struct {
	ExecPath      string
	Headless      bool
	ActionTimeout time.Duration
}

// Chrome implements Page on a single chromedp tab.
type Chrome struct {
	ctx           context.Context
	cancel        func()
	actionTimeout time.Duration

	mu    sync.Mutex
	nodes map[int64]*cdp.Node
}

// NewChrome starts a browser and opens one tab.
func NewChrome(opts ChromeOptions) (*Chrome, error) {
	execPath := opts.ExecPath
	if execPath == "" {
		execPath = FindChromeBinary()
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("lang", "en"),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	// Suppress chromedp log noise
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	// The first Run launches the browser.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("chrome: start: %w", err)
	}

	timeout := opts.ActionTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Chrome{
		ctx: tabCtx,
		cancel: func() {
			cancelTab()
			cancelAlloc()
		},
		actionTimeout: timeout,
		nodes:         make(map[int64]*cdp.Node),
	}, nil
}

// Close shuts the browser down.
func (c *Chrome) Close() error {
	c.cancel()
	return nil
}

// run executes actions on the tab, bounded by timeout and by the caller's ctx.
func (c *Chrome) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(c.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (c *Chrome) remember(nodes []*cdp.Node) []Element {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Element, 0, len(nodes))
	for _, n := range nodes {
		id := int64(n.NodeID)
		c.nodes[id] = n
		out = append(out, Element{ID: id})
	}
	return out
}

func (c *Chrome) lookup(el Element) (*cdp.Node, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.nodes[el.ID]
	if !ok {
		return nil, ErrStaleElement
	}
	return n, nil
}

func (c *Chrome) forget(el Element) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.nodes, el.ID)
}

func (c *Chrome) Navigate(ctx context.Context, url string) error {
	c.mu.Lock()
	c.nodes = make(map[int64]*cdp.Node)
	c.mu.Unlock()

	if err := c.run(ctx, c.actionTimeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("chrome: navigate %s: %w", url, err)
	}
	return nil
}

func (c *Chrome) FindAll(ctx context.Context, selector string) ([]Element, error) {
	var nodes []*cdp.Node
	err := c.run(ctx, c.actionTimeout,
		chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)))
	if err != nil {
		return nil, fmt.Errorf("chrome: find %q: %w", selector, err)
	}
	return c.remember(nodes), nil
}

func (c *Chrome) FindOne(ctx context.Context, parent Element, selector string) (Element, bool, error) {
	node, err := c.lookup(parent)
	if err != nil {
		return Element{}, false, err
	}

	var nodes []*cdp.Node
	err = c.run(ctx, c.actionTimeout,
		chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.FromNode(node), chromedp.AtLeast(0)))
	if err != nil {
		return Element{}, false, c.classify(ctx, parent, fmt.Errorf("chrome: find %q: %w", selector, err))
	}
	if len(nodes) == 0 {
		return Element{}, false, nil
	}
	return c.remember(nodes[:1])[0], true, nil
}

func (c *Chrome) Text(ctx context.Context, el Element) (string, error) {
	if _, err := c.lookup(el); err != nil {
		return "", err
	}
	var text string
	err := c.run(ctx, c.actionTimeout,
		chromedp.Text([]cdp.NodeID{cdp.NodeID(el.ID)}, &text, chromedp.ByNodeID))
	if err != nil {
		return "", c.classify(ctx, el, fmt.Errorf("chrome: text: %w", err))
	}
	return text, nil
}

func (c *Chrome) Attribute(ctx context.Context, el Element, name string) (string, bool, error) {
	if _, err := c.lookup(el); err != nil {
		return "", false, err
	}
	var (
		value string
		ok    bool
	)
	err := c.run(ctx, c.actionTimeout,
		chromedp.AttributeValue([]cdp.NodeID{cdp.NodeID(el.ID)}, name, &value, &ok, chromedp.ByNodeID))
	if err != nil {
		return "", false, c.classify(ctx, el, fmt.Errorf("chrome: attribute %s: %w", name, err))
	}
	return value, ok, nil
}

func (c *Chrome) Click(ctx context.Context, el Element) error {
	if _, err := c.lookup(el); err != nil {
		return err
	}
	err := c.run(ctx, c.actionTimeout,
		chromedp.Click([]cdp.NodeID{cdp.NodeID(el.ID)}, chromedp.ByNodeID))
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		return fmt.Errorf("%w: %v", ErrClickRejected, err)
	}
	return nil
}

func (c *Chrome) WaitFor(ctx context.Context, selector string, timeout time.Duration) (Element, bool, error) {
	var nodes []*cdp.Node
	err := c.run(ctx, timeout,
		chromedp.Nodes(selector, &nodes, chromedp.ByQuery, chromedp.NodeVisible))
	if err != nil {
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			return Element{}, false, nil
		}
		return Element{}, false, fmt.Errorf("chrome: wait %q: %w", selector, err)
	}
	if len(nodes) == 0 {
		return Element{}, false, nil
	}
	return c.remember(nodes[:1])[0], true, nil
}

func (c *Chrome) Remove(ctx context.Context, el Element) error {
	if _, err := c.lookup(el); err != nil {
		return err
	}
	c.forget(el)
	err := c.run(ctx, c.actionTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
		return dom.RemoveNode(cdp.NodeID(el.ID)).Do(ctx)
	}))
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		// The node id no longer resolves; it is already gone from the page.
		return fmt.Errorf("%w: %v", ErrStaleElement, err)
	}
	return nil
}

func (c *Chrome) Pause(ctx context.Context, d time.Duration) error {
	return Sleep(ctx, d)
}

// classify maps a failed node operation to ErrStaleElement once the node has
// been dropped from the document. ByNodeID queries on a detached node wait
// until the action timeout, so a timeout is only reported as stale when the
// node id no longer resolves.
func (c *Chrome) classify(ctx context.Context, el Element, err error) error {
	if !errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
		return err
	}
	if c.resolves(ctx, el) {
		return err
	}
	c.forget(el)
	return fmt.Errorf("%w: %v", ErrStaleElement, err)
}

// resolves reports whether the browser still knows the node behind el.
func (c *Chrome) resolves(ctx context.Context, el Element) bool {
	err := c.run(ctx, nodeCheckTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := dom.DescribeNode().WithNodeID(cdp.NodeID(el.ID)).Do(ctx)
		return err
	}))
	return err == nil
}

// FindChromeBinary locates Chrome/Chromium binary.
func FindChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
