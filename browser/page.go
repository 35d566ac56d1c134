// Package browser defines the page-interaction capability the crawlers drive
// and a Chrome DevTools implementation of it.
//
// Element handles are snapshots: any mutating call (navigate, click, remove)
// may invalidate handles returned earlier, so callers re-query with FindAll
// before indexing into a collection again.
package browser

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrStaleElement means the element left the document between lookup and use.
	ErrStaleElement = errors.New("browser: stale element reference")
	// ErrClickRejected means the element was intercepted or not interactable.
	ErrClickRejected = errors.New("browser: click rejected")
)

// Element is an opaque handle to a node in the current document.
type Element struct {
	ID int64
}

// Page is a single live browser tab. Lookups report absence through their
// ok result rather than an error; errors are reserved for faults.
type Page interface {
	Navigate(ctx context.Context, url string) error
	// FindAll returns every element currently matching selector, possibly none.
	FindAll(ctx context.Context, selector string) ([]Element, error)
	// FindOne returns the first descendant of parent matching selector.
	FindOne(ctx context.Context, parent Element, selector string) (Element, bool, error)
	Text(ctx context.Context, el Element) (string, error)
	Attribute(ctx context.Context, el Element, name string) (string, bool, error)
	Click(ctx context.Context, el Element) error
	// WaitFor blocks until an element matching selector is visible, or reports
	// ok=false once timeout elapses.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) (Element, bool, error)
	Remove(ctx context.Context, el Element) error
	Pause(ctx context.Context, d time.Duration) error
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
