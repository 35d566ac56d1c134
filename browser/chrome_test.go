package browser

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChrome(t *testing.T) *Chrome {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	if FindChromeBinary() == "" {
		t.Skip("no Chrome binary found")
	}
	c, err := NewChrome(ChromeOptions{Headless: true, ActionTimeout: 10 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestClassifyKeepsLiveNodeOnTimeout(t *testing.T) {
	c := newTestChrome(t)
	ctx := context.Background()

	require.NoError(t, c.Navigate(ctx, "data:text/html,%3Cp%20id%3Da%3Ehi%3C/p%3E"))
	els, err := c.FindAll(ctx, "#a")
	require.NoError(t, err)
	require.Len(t, els, 1)

	slow := fmt.Errorf("chrome: text: %w", context.DeadlineExceeded)
	err = c.classify(ctx, els[0], slow)
	assert.NotErrorIs(t, err, ErrStaleElement)

	text, err := c.Text(ctx, els[0])
	require.NoError(t, err)
	assert.Equal(t, "hi", text)
}

func TestClassifyReportsDetachedNodeAsStale(t *testing.T) {
	c := newTestChrome(t)
	ctx := context.Background()

	require.NoError(t, c.Navigate(ctx, "data:text/html,%3Cp%20id%3Da%3Ehi%3C/p%3E"))
	els, err := c.FindAll(ctx, "#a")
	require.NoError(t, err)
	require.Len(t, els, 1)

	require.NoError(t, c.Navigate(ctx, "data:text/html,%3Cp%3Eother%3C/p%3E"))

	err = c.classify(ctx, els[0], fmt.Errorf("chrome: text: %w", context.DeadlineExceeded))
	assert.ErrorIs(t, err, ErrStaleElement)
}
