package viagogo

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"ticket-crawler/browser/browsertest"
	"ticket-crawler/storage"
	"ticket-crawler/utils"
)

func quietLogger() *utils.Logger {
	return utils.NewLoggerTo(io.Discard, io.Discard, utils.LevelError)
}

func newTestStore(t *testing.T) *storage.SQLStore {
	t.Helper()
	s, err := storage.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "events.db"), nil, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// recordingStore remembers which cities were checkpointed, even after the
// end-of-pass reset clears them from the table.
type recordingStore struct {
	*storage.SQLStore

	mu     sync.Mutex
	marked []string
}

func (r *recordingStore) MarkCityScraped(ctx context.Context, city, state string) error {
	r.mu.Lock()
	r.marked = append(r.marked, city+"/"+state)
	r.mu.Unlock()
	return r.SQLStore.MarkCityScraped(ctx, city, state)
}

func link(href string) *browsertest.Node {
	return &browsertest.Node{Attrs: map[string]string{"href": href}}
}

func text(s string) *browsertest.Node {
	return &browsertest.Node{Text: s}
}

func eventEntry(sel Selectors, href, title, when, where string) *browsertest.Node {
	return &browsertest.Node{Children: map[string][]*browsertest.Node{
		sel.EntryLink:     {link(href)},
		sel.EntryTitle:    {text(title)},
		sel.EntryDateTime: {text(when)},
		sel.EntryLocation: {text(where)},
	}}
}
