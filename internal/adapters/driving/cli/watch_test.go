package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driving"
)

// fakeWatcher replays a fixed list of changes and then closes.
type fakeWatcher struct {
	changes []domain.FileChange
	err     error
	closed  bool
}

func (w *fakeWatcher) Watch(_ context.Context) (<-chan domain.FileChange, error) {
	if w.err != nil {
		return nil, w.err
	}
	ch := make(chan domain.FileChange, len(w.changes))
	for _, c := range w.changes {
		ch <- c
	}
	close(ch)
	return ch, nil
}

func (w *fakeWatcher) Close() error {
	w.closed = true
	return nil
}

func useWatcher(t *testing.T, w *fakeWatcher) (gotDir *string, gotRecursive *bool) {
	t.Helper()
	original := newWatcher
	t.Cleanup(func() { newWatcher = original })

	var dir string
	var recursive bool
	newWatcher = func(d string, r bool) changeWatcher {
		dir, recursive = d, r
		return w
	}
	return &dir, &recursive
}

func TestWatchCmd_AppliesChanges(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	root := t.TempDir()
	created := writeFile(t, root, "new.txt", sampleText)
	gone := writeFile(t, root, "gone.txt", sampleText)
	_, err := ingestionService.IngestFile(t.Context(), gone, driving.IngestOptions{})
	require.NoError(t, err)
	goneID, err := ingestionService.DocumentID(gone)
	require.NoError(t, err)

	w := &fakeWatcher{changes: []domain.FileChange{
		{Type: domain.ChangeCreated, Path: created},
		{Type: domain.ChangeDeleted, Path: gone},
	}}
	gotDir, gotRecursive := useWatcher(t, w)

	out, err := executeCommand("watch", root, "--recursive")

	require.NoError(t, err)
	assert.Equal(t, root, *gotDir)
	assert.True(t, *gotRecursive)
	assert.True(t, w.closed)
	assert.Contains(t, out, "Watching "+root)
	assert.Contains(t, out, "✓ created "+created)
	assert.Contains(t, out, "- removed "+gone)

	createdID, err := ingestionService.DocumentID(created)
	require.NoError(t, err)
	_, err = documentService.Get(t.Context(), createdID)
	assert.NoError(t, err)
	_, err = documentService.Get(t.Context(), goneID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWatchCmd_WatchError(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	useWatcher(t, &fakeWatcher{err: assert.AnError})

	_, err := executeCommand("watch", t.TempDir())

	assert.ErrorIs(t, err, assert.AnError)
}
