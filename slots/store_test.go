package slots

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "states.json")
	return NewStore(NewFileBackend(path)), path
}

func mustSlot(t *testing.T, in string) Slot {
	t.Helper()
	s, err := ParseSlot(in)
	require.NoError(t, err)
	return s
}

func TestEnsureInitializedSeedsEmptyDocument(t *testing.T) {
	store, path := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.EnsureInitialized(ctx))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"ocupados\": []\n}\n", string(data))
}

func TestEnsureInitializedIsIdempotent(t *testing.T) {
	store, path := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.EnsureInitialized(ctx))
	_, err := store.Toggle(ctx, mustSlot(t, "12"))
	require.NoError(t, err)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, store.EnsureInitialized(ctx))
	require.NoError(t, store.EnsureInitialized(ctx))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestEnsureInitializedCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "states.json")
	store := NewStore(NewFileBackend(path))

	require.NoError(t, store.EnsureInitialized(context.Background()))
	assert.FileExists(t, path)
}

func TestScenarioToggleQueryReset(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	slot := mustSlot(t, "007")

	state, err := store.Toggle(ctx, slot)
	require.NoError(t, err)
	assert.Equal(t, Occupied, state)

	state, err = store.Query(ctx, slot)
	require.NoError(t, err)
	assert.Equal(t, Occupied, state)

	state, err = store.Toggle(ctx, slot)
	require.NoError(t, err)
	assert.Equal(t, Available, state)

	_, err = store.Toggle(ctx, mustSlot(t, "100"))
	require.NoError(t, err)
	require.NoError(t, store.Reset(ctx))

	listed, total, err := store.List(ctx, 200)
	require.NoError(t, err)
	assert.Empty(t, listed)
	assert.Equal(t, 0, total)
}

func TestToggleInvolutionForEverySlot(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	_, err := store.Toggle(ctx, mustSlot(t, "500"))
	require.NoError(t, err)

	for n := 0; n <= MaxSlot; n++ {
		slot, err := FromInt(n)
		require.NoError(t, err)

		before, err := store.Query(ctx, slot)
		require.NoError(t, err)
		_, err = store.Toggle(ctx, slot)
		require.NoError(t, err)
		_, err = store.Toggle(ctx, slot)
		require.NoError(t, err)
		after, err := store.Query(ctx, slot)
		require.NoError(t, err)

		require.Equal(t, before, after, "slot %s", slot)
	}
}

func TestToggleAppendsInInsertionOrder(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for _, in := range []string{"300", "5", "42"} {
		_, err := store.Toggle(ctx, mustSlot(t, in))
		require.NoError(t, err)
	}

	doc, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"num-300", "num-005", "num-042"}, doc.Occupied)
}

func TestSameSlotDifferentSpelling(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	state, err := store.Toggle(ctx, mustSlot(t, "7"))
	require.NoError(t, err)
	assert.Equal(t, Occupied, state)

	state, err = store.Query(ctx, mustSlot(t, "007"))
	require.NoError(t, err)
	assert.Equal(t, Occupied, state)

	state, err = store.Toggle(ctx, mustSlot(t, "007"))
	require.NoError(t, err)
	assert.Equal(t, Available, state)
}

func TestListCountIgnoresLimit(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	want := []string{"001", "002", "003", "004", "005", "006", "007"}
	for _, in := range want {
		_, err := store.Toggle(ctx, mustSlot(t, in))
		require.NoError(t, err)
	}

	for _, limit := range []int{0, 1, 3, 7, 200} {
		listed, total, err := store.List(ctx, limit)
		require.NoError(t, err)
		assert.Equal(t, len(want), total, "limit %d", limit)
		if limit > 0 && limit < len(want) {
			assert.Len(t, listed, limit)
		} else {
			assert.Len(t, listed, len(want))
		}
	}

	listed, _, err := store.List(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []Slot{"001", "002"}, listed)
}

func TestSaveOfLoadIsByteIdentical(t *testing.T) {
	store, path := newTestStore(t)
	ctx := context.Background()
	for _, in := range []string{"9", "250", "999"} {
		_, err := store.Toggle(ctx, mustSlot(t, in))
		require.NoError(t, err)
	}
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	doc, err := store.Load(ctx)
	require.NoError(t, err)
	store.mu.Lock()
	err = store.saveLocked(ctx, doc)
	store.mu.Unlock()
	require.NoError(t, err)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestMalformedDocumentIsNotRecreated(t *testing.T) {
	for _, content := range []string{"{not json", "null", "[]", `{"ocupados": null}`, `{"ocupados": ["x"]}`} {
		t.Run(content, func(t *testing.T) {
			store, path := newTestStore(t)
			ctx := context.Background()
			require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

			_, err := store.Load(ctx)
			require.ErrorIs(t, err, ErrStorageRead)

			_, err = store.Query(ctx, mustSlot(t, "5"))
			require.ErrorIs(t, err, ErrStorageRead)

			_, err = store.Toggle(ctx, mustSlot(t, "5"))
			require.ErrorIs(t, err, ErrStorageRead)

			require.ErrorIs(t, store.Reset(ctx), ErrStorageRead)

			_, err = store.Raw(ctx)
			require.ErrorIs(t, err, ErrStorageRead)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, content, string(data), "corrupt document must be left for the operator")
		})
	}
}

func TestInvalidSlotRejectedBeforeStorage(t *testing.T) {
	store, path := newTestStore(t)
	ctx := context.Background()

	for _, s := range []Slot{"", "7", "0007", "abc", "1a2"} {
		_, err := store.Toggle(ctx, s)
		require.ErrorIs(t, err, ErrInvalidSlot, "toggle %q", s)
		_, err = store.Query(ctx, s)
		require.ErrorIs(t, err, ErrInvalidSlot, "query %q", s)
	}
	assert.NoFileExists(t, path)
}

func TestConcurrentTogglesOnDistinctSlots(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.EnsureInitialized(ctx))

	const n = 64
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			slot, err := FromInt(i)
			if err != nil {
				errs <- err
				return
			}
			if _, err := store.Toggle(ctx, slot); err != nil {
				errs <- fmt.Errorf("toggle %s: %w", slot, err)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	_, total, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, n, total)
}

func TestConcurrentReadersSeeCompleteDocuments(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.EnsureInitialized(ctx))

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(done)
		for i := 0; i < 200; i++ {
			slot, _ := FromInt(i % 10)
			if _, err := store.Toggle(ctx, slot); err != nil {
				t.Errorf("toggle: %v", err)
				return
			}
		}
	}()

	for reader := 0; reader < 4; reader++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				if _, err := store.Raw(ctx); err != nil {
					t.Errorf("raw read: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

type failingBackend struct {
	FileBackend
	writeErr error
}

func (b *failingBackend) WriteDocument(ctx context.Context, data []byte) error {
	if b.writeErr != nil {
		return b.writeErr
	}
	return b.FileBackend.WriteDocument(ctx, data)
}

func TestWriteFailureLeavesPreviousDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "states.json")
	backend := &failingBackend{FileBackend: *NewFileBackend(path)}
	store := NewStore(backend)
	ctx := context.Background()

	_, err := store.Toggle(ctx, mustSlot(t, "10"))
	require.NoError(t, err)

	backend.writeErr = errors.New("disk full")
	_, err = store.Toggle(ctx, mustSlot(t, "11"))
	require.ErrorIs(t, err, ErrStorageWrite)

	doc, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"num-010"}, doc.Occupied)
}
