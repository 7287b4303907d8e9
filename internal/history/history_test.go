package history

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/wordofday/internal/entry"
	"codeberg.org/snonux/wordofday/internal/store"
	"codeberg.org/snonux/wordofday/internal/testutil"
)

var ctx = context.Background()

func openHistory(t *testing.T, st store.Store, opts ...Option) *History {
	t.Helper()
	h, err := Open(ctx, st, append(opts, WithLogger(testutil.NewTestLogger(t)))...)
	require.NoError(t, err)
	return h
}

func stored(t *testing.T, st store.Store) []string {
	t.Helper()
	var entries []entry.Entry
	err := st.Get(ctx, store.KeyHistory, &entries)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	require.NoError(t, err)
	return testutil.Words(entries)
}

func TestOpen_Empty(t *testing.T) {
	h := openHistory(t, store.NewMemoryStore())
	assert.Equal(t, 0, h.Len())
	assert.Empty(t, h.List(0))
	assert.Equal(t, DefaultMax, h.Max())

	st := store.NewMemoryStore()
	require.NoError(t, st.Set(ctx, store.KeyHistory, []entry.Entry{}))
	assert.Equal(t, 0, openHistory(t, st).Len())
}

func TestOpen_NormalizesStoredList(t *testing.T) {
	st := store.NewMemoryStore()
	raw := append(testutil.SampleEntries(5), testutil.SampleEntry("word-1"))
	require.NoError(t, st.Set(ctx, store.KeyHistory, raw))

	h := openHistory(t, st, WithMax(3))
	assert.Equal(t, []string{"word-2", "word-3", "word-4"}, testutil.Words(h.List(0)))
}

func TestOpen_StorageFailure(t *testing.T) {
	st := testutil.NewFailingStore()
	st.FailOn("get", store.KeyHistory, errors.New("locked"))

	_, err := Open(ctx, st)
	var serr *store.StorageError
	assert.ErrorAs(t, err, &serr)
}

func TestAdd(t *testing.T) {
	st := store.NewMemoryStore()
	h := openHistory(t, st)

	added, err := h.Add(ctx, testutil.SampleEntry("apple"))
	require.NoError(t, err)
	assert.True(t, added)

	added, err = h.Add(ctx, testutil.SampleEntry("run"))
	require.NoError(t, err)
	assert.True(t, added)

	// Same key with different details is still a duplicate
	dup := testutil.SampleEntry("apple")
	dup.Translation = "something else"
	added, err = h.Add(ctx, dup)
	require.NoError(t, err)
	assert.False(t, added)

	assert.Equal(t, []string{"apple", "run"}, testutil.Words(h.List(0)))
	assert.Equal(t, []string{"apple", "run"}, stored(t, st))
	assert.True(t, h.IsSaved("apple"))
	assert.False(t, h.IsSaved("Apple"))

	_, err = h.Add(ctx, entry.Entry{})
	assert.ErrorIs(t, err, entry.ErrEmptyWord)
}

func TestAdd_NeverExceedsCapOrDuplicates(t *testing.T) {
	for _, start := range []int{0, 1, 50, 99, 100} {
		st := store.NewMemoryStore()
		require.NoError(t, st.Set(ctx, store.KeyHistory, testutil.SampleEntries(start)))
		h := openHistory(t, st)

		for _, e := range append(testutil.SampleEntries(3), testutil.SampleEntry("extra")) {
			_, err := h.Add(ctx, e)
			require.NoError(t, err)

			list := h.List(0)
			assert.LessOrEqual(t, len(list), DefaultMax)

			seen := map[string]bool{}
			for _, w := range testutil.Words(list) {
				assert.False(t, seen[w], "duplicate %q with start=%d", w, start)
				seen[w] = true
			}
		}
	}
}

func TestAdd_FullHistoryEvictsOldest(t *testing.T) {
	st := store.NewMemoryStore()
	full := testutil.SampleEntries(100)
	require.NoError(t, st.Set(ctx, store.KeyHistory, full))
	h := openHistory(t, st)

	added, err := h.Add(ctx, testutil.SampleEntry("new"))
	require.NoError(t, err)
	require.True(t, added)

	list := h.List(0)
	assert.Len(t, list, 100)
	assert.False(t, h.IsSaved("word-0"))
	assert.True(t, h.IsSaved("word-1"))
	assert.Equal(t, "word-1", list[0].Word)
	assert.Equal(t, "new", list[99].Word)
	assert.Len(t, stored(t, st), 100)
}

func TestWithMax_NeverRaisesCap(t *testing.T) {
	for _, max := range []int{0, -5, DefaultMax + 1, 1000} {
		assert.Equal(t, DefaultMax, openHistory(t, store.NewMemoryStore(), WithMax(max)).Max(), "max=%d", max)
	}
	assert.Equal(t, 10, openHistory(t, store.NewMemoryStore(), WithMax(10)).Max())

	st := store.NewMemoryStore()
	require.NoError(t, st.Set(ctx, store.KeyHistory, testutil.SampleEntries(DefaultMax)))
	h := openHistory(t, st, WithMax(200))

	_, err := h.Add(ctx, testutil.SampleEntry("new"))
	require.NoError(t, err)
	assert.Equal(t, DefaultMax, h.Len())
	assert.Len(t, stored(t, st), DefaultMax)
}

func TestRemove(t *testing.T) {
	st := testutil.NewFailingStore()
	h := openHistory(t, st)
	for _, w := range []string{"apple", "run", "brave"} {
		_, err := h.Add(ctx, testutil.SampleEntry(w))
		require.NoError(t, err)
	}

	removed, err := h.Remove(ctx, "run")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, []string{"apple", "brave"}, testutil.Words(h.List(0)))

	// Missing key is a no-op, including at the storage level
	writes := st.Writes
	removed, err = h.Remove(ctx, "run")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, []string{"apple", "brave"}, testutil.Words(h.List(0)))
	assert.Equal(t, writes, st.Writes)
}

func TestToggle_TwiceRestoresOriginal(t *testing.T) {
	st := store.NewMemoryStore()
	h := openHistory(t, st)
	for _, w := range []string{"apple", "run"} {
		_, err := h.Add(ctx, testutil.SampleEntry(w))
		require.NoError(t, err)
	}
	before := h.List(0)

	for _, e := range []entry.Entry{testutil.SampleEntry("brave"), testutil.SampleEntry("run")} {
		first, err := h.Toggle(ctx, e)
		require.NoError(t, err)
		second, err := h.Toggle(ctx, e)
		require.NoError(t, err)
		assert.NotEqual(t, first, second)

		if e.Word == "brave" {
			assert.Equal(t, before, h.List(0))
		}
	}

	// Toggling a saved word off and on moves it to the end
	assert.Equal(t, []string{"apple", "run"}, testutil.Words(h.List(0)))
}

func TestToggle_ExactlyOneEffect(t *testing.T) {
	h := openHistory(t, store.NewMemoryStore())

	saved, err := h.Toggle(ctx, testutil.SampleEntry("apple"))
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, 1, h.Len())

	saved, err = h.Toggle(ctx, testutil.SampleEntry("apple"))
	require.NoError(t, err)
	assert.False(t, saved)
	assert.Equal(t, 0, h.Len())
}

func TestClear(t *testing.T) {
	st := store.NewMemoryStore()
	h := openHistory(t, st)
	_, err := h.Add(ctx, testutil.SampleEntry("apple"))
	require.NoError(t, err)

	require.NoError(t, h.Clear(ctx))
	assert.Equal(t, 0, h.Len())
	assert.False(t, st.Has(store.KeyHistory))

	assert.Equal(t, 0, openHistory(t, st).Len())
}

func TestList_Limit(t *testing.T) {
	st := store.NewMemoryStore()
	require.NoError(t, st.Set(ctx, store.KeyHistory, testutil.SampleEntries(8)))
	h := openHistory(t, st)

	assert.Equal(t, []string{"word-5", "word-6", "word-7"}, testutil.Words(h.List(3)))
	assert.Len(t, h.List(0), 8)
	assert.Len(t, h.List(50), 8)

	// Returned slices are copies
	list := h.List(1)
	list[0].Word = "mutated"
	assert.True(t, h.IsSaved("word-7"))
}

func TestMutations_StorageFailureKeepsMemoryState(t *testing.T) {
	st := testutil.NewFailingStore()
	h := openHistory(t, st)
	_, err := h.Add(ctx, testutil.SampleEntry("apple"))
	require.NoError(t, err)

	boom := errors.New("disk full")
	st.FailOn("set", store.KeyHistory, boom)
	st.FailOn("remove", store.KeyHistory, boom)

	_, err = h.Add(ctx, testutil.SampleEntry("run"))
	assert.ErrorIs(t, err, boom)

	_, err = h.Remove(ctx, "apple")
	assert.ErrorIs(t, err, boom)

	saved, err := h.Toggle(ctx, testutil.SampleEntry("apple"))
	assert.ErrorIs(t, err, boom)
	assert.True(t, saved)

	assert.ErrorIs(t, h.Clear(ctx), boom)

	assert.Equal(t, []string{"apple"}, testutil.Words(h.List(0)))
}
