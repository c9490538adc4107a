package job

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerAdvance(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	catalog := Catalog{
		{Name: "one", Description: "first"},
		{Name: "two", Description: "second"},
		{Name: "three", Description: "third"},
	}

	newTrackedJob := func(t *testing.T) (*memStore, *Tracker, uuid.UUID) {
		t.Helper()
		store := newMemStore()
		jobID := uuid.New()
		require.NoError(t, store.Save(ctx, &Record{ID: jobID, Kind: "test", State: StatePending}))
		return store, NewTracker(store, jobID, catalog, nil, nil), jobID
	}

	t.Run("advances in order", func(t *testing.T) {
		t.Parallel()
		store, tracker, jobID := newTrackedJob(t)

		require.NoError(t, tracker.Advance(ctx, "one"))
		require.NoError(t, tracker.Advance(ctx, "two"))

		record, err := store.GetByID(ctx, jobID)
		require.NoError(t, err)
		require.NotNil(t, record.Progress)
		assert.Equal(t, "two", record.Progress.Phase.Name)
		assert.Equal(t, 1, record.Progress.Phase.Index)
		assert.Equal(t, "second", record.Progress.Phase.Description)
		assert.Equal(t, 3, record.Progress.TotalSteps)
	})

	t.Run("skipping forward allowed", func(t *testing.T) {
		t.Parallel()
		store, tracker, jobID := newTrackedJob(t)

		require.NoError(t, tracker.Advance(ctx, "one"))
		require.NoError(t, tracker.Advance(ctx, "three"))

		record, err := store.GetByID(ctx, jobID)
		require.NoError(t, err)
		assert.Equal(t, 2, record.Progress.Phase.Index)
	})

	t.Run("moving backward writes nothing", func(t *testing.T) {
		t.Parallel()
		store, tracker, jobID := newTrackedJob(t)

		require.NoError(t, tracker.Advance(ctx, "two"))
		require.NoError(t, tracker.Advance(ctx, "one"))

		// The stored snapshot is untouched by the absorbed call.
		record, err := store.GetByID(ctx, jobID)
		require.NoError(t, err)
		assert.Equal(t, "two", record.Progress.Phase.Name)
		assert.Equal(t, 1, record.Progress.Phase.Index)
	})

	t.Run("repeating the same phase writes nothing", func(t *testing.T) {
		t.Parallel()
		store, tracker, jobID := newTrackedJob(t)

		require.NoError(t, tracker.Advance(ctx, "one"))
		require.NoError(t, tracker.Advance(ctx, "one"))

		record, err := store.GetByID(ctx, jobID)
		require.NoError(t, err)
		assert.Equal(t, "one", record.Progress.Phase.Name)
	})

	t.Run("unknown phase rejected", func(t *testing.T) {
		t.Parallel()
		_, tracker, _ := newTrackedJob(t)

		assert.Error(t, tracker.Advance(ctx, "nope"))
	})

	t.Run("seeded tracker never rewinds stored progress", func(t *testing.T) {
		t.Parallel()
		store := newMemStore()
		jobID := uuid.New()
		reported := ProgressSnapshot{
			Phase:      PhaseInfo{Name: "two", Index: 1, Description: "second"},
			TotalSteps: 3,
		}
		require.NoError(t, store.Save(ctx, &Record{
			ID:       jobID,
			Kind:     "test",
			State:    StatePending,
			Progress: &reported,
		}))

		// A later attempt re-runs the handler from the first phase; phases
		// at or below the stored one are absorbed, the next one advances.
		tracker := NewTracker(store, jobID, catalog, &reported, nil)
		require.NoError(t, tracker.Advance(ctx, "one"))
		require.NoError(t, tracker.Advance(ctx, "two"))

		record, err := store.GetByID(ctx, jobID)
		require.NoError(t, err)
		assert.Equal(t, 1, record.Progress.Phase.Index)

		require.NoError(t, tracker.Advance(ctx, "three"))
		record, err = store.GetByID(ctx, jobID)
		require.NoError(t, err)
		assert.Equal(t, 2, record.Progress.Phase.Index)
	})
}

func TestCatalogIndexOf(t *testing.T) {
	t.Parallel()

	catalog := Catalog{{Name: "a"}, {Name: "b"}}
	assert.Equal(t, 0, catalog.IndexOf("a"))
	assert.Equal(t, 1, catalog.IndexOf("b"))
	assert.Equal(t, -1, catalog.IndexOf("c"))
}

func TestStoryPhasesOrdering(t *testing.T) {
	t.Parallel()

	// The catalog drives client progress bars; the persist phase has to be
	// terminal and every phase name unique.
	assert.Equal(t, PhasePersist, StoryPhases[len(StoryPhases)-1].Name)

	seen := make(map[string]struct{})
	for _, p := range StoryPhases {
		_, dup := seen[p.Name]
		assert.False(t, dup, "duplicate phase %q", p.Name)
		seen[p.Name] = struct{}{}
		assert.NotEmpty(t, p.Description)
	}
}
