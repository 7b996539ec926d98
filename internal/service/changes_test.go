//go:build !integration

package service

import (
	"testing"

	"github.com/guttosm/pallet-service/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeTracker_Diff(t *testing.T) {
	a := model.Product{ID: "A", Count: 1}
	aPrime := model.Product{ID: "A", Count: 2}
	b := model.Product{ID: "B", Count: 1}
	c := model.Product{ID: "C", Count: 1}

	tests := []struct {
		name     string
		original []model.Product
		current  []model.Product
		expected model.ChangeSet[model.Product]
	}{
		{
			name:     "modified, deleted and added",
			original: []model.Product{a, b},
			current:  []model.Product{aPrime, c},
			expected: model.ChangeSet[model.Product]{
				Added:    []model.Product{c},
				Modified: []model.Product{aPrime},
				Deleted:  []string{"B"},
			},
		},
		{
			name:     "unchanged",
			original: []model.Product{a, b},
			current:  []model.Product{b, a},
			expected: model.ChangeSet[model.Product]{Added: []model.Product{}, Modified: []model.Product{}, Deleted: []string{}},
		},
		{
			name:     "empty baseline adds everything",
			original: nil,
			current:  []model.Product{a, c},
			expected: model.ChangeSet[model.Product]{Added: []model.Product{a, c}, Modified: []model.Product{}, Deleted: []string{}},
		},
		{
			name:     "everything removed",
			original: []model.Product{a, b},
			current:  nil,
			expected: model.ChangeSet[model.Product]{Added: []model.Product{}, Modified: []model.Product{}, Deleted: []string{"A", "B"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := NewProductTracker()
			tracker.SetBaseline(tt.original)
			tracker.Update(tt.current)

			changes, err := tracker.Diff()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, changes)

			replayed := changes.Apply(tt.original, model.ProductID)
			assert.ElementsMatch(t, tt.current, replayed)
		})
	}
}

func TestChangeTracker_SetsAreDisjoint(t *testing.T) {
	tracker := NewProductTracker()
	tracker.SetBaseline([]model.Product{{ID: "A"}, {ID: "B"}, {ID: "C"}})
	tracker.Update([]model.Product{{ID: "A", Count: 3}, {ID: "C"}, {ID: "D"}})

	changes, err := tracker.Diff()
	require.NoError(t, err)

	seen := map[string]int{}
	for _, p := range changes.Added {
		seen[p.ID]++
	}
	for _, p := range changes.Modified {
		seen[p.ID]++
	}
	for _, id := range changes.Deleted {
		seen[id]++
	}
	assert.Equal(t, map[string]int{"A": 1, "B": 1, "D": 1}, seen)
}

func TestChangeTracker_BaselineNotInitialized(t *testing.T) {
	tracker := NewProductTracker()
	tracker.Update([]model.Product{{ID: "A", Count: 1}})

	_, err := tracker.Diff()
	assert.ErrorIs(t, err, ErrBaselineNotInitialized)

	_, _, err = tracker.Checkpoint()
	assert.ErrorIs(t, err, ErrBaselineNotInitialized)
	assert.False(t, tracker.HasChanges())
	assert.False(t, tracker.Initialized())
}

func TestChangeTracker_MarkAsSaved(t *testing.T) {
	tracker := NewProductTracker()
	tracker.SetBaseline(nil)
	tracker.Update([]model.Product{{ID: "A", Count: 1}})

	saved, changes, err := tracker.Checkpoint()
	require.NoError(t, err)
	assert.Len(t, changes.Added, 1)

	// change after the checkpoint, while the save is in flight
	tracker.Update([]model.Product{{ID: "A", Count: 1}, {ID: "B", Count: 1}})
	tracker.MarkAsSaved(saved)

	pending, err := tracker.Diff()
	require.NoError(t, err)
	assert.Equal(t, []model.Product{{ID: "B", Count: 1}}, pending.Added)
	assert.Equal(t, saved, tracker.Original())
}

func TestChangeTracker_FailedSaveKeepsBaseline(t *testing.T) {
	tracker := NewProductTracker()
	tracker.SetBaseline([]model.Product{{ID: "A", Count: 1}})
	tracker.Update([]model.Product{{ID: "A", Count: 2}})

	_, first, err := tracker.Checkpoint()
	require.NoError(t, err)

	// save failed: nothing is marked
	_, retry, err := tracker.Checkpoint()
	require.NoError(t, err)
	assert.Equal(t, first, retry)
	assert.True(t, tracker.HasChanges())
}

func TestChangeTracker_IsolatedFromCallerSlices(t *testing.T) {
	items := []model.Product{{ID: "A", Count: 1}}
	tracker := NewProductTracker()
	tracker.SetBaseline(items)
	items[0].Count = 99

	assert.False(t, tracker.HasChanges())
	assert.Equal(t, 1, tracker.Current()[0].Count)
}

func TestPackageTracker(t *testing.T) {
	pallet := model.Pallet{ID: "p1", Dimension: model.NewDimension(120, 40, 80)}
	tracker := NewPackageTracker()
	tracker.SetBaseline([]model.Package{{ID: "pkg-1"}, {ID: "pkg-2"}})
	tracker.Update([]model.Package{{ID: "pkg-1", Pallet: &pallet}, {ID: "pkg-3"}})

	changes, err := tracker.Diff()
	require.NoError(t, err)
	require.Len(t, changes.Modified, 1)
	assert.Equal(t, "pkg-1", changes.Modified[0].ID)
	require.Len(t, changes.Added, 1)
	assert.Equal(t, "pkg-3", changes.Added[0].ID)
	assert.Equal(t, []string{"pkg-2"}, changes.Deleted)
}

func TestChangeTracker_DiffAgainstCheckpoint(t *testing.T) {
	tracker := NewProductTracker()
	_, err := tracker.DiffAgainst(nil)
	assert.ErrorIs(t, err, ErrBaselineNotInitialized)

	tracker.SetBaseline([]model.Product{{ID: "A", Count: 1}})
	checkpoint := []model.Product{{ID: "A", Count: 2}}
	tracker.Update(append(checkpoint, model.Product{ID: "B", Count: 1}))

	changes, err := tracker.DiffAgainst(checkpoint)
	require.NoError(t, err)
	assert.Empty(t, changes.Added)
	require.Len(t, changes.Modified, 1)
	assert.Equal(t, 2, changes.Modified[0].Count)

	tracker.MarkAsSaved(checkpoint)
	pending, err := tracker.Diff()
	require.NoError(t, err)
	require.Len(t, pending.Added, 1)
	assert.Equal(t, "B", pending.Added[0].ID)
	assert.Empty(t, pending.Modified)
}
