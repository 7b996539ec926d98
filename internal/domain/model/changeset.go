package model

import "time"

// EntityKind names a synchronized collection.
type EntityKind string

const (
	EntityLineItems EntityKind = "line_items"
	EntityPackages  EntityKind = "packages"
)

// ChangeSet is the delta between a persisted baseline and the working collection.
type ChangeSet[T any] struct {
	Added    []T      `json:"added"`
	Modified []T      `json:"modified"`
	Deleted  []string `json:"deleted"`
}

// IsEmpty reports whether the change set carries no change.
func (c ChangeSet[T]) IsEmpty() bool {
	return c.Len() == 0
}

// Len is the number of changed ids.
func (c ChangeSet[T]) Len() int {
	return len(c.Added) + len(c.Modified) + len(c.Deleted)
}

// Apply replays the change set on top of original. Surviving items keep their
// original order, added items are appended.
func (c ChangeSet[T]) Apply(original []T, idOf func(T) string) []T {
	deleted := make(map[string]struct{}, len(c.Deleted))
	for _, id := range c.Deleted {
		deleted[id] = struct{}{}
	}
	modified := make(map[string]T, len(c.Modified))
	for _, item := range c.Modified {
		modified[idOf(item)] = item
	}

	out := make([]T, 0, len(original)+len(c.Added))
	for _, item := range original {
		id := idOf(item)
		if _, gone := deleted[id]; gone {
			continue
		}
		if replacement, ok := modified[id]; ok {
			item = replacement
		}
		out = append(out, item)
	}
	return append(out, c.Added...)
}

// SyncResult is the outcome of submitting a change set.
type SyncResult struct {
	Kind     EntityKind `json:"kind"`
	Upserted int        `json:"upserted"`
	Deleted  int        `json:"deleted"`
	SyncedAt time.Time  `json:"synced_at"`
}
