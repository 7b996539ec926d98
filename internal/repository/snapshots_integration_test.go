//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/guttosm/pallet-service/internal/domain/model"
	"github.com/guttosm/pallet-service/internal/snapshot"
)

func TestSnapshotRepository_Integration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := setupTestDBFromSharedContainer(t)
	defer func() {
		require.NoError(t, db.Close(ctx))
	}()

	repo := NewSnapshotRepository(db)

	t.Run("restore missing", func(t *testing.T) {
		s, err := repo.Restore(ctx, "ORD-1")
		require.NoError(t, err)
		assert.Nil(t, s)
	})

	t.Run("save and restore", func(t *testing.T) {
		in := model.EmptySnapshot("ORD-1")
		in.Pool = []model.Product{{ID: "A", Count: 2, Dimension: model.NewDimension(10, 10, 10)}}
		in.IsDirty = true
		require.NoError(t, repo.Save(ctx, in))

		out, err := repo.Restore(ctx, "ORD-1")
		require.NoError(t, err)
		require.NotNil(t, out)
		assert.True(t, out.IsDirty)
		assert.Len(t, out.Pool, 1)
		assert.False(t, out.SavedAt.IsZero())
	})

	t.Run("corrupt data", func(t *testing.T) {
		_, err := db.Snapshots.UpdateOne(ctx, bson.M{"_id": "ORD-1"}, bson.M{"$set": bson.M{"data": []byte("garbage")}})
		require.NoError(t, err)

		_, err = repo.Restore(ctx, "ORD-1")
		assert.ErrorIs(t, err, snapshot.ErrCorruptSnapshot)

		s, found := snapshot.RestoreOrEmpty(ctx, repo, "ORD-1")
		assert.False(t, found)
		assert.True(t, s.IsZero())
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "ORD-1"))
		s, err := repo.Restore(ctx, "ORD-1")
		require.NoError(t, err)
		assert.Nil(t, s)
	})
}
