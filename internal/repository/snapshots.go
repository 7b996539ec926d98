package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/guttosm/pallet-service/internal/domain/model"
	"github.com/guttosm/pallet-service/internal/snapshot"
)

// SnapshotRepository keeps the latest snapshot of every order in MongoDB.
type SnapshotRepository struct {
	collection *mongo.Collection
}

// NewSnapshotRepository creates a new snapshot repository.
func NewSnapshotRepository(db *MongoDB) *SnapshotRepository {
	return &SnapshotRepository{
		collection: db.Snapshots,
	}
}

// Save replaces the stored snapshot of the order.
func (r *SnapshotRepository) Save(ctx context.Context, s model.Snapshot) error {
	if s.SavedAt.IsZero() {
		s.SavedAt = time.Now().UTC()
	}
	data, err := snapshot.Encode(s)
	if err != nil {
		return err
	}

	doc := snapshotDocument{
		OrderID: s.OrderID,
		Data:    data,
		IsDirty: s.IsDirty,
		SavedAt: s.SavedAt,
	}
	_, err = r.collection.ReplaceOne(ctx, bson.M{"_id": s.OrderID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", s.OrderID, err)
	}
	return nil
}

// Restore returns the stored snapshot, or nil when there is none.
func (r *SnapshotRepository) Restore(ctx context.Context, orderID string) (*model.Snapshot, error) {
	var doc snapshotDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": orderID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("restore snapshot %s: %w", orderID, err)
	}
	return snapshot.Decode(orderID, doc.Data)
}

// Delete removes the stored snapshot of the order.
func (r *SnapshotRepository) Delete(ctx context.Context, orderID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": orderID})
	return err
}
