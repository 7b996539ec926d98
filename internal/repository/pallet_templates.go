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
)

// PalletTemplateRepository provides methods for pallet template operations.
type PalletTemplateRepository struct {
	collection *mongo.Collection
}

// NewPalletTemplateRepository creates a new pallet template repository.
func NewPalletTemplateRepository(db *MongoDB) *PalletTemplateRepository {
	return &PalletTemplateRepository{
		collection: db.PalletTemplates,
	}
}

// List returns all pallet templates ordered by creation.
func (r *PalletTemplateRepository) List(ctx context.Context) ([]model.Pallet, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	var docs []palletTemplateDocument
	if err := findAll(ctx, r.collection, bson.M{}, opts, &docs); err != nil {
		return nil, err
	}

	templates := make([]model.Pallet, 0, len(docs))
	for _, doc := range docs {
		templates = append(templates, doc.model())
	}
	return templates, nil
}

// Upsert creates or replaces a template. The name is always derived from the dimension.
func (r *PalletTemplateRepository) Upsert(ctx context.Context, template model.Pallet) (model.Pallet, error) {
	if template.ID == "" {
		return model.Pallet{}, errors.New("pallet template id is required")
	}
	template.Dimension = template.Dimension.Safe()
	template.Name = model.PalletName(template.Dimension)
	now := time.Now().UTC()

	update := bson.M{
		"$set": bson.M{
			"name":       template.Name,
			"dimension":  toDimensionDocument(template.Dimension),
			"weight":     model.SafeNumber(template.Weight),
			"max_load":   model.SafeNumber(template.MaxLoad),
			"updated_at": now,
		},
		"$setOnInsert": bson.M{"created_at": now},
	}

	var doc palletTemplateDocument
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": template.ID},
		update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return model.Pallet{}, fmt.Errorf("upsert pallet template %s: %w", template.ID, err)
	}
	return doc.model(), nil
}

// Delete removes a template.
func (r *PalletTemplateRepository) Delete(ctx context.Context, templateID string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": templateID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SeedDefaults inserts the templates that do not exist yet. Existing ones are left untouched.
func (r *PalletTemplateRepository) SeedDefaults(ctx context.Context, templates []model.Pallet) error {
	if len(templates) == 0 {
		return nil
	}
	now := time.Now().UTC()

	writes := make([]mongo.WriteModel, 0, len(templates))
	for _, t := range templates {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": t.ID}).
			SetUpdate(bson.M{"$setOnInsert": bson.M{
				"name":       model.PalletName(t.Dimension),
				"dimension":  toDimensionDocument(t.Dimension),
				"weight":     t.Weight,
				"max_load":   t.MaxLoad,
				"created_at": now,
				"updated_at": now,
			}}).
			SetUpsert(true))
	}

	_, err := r.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	return err
}
