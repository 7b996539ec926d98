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
	"github.com/guttosm/pallet-service/internal/metrics"
)

// OrderRepository persists orders with their line items and packages.
type OrderRepository struct {
	orders     *mongo.Collection
	orderLines *mongo.Collection
	packages   *mongo.Collection
}

// NewOrderRepository creates a new order repository.
func NewOrderRepository(db *MongoDB) *OrderRepository {
	return &OrderRepository{
		orders:     db.Orders,
		orderLines: db.OrderLines,
		packages:   db.Packages,
	}
}

// SaveOrder creates or updates the order header.
func (r *OrderRepository) SaveOrder(ctx context.Context, order model.Order) error {
	now := time.Now().UTC()
	createdAt := order.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	truck := order.Truck
	update := bson.M{
		"$set": bson.M{
			"reference":   order.Reference,
			"weight_tier": string(model.ParseWeightTier(string(order.WeightTier))),
			"truck": truckDocument{
				ID:        truck.ID,
				Name:      truck.Name,
				Dimension: toDimensionDocument(truck.Dimension),
				MaxWeight: truck.MaxWeight,
			},
			"updated_at": now,
		},
		"$setOnInsert": bson.M{"created_at": createdAt},
	}
	_, err := r.orders.UpdateOne(ctx, bson.M{"_id": order.ID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save order %s: %w", order.ID, err)
	}
	return nil
}

// LoadOrder returns the order with its persisted line items and packages.
func (r *OrderRepository) LoadOrder(ctx context.Context, orderID string) (*OrderState, error) {
	var header orderDocument
	err := r.orders.FindOne(ctx, bson.M{"_id": orderID}).Decode(&header)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load order %s: %w", orderID, err)
	}

	byCreation := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	var lines []lineItemDocument
	if err := findAll(ctx, r.orderLines, bson.M{"order_id": orderID}, byCreation, &lines); err != nil {
		return nil, fmt.Errorf("load line items of %s: %w", orderID, err)
	}
	var packages []packageDocument
	if err := findAll(ctx, r.packages, bson.M{"order_id": orderID}, byCreation, &packages); err != nil {
		return nil, fmt.Errorf("load packages of %s: %w", orderID, err)
	}

	state := &OrderState{
		Order:     header.model(),
		LineItems: make([]model.Product, 0, len(lines)),
		Packages:  make([]model.Package, 0, len(packages)),
	}
	for _, line := range lines {
		state.LineItems = append(state.LineItems, line.model())
	}
	for _, pkg := range packages {
		state.Packages = append(state.Packages, pkg.model())
	}
	return state, nil
}

// DeleteOrder removes the order and everything stored under it.
func (r *OrderRepository) DeleteOrder(ctx context.Context, orderID string) error {
	if _, err := r.orderLines.DeleteMany(ctx, bson.M{"order_id": orderID}); err != nil {
		return err
	}
	if _, err := r.packages.DeleteMany(ctx, bson.M{"order_id": orderID}); err != nil {
		return err
	}
	res, err := r.orders.DeleteOne(ctx, bson.M{"_id": orderID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SubmitLineItems applies a line item change set in one unordered bulk write.
func (r *OrderRepository) SubmitLineItems(ctx context.Context, orderID string, changes model.ChangeSet[model.Product]) (model.SyncResult, error) {
	now := time.Now().UTC()
	upserts := append(append([]model.Product{}, changes.Added...), changes.Modified...)

	writes := make([]mongo.WriteModel, 0, changes.Len())
	for _, p := range upserts {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": documentID(orderID, p.ID)}).
			SetUpdate(bson.M{
				"$set": bson.M{
					"order_id":   orderID,
					"product_id": p.ID,
					"name":       p.Name,
					"count":      p.Count,
					"dimension":  toDimensionDocument(p.Dimension),
					"weights":    p.Weights,
					"updated_at": now,
				},
				"$setOnInsert": bson.M{"created_at": now},
			}).
			SetUpsert(true))
	}
	for _, id := range changes.Deleted {
		writes = append(writes, mongo.NewDeleteOneModel().SetFilter(bson.M{"_id": documentID(orderID, id)}))
	}

	return r.submit(ctx, r.orderLines, model.EntityLineItems, writes, len(changes.Added), len(changes.Modified), len(changes.Deleted))
}

// SubmitPackages applies a package change set in one unordered bulk write.
func (r *OrderRepository) SubmitPackages(ctx context.Context, orderID string, changes model.ChangeSet[model.Package]) (model.SyncResult, error) {
	now := time.Now().UTC()
	upserts := append(append([]model.Package{}, changes.Added...), changes.Modified...)

	writes := make([]mongo.WriteModel, 0, changes.Len())
	for _, p := range upserts {
		doc := toPackageFields(orderID, p)
		set := bson.M{
			"package_id": doc.PackageID,
			"order_id":   orderID,
			"products":   doc.Products,
			"updated_at": now,
		}
		update := bson.M{"$set": set, "$setOnInsert": bson.M{"created_at": now}}
		if doc.Pallet != nil {
			set["pallet"] = doc.Pallet
		} else {
			update["$unset"] = bson.M{"pallet": ""}
		}
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": doc.ID}).
			SetUpdate(update).
			SetUpsert(true))
	}
	for _, id := range changes.Deleted {
		writes = append(writes, mongo.NewDeleteOneModel().SetFilter(bson.M{"_id": documentID(orderID, id)}))
	}

	return r.submit(ctx, r.packages, model.EntityPackages, writes, len(changes.Added), len(changes.Modified), len(changes.Deleted))
}

func (r *OrderRepository) submit(ctx context.Context, coll *mongo.Collection, kind model.EntityKind, writes []mongo.WriteModel, added, modified, deleted int) (model.SyncResult, error) {
	result := model.SyncResult{Kind: kind, SyncedAt: time.Now().UTC()}
	if len(writes) == 0 {
		return result, nil
	}

	start := time.Now()
	res, err := coll.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		metrics.RecordChangeSetSync(string(kind), time.Since(start), "error", added, modified, deleted)
		return result, fmt.Errorf("submit %s: %w", kind, err)
	}
	metrics.RecordChangeSetSync(string(kind), time.Since(start), "success", added, modified, deleted)

	result.Upserted = int(res.UpsertedCount + res.MatchedCount)
	result.Deleted = int(res.DeletedCount)
	return result, nil
}

func findAll(ctx context.Context, coll *mongo.Collection, filter interface{}, opts *options.FindOptions, out interface{}) error {
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()
	return cursor.All(ctx, out)
}
