// Package repository provides data access layer for MongoDB.
package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const snapshotTTLIndex = "saved_at_ttl"

// MongoConfig holds MongoDB connection pool configuration.
type MongoConfig struct {
	MaxPoolSize            uint64
	MinPoolSize            uint64
	MaxConnIdleTime        time.Duration
	ConnectTimeout         time.Duration
	ServerSelectionTimeout time.Duration
	// SocketTimeout bounds a single read or write; submits of large change sets stay well below it.
	SocketTimeout     time.Duration
	EnableCompression bool
}

// DefaultMongoConfig returns the pool settings used in production.
func DefaultMongoConfig() MongoConfig {
	return MongoConfig{
		MaxPoolSize:            50,
		MinPoolSize:            5,
		MaxConnIdleTime:        10 * time.Minute,
		ConnectTimeout:         10 * time.Second,
		ServerSelectionTimeout: 5 * time.Second,
		SocketTimeout:          30 * time.Second,
		EnableCompression:      true,
	}
}

// MongoDB holds the client and the collections of the planner.
type MongoDB struct {
	Client          *mongo.Client
	Database        *mongo.Database
	Orders          *mongo.Collection
	OrderLines      *mongo.Collection
	Packages        *mongo.Collection
	PalletTemplates *mongo.Collection
	Snapshots       *mongo.Collection
}

// NewMongoDB connects with DefaultMongoConfig.
func NewMongoDB(uri, databaseName string) (*MongoDB, error) {
	return NewMongoDBWithConfig(uri, databaseName, DefaultMongoConfig())
}

// NewMongoDBWithConfig connects, pings and makes sure the planner indexes exist.
func NewMongoDBWithConfig(uri, databaseName string, cfg MongoConfig) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetMaxConnIdleTime(cfg.MaxConnIdleTime).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ServerSelectionTimeout).
		SetSocketTimeout(cfg.SocketTimeout).
		SetRetryWrites(true).
		SetRetryReads(true)
	if cfg.EnableCompression {
		clientOptions.SetCompressors([]string{"zstd", "snappy", "zlib"})
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping: %w", err)
	}

	db := client.Database(databaseName)
	m := &MongoDB{
		Client:          client,
		Database:        db,
		Orders:          db.Collection("orders"),
		OrderLines:      db.Collection("order_lines"),
		Packages:        db.Collection("packages"),
		PalletTemplates: db.Collection("pallet_templates"),
		Snapshots:       db.Collection("snapshots"),
	}

	if err := m.createIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return m, nil
}

func (m *MongoDB) createIndexes(ctx context.Context) error {
	// rows of an order are read back in insertion order
	byOrder := mongo.IndexModel{Keys: bson.D{{Key: "order_id", Value: 1}, {Key: "created_at", Value: 1}}}

	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{m.OrderLines, byOrder},
		{m.Packages, byOrder},
		{m.Orders, mongo.IndexModel{Keys: bson.D{{Key: "reference", Value: 1}}}},
	}
	for _, idx := range indexes {
		if _, err := idx.coll.Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("create index on %s: %w", idx.coll.Name(), err)
		}
	}
	return nil
}

// SetSnapshotTTL expires snapshots ttl after their last save. The index is
// recreated because the expiry of an existing index cannot be changed by CreateOne.
func (m *MongoDB) SetSnapshotTTL(ctx context.Context, ttl time.Duration) error {
	seconds := int32(ttl / time.Second)
	if seconds <= 0 {
		return fmt.Errorf("snapshot ttl must be at least a second, got %s", ttl)
	}

	_, _ = m.Snapshots.Indexes().DropOne(ctx, snapshotTTLIndex)
	_, err := m.Snapshots.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "saved_at", Value: 1}},
		Options: options.Index().SetName(snapshotTTLIndex).SetExpireAfterSeconds(seconds),
	})
	return err
}

// Close closes the MongoDB connection.
func (m *MongoDB) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

// HealthCheck pings the primary with a short deadline.
func (m *MongoDB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return m.Client.Ping(ctx, nil)
}
