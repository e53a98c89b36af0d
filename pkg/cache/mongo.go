package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig configures a MongoCache.
type MongoConfig struct {
	URI        string // e.g. "mongodb://localhost:27017"
	Database   string
	Collection string

	// Timeout bounds server selection. Zero uses the driver default.
	Timeout time.Duration
}

// MongoCache stores entries as documents keyed by cache key. Expired
// documents are removed by a TTL index (see EnsureIndexes) and ignored by
// Get until then. Like RedisCache, connection failures are returned wrapped
// with Retryable.
type MongoCache struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoEntry struct {
	Key       string     `bson:"_id"`
	Data      []byte     `bson:"data"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
}

// NewMongoCache creates a MongoDB-backed cache. Connections are established
// lazily; use Ping to check connectivity.
func NewMongoCache(ctx context.Context, cfg MongoConfig) (*MongoCache, error) {
	if strings.TrimSpace(cfg.URI) == "" {
		return nil, fmt.Errorf("%w: mongo uri must be specified", ErrInvalidConfig)
	}
	if cfg.Database == "" || cfg.Collection == "" {
		return nil, fmt.Errorf("%w: mongo database and collection must be specified", ErrInvalidConfig)
	}

	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.Timeout > 0 {
		opts.SetServerSelectionTimeout(cfg.Timeout)
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &MongoCache{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Ping checks that the server is reachable.
func (c *MongoCache) Ping(ctx context.Context) error {
	return wrapMongoErr(ctx, c.client.Ping(ctx, nil))
}

// EnsureIndexes creates the TTL index on expires_at. It is idempotent.
func (c *MongoCache) EnsureIndexes(ctx context.Context) error {
	_, err := c.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	return wrapMongoErr(ctx, err)
}

// Get retrieves a value from the cache.
func (c *MongoCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var e mongoEntry
	err := c.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, wrapMongoErr(ctx, err)
	}
	// the TTL monitor runs about once a minute
	if e.ExpiresAt != nil && time.Now().After(*e.ExpiresAt) {
		return nil, false, nil
	}
	return e.Data, true, nil
}

// Set stores a value in the cache, replacing any previous value.
func (c *MongoCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	e := mongoEntry{Key: key, Data: data}
	if ttl > 0 {
		exp := time.Now().Add(ttl)
		e.ExpiresAt = &exp
	}
	_, err := c.coll.ReplaceOne(ctx, bson.M{"_id": key}, e, options.Replace().SetUpsert(true))
	return wrapMongoErr(ctx, err)
}

// Delete removes a value from the cache. Missing keys are ignored.
func (c *MongoCache) Delete(ctx context.Context, key string) error {
	_, err := c.coll.DeleteOne(ctx, bson.M{"_id": key})
	return wrapMongoErr(ctx, err)
}

// Close disconnects the client.
func (c *MongoCache) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.client.Disconnect(ctx)
}

// wrapMongoErr marks connection failures as retryable. Server-side command
// and write errors, and errors caused by ctx ending, are returned unchanged.
func wrapMongoErr(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	var (
		cmdErr   mongo.CommandError
		writeErr mongo.WriteException
	)
	if errors.As(err, &cmdErr) || errors.As(err, &writeErr) {
		return err
	}
	if ctx.Err() != nil {
		return err
	}
	return Retryable(fmt.Errorf("%w: %w", ErrUnavailable, err))
}

var (
	_ Cache  = (*MongoCache)(nil)
	_ Pinger = (*MongoCache)(nil)
)
