package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vancyferns/near2door/pkg/metrics"
)

// Mongo is the MongoDB-backed Store.
type Mongo struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
}

// Connect dials uri, verifies the connection and selects database.
// timeout bounds the initial handshake and every later call.
func Connect(ctx context.Context, uri, database string, timeout time.Duration) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	clientOpts := options.Client().ApplyURI(uri).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	return &Mongo{
		client:  client,
		db:      client.Database(database),
		timeout: timeout,
	}, nil
}

// Client exposes the underlying driver client (shared with the log sink).
func (m *Mongo) Client() *mongo.Client { return m.client }

// Database returns the selected database name.
func (m *Mongo) Database() string { return m.db.Name() }

func (m *Mongo) Collection(name string) Collection {
	return &mongoCollection{col: m.db.Collection(name), timeout: m.timeout}
}

func (m *Mongo) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.client.Ping(ctx, nil)
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// EnsureIndexes creates every entry of Indexes. It is idempotent.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	for _, idx := range Indexes {
		keys := bson.D{}
		for _, k := range idx.Keys {
			keys = append(keys, bson.E{Key: k, Value: 1})
		}
		model := mongo.IndexModel{Keys: keys}
		if idx.Unique {
			model.Options = options.Index().SetUnique(true)
		}

		cctx, cancel := context.WithTimeout(ctx, m.timeout)
		_, err := m.db.Collection(idx.Collection).Indexes().CreateOne(cctx, model)
		cancel()
		if err != nil {
			return fmt.Errorf("store: index %s%v: %w", idx.Collection, idx.Keys, err)
		}
	}
	return nil
}

type mongoCollection struct {
	col     *mongo.Collection
	timeout time.Duration
}

func (c *mongoCollection) InsertOne(ctx context.Context, doc any) (primitive.ObjectID, error) {
	defer metrics.ObserveDBQuery("insert", time.Now())
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, fmt.Errorf("%w: %s", ErrDuplicate, c.col.Name())
		}
		return primitive.NilObjectID, fmt.Errorf("store: insert %s: %w", c.col.Name(), err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("store: insert %s: unexpected id type %T", c.col.Name(), res.InsertedID)
	}
	return id, nil
}

func (c *mongoCollection) FindOne(ctx context.Context, filter bson.M, dest any) error {
	defer metrics.ObserveDBQuery("find", time.Now())
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.col.FindOne(ctx, orEmpty(filter)).Decode(dest)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("store: find one %s: %w", c.col.Name(), err)
	}
	return nil
}

func (c *mongoCollection) Find(ctx context.Context, filter bson.M, dest any) error {
	defer metrics.ObserveDBQuery("find", time.Now())
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cur, err := c.col.Find(ctx, orEmpty(filter), options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return fmt.Errorf("store: find %s: %w", c.col.Name(), err)
	}
	if err := cur.All(ctx, dest); err != nil {
		return fmt.Errorf("store: decode %s: %w", c.col.Name(), err)
	}
	return nil
}

func (c *mongoCollection) UpdateOne(ctx context.Context, filter bson.M, set bson.M) (int64, error) {
	defer metrics.ObserveDBQuery("update", time.Now())
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.col.UpdateOne(ctx, orEmpty(filter), bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return 0, fmt.Errorf("%w: %s", ErrDuplicate, c.col.Name())
		}
		return 0, fmt.Errorf("store: update %s: %w", c.col.Name(), err)
	}
	return res.MatchedCount, nil
}

func (c *mongoCollection) Count(ctx context.Context, filter bson.M) (int64, error) {
	defer metrics.ObserveDBQuery("count", time.Now())
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	n, err := c.col.CountDocuments(ctx, orEmpty(filter))
	if err != nil {
		return 0, fmt.Errorf("store: count %s: %w", c.col.Name(), err)
	}
	return n, nil
}

func orEmpty(filter bson.M) bson.M {
	if filter == nil {
		return bson.M{}
	}
	return filter
}
