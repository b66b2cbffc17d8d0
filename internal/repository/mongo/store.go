// Package mongo implements the repositories on MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/storefront/backend/internal/repository"
)

const (
	productsCollection   = "products"
	ordersCollection     = "orders"
	usersCollection      = "users"
	categoriesCollection = "categories"
)

// Connect dials MongoDB and verifies the connection.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return client, nil
}

// Options tune the store.
type Options struct {
	// Transactions places orders inside a multi-document transaction. It
	// needs a replica set; without it placement falls back to compensating
	// writes.
	Transactions bool
	Logger       *slog.Logger
}

// Store implements repository.Store on one MongoDB database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	opts   Options
}

// NewStore creates a store over the named database.
func NewStore(client *mongo.Client, database string, opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Store{
		client: client,
		db:     client.Database(database),
		opts:   opts,
	}
}

func (s *Store) Products() repository.ProductRepository {
	return &productRepository{collection: s.db.Collection(productsCollection)}
}

func (s *Store) Orders() repository.OrderRepository {
	return &orderRepository{
		client:       s.client,
		orders:       s.db.Collection(ordersCollection),
		products:     s.db.Collection(productsCollection),
		transactions: s.opts.Transactions,
		log:          s.opts.Logger,
	}
}

func (s *Store) Users() repository.UserRepository {
	return &userRepository{collection: s.db.Collection(usersCollection)}
}

func (s *Store) Categories() repository.CategoryRepository {
	return &categoryRepository{collection: s.db.Collection(categoriesCollection)}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// EnsureIndexes creates the unique and lookup indexes the repositories rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		categoriesCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		ordersCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: 1}}},
			{Keys: bson.D{{Key: "isPaid", Value: 1}, {Key: "paidAt", Value: 1}}},
		},
	}

	for name, idx := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// mapError translates driver errors into repository errors.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return repository.ErrDuplicate
	default:
		return err
	}
}
