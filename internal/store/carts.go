package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/models"
)

// CartStore persists draft carts keyed by owner (user id hex or anonymous
// session key). It implements cart.Storage.
type CartStore struct {
	col *mongo.Collection
}

func NewCartStore(db *mongo.Database) *CartStore {
	return &CartStore{col: db.Collection("carts")}
}

// Get returns the owner's cart or ErrNotFound.
func (s *CartStore) Get(ctx context.Context, owner string) (models.Cart, error) {
	var cart models.Cart
	err := s.col.FindOne(ctx, bson.M{"owner": owner}).Decode(&cart)
	if err == mongo.ErrNoDocuments {
		return models.Cart{}, ErrNotFound
	}
	if err != nil {
		return models.Cart{}, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

// Put upserts the owner's cart document.
func (s *CartStore) Put(ctx context.Context, cart models.Cart) error {
	cart.UpdatedAt = time.Now().UTC()

	update := bson.M{"$set": bson.M{
		"items":      cart.Items,
		"migratedTo": cart.MigratedTo,
		"updatedAt":  cart.UpdatedAt,
	}}

	opts := options.Update().SetUpsert(true)
	_, err := s.col.UpdateOne(ctx, bson.M{"owner": cart.Owner}, update, opts)
	if err != nil {
		return fmt.Errorf("put cart: %w", err)
	}
	return nil
}
