package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartLine is one draft line in a cart. Name and price are display
// snapshots; the checkout workflow re-reads the product before placing.
type CartLine struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Price     float64            `bson:"price" json:"price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// Cart is the persisted draft cart, keyed by its owner: either an
// authenticated user id (hex) or an anonymous session key. MigratedTo is
// set once an anonymous cart has been merged into a user cart, so the
// migration never runs twice.
type Cart struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Owner      string             `bson:"owner" json:"owner"`
	Items      []CartLine         `bson:"items" json:"items"`
	MigratedTo string             `bson:"migratedTo,omitempty" json:"-"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}
