package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order status values. The workflow always creates orders as pending;
// later transitions are admin-driven.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// Payment methods accepted at checkout.
const (
	PaymentMethodCredit = "credit"
	PaymentMethodPix    = "pix"
)

// OrderItem is a snapshot of a product line at placement time. Later edits
// to the product never alter historical orders.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Price     float64            `bson:"price" json:"price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// CustomerInfo is the delivery address snapshot recorded on the order.
type CustomerInfo struct {
	Name         string `bson:"name" json:"name"`
	Phone        string `bson:"phone" json:"phone"`
	Street       string `bson:"street" json:"street"`
	Number       string `bson:"number" json:"number"`
	Complement   string `bson:"complement,omitempty" json:"complement,omitempty"`
	Neighborhood string `bson:"neighborhood" json:"neighborhood"`
	City         string `bson:"city" json:"city"`
	State        string `bson:"state" json:"state"`
	ZipCode      string `bson:"zipCode" json:"zipCode"`
}

// PaymentInfo is the redacted payment record. Raw card numbers and CVVs are
// never persisted; credit orders carry only brand and last4.
type PaymentInfo struct {
	Type   string `bson:"type" json:"type"`
	Brand  string `bson:"brand,omitempty" json:"brand,omitempty"`
	Last4  string `bson:"last4,omitempty" json:"last4,omitempty"`
	PixKey string `bson:"pixKey,omitempty" json:"pixKey,omitempty"`
}

// Order defines the persisted order document. Orders are append-only from
// the checkout workflow's perspective; only status is mutated afterwards.
type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	Items         []OrderItem        `bson:"items" json:"items"`
	CustomerInfo  CustomerInfo       `bson:"customerInfo" json:"customerInfo"`
	PaymentMethod string             `bson:"paymentMethod" json:"paymentMethod"`
	PaymentInfo   PaymentInfo        `bson:"paymentInfo" json:"paymentInfo"`
	Total         float64            `bson:"total" json:"total"`
	Status        string             `bson:"status" json:"status"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

// ValidOrderStatus reports whether s is one of the known status values.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}
