package checkout

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrUnauthenticated means no actor identity was supplied. Checked
	// before any read or write.
	ErrUnauthenticated = errors.New("actor is not authenticated")

	// ErrEmptyCart means there is nothing to place.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrPaymentDeclined means the gateway rejected the card. No order
	// exists.
	ErrPaymentDeclined = errors.New("payment declined")

	// ErrGatewayUnavailable means the processor failed transiently. The
	// caller may resubmit; no order exists.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrCardRequired means a credit order arrived without card fields.
	ErrCardRequired = errors.New("card details are required for credit payment")
)

// ProductNotFoundError rejects the attempt when a cart line references a
// product that no longer exists.
type ProductNotFoundError struct {
	ProductID primitive.ObjectID
}

func (e ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID.Hex())
}

// InsufficientStockError rejects the whole order when any line fails the
// pre-charge stock check. Nothing has been written at this point.
type InsufficientStockError struct {
	ProductID primitive.ObjectID
	Available int
	Requested int
}

func (e InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: %d available, %d requested",
		e.ProductID.Hex(), e.Available, e.Requested)
}

// OversoldError reports a stock decrement that lost the race after the
// order was already persisted. The order stands as pending; the condition
// is reconciled manually by an administrator.
type OversoldError struct {
	OrderID    primitive.ObjectID
	ProductIDs []primitive.ObjectID
}

func (e OversoldError) Error() string {
	return fmt.Sprintf("order %s placed but %d stock decrement(s) failed",
		e.OrderID.Hex(), len(e.ProductIDs))
}
