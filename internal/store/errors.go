package store

import "errors"

var (
	// ErrNotFound means the referenced document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStockConflict means a conditional stock decrement matched no
	// document: the product is gone or its remaining stock is lower than
	// the requested quantity.
	ErrStockConflict = errors.New("insufficient stock for decrement")

	// ErrDuplicate means a unique index rejected the write.
	ErrDuplicate = errors.New("duplicate document")
)
