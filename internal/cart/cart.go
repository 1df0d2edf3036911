// Package cart maintains the draft list of lines an actor intends to buy.
// Line operations are pure; persistence goes through Saver, and the
// anonymous-to-authenticated handoff through Merge.
package cart

import (
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

// AddItem increments an existing line's quantity or appends a new line.
// Stock is deliberately not checked here; checkout is the sole stock gate.
func AddItem(c models.Cart, line models.CartLine) models.Cart {
	if line.Quantity < 1 {
		line.Quantity = 1
	}

	for i, existing := range c.Items {
		if existing.ProductID == line.ProductID {
			c.Items = cloneLines(c.Items)
			c.Items[i].Quantity += line.Quantity
			return c
		}
	}

	c.Items = append(cloneLines(c.Items), line)
	return c
}

// RemoveItem drops the line entirely. No-op when absent.
func RemoveItem(c models.Cart, productID primitive.ObjectID) models.Cart {
	items := make([]models.CartLine, 0, len(c.Items))
	for _, line := range c.Items {
		if line.ProductID != productID {
			items = append(items, line)
		}
	}
	c.Items = items
	return c
}

// SetQuantity replaces a line's quantity. Quantities below 1 are ignored;
// removing a line takes a dedicated RemoveItem call.
func SetQuantity(c models.Cart, productID primitive.ObjectID, quantity int) models.Cart {
	if quantity < 1 {
		return c
	}

	for i, line := range c.Items {
		if line.ProductID == productID {
			c.Items = cloneLines(c.Items)
			c.Items[i].Quantity = quantity
			return c
		}
	}
	return c
}

// Clear empties all lines.
func Clear(c models.Cart) models.Cart {
	c.Items = nil
	return c
}

// Total sums price times quantity over all lines. Decimal arithmetic keeps
// repeated additions exact.
func Total(c models.Cart) float64 {
	total := decimal.Zero
	for _, line := range c.Items {
		price := decimal.NewFromFloat(line.Price)
		total = total.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	value, _ := total.Float64()
	return value
}

func cloneLines(lines []models.CartLine) []models.CartLine {
	out := make([]models.CartLine, len(lines))
	copy(out, lines)
	return out
}
