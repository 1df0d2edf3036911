package handlers

import "fmt"

// validateProductFields enforces the catalog invariants: non-negative
// price and stock, and oldPrice (when present) at or above price.
func validateProductFields(price, oldPrice float64, stock int) error {
	if price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	if oldPrice != 0 && oldPrice < price {
		return fmt.Errorf("oldPrice must be greater than or equal to price")
	}
	if stock < 0 {
		return fmt.Errorf("stock must not be negative")
	}
	return nil
}

// resolveProductUpdate merges a partial update into the existing values
// and re-validates the result, so a patch can never leave the product in
// an invalid combination.
type productUpdateInput struct {
	Price    *float64
	OldPrice *float64
	Stock    *int
}

type productUpdateResult struct {
	Price    float64
	OldPrice float64
	Stock    int
}

func resolveProductUpdate(existingPrice, existingOldPrice float64, existingStock int, input productUpdateInput) (productUpdateResult, error) {
	result := productUpdateResult{
		Price:    existingPrice,
		OldPrice: existingOldPrice,
		Stock:    existingStock,
	}

	if input.Price != nil {
		result.Price = *input.Price
	}
	if input.OldPrice != nil {
		result.OldPrice = *input.OldPrice
	}
	if input.Stock != nil {
		result.Stock = *input.Stock
	}

	if err := validateProductFields(result.Price, result.OldPrice, result.Stock); err != nil {
		return productUpdateResult{}, err
	}
	return result, nil
}
