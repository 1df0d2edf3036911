package payment

import "github.com/google/uuid"

// PixCharge is the static receiving record for a bank-transfer payment.
// No tokenization happens on this path; settlement is confirmed out of
// band and never verified by this system.
type PixCharge struct {
	Key       string
	Amount    float64
	Reference string
}

// NewPixCharge records the configured receiving key, the amount due and a
// fresh reference for reconciliation.
func NewPixCharge(key string, amount float64) PixCharge {
	return PixCharge{
		Key:       key,
		Amount:    amount,
		Reference: uuid.NewString(),
	}
}
