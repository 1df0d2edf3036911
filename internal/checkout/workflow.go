// Package checkout implements the order-placement workflow: validate stock
// against the live catalog, charge or record the payment, persist the
// order and decrement stock. Steps run strictly in that sequence; any
// failure before the order write leaves no durable trace.
package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
	"storefront/internal/payment"
	"storefront/internal/store"
)

// CatalogReader re-reads products at validation time. Implemented by
// store.ProductStore.
type CatalogReader interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Product, error)
}

// StockAdjuster applies the conditional per-item decrement. A decrement
// that observes insufficient remaining stock must fail with
// store.ErrStockConflict rather than drive stock negative.
type StockAdjuster interface {
	DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error
}

// OrderWriter persists the order record. Append-only.
type OrderWriter interface {
	Create(ctx context.Context, order models.Order) (primitive.ObjectID, error)
}

// CardTokenizer exchanges raw card fields for a redacted handle.
// Implemented by payment.Gateway.
type CardTokenizer interface {
	Tokenize(ctx context.Context, card payment.Card) (payment.Token, error)
}

// CartClearer empties the actor's cart once the order is placed.
type CartClearer interface {
	ClearNow(ctx context.Context, owner string) error
}

// Request carries everything one placement attempt needs. Card is consumed
// during the charge step and never stored.
type Request struct {
	UserID        primitive.ObjectID
	CartOwner     string
	Lines         []models.CartLine
	Customer      models.CustomerInfo
	PaymentMethod string
	Card          *payment.Card
}

// Workflow orchestrates one placement attempt at a time; concurrent
// invocations only contend on the conditional stock decrements.
type Workflow struct {
	catalog CatalogReader
	stock   StockAdjuster
	orders  OrderWriter
	gateway CardTokenizer
	carts   CartClearer
	pixKey  string
	logger  *log.Entry
}

func NewWorkflow(catalog CatalogReader, stock StockAdjuster, orders OrderWriter,
	gateway CardTokenizer, carts CartClearer, pixKey string, logger *log.Entry) *Workflow {
	if logger == nil {
		logger = log.New().WithField("component", "checkout")
	}
	return &Workflow{
		catalog: catalog,
		stock:   stock,
		orders:  orders,
		gateway: gateway,
		carts:   carts,
		pixKey:  pixKey,
		logger:  logger,
	}
}

// PlaceOrder runs Validating, Charging, Persisting and StockAdjusting in
// order and returns the created order id. When a stock decrement loses the
// race after the order exists, the id is returned together with an
// OversoldError and the cart is left untouched.
func (w *Workflow) PlaceOrder(ctx context.Context, req Request) (primitive.ObjectID, error) {
	if req.UserID.IsZero() {
		return primitive.NilObjectID, ErrUnauthenticated
	}
	if len(req.Lines) == 0 {
		return primitive.NilObjectID, ErrEmptyCart
	}
	for _, line := range req.Lines {
		if line.Quantity < 1 {
			return primitive.NilObjectID, fmt.Errorf("invalid quantity %d for product %s",
				line.Quantity, line.ProductID.Hex())
		}
	}
	if req.PaymentMethod != models.PaymentMethodCredit && req.PaymentMethod != models.PaymentMethodPix {
		return primitive.NilObjectID, fmt.Errorf("unknown payment method %q", req.PaymentMethod)
	}

	items, total, err := w.validate(ctx, req.Lines)
	if err != nil {
		return primitive.NilObjectID, err
	}

	info, err := w.charge(ctx, req, total)
	if err != nil {
		return primitive.NilObjectID, err
	}

	order := models.Order{
		UserID:        req.UserID,
		Items:         items,
		CustomerInfo:  req.Customer,
		PaymentMethod: req.PaymentMethod,
		PaymentInfo:   info,
		Total:         total,
		Status:        models.OrderStatusPending,
	}

	orderID, err := w.orders.Create(ctx, order)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("persist order: %w", err)
	}

	if err := w.adjustStock(ctx, orderID, items); err != nil {
		// The order already exists; it is not rolled back. Surfaced for
		// manual reconciliation, cart retained so the actor can retry a
		// corrected purchase.
		return orderID, err
	}

	if err := w.carts.ClearNow(ctx, req.CartOwner); err != nil {
		w.logger.WithError(err).WithField("order", orderID.Hex()).Error("cart clear failed")
	}

	w.logger.WithFields(log.Fields{
		"order": orderID.Hex(),
		"user":  req.UserID.Hex(),
		"total": total,
	}).Info("order placed")

	return orderID, nil
}

// validate re-reads every product and asserts stock covers the requested
// quantity. This is the sole stock gate; the cart never checks at
// add-time. The whole order is rejected on the first failing line.
func (w *Workflow) validate(ctx context.Context, lines []models.CartLine) ([]models.OrderItem, float64, error) {
	items := make([]models.OrderItem, 0, len(lines))
	total := decimal.Zero

	for _, line := range lines {
		product, err := w.catalog.GetByID(ctx, line.ProductID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, 0, ProductNotFoundError{ProductID: line.ProductID}
		}
		if err != nil {
			return nil, 0, fmt.Errorf("validate line %s: %w", line.ProductID.Hex(), err)
		}

		if product.Stock < line.Quantity {
			return nil, 0, InsufficientStockError{
				ProductID: line.ProductID,
				Available: product.Stock,
				Requested: line.Quantity,
			}
		}

		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  line.Quantity,
		})
		price := decimal.NewFromFloat(product.Price)
		total = total.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	value, _ := total.Float64()
	return items, value, nil
}

// charge tokenizes the card for credit orders. Pix orders skip the gateway
// entirely and record the static receiving key.
func (w *Workflow) charge(ctx context.Context, req Request, total float64) (models.PaymentInfo, error) {
	if req.PaymentMethod == models.PaymentMethodPix {
		pix := payment.NewPixCharge(w.pixKey, total)
		return models.PaymentInfo{Type: models.PaymentMethodPix, PixKey: pix.Key}, nil
	}

	if req.Card == nil {
		return models.PaymentInfo{}, ErrCardRequired
	}

	token, err := w.gateway.Tokenize(ctx, *req.Card)
	if errors.Is(err, payment.ErrRejected) {
		return models.PaymentInfo{}, fmt.Errorf("%w: %v", ErrPaymentDeclined, err)
	}
	if err != nil {
		return models.PaymentInfo{}, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	return models.PaymentInfo{
		Type:  models.PaymentMethodCredit,
		Brand: token.Brand,
		Last4: token.Last4,
	}, nil
}

// adjustStock decrements every item independently. A conditional miss
// means a concurrent placement took the remaining stock since validation;
// the failing products are collected and reported, the rest still
// decremented.
func (w *Workflow) adjustStock(ctx context.Context, orderID primitive.ObjectID, items []models.OrderItem) error {
	var failed []primitive.ObjectID

	for _, item := range items {
		err := w.stock.DecrementStock(ctx, item.ProductID, item.Quantity)
		if errors.Is(err, store.ErrStockConflict) || errors.Is(err, store.ErrNotFound) {
			w.logger.WithFields(log.Fields{
				"order":   orderID.Hex(),
				"product": item.ProductID.Hex(),
				"qty":     item.Quantity,
			}).Warn("stock decrement lost race")
			failed = append(failed, item.ProductID)
			continue
		}
		if err != nil {
			w.logger.WithError(err).WithField("product", item.ProductID.Hex()).Error("stock decrement failed")
			failed = append(failed, item.ProductID)
		}
	}

	if len(failed) > 0 {
		return OversoldError{OrderID: orderID, ProductIDs: failed}
	}
	return nil
}
