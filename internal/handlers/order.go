package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/payment"
	"storefront/internal/store"
)

/* =========================
   REQUEST DTOs
========================= */

type customerInfoRequest struct {
	Name         string `json:"name" binding:"required"`
	Phone        string `json:"phone" binding:"required"`
	Street       string `json:"street" binding:"required"`
	Number       string `json:"number" binding:"required"`
	Complement   string `json:"complement"`
	Neighborhood string `json:"neighborhood" binding:"required"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state" binding:"required"`
	ZipCode      string `json:"zipCode" binding:"required"`
}

type cardRequest struct {
	Number   string `json:"number" binding:"required"`
	Holder   string `json:"holder"`
	ExpMonth int    `json:"expMonth" binding:"required,min=1,max=12"`
	ExpYear  int    `json:"expYear" binding:"required"`
	CVV      string `json:"cvv" binding:"required"`
}

type checkoutRequest struct {
	CustomerInfo  customerInfoRequest `json:"customerInfo" binding:"required"`
	PaymentMethod string              `json:"paymentMethod" binding:"required,oneof=credit pix"`
	Card          *cardRequest        `json:"card"`
}

/* =========================
   CHECKOUT
========================= */

// Checkout flushes the actor's draft cart and runs the order-placement
// workflow against it.
func Checkout(workflow *checkout.Workflow, saver *cart.Saver) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		actor := middleware.ActorFromContext(c)
		if !actor.Authenticated() {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		userID, err := primitive.ObjectIDFromHex(actor.ID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		if err := saver.Flush(ctx, actor.ID); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "cart could not be read")
			return
		}
		draft, err := saver.Load(ctx, actor.ID)
		if err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "cart could not be read")
			return
		}

		var card *payment.Card
		if req.Card != nil {
			card = &payment.Card{
				Number:   req.Card.Number,
				Holder:   req.Card.Holder,
				ExpMonth: req.Card.ExpMonth,
				ExpYear:  req.Card.ExpYear,
				CVV:      req.Card.CVV,
			}
		}

		orderID, err := workflow.PlaceOrder(ctx, checkout.Request{
			UserID:        userID,
			CartOwner:     actor.ID,
			Lines:         draft.Items,
			Customer:      models.CustomerInfo(req.CustomerInfo),
			PaymentMethod: req.PaymentMethod,
			Card:          card,
		})
		if err != nil {
			respondCheckoutError(c, route, orderID, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"orderId": orderID.Hex(),
			"message": "order created",
		})
	}
}

func respondCheckoutError(c *gin.Context, route string, orderID primitive.ObjectID, err error) {
	var stockErr checkout.InsufficientStockError
	var notFoundErr checkout.ProductNotFoundError
	var oversoldErr checkout.OversoldError

	switch {
	case errors.Is(err, checkout.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, checkout.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "cart is empty"})
	case errors.Is(err, checkout.ErrCardRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "card details are required"})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "insufficient stock",
			"productId": stockErr.ProductID.Hex(),
			"available": stockErr.Available,
			"requested": stockErr.Requested,
		})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "product not found",
			"productId": notFoundErr.ProductID.Hex(),
		})
	case errors.Is(err, checkout.ErrPaymentDeclined):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "payment declined"})
	case errors.Is(err, checkout.ErrGatewayUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payment gateway unavailable, try again"})
	case errors.As(err, &oversoldErr):
		// The order exists; stock reconciliation is manual from here.
		products := make([]string, 0, len(oversoldErr.ProductIDs))
		for _, id := range oversoldErr.ProductIDs {
			products = append(products, id.Hex())
		}
		log.WithFields(log.Fields{"order": orderID.Hex(), "products": products}).
			Warn("order placed with failed stock adjustment")
		c.JSON(http.StatusConflict, gin.H{
			"error":    "order placed but stock adjustment failed",
			"orderId":  orderID.Hex(),
			"products": products,
		})
	default:
		respondWithError(c, http.StatusInternalServerError, route, "order could not be placed")
	}
}

/* =========================
   LIST
========================= */

// GetMyOrders returns the authenticated actor's orders, newest first.
func GetMyOrders(orders *store.OrderStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middleware.ActorFromContext(c)
		userID, err := primitive.ObjectIDFromHex(actor.ID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := orders.ListByUser(ctx, userID)
		if err != nil {
			respondWithError(c, http.StatusServiceUnavailable, "GET /orders", "orders could not be fetched")
			return
		}

		c.JSON(http.StatusOK, result)
	}
}
