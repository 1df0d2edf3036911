package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/cart"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/store"
)

// Anonymous cart owners are namespaced so a forged session header can
// never address a user's cart.
const sessionOwnerPrefix = "sess:"

func cartOwner(c *gin.Context) (string, bool) {
	actor := middleware.ActorFromContext(c)
	if actor.Authenticated() {
		return actor.ID, true
	}
	if sid := strings.TrimSpace(c.GetHeader("X-Session-Id")); sid != "" {
		return sessionOwnerPrefix + sid, true
	}
	return "", false
}

type addCartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// Quantity carries no binding constraint: values below 1 are a silent
// no-op at the cart layer, not a request error.
type setCartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type mergeCartRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

// GetCart returns the owner's current draft, including pending mutations
// that have not been persisted yet.
func GetCart(saver *cart.Saver) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := cartOwner(c)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing X-Session-Id header"})
			return
		}

		loaded, err := saver.Load(c.Request.Context(), owner)
		if err != nil {
			respondWithError(c, http.StatusServiceUnavailable, "GET /cart", "cart could not be fetched")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"items": loaded.Items,
			"total": cart.Total(loaded),
		})
	}
}

// AddCartItem appends a line or increments an existing one. The product is
// read for its display snapshot; stock is deliberately not checked here.
func AddCartItem(saver *cart.Saver, products *store.ProductStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart/items"
		defer handlePanic(c, route)

		owner, ok := cartOwner(c)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing X-Session-Id header"})
			return
		}

		var req addCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		productID, err := primitive.ObjectIDFromHex(req.ProductID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid productId"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		product, err := products.GetByID(ctx, productID)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		if err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "product could not be fetched")
			return
		}

		line := models.CartLine{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  req.Quantity,
		}

		updated, err := saver.Update(ctx, owner, func(current models.Cart) models.Cart {
			return cart.AddItem(current, line)
		})
		if err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "cart could not be updated")
			return
		}

		c.JSON(http.StatusOK, gin.H{"items": updated.Items, "total": cart.Total(updated)})
	}
}

// SetCartItemQuantity replaces a line's quantity. Values below 1 are a
// silent no-op; removing a line takes the dedicated DELETE call.
func SetCartItemQuantity(saver *cart.Saver) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := cartOwner(c)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing X-Session-Id header"})
			return
		}

		productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid productId"})
			return
		}

		var req setCartQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		updated, err := saver.Update(c.Request.Context(), owner, func(current models.Cart) models.Cart {
			return cart.SetQuantity(current, productID, req.Quantity)
		})
		if err != nil {
			respondWithError(c, http.StatusServiceUnavailable, "PUT /cart/items/:productId", "cart could not be updated")
			return
		}

		c.JSON(http.StatusOK, gin.H{"items": updated.Items, "total": cart.Total(updated)})
	}
}

// RemoveCartItem drops a line entirely.
func RemoveCartItem(saver *cart.Saver) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := cartOwner(c)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing X-Session-Id header"})
			return
		}

		productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid productId"})
			return
		}

		updated, err := saver.Update(c.Request.Context(), owner, func(current models.Cart) models.Cart {
			return cart.RemoveItem(current, productID)
		})
		if err != nil {
			respondWithError(c, http.StatusServiceUnavailable, "DELETE /cart/items/:productId", "cart could not be updated")
			return
		}

		c.JSON(http.StatusOK, gin.H{"items": updated.Items, "total": cart.Total(updated)})
	}
}

// ClearCart empties the cart and persists the empty state immediately.
func ClearCart(saver *cart.Saver) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := cartOwner(c)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing X-Session-Id header"})
			return
		}

		if err := saver.ClearNow(c.Request.Context(), owner); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, "DELETE /cart", "cart could not be cleared")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
	}
}

// MergeCart runs the one-shot anonymous-to-authenticated migration after
// login. Idempotent: repeating the call never duplicates lines.
func MergeCart(saver *cart.Saver, storage cart.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart/merge"
		defer handlePanic(c, route)

		actor := middleware.ActorFromContext(c)
		if !actor.Authenticated() {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req mergeCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		sessionOwner := sessionOwnerPrefix + strings.TrimSpace(req.SessionID)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		// Pending debounced writes must land before the migration reads
		// durable state.
		if err := saver.Flush(ctx, sessionOwner); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "cart could not be merged")
			return
		}
		if err := saver.Flush(ctx, actor.ID); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "cart could not be merged")
			return
		}

		if err := cart.Merge(ctx, storage, sessionOwner, actor.ID); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "cart could not be merged")
			return
		}

		log.WithField("user", actor.ID).Info("anonymous cart merged")
		c.JSON(http.StatusOK, gin.H{"message": "cart merged"})
	}
}
