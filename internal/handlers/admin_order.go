package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
	"storefront/internal/store"
)

type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GetAllOrders lists every order for the admin view.
func GetAllOrders(orders *store.OrderStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := orders.ListAll(ctx)
		if err != nil {
			respondWithError(c, http.StatusServiceUnavailable, "GET /admin/api/orders", "orders could not be fetched")
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// UpdateOrderStatus moves an order through its admin-driven lifecycle.
// Orders are never deleted; cancellation is a status, not a removal.
func UpdateOrderStatus(orders *store.OrderStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/orders/:id/status"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req updateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if !models.ValidOrderStatus(req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		err = orders.UpdateStatus(ctx, orderID, req.Status)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.WithFields(log.Fields{"order": orderID.Hex(), "status": req.Status}).Info("order status updated")
		c.JSON(http.StatusOK, gin.H{"message": "order updated"})
	}
}
