package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/store"
)

// GetProducts lists the catalog. Supports ?category= for exact category
// match and ?featured=true for the home page selection.
func GetProducts(products *store.ProductStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var err error
		var result interface{}

		switch {
		case strings.EqualFold(c.Query("featured"), "true"):
			result, err = products.GetFeatured(ctx)
		case strings.TrimSpace(c.Query("category")) != "":
			result, err = products.GetByCategory(ctx, strings.TrimSpace(c.Query("category")))
		default:
			result, err = products.List(ctx)
		}

		if err != nil {
			respondWithError(c, http.StatusServiceUnavailable, "GET /products", "products could not be fetched")
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// GetProduct returns a single product by id.
func GetProduct(products *store.ProductStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		product, err := products.GetByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		if err != nil {
			respondWithError(c, http.StatusServiceUnavailable, "GET /products/:id", "product could not be fetched")
			return
		}

		c.JSON(http.StatusOK, product)
	}
}
