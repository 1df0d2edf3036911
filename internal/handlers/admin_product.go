package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
	"storefront/internal/store"
)

/* =======================
   REQUEST DTOs
======================= */

type createProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Category    string  `json:"category" binding:"required"`
	Price       float64 `json:"price" binding:"required,gte=0"`
	OldPrice    float64 `json:"oldPrice" binding:"omitempty,gte=0"`
	Stock       int     `json:"stock" binding:"gte=0"`
	Featured    bool    `json:"featured"`
	ImageURL    string  `json:"imageUrl"`
}

type updateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Price       *float64 `json:"price"`
	OldPrice    *float64 `json:"oldPrice"`
	Stock       *int     `json:"stock"`
	Featured    *bool    `json:"featured"`
	ImageURL    *string  `json:"imageUrl"`
}

/* =======================
   CREATE
======================= */

func CreateProduct(products *store.ProductStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/products"
		defer handlePanic(c, route)

		var req createProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if err := validateProductFields(req.Price, req.OldPrice, req.Stock); err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		id, err := products.Create(ctx, models.Product{
			Name:        strings.TrimSpace(req.Name),
			Description: strings.TrimSpace(req.Description),
			Category:    strings.TrimSpace(req.Category),
			Price:       req.Price,
			OldPrice:    req.OldPrice,
			Stock:       req.Stock,
			Featured:    req.Featured,
			ImageURL:    strings.TrimSpace(req.ImageURL),
		})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.WithField("product", id.Hex()).Info("product created")
		c.JSON(http.StatusCreated, gin.H{"id": id.Hex()})
	}
}

/* =======================
   UPDATE
======================= */

func UpdateProduct(products *store.ProductStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/products/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req updateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		existing, err := products.GetByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		resolved, err := resolveProductUpdate(existing.Price, existing.OldPrice, existing.Stock, productUpdateInput{
			Price:    req.Price,
			OldPrice: req.OldPrice,
			Stock:    req.Stock,
		})
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		fields := bson.M{
			"price":    resolved.Price,
			"oldPrice": resolved.OldPrice,
			"stock":    resolved.Stock,
		}
		if req.Name != nil {
			fields["name"] = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			fields["description"] = strings.TrimSpace(*req.Description)
		}
		if req.Category != nil {
			fields["category"] = strings.TrimSpace(*req.Category)
		}
		if req.Featured != nil {
			fields["featured"] = *req.Featured
		}
		if req.ImageURL != nil {
			fields["imageUrl"] = strings.TrimSpace(*req.ImageURL)
		}

		if err := products.Update(ctx, id, fields); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "product updated"})
	}
}

/* =======================
   DELETE
======================= */

func DeleteProduct(products *store.ProductStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/products/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		err = products.Delete(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.WithField("product", id.Hex()).Info("product deleted")
		c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
	}
}
