package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/postal"
)

// LookupCEP proxies the postal service so the UI can prefill delivery
// forms. Not part of the checkout workflow.
func LookupCEP(client *postal.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		address, err := client.Lookup(c.Request.Context(), c.Param("cep"))
		if errors.Is(err, postal.ErrInvalidCEP) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid postal code"})
			return
		}
		if errors.Is(err, postal.ErrCEPNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "postal code not found"})
			return
		}
		if err != nil {
			respondWithError(c, http.StatusServiceUnavailable, "GET /cep/:cep", "postal lookup failed")
			return
		}

		c.JSON(http.StatusOK, address)
	}
}
