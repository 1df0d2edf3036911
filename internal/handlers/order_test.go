package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/checkout"
)

func checkoutErrorResponse(t *testing.T, orderID primitive.ObjectID, err error) (int, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondCheckoutError(c, "POST /orders", orderID, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestRespondCheckoutErrorInsufficientStock(t *testing.T) {
	productID := primitive.NewObjectID()
	code, body := checkoutErrorResponse(t, primitive.NilObjectID, checkout.InsufficientStockError{
		ProductID: productID,
		Available: 1,
		Requested: 3,
	})

	assert.Equal(t, 400, code)
	assert.Equal(t, productID.Hex(), body["productId"])
	assert.Equal(t, float64(1), body["available"])
	assert.Equal(t, float64(3), body["requested"])
}

func TestRespondCheckoutErrorPaymentDeclined(t *testing.T) {
	code, _ := checkoutErrorResponse(t, primitive.NilObjectID, checkout.ErrPaymentDeclined)
	assert.Equal(t, 402, code)
}

func TestRespondCheckoutErrorGatewayUnavailable(t *testing.T) {
	code, _ := checkoutErrorResponse(t, primitive.NilObjectID, checkout.ErrGatewayUnavailable)
	assert.Equal(t, 503, code)
}

func TestRespondCheckoutErrorOversoldCarriesOrderID(t *testing.T) {
	orderID := primitive.NewObjectID()
	productID := primitive.NewObjectID()

	code, body := checkoutErrorResponse(t, orderID, checkout.OversoldError{
		OrderID:    orderID,
		ProductIDs: []primitive.ObjectID{productID},
	})

	assert.Equal(t, 409, code)
	assert.Equal(t, orderID.Hex(), body["orderId"], "the order exists and the caller must learn its id")
}

func TestRespondCheckoutErrorEmptyCart(t *testing.T) {
	code, _ := checkoutErrorResponse(t, primitive.NilObjectID, checkout.ErrEmptyCart)
	assert.Equal(t, 400, code)
}

func TestRespondCheckoutErrorUnknownFallsBackTo500(t *testing.T) {
	code, _ := checkoutErrorResponse(t, primitive.NilObjectID, assert.AnError)
	assert.Equal(t, 500, code)
}
