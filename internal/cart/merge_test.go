package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

func TestMergeAdoptsAnonymousDraft(t *testing.T) {
	storage := newMemStorage()
	a := primitive.NewObjectID()

	anon := models.Cart{Owner: "sess-1", Items: []models.CartLine{line(a, 10, 2)}}
	require.NoError(t, storage.Put(context.Background(), anon))
	storage.puts = 0

	require.NoError(t, Merge(context.Background(), storage, "sess-1", "user-1"))

	userCart, ok := storage.saved("user-1")
	require.True(t, ok)
	assert.Len(t, userCart.Items, 1)
	assert.Equal(t, 2, userCart.Items[0].Quantity)

	anonCart, _ := storage.saved("sess-1")
	assert.Empty(t, anonCart.Items)
	assert.Equal(t, "user-1", anonCart.MigratedTo)
}

func TestMergeExistingUserCartWins(t *testing.T) {
	storage := newMemStorage()
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	require.NoError(t, storage.Put(context.Background(),
		models.Cart{Owner: "sess-1", Items: []models.CartLine{line(a, 10, 1)}}))
	require.NoError(t, storage.Put(context.Background(),
		models.Cart{Owner: "user-1", Items: []models.CartLine{line(b, 5, 3)}}))

	require.NoError(t, Merge(context.Background(), storage, "sess-1", "user-1"))

	userCart, _ := storage.saved("user-1")
	require.Len(t, userCart.Items, 1)
	assert.Equal(t, b, userCart.Items[0].ProductID)

	// The anonymous copy is still discarded and marked.
	anonCart, _ := storage.saved("sess-1")
	assert.Empty(t, anonCart.Items)
	assert.Equal(t, "user-1", anonCart.MigratedTo)
}

func TestMergeIsIdempotent(t *testing.T) {
	storage := newMemStorage()
	a := primitive.NewObjectID()

	require.NoError(t, storage.Put(context.Background(),
		models.Cart{Owner: "sess-1", Items: []models.CartLine{line(a, 10, 2)}}))

	require.NoError(t, Merge(context.Background(), storage, "sess-1", "user-1"))
	first, _ := storage.saved("user-1")

	require.NoError(t, Merge(context.Background(), storage, "sess-1", "user-1"))
	second, _ := storage.saved("user-1")

	assert.Equal(t, first.Items, second.Items, "second merge must not duplicate lines")
}

func TestMergeWithNoAnonymousCartIsNoOp(t *testing.T) {
	storage := newMemStorage()

	require.NoError(t, Merge(context.Background(), storage, "sess-1", "user-1"))

	_, ok := storage.saved("user-1")
	assert.False(t, ok)
	assert.Equal(t, 0, storage.putCount())
}

func TestMergeRequiresBothOwners(t *testing.T) {
	storage := newMemStorage()

	assert.Error(t, Merge(context.Background(), storage, "", "user-1"))
	assert.Error(t, Merge(context.Background(), storage, "sess-1", ""))
}
