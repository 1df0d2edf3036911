package cart

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

func addLine(l models.CartLine) func(models.Cart) models.Cart {
	return func(c models.Cart) models.Cart { return AddItem(c, l) }
}

func TestSaverCoalescesBurstIntoOneWrite(t *testing.T) {
	storage := newMemStorage()
	saver := NewSaver(storage, 30*time.Millisecond, nil)
	a := primitive.NewObjectID()

	for i := 0; i < 5; i++ {
		_, err := saver.Update(context.Background(), "u1", addLine(line(a, 10, 1)))
		require.NoError(t, err)
	}

	assert.Equal(t, 0, storage.putCount(), "nothing durable before the delay elapses")

	require.Eventually(t, func() bool {
		return storage.putCount() == 1
	}, time.Second, 5*time.Millisecond)

	saved, ok := storage.saved("u1")
	require.True(t, ok)
	require.Len(t, saved.Items, 1)
	assert.Equal(t, 5, saved.Items[0].Quantity)
}

func TestSaverFlushWritesImmediately(t *testing.T) {
	storage := newMemStorage()
	saver := NewSaver(storage, time.Hour, nil)
	a := primitive.NewObjectID()

	_, err := saver.Update(context.Background(), "u1", addLine(line(a, 10, 2)))
	require.NoError(t, err)

	require.NoError(t, saver.Flush(context.Background(), "u1"))

	saved, ok := storage.saved("u1")
	require.True(t, ok)
	assert.Equal(t, 2, saved.Items[0].Quantity)
}

func TestSaverFlushWithoutPendingIsNoOp(t *testing.T) {
	storage := newMemStorage()
	saver := NewSaver(storage, time.Hour, nil)

	require.NoError(t, saver.Flush(context.Background(), "u1"))
	assert.Equal(t, 0, storage.putCount())
}

func TestSaverLoadPrefersPendingCopy(t *testing.T) {
	storage := newMemStorage()
	a := primitive.NewObjectID()
	require.NoError(t, storage.Put(context.Background(),
		models.Cart{Owner: "u1", Items: []models.CartLine{line(a, 10, 1)}}))

	saver := NewSaver(storage, time.Hour, nil)
	_, err := saver.Update(context.Background(), "u1", addLine(line(a, 10, 4)))
	require.NoError(t, err)

	loaded, err := saver.Load(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 5, loaded.Items[0].Quantity, "load must observe the in-flight mutation")
}

func TestSaverLoadMissingCartComesBackEmpty(t *testing.T) {
	saver := NewSaver(newMemStorage(), time.Hour, nil)

	loaded, err := saver.Load(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, "ghost", loaded.Owner)
	assert.Empty(t, loaded.Items)
}

func TestSaverClearNowDiscardsPendingAndPersistsEmpty(t *testing.T) {
	storage := newMemStorage()
	saver := NewSaver(storage, time.Hour, nil)
	a := primitive.NewObjectID()

	_, err := saver.Update(context.Background(), "u1", addLine(line(a, 10, 3)))
	require.NoError(t, err)

	require.NoError(t, saver.ClearNow(context.Background(), "u1"))

	saved, ok := storage.saved("u1")
	require.True(t, ok)
	assert.Empty(t, saved.Items)

	// The discarded draft must not resurface later.
	time.Sleep(20 * time.Millisecond)
	saved, _ = storage.saved("u1")
	assert.Empty(t, saved.Items)
}

func TestSaverConcurrentUpdatesFromTwoTabs(t *testing.T) {
	storage := newMemStorage()
	saver := NewSaver(storage, 10*time.Millisecond, nil)
	a := primitive.NewObjectID()

	done := make(chan struct{}, 2)
	mutate := func() {
		for i := 0; i < 20; i++ {
			_, _ = saver.Update(context.Background(), "u1", addLine(line(a, 10, 1)))
		}
		done <- struct{}{}
	}
	go mutate()
	go mutate()
	<-done
	<-done

	require.NoError(t, saver.Flush(context.Background(), "u1"))
	loaded, err := saver.Load(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, 40, loaded.Items[0].Quantity, "no mutation may be lost")
}

func TestSaverCloseFlushesEverything(t *testing.T) {
	storage := newMemStorage()
	saver := NewSaver(storage, time.Hour, nil)
	a := primitive.NewObjectID()

	_, err := saver.Update(context.Background(), "u1", addLine(line(a, 10, 1)))
	require.NoError(t, err)
	_, err = saver.Update(context.Background(), "u2", addLine(line(a, 10, 2)))
	require.NoError(t, err)

	saver.Close(context.Background())

	_, ok1 := storage.saved("u1")
	_, ok2 := storage.saved("u2")
	assert.True(t, ok1)
	assert.True(t, ok2)
}
