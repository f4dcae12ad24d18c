package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/websession/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunObjectStoreContract runs a suite of tests to verify that an ObjectStore implementation
// adheres to the defined interface contract. newObject must return distinct objects for distinct i.
func RunObjectStoreContract[T any](t *testing.T, store ObjectStore[T], newObject func(i int) T) {
	ctx := context.Background()
	id := "contract-test-object-" + time.Now().Format("20060102150405.000000000")

	t.Run("Create and Get", func(t *testing.T) {
		obj := newObject(1)
		require.NoError(t, store.Create(ctx, id, obj), "Create should not return error")

		loaded, err := store.Get(ctx, id)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, obj, loaded)
	})

	t.Run("Create Duplicate", func(t *testing.T) {
		err := store.Create(ctx, id, newObject(2))
		assert.ErrorIs(t, err, domain.ErrDuplicate)

		// The original object must survive the rejected create.
		loaded, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, newObject(1), loaded)
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, "non-existent-"+id)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, id))

		_, err := store.Get(ctx, id)
		assert.ErrorIs(t, err, domain.ErrNotFound, "Get after Delete should return ErrNotFound")

		assert.NoError(t, store.Delete(ctx, id), "Delete of a missing id should be a no-op")
		assert.NoError(t, store.Create(ctx, id, newObject(3)), "id should be reusable after Delete")
	})
}

// RunChannelContract runs a suite of tests to verify that a Channel implementation
// adheres to the defined interface contract. attach must return a new client
// connected to the same shared storage on every call.
func RunChannelContract(t *testing.T, attach func(t *testing.T) Channel) {
	ctx := context.Background()
	key := "contract-test-key-" + time.Now().Format("20060102150405.000000000")
	quiet := 150 * time.Millisecond

	a := attach(t)
	b := attach(t)

	recvA := make(chan Notification, 16)
	recvB := make(chan Notification, 16)

	unsubA, err := a.Subscribe(ctx, func(n Notification) { recvA <- n })
	require.NoError(t, err)
	defer unsubA()

	unsubB, err := b.Subscribe(ctx, func(n Notification) { recvB <- n })
	require.NoError(t, err)

	t.Run("Other Clients Are Notified", func(t *testing.T) {
		require.NoError(t, a.Publish(ctx, key, "v1"))
		n := awaitNotification(t, recvB, 2*time.Second)
		assert.Equal(t, Notification{Key: key, NewValue: "v1"}, n)
	})

	t.Run("Writer Is Not Notified", func(t *testing.T) {
		assertNoNotification(t, recvA, quiet)
	})

	t.Run("Identical Write Is Silent", func(t *testing.T) {
		require.NoError(t, a.Publish(ctx, key, "v1"))
		assertNoNotification(t, recvB, quiet)
	})

	t.Run("Reverse Direction", func(t *testing.T) {
		require.NoError(t, b.Publish(ctx, key, "v2"))
		n := awaitNotification(t, recvA, 2*time.Second)
		assert.Equal(t, Notification{Key: key, NewValue: "v2"}, n)
	})

	t.Run("Unsubscribe", func(t *testing.T) {
		unsubB()
		unsubB() // idempotent

		require.NoError(t, a.Publish(ctx, key, "v3"))
		assertNoNotification(t, recvB, quiet)
	})
}

func awaitNotification(t *testing.T, ch <-chan Notification, timeout time.Duration) Notification {
	t.Helper()
	select {
	case n := <-ch:
		return n
	case <-time.After(timeout):
		t.Fatalf("no notification received within %v", timeout)
		return Notification{}
	}
}

func assertNoNotification(t *testing.T, ch <-chan Notification, wait time.Duration) {
	t.Helper()
	select {
	case n := <-ch:
		t.Errorf("unexpected notification: %+v", n)
	case <-time.After(wait):
	}
}
