package client_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sproutify/sproutify-platform/client"
	"github.com/sproutify/sproutify-platform/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore keeps snapshots in memory for tests.
type memStore struct {
	snap    *client.Snapshot
	saveErr error
	saves   int
}

func (m *memStore) Load() (*client.Snapshot, error) {
	return m.snap, nil
}

func (m *memStore) Save(snap *client.Snapshot) error {
	if m.saveErr != nil {
		return m.saveErr
	}

	copied := *snap
	m.snap = &copied
	m.saves++

	return nil
}

// recordingPusher remembers every push it receives.
type recordingPusher struct {
	pushes  []*models.ReplaceCartRequest
	pushErr error
}

func (p *recordingPusher) PushCart(ctx context.Context, token string, cart *models.ReplaceCartRequest) error {
	p.pushes = append(p.pushes, cart)

	return p.pushErr
}

func newStateForTest(t *testing.T) (*client.State, *memStore, *recordingPusher) {
	t.Helper()

	store := &memStore{}
	pusher := &recordingPusher{}
	state := client.NewState(store, pusher, nil)
	require.NoError(t, state.Load())

	return state, store, pusher
}

func signIn(t *testing.T, state *client.State) {
	t.Helper()

	err := state.SetSession("token-123", &models.User{ID: uuid.New(), Name: "Flora Gardner"})
	require.NoError(t, err)
}

func TestAddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("Same Product Replaces The Line", func(t *testing.T) {
		// Arrange
		state, _, _ := newStateForTest(t)
		productID := uuid.New()

		// Act
		require.NoError(t, state.AddItem(ctx, models.CartItem{ProductID: productID, Name: "Monstera", Quantity: 3}))
		require.NoError(t, state.AddItem(ctx, models.CartItem{ProductID: productID, Name: "Monstera", Quantity: 1}))

		// Assert
		items := state.CartItems()
		require.Len(t, items, 1)
		assert.Equal(t, 1, items[0].Quantity, "second add should replace, not accumulate")
	})

	t.Run("Different Products Append", func(t *testing.T) {
		// Arrange
		state, store, _ := newStateForTest(t)

		// Act
		require.NoError(t, state.AddItem(ctx, models.CartItem{ProductID: uuid.New(), Name: "Monstera", Quantity: 1}))
		require.NoError(t, state.AddItem(ctx, models.CartItem{ProductID: uuid.New(), Name: "Pothos", Quantity: 2}))

		// Assert
		assert.Len(t, state.CartItems(), 2)
		assert.Equal(t, 2, store.saves, "every mutation persists the snapshot")
	})

	t.Run("Signed-In Mutation Pushes Sanitized Cart", func(t *testing.T) {
		// Arrange
		state, _, pusher := newStateForTest(t)
		signIn(t, state)

		// Act
		require.NoError(t, state.AddItem(ctx, models.CartItem{ProductID: uuid.New(), Name: "Calathea", Quantity: 0}))

		// Assert
		require.Len(t, pusher.pushes, 1)
		require.Len(t, pusher.pushes[0].CartItems, 1)
		assert.Equal(t, 1, pusher.pushes[0].CartItems[0].Quantity, "pushed items carry quantity >= 1")
	})

	t.Run("Anonymous Mutation Does Not Push", func(t *testing.T) {
		// Arrange
		state, _, pusher := newStateForTest(t)

		// Act
		require.NoError(t, state.AddItem(ctx, models.CartItem{ProductID: uuid.New(), Quantity: 1}))

		// Assert
		assert.Empty(t, pusher.pushes)
	})

	t.Run("Push Failure Never Surfaces", func(t *testing.T) {
		// Arrange
		state, _, pusher := newStateForTest(t)
		signIn(t, state)
		pusher.pushErr = errors.New("server unreachable")

		// Act
		err := state.AddItem(ctx, models.CartItem{ProductID: uuid.New(), Quantity: 1})

		// Assert
		assert.NoError(t, err)
		assert.Len(t, state.CartItems(), 1, "local mutation stands")
	})

	t.Run("Save Failure Surfaces", func(t *testing.T) {
		// Arrange
		state, store, _ := newStateForTest(t)
		store.saveErr = errors.New("disk full")

		// Act
		err := state.AddItem(ctx, models.CartItem{ProductID: uuid.New(), Quantity: 1})

		// Assert
		assert.Error(t, err)
	})
}

func TestRemoveItem(t *testing.T) {
	ctx := context.Background()

	t.Run("Removes Only The Matching Line", func(t *testing.T) {
		// Arrange
		state, _, _ := newStateForTest(t)
		keepID := uuid.New()
		dropID := uuid.New()
		require.NoError(t, state.AddItem(ctx, models.CartItem{ProductID: keepID, Name: "Keep", Quantity: 1}))
		require.NoError(t, state.AddItem(ctx, models.CartItem{ProductID: dropID, Name: "Drop", Quantity: 1}))

		// Act
		require.NoError(t, state.RemoveItem(ctx, dropID))

		// Assert
		items := state.CartItems()
		require.Len(t, items, 1)
		assert.Equal(t, keepID, items[0].ProductID)
	})

	t.Run("Absent Product Is A No-Op", func(t *testing.T) {
		// Arrange
		state, _, _ := newStateForTest(t)
		require.NoError(t, state.AddItem(ctx, models.CartItem{ProductID: uuid.New(), Quantity: 1}))

		// Act
		require.NoError(t, state.RemoveItem(ctx, uuid.New()))

		// Assert
		assert.Len(t, state.CartItems(), 1)
	})
}

func TestCheckoutDetails(t *testing.T) {
	ctx := context.Background()

	t.Run("Shipping Address And Payment Method Persist", func(t *testing.T) {
		// Arrange
		state, store, _ := newStateForTest(t)

		// Act
		require.NoError(t, state.SaveShippingAddress(ctx, models.Address{
			Address: "12 Fern Way", City: "Portland", PostalCode: "97201", Country: "USA",
		}))
		require.NoError(t, state.SavePaymentMethod(ctx, "PayPal"))

		// Assert
		assert.Equal(t, "Portland", state.ShippingAddress().City)
		assert.Equal(t, "PayPal", state.PaymentMethod())

		// A fresh state over the same store sees the saved details.
		reloaded := client.NewState(store, nil, nil)
		require.NoError(t, reloaded.Load())
		assert.Equal(t, "Portland", reloaded.ShippingAddress().City)
		assert.Equal(t, "PayPal", reloaded.PaymentMethod())
	})

	t.Run("ClearCart Keeps Checkout Details", func(t *testing.T) {
		// Arrange
		state, _, _ := newStateForTest(t)
		require.NoError(t, state.AddItem(ctx, models.CartItem{ProductID: uuid.New(), Quantity: 1}))
		require.NoError(t, state.SavePaymentMethod(ctx, "PayPal"))

		// Act
		require.NoError(t, state.ClearCart(ctx))

		// Assert
		assert.Empty(t, state.CartItems())
		assert.Equal(t, "PayPal", state.PaymentMethod())
	})

	t.Run("ClearCart Pushes The Emptied Cart", func(t *testing.T) {
		// Arrange
		state, _, pusher := newStateForTest(t)
		signIn(t, state)
		require.NoError(t, state.AddItem(ctx, models.CartItem{ProductID: uuid.New(), Quantity: 1}))

		// Act
		require.NoError(t, state.ClearCart(ctx))

		// Assert
		require.Len(t, pusher.pushes, 2)
		assert.Empty(t, pusher.pushes[1].CartItems)
	})

	t.Run("Logout Clears Session And Cart", func(t *testing.T) {
		// Arrange
		state, _, _ := newStateForTest(t)
		signIn(t, state)
		require.NoError(t, state.AddItem(ctx, models.CartItem{ProductID: uuid.New(), Quantity: 1}))

		// Act
		require.NoError(t, state.Logout())

		// Assert
		assert.Empty(t, state.Token())
		assert.Nil(t, state.User())
		assert.Empty(t, state.CartItems())
	})
}
