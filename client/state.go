// Package client holds the storefront application's local state: the
// signed-in session and the working cart. State is explicitly constructed
// with its persistence and sync dependencies; there are no package-level
// globals.
package client

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sproutify/sproutify-platform/internal/models"
	service "github.com/sproutify/sproutify-platform/internal/services"
)

// Store persists state snapshots between runs.
type Store interface {
	Load() (*Snapshot, error)
	Save(*Snapshot) error
}

// Pusher syncs the cart to the server. Pushing is best-effort: a failed
// push is logged and the local mutation stands.
type Pusher interface {
	PushCart(ctx context.Context, token string, cart *models.ReplaceCartRequest) error
}

// Snapshot is the persisted shape of the state.
type Snapshot struct {
	Token           string            `json:"token,omitempty"`
	User            *models.User      `json:"user,omitempty"`
	CartItems       []models.CartItem `json:"cartItems"`
	ShippingAddress *models.Address   `json:"shippingAddress,omitempty"`
	PaymentMethod   string            `json:"paymentMethod,omitempty"`
}

type State struct {
	store  Store
	pusher Pusher
	logger *slog.Logger

	snap Snapshot
}

func NewState(store Store, pusher Pusher, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.Default()
	}

	return &State{store: store, pusher: pusher, logger: logger}
}

// Load reads the persisted snapshot. Called once at startup; a missing
// snapshot leaves the state empty.
func (s *State) Load() error {

	snap, err := s.store.Load()
	if err != nil {
		return err
	}

	if snap != nil {
		s.snap = *snap
	}

	if s.snap.CartItems == nil {
		s.snap.CartItems = []models.CartItem{}
	}

	return nil
}

func (s *State) save() error {
	return s.store.Save(&s.snap)
}

// SetSession records the signed-in user and bearer token.
func (s *State) SetSession(token string, user *models.User) error {
	s.snap.Token = token
	s.snap.User = user

	return s.save()
}

func (s *State) Token() string {
	return s.snap.Token
}

func (s *State) User() *models.User {
	return s.snap.User
}

func (s *State) CartItems() []models.CartItem {
	return s.snap.CartItems
}

func (s *State) ShippingAddress() *models.Address {
	return s.snap.ShippingAddress
}

func (s *State) PaymentMethod() string {
	return s.snap.PaymentMethod
}

// AddItem puts an item into the cart. An item for the same product
// replaces the existing line entirely, so adding twice with quantity 1
// leaves quantity 1, not 2.
func (s *State) AddItem(ctx context.Context, item models.CartItem) error {

	replaced := false

	for i, existing := range s.snap.CartItems {
		if existing.ProductID == item.ProductID {
			s.snap.CartItems[i] = item
			replaced = true

			break
		}
	}

	if !replaced {
		s.snap.CartItems = append(s.snap.CartItems, item)
	}

	if err := s.save(); err != nil {
		return err
	}

	s.pushCart(ctx)

	return nil
}

// RemoveItem drops the line for the given product. Removing an absent
// product is a no-op.
func (s *State) RemoveItem(ctx context.Context, productID uuid.UUID) error {

	items := s.snap.CartItems[:0]

	for _, item := range s.snap.CartItems {
		if item.ProductID != productID {
			items = append(items, item)
		}
	}

	s.snap.CartItems = items

	if err := s.save(); err != nil {
		return err
	}

	s.pushCart(ctx)

	return nil
}

func (s *State) SaveShippingAddress(ctx context.Context, address models.Address) error {
	s.snap.ShippingAddress = &address

	if err := s.save(); err != nil {
		return err
	}

	s.pushCart(ctx)

	return nil
}

func (s *State) SavePaymentMethod(ctx context.Context, method string) error {
	s.snap.PaymentMethod = method

	if err := s.save(); err != nil {
		return err
	}

	s.pushCart(ctx)

	return nil
}

// ClearCart empties the cart after a placed order. Shipping address and
// payment method survive for the next purchase.
func (s *State) ClearCart(ctx context.Context) error {
	s.snap.CartItems = []models.CartItem{}

	if err := s.save(); err != nil {
		return err
	}

	s.pushCart(ctx)

	return nil
}

// Logout clears the session and the cart.
func (s *State) Logout() error {
	s.snap = Snapshot{CartItems: []models.CartItem{}}

	return s.save()
}

// pushCart mirrors the cart to the server. Only sanitized items go over
// the wire, and only for a signed-in session.
func (s *State) pushCart(ctx context.Context) {

	if s.pusher == nil || s.snap.Token == "" {
		return
	}

	items, err := service.SanitizeItems(s.snap.CartItems)
	if err != nil {
		s.logger.Warn("Cart not pushed, sanitization failed", slog.String("error", err.Error()))
		return
	}

	req := &models.ReplaceCartRequest{
		CartItems:       items,
		ShippingAddress: s.snap.ShippingAddress,
		PaymentMethod:   s.snap.PaymentMethod,
	}

	if err := s.pusher.PushCart(ctx, s.snap.Token, req); err != nil {
		s.logger.Warn("Cart push failed", slog.String("error", err.Error()))
	}
}
