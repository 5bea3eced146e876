package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/sproutify/sproutify-platform/internal/errors"
	"github.com/sproutify/sproutify-platform/internal/models"
	repository "github.com/sproutify/sproutify-platform/internal/repositories"
)

type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	ReplaceCart(ctx context.Context, userID uuid.UUID, req *models.ReplaceCartRequest) ([]models.CartItem, error)
}

type cartService struct {
	repo repository.CartRepository
}

func NewCartService(repo repository.CartRepository) CartService {
	return &cartService{repo: repo}
}

// GetCart returns the stored item list. Absence is a valid state, not an
// error: a user with no cart row gets an empty sequence.
func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {

	cart, err := s.repo.GetCartByUserID(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return []models.CartItem{}, nil
		}
		return nil, errors.DatabaseError("Failed to fetch cart").WithError(err)
	}

	if cart.Items == nil {
		return []models.CartItem{}, nil
	}

	return cart.Items, nil
}

// ReplaceCart overwrites the stored item sequence for the user, creating
// the cart on first write. Items are sanitized first: a missing productId
// rejects the whole request, a missing quantity defaults to 1.
func (s *cartService) ReplaceCart(ctx context.Context, userID uuid.UUID, req *models.ReplaceCartRequest) ([]models.CartItem, error) {

	items, err := SanitizeItems(req.CartItems)
	if err != nil {
		return nil, err
	}

	cart := &models.Cart{
		ID:              uuid.New(),
		UserID:          userID,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	if err := s.repo.ReplaceCart(ctx, cart); err != nil {
		return nil, errors.DatabaseError("Failed to replace cart").WithError(err)
	}

	return cart.Items, nil
}

// SanitizeItems enforces the line-item invariants before anything is
// stored or pushed: every item carries a resolved productId, quantity
// defaults to 1 when absent.
func SanitizeItems(items []models.CartItem) ([]models.CartItem, error) {

	out := make([]models.CartItem, 0, len(items))

	for _, item := range items {
		if item.ProductID == uuid.Nil {
			return nil, errors.ValidationError("Cart item is missing a product id")
		}

		if item.Price < 0 {
			return nil, errors.ValidationError("Cart item price cannot be negative")
		}

		if item.Quantity < 1 {
			item.Quantity = 1
		}

		out = append(out, item)
	}

	return out, nil
}
