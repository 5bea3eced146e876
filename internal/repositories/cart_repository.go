package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sproutify/sproutify-platform/internal/models"
	"github.com/sproutify/sproutify-platform/internal/utils"
)

type CartRepository interface {
	GetCartByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	ReplaceCart(ctx context.Context, cart *models.Cart) error
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

type cartRepository struct {
	DB *sql.DB
}

func NewCartRepo(db *sql.DB) CartRepository {
	return &cartRepository{DB: db}
}

func (r *cartRepository) GetCartByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, user_id, items, shipping_address, payment_method, created_at, updated_at
		FROM carts
		WHERE user_id = $1
	`

	cart := &models.Cart{}

	var itemsJSON []byte

	var addressJSON []byte

	var paymentMethod sql.NullString

	err := r.DB.QueryRowContext(dbCtx, query, userID).
		Scan(&cart.ID, &cart.UserID, &itemsJSON, &addressJSON, &paymentMethod, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("querying database: %w", err)
	}

	if err := json.Unmarshal(itemsJSON, &cart.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart items: %w", err)
	}

	if len(addressJSON) > 0 {
		if err := json.Unmarshal(addressJSON, &cart.ShippingAddress); err != nil {
			return nil, fmt.Errorf("failed to unmarshal shipping address: %w", err)
		}
	}

	cart.PaymentMethod = paymentMethod.String

	return cart, nil
}

// ReplaceCart upserts the user's cart row: created on first write,
// overwritten thereafter. Running it twice with the same items leaves the
// stored cart unchanged.
func (r *cartRepository) ReplaceCart(ctx context.Context, cart *models.Cart) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	itemsJSON, err := json.Marshal(cart.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal cart items: %w", err)
	}

	var addressJSON []byte
	if cart.ShippingAddress != nil {
		addressJSON, err = json.Marshal(cart.ShippingAddress)
		if err != nil {
			return fmt.Errorf("failed to marshal shipping address: %w", err)
		}
	}

	query := `
		INSERT INTO carts (id, user_id, items, shipping_address, payment_method, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			items = EXCLUDED.items,
			shipping_address = COALESCE(EXCLUDED.shipping_address, carts.shipping_address),
			payment_method = COALESCE(NULLIF(EXCLUDED.payment_method, ''), carts.payment_method),
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	return r.DB.QueryRowContext(dbCtx, query, cart.ID, cart.UserID, itemsJSON, addressJSON, cart.PaymentMethod).
		Scan(&cart.ID, &cart.CreatedAt, &cart.UpdatedAt)
}

// ClearCart empties the item list after a successful order placement. A
// missing cart row is not an error.
func (r *cartRepository) ClearCart(ctx context.Context, userID uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE carts
		SET items = '[]'::jsonb, updated_at = NOW()
		WHERE user_id = $1
	`

	if _, err := r.DB.ExecContext(dbCtx, query, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	return nil
}
