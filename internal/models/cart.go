package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is a line item: a product reference with a price snapshot and a
// quantity. The same shape is embedded into orders at creation time.
type CartItem struct {
	ProductID uuid.UUID `json:"product" validate:"required"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	Price     float64   `json:"price" validate:"gte=0"`
	Quantity  int       `json:"qty" validate:"gte=0"`
}

type Address struct {
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

type Cart struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	Items           []CartItem `json:"cartItems"`
	ShippingAddress *Address   `json:"shippingAddress,omitempty"`
	PaymentMethod   string     `json:"paymentMethod,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ReplaceCartRequest overwrites the caller's stored cart. Shipping address
// and payment method are optional; when present they are stored alongside
// the item list.
type ReplaceCartRequest struct {
	CartItems       []CartItem `json:"cartItems"`
	ShippingAddress *Address   `json:"shippingAddress,omitempty"`
	PaymentMethod   string     `json:"paymentMethod,omitempty"`
}

// CartResponse is the wire shape both cart endpoints reply with.
type CartResponse struct {
	CartItems []CartItem `json:"cartItems"`
}
