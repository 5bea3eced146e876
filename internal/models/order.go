package models

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderItem is the immutable line-item snapshot embedded in an order. It
// copies name, image and price from the catalog at placement time so later
// catalog edits never alter placed orders.
type OrderItem struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	ProductID uuid.UUID `json:"product" validate:"required"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	Price     float64   `json:"price" validate:"gte=0"`
	Quantity  int       `json:"qty" validate:"required,min=1"`
}

// PaymentResult is the acknowledgment recorded when an order is paid. The
// fields mirror what the mock payment confirmation returns.
type PaymentResult struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"update_time"`
	EmailAddress string `json:"email_address"`
}

type Order struct {
	ID              uuid.UUID      `json:"id"`
	UserID          uuid.UUID      `json:"user_id"`
	UserName        string         `json:"user_name,omitempty"`
	Items           []OrderItem    `json:"orderItems"`
	ShippingAddress *Address       `json:"shippingAddress"`
	PaymentMethod   string         `json:"paymentMethod"`
	PaymentResult   *PaymentResult `json:"paymentResult,omitempty"`
	ItemsPrice      float64        `json:"itemsPrice"`
	ShippingPrice   float64        `json:"shippingPrice"`
	TaxPrice        float64        `json:"taxPrice"`
	TotalPrice      float64        `json:"totalPrice"`
	Status          OrderStatus    `json:"status"`
	IsPaid          bool           `json:"isPaid"`
	PaidAt          *time.Time     `json:"paidAt,omitempty"`
	IsDelivered     bool           `json:"isDelivered"`
	DeliveredAt     *time.Time     `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// CreateOrderRequest carries the finalized cart snapshot. Any client-sent
// totals are ignored; the server rederives all four price fields.
type CreateOrderRequest struct {
	OrderItems      []OrderItem `json:"orderItems" validate:"required,min=1,dive"`
	ShippingAddress *Address    `json:"shippingAddress" validate:"required"`
	PaymentMethod   string      `json:"paymentMethod" validate:"required"`
}

type PayOrderRequest struct {
	ID           string `json:"id" validate:"required"`
	Status       string `json:"status" validate:"required"`
	UpdateTime   string `json:"update_time"`
	EmailAddress string `json:"email_address"`
}
