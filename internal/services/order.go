package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	appErrors "github.com/sproutify/sproutify-platform/internal/errors"
	"github.com/sproutify/sproutify-platform/internal/models"
	"github.com/sproutify/sproutify-platform/internal/pricing"
	repository "github.com/sproutify/sproutify-platform/internal/repositories"
)

// ReceiptSender delivers an order receipt. Sending is best-effort; the
// order ledger never depends on it.
type ReceiptSender interface {
	SendOrderReceipt(ctx context.Context, to string, order *models.Order) error
}

type OrderService interface {
	CreateOrder(ctx context.Context, claims *models.Claims, req *models.CreateOrderRequest) (*models.Order, error)
	GetOrderByID(ctx context.Context, id uuid.UUID, claims *models.Claims) (*models.Order, error)
	ListMyOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	PayOrder(ctx context.Context, id uuid.UUID, claims *models.Claims, req *models.PayOrderRequest) (*models.Order, error)
	CancelOrder(ctx context.Context, id uuid.UUID, claims *models.Claims) (*models.Order, error)
	DeliverOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	receipts    ReceiptSender
}

func NewOrderService(orderRepo repository.OrderRepository, cartRepo repository.CartRepository, productRepo repository.ProductRepository, receipts ReceiptSender) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		receipts:    receipts,
	}
}

// CreateOrder turns the finalized cart snapshot into an order. Name, image
// and price of every line are re-resolved from the catalog and the four
// price fields are rederived by the pricing engine, so nothing the client
// sent beyond product ids and quantities is trusted.
func (s *orderService) CreateOrder(ctx context.Context, claims *models.Claims, req *models.CreateOrderRequest) (*models.Order, error) {

	if len(req.OrderItems) == 0 {
		return nil, appErrors.ValidationError("Cannot create order with empty cart")
	}

	orderID := uuid.New()

	items := make([]models.OrderItem, 0, len(req.OrderItems))

	for _, line := range req.OrderItems {

		product, err := s.productRepo.GetProductByID(ctx, line.ProductID)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.NotFoundError("Product not found: " + line.ProductID.String()).WithError(err)
			}
			return nil, appErrors.DatabaseError("Failed to resolve product").WithError(err)
		}

		if product.CountInStock < line.Quantity {
			return nil, appErrors.BadRequestError("Insufficient stock for product: " + product.Name)
		}

		items = append(items, models.OrderItem{
			ID:        uuid.New(),
			OrderID:   orderID,
			ProductID: product.ID,
			Name:      product.Name,
			Image:     product.Image,
			Price:     product.Price,
			Quantity:  line.Quantity,
		})
	}

	quote := pricing.Compute(items)

	order := &models.Order{
		ID:              orderID,
		UserID:          claims.UserID,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		ItemsPrice:      quote.ItemsPrice,
		ShippingPrice:   quote.ShippingPrice,
		TaxPrice:        quote.TaxPrice,
		TotalPrice:      quote.TotalPrice,
		Status:          models.OrderStatusPending,
	}

	if err := s.orderRepo.CreateOrder(ctx, order); err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			return nil, appErrors.BadRequestError("Insufficient stock").WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to create order").WithError(err)
	}

	// The cart served its purpose; clearing it must not fail the order.
	if err := s.cartRepo.ClearCart(ctx, claims.UserID); err != nil {
		slog.Warn("Failed to clear cart after order placement",
			slog.String("userId", claims.UserID.String()),
			slog.String("error", err.Error()))
	}

	return order, nil
}

func (s *orderService) GetOrderByID(ctx context.Context, id uuid.UUID, claims *models.Claims) (*models.Order, error) {

	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NotFoundError("Order not found").WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to fetch order").WithError(err)
	}

	if order.UserID != claims.UserID && !claims.IsAdmin {
		return nil, appErrors.ForbiddenError("You don't have permission to access this order")
	}

	return order, nil
}

func (s *orderService) ListMyOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {

	orders, err := s.orderRepo.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch orders").WithError(err)
	}

	if orders == nil {
		orders = []models.Order{}
	}

	return orders, nil
}

// PayOrder records the payment acknowledgment. The transition is guarded
// in the store: it succeeds only while the order is pending and unpaid, so
// paying an already-paid or cancelled order comes back as a conflict.
func (s *orderService) PayOrder(ctx context.Context, id uuid.UUID, claims *models.Claims, req *models.PayOrderRequest) (*models.Order, error) {

	order, err := s.GetOrderByID(ctx, id, claims)
	if err != nil {
		return nil, err
	}

	result := &models.PaymentResult{
		ID:           req.ID,
		Status:       req.Status,
		UpdateTime:   req.UpdateTime,
		EmailAddress: req.EmailAddress,
	}

	paidAt, err := s.orderRepo.MarkPaid(ctx, id, result)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ConflictError("Order cannot be paid in its current state")
		}
		return nil, appErrors.DatabaseError("Failed to update order").WithError(err)
	}

	order.IsPaid = true
	order.PaidAt = paidAt
	order.PaymentResult = result

	s.sendReceipt(ctx, claims.Email, order)

	return order, nil
}

func (s *orderService) sendReceipt(ctx context.Context, to string, order *models.Order) {
	if s.receipts == nil || to == "" {
		return
	}

	if err := s.receipts.SendOrderReceipt(ctx, to, order); err != nil {
		slog.Warn("Failed to send order receipt",
			slog.String("orderId", order.ID.String()),
			slog.String("error", err.Error()))
	}
}

// CancelOrder is permitted only while the order is pending and unpaid.
func (s *orderService) CancelOrder(ctx context.Context, id uuid.UUID, claims *models.Claims) (*models.Order, error) {

	order, err := s.GetOrderByID(ctx, id, claims)
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.CancelOrder(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ConflictError("Order cannot be cancelled in its current state")
		}
		return nil, appErrors.DatabaseError("Failed to cancel order").WithError(err)
	}

	order.Status = models.OrderStatusCancelled

	return order, nil
}

// DeliverOrder marks a paid order as delivered. Operator only; the route
// is gated by the admin middleware.
func (s *orderService) DeliverOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {

	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NotFoundError("Order not found").WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to fetch order").WithError(err)
	}

	deliveredAt, err := s.orderRepo.MarkDelivered(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ConflictError("Order cannot be delivered in its current state")
		}
		return nil, appErrors.DatabaseError("Failed to update order").WithError(err)
	}

	order.IsDelivered = true
	order.DeliveredAt = deliveredAt

	return order, nil
}
