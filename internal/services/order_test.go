package service_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	appErrors "github.com/sproutify/sproutify-platform/internal/errors"
	"github.com/sproutify/sproutify-platform/internal/models"
	repository "github.com/sproutify/sproutify-platform/internal/repositories"
	service "github.com/sproutify/sproutify-platform/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockReceiptSender struct {
	mock.Mock
}

func (m *mockReceiptSender) SendOrderReceipt(ctx context.Context, to string, order *models.Order) error {
	args := m.Called(ctx, to, order)
	return args.Error(0)
}

func newOrderServiceForTest() (*mockOrderRepo, *mockCartRepo, *mockProductRepo, *mockReceiptSender, service.OrderService) {
	orderRepo := new(mockOrderRepo)
	cartRepo := new(mockCartRepo)
	productRepo := new(mockProductRepo)
	receipts := new(mockReceiptSender)

	return orderRepo, cartRepo, productRepo, receipts, service.NewOrderService(orderRepo, cartRepo, productRepo, receipts)
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	claims := &models.Claims{UserID: userID, Name: "Flora Gardner", Email: "flora@example.com"}
	address := &models.Address{Address: "12 Fern Way", City: "Portland", PostalCode: "97201", Country: "USA"}

	productID := uuid.New()
	product := &models.Product{
		ID:           productID,
		Name:         "Monstera Deliciosa",
		Image:        "/images/monstera.jpg",
		Price:        600,
		CountInStock: 10,
	}

	t.Run("Success - Prices Rederived From Catalog", func(t *testing.T) {
		// Arrange
		orderRepo, cartRepo, productRepo, _, orderService := newOrderServiceForTest()
		req := &models.CreateOrderRequest{
			OrderItems: []models.OrderItem{
				// Client-sent price and name must be ignored.
				{ProductID: productID, Name: "Tampered", Price: 0.01, Quantity: 2},
			},
			ShippingAddress: address,
			PaymentMethod:   "PayPal",
		}
		productRepo.On("GetProductByID", ctx, productID).Return(product, nil).Once()
		orderRepo.On("CreateOrder", ctx, mock.AnythingOfType("*models.Order")).Return(nil).Once()
		cartRepo.On("ClearCart", ctx, userID).Return(nil).Once()

		// Act
		order, err := orderService.CreateOrder(ctx, claims, req)

		// Assert
		assert.NoError(t, err)
		assert.NotNil(t, order)
		assert.Equal(t, userID, order.UserID)
		assert.Equal(t, models.OrderStatusPending, order.Status)
		assert.Equal(t, "Monstera Deliciosa", order.Items[0].Name)
		assert.Equal(t, 600.0, order.Items[0].Price)
		assert.Equal(t, 1200.0, order.ItemsPrice)
		assert.Equal(t, 0.0, order.ShippingPrice) // over the free-shipping threshold
		assert.Equal(t, 180.0, order.TaxPrice)
		assert.Equal(t, 1380.0, order.TotalPrice)
		orderRepo.AssertExpectations(t)
		cartRepo.AssertExpectations(t)
		productRepo.AssertExpectations(t)
	})

	t.Run("Success - Cart Clear Failure Does Not Fail Order", func(t *testing.T) {
		// Arrange
		orderRepo, cartRepo, productRepo, _, orderService := newOrderServiceForTest()
		req := &models.CreateOrderRequest{
			OrderItems:      []models.OrderItem{{ProductID: productID, Quantity: 1}},
			ShippingAddress: address,
			PaymentMethod:   "PayPal",
		}
		productRepo.On("GetProductByID", ctx, productID).Return(product, nil).Once()
		orderRepo.On("CreateOrder", ctx, mock.AnythingOfType("*models.Order")).Return(nil).Once()
		cartRepo.On("ClearCart", ctx, userID).Return(errors.New("redis down")).Once()

		// Act
		order, err := orderService.CreateOrder(ctx, claims, req)

		// Assert
		assert.NoError(t, err)
		assert.NotNil(t, order)
		cartRepo.AssertExpectations(t)
	})

	t.Run("Failure - Empty Cart", func(t *testing.T) {
		// Arrange
		_, _, _, _, orderService := newOrderServiceForTest()
		req := &models.CreateOrderRequest{ShippingAddress: address, PaymentMethod: "PayPal"}

		// Act
		order, err := orderService.CreateOrder(ctx, claims, req)

		// Assert
		assert.Error(t, err)
		assert.Nil(t, order)
		appErr, ok := err.(*appErrors.AppError)
		assert.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeValidation, appErr.Code)
	})

	t.Run("Failure - Unknown Product", func(t *testing.T) {
		// Arrange
		orderRepo, _, productRepo, _, orderService := newOrderServiceForTest()
		req := &models.CreateOrderRequest{
			OrderItems:      []models.OrderItem{{ProductID: productID, Quantity: 1}},
			ShippingAddress: address,
			PaymentMethod:   "PayPal",
		}
		productRepo.On("GetProductByID", ctx, productID).Return(nil, sql.ErrNoRows).Once()

		// Act
		order, err := orderService.CreateOrder(ctx, claims, req)

		// Assert
		assert.Error(t, err)
		assert.Nil(t, order)
		appErr, ok := err.(*appErrors.AppError)
		assert.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
		orderRepo.AssertNotCalled(t, "CreateOrder", ctx, mock.Anything)
	})

	t.Run("Failure - Insufficient Stock Precheck", func(t *testing.T) {
		// Arrange
		_, _, productRepo, _, orderService := newOrderServiceForTest()
		thin := &models.Product{ID: productID, Name: "Rare Orchid", Price: 200, CountInStock: 1}
		req := &models.CreateOrderRequest{
			OrderItems:      []models.OrderItem{{ProductID: productID, Quantity: 5}},
			ShippingAddress: address,
			PaymentMethod:   "PayPal",
		}
		productRepo.On("GetProductByID", ctx, productID).Return(thin, nil).Once()

		// Act
		order, err := orderService.CreateOrder(ctx, claims, req)

		// Assert
		assert.Error(t, err)
		assert.Nil(t, order)
		appErr, ok := err.(*appErrors.AppError)
		assert.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeBadRequest, appErr.Code)
	})

	t.Run("Failure - Stock Raced Away At Commit", func(t *testing.T) {
		// Arrange
		orderRepo, _, productRepo, _, orderService := newOrderServiceForTest()
		req := &models.CreateOrderRequest{
			OrderItems:      []models.OrderItem{{ProductID: productID, Quantity: 2}},
			ShippingAddress: address,
			PaymentMethod:   "PayPal",
		}
		productRepo.On("GetProductByID", ctx, productID).Return(product, nil).Once()
		orderRepo.On("CreateOrder", ctx, mock.AnythingOfType("*models.Order")).
			Return(fmt.Errorf("product %s: %w", productID, repository.ErrInsufficientStock)).Once()

		// Act
		order, err := orderService.CreateOrder(ctx, claims, req)

		// Assert
		assert.Error(t, err)
		assert.Nil(t, order)
		appErr, ok := err.(*appErrors.AppError)
		assert.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeBadRequest, appErr.Code)
		orderRepo.AssertExpectations(t)
	})
}

func TestGetOrderByID(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()
	ownerID := uuid.New()
	order := &models.Order{ID: orderID, UserID: ownerID, Status: models.OrderStatusPending}

	t.Run("Success - Owner", func(t *testing.T) {
		// Arrange
		orderRepo, _, _, _, orderService := newOrderServiceForTest()
		orderRepo.On("GetOrderByID", ctx, orderID).Return(order, nil).Once()

		// Act
		got, err := orderService.GetOrderByID(ctx, orderID, &models.Claims{UserID: ownerID})

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, orderID, got.ID)
		orderRepo.AssertExpectations(t)
	})

	t.Run("Success - Admin Can Read Any Order", func(t *testing.T) {
		// Arrange
		orderRepo, _, _, _, orderService := newOrderServiceForTest()
		orderRepo.On("GetOrderByID", ctx, orderID).Return(order, nil).Once()

		// Act
		got, err := orderService.GetOrderByID(ctx, orderID, &models.Claims{UserID: uuid.New(), IsAdmin: true})

		// Assert
		assert.NoError(t, err)
		assert.NotNil(t, got)
		orderRepo.AssertExpectations(t)
	})

	t.Run("Failure - Foreign Order Forbidden", func(t *testing.T) {
		// Arrange
		orderRepo, _, _, _, orderService := newOrderServiceForTest()
		orderRepo.On("GetOrderByID", ctx, orderID).Return(order, nil).Once()

		// Act
		got, err := orderService.GetOrderByID(ctx, orderID, &models.Claims{UserID: uuid.New()})

		// Assert
		assert.Error(t, err)
		assert.Nil(t, got)
		appErr, ok := err.(*appErrors.AppError)
		assert.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeForbidden, appErr.Code)
	})

	t.Run("Failure - Not Found", func(t *testing.T) {
		// Arrange
		orderRepo, _, _, _, orderService := newOrderServiceForTest()
		orderRepo.On("GetOrderByID", ctx, orderID).Return(nil, sql.ErrNoRows).Once()

		// Act
		got, err := orderService.GetOrderByID(ctx, orderID, &models.Claims{UserID: ownerID})

		// Assert
		assert.Error(t, err)
		assert.Nil(t, got)
		appErr, ok := err.(*appErrors.AppError)
		assert.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
	})
}

func TestPayOrder(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()
	ownerID := uuid.New()
	claims := &models.Claims{UserID: ownerID, Email: "flora@example.com"}
	payReq := &models.PayOrderRequest{ID: "PAYID-1", Status: "COMPLETED", EmailAddress: "flora@example.com"}

	pendingOrder := func() *models.Order {
		return &models.Order{ID: orderID, UserID: ownerID, Status: models.OrderStatusPending, TotalPrice: 1380}
	}

	t.Run("Success", func(t *testing.T) {
		// Arrange
		orderRepo, _, _, receipts, orderService := newOrderServiceForTest()
		paidAt := time.Now()
		orderRepo.On("GetOrderByID", ctx, orderID).Return(pendingOrder(), nil).Once()
		orderRepo.On("MarkPaid", ctx, orderID, mock.AnythingOfType("*models.PaymentResult")).Return(&paidAt, nil).Once()
		receipts.On("SendOrderReceipt", ctx, "flora@example.com", mock.AnythingOfType("*models.Order")).Return(nil).Once()

		// Act
		order, err := orderService.PayOrder(ctx, orderID, claims, payReq)

		// Assert
		assert.NoError(t, err)
		assert.True(t, order.IsPaid)
		assert.Equal(t, &paidAt, order.PaidAt)
		assert.Equal(t, "PAYID-1", order.PaymentResult.ID)
		orderRepo.AssertExpectations(t)
		receipts.AssertExpectations(t)
	})

	t.Run("Success - Receipt Failure Is Swallowed", func(t *testing.T) {
		// Arrange
		orderRepo, _, _, receipts, orderService := newOrderServiceForTest()
		paidAt := time.Now()
		orderRepo.On("GetOrderByID", ctx, orderID).Return(pendingOrder(), nil).Once()
		orderRepo.On("MarkPaid", ctx, orderID, mock.AnythingOfType("*models.PaymentResult")).Return(&paidAt, nil).Once()
		receipts.On("SendOrderReceipt", ctx, "flora@example.com", mock.AnythingOfType("*models.Order")).
			Return(errors.New("smtp unavailable")).Once()

		// Act
		order, err := orderService.PayOrder(ctx, orderID, claims, payReq)

		// Assert
		assert.NoError(t, err)
		assert.True(t, order.IsPaid)
		receipts.AssertExpectations(t)
	})

	t.Run("Failure - Already Paid Or Cancelled", func(t *testing.T) {
		// Arrange
		orderRepo, _, _, _, orderService := newOrderServiceForTest()
		orderRepo.On("GetOrderByID", ctx, orderID).Return(pendingOrder(), nil).Once()
		orderRepo.On("MarkPaid", ctx, orderID, mock.AnythingOfType("*models.PaymentResult")).Return(nil, sql.ErrNoRows).Once()

		// Act
		order, err := orderService.PayOrder(ctx, orderID, claims, payReq)

		// Assert
		assert.Error(t, err)
		assert.Nil(t, order)
		appErr, ok := err.(*appErrors.AppError)
		assert.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeConflict, appErr.Code)
	})

	t.Run("Failure - Foreign Order Forbidden Before State Check", func(t *testing.T) {
		// Arrange
		orderRepo, _, _, _, orderService := newOrderServiceForTest()
		orderRepo.On("GetOrderByID", ctx, orderID).Return(pendingOrder(), nil).Once()

		// Act
		order, err := orderService.PayOrder(ctx, orderID, &models.Claims{UserID: uuid.New()}, payReq)

		// Assert
		assert.Error(t, err)
		assert.Nil(t, order)
		orderRepo.AssertNotCalled(t, "MarkPaid", ctx, orderID, mock.Anything)
	})
}

func TestCancelOrder(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()
	ownerID := uuid.New()
	claims := &models.Claims{UserID: ownerID}

	t.Run("Success", func(t *testing.T) {
		// Arrange
		orderRepo, _, _, _, orderService := newOrderServiceForTest()
		orderRepo.On("GetOrderByID", ctx, orderID).
			Return(&models.Order{ID: orderID, UserID: ownerID, Status: models.OrderStatusPending}, nil).Once()
		orderRepo.On("CancelOrder", ctx, orderID).Return(nil).Once()

		// Act
		order, err := orderService.CancelOrder(ctx, orderID, claims)

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, models.OrderStatusCancelled, order.Status)
		orderRepo.AssertExpectations(t)
	})

	t.Run("Failure - Paid Order Cannot Be Cancelled", func(t *testing.T) {
		// Arrange
		orderRepo, _, _, _, orderService := newOrderServiceForTest()
		orderRepo.On("GetOrderByID", ctx, orderID).
			Return(&models.Order{ID: orderID, UserID: ownerID, Status: models.OrderStatusPending, IsPaid: true}, nil).Once()
		orderRepo.On("CancelOrder", ctx, orderID).Return(sql.ErrNoRows).Once()

		// Act
		order, err := orderService.CancelOrder(ctx, orderID, claims)

		// Assert
		assert.Error(t, err)
		assert.Nil(t, order)
		appErr, ok := err.(*appErrors.AppError)
		assert.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeConflict, appErr.Code)
	})
}

func TestDeliverOrder(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		orderRepo, _, _, _, orderService := newOrderServiceForTest()
		deliveredAt := time.Now()
		orderRepo.On("GetOrderByID", ctx, orderID).
			Return(&models.Order{ID: orderID, Status: models.OrderStatusPending, IsPaid: true}, nil).Once()
		orderRepo.On("MarkDelivered", ctx, orderID).Return(&deliveredAt, nil).Once()

		// Act
		order, err := orderService.DeliverOrder(ctx, orderID)

		// Assert
		assert.NoError(t, err)
		assert.True(t, order.IsDelivered)
		assert.Equal(t, &deliveredAt, order.DeliveredAt)
		orderRepo.AssertExpectations(t)
	})

	t.Run("Failure - Unpaid Order", func(t *testing.T) {
		// Arrange
		orderRepo, _, _, _, orderService := newOrderServiceForTest()
		orderRepo.On("GetOrderByID", ctx, orderID).
			Return(&models.Order{ID: orderID, Status: models.OrderStatusPending}, nil).Once()
		orderRepo.On("MarkDelivered", ctx, orderID).Return(nil, sql.ErrNoRows).Once()

		// Act
		order, err := orderService.DeliverOrder(ctx, orderID)

		// Assert
		assert.Error(t, err)
		assert.Nil(t, order)
		appErr, ok := err.(*appErrors.AppError)
		assert.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeConflict, appErr.Code)
	})
}
