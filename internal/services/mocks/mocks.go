// Package mocks provides testify mocks of the service interfaces for
// handler tests.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/sproutify/sproutify-platform/internal/models"
	"github.com/stretchr/testify/mock"
)

type UserService struct {
	mock.Mock
}

func (m *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	if user, ok := args.Get(0).(*models.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	args := m.Called(ctx, req)
	if resp, ok := args.Get(0).(*models.LoginResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserService) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*models.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

type ProductService struct {
	mock.Mock
}

func (m *ProductService) CreateProduct(ctx context.Context, claims *models.Claims) (*models.Product, error) {
	args := m.Called(ctx, claims)
	if product, ok := args.Get(0).(*models.Product); ok {
		return product, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProductService) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, id)
	if product, ok := args.Get(0).(*models.Product); ok {
		return product, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error) {
	args := m.Called(ctx, id, req)
	if product, ok := args.Get(0).(*models.Product); ok {
		return product, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ProductService) ListProducts(ctx context.Context, filter *models.ProductFilter) (*models.ProductListResponse, error) {
	args := m.Called(ctx, filter)
	if resp, ok := args.Get(0).(*models.ProductListResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProductService) TopProducts(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	if products, ok := args.Get(0).([]models.Product); ok {
		return products, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProductService) AddReview(ctx context.Context, productID uuid.UUID, claims *models.Claims, req *models.CreateReviewRequest) error {
	args := m.Called(ctx, productID, claims, req)
	return args.Error(0)
}

func (m *ProductService) UpdateReview(ctx context.Context, productID uuid.UUID, claims *models.Claims, req *models.CreateReviewRequest) error {
	args := m.Called(ctx, productID, claims, req)
	return args.Error(0)
}

type CartService struct {
	mock.Mock
}

func (m *CartService) GetCart(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	args := m.Called(ctx, userID)
	if items, ok := args.Get(0).([]models.CartItem); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CartService) ReplaceCart(ctx context.Context, userID uuid.UUID, req *models.ReplaceCartRequest) ([]models.CartItem, error) {
	args := m.Called(ctx, userID, req)
	if items, ok := args.Get(0).([]models.CartItem); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

type OrderService struct {
	mock.Mock
}

func (m *OrderService) CreateOrder(ctx context.Context, claims *models.Claims, req *models.CreateOrderRequest) (*models.Order, error) {
	args := m.Called(ctx, claims, req)
	if order, ok := args.Get(0).(*models.Order); ok {
		return order, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *OrderService) GetOrderByID(ctx context.Context, id uuid.UUID, claims *models.Claims) (*models.Order, error) {
	args := m.Called(ctx, id, claims)
	if order, ok := args.Get(0).(*models.Order); ok {
		return order, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *OrderService) ListMyOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	args := m.Called(ctx, userID)
	if orders, ok := args.Get(0).([]models.Order); ok {
		return orders, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *OrderService) PayOrder(ctx context.Context, id uuid.UUID, claims *models.Claims, req *models.PayOrderRequest) (*models.Order, error) {
	args := m.Called(ctx, id, claims, req)
	if order, ok := args.Get(0).(*models.Order); ok {
		return order, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *OrderService) CancelOrder(ctx context.Context, id uuid.UUID, claims *models.Claims) (*models.Order, error) {
	args := m.Called(ctx, id, claims)
	if order, ok := args.Get(0).(*models.Order); ok {
		return order, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *OrderService) DeliverOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if order, ok := args.Get(0).(*models.Order); ok {
		return order, args.Error(1)
	}
	return nil, args.Error(1)
}

type AdminService struct {
	mock.Mock
}

func (m *AdminService) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	args := m.Called(ctx)
	if stats, ok := args.Get(0).(*models.DashboardStats); ok {
		return stats, args.Error(1)
	}
	return nil, args.Error(1)
}
