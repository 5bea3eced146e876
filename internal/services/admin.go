package service

import (
	"context"

	"github.com/sproutify/sproutify-platform/internal/errors"
	"github.com/sproutify/sproutify-platform/internal/models"
	repository "github.com/sproutify/sproutify-platform/internal/repositories"
)

const (
	recentOrdersLimit = 5
	lowStockThreshold = 5
	lowStockLimit     = 5
)

type AdminService interface {
	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
}

type adminService struct {
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
}

func NewAdminService(userRepo repository.UserRepository, productRepo repository.ProductRepository, orderRepo repository.OrderRepository) AdminService {
	return &adminService{
		userRepo:    userRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
	}
}

func (s *adminService) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {

	usersCount, err := s.userRepo.CountUsers(ctx)
	if err != nil {
		return nil, errors.DatabaseError("Failed to count users").WithError(err)
	}

	productsCount, err := s.productRepo.CountProducts(ctx)
	if err != nil {
		return nil, errors.DatabaseError("Failed to count products").WithError(err)
	}

	ordersCount, err := s.orderRepo.CountOrders(ctx)
	if err != nil {
		return nil, errors.DatabaseError("Failed to count orders").WithError(err)
	}

	totalSales, err := s.orderRepo.TotalSales(ctx)
	if err != nil {
		return nil, errors.DatabaseError("Failed to sum sales").WithError(err)
	}

	recentOrders, err := s.orderRepo.RecentOrders(ctx, recentOrdersLimit)
	if err != nil {
		return nil, errors.DatabaseError("Failed to fetch recent orders").WithError(err)
	}

	lowStock, err := s.productRepo.LowStockProducts(ctx, lowStockThreshold, lowStockLimit)
	if err != nil {
		return nil, errors.DatabaseError("Failed to fetch low stock products").WithError(err)
	}

	return &models.DashboardStats{
		UsersCount:       usersCount,
		ProductsCount:    productsCount,
		OrdersCount:      ordersCount,
		TotalSales:       totalSales,
		RecentOrders:     recentOrders,
		LowStockProducts: lowStock,
	}, nil
}
