package service

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sproutify/sproutify-platform/internal/errors"
	"github.com/sproutify/sproutify-platform/internal/models"
	repository "github.com/sproutify/sproutify-platform/internal/repositories"
)

const topProductsLimit = 5

type ProductService interface {
	CreateProduct(ctx context.Context, claims *models.Claims) (*models.Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context, filter *models.ProductFilter) (*models.ProductListResponse, error)
	TopProducts(ctx context.Context) ([]models.Product, error)
	AddReview(ctx context.Context, productID uuid.UUID, claims *models.Claims, req *models.CreateReviewRequest) error
	UpdateReview(ctx context.Context, productID uuid.UUID, claims *models.Claims, req *models.CreateReviewRequest) error
}

type productService struct {
	repo      repository.ProductRepository
	sanitizer *bluemonday.Policy
}

func NewProductService(repo repository.ProductRepository) ProductService {
	return &productService{
		repo:      repo,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// CreateProduct inserts a sample-seeded product the operator then edits.
func (s *productService) CreateProduct(ctx context.Context, claims *models.Claims) (*models.Product, error) {

	product := &models.Product{
		UserID:       claims.UserID,
		Name:         "Sample name",
		Price:        0,
		Image:        "/images/sample.jpg",
		Brand:        "Sample brand",
		Category:     "Sample category",
		CountInStock: 0,
		Description:  "Sample description",
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, errors.DatabaseError("Failed to create product").WithError(err)
	}

	return product, nil
}

func (s *productService) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {

	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFoundError("Product not found").WithError(err)
		}
		return nil, errors.DatabaseError("Failed to fetch product").WithError(err)
	}

	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error) {

	product, err := s.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = req.Name
	product.Price = req.Price
	product.Description = req.Description
	product.Image = req.Image
	product.Brand = req.Brand
	product.Category = req.Category
	product.CountInStock = req.CountInStock

	if req.IsFeatured != nil {
		product.IsFeatured = *req.IsFeatured
	}

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, errors.DatabaseError("Failed to update product").WithError(err)
	}

	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {

	err := s.repo.DeleteProduct(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return errors.NotFoundError("Product not found").WithError(err)
		}
		return errors.DatabaseError("Failed to delete product").WithError(err)
	}

	return nil
}

func (s *productService) ListProducts(ctx context.Context, filter *models.ProductFilter) (*models.ProductListResponse, error) {

	if filter.Page < 1 {
		filter.Page = 1
	}

	products, total, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list products").WithError(err)
	}

	pages := (total + repository.ProductPageSize - 1) / repository.ProductPageSize

	if products == nil {
		products = []models.Product{}
	}

	return &models.ProductListResponse{
		Products: products,
		Page:     filter.Page,
		Pages:    pages,
	}, nil
}

func (s *productService) TopProducts(ctx context.Context) ([]models.Product, error) {

	products, err := s.repo.TopProducts(ctx, topProductsLimit)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list top products").WithError(err)
	}

	return products, nil
}

// AddReview appends the caller's review. The one-review-per-user invariant
// is enforced by the repository's uniqueness constraint, not a
// read-then-write check, so concurrent first reviews cannot both succeed.
func (s *productService) AddReview(ctx context.Context, productID uuid.UUID, claims *models.Claims, req *models.CreateReviewRequest) error {

	if _, err := s.GetProductByID(ctx, productID); err != nil {
		return err
	}

	review := &models.Review{
		ID:        uuid.New(),
		ProductID: productID,
		UserID:    claims.UserID,
		Name:      claims.Name,
		Rating:    req.Rating,
		Comment:   s.sanitizer.Sanitize(req.Comment),
	}

	err := s.repo.AddReview(ctx, review)
	if err != nil {
		if err == repository.ErrDuplicateReview {
			return errors.ConflictError("Product already reviewed").WithError(err)
		}
		return errors.DatabaseError("Failed to add review").WithError(err)
	}

	return nil
}

func (s *productService) UpdateReview(ctx context.Context, productID uuid.UUID, claims *models.Claims, req *models.CreateReviewRequest) error {

	review := &models.Review{
		ProductID: productID,
		UserID:    claims.UserID,
		Rating:    req.Rating,
		Comment:   s.sanitizer.Sanitize(req.Comment),
	}

	err := s.repo.UpdateReview(ctx, review)
	if err != nil {
		if err == sql.ErrNoRows {
			return errors.NotFoundError("Review not found").WithError(err)
		}
		return errors.DatabaseError("Failed to update review").WithError(err)
	}

	return nil
}
