package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sproutify/sproutify-platform/internal/models"
	"github.com/sproutify/sproutify-platform/internal/utils"
)

// ErrDuplicateReview reports a second review by the same user on the same
// product. The UNIQUE (product_id, user_id) constraint enforces the
// invariant atomically, so two racing first reviews cannot both land.
var ErrDuplicateReview = errors.New("product already reviewed by this user")

// ProductPageSize items per catalog listing page.
const ProductPageSize = 10

type ProductRepository interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context, filter *models.ProductFilter) ([]models.Product, int, error)
	TopProducts(ctx context.Context, limit int) ([]models.Product, error)
	LowStockProducts(ctx context.Context, below, limit int) ([]models.Product, error)
	CountProducts(ctx context.Context) (int, error)
	AddReview(ctx context.Context, review *models.Review) error
	UpdateReview(ctx context.Context, review *models.Review) error
}

type productRepository struct {
	DB *sql.DB
}

func NewProductRepo(db *sql.DB) ProductRepository {
	return &productRepository{DB: db}
}

func (r *productRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO products (user_id, name, image, brand, category, description, price, count_in_stock, rating, num_reviews, is_featured, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, 0, $9, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	return r.DB.QueryRowContext(dbCtx, query,
		product.UserID, product.Name, product.Image, product.Brand, product.Category,
		product.Description, product.Price, product.CountInStock, product.IsFeatured).
		Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
}

func (r *productRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	product := &models.Product{}

	query := `
		SELECT id, user_id, name, image, brand, category, description, price, count_in_stock, rating, num_reviews, is_featured, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	err := r.DB.QueryRowContext(dbCtx, query, id).Scan(
		&product.ID, &product.UserID, &product.Name, &product.Image, &product.Brand,
		&product.Category, &product.Description, &product.Price, &product.CountInStock,
		&product.Rating, &product.NumReviews, &product.IsFeatured, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, err
	}

	reviews, err := r.reviewsForProduct(dbCtx, id)
	if err != nil {
		return nil, err
	}

	product.Reviews = reviews

	return product, nil
}

func (r *productRepository) reviewsForProduct(ctx context.Context, productID uuid.UUID) ([]models.Review, error) {

	query := `
		SELECT id, product_id, user_id, name, rating, comment, created_at
		FROM product_reviews
		WHERE product_id = $1
		ORDER BY created_at
	`

	rows, err := r.DB.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product reviews: %w", err)
	}

	defer rows.Close()

	var reviews []models.Review

	for rows.Next() {
		var review models.Review

		err := rows.Scan(&review.ID, &review.ProductID, &review.UserID, &review.Name, &review.Rating, &review.Comment, &review.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}

		reviews = append(reviews, review)
	}

	return reviews, rows.Err()
}

func (r *productRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE products
		SET name = $1, image = $2, brand = $3, category = $4, description = $5, price = $6, count_in_stock = $7, is_featured = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING updated_at
	`

	return r.DB.QueryRowContext(dbCtx, query,
		product.Name, product.Image, product.Brand, product.Category, product.Description,
		product.Price, product.CountInStock, product.IsFeatured, product.ID).
		Scan(&product.UpdatedAt)
}

func (r *productRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get deleted rows: %w", err)
	}

	if deleted == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// ListProducts applies the catalog filters: keyword matches the name
// case-insensitively, category ignores the literal "All", and the price
// window bounds are inclusive.
func (r *productRepository) ListProducts(ctx context.Context, filter *models.ProductFilter) ([]models.Product, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	where := " WHERE 1=1"

	var args []any

	if filter.Keyword != "" {
		args = append(args, "%"+filter.Keyword+"%")
		where += fmt.Sprintf(" AND name ILIKE $%d", len(args))
	}

	if filter.Category != "" && filter.Category != "All" {
		args = append(args, filter.Category)
		where += fmt.Sprintf(" AND category = $%d", len(args))
	}

	if filter.MinPrice != nil {
		args = append(args, *filter.MinPrice)
		where += fmt.Sprintf(" AND price >= $%d", len(args))
	}

	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		where += fmt.Sprintf(" AND price <= $%d", len(args))
	}

	var total int

	countQuery := `SELECT COUNT(*) FROM products` + where

	if err := r.DB.QueryRowContext(dbCtx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}

	offset := (page - 1) * ProductPageSize

	args = append(args, ProductPageSize, offset)
	query := fmt.Sprintf(`
		SELECT id, user_id, name, image, brand, category, description, price, count_in_stock, rating, num_reviews, is_featured, created_at, updated_at
		FROM products%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := r.DB.QueryContext(dbCtx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// TopProducts returns featured products, falling back to the highest rated
// when nothing is featured.
func (r *productRepository) TopProducts(ctx context.Context, limit int) ([]models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, user_id, name, image, brand, category, description, price, count_in_stock, rating, num_reviews, is_featured, created_at, updated_at
		FROM products
		WHERE is_featured = TRUE
		LIMIT $1
	`

	rows, err := r.DB.QueryContext(dbCtx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list featured products: %w", err)
	}

	products, err := scanAndClose(rows)
	if err != nil {
		return nil, err
	}

	if len(products) > 0 {
		return products, nil
	}

	query = `
		SELECT id, user_id, name, image, brand, category, description, price, count_in_stock, rating, num_reviews, is_featured, created_at, updated_at
		FROM products
		ORDER BY rating DESC
		LIMIT $1
	`

	rows, err = r.DB.QueryContext(dbCtx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list top rated products: %w", err)
	}

	return scanAndClose(rows)
}

func (r *productRepository) LowStockProducts(ctx context.Context, below, limit int) ([]models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, user_id, name, image, brand, category, description, price, count_in_stock, rating, num_reviews, is_featured, created_at, updated_at
		FROM products
		WHERE count_in_stock < $1
		ORDER BY count_in_stock
		LIMIT $2
	`

	rows, err := r.DB.QueryContext(dbCtx, query, below, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}

	return scanAndClose(rows)
}

func (r *productRepository) CountProducts(ctx context.Context) (int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var count int
	if err := r.DB.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}

	return count, nil
}

// AddReview inserts the review and recomputes the product's aggregate
// rating and review count in the same transaction. The unique constraint
// turns a duplicate into ErrDuplicateReview.
func (r *productRepository) AddReview(ctx context.Context, review *models.Review) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback()

	query := `
		INSERT INTO product_reviews (id, product_id, user_id, name, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at
	`

	err = tx.QueryRowContext(dbCtx, query,
		review.ID, review.ProductID, review.UserID, review.Name, review.Rating, review.Comment).
		Scan(&review.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrDuplicateReview
		}
		return fmt.Errorf("failed to insert review: %w", err)
	}

	if err := recomputeRating(dbCtx, tx, review.ProductID); err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateReview edits the caller's existing review in place and recomputes
// the aggregate rating. Returns sql.ErrNoRows when the user has no review
// on the product.
func (r *productRepository) UpdateReview(ctx context.Context, review *models.Review) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback()

	query := `
		UPDATE product_reviews
		SET rating = $1, comment = $2
		WHERE product_id = $3 AND user_id = $4
	`

	result, err := tx.ExecContext(dbCtx, query, review.Rating, review.Comment, review.ProductID, review.UserID)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}

	updated, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get updated rows: %w", err)
	}

	if updated == 0 {
		return sql.ErrNoRows
	}

	if err := recomputeRating(dbCtx, tx, review.ProductID); err != nil {
		return err
	}

	return tx.Commit()
}

func recomputeRating(ctx context.Context, tx *sql.Tx, productID uuid.UUID) error {

	query := `
		UPDATE products
		SET rating = COALESCE((SELECT AVG(rating) FROM product_reviews WHERE product_id = $1), 0),
			num_reviews = (SELECT COUNT(*) FROM product_reviews WHERE product_id = $1),
			updated_at = NOW()
		WHERE id = $1
	`

	if _, err := tx.ExecContext(ctx, query, productID); err != nil {
		return fmt.Errorf("failed to recompute product rating: %w", err)
	}

	return nil
}

func scanProducts(rows *sql.Rows) ([]models.Product, error) {

	var products []models.Product

	for rows.Next() {
		var product models.Product

		err := rows.Scan(
			&product.ID, &product.UserID, &product.Name, &product.Image, &product.Brand,
			&product.Category, &product.Description, &product.Price, &product.CountInStock,
			&product.Rating, &product.NumReviews, &product.IsFeatured, &product.CreatedAt, &product.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}

		products = append(products, product)
	}

	return products, rows.Err()
}

func scanAndClose(rows *sql.Rows) ([]models.Product, error) {
	defer rows.Close()

	return scanProducts(rows)
}
