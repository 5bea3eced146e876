package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sproutify/sproutify-platform/internal/models"
	"github.com/sproutify/sproutify-platform/internal/utils"
)

// ErrInsufficientStock reports a conditional stock decrement that found
// fewer units than the order needs.
var ErrInsufficientStock = errors.New("insufficient stock")

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	MarkPaid(ctx context.Context, id uuid.UUID, result *models.PaymentResult) (*time.Time, error)
	CancelOrder(ctx context.Context, id uuid.UUID) error
	MarkDelivered(ctx context.Context, id uuid.UUID) (*time.Time, error)
	CountOrders(ctx context.Context) (int, error)
	TotalSales(ctx context.Context) (float64, error)
	RecentOrders(ctx context.Context, limit int) ([]models.Order, error)
}

type orderRepository struct {
	DB *sql.DB
}

func NewOrderRepo(db *sql.DB) OrderRepository {
	return &orderRepository{DB: db}
}

// CreateOrder inserts the order with its item snapshot and decrements the
// stock of every referenced product, all in one transaction. The decrement
// is conditional on enough stock remaining, so two racing orders cannot
// oversell a product.
func (r *orderRepository) CreateOrder(ctx context.Context, order *models.Order) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback()

	addressJSON, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("failed to marshal shipping address: %w", err)
	}

	query := `
		INSERT INTO orders (id, user_id, shipping_address, payment_method, items_price, shipping_price, tax_price, total_price, status, is_paid, is_delivered, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE, FALSE, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err = tx.QueryRowContext(dbCtx, query,
		order.ID, order.UserID, addressJSON, order.PaymentMethod,
		order.ItemsPrice, order.ShippingPrice, order.TaxPrice, order.TotalPrice, order.Status).
		Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for _, item := range order.Items {

		query := `
			INSERT INTO order_items (id, order_id, product_id, name, image, price, quantity)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`

		_, err := tx.ExecContext(dbCtx, query,
			item.ID, order.ID, item.ProductID, item.Name, item.Image, item.Price, item.Quantity)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}

		stockQuery := `
			UPDATE products
			SET count_in_stock = count_in_stock - $1, updated_at = NOW()
			WHERE id = $2 AND count_in_stock >= $1
		`

		result, err := tx.ExecContext(dbCtx, stockQuery, item.Quantity, item.ProductID)
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}

		updated, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get updated rows: %w", err)
		}

		if updated == 0 {
			return fmt.Errorf("%w: product %s", ErrInsufficientStock, item.ProductID)
		}

	}

	return tx.Commit()
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	order := &models.Order{ID: id}

	query := `
		SELECT user_id, shipping_address, payment_method, payment_result, items_price, shipping_price, tax_price, total_price, status, is_paid, paid_at, is_delivered, delivered_at, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	var addressJSON []byte

	var resultJSON []byte

	err := r.DB.QueryRowContext(dbCtx, query, id).Scan(
		&order.UserID, &addressJSON, &order.PaymentMethod, &resultJSON,
		&order.ItemsPrice, &order.ShippingPrice, &order.TaxPrice, &order.TotalPrice,
		&order.Status, &order.IsPaid, &order.PaidAt, &order.IsDelivered, &order.DeliveredAt,
		&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(addressJSON, &order.ShippingAddress); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shipping address: %w", err)
	}

	if len(resultJSON) > 0 {
		if err := json.Unmarshal(resultJSON, &order.PaymentResult); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payment result: %w", err)
		}
	}

	items, err := r.itemsForOrder(dbCtx, id)
	if err != nil {
		return nil, err
	}

	order.Items = items

	return order, nil
}

func (r *orderRepository) itemsForOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {

	query := `
		SELECT id, product_id, name, image, price, quantity
		FROM order_items
		WHERE order_id = $1
	`

	rows, err := r.DB.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}

	defer rows.Close()

	var items []models.OrderItem

	for rows.Next() {
		item := models.OrderItem{OrderID: orderID}

		err := rows.Scan(&item.ID, &item.ProductID, &item.Name, &item.Image, &item.Price, &item.Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}

		items = append(items, item)
	}

	return items, rows.Err()
}

// ListOrdersByUser returns the user's orders newest first.
func (r *orderRepository) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, shipping_address, payment_method, payment_result, items_price, shipping_price, tax_price, total_price, status, is_paid, paid_at, is_delivered, delivered_at, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.DB.QueryContext(dbCtx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	defer rows.Close()

	var orders []models.Order

	for rows.Next() {

		order := models.Order{UserID: userID}

		var addressJSON []byte

		var resultJSON []byte

		err := rows.Scan(&order.ID, &addressJSON, &order.PaymentMethod, &resultJSON,
			&order.ItemsPrice, &order.ShippingPrice, &order.TaxPrice, &order.TotalPrice,
			&order.Status, &order.IsPaid, &order.PaidAt, &order.IsDelivered, &order.DeliveredAt,
			&order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}

		if err := json.Unmarshal(addressJSON, &order.ShippingAddress); err != nil {
			return nil, fmt.Errorf("failed to unmarshal shipping address: %w", err)
		}

		if len(resultJSON) > 0 {
			if err := json.Unmarshal(resultJSON, &order.PaymentResult); err != nil {
				return nil, fmt.Errorf("failed to unmarshal payment result: %w", err)
			}
		}

		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := r.itemsForOrder(dbCtx, orders[i].ID)
		if err != nil {
			return nil, err
		}

		orders[i].Items = items
	}

	return orders, nil
}

// MarkPaid flips the order to paid, guarded on the current state so a
// racing second payment or a cancelled order sees zero rows affected and
// gets sql.ErrNoRows back.
func (r *orderRepository) MarkPaid(ctx context.Context, id uuid.UUID, result *models.PaymentResult) (*time.Time, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payment result: %w", err)
	}

	query := `
		UPDATE orders
		SET is_paid = TRUE, paid_at = NOW(), payment_result = $1, updated_at = NOW()
		WHERE id = $2 AND status = 'pending' AND is_paid = FALSE
		RETURNING paid_at
	`

	var paidAt time.Time
	if err := r.DB.QueryRowContext(dbCtx, query, resultJSON, id).Scan(&paidAt); err != nil {
		return nil, err
	}

	return &paidAt, nil
}

// CancelOrder is permitted only while pending and unpaid.
func (r *orderRepository) CancelOrder(ctx context.Context, id uuid.UUID) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE orders
		SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1 AND status = 'pending' AND is_paid = FALSE
	`

	result, err := r.DB.ExecContext(dbCtx, query, id)
	if err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}

	updated, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get updated rows: %w", err)
	}

	if updated == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// MarkDelivered requires a paid, not yet delivered order.
func (r *orderRepository) MarkDelivered(ctx context.Context, id uuid.UUID) (*time.Time, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE orders
		SET is_delivered = TRUE, delivered_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND is_paid = TRUE AND is_delivered = FALSE
		RETURNING delivered_at
	`

	var deliveredAt time.Time
	if err := r.DB.QueryRowContext(dbCtx, query, id).Scan(&deliveredAt); err != nil {
		return nil, err
	}

	return &deliveredAt, nil
}

func (r *orderRepository) CountOrders(ctx context.Context) (int, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var count int
	if err := r.DB.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM orders`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}

	return count, nil
}

// TotalSales sums the totals of paid orders.
func (r *orderRepository) TotalSales(ctx context.Context) (float64, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var total float64

	query := `SELECT COALESCE(SUM(total_price), 0) FROM orders WHERE is_paid = TRUE`

	if err := r.DB.QueryRowContext(dbCtx, query).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum sales: %w", err)
	}

	return total, nil
}

// RecentOrders returns the latest orders with the buyer's name resolved,
// for the operator dashboard.
func (r *orderRepository) RecentOrders(ctx context.Context, limit int) ([]models.Order, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT o.id, o.user_id, u.name, o.total_price, o.status, o.is_paid, o.is_delivered, o.created_at
		FROM orders o
		JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC
		LIMIT $1
	`

	rows, err := r.DB.QueryContext(dbCtx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent orders: %w", err)
	}

	defer rows.Close()

	var orders []models.Order

	for rows.Next() {
		var order models.Order

		err := rows.Scan(&order.ID, &order.UserID, &order.UserName, &order.TotalPrice,
			&order.Status, &order.IsPaid, &order.IsDelivered, &order.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recent order: %w", err)
		}

		orders = append(orders, order)
	}

	return orders, rows.Err()
}
