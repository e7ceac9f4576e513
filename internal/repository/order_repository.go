package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/igaue-takahiko/food-delivery-app/internal/apperr"
	"github.com/igaue-takahiko/food-delivery-app/internal/model"
)

const orderSelect = `SELECT id, status, items, user_snapshot, seller_snapshot, created_at, updated_at FROM orders`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o                    model.Order
		items, user, sellerB []byte
	)
	if err := row.Scan(&o.ID, &o.Status, &items, &user, &sellerB, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("failed to decode order items: %w", err)
	}
	if err := json.Unmarshal(user, &o.User); err != nil {
		return nil, fmt.Errorf("failed to decode order user: %w", err)
	}
	if err := json.Unmarshal(sellerB, &o.Seller); err != nil {
		return nil, fmt.Errorf("failed to decode order seller: %w", err)
	}
	return &o, nil
}

// CreateOrder persists a new order
func (r *Repository) CreateOrder(ctx context.Context, o *model.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("failed to encode order items: %w", err)
	}
	user, err := json.Marshal(o.User)
	if err != nil {
		return fmt.Errorf("failed to encode order user: %w", err)
	}
	seller, err := json.Marshal(o.Seller)
	if err != nil {
		return fmt.Errorf("failed to encode order seller: %w", err)
	}

	query := `
		INSERT INTO orders (id, user_id, seller_id, status, items, user_snapshot, seller_snapshot, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.getExecutor(ctx).Exec(ctx, query,
		o.ID, o.User.UserID, o.Seller.SellerID, o.Status, items, user, seller, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *Repository) listOrders(ctx context.Context, column, id string) ([]model.Order, error) {
	rows, err := r.getExecutor(ctx).Query(ctx, orderSelect+" WHERE "+column+" = $1 ORDER BY created_at DESC", id)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}
	return orders, nil
}

// ListOrdersByUser returns orders placed by the user, newest first
func (r *Repository) ListOrdersByUser(ctx context.Context, userID string) ([]model.Order, error) {
	return r.listOrders(ctx, "user_id", userID)
}

// ListOrdersBySeller returns orders addressed to the seller, newest first
func (r *Repository) ListOrdersBySeller(ctx context.Context, sellerID string) ([]model.Order, error) {
	return r.listOrders(ctx, "seller_id", sellerID)
}

// GetOrderForUpdate locks the order row until the surrounding transaction ends.
// Outside RunAtomic the lock is released immediately.
func (r *Repository) GetOrderForUpdate(ctx context.Context, id string) (*model.Order, error) {
	o, err := scanOrder(r.getExecutor(ctx).QueryRow(ctx, orderSelect+" WHERE id = $1 FOR UPDATE", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Order not found.")
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return o, nil
}

// UpdateOrderStatus sets the status and returns the new update timestamp
func (r *Repository) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) (time.Time, error) {
	var updatedAt time.Time
	err := r.getExecutor(ctx).QueryRow(ctx,
		"UPDATE orders SET status = $2, updated_at = now() WHERE id = $1 RETURNING updated_at", id, status,
	).Scan(&updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, apperr.NotFound("Order not found.")
		}
		return time.Time{}, fmt.Errorf("failed to update order status: %w", err)
	}
	return updatedAt, nil
}
