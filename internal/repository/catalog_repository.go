package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/igaue-takahiko/food-delivery-app/internal/apperr"
	"github.com/igaue-takahiko/food-delivery-app/internal/model"
)

const sellerSelect = `SELECT s.id, s.account_id, s.name, s.tags, s.formatted_address, s.image_urls, s.address,
	s.min_order_amount::text, s.cost_for_one::text, s.payment, a.is_verified, s.created_at
	FROM sellers s JOIN accounts a ON a.id = s.account_id`

func scanSeller(row pgx.Row) (*model.Seller, error) {
	var (
		s                    model.Seller
		address              []byte
		minOrder, costForOne string
	)
	err := row.Scan(&s.ID, &s.AccountID, &s.Name, &s.Tags, &s.FormattedAddress, &s.ImageURLs, &address,
		&minOrder, &costForOne, &s.Payment, &s.IsVerified, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(address) > 0 {
		if err := json.Unmarshal(address, &s.Address); err != nil {
			return nil, fmt.Errorf("failed to decode seller address: %w", err)
		}
	}
	if s.MinOrderAmount, err = parseDecimal(minOrder); err != nil {
		return nil, err
	}
	if s.CostForOne, err = parseDecimal(costForOne); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetSeller returns a seller by id
func (r *Repository) GetSeller(ctx context.Context, id string) (*model.Seller, error) {
	s, err := scanSeller(r.getExecutor(ctx).QueryRow(ctx, sellerSelect+" WHERE s.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Seller not found.")
		}
		return nil, fmt.Errorf("failed to get seller: %w", err)
	}
	return s, nil
}

// GetSellerByAccount returns the seller profile owned by the account
func (r *Repository) GetSellerByAccount(ctx context.Context, accountID string) (*model.Seller, error) {
	s, err := scanSeller(r.getExecutor(ctx).QueryRow(ctx, sellerSelect+" WHERE s.account_id = $1", accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Seller not found.")
		}
		return nil, fmt.Errorf("failed to get seller: %w", err)
	}
	return s, nil
}

// ListVerifiedSellers returns sellers whose account is verified, newest first
func (r *Repository) ListVerifiedSellers(ctx context.Context) ([]model.Seller, error) {
	rows, err := r.getExecutor(ctx).Query(ctx, sellerSelect+" WHERE a.is_verified ORDER BY s.created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list sellers: %w", err)
	}
	defer rows.Close()

	sellers := []model.Seller{}
	for rows.Next() {
		s, err := scanSeller(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan seller: %w", err)
		}
		sellers = append(sellers, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sellers: %w", err)
	}
	return sellers, nil
}

const itemSelect = `SELECT id, seller_id, title, description, tags, image_url, price::text, created_at, updated_at FROM items`

func scanItem(row pgx.Row) (*model.Item, error) {
	var (
		it    model.Item
		price string
	)
	err := row.Scan(&it.ID, &it.SellerID, &it.Title, &it.Description, &it.Tags, &it.ImageURL, &price, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if it.Price, err = parseDecimal(price); err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *Repository) queryItems(ctx context.Context, query string, args ...any) ([]model.Item, error) {
	rows, err := r.getExecutor(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

// GetItem returns a single catalog item
func (r *Repository) GetItem(ctx context.Context, id string) (*model.Item, error) {
	it, err := scanItem(r.getExecutor(ctx).QueryRow(ctx, itemSelect+" WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Item not found.")
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return it, nil
}

// GetItemsByIDs returns the items that still exist. Unknown ids are silently absent.
func (r *Repository) GetItemsByIDs(ctx context.Context, ids []string) ([]model.Item, error) {
	if len(ids) == 0 {
		return []model.Item{}, nil
	}
	return r.queryItems(ctx, itemSelect+" WHERE id = ANY($1)", ids)
}

// ListItemsBySeller returns a seller's menu in creation order
func (r *Repository) ListItemsBySeller(ctx context.Context, sellerID string) ([]model.Item, error) {
	return r.queryItems(ctx, itemSelect+" WHERE seller_id = $1 ORDER BY created_at", sellerID)
}
