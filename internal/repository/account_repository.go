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

// GetAccount returns the credential record of an account
func (r *Repository) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	var a model.Account
	err := r.getExecutor(ctx).QueryRow(ctx,
		"SELECT id, email, password_hash, role, is_verified, created_at FROM accounts WHERE id = $1", id,
	).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Role, &a.IsVerified, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Account not found.")
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &a, nil
}

const userColumns = "id, account_id, first_name, last_name, formatted_address, address, created_at, updated_at"

func scanUser(row pgx.Row) (*model.User, error) {
	var (
		u       model.User
		address []byte
	)
	if err := row.Scan(&u.ID, &u.AccountID, &u.FirstName, &u.LastName, &u.FormattedAddress, &address, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if len(address) > 0 {
		u.Address = &model.Address{}
		if err := json.Unmarshal(address, u.Address); err != nil {
			return nil, fmt.Errorf("failed to decode user address: %w", err)
		}
	}
	return &u, nil
}

// GetUserByAccount returns the user profile owned by the account
func (r *Repository) GetUserByAccount(ctx context.Context, accountID string) (*model.User, error) {
	u, err := scanUser(r.getExecutor(ctx).QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE account_id = $1", accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User not found.")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// UpdateUserAddress replaces the delivery address of a user
func (r *Repository) UpdateUserAddress(ctx context.Context, userID string, addr model.Address, formatted string) (*model.User, error) {
	data, err := json.Marshal(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to encode address: %w", err)
	}
	u, err := scanUser(r.getExecutor(ctx).QueryRow(ctx,
		"UPDATE users SET address = $2, formatted_address = $3, updated_at = now() WHERE id = $1 RETURNING "+userColumns,
		userID, data, formatted))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User not found.")
		}
		return nil, fmt.Errorf("failed to update user address: %w", err)
	}
	return u, nil
}
