package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/igaue-takahiko/food-delivery-app/internal/model"
)

const maxCartRetries = 5

// CartRepository keeps one JSON document per user in Redis.
type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{client: client, ttl: ttl, now: time.Now}
}

func cartKey(userID string) string {
	return fmt.Sprintf("cart:user:%s", userID)
}

func decodeCart(userID string, data []byte) (*model.Cart, error) {
	cart := &model.Cart{UserID: userID}
	if err := json.Unmarshal(data, cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	return cart, nil
}

// GetCart returns the user's cart. A missing cart is returned empty.
func (r *CartRepository) GetCart(ctx context.Context, userID string) (*model.Cart, error) {
	data, err := r.client.Get(ctx, cartKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &model.Cart{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return decodeCart(userID, data)
}

// UpdateCart applies fn to the stored cart under optimistic locking and saves the result.
// If fn returns an error nothing is written.
func (r *CartRepository) UpdateCart(ctx context.Context, userID string, fn func(*model.Cart) error) (*model.Cart, error) {
	key := cartKey(userID)
	var result *model.Cart

	txf := func(tx *redis.Tx) error {
		cart := &model.Cart{UserID: userID}
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			if cart, err = decodeCart(userID, data); err != nil {
				return err
			}
		}

		if err := fn(cart); err != nil {
			return err
		}
		cart.UpdatedAt = r.now().UTC()

		payload, err := json.Marshal(cart)
		if err != nil {
			return fmt.Errorf("failed to encode cart: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if cart.IsEmpty() {
				pipe.Del(ctx, key)
				return nil
			}
			pipe.Set(ctx, key, payload, r.ttl)
			return nil
		})
		if err == nil {
			result = cart
		}
		return err
	}

	for i := 0; i < maxCartRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("failed to update cart: too many concurrent modifications")
}

// ClearCart removes every entry from the user's cart
func (r *CartRepository) ClearCart(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
