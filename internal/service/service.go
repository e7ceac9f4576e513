// Package service holds the order lifecycle: cart resolution, checkout, status changes
// and the catalog and profile reads around them.
package service

import (
	"context"
	"time"

	"github.com/igaue-takahiko/food-delivery-app/internal/model"
)

type CartStore interface {
	GetCart(ctx context.Context, userID string) (*model.Cart, error)
	UpdateCart(ctx context.Context, userID string, fn func(*model.Cart) error) (*model.Cart, error)
	ClearCart(ctx context.Context, userID string) error
}

type CatalogStore interface {
	GetItem(ctx context.Context, id string) (*model.Item, error)
	GetItemsByIDs(ctx context.Context, ids []string) ([]model.Item, error)
	GetSeller(ctx context.Context, id string) (*model.Seller, error)
	ListVerifiedSellers(ctx context.Context) ([]model.Seller, error)
	ListItemsBySeller(ctx context.Context, sellerID string) ([]model.Item, error)
}

type ProfileStore interface {
	GetAccount(ctx context.Context, id string) (*model.Account, error)
	GetUserByAccount(ctx context.Context, accountID string) (*model.User, error)
	GetSellerByAccount(ctx context.Context, accountID string) (*model.Seller, error)
	UpdateUserAddress(ctx context.Context, userID string, addr model.Address, formatted string) (*model.User, error)
}

type OrderStore interface {
	RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error
	CreateOrder(ctx context.Context, o *model.Order) error
	GetOrderForUpdate(ctx context.Context, id string) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) (time.Time, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]model.Order, error)
	ListOrdersBySeller(ctx context.Context, sellerID string) ([]model.Order, error)
}

// Notifier fans order events out to connected clients. Calls never block and never fail.
type Notifier interface {
	NotifyCreate(order model.Order)
	NotifyUpdate(order model.Order)
}
