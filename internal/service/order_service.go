package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/igaue-takahiko/food-delivery-app/internal/apperr"
	"github.com/igaue-takahiko/food-delivery-app/internal/metrics"
	"github.com/igaue-takahiko/food-delivery-app/internal/model"
)

type OrderService struct {
	carts       *CartService
	catalog     CatalogStore
	profiles    ProfileStore
	orders      OrderStore
	notifier    Notifier
	concurrency int
	log         *zap.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
}

type OrderDeps struct {
	Carts       *CartService
	Catalog     CatalogStore
	Profiles    ProfileStore
	Orders      OrderStore
	Notifier    Notifier
	Concurrency int
	Log         *zap.Logger
	Metrics     *metrics.Metrics
}

func NewOrderService(d OrderDeps) *OrderService {
	if d.Concurrency <= 0 {
		d.Concurrency = 1
	}
	return &OrderService{
		carts:       d.Carts,
		catalog:     d.Catalog,
		profiles:    d.Profiles,
		orders:      d.Orders,
		notifier:    d.Notifier,
		concurrency: d.Concurrency,
		log:         d.Log,
		metrics:     d.Metrics,
		now:         time.Now,
	}
}

// Checkout turns the caller's cart into one order per seller.
// Sellers notified in the background; delivery never affects the result.
func (s *OrderService) Checkout(ctx context.Context, accountID string) ([]model.Order, error) {
	// 1. Resolve the buyer
	account, err := s.profiles.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	user, err := s.profiles.GetUserByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	// 2. Group the cart by seller
	groups, err := s.carts.Resolve(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return []model.Order{}, nil
	}

	// 3. Create the orders
	buyer := model.UserSnapshot{
		Email:   account.Email,
		Name:    user.DisplayName(),
		Address: user.Address,
		UserID:  user.ID,
	}
	orders := s.materialize(ctx, user.ID, groups, buyer)

	// 4. Tell the sellers
	for _, o := range orders {
		s.notifier.NotifyCreate(o)
	}
	return orders, nil
}

// materialize creates one order per group and then clears the cart once.
// A failed group is logged and left out of the result.
func (s *OrderService) materialize(ctx context.Context, userID string, groups []SellerGroup, buyer model.UserSnapshot) []model.Order {
	created := make([]*model.Order, len(groups))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, group := range groups {
		i, group := i, group
		g.Go(func() error {
			o, err := s.createGroupOrder(ctx, group, buyer)
			if err != nil {
				s.log.Error("failed to create order for seller",
					zap.String("user_id", userID),
					zap.String("seller_id", group.SellerID),
					zap.Error(err))
				s.metrics.OrderGroupFailed()
				return nil
			}
			s.metrics.OrderCreated()
			created[i] = o
			return nil
		})
	}
	_ = g.Wait()

	if err := s.carts.Clear(ctx, userID); err != nil {
		s.log.Error("failed to clear cart after checkout", zap.String("user_id", userID), zap.Error(err))
	}

	orders := make([]model.Order, 0, len(created))
	for _, o := range created {
		if o != nil {
			orders = append(orders, *o)
		}
	}
	return orders
}

func (s *OrderService) createGroupOrder(ctx context.Context, group SellerGroup, buyer model.UserSnapshot) (*model.Order, error) {
	seller, err := s.catalog.GetSeller(ctx, group.SellerID)
	if err != nil {
		return nil, err
	}

	lines := make([]model.OrderLine, 0, len(group.Lines))
	for _, l := range group.Lines {
		lines = append(lines, model.OrderLine{Item: l.Item.Snapshot(), Quantity: l.Quantity})
	}

	now := s.now().UTC()
	order := &model.Order{
		ID:     uuid.NewString(),
		Items:  lines,
		Status: model.StatusPlaced,
		User:   buyer,
		Seller: model.SellerSnapshot{
			Name:     seller.Name,
			Phone:    seller.Address.PhoneNo,
			SellerID: seller.ID,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// ListOrders returns the caller's orders newest first. Users see what they placed,
// sellers see what was addressed to them.
func (s *OrderService) ListOrders(ctx context.Context, accountID string, role model.Role) ([]model.Order, error) {
	switch role {
	case model.RoleUser:
		u, err := s.profiles.GetUserByAccount(ctx, accountID)
		if err != nil {
			return nil, err
		}
		return s.orders.ListOrdersByUser(ctx, u.ID)
	case model.RoleSeller:
		sl, err := s.profiles.GetSellerByAccount(ctx, accountID)
		if err != nil {
			return nil, err
		}
		return s.orders.ListOrdersBySeller(ctx, sl.ID)
	default:
		return nil, apperr.Forbidden("Forbidden access.")
	}
}

// UpdateStatus moves an order to any known status and broadcasts the result.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, status string) (*model.Order, error) {
	target, err := model.ParseOrderStatus(status)
	if err != nil {
		return nil, apperr.Validation("Validation failed.", apperr.FieldError{
			Field:   "status",
			Message: err.Error(),
		})
	}

	var updated *model.Order
	err = s.orders.RunAtomic(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		at, err := s.orders.UpdateOrderStatus(ctx, o.ID, target)
		if err != nil {
			return err
		}
		o.Status = target
		o.UpdatedAt = at
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyUpdate(*updated)
	return updated, nil
}
