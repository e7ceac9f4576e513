package service_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/igaue-takahiko/food-delivery-app/internal/apperr"
	"github.com/igaue-takahiko/food-delivery-app/internal/model"
)

type memCarts struct {
	mu       sync.Mutex
	carts    map[string]*model.Cart
	clears   int
	clearErr error
}

func newMemCarts() *memCarts {
	return &memCarts{carts: make(map[string]*model.Cart)}
}

func (m *memCarts) put(userID string, entries ...model.CartEntry) {
	m.carts[userID] = &model.Cart{UserID: userID, Items: entries}
}

func (m *memCarts) GetCart(_ context.Context, userID string) (*model.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if !ok {
		return &model.Cart{UserID: userID}, nil
	}
	cp := *c
	cp.Items = append([]model.CartEntry(nil), c.Items...)
	return &cp, nil
}

func (m *memCarts) UpdateCart(ctx context.Context, userID string, fn func(*model.Cart) error) (*model.Cart, error) {
	c, _ := m.GetCart(ctx, userID)
	if err := fn(c); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.carts[userID] = c
	m.mu.Unlock()
	return c, nil
}

func (m *memCarts) ClearCart(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
	if m.clearErr != nil {
		return m.clearErr
	}
	delete(m.carts, userID)
	return nil
}

type memCatalog struct {
	items   map[string]model.Item
	sellers map[string]model.Seller
}

func newMemCatalog() *memCatalog {
	return &memCatalog{items: make(map[string]model.Item), sellers: make(map[string]model.Seller)}
}

func (m *memCatalog) addSeller(id, name, phone string, createdAt time.Time) {
	m.sellers[id] = model.Seller{
		ID:         id,
		AccountID:  "acc-" + id,
		Name:       name,
		Address:    model.Address{PhoneNo: phone},
		IsVerified: true,
		CreatedAt:  createdAt,
	}
}

func (m *memCatalog) addItem(id, sellerID, title string, price int64) {
	m.items[id] = model.Item{ID: id, SellerID: sellerID, Title: title, Price: decimal.NewFromInt(price)}
}

func (m *memCatalog) GetItem(_ context.Context, id string) (*model.Item, error) {
	it, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("Item not found.")
	}
	return &it, nil
}

func (m *memCatalog) GetItemsByIDs(_ context.Context, ids []string) ([]model.Item, error) {
	out := []model.Item{}
	for _, id := range ids {
		if it, ok := m.items[id]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *memCatalog) GetSeller(_ context.Context, id string) (*model.Seller, error) {
	s, ok := m.sellers[id]
	if !ok {
		return nil, apperr.NotFound("Seller not found.")
	}
	return &s, nil
}

func (m *memCatalog) ListVerifiedSellers(_ context.Context) ([]model.Seller, error) {
	out := []model.Seller{}
	for _, s := range m.sellers {
		if s.IsVerified {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memCatalog) ListItemsBySeller(_ context.Context, sellerID string) ([]model.Item, error) {
	out := []model.Item{}
	for _, it := range m.items {
		if it.SellerID == sellerID {
			out = append(out, it)
		}
	}
	return out, nil
}

type memProfiles struct {
	accounts map[string]model.Account
	users    map[string]model.User
	sellers  map[string]model.Seller
}

func newMemProfiles() *memProfiles {
	return &memProfiles{
		accounts: make(map[string]model.Account),
		users:    make(map[string]model.User),
		sellers:  make(map[string]model.Seller),
	}
}

func (m *memProfiles) addUser(accountID, userID, email, first, last string) {
	m.accounts[accountID] = model.Account{ID: accountID, Email: email, Role: model.RoleUser}
	m.users[accountID] = model.User{ID: userID, AccountID: accountID, FirstName: first, LastName: last}
}

func (m *memProfiles) addSeller(s model.Seller) {
	m.accounts[s.AccountID] = model.Account{ID: s.AccountID, Role: model.RoleSeller}
	m.sellers[s.AccountID] = s
}

func (m *memProfiles) GetAccount(_ context.Context, id string) (*model.Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return nil, apperr.NotFound("Account not found.")
	}
	return &a, nil
}

func (m *memProfiles) GetUserByAccount(_ context.Context, accountID string) (*model.User, error) {
	u, ok := m.users[accountID]
	if !ok {
		return nil, apperr.NotFound("User not found.")
	}
	return &u, nil
}

func (m *memProfiles) GetSellerByAccount(_ context.Context, accountID string) (*model.Seller, error) {
	s, ok := m.sellers[accountID]
	if !ok {
		return nil, apperr.NotFound("Seller not found.")
	}
	return &s, nil
}

func (m *memProfiles) UpdateUserAddress(_ context.Context, userID string, addr model.Address, formatted string) (*model.User, error) {
	for acc, u := range m.users {
		if u.ID == userID {
			u.Address = &addr
			u.FormattedAddress = formatted
			m.users[acc] = u
			return &u, nil
		}
	}
	return nil, apperr.NotFound("User not found.")
}

type memOrders struct {
	mu        sync.Mutex
	orders    map[string]model.Order
	createErr map[string]error
	atomic    int
}

func newMemOrders() *memOrders {
	return &memOrders{orders: make(map[string]model.Order), createErr: make(map[string]error)}
}

func (m *memOrders) RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	m.atomic++
	m.mu.Unlock()
	return fn(ctx)
}

func (m *memOrders) CreateOrder(_ context.Context, o *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.createErr[o.Seller.SellerID]; err != nil {
		return err
	}
	m.orders[o.ID] = *o
	return nil
}

func (m *memOrders) GetOrderForUpdate(_ context.Context, id string) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, apperr.NotFound("Order not found.")
	}
	return &o, nil
}

func (m *memOrders) UpdateOrderStatus(_ context.Context, id string, status model.OrderStatus) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return time.Time{}, apperr.NotFound("Order not found.")
	}
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	m.orders[id] = o
	return o.UpdatedAt, nil
}

func (m *memOrders) list(match func(model.Order) bool) []model.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Order{}
	for _, o := range m.orders {
		if match(o) {
			out = append(out, o)
		}
	}
	return out
}

func (m *memOrders) ListOrdersByUser(_ context.Context, userID string) ([]model.Order, error) {
	return m.list(func(o model.Order) bool { return o.User.UserID == userID }), nil
}

func (m *memOrders) ListOrdersBySeller(_ context.Context, sellerID string) ([]model.Order, error) {
	return m.list(func(o model.Order) bool { return o.Seller.SellerID == sellerID }), nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	created []model.Order
	updated []model.Order
}

func (n *recordingNotifier) NotifyCreate(o model.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, o)
}

func (n *recordingNotifier) NotifyUpdate(o model.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updated = append(n.updated, o)
}

var errBoom = errors.New("boom")
