package service

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/igaue-takahiko/food-delivery-app/internal/apperr"
	"github.com/igaue-takahiko/food-delivery-app/internal/model"
)

// CartLine is a cart entry resolved against the current catalog.
type CartLine struct {
	Item     model.Item `json:"item"`
	Quantity int        `json:"quantity"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.Item.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type CartView struct {
	Lines      []CartLine      `json:"cart"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// SellerGroup is the slice of a cart that becomes one order.
type SellerGroup struct {
	SellerID string
	Lines    []CartLine
}

type CartService struct {
	carts    CartStore
	catalog  CatalogStore
	profiles ProfileStore
	log      *zap.Logger
}

func NewCartService(carts CartStore, catalog CatalogStore, profiles ProfileStore, log *zap.Logger) *CartService {
	return &CartService{carts: carts, catalog: catalog, profiles: profiles, log: log}
}

func (s *CartService) userID(ctx context.Context, accountID string) (string, error) {
	u, err := s.profiles.GetUserByAccount(ctx, accountID)
	if err != nil {
		return "", err
	}
	return u.ID, nil
}

// AddItem puts one unit of the item into the caller's cart
func (s *CartService) AddItem(ctx context.Context, accountID, itemID string) error {
	if _, err := s.catalog.GetItem(ctx, itemID); err != nil {
		return err
	}
	userID, err := s.userID(ctx, accountID)
	if err != nil {
		return err
	}
	_, err = s.carts.UpdateCart(ctx, userID, func(c *model.Cart) error {
		c.Add(itemID)
		return nil
	})
	return err
}

// ReduceItem takes one unit out, dropping the entry at zero
func (s *CartService) ReduceItem(ctx context.Context, accountID, itemID string) error {
	userID, err := s.userID(ctx, accountID)
	if err != nil {
		return err
	}
	_, err = s.carts.UpdateCart(ctx, userID, func(c *model.Cart) error {
		if !c.Reduce(itemID) {
			return apperr.NotFound("Item is not in the cart.")
		}
		return nil
	})
	return err
}

// RemoveItem drops the entry whatever its quantity
func (s *CartService) RemoveItem(ctx context.Context, accountID, itemID string) error {
	userID, err := s.userID(ctx, accountID)
	if err != nil {
		return err
	}
	_, err = s.carts.UpdateCart(ctx, userID, func(c *model.Cart) error {
		c.Remove(itemID)
		return nil
	})
	return err
}

// View returns the caller's cart priced at current catalog prices
func (s *CartService) View(ctx context.Context, accountID string) (*CartView, error) {
	userID, err := s.userID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	lines, err := s.resolveLines(ctx, cart)
	if err != nil {
		return nil, err
	}

	view := &CartView{Lines: lines, TotalPrice: decimal.Zero}
	for _, l := range lines {
		view.TotalPrice = view.TotalPrice.Add(l.Subtotal())
	}
	return view, nil
}

// Resolve groups the user's cart by seller. Groups follow the first appearance of
// each seller in the cart and keep cart order inside a group. An empty cart yields no groups.
func (s *CartService) Resolve(ctx context.Context, userID string) ([]SellerGroup, error) {
	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	lines, err := s.resolveLines(ctx, cart)
	if err != nil {
		return nil, err
	}

	groups := []SellerGroup{}
	index := make(map[string]int)
	for _, l := range lines {
		i, ok := index[l.Item.SellerID]
		if !ok {
			i = len(groups)
			index[l.Item.SellerID] = i
			groups = append(groups, SellerGroup{SellerID: l.Item.SellerID})
		}
		groups[i].Lines = append(groups[i].Lines, l)
	}
	return groups, nil
}

// Clear empties the user's cart
func (s *CartService) Clear(ctx context.Context, userID string) error {
	return s.carts.ClearCart(ctx, userID)
}

func (s *CartService) resolveLines(ctx context.Context, cart *model.Cart) ([]CartLine, error) {
	if cart.IsEmpty() {
		return []CartLine{}, nil
	}

	ids := make([]string, 0, len(cart.Items))
	for _, e := range cart.Items {
		ids = append(ids, e.ItemID)
	}
	items, err := s.catalog.GetItemsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	lines := make([]CartLine, 0, len(cart.Items))
	for _, e := range cart.Items {
		it, ok := byID[e.ItemID]
		if !ok {
			s.log.Warn("cart references missing item",
				zap.String("user_id", cart.UserID),
				zap.String("item_id", e.ItemID))
			continue
		}
		lines = append(lines, CartLine{Item: it, Quantity: e.Quantity})
	}
	return lines, nil
}
