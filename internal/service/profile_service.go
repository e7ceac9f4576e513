package service

import (
	"context"

	"github.com/igaue-takahiko/food-delivery-app/internal/apperr"
	"github.com/igaue-takahiko/food-delivery-app/internal/model"
)

// Profile is the caller as seen by GET /user. Exactly one of User and Seller is set.
type Profile struct {
	Account *model.Account `json:"account"`
	User    *model.User    `json:"user,omitempty"`
	Seller  *model.Seller  `json:"seller,omitempty"`
}

type ProfileService struct {
	profiles ProfileStore
	catalog  CatalogStore
}

func NewProfileService(profiles ProfileStore, catalog CatalogStore) *ProfileService {
	return &ProfileService{profiles: profiles, catalog: catalog}
}

// UpdateAddress stores the delivery address used by later checkouts
func (s *ProfileService) UpdateAddress(ctx context.Context, accountID string, addr model.Address, formatted string) (*model.User, error) {
	u, err := s.profiles.GetUserByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.profiles.UpdateUserAddress(ctx, u.ID, addr, formatted)
}

func (s *ProfileService) Me(ctx context.Context, accountID string, role model.Role) (*Profile, error) {
	account, err := s.profiles.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	p := &Profile{Account: account}

	switch role {
	case model.RoleUser:
		if p.User, err = s.profiles.GetUserByAccount(ctx, accountID); err != nil {
			return nil, err
		}
	case model.RoleSeller:
		if p.Seller, err = s.profiles.GetSellerByAccount(ctx, accountID); err != nil {
			return nil, err
		}
		if p.Seller.Items, err = s.catalog.ListItemsBySeller(ctx, p.Seller.ID); err != nil {
			return nil, err
		}
	default:
		return nil, apperr.Forbidden("Forbidden access.")
	}
	return p, nil
}
