package service

import (
	"context"
	"math"

	"github.com/igaue-takahiko/food-delivery-app/internal/apperr"
	"github.com/igaue-takahiko/food-delivery-app/internal/model"
)

const earthRadiusKM = 6371.0

type RestaurantService struct {
	catalog  CatalogStore
	radiusKM float64
}

func NewRestaurantService(catalog CatalogStore, radiusKM float64) *RestaurantService {
	return &RestaurantService{catalog: catalog, radiusKM: radiusKM}
}

// List returns verified sellers, newest first
func (s *RestaurantService) List(ctx context.Context) ([]model.Seller, error) {
	return s.catalog.ListVerifiedSellers(ctx)
}

// Get returns a seller together with its menu
func (s *RestaurantService) Get(ctx context.Context, sellerID string) (*model.Seller, error) {
	seller, err := s.catalog.GetSeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	items, err := s.catalog.ListItemsBySeller(ctx, seller.ID)
	if err != nil {
		return nil, err
	}
	seller.Items = items
	return seller, nil
}

// Nearby returns verified sellers within the configured radius of the point
func (s *RestaurantService) Nearby(ctx context.Context, lat, lng float64) ([]model.Seller, error) {
	var details []apperr.FieldError
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		details = append(details, apperr.FieldError{Field: "lat", Message: "must be between -90 and 90"})
	}
	if math.IsNaN(lng) || lng < -180 || lng > 180 {
		details = append(details, apperr.FieldError{Field: "lng", Message: "must be between -180 and 180"})
	}
	if len(details) > 0 {
		return nil, apperr.Validation("Invalid coordinates.", details...)
	}

	sellers, err := s.catalog.ListVerifiedSellers(ctx)
	if err != nil {
		return nil, err
	}
	nearby := []model.Seller{}
	for _, sl := range sellers {
		if distanceKM(lat, lng, sl.Address.Lat, sl.Address.Lng) <= s.radiusKM {
			nearby = append(nearby, sl)
		}
	}
	return nearby, nil
}

// distanceKM is the great-circle distance between two points (haversine).
func distanceKM(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
