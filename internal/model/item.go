package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Item struct {
	ID          string          `json:"id"`
	SellerID    string          `json:"sellerId"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Tags        string          `json:"tags,omitempty"`
	ImageURL    string          `json:"imageUrl"`
	Price       decimal.Decimal `json:"price"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Snapshot copies the fields an order keeps about the item.
func (i Item) Snapshot() ItemSnapshot {
	return ItemSnapshot{
		ID:          i.ID,
		SellerID:    i.SellerID,
		Title:       i.Title,
		Description: i.Description,
		ImageURL:    i.ImageURL,
		Price:       i.Price,
	}
}
