package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Seller struct {
	ID               string          `json:"id"`
	AccountID        string          `json:"accountId"`
	Name             string          `json:"name"`
	Tags             string          `json:"tags"`
	FormattedAddress string          `json:"formattedAddress"`
	ImageURLs        []string        `json:"imageUrl"`
	Address          Address         `json:"address"`
	MinOrderAmount   decimal.Decimal `json:"minOrderAmount"`
	CostForOne       decimal.Decimal `json:"costForOne"`
	Payment          []string        `json:"payment"`
	IsVerified       bool            `json:"isVerified"`
	Items            []Item          `json:"items,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
}
