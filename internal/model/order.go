package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPlaced           OrderStatus = "PLACED"
	StatusCancelled        OrderStatus = "CANCELLED"
	StatusOutForDelivery   OrderStatus = "OUT_FOR_DELIVERY"
	StatusDeliveryComplete OrderStatus = "DELIVERY_COMPLETE"
	StatusDelivered        OrderStatus = "DELIVERED"
)

// OrderStatuses lists every status an order may hold. Any status may follow any other.
var OrderStatuses = []OrderStatus{
	StatusPlaced,
	StatusCancelled,
	StatusOutForDelivery,
	StatusDeliveryComplete,
	StatusDelivered,
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range OrderStatuses {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// ItemSnapshot is the copy of an item taken when the order was placed.
type ItemSnapshot struct {
	ID          string          `json:"id"`
	SellerID    string          `json:"sellerId"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Price       decimal.Decimal `json:"price"`
}

type OrderLine struct {
	Item     ItemSnapshot `json:"item"`
	Quantity int          `json:"quantity"`
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.Item.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type UserSnapshot struct {
	Email   string   `json:"email"`
	Name    string   `json:"name"`
	Address *Address `json:"address"`
	UserID  string   `json:"userId"`
}

type SellerSnapshot struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	SellerID string `json:"sellerId"`
}

// Order is immutable after creation except for Status.
type Order struct {
	ID        string         `json:"id"`
	Items     []OrderLine    `json:"items"`
	Status    OrderStatus    `json:"status"`
	User      UserSnapshot   `json:"user"`
	Seller    SellerSnapshot `json:"seller"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Items {
		total = total.Add(l.Subtotal())
	}
	return total
}
