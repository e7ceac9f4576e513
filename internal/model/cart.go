package model

import "time"

// CartEntry references an item by id; the price is resolved at checkout time.
type CartEntry struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// Cart keeps entries in insertion order. Quantities are always >= 1.
type Cart struct {
	UserID    string      `json:"userId"`
	Items     []CartEntry `json:"items"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

func (c *Cart) index(itemID string) int {
	for i, e := range c.Items {
		if e.ItemID == itemID {
			return i
		}
	}
	return -1
}

// Add puts one unit of the item in the cart.
func (c *Cart) Add(itemID string) {
	if i := c.index(itemID); i >= 0 {
		c.Items[i].Quantity++
		return
	}
	c.Items = append(c.Items, CartEntry{ItemID: itemID, Quantity: 1})
}

// Reduce takes one unit out, dropping the entry when it reaches zero.
// It reports whether the item was in the cart.
func (c *Cart) Reduce(itemID string) bool {
	i := c.index(itemID)
	if i < 0 {
		return false
	}
	if c.Items[i].Quantity > 1 {
		c.Items[i].Quantity--
		return true
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return true
}

// Remove drops the entry regardless of quantity.
func (c *Cart) Remove(itemID string) bool {
	i := c.index(itemID)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return true
}
