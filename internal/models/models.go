package models

import (
	"time"
)

type Product struct {
	ID    int     `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
}

type Stock struct {
	ID     int `json:"id"`
	Amount int `json:"amount"`
}

// LineItem is a product copied into the cart at insertion time together with
// the requested amount. Amount is always >= 1 while the item is in a cart.
type LineItem struct {
	Product
	Amount int `json:"amount"`
}

func (i LineItem) Subtotal() float64 {
	return i.Price * float64(i.Amount)
}

// Cart keeps insertion order and holds at most one LineItem per product id.
type Cart []LineItem

func (c Cart) Index(productID int) int {
	for i := range c {
		if c[i].ID == productID {
			return i
		}
	}
	return -1
}

func (c Cart) Find(productID int) (LineItem, bool) {
	if i := c.Index(productID); i >= 0 {
		return c[i], true
	}
	return LineItem{}, false
}

func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

func (c Cart) Total() float64 {
	var total float64
	for _, it := range c {
		total += it.Subtotal()
	}
	return total
}

// Slot is one named text value, the server-side counterpart of a browser
// localStorage entry.
type Slot struct {
	Key       string    `gorm:"column:slot_key;primaryKey;size:255" json:"key"`
	Value     string    `gorm:"type:text;not null"                  json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Slot) TableName() string {
	return "storage_slots"
}
