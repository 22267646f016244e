package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"time"
)

const DefaultCategory = "Honey"

// Categories suggested by the admin product form. Category stays free-form.
var Categories = []string{"Honey", "Supplements", "Hive Products", "Gift Boxes"}

// I18nText holds one string per storefront language.
type I18nText struct {
	AR string `json:"ar"`
	FR string `json:"fr"`
	EN string `json:"en"`
}

// UnmarshalJSON also accepts a bare string, which legacy documents used
// for names and descriptions, and copies it into every language.
func (t *I18nText) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = I18nText{AR: s, FR: s, EN: s}
		return nil
	}
	type plain I18nText
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*t = I18nText(p)
	return nil
}

// In returns the text for lang, falling back to any non-empty variant.
func (t I18nText) In(lang string) string {
	switch lang {
	case "ar":
		if t.AR != "" {
			return t.AR
		}
	case "fr":
		if t.FR != "" {
			return t.FR
		}
	case "en":
		if t.EN != "" {
			return t.EN
		}
	}
	for _, v := range []string{t.EN, t.FR, t.AR} {
		if v != "" {
			return v
		}
	}
	return ""
}

func (t I18nText) IsZero() bool {
	return strings.TrimSpace(t.AR) == "" && strings.TrimSpace(t.FR) == "" && strings.TrimSpace(t.EN) == ""
}

func (t I18nText) Fields() map[string]any {
	return map[string]any{"ar": t.AR, "fr": t.FR, "en": t.EN}
}

type Product struct {
	ID          string    `json:"id"`
	Name        I18nText  `json:"name"`
	Description I18nText  `json:"description"`
	Price       int64     `json:"price"`
	Image       string    `json:"image"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"createdAt"`
}

// UnmarshalJSON accepts legacy documents whose price is not a number; such
// a price becomes 0. A missing category stays empty so cart lines
// round-trip unchanged.
func (p *Product) UnmarshalJSON(b []byte) error {
	type alias Product
	aux := struct {
		*alias
		Price json.RawMessage `json:"price"`
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	p.Price = numericPrice(aux.Price)
	return nil
}

func numericPrice(raw json.RawMessage) int64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] == '"' {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int64(f)
}

// CartItem is a product snapshot with a quantity, flattened on the wire.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// UnmarshalJSON is needed because Product's decoder would otherwise be
// promoted and drop the quantity.
func (i *CartItem) UnmarshalJSON(b []byte) error {
	if err := json.Unmarshal(b, &i.Product); err != nil {
		return err
	}
	var q struct {
		Quantity int `json:"quantity"`
	}
	if err := json.Unmarshal(b, &q); err != nil {
		return err
	}
	i.Quantity = q.Quantity
	return nil
}

func (i CartItem) LineTotal() int64 {
	return i.Price * int64(i.Quantity)
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

type Order struct {
	ID           string      `json:"id"`
	CustomerName string      `json:"customerName"`
	Phone        string      `json:"phone"`
	Wilaya       string      `json:"wilaya"`
	Address      string      `json:"address"`
	Items        []CartItem  `json:"items"`
	Total        int64       `json:"total"`
	Status       OrderStatus `json:"status"`
	CreatedAt    time.Time   `json:"createdAt"`
	Feedback     *Feedback   `json:"feedback,omitempty"`
}

type Feedback struct {
	ID           string    `json:"id"`
	OrderID      string    `json:"orderId"`
	CustomerName string    `json:"customerName"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ShippingDetails is the checkout form.
type ShippingDetails struct {
	Name    string `json:"name"    validate:"required"`
	Phone   string `json:"phone"   validate:"required"`
	Wilaya  string `json:"wilaya"  validate:"required,wilaya"`
	Address string `json:"address" validate:"required"`
}

func (d ShippingDetails) Trimmed() ShippingDetails {
	return ShippingDetails{
		Name:    strings.TrimSpace(d.Name),
		Phone:   strings.TrimSpace(d.Phone),
		Wilaya:  strings.TrimSpace(d.Wilaya),
		Address: strings.TrimSpace(d.Address),
	}
}
