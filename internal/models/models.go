package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is a placed customer order. It is written once and never mutated.
type Order struct {
	ID          int64           `db:"id" json:"id"`
	OrderNumber string          `db:"order_number" json:"orderNumber"`
	LineItems   []OrderLineItem `db:"-" json:"orderLineItemsList"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
}

// OrderLineItem belongs to exactly one Order.
type OrderLineItem struct {
	ID       int64           `db:"id" json:"id"`
	OrderID  int64           `db:"order_id" json:"-"`
	SKUCode  string          `db:"sku_code" json:"skuCode"`
	Price    decimal.Decimal `db:"price" json:"price"`
	Quantity int             `db:"quantity" json:"quantity"`
}

// NewOrder builds an unsaved order with a fresh random order number.
func NewOrder(items []OrderLineItem) *Order {
	return &Order{
		OrderNumber: uuid.New().String(),
		LineItems:   items,
	}
}

// SKUCodes returns the distinct SKU codes of the order in first-seen order.
func (o *Order) SKUCodes() []string {
	seen := make(map[string]struct{}, len(o.LineItems))
	codes := make([]string, 0, len(o.LineItems))
	for _, item := range o.LineItems {
		if _, ok := seen[item.SKUCode]; ok {
			continue
		}
		seen[item.SKUCode] = struct{}{}
		codes = append(codes, item.SKUCode)
	}
	return codes
}

// OrderRequest is the inbound placement request.
type OrderRequest struct {
	LineItems []OrderLineItemRequest `json:"orderLineItemsDtoList" binding:"required,min=1,dive"`
}

// OrderLineItemRequest is one requested line.
type OrderLineItemRequest struct {
	SKUCode  string          `json:"skuCode" binding:"required"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity" binding:"required,min=1"`
}

// ToLineItem maps a requested line onto an order line item.
func (r OrderLineItemRequest) ToLineItem() OrderLineItem {
	return OrderLineItem{
		SKUCode:  r.SKUCode,
		Price:    r.Price,
		Quantity: r.Quantity,
	}
}

// InventoryResponse is the stock flag the inventory service reports per SKU.
type InventoryResponse struct {
	SKUCode string `json:"skuCode"`
	InStock bool   `json:"inStock"`
}
