package models

import (
	"encoding/json"
	"time"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	StatusNotProcess OrderStatus = "Not Process"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

// OrderStatuses lists every valid status in fulfilment order.
var OrderStatuses = []OrderStatus{
	StatusNotProcess,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Payment is the gateway result recorded with an order.
type Payment struct {
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
	Amount        string `json:"amount"`
	Success       bool   `json:"success"`
}

// Order is a paid checkout of one or more products.
//
// ProductIDs keeps the cart order and duplicates; Products and Buyer are
// filled in when the order is populated for a response.
type Order struct {
	ID         string      `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	ProductIDs []string    `json:"-" gorm:"serializer:json;type:text"`
	Products   []Product   `json:"-" gorm:"-"`
	Payment    Payment     `json:"payment" gorm:"serializer:json;type:text"`
	BuyerID    string      `json:"-" gorm:"index;type:varchar(36);not null"`
	Buyer      *UserRef    `json:"-" gorm:"-"`
	Status     OrderStatus `json:"status" gorm:"type:varchar(20);not null;default:'Not Process'"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

func (o Order) MarshalJSON() ([]byte, error) {
	type plain Order
	var products any = []string{}
	switch {
	case o.Products != nil:
		products = o.Products
	case o.ProductIDs != nil:
		products = o.ProductIDs
	}
	var buyer any = o.BuyerID
	if o.Buyer != nil {
		buyer = o.Buyer
	}
	return json.Marshal(struct {
		plain
		Products any `json:"products"`
		Buyer    any `json:"buyer"`
	}{plain(o), products, buyer})
}
