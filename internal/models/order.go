package models

import "time"

// OrderRequest is the checkout payload.
type OrderRequest struct {
	OrderItems      []OrderItemRequest `json:"orderItems"`
	ShippingAddress ShippingAddress    `json:"shippingAddress"`
	PaymentMethod   string             `json:"paymentMethod"`
}

// OrderItemRequest is a line item as submitted by the client. Only Product and
// Qty are trusted; the rest is replaced from the product record.
type OrderItemRequest struct {
	Product string  `json:"product"`
	Qty     int     `json:"qty"`
	Name    string  `json:"name,omitempty"`
	Image   string  `json:"image,omitempty"`
	Price   float64 `json:"price,omitempty"`
}

// OrderItem is a line item snapshotted from the product at order time.
type OrderItem struct {
	Product string  `json:"product" bson:"product"`
	Name    string  `json:"name" bson:"name"`
	Image   string  `json:"image" bson:"image"`
	Price   float64 `json:"price" bson:"price"`
	Qty     int     `json:"qty" bson:"qty"`
}

type ShippingAddress struct {
	Address    string `json:"address" bson:"address"`
	City       string `json:"city" bson:"city"`
	PostalCode string `json:"postalCode" bson:"postalCode"`
	Country    string `json:"country" bson:"country"`
}

// PaymentResult is the confirmation received from the payment provider.
type PaymentResult struct {
	ID           string `json:"id" bson:"id"`
	Status       string `json:"status" bson:"status"`
	UpdateTime   string `json:"update_time" bson:"update_time"`
	EmailAddress string `json:"email_address" bson:"email_address"`
}

// PaymentRequest is the body of the mark-paid call.
type PaymentRequest struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	UpdateTime string `json:"update_time"`
	Payer      struct {
		EmailAddress string `json:"email_address"`
	} `json:"payer"`
}

// Order is a placed order. Monetary amounts are decimal strings with two
// fraction digits.
type Order struct {
	ID              string          `json:"_id" bson:"_id"`
	User            string          `json:"user" bson:"user"`
	OrderItems      []OrderItem     `json:"orderItems" bson:"orderItems"`
	ShippingAddress ShippingAddress `json:"shippingAddress" bson:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod" bson:"paymentMethod"`
	PaymentResult   *PaymentResult  `json:"paymentResult,omitempty" bson:"paymentResult,omitempty"`
	ItemsPrice      string          `json:"itemsPrice" bson:"itemsPrice"`
	ShippingPrice   string          `json:"shippingPrice" bson:"shippingPrice"`
	TaxPrice        string          `json:"taxPrice" bson:"taxPrice"`
	TotalPrice      string          `json:"totalPrice" bson:"totalPrice"`
	IsPaid          bool            `json:"isPaid" bson:"isPaid"`
	PaidAt          *time.Time      `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
	IsDelivered     bool            `json:"isDelivered" bson:"isDelivered"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty" bson:"deliveredAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt" bson:"updatedAt"`
}

// OrderUser is the part of the ordering account shown alongside an order.
type OrderUser struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// OrderDetails is an order with its user resolved. User is nil when the
// account no longer exists.
type OrderDetails struct {
	Order
	User *OrderUser `json:"user"`
}

// DailySales is the paid total for one calendar day (UTC, YYYY-MM-DD).
type DailySales struct {
	Date       string `json:"date"`
	TotalSales string `json:"totalSales"`
}
