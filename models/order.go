package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultOrderStatus = "Pending"

// OrderItem is one line of an order. It only exists as a child of an order.
type OrderItem struct {
	ID       primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Quantity int                `json:"quantity" bson:"quantity"`
	Product  primitive.ObjectID `json:"product" bson:"product"`
}

// Order keeps its line items as an ordered list of ids. TotalPrice is the
// sum of quantity x price at creation time and is never recomputed.
type Order struct {
	ID               primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	OrderItems       []primitive.ObjectID `json:"orderItems" bson:"orderItems"`
	ShippingAddress1 string               `json:"shippingAddress1" bson:"shippingAddress1"`
	ShippingAddress2 string               `json:"shippingAddress2" bson:"shippingAddress2"`
	City             string               `json:"city" bson:"city"`
	Zip              string               `json:"zip" bson:"zip"`
	Country          string               `json:"country" bson:"country"`
	Phone            string               `json:"phone" bson:"phone"`
	Status           string               `json:"status" bson:"status"`
	TotalPrice       float64              `json:"totalPrice" bson:"totalPrice"`
	User             primitive.ObjectID   `json:"user" bson:"user"`
	DateOrdered      time.Time            `json:"dateOrdered" bson:"dateOrdered"`
}

type OrderItemDetail struct {
	ID       primitive.ObjectID `json:"id"`
	Quantity int                `json:"quantity"`
	Product  *ProductDetail     `json:"product"`
}

// OrderSummary is an order with only its user expanded, as returned by the
// order list.
type OrderSummary struct {
	Order
	User *UserRef `json:"user"`
}

// OrderDetail is an order with user, line items, products and categories
// expanded.
type OrderDetail struct {
	Order
	User       *UserRef          `json:"user"`
	OrderItems []OrderItemDetail `json:"orderItems"`
}
