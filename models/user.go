package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User is an account. PasswordHash is stored but never encoded to JSON.
type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	Email        string             `json:"email" bson:"email"`
	PasswordHash string             `json:"-" bson:"passwordHash"`
	Phone        string             `json:"phone" bson:"phone"`
	IsAdmin      bool               `json:"isAdmin" bson:"isAdmin"`
	Street       string             `json:"street" bson:"street"`
	Apartment    string             `json:"apartment" bson:"apartment"`
	Zip          string             `json:"zip" bson:"zip"`
	City         string             `json:"city" bson:"city"`
	Country      string             `json:"country" bson:"country"`
}

// UserRef is the name-only projection used when an order expands its user.
type UserRef struct {
	ID   primitive.ObjectID `json:"id" bson:"_id"`
	Name string             `json:"name" bson:"name"`
}
