package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is the stored product document. Category holds only the id of
// the referenced category.
type Product struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name            string             `json:"name" bson:"name"`
	Description     string             `json:"description" bson:"description"`
	RichDescription string             `json:"richDescription" bson:"richDescription"`
	Image           string             `json:"image" bson:"image"`
	Images          []string           `json:"images" bson:"images"`
	Brand           string             `json:"brand" bson:"brand"`
	Price           float64            `json:"price" bson:"price"`
	Category        primitive.ObjectID `json:"category" bson:"category"`
	CountInStock    int                `json:"countInStock" bson:"countInStock"`
	Rating          float64            `json:"rating" bson:"rating"`
	NumReviews      int                `json:"numReviews" bson:"numReviews"`
	IsFeatured      bool               `json:"isFeatured" bson:"isFeatured"`
	DateCreated     time.Time          `json:"dateCreated" bson:"dateCreated"`
}

// ProductDetail is a product with its category expanded. The outer
// Category field shadows the embedded id when encoded.
type ProductDetail struct {
	Product
	Category *Category `json:"category"`
}
