package repository

import (
	"context"
	"errors"

	"github.com/Mayank561/ECOMMERCE-API/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when a lookup, update or delete matches no document.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a write violates a unique index.
	ErrDuplicate = errors.New("duplicate key")
	// ErrNoResults is returned when an aggregation yields no grouped result.
	ErrNoResults = errors.New("aggregation returned no results")
)

// ProductQuery narrows a product listing. Zero values mean no constraint.
type ProductQuery struct {
	CategoryIDs  []primitive.ObjectID
	Term         string
	FeaturedOnly bool
	Limit        int64
}

type CategoryRepo interface {
	FindAll(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Replace(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	HasProducts(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type ProductRepo interface {
	Find(ctx context.Context, q ProductQuery) ([]models.Product, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Replace(ctx context.Context, product *models.Product) error
	SetImages(ctx context.Context, id primitive.ObjectID, images []string) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

type OrderItemRepo interface {
	Create(ctx context.Context, item *models.OrderItem) error
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.OrderItem, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type OrderRepo interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	// FindAll and FindByUser return orders newest first.
	FindAll(ctx context.Context) ([]models.Order, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Order, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	TotalSales(ctx context.Context) (float64, error)
	Count(ctx context.Context) (int64, error)
}

type UserRepo interface {
	FindAll(ctx context.Context) ([]models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindRefs(ctx context.Context, ids []primitive.ObjectID) ([]models.UserRef, error)
	Create(ctx context.Context, user *models.User) error
	Replace(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}
