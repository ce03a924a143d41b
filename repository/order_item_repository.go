package repository

import (
	"context"

	"github.com/Mayank561/ECOMMERCE-API/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type OrderItemRepository struct {
	collection *mongo.Collection
}

func NewOrderItemRepository(db *mongo.Database) *OrderItemRepository {
	return &OrderItemRepository{collection: db.Collection(OrderItemsCollection)}
}

func (r *OrderItemRepository) Create(ctx context.Context, item *models.OrderItem) error {
	id, err := insertOne(ctx, r.collection, item)
	if err != nil {
		return err
	}
	item.ID = id
	return nil
}

// FindByIDs returns the items found, in no particular order.
func (r *OrderItemRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.OrderItem, error) {
	items := []models.OrderItem{}
	if len(ids) == 0 {
		return items, nil
	}
	if err := findAll(ctx, r.collection, byIDs(ids), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *OrderItemRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, r.collection, id)
}
