package repository

import (
	"context"
	"fmt"

	"github.com/Mayank561/ECOMMERCE-API/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OrderRepository struct {
	collection *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{collection: db.Collection(OrdersCollection)}
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "dateOrdered", Value: -1}})
}

func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	id, err := insertOne(ctx, r.collection, order)
	if err != nil {
		return err
	}
	order.ID = id
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	if err := findOne(ctx, r.collection, id, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) FindAll(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	if err := findAll(ctx, r.collection, bson.M{}, &orders, newestFirst()); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	orders := []models.Order{}
	if err := findAll(ctx, r.collection, bson.M{"user": userID}, &orders, newestFirst()); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Order, error) {
	var order models.Order
	if err := updateOne(ctx, r.collection, id, bson.M{"$set": bson.M{"status": status}}, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, r.collection, id)
}

// TotalSales sums totalPrice over every order. With no orders the pipeline
// yields no group and ErrNoResults is returned.
func (r *OrderRepository) TotalSales(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "totalsales", Value: bson.D{{Key: "$sum", Value: "$totalPrice"}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate total sales: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		TotalSales float64 `bson:"totalsales"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("failed to decode total sales: %w", err)
	}
	if len(results) == 0 {
		return 0, ErrNoResults
	}
	return results[0].TotalSales, nil
}

func (r *OrderRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}
