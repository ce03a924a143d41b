package repository

import (
	"context"
	"fmt"

	"github.com/Mayank561/ECOMMERCE-API/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type CategoryRepository struct {
	collection        *mongo.Collection
	productCollection *mongo.Collection
}

func NewCategoryRepository(db *mongo.Database) *CategoryRepository {
	return &CategoryRepository{
		collection:        db.Collection(CategoriesCollection),
		productCollection: db.Collection(ProductsCollection),
	}
}

func (r *CategoryRepository) FindAll(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	if err := findAll(ctx, r.collection, bson.M{}, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	var category models.Category
	if err := findOne(ctx, r.collection, id, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Category, error) {
	categories := []models.Category{}
	if len(ids) == 0 {
		return categories, nil
	}
	if err := findAll(ctx, r.collection, byIDs(ids), &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	id, err := insertOne(ctx, r.collection, category)
	if err != nil {
		return err
	}
	category.ID = id
	return nil
}

func (r *CategoryRepository) Replace(ctx context.Context, category *models.Category) error {
	return replaceOne(ctx, r.collection, category.ID, category)
}

func (r *CategoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, r.collection, id)
}

// HasProducts reports whether any product still references the category.
func (r *CategoryRepository) HasProducts(ctx context.Context, id primitive.ObjectID) (bool, error) {
	count, err := r.productCollection.CountDocuments(ctx, bson.M{"category": id})
	if err != nil {
		return false, fmt.Errorf("failed to count products for category %s: %w", id.Hex(), err)
	}
	return count > 0, nil
}
