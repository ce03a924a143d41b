package repository

import (
	"context"
	"fmt"
	"regexp"

	"github.com/Mayank561/ECOMMERCE-API/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProductRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{
		collection: db.Collection(ProductsCollection),
	}
}

// productFilter translates q into a find filter. The search term matches
// name or description as a case-insensitive literal substring.
func productFilter(q ProductQuery) bson.M {
	filter := bson.M{}
	if len(q.CategoryIDs) == 1 {
		filter["category"] = q.CategoryIDs[0]
	} else if len(q.CategoryIDs) > 1 {
		filter["category"] = bson.M{"$in": q.CategoryIDs}
	}
	if q.Term != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q.Term), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
		}
	}
	if q.FeaturedOnly {
		filter["isFeatured"] = true
	}
	return filter
}

func (r *ProductRepository) Find(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	opts := options.Find()
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	products := []models.Product{}
	if err := findAll(ctx, r.collection, productFilter(q), &products, opts); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	if err := findOne(ctx, r.collection, id, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *ProductRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	products := []models.Product{}
	if len(ids) == 0 {
		return products, nil
	}
	if err := findAll(ctx, r.collection, byIDs(ids), &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	id, err := insertOne(ctx, r.collection, product)
	if err != nil {
		return err
	}
	product.ID = id
	return nil
}

func (r *ProductRepository) Replace(ctx context.Context, product *models.Product) error {
	return replaceOne(ctx, r.collection, product.ID, product)
}

// SetImages replaces the gallery of a product and returns the updated document.
func (r *ProductRepository) SetImages(ctx context.Context, id primitive.ObjectID, images []string) (*models.Product, error) {
	var product models.Product
	if err := updateOne(ctx, r.collection, id, bson.M{"$set": bson.M{"images": images}}, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteOne(ctx, r.collection, id)
}

func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}
