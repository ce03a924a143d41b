package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/Mayank561/ECOMMERCE-API/common/errors"
	"github.com/Mayank561/ECOMMERCE-API/models"
	awspkg "github.com/Mayank561/ECOMMERCE-API/pkg/aws"
	"github.com/Mayank561/ECOMMERCE-API/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ProductInput carries the editable product fields. Category is a category id.
type ProductInput struct {
	Name            string  `form:"name" binding:"required"`
	Description     string  `form:"description" binding:"required"`
	RichDescription string  `form:"richDescription"`
	Brand           string  `form:"brand"`
	Price           float64 `form:"price" binding:"gte=0"`
	Category        string  `form:"category" binding:"required"`
	CountInStock    int     `form:"countInStock" binding:"gte=0"`
	Rating          float64 `form:"rating"`
	NumReviews      int     `form:"numReviews" binding:"gte=0"`
	IsFeatured      bool    `form:"isFeatured"`
}

const productNotFound = "Product not found"

type ProductService struct {
	products   repository.ProductRepo
	categories repository.CategoryRepo
	images     ImageStore
	metrics    MetricsRecorder
}

func NewProductService(products repository.ProductRepo, categories repository.CategoryRepo, images ImageStore, metrics MetricsRecorder) *ProductService {
	return &ProductService{
		products:   products,
		categories: categories,
		images:     images,
		metrics:    metrics,
	}
}

// List returns products with their category expanded, optionally limited to
// the given category ids.
func (s *ProductService) List(ctx context.Context, categoryIDs []string) ([]models.ProductDetail, error) {
	q := repository.ProductQuery{}
	for _, raw := range categoryIDs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := parseID(raw, "Category")
		if err != nil {
			return nil, err
		}
		q.CategoryIDs = append(q.CategoryIDs, id)
	}

	products, err := s.products.Find(ctx, q)
	if err != nil {
		return nil, storeErr(err, productNotFound)
	}
	return s.expand(ctx, products)
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.ProductDetail, error) {
	oid, err := parseID(id, "Product")
	if err != nil {
		return nil, err
	}
	product, err := s.products.FindByID(ctx, oid)
	if err != nil {
		return nil, storeErr(err, productNotFound)
	}
	details, err := s.expand(ctx, []models.Product{*product})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// Create validates the category, stores the image and persists the product.
// Nothing is written when the category does not exist.
func (s *ProductService) Create(ctx context.Context, in ProductInput, image *ImageFile) (*models.Product, error) {
	categoryID, err := s.resolveCategory(ctx, in.Category)
	if err != nil {
		return nil, err
	}
	if image == nil {
		return nil, apperrors.Input("No image in the request")
	}
	if err := validateProductInput(in); err != nil {
		return nil, err
	}

	url, err := s.upload(ctx, image)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Images:      []string{},
		Image:       url,
		DateCreated: time.Now().UTC(),
	}
	applyProductInput(product, in, categoryID)

	if err := s.products.Create(ctx, product); err != nil {
		return nil, apperrors.Creation("the product cannot be created", err)
	}
	recordCount(ctx, s.metrics, awspkg.MetricProductsCreated)
	zap.L().Info("product created", zap.String("product_id", product.ID.Hex()))
	return product, nil
}

// Update replaces the editable fields. The stored image is kept unless a new
// one is uploaded.
func (s *ProductService) Update(ctx context.Context, id string, in ProductInput, image *ImageFile) (*models.Product, error) {
	oid, err := parseID(id, "Product")
	if err != nil {
		return nil, err
	}
	categoryID, err := s.resolveCategory(ctx, in.Category)
	if err != nil {
		return nil, err
	}
	if err := validateProductInput(in); err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, oid)
	if err != nil {
		return nil, storeErr(err, productNotFound)
	}

	if image != nil {
		url, err := s.upload(ctx, image)
		if err != nil {
			return nil, err
		}
		product.Image = url
	}
	applyProductInput(product, in, categoryID)

	if err := s.products.Replace(ctx, product); err != nil {
		return nil, storeErr(err, productNotFound)
	}
	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id, "Product")
	if err != nil {
		return err
	}
	return storeErr(s.products.Delete(ctx, oid), "product not found!")
}

func (s *ProductService) Count(ctx context.Context) (int64, error) {
	count, err := s.products.Count(ctx)
	if err != nil {
		return 0, storeErr(err, productNotFound)
	}
	return count, nil
}

// Featured returns up to limit featured products; limit 0 returns all of them.
func (s *ProductService) Featured(ctx context.Context, limit int) ([]models.Product, error) {
	if limit < 0 {
		return nil, apperrors.Validation("count must not be negative", nil)
	}
	products, err := s.products.Find(ctx, repository.ProductQuery{FeaturedOnly: true, Limit: int64(limit)})
	if err != nil {
		return nil, storeErr(err, productNotFound)
	}
	return products, nil
}

// SetGalleryImages uploads every image and replaces the product's gallery
// with the resulting URLs.
func (s *ProductService) SetGalleryImages(ctx context.Context, id string, images []ImageFile) (*models.Product, error) {
	oid, err := parseID(id, "Product")
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, apperrors.Input("No images in the request")
	}
	if _, err := s.products.FindByID(ctx, oid); err != nil {
		return nil, storeErr(err, productNotFound)
	}

	urls := make([]string, 0, len(images))
	for i := range images {
		url, err := s.upload(ctx, &images[i])
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}

	product, err := s.products.SetImages(ctx, oid, urls)
	if err != nil {
		return nil, storeErr(err, productNotFound)
	}
	return product, nil
}

func (s *ProductService) resolveCategory(ctx context.Context, raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperrors.Validation("Invalid Category", err)
	}
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return primitive.NilObjectID, apperrors.Validation("Invalid Category", nil)
		}
		return primitive.NilObjectID, storeErr(err, categoryNotFound)
	}
	return id, nil
}

func (s *ProductService) upload(ctx context.Context, image *ImageFile) (string, error) {
	if _, ok := ImageExtension(image.ContentType); !ok {
		return "", apperrors.Validation("invalid image type", nil)
	}
	name := imageObjectName(image.Name, image.ContentType)
	url, err := s.images.Upload(ctx, name, image.ContentType, image.Body)
	if err != nil {
		return "", apperrors.Internal(fmt.Errorf("store image %s: %w", name, err))
	}
	return url, nil
}

// expand replaces each product's category id with the category document.
func (s *ProductService) expand(ctx context.Context, products []models.Product) ([]models.ProductDetail, error) {
	categories, err := loadCategories(ctx, s.categories, products)
	if err != nil {
		return nil, err
	}
	details := make([]models.ProductDetail, 0, len(products))
	for _, p := range products {
		details = append(details, productDetail(p, categories))
	}
	return details, nil
}

func validateProductInput(in ProductInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return apperrors.Validation("product name is required", nil)
	case in.Price < 0:
		return apperrors.Validation("price must not be negative", nil)
	case in.CountInStock < 0:
		return apperrors.Validation("countInStock must not be negative", nil)
	}
	return nil
}

func applyProductInput(p *models.Product, in ProductInput, categoryID primitive.ObjectID) {
	p.Name = in.Name
	p.Description = in.Description
	p.RichDescription = in.RichDescription
	p.Brand = in.Brand
	p.Price = in.Price
	p.Category = categoryID
	p.CountInStock = in.CountInStock
	p.Rating = in.Rating
	p.NumReviews = in.NumReviews
	p.IsFeatured = in.IsFeatured
}

// loadCategories fetches every category referenced by products in one query.
func loadCategories(ctx context.Context, repo repository.CategoryRepo, products []models.Product) (map[primitive.ObjectID]*models.Category, error) {
	seen := make(map[primitive.ObjectID]bool)
	ids := make([]primitive.ObjectID, 0)
	for _, p := range products {
		if !p.Category.IsZero() && !seen[p.Category] {
			seen[p.Category] = true
			ids = append(ids, p.Category)
		}
	}
	found, err := repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, storeErr(err, categoryNotFound)
	}
	byID := make(map[primitive.ObjectID]*models.Category, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}
	return byID, nil
}

func productDetail(p models.Product, categories map[primitive.ObjectID]*models.Category) models.ProductDetail {
	return models.ProductDetail{Product: p, Category: categories[p.Category]}
}
