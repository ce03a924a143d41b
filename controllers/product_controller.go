package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/Mayank561/ECOMMERCE-API/common/errors"
	"github.com/Mayank561/ECOMMERCE-API/models"
	"github.com/Mayank561/ECOMMERCE-API/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProductServiceAPI defines the interface for product service operations
type ProductServiceAPI interface {
	List(ctx context.Context, categoryIDs []string) ([]models.ProductDetail, error)
	Get(ctx context.Context, id string) (*models.ProductDetail, error)
	Create(ctx context.Context, in services.ProductInput, image *services.ImageFile) (*models.Product, error)
	Update(ctx context.Context, id string, in services.ProductInput, image *services.ImageFile) (*models.Product, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	Featured(ctx context.Context, limit int) ([]models.Product, error)
	SetGalleryImages(ctx context.Context, id string, images []services.ImageFile) (*models.Product, error)
}

type ProductController struct {
	service ProductServiceAPI
	cache   *CacheManager
}

func NewProductController(s ProductServiceAPI, cache *CacheManager) *ProductController {
	return &ProductController{service: s, cache: cache}
}

// GetProducts lists products, optionally filtered by ?categories=id1,id2.
func (ctrl *ProductController) GetProducts(c *gin.Context) {
	ctx := c.Request.Context()
	var categoryIDs []string
	if raw := strings.TrimSpace(c.Query("categories")); raw != "" {
		categoryIDs = strings.Split(raw, ",")
	}

	cached, version, ok := ctrl.cache.GetProductList(ctx, categoryIDs)
	if ok {
		respond(c, http.StatusOK, cached)
		return
	}

	products, err := ctrl.service.List(ctx, categoryIDs)
	if err != nil {
		fail(c, err)
		return
	}
	ctrl.cache.SetProductListAsync(version, categoryIDs, products)
	respond(c, http.StatusOK, products)
}

func (ctrl *ProductController) GetProduct(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	cached, version, ok := ctrl.cache.GetProduct(ctx, id)
	if ok {
		respond(c, http.StatusOK, cached)
		return
	}

	product, err := ctrl.service.Get(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	ctrl.cache.SetProductAsync(version, id, product)
	respond(c, http.StatusOK, product)
}

// CreateProduct expects multipart form fields plus a single "image" file.
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	in, image, cleanup, ok := ctrl.bindProductForm(c)
	if !ok {
		return
	}
	defer cleanup()

	product, err := ctrl.service.Create(c.Request.Context(), in, image)
	if err != nil {
		fail(c, err)
		return
	}
	ctrl.cache.Invalidate(c.Request.Context())
	respond(c, http.StatusCreated, product)
}

// UpdateProduct replaces a product. The "image" file is optional.
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	in, image, cleanup, ok := ctrl.bindProductForm(c)
	if !ok {
		return
	}
	defer cleanup()

	id := c.Param("id")
	product, err := ctrl.service.Update(c.Request.Context(), id, in, image)
	if err != nil {
		fail(c, err)
		return
	}
	ctrl.cache.Invalidate(c.Request.Context())
	respond(c, http.StatusOK, product)
}

func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	id := c.Param("id")
	if err := ctrl.service.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	ctrl.cache.Invalidate(c.Request.Context())
	respondMessage(c, http.StatusOK, "the product is deleted!")
}

func (ctrl *ProductController) GetProductCount(c *gin.Context) {
	count, err := ctrl.service.Count(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"productCount": count})
}

// GetFeaturedProducts returns up to :count featured products; 0 means all.
func (ctrl *ProductController) GetFeaturedProducts(c *gin.Context) {
	limit, err := strconv.Atoi(c.Param("count"))
	if err != nil {
		fail(c, apperrors.Validation("count must be a number", err))
		return
	}

	products, err := ctrl.service.Featured(c.Request.Context(), limit)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, products)
}

// UpdateGalleryImages replaces the gallery with the uploaded "images" files.
func (ctrl *ProductController) UpdateGalleryImages(c *gin.Context) {
	if err := parseMultipart(c); err != nil {
		fail(c, err)
		return
	}
	images, files, err := imagesFromForm(c, "images")
	if err != nil {
		fail(c, err)
		return
	}
	defer closeAll(files)

	id := c.Param("id")
	product, err := ctrl.service.SetGalleryImages(c.Request.Context(), id, images)
	if err != nil {
		fail(c, err)
		return
	}
	ctrl.cache.Invalidate(c.Request.Context())
	respond(c, http.StatusOK, product)
}

// bindProductForm parses the multipart form and the optional "image" file.
// On failure the error is already attached to c.
func (ctrl *ProductController) bindProductForm(c *gin.Context) (services.ProductInput, *services.ImageFile, func(), bool) {
	var in services.ProductInput
	if err := parseMultipart(c); err != nil {
		fail(c, err)
		return in, nil, nil, false
	}
	if err := c.ShouldBind(&in); err != nil {
		fail(c, bindError(err))
		return in, nil, nil, false
	}

	image, file, err := imageFromForm(c, "image")
	if err != nil {
		fail(c, err)
		return in, nil, nil, false
	}
	cleanup := func() {
		if file == nil {
			return
		}
		if err := file.Close(); err != nil {
			zap.L().Warn("Failed to close upload", zap.Error(err))
		}
	}
	return in, image, cleanup, true
}
