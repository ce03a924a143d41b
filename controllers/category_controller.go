package controllers

import (
	"context"
	"net/http"

	"github.com/Mayank561/ECOMMERCE-API/models"
	"github.com/Mayank561/ECOMMERCE-API/services"
	"github.com/gin-gonic/gin"
)

// CategoryServiceAPI defines the interface for category service operations
type CategoryServiceAPI interface {
	List(ctx context.Context) ([]models.Category, error)
	Get(ctx context.Context, id string) (*models.Category, error)
	Create(ctx context.Context, in services.CategoryInput) (*models.Category, error)
	Update(ctx context.Context, id string, in services.CategoryInput) (*models.Category, error)
	Delete(ctx context.Context, id string) error
}

// CategoryController serves categories. Products embed their category, so
// category writes also drop cached products.
type CategoryController struct {
	service CategoryServiceAPI
	cache   *CacheManager
}

func NewCategoryController(s CategoryServiceAPI, cache *CacheManager) *CategoryController {
	return &CategoryController{service: s, cache: cache}
}

func (ctrl *CategoryController) GetCategories(c *gin.Context) {
	categories, err := ctrl.service.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, categories)
}

func (ctrl *CategoryController) GetCategory(c *gin.Context) {
	category, err := ctrl.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, category)
}

func (ctrl *CategoryController) CreateCategory(c *gin.Context) {
	var req services.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindError(err))
		return
	}

	category, err := ctrl.service.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, category)
}

func (ctrl *CategoryController) UpdateCategory(c *gin.Context) {
	var req services.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindError(err))
		return
	}

	category, err := ctrl.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	ctrl.cache.Invalidate(c.Request.Context())
	respond(c, http.StatusOK, category)
}

func (ctrl *CategoryController) DeleteCategory(c *gin.Context) {
	if err := ctrl.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "the category is deleted!")
}
