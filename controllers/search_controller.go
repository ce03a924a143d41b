package controllers

import (
	"context"
	"net/http"
	"strings"

	apperrors "github.com/Mayank561/ECOMMERCE-API/common/errors"
	"github.com/Mayank561/ECOMMERCE-API/models"
	"github.com/gin-gonic/gin"
)

// SearchServiceAPI defines the interface for product search operations
type SearchServiceAPI interface {
	Search(ctx context.Context, term, category string) ([]models.Product, error)
	SearchOrCreate(ctx context.Context, term, category string) ([]models.Product, bool, error)
}

// SuggestRequest is the body of POST /search/suggest.
type SuggestRequest struct {
	Term     string `json:"term" binding:"required,max=200"`
	Category string `json:"category" binding:"omitempty,objectid"`
}

// SearchController serves product search. With autoCreate set, a GET search
// that matches nothing creates a product from the term.
type SearchController struct {
	service    SearchServiceAPI
	autoCreate bool
	cache      *CacheManager
}

func NewSearchController(s SearchServiceAPI, autoCreate bool, cache *CacheManager) *SearchController {
	return &SearchController{service: s, autoCreate: autoCreate, cache: cache}
}

// Search handles GET /search?term=&category=.
func (ctrl *SearchController) Search(c *gin.Context) {
	term, category := c.Query("term"), c.Query("category")
	if ctrl.autoCreate {
		ctrl.searchOrCreate(c, term, category)
		return
	}

	products, err := ctrl.service.Search(c.Request.Context(), term, category)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, products)
}

// Suggest handles POST /search/suggest, which always creates on a miss.
func (ctrl *SearchController) Suggest(c *gin.Context) {
	var req SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindError(err))
		return
	}
	term := strings.TrimSpace(req.Term)
	if term == "" {
		fail(c, apperrors.Validation("Term is required", nil))
		return
	}
	ctrl.searchOrCreate(c, term, req.Category)
}

func (ctrl *SearchController) searchOrCreate(c *gin.Context, term, category string) {
	products, created, err := ctrl.service.SearchOrCreate(c.Request.Context(), term, category)
	if err != nil {
		fail(c, err)
		return
	}
	if created {
		ctrl.cache.Invalidate(c.Request.Context())
	}
	respond(c, http.StatusOK, products)
}
