package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "github.com/Mayank561/ECOMMERCE-API/common/errors"
	"github.com/Mayank561/ECOMMERCE-API/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockSearchService struct{ mock.Mock }

func (m *MockSearchService) Search(ctx context.Context, term, category string) ([]models.Product, error) {
	args := m.Called(ctx, term, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockSearchService) SearchOrCreate(ctx context.Context, term, category string) ([]models.Product, bool, error) {
	args := m.Called(ctx, term, category)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]models.Product), args.Bool(1), args.Error(2)
}

func newSearchRouter(svc SearchServiceAPI, autoCreate bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(apperrors.ErrorMiddleware())
	ctrl := NewSearchController(svc, autoCreate, NewCacheManager(nil, nil))
	r.GET("/search", ctrl.Search)
	r.POST("/search/suggest", ctrl.Suggest)
	return r
}

func TestSearchWithoutAutoCreate(t *testing.T) {
	svc := new(MockSearchService)
	svc.On("Search", mock.Anything, "lamp", "").Return([]models.Product{}, nil)

	w := httptest.NewRecorder()
	newSearchRouter(svc, false).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search?term=lamp", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["data"])
	svc.AssertExpectations(t)
	svc.AssertNotCalled(t, "SearchOrCreate", mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchWithAutoCreate(t *testing.T) {
	svc := new(MockSearchService)
	svc.On("SearchOrCreate", mock.Anything, "lamp", "").
		Return([]models.Product{{Name: "lamp"}}, true, nil)

	w := httptest.NewRecorder()
	newSearchRouter(svc, true).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search?term=lamp", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 1)
	svc.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestSuggest(t *testing.T) {
	category := primitive.NewObjectID().Hex()
	svc := new(MockSearchService)
	svc.On("SearchOrCreate", mock.Anything, "hammer", category).
		Return([]models.Product{{Name: "hammer"}}, true, nil)
	r := newSearchRouter(svc, false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/search/suggest", SuggestRequest{Term: "hammer", Category: category}))
	require.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/search/suggest", SuggestRequest{Term: "hammer", Category: "tools"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/search/suggest", map[string]string{}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNumberOfCalls(t, "SearchOrCreate", 1)
}

func TestSearchErrorEnvelope(t *testing.T) {
	svc := new(MockSearchService)
	svc.On("Search", mock.Anything, "x", "nope").Return(nil, apperrors.Validation("Invalid Category Id", nil))

	w := httptest.NewRecorder()
	newSearchRouter(svc, false).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search?term=x&category=nope", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Invalid Category Id", body["error"])
}

func TestSuggestRejectsBlankAndOverlongTerms(t *testing.T) {
	svc := new(MockSearchService)
	svc.On("SearchOrCreate", mock.Anything, "hammer", "").
		Return([]models.Product{{Name: "hammer"}}, false, nil)
	r := newSearchRouter(svc, false)

	tests := []struct {
		name string
		term string
		want int
	}{
		{"blank", "   ", http.StatusBadRequest},
		{"too long", strings.Repeat("w", 201), http.StatusBadRequest},
		{"trimmed", "  hammer\t", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/search/suggest", SuggestRequest{Term: tt.term}))
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
	svc.AssertNumberOfCalls(t, "SearchOrCreate", 1)
}
