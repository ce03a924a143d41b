package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/Mayank561/ECOMMERCE-API/common/errors"
	"github.com/Mayank561/ECOMMERCE-API/common/logger"
	"github.com/Mayank561/ECOMMERCE-API/models"
	awspkg "github.com/Mayank561/ECOMMERCE-API/pkg/aws"
	"github.com/Mayank561/ECOMMERCE-API/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// MaxSearchTermLength bounds the search term in bytes.
const MaxSearchTermLength = 200

type SearchService struct {
	products   repository.ProductRepo
	categories repository.CategoryRepo
	metrics    MetricsRecorder
}

func NewSearchService(products repository.ProductRepo, categories repository.CategoryRepo, metrics MetricsRecorder) *SearchService {
	return &SearchService{products: products, categories: categories, metrics: metrics}
}

// Search matches term against name or description, case-insensitively, and
// restricts to category when one is given. It never writes.
func (s *SearchService) Search(ctx context.Context, term, category string) ([]models.Product, error) {
	q, err := searchQuery(term, category)
	if err != nil {
		return nil, err
	}
	products, err := s.products.Find(ctx, q)
	if err != nil {
		return nil, storeErr(err, productNotFound)
	}
	return products, nil
}

// SearchOrCreate runs Search and, when a non-empty term matches nothing,
// creates one product derived from the term and returns it. created reports
// whether that happened.
func (s *SearchService) SearchOrCreate(ctx context.Context, term, category string) (products []models.Product, created bool, err error) {
	products, err = s.Search(ctx, term, category)
	if err != nil {
		return nil, false, err
	}
	term = strings.TrimSpace(term)
	if len(products) > 0 || term == "" {
		return products, false, nil
	}

	product := productFromTerm(term)
	if category != "" {
		cid, _ := primitive.ObjectIDFromHex(category)
		if _, err := s.categories.FindByID(ctx, cid); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, false, apperrors.Validation("Invalid Category", nil)
			}
			return nil, false, storeErr(err, categoryNotFound)
		}
		product.Category = cid
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, false, apperrors.Creation("Error saving product", err)
	}
	recordCount(ctx, s.metrics, awspkg.MetricSearchAutoCreated)
	logger.FromContext(ctx).Info("product created from search term",
		zap.String("term", term),
		zap.String("product_id", product.ID.Hex()),
	)
	return []models.Product{*product}, true, nil
}

func searchQuery(term, category string) (repository.ProductQuery, error) {
	q := repository.ProductQuery{Term: strings.TrimSpace(term)}
	if len(q.Term) > MaxSearchTermLength {
		return q, apperrors.Validation(fmt.Sprintf("search term is too long (max %d bytes)", MaxSearchTermLength), nil)
	}
	if category != "" {
		cid, err := parseID(category, "Category")
		if err != nil {
			return q, err
		}
		q.CategoryIDs = []primitive.ObjectID{cid}
	}
	return q, nil
}

// productFromTerm fills every product field from the search term. Numeric
// fields take the term's leading number, or zero. Price and stock are never
// negative.
func productFromTerm(term string) *models.Product {
	f, n := leadingFloat(term), leadingInt(term)
	return &models.Product{
		Name:            term,
		Description:     term,
		RichDescription: term + " - rich description",
		Brand:           term,
		Price:           max(f, 0),
		Rating:          f,
		CountInStock:    max(n, 0),
		NumReviews:      n,
		IsFeatured:      true,
		Images:          []string{},
		DateCreated:     time.Now().UTC(),
	}
}

// leadingFloat parses the longest numeric prefix of s, so "12.5kg" is 12.5.
func leadingFloat(s string) float64 {
	prefix := numericPrefix(strings.TrimSpace(s))
	if prefix == "" {
		return 0
	}
	f, err := strconv.ParseFloat(prefix, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// numericPrefix returns the longest prefix of s shaped like a decimal
// number: optional sign, digits with an optional fraction, optional exponent.
func numericPrefix(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	i = skipDigits(s, i)
	intDigits := i - start
	if i < len(s) && s[i] == '.' {
		end := skipDigits(s, i+1)
		if intDigits == 0 && end == i+1 {
			return ""
		}
		i = end
	} else if intDigits == 0 {
		return ""
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if end := skipDigits(s, j); end > j {
			i = end
		}
	}
	return s[:i]
}

func skipDigits(s string, i int) int {
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i
}

// leadingInt parses the leading integer of s, so "3 chairs" is 3.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	start := 0
	if start < len(s) && (s[0] == '-' || s[0] == '+') {
		start++
	}
	n, err := strconv.Atoi(s[:skipDigits(s, start)])
	if err != nil {
		return 0
	}
	return n
}
