package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Mayank561/ECOMMERCE-API/models"
	awspkg "github.com/Mayank561/ECOMMERCE-API/pkg/aws"
	"github.com/Mayank561/ECOMMERCE-API/services"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	ProductCachePrefix     = "product:detail:"
	ProductListCachePrefix = "products:v:"
	CacheVersionKey        = "products:version"
	DefaultCacheTTL        = 5 * time.Minute
	cacheOpTimeout         = 5 * time.Second
)

// cacheClient is the subset of *redis.Client the cache uses.
type cacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// CacheManager caches product reads in Redis. A nil client turns every
// method into a miss or a no-op.
//
// Readers take the cache version before reading the database and write back
// under that version. A write that lands in between bumps the version, so
// the stale copy goes to a key nobody reads.
type CacheManager struct {
	redis   cacheClient
	ttl     time.Duration
	metrics services.MetricsRecorder
}

func NewCacheManager(client *redis.Client, metrics services.MetricsRecorder) *CacheManager {
	if client == nil {
		return newCacheManager(nil, metrics)
	}
	return newCacheManager(client, metrics)
}

func newCacheManager(client cacheClient, metrics services.MetricsRecorder) *CacheManager {
	return &CacheManager{
		redis:   client,
		ttl:     DefaultCacheTTL,
		metrics: metrics,
	}
}

// GetProduct returns a cached product detail. On a miss it returns the
// version to pass to SetProductAsync; zero means the cache is unavailable.
func (cm *CacheManager) GetProduct(ctx context.Context, productID string) (*models.ProductDetail, int64, bool) {
	if cm == nil || cm.redis == nil {
		return nil, 0, false
	}
	version, err := cm.getCacheVersion(ctx)
	if err != nil {
		return nil, 0, false
	}
	data, err := cm.redis.Get(ctx, detailCacheKey(version, productID)).Bytes()
	if err != nil {
		cm.record(ctx, awspkg.MetricCacheMisses)
		return nil, version, false
	}

	var product models.ProductDetail
	if err := json.Unmarshal(data, &product); err != nil {
		zap.L().Warn("Failed to unmarshal cached product", zap.Error(err), zap.String("product_id", productID))
		cm.record(ctx, awspkg.MetricCacheMisses)
		return nil, version, false
	}
	cm.record(ctx, awspkg.MetricCacheHits)
	return &product, version, true
}

// SetProductAsync caches a single product under version in the background.
func (cm *CacheManager) SetProductAsync(version int64, productID string, product *models.ProductDetail) {
	if cm == nil || cm.redis == nil || version == 0 {
		return
	}
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
		defer cancel()

		data, err := json.Marshal(product)
		if err != nil {
			zap.L().Warn("Failed to marshal product for cache", zap.Error(err), zap.String("product_id", productID))
			return
		}
		if err := cm.redis.Set(bgCtx, detailCacheKey(version, productID), data, cm.ttl).Err(); err != nil {
			zap.L().Warn("Failed to cache product", zap.Error(err), zap.String("product_id", productID))
		}
	}()
}

// GetProductList returns a cached product listing for the category filter,
// with the same version contract as GetProduct.
func (cm *CacheManager) GetProductList(ctx context.Context, categoryIDs []string) ([]models.ProductDetail, int64, bool) {
	if cm == nil || cm.redis == nil {
		return nil, 0, false
	}
	version, err := cm.getCacheVersion(ctx)
	if err != nil {
		return nil, 0, false
	}
	data, err := cm.redis.Get(ctx, listCacheKey(version, categoryIDs)).Bytes()
	if err != nil {
		cm.record(ctx, awspkg.MetricCacheMisses)
		return nil, version, false
	}

	var products []models.ProductDetail
	if err := json.Unmarshal(data, &products); err != nil {
		zap.L().Warn("Failed to unmarshal cached product list", zap.Error(err))
		return nil, version, false
	}
	cm.record(ctx, awspkg.MetricCacheHits)
	return products, version, true
}

// SetProductListAsync caches a product listing under version.
func (cm *CacheManager) SetProductListAsync(version int64, categoryIDs []string, products []models.ProductDetail) {
	if cm == nil || cm.redis == nil || version == 0 {
		return
	}
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
		defer cancel()

		data, err := json.Marshal(products)
		if err != nil {
			zap.L().Warn("Failed to marshal product list for cache", zap.Error(err))
			return
		}
		if err := cm.redis.Set(bgCtx, listCacheKey(version, categoryIDs), data, cm.ttl).Err(); err != nil {
			zap.L().Warn("Failed to cache product list", zap.Error(err))
		}
	}()
}

// Invalidate drops every cached product entry by bumping the version the
// keys are built from. Old entries expire on their own.
func (cm *CacheManager) Invalidate(ctx context.Context) {
	if cm == nil || cm.redis == nil {
		return
	}
	newVersion, err := cm.redis.Incr(ctx, CacheVersionKey).Result()
	if err != nil {
		zap.L().Error("Failed to invalidate product cache", zap.Error(err))
		return
	}
	zap.L().Debug("Product cache invalidated", zap.Int64("new_version", newVersion))
}

// getCacheVersion reads the listing version, creating it on first use.
func (cm *CacheManager) getCacheVersion(ctx context.Context) (int64, error) {
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		ver, err := cm.redis.Get(ctx, CacheVersionKey).Int64()
		if err == nil && ver > 0 {
			return ver, nil
		}
		if errors.Is(err, redis.Nil) {
			if err := cm.redis.SetNX(ctx, CacheVersionKey, 1, 0).Err(); err == nil {
				continue
			}
		}
		if i < maxRetries-1 {
			time.Sleep(50 * time.Millisecond)
		}
	}
	return 0, fmt.Errorf("failed to get cache version after %d retries", maxRetries)
}

func (cm *CacheManager) record(ctx context.Context, metric string) {
	if cm.metrics == nil {
		return
	}
	_ = cm.metrics.RecordCount(ctx, metric, map[string]string{"Cache": "products"})
}

func detailCacheKey(version int64, productID string) string {
	return fmt.Sprintf("%s%d:%s", ProductCachePrefix, version, productID)
}

func listCacheKey(version int64, categoryIDs []string) string {
	ids := append([]string(nil), categoryIDs...)
	sort.Strings(ids)
	return fmt.Sprintf("%s%d:c:%s", ProductListCachePrefix, version, strings.Join(ids, ","))
}
