package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apperrors "github.com/Mayank561/ECOMMERCE-API/common/errors"
	"github.com/Mayank561/ECOMMERCE-API/common/logger"
	"github.com/Mayank561/ECOMMERCE-API/common/middleware"
	"github.com/Mayank561/ECOMMERCE-API/controllers"
	"github.com/Mayank561/ECOMMERCE-API/database"
	awspkg "github.com/Mayank561/ECOMMERCE-API/pkg/aws"
	"github.com/Mayank561/ECOMMERCE-API/repository"
	"github.com/Mayank561/ECOMMERCE-API/routes"
	"github.com/Mayank561/ECOMMERCE-API/services"
	"github.com/Mayank561/ECOMMERCE-API/tracing"
	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const serviceName = "storefront-api"

func main() {
	// Bootstrap logger so config errors are reported. Replaced below once
	// the config says where logs go.
	if _, err := logger.Initialize(os.Getenv("ENV")); err != nil {
		panic("failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()
	cfg, err := LoadConfig(ctx)
	if err != nil {
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	var awsCfg sdkaws.Config
	if cfg.S3Bucket != "" || cfg.SNSTopicArn != "" || cfg.CloudWatchEnabled {
		awsCfg, err = awspkg.LoadAWSConfig(ctx, cfg.AWS)
		if err != nil {
			zap.L().Fatal("Failed to load AWS config", zap.Error(err))
		}
	}

	log := initLogger(ctx, cfg, awsCfg)
	defer log.Sync()

	if cfg.OTELCollectorHost != "" {
		tp, err := tracing.InitTracing(ctx, cfg.OTELCollectorHost, serviceName)
		if err != nil {
			zap.L().Warn("Tracing disabled", zap.Error(err))
		} else {
			defer func() {
				_ = tp.Shutdown(context.Background())
			}()
		}
	}

	// --- Persistence ---
	store, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		zap.L().Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer store.Close()

	if err := repository.EnsureIndexes(ctx, store.DB); err != nil {
		zap.L().Warn("Failed to ensure indexes", zap.Error(err))
	}

	var tx database.TxRunner = database.DirectRunner{}
	if cfg.MongoTransactions {
		tx = database.NewMongoTxRunner(store.Client)
	}

	categoryRepo := repository.NewCategoryRepository(store.DB)
	productRepo := repository.NewProductRepository(store.DB)
	orderRepo := repository.NewOrderRepository(store.DB)
	itemRepo := repository.NewOrderItemRepository(store.DB)
	userRepo := repository.NewUserRepository(store.DB)

	// --- Ports ---
	metrics := awspkg.NewMetricsClient(awsCfg, cfg.CloudWatchNamespace, cfg.CloudWatchEnabled)

	images, err := newImageStore(cfg, awsCfg)
	if err != nil {
		zap.L().Fatal("Failed to set up image storage", zap.Error(err))
	}

	var events services.EventPublisher
	if cfg.SNSTopicArn != "" {
		events = awspkg.NewSNSClient(awsCfg, cfg.SNSTopicArn)
	}

	redisClient := newRedisClient(cfg.RedisURL)
	cache := controllers.NewCacheManager(redisClient, metrics)

	tokens := services.NewTokenService(cfg.JWTSecret)
	hasher := services.NewBcryptHasher(0)

	// --- Services & controllers ---
	categoryService := services.NewCategoryService(categoryRepo)
	productService := services.NewProductService(productRepo, categoryRepo, images, metrics)
	orderService := services.NewOrderService(orderRepo, itemRepo, productRepo, categoryRepo, userRepo, tx, events, metrics)
	userService := services.NewUserService(userRepo, hasher)
	authService := services.NewAuthService(userRepo, hasher, tokens)
	searchService := services.NewSearchService(productRepo, categoryRepo, metrics)

	ctrls := routes.Controllers{
		Categories: controllers.NewCategoryController(categoryService, cache),
		Products:   controllers.NewProductController(productService, cache),
		Orders:     controllers.NewOrderController(orderService),
		Users:      controllers.NewUserController(userService, authService),
		Search:     controllers.NewSearchController(searchService, cfg.SearchAutoCreate, cache),
	}

	// --- HTTP ---
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(log),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.AllowedOrigins),
		middleware.RateLimitMiddleware(cfg.RateLimitPerMinute, cfg.RateLimitBurst),
		middleware.MetricsMiddleware(metrics, serviceName),
		requestTimeout(30*time.Second),
		apperrors.ErrorMiddleware(),
	)

	r.Static("/public/uploads", cfg.UploadDir)
	routes.RegisterRoutes(r, cfg.APIURL, tokens, ctrls)

	var handler http.Handler = r
	if cfg.OTELCollectorHost != "" {
		handler = otelhttp.NewHandler(r, serviceName)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zap.L().Info("Storefront API starting",
			zap.String("port", cfg.Port),
			zap.String("api_url", cfg.APIURL),
			zap.Bool("transactions", tx.Transactional()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutting down Storefront API...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("Server forced to shutdown", zap.Error(err))
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			zap.L().Error("Failed to close Redis", zap.Error(err))
		}
	}

	zap.L().Info("Storefront API stopped gracefully")
}

// initLogger tees logs to CloudWatch Logs when enabled, otherwise keeps the
// console logger.
func initLogger(ctx context.Context, cfg *Config, awsCfg sdkaws.Config) *zap.Logger {
	if !cfg.CloudWatchEnabled {
		l, err := logger.Initialize(cfg.Env)
		if err != nil {
			panic("failed to initialize logger: " + err.Error())
		}
		return l
	}

	cw, err := awspkg.NewLogWriter(ctx, awspkg.NewCloudWatchLogsClient(awsCfg), awspkg.LogOptions{
		Group:         cfg.CloudWatchLogGroup,
		Service:       serviceName,
		RetentionDays: cfg.CloudWatchRetentionDays,
	})
	if err != nil {
		zap.L().Warn("CloudWatch Logs unavailable, logging to console only", zap.Error(err))
		l, _ := logger.Initialize(cfg.Env)
		return l
	}
	l, err := logger.InitializeWithWriter(cfg.Env, cw)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return l
}

// newImageStore uploads to S3 when a bucket is configured and to the local
// upload directory otherwise.
func newImageStore(cfg *Config, awsCfg sdkaws.Config) (services.ImageStore, error) {
	if cfg.S3Bucket != "" {
		zap.L().Info("Storing images in S3", zap.String("bucket", cfg.S3Bucket))
		return awspkg.NewS3Uploader(awspkg.NewS3Client(awsCfg), cfg.AWS.Region, cfg.S3Bucket, cfg.S3Prefix, cfg.S3PublicURL), nil
	}
	return services.NewLocalImageStore(cfg.UploadDir, cfg.PublicBaseURL)
}

// newRedisClient returns nil when no URL is set or it cannot be parsed; the
// product cache is then skipped.
func newRedisClient(url string) *redis.Client {
	if url == "" {
		return nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		zap.L().Warn("Failed to parse REDIS_URL, product cache disabled", zap.Error(err))
		return nil
	}
	return redis.NewClient(opts)
}

func requestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
