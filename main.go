package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Manushivuz/IISPPR-MainSite/handlers"
	"github.com/Manushivuz/IISPPR-MainSite/internal/admins"
	"github.com/Manushivuz/IISPPR-MainSite/internal/ads"
	"github.com/Manushivuz/IISPPR-MainSite/internal/config"
	"github.com/Manushivuz/IISPPR-MainSite/internal/database"
	dochandler "github.com/Manushivuz/IISPPR-MainSite/internal/document/handler"
	docrepo "github.com/Manushivuz/IISPPR-MainSite/internal/document/repository"
	docservice "github.com/Manushivuz/IISPPR-MainSite/internal/document/service"
	"github.com/Manushivuz/IISPPR-MainSite/internal/oidc"
	"github.com/Manushivuz/IISPPR-MainSite/internal/pageads"
	"github.com/Manushivuz/IISPPR-MainSite/internal/sessions"
	"github.com/Manushivuz/IISPPR-MainSite/internal/storage"
	"github.com/Manushivuz/IISPPR-MainSite/internal/testimonials"
	"github.com/Manushivuz/IISPPR-MainSite/internal/tokens"
	"github.com/Manushivuz/IISPPR-MainSite/internal/upload"
	"github.com/Manushivuz/IISPPR-MainSite/pkg/logger"
	"github.com/Manushivuz/IISPPR-MainSite/pkg/metrics"
	"github.com/Manushivuz/IISPPR-MainSite/pkg/middleware"
)

var startTime = time.Now()

const assetsURLPrefix = "/uploads/assets"

// indexer is implemented by the Mongo repositories that own indexes.
type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// stores holds the repositories chosen at startup: Mongo when reachable, memory otherwise.
type stores struct {
	ads          ads.Repository
	testimonials testimonials.Repository
	pageAds      pageads.Repository
	documents    docrepo.Repository
	admins       admins.Repository
	sessions     sessions.Repository
	indexed      []indexer
}

func mongoStores(db *mongo.Database) *stores {
	pa := pageads.NewMongoRepository(db.Collection("pageads"))
	ad := admins.NewMongoRepository(db.Collection("admins"))
	ss := sessions.NewMongoRepository(db.Collection("sessions"))
	dr := docrepo.NewMongoRepo(db.Collection("documents"))
	return &stores{
		ads:          ads.NewMongoRepository(db.Collection("advertisements")),
		testimonials: testimonials.NewMongoRepository(db.Collection("testimonials")),
		pageAds:      pa,
		documents:    dr,
		admins:       ad,
		sessions:     ss,
		indexed:      []indexer{pa, ad, ss, dr},
	}
}

func memoryStores() *stores {
	return &stores{
		ads:          ads.NewMemoryRepository(),
		testimonials: testimonials.NewMemoryRepository(),
		pageAds:      pageads.NewMemoryRepository(),
		documents:    docrepo.NewMemoryRepo(),
		admins:       admins.NewMemoryRepository(),
		sessions:     sessions.NewMemoryRepository(),
	}
}

// newAssets picks MinIO when configured, else the local directory served by r.
func newAssets(cfg *config.Config, r *gin.Engine) (storage.Assets, error) {
	mc := storage.NewMinIOConfig(cfg.Storage)
	if mc.Configured() {
		s, err := storage.NewMinIOStorage(mc)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	local, err := storage.NewLocalStorage(cfg.Upload.AssetsDir, assetsURLPrefix)
	if err != nil {
		return nil, err
	}
	r.Static(assetsURLPrefix, local.Dir())
	logger.Warnf("MINIO_ENDPOINT not set; assets are stored under %s", local.Dir())
	return local, nil
}

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: keycloak=%v mongo=%v redis=%v minio=%v", cfg.Keycloak.URL != "", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.Storage.Endpoint != "")
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	})

	// Redis backs sessions, the token blacklist and the shared rate limiter.
	var redisClient *redis.Client
	if addr := cfg.RedisAddr(); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v", addr, err)
			_ = client.Close()
		} else {
			redisClient = client
			defer func() { _ = redisClient.Close() }()
			logger.Infof("connected to Redis: %s", addr)
		}
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	var mongoClient *mongo.Client
	st := memoryStores()
	if cfg.MongoDB.URI != "" {
		mongoClient, err = database.ConnectWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5, func(attempt int, err error) {
			logger.Warnf("attempt %d/5: failed to connect to MongoDB: %v", attempt, err)
		})
		if err != nil {
			logger.Warnf("could not connect to MongoDB, falling back to memory: %v", err)
		} else {
			defer func() { _ = mongoClient.Disconnect(context.Background()) }()
			st = mongoStores(mongoClient.Database(cfg.MongoDB.Database))
			for _, ix := range st.indexed {
				if err := ix.EnsureIndexes(ctx); err != nil {
					logger.Warnf("ensure indexes: %v", err)
				}
			}
		}
	}
	if redisClient != nil {
		st.sessions = sessions.NewRedisRepository(redisClient, "session:")
		logger.Infof("using Redis for session storage")
	}

	assets, err := newAssets(cfg, r)
	if err != nil {
		logger.Fatalf("failed to initialize asset storage: %v", err)
	}
	intake, err := upload.NewIntake(cfg.Upload.TempDir, cfg.Upload.MaxBytes)
	if err != nil {
		logger.Fatalf("failed to initialize upload dir: %v", err)
	}
	upload.StartSweeper(ctx, cfg.Upload.TempDir, cfg.Upload.MaxAge, time.Minute)

	adsSvc := ads.NewService(st.ads, assets)
	adsSvc.SetUnlinker(st.pageAds)
	pageAdsSvc := pageads.NewService(st.pageAds, adsSvc)
	testimonialsSvc := testimonials.NewService(st.testimonials, assets)
	documentsSvc := docservice.New(st.documents, assets)
	adminsSvc := admins.NewService(st.admins)
	sessionsSvc := sessions.NewService(st.sessions)
	blacklist := sessions.NewBlacklist(redisClient)

	verifiers := middleware.Verifiers{tokens.NewVerifier(cfg.JWT.Secret)}
	if cfg.Keycloak.URL != "" {
		ver, err := oidc.NewKeycloakVerifier(ctx, cfg.Keycloak)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			verifiers = append(verifiers, ver)
		}
	}

	guard := []gin.HandlerFunc{
		middleware.AuthMiddleware(verifiers, blacklist),
		middleware.RequireRole(admins.RoleAdmin),
	}
	uploadGuard := append(append([]gin.HandlerFunc{}, guard...), upload.CleanupMiddleware(cfg.Upload.TempDir, cfg.Upload.MaxAge))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness endpoint: 200 only when the configured backends answer
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := gin.H{"storage": assets.Backend()}
		if cfg.MongoDB.URI != "" {
			ok := mongoClient != nil && mongoClient.Ping(c.Request.Context(), nil) == nil
			deps["mongodb"] = ok
			ready = ready && ok
		}
		if cfg.Redis.Host != "" {
			ok := redisClient != nil && redisClient.Ping(c.Request.Context()).Err() == nil
			deps["redis"] = ok
			ready = ready && ok
		}
		deps["oidc"] = len(verifiers) > 1
		uptime := time.Since(startTime).String()
		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": uptime})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": uptime})
	})

	api := r.Group("/api")
	handlers.NewAuthHandler(cfg, adminsSvc, sessionsSvc, blacklist).Register(api, guard...)
	handlers.NewAdsHandler(adsSvc, pageAdsSvc, intake).Register(api, uploadGuard...)
	handlers.NewPageAdsHandler(pageAdsSvc).Register(api, guard...)
	handlers.NewTestimonialsHandler(testimonialsSvc, intake).Register(api, uploadGuard...)
	dochandler.RegisterDocumentRoutes(api, documentsSvc, intake, uploadGuard...)
	handlers.RegisterSwagger(r)

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("Starting content service on %s (assets=%s)", addr, assets.Backend())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown: %v", err)
	}
}
