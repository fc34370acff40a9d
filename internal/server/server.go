package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"luzzen/internal/config"
	"luzzen/internal/database"
	custommiddleware "luzzen/internal/middleware"
	"luzzen/internal/repository"
	"luzzen/internal/service"
	"luzzen/internal/session"
	"luzzen/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB, redisClient *redis.Client) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.Env == "development"))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithJSON(w, http.StatusOK, database.Health(db))
	})

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	brandRepo := repository.NewBrandRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)

	// Initialize session store
	sessionStore := session.NewRedisStore(redisClient, cfg.Session.TTL)

	// Initialize services
	userService := service.NewUserService(userRepo, orderRepo, favoriteRepo)
	catalogService := service.NewCatalogService(productRepo, categoryRepo, brandRepo, materialRepo)
	cartService := service.NewCartService(orderRepo, productRepo)
	checkoutService := service.NewCheckoutService(orderRepo, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, userRepo)
	favoriteService := service.NewFavoriteService(favoriteRepo, productRepo)

	// Create middlewares
	authMiddleware := custommiddleware.Auth(sessionStore, cfg.Session.CookieName, logger)
	adminMiddleware := custommiddleware.RequireAdmin(logger)
	rateLimiter := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.Requests,
		Window:            cfg.RateLimit.Window,
		KeyPrefix:         "ratelimit",
	}, logger)

	// Initialize handlers
	userHandler := transport.NewUserHandler(userService, sessionStore, cfg.Session.CookieName, cfg.Session.TTL, cfg.Session.Secure, logger)
	catalogHandler := transport.NewCatalogHandler(catalogService, logger)
	cartHandler := transport.NewCartHandler(cartService, checkoutService, orderService, logger)
	favoriteHandler := transport.NewFavoriteHandler(favoriteService, logger)
	adminHandler := transport.NewAdminHandler(catalogService, userService, orderService, favoriteService, logger)

	// Register routes; credential endpoints are rate limited
	router.Group(func(r chi.Router) {
		r.Use(rateLimiter)
		userHandler.RegisterRoutes(r, authMiddleware)
	})
	catalogHandler.RegisterRoutes(router)
	cartHandler.RegisterRoutes(router, authMiddleware)
	favoriteHandler.RegisterRoutes(router, authMiddleware)
	adminHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	// Close redis connection
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
