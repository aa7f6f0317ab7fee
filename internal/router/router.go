package router

import (
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/wavely-app/backend/internal/handlers"
	"github.com/wavely-app/backend/internal/middleware"
	"github.com/wavely-app/backend/internal/models"
	"github.com/wavely-app/backend/internal/realtime"
	"github.com/wavely-app/backend/internal/repositories"
	"github.com/wavely-app/backend/internal/services"
	"github.com/wavely-app/backend/pkg/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mgClient *mongo.Client, cfg *config.Config, logger *zap.Logger) error {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Follow{},
		&models.Reaction{},
		&models.Comment{},
	)
	if err != nil {
		return err
	}
	logger.Info("PostgreSQL auto-migrations completed")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize repositories ---
	relationRepo := repositories.NewPostgresRelationRepository(pgdb)
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	commentRepo := repositories.NewPostgresCommentRepository(pgdb)
	notificationRepo := repositories.NewMongoNotificationRepository(mgClient.Database(cfg.MongoDatabase))

	// --- Connection registry and services ---
	hub := realtime.NewHub(logger)
	dispatcher := services.NewNotificationDispatcher(notificationRepo, userRepo, hub, logger)
	toggleService := services.NewToggleService(relationRepo, dispatcher, logger)

	// Websocket endpoint authenticates via query token, outside the JWT group
	wsHandler := handlers.NewWSHandler(hub, cfg.JWTSecret, logger)
	wsHandler.RegisterWSRoutes(e)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))

	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterUserRoutes(api)

	followHandler := handlers.NewFollowHandler(toggleService)
	followHandler.RegisterFollowRoutes(api)

	reactionHandler := handlers.NewReactionHandler(toggleService)
	reactionHandler.RegisterReactionRoutes(api)

	commentHandler := handlers.NewCommentHandler(toggleService, commentRepo)
	commentHandler.RegisterCommentRoutes(api)

	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	notificationHandler.RegisterNotificationRoutes(api)

	logger.Info("All routes configured")
	return nil
}
