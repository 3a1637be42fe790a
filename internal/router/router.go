package router

import (
	"log"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/mrskaggs/forkful/backend/internal/authz"
	"github.com/mrskaggs/forkful/backend/internal/chat"
	"github.com/mrskaggs/forkful/backend/internal/handlers"
	"github.com/mrskaggs/forkful/backend/internal/identity"
	"github.com/mrskaggs/forkful/backend/internal/middleware"
	"github.com/mrskaggs/forkful/backend/internal/models"
	"github.com/mrskaggs/forkful/backend/internal/repositories"
	"github.com/mrskaggs/forkful/backend/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, bus chat.Bus, provider identity.Provider, logger *zap.Logger) {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.Recipe{},
		&models.Comment{},
		&models.Suggestion{},
		&models.Report{},
		&models.Block{},
		&models.ChatMessage{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	commentRepo := repositories.NewPostgresCommentRepository(pgdb)
	suggestionRepo := repositories.NewPostgresSuggestionRepository(pgdb)
	reportRepo := repositories.NewPostgresReportRepository(pgdb)
	blockRepo := repositories.NewPostgresBlockRepository(pgdb)
	chatMessageRepo := repositories.NewPostgresChatMessageRepository(pgdb)
	recipeDirectory := repositories.NewPostgresRecipeDirectory(pgdb)

	// --- Initialize Services ---
	policy := authz.NewPolicy()
	commentService := services.NewCommentService(pgdb, commentRepo, blockRepo, recipeDirectory, policy, logger)
	suggestionService := services.NewSuggestionService(pgdb, suggestionRepo, blockRepo, recipeDirectory, policy, logger)
	moderationService := services.NewModerationService(pgdb, reportRepo, blockRepo, commentRepo, chatMessageRepo, policy, logger)

	// --- Chat gateway ---
	hub := chat.NewHub(bus, chatMessageRepo, blockRepo, recipeDirectory, logger)
	chatHandler := handlers.NewChatHandler(hub, provider)
	chatHandler.RegisterChatRoutes(e)

	// --- Protected routes (require bearer authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware(middleware.NewIPRateLimiter(10, 30)))
	api.Use(middleware.AuthMiddleware(provider))

	commentHandler := handlers.NewCommentHandler(commentService)
	commentHandler.RegisterCommentRoutes(api)

	suggestionHandler := handlers.NewSuggestionHandler(suggestionService)
	suggestionHandler.RegisterSuggestionRoutes(api)

	reportHandler := handlers.NewReportHandler(moderationService)
	reportHandler.RegisterReportRoutes(api)

	logger.Info("all routes configured")
}
