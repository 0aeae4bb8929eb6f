package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/proposalpilot/backend/internal/config"
	"github.com/proposalpilot/backend/internal/http/handlers"
	"github.com/proposalpilot/backend/internal/http/middleware"
	"github.com/proposalpilot/backend/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	profileHandler *handlers.ProfileHandler,
	logoHandler *handlers.LogoHandler,
	proposalHandler *handlers.ProposalHandler,
	portalHandler *handlers.PortalHandler,
	templateHandler *handlers.TemplateHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Check)
	r.StaticFS("/media/logos", http.Dir(cfg.LogoStoragePath))

	api := r.Group("/api")

	// Auth маршруты с жёстким лимитом против перебора паролей.
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(5, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	// Публичные маршруты
	api.GET("/ws", wsHandler.Handle)

	// Клиентский портал: доступ по share-токену без аутентификации,
	// поэтому лимитируем по IP.
	portal := api.Group("/portal")
	portal.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		portal.GET("/:token", portalHandler.Fetch)
		portal.POST("/:token/view", portalHandler.RecordView)
		portal.POST("/:token/sign", portalHandler.Sign)
	}

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/profile", profileHandler.GetMe)
		protected.PUT("/profile", profileHandler.UpdateMe)
		protected.POST("/profile/logo", logoHandler.Upload)

		protected.GET("/templates", templateHandler.List)

		protected.GET("/proposals", proposalHandler.List)
		protected.POST("/proposals", proposalHandler.Create)
		protected.POST("/proposals/generate", proposalHandler.Generate)
		protected.GET("/proposals/:id", middleware.UUIDValidator("id"), proposalHandler.Get)
		protected.PUT("/proposals/:id", middleware.UUIDValidator("id"), proposalHandler.Update)
		protected.DELETE("/proposals/:id", middleware.UUIDValidator("id"), proposalHandler.Delete)
	}

	return r
}
