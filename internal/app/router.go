package app

import (
	"khmerlearn_backend/docs"
	"khmerlearn_backend/internal/config"
	"khmerlearn_backend/internal/middleware"
	"khmerlearn_backend/internal/model"
	"khmerlearn_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// Public routes
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// Authenticated routes
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.GetProfile)

		authGroup.GET("/articles", c.article.ListArticles)
		authGroup.GET("/articles/:id", c.article.GetArticle)
		authGroup.GET("/articles/:id/availability", c.progression.CheckAvailability)
		authGroup.POST("/articles/:id/completions", c.progression.MarkCompleted)
		authGroup.POST("/articles/:id/attempts", c.progression.IncrementAttempt)

		authGroup.GET("/progression/articles", c.progression.ListArticlesWithStatus)
		authGroup.GET("/progression/summary", c.progression.ProgressSummary)
	}

	// Admin routes
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/articles", c.article.CreateArticle)
		admin.PUT("/articles/:id", c.article.UpdateArticle)
		admin.DELETE("/articles/:id", c.article.DeleteArticle)
		admin.POST("/articles/:id/schedule-publish", c.article.SchedulePublish)
		admin.POST("/articles/cover", c.article.UploadCover)

		admin.GET("/settings", c.setting.ListSettings)
		admin.GET("/articles/:id/setting", c.setting.GetSetting)
		admin.PUT("/articles/:id/setting", c.setting.UpdateSetting)
	}
}
