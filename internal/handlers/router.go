package handlers

import (
	"time"

	"github.com/SAP-F-2025/learning-service/internal/metrics"
	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	authService services.AuthService
	logger      utils.Logger

	authHandler       *AuthHandler
	profileHandler    *ProfileHandler
	assessmentHandler *AssessmentHandler
	moduleHandler     *ModuleHandler
}

func NewHandlerManager(serviceManager *services.Manager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		authService:       serviceManager.Auth,
		logger:            logger,
		authHandler:       NewAuthHandler(serviceManager.Auth, logger),
		profileHandler:    NewProfileHandler(serviceManager.Profile, logger),
		assessmentHandler: NewAssessmentHandler(serviceManager.Assessment, logger),
		moduleHandler:     NewModuleHandler(serviceManager.Module, serviceManager.Export, logger),
	}
}

// CORS allows the configured frontend origins to call the API with a bearer token.
func CORS(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Disposition", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)
	router.GET("/metrics", metrics.Handler())

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", hm.authHandler.Register)
			auth.GET("/verify-email/:token", hm.authHandler.VerifyEmail)
			auth.POST("/login", hm.authHandler.Login)
			auth.POST("/refresh", hm.authHandler.Refresh)
		}

		protected := v1.Group("")
		protected.Use(RequireAuth(hm.authService, hm.logger))
		{
			protected.POST("/auth/logout", hm.authHandler.Logout)
			protected.POST("/auth/change-password", hm.authHandler.ChangePassword)

			protected.GET("/profile", hm.profileHandler.GetProfile)
			protected.PUT("/profile", hm.profileHandler.UpdateProfile)
			protected.PATCH("/profile", hm.profileHandler.UpdateProfile)

			assessment := protected.Group("/assessment")
			{
				assessment.GET("/questions", hm.assessmentHandler.ListQuestions)
				assessment.POST("/submit", hm.assessmentHandler.SubmitAssessment)
				assessment.GET("/progress", hm.assessmentHandler.GetProgress)
			}

			modules := protected.Group("/modules")
			{
				modules.POST("/generate", hm.moduleHandler.GenerateModule)
				modules.POST("/search", hm.moduleHandler.SearchRoadmap)
				modules.GET("/history", hm.moduleHandler.History)
				modules.GET("/history/export", hm.moduleHandler.ExportHistory)
				modules.GET("/:id", hm.moduleHandler.GetModule)
				modules.GET("/:id/test", hm.moduleHandler.GetTest)
				modules.POST("/:id/test/submit", hm.moduleHandler.SubmitTest)
				modules.POST("/:id/test/regenerate", hm.moduleHandler.RegenerateTest)
			}
		}
	}
}
