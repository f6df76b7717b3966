package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/gradplan/planner-backend/internal/config"
	"github.com/gradplan/planner-backend/internal/handler"
	"github.com/gradplan/planner-backend/internal/middleware"
	"github.com/gradplan/planner-backend/internal/response"
	"github.com/gradplan/planner-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Planner     *handler.PlannerHandler
	Requirement *handler.RequirementHandler
	PlanMajor   *handler.PlanMajorHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	limiter *middleware.RateLimiter,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", response.HeaderRequestID}
	corsConfig.ExposeHeaders = []string{response.HeaderRequestID}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.AccessLog(log))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ─── API Group (JWT + Rate Limit) ──────────────────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.NoStore(), middleware.RequireUserJWT(authService))
	if limiter != nil {
		api.Use(limiter.Middleware())
	}

	plans := api.Group("/plans/:plan_id")
	{
		plans.PUT("/lectures/recalculate", handlers.Planner.RecalculateLectureInfo)

		plans.GET("/requirements", handlers.Requirement.CheckRequirements)
		plans.GET("/requirements/progress", handlers.Requirement.CalculateProgress)
		plans.PUT("/requirements", handlers.Requirement.UpdateRequirements)

		plans.POST("/majors", handlers.PlanMajor.AddMajors)
		plans.PUT("/majors", handlers.PlanMajor.ReplaceMajors)
		plans.POST("/copy", handlers.PlanMajor.CopyPlan)
	}

	api.POST("/semesters/:semester_id/lectures", handlers.Planner.AddSemesterLecture)

	semesterLectures := api.Group("/semester-lectures")
	{
		semesterLectures.PUT("/:id", handlers.Planner.OverrideSemesterLecture)
		semesterLectures.DELETE("/:id", handlers.Planner.RemoveSemesterLecture)
		semesterLectures.POST("/:id/reset", handlers.Planner.ResetSemesterLecture)
	}

	return router
}
