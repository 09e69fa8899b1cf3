package api

import (
	"net/http"

	"alcyxob/fitness-scheduler/internal/domain"
	"alcyxob/fitness-scheduler/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	exerciseService service.ExerciseService,
	scheduleService service.ScheduleService,
	painService service.PainService,
) {
	authHandler := NewAuthHandler(authService)
	exerciseHandler := NewExerciseHandler(exerciseService, authService)
	scheduleHandler := NewScheduleHandler(scheduleService, exerciseService, authService)
	painHandler := NewPainHandler(painService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", authHandler.GetMe)
		protected.PUT("/me/constraints", authHandler.UpdateMyConstraints)

		// --- Household Routes ---
		userGroup := protected.Group("/users")
		{
			userGroup.GET("", RoleMiddleware(domain.RoleAdmin), authHandler.ListUsers)
			// The handler itself restricts members to their own trail.
			userGroup.GET("/:userId/audit", scheduleHandler.GetUserAudit)
		}

		// --- Exercise Library Routes ---
		// The unfiltered library is admin territory; members get their safe
		// catalog from the schedule routes, and single-exercise reads are
		// screened against the caller's constraints in the handler.
		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.POST("", RoleMiddleware(domain.RoleAdmin), exerciseHandler.CreateExercise)
			exerciseGroup.GET("", RoleMiddleware(domain.RoleAdmin), exerciseHandler.ListExercises)
			exerciseGroup.GET("/:id", exerciseHandler.GetExercise)
			exerciseGroup.PUT("/:id", RoleMiddleware(domain.RoleAdmin), exerciseHandler.UpdateExercise)
			exerciseGroup.DELETE("/:id", RoleMiddleware(domain.RoleAdmin), exerciseHandler.DeleteExercise)

			exerciseGroup.POST("/:id/video/upload-url", RoleMiddleware(domain.RoleAdmin), exerciseHandler.RequestVideoUpload)
			exerciseGroup.GET("/:id/video/download-url", exerciseHandler.GetVideoDownload)
		}

		// --- Schedule Routes ---
		scheduleGroup := protected.Group("/schedule")
		{
			scheduleGroup.POST("/generate", scheduleHandler.GenerateWeek)
			scheduleGroup.GET("/preview", scheduleHandler.PreviewWeek)
			scheduleGroup.GET("/week", scheduleHandler.GetWeek)
			scheduleGroup.GET("/catalog", scheduleHandler.GetSafeCatalog)
			scheduleGroup.POST("/validate", scheduleHandler.ValidateWeek)
			scheduleGroup.GET("/cycling-plan", scheduleHandler.GetCyclingPlan)

			scheduleGroup.POST("/workouts/:workoutId/regenerate", scheduleHandler.RegenerateDay)
			scheduleGroup.POST("/workouts/:workoutId/complete", scheduleHandler.CompleteWorkout)
			scheduleGroup.POST("/workouts/:workoutId/skip", scheduleHandler.SkipWorkout)
		}

		// --- Pain Report Routes ---
		painGroup := protected.Group("/pain")
		{
			painGroup.POST("/reports", painHandler.ReportPain)
			painGroup.POST("/reports/:reportId/resolve", painHandler.ResolvePain)
			painGroup.GET("/recovery", painHandler.GetRecoveryStatus)
		}
	}
}
