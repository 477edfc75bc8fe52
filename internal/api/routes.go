package api

import (
	"log/slog"
	"net/http"

	"fittrack/backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds a gin engine with the standard middleware chain and all routes.
func NewRouter(
	logger *slog.Logger,
	userService service.UserService,
	workoutService service.WorkoutService,
	exerciseService service.ExerciseService,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestIDMiddleware(), LoggerMiddleware(logger), MetricsMiddleware())
	SetupRoutes(router, userService, workoutService, exerciseService)
	return router
}

func SetupRoutes(
	router *gin.Engine,
	userService service.UserService,
	workoutService service.WorkoutService,
	exerciseService service.ExerciseService,
) {
	userHandler := NewUserHandler(userService)
	workoutHandler := NewWorkoutHandler(workoutService)
	exerciseHandler := NewExerciseHandler(exerciseService)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		// --- User Routes (:id is the external id) ---
		userGroup := api.Group("/users")
		{
			userGroup.GET("", userHandler.ListUsers)
			userGroup.POST("", userHandler.CreateUser)
			userGroup.GET("/:id", userHandler.GetUser)
			userGroup.PATCH("/:id", userHandler.UpdateUser)
			userGroup.DELETE("/:id", userHandler.DeleteUser)
			userGroup.POST("/:id/workouts", userHandler.AddWorkout)
		}

		// --- Workout Routes ---
		workoutGroup := api.Group("/workouts")
		{
			workoutGroup.GET("", workoutHandler.ListWorkouts)
			workoutGroup.POST("", workoutHandler.CreateWorkout)
			workoutGroup.GET("/:id", workoutHandler.GetWorkout)
			workoutGroup.PATCH("/:id", workoutHandler.UpdateWorkout)
			workoutGroup.DELETE("/:id", workoutHandler.DeleteWorkout)
			workoutGroup.POST("/:id/exercises", workoutHandler.AddExercise)
		}

		// --- Exercise Routes ---
		exerciseGroup := api.Group("/exercises")
		{
			exerciseGroup.GET("", exerciseHandler.ListExercises)
			exerciseGroup.POST("", exerciseHandler.CreateExercise)
			exerciseGroup.GET("/:id", exerciseHandler.GetExercise)
			exerciseGroup.PATCH("/:id", exerciseHandler.UpdateExercise)
			exerciseGroup.DELETE("/:id", exerciseHandler.DeleteExercise)
			exerciseGroup.POST("/:id/video", exerciseHandler.RequestVideoUpload)
			exerciseGroup.GET("/:id/video", exerciseHandler.GetVideoURL)
		}
	}
}
