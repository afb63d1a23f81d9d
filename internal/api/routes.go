package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"

	"github.com/czarnick89/workout-tracker/internal/config"
	"github.com/czarnick89/workout-tracker/internal/service"
)

// Services are the dependencies of the HTTP layer. Export is optional;
// its route is only registered when it is set.
type Services struct {
	Auth      service.AuthService
	Workouts  service.WorkoutService
	Exercises service.ExerciseService
	Sets      service.SetService
	Export    service.ExportService
}

type RouterOptions struct {
	Logger     hclog.Logger
	Pagination config.PaginationConfig
	Throttle   *Throttle // nil disables throttling
}

// NewRouter builds the gin engine with every route and middleware.
func NewRouter(services Services, opts RouterOptions) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	SetupRoutes(router, services, opts.Throttle, newPaginator(opts.Pagination), logger)
	return router
}

func SetupRoutes(router *gin.Engine, services Services, throttle *Throttle, p paginator, logger hclog.Logger) {
	useJSONFieldNames()
	w := errorWriter{logger: logger.Named("http")}

	router.Use(RequestID(), RequestLogger(logger.Named("access")), Metrics(), w.recovery())
	router.NoRoute(w.noRoute)
	router.NoMethod(w.noMethod)

	authHandler := NewAuthHandler(services.Auth)
	workoutHandler := NewWorkoutHandler(services.Workouts, services.Export, p)
	exerciseHandler := NewExerciseHandler(services.Exercises, p)
	setHandler := NewSetHandler(services.Sets, p)

	authMiddleware := w.AuthMiddleware(services.Auth)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", metricsHandler())

	apiGroup := router.Group("/api")

	authGroup := apiGroup.Group("/auth")
	{
		anon := throttle.Anon(w)
		authGroup.POST("/register/", anon, w.handle(authHandler.Register))
		authGroup.POST("/token/", anon, w.handle(authHandler.Login))
		authGroup.POST("/token/refresh/", anon, w.handle(authHandler.Refresh))
		authGroup.POST("/logout/", authMiddleware, throttle.User(w), w.handle(authHandler.Logout))
	}

	protected := apiGroup.Group("")
	protected.Use(authMiddleware, throttle.User(w))
	{
		workouts := protected.Group("/workouts")
		{
			workouts.POST("/", w.handle(workoutHandler.CreateWorkout))
			workouts.GET("/", w.handle(workoutHandler.ListWorkouts))
			workouts.GET("/:id/", w.handle(workoutHandler.GetWorkout))
			workouts.PUT("/:id/", w.handle(workoutHandler.UpdateWorkout))
			workouts.PATCH("/:id/", w.handle(workoutHandler.UpdateWorkout))
			workouts.DELETE("/:id/", w.handle(workoutHandler.DeleteWorkout))
			if services.Export != nil {
				workouts.POST("/:id/export/", w.handle(workoutHandler.ExportWorkout))
			}
		}

		exercises := protected.Group("/exercises")
		{
			exercises.POST("/", w.handle(exerciseHandler.CreateExercise))
			exercises.GET("/", w.handle(exerciseHandler.ListExercises))
			exercises.GET("/:id/", w.handle(exerciseHandler.GetExercise))
			exercises.PUT("/:id/", w.handle(exerciseHandler.UpdateExercise))
			exercises.PATCH("/:id/", w.handle(exerciseHandler.UpdateExercise))
			exercises.DELETE("/:id/", w.handle(exerciseHandler.DeleteExercise))
		}

		sets := protected.Group("/sets")
		{
			sets.POST("/", w.handle(setHandler.CreateSet))
			sets.GET("/", w.handle(setHandler.ListSets))
			sets.GET("/:id/", w.handle(setHandler.GetSet))
			sets.PUT("/:id/", w.handle(setHandler.UpdateSet))
			sets.PATCH("/:id/", w.handle(setHandler.UpdateSet))
			sets.DELETE("/:id/", w.handle(setHandler.DeleteSet))
		}
	}
}
