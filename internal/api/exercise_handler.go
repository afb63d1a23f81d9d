package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/czarnick89/workout-tracker/internal/repository"
	"github.com/czarnick89/workout-tracker/internal/service"
	"github.com/czarnick89/workout-tracker/internal/validation"
)

type ExerciseHandler struct {
	exerciseService service.ExerciseService
	paginator       paginator
}

func NewExerciseHandler(exerciseService service.ExerciseService, p paginator) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService, paginator: p}
}

// CreateExercise godoc
// @Summary Create an exercise in one of the caller's workouts
// @Tags Exercises
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param exercise body validation.ExercisePayload true "Exercise"
// @Success 201 {object} ExerciseDetailResponse
// @Failure 400 {object} ErrorEnvelope
// @Failure 403 {object} ErrorEnvelope "Workout belongs to another user"
// @Router /exercises/ [post]
func (h *ExerciseHandler) CreateExercise(c *gin.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var p validation.ExercisePayload
	if err := decodePayload(c, &p); err != nil {
		return err
	}

	e, err := h.exerciseService.CreateExercise(c.Request.Context(), userID, p)
	if err != nil {
		return err
	}

	c.JSON(http.StatusCreated, MapExerciseToDetailResponse(e))
	return nil
}

// ListExercises godoc
// @Summary List exercises in the caller's workouts
// @Tags Exercises
// @Security BearerAuth
// @Produce json
// @Param workout query int false "Workout ID"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} PageResponse[ExerciseDetailResponse]
// @Router /exercises/ [get]
func (h *ExerciseHandler) ListExercises(c *gin.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	workoutID, err := queryID(c, "workout")
	if err != nil {
		return err
	}
	req, err := h.paginator.parse(c)
	if err != nil {
		return err
	}

	filter := repository.ExerciseFilter{UserID: userID, WorkoutID: workoutID}
	exercises, total, err := h.exerciseService.ListExercises(c.Request.Context(), filter, req.window())
	if err != nil {
		return err
	}
	return respond(c, req, total, MapExercisesToDetailResponse(exercises))
}

// GetExercise godoc
// @Summary Get an exercise with its sets
// @Tags Exercises
// @Security BearerAuth
// @Produce json
// @Param id path int true "Exercise ID"
// @Success 200 {object} ExerciseDetailResponse
// @Failure 404 {object} ErrorEnvelope
// @Router /exercises/{id}/ [get]
func (h *ExerciseHandler) GetExercise(c *gin.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	e, err := h.exerciseService.GetExercise(c.Request.Context(), userID, id)
	if err != nil {
		return err
	}

	c.JSON(http.StatusOK, MapExerciseToDetailResponse(e))
	return nil
}

// UpdateExercise godoc
// @Summary Replace (PUT) or patch (PATCH) an exercise and reconcile its sets
// @Tags Exercises
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Exercise ID"
// @Param exercise body validation.ExercisePayload true "Exercise"
// @Success 200 {object} ExerciseDetailResponse
// @Failure 400 {object} ErrorEnvelope
// @Failure 403 {object} ErrorEnvelope "Target workout belongs to another user"
// @Failure 404 {object} ErrorEnvelope
// @Router /exercises/{id}/ [put]
// @Router /exercises/{id}/ [patch]
func (h *ExerciseHandler) UpdateExercise(c *gin.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var p validation.ExercisePayload
	if err := decodePayload(c, &p); err != nil {
		return err
	}

	e, err := h.exerciseService.UpdateExercise(c.Request.Context(), userID, id, p, isPatch(c))
	if err != nil {
		return err
	}

	c.JSON(http.StatusOK, MapExerciseToDetailResponse(e))
	return nil
}

// DeleteExercise godoc
// @Summary Delete an exercise and its sets
// @Tags Exercises
// @Security BearerAuth
// @Param id path int true "Exercise ID"
// @Success 204
// @Failure 404 {object} ErrorEnvelope
// @Router /exercises/{id}/ [delete]
func (h *ExerciseHandler) DeleteExercise(c *gin.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.exerciseService.DeleteExercise(c.Request.Context(), userID, id); err != nil {
		return err
	}

	c.Status(http.StatusNoContent)
	return nil
}
