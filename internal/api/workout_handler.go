package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/czarnick89/workout-tracker/internal/domain"
	"github.com/czarnick89/workout-tracker/internal/repository"
	"github.com/czarnick89/workout-tracker/internal/service"
	"github.com/czarnick89/workout-tracker/internal/validation"
)

// WorkoutHandler serves the workout tree endpoints. exportService may be
// nil when object storage is not configured.
type WorkoutHandler struct {
	workoutService service.WorkoutService
	exportService  service.ExportService
	paginator      paginator
}

func NewWorkoutHandler(workoutService service.WorkoutService, exportService service.ExportService, p paginator) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService, exportService: exportService, paginator: p}
}

// CreateWorkout godoc
// @Summary Create a workout, optionally with its exercises
// @Tags Workouts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param workout body validation.WorkoutPayload true "Workout"
// @Success 201 {object} WorkoutResponse
// @Failure 400 {object} ErrorEnvelope
// @Failure 401 {object} ErrorEnvelope
// @Router /workouts/ [post]
func (h *WorkoutHandler) CreateWorkout(c *gin.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var p validation.WorkoutPayload
	if err := decodePayload(c, &p); err != nil {
		return err
	}

	w, err := h.workoutService.CreateWorkout(c.Request.Context(), userID, p)
	if err != nil {
		return err
	}

	c.JSON(http.StatusCreated, MapWorkoutToResponse(w))
	return nil
}

// ListWorkouts godoc
// @Summary List the caller's workouts
// @Tags Workouts
// @Security BearerAuth
// @Produce json
// @Param date query string false "Exact date (YYYY-MM-DD)"
// @Param name query string false "Exact name"
// @Param ordering query string false "date, name or created_at, '-' for descending"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} PageResponse[WorkoutResponse]
// @Failure 400 {object} ErrorEnvelope "Invalid filter"
// @Failure 404 {object} ErrorEnvelope "Invalid page"
// @Router /workouts/ [get]
func (h *WorkoutHandler) ListWorkouts(c *gin.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	filter := repository.WorkoutFilter{UserID: userID, Ordering: c.Query("ordering")}
	if raw, ok := c.GetQuery("date"); ok && raw != "" {
		date, err := time.ParseInLocation(domain.DateLayout, raw, time.UTC)
		if err != nil {
			return validation.Errors{"date": {"Enter a valid date."}}
		}
		filter.Date = &date
	}
	if name, ok := c.GetQuery("name"); ok && name != "" {
		filter.Name = &name
	}

	req, err := h.paginator.parse(c)
	if err != nil {
		return err
	}

	workouts, total, err := h.workoutService.ListWorkouts(c.Request.Context(), filter, req.window())
	if err != nil {
		return err
	}
	return respond(c, req, total, MapWorkoutsToResponse(workouts))
}

// GetWorkout godoc
// @Summary Get one of the caller's workouts
// @Tags Workouts
// @Security BearerAuth
// @Produce json
// @Param id path int true "Workout ID"
// @Success 200 {object} WorkoutResponse
// @Failure 404 {object} ErrorEnvelope
// @Router /workouts/{id}/ [get]
func (h *WorkoutHandler) GetWorkout(c *gin.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	w, err := h.workoutService.GetWorkout(c.Request.Context(), userID, id)
	if err != nil {
		return err
	}

	c.JSON(http.StatusOK, MapWorkoutToResponse(w))
	return nil
}

// UpdateWorkout godoc
// @Summary Replace (PUT) or patch (PATCH) a workout and reconcile its exercises
// @Description An "exercises" array replaces the child list: tagged items
// @Description update, untagged items create, omitted children are deleted.
// @Tags Workouts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Workout ID"
// @Param workout body validation.WorkoutPayload true "Workout"
// @Success 200 {object} WorkoutResponse
// @Failure 400 {object} ErrorEnvelope
// @Failure 404 {object} ErrorEnvelope
// @Router /workouts/{id}/ [put]
// @Router /workouts/{id}/ [patch]
func (h *WorkoutHandler) UpdateWorkout(c *gin.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var p validation.WorkoutPayload
	if err := decodePayload(c, &p); err != nil {
		return err
	}

	w, err := h.workoutService.UpdateWorkout(c.Request.Context(), userID, id, p, isPatch(c))
	if err != nil {
		return err
	}

	c.JSON(http.StatusOK, MapWorkoutToResponse(w))
	return nil
}

// DeleteWorkout godoc
// @Summary Delete a workout with its exercises and sets
// @Tags Workouts
// @Security BearerAuth
// @Param id path int true "Workout ID"
// @Success 204
// @Failure 404 {object} ErrorEnvelope
// @Router /workouts/{id}/ [delete]
func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.workoutService.DeleteWorkout(c.Request.Context(), userID, id); err != nil {
		return err
	}

	c.Status(http.StatusNoContent)
	return nil
}

// ExportWorkout godoc
// @Summary Upload a JSON snapshot of the workout tree and get a download link
// @Tags Workouts
// @Security BearerAuth
// @Produce json
// @Param id path int true "Workout ID"
// @Success 201 {object} ExportResponse
// @Failure 404 {object} ErrorEnvelope
// @Router /workouts/{id}/export/ [post]
func (h *WorkoutHandler) ExportWorkout(c *gin.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	export, err := h.exportService.ExportWorkout(c.Request.Context(), userID, id)
	if err != nil {
		return err
	}

	c.JSON(http.StatusCreated, ExportResponse{Key: export.Key, URL: export.URL, ExpiresAt: export.ExpiresAt})
	return nil
}

// pathID reads the :id route parameter. Anything that is not a positive
// integer cannot name a row, so it is reported as not found.
func pathID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, service.ErrNotFound
	}
	return uint(id), nil
}

// isPatch reports whether required fields may be omitted.
func isPatch(c *gin.Context) bool {
	return c.Request.Method == http.MethodPatch
}

// queryID parses an integer filter parameter; nil when it is absent.
func queryID(c *gin.Context, name string) (*uint, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}
	n, perr := strconv.ParseUint(raw, 10, 32)
	if perr != nil {
		return nil, validation.Errors{name: {"Select a valid choice. That choice is not one of the available choices."}}
	}
	v := uint(n)
	return &v, nil
}
