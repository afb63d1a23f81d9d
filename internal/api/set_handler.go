package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/czarnick89/workout-tracker/internal/repository"
	"github.com/czarnick89/workout-tracker/internal/service"
	"github.com/czarnick89/workout-tracker/internal/validation"
)

type SetHandler struct {
	setService service.SetService
	paginator  paginator
}

func NewSetHandler(setService service.SetService, p paginator) *SetHandler {
	return &SetHandler{setService: setService, paginator: p}
}

// CreateSet godoc
// @Summary Log a set against one of the caller's exercises
// @Tags Sets
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param set body validation.SetPayload true "Set"
// @Success 201 {object} SetResponse
// @Failure 400 {object} ErrorEnvelope
// @Failure 403 {object} ErrorEnvelope "Exercise belongs to another user"
// @Router /sets/ [post]
func (h *SetHandler) CreateSet(c *gin.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var p validation.SetPayload
	if err := decodePayload(c, &p); err != nil {
		return err
	}

	set, err := h.setService.CreateSet(c.Request.Context(), userID, p)
	if err != nil {
		return err
	}

	c.JSON(http.StatusCreated, MapSetToResponse(set))
	return nil
}

// ListSets godoc
// @Summary List sets in the caller's exercises
// @Tags Sets
// @Security BearerAuth
// @Produce json
// @Param exercise query int false "Exercise ID"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} PageResponse[SetResponse]
// @Router /sets/ [get]
func (h *SetHandler) ListSets(c *gin.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	exerciseID, err := queryID(c, "exercise")
	if err != nil {
		return err
	}
	req, err := h.paginator.parse(c)
	if err != nil {
		return err
	}

	filter := repository.SetFilter{UserID: userID, ExerciseID: exerciseID}
	sets, total, err := h.setService.ListSets(c.Request.Context(), filter, req.window())
	if err != nil {
		return err
	}
	return respond(c, req, total, MapSetsToResponse(sets))
}

// GetSet godoc
// @Summary Get a set
// @Tags Sets
// @Security BearerAuth
// @Produce json
// @Param id path int true "Set ID"
// @Success 200 {object} SetResponse
// @Failure 404 {object} ErrorEnvelope
// @Router /sets/{id}/ [get]
func (h *SetHandler) GetSet(c *gin.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	set, err := h.setService.GetSet(c.Request.Context(), userID, id)
	if err != nil {
		return err
	}

	c.JSON(http.StatusOK, MapSetToResponse(set))
	return nil
}

// UpdateSet godoc
// @Summary Replace (PUT) or patch (PATCH) a set
// @Tags Sets
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Set ID"
// @Param set body validation.SetPayload true "Set"
// @Success 200 {object} SetResponse
// @Failure 400 {object} ErrorEnvelope
// @Failure 403 {object} ErrorEnvelope "Target exercise belongs to another user"
// @Failure 404 {object} ErrorEnvelope
// @Router /sets/{id}/ [put]
// @Router /sets/{id}/ [patch]
func (h *SetHandler) UpdateSet(c *gin.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var p validation.SetPayload
	if err := decodePayload(c, &p); err != nil {
		return err
	}

	set, err := h.setService.UpdateSet(c.Request.Context(), userID, id, p, isPatch(c))
	if err != nil {
		return err
	}

	c.JSON(http.StatusOK, MapSetToResponse(set))
	return nil
}

// DeleteSet godoc
// @Summary Delete a set
// @Tags Sets
// @Security BearerAuth
// @Param id path int true "Set ID"
// @Success 204
// @Failure 404 {object} ErrorEnvelope
// @Router /sets/{id}/ [delete]
func (h *SetHandler) DeleteSet(c *gin.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.setService.DeleteSet(c.Request.Context(), userID, id); err != nil {
		return err
	}

	c.Status(http.StatusNoContent)
	return nil
}
