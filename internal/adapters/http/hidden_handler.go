package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/acrylic/tracker/internal/application/services"
	"github.com/acrylic/tracker/internal/infrastructure/logger"
	"github.com/acrylic/tracker/internal/ports"
)

// HiddenHandler handles the hidden assignment set
type HiddenHandler struct {
	hiddenService     *services.HiddenService
	assignmentService *services.AssignmentService
	logger            *logger.Logger
}

// NewHiddenHandler creates a new hidden handler
func NewHiddenHandler(hiddenService *services.HiddenService, assignmentService *services.AssignmentService, logger *logger.Logger) *HiddenHandler {
	return &HiddenHandler{
		hiddenService:     hiddenService,
		assignmentService: assignmentService,
		logger:            logger,
	}
}

// ListHidden godoc
// @Summary List hidden assignments
// @Tags hidden
// @Produce json
// @Success 200 {array} entities.Assignment
// @Security BearerAuth
// @Router /hidden [get]
func (h *HiddenHandler) ListHidden(c echo.Context) error {
	return c.JSON(http.StatusOK, h.hiddenService.List())
}

// Hide godoc
// @Summary Hide a current assignment
// @Tags hidden
// @Accept json
// @Produce json
// @Param request body ports.HideRequest true "Assignment identity"
// @Success 201 {object} entities.Assignment
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /hidden [post]
func (h *HiddenHandler) Hide(c echo.Context) error {
	var req ports.HideRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	assignment, ok := h.assignmentService.Find(req.Name, req.URL)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Assignment not found in the current list")
	}

	if err := h.hiddenService.Hide(c.Request().Context(), assignment); err != nil {
		h.logger.Errorw("Failed to hide assignment", "name", req.Name, "error", err)
		return mapError(err)
	}

	return c.JSON(http.StatusCreated, assignment)
}

// Unhide godoc
// @Summary Unhide the assignment at an index of the hidden list
// @Tags hidden
// @Produce json
// @Param index path int true "Index in the hidden list"
// @Success 200 {object} entities.Assignment
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /hidden/{index} [delete]
func (h *HiddenHandler) Unhide(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid index")
	}

	assignment, err := h.hiddenService.Unhide(c.Request().Context(), index)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, assignment)
}

// ClearHidden godoc
// @Summary Unhide everything
// @Tags hidden
// @Success 204
// @Security BearerAuth
// @Router /hidden [delete]
func (h *HiddenHandler) ClearHidden(c echo.Context) error {
	if err := h.hiddenService.Clear(c.Request().Context()); err != nil {
		h.logger.Errorw("Failed to clear hidden assignments", "error", err)
		return mapError(err)
	}

	return c.NoContent(http.StatusNoContent)
}
