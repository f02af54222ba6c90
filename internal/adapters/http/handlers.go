package http

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/acrylic/tracker/internal/adapters/calendar"
	"github.com/acrylic/tracker/internal/application/services"
	"github.com/acrylic/tracker/internal/domain/entities"
	"github.com/acrylic/tracker/internal/infrastructure/logger"
)

// AssignmentHandler serves the assignment pipeline to the app and widget surfaces
type AssignmentHandler struct {
	assignmentService *services.AssignmentService
	profileService    *services.ProfileService
	logger            *logger.Logger
}

// NewAssignmentHandler creates a new assignment handler
func NewAssignmentHandler(assignmentService *services.AssignmentService, profileService *services.ProfileService, logger *logger.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentService: assignmentService,
		profileService:    profileService,
		logger:            logger,
	}
}

// ListAssignments godoc
// @Summary List grouped assignments
// @Tags assignments
// @Produce json
// @Param mode query string false "date or course"
// @Success 200 {object} ports.GroupedAssignments
// @Security BearerAuth
// @Router /assignments [get]
func (h *AssignmentHandler) ListAssignments(c echo.Context) error {
	mode, err := modeParam(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, h.assignmentService.Grouped(mode))
}

// RefreshAssignments godoc
// @Summary Refetch assignments from every institution
// @Tags assignments
// @Produce json
// @Success 200 {object} ports.GroupedAssignments
// @Failure 401 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Security BearerAuth
// @Router /assignments/refresh [post]
func (h *AssignmentHandler) RefreshAssignments(c echo.Context) error {
	mode, err := modeParam(c)
	if err != nil {
		return err
	}

	if _, err := h.assignmentService.Refresh(c.Request().Context()); err != nil {
		h.logger.Errorw("Refresh assignments failed", "error", err)
		return mapError(err)
	}

	return c.JSON(http.StatusOK, h.assignmentService.Grouped(mode))
}

// Widget godoc
// @Summary Compact list of the next upcoming assignments
// @Tags widget
// @Produce json
// @Param limit query int false "Maximum number of assignments"
// @Success 200 {object} WidgetResponse
// @Security BearerAuth
// @Router /widget [get]
func (h *AssignmentHandler) Widget(c echo.Context) error {
	limit := 0
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid limit parameter")
		}
		limit = l
	}

	_, fetchedAt := h.assignmentService.Current()
	return c.JSON(http.StatusOK, WidgetResponse{
		FetchedAt:   fetchedAt,
		Assignments: h.assignmentService.Snapshot(limit),
	})
}

// ExportCalendar godoc
// @Summary Visible assignments as an iCalendar feed
// @Tags assignments
// @Produce text/calendar
// @Security BearerAuth
// @Router /assignments.ics [get]
func (h *AssignmentHandler) ExportCalendar(c echo.Context) error {
	var buf bytes.Buffer
	if err := calendar.WriteICS(&buf, h.assignmentService.Visible(), time.Now()); err != nil {
		h.logger.Errorw("Export calendar failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to render calendar")
	}

	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}

// ProfileImage godoc
// @Summary Stored profile picture
// @Tags profile
// @Produce octet-stream
// @Security BearerAuth
// @Router /profile/image [get]
func (h *AssignmentHandler) ProfileImage(c echo.Context) error {
	image, err := h.profileService.Image(c.Request().Context())
	if err != nil {
		h.logger.Errorw("Load profile image failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load profile image")
	}
	if image == nil {
		return echo.NewHTTPError(http.StatusNotFound, "No profile image stored")
	}

	return c.Blob(http.StatusOK, http.DetectContentType(image), image)
}

// RefreshProfile godoc
// @Summary Refetch the profile and its picture
// @Tags profile
// @Produce json
// @Success 200 {object} entities.Profile
// @Security BearerAuth
// @Router /profile/refresh [post]
func (h *AssignmentHandler) RefreshProfile(c echo.Context) error {
	profile, err := h.profileService.Refresh(c.Request().Context())
	if err != nil {
		h.logger.Errorw("Refresh profile failed", "error", err)
		return mapError(err)
	}

	return c.JSON(http.StatusOK, profile)
}

func modeParam(c echo.Context) (entities.SortMode, error) {
	raw := c.QueryParam("mode")
	if raw == "" {
		return "", nil
	}
	mode, err := entities.ParseSortMode(raw)
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "Invalid mode parameter")
	}
	return mode, nil
}

// mapError translates domain errors into HTTP errors
func mapError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, entities.ErrNotAuthorized), errors.Is(err, entities.ErrNoToken):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, entities.ErrUnknownPrefix), errors.Is(err, entities.ErrCourseNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, entities.ErrDuplicateCourse), errors.Is(err, entities.ErrStaleRefresh):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, entities.ErrIndexOutOfRange), errors.Is(err, entities.ErrInvalidColor),
		errors.Is(err, entities.ErrNoPrefixesConfigured):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, entities.ErrLoadFailed), errors.Is(err, entities.ErrBadURL):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal error").SetInternal(err)
}

// Request/Response types

type WidgetResponse struct {
	FetchedAt   time.Time             `json:"fetched_at"`
	Assignments []entities.Assignment `json:"assignments"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
