package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/acrylic/tracker/internal/application/services"
	"github.com/acrylic/tracker/internal/infrastructure/logger"
	"github.com/acrylic/tracker/internal/ports"
)

// CourseHandler handles course registry HTTP requests
type CourseHandler struct {
	courseService *services.CourseService
	prefixes      []string
	logger        *logger.Logger
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(courseService *services.CourseService, prefixes []string, logger *logger.Logger) *CourseHandler {
	return &CourseHandler{
		courseService: courseService,
		prefixes:      prefixes,
		logger:        logger,
	}
}

// ListCourses godoc
// @Summary List registered courses in display order
// @Tags courses
// @Produce json
// @Success 200 {array} entities.Course
// @Security BearerAuth
// @Router /courses [get]
func (h *CourseHandler) ListCourses(c echo.Context) error {
	return c.JSON(http.StatusOK, h.courseService.List())
}

// CreateCourse godoc
// @Summary Register a course
// @Tags courses
// @Accept json
// @Produce json
// @Param request body ports.CreateCourseRequest true "Course data"
// @Success 201 {object} entities.Course
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /courses [post]
func (h *CourseHandler) CreateCourse(c echo.Context) error {
	var req ports.CreateCourseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	course, err := h.courseService.Create(c.Request().Context(), req)
	if err != nil {
		h.logger.Errorw("Failed to create course", "code", req.Code, "error", err)
		return mapError(err)
	}

	return c.JSON(http.StatusCreated, course)
}

// UpdateCourse godoc
// @Summary Edit a course
// @Tags courses
// @Accept json
// @Produce json
// @Param code path int true "Course code"
// @Param request body ports.UpdateCourseRequest true "Fields to change"
// @Success 200 {object} entities.Course
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /courses/{code} [put]
func (h *CourseHandler) UpdateCourse(c echo.Context) error {
	code, err := codeParam(c)
	if err != nil {
		return err
	}

	var req ports.UpdateCourseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	course, err := h.courseService.Update(c.Request().Context(), code, req)
	if err != nil {
		h.logger.Errorw("Failed to update course", "code", code, "error", err)
		return mapError(err)
	}

	return c.JSON(http.StatusOK, course)
}

// DeleteCourse godoc
// @Summary Remove a course
// @Tags courses
// @Param code path int true "Course code"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /courses/{code} [delete]
func (h *CourseHandler) DeleteCourse(c echo.Context) error {
	code, err := codeParam(c)
	if err != nil {
		return err
	}

	if err := h.courseService.Delete(c.Request().Context(), code); err != nil {
		h.logger.Errorw("Failed to delete course", "code", code, "error", err)
		return mapError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// DeleteAllCourses godoc
// @Summary Remove every course
// @Tags courses
// @Success 204
// @Security BearerAuth
// @Router /courses [delete]
func (h *CourseHandler) DeleteAllCourses(c echo.Context) error {
	if err := h.courseService.DeleteAll(c.Request().Context()); err != nil {
		h.logger.Errorw("Failed to delete courses", "error", err)
		return mapError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// MoveCourse godoc
// @Summary Move a course to a new position
// @Tags courses
// @Accept json
// @Produce json
// @Param request body ports.MoveCourseRequest true "Positions"
// @Success 200 {array} entities.Course
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /courses/move [post]
func (h *CourseHandler) MoveCourse(c echo.Context) error {
	var req ports.MoveCourseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	courses, err := h.courseService.Move(c.Request().Context(), req.From, req.To)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, courses)
}

// ImportCourses godoc
// @Summary Import courses from every institution
// @Tags courses
// @Accept json
// @Produce json
// @Param request body ports.ImportCoursesRequest false "Import filters"
// @Success 200 {object} ports.ImportResult
// @Failure 502 {object} ErrorResponse
// @Security BearerAuth
// @Router /courses/import [post]
func (h *CourseHandler) ImportCourses(c echo.Context) error {
	var req ports.ImportCoursesRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
		}
	}

	result, err := h.courseService.Import(c.Request().Context(), h.prefixes, req)
	if err != nil {
		h.logger.Errorw("Failed to import courses", "error", err)
		return mapError(err)
	}

	return c.JSON(http.StatusOK, result)
}

func codeParam(c echo.Context) (int, error) {
	code, err := strconv.Atoi(c.Param("code"))
	if err != nil || code < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid course code")
	}
	return code, nil
}
