package handler

import (
	"net/http"

	"school-service/internal/store"
	"school-service/pkg/logger"
	"school-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ListStudents returns a page of active students. The school filter matches
// the school name.
func (h *Handler) ListStudents(c echo.Context) error {
	page := pageFromQuery(c, h.pages.StudentPageSize)
	filter := store.StudentFilter{
		FirstName:       c.QueryParam("first_name"),
		LastName:        c.QueryParam("last_name"),
		SchoolName:      c.QueryParam("school"),
		IncludeInactive: queryBool(c, "include_inactive"),
		Page:            page,
	}

	students, total, err := h.store.ListStudents(c.Request().Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	prometheus.RecordStudentOperation("list")
	return c.JSON(http.StatusOK, newPageResponse(c, page, total, students))
}

// CreateStudent registers a student to the school named in the body
func (h *Handler) CreateStudent(c echo.Context) error {
	log := logger.FromContext(c)

	var req studentRequest
	if err := bindBody(c, &req); err != nil {
		return respondError(c, err)
	}
	fields, schoolID, err := req.fields(true)
	if err != nil {
		return respondError(c, err)
	}

	student, err := h.store.CreateStudent(c.Request().Context(), fields, schoolID)
	if err != nil {
		return respondError(c, err)
	}

	prometheus.RecordStudentOperation("create")
	log.Info("Student created successfully",
		zap.Uint("student_id", student.ID),
		zap.Any("school_id", student.SchoolID))
	return c.JSON(http.StatusCreated, student)
}

// GetStudent returns one active student
func (h *Handler) GetStudent(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	student, err := h.store.GetStudent(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, student)
}

// ReplaceStudent overwrites every writable field of a student, school included
func (h *Handler) ReplaceStudent(c echo.Context) error {
	return h.updateStudent(c, true)
}

// UpdateStudent changes the supplied fields of a student
func (h *Handler) UpdateStudent(c echo.Context) error {
	return h.updateStudent(c, false)
}

func (h *Handler) updateStudent(c echo.Context, replace bool) error {
	log := logger.FromContext(c)

	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req studentRequest
	if err := bindBody(c, &req); err != nil {
		return respondError(c, err)
	}

	var patch store.StudentPatch
	if replace {
		patch, err = req.replacement(true)
	} else {
		patch, err = req.patch(true)
	}
	if err != nil {
		return respondError(c, err)
	}

	student, err := h.store.UpdateStudent(c.Request().Context(), id, patch)
	if err != nil {
		return respondError(c, err)
	}

	prometheus.RecordStudentOperation("update")
	log.Info("Student updated successfully",
		zap.Uint("student_id", student.ID),
		zap.Bool("replace", replace))
	return c.JSON(http.StatusOK, student)
}

// DeleteStudent deactivates a student
func (h *Handler) DeleteStudent(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.store.DeactivateStudent(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}

	prometheus.RecordStudentOperation("deactivate")
	log.Info("Student deactivated", zap.Uint("student_id", id))
	return c.NoContent(http.StatusNoContent)
}
