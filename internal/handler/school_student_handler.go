package handler

import (
	"net/http"

	"school-service/internal/store"
	"school-service/pkg/logger"
	"school-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// pathSchool resolves :school_id to an active school id
func (h *Handler) pathSchool(c echo.Context) (uint, error) {
	schoolID, err := pathID(c, "school_id")
	if err != nil {
		return 0, err
	}
	if _, err := h.store.GetSchool(c.Request().Context(), schoolID); err != nil {
		return 0, err
	}
	return schoolID, nil
}

// ListSchoolStudents returns a page of the active students of one school
func (h *Handler) ListSchoolStudents(c echo.Context) error {
	schoolID, err := h.pathSchool(c)
	if err != nil {
		return respondError(c, err)
	}

	page := pageFromQuery(c, h.pages.StudentPageSize)
	filter := store.StudentFilter{
		FirstName:       c.QueryParam("first_name"),
		LastName:        c.QueryParam("last_name"),
		SchoolID:        &schoolID,
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

// CreateSchoolStudent registers a student to the school in the path. A
// school in the body is ignored.
func (h *Handler) CreateSchoolStudent(c echo.Context) error {
	log := logger.FromContext(c)

	schoolID, err := h.pathSchool(c)
	if err != nil {
		return respondError(c, err)
	}
	var req studentRequest
	if err := bindBody(c, &req); err != nil {
		return respondError(c, err)
	}
	fields, _, err := req.fields(false)
	if err != nil {
		return respondError(c, err)
	}

	student, err := h.store.CreateStudent(c.Request().Context(), fields, &schoolID)
	if err != nil {
		return respondError(c, err)
	}

	prometheus.RecordStudentOperation("create")
	log.Info("Student created in school",
		zap.Uint("student_id", student.ID),
		zap.Uint("school_id", schoolID))
	return c.JSON(http.StatusCreated, student)
}

// GetSchoolStudent returns one active student of the school in the path
func (h *Handler) GetSchoolStudent(c echo.Context) error {
	schoolID, err := h.pathSchool(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	student, err := h.store.GetStudentInSchool(c.Request().Context(), schoolID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, student)
}

// ReplaceSchoolStudent overwrites every writable field except the school
func (h *Handler) ReplaceSchoolStudent(c echo.Context) error {
	return h.updateSchoolStudent(c, true)
}

// UpdateSchoolStudent changes the supplied fields except the school
func (h *Handler) UpdateSchoolStudent(c echo.Context) error {
	return h.updateSchoolStudent(c, false)
}

func (h *Handler) updateSchoolStudent(c echo.Context, replace bool) error {
	log := logger.FromContext(c)

	schoolID, err := h.pathSchool(c)
	if err != nil {
		return respondError(c, err)
	}
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
		patch, err = req.replacement(false)
	} else {
		patch, err = req.patch(false)
	}
	if err != nil {
		return respondError(c, err)
	}

	student, err := h.store.UpdateStudentInSchool(c.Request().Context(), schoolID, id, patch)
	if err != nil {
		return respondError(c, err)
	}

	prometheus.RecordStudentOperation("update")
	log.Info("Student updated in school",
		zap.Uint("student_id", student.ID),
		zap.Uint("school_id", schoolID))
	return c.JSON(http.StatusOK, student)
}

// DeleteSchoolStudent deactivates a student of the school in the path
func (h *Handler) DeleteSchoolStudent(c echo.Context) error {
	log := logger.FromContext(c)

	schoolID, err := h.pathSchool(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.store.DeactivateStudentInSchool(c.Request().Context(), schoolID, id); err != nil {
		return respondError(c, err)
	}

	prometheus.RecordStudentOperation("deactivate")
	log.Info("Student deactivated in school",
		zap.Uint("student_id", id),
		zap.Uint("school_id", schoolID))
	return c.NoContent(http.StatusNoContent)
}
