package handler

import (
	"net/http"

	"school-service/internal/store"
	"school-service/pkg/logger"
	"school-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ListSchools returns a page of active schools, optionally filtered by name and location
func (h *Handler) ListSchools(c echo.Context) error {
	page := pageFromQuery(c, h.pages.SchoolPageSize)
	filter := store.SchoolFilter{
		Name:            c.QueryParam("name"),
		Location:        c.QueryParam("location"),
		IncludeInactive: queryBool(c, "include_inactive"),
		Page:            page,
	}

	schools, total, err := h.store.ListSchools(c.Request().Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	prometheus.RecordSchoolOperation("list")
	return c.JSON(http.StatusOK, newPageResponse(c, page, total, schools))
}

// CreateSchool registers a new school
func (h *Handler) CreateSchool(c echo.Context) error {
	log := logger.FromContext(c)

	var req schoolRequest
	if err := bindBody(c, &req); err != nil {
		return respondError(c, err)
	}
	fields, err := req.fields()
	if err != nil {
		return respondError(c, err)
	}

	school, err := h.store.CreateSchool(c.Request().Context(), fields)
	if err != nil {
		return respondError(c, err)
	}

	prometheus.RecordSchoolOperation("create")
	log.Info("School created successfully",
		zap.Uint("school_id", school.ID),
		zap.String("name", school.Name))
	return c.JSON(http.StatusCreated, school)
}

// GetSchool returns one active school
func (h *Handler) GetSchool(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	school, err := h.store.GetSchool(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, school)
}

// ReplaceSchool overwrites every writable field of a school
func (h *Handler) ReplaceSchool(c echo.Context) error {
	return h.updateSchool(c, true)
}

// UpdateSchool changes the supplied fields of a school
func (h *Handler) UpdateSchool(c echo.Context) error {
	return h.updateSchool(c, false)
}

func (h *Handler) updateSchool(c echo.Context, replace bool) error {
	log := logger.FromContext(c)

	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req schoolRequest
	if err := bindBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if replace {
		if _, err := req.fields(); err != nil {
			return respondError(c, err)
		}
	}

	school, err := h.store.UpdateSchool(c.Request().Context(), id, req.patch())
	if err != nil {
		return respondError(c, err)
	}

	prometheus.RecordSchoolOperation("update")
	log.Info("School updated successfully", zap.Uint("school_id", school.ID), zap.Bool("replace", replace))
	return c.JSON(http.StatusOK, school)
}

// DeleteSchool deactivates a school and unlinks its active students
func (h *Handler) DeleteSchool(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.store.DeactivateSchool(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}

	prometheus.RecordSchoolOperation("deactivate")
	log.Info("School deactivated", zap.Uint("school_id", id))
	return c.NoContent(http.StatusNoContent)
}
