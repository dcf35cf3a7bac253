// Package handler exposes the school and student store over REST.
package handler

import (
	"strconv"

	"school-service/internal/store"
	"school-service/pkg/config"

	"github.com/labstack/echo/v4"
)

// Handler serves the /api routes
type Handler struct {
	store *store.Store
	pages config.PaginationConfig
}

// New returns a Handler backed by s. Zero page sizes fall back to 10 for
// schools and 5 for students.
func New(s *store.Store, pages config.PaginationConfig) *Handler {
	if pages.SchoolPageSize <= 0 {
		pages.SchoolPageSize = 10
	}
	if pages.StudentPageSize <= 0 {
		pages.StudentPageSize = 5
	}
	return &Handler{store: s, pages: pages}
}

// Register mounts the school and student routes on g
func (h *Handler) Register(g *echo.Group) {
	schools := g.Group("/schools")
	schools.GET("", h.ListSchools)
	schools.POST("", h.CreateSchool)
	schools.GET("/:id", h.GetSchool)
	schools.PUT("/:id", h.ReplaceSchool)
	schools.PATCH("/:id", h.UpdateSchool)
	schools.DELETE("/:id", h.DeleteSchool)

	nested := schools.Group("/:school_id/students")
	nested.GET("", h.ListSchoolStudents)
	nested.POST("", h.CreateSchoolStudent)
	nested.GET("/:id", h.GetSchoolStudent)
	nested.PUT("/:id", h.ReplaceSchoolStudent)
	nested.PATCH("/:id", h.UpdateSchoolStudent)
	nested.DELETE("/:id", h.DeleteSchoolStudent)

	students := g.Group("/students")
	students.GET("", h.ListStudents)
	students.POST("", h.CreateStudent)
	students.GET("/:id", h.GetStudent)
	students.PUT("/:id", h.ReplaceStudent)
	students.PATCH("/:id", h.UpdateStudent)
	students.DELETE("/:id", h.DeleteStudent)
}

// pathID parses a numeric path parameter. Anything that is not a positive
// integer cannot name a record, so it resolves to not found.
func pathID(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, store.ErrNotFound
	}
	return uint(v), nil
}

func queryBool(c echo.Context, name string) bool {
	v, err := strconv.ParseBool(c.QueryParam(name))
	return err == nil && v
}
