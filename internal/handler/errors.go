package handler

import (
	"errors"
	"net/http"

	"school-service/internal/store"
	"school-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const notFoundDetail = "Not found."

// respondError writes the response for an error returned by the store or by
// request decoding. Rule violations become a JSON array of messages, field
// problems an object keyed by field.
func respondError(c echo.Context, err error) error {
	log := logger.FromContext(c)

	var verr *store.ValidationError
	var dup *store.DuplicateNameError
	var httpErr *echo.HTTPError

	switch {
	case errors.Is(err, store.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"detail": notFoundDetail})
	case errors.As(err, &verr):
		if verr.Message != "" {
			log.Info("Request rejected by rule", zap.String("rule", verr.Rule))
			return c.JSON(http.StatusBadRequest, []string{verr.Message})
		}
		return c.JSON(http.StatusBadRequest, verr.Fields)
	case errors.As(err, &dup):
		return c.JSON(http.StatusBadRequest, map[string][]string{
			"name": {"school with this name already exists."},
		})
	case errors.As(err, &httpErr):
		return err
	default:
		log.Error("Request failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
}
