package middleware

import (
	"net/http"
	"strings"

	"school-service/pkg/jwtutil"
	"school-service/pkg/logger"
	"school-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ClaimsKey is the echo context key holding the verified token claims
const ClaimsKey = "claims"

// WriteGuard returns a middleware that requires a valid bearer token on every
// request except safe reads. Reads stay public.
func WriteGuard(j *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			log := logger.FromContext(c)

			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				log.Warn("Missing Authorization header")
				prometheus.AuthErrorsCounter.Inc()
				return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Authentication credentials were not provided."})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				log.Warn("Invalid Authorization header format")
				prometheus.AuthErrorsCounter.Inc()
				return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "invalid authorization format, expected Bearer token"})
			}

			claims, err := j.ValidateToken(parts[1])
			if err != nil {
				log.Warn("Invalid JWT token", zap.Error(err))
				prometheus.AuthErrorsCounter.Inc()
				return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "invalid or expired token"})
			}

			prometheus.AuthSuccessCounter.Inc()
			c.Set(ClaimsKey, claims)
			log.Debug("Request authenticated", zap.String("subject", claims.Subject))
			return next(c)
		}
	}
}
