package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"school-service/internal/handler"
	"school-service/internal/middleware"
	"school-service/internal/store"
	"school-service/pkg/config"
	"school-service/pkg/jwtutil"
	"school-service/pkg/logger"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Migrate bool
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts.RootOptions)
			if err != nil {
				return err
			}
			defer a.close()

			if opts.Migrate {
				if err := a.migrate(cmd.Context()); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a)
		},
	}

	cmd.Flags().BoolVar(&opts.Migrate, "migrate", true, "migrate the schema before serving")

	return cmd
}

func serve(ctx context.Context, a *app) error {
	e := newServer(a.cfg, a.store, a.log)
	srv := &http.Server{
		Addr:         ":" + a.cfg.Server.Port,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("Starting server", zap.String("port", a.cfg.Server.Port))
		errCh <- e.StartServer(srv)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// newServer builds the echo instance with middleware and every route
func newServer(cfg *config.Config, st *store.Store, log *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// order matters
	e.Pre(echomiddleware.RemoveTrailingSlash())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(middleware.MetricsMiddleware)

	e.GET("/health", handler.HealthCheck(st))
	e.GET("/metrics", handler.MetricsHandler)

	api := e.Group("/api")
	if cfg.Auth.Enabled {
		api.Use(middleware.WriteGuard(jwtutil.New(&cfg.JWT)))
		log.Info("Write routes require a bearer token")
	}
	handler.New(st, cfg.Pagination).Register(api)

	return e
}
