package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/hrms/internal/attendance"
	"github.com/frahmantamala/hrms/internal/auth"
	"github.com/frahmantamala/hrms/internal/dashboard"
	"github.com/frahmantamala/hrms/internal/document"
	"github.com/frahmantamala/hrms/internal/employee"
	"github.com/frahmantamala/hrms/internal/holiday"
	"github.com/frahmantamala/hrms/internal/leave"
	"github.com/frahmantamala/hrms/internal/notification"
	"github.com/frahmantamala/hrms/internal/timesheet"
	"github.com/frahmantamala/hrms/internal/transport/rest"
	"github.com/frahmantamala/hrms/internal/transport/swagger"
	"github.com/frahmantamala/hrms/internal/user"
	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP API, the notification socket and, when enabled, the timesheet lock scheduler`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startHTTPServer()
	},
}

func handlers(a *App) rest.Handlers {
	return rest.Handlers{
		Auth:         auth.NewHandler(a.Auth),
		User:         user.NewHandler(a.Users),
		Employee:     employee.NewHandler(a.Employees),
		Attendance:   attendance.NewHandler(a.Attendance),
		Dashboard:    dashboard.NewHandler(a.Dashboard),
		Leave:        leave.NewHandler(a.Leaves),
		Timesheet:    timesheet.NewHandler(a.Timesheets),
		Notification: notification.NewHandler(a.Notifications, a.Auth, a.Hub),
		Holiday:      holiday.NewHandler(a.Holidays),
		Document:     document.NewHandler(a.Documents, a.Documents.MaxSize()),
	}
}

func startHTTPServer() error {
	cfg, lg, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg, lg)
	if err != nil {
		return err
	}
	app.RunFanout(ctx)

	opts := rest.Options{
		AllowedOrigins: cfg.Server.Origins(),
		AuthRateLimit:  cfg.RateLimit.Auth,
		Health:         app.HealthChecks(),
	}
	if cfg.Server.OpenAPIPath != "" {
		doc, err := swagger.Load(ctx, cfg.Server.OpenAPIPath)
		if err != nil {
			lg.Warn("openapi document not served", "error", err)
		} else {
			opts.OpenAPI = doc
		}
	}

	router := chi.NewRouter()
	if err := rest.RegisterAllRoutes(router, handlers(app), opts, lg); err != nil {
		app.Close(context.Background())
		return err
	}

	var scheduler *timesheet.Scheduler
	if cfg.Scheduler.Enabled {
		scheduler, err = timesheet.NewScheduler(app.Locker, cfg.Scheduler.LockCron, app.Location, lg)
		if err != nil {
			app.Close(context.Background())
			return err
		}
		scheduler.Start()
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		lg.Info("starting HTTP server", "address", addr, "driver", cfg.Database.Driver)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		lg.Info("received signal, shutting down")
	case err = <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}
	if serr := server.Shutdown(shutdownCtx); serr != nil {
		lg.Error("server shutdown error", "error", serr)
	}
	app.Close(shutdownCtx)

	if err != nil {
		fmt.Fprintf(os.Stderr, "server failed: %v\n", err)
		return err
	}
	lg.Info("server stopped")
	return nil
}
