package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/hrms/internal/attendance"
	"github.com/frahmantamala/hrms/internal/auth"
	"github.com/frahmantamala/hrms/internal/dashboard"
	"github.com/frahmantamala/hrms/internal/document"
	"github.com/frahmantamala/hrms/internal/employee"
	"github.com/frahmantamala/hrms/internal/holiday"
	"github.com/frahmantamala/hrms/internal/leave"
	"github.com/frahmantamala/hrms/internal/notification"
	"github.com/frahmantamala/hrms/internal/timesheet"
	"github.com/frahmantamala/hrms/internal/transport/middleware"
	"github.com/frahmantamala/hrms/internal/transport/swagger"
	"github.com/frahmantamala/hrms/internal/user"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi"
)

type Handlers struct {
	Auth         *auth.Handler
	User         *user.Handler
	Employee     *employee.Handler
	Attendance   *attendance.Handler
	Dashboard    *dashboard.Handler
	Leave        *leave.Handler
	Timesheet    *timesheet.Handler
	Notification *notification.Handler
	Holiday      *holiday.Handler
	Document     *document.Handler
}

type Options struct {
	AllowedOrigins []string
	// AuthRateLimit guards the unauthenticated auth endpoints, e.g. "10-M".
	AuthRateLimit string
	// OpenAPI is served on /openapi.yml when set.
	OpenAPI *openapi3.T
	Health  map[string]PingFunc
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options, logger *slog.Logger) error {
	healthHandler := NewHealthHandler(opts.Health)
	roles := auth.NewRoleAuthorization(logger)
	authLimit, err := middleware.RateLimit(opts.AuthRateLimit, logger)
	if err != nil {
		return err
	}

	privileged := roles.RequireRoles(auth.RoleHR, auth.RoleAdmin)
	approvers := roles.RequireRoles(auth.RoleManager, auth.RoleHR, auth.RoleAdmin)

	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.Logging)

	if opts.OpenAPI != nil {
		router.Get("/openapi.yml", swagger.Serve(opts.OpenAPI))
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(ar chi.Router) {
			ar.Group(func(pub chi.Router) {
				pub.Use(authLimit)
				pub.Post("/login", h.Auth.Login)
				pub.Post("/forgot-password", h.Auth.ForgotPassword)
				pub.Post("/reset-password", h.Auth.ResetPassword)
			})
			ar.Group(func(pr chi.Router) {
				pr.Use(h.Auth.AuthMiddleware)
				pr.Post("/change-password", h.Auth.ChangePassword)
				pr.Post("/logout-all", h.Auth.LogoutAll)
			})
		})

		// the socket authenticates from ?token= since browsers cannot set headers on upgrade
		r.Get("/ws", h.Notification.ServeWS)

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/users/me", h.User.GetCurrentUser)
			pr.With(privileged).Post("/users", h.User.Create)

			pr.Route("/employees", func(er chi.Router) {
				er.With(privileged).Get("/", h.Employee.List)
				er.Get("/me", h.Employee.Me)
				er.With(approvers).Get("/team", h.Employee.Team)
				er.With(privileged).Put("/{id}/manager", h.Employee.SetManager)
				er.With(roles.RequireRoles(auth.RoleAdmin)).Put("/{id}/role", h.Employee.SetRole)
			})

			pr.Get("/profile/me", h.Employee.GetProfile)
			pr.Post("/profile/save", h.Employee.SaveProfile)

			pr.Route("/attendance", func(ar chi.Router) {
				ar.Get("/", h.Attendance.History)
				ar.Get("/today", h.Attendance.Today)
				ar.Post("/clock-in", h.Attendance.ClockIn)
				ar.Post("/start-break", h.Attendance.StartBreak)
				ar.Post("/end-break", h.Attendance.EndBreak)
				ar.Post("/clock-out", h.Attendance.ClockOut)
				ar.Get("/team/summary", h.Dashboard.TeamSummary)
				ar.Get("/team/today/details", h.Dashboard.TeamToday)
			})

			pr.Route("/leaves", func(lr chi.Router) {
				lr.Post("/apply", h.Leave.Apply)
				lr.Get("/my", h.Leave.Mine)
				lr.Get("/balance", h.Leave.Balance)
				lr.Get("/used/{type}", h.Leave.Used)
				lr.With(privileged).Get("/pending", h.Leave.Pending)
				lr.With(approvers).Get("/pending/my-team", h.Leave.PendingForTeam)
				lr.Get("/team/on-leave", h.Leave.OnLeaveToday)
				lr.With(approvers).Post("/{id}/decision", h.Leave.Decide)
			})

			pr.Route("/timesheets", func(tr chi.Router) {
				tr.Post("/", h.Timesheet.Create)
				tr.Get("/my", h.Timesheet.Mine)
				tr.Get("/my/calendar", h.Timesheet.Calendar)
				tr.Get("/my/calendar/excel", h.Timesheet.Export)
				tr.With(approvers).Get("/approval", h.Timesheet.Approval)
				tr.Get("/pending/my-team", h.Timesheet.PendingCount)
				tr.Get("/locks/{month}", h.Timesheet.LockStatus)
				tr.With(approvers).Put("/{id}/status", h.Timesheet.UpdateStatus)
			})
			pr.With(approvers).Post("/manager/timesheets/{id}/{action}", h.Timesheet.DecideAction)

			pr.Route("/notifications", func(nr chi.Router) {
				nr.Get("/", h.Notification.List)
				nr.Get("/inbox/count", h.Notification.Count)
				nr.Put("/read-all", h.Notification.MarkAllRead)
				nr.Put("/{id}/read", h.Notification.MarkRead)
			})

			pr.Route("/holidays", func(hr chi.Router) {
				hr.Get("/", h.Holiday.List)
				hr.Get("/nearest", h.Holiday.Nearest)
				hr.With(privileged).Post("/", h.Holiday.Create)
				hr.With(privileged).Delete("/{id}", h.Holiday.Delete)
			})

			pr.Route("/documents/cv", func(dr chi.Router) {
				dr.Post("/", h.Document.Upload)
				dr.Get("/my", h.Document.Mine)
				dr.With(privileged).Get("/list", h.Document.List)
				dr.Get("/{employeeId}", h.Document.ByEmployee)
			})
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		roles.WriteError(w, http.StatusNotFound, "route not found")
	})
	return nil
}
