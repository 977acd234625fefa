package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

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
	"github.com/frahmantamala/hrms/internal/user"
	"github.com/frahmantamala/hrms/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestRouter(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Router Suite")
}

var _ = Describe("Router", func() {
	var (
		router  *chi.Mux
		dbErr   error
		handler http.Handler
	)

	BeforeEach(func() {
		dbErr = nil
		router = chi.NewRouter()
		err := rest.RegisterAllRoutes(router, rest.Handlers{
			Auth:         auth.NewHandler(nil),
			User:         user.NewHandler(nil),
			Employee:     employee.NewHandler(nil),
			Attendance:   attendance.NewHandler(nil),
			Dashboard:    dashboard.NewHandler(nil),
			Leave:        leave.NewHandler(nil),
			Timesheet:    timesheet.NewHandler(nil),
			Notification: notification.NewHandler(nil, nil, nil),
			Holiday:      holiday.NewHandler(nil),
			Document:     document.NewHandler(nil, 0),
		}, rest.Options{
			AuthRateLimit: "100-M",
			Health: map[string]rest.PingFunc{
				"database": func(context.Context) error { return dbErr },
			},
		}, logger.Discard())
		Expect(err).NotTo(HaveOccurred())
		handler = router
	})

	It("registers the HR endpoints under /api/v1", func() {
		routes := map[string]bool{}
		Expect(chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
			routes[method+" "+route] = true
			return nil
		})).To(Succeed())

		for _, want := range []string{
			"POST /api/v1/auth/login",
			"POST /api/v1/auth/logout-all",
			"GET /api/v1/ws",
			"GET /api/v1/attendance/team/summary",
			"POST /api/v1/leaves/{id}/decision",
			"GET /api/v1/timesheets/locks/{month}",
			"POST /api/v1/manager/timesheets/{id}/{action}",
			"PUT /api/v1/notifications/{id}/read",
			"DELETE /api/v1/holidays/{id}",
			"GET /api/v1/documents/cv/{employeeId}",
		} {
			Expect(routes).To(HaveKey(want))
		}
	})

	It("answers ping and echoes a trace id", func() {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
		req.Header.Set("X-Trace-ID", "abc")
		handler.ServeHTTP(rec, req)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("X-Trace-ID")).To(Equal("abc"))
	})

	It("reports an unhealthy component with 503", func() {
		dbErr = errors.New("connection refused")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
		Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))

		var body rest.HealthResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body.Components["database"].Status).To(Equal(rest.HealthUnhealthy))
		Expect(body.Components["database"].Message).To(Equal("connection refused"))
	})

	It("rejects protected routes without a bearer token", func() {
		for _, path := range []string{"/api/v1/users/me", "/api/v1/attendance/today", "/api/v1/documents/cv/my"} {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			Expect(rec.Code).To(Equal(http.StatusUnauthorized), path)
		}
	})

	It("returns JSON for unknown routes", func() {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(rec.Header().Get("Content-Type")).To(Equal("application/json"))
	})
})
