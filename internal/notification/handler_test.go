package notification_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/auth"
	"github.com/frahmantamala/hrms/internal/notification"
	"github.com/frahmantamala/hrms/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/gorilla/websocket"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeAuthenticator struct{}

func (fakeAuthenticator) Authenticate(_ context.Context, token string) (*auth.Identity, error) {
	if token != "good" {
		return nil, internal.ErrSessionExpired
	}
	return &auth.Identity{UserID: 7, Role: auth.RoleEmployee}, nil
}

var _ = Describe("Notification Handler", func() {
	var (
		repo    *MockRepository
		d       *notification.Dispatcher
		hub     *notification.Hub
		handler *notification.Handler
		router  chi.Router
	)

	withUser := func(req *http.Request, userID int64) *http.Request {
		ctx := auth.ContextWithIdentity(req.Context(), &auth.Identity{UserID: userID, Role: auth.RoleEmployee})
		return req.WithContext(ctx)
	}

	BeforeEach(func() {
		repo = NewMockRepository()
		hub = notification.NewHub(logger.Discard())
		d = notification.NewDispatcher(notification.DispatcherConfig{}, repo, hub, logger.Discard())
		handler = notification.NewHandler(notification.NewService(repo, d), fakeAuthenticator{}, hub)

		router = chi.NewRouter()
		router.Get("/notifications", handler.List)
		router.Get("/notifications/inbox/count", handler.Count)
		router.Put("/notifications/read-all", handler.MarkAllRead)
		router.Put("/notifications/{id}/read", handler.MarkRead)
		router.Get("/ws", handler.ServeWS)
	})

	AfterEach(func() {
		d.Shutdown()
		hub.Close()
	})

	It("returns an empty array rather than null", func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodGet, "/notifications", nil), 7))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(strings.TrimSpace(rec.Body.String())).To(Equal("[]"))
	})

	It("counts and clears the inbox", func() {
		_, err := d.Deliver(context.Background(), notification.Job{UserID: 7, Type: notification.TypeSystem, Message: "hi"})
		Expect(err).NotTo(HaveOccurred())

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodGet, "/notifications/inbox/count", nil), 7))
		Expect(rec.Body.String()).To(MatchJSON(`{"count":1}`))

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodPut, "/notifications/1/read", nil), 7))
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(MatchJSON(`{"success":true}`))

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodGet, "/notifications/inbox/count", nil), 7))
		Expect(rec.Body.String()).To(MatchJSON(`{"count":0}`))
	})

	It("returns 404 for someone else's notification", func() {
		_, err := d.Deliver(context.Background(), notification.Job{UserID: 8, Type: notification.TypeSystem, Message: "hi"})
		Expect(err).NotTo(HaveOccurred())

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodPut, "/notifications/1/read", nil), 7))
		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("requires an identity", func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications", nil))
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	Describe("WebSocket", func() {
		var server *httptest.Server

		BeforeEach(func() {
			server = httptest.NewServer(router)
		})

		AfterEach(func() {
			server.Close()
		})

		wsURL := func(token string) string {
			return "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?token=" + token
		}

		It("rejects a stale token before upgrading", func() {
			_, resp, err := websocket.DefaultDialer.Dial(wsURL("stale"), nil)
			Expect(err).To(HaveOccurred())
			Expect(resp).NotTo(BeNil())
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		})

		It("pushes delivered notifications to the connected user", func() {
			conn, _, err := websocket.DefaultDialer.Dial(wsURL("good"), nil)
			Expect(err).NotTo(HaveOccurred())
			defer conn.Close()
			Eventually(func() int { return hub.Connections(7) }).Should(Equal(1))

			_, err = d.Deliver(context.Background(), notification.Job{UserID: 7, Type: notification.TypeLeave, Message: "Your leave has been approved"})
			Expect(err).NotTo(HaveOccurred())

			Expect(conn.SetReadDeadline(time.Now().Add(2 * time.Second))).To(Succeed())
			_, msg, err := conn.ReadMessage()
			Expect(err).NotTo(HaveOccurred())

			var frame notification.Frame
			Expect(json.Unmarshal(msg, &frame)).To(Succeed())
			Expect(frame.Event).To(Equal("notification"))
			Expect(frame.Data.Message).To(Equal("Your leave has been approved"))
			Expect(frame.Data.Type).To(Equal(notification.TypeLeave))
		})

		It("forgets the socket once the peer disconnects", func() {
			conn, _, err := websocket.DefaultDialer.Dial(wsURL("good"), nil)
			Expect(err).NotTo(HaveOccurred())
			Eventually(func() int { return hub.Connections(7) }).Should(Equal(1))

			conn.Close()
			Eventually(func() int { return hub.Connections(7) }).Should(BeZero())
		})
	})
})
