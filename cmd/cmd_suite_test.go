package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/core/datamodel"
	"github.com/frahmantamala/hrms/internal/transport/rest"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestCmd(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Cmd Suite")
}

const testConfig = `app:
  env: test
  base_url: http://localhost:8080
  timezone: UTC
http_server:
  port: 0
  read_header_timeout: 5s
  read_timeout: 15s
database:
  driver: sqlite
  source: %s
  max_open_conns: 1
  max_idle_conns: 1
security:
  jwt_secret: test-secret-that-is-at-least-32-characters
  access_token_duration: 1h
  bcrypt_cost: 10
  reset_token_ttl: 15m
  presence_ttl: 5m
rate_limit:
  auth: 100-M
notification:
  workers: 1
  queue_size: 8
  fanout: memory
scheduler:
  enabled: false
documents:
  dir: %s
  max_size: 1024
logging:
  level: error
  format: text
`

var _ = Describe("readFixture", func() {
	It("parses the bundled seed file", func() {
		f, err := readFixture("../db/seed/seed.yml")
		Expect(err).NotTo(HaveOccurred())
		Expect(f.LeaveTypes).To(HaveLen(3))
		Expect(f.Users).NotTo(BeEmpty())
		Expect(f.Users[len(f.Users)-1].Manager).To(Equal("manager@hrms.local"))
	})

	It("fails on a missing file", func() {
		_, err := readFixture(filepath.Join(GinkgoT().TempDir(), "nope.yml"))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("SQLDriverName", func() {
	It("maps the configured driver to the database/sql name", func() {
		Expect(datamodel.SQLDriverName(internal.DriverPostgres)).To(Equal("pgx"))
		Expect(datamodel.SQLDriverName(internal.DriverMySQL)).To(Equal("mysql"))
		Expect(datamodel.SQLDriverName(internal.DriverSQLite)).To(Equal("sqlite3"))
	})
})

var _ = Describe("migrate, seed and serve on sqlite", Ordered, func() {
	var (
		app    *App
		router *chi.Mux
		token  string
	)

	BeforeAll(func() {
		dir := GinkgoT().TempDir()
		body := fmt.Sprintf(testConfig, filepath.Join(dir, "hrms.db"), filepath.Join(dir, "uploads"))
		Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte(body), 0o600)).To(Succeed())

		prevConfig, prevSeed := configPath, seedFile
		DeferCleanup(func() { configPath, seedFile = prevConfig, prevSeed })
		configPath = dir
		seedFile = "../db/seed/seed.yml"

		Expect(runMigration(nil, nil)).To(Succeed())
		Expect(runSeed(context.Background())).To(Succeed())
		// a second run skips existing rows
		Expect(runSeed(context.Background())).To(Succeed())

		cfg, lg, err := setup()
		Expect(err).NotTo(HaveOccurred())
		app, err = newApp(context.Background(), cfg, lg)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { app.Close(context.Background()) })

		router = chi.NewRouter()
		Expect(rest.RegisterAllRoutes(router, handlers(app), rest.Options{
			AuthRateLimit: cfg.RateLimit.Auth,
			Health:        app.HealthChecks(),
		}, lg)).To(Succeed())
	})

	do := func(method, path string, payload any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if payload != nil {
			Expect(json.NewEncoder(&buf).Encode(payload)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	It("reports the sqlite store as healthy", func() {
		rec := do(http.MethodGet, "/api/v1/health", nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"sqlite"`))
	})

	It("logs in the seeded admin", func() {
		rec := do(http.MethodPost, "/api/v1/auth/login", map[string]string{
			"email": "admin@hrms.local", "password": "Admin@2026",
		})
		Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())

		var resp struct {
			Token string `json:"token"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Token).NotTo(BeEmpty())
		token = resp.Token
	})

	It("serves the current user with the issued token", func() {
		rec := do(http.MethodGet, "/api/v1/users/me", nil)
		Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
		Expect(rec.Body.String()).To(ContainSubstring("admin@hrms.local"))
	})

	It("lists the seeded holidays", func() {
		rec := do(http.MethodGet, "/api/v1/holidays?year=2026", nil)
		Expect(rec.Code).To(Equal(http.StatusOK))

		var rows []map[string]any
		Expect(json.Unmarshal(rec.Body.Bytes(), &rows)).To(Succeed())
		Expect(rows).To(HaveLen(3))
	})

	It("rejects a wrong password", func() {
		saved := token
		token = ""
		DeferCleanup(func() { token = saved })
		rec := do(http.MethodPost, "/api/v1/auth/login", map[string]string{
			"email": "admin@hrms.local", "password": "Wrong@2026",
		})
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})
})
