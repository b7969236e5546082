package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/support-portal/internal/api/http/handlers"
	"github.com/spec-kit/support-portal/internal/auth"
	"github.com/spec-kit/support-portal/internal/config"
	"github.com/spec-kit/support-portal/internal/events"
	"github.com/spec-kit/support-portal/internal/observability"
	"github.com/spec-kit/support-portal/internal/persistence"
	"github.com/spec-kit/support-portal/internal/repository/sqlstore"
	"github.com/spec-kit/support-portal/internal/service"
	"github.com/spec-kit/support-portal/internal/session"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := persistence.NewSQLite(config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "api_test.db")}, nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(db.Close)
	if err := persistence.MigrateSQLite(context.Background(), db, nil); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	sessions := session.NewMemoryStore()
	dispatcher := events.NewInMemoryDispatcher()
	cookies := auth.NewSessionCookies(auth.CookieConfig{Name: "sid", Secret: "test-secret", TTL: 7 * 24 * time.Hour})

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   sqlstore.NewUserStore(db.DB),
		Sessions:   sessions,
		BcryptCost: bcrypt.MinCost,
		SessionTTL: 7 * 24 * time.Hour,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{TicketRepo: sqlstore.NewTicketStore(db.DB), Dispatcher: dispatcher})
	intakeService := service.NewIntakeService(service.IntakeDependencies{DemoRequestRepo: sqlstore.NewDemoRequestStore(db.DB), Dispatcher: dispatcher})

	return NewServer(logger, metrics, ServerConfig{AppName: "test"}, RouteConfig{
		Health:   handlers.NewHealthHandler("test", "dev", map[string]handlers.Pinger{"sqlite": db}, metrics),
		Auth:     handlers.NewAuthHandler(authService, cookies),
		Tickets:  handlers.NewTicketsHandler(ticketService),
		Intake:   handlers.NewIntakeHandler(intakeService),
		Sessions: auth.NewSessionMiddleware(cookies, authService),
	})
}

type result struct {
	status  int
	body    []byte
	cookies []*nethttp.Cookie
}

func (r result) decode(t *testing.T, out any) {
	t.Helper()
	if err := json.Unmarshal(r.body, out); err != nil {
		t.Fatalf("decode %s: %v", r.body, err)
	}
}

func (r result) sessionCookie() *nethttp.Cookie {
	for _, c := range r.cookies {
		if c.Name == "sid" {
			return c
		}
	}
	return nil
}

func call(t *testing.T, app *fiber.App, method, path string, payload any, cookie *nethttp.Cookie) result {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(&nethttp.Cookie{Name: cookie.Name, Value: cookie.Value})
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return result{status: resp.StatusCode, body: data, cookies: resp.Cookies()}
}

func register(t *testing.T, app *fiber.App, username string) *nethttp.Cookie {
	t.Helper()
	res := call(t, app, fiber.MethodPost, "/api/auth/register", map[string]string{"username": username, "password": "Passw0rdOk"}, nil)
	if res.status != fiber.StatusCreated {
		t.Fatalf("register status %d: %s", res.status, res.body)
	}
	cookie := res.sessionCookie()
	if cookie == nil || cookie.Value == "" {
		t.Fatal("register did not set a session cookie")
	}
	return cookie
}

var ticketPayload = map[string]any{
	"title":         "Email server configuration issues",
	"description":   "Outbound mail has been queued since this morning.",
	"priority":      "high",
	"category":      "software",
	"customerName":  "Tailspin Toys",
	"customerEmail": "ops@tailspin.test",
}

func TestRegisterTwiceReturnsConflict(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "kim")

	res := call(t, app, fiber.MethodPost, "/api/auth/register", map[string]string{"username": "kim", "password": "Passw0rdOk"}, nil)
	if res.status != fiber.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", res.status, res.body)
	}
	var body map[string]any
	res.decode(t, &body)
	if body["error"] != "Username already exists" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestLoginFailureBodiesMatch(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "lee")

	wrong := call(t, app, fiber.MethodPost, "/api/auth/login", map[string]string{"username": "lee", "password": "nope-nope"}, nil)
	unknown := call(t, app, fiber.MethodPost, "/api/auth/login", map[string]string{"username": "ghost", "password": "nope-nope"}, nil)
	if wrong.status != fiber.StatusUnauthorized || unknown.status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401s, got %d and %d", wrong.status, unknown.status)
	}
	if !bytes.Equal(wrong.body, unknown.body) {
		t.Fatalf("bodies differ:\n%s\n%s", wrong.body, unknown.body)
	}
}

func TestLoginIssuesFreshSessionCookie(t *testing.T) {
	app := newTestApp(t)
	first := register(t, app, "max")

	res := call(t, app, fiber.MethodPost, "/api/auth/login", map[string]string{"username": "max", "password": "Passw0rdOk"}, first)
	if res.status != fiber.StatusOK {
		t.Fatalf("login status %d: %s", res.status, res.body)
	}
	second := res.sessionCookie()
	if second == nil || second.Value == first.Value {
		t.Fatal("login must rotate the session cookie")
	}
	if got := call(t, app, fiber.MethodGet, "/api/tickets", nil, first); got.status != fiber.StatusUnauthorized {
		t.Fatalf("pre-login session still valid: %d", got.status)
	}
	if got := call(t, app, fiber.MethodGet, "/api/tickets", nil, second); got.status != fiber.StatusOK {
		t.Fatalf("new session rejected: %d", got.status)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	app := newTestApp(t)
	cookie := register(t, app, "nia")

	if res := call(t, app, fiber.MethodGet, "/api/tickets", nil, cookie); res.status != fiber.StatusOK {
		t.Fatalf("expected 200 before logout, got %d", res.status)
	}
	for i := 0; i < 2; i++ {
		if res := call(t, app, fiber.MethodPost, "/api/auth/logout", nil, cookie); res.status != fiber.StatusOK {
			t.Fatalf("logout #%d: %d %s", i+1, res.status, res.body)
		}
	}

	res := call(t, app, fiber.MethodGet, "/api/tickets", nil, cookie)
	if res.status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", res.status)
	}
	var body map[string]any
	res.decode(t, &body)
	if body["error"] != "Authentication required" || body["message"] != "Please log in to access this resource" {
		t.Fatalf("unexpected 401 body %v", body)
	}
}

func TestSessionEndpoints(t *testing.T) {
	app := newTestApp(t)

	var anon map[string]any
	call(t, app, fiber.MethodGet, "/api/auth/session", nil, nil).decode(t, &anon)
	if anon["authenticated"] != false || anon["user"] != nil {
		t.Fatalf("anonymous session: %v", anon)
	}
	if res := call(t, app, fiber.MethodGet, "/api/auth/user", nil, nil); res.status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.status)
	}

	cookie := register(t, app, "omar")
	var signedIn struct {
		Authenticated bool `json:"authenticated"`
		User          struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	call(t, app, fiber.MethodGet, "/api/auth/session", nil, cookie).decode(t, &signedIn)
	if !signedIn.Authenticated || signedIn.User.Username != "omar" {
		t.Fatalf("signed-in session: %+v", signedIn)
	}
}

func TestTicketLifecycle(t *testing.T) {
	app := newTestApp(t)
	cookie := register(t, app, "pat")

	res := call(t, app, fiber.MethodPost, "/api/tickets", ticketPayload, cookie)
	if res.status != fiber.StatusCreated {
		t.Fatalf("create: %d %s", res.status, res.body)
	}
	var created map[string]any
	res.decode(t, &created)
	id, _ := created["id"].(string)
	if id == "" || created["status"] != "open" || created["customerName"] != "Tailspin Toys" || created["createdAt"] != created["updatedAt"] {
		t.Fatalf("unexpected ticket %v", created)
	}

	if res := call(t, app, fiber.MethodGet, "/api/tickets/"+id, nil, cookie); res.status != fiber.StatusOK {
		t.Fatalf("get: %d", res.status)
	}
	if res := call(t, app, fiber.MethodGet, "/api/tickets/missing", nil, cookie); res.status != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.status)
	}

	res = call(t, app, fiber.MethodPut, "/api/tickets/"+id+"/status", map[string]any{"status": "in-progress", "assignedTo": "tech-1"}, cookie)
	if res.status != fiber.StatusOK {
		t.Fatalf("status: %d %s", res.status, res.body)
	}
	res = call(t, app, fiber.MethodPut, "/api/tickets/"+id+"/status", map[string]any{"status": "closed"}, cookie)
	var closed map[string]any
	res.decode(t, &closed)
	if closed["status"] != "closed" || closed["assignedTo"] != "tech-1" {
		t.Fatalf("assignee should be kept: %v", closed)
	}
	if res := call(t, app, fiber.MethodPut, "/api/tickets/"+id+"/status", map[string]any{"status": "archived"}, cookie); res.status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.status)
	}

	res = call(t, app, fiber.MethodPut, "/api/tickets/"+id, map[string]any{
		"id":        "hijacked",
		"createdAt": "2000-01-01T00:00:00Z",
		"priority":  "urgent",
	}, cookie)
	var updated map[string]any
	res.decode(t, &updated)
	if res.status != fiber.StatusOK || updated["id"] != id || updated["priority"] != "urgent" || updated["createdAt"] != created["createdAt"] {
		t.Fatalf("update: %d %v", res.status, updated)
	}

	var list []map[string]any
	call(t, app, fiber.MethodGet, "/api/tickets?search=EMAIL&status=all", nil, cookie).decode(t, &list)
	if len(list) != 1 {
		t.Fatalf("search: %v", list)
	}
	call(t, app, fiber.MethodGet, "/api/tickets?status=open", nil, cookie).decode(t, &list)
	if len(list) != 0 {
		t.Fatalf("status filter: %v", list)
	}
	if res := call(t, app, fiber.MethodGet, "/api/tickets?limit=abc", nil, cookie); res.status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", res.status)
	}
}

func TestCreateTicketReportsFieldErrors(t *testing.T) {
	app := newTestApp(t)
	cookie := register(t, app, "quinn")

	res := call(t, app, fiber.MethodPost, "/api/tickets", map[string]any{"title": "x", "customerEmail": "bad"}, cookie)
	if res.status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.status)
	}
	var body struct {
		Error   string              `json:"error"`
		Details map[string][]string `json:"details"`
	}
	res.decode(t, &body)
	for _, field := range []string{"title", "description", "category", "customerName", "customerEmail"} {
		if len(body.Details[field]) == 0 {
			t.Errorf("missing details for %s: %+v", field, body.Details)
		}
	}
}

func TestIntakeEndpoints(t *testing.T) {
	app := newTestApp(t)

	res := call(t, app, fiber.MethodPost, "/api/contact", map[string]string{
		"name": "Rae", "email": "rae@example.test", "company": "Litware", "message": "Need help with Wi-Fi.",
	}, nil)
	var contact map[string]string
	res.decode(t, &contact)
	if res.status != fiber.StatusOK || contact["message"] != "Contact form submitted successfully" || len(contact["id"]) <= len("contact-") {
		t.Fatalf("contact: %d %v", res.status, contact)
	}
	if res := call(t, app, fiber.MethodPost, "/api/contact", map[string]string{"name": "Rae"}, nil); res.status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.status)
	}

	res = call(t, app, fiber.MethodPost, "/api/demo-request", map[string]string{
		"name":              "Sam",
		"email":             "sam@example.test",
		"company":           "Proseware",
		"phone":             "5550101010",
		"companySize":       "201-500",
		"primaryInterest":   "server-management",
		"currentChallenges": "Servers are patched by hand every quarter.",
		"preferredTime":     "flexible",
	}, nil)
	if res.status != fiber.StatusCreated {
		t.Fatalf("demo: %d %s", res.status, res.body)
	}
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	app := newTestApp(t)
	if res := call(t, app, fiber.MethodGet, "/health/ready", nil, nil); res.status != fiber.StatusOK {
		t.Fatalf("ready: %d %s", res.status, res.body)
	}
	if res := call(t, app, fiber.MethodGet, "/api/nope", nil, nil); res.status != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.status)
	}
}

func TestRegisterRejectsPasswordOverBcryptLimit(t *testing.T) {
	app := newTestApp(t)
	long := "Aa1" + strings.Repeat("x", 80)

	res := call(t, app, fiber.MethodPost, "/api/auth/register", map[string]string{"username": "longpw", "password": long}, nil)
	if res.status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", res.status, res.body)
	}
	var body struct {
		Code    string              `json:"code"`
		Details map[string][]string `json:"details"`
	}
	res.decode(t, &body)
	if body.Code != "VALIDATION_FAILED" || len(body.Details["password"]) == 0 {
		t.Fatalf("unexpected body %s", res.body)
	}

	res = call(t, app, fiber.MethodPost, "/api/auth/login", map[string]string{"username": "longpw", "password": long}, nil)
	if res.status != fiber.StatusBadRequest {
		t.Fatalf("login: expected 400, got %d: %s", res.status, res.body)
	}
}

func TestMetricsKeysStayBoundedForUnknownPaths(t *testing.T) {
	app := newTestApp(t)
	cookie := register(t, app, "metrics")

	hit := func(n int) {
		for i := 0; i < n; i++ {
			call(t, app, fiber.MethodGet, fmt.Sprintf("/api/tickets/missing-%d", i), nil, cookie)
			call(t, app, fiber.MethodGet, fmt.Sprintf("/scan/%d/wp-admin", i), nil, nil)
		}
	}
	snapshot := func() observability.Snapshot {
		res := call(t, app, fiber.MethodGet, "/health/metrics", nil, nil)
		var snap observability.Snapshot
		res.decode(t, &snap)
		return snap
	}

	hit(3)
	snapshot()
	before := snapshot()

	hit(200)
	after := snapshot()
	if len(after.Requests) != len(before.Requests) || len(after.Errors) != len(before.Errors) {
		t.Fatalf("metric keys grew: requests %d -> %d, errors %d -> %d",
			len(before.Requests), len(after.Requests), len(before.Errors), len(after.Errors))
	}
	if after.Errors[observability.UnmatchedRoute+"|GET|NOT_FOUND"] == 0 {
		t.Fatalf("unknown routes not bucketed: %v", after.Errors)
	}
}
