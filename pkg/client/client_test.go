package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type fakeAPI struct {
	mu       sync.Mutex
	hits     map[string]int
	tickets  []Ticket
	sessions map[string]User
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	api := &fakeAPI{hits: map[string]int{}, sessions: map[string]User{}}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/auth/session", func(w http.ResponseWriter, r *http.Request) {
		api.hit("session")
		if user, ok := api.user(r); ok {
			writeJSON(w, http.StatusOK, SessionState{Authenticated: true, User: &user})
			return
		}
		writeJSON(w, http.StatusOK, SessionState{})
	})
	mux.HandleFunc("GET /api/auth/user", func(w http.ResponseWriter, r *http.Request) {
		api.hit("user")
		user, ok := api.user(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"error": "Authentication required", "message": "Please log in to access this resource", "code": "UNAUTHORIZED",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": user})
	})
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["password"] != "Secret123" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Invalid credentials", "message": "Invalid username or password"})
			return
		}
		user := User{ID: "u-1", Username: in["username"]}
		api.mu.Lock()
		api.sessions["sid-1"] = user
		api.mu.Unlock()
		http.SetCookie(w, &http.Cookie{Name: "sid", Value: "sid-1", Path: "/", HttpOnly: true})
		writeJSON(w, http.StatusOK, map[string]any{"message": "Login successful", "user": user})
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("sid"); err == nil {
			api.mu.Lock()
			delete(api.sessions, c.Value)
			api.mu.Unlock()
		}
		http.SetCookie(w, &http.Cookie{Name: "sid", Value: "", Path: "/", MaxAge: -1})
		writeJSON(w, http.StatusOK, map[string]any{"message": "Logout successful"})
	})
	mux.HandleFunc("GET /api/tickets", func(w http.ResponseWriter, r *http.Request) {
		api.hit("tickets?" + r.URL.RawQuery)
		api.mu.Lock()
		defer api.mu.Unlock()
		writeJSON(w, http.StatusOK, api.tickets)
	})
	mux.HandleFunc("POST /api/tickets", func(w http.ResponseWriter, r *http.Request) {
		var in NewTicket
		_ = json.NewDecoder(r.Body).Decode(&in)
		if len(in.Title) < 5 {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error": "Validation failed", "message": "invalid fields: title", "code": "VALIDATION_FAILED",
				"details": map[string][]string{"title": {"must be at least 5 characters"}},
			})
			return
		}
		ticket := Ticket{ID: "t-1", Title: in.Title, Status: "open", Priority: "medium", Category: in.Category}
		api.mu.Lock()
		api.tickets = append(api.tickets, ticket)
		api.mu.Unlock()
		writeJSON(w, http.StatusCreated, ticket)
	})
	mux.HandleFunc("GET /api/tickets/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "Ticket not found", "message": "Ticket not found", "code": "NOT_FOUND"})
	})
	mux.HandleFunc("POST /api/contact", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, Receipt{Message: "Contact form submitted successfully", ID: "contact-1"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return api, srv
}

func (a *fakeAPI) hit(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hits[key]++
}

func (a *fakeAPI) count(key string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hits[key]
}

func (a *fakeAPI) user(r *http.Request) (User, bool) {
	c, err := r.Cookie("sid")
	if err != nil {
		return User{}, false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	user, ok := a.sessions[c.Value]
	return user, ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := New(srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestSessionIsCachedUntilStale(t *testing.T) {
	api, srv := newFakeAPI(t)
	c := newTestClient(t, srv)
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	c.Cache().now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.Session(ctx); err != nil {
			t.Fatalf("session: %v", err)
		}
	}
	if got := api.count("session"); got != 1 {
		t.Fatalf("expected 1 fetch within the window, got %d", got)
	}

	now = now.Add(SessionStaleTime)
	if _, err := c.Session(ctx); err != nil {
		t.Fatalf("session: %v", err)
	}
	if got := api.count("session"); got != 2 {
		t.Fatalf("expected refetch after %s, got %d fetches", SessionStaleTime, got)
	}
}

func TestLoginAndLogoutRefreshSession(t *testing.T) {
	api, srv := newFakeAPI(t)
	c := newTestClient(t, srv)
	ctx := context.Background()

	state, err := c.Session(ctx)
	if err != nil || state.Authenticated {
		t.Fatalf("expected signed out, got %+v err=%v", state, err)
	}

	if _, err := c.Login(ctx, "alice", "wrong"); !IsUnauthorized(err) {
		t.Fatalf("expected 401, got %v", err)
	}
	user, err := c.Login(ctx, "alice", "Secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("unexpected user %+v", user)
	}

	state, err = c.Session(ctx)
	if err != nil || !state.Authenticated || state.User.Username != "alice" {
		t.Fatalf("expected signed in after login, got %+v err=%v", state, err)
	}
	if got := api.count("session"); got != 2 {
		t.Fatalf("login should force a session refetch, got %d fetches", got)
	}

	if err := c.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	state, err = c.Session(ctx)
	if err != nil || state.Authenticated {
		t.Fatalf("expected signed out after logout, got %+v err=%v", state, err)
	}
	if _, err := c.CurrentUser(ctx); !IsUnauthorized(err) {
		t.Fatalf("expected 401 from current user, got %v", err)
	}
}

func TestTicketMutationsInvalidateLists(t *testing.T) {
	api, srv := newFakeAPI(t)
	c := newTestClient(t, srv)
	ctx := context.Background()

	open := TicketFilter{Status: "open"}
	for i := 0; i < 2; i++ {
		if _, err := c.ListTickets(ctx, TicketFilter{}); err != nil {
			t.Fatalf("list: %v", err)
		}
		if _, err := c.ListTickets(ctx, open); err != nil {
			t.Fatalf("list open: %v", err)
		}
	}
	if api.count("tickets?") != 1 || api.count("tickets?status=open") != 1 {
		t.Fatalf("expected one fetch per key, got %v", api.hits)
	}

	created, err := c.CreateTicket(ctx, NewTicket{Title: "Printer offline", Category: "hardware"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != "open" {
		t.Fatalf("unexpected ticket %+v", created)
	}

	tickets, err := c.ListTickets(ctx, TicketFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tickets) != 1 || api.count("tickets?") != 2 {
		t.Fatalf("expected refetch with new ticket, got %d tickets after %d fetches", len(tickets), api.count("tickets?"))
	}

	c.RefreshTickets()
	if _, err := c.ListTickets(ctx, open); err != nil {
		t.Fatalf("list open: %v", err)
	}
	if got := api.count("tickets?status=open"); got != 2 {
		t.Fatalf("refresh should drop filtered lists, got %d fetches", got)
	}
}

func TestAPIErrorsAreDecoded(t *testing.T) {
	_, srv := newFakeAPI(t)
	c := newTestClient(t, srv)
	ctx := context.Background()

	_, err := c.CreateTicket(ctx, NewTicket{Title: "no"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Code != "VALIDATION_FAILED" {
		t.Fatalf("unexpected error %+v", apiErr)
	}
	if msgs := FieldErrors(err)["title"]; len(msgs) != 1 {
		t.Fatalf("expected title field error, got %v", FieldErrors(err))
	}

	if _, err := c.GetTicket(ctx, "missing"); !IsNotFound(err) {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestCookiesCanBeRestored(t *testing.T) {
	_, srv := newFakeAPI(t)
	ctx := context.Background()

	first := newTestClient(t, srv)
	if _, err := first.Login(ctx, "bob", "Secret123"); err != nil {
		t.Fatalf("login: %v", err)
	}
	saved := first.Cookies()
	if len(saved) == 0 {
		t.Fatal("expected a session cookie")
	}

	second := newTestClient(t, srv)
	second.SetCookies(saved)
	user, err := second.CurrentUser(ctx)
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	if user.Username != "bob" {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestSubmitContact(t *testing.T) {
	_, srv := newFakeAPI(t)
	c := newTestClient(t, srv)

	receipt, err := c.SubmitContact(context.Background(), ContactForm{Name: "Ann", Email: "ann@example.com", Company: "Acme", Message: "Hello there"})
	if err != nil {
		t.Fatalf("contact: %v", err)
	}
	if receipt.ID != "contact-1" {
		t.Fatalf("unexpected receipt %+v", receipt)
	}
}

func TestNewRejectsRelativeURL(t *testing.T) {
	if _, err := New("localhost:5000"); err == nil {
		t.Fatal("expected error for url without scheme")
	}
}

func TestStatusCounts(t *testing.T) {
	counts := StatusCounts([]Ticket{{Status: "open"}, {Status: "open"}, {Status: "closed"}})
	if counts["open"] != 2 || counts["closed"] != 1 || counts["in-progress"] != 0 || counts["resolved"] != 0 {
		t.Fatalf("unexpected counts %v", counts)
	}
}

func TestReadInFlightDuringInvalidationIsNotCached(t *testing.T) {
	var c *Client
	var calls int
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()
		if first {
			// A mutation lands while the first list is still on the wire.
			c.RefreshTickets()
		}
		writeJSON(w, http.StatusOK, []Ticket{})
	}))
	defer srv.Close()
	c = newTestClient(t, srv)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := c.ListTickets(ctx, TicketFilter{}); err != nil {
			t.Fatalf("list %d: %v", i, err)
		}
	}
	mu.Lock()
	defer mu.Unlock()
	if calls != 2 {
		t.Fatalf("expected the second list to refetch, got %d calls", calls)
	}
	if c.Cache().Len() != 1 {
		t.Fatalf("expected the second list to be cached, got %d entries", c.Cache().Len())
	}
}
