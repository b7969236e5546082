// Package client talks to the support portal API the way the web front end does: a cookie jar
// carries the session, reads go through a keyed cache and mutations invalidate what they touch.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// SessionStaleTime is how long a session check stays fresh.
const SessionStaleTime = 5 * time.Minute

// Cache key prefixes.
const (
	KeySession = "/api/auth/session"
	KeyUser    = "/api/auth/user"
	KeyTickets = "/api/tickets"
)

// Client is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	cache      *Cache
}

type Option func(*Client)

// WithHTTPClient replaces the default client. A nil Jar gets a fresh one.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithCache(cache *Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// New builds a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	c := &Client{baseURL: parsed}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		c.httpClient.Jar = jar
	}
	if c.cache == nil {
		c.cache = NewCache()
	}
	return c, nil
}

func (c *Client) Cache() *Cache {
	return c.cache
}

// Cookies returns the cookies the jar would send to the API, for persisting a session.
func (c *Client) Cookies() []*http.Cookie {
	return c.httpClient.Jar.Cookies(c.baseURL)
}

// SetCookies restores previously saved cookies.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	c.httpClient.Jar.SetCookies(c.baseURL, cookies)
	c.cache.Invalidate(KeySession, KeyUser)
}

// Session reports whether the jar holds a live session.
func (c *Client) Session(ctx context.Context) (*SessionState, error) {
	var out SessionState
	if err := c.get(ctx, KeySession, nil, SessionStaleTime, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CurrentUser fails with a 401 APIError when signed out.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := c.get(ctx, KeyUser, nil, SessionStaleTime, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) Register(ctx context.Context, username, password string) (*User, error) {
	return c.authenticate(ctx, "/api/auth/register", username, password)
}

func (c *Client) Login(ctx context.Context, username, password string) (*User, error) {
	return c.authenticate(ctx, "/api/auth/login", username, password)
}

func (c *Client) authenticate(ctx context.Context, path, username, password string) (*User, error) {
	in := map[string]string{"username": username, "password": password}
	var out struct {
		User User `json:"user"`
	}
	err := c.send(ctx, http.MethodPost, path, in, &out)
	c.cache.Invalidate(KeySession, KeyUser)
	if err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) Logout(ctx context.Context) error {
	err := c.send(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	c.cache.Invalidate(KeySession, KeyUser)
	return err
}

func (c *Client) ListTickets(ctx context.Context, filter TicketFilter) ([]Ticket, error) {
	query := url.Values{}
	if filter.Status != "" {
		query.Set("status", filter.Status)
	}
	if filter.Priority != "" {
		query.Set("priority", filter.Priority)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		query.Set("search", s)
	}
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Offset > 0 {
		query.Set("offset", strconv.Itoa(filter.Offset))
	}

	out := []Ticket{}
	if err := c.get(ctx, KeyTickets, query, 0, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTicket fails with a 404 APIError for unknown ids.
func (c *Client) GetTicket(ctx context.Context, id string) (*Ticket, error) {
	var out Ticket
	if err := c.get(ctx, ticketPath(id), nil, 0, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateTicket(ctx context.Context, in NewTicket) (*Ticket, error) {
	return c.mutateTicket(ctx, http.MethodPost, KeyTickets, in)
}

func (c *Client) UpdateTicketStatus(ctx context.Context, id string, in StatusChange) (*Ticket, error) {
	return c.mutateTicket(ctx, http.MethodPut, ticketPath(id)+"/status", in)
}

func (c *Client) UpdateTicket(ctx context.Context, id string, in TicketPatch) (*Ticket, error) {
	return c.mutateTicket(ctx, http.MethodPut, ticketPath(id), in)
}

// RefreshTickets forgets every cached ticket read.
func (c *Client) RefreshTickets() {
	c.cache.Invalidate(KeyTickets)
}

func (c *Client) mutateTicket(ctx context.Context, method, path string, in any) (*Ticket, error) {
	var out Ticket
	if err := c.send(ctx, method, path, in, &out); err != nil {
		return nil, err
	}
	c.cache.Invalidate(KeyTickets)
	return &out, nil
}

func (c *Client) SubmitContact(ctx context.Context, in ContactForm) (*Receipt, error) {
	var out Receipt
	if err := c.send(ctx, http.MethodPost, "/api/contact", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SubmitDemoRequest(ctx context.Context, in DemoRequestForm) (*Receipt, error) {
	var out Receipt
	if err := c.send(ctx, http.MethodPost, "/api/demo-request", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func ticketPath(id string) string {
	return KeyTickets + "/" + url.PathEscape(id)
}

// get serves from the cache when fresh and stores successful bodies under path?query.
func (c *Client) get(ctx context.Context, path string, query url.Values, staleAfter time.Duration, out any) error {
	key := path
	if encoded := query.Encode(); encoded != "" {
		key += "?" + encoded
	}
	if body, ok := c.cache.Get(key, staleAfter); ok {
		return json.Unmarshal(body, out)
	}

	gen := c.cache.Generation()
	body, err := c.do(ctx, http.MethodGet, key, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	c.cache.SetIfGeneration(key, body, gen)
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, in, out any) error {
	body, err := c.do(ctx, method, path, in)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, pathAndQuery string, in any) ([]byte, error) {
	var reader io.Reader
	if in != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return nil, err
		}
		reader = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+pathAndQuery, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, decodeAPIError(resp.StatusCode, payload)
	}
	return payload, nil
}

func decodeAPIError(status int, payload []byte) error {
	apiErr := &APIError{Status: status}
	if err := json.Unmarshal(payload, apiErr); err != nil {
		apiErr.Message = strings.TrimSpace(string(payload))
	}
	if apiErr.Title == "" {
		apiErr.Title = http.StatusText(status)
	}
	return apiErr
}
