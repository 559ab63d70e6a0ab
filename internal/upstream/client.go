// Package upstream is the HTTP client for the Staybook platform API.
// All business authority — availability, pricing, persistence of listings,
// accounts — lives behind that API; this package only speaks JSON/REST to
// it and maps responses onto domain types and the error taxonomy.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"staybook/internal/domain"
	"staybook/internal/filter"
)

// maxErrorBody caps how much of a non-JSON error response is surfaced.
const maxErrorBody = 200

// Client calls the platform API. The zero value is not usable; construct
// with New.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger

	// retries is the attempt cap for idempotent GETs; writes are never
	// retried.
	retries uint64
	backoff time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying http.Client (used in tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger overrides the logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithRetries overrides the GET retry cap and initial backoff.
func WithRetries(n uint64, backoff time.Duration) Option {
	return func(c *Client) {
		c.retries = n
		c.backoff = backoff
	}
}

// New builds a Client for the given base URL (e.g. "https://api.example.com/api").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     slog.Default(),
		retries: 2,
		backoff: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchHouses calls GET /traveller/houses with the filter state encoded
// per the platform's query contract. Token may be empty for anonymous
// searches.
func (c *Client) SearchHouses(ctx context.Context, token string, p filter.Params) (domain.HousePage, error) {
	var wire housesWire
	err := c.getJSON(ctx, token, "/traveller/houses?"+SearchQuery(p).Encode(), &wire)
	if err != nil {
		return domain.HousePage{}, fmt.Errorf("upstream.Client.SearchHouses: %w", err)
	}
	return domain.HousePage{Houses: wire.Data, Pagination: wire.pagination()}, nil
}

// GetHouse calls GET /traveller/houses/{id}.
func (c *Client) GetHouse(ctx context.Context, token string, id int64) (domain.House, error) {
	var wire struct {
		Data *domain.House `json:"data"`
		domain.House
	}
	err := c.getJSON(ctx, token, fmt.Sprintf("/traveller/houses/%d", id), &wire)
	if err != nil {
		return domain.House{}, fmt.Errorf("upstream.Client.GetHouse: %w", err)
	}
	// Some endpoints wrap the record in "data", some return it bare.
	if wire.Data != nil {
		return *wire.Data, nil
	}
	return wire.House, nil
}

// ListHostActivities calls GET /traveller/activities/user/{hostID}.
func (c *Client) ListHostActivities(ctx context.Context, token string, hostID int64, page int) (domain.ActivityPage, error) {
	path := fmt.Sprintf("/traveller/activities/user/%d", hostID)
	if page > 1 {
		path += "?page=" + strconv.Itoa(page)
	}
	var wire activitiesWire
	err := c.getJSON(ctx, token, path, &wire)
	if err != nil {
		return domain.ActivityPage{}, fmt.Errorf("upstream.Client.ListHostActivities: %w", err)
	}
	return domain.ActivityPage{Activities: wire.Data, Pagination: wire.pagination()}, nil
}

// Favorite calls POST /traveller/houses/{id}/favorite.
func (c *Client) Favorite(ctx context.Context, token string, houseID int64) error {
	if err := c.postAck(ctx, token, fmt.Sprintf("/traveller/houses/%d/favorite", houseID)); err != nil {
		return fmt.Errorf("upstream.Client.Favorite: %w", err)
	}
	return nil
}

// Unfavorite calls POST /traveller/houses/{id}/unfavorite.
func (c *Client) Unfavorite(ctx context.Context, token string, houseID int64) error {
	if err := c.postAck(ctx, token, fmt.Sprintf("/traveller/houses/%d/unfavorite", houseID)); err != nil {
		return fmt.Errorf("upstream.Client.Unfavorite: %w", err)
	}
	return nil
}

// Login calls POST /login and returns the opaque bearer token and profile.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (domain.AuthResult, error) {
	res, err := c.postAuth(ctx, "/login", creds)
	if err != nil {
		return domain.AuthResult{}, fmt.Errorf("upstream.Client.Login: %w", err)
	}
	return res, nil
}

// Register calls POST /register-host or /register-traveller depending on
// the registration's role.
func (c *Client) Register(ctx context.Context, reg domain.Registration) (domain.AuthResult, error) {
	path := "/register-traveller"
	if reg.Role == "host" {
		path = "/register-host"
	}
	res, err := c.postAuth(ctx, path, reg)
	if err != nil {
		return domain.AuthResult{}, fmt.Errorf("upstream.Client.Register: %w", err)
	}
	return res, nil
}

// SearchQuery encodes filter state for the platform's search endpoint.
// Two quirks of the platform contract live here and nowhere else: free-text
// search is sent as "city" (the backend has no generic search parameter),
// and property types use the PHP-style repeated "property_type[]" key.
func SearchQuery(p filter.Params) url.Values {
	v := url.Values{}
	if p.Search != "" {
		v.Set("city", p.Search)
	} else if p.City != "" {
		v.Set("city", p.City)
	}
	if p.Country != "" {
		v.Set("country", p.Country)
	}
	if p.MinPrice > 0 {
		v.Set("min_price", strconv.Itoa(p.MinPrice))
	}
	if p.MaxPrice > 0 {
		v.Set("max_price", strconv.Itoa(p.MaxPrice))
	}
	if p.Guests > 1 {
		v.Set("guests", strconv.Itoa(p.Guests))
	}
	if p.Bedrooms > 1 {
		v.Set("bedrooms", strconv.Itoa(p.Bedrooms))
	}
	if p.Bathrooms > 1 {
		v.Set("bathrooms", strconv.Itoa(p.Bathrooms))
	}
	if !p.StartDate.IsZero() {
		v.Set("start_date", p.StartDate.Format(filter.DateLayout))
	}
	if !p.EndDate.IsZero() {
		v.Set("end_date", p.EndDate.Format(filter.DateLayout))
	}
	if p.Page > 1 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	for _, t := range p.PropertyTypes {
		v.Add("property_type[]", t)
	}
	return v
}

// ---- transport -------------------------------------------------------------

// getJSON performs an idempotent GET with capped exponential backoff.
// Transport errors and 5xx responses are retried; everything else is
// decoded exactly once.
func (c *Client) getJSON(ctx context.Context, token, path string, out any) error {
	backoff := retry.WithMaxRetries(c.retries, retry.NewExponential(c.backoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return err
		}
		c.setHeaders(req, token)

		resp, err := c.http.Do(req)
		if err != nil {
			c.log.DebugContext(ctx, "upstream request failed, may retry", "path", path, "error", err)
			return retry.RetryableError(fmt.Errorf("%w: %v", domain.ErrUpstream, err))
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			io.Copy(io.Discard, resp.Body)
			return retry.RetryableError(fmt.Errorf("%w: status %d", domain.ErrUpstream, resp.StatusCode))
		}
		return decode(resp, out)
	})
}

// postAck performs a non-retried POST whose success is an {success,message}
// acknowledgement body.
func (c *Client) postAck(ctx context.Context, token, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req, token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	var ack ackWire
	if err := decode(resp, &ack); err != nil {
		return err
	}
	if ack.Success != nil && !*ack.Success {
		return fmt.Errorf("%w: %s", domain.ErrUpstream, ack.Message)
	}
	return nil
}

// postAuth performs a login/register POST and maps the token/user body.
func (c *Client) postAuth(ctx context.Context, path string, body any) (domain.AuthResult, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return domain.AuthResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return domain.AuthResult{}, err
	}
	c.setHeaders(req, "")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.AuthResult{}, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	var wire authWire
	if err := decode(resp, &wire); err != nil {
		return domain.AuthResult{}, err
	}
	return domain.AuthResult{Token: wire.Token, User: wire.User}, nil
}

func (c *Client) setHeaders(req *http.Request, token string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// decode maps a platform response onto out, applying the error taxonomy:
// JSON validation bodies become domain.FieldErrors, JSON failure bodies
// become message errors, and non-JSON bodies surface as ErrUpstream with
// the truncated raw text.
func decode(resp *http.Response, out any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", domain.ErrUpstream, err)
	}

	if !isJSON(resp) {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return fmt.Errorf("%w: non-JSON response", domain.ErrUpstream)
		}
		return fmt.Errorf("%w: status %d: %s", domain.ErrUpstream, resp.StatusCode, truncate(string(body), maxErrorBody))
	}

	var envelope struct {
		Success *bool               `json:"success"`
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	// A body that fails this decode is malformed regardless of status.
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("%w: status %d: %s", domain.ErrUpstream, resp.StatusCode, truncate(string(body), maxErrorBody))
	}

	failed := resp.StatusCode < 200 || resp.StatusCode >= 300 ||
		(envelope.Success != nil && !*envelope.Success)
	if failed {
		if len(envelope.Errors) > 0 {
			return domain.FieldErrors(envelope.Errors)
		}
		if envelope.Message != "" {
			return fmt.Errorf("%w: %s", domain.ErrValidation, envelope.Message)
		}
		if resp.StatusCode == http.StatusNotFound {
			return domain.ErrNotFound
		}
		return fmt.Errorf("%w: status %d", domain.ErrUpstream, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode: %v", domain.ErrUpstream, err)
	}
	return nil
}

func isJSON(resp *http.Response) bool {
	return strings.Contains(resp.Header.Get("Content-Type"), "application/json")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// ---- wire types ------------------------------------------------------------

// housesWire is the platform's pagination envelope for house searches.
type housesWire struct {
	Data        []domain.House `json:"data"`
	CurrentPage int            `json:"current_page"`
	LastPage    int            `json:"last_page"`
	PerPage     int            `json:"per_page"`
	Total       int            `json:"total"`
}

func (w housesWire) pagination() domain.Pagination {
	return domain.Pagination{CurrentPage: w.CurrentPage, LastPage: w.LastPage, PerPage: w.PerPage, Total: w.Total}
}

type activitiesWire struct {
	Data        []domain.Activity `json:"data"`
	CurrentPage int               `json:"current_page"`
	LastPage    int               `json:"last_page"`
	PerPage     int               `json:"per_page"`
	Total       int               `json:"total"`
}

func (w activitiesWire) pagination() domain.Pagination {
	return domain.Pagination{CurrentPage: w.CurrentPage, LastPage: w.LastPage, PerPage: w.PerPage, Total: w.Total}
}

type ackWire struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

type authWire struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}
