// Package badgeapi is the HTTP client for the external IssueBadge service.
//
// It lists the badge catalog and issues badges to recipients. Every logical
// call sends exactly one request; nothing is retried, cached or logged here.
// Callers decide whether an error is shown to a user or swallowed.
//
// Endpoints (relative to Config.BaseURL):
//
//	GET  badge/getall   -> {"success": true, "data": [{"id": "...", "name": "..."}]}
//	POST issue/create   -> {"success": true, "IssueId": "...", "publicUrl": "..."}
//
// Failures are reported by the service as {"success": false, "message": "..."}.
package badgeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultBaseURL is the production IssueBadge API endpoint.
const DefaultBaseURL = "https://app.issuebadge.com/api/v1"

// DefaultTimeout bounds a single request when Config.Timeout is zero.
const DefaultTimeout = 15 * time.Second

const (
	endpointListBadges = "badge/getall"
	endpointIssue      = "issue/create"

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 4 << 20
)

// Config is the explicit client configuration.
type Config struct {
	// BaseURL defaults to DefaultBaseURL when empty.
	BaseURL string
	// APIKey is the bearer token. Required.
	APIKey string
	// Timeout applies to the default HTTP client; ignored when HTTPClient is set.
	Timeout time.Duration
	// HTTPClient overrides the transport (tests, proxies).
	HTTPClient *http.Client
}

// Badge is a credential definition from the service catalog.
type Badge struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// badgeItem is one catalog entry as sent by the service.
type badgeItem struct {
	ID   json.RawMessage `json:"id"`
	Name string          `json:"name"`
}

// IssueRequest describes one grant. Name and BadgeID are required; Email is
// forwarded only when non-empty.
type IssueRequest struct {
	Name    string `validate:"required"`
	Email   string
	BadgeID string `validate:"required"`
}

// IssueResult is returned by a confirmed grant. IssueID and PublicURL are
// passed through verbatim; IdempotencyKey is the key sent with the request.
type IssueResult struct {
	IssueID        string `json:"IssueId"`
	PublicURL      string `json:"publicUrl"`
	IdempotencyKey string `json:"-"`
}

// issuePayload is the JSON body of POST issue/create.
type issuePayload struct {
	Name           string `json:"name"`
	BadgeID        string `json:"badge_id"`
	IdempotencyKey string `json:"idempotency_key"`
	Email          string `json:"email,omitempty"`
}

// envelope is the common response shape. Fields are kept raw so that
// presence can be told apart from zero values.
type envelope struct {
	Success   any             `json:"success"`
	Message   any             `json:"message"`
	Data      json.RawMessage `json:"data"`
	IssueID   json.RawMessage `json:"IssueId"`
	PublicURL json.RawMessage `json:"publicUrl"`
}

// Client talks to the IssueBadge API. It is safe for concurrent use.
type Client struct {
	baseURL  string
	apiKey   string
	http     *http.Client
	validate *validator.Validate

	// newKey generates the per-call idempotency key.
	newKey func() string
}

// New builds a client from cfg. It fails with ErrConfiguration when no API
// key is configured; no network call is made.
func New(cfg Config) (*Client, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, NotConfigured()
	}
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:  strings.TrimRight(base, "/"),
		apiKey:   key,
		http:     hc,
		validate: validator.New(),
		newKey:   uuid.NewString,
	}, nil
}

// BaseURL returns the normalized base URL the client sends requests to.
func (c *Client) BaseURL() string { return c.baseURL }

// ListBadges fetches the badge catalog.
func (c *Client) ListBadges(ctx context.Context) ([]Badge, error) {
	ctx, span := otel.Tracer("badgeapi").Start(ctx, "ListBadges")
	defer span.End()

	env, err := c.do(ctx, http.MethodGet, endpointListBadges, nil)
	if err != nil {
		recordErr(span, err)
		return nil, err
	}

	raw := bytes.TrimSpace(env.Data)
	if len(raw) == 0 || raw[0] != '[' {
		err := newError(ErrInvalidResponse, "", nil)
		recordErr(span, err)
		return nil, err
	}
	var items []badgeItem
	if err := json.Unmarshal(raw, &items); err != nil {
		err := newError(ErrInvalidResponse, "", err)
		recordErr(span, err)
		return nil, err
	}
	badges := make([]Badge, 0, len(items))
	for _, it := range items {
		// ids may come back as numbers; keep their text
		id, _ := rawString(it.ID)
		badges = append(badges, Badge{ID: id, Name: it.Name})
	}
	span.SetAttributes(attribute.Int("badges.count", len(badges)))
	return badges, nil
}

// IssueBadge grants req.BadgeID to the named recipient. A fresh UUIDv4
// idempotency key is generated for every call, even for identical input.
func (c *Client) IssueBadge(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, newError(ErrValidation, "", err)
	}

	ctx, span := otel.Tracer("badgeapi").Start(ctx, "IssueBadge",
		trace.WithAttributes(attribute.String("badge.id", req.BadgeID)),
	)
	defer span.End()

	payload := issuePayload{
		Name:           req.Name,
		BadgeID:        req.BadgeID,
		IdempotencyKey: c.newKey(),
		Email:          req.Email,
	}
	env, err := c.do(ctx, http.MethodPost, endpointIssue, payload)
	if err != nil {
		recordErr(span, err)
		return nil, err
	}

	issueID, ok1 := rawString(env.IssueID)
	publicURL, ok2 := rawString(env.PublicURL)
	if !ok1 || !ok2 {
		err := newError(ErrInvalidResponse, "", nil)
		recordErr(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("issue.id", issueID))
	return &IssueResult{
		IssueID:        issueID,
		PublicURL:      publicURL,
		IdempotencyKey: payload.IdempotencyKey,
	}, nil
}

// do sends one authenticated request and validates the success flag.
func (c *Client) do(ctx context.Context, method, endpoint string, body any) (*envelope, error) {
	url := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, newError(ErrAPI, "", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, rdr)
	if err != nil {
		return nil, newError(ErrAPI, "", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, newError(ErrAPI, fmt.Sprintf("%s: %v", ErrAPI.Error(), err), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		e := newError(ErrAPI, fmt.Sprintf("%s: %v", ErrAPI.Error(), err), err)
		e.StatusCode = resp.StatusCode
		return nil, e
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		e := newError(ErrAPI, ErrInvalidResponse.Error(), err)
		e.StatusCode = resp.StatusCode
		return nil, e
	}
	if !truthy(env.Success) {
		msg, _ := env.Message.(string)
		e := newError(ErrAPI, msg, nil)
		e.StatusCode = resp.StatusCode
		return nil, e
	}
	return &env, nil
}

// truthy mirrors loose boolean semantics of the service: true, non-zero
// numbers and non-empty strings other than "0" count as success.
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != "" && t != "0"
	default:
		return false
	}
}

// rawString converts a present, non-null JSON scalar to its string form.
// Numbers keep their textual representation.
func rawString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return fmt.Sprint(b), true
	}
	return "", false
}

func recordErr(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
