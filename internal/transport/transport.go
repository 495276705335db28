// Package transport is the single HTTP channel between the client and the backend.
// It owns the credential attached to every request.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"writex/internal/models"
	"writex/internal/observability"
)

const (
	userAgent       = "writex-client/1.0"
	maxErrorBody    = 1 << 20
	requestIDHeader = "X-Request-ID"
)

// Transport issues JSON requests against the backend. One instance is shared
// by every resource client. It never retries.
type Transport struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	mu    sync.RWMutex
	token string
}

// New returns a transport for baseURL. An empty baseURL keeps paths relative.
func New(baseURL string, httpClient *http.Client, logger *slog.Logger) *Transport {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// BaseURL returns the configured prefix.
func (t *Transport) BaseURL() string { return t.baseURL }

// SetCredential attaches token to all subsequent requests.
func (t *Transport) SetCredential(token string) {
	t.mu.Lock()
	t.token = token
	t.mu.Unlock()
}

// ClearCredential stops sending a credential.
func (t *Transport) ClearCredential() {
	t.mu.Lock()
	t.token = ""
	t.mu.Unlock()
}

// HasCredential reports whether a credential is attached.
func (t *Transport) HasCredential() bool {
	return t.Credential() != ""
}

// Credential returns the attached token, or "".
func (t *Transport) Credential() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.token
}

// Do sends in as the JSON body of method path and decodes a 2xx response into
// out. in and out may be nil. Non-2xx responses become *models.AppError with
// the backend's message; failures without a response become NETWORK_ERROR.
func (t *Transport) Do(ctx context.Context, method, path string, in, out any) error {
	route := RouteTemplate(method, path)
	start := time.Now()

	requestID := uuid.NewString()
	ctx = observability.WithRequestID(ctx, requestID)
	ctx, span := observability.StartClientSpan(ctx, method, route)

	status, err := t.do(ctx, method, path, requestID, in, out)

	observability.EndSpan(span, status, err)
	statusLabel := "error"
	if status != 0 {
		statusLabel = strconv.Itoa(status)
	}
	observability.ObserveRequest(method, route, statusLabel, start)

	attrs := []any{
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Duration("duration", time.Since(start)),
	}
	if err != nil {
		t.logger.WarnContext(ctx, "backend request failed", append(attrs, slog.String("error", err.Error()))...)
	} else {
		t.logger.DebugContext(ctx, "backend request", attrs...)
	}
	return err
}

func (t *Transport) do(ctx context.Context, method, path, requestID string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(requestIDHeader, requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := t.Credential(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return 0, models.NewNetworkError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, models.NewNetworkError(err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return resp.StatusCode, &models.AppError{
			Code:    models.CodeRequestFailed,
			Message: "Invalid response from server",
			Status:  resp.StatusCode,
			Err:     err,
		}
	}
	return resp.StatusCode, nil
}

func decodeError(resp *http.Response) error {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil && !errors.Is(err, io.EOF) {
		return models.NewResponseError(resp.StatusCode, "")
	}
	var payload models.ErrorResponse
	if len(data) > 0 {
		// A non-JSON error body leaves the message empty.
		_ = json.Unmarshal(data, &payload)
	}
	return models.NewResponseError(resp.StatusCode, payload.Text())
}

// RouteTemplate replaces identity segments of path with ":id" so metric and
// span names stay low-cardinality. Identities sit at fixed positions under
// /api/<resource>/, so "/api/posts/abc/like" becomes "/api/posts/:id/like"
// whatever the id looks like. method separates the fixed user routes
// (PUT /api/users/profile, GET /api/users/me/follow) from user ids.
func RouteTemplate(method, path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) < 3 || segments[0] != "api" {
		return "/" + strings.Join(segments, "/")
	}
	if !fixedRoute(method, segments) {
		segments[2] = ":id"
	}
	if len(segments) > 4 {
		segments[4] = ":id"
	}
	return "/" + strings.Join(segments, "/")
}

func fixedRoute(method string, segments []string) bool {
	switch segments[1] {
	case "auth":
		return true
	case "users":
		switch {
		case method == http.MethodPut && len(segments) == 3 && segments[2] == "profile":
			return true
		case method == http.MethodGet && len(segments) == 4 && segments[2] == "me" && segments[3] == "follow":
			return true
		}
	}
	return false
}
