package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/config"
	pkgerrors "github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/errors"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/logger"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/metrics"
	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/session"
)

// LoginExpiredTarget is where an expired session sends the operator. The
// reason marker lets the login screen show a contextual message.
const LoginExpiredTarget = "/login?reason=expired"

// expiredDetailMarker is the backend's credential-validation failure text;
// some endpoint families report it with a 400 instead of a 401.
const expiredDetailMarker = "could not validate credentials"

const tenantQueryParam = "tenant_id"

var (
	errSessionRequired = errors.New("session context is required")
	errLoggerRequired  = errors.New("logger is required")
)

// ExpiredSessionHandler runs after an expired session has been cleaned up,
// with the navigation target to send the operator to.
type ExpiredSessionHandler func(target string)

// ForbiddenNotifier surfaces a non-blocking permissions notice.
type ForbiddenNotifier func(message string)

// Client is the one shared HTTP client for the scheduling backend with
// centralized auth, tenant scoping, logging, metrics, and error mapping.
type Client struct {
	http    *http.Client
	baseURL *url.URL
	sess    *session.Context
	logg    *logger.Logger
	metrics *metrics.ClientMetrics

	mu        sync.Mutex
	expirySet sync.Once
	onExpired ExpiredSessionHandler
	notifier  ForbiddenNotifier
}

// Options bundles the dependencies required to build the client.
type Options struct {
	Config     config.APIConfig
	Session    *session.Context
	Logger     *logger.Logger
	Metrics    *metrics.ClientMetrics
	HTTPClient *http.Client
}

// New validates the options and constructs the shared client. A missing
// base URL is fatal here so every caller fails fast at startup.
func New(opts Options) (*Client, error) {
	if opts.Session == nil {
		return nil, errSessionRequired
	}
	if opts.Logger == nil {
		return nil, errLoggerRequired
	}
	base := strings.TrimSpace(opts.Config.BaseURL)
	if base == "" {
		return nil, fmt.Errorf("%s is required", config.EnvAPIBaseURL)
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parsing api base url: %w", err)
	}

	timeout := opts.Config.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	httpClient.Timeout = timeout

	return &Client{
		http:    httpClient,
		baseURL: parsed,
		sess:    opts.Session,
		logg:    opts.Logger,
		metrics: opts.Metrics,
	}, nil
}

// Session exposes the injected session context to callers that own
// login/logout flows.
func (c *Client) Session() *session.Context {
	return c.sess
}

// EnsureExpiryHandler installs the process-wide expired-session hook. The
// installation is idempotent: repeated calls keep the first handler so at
// most one is ever active.
func (c *Client) EnsureExpiryHandler(handler ExpiredSessionHandler) {
	if handler == nil {
		return
	}
	c.expirySet.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.onExpired = handler
	})
}

// RegisterForbiddenNotifier wires the UI notice used on 403 responses.
func (c *Client) RegisterForbiddenNotifier(notifier ForbiddenNotifier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifier = notifier
}

// Request describes one backend call.
type Request struct {
	// Operation labels logs and metrics, e.g. "swaps.list".
	Operation string
	Method    string
	Path      string
	Query     url.Values
	// Body is JSON-encoded when set; Form wins over Body.
	Body any
	Form url.Values
	// TenantHeader sends the tenant id as X-Tenant-ID instead of the
	// query parameter, for the endpoint families that expect the header.
	TenantHeader bool
	// Headers are set verbatim on the outgoing request.
	Headers map[string]string
	// Out receives the decoded JSON response when non-nil.
	Out any
}

// Do performs the request with bearer and tenant decoration applied, then
// routes error responses through the session-expiry and permission paths.
func (c *Client) Do(ctx context.Context, req Request) error {
	started := time.Now()
	err := c.do(ctx, req)
	c.metrics.ObserveDuration(req.Operation, time.Since(started))
	if err != nil {
		c.metrics.IncFailure(req.Operation)
	}
	return err
}

func (c *Client) do(ctx context.Context, req Request) error {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return err
	}

	logCtx := c.logg.WithFields(ctx, map[string]any{
		"operation": req.Operation,
		"method":    httpReq.Method,
		"path":      req.Path,
	})
	c.logg.Debug(logCtx, "api request")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logg.Warn(c.logg.WithField(logCtx, "error", err.Error()), "api request failed")
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, fmt.Sprintf("%s failed", req.Operation))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, fmt.Sprintf("reading %s response", req.Operation))
	}

	if resp.StatusCode >= 400 {
		return c.handleErrorResponse(logCtx, req, resp.StatusCode, body)
	}

	if req.Out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, req.Out); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDecode, err, fmt.Sprintf("decoding %s response", req.Operation))
		}
	}
	return nil
}

func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	target := *c.baseURL
	target.Path = joinPath(c.baseURL.Path, req.Path)

	query := url.Values{}
	for key, values := range req.Query {
		for _, value := range values {
			query.Add(key, value)
		}
	}

	tenantID := c.sess.ActiveTenantID(ctx)
	if tenantID != "" && !isAuthRoute(req.Path) && !req.TenantHeader {
		query.Set(tenantQueryParam, tenantID)
	}
	target.RawQuery = query.Encode()

	var body io.Reader
	contentType := ""
	switch {
	case req.Form != nil:
		body = strings.NewReader(req.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case req.Body != nil:
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding request body")
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building request")
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	if token := c.sess.Token(ctx); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	if tenantID != "" && req.TenantHeader && !isAuthRoute(req.Path) {
		httpReq.Header.Set("X-Tenant-ID", tenantID)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	return httpReq, nil
}

func (c *Client) handleErrorResponse(ctx context.Context, req Request, status int, body []byte) error {
	detail := extractDetail(body)

	if status == http.StatusUnauthorized || strings.Contains(strings.ToLower(detail), expiredDetailMarker) {
		c.handleExpiredSession(ctx)
		message := detail
		if message == "" {
			message = "session expired"
		}
		return pkgerrors.New(pkgerrors.CodeExpired, message)
	}

	if status == http.StatusForbidden {
		c.metrics.IncForbidden()
		c.notifyForbidden(ctx)
		message := detail
		if message == "" {
			message = "insufficient permissions"
		}
		return pkgerrors.New(pkgerrors.CodeForbidden, message)
	}

	message := detail
	if message == "" {
		message = fmt.Sprintf("%s failed (status %d)", req.Operation, status)
	}
	return pkgerrors.New(pkgerrors.CodeForStatus(status), message)
}

// handleExpiredSession clears auth state and fires the redirect hook. It
// must run to completion exactly once per failing response and never panic,
// even when storage access fails.
func (c *Client) handleExpiredSession(ctx context.Context) {
	defer func() {
		_ = recover()
	}()

	c.metrics.IncSessionExpired()
	if err := c.sess.ClearAuth(ctx); err != nil {
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "clearing expired session state")
	}

	c.mu.Lock()
	handler := c.onExpired
	c.mu.Unlock()
	if handler != nil {
		handler(LoginExpiredTarget)
	} else {
		c.logg.Warn(ctx, "session expired with no redirect handler installed")
	}
}

func (c *Client) notifyForbidden(ctx context.Context) {
	c.mu.Lock()
	notifier := c.notifier
	c.mu.Unlock()
	if notifier != nil {
		notifier("You do not have permission to perform this action.")
		return
	}
	c.logg.Warn(ctx, "permission denied with no notifier registered")
}

func isAuthRoute(path string) bool {
	clean := "/" + strings.TrimLeft(path, "/")
	return clean == "/token" || strings.HasPrefix(clean, "/auth/")
}

func joinPath(base, path string) string {
	trimmed := strings.TrimRight(base, "/")
	if path == "" {
		return trimmed
	}
	return trimmed + "/" + strings.TrimLeft(path, "/")
}

func extractDetail(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	switch detail := payload.Detail.(type) {
	case string:
		return strings.TrimSpace(detail)
	case nil:
		return ""
	default:
		raw, err := json.Marshal(detail)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}
