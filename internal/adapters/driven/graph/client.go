package graph

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
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/cswcalc/internal/core/domain"
	"github.com/custodia-labs/cswcalc/internal/core/ports/driven"
	"github.com/custodia-labs/cswcalc/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.WorkbookClient = (*Client)(nil)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// SessionHeader ties a request to an editing session.
	SessionHeader = "workbook-session-id"

	// maxBodyRead bounds how much of a response is read.
	maxBodyRead = 1 << 20
)

// invalidator is implemented by token providers that can drop a rejected
// credential.
type invalidator interface {
	Invalidate()
}

// Client is the Graph workbook API client.
type Client struct {
	baseURL   string
	tokens    driven.TokenProvider
	transport http.RoundTripper
	timeout   time.Duration
	limiter   *RateLimiter
}

// Option configures a Client.
type Option func(*Client)

// WithTransport replaces the base HTTP transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.transport = rt }
}

// WithRateLimiter replaces the request pacing.
func WithRateLimiter(l *RateLimiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// NewClient creates a client for baseURL, e.g. https://graph.microsoft.com/v1.0.
func NewClient(baseURL string, tokens driven.TokenProvider, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		tokens:    tokens,
		transport: http.DefaultTransport,
		timeout:   DefaultTimeout,
		limiter:   NewRateLimiter(domain.DefaultRequestsPerSecond),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ResolveItem looks up the drive item at path.
func (c *Client) ResolveItem(ctx context.Context, path string) (domain.DocumentRef, error) {
	var item struct {
		ID              string `json:"id"`
		ParentReference struct {
			DriveID string `json:"driveId"`
		} `json:"parentReference"`
	}
	err := c.do(ctx, http.MethodGet, c.baseURL+escapePath(path), "", nil, &item)
	if err != nil {
		if IsNotFound(err) {
			return domain.DocumentRef{}, &domain.NotFoundError{Path: path, Err: err}
		}
		return domain.DocumentRef{}, err
	}
	if item.ID == "" || item.ParentReference.DriveID == "" {
		return domain.DocumentRef{}, &domain.NotFoundError{Path: path, Err: errors.New("response has no drive item")}
	}
	return domain.DocumentRef{DriveID: item.ParentReference.DriveID, ItemID: item.ID}, nil
}

// CreateSession opens a workbook session.
func (c *Client) CreateSession(ctx context.Context, doc domain.DocumentRef, persist bool) (domain.SessionHandle, error) {
	var resp struct {
		ID string `json:"id"`
	}
	body := map[string]bool{"persistChanges": persist}
	if err := c.do(ctx, http.MethodPost, c.workbookURL(doc)+"/createSession", "", body, &resp); err != nil {
		return domain.SessionHandle{}, &domain.SessionError{Op: "create", Err: err}
	}
	if resp.ID == "" {
		return domain.SessionHandle{}, &domain.SessionError{Op: "create", Err: errors.New("no session id returned")}
	}
	return domain.SessionHandle{ID: resp.ID, Persist: persist}, nil
}

// CloseSession closes a workbook session.
func (c *Client) CloseSession(ctx context.Context, doc domain.DocumentRef, session domain.SessionHandle) error {
	if err := c.do(ctx, http.MethodPost, c.workbookURL(doc)+"/closeSession", session.ID, nil, nil); err != nil {
		return &domain.SessionError{Op: "close", Err: err}
	}
	return nil
}

// PatchRange writes values into a range.
func (c *Client) PatchRange(
	ctx context.Context, doc domain.DocumentRef, session domain.SessionHandle,
	addr domain.CellAddress, values domain.Grid,
) error {
	body := map[string]domain.Grid{"values": values}
	err := c.do(ctx, http.MethodPatch, c.rangeURL(doc, addr), session.ID, body, nil)
	return cellAccessError("write", addr, err)
}

// GetRange reads the values of a range.
func (c *Client) GetRange(
	ctx context.Context, doc domain.DocumentRef, session domain.SessionHandle,
	addr domain.CellAddress,
) (domain.Grid, error) {
	var resp struct {
		Values domain.Grid `json:"values"`
	}
	if err := c.do(ctx, http.MethodGet, c.rangeURL(doc, addr)+"?$select=values", session.ID, nil, &resp); err != nil {
		return nil, cellAccessError("read", addr, err)
	}
	if resp.Values == nil {
		return domain.Grid{}, nil
	}
	return resp.Values, nil
}

// Calculate recalculates the workbook.
func (c *Client) Calculate(
	ctx context.Context, doc domain.DocumentRef, session domain.SessionHandle,
	calcType domain.CalculationType,
) error {
	body := map[string]domain.CalculationType{"calculationType": calcType}
	err := c.do(ctx, http.MethodPost, c.workbookURL(doc)+"/application/calculate", session.ID, body, nil)
	return cellAccessError("recalculate", domain.CellAddress{}, err)
}

func (c *Client) workbookURL(doc domain.DocumentRef) string {
	return fmt.Sprintf("%s/drives/%s/items/%s/workbook",
		c.baseURL, url.PathEscape(doc.DriveID), url.PathEscape(doc.ItemID))
}

func (c *Client) rangeURL(doc domain.DocumentRef, addr domain.CellAddress) string {
	sheet := strings.ReplaceAll(addr.Sheet, "'", "''")
	rng := strings.ReplaceAll(addr.Range, "'", "''")
	return fmt.Sprintf("%s/worksheets('%s')/range(address='%s')",
		c.workbookURL(doc), url.PathEscape(sheet), url.PathEscape(rng))
}

// do sends one request. in is encoded as JSON when non-nil; out is decoded
// from a 2xx body when non-nil.
func (c *Client) do(ctx context.Context, method, rawURL, sessionID string, in, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionID != "" {
		req.Header.Set(SessionHeader, sessionID)
	}

	client := &http.Client{
		Timeout: c.timeout,
		Transport: &oauth2.Transport{
			Source: NewTokenSource(ctx, c.tokens),
			Base:   c.transport,
		},
	}
	resp, err := client.Do(req)
	if err != nil {
		var authErr *domain.AuthenticationError
		if errors.As(err, &authErr) {
			return authErr
		}
		if errors.Is(err, domain.ErrAuthInProgress) {
			return domain.ErrAuthInProgress
		}
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyRead))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	logger.Debug("graph %s %s -> %d", method, rawURL, resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			c.limiter.RecordRateLimitError(parseRetryAfter(resp.Header.Get("Retry-After")))
		case http.StatusUnauthorized:
			if inv, ok := c.tokens.(invalidator); ok {
				inv.Invalidate()
			}
		}
		return newAPIError(resp.StatusCode, rawURL, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// cellAccessError maps a request failure to the domain error, keeping the
// status and a truncated body.
func cellAccessError(op string, addr domain.CellAddress, err error) error {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return domain.NewCellAccessError(op, addr.String(), apiErr.StatusCode, apiErr.Body, apiErr)
	}
	return &domain.CellAccessError{Op: op, Address: addr.String(), Err: err}
}

// escapePath escapes each segment of a drive path, keeping the ':' that
// separates the item path.
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
