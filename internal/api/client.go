// Package api is the HTTP transport for the plan API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/pablasso/smartplan/internal/plan"
	"github.com/pablasso/smartplan/internal/telemetry"
	"github.com/pablasso/smartplan/internal/version"
)

// StatusError is a request the server answered with a failure, either a
// non-2xx status or a 2xx body carrying an "error" field.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}

// Client talks to the plan API. It applies no timeout and never retries.
type Client struct {
	base      string
	http      *http.Client
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New returns a client for the API at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid API URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid API URL %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid API URL %q: missing host", baseURL)
	}
	u.RawQuery = ""
	u.Fragment = ""

	c := &Client{
		base:      strings.TrimRight(u.String(), "/"),
		http:      &http.Client{},
		userAgent: "smartplan/" + version.Version,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalised API base URL.
func (c *Client) BaseURL() string { return c.base }

// endpoint joins escaped path segments onto the base URL.
func (c *Client) endpoint(query url.Values, segments ...string) string {
	var b strings.Builder
	b.WriteString(c.base)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	if len(query) > 0 {
		b.WriteByte('?')
		b.WriteString(query.Encode())
	}
	return b.String()
}

// ListPlans returns every plan summary.
func (c *Client) ListPlans(ctx context.Context) ([]plan.Summary, error) {
	var out struct {
		Plans []plan.Summary `json:"plans"`
	}
	if err := c.do(ctx, "ListPlans", http.MethodGet, c.endpoint(nil, "api", "plans"), &out); err != nil {
		return nil, err
	}
	if out.Plans == nil {
		out.Plans = []plan.Summary{}
	}
	return out.Plans, nil
}

// CreatePlan submits a goal and returns the new plan's id.
func (c *Client) CreatePlan(ctx context.Context, goal string) (string, error) {
	var out struct {
		PlanID json.RawMessage `json:"plan_id"`
	}
	u := c.endpoint(url.Values{"goal": {goal}}, "api", "plan")
	if err := c.do(ctx, "CreatePlan", http.MethodPost, u, &out); err != nil {
		return "", err
	}
	id, err := plan.DecodeID(out.PlanID)
	if err != nil {
		return "", fmt.Errorf("decode create response: %w", err)
	}
	if id == "" {
		return "", fmt.Errorf("decode create response: missing plan_id")
	}
	return id, nil
}

// GetPlan fetches a plan with its tasks ordered by id.
func (c *Client) GetPlan(ctx context.Context, id string) (*plan.Plan, error) {
	var p plan.Plan
	if err := c.do(ctx, "GetPlan", http.MethodGet, c.endpoint(nil, "api", "plan", id), &p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		p.ID = id
	}
	p.SortTasks()
	return &p, nil
}

// UpdateTaskStatus sets one task's status.
func (c *Client) UpdateTaskStatus(ctx context.Context, planID string, taskID int, status plan.Status) error {
	u := c.endpoint(url.Values{"status": {string(status)}}, "api", "task", planID, strconv.Itoa(taskID), "status")
	return c.do(ctx, "UpdateTaskStatus", http.MethodPatch, u, nil)
}

// DeletePlan removes a plan and its tasks.
func (c *Client) DeletePlan(ctx context.Context, id string) error {
	return c.do(ctx, "DeletePlan", http.MethodDelete, c.endpoint(nil, "api", "plan", id), nil)
}

// GetProgress fetches a plan's status report.
func (c *Client) GetProgress(ctx context.Context, id string) (plan.Report, error) {
	var r plan.Report
	err := c.do(ctx, "GetProgress", http.MethodGet, c.endpoint(nil, "api", "plan", id, "progress"), &r)
	return r, err
}

// ExportURL returns the CSV download URL for a plan without requesting it.
func (c *Client) ExportURL(id string) string {
	return c.endpoint(nil, "api", "plan", id, "export", "csv")
}

// ExportCSV copies the CSV export for a plan to w unchanged.
func (c *Client) ExportCSV(ctx context.Context, id string, w io.Writer) error {
	ctx, span := c.start(ctx, "ExportCSV", http.MethodGet)
	defer span.End()

	resp, err := c.send(ctx, http.MethodGet, c.ExportURL(id))
	if err != nil {
		return finish(span, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(semconv.HTTPResponseStatusCode(resp.StatusCode))

	// The export is opaque unless the server answered with a JSON error.
	if !isSuccess(resp.StatusCode) || strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return finish(span, fmt.Errorf("read response: %w", err))
		}
		if err := checkBody(resp.StatusCode, body); err != nil {
			return finish(span, err)
		}
		_, err = w.Write(body)
		return finish(span, err)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return finish(span, fmt.Errorf("copy export: %w", err))
	}
	return nil
}

func (c *Client) start(ctx context.Context, op, method string) (context.Context, trace.Span) {
	return otel.Tracer(telemetry.InstrumentationName).Start(ctx, "api."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.HTTPRequestMethodKey.String(method),
			attribute.String("smartplan.operation", op),
		),
	)
}

func (c *Client) send(ctx context.Context, method, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, u, err)
	}
	return resp, nil
}

// do performs one request and decodes a JSON body into out when out is
// non-nil.
func (c *Client) do(ctx context.Context, op, method, u string, out any) error {
	ctx, span := c.start(ctx, op, method)
	defer span.End()

	resp, err := c.send(ctx, method, u)
	if err != nil {
		return finish(span, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(semconv.HTTPResponseStatusCode(resp.StatusCode))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return finish(span, fmt.Errorf("read response: %w", err))
	}
	if err := checkBody(resp.StatusCode, body); err != nil {
		return finish(span, err)
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return finish(span, fmt.Errorf("decode %s response: %w", op, err))
	}
	return nil
}

func isSuccess(code int) bool { return code >= 200 && code < 300 }

// checkBody turns non-2xx statuses and 2xx {"error": ...} bodies into
// *StatusError.
func checkBody(code int, body []byte) error {
	var envelope struct {
		Error  string `json:"error"`
		Detail any    `json:"detail"`
	}
	_ = json.Unmarshal(body, &envelope)

	if isSuccess(code) {
		if envelope.Error != "" {
			return &StatusError{Code: code, Message: envelope.Error}
		}
		return nil
	}

	msg := envelope.Error
	if msg == "" && envelope.Detail != nil {
		msg = fmt.Sprint(envelope.Detail)
	}
	if msg == "" {
		msg = truncate(strings.TrimSpace(string(body)), maxErrorBody)
	}
	return &StatusError{Code: code, Message: msg}
}

// maxErrorBody caps how much of a non-JSON error body ends up in a message.
const maxErrorBody = 200

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func finish(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
