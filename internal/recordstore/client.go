// Package recordstore is the HTTP adapter for the remote employee store. It
// is the only place that knows the store's external field names.
package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"employee-directory/internal/metrics"
	"employee-directory/internal/models"
)

// Operation names, also used as metric labels.
const (
	OpList   = "list"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// ErrEmptyID is returned by Update and Delete before any request is made.
var ErrEmptyID = errors.New("recordstore: empty id")

// RemoteFailure is any transport failure or non-success response.
type RemoteFailure struct {
	Op         string
	StatusCode int // 0 when no usable response arrived
	Err        error
}

func (e *RemoteFailure) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("recordstore: %s: http %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("recordstore: %s: %v", e.Op, e.Err)
}

func (e *RemoteFailure) Unwrap() error { return e.Err }

// NotFound reports whether the store answered 404. Callers treat it like
// any other failure; it is exposed for logging.
func (e *RemoteFailure) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsRemoteFailure reports whether err wraps a *RemoteFailure.
func IsRemoteFailure(err error) bool {
	var rf *RemoteFailure
	return errors.As(err, &rf)
}

// Client talks to one employee resource path, e.g.
// https://host/api/employee.
type Client struct {
	baseURL string
	client  *http.Client
	metrics *metrics.Metrics
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.client = &http.Client{Timeout: timeout}
		}
	}
}

// WithMetrics records request counts and latency.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient constructs a client for the resource at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("recordstore: empty base url")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("recordstore: invalid base url: %w", err)
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// record is the store's wire shape.
type record struct {
	ID          flexibleID `json:"ID,omitempty"`
	FirstName   string     `json:"FIRST_NAME"`
	LastName    string     `json:"LAST_NAME"`
	Department  string     `json:"DEPARTMENT"`
	DateOfBirth string     `json:"DATE_OF_BIRTH"`
}

// flexibleID accepts the identifier as a JSON string or number.
type flexibleID string

func (id *flexibleID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("recordstore: unsupported id %s", data)
	}
	*id = flexibleID(n.String())
	return nil
}

func toEmployee(r record) models.Employee {
	return models.Employee{
		ID:         string(r.ID),
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Department: r.Department,
		Birthdate:  models.DatePart(r.DateOfBirth),
	}
}

func fromEmployee(e models.Employee) record {
	return record{
		FirstName:   e.FirstName,
		LastName:    e.LastName,
		Department:  e.Department,
		DateOfBirth: e.Birthdate,
	}
}

// List fetches the whole collection in store order.
func (c *Client) List(ctx context.Context) ([]models.Employee, error) {
	var resp []record
	if err := c.doJSON(ctx, OpList, http.MethodGet, "", nil, &resp); err != nil {
		return nil, err
	}
	out := make([]models.Employee, 0, len(resp))
	for _, r := range resp {
		out = append(out, toEmployee(r))
	}
	return out, nil
}

// Create sends a draft and returns the stored record.
func (c *Client) Create(ctx context.Context, draft models.Employee) (models.Employee, error) {
	var resp record
	if err := c.doJSON(ctx, OpCreate, http.MethodPost, "", fromEmployee(draft), &resp); err != nil {
		return models.Employee{}, err
	}
	return toEmployee(resp), nil
}

// Update replaces the record with the given id.
func (c *Client) Update(ctx context.Context, id string, e models.Employee) (models.Employee, error) {
	if id == "" {
		return models.Employee{}, ErrEmptyID
	}
	var resp record
	if err := c.doJSON(ctx, OpUpdate, http.MethodPut, "/"+url.PathEscape(id), fromEmployee(e), &resp); err != nil {
		return models.Employee{}, err
	}
	out := toEmployee(resp)
	if out.ID == "" {
		// some stores answer an update with an empty body
		out = e
		out.ID = id
	}
	return out, nil
}

// Delete removes the record with the given id.
func (c *Client) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}
	return c.doJSON(ctx, OpDelete, http.MethodDelete, "/"+url.PathEscape(id), nil, nil)
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, body any, out any) (err error) {
	started := time.Now()
	defer func() { c.metrics.ObserveRemote(op, started, err) }()

	var reqBody io.Reader
	if body != nil {
		payload, merr := json.Marshal(body)
		if merr != nil {
			return merr
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return &RemoteFailure{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &RemoteFailure{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &RemoteFailure{Op: op, StatusCode: resp.StatusCode, Err: errors.New(strconv.Itoa(resp.StatusCode) + " " + http.StatusText(resp.StatusCode))}
	}
	if out == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RemoteFailure{Op: op, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		// update may answer with no body; a list must always carry one
		if op == OpList {
			return &RemoteFailure{Op: op, Err: errors.New("empty response body")}
		}
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &RemoteFailure{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
