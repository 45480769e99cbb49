// Package apify is a minimal client for the Apify actor platform: start an
// actor run, wait for it to finish, and page through its dataset.
package apify

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

	"github.com/tidwall/gjson"

	"github.com/amishk599/jobfinder/internal/model"
)

// DefaultBaseURL is the public Apify API.
const DefaultBaseURL = "https://api.apify.com"

// Run statuses reported by the platform.
const (
	StatusReady     = "READY"
	StatusRunning   = "RUNNING"
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
	StatusTimedOut  = "TIMED-OUT"
	StatusAborted   = "ABORTED"
)

// ErrRunFailed is returned when an actor run ends in any terminal state
// other than SUCCEEDED.
var ErrRunFailed = errors.New("actor run did not succeed")

// ErrRunTimedOut matches runs that hit the platform timeout. It also matches
// ErrRunFailed.
var ErrRunTimedOut = fmt.Errorf("%w: timed out", ErrRunFailed)

// ResidentialProxy is the proxy block every job board actor is started with.
var ResidentialProxy = map[string]any{
	"useApifyProxy":    true,
	"apifyProxyGroups": []string{"RESIDENTIAL"},
}

// Run is the subset of an actor run object the client cares about.
type Run struct {
	ID               string `json:"id"`
	ActID            string `json:"actId"`
	Status           string `json:"status"`
	DefaultDatasetID string `json:"defaultDatasetId"`
}

// Terminal reports whether the run has stopped.
func (r Run) Terminal() bool {
	switch r.Status {
	case StatusSucceeded, StatusFailed, StatusTimedOut, StatusAborted:
		return true
	}
	return false
}

// Options tune run waiting and dataset paging.
type Options struct {
	// WaitForFinish is how long the server may hold each run request open, capped at 60s by Apify.
	WaitForFinish time.Duration
	// PollInterval is the pause between run status requests.
	PollInterval time.Duration
	// PageSize is the number of dataset items fetched per request.
	PageSize int
	// GetRetries is how often a failed GET (poll or dataset page) is repeated
	// on a 429, a 5xx or a network error. Negative disables it.
	GetRetries int
	// GetRetryDelay is the first pause between GET attempts, doubled after each.
	GetRetryDelay time.Duration
}

func (o Options) withDefaults() Options {
	if o.WaitForFinish <= 0 {
		o.WaitForFinish = 60 * time.Second
	}
	if o.WaitForFinish > 60*time.Second {
		o.WaitForFinish = 60 * time.Second
	}
	if o.PollInterval < 0 {
		o.PollInterval = 0
	}
	if o.PageSize <= 0 {
		o.PageSize = 250
	}
	if o.GetRetries == 0 {
		o.GetRetries = 2
	}
	if o.GetRetries < 0 {
		o.GetRetries = 0
	}
	if o.GetRetryDelay <= 0 {
		o.GetRetryDelay = time.Second
	}
	return o
}

// Client talks to the Apify v2 API with a bearer token.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	opts    Options
}

// NewClient creates a client. An empty baseURL means DefaultBaseURL.
func NewClient(baseURL, token string, client *http.Client, opts Options) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  client,
		opts:    opts.withDefaults(),
	}
}

// CallActor starts actorID with input and blocks until the run reaches a
// terminal status. Actor IDs in "user/name" form are accepted.
func (c *Client) CallActor(ctx context.Context, actorID string, input any) (*Run, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("apify: encode input for %s: %w", actorID, err)
	}

	endpoint := fmt.Sprintf("%s/v2/acts/%s/runs?waitForFinish=%d",
		c.baseURL, url.PathEscape(strings.ReplaceAll(actorID, "/", "~")), c.waitSeconds())

	run, err := c.doRun(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("apify: start %s: %w", actorID, err)
	}

	for !run.Terminal() {
		if c.opts.PollInterval > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("apify: wait for run %s: %w", run.ID, ctx.Err())
			case <-time.After(c.opts.PollInterval):
			}
		}
		endpoint := fmt.Sprintf("%s/v2/actor-runs/%s?waitForFinish=%d",
			c.baseURL, url.PathEscape(run.ID), c.waitSeconds())
		run, err = c.doRun(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("apify: poll run: %w", err)
		}
	}

	switch run.Status {
	case StatusSucceeded:
	case StatusTimedOut:
		return run, fmt.Errorf("apify: run %s of %s ended %s: %w", run.ID, actorID, run.Status, ErrRunTimedOut)
	default:
		return run, fmt.Errorf("apify: run %s of %s ended %s: %w", run.ID, actorID, run.Status, ErrRunFailed)
	}
	return run, nil
}

// IterateDataset hands every item of datasetID to fn in order, stopping
// after limit items when limit > 0. An error from fn stops iteration and is
// returned as is.
func (c *Client) IterateDataset(ctx context.Context, datasetID string, limit int, fn func(item gjson.Result) error) error {
	offset := 0
	for {
		pageSize := c.opts.PageSize
		if limit > 0 && limit-offset < pageSize {
			pageSize = limit - offset
		}
		if pageSize <= 0 {
			return nil
		}

		q := url.Values{}
		q.Set("offset", strconv.Itoa(offset))
		q.Set("limit", strconv.Itoa(pageSize))
		q.Set("clean", "true")
		q.Set("format", "json")
		endpoint := fmt.Sprintf("%s/v2/datasets/%s/items?%s", c.baseURL, url.PathEscape(datasetID), q.Encode())

		raw, err := c.do(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("apify: dataset %s at offset %d: %w", datasetID, offset, err)
		}
		if !gjson.ValidBytes(raw) {
			return fmt.Errorf("apify: dataset %s at offset %d: invalid JSON", datasetID, offset)
		}
		page := gjson.ParseBytes(raw)
		if !page.IsArray() {
			return fmt.Errorf("apify: dataset %s at offset %d: expected a JSON array", datasetID, offset)
		}

		items := page.Array()
		for _, item := range items {
			if err := fn(item); err != nil {
				return err
			}
		}
		offset += len(items)
		if len(items) < pageSize {
			return nil
		}
	}
}

func (c *Client) waitSeconds() int {
	return int(c.opts.WaitForFinish / time.Second)
}

// doRun performs a request whose response is {"data": <run>}.
func (c *Client) doRun(ctx context.Context, method, endpoint string, body []byte) (*Run, error) {
	raw, err := c.do(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	var envelope struct {
		Data Run `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode run: %w", err)
	}
	if envelope.Data.ID == "" {
		return nil, errors.New("decode run: missing run id")
	}
	return &envelope.Data, nil
}

// do sends one request. GETs are idempotent here, so transient failures are
// repeated in place; a POST starts a billable run and is sent once.
func (c *Client) do(ctx context.Context, method, endpoint string, body []byte) ([]byte, error) {
	raw, err := c.send(ctx, method, endpoint, body)
	if method != http.MethodGet {
		return raw, err
	}
	delay := c.opts.GetRetryDelay
	for attempt := 1; attempt <= c.opts.GetRetries && transient(ctx, err); attempt++ {
		wait := delay
		var httpErr *model.HTTPError
		if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
			wait = httpErr.RetryAfter
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		delay *= 2
		raw, err = c.send(ctx, method, endpoint, body)
	}
	return raw, err
}

// transient reports whether err is worth repeating the same request for.
func transient(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() != nil {
		return false
	}
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}
	return true
}

func (c *Client) send(ctx context.Context, method, endpoint string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := gjson.GetBytes(raw, "error.message").String()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("unexpected status %d: %s", resp.StatusCode, msg),
		}
	}
	return raw, nil
}
