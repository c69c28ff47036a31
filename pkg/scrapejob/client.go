package scrapejob

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-social-ingestor/pkg/httpclient"
	"golang.org/x/time/rate"
)

// Package scrapejob implements the client for the remote actor-run scraping
// service: job submission, status polling, result retrieval, and cleanup.

// Status is the remote job status string, replicated verbatim.
type Status string

const (
	StatusReady     Status = "READY"
	StatusRunning   Status = "RUNNING"
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
	StatusAborted   Status = "ABORTED"
	StatusTimedOut  Status = "TIMED-OUT"
)

// Terminal reports whether the status is final on the remote side.
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusAborted, StatusTimedOut:
		return true
	}
	return false
}

// JobRun summarizes one remote actor run.
type JobRun struct {
	ID          string
	Status      Status
	StartedAt   time.Time
	ResultCount int
}

// Logger defines the logging surface the client relies on.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) InfoObj(string, string, interface{})  {}
func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}
func (noopLogger) ErrorObj(string, string, interface{}) {}

// Observer receives client activity notifications (e.g., for metrics).
type Observer interface {
	JobSubmitted(actorID string)
	RequestRetried()
}

type noopObserver struct{}

func (noopObserver) JobSubmitted(string) {}
func (noopObserver) RequestRetried()     {}

// Config carries construction parameters for the Client.
type Config struct {
	BaseURL        string
	Token          string
	MinInterval    time.Duration // global minimum spacing between outbound requests
	RetryAttempts  int
	RetryBase      time.Duration
	PollInterval   time.Duration
	MaxWait        time.Duration
	RequestTimeout time.Duration
	HTTP           httpclient.Client
	Log            Logger
	Observer       Observer
}

const (
	defaultMinInterval    = time.Second
	defaultRetryAttempts  = 3
	defaultRetryBase      = 2 * time.Second
	defaultPollInterval   = 5 * time.Second
	defaultMaxWait        = 10 * time.Minute
	defaultRequestTimeout = 30 * time.Second
)

// Client talks to the remote scraping service. One instance is shared by all
// collectors; its rate limiter is the single global throttle.
type Client struct {
	http         httpclient.Client
	baseURL      string
	token        string
	limiter      *rate.Limiter
	attempts     int
	retryBase    time.Duration
	pollInterval time.Duration
	maxWait      time.Duration
	log          Logger
	obs          Observer
}

// New builds a Client, applying defaults for unset config fields.
func New(cfg Config) *Client {
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = defaultMinInterval
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = defaultRetryAttempts
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = defaultRetryBase
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = defaultMaxWait
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.HTTP == nil {
		cfg.HTTP = httpclient.NewRestyClient(cfg.RequestTimeout)
	}
	if cfg.Log == nil {
		cfg.Log = noopLogger{}
	}
	if cfg.Observer == nil {
		cfg.Observer = noopObserver{}
	}

	return &Client{
		http:         cfg.HTTP,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		token:        cfg.Token,
		limiter:      rate.NewLimiter(rate.Every(cfg.MinInterval), 1),
		attempts:     cfg.RetryAttempts,
		retryBase:    cfg.RetryBase,
		pollInterval: cfg.PollInterval,
		maxWait:      cfg.MaxWait,
		log:          cfg.Log,
		obs:          cfg.Observer,
	}
}

// StartJob submits an actor run and returns its run id.
func (c *Client) StartJob(ctx context.Context, actorID string, input map[string]any) (string, error) {
	if strings.TrimSpace(actorID) == "" {
		return "", fmt.Errorf("actor id is empty")
	}

	body, err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/acts/%s/runs", actorID), map[string]any{"run": input}, nil)
	if err != nil {
		return "", err
	}

	var env struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return "", fmt.Errorf("decode start-run response: %w", err)
	}
	if env.Data.ID == "" {
		return "", fmt.Errorf("start-run response missing run id")
	}

	c.obs.JobSubmitted(actorID)
	c.log.InfoObj("actor run started", "job_run", map[string]any{
		"actor_id": actorID,
		"run_id":   env.Data.ID,
	})
	return env.Data.ID, nil
}

// GetRun fetches the current state of an actor run.
func (c *Client) GetRun(ctx context.Context, runID string) (JobRun, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/actor-runs/"+runID, nil, nil)
	if err != nil {
		return JobRun{}, err
	}

	var env struct {
		Data struct {
			ID        string    `json:"id"`
			Status    Status    `json:"status"`
			StartedAt time.Time `json:"startedAt"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return JobRun{}, fmt.Errorf("decode run-status response: %w", err)
	}

	run := JobRun{ID: env.Data.ID, Status: env.Data.Status, StartedAt: env.Data.StartedAt}
	if run.ID == "" {
		run.ID = runID
	}
	return run, nil
}

// RunStatus returns the remote status of an actor run.
func (c *Client) RunStatus(ctx context.Context, runID string) (Status, error) {
	run, err := c.GetRun(ctx, runID)
	if err != nil {
		return "", err
	}
	return run.Status, nil
}

// WaitForCompletion polls the run until it reaches SUCCEEDED. It returns a
// *JobFailedError on any other terminal status and a *JobTimeoutError once
// maxWait has elapsed without a terminal SUCCEEDED. Zero durations fall back
// to the client defaults.
func (c *Client) WaitForCompletion(ctx context.Context, runID string, pollInterval, maxWait time.Duration) error {
	if pollInterval <= 0 {
		pollInterval = c.pollInterval
	}
	if maxWait <= 0 {
		maxWait = c.maxWait
	}

	start := time.Now()
	for {
		status, err := c.RunStatus(ctx, runID)
		if err != nil {
			return err
		}

		if status == StatusSucceeded {
			c.log.InfoObj("actor run completed", "job_run", map[string]any{
				"run_id":     runID,
				"elapsed_ms": time.Since(start).Milliseconds(),
			})
			return nil
		}
		if status.Terminal() {
			return &JobFailedError{RunID: runID, Status: status}
		}
		if time.Since(start) > maxWait {
			return &JobTimeoutError{RunID: runID, MaxWait: maxWait.String()}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// FetchResults retrieves the dataset items for a finished run. When clean is
// set, the remote run is deleted afterwards on a best-effort basis: a cleanup
// failure is logged, never returned.
func (c *Client) FetchResults(ctx context.Context, runID string, limit int, clean bool) ([]json.RawMessage, error) {
	var params url.Values
	if limit > 0 {
		params = url.Values{"limit": []string{strconv.Itoa(limit)}}
	}

	body, err := c.doRequest(ctx, http.MethodGet, "/actor-runs/"+runID+"/dataset/items", nil, params)
	if err != nil {
		return nil, err
	}

	var env struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode dataset items: %w", err)
	}

	if clean {
		if err := c.DeleteRun(ctx, runID); err != nil {
			c.log.WarnObj("actor run cleanup failed", "job_run_cleanup", map[string]any{
				"run_id": runID,
				"error":  err.Error(),
			})
		}
	}
	return env.Data, nil
}

// DeleteRun removes an actor run on the remote side.
func (c *Client) DeleteRun(ctx context.Context, runID string) error {
	_, err := c.doRequest(ctx, http.MethodDelete, "/actor-runs/"+runID, nil, nil)
	return err
}

// RunToCompletion submits a run, waits for it to succeed, and returns its
// dataset items, cleaning up the remote run afterwards.
func (c *Client) RunToCompletion(ctx context.Context, actorID string, input map[string]any, limit int) ([]json.RawMessage, error) {
	runID, err := c.StartJob(ctx, actorID, input)
	if err != nil {
		return nil, err
	}
	if err := c.WaitForCompletion(ctx, runID, 0, 0); err != nil {
		return nil, err
	}
	items, err := c.FetchResults(ctx, runID, limit, true)
	if err != nil {
		return nil, err
	}
	c.log.InfoObj("actor run results fetched", "job_run", map[string]any{
		"run_id":       runID,
		"result_count": len(items),
	})
	return items, nil
}

// doRequest performs one logical API call: each physical attempt first waits
// on the shared limiter, then transient failures (network, 5xx, 429) are
// retried with exponential backoff while other 4xx fail immediately.
func (c *Client) doRequest(ctx context.Context, method, path string, body any, params url.Values) ([]byte, error) {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	headers := map[string]string{"Authorization": "Bearer " + c.token}

	var lastErr error
	for attempt := 0; attempt < c.attempts; attempt++ {
		if attempt > 0 {
			c.obs.RequestRetried()
			delay := c.retryBase << (attempt - 1)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := c.http.Execute(ctx, method, target, headers, body)
		if err != nil {
			lastErr = err
			c.log.WarnObj("scrape api connection error", "scrape_api_error", map[string]any{
				"method":  method,
				"path":    path,
				"attempt": attempt + 1,
				"error":   err.Error(),
			})
			continue
		}

		code := resp.StatusCode()
		if code < http.StatusBadRequest {
			return resp.Body(), nil
		}

		snippet := responseSnippet(resp.Body())
		c.log.WarnObj("scrape api error response", "scrape_api_error", map[string]any{
			"method":  method,
			"path":    path,
			"status":  code,
			"attempt": attempt + 1,
			"body":    snippet,
		})

		if code >= http.StatusBadRequest && code < http.StatusInternalServerError && code != http.StatusTooManyRequests {
			return nil, &PermanentError{StatusCode: code, Body: snippet}
		}
		lastErr = fmt.Errorf("status %d: %s", code, snippet)
	}

	return nil, &TransientError{Attempts: c.attempts, Err: lastErr}
}

// responseSnippet truncates a response body for log and error messages.
func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
