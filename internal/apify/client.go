package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"rutregistro/internal/config"
)

// Client is the HTTP implementation of Corroborator against the Apify
// actor API. It is safe for concurrent use; each Corroborate call carries
// its own run context and no state survives the call.
type Client struct {
	baseURL    string
	token      string
	actorID    string
	policy     RetryPolicy
	httpClient *http.Client

	// sleep is injectable so tests can run the polling loop on a fake clock.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient builds a corroboration client from configuration. The per-call
// HTTP timeout applies to every network step (run creation, each status
// poll, result fetch); expiry surfaces as OutcomeTransportError.
func NewClient(cfg config.ApifyConfig) *Client {
	policy := RetryPolicy{
		Interval:    time.Duration(cfg.PollIntervalSec) * time.Second,
		MaxAttempts: cfg.MaxAttempts,
	}
	if policy.Interval <= 0 {
		policy.Interval = DefaultRetryPolicy.Interval
	}
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = DefaultRetryPolicy.MaxAttempts
	}

	timeout := time.Duration(cfg.HTTPTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		actorID: cfg.ActorID,
		policy:  policy,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		sleep: sleepCtx,
	}
}

var _ Corroborator = (*Client)(nil)

type runRequest struct {
	SearchType       string   `json:"searchType"`
	SearchTerms      []string `json:"searchTerms"`
	SearchByLocation bool     `json:"searchByLocation"`
}

type runResponse struct {
	Data struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"data"`
}

type datasetItem struct {
	Name     string `json:"name"`
	LastName string `json:"lastName"`
}

// Actor run statuses. Anything that is neither SUCCEEDED nor FAILED keeps
// the polling loop going until the attempt budget runs out.
const (
	statusSucceeded = "SUCCEEDED"
	statusFailed    = "FAILED"
)

// Corroborate starts a lookup run for the canonical RUT, polls it to a
// terminal state under the retry policy, and classifies the dataset.
func (c *Client) Corroborate(ctx context.Context, canonicalRUT string) Result {
	if c.token == "" {
		return Result{Outcome: OutcomeConfigError}
	}

	runID, err := c.startRun(ctx, canonicalRUT)
	if err != nil {
		return Result{Outcome: OutcomeTransportError, Err: err}
	}

	for attempt := 0; attempt < c.policy.MaxAttempts; attempt++ {
		if err := c.sleep(ctx, c.policy.Interval); err != nil {
			return Result{Outcome: OutcomeTransportError, Err: err}
		}

		status, err := c.runStatus(ctx, runID)
		if err != nil {
			return Result{Outcome: OutcomeTransportError, Err: err}
		}
		switch status {
		case statusSucceeded:
			return c.classify(ctx, runID)
		case statusFailed:
			return Result{Outcome: OutcomeServiceFailed}
		}
	}

	return Result{Outcome: OutcomeTimedOut}
}

func (c *Client) startRun(ctx context.Context, canonicalRUT string) (string, error) {
	body, err := json.Marshal(runRequest{
		SearchType:  "Rut",
		SearchTerms: []string{canonicalRUT},
	})
	if err != nil {
		return "", fmt.Errorf("encode run request: %w", err)
	}

	endpoint := c.endpoint(fmt.Sprintf("/v2/acts/%s/run", c.actorID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build run request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var run runResponse
	if err := c.do(req, &run); err != nil {
		return "", fmt.Errorf("start actor run: %w", err)
	}
	if run.Data.ID == "" {
		return "", fmt.Errorf("actor run response missing run id")
	}
	return run.Data.ID, nil
}

func (c *Client) runStatus(ctx context.Context, runID string) (string, error) {
	endpoint := c.endpoint("/v2/actor-runs/" + runID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build status request: %w", err)
	}

	var run runResponse
	if err := c.do(req, &run); err != nil {
		return "", fmt.Errorf("fetch run status: %w", err)
	}
	return run.Data.Status, nil
}

// classify fetches the run's dataset and decides Found vs NotFound: the
// lookup succeeded only if the first item names a person fully.
func (c *Client) classify(ctx context.Context, runID string) Result {
	endpoint := c.endpoint("/v2/actor-runs/" + runID + "/datasets/last/items")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{Outcome: OutcomeTransportError, Err: fmt.Errorf("build dataset request: %w", err)}
	}

	var items []datasetItem
	if err := c.do(req, &items); err != nil {
		return Result{Outcome: OutcomeTransportError, Err: fmt.Errorf("fetch dataset: %w", err)}
	}

	if len(items) == 0 || items[0].Name == "" || items[0].LastName == "" {
		return Result{Outcome: OutcomeNotFound}
	}
	return Result{Outcome: OutcomeFound, Name: items[0].Name, LastName: items[0].LastName}
}

func (c *Client) endpoint(path string) string {
	q := url.Values{}
	q.Set("token", c.token)
	return c.baseURL + path + "?" + q.Encode()
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("apify responded with status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
