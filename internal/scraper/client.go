// Package scraper talks to the external scraping service that imports fresh
// candidate responses from the job board. The service holds one browser
// session and may stop on a human verification challenge mid-run.
package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	scraperContentType = "application/json"

	runsPath      = "/runs"
	runStatusFmt  = "/runs/%s"
	statusWaiting = "awaiting_verification"
	statusFailed  = "failed"
)

type Client struct {
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	BaseURL    string
}

func New(baseURL, token string, logger *zap.Logger) *Client {
	return &Client{
		token:   token,
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// Run describes one scrape run on the backend.
type Run struct {
	ID        string `json:"runId"`
	Status    string `json:"status"`
	Collected int    `json:"collected"`
}

// Waiting reports whether the run is stopped on a verification challenge.
func (r *Run) Waiting() bool {
	return r.Status == statusWaiting
}

// Trigger starts a scrape run over the vacancy's responses.
func (c *Client) Trigger(ctx context.Context, vacancyID string) (*Run, error) {
	payload, err := json.Marshal(map[string]string{"vacancyId": vacancyID})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+runsPath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", scraperContentType)

	var run Run
	if err := c.do(req, &run); err != nil {
		return nil, err
	}
	if run.ID == "" {
		return nil, fmt.Errorf("scraper returned no run id")
	}

	return &run, nil
}

// Status fetches the current state of a run.
func (c *Client) Status(ctx context.Context, runID string) (*Run, error) {
	url := c.BaseURL + fmt.Sprintf(runStatusFmt, runID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	var run Run
	if err := c.do(req, &run); err != nil {
		return nil, err
	}
	if run.Status == statusFailed {
		return nil, fmt.Errorf("run %s failed on the scraper side", runID)
	}

	return &run, nil
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))

	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
