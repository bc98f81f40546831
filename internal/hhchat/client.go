// Package hhchat implements the job-board native chat used as the last
// delivery fallback when no messaging-app identifier works.
package hhchat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"context"

	"go.uber.org/zap"
)

const (
	apiURL      = "https://api.hh.ru"
	contentType = "application/json"
	userAgent   = "hrassist/recruiter"

	messagesPathFmt = "/negotiations/%s/messages"
)

type Client struct {
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(token string, logger *zap.Logger) *Client {
	return &Client{
		token:  token,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:    logger,
		UserAgent: userAgent,
	}
}

// PostMessage sends text into the negotiation thread identified by threadID.
func (c *Client) PostMessage(ctx context.Context, threadID, text string) error {
	url := c.APIURL + fmt.Sprintf(messagesPathFmt, threadID)

	payload, err := json.Marshal(map[string]string{"message": text})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req = c.setHeaders(req)
	req.Header.Set("Content-Type", contentType)

	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	return nil
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	req.Header.Set("User-Agent", c.UserAgent)

	return req
}
