package messenger

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
	userbotContentType = "application/json"

	sendPathFmt    = "/workspaces/%s/messages"
	contactPathFmt = "/workspaces/%s/contacts/import"
)

// UserbotClient talks to the messaging userbot service holding the actual
// MTProto sessions. It implements Transport.
type UserbotClient struct {
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	BaseURL    string
}

func NewUserbotClient(baseURL, token string, logger *zap.Logger) *UserbotClient {
	return &UserbotClient{
		token:   token,
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

type sendRequest struct {
	Username string `json:"username,omitempty"`
	PeerID   string `json:"peerId,omitempty"`
	Text     string `json:"text"`
}

type sendResponse struct {
	MessageID string `json:"messageId"`
	ChatID    string `json:"chatId"`
}

func (c *UserbotClient) SendByUsername(ctx context.Context, session *Session, username, text string) (*SendResult, error) {
	return c.send(ctx, session, &sendRequest{Username: username, Text: text})
}

func (c *UserbotClient) SendByPeer(ctx context.Context, session *Session, peerID, text string) (*SendResult, error) {
	return c.send(ctx, session, &sendRequest{PeerID: peerID, Text: text})
}

func (c *UserbotClient) send(ctx context.Context, session *Session, body *sendRequest) (*SendResult, error) {
	url := c.BaseURL + fmt.Sprintf(sendPathFmt, session.Workspace)

	var result sendResponse
	if err := c.post(ctx, url, body, &result); err != nil {
		return nil, err
	}
	if result.ChatID == "" {
		return nil, fmt.Errorf("userbot returned no chat id")
	}

	return &SendResult{MessageID: result.MessageID, ChatID: result.ChatID}, nil
}

// ImportContact registers the phone number in the workspace address book and
// returns the peer id it resolves to.
func (c *UserbotClient) ImportContact(ctx context.Context, session *Session, phone string) (string, error) {
	url := c.BaseURL + fmt.Sprintf(contactPathFmt, session.Workspace)

	var result struct {
		PeerID string `json:"peerId"`
	}
	if err := c.post(ctx, url, map[string]string{"phone": phone}, &result); err != nil {
		return "", err
	}
	if result.PeerID == "" {
		return "", fmt.Errorf("phone %s did not resolve to a peer", phone)
	}

	return result.PeerID, nil
}

func (c *UserbotClient) post(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	req.Header.Set("Content-Type", userbotContentType)

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
