// Package resend sends transactional email through the Resend HTTP API.
package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xavierca1/donor-crm/internal/usecase"
)

const DefaultBaseURL = "https://api.resend.com"

type Client struct {
	baseURL string
	apiKey  string
	from    string
	http    *http.Client
}

func NewClient(apiKey, baseURL, from string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		from:    from,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts one message and returns the Resend email id.
func (c *Client) Send(ctx context.Context, msg usecase.OutboundEmail) (string, error) {
	if msg.To == "" {
		return "", errors.New("resend: recipient is required")
	}

	payload := sendEmailRequest{
		From:    c.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("resend: marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("resend: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", decodeError(resp)
	}

	var out sendEmailResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("resend: decode response: %w", err)
	}
	if out.ID == "" {
		return "", errors.New("resend: response missing email id")
	}
	return out.ID, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var apiErr errorResponse
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Message != "" {
		return fmt.Errorf("resend: status %d: %s", resp.StatusCode, apiErr.Message)
	}
	return fmt.Errorf("resend: status %d", resp.StatusCode)
}
