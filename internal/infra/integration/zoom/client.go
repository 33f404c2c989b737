// Package zoom books meetings through the Zoom REST API using
// server-to-server OAuth.
package zoom

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

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/xavierca1/donor-crm/internal/usecase"
)

const (
	DefaultBaseURL  = "https://api.zoom.us/v2"
	DefaultTokenURL = "https://zoom.us/oauth/token"
)

type Config struct {
	AccountID    string
	ClientID     string
	ClientSecret string
	BaseURL      string
	TokenURL     string
}

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client whose transport fetches and caches account
// credential tokens.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}

	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
		EndpointParams: url.Values{
			"grant_type": {"account_credentials"},
			"account_id": {cfg.AccountID},
		},
	}

	httpClient := cc.Client(context.Background())
	httpClient.Timeout = 15 * time.Second

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
	}
}

func (c *Client) ScheduleMeeting(ctx context.Context, in usecase.MeetingRequest) (*usecase.ScheduledMeeting, error) {
	if in.StartTime.IsZero() {
		return nil, errors.New("zoom: start time is required")
	}
	minutes := int(in.Duration / time.Minute)
	if minutes <= 0 {
		minutes = 30
	}

	payload := createMeetingRequest{
		Topic:     in.Topic,
		Type:      scheduledMeetingType,
		StartTime: in.StartTime.UTC().Format("2006-01-02T15:04:05Z"),
		Duration:  minutes,
		Timezone:  in.Timezone,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("zoom: marshal meeting: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/users/me/meetings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("zoom: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("zoom: create meeting status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out meetingResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("zoom: decode meeting: %w", err)
	}

	return &usecase.ScheduledMeeting{
		ID:      strconv.FormatInt(out.ID, 10),
		JoinURL: out.JoinURL,
	}, nil
}
