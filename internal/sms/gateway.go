package sms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultGatewayURL = "https://api.africastalking.com/version1/messaging"

var ErrNotConfigured = errors.New("sms gateway is not configured")

// Gateway sends SMS through Africa's Talking.
type Gateway struct {
	username string
	apiKey   string
	senderID string
	endpoint string
	http     *http.Client
}

// NewGateway creates a new gateway client.
func NewGateway(username, apiKey, senderID string) *Gateway {
	return &Gateway{
		username: username,
		apiKey:   apiKey,
		senderID: senderID,
		endpoint: defaultGatewayURL,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

// WithEndpoint returns a copy of g posting to endpoint.
func (g *Gateway) WithEndpoint(endpoint string) *Gateway {
	cp := *g
	cp.endpoint = endpoint
	return &cp
}

type sendResponse struct {
	SMSMessageData struct {
		Message    string `json:"Message"`
		Recipients []struct {
			Number    string `json:"number"`
			Status    string `json:"status"`
			MessageID string `json:"messageId"`
		} `json:"Recipients"`
	} `json:"SMSMessageData"`
}

// Send delivers text to a single recipient.
func (g *Gateway) Send(ctx context.Context, to, text string) error {
	if g.apiKey == "" {
		return ErrNotConfigured
	}

	form := url.Values{}
	form.Set("username", g.username)
	form.Set("to", to)
	form.Set("message", text)
	if g.senderID != "" {
		form.Set("from", g.senderID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apiKey", g.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("gateway error (status %d): %s", resp.StatusCode, string(body))
	}

	var out sendResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	for _, r := range out.SMSMessageData.Recipients {
		if r.Status != "Success" {
			return fmt.Errorf("delivery to %s rejected: %s", r.Number, r.Status)
		}
	}
	return nil
}
