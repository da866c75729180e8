// Package transcribe converts recorded complaints into text through the
// AssemblyAI transcription API. Jobs are asynchronous upstream; Transcribe
// blocks and polls until the job finishes or the fixed timeout expires.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.assemblyai.com"

var (
	// ErrTimeout is returned when the job does not complete in time.
	ErrTimeout = errors.New("transcription timed out")
	// ErrFailed is returned when the provider reports an error status.
	ErrFailed = errors.New("transcription failed")
)

// Transcript is the finished job.
type Transcript struct {
	Text     string
	Language string
}

// Client represents an AssemblyAI API client
type Client struct {
	apiKey       string
	baseURL      string
	http         *http.Client
	timeout      time.Duration
	pollInterval time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at another endpoint (used by tests).
func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }

// WithPolling overrides the overall timeout and poll interval.
func WithPolling(timeout, interval time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
		c.pollInterval = interval
	}
}

// NewClient creates a new transcription client
func NewClient(apiKey string, timeout, pollInterval time.Duration, opts ...Option) *Client {
	c := &Client{
		apiKey:       apiKey,
		baseURL:      defaultBaseURL,
		http:         &http.Client{Timeout: 30 * time.Second},
		timeout:      timeout,
		pollInterval: pollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type transcriptRequest struct {
	AudioURL          string `json:"audio_url"`
	LanguageDetection bool   `json:"language_detection"`
}

type transcriptResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	Text         string `json:"text"`
	LanguageCode string `json:"language_code"`
	Error        string `json:"error"`
}

// Transcribe submits mediaURL and waits for the result.
func (c *Client) Transcribe(ctx context.Context, mediaURL string) (*Transcript, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	job, err := c.submit(ctx, mediaURL)
	if err != nil {
		return nil, timeoutOr(ctx, err)
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		switch job.Status {
		case "completed":
			return &Transcript{Text: job.Text, Language: job.LanguageCode}, nil
		case "error":
			return nil, fmt.Errorf("%w: %s", ErrFailed, job.Error)
		}

		select {
		case <-ctx.Done():
			return nil, timeoutOr(ctx, ctx.Err())
		case <-ticker.C:
		}

		job, err = c.get(ctx, job.ID)
		if err != nil {
			return nil, timeoutOr(ctx, err)
		}
	}
}

func (c *Client) submit(ctx context.Context, mediaURL string) (*transcriptResponse, error) {
	body, err := json.Marshal(transcriptRequest{AudioURL: mediaURL, LanguageDetection: true})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/transcript", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) get(ctx context.Context, id string) (*transcriptResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/transcript/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*transcriptResponse, error) {
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(data))
	}

	var out transcriptResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &out, nil
}

func timeoutOr(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	return err
}
