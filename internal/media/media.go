// Package media uploads complaint recordings to the Cloudinary CDN and
// returns the public URL that is stored on the complaint.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"igire/backend/internal/config"
)

const defaultBaseURL = "https://api.cloudinary.com/v1_1"

var ErrNotConfigured = errors.New("media storage is not configured")

// Client uploads files with an unsigned upload preset.
type Client struct {
	cloudName    string
	uploadPreset string
	baseURL      string
	http         *http.Client
}

// NewClient creates a new Cloudinary client.
func NewClient(cloudName, uploadPreset string) *Client {
	return &Client{
		cloudName:    cloudName,
		uploadPreset: uploadPreset,
		baseURL:      defaultBaseURL,
		http:         &http.Client{Timeout: config.MediaUploadTimeout},
	}
}

// WithBaseURL returns a copy of c that talks to baseURL.
func (c *Client) WithBaseURL(baseURL string) *Client {
	cp := *c
	cp.baseURL = baseURL
	return &cp
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload streams r to the CDN. Audio and video both use the "video" resource type.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	if c.cloudName == "" || c.uploadPreset == "" {
		return "", ErrNotConfigured
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("upload_preset", c.uploadPreset); err != nil {
		return "", err
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("failed to buffer upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/%s/video/upload", c.baseURL, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to parse response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		if out.Error != nil {
			return "", fmt.Errorf("upload rejected (status %d): %s", resp.StatusCode, out.Error.Message)
		}
		return "", fmt.Errorf("upload rejected (status %d)", resp.StatusCode)
	}
	if out.SecureURL == "" {
		return "", errors.New("upload response has no secure_url")
	}
	return out.SecureURL, nil
}
