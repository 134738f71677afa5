// Package filestore stores raw resume PDFs in a Supabase-compatible
// object store and issues time-limited signed download URLs.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBucket  = "resumes"
	defaultTimeout = 30 * time.Second
)

type Client struct {
	baseURL    string
	serviceKey string
	bucket     string
	logger     *zap.Logger
	HTTPClient *http.Client
}

func New(baseURL, serviceKey, bucket string, logger *zap.Logger) *Client {
	if bucket == "" {
		bucket = defaultBucket
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		bucket:     bucket,
		logger:     logger,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Upload stores the PDF bytes under the given object path.
func (c *Client) Upload(ctx context.Context, path string, data []byte) error {
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/pdf")

	c.logger.Debug("uploading object", zap.String("path", path), zap.Int("size", len(data)))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload object: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upload object: bad status: %s", resp.Status)
	}

	return nil
}

// SignedURL issues a temporary download URL for a stored object.
func (c *Client) SignedURL(ctx context.Context, path string, expiresIn time.Duration) (string, error) {
	url := fmt.Sprintf("%s/storage/v1/object/sign/%s/%s", c.baseURL, c.bucket, path)

	body, err := json.Marshal(map[string]int{"expiresIn": int(expiresIn.Seconds())})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sign object url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sign object url: bad status: %s", resp.Status)
	}

	var signed struct {
		SignedURL string `json:"signedURL"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&signed); err != nil {
		return "", fmt.Errorf("decode signed url response: %w", err)
	}

	if signed.SignedURL == "" {
		return "", fmt.Errorf("storage api returned empty signed url")
	}

	return c.baseURL + "/storage/v1" + signed.SignedURL, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
}
