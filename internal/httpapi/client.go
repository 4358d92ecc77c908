// Package httpapi issues the bot's outbound GET requests and decodes JSON
// responses into typed schemas, reporting missing fields by name.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/keepmind9/heliumbot/internal/logger"
	"github.com/keepmind9/heliumbot/pkg/constants"
	"github.com/sirupsen/logrus"
)

// maxBodySize caps how much of a response is read
const maxBodySize = 8 << 20

// StatusError reports a non-2xx upstream response
type StatusError struct {
	Endpoint   string
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d from %s", e.Endpoint, e.StatusCode, e.URL)
}

// Config configures a Client
type Config struct {
	Timeout     time.Duration
	UserAgent   string
	ContentType string
}

// Client performs GET requests with a fixed header pair
type Client struct {
	http        *http.Client
	userAgent   string
	contentType string
}

// NewClient creates a client, filling unset config values with defaults
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.DefaultHTTPTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = constants.DefaultUserAgent
	}
	if cfg.ContentType == "" {
		cfg.ContentType = constants.DefaultContentType
	}
	return &Client{
		http:        &http.Client{Timeout: cfg.Timeout},
		userAgent:   cfg.UserAgent,
		contentType: cfg.ContentType,
	}
}

// GetJSON fetches url and decodes the body into out. endpoint names the
// call in errors and logs.
func (c *Client) GetJSON(ctx context.Context, endpoint, url string, out any) error {
	body, err := c.get(ctx, endpoint, url)
	if err != nil {
		return err
	}
	return Decode(endpoint, body, out)
}

func (c *Client) get(ctx context.Context, endpoint, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", c.contentType)
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"url":      url,
			"error":    err,
		}).Warn("upstream-request-failed")
		return nil, fmt.Errorf("%s: send request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	logger.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"status":   resp.StatusCode,
		"elapsed":  time.Since(start).String(),
	}).Debug("upstream-response-received")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Endpoint: endpoint, URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", endpoint, err)
	}
	return body, nil
}

// IsStatus reports whether err is an upstream StatusError with the given code
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
