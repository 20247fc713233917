package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// ContentType is sent with every submission; the endpoint must not see a
// CORS preflight.
const ContentType = "text/plain;charset=utf-8"

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var (
	ErrNoEndpoint      = errors.New("storage endpoint URL is not configured")
	ErrStorageRejected = errors.New("storage endpoint rejected the submission")
)

// Response is the body the storage endpoint answers with.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	FileURL string `json:"fileUrl,omitempty"`
}

// Client posts submission envelopes to the storage endpoint. It never retries.
type Client struct {
	http     *resty.Client
	endpoint string
	logger   *zap.Logger
}

func NewClient(endpoint string, timeout time.Duration, logger *zap.Logger) *Client {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	return &Client{
		http:     client,
		endpoint: endpoint,
		logger:   logger,
	}
}

// Post sends payload as-is. Transport failures, non-JSON bodies and any status
// other than "success" are returned as errors.
func (c *Client) Post(ctx context.Context, payload []byte) (*Response, error) {
	if c.endpoint == "" {
		return nil, ErrNoEndpoint
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", ContentType).
		SetBody(payload).
		Post(c.endpoint)
	if err != nil {
		c.logger.Error("Storage endpoint call failed", zap.Error(err))
		return nil, fmt.Errorf("post to storage endpoint: %w", err)
	}

	var out Response
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		c.logger.Error("Storage endpoint returned a non-JSON body",
			zap.Int("status_code", resp.StatusCode()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("decode storage response (http %d): %w", resp.StatusCode(), err)
	}

	if out.Status != StatusSuccess {
		c.logger.Warn("Storage endpoint rejected submission",
			zap.String("status", out.Status),
			zap.String("message", out.Message),
		)
		return &out, fmt.Errorf("%w: %s", ErrStorageRejected, out.Message)
	}

	c.logger.Info("Submission stored", zap.String("file_url", out.FileURL))
	return &out, nil
}
