// Package objdetect submits frame snapshots to the external object detection
// service and feeds its phone-detection verdict back into the cheating state.
package objdetect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Default timeouts for the detection client. The call runs off the frame
// loop, but a stuck request must never pile up behind the 1 Hz ticker.
const (
	DefaultTimeout        = 5 * time.Second
	DefaultConnectTimeout = 2 * time.Second
)

// Result is the object detection service's response for one submitted frame.
type Result struct {
	PhoneDetected   bool     `json:"phoneDetected"`
	DetectedObjects []string `json:"detectedObjects"`
	Confidence      float64  `json:"confidence"`
}

// Client defines the interface to the object detection service.
type Client interface {
	// DetectObjects submits a JPEG-encoded still image for analysis.
	DetectObjects(ctx context.Context, jpeg []byte) (Result, error)
}

// HTTPClient talks to the detection service over HTTP.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a client for the service at baseURL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: DefaultConnectTimeout,
				}).DialContext,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// DetectObjects posts the image and decodes the detection result.
func (c *HTTPClient) DetectObjects(ctx context.Context, jpeg []byte) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/detect", bytes.NewReader(jpeg))
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("submit frame: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("detection service returned %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("decode response: %w", err)
	}
	return result, nil
}

// MockClient is a test implementation of Client.
type MockClient struct {
	Result Result
	Err    error
	Calls  int
}

// DetectObjects returns the pre-configured result or error.
func (m *MockClient) DetectObjects(ctx context.Context, jpeg []byte) (Result, error) {
	m.Calls++
	if m.Err != nil {
		return Result{}, m.Err
	}
	return m.Result, nil
}
