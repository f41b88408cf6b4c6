// Package random calls the external certified random-number provider used to
// generate winning numbers. Draws are never produced locally.
package random

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrProviderUnavailable covers every provider failure mode: unreachable
// service, non-2xx response, or a payload that fails validation. It is not
// retried; the orchestrator aborts the draw.
var ErrProviderUnavailable = errors.New("randomness provider unavailable")

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type drawRequest struct {
	Count  int  `json:"count"`
	Min    int  `json:"min"`
	Max    int  `json:"max"`
	Unique bool `json:"unique"`
}

type drawResponse struct {
	Numbers     []int  `json:"numbers"`
	Certificate string `json:"certificate"`
}

// Draw requests count unique integers in [min, max] plus a certificate
// reference proving third-party generation.
func (c *Client) Draw(ctx context.Context, count, min, max int) ([]int, string, error) {
	payload, err := json.Marshal(drawRequest{Count: count, Min: min, Max: max, Unique: true})
	if err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/draws", bytes.NewReader(payload))
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: unexpected status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	var out drawResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, "", fmt.Errorf("%w: malformed response: %v", ErrProviderUnavailable, err)
	}

	if err := validateNumbers(out.Numbers, count, min, max); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	return out.Numbers, out.Certificate, nil
}

func validateNumbers(numbers []int, count, min, max int) error {
	if len(numbers) != count {
		return fmt.Errorf("expected %d numbers, got %d", count, len(numbers))
	}
	seen := make(map[int]bool, len(numbers))
	for _, n := range numbers {
		if n < min || n > max {
			return fmt.Errorf("number %d outside [%d, %d]", n, min, max)
		}
		if seen[n] {
			return fmt.Errorf("duplicate number %d", n)
		}
		seen[n] = true
	}
	return nil
}
