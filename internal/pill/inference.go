package pill

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// InferenceClient calls an external pill recognition service. The service
// uses bearer token auth and a single JSON endpoint taking a base64 image.
type InferenceClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewInferenceClient creates a rate-limited inference client. Returns nil
// when baseURL is empty so callers can treat the backend as optional.
func NewInferenceClient(baseURL, apiKey string, requestsPerMinute int, logger *slog.Logger) *InferenceClient {
	if baseURL == "" {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	rps := float64(requestsPerMinute) / 60.0
	return &InferenceClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

type inferenceRequest struct {
	Image string `json:"image"`
}

type inferenceResponse struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Confidence int    `json:"confidence"`
}

// Infer submits an image for identification.
func (c *InferenceClient) Infer(ctx context.Context, image []byte) (Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Result{}, fmt.Errorf("rate limit wait: %w", err)
	}

	payload, err := json.Marshal(inferenceRequest{
		Image: base64.StdEncoding.EncodeToString(image),
	})
	if err != nil {
		return Result{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/identify", bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("inference service returned %d: %s", resp.StatusCode, truncate(body, 200))
	}

	var out inferenceResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return Result{}, fmt.Errorf("decode response: %w", err)
	}

	// Map the service's answer back onto catalog imagery where possible.
	for _, p := range Catalog {
		if p.Name == out.Name {
			return Result{
				PillName:   p.Name,
				PillType:   p.Type,
				PillImage:  p.Image,
				Confidence: out.Confidence,
				CommonFor:  p.CommonFor,
			}, nil
		}
	}
	return Result{
		PillName:   out.Name,
		PillType:   out.Type,
		Confidence: out.Confidence,
	}, nil
}

func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
