package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrNotConfigured is returned when no analysis endpoint is set.
var ErrNotConfigured = errors.New("model analysis is not configured")

const maxRetries = 3

// Request describes the model to estimate and the slicer settings to assume.
type Request struct {
	FileURL       string  `json:"file_url" validate:"required"`
	LayerHeightMM float64 `json:"layer_height_mm" validate:"gte=0"`
	InfillPercent float64 `json:"infill_percent" validate:"gte=0,lte=100"`
	PrintSpeedMMS float64 `json:"print_speed_mm_s" validate:"gte=0"`
}

// Estimate is a best-effort filament and time estimate. A nil field means
// the service did not provide that value.
type Estimate struct {
	WeightGrams      *float64 `json:"weight_grams,omitempty"`
	PrintTimeMinutes *float64 `json:"print_time_minutes,omitempty"`
}

// statusError marks responses worth retrying.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("analysis service returned %d: %s", e.code, e.body)
}

// Client calls a model-analysis HTTP endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	sleep      func(context.Context, time.Duration) error
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		sleep:      sleepCtx,
	}
}

// Analyze asks the service for a weight and time estimate of the model at req.FileURL.
func (c *Client) Analyze(ctx context.Context, req Request) (Estimate, error) {
	if c.baseURL == "" {
		return Estimate{}, ErrNotConfigured
	}

	body, err := json.Marshal(req)
	if err != nil {
		return Estimate{}, fmt.Errorf("encode analysis request: %w", err)
	}

	var out Estimate
	err = c.RetryWithBackoff(ctx, func() error {
		est, err := c.do(ctx, body)
		if err != nil {
			return err
		}
		out = est
		return nil
	}, maxRetries)
	if err != nil {
		return Estimate{}, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, body []byte) (Estimate, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return Estimate{}, permanent(fmt.Errorf("build analysis request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Estimate{}, fmt.Errorf("call analysis service: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Estimate{}, fmt.Errorf("read analysis response: %w", err)
	}

	if resp.StatusCode >= 500 {
		return Estimate{}, &statusError{code: resp.StatusCode, body: string(raw)}
	}
	if resp.StatusCode != http.StatusOK {
		return Estimate{}, permanent(&statusError{code: resp.StatusCode, body: string(raw)})
	}

	var est Estimate
	if err := json.Unmarshal(raw, &est); err != nil {
		return Estimate{}, permanent(fmt.Errorf("decode analysis response: %w", err))
	}
	return est, nil
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func permanent(err error) error { return &permanentError{err: err} }

// RetryWithBackoff runs fn up to maxRetries times, sleeping 1s, 2s then 4s
// between attempts. Errors wrapped with permanent stop the loop at once.
func (c *Client) RetryWithBackoff(ctx context.Context, fn func() error, maxRetries int) error {
	backoffs := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		lastErr = err
		if i < maxRetries-1 && i < len(backoffs) {
			log.Warn().Err(err).Int("attempt", i+1).Dur("backoff", backoffs[i]).Msg("model analysis failed, retrying")
			if err := c.sleep(ctx, backoffs[i]); err != nil {
				return err
			}
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}
