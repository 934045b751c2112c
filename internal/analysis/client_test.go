package analysis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) (*Client, *[]time.Duration) {
	c := NewClient(url, "test-key", 5*time.Second)
	var slept []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return c, &slept
}

func TestAnalyze_ReturnsEstimate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req Request
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://files/benchy.stl", req.FileURL)
		assert.InDelta(t, 0.2, req.LayerHeightMM, 1e-9)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"weight_grams": 14.6, "print_time_minutes": 47.3}`))
	}))
	defer srv.Close()

	c, _ := newTestClient(srv.URL)
	est, err := c.Analyze(context.Background(), Request{FileURL: "https://files/benchy.stl", LayerHeightMM: 0.2, InfillPercent: 20})
	require.NoError(t, err)
	require.NotNil(t, est.WeightGrams)
	require.NotNil(t, est.PrintTimeMinutes)
	assert.InDelta(t, 14.6, *est.WeightGrams, 1e-9)
	assert.InDelta(t, 47.3, *est.PrintTimeMinutes, 1e-9)
}

func TestAnalyze_AbsentFieldsStayNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"weight_grams": 30}`))
	}))
	defer srv.Close()

	c, _ := newTestClient(srv.URL)
	est, err := c.Analyze(context.Background(), Request{FileURL: "x"})
	require.NoError(t, err)
	require.NotNil(t, est.WeightGrams)
	assert.Nil(t, est.PrintTimeMinutes)
}

func TestAnalyze_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"print_time_minutes": 90}`))
	}))
	defer srv.Close()

	c, slept := newTestClient(srv.URL)
	est, err := c.Analyze(context.Background(), Request{FileURL: "x"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *slept)
	require.NotNil(t, est.PrintTimeMinutes)
}

func TestAnalyze_GivesUpAfterThreeAttempts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, _ := newTestClient(srv.URL)
	_, err := c.Analyze(context.Background(), Request{FileURL: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 3 retries")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestAnalyze_ClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad file", http.StatusBadRequest)
	}))
	defer srv.Close()

	c, _ := newTestClient(srv.URL)
	_, err := c.Analyze(context.Background(), Request{FileURL: "x"})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestAnalyze_NotConfigured(t *testing.T) {
	_, err := NewClient("", "", time.Second).Analyze(context.Background(), Request{FileURL: "x"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestAnalyze_CancelStopsBackoff(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	c := NewClient(srv.URL, "test-key", 5*time.Second)
	c.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return sleepCtx(ctx, d)
	}

	start := time.Now()
	_, err := c.Analyze(ctx, Request{FileURL: "x"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSleepCtx(t *testing.T) {
	assert.NoError(t, sleepCtx(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	assert.ErrorIs(t, sleepCtx(ctx, time.Hour), context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}
