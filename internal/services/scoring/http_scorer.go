package scoring

import (
	"context"
	"fmt"
	"time"

	domsvc "PopPredict/internal/domain/service"
	"PopPredict/internal/service/metrics"
	"PopPredict/pkg/config"
	xhttp "PopPredict/pkg/http"
)

// HTTPScorer talks to the external model-serving endpoint. The wire contract
// mirrors the serving fleet's invocation shape: a JSON body of
// {"instances": [[f0..f17]]} answered by {"predictions": [price]}.
type HTTPScorer struct {
	baseURL  string
	client   *xhttp.Client
	attempts int
}

// NewHTTPScorer builds a scorer client with timeout and retry budget from config.
func NewHTTPScorer(cfg *config.Config) *HTTPScorer {
	timeout := cfg.Scorer.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	attempts := cfg.Scorer.RetryAttempts
	if attempts <= 0 {
		attempts = 1
	}
	metrics.Register()
	return &HTTPScorer{
		baseURL:  cfg.Scorer.URL,
		client:   xhttp.NewClient(xhttp.WithTimeout(timeout)),
		attempts: attempts,
	}
}

type scoreReq struct {
	Instances [][]float64 `json:"instances"`
}

type scoreResp struct {
	Predictions []float64 `json:"predictions"`
}

// Score submits one feature vector and returns the raw predicted price.
// Scoring is an idempotent read, so transient transport failures get at most
// `attempts` tries before the caller falls back.
func (s *HTTPScorer) Score(ctx context.Context, features []float64) (float64, error) {
	if s.client == nil || s.baseURL == "" {
		return 0, fmt.Errorf("scorer client not initialized")
	}
	start := time.Now()

	var sr scoreResp
	var err error
	for i := 1; i <= s.attempts; i++ {
		err = s.postJSON(ctx, "/invocations", scoreReq{Instances: [][]float64{features}}, &sr)
		if err == nil {
			break
		}
		if i == s.attempts {
			break
		}
		select {
		case <-time.After(time.Duration(i) * 50 * time.Millisecond):
		case <-ctx.Done():
			metrics.ScorerErrors.WithLabelValues("canceled").Inc()
			return 0, ctx.Err()
		}
	}
	if err != nil {
		metrics.ScorerLatency.WithLabelValues("error").Observe(time.Since(start).Seconds())
		metrics.ScorerErrors.WithLabelValues("transport").Inc()
		return 0, fmt.Errorf("score: %w", err)
	}
	if len(sr.Predictions) == 0 {
		metrics.ScorerErrors.WithLabelValues("empty_response").Inc()
		return 0, fmt.Errorf("score: empty predictions in response")
	}
	metrics.ScorerLatency.WithLabelValues("ok").Observe(time.Since(start).Seconds())
	return sr.Predictions[0], nil
}

// Ping probes scorer reachability for the status endpoint.
func (s *HTTPScorer) Ping(ctx context.Context) error {
	if s.client == nil || s.baseURL == "" {
		return fmt.Errorf("scorer client not initialized")
	}
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    s.baseURL + "/ping",
	}, nil)
	if err != nil {
		return fmt.Errorf("ping scorer: %w", err)
	}
	return nil
}

func (s *HTTPScorer) postJSON(ctx context.Context, path string, payload interface{}, dest interface{}) error {
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    s.baseURL + path,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: payload,
	}, dest)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	return nil
}

var _ domsvc.Scorer = (*HTTPScorer)(nil)
