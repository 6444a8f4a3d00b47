package idea

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// AnalyzerConfig holds settings for the external analysis service.
type AnalyzerConfig struct {
	BaseURL string        `env:"ANALYZER_URL,required"`
	Timeout time.Duration `env:"ANALYZER_TIMEOUT" envDefault:"30s"`
}

// Analyzer scores a submission. Implemented by the HTTP client below and by
// mocks in tests.
type Analyzer interface {
	Analyze(ctx context.Context, sub Submission) (*Analysis, error)
}

// HTTPAnalyzer consumes the external scoring service as an opaque black box:
// one POST, one JSON payload back.
type HTTPAnalyzer struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPAnalyzer creates a client for the analysis service.
func NewHTTPAnalyzer(cfg AnalyzerConfig) *HTTPAnalyzer {
	return &HTTPAnalyzer{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Analyze submits the idea for scoring.
func (a *HTTPAnalyzer) Analyze(ctx context.Context, sub Submission) (*Analysis, error) {
	body, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("failed to encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/validate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build analyzer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAnalyzerUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrAnalyzerUnavailable, resp.StatusCode)
	}

	var analysis Analysis
	if err := json.NewDecoder(resp.Body).Decode(&analysis); err != nil {
		return nil, fmt.Errorf("failed to decode analysis: %w", err)
	}
	return &analysis, nil
}

var _ Analyzer = (*HTTPAnalyzer)(nil)
