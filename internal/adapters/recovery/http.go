package recovery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/bartoszrychlicki/invoice-finder/internal/domain/statement"
)

// Config holds deep-search client configuration.
type Config struct {
	// Endpoint is the deep-search service URL.
	Endpoint string

	// APIKey is sent as a bearer token when non-empty.
	APIKey string

	// InternalKeywords mark own-company counterparties; transactions to
	// them are never searched.
	InternalKeywords []string

	// MaxRetries bounds per-query HTTP retries.
	MaxRetries int
}

// HTTPSearcher issues recovery requests over HTTP with retries. The
// deep-search service is flaky under load, so each query rides a
// retryable client; a query that still fails is logged and skipped.
type HTTPSearcher struct {
	config    Config
	client    *retryablehttp.Client
	generator TermGenerator
	logger    *slog.Logger
}

// NewHTTPSearcher creates a searcher. generator may be nil, in which case
// the deterministic terms are used even when there are few of them.
func NewHTTPSearcher(cfg Config, generator TermGenerator, logger *slog.Logger) *HTTPSearcher {
	if logger == nil {
		logger = slog.Default()
	}

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.MaxRetries
	client.Logger = nil

	return &HTTPSearcher{
		config:    cfg,
		client:    client,
		generator: generator,
		logger:    logger,
	}
}

// searchRequest is the deep-search wire request.
type searchRequest struct {
	Query        string  `json:"query"`
	TargetAmount float64 `json:"target_amount"`
	Currency     string  `json:"currency,omitempty"`
}

// searchResponse is the deep-search wire response.
type searchResponse struct {
	Found     bool   `json:"found"`
	Reference string `json:"reference"`
}

// Search runs the candidate queries one at a time, in order, and returns
// on the first hit. Internal counterparties and incoming transactions are
// skipped before any request is made.
func (s *HTTPSearcher) Search(ctx context.Context, req Request) (*Result, error) {
	tx := req.Transaction

	if !tx.Outgoing() {
		return &Result{Reason: "incoming transaction"}, nil
	}
	if s.isInternal(tx.Counterparty) {
		return &Result{Reason: "internal counterparty"}, nil
	}

	queries := s.queries(ctx, tx, req.TargetAmount)
	for _, query := range queries {
		found, reference, err := s.runQuery(ctx, query, req.TargetAmount, tx.Currency)
		if err != nil {
			s.logger.Warn("Recovery query failed", "query", query, "error", err)
			continue
		}
		if found {
			return &Result{Found: true, Reference: reference, QueryUsed: query}, nil
		}
	}

	return &Result{Reason: fmt.Sprintf("no results across %d queries", len(queries))}, nil
}

func (s *HTTPSearcher) queries(ctx context.Context, tx statement.Transaction, targetAmount float64) []string {
	queries := BuildQueries(tx, targetAmount)
	if len(queries) >= MinDeterministicTerms || s.generator == nil {
		return queries
	}

	generated, err := s.generator.GenerateTerms(ctx, tx)
	if err != nil {
		s.logger.Warn("Term generator failed, using deterministic terms", "error", err)
		return queries
	}
	return append(queries, generated...)
}

func (s *HTTPSearcher) runQuery(ctx context.Context, query string, targetAmount float64, currency string) (bool, string, error) {
	body, err := json.Marshal(searchRequest{
		Query:        query,
		TargetAmount: targetAmount,
		Currency:     currency,
	})
	if err != nil {
		return false, "", err
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, s.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return false, "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if s.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return false, "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return false, "", fmt.Errorf("deep-search returned status %d", resp.StatusCode)
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return false, "", fmt.Errorf("failed to decode deep-search response: %w", err)
	}
	return decoded.Found, decoded.Reference, nil
}

func (s *HTTPSearcher) isInternal(counterparty string) bool {
	lowered := strings.ToLower(counterparty)
	for _, keyword := range s.config.InternalKeywords {
		if keyword != "" && strings.Contains(lowered, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}
