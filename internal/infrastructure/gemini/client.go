package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/evchat/chat-gateway/internal/api/metrics"
	"github.com/evchat/chat-gateway/internal/core/domain"
)

const (
	defaultMaxAttempts = 3
	defaultTimeout     = 60 * time.Second

	// sentinelNoText is returned as a *successful* reply when a 2xx
	// response parses but carries no extractable text. Downstream code
	// treats it like any other model turn.
	sentinelNoText = "Error: Could not extract text from the response"
)

// Config carries the settings for constructing a Client.
type Config struct {
	Endpoint          string
	APIKey            string
	SystemInstruction string
	MaxAttempts       int
	Timeout           time.Duration
}

// Client calls the generateContent endpoint with a bounded
// exponential-backoff retry policy.
//
// Outcome classification per attempt:
//   - non-2xx status: terminal, never retried
//   - transport failure that is not a timeout: terminal, never retried
//   - timeout, unreadable body, malformed JSON: retried with 2^k backoff
//
// Only the generic failure path is retried; status and connection failures
// are deliberately terminal.
type Client struct {
	endpoint    string
	apiKey      string
	instruction string
	maxAttempts int
	httpClient  *http.Client
	log         zerolog.Logger

	// sleep is swapped out in tests to observe backoff durations.
	sleep func(time.Duration)
}

func NewClient(cfg Config, log zerolog.Logger) *Client {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		endpoint:    cfg.Endpoint,
		apiKey:      cfg.APIKey,
		instruction: cfg.SystemInstruction,
		maxAttempts: maxAttempts,
		httpClient:  &http.Client{Timeout: timeout},
		log:         log,
		sleep:       time.Sleep,
	}
}

// Generate implements ports.GenerationClient.
func (c *Client) Generate(ctx context.Context, history []domain.Turn, prompt string, attachment *domain.Attachment) (string, error) {
	if c.apiKey == "" {
		return "", domain.ErrMissingAPIKey
	}

	payload := BuildRequest(history, prompt, attachment, c.instruction)
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	start := time.Now()
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		text, err := c.attempt(ctx, body)
		if err == nil {
			metrics.GenerationAttemptsTotal.WithLabelValues("success").Inc()
			metrics.GenerationDuration.WithLabelValues("success").Observe(time.Since(start).Seconds())
			return text, nil
		}

		var statusErr *domain.HTTPStatusError
		if errors.As(err, &statusErr) {
			metrics.GenerationAttemptsTotal.WithLabelValues("http_error").Inc()
			metrics.GenerationDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
			c.log.Error().Int("status", statusErr.Status).Msg("generation request rejected")
			return "", err
		}
		if errors.Is(err, domain.ErrConnection) {
			metrics.GenerationAttemptsTotal.WithLabelValues("connection_error").Inc()
			metrics.GenerationDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
			c.log.Error().Err(err).Msg("generation request failed to connect")
			return "", err
		}

		metrics.GenerationAttemptsTotal.WithLabelValues("retryable").Inc()
		if attempt == c.maxAttempts-1 {
			metrics.GenerationDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
			return "", &domain.ExhaustedError{Attempts: c.maxAttempts, Cause: err}
		}

		delay := time.Duration(1<<uint(attempt)) * time.Second
		c.log.Warn().Err(err).Dur("backoff", delay).Int("attempt", attempt+1).Msg("retrying generation request")
		metrics.GenerationRetriesTotal.Inc()
		c.sleep(delay)
	}

	// Unreachable: the last iteration always returns.
	return "", &domain.ExhaustedError{Attempts: c.maxAttempts}
}

// attempt performs a single POST and classifies its outcome. Returned errors
// are terminal when they are *domain.HTTPStatusError or wrap
// domain.ErrConnection, retryable otherwise.
func (c *Client) attempt(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"?key="+c.apiKey, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("request timed out: %w", err)
		}
		return "", fmt.Errorf("%w: %v", domain.ErrConnection, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &domain.HTTPStatusError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var out GenerateContentResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(out.Candidates) > 0 {
		parts := out.Candidates[0].Content.Parts
		if len(parts) > 0 && parts[0].Text != "" {
			return parts[0].Text, nil
		}
	}
	return sentinelNoText, nil
}

// isTimeout routes client-side timeouts onto the retryable path, keeping
// genuine connection failures terminal.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
