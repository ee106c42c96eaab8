package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const (
	// maxErrorBody caps how much of an error response is kept in StatusError.
	maxErrorBody = 512
	// maxResponseBody caps how much of any response is read.
	maxResponseBody = 1 << 20
)

// ErrResponseTooLarge is returned when a provider answer exceeds maxResponseBody.
var ErrResponseTooLarge = errors.New("provider response too large")

// StatusError is returned when a provider answers with a non-2xx status.
type StatusError struct {
	Provider   string
	Body       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

// doRequest sends a request with an optional JSON body and bearer token and
// returns the response body of a 2xx answer.
func doRequest(ctx context.Context, httpClient *http.Client, provider, method, url, apiKey string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(respBody) > maxResponseBody {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, maxResponseBody)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := string(respBody)
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, &StatusError{
			Provider:   provider,
			StatusCode: resp.StatusCode,
			Body:       msg,
		}
	}

	return respBody, nil
}
