package subgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"
)

// APIError represents an HTTP-level failure from the gateway.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("subgraph gateway error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable returns true if the error should trigger a retry.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// GraphQLError represents an error payload inside a 200 response. It signals
// a bad query or upstream indexing problem, so it is never retried.
type GraphQLError struct {
	Errors json.RawMessage
}

func (e *GraphQLError) Error() string {
	return fmt.Sprintf("graphql errors: %s", e.Errors)
}

type graphRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors json.RawMessage `json:"errors"`
}

// doQuery posts a GraphQL query and unmarshals the data payload into result.
// Transport failures and retryable status codes go through backoff; an error
// payload in the response body aborts immediately.
func (c *Client) doQuery(ctx context.Context, query string, variables map[string]any, result any) error {
	body, err := c.postWithRetry(ctx, graphRequest{Query: query, Variables: variables})
	if err != nil {
		return err
	}

	var resp graphResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	if len(resp.Errors) > 0 && string(resp.Errors) != "null" {
		return &GraphQLError{Errors: resp.Errors}
	}

	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return fmt.Errorf("graphql response has no data")
	}

	if err := json.Unmarshal(resp.Data, result); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}

	return nil
}

// postWithRetry performs a POST with exponential backoff on retryable errors.
func (c *Client) postWithRetry(ctx context.Context, req graphRequest) ([]byte, error) {
	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Add jitter: backoff * (0.5 to 1.5)
			jitter := backoff/2 + time.Duration(rand.Int63n(int64(backoff)))
			c.logger.Debug("retrying subgraph request",
				"attempt", attempt,
				"backoff", jitter,
			)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(jitter):
			}

			backoff *= 2
		}

		body, err := c.post(ctx, req)
		if err == nil {
			return body, nil
		}

		lastErr = err

		apiErr, ok := err.(*APIError)
		if !ok || !apiErr.IsRetryable() {
			return nil, err
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// post performs a single POST of the request body.
func (c *Client) post(ctx context.Context, req graphRequest) ([]byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}

	return body, nil
}
