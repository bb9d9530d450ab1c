package encoder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds a single call to the model server.
const DefaultTimeout = 10 * time.Second

type encodeRequest struct {
	Context      []string `json:"context"`
	ExtraContext []string `json:"extra_context"`
}

type encodeResponse struct {
	Encodings [][]float32 `json:"encodings"`
}

// HTTPClient calls a model server that accepts
// {"context": [...], "extra_context": [...]} and answers {"encodings": [...]}.
type HTTPClient struct {
	URL    string
	Client *http.Client
	logger *zap.Logger
}

var _ Encoder = (*HTTPClient)(nil)

// NewHTTPClient creates a client for the model server at url.
func NewHTTPClient(url string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Encode sends the whole batch in one request.
func (c *HTTPClient) Encode(ctx context.Context, histories [][]string) ([][]float32, error) {
	if len(histories) == 0 {
		return nil, nil
	}

	payload := encodeRequest{
		Context:      make([]string, len(histories)),
		ExtraContext: make([]string, len(histories)),
	}
	for i, history := range histories {
		contextTurn, extra, err := Features(history)
		if err != nil {
			return nil, fmt.Errorf("history %d: %w", i, err)
		}
		payload.Context[i] = contextTurn
		payload.ExtraContext[i] = extra
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("encoder request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("encoder error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var decoded encodeResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(decoded.Encodings) != len(histories) {
		return nil, fmt.Errorf("encoder returned %d encodings for %d histories", len(decoded.Encodings), len(histories))
	}

	c.logger.Debug("Encoded histories",
		zap.Int("count", len(histories)),
		zap.Duration("duration", time.Since(start)),
	)
	return decoded.Encodings, nil
}
