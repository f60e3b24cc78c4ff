package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// chatMessage is the role/content pair shared by the Ollama and OpenAI wire formats.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// jsonCall describes one POST to a backend endpoint.
type jsonCall struct {
	backend string
	op      string
	url     string
	headers map[string]string
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// post sends payload and decodes a 200 reply into out.
// Every failure is a *BackendError.
func (c jsonCall) post(ctx context.Context, client *http.Client, payload, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return newBackendError(c.backend, c.op, "failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return newBackendError(c.backend, c.op, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return newBackendError(c.backend, c.op, "request cancelled", ctxErr)
		}
		return newBackendError(c.backend, c.op, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return newBackendError(c.backend, c.op, "failed to read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("request failed with status %d: %s", resp.StatusCode, bodySnippet(body))
		return newBackendError(c.backend, c.op, msg, nil)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return newBackendError(c.backend, c.op, "failed to parse response", err)
	}
	return nil
}
