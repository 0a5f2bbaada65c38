package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wayfinder/internal/logging"
	"wayfinder/internal/services"
)

const (
	defaultBaseURL        = "http://localhost:11434"
	defaultModel          = "llama3.1"
	defaultDialTimeout    = 5 * time.Second
	defaultHTTPTimeout    = 120 * time.Second
	defaultMaxRetries     = 2
	defaultInitialBackoff = 2 * time.Second
)

// Client wraps the Ollama /api/generate endpoint.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	logger     *slog.Logger
}

// Option customizes the Ollama client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetries configures the retry count and base backoff delay.
func WithRetries(maxRetries int, backoff time.Duration) Option {
	return func(c *Client) {
		if maxRetries >= 0 {
			c.maxRetries = maxRetries
		}
		if backoff > 0 {
			c.backoff = backoff
		}
	}
}

// WithLogger attaches a logger for retry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger.With(logging.String(logging.FieldComponent, "ollama"))
		}
	}
}

// NewHTTPClient builds an HTTP client with a separate connection dial
// timeout and overall request timeout. Non-positive values fall back to
// the package defaults.
func NewHTTPClient(connectTimeout, readTimeout time.Duration) *http.Client {
	if connectTimeout <= 0 {
		connectTimeout = defaultDialTimeout
	}
	if readTimeout <= 0 {
		readTimeout = defaultHTTPTimeout
	}
	return &http.Client{
		Timeout: readTimeout,
		Transport: &http.Transport{
			DialContext:         (&net.Dialer{Timeout: connectTimeout}).DialContext,
			TLSHandshakeTimeout: connectTimeout,
		},
	}
}

// NewClient constructs an Ollama API client.
func NewClient(baseURL, model string, opts ...Option) *Client {
	client := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		model:      strings.TrimSpace(model),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		maxRetries: defaultMaxRetries,
		backoff:    defaultInitialBackoff,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}
	if client.model == "" {
		client.model = defaultModel
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if client.logger == nil {
		client.logger = logging.NewNop()
	}
	return client
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

// Generate submits a prompt and returns the raw model output.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", services.Wrap(services.ErrValidation, "ollama", "generate", "prompt required", nil)
	}

	endpoint, err := url.JoinPath(c.baseURL, "/api/generate")
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "ollama", "generate", "build url", err)
	}
	encoded, err := json.Marshal(generateRequest{Model: c.model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "ollama", "generate", "encode request", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * c.backoff
			c.logger.Warn("retrying ollama call",
				logging.Int("attempt", attempt),
				logging.Duration("delay", delay),
				logging.Error(lastErr))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", services.Wrap(services.ErrTimeout, "ollama", "generate", "canceled while waiting to retry", ctx.Err())
			}
		}

		output, retryable, err := c.generateOnce(ctx, endpoint, encoded)
		if err == nil {
			return output, nil
		}
		if !retryable {
			return "", err
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", lastErr
		}
	}
	return "", lastErr
}

func (c *Client) generateOnce(ctx context.Context, endpoint string, body []byte) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", false, services.Wrap(services.ErrValidation, "ollama", "generate", "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		marker := services.ErrExternalTool
		if isTimeout(err) {
			marker = services.ErrTimeout
		}
		return "", true, services.Wrap(marker, "ollama", "generate", "request failed", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, services.Wrap(services.ErrExternalTool, "ollama", "generate", "read body", err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return "", true, services.Wrap(services.ErrExternalTool, "ollama", "generate",
			fmt.Sprintf("http %d: %s", resp.StatusCode, truncate(payload, 200)), nil)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", false, services.Wrap(services.ErrExternalTool, "ollama", "generate",
			fmt.Sprintf("http %d: %s", resp.StatusCode, truncate(payload, 200)), nil)
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return "", true, services.Wrap(services.ErrExternalTool, "ollama", "generate", "empty response body", nil)
	}

	var decoded generateResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "", false, services.Wrap(services.ErrExternalTool, "ollama", "generate", "decode response", err)
	}
	if strings.TrimSpace(decoded.Error) != "" {
		return "", false, services.Wrap(services.ErrExternalTool, "ollama", "generate",
			"api error: "+strings.TrimSpace(decoded.Error), nil)
	}
	return decoded.Response, false, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func truncate(payload []byte, limit int) string {
	trimmed := strings.TrimSpace(string(payload))
	if len(trimmed) <= limit {
		return trimmed
	}
	return trimmed[:limit] + "..."
}
