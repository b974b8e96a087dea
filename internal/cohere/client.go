// Package cohere is a client for the Cohere REST API.
//
// Every endpoint except streaming chat is a single JSON POST decoded into a
// typed result. Streaming chat hands the open response body to the stream
// package, which relays events to the caller as they arrive.
package cohere

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/knoguchi/cohere/internal/config"
)

const (
	// DefaultBaseURL is the default Cohere API endpoint.
	DefaultBaseURL = "https://api.cohere.ai/v1"

	// DefaultTimeout bounds non-streaming requests.
	DefaultTimeout = 60 * time.Second

	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "cohere-go"

	// DefaultEmbedConcurrency is the default number of concurrent embed
	// requests issued by EmbedBatch.
	DefaultEmbedConcurrency = 4

	// maxErrorBody caps how much of a failed response is read.
	maxErrorBody = 1 << 20
)

// Client talks to the Cohere API.
type Client struct {
	baseURL          string
	apiKey           string
	userAgent        string
	httpClient       *http.Client
	streamClient     *http.Client
	logger           *slog.Logger
	validate         *validator.Validate
	streamBufferSize int
	embedConcurrency int
}

// Option is a functional option for configuring Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL for the API.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithHTTPClient sets a custom HTTP client for non-streaming requests.
// Streaming requests use a copy of it without the overall timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLogger sets the logger for request and stream diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithStreamBufferSize sets how many chat stream events may be buffered
// ahead of the consumer.
func WithStreamBufferSize(n int) Option {
	return func(c *Client) {
		c.streamBufferSize = n
	}
}

// WithEmbedConcurrency sets how many embed requests EmbedBatch runs at once.
func WithEmbedConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.embedConcurrency = n
		}
	}
}

// NewClient creates a new API client authenticating with apiKey.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		apiKey:    apiKey,
		userAgent: DefaultUserAgent,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger:           slog.Default(),
		validate:         validator.New(validator.WithRequiredStructEnabled()),
		embedConcurrency: DefaultEmbedConcurrency,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Streams run until the server closes them; the request context handles
	// cancellation instead of an overall timeout.
	sc := *c.httpClient
	sc.Timeout = 0
	c.streamClient = &sc

	return c
}

// NewFromConfig creates a client from loaded configuration.
func NewFromConfig(cfg *config.Config, opts ...Option) *Client {
	base := []Option{
		WithBaseURL(cfg.BaseURL),
		WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		WithStreamBufferSize(cfg.StreamBufferSize),
		WithEmbedConcurrency(cfg.EmbedConcurrency),
	}
	return NewClient(cfg.APIKey, append(base, opts...)...)
}

// RequestError is returned when the API answers with a non-success status.
type RequestError struct {
	StatusCode int
	// Status is the status line, e.g. "500 Internal Server Error".
	Status string
	// Message is the server-provided error message, if any.
	Message string
}

func (e *RequestError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API request failed with status code `%s`", e.Status)
	}
	return fmt.Sprintf("API request failed with status code `%s` and error message `%s`", e.Status, e.Message)
}

// apiErrorBody is the error payload returned by the API.
type apiErrorBody struct {
	Message string `json:"message"`
}

func newRequestError(resp *http.Response) *RequestError {
	status := resp.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	reqErr := &RequestError{StatusCode: resp.StatusCode, Status: status}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return reqErr
	}
	var parsed apiErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		reqErr.Message = parsed.Message
	}
	return reqErr
}

// post validates in, sends it to path and decodes the response into out.
func (c *Client) post(ctx context.Context, path string, in, out any) error {
	if in != nil {
		if err := c.validate.Struct(in); err != nil {
			return fmt.Errorf("invalid %s request: %w", strings.TrimPrefix(path, "/"), err)
		}
	}

	req, err := c.newRequest(ctx, path, in)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	resp, err := c.do(c.httpClient, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", strings.TrimPrefix(path, "/"), err)
	}
	return nil
}

// newRequest constructs a JSON POST request for the API.
func (c *Client) newRequest(ctx context.Context, path string, in any) (*http.Request, error) {
	var body io.Reader = http.NoBody
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)

	return req, nil
}

// do executes req and converts non-2xx responses into *RequestError. On
// success the caller owns the response body.
func (c *Client) do(httpClient *http.Client, req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	c.logger.Debug("API request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, newRequestError(resp)
	}

	return resp, nil
}
