package cohere

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/knoguchi/cohere/internal/config"
	"github.com/knoguchi/cohere/internal/fakeapi"
)

const testAPIKey = "test-key"

func newTestClient(t *testing.T, opts ...Option) (*Client, *fakeapi.Server) {
	t.Helper()
	fake := fakeapi.New(fakeapi.WithAPIKey(testAPIKey))
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	opts = append([]Option{WithBaseURL(srv.URL)}, opts...)
	return NewClient(testAPIKey, opts...), fake
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// requestBody decodes the last body sent to path.
func requestBody(t *testing.T, fake *fakeapi.Server, path string) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(fake.LastBody(path), &body); err != nil {
		t.Fatalf("decoding request body for %s: %v", path, err)
	}
	return body
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("k")

	if c.baseURL != DefaultBaseURL {
		t.Errorf("expected base URL %s, got %s", DefaultBaseURL, c.baseURL)
	}
	if c.httpClient.Timeout != DefaultTimeout {
		t.Errorf("expected timeout %v, got %v", DefaultTimeout, c.httpClient.Timeout)
	}
	if c.streamClient.Timeout != 0 {
		t.Errorf("expected stream client without timeout, got %v", c.streamClient.Timeout)
	}
	if c.embedConcurrency != DefaultEmbedConcurrency {
		t.Errorf("expected embed concurrency %d, got %d", DefaultEmbedConcurrency, c.embedConcurrency)
	}
}

func TestNewFromConfig(t *testing.T) {
	c := NewFromConfig(&config.Config{
		APIKey:           "k",
		BaseURL:          "http://example.test/v1/",
		Timeout:          3 * time.Second,
		StreamBufferSize: 4,
		EmbedConcurrency: 2,
	})

	if c.baseURL != "http://example.test/v1" {
		t.Errorf("expected trailing slash trimmed, got %s", c.baseURL)
	}
	if c.httpClient.Timeout != 3*time.Second {
		t.Errorf("expected timeout 3s, got %v", c.httpClient.Timeout)
	}
	if c.streamBufferSize != 4 || c.embedConcurrency != 2 {
		t.Errorf("unexpected stream buffer %d / embed concurrency %d", c.streamBufferSize, c.embedConcurrency)
	}
}

func TestClient_RequestErrorWithMessage(t *testing.T) {
	client, fake := newTestClient(t)
	fake.JSON("/tokenize", http.StatusInternalServerError, `{"message":"invalid request: inputs cannot be empty"}`)

	_, err := client.Tokenize(testContext(t), &TokenizeRequest{Text: ""})
	if err == nil {
		t.Fatal("expected error")
	}

	want := "API request failed with status code `500 Internal Server Error` and error message `invalid request: inputs cannot be empty`"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected *RequestError, got %T", err)
	}
	if reqErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", reqErr.StatusCode)
	}
}

func TestClient_RequestErrorWithoutMessage(t *testing.T) {
	client, fake := newTestClient(t)
	fake.JSON("/detokenize", http.StatusBadGateway, `upstream unavailable`)

	_, err := client.Detokenize(testContext(t), &DetokenizeRequest{Tokens: []int64{1}})

	want := "API request failed with status code `502 Bad Gateway`"
	if err == nil || err.Error() != want {
		t.Errorf("expected %q, got %v", want, err)
	}
}

func TestClient_SendsAuthorization(t *testing.T) {
	fake := fakeapi.New(fakeapi.WithAPIKey("right-key"))
	srv := httptest.NewServer(fake)
	defer srv.Close()
	fake.JSON("/detokenize", http.StatusOK, `{"text":"x"}`)

	client := NewClient("wrong-key", WithBaseURL(srv.URL))
	_, err := client.Detokenize(testContext(t), &DetokenizeRequest{Tokens: []int64{1}})

	var reqErr *RequestError
	if !errors.As(err, &reqErr) || reqErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 request error, got %v", err)
	}
	if reqErr.Message != "invalid api token" {
		t.Errorf("expected server message, got %q", reqErr.Message)
	}
}

func TestClient_ValidationBeforeSending(t *testing.T) {
	client, fake := newTestClient(t)
	fake.JSON("/chat", http.StatusOK, `{}`)
	ctx := testContext(t)

	temp := -1.0
	tests := []struct {
		name string
		call func() error
	}{
		{"chat without message", func() error {
			_, err := client.Chat(ctx, &ChatRequest{})
			return err
		}},
		{"chat with negative temperature", func() error {
			_, err := client.Chat(ctx, &ChatRequest{Message: "hi", Temperature: &temp})
			return err
		}},
		{"chat with bad history role", func() error {
			_, err := client.Chat(ctx, &ChatRequest{Message: "hi", ChatHistory: []ChatMessage{{Role: "SYSTEM", Message: "x"}}})
			return err
		}},
		{"stream without message", func() error {
			_, err := client.ChatStream(ctx, &ChatRequest{})
			return err
		}},
		{"embed without texts", func() error {
			_, err := client.Embed(ctx, &EmbedRequest{})
			return err
		}},
		{"rerank without documents", func() error {
			_, err := client.Rerank(ctx, &RerankRequest{Query: "q"})
			return err
		}},
		{"summarize with bad length", func() error {
			_, err := client.Summarize(ctx, &SummarizeRequest{Text: "t", Length: "huge"})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	for _, path := range []string{"/chat", "/embed", "/rerank", "/summarize"} {
		if n := fake.Calls(path); n != 0 {
			t.Errorf("expected no requests to %s, got %d", path, n)
		}
	}
}

func TestCheckAPIKey(t *testing.T) {
	client, fake := newTestClient(t)
	ctx := testContext(t)

	fake.JSON("/check-api-key", http.StatusOK, `{"valid":true,"organization_id":"org","owner_id":"owner"}`)
	if err := client.CheckAPIKey(ctx); err != nil {
		t.Errorf("expected valid key, got %v", err)
	}

	fake.JSON("/check-api-key", http.StatusOK, `{"valid":false}`)
	if err := client.CheckAPIKey(ctx); !errors.Is(err, ErrInvalidAPIKey) {
		t.Errorf("expected ErrInvalidAPIKey, got %v", err)
	}
}
