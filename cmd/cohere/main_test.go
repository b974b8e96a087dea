package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/knoguchi/cohere/internal/fakeapi"
)

const testAPIKey = "test-key"

func newTestAPI(t *testing.T) *fakeapi.Server {
	t.Helper()
	fake := fakeapi.New(fakeapi.WithAPIKey(testAPIKey))
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	t.Setenv("CO_API_KEY", testAPIKey)
	t.Setenv("CO_API_URL", srv.URL)
	t.Setenv("LOG_LEVEL", "error")
	return fake
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestCheckAPIKey(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{name: "valid", body: `{"valid":true}`, want: "CO_API_KEY is valid!\n"},
		{name: "invalid", body: `{"valid":false}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newTestAPI(t)
			fake.JSON("/check-api-key", http.StatusOK, tt.body)

			out, err := run(t, "", "check-api-key")
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if out != tt.want {
				t.Errorf("expected output %q, got %q", tt.want, out)
			}
		})
	}
}

func TestMissingAPIKey(t *testing.T) {
	t.Setenv("CO_API_KEY", "")

	_, err := run(t, "", "check-api-key")
	if err == nil {
		t.Fatal("expected error without CO_API_KEY")
	}
}

func TestChat_Stream(t *testing.T) {
	fake := newTestAPI(t)
	fake.Stream("/chat", 0,
		`{"event_type":"stream-start","generation_id":"g1","is_finished":false}`+"\n",
		`{"event_type":"text-generation","is_finished":false,"text":"Hello"}`+"\n",
		`{"event_type":"text-generation","is_finished":false,"text":" world"}`+"\n",
		`{"event_type":"stream-end","finish_reason":"COMPLETE","is_finished":true,"response":{"generation_id":"g1","response_id":"r1","text":"Hello world"}}`+"\n",
	)

	out, err := run(t, "", "chat", "--temperature", "0.3", "say", "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Hello world\n" {
		t.Errorf("expected streamed reply, got %q", out)
	}

	var body map[string]any
	if err := json.Unmarshal(fake.LastBody("/chat"), &body); err != nil {
		t.Fatalf("decoding request body: %v", err)
	}
	if body["message"] != "say hello" {
		t.Errorf("expected message %q, got %v", "say hello", body["message"])
	}
	if body["stream"] != true {
		t.Errorf("expected stream true, got %v", body["stream"])
	}
	if body["temperature"] != 0.3 {
		t.Errorf("expected temperature 0.3, got %v", body["temperature"])
	}
	if _, ok := body["max_tokens"]; ok {
		t.Error("expected max_tokens to be omitted when the flag is unset")
	}
}

func TestChat_SkipsMalformedRecords(t *testing.T) {
	fake := newTestAPI(t)
	fake.Stream("/chat", 0,
		`{"event_type":"text-generation","is_finished":false,"text":"a"}`+"\n",
		`{not json}`+"\n",
		`{"event_type":"text-generation","is_finished":false,"text":"b"}`+"\n",
	)

	out, err := run(t, "", "chat", "hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "ab" {
		t.Errorf("expected %q, got %q", "ab", out)
	}
}

func TestChat_NoStream(t *testing.T) {
	fake := newTestAPI(t)
	fake.JSON("/chat", http.StatusOK, `{"response_id":"r1","generation_id":"g1","text":"Hi!"}`)

	out, err := run(t, "", "chat", "--no-stream", "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Hi!\n" {
		t.Errorf("expected %q, got %q", "Hi!\n", out)
	}
}

func TestChat_APIError(t *testing.T) {
	fake := newTestAPI(t)
	fake.JSON("/chat", http.StatusTooManyRequests, `{"message":"rate limit exceeded"}`)

	_, err := run(t, "", "chat", "hello")
	if err == nil || !strings.Contains(err.Error(), "rate limit exceeded") {
		t.Fatalf("expected rate limit error, got %v", err)
	}
}

func TestChat_Interactive(t *testing.T) {
	fake := newTestAPI(t)

	var (
		mu        sync.Mutex
		histories [][]any
		preambles []any
	)
	fake.Handle("/chat", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			fakeapi.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h, _ := body["chat_history"].([]any)
		mu.Lock()
		histories = append(histories, h)
		preambles = append(preambles, body["preamble"])
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"response_id":   "r",
			"generation_id": "g",
			"text":          "echo: " + body["message"].(string),
		})
	})

	out, err := run(t, "first\n\nsecond\n/reset\nthird\n", "chat", "-i", "--no-stream", "--preamble", "be brief")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"echo: first", "echo: second", "history cleared", "echo: third"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got %q", want, out)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(histories) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(histories))
	}
	wantHistory := []int{0, 2, 0}
	for i, want := range wantHistory {
		if len(histories[i]) != want {
			t.Errorf("turn %d: expected %d history messages, got %v", i, want, histories[i])
		}
		if preambles[i] != "be brief" {
			t.Errorf("turn %d: expected preamble from flag, got %v", i, preambles[i])
		}
	}
}

func TestClassify(t *testing.T) {
	fake := newTestAPI(t)
	fake.JSON("/classify", http.StatusOK, `{"classifications":[{"id":"1","input":"great","prediction":"positive","confidence":0.9}]}`)

	out, err := run(t, "", "classify", "-e", "positive=love it", "-e", "negative=hate it", "great")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "positive\t0.9000\tgreat\n" {
		t.Errorf("unexpected output %q", out)
	}

	_, err = run(t, "", "classify", "-e", "no-separator", "great")
	if err == nil {
		t.Error("expected error for malformed example")
	}
}

func TestRerank(t *testing.T) {
	fake := newTestAPI(t)
	fake.JSON("/rerank", http.StatusOK, `{"results":[{"index":1,"relevance_score":0.8},{"index":0,"relevance_score":0.1}]}`)

	out, err := run(t, "", "rerank", "--query", "capital", "Paris is nice", "Paris is the capital")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "0.8000\tParis is the capital\n0.1000\tParis is nice\n"
	if out != want {
		t.Errorf("expected %q, got %q", want, out)
	}
}

func TestDetokenize(t *testing.T) {
	fake := newTestAPI(t)
	fake.JSON("/detokenize", http.StatusOK, `{"text":"hello world"}`)

	out, err := run(t, "", "detokenize", "1", "2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "hello world\n" {
		t.Errorf("unexpected output %q", out)
	}

	if _, err := run(t, "", "detokenize", "x"); err == nil {
		t.Error("expected error for non-numeric token")
	}
}

func TestSummarize_Stdin(t *testing.T) {
	fake := newTestAPI(t)
	fake.JSON("/summarize", http.StatusOK, `{"summary":"short"}`)

	out, err := run(t, "a long text", "summarize", "--length", "short")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "short\n" {
		t.Errorf("unexpected output %q", out)
	}

	var body map[string]any
	if err := json.Unmarshal(fake.LastBody("/summarize"), &body); err != nil {
		t.Fatalf("decoding request body: %v", err)
	}
	if body["text"] != "a long text" || body["length"] != "short" {
		t.Errorf("unexpected request body %v", body)
	}
}

func TestEmbed(t *testing.T) {
	fake := newTestAPI(t)
	fake.JSON("/embed", http.StatusOK, `{"embeddings":[[0.1,0.2],[0.3,0.4]]}`)

	out, err := run(t, "", "embed", "a", "b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got [][]float64
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if len(got) != 2 || got[1][0] != 0.3 {
		t.Errorf("unexpected embeddings %v", got)
	}
}

func TestEmbed_File(t *testing.T) {
	fake := newTestAPI(t)
	fake.Handle("/embed", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Texts []string `json:"texts"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			fakeapi.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		embeddings := make([][]float64, len(req.Texts))
		for i, text := range req.Texts {
			embeddings[i] = []float64{float64(len(text))}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"embeddings": embeddings})
	})

	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte("One two. Three four five.\nSix."), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "", "embed", "--file", path, "--max-words", "3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []struct {
		Text      string    `json:"text"`
		Embedding []float64 `json:"embedding"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decoding output: %v", err)
	}

	want := []string{"One two.", "Three four five.", "Six."}
	if len(got) != len(want) {
		t.Fatalf("expected %d pieces, got %d: %+v", len(want), len(got), got)
	}
	for i, p := range got {
		if p.Text != want[i] {
			t.Errorf("piece %d: expected %q, got %q", i, want[i], p.Text)
		}
		if len(p.Embedding) != 1 || p.Embedding[0] != float64(len(want[i])) {
			t.Errorf("piece %d: unexpected embedding %v", i, p.Embedding)
		}
	}
}
