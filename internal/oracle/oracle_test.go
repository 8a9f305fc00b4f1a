package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/starford/notesift/internal/apperr"
)

func TestDecodeVerdict(t *testing.T) {
	cases := []struct {
		in   string
		want Verdict
	}{
		{"True", Positive},
		{"yes, this is a test file", Positive},
		{"False.", Negative},
		{"No", Negative},
		{"true or false", Unknown},
		{"unknown", Unknown},
		{"", Unknown},
		{"Nothing conclusive", Unknown},
		{"It is untrue", Unknown},
	}
	for _, c := range cases {
		if got := DecodeVerdict(c.in); got != c.want {
			t.Errorf("DecodeVerdict(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestMemoCachesAnswers(t *testing.T) {
	calls := 0
	inner := Func(func(ctx context.Context, system, user string) (string, error) {
		calls++
		return "answer:" + user, nil
	})
	m, err := NewMemo(inner, 8)
	if err != nil {
		t.Fatalf("NewMemo: %v", err)
	}
	for i := 0; i < 3; i++ {
		got, err := m.Ask(context.Background(), "sys", "q")
		if err != nil || got != "answer:q" {
			t.Fatalf("Ask = %q, %v", got, err)
		}
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d", m.Len())
	}
}

func TestMemoSkipsErrors(t *testing.T) {
	calls := 0
	inner := Func(func(ctx context.Context, system, user string) (string, error) {
		calls++
		return "", &apperr.OracleError{Err: errors.New("down")}
	})
	m, _ := NewMemo(inner, 8)
	_, _ = m.Ask(context.Background(), "s", "u")
	_, err := m.Ask(context.Background(), "s", "u")
	if !errors.Is(err, apperr.ErrOracle) {
		t.Errorf("err = %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestOllamaAsk(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		Stream bool `json:"stream"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama3.1","message":{"role":"assistant","content":"False"},"done":true}`))
	}))
	defer srv.Close()

	o, err := NewOllama(OllamaConfig{URL: srv.URL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewOllama: %v", err)
	}
	answer, err := o.Ask(context.Background(), "system prompt", "user prompt")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if answer != "False" {
		t.Errorf("answer = %q", answer)
	}
	if got.Model != DefaultModel || got.Stream {
		t.Errorf("request = %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "user prompt" {
		t.Errorf("messages = %+v", got.Messages)
	}
}

func TestOllamaAskFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"model not loaded"}`))
	}))
	defer srv.Close()

	o, _ := NewOllama(OllamaConfig{URL: srv.URL})
	_, err := o.Ask(context.Background(), "s", "u")
	if !errors.Is(err, apperr.ErrOracle) {
		t.Errorf("err = %v, want ErrOracle", err)
	}
}
