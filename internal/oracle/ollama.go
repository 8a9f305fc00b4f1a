package oracle

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/starford/notesift/internal/apperr"
)

const (
	// DefaultModel is the chat model used when none is configured.
	DefaultModel = "llama3.1"
	// DefaultURL is the default Ollama API endpoint.
	DefaultURL = "http://localhost:11434"
	// DefaultMaxTokens caps the length of an answer.
	DefaultMaxTokens = 150
)

// Ollama asks questions of a chat model served by Ollama.
type Ollama struct {
	client    *api.Client
	model     string
	timeout   time.Duration
	maxTokens int
}

// OllamaConfig configures NewOllama. Zero values select the defaults.
type OllamaConfig struct {
	URL       string
	Model     string
	Timeout   time.Duration
	MaxTokens int
}

// NewOllama creates an Ollama-backed oracle.
func NewOllama(cfg OllamaConfig) (*Ollama, error) {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	base, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("oracle: parse url: %w", err)
	}
	return &Ollama{
		client:    api.NewClient(base, http.DefaultClient),
		model:     cfg.Model,
		timeout:   cfg.Timeout,
		maxTokens: cfg.MaxTokens,
	}, nil
}

// Model returns the chat model in use.
func (o *Ollama) Model() string {
	return o.model
}

// Ask sends one non-streaming chat request.
func (o *Ollama) Ask(ctx context.Context, system, user string) (string, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	stream := false
	req := &api.ChatRequest{
		Model: o.model,
		Messages: []api.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream:  &stream,
		Options: map[string]any{"num_predict": o.maxTokens},
	}

	var sb strings.Builder
	err := o.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", &apperr.OracleError{Err: err}
	}
	return sb.String(), nil
}

// Ping checks that the Ollama server is reachable.
func (o *Ollama) Ping(ctx context.Context) error {
	if err := o.client.Heartbeat(ctx); err != nil {
		return &apperr.OracleError{Err: err}
	}
	return nil
}
