// Package ollama implements chatter.ChatProvider against a local Ollama
// server using its native /api/chat NDJSON protocol.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	ai "github.com/spetersoncode/chatter"
	"github.com/spetersoncode/chatter/internal/logging"
)

// DefaultBaseURL is the address of a locally running Ollama server.
const DefaultBaseURL = "http://localhost:11434"

// DefaultModel is used when a request does not select a model.
const DefaultModel = "llama3.2"

// Client talks to an Ollama server. The zero value is not usable; use New.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client

	mu           sync.Mutex
	capabilities map[string]bool
}

// New creates a new Ollama client.
func New(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:      DefaultBaseURL,
		model:        DefaultModel,
		httpClient:   &http.Client{Timeout: 5 * time.Minute},
		capabilities: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ClientOption configures the Ollama client.
type ClientOption func(*Client)

// WithBaseURL sets the server address.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithModel sets the default model for requests.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func (c *Client) buildRequest(messages []ai.Message, options *ai.Options, stream bool) *chatRequest {
	model := c.model
	if options.Model != "" {
		model = options.Model
	}

	req := &chatRequest{
		Model:    model,
		Messages: convertMessages(messages),
		Stream:   stream,
		Tools:    convertTools(options.Tools),
	}
	if options.Temperature != nil || options.MaxTokens > 0 {
		req.Options = map[string]any{}
		if options.Temperature != nil {
			req.Options["temperature"] = *options.Temperature
		}
		if options.MaxTokens > 0 {
			req.Options["num_predict"] = options.MaxTokens
		}
	}
	return req
}

func (c *Client) post(ctx context.Context, path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("ollama: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, wrapStatusError(resp)
	}
	return resp, nil
}

// Chat sends a conversation and returns a complete response.
func (c *Client) Chat(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	if len(messages) == 0 {
		return nil, ai.ErrEmptyInput
	}
	options := ai.ApplyOptions(opts...)

	resp, err := c.post(ctx, "/api/chat", c.buildRequest(messages, options, false))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var chunk chatChunk
	if err := json.NewDecoder(resp.Body).Decode(&chunk); err != nil {
		return nil, fmt.Errorf("ollama: decode response: %w", err)
	}

	return &ai.Response{
		Content:      chunk.Message.Content,
		FinishReason: chunk.DoneReason,
		Usage: ai.Usage{
			InputTokens:  chunk.PromptEvalCount,
			OutputTokens: chunk.EvalCount,
		},
		ToolCalls: extractToolCalls(chunk.Message.ToolCalls),
	}, nil
}

// ChatStream sends a conversation and returns a channel of streaming events.
// Each line of the NDJSON response body becomes at most one delta; the
// line carrying done=true produces the terminal event.
func (c *Client) ChatStream(ctx context.Context, messages []ai.Message, opts ...ai.Option) (<-chan ai.StreamEvent, error) {
	if len(messages) == 0 {
		return nil, ai.ErrEmptyInput
	}
	options := ai.ApplyOptions(opts...)

	resp, err := c.post(ctx, "/api/chat", c.buildRequest(messages, options, true))
	if err != nil {
		return nil, err
	}

	ch := make(chan ai.StreamEvent)

	go func() {
		defer close(ch)
		defer resp.Body.Close()

		var fullContent string
		var finishReason string
		var usage ai.Usage
		var toolCalls []ai.ToolCall

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}

			var chunk chatChunk
			if err := json.Unmarshal(line, &chunk); err != nil {
				ch <- ai.StreamEvent{Err: fmt.Errorf("ollama: malformed stream line: %w", err)}
				return
			}
			if chunk.Error != "" {
				ch <- ai.StreamEvent{Err: fmt.Errorf("ollama: %s", chunk.Error)}
				return
			}

			if chunk.Message.Content != "" {
				select {
				case ch <- ai.StreamEvent{Delta: chunk.Message.Content}:
				case <-ctx.Done():
					ch <- ai.StreamEvent{Err: ctx.Err()}
					return
				}
				fullContent += chunk.Message.Content
			}
			toolCalls = append(toolCalls, extractToolCalls(chunk.Message.ToolCalls)...)

			if chunk.Done {
				finishReason = chunk.DoneReason
				usage.InputTokens = chunk.PromptEvalCount
				usage.OutputTokens = chunk.EvalCount
				ch <- ai.StreamEvent{
					Done: true,
					Response: &ai.Response{
						Content:      fullContent,
						FinishReason: finishReason,
						Usage:        usage,
						ToolCalls:    toolCalls,
					},
				}
				return
			}
		}

		if err := scanner.Err(); err != nil {
			if ctx.Err() != nil {
				err = ctx.Err()
			}
			ch <- ai.StreamEvent{Err: err}
			return
		}
		ch <- ai.StreamEvent{Err: io.ErrUnexpectedEOF}
	}()

	return ch, nil
}

// SupportsTools probes /api/show for the model's capabilities. The result
// is cached per model name for the lifetime of the client; a failed probe
// is reported as unsupported and not cached.
func (c *Client) SupportsTools(ctx context.Context, model string) bool {
	if model == "" {
		model = c.model
	}

	c.mu.Lock()
	if supported, ok := c.capabilities[model]; ok {
		c.mu.Unlock()
		return supported
	}
	c.mu.Unlock()

	resp, err := c.post(ctx, "/api/show", map[string]string{"model": model})
	if err != nil {
		logging.Debug().Err(err).Str("model", model).Msg("capability probe failed")
		return false
	}
	defer resp.Body.Close()

	var info struct {
		Capabilities []string `json:"capabilities"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return false
	}

	supported := false
	for _, cap := range info.Capabilities {
		if cap == "tools" {
			supported = true
			break
		}
	}

	c.mu.Lock()
	c.capabilities[model] = supported
	c.mu.Unlock()
	logging.Debug().Str("model", model).Bool("tools", supported).Msg("capability probe")
	return supported
}

func wrapStatusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := fmt.Sprintf("ollama: server returned %d", resp.StatusCode)

	var errBody struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &errBody) == nil && errBody.Error != "" {
		msg = fmt.Sprintf("ollama: %s", errBody.Error)
	}

	code := resp.StatusCode
	switch {
	case code == 429 || code >= 500:
		return ai.NewTransientError(msg, code, nil)
	case code == 400 || code == 404 || code == 422:
		return ai.NewUserInputError(msg, code, nil)
	default:
		return ai.NewPermanentError(msg, code, nil)
	}
}

var _ ai.ChatProvider = (*Client)(nil)
