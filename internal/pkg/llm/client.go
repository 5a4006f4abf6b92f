package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ManuelReschke/TutorFox/internal/pkg/moderation"
)

const DefaultBaseURL = "https://openrouter.ai/api/v1"

var ErrNotConfigured = errors.New("LLM_API_KEY is not configured")

// ChatRequest is the OpenAI compatible completion body we forward.
type ChatRequest struct {
	Model     string               `json:"model"`
	Messages  []moderation.Message `json:"messages"`
	MaxTokens int                  `json:"max_tokens,omitempty"`
}

// Reply is the raw upstream answer, relayed to the browser unchanged.
type Reply struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Client forwards chat and vision completions. It does no moderation of its
// own; callers must moderate before calling it.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) ChatCompletion(ctx context.Context, in ChatRequest) (*Reply, error) {
	if c.APIKey == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	return &Reply{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        out,
	}, nil
}
