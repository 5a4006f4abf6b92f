package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"
)

const DefaultClassifierURL = "https://api.openai.com/v1/moderations"

// ErrNoCredential means the classifier was asked to run without an API key.
var ErrNoCredential = errors.New("moderation classifier credential is not configured")

// Classification is the external classifier's answer.
type Classification struct {
	Flagged    bool     `json:"flagged"`
	Categories []string `json:"categories,omitempty"`
}

// Classifier is the optional first moderation layer.
type Classifier interface {
	Classify(ctx context.Context, text string) (Classification, error)
}

// OpenAIClassifier calls an OpenAI compatible /moderations endpoint.
type OpenAIClassifier struct {
	APIKey     string
	URL        string
	HTTPClient *http.Client
}

func NewOpenAIClassifier(apiKey, url string, timeout time.Duration) *OpenAIClassifier {
	if url == "" {
		url = DefaultClassifierURL
	}
	return &OpenAIClassifier{
		APIKey:     apiKey,
		URL:        url,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

func (c *OpenAIClassifier) Classify(ctx context.Context, text string) (Classification, error) {
	if c.APIKey == "" {
		return Classification{}, ErrNoCredential
	}

	payload, err := json.Marshal(map[string]string{"input": text})
	if err != nil {
		return Classification{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(payload))
	if err != nil {
		return Classification{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return Classification{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Classification{}, fmt.Errorf("read moderation response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Classification{}, fmt.Errorf("moderation request failed: status=%d", resp.StatusCode)
	}

	var out struct {
		Results []struct {
			Flagged    bool            `json:"flagged"`
			Categories map[string]bool `json:"categories"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return Classification{}, fmt.Errorf("decode moderation response: %w", err)
	}
	if len(out.Results) == 0 {
		return Classification{}, errors.New("moderation response has no results")
	}

	res := out.Results[0]
	result := Classification{Flagged: res.Flagged}
	for name, hit := range res.Categories {
		if hit {
			result.Categories = append(result.Categories, name)
		}
	}
	sort.Strings(result.Categories)
	return result, nil
}
