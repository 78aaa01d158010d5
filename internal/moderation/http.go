package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/glimmerhub/keyset/internal/config"
)

type httpClient struct {
	url    string
	apiKey string
	client *http.Client
}

func newHTTPClient(cfg *config.Config) *httpClient {
	return &httpClient{
		url:    cfg.Moderation.URL,
		apiKey: cfg.Moderation.APIKey,
		client: &http.Client{Timeout: cfg.Moderation.Timeout},
	}
}

type moderationRequest struct {
	Input string `json:"input"`
}

type moderationResponse struct {
	Results []struct {
		Flagged    bool            `json:"flagged"`
		Categories map[string]bool `json:"categories"`
	} `json:"results"`
}

func (c *httpClient) Moderate(ctx context.Context, text string) (*Result, error) {
	payload, err := json.Marshal(moderationRequest{Input: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("moderation request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("moderation API returned %d: %s", resp.StatusCode, respBody)
	}

	var apiResp moderationResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(apiResp.Results) == 0 {
		return nil, fmt.Errorf("moderation API returned no results")
	}

	result := &Result{Flagged: apiResp.Results[0].Flagged}
	for category, violated := range apiResp.Results[0].Categories {
		if violated {
			result.Categories = append(result.Categories, category)
		}
	}

	return result, nil
}

var _ Client = (*httpClient)(nil)
