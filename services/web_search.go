package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/abdullahkazmii/ragserver/models"
)

// WebSearcher returns ranked web snippets for a query.
type WebSearcher interface {
	Search(ctx context.Context, query string, numResults int) ([]models.WebResult, error)
	Enabled() bool
}

// SerperClient implements WebSearcher against the Serper search API.
// Without an API key the client is disabled: Search returns an empty
// result set and never touches the network.
type SerperClient struct {
	httpClient *http.Client
	apiKey     string
	apiURL     string
	defaultNum int
}

// Enabled reports whether an API key was configured.
func (s *SerperClient) Enabled() bool {
	return s.apiKey != ""
}

// Search implements WebSearcher. A non-positive numResults falls back to
// the configured default.
func (s *SerperClient) Search(ctx context.Context, query string, numResults int) ([]models.WebResult, error) {
	if !s.Enabled() {
		log.Println("SEARCH: Web search is disabled (no API key configured).")
		return []models.WebResult{}, nil
	}

	if numResults <= 0 {
		numResults = s.defaultNum
	}

	reqBody, err := json.Marshal(models.SerperSearchRequest{
		Q:   query,
		Num: numResults,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal serper request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create serper http request: %w", err)
	}
	httpReq.Header.Set("X-API-KEY", s.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call serper search api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("serper api returned non-200 status: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var serperResp models.SerperSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&serperResp); err != nil {
		return nil, fmt.Errorf("failed to decode serper response: %w", err)
	}

	results := make([]models.WebResult, 0, len(serperResp.Organic))
	for _, item := range serperResp.Organic {
		results = append(results, models.WebResult{
			Title:   item.Title,
			Snippet: item.Snippet,
			Link:    item.Link,
		})
	}

	log.Printf("SEARCH: Web search returned %d results for query", len(results))
	return results, nil
}

// NewSerperClient creates a Serper-backed web searcher. An empty apiKey
// yields a disabled client.
func NewSerperClient(httpClient *http.Client, apiKey, apiURL string, defaultNum int) *SerperClient {
	return &SerperClient{
		httpClient: httpClient,
		apiKey:     apiKey,
		apiURL:     apiURL,
		defaultNum: defaultNum,
	}
}
