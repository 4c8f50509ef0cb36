package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/mailpilot/mailpilot/models"
)

const (
	DefaultSearchURL = "https://search.mailpilot.app/api/search"

	maxSearchResults = 5
	snippetLimit     = 500
)

// searchHTTPDo is a package-level var so tests can mock it.
var searchHTTPDo = func(req *http.Request) (*http.Response, error) {
	return http.DefaultClient.Do(req)
}

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Answer  string `json:"answer,omitempty"`
	Results []struct {
		Rank    int    `json:"rank"`
		Title   string `json:"title"`
		URL     string `json:"url"`
		Snippet string `json:"snippet"`
	} `json:"results"`
}

// Web_Search queries the search-aggregation endpoint and formats up to
// maxSearchResults entries as bounded text.
func Web_Search(ctx context.Context, call models.ToolCall, _ string) models.ToolResult {
	query, _ := call.Args["query"].(string)
	result := models.ToolResult{Name: models.ToolWebSearch, Query: query}

	if strings.TrimSpace(query) == "" {
		result.ResultText = "Web search failed: no query was provided."
		return result
	}

	apiKey := os.Getenv("SEARCH_API_KEY")
	if apiKey == "" {
		result.ResultText = "Web search is not configured: SEARCH_API_KEY is not set."
		return result
	}

	endpoint := os.Getenv("SEARCH_API_URL")
	if endpoint == "" {
		endpoint = DefaultSearchURL
	}

	jsonBytes, err := json.Marshal(searchRequest{Query: query})
	if err != nil {
		result.ResultText = fmt.Sprintf("Web search failed: %v", err)
		return result
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(jsonBytes))
	if err != nil {
		result.ResultText = fmt.Sprintf("Web search failed: %v", err)
		return result
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := searchHTTPDo(req)
	if err != nil {
		result.ResultText = fmt.Sprintf("Web search failed: %v", err)
		return result
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		result.ResultText = fmt.Sprintf("Web search failed reading response: %v", err)
		return result
	}
	if resp.StatusCode != http.StatusOK {
		result.ResultText = fmt.Sprintf("Web search failed with status %d: %s", resp.StatusCode, truncate(string(body), 200))
		return result
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		result.ResultText = fmt.Sprintf("Web search returned an unreadable response: %v", err)
		return result
	}

	result.ResultText = formatSearchResults(query, parsed)
	result.Success = true
	return result
}

func formatSearchResults(query string, parsed searchResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Search query: %s\n\n", query)

	if parsed.Answer != "" {
		fmt.Fprintf(&b, "Answer: %s\n\n", truncate(parsed.Answer, snippetLimit))
	}

	if len(parsed.Results) == 0 {
		b.WriteString("No results found.\n")
		return b.String()
	}

	count := len(parsed.Results)
	if count > maxSearchResults {
		count = maxSearchResults
	}
	for i := 0; i < count; i++ {
		r := parsed.Results[i]
		fmt.Fprintf(&b, "%d. %s\n", i+1, r.Title)
		fmt.Fprintf(&b, "   URL: %s\n", r.URL)
		fmt.Fprintf(&b, "   %s\n\n", truncate(r.Snippet, snippetLimit))
	}
	return b.String()
}
