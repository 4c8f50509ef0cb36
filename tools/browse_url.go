package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/mailpilot/mailpilot/models"
)

const (
	DefaultReaderURL = "https://reader.mailpilot.app/api/read"

	browseContentLimit = 4000
)

var browseHTTPDo = func(req *http.Request) (*http.Response, error) {
	return http.DefaultClient.Do(req)
}

type readerRequest struct {
	URL string `json:"url"`
}

type readerResponse struct {
	Success bool   `json:"success"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
}

// Browse_URL fetches a page through the reader endpoint. Non-https URLs
// are rejected before any request is made; this is a hard precondition,
// not a retry case.
func Browse_URL(ctx context.Context, call models.ToolCall, _ string) models.ToolResult {
	raw, _ := call.Args["url"].(string)
	result := models.ToolResult{Name: models.ToolBrowseURL, Query: raw}

	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Scheme != "https" || parsed.Host == "" {
		result.ResultText = fmt.Sprintf("Cannot browse %q: only https:// URLs are supported.", raw)
		return result
	}

	endpoint := os.Getenv("READER_API_URL")
	if endpoint == "" {
		endpoint = DefaultReaderURL
	}

	jsonBytes, err := json.Marshal(readerRequest{URL: parsed.String()})
	if err != nil {
		result.ResultText = fmt.Sprintf("Browsing failed: %v", err)
		return result
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(jsonBytes))
	if err != nil {
		result.ResultText = fmt.Sprintf("Browsing failed: %v", err)
		return result
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := browseHTTPDo(req)
	if err != nil {
		result.ResultText = fmt.Sprintf("Browsing %s failed: %v", parsed.Host, err)
		return result
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		result.ResultText = fmt.Sprintf("Browsing %s failed reading response: %v", parsed.Host, err)
		return result
	}
	if resp.StatusCode != http.StatusOK {
		result.ResultText = fmt.Sprintf("Browsing %s failed with status %d", parsed.Host, resp.StatusCode)
		return result
	}

	var page readerResponse
	if err := json.Unmarshal(body, &page); err != nil {
		result.ResultText = fmt.Sprintf("Browsing %s returned an unreadable response: %v", parsed.Host, err)
		return result
	}
	if !page.Success {
		msg := page.Error
		if msg == "" {
			msg = "the page could not be read"
		}
		result.ResultText = fmt.Sprintf("Browsing %s failed: %s", parsed.Host, msg)
		return result
	}

	var b strings.Builder
	if page.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n\n", page.Title)
	}
	b.WriteString(truncate(page.Content, browseContentLimit))

	result.ResultText = b.String()
	result.Success = true
	return result
}
