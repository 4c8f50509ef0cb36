package tools

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/mailpilot/mailpilot/models"
)

func TestBrowseURLRejectsNonHTTPS(t *testing.T) {
	cases := []struct {
		name string
		url  string
	}{
		{"http", "http://example.com"},
		{"ftp", "ftp://example.com/file"},
		{"no scheme", "example.com"},
		{"empty", ""},
		{"scheme only", "https://"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			orig := browseHTTPDo
			browseHTTPDo = func(req *http.Request) (*http.Response, error) {
				called = true
				return jsonResponse(200, `{"success":true,"content":"x"}`), nil
			}
			defer func() { browseHTTPDo = orig }()

			result := Browse_URL(context.Background(), models.ToolCall{Name: models.ToolBrowseURL, Args: map[string]any{"url": tc.url}}, "")
			if result.Success {
				t.Fatalf("%q must be rejected", tc.url)
			}
			if !strings.Contains(result.ResultText, "https") {
				t.Errorf("failure text should mention the https requirement: %q", result.ResultText)
			}
			if called {
				t.Error("no request may be made for a rejected URL")
			}
		})
	}
}

func TestBrowseURLFetchesPage(t *testing.T) {
	orig := browseHTTPDo
	browseHTTPDo = func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"success":true,"title":"Example Domain","content":"This domain is for use in illustrative examples."}`), nil
	}
	defer func() { browseHTTPDo = orig }()

	result := Browse_URL(context.Background(), models.ToolCall{Name: models.ToolBrowseURL, Args: map[string]any{"url": "https://example.com"}}, "")
	if !result.Success {
		t.Fatalf("expected success, got %q", result.ResultText)
	}
	if !strings.Contains(result.ResultText, "Title: Example Domain") {
		t.Errorf("title missing: %q", result.ResultText)
	}
	if !strings.Contains(result.ResultText, "illustrative examples") {
		t.Errorf("content missing: %q", result.ResultText)
	}
	if result.Query != "https://example.com" {
		t.Errorf("query should carry the URL: %q", result.Query)
	}
}

func TestBrowseURLContentTruncation(t *testing.T) {
	long := strings.Repeat("y", browseContentLimit+500)
	orig := browseHTTPDo
	browseHTTPDo = func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"success":true,"content":"`+long+`"}`), nil
	}
	defer func() { browseHTTPDo = orig }()

	result := Browse_URL(context.Background(), models.ToolCall{Name: models.ToolBrowseURL, Args: map[string]any{"url": "https://example.com"}}, "")
	if !result.Success {
		t.Fatalf("expected success, got %q", result.ResultText)
	}
	if len(result.ResultText) > browseContentLimit {
		t.Fatalf("content exceeds the cap: %d > %d", len(result.ResultText), browseContentLimit)
	}
}

func TestBrowseURLReaderFailure(t *testing.T) {
	orig := browseHTTPDo
	browseHTTPDo = func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"success":false,"error":"page blocked robots"}`), nil
	}
	defer func() { browseHTTPDo = orig }()

	result := Browse_URL(context.Background(), models.ToolCall{Name: models.ToolBrowseURL, Args: map[string]any{"url": "https://example.com"}}, "")
	if result.Success {
		t.Fatal("reader failure must propagate as an unsuccessful result")
	}
	if !strings.Contains(result.ResultText, "page blocked robots") {
		t.Errorf("reader error text missing: %q", result.ResultText)
	}
}

func TestTruncateIsIdempotent(t *testing.T) {
	s := strings.Repeat("z", 100)
	once := truncate(s, 40)
	twice := truncate(once, 40)
	if once != twice {
		t.Fatalf("truncate is not idempotent: %q vs %q", once, twice)
	}
	if len(once) != 40 {
		t.Fatalf("expected exactly 40 bytes, got %d", len(once))
	}
	if got := truncate("short", 40); got != "short" {
		t.Fatalf("under-cap input must pass through unchanged, got %q", got)
	}
	if got := truncate(strings.Repeat("a", 40), 40); len(got) != 40 {
		t.Fatalf("at-cap input must pass through unchanged, got %d bytes", len(got))
	}
}
