package gmail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

const DefaultBaseURL = "https://gmail.googleapis.com/gmail/v1/users/me"

// httpDo is a package-level var so tests can mock the transport.
var httpDo = func(req *http.Request) (*http.Response, error) {
	return http.DefaultClient.Do(req)
}

// Client is a thin bearer-token client for the Gmail REST API.
type Client struct {
	AccessToken string
	BaseURL     string // Optional: custom API endpoint
}

func NewClient(accessToken string) *Client {
	return &Client{AccessToken: accessToken}
}

// ThreadRef is one entry from a thread search.
type ThreadRef struct {
	ID      string `json:"id"`
	Snippet string `json:"snippet"`
}

type threadListResponse struct {
	Threads []ThreadRef `json:"threads"`
}

// Thread is a full conversation with message payloads.
type Thread struct {
	ID       string     `json:"id"`
	Messages []*Message `json:"messages"`
}

type Message struct {
	ID      string `json:"id"`
	Snippet string `json:"snippet"`
	Payload *Part  `json:"payload"`
}

// Part is a MIME tree node. Body data is base64url-encoded on the wire.
type Part struct {
	MimeType string   `json:"mimeType"`
	Headers  []Header `json:"headers"`
	Body     *Body    `json:"body"`
	Parts    []*Part  `json:"parts"`
}

type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Body struct {
	Size int    `json:"size"`
	Data string `json:"data"`
}

// Header returns the named header of the message's top-level part, or "".
func (m *Message) Header(name string) string {
	if m.Payload == nil {
		return ""
	}
	for _, h := range m.Payload.Headers {
		if h.Name == name {
			return h.Value
		}
	}
	return ""
}

// SearchThreads runs a Gmail query and returns up to max thread refs.
func (c *Client) SearchThreads(ctx context.Context, query string, max int) ([]ThreadRef, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("maxResults", strconv.Itoa(max))

	var out threadListResponse
	if err := c.get(ctx, "/threads?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return out.Threads, nil
}

// GetThread fetches a thread with full message payloads.
func (c *Client) GetThread(ctx context.Context, id string) (*Thread, error) {
	var out Thread
	if err := c.get(ctx, "/threads/"+url.PathEscape(id)+"?format=full", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Send submits a raw RFC 822 message, base64url-encoded by the caller.
func (c *Client) Send(ctx context.Context, raw string, threadID string) error {
	body := map[string]string{"raw": raw}
	if threadID != "" {
		body["threadId"] = threadID
	}
	return c.post(ctx, "/messages/send", body, nil)
}

// Archive removes a thread from the inbox.
func (c *Client) Archive(ctx context.Context, threadID string) error {
	return c.ModifyLabels(ctx, threadID, nil, []string{"INBOX"})
}

// ModifyLabels adds and removes labels on a thread.
func (c *Client) ModifyLabels(ctx context.Context, threadID string, add, remove []string) error {
	body := map[string]any{}
	if len(add) > 0 {
		body["addLabelIds"] = add
	}
	if len(remove) > 0 {
		body["removeLabelIds"] = remove
	}
	return c.post(ctx, "/threads/"+url.PathEscape(threadID)+"/modify", body, nil)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL()+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	jsonBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL()+path, bytes.NewReader(jsonBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	resp, err := httpDo(req)
	if err != nil {
		return fmt.Errorf("Gmail request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Gmail API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}

func (c *Client) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return DefaultBaseURL
}
