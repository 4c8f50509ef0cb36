package tools

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"testing"

	"github.com/mailpilot/mailpilot/gmail"
	"github.com/mailpilot/mailpilot/models"
)

type fakeMailClient struct {
	refs      []gmail.ThreadRef
	threads   map[string]*gmail.Thread
	searchErr error
	gotQuery  string
	gotMax    int
}

func (f *fakeMailClient) SearchThreads(_ context.Context, query string, max int) ([]gmail.ThreadRef, error) {
	f.gotQuery = query
	f.gotMax = max
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.refs, nil
}

func (f *fakeMailClient) GetThread(_ context.Context, id string) (*gmail.Thread, error) {
	thread, ok := f.threads[id]
	if !ok {
		return nil, fmt.Errorf("thread not found: %s", id)
	}
	return thread, nil
}

func withFakeMail(t *testing.T, fake *fakeMailClient) {
	t.Helper()
	orig := newMailClient
	newMailClient = func(string) mailClient { return fake }
	t.Cleanup(func() { newMailClient = orig })
}

func plainThread(id, from, subject, body string) *gmail.Thread {
	return &gmail.Thread{
		ID: id,
		Messages: []*gmail.Message{{
			ID: id + "-m1",
			Payload: &gmail.Part{
				MimeType: "text/plain",
				Headers: []gmail.Header{
					{Name: "From", Value: from},
					{Name: "Subject", Value: subject},
				},
				Body: &gmail.Body{Data: base64.RawURLEncoding.EncodeToString([]byte(body))},
			},
		}},
	}
}

func TestSearchEmailsRequiresAuth(t *testing.T) {
	fake := &fakeMailClient{}
	withFakeMail(t, fake)

	result := Search_Emails(context.Background(), models.ToolCall{Name: models.ToolSearchEmails, Args: map[string]any{"query": "from:alice"}}, "")
	if result.Success {
		t.Fatal("missing token must fail")
	}
	if !strings.Contains(result.ResultText, "Not authenticated with Gmail") {
		t.Errorf("unexpected failure text: %q", result.ResultText)
	}
	if fake.gotQuery != "" {
		t.Error("no search may run without a token")
	}
}

func TestSearchEmailsMissingQuery(t *testing.T) {
	withFakeMail(t, &fakeMailClient{})

	result := Search_Emails(context.Background(), models.ToolCall{Name: models.ToolSearchEmails, Args: map[string]any{}}, "token")
	if result.Success {
		t.Fatal("missing query must fail")
	}
	if !strings.Contains(result.ResultText, "no query") {
		t.Errorf("unexpected failure text: %q", result.ResultText)
	}
}

func TestSearchEmailsFormatsThreads(t *testing.T) {
	fake := &fakeMailClient{
		refs: []gmail.ThreadRef{{ID: "t1"}, {ID: "t2"}},
		threads: map[string]*gmail.Thread{
			"t1": plainThread("t1", "alice@example.com", "Invoice March", "Please find the invoice attached."),
			"t2": plainThread("t2", "bob@example.com", "Re: Invoice March", "Paid, thanks!"),
		},
	}
	withFakeMail(t, fake)

	result := Search_Emails(context.Background(), models.ToolCall{Name: models.ToolSearchEmails, Args: map[string]any{"query": "invoice"}}, "token")
	if !result.Success {
		t.Fatalf("expected success, got %q", result.ResultText)
	}
	if fake.gotMax != defaultEmailResults {
		t.Errorf("default max_results should be %d, got %d", defaultEmailResults, fake.gotMax)
	}
	for _, want := range []string{"From: alice@example.com", "Subject: Invoice March", "invoice attached", "Paid, thanks!"} {
		if !strings.Contains(result.ResultText, want) {
			t.Errorf("result missing %q: %q", want, result.ResultText)
		}
	}
}

func TestSearchEmailsClampsMaxResults(t *testing.T) {
	fake := &fakeMailClient{}
	withFakeMail(t, fake)

	Search_Emails(context.Background(), models.ToolCall{Name: models.ToolSearchEmails, Args: map[string]any{"query": "q", "max_results": float64(50)}}, "token")
	if fake.gotMax != maxEmailResults {
		t.Errorf("max_results should clamp to %d, got %d", maxEmailResults, fake.gotMax)
	}
}

func TestSearchEmailsNoMatches(t *testing.T) {
	withFakeMail(t, &fakeMailClient{})

	result := Search_Emails(context.Background(), models.ToolCall{Name: models.ToolSearchEmails, Args: map[string]any{"query": "nothing"}}, "token")
	if !result.Success {
		t.Fatalf("an empty match set is still a successful search: %q", result.ResultText)
	}
	if !strings.Contains(result.ResultText, "No emails found") {
		t.Errorf("unexpected text: %q", result.ResultText)
	}
}

func TestSearchEmailsSearchFailure(t *testing.T) {
	withFakeMail(t, &fakeMailClient{searchErr: fmt.Errorf("Gmail API error: status 401")})

	result := Search_Emails(context.Background(), models.ToolCall{Name: models.ToolSearchEmails, Args: map[string]any{"query": "q"}}, "token")
	if result.Success {
		t.Fatal("search failure must propagate as an unsuccessful result")
	}
	if !strings.Contains(result.ResultText, "status 401") {
		t.Errorf("unexpected text: %q", result.ResultText)
	}
}

func TestSearchEmailsBodyTruncation(t *testing.T) {
	long := strings.Repeat("b", emailBodyLimit+300)
	fake := &fakeMailClient{
		refs: []gmail.ThreadRef{{ID: "t1"}},
		threads: map[string]*gmail.Thread{
			"t1": plainThread("t1", "a@b.c", "Long one", long),
		},
	}
	withFakeMail(t, fake)

	result := Search_Emails(context.Background(), models.ToolCall{Name: models.ToolSearchEmails, Args: map[string]any{"query": "q"}}, "token")
	if !result.Success {
		t.Fatalf("expected success, got %q", result.ResultText)
	}
	if strings.Contains(result.ResultText, long) {
		t.Error("message body was not truncated")
	}
	if !strings.Contains(result.ResultText, strings.Repeat("b", emailBodyLimit)) {
		t.Error("truncated body should keep the first emailBodyLimit bytes")
	}
}
