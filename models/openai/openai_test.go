package openai

import (
	"context"
	"strings"
	"testing"

	"github.com/mailpilot/mailpilot/models"
)

func runParse(t *testing.T, stream string) []models.StreamEvent {
	t.Helper()
	var got []models.StreamEvent
	parseStream(context.Background(), strings.NewReader(stream), func(ev models.StreamEvent) bool {
		got = append(got, ev)
		return true
	})
	return got
}

func TestParseStreamTextDeltas(t *testing.T) {
	stream := "" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n\n" +
		"data: [DONE]\n\n"

	got := runParse(t, stream)
	if len(got) != 2 {
		t.Fatalf("expected 2 text events, got %d: %+v", len(got), got)
	}
	if got[0].Token != "Hel" || got[0].FullText != "Hel" {
		t.Errorf("first delta wrong: %+v", got[0])
	}
	if got[1].Token != "lo" || got[1].FullText != "Hello" {
		t.Errorf("cumulative text wrong: %+v", got[1])
	}
}

func TestParseStreamToolCallAccumulation(t *testing.T) {
	stream := "" +
		"data: {\"choices\":[{\"delta\":{\"tool_calls\":[{\"index\":0,\"id\":\"call_abc\",\"function\":{\"name\":\"web_search\",\"arguments\":\"\"}}]}}]}\n\n" +
		"data: {\"choices\":[{\"delta\":{\"tool_calls\":[{\"index\":0,\"function\":{\"arguments\":\"{\\\"que\"}}]}}]}\n\n" +
		"data: {\"choices\":[{\"delta\":{\"tool_calls\":[{\"index\":0,\"function\":{\"arguments\":\"ry\\\": \\\"golang\\\"}\"}}]}}]}\n\n" +
		"data: [DONE]\n\n"

	got := runParse(t, stream)

	var types []string
	for _, ev := range got {
		types = append(types, ev.Type)
	}
	want := []string{models.EventToolStart, models.EventToolArgs, models.EventToolArgs, models.EventToolDone}
	if len(types) != len(want) {
		t.Fatalf("expected %v, got %v", want, types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, types)
		}
	}

	start := got[0]
	if start.ToolCallID != "call_abc" || start.Tool != "web_search" {
		t.Errorf("tool_start wrong: %+v", start)
	}
	if got[1].PartialArgs != "{\"que" {
		t.Errorf("first partial args wrong: %q", got[1].PartialArgs)
	}
	if got[2].PartialArgs != "{\"query\": \"golang\"}" {
		t.Errorf("cumulative partial args wrong: %q", got[2].PartialArgs)
	}

	done := got[3]
	if done.ToolCallID != "call_abc" {
		t.Errorf("tool_done id wrong: %+v", done)
	}
	if q, _ := done.Args["query"].(string); q != "golang" {
		t.Errorf("parsed args wrong: %+v", done.Args)
	}
}

func TestParseStreamMissingToolCallID(t *testing.T) {
	stream := "" +
		"data: {\"choices\":[{\"delta\":{\"tool_calls\":[{\"index\":0,\"function\":{\"name\":\"web_search\",\"arguments\":\"{}\"}}]}}]}\n\n" +
		"data: [DONE]\n\n"

	got := runParse(t, stream)
	if len(got) == 0 {
		t.Fatal("expected events")
	}
	if !strings.HasPrefix(got[0].ToolCallID, "call_") || len(got[0].ToolCallID) <= len("call_") {
		t.Errorf("expected generated id, got %q", got[0].ToolCallID)
	}
}

func TestParseStreamFinalizesAtEOF(t *testing.T) {
	// No [DONE] sentinel: EOF must still finalize pending calls.
	stream := "data: {\"choices\":[{\"delta\":{\"tool_calls\":[{\"index\":0,\"id\":\"c1\",\"function\":{\"name\":\"browse_url\",\"arguments\":\"{\\\"url\\\": \\\"https://x\\\"}\"}}]}}]}\n\n"

	got := runParse(t, stream)
	last := got[len(got)-1]
	if last.Type != models.EventToolDone || last.Tool != "browse_url" {
		t.Fatalf("expected tool_done at EOF, got %+v", last)
	}
}

func TestParseStreamSkipsMalformedFrames(t *testing.T) {
	stream := "" +
		"data: {not json}\n\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"ok\"}}]}\n\n" +
		"data: [DONE]\n\n"

	got := runParse(t, stream)
	if len(got) != 1 || got[0].Token != "ok" {
		t.Fatalf("malformed frame should be skipped, got %+v", got)
	}
}

func TestParseStreamMalformedFrameCap(t *testing.T) {
	var b strings.Builder
	for i := 0; i <= maxFrameSkips; i++ {
		b.WriteString("data: {broken\n\n")
	}
	b.WriteString("data: [DONE]\n\n")

	got := runParse(t, b.String())
	if len(got) != 1 || got[0].Type != models.EventError {
		t.Fatalf("expected a single error event after the skip cap, got %+v", got)
	}
	if !strings.Contains(got[0].Message, "malformed") {
		t.Errorf("unexpected error text: %q", got[0].Message)
	}
}

func TestParseStreamSkipCounterResets(t *testing.T) {
	// Interleave good frames so the consecutive counter never reaches the
	// cap even though total malformed frames exceed it.
	var b strings.Builder
	for i := 0; i < maxFrameSkips*2; i++ {
		b.WriteString("data: {broken\n\n")
		b.WriteString("data: {\"choices\":[{\"delta\":{\"content\":\"x\"}}]}\n\n")
	}
	b.WriteString("data: [DONE]\n\n")

	got := runParse(t, b.String())
	for _, ev := range got {
		if ev.Type == models.EventError {
			t.Fatalf("interleaved good frames must reset the skip counter: %+v", ev)
		}
	}
}

func TestResolveModel(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"gpt-4o", "gpt-4o"},
		{"gpt-4o-mini", "gpt-4o-mini"},
		{"", DefaultModel},
		{"gpt-3.5-turbo", DefaultModel},
		{"claude-sonnet-4-20250514", DefaultModel},
	}
	for _, tc := range cases {
		if got := resolveModel(tc.in); got != tc.want {
			t.Errorf("resolveModel(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBuildRequestIncludesContext(t *testing.T) {
	model := &OpenAI_Model{SystemPrompt: "You are a helpful email assistant."}
	request := models.StreamRequest{
		Thread: &models.ThreadSummary{Subject: "Quarterly report", From: "boss@example.com"},
		Folder: "inbox",
	}
	messages := []models.ChatMessage{{Role: "user", Content: "summarize this"}}

	body := model.buildRequest(DefaultModel, messages, request, models.Declarations())

	if !body.Stream {
		t.Error("stream must be enabled")
	}
	if body.Messages[0].Role != "system" {
		t.Fatalf("expected leading system message, got %+v", body.Messages[0])
	}
	sys := body.Messages[0].Content
	if !strings.Contains(sys, "helpful email assistant") || !strings.Contains(sys, "Quarterly report") || !strings.Contains(sys, "inbox") {
		t.Errorf("system prompt missing context: %q", sys)
	}
	if len(body.Tools) != len(models.Declarations()) {
		t.Errorf("expected %d tools, got %d", len(models.Declarations()), len(body.Tools))
	}
	if body.Tools[0].Type != "function" {
		t.Errorf("tool type wrong: %+v", body.Tools[0])
	}
}

func TestStreamChatRejectsEmptyHistory(t *testing.T) {
	model := &OpenAI_Model{}
	events := model.Stream_Chat(context.Background(), models.StreamRequest{
		Messages: []models.ChatMessage{{Role: "user", Content: "   "}},
	}, nil)

	var got []models.StreamEvent
	for ev := range events {
		got = append(got, ev)
	}
	if len(got) != 1 || got[0].Type != models.EventError {
		t.Fatalf("expected a single error event, got %+v", got)
	}
}
