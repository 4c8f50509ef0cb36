package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/mailpilot/mailpilot/models"
)

type captureWriter struct {
	frames    []string
	flushes   int
	failAfter int // fail the write once this many frames were accepted; -1 never
}

func (w *captureWriter) WriteSSE(data string) error {
	if w.failAfter >= 0 && len(w.frames) >= w.failAfter {
		return errors.New("broken pipe")
	}
	w.frames = append(w.frames, data)
	return nil
}

func (w *captureWriter) Flush() { w.flushes++ }

func discardLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func feed(events ...models.StreamEvent) <-chan models.StreamEvent {
	out := make(chan models.StreamEvent, len(events))
	for _, ev := range events {
		out <- ev
	}
	close(out)
	return out
}

func TestPumpSSEWritesEventsInOrder(t *testing.T) {
	writer := &captureWriter{failAfter: -1}
	events := feed(
		models.TextEvent("a", "a"),
		models.StatusEvent("Searching the web for \"x\"", 1, 1),
		models.DoneEvent(),
	)

	if err := PumpSSE(context.Background(), events, writer, discardLogger()); err != nil {
		t.Fatalf("expected clean return, got %v", err)
	}
	if len(writer.frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(writer.frames))
	}
	if writer.flushes != 3 {
		t.Errorf("expected a flush per frame, got %d", writer.flushes)
	}

	var first models.StreamEvent
	if err := json.Unmarshal([]byte(writer.frames[0]), &first); err != nil {
		t.Fatalf("frame 0 is not valid JSON: %v", err)
	}
	if first.Type != models.EventText || first.FullText != "a" {
		t.Errorf("frame 0 wrong: %+v", first)
	}

	var last models.StreamEvent
	if err := json.Unmarshal([]byte(writer.frames[2]), &last); err != nil {
		t.Fatalf("frame 2 is not valid JSON: %v", err)
	}
	if last.Type != models.EventDone {
		t.Errorf("last frame should be the terminal done, got %+v", last)
	}
}

func TestPumpSSEStopsOnWriteFailure(t *testing.T) {
	writer := &captureWriter{failAfter: 1}
	events := feed(
		models.TextEvent("a", "a"),
		models.TextEvent("b", "ab"),
		models.DoneEvent(),
	)

	err := PumpSSE(context.Background(), events, writer, discardLogger())
	if err == nil {
		t.Fatal("expected the write error back")
	}
	if len(writer.frames) != 1 {
		t.Fatalf("no frames should be written after a failure, got %d", len(writer.frames))
	}
}

func TestPumpSSEStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Unbuffered and never written to: only the cancelled context can end
	// the pump.
	events := make(chan models.StreamEvent)
	writer := &captureWriter{failAfter: -1}

	err := PumpSSE(ctx, events, writer, discardLogger())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(writer.frames) != 0 {
		t.Errorf("no frames expected, got %d", len(writer.frames))
	}
}
