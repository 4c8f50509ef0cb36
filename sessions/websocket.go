package sessions

import (
	"context"

	"github.com/mailpilot/mailpilot/models"
)

// PumpWebSocket forwards the event stream as JSON frames on a websocket
// connection. Same delivery contract as the SSE pump: events in receipt
// order, writes stop on the first failure or disconnect.
func PumpWebSocket(ctx context.Context, events <-chan models.StreamEvent, writer *WebSocketWriter) error {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := writer.WriteEvent(ev); err != nil {
				writer.Logger.Printf("websocket write failed, stopping stream: %v", err)
				return err
			}

		case <-ctx.Done():
			writer.Logger.Printf("websocket client disconnected")
			return ctx.Err()
		}
	}
}
