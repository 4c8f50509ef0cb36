package sessions

import (
	"context"
	"encoding/json"
	"log"

	"github.com/mailpilot/mailpilot/models"
)

// PumpSSE writes each event from the stream as one SSE frame, in receipt
// order, until the stream closes or the client goes away. A write failure
// is a normal termination signal for the request, not an application
// error: further writes simply stop. The caller owns closing the
// underlying response writer; this function returns exactly once.
func PumpSSE(ctx context.Context, events <-chan models.StreamEvent, writer SSEWriter, logger *log.Logger) error {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			data, err := json.Marshal(ev)
			if err != nil {
				logger.Printf("failed to marshal stream event: %v", err)
				continue
			}
			if err := writer.WriteSSE(string(data)); err != nil {
				logger.Printf("client write failed, stopping stream: %v", err)
				return err
			}
			writer.Flush()

		case <-ctx.Done():
			logger.Printf("client disconnected")
			return ctx.Err()
		}
	}
}
