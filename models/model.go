package models

import "context"

// ChatModel is the uniform streaming interface every provider adapter
// satisfies. The returned channel carries the full event sequence for one
// pass and is closed by the adapter when the pass ends. Adapters never
// fail out-of-band: an upstream failure is delivered as a single "error"
// event followed by channel close, so the consumer is never left
// wondering whether more events are coming.
type ChatModel interface {
	Stream_Chat(ctx context.Context, request StreamRequest, tools []FunctionDeclaration) <-chan StreamEvent
}
