package processors

import "context"

// Processor handles one event taken from a worker queue.
type Processor interface {
	ProcessEvent(ctx context.Context, event any) error
}
