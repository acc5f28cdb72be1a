package dedupe

import "context"

// Store tracks post IDs collected by previous runs so they can be skipped.
type Store interface {
	Seen(ctx context.Context, id string) (bool, error)
	Mark(ctx context.Context, id string) error
	MarkBatch(ctx context.Context, ids []string) error
	Close() error
}
