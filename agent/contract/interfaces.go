package contract

import "context"

type Extractor interface {
	Extract(text string) Command
}

type Executor interface {
	Execute(ctx context.Context, cmd Command) Envelope
	Status() BackendStatus
}

// EntityStore is the record-level contract shared by the remote backend and
// local collections.
type EntityStore interface {
	List(ctx context.Context, limit int) ([]Record, error)
	Search(ctx context.Context, criteria map[string]any) ([]Record, error)
	Create(ctx context.Context, data Record) (int64, error)
	Update(ctx context.Context, id int64, data Record) error
	Delete(ctx context.Context, id int64) error
}
