package store

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrNotFound is returned when a document or field does not exist.
	ErrNotFound = errors.New("store: document not found")
	// ErrUnavailable wraps transient storage failures. Callers may retry
	// with the same arguments; all mutations are guarded by existence
	// checks so replays are safe.
	ErrUnavailable = errors.New("store: unavailable")
)

// Filter selects documents whose fields equal the given values.
type Filter map[string]any

// Options controls ordering and result size of a Query.
type Options struct {
	OrderBy    string
	Descending bool
	Limit      int
}

type Option func(*Options)

func OrderBy(field string, descending bool) Option {
	return func(o *Options) {
		o.OrderBy = field
		o.Descending = descending
	}
}

func Limit(n int) Option {
	return func(o *Options) { o.Limit = n }
}

func buildOptions(opts []Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Document is a raw store record. ID is also present inside Data.
type Document struct {
	ID   string
	Data json.RawMessage
}

// Decode unmarshals the document body into out.
func (d Document) Decode(out any) error {
	return json.Unmarshal(d.Data, out)
}

// DirectoryStore is the document database surface the services consume.
// Implementations must keep IncrementField atomic; everything else is
// plain last-write-wins and callers serialize their own read-modify-write
// cycles per key.
type DirectoryStore interface {
	Get(ctx context.Context, collection, id string) (*Document, error)
	Query(ctx context.Context, collection string, filter Filter, opts ...Option) ([]Document, error)
	Insert(ctx context.Context, collection string, doc any) (string, error)
	Update(ctx context.Context, collection, id string, delta map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	// IncrementField atomically adds delta to a numeric field and returns
	// the new value. A missing field counts as 0.
	IncrementField(ctx context.Context, collection, id, field string, delta int) (int, error)
}
