package store

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is a map-backed DirectoryStore for local development and
// tests. Semantics match PostgresStore including atomic increments.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]json.RawMessage
}

var _ DirectoryStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]json.RawMessage),
	}
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return &Document{ID: id, Data: append(json.RawMessage(nil), raw...)}, nil
}

func (s *MemoryStore) Query(ctx context.Context, collection string, filter Filter, opts ...Option) ([]Document, error) {
	o := buildOptions(opts)

	s.mu.RLock()
	var docs []Document
	for id, raw := range s.collections[collection] {
		if matchesFilter(raw, filter) {
			docs = append(docs, Document{ID: id, Data: append(json.RawMessage(nil), raw...)})
		}
	}
	s.mu.RUnlock()

	if o.OrderBy != "" {
		sort.SliceStable(docs, func(i, j int) bool {
			less := compareField(docs[i].Data, docs[j].Data, o.OrderBy)
			if o.Descending {
				return !less
			}
			return less
		})
	}
	if o.Limit > 0 && len(docs) > o.Limit {
		docs = docs[:o.Limit]
	}
	return docs, nil
}

func (s *MemoryStore) Insert(ctx context.Context, collection string, doc any) (string, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", err
	}

	id, _ := body["id"].(string)
	if id == "" {
		id = uuid.NewString()
		body["id"] = id
		if raw, err = json.Marshal(body); err != nil {
			return "", err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]json.RawMessage)
	}
	s.collections[collection][id] = raw
	return id, nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, delta map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return err
	}
	for k, v := range delta {
		body[k] = v
	}
	merged, err := json.Marshal(body)
	if err != nil {
		return err
	}
	s.collections[collection][id] = merged
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection][id]; !ok {
		return ErrNotFound
	}
	delete(s.collections[collection], id)
	return nil
}

func (s *MemoryStore) IncrementField(ctx context.Context, collection, id, field string, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.collections[collection][id]
	if !ok {
		return 0, ErrNotFound
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return 0, err
	}
	current := 0
	if f, ok := body[field].(float64); ok {
		current = int(f)
	}
	newValue := current + delta
	body[field] = newValue
	merged, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}
	s.collections[collection][id] = merged
	return newValue, nil
}

// matchesFilter compares field values through their JSON encoding so an
// int filter matches a float64 from a decoded document.
func matchesFilter(raw json.RawMessage, filter Filter) bool {
	if len(filter) == 0 {
		return true
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return false
	}
	for k, want := range filter {
		got, ok := body[k]
		if !ok {
			return false
		}
		wantJSON, err1 := json.Marshal(want)
		gotJSON, err2 := json.Marshal(got)
		if err1 != nil || err2 != nil || !bytes.Equal(wantJSON, gotJSON) {
			return false
		}
	}
	return true
}

func compareField(a, b json.RawMessage, field string) bool {
	av := fieldValue(a, field)
	bv := fieldValue(b, field)

	af, aNum := av.(float64)
	bf, bNum := bv.(float64)
	if aNum && bNum {
		return af < bf
	}
	as, _ := av.(string)
	bs, _ := bv.(string)
	return as < bs
}

func fieldValue(raw json.RawMessage, field string) any {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil
	}
	return body[field]
}
