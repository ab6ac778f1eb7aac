package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PostgresStore keeps every collection in a single JSONB documents table.
// Equality filters use JSONB containment so they hit the GIN index.
type PostgresStore struct {
	db *sqlx.DB
}

var _ DirectoryStore = (*PostgresStore)(nil)

const documentsSchema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT        NOT NULL,
	id         TEXT        NOT NULL,
	data       JSONB       NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS idx_documents_data ON documents USING GIN (data jsonb_path_ops);
`

func NewPostgresStore(db *sqlx.DB) (*PostgresStore, error) {
	if _, err := db.Exec(documentsSchema); err != nil {
		return nil, fmt.Errorf("create documents table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	var data []byte
	err := s.db.QueryRowxContext(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %s/%s: %v", ErrUnavailable, collection, id, err)
	}
	return &Document{ID: id, Data: data}, nil
}

func (s *PostgresStore) Query(ctx context.Context, collection string, filter Filter, opts ...Option) ([]Document, error) {
	o := buildOptions(opts)

	query := `SELECT id, data FROM documents WHERE collection = $1`
	args := []any{collection}

	if len(filter) > 0 {
		filterJSON, err := json.Marshal(filter)
		if err != nil {
			return nil, fmt.Errorf("marshal filter: %w", err)
		}
		query += ` AND data @> $2`
		args = append(args, filterJSON)
	}
	if o.OrderBy != "" {
		// JSONB comparison orders numbers numerically and strings
		// lexically, which covers counters and RFC3339 timestamps.
		query += fmt.Sprintf(` ORDER BY data -> $%d`, len(args)+1)
		args = append(args, o.OrderBy)
		if o.Descending {
			query += ` DESC`
		}
	}
	if o.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, o.Limit)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %v", ErrUnavailable, collection, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var (
			id   string
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("%w: scan %s: %v", ErrUnavailable, collection, err)
		}
		docs = append(docs, Document{ID: id, Data: data})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: query %s: %v", ErrUnavailable, collection, err)
	}
	return docs, nil
}

func (s *PostgresStore) Insert(ctx context.Context, collection string, doc any) (string, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", fmt.Errorf("document must be a JSON object: %w", err)
	}

	id, _ := body["id"].(string)
	if id == "" {
		id = uuid.NewString()
		body["id"] = id
		if raw, err = json.Marshal(body); err != nil {
			return "", fmt.Errorf("marshal document: %w", err)
		}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)`,
		collection, id, raw,
	)
	if err != nil {
		return "", fmt.Errorf("%w: insert %s: %v", ErrUnavailable, collection, err)
	}
	return id, nil
}

func (s *PostgresStore) Update(ctx context.Context, collection, id string, delta map[string]any) error {
	deltaJSON, err := json.Marshal(delta)
	if err != nil {
		return fmt.Errorf("marshal delta: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET data = data || $3::jsonb, updated_at = now()
		 WHERE collection = $1 AND id = $2`,
		collection, id, deltaJSON,
	)
	if err != nil {
		return fmt.Errorf("%w: update %s/%s: %v", ErrUnavailable, collection, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("%w: delete %s/%s: %v", ErrUnavailable, collection, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) IncrementField(ctx context.Context, collection, id, field string, delta int) (int, error) {
	var newValue int
	err := s.db.QueryRowxContext(ctx,
		`UPDATE documents
		 SET data = jsonb_set(data, ARRAY[$3],
		         to_jsonb(COALESCE((data ->> $3)::bigint, 0) + $4), true),
		     updated_at = now()
		 WHERE collection = $1 AND id = $2
		 RETURNING (data ->> $3)::bigint`,
		collection, id, field, delta,
	).Scan(&newValue)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("%w: increment %s/%s.%s: %v", ErrUnavailable, collection, id, field, err)
	}
	return newValue, nil
}
