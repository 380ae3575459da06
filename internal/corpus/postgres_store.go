package corpus

import (
	"context"
	"fmt"

	"github.com/tracepace/coach/core/db/sqlc"
)

// PostgresStore is the Store implementation backing the process-wide
// cache, reading the corpus_documents table via the sqlc query layer.
type PostgresStore struct {
	q *sqlc.Queries
}

// NewPostgresStore builds a Store over q.
func NewPostgresStore(q *sqlc.Queries) *PostgresStore {
	return &PostgresStore{q: q}
}

func (s *PostgresStore) ListDocuments(ctx context.Context) ([]RawDocument, error) {
	rows, err := s.q.ListCorpusDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing corpus documents: %w", err)
	}
	out := make([]RawDocument, 0, len(rows))
	for _, r := range rows {
		out = append(out, RawDocument{ID: r.ID, Kind: r.Kind, FrontMatter: r.FrontMatter, Body: r.Body, Embedding: r.Embedding})
	}
	return out, nil
}

func (s *PostgresStore) GetDocument(ctx context.Context, id string) (RawDocument, error) {
	r, err := s.q.GetCorpusDocument(ctx, id)
	if err != nil {
		return RawDocument{}, fmt.Errorf("getting corpus document %s: %w", id, err)
	}
	return RawDocument{ID: r.ID, Kind: r.Kind, FrontMatter: r.FrontMatter, Body: r.Body, Embedding: r.Embedding}, nil
}
