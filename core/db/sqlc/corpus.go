package sqlc

import "context"

const listCorpusDocuments = `
SELECT id, kind, front_matter, body, embedding FROM corpus_documents ORDER BY id
`

// ListCorpusDocuments returns every corpus document. internal/corpus calls
// this exactly once, at LoadAll time, and never again for the life of the
// process — the cache it populates is read-only afterward.
func (q *Queries) ListCorpusDocuments(ctx context.Context) ([]CorpusDocument, error) {
	rows, err := q.db.Query(ctx, listCorpusDocuments)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CorpusDocument
	for rows.Next() {
		var d CorpusDocument
		if err := rows.Scan(&d.ID, &d.Kind, &d.FrontMatter, &d.Body, &d.Embedding); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

const getCorpusDocument = `
SELECT id, kind, front_matter, body, embedding FROM corpus_documents WHERE id = $1
`

// GetCorpusDocument reads one corpus document by id. It backs
// corpus.Store.GetDocument; the corpus cache does not call it on a miss.
func (q *Queries) GetCorpusDocument(ctx context.Context, id string) (CorpusDocument, error) {
	row := q.db.QueryRow(ctx, getCorpusDocument, id)
	var d CorpusDocument
	err := row.Scan(&d.ID, &d.Kind, &d.FrontMatter, &d.Body, &d.Embedding)
	return d, err
}
