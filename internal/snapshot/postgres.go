package snapshot

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS floor_documents (
	path       TEXT PRIMARY KEY,
	body       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresDocuments keeps one JSONB row per document path.
type PostgresDocuments struct {
	db *sql.DB
}

func NewPostgresDocuments(db *sql.DB) *PostgresDocuments {
	return &PostgresDocuments{db: db}
}

func (p *PostgresDocuments) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, schema)
	return errors.Wrap(err, "create floor_documents")
}

func (p *PostgresDocuments) Load(ctx context.Context, path string) ([]byte, bool, error) {
	var body string
	err := p.db.QueryRowContext(ctx,
		`SELECT body::text FROM floor_documents WHERE path = $1`, path).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "load document %s", path)
	}
	return []byte(body), true, nil
}

// Save overwrites the row unconditionally.
func (p *PostgresDocuments) Save(ctx context.Context, path string, body []byte) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO floor_documents (path, body, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (path) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
		path, string(body))
	return errors.Wrapf(err, "save document %s", path)
}

func (p *PostgresDocuments) Delete(ctx context.Context, path string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM floor_documents WHERE path = $1`, path)
	return errors.Wrapf(err, "delete document %s", path)
}
