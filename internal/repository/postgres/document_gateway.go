package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/repository/docstore"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQL error codes
const (
	pgUniqueViolation = "23505"
)

// documentGateway stores every collection in one JSONB table:
// documents(collection, id, data, created_at, updated_at).
type documentGateway struct {
	db  *pgxpool.Pool
	now func() time.Time
}

func NewDocumentGateway(db *pgxpool.Pool) domain.DocumentGateway {
	return &documentGateway{db: db, now: time.Now}
}

func (r *documentGateway) ServerTimestamp() interface{} {
	return docstore.Timestamp{}
}

func (r *documentGateway) Get(ctx context.Context, collection, id string) (domain.Document, error) {
	var raw []byte
	err := r.db.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return decodeDocument(raw)
}

func (r *documentGateway) List(ctx context.Context, collection string, q domain.Query) ([]domain.Document, error) {
	where := q.Where
	if where == nil {
		where = map[string]interface{}{}
	}
	filter, err := json.Marshal(where)
	if err != nil {
		return nil, fmt.Errorf("encode filter: %w", err)
	}

	// Containment covers equality on top-level fields and uses the GIN index
	query := `SELECT data FROM documents WHERE collection = $1 AND data @> $2::jsonb`
	args := []interface{}{collection, string(filter)}
	if q.OrderBy != "" {
		direction := "ASC"
		if q.Desc {
			direction = "DESC"
		}
		query += fmt.Sprintf(" ORDER BY data->$3 %s, id ASC", direction)
		args = append(args, q.OrderBy)
	} else {
		query += " ORDER BY id ASC"
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	var out []domain.Document
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", collection, err)
		}
		doc, err := decodeDocument(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", collection, err)
	}
	return out, nil
}

func (r *documentGateway) Create(ctx context.Context, collection string, doc domain.Document) (string, error) {
	id, _ := doc["id"].(string)
	if id == "" {
		id = uuid.NewString()
	}

	stored := docstore.Resolve(doc, r.now())
	stored["id"] = id
	raw, err := json.Marshal(stored)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}

	tag, err := r.db.Exec(ctx, `
		INSERT INTO documents (collection, id, data, created_at, updated_at)
		VALUES ($1, $2, $3::jsonb, NOW(), NOW())
		ON CONFLICT DO NOTHING
	`, collection, id, string(raw))
	if err != nil {
		return "", translateWriteError(collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return "", domain.ErrDocumentExists
	}
	return id, nil
}

func (r *documentGateway) Update(ctx context.Context, collection, id string, patch domain.Document) error {
	resolved := docstore.Resolve(patch, r.now())
	delete(resolved, "id")
	raw, err := json.Marshal(resolved)
	if err != nil {
		return fmt.Errorf("encode patch: %w", err)
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE documents
		SET data = data || $3::jsonb, updated_at = NOW()
		WHERE collection = $1 AND id = $2
	`, collection, id, string(raw))
	if err != nil {
		return translateWriteError(collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// UpdateIf guards the merge with containment, so the check and the write
// happen under the same row lock.
func (r *documentGateway) UpdateIf(ctx context.Context, collection, id string, expect, patch domain.Document) error {
	if expect == nil {
		expect = domain.Document{}
	}
	want, err := json.Marshal(expect)
	if err != nil {
		return fmt.Errorf("encode expectation: %w", err)
	}
	resolved := docstore.Resolve(patch, r.now())
	delete(resolved, "id")
	raw, err := json.Marshal(resolved)
	if err != nil {
		return fmt.Errorf("encode patch: %w", err)
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE documents
		SET data = data || $3::jsonb, updated_at = NOW()
		WHERE collection = $1 AND id = $2 AND data @> $4::jsonb
	`, collection, id, string(raw), string(want))
	if err != nil {
		return translateWriteError(collection, id, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM documents WHERE collection = $1 AND id = $2)`,
		collection, id,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check %s/%s: %w", collection, id, err)
	}
	if !exists {
		return domain.ErrDocumentNotFound
	}
	return domain.ErrPreconditionFailed
}

func (r *documentGateway) Delete(ctx context.Context, collection, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// IncrementField runs as a single UPDATE so concurrent callers serialise on
// the row lock instead of racing a read-modify-write.
func (r *documentGateway) IncrementField(ctx context.Context, collection, id, field string, delta int64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE documents
		SET data = jsonb_set(data, ARRAY[$3::text], to_jsonb(COALESCE((data->>$3::text)::numeric, 0) + $4::bigint), true),
		    updated_at = NOW()
		WHERE collection = $1 AND id = $2
	`, collection, id, field, delta)
	if err != nil {
		return fmt.Errorf("increment %s/%s.%s: %w", collection, id, field, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func translateWriteError(collection, id string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return domain.ErrDocumentExists
	}
	return fmt.Errorf("write %s/%s: %w", collection, id, err)
}

func decodeDocument(raw []byte) (domain.Document, error) {
	var doc domain.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}
