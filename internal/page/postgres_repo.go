package page

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	invalidTextRep      = "22P02"
)

const pageColumns = `id, saas_id, slug, title, description, page_url, screenshot_url, page_type,
	tags, metadata, created_at, updated_at`

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func scanPage(row pgx.Row) (Page, error) {
	var p Page
	err := row.Scan(
		&p.ID, &p.SaasID, &p.Slug, &p.Title, &p.Description, &p.PageURL, &p.ScreenshotURL,
		&p.PageType, &p.Tags, &p.Metadata, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *PostgresRepo) List(ctx context.Context, q Query) ([]Page, int, error) {
	clauses := []string{"1=1"}
	args := []any{}
	argn := 1

	if q.SaasID != "" {
		clauses = append(clauses, fmt.Sprintf("saas_id::text = $%d", argn))
		args = append(args, q.SaasID)
		argn++
	}
	if q.PageType != "" {
		clauses = append(clauses, fmt.Sprintf("page_type = $%d", argn))
		args = append(args, q.PageType)
		argn++
	}
	if q.Search != "" {
		clauses = append(clauses, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", argn, argn))
		args = append(args, "%"+q.Search+"%")
		argn++
	}

	where := "WHERE " + strings.Join(clauses, " AND ")

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var total int
	if err := r.db.QueryRow(timeoutCtx, "SELECT COUNT(*) FROM showcase_pages "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := fmt.Sprintf(`
		SELECT %s
		FROM showcase_pages
		%s
		ORDER BY created_at DESC, id
		LIMIT $%d OFFSET $%d`,
		pageColumns, where, argn, argn+1)

	argsWithPage := append([]any{}, args...)
	argsWithPage = append(argsWithPage, q.Limit, q.Offset)
	rows, err := r.db.Query(timeoutCtx, dataSQL, argsWithPage...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Page{}
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *PostgresRepo) get(ctx context.Context, where string, arg any) (Page, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	p, err := scanPage(r.db.QueryRow(timeoutCtx,
		"SELECT "+pageColumns+" FROM showcase_pages WHERE "+where+" LIMIT 1", arg))
	if errors.Is(err, pgx.ErrNoRows) || hasCode(err, invalidTextRep) {
		return Page{}, ErrNotFound
	}
	return p, err
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Page, error) {
	return r.get(ctx, "id = $1", id)
}

func (r *PostgresRepo) GetBySlug(ctx context.Context, slug string) (Page, error) {
	return r.get(ctx, "slug = $1", slug)
}

func (r *PostgresRepo) Create(ctx context.Context, p *Page) error {
	const sql = `
		INSERT INTO showcase_pages (saas_id, slug, title, description, page_url, screenshot_url,
		                            page_type, tags, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	err := r.db.QueryRow(timeoutCtx, sql,
		p.SaasID, p.Slug, p.Title, p.Description, p.PageURL, p.ScreenshotURL,
		p.PageType, tags, p.Metadata,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	switch {
	case hasCode(err, uniqueViolation):
		return ErrSlugTaken
	case hasCode(err, foreignKeyViolation):
		return ErrParentNotFound
	}
	return err
}

func (r *PostgresRepo) Update(ctx context.Context, p *Page) error {
	const sql = `
		UPDATE showcase_pages SET
			title = $2, description = $3, page_url = $4, screenshot_url = $5, page_type = $6,
			tags = $7, metadata = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	err := r.db.QueryRow(timeoutCtx, sql,
		p.ID, p.Title, p.Description, p.PageURL, p.ScreenshotURL, p.PageType, tags, p.Metadata,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *PostgresRepo) SetScreenshot(ctx context.Context, id, screenshotURL string, metadata map[string]any) (Page, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	p, err := scanPage(r.db.QueryRow(timeoutCtx, `
		UPDATE showcase_pages SET screenshot_url = $2, metadata = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING `+pageColumns, id, screenshotURL, metadata))
	if errors.Is(err, pgx.ErrNoRows) {
		return Page{}, ErrNotFound
	}
	return p, err
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) (*string, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var screenshot *string
	err := r.db.QueryRow(timeoutCtx,
		`DELETE FROM showcase_pages WHERE id = $1 RETURNING screenshot_url`, id).Scan(&screenshot)
	if errors.Is(err, pgx.ErrNoRows) || hasCode(err, invalidTextRep) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return screenshot, nil
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
