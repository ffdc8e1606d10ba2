package product

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

const uniqueViolation = "23505"

const productColumns = `id, name, description, url, category, page_type, tags, featured,
	image_url, metadata, slug, created_at, updated_at`

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

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.URL, &p.Category, &p.PageType, &p.Tags, &p.Featured,
		&p.ImageURL, &p.Metadata, &p.Slug, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *PostgresRepo) List(ctx context.Context, q Query) ([]Product, int, error) {
	clauses := []string{"1=1"}
	args := []any{}
	argn := 1

	if q.Category != "" {
		clauses = append(clauses, fmt.Sprintf("category = $%d", argn))
		args = append(args, q.Category)
		argn++
	}
	if q.Featured != nil {
		clauses = append(clauses, fmt.Sprintf("featured = $%d", argn))
		args = append(args, *q.Featured)
		argn++
	}
	if q.PageType != "" {
		clauses = append(clauses, fmt.Sprintf("page_type = $%d", argn))
		args = append(args, q.PageType)
		argn++
	}
	if q.Search != "" {
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d OR $%d = ANY(tags))", argn, argn, argn+1))
		args = append(args, "%"+q.Search+"%", q.Search)
		argn += 2
	}

	where := "WHERE " + strings.Join(clauses, " AND ")

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var total int
	if err := r.db.QueryRow(timeoutCtx, "SELECT COUNT(*) FROM saas_products "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := fmt.Sprintf(`
		SELECT %s
		FROM saas_products
		%s
		ORDER BY created_at DESC, id
		LIMIT $%d OFFSET $%d`,
		productColumns, where, argn, argn+1)

	argsWithPage := append([]any{}, args...)
	argsWithPage = append(argsWithPage, q.Limit, q.Offset)
	rows, err := r.db.Query(timeoutCtx, dataSQL, argsWithPage...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *PostgresRepo) get(ctx context.Context, where string, arg any) (Product, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	p, err := scanProduct(r.db.QueryRow(timeoutCtx,
		"SELECT "+productColumns+" FROM saas_products WHERE "+where+" LIMIT 1", arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		if isInvalidUUID(err) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Product, error) {
	return r.get(ctx, "id = $1", id)
}

func (r *PostgresRepo) GetBySlug(ctx context.Context, slug string) (Product, error) {
	return r.get(ctx, "slug = $1", slug)
}

func (r *PostgresRepo) Create(ctx context.Context, p *Product) error {
	const sql = `
		INSERT INTO saas_products (name, description, url, category, page_type, tags, featured,
		                           image_url, metadata, slug, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	err := r.db.QueryRow(timeoutCtx, sql,
		p.Name, p.Description, p.URL, p.Category, p.PageType, tagsOrEmpty(p.Tags), p.Featured,
		p.ImageURL, p.Metadata, p.Slug,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrSlugTaken
	}
	return err
}

func (r *PostgresRepo) Update(ctx context.Context, p *Product) error {
	const sql = `
		UPDATE saas_products SET
			name = $2, description = $3, url = $4, category = $5, page_type = $6, tags = $7,
			featured = $8, image_url = $9, metadata = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	err := r.db.QueryRow(timeoutCtx, sql,
		p.ID, p.Name, p.Description, p.URL, p.Category, p.PageType, tagsOrEmpty(p.Tags),
		p.Featured, p.ImageURL, p.Metadata,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *PostgresRepo) SetImage(ctx context.Context, id, imageURL string, metadata map[string]any) (Product, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	p, err := scanProduct(r.db.QueryRow(timeoutCtx, `
		UPDATE saas_products SET image_url = $2, metadata = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING `+productColumns, id, imageURL, metadata))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func (r *PostgresRepo) ListMissingImage(ctx context.Context, pageType string) ([]Product, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, `
		SELECT `+productColumns+`
		FROM saas_products
		WHERE page_type = $1 AND (image_url IS NULL OR image_url = '')
		ORDER BY created_at`, pageType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) ([]string, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(timeoutCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(timeoutCtx) }()

	var urls []string
	rows, err := tx.Query(timeoutCtx,
		`SELECT screenshot_url FROM showcase_pages WHERE saas_id = $1 AND screenshot_url IS NOT NULL`, id)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			rows.Close()
			return nil, err
		}
		urls = append(urls, u)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var image *string
	err = tx.QueryRow(timeoutCtx, `DELETE FROM saas_products WHERE id = $1 RETURNING image_url`, id).Scan(&image)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if image != nil && *image != "" {
		urls = append(urls, *image)
	}

	if err := tx.Commit(timeoutCtx); err != nil {
		return nil, err
	}
	return dedupe(urls), nil
}

func (r *PostgresRepo) CategoryCounts(ctx context.Context) (map[string]int, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, `SELECT category, COUNT(*) FROM saas_products GROUP BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			category string
			n        int
		)
		if err := rows.Scan(&category, &n); err != nil {
			return nil, err
		}
		counts[category] = n
	}
	return counts, rows.Err()
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// isInvalidUUID reports a malformed id, which cannot match any row.
func isInvalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}
