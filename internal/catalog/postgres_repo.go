package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

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

func (r *PostgresRepo) GetByID(ctx context.Context, id BookID) (Book, error) {
	const query = `
		SELECT id, titulo, isbn, categoria, autores, disponible
		FROM libros
		WHERE id = $1
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	b, err := scanBook(r.db.QueryRow(timeoutCtx, query, id.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, fmt.Errorf("get book %s: %w", id, err)
	}
	return b, nil
}

func (r *PostgresRepo) SetAvailability(ctx context.Context, id BookID, available bool) error {
	const query = `
		UPDATE libros
		SET disponible = $2, updated_at = now()
		WHERE id = $1
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(timeoutCtx, query, id.String(), available)
	if err != nil {
		return fmt.Errorf("set availability %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *PostgresRepo) Search(ctx context.Context, criterion string) ([]Book, error) {
	const query = `
		SELECT id, titulo, isbn, categoria, autores, disponible
		FROM libros
		WHERE titulo ILIKE $1 ESCAPE '\'
		   OR isbn ILIKE $1 ESCAPE '\'
		   OR categoria ILIKE $1 ESCAPE '\'
		   OR EXISTS (SELECT 1 FROM unnest(autores) AS autor WHERE autor ILIKE $1 ESCAPE '\')
		ORDER BY id COLLATE "C" ASC
	`
	pattern := "%" + likeEscaper.Replace(criterion) + "%"

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, query, pattern)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Upsert(ctx context.Context, b Book) error {
	if b.ID.IsZero() {
		return ErrInvalidBookID
	}
	const query = `
		INSERT INTO libros (id, titulo, isbn, categoria, autores, disponible, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			titulo = EXCLUDED.titulo,
			isbn = EXCLUDED.isbn,
			categoria = EXCLUDED.categoria,
			autores = EXCLUDED.autores,
			disponible = EXCLUDED.disponible,
			updated_at = now()`

	authors := b.Authors
	if authors == nil {
		authors = []string{}
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(timeoutCtx, query, b.ID.String(), b.Title, b.ISBN.Value, b.Category, authors, b.Available)
	if err != nil {
		return fmt.Errorf("upsert book %s: %w", b.ID, err)
	}
	return nil
}

func (r *PostgresRepo) Ping(ctx context.Context) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.db.Ping(timeoutCtx)
}

func scanBook(row pgx.Row) (Book, error) {
	var (
		b  Book
		id string
	)
	if err := row.Scan(&id, &b.Title, &b.ISBN.Value, &b.Category, &b.Authors, &b.Available); err != nil {
		return Book{}, err
	}
	parsed, err := ParseBookID(id)
	if err != nil {
		return Book{}, err
	}
	b.ID = parsed
	return b, nil
}
