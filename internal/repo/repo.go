package repo

import (
	"context"
	"database/sql"
	"fmt"

	"Stairs/internal/catalog"
)

const schema = `
CREATE TABLE IF NOT EXISTS materials (
	position  INTEGER PRIMARY KEY,
	article   TEXT NOT NULL,
	name      TEXT NOT NULL,
	category  TEXT NOT NULL,
	size_spec TEXT NOT NULL DEFAULT '',
	unit      TEXT NOT NULL,
	price     NUMERIC(12, 2) NOT NULL
);
CREATE INDEX IF NOT EXISTS materials_article_idx ON materials (article);
CREATE TABLE IF NOT EXISTS admins (
	id       SERIAL PRIMARY KEY,
	login    TEXT UNIQUE NOT NULL,
	password TEXT NOT NULL
);`

type PostgresCatalogRepository struct {
	db *sql.DB
}

func NewPostgresCatalogDB(db *sql.DB) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{db: db}
}

func (r *PostgresCatalogRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// ListEntries returns the catalog in load order; pattern lookups depend on it.
func (r *PostgresCatalogRepository) ListEntries(ctx context.Context) ([]catalog.Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT article, name, category, size_spec, unit, price FROM materials ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()

	var entries []catalog.Entry
	for rows.Next() {
		var e catalog.Entry
		var category string
		if err := rows.Scan(&e.Article, &e.Name, &category, &e.SizeSpec, &e.Unit, &e.Price); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		e.Category = catalog.Category(category)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	return entries, nil
}

// Load makes the repository usable as a catalog loader.
func (r *PostgresCatalogRepository) Load(ctx context.Context) ([]catalog.Entry, error) {
	return r.ListEntries(ctx)
}

// ReplaceEntries swaps the whole catalog in one transaction.
func (r *PostgresCatalogRepository) ReplaceEntries(ctx context.Context, entries []catalog.Entry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM materials"); err != nil {
		return fmt.Errorf("clear materials: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO materials (position, article, name, category, size_spec, unit, price) VALUES ($1, $2, $3, $4, $5, $6, $7)")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		if _, err := stmt.ExecContext(ctx, i, e.Article, e.Name, string(e.Category), e.SizeSpec, e.Unit, e.Price); err != nil {
			return fmt.Errorf("insert article %s: %w", e.Article, err)
		}
	}
	return tx.Commit()
}

func (r *PostgresCatalogRepository) GetAdminByLogin(ctx context.Context, login string) (int, string, error) {
	var id int
	var hash string

	query := "SELECT id, password FROM admins WHERE login=$1"

	err := r.db.QueryRowContext(ctx, query, login).Scan(&id, &hash)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, "", nil
		}
		return 0, "", err
	}
	return id, hash, nil
}

func (r *PostgresCatalogRepository) CreateAdmin(ctx context.Context, login, passwordHash string) (int, error) {
	var id int
	query := "INSERT INTO admins (login, password) VALUES ($1, $2) RETURNING id"
	err := r.db.QueryRowContext(ctx, query, login, passwordHash).Scan(&id)
	return id, err
}
