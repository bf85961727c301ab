package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

const createProductsSQL = `
CREATE TABLE IF NOT EXISTS products (
    position INTEGER PRIMARY KEY,
    id       TEXT    NOT NULL,
    name     TEXT    NOT NULL,
    quantity INTEGER NOT NULL,
    price    REAL    NOT NULL
);
`

// SQLiteBackend stores the catalog in an embedded database. position keeps
// insertion order and lets duplicate ids coexist.
type SQLiteBackend struct {
	db *sql.DB
}

func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer; also keeps ":memory:" on a single connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec(createProductsSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &SQLiteBackend{db: db}, nil
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

func (b *SQLiteBackend) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return b.db.PingContext(ctx)
	})
}

func (b *SQLiteBackend) Load(ctx context.Context) ([]Product, error) {
	var out []Product

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := b.db.QueryContext(ctx, `
			SELECT id, name, quantity, price
			FROM products
			ORDER BY position ASC
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]Product, 0, 16)
		for rows.Next() {
			var p Product
			if err := rows.Scan(&p.ID, &p.Name, &p.Quantity, &p.Price); err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	return out, nil
}

// Save replaces the table contents in a single transaction.
func (b *SQLiteBackend) Save(ctx context.Context, products []Product) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		tx, err := b.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
			return fmt.Errorf("clear products: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO products (position, id, name, quantity, price)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, p := range products {
			if _, err := stmt.ExecContext(ctx, i, p.ID, p.Name, p.Quantity, p.Price); err != nil {
				return fmt.Errorf("insert product %q: %w", p.ID, err)
			}
		}

		return tx.Commit()
	})
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
