package merchants

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/receiptdesk/receipt-pipeline/internal/entity"
)

// SQLiteStore backs the Repository with a single-table sqlite database so a
// personalized name set survives restarts. Matching still happens against an
// in-memory copy; writes go through to disk.
type SQLiteStore struct {
	db  *sql.DB
	mem *Store
}

func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS merchants (name TEXT PRIMARY KEY)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create merchants table: %w", err)
	}

	mem := NewStore()
	rows, err := db.QueryContext(ctx, `SELECT name FROM merchants ORDER BY rowid`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("load merchants: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("scan merchant: %w", err)
		}
		_ = mem.Add(ctx, name)
	}
	if err := rows.Err(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("iterate merchants: %w", err)
	}
	return &SQLiteStore{db: db, mem: mem}, nil
}

func (s *SQLiteStore) Add(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO merchants (name) VALUES (?)`, name); err != nil {
		return fmt.Errorf("insert merchant: %w", err)
	}
	return s.mem.Add(ctx, name)
}

func (s *SQLiteStore) All(ctx context.Context) ([]string, error) {
	return s.mem.All(ctx)
}

func (s *SQLiteStore) FindBestMatch(ctx context.Context, query string, threshold float64) (entity.MerchantCandidate, bool, error) {
	return s.mem.FindBestMatch(ctx, query, threshold)
}

func (s *SQLiteStore) Suggest(ctx context.Context, query string, threshold float64, k int) ([]entity.MerchantCandidate, error) {
	return s.mem.Suggest(ctx, query, threshold, k)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
