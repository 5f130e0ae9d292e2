package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/tonyliqx/nightreign-relic-manager/internal/inventory/migrations"
	"github.com/tonyliqx/nightreign-relic-manager/internal/platform/storage/sqlitemigrate"
	"github.com/tonyliqx/nightreign-relic-manager/internal/relic"
)

// Store keeps a collection in SQLite between runs.
type Store struct {
	sqlDB *sql.DB
}

// Record is a stored relic.
type Record struct {
	ID        string
	Relic     relic.Relic
	CreatedAt time.Time
}

// Open opens (creating if needed) the store at path and applies migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	dsn := "file:" + filepath.Clean(path) +
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(ctx, sqlDB, migrations.FS, "."); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return errors.New("storage is not configured")
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insert(ctx context.Context, db execer, r relic.Relic, now time.Time) (Record, error) {
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	rec := Record{ID: uuid.NewString(), Relic: r, CreatedAt: now.UTC().Truncate(time.Millisecond)}
	f := columns(r)
	_, err := db.ExecContext(ctx,
		`INSERT INTO relics (id, kind, color, f1, f2, f3, f4, f5, f6, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, r.Kind.String(), r.Color.String(), f[0], f[1], f[2], f[3], f[4], f[5], rec.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert relic: %w", err)
	}
	return rec, nil
}

// columns lays a relic out over the six text columns: simple effects use
// the first three, dual pairs use all six as p1,n1,p2,n2,p3,n3.
func columns(r relic.Relic) [6]string {
	var f [6]string
	if r.Kind == relic.Simple {
		copy(f[:], r.Effects[:])
		return f
	}
	for i, p := range r.Pairs {
		f[2*i] = p.Positive
		f[2*i+1] = p.Negative
	}
	return f
}

// Add stores one relic.
func (s *Store) Add(ctx context.Context, r relic.Relic) (Record, error) {
	if err := s.ready(ctx); err != nil {
		return Record{}, err
	}
	return insert(ctx, s.sqlDB, r, time.Now())
}

// AddAll stores every relic of c in one transaction.
func (s *Store) AddAll(ctx context.Context, c Collection) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck
	n, err := insertAll(ctx, tx, c)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

func insertAll(ctx context.Context, tx *sql.Tx, c Collection) (int, error) {
	now := time.Now()
	for i, r := range c.All() {
		if _, err := insert(ctx, tx, r, now); err != nil {
			return i, err
		}
	}
	return c.Len(), nil
}

// Replace swaps the stored collection for c atomically.
func (s *Store) Replace(ctx context.Context, c Collection) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck
	if _, err := tx.ExecContext(ctx, `DELETE FROM relics`); err != nil {
		return fmt.Errorf("clear relics: %w", err)
	}
	if _, err := insertAll(ctx, tx, c); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// List returns every stored relic in insertion order.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, kind, color, f1, f2, f3, f4, f5, f6, created_at FROM relics ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list relics: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec          Record
			kind, color  string
			f            [6]string
			createdMilli int64
		)
		if err := rows.Scan(&rec.ID, &kind, &color, &f[0], &f[1], &f[2], &f[3], &f[4], &f[5], &createdMilli); err != nil {
			return nil, fmt.Errorf("scan relic: %w", err)
		}
		r, err := fromColumns(kind, color, f)
		if err != nil {
			return nil, fmt.Errorf("relic %s: %w", rec.ID, err)
		}
		rec.Relic = r
		rec.CreatedAt = time.UnixMilli(createdMilli).UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list relics: %w", err)
	}
	return out, nil
}

func fromColumns(kind, color string, f [6]string) (relic.Relic, error) {
	k, err := relic.ParseKind(kind)
	if err != nil {
		return relic.Relic{}, err
	}
	c, err := relic.ParseRelicColor(color)
	if err != nil {
		return relic.Relic{}, err
	}
	if k == relic.Simple {
		return relic.NewSimple(c, f[0], f[1], f[2])
	}
	return relic.NewDual(c,
		relic.Pair{Positive: f[0], Negative: f[1]},
		relic.Pair{Positive: f[2], Negative: f[3]},
		relic.Pair{Positive: f[4], Negative: f[5]},
	)
}

// Collection loads the stored relics as a collection.
func (s *Store) Collection(ctx context.Context) (Collection, error) {
	recs, err := s.List(ctx)
	if err != nil {
		return Collection{}, err
	}
	var c Collection
	for _, rec := range recs {
		c.Add(rec.Relic)
	}
	return c, nil
}

// Delete removes one relic by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM relics WHERE id = ?`, strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("delete relic: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete relic: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Clear removes every stored relic.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM relics`); err != nil {
		return fmt.Errorf("clear relics: %w", err)
	}
	return nil
}

// Count returns how many relics of each kind are stored.
func (s *Store) Count(ctx context.Context) (simple, dual int, err error) {
	if err := s.ready(ctx); err != nil {
		return 0, 0, err
	}
	err = s.sqlDB.QueryRowContext(ctx,
		`SELECT
		   COALESCE(SUM(CASE WHEN kind = 'simple' THEN 1 ELSE 0 END), 0),
		   COALESCE(SUM(CASE WHEN kind = 'dual' THEN 1 ELSE 0 END), 0)
		 FROM relics`,
	).Scan(&simple, &dual)
	if err != nil {
		return 0, 0, fmt.Errorf("count relics: %w", err)
	}
	return simple, dual, nil
}
