package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ridoystarlord/migraview/runner"
)

const (
	listAppliedQuery = "SELECT migration, batch FROM %s ORDER BY batch, id"
	countQuery       = "SELECT COUNT(*) FROM %s"
)

type pgStore struct {
	pool  *pgxpool.Pool
	table string
}

func (s *pgStore) tableName() string {
	return pgx.Identifier(strings.Split(s.table, ".")).Sanitize()
}

func (s *pgStore) ListApplied(ctx context.Context) ([]runner.AppliedMigration, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(listAppliedQuery, s.tableName()))
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()

	var applied []runner.AppliedMigration
	for rows.Next() {
		var m runner.AppliedMigration
		if err := rows.Scan(&m.Name, &m.Batch); err != nil {
			return nil, fmt.Errorf("scan migration: %w", err)
		}
		applied = append(applied, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating migration rows: %w", err)
	}
	return applied, nil
}

func (s *pgStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, fmt.Sprintf(countQuery, s.tableName())).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count migrations: %w", err)
	}
	return count, nil
}

func (s *pgStore) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *pgStore) Close() { s.pool.Close() }

// sqlStore serves MySQL and SQLite through database/sql.
type sqlStore struct {
	db    *sql.DB
	table string
	quote func(string) string
}

func (s *sqlStore) ListApplied(ctx context.Context) ([]runner.AppliedMigration, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(listAppliedQuery, s.quote(s.table)))
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()

	var applied []runner.AppliedMigration
	for rows.Next() {
		var m runner.AppliedMigration
		if err := rows.Scan(&m.Name, &m.Batch); err != nil {
			return nil, fmt.Errorf("scan migration: %w", err)
		}
		applied = append(applied, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating migration rows: %w", err)
	}
	return applied, nil
}

func (s *sqlStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf(countQuery, s.quote(s.table))).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count migrations: %w", err)
	}
	return count, nil
}

func (s *sqlStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *sqlStore) Close() { s.db.Close() }
