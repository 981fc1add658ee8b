package db

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/srr_metrics/backend/internal/models"
)

const timestampLayout = "2006-01-02 15:04:05"

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

// WithReadTx runs fn inside a read-only transaction that is always rolled back.
func (s *Store) WithReadTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	return fn(tx)
}

// ReadTable returns every row of table as text cells under the column names.
// NULL reads as an empty cell, which the normalizer treats as missing.
func (s *Store) ReadTable(ctx context.Context, table string) (models.Table, error) {
	ident, err := parseIdentifier(table)
	if err != nil {
		return models.Table{}, err
	}

	var out models.Table
	err = s.WithReadTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, "SELECT * FROM "+ident.Sanitize())
		if err != nil {
			return err
		}
		defer rows.Close()

		fields := rows.FieldDescriptions()
		for _, fd := range fields {
			out.Header = append(out.Header, fd.Name)
		}
		for rows.Next() {
			values, err := rows.Values()
			if err != nil {
				return err
			}
			rec := make([]string, len(values))
			for i, v := range values {
				rec[i] = cellText(v, fields[i].DataTypeOID)
			}
			out.Rows = append(out.Rows, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return models.Table{}, fmt.Errorf("read table %s: %w", table, err)
	}
	return out, nil
}

func parseIdentifier(table string) (pgx.Identifier, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return nil, fmt.Errorf("source table is not set")
	}
	parts := strings.Split(table, ".")
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return nil, fmt.Errorf("invalid table name %q", table)
		}
	}
	return pgx.Identifier(parts), nil
}

// cellText renders a value the way the sheet export would. timestamptz keeps
// its offset so the instant survives whatever zone the process runs in.
func cellText(v any, oid uint32) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case time.Time:
		if oid == pgtype.TimestamptzOID {
			return t.Format(time.RFC3339)
		}
		return t.Format(timestampLayout)
	case bool:
		if t {
			return "Yes"
		}
		return "No"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
