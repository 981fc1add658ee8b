package source

import (
	"context"

	"github.com/srr_metrics/backend/internal/models"
)

// TableReader is the part of db.Store the postgres source needs.
type TableReader interface {
	ReadTable(ctx context.Context, table string) (models.Table, error)
}

// PostgresSource reads a mirrored copy of the worksheet from Table. When Table
// is empty the worksheet name is used as the table name.
type PostgresSource struct {
	Store TableReader
	Table string
}

func (s *PostgresSource) Kind() string { return KindPostgres }

func (s *PostgresSource) ReadWorksheet(ctx context.Context, worksheet string) (models.Table, error) {
	table := s.Table
	if table == "" {
		table = worksheet
	}
	return s.Store.ReadTable(ctx, table)
}

// Ping checks the database when the reader supports it.
func (s *PostgresSource) Ping(ctx context.Context) error {
	if p, ok := s.Store.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}
