package source

import (
	"context"
	"fmt"
	"net/http"

	"github.com/srr_metrics/backend/internal/config"
	"github.com/srr_metrics/backend/internal/db"
)

// New builds the source selected by cfg.SourceKind. The returned close func
// releases any pool the source opened and is never nil.
func New(ctx context.Context, cfg config.Config) (Source, func(), error) {
	switch cfg.SourceKind {
	case KindSheets:
		return &SheetsSource{
			CSVURL:   cfg.SheetCSVURL,
			MaxTries: cfg.FetchMaxTries,
			Client:   &http.Client{Timeout: cfg.FetchTimeout},
		}, func() {}, nil
	case KindFile:
		return &FileSource{Path: cfg.SourceFile}, func() {}, nil
	case KindPostgres:
		store, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, func() {}, fmt.Errorf("connect source database: %w", err)
		}
		return &PostgresSource{Store: store, Table: cfg.SourceTable}, store.Close, nil
	default:
		return nil, func() {}, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.SourceKind)
	}
}
