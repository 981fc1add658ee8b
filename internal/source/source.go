package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/srr_metrics/backend/internal/models"
)

var ErrUnknownKind = errors.New("unknown source kind")

const (
	KindSheets   = "sheets"
	KindFile     = "file"
	KindPostgres = "postgres"
)

// Source reads a whole worksheet. Fetch failures are returned as-is; callers
// decide what a failed refresh means for the view.
type Source interface {
	ReadWorksheet(ctx context.Context, worksheet string) (models.Table, error)
	Kind() string
}

// DecodeCSV reads a header row followed by data rows. Ragged rows are kept;
// missing trailing cells read as null downstream.
func DecodeCSV(r io.Reader) (models.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return models.Table{}, fmt.Errorf("empty worksheet")
		}
		return models.Table{}, fmt.Errorf("read header: %w", err)
	}
	table := models.Table{Header: header}
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.Table{}, fmt.Errorf("read row %d: %w", len(table.Rows)+2, err)
		}
		if blankRow(rec) {
			continue
		}
		table.Rows = append(table.Rows, rec)
	}
	return table, nil
}

func blankRow(rec []string) bool {
	for _, v := range rec {
		if v != "" {
			return false
		}
	}
	return true
}
