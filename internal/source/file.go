package source

import (
	"context"
	"fmt"
	"os"

	"github.com/srr_metrics/backend/internal/models"
)

// FileSource reads a CSV export saved to disk. The worksheet name is ignored;
// one file holds one worksheet.
type FileSource struct {
	Path string
}

func (s *FileSource) Kind() string { return KindFile }

func (s *FileSource) ReadWorksheet(ctx context.Context, _ string) (models.Table, error) {
	if err := ctx.Err(); err != nil {
		return models.Table{}, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return models.Table{}, fmt.Errorf("open source file: %w", err)
	}
	defer f.Close()
	return DecodeCSV(f)
}
