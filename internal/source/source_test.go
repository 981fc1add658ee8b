package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/require"

	"github.com/srr_metrics/backend/internal/config"
	"github.com/srr_metrics/backend/internal/models"
)

const sampleCSV = "Case #,Service,SME (On It),Date Created,TimeTo: On It,TimeTo: Attended\n" +
	"1001,Billing,Ana,3/5/2024 09:30:00,00:05:00,00:40:00\n" +
	",,,,,\n" +
	"1002,Access,Ben,3/6/2024 10:00:00,00:01:00\n"

func TestDecodeCSV(t *testing.T) {
	table, err := DecodeCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, table.Header, 6)
	require.Len(t, table.Rows, 2)
	require.Equal(t, "Access", table.Rows[1][1])
	require.Len(t, table.Rows[1], 5)

	_, err = DecodeCSV(strings.NewReader(""))
	require.Error(t, err)
}

func TestSheetsSourceFetch(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	s := &SheetsSource{CSVURL: srv.URL + "/pub", Client: srv.Client()}
	table, err := s.ReadWorksheet(context.Background(), "Interactions")
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	require.Contains(t, gotQuery, "output=csv")
	require.Contains(t, gotQuery, "sheet=Interactions")
}

func TestSheetsSourceRetriesTransient(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	s := &SheetsSource{CSVURL: srv.URL, Client: srv.Client(), MaxTries: 5, BackOff: &backoff.ZeroBackOff{}}
	table, err := s.ReadWorksheet(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	require.EqualValues(t, 3, atomic.LoadInt32(&hits))
}

func TestSheetsSourceGivesUp(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := &SheetsSource{CSVURL: srv.URL, Client: srv.Client(), MaxTries: 2, BackOff: &backoff.ZeroBackOff{}}
	_, err := s.ReadWorksheet(context.Background(), "")
	require.Error(t, err)
	require.EqualValues(t, 2, atomic.LoadInt32(&hits))
}

func TestSheetsSourceClientErrorIsPermanent(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	s := &SheetsSource{CSVURL: srv.URL, Client: srv.Client(), MaxTries: 5, BackOff: &backoff.ZeroBackOff{}}
	_, err := s.ReadWorksheet(context.Background(), "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "404")
	require.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestExportURL(t *testing.T) {
	u, err := exportURL("https://docs.google.com/spreadsheets/d/e/abc/pub?gid=7&single=true&output=csv", "Interactions")
	require.NoError(t, err)
	require.NotContains(t, u, "sheet=")
	require.Contains(t, u, "gid=7")

	_, err = exportURL(" ", "")
	require.Error(t, err)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "srr.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o600))

	s := &FileSource{Path: path}
	table, err := s.ReadWorksheet(context.Background(), "ignored")
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)

	_, err = (&FileSource{Path: filepath.Join(t.TempDir(), "none.csv")}).ReadWorksheet(context.Background(), "")
	require.Error(t, err)
}

type stubReader struct{ table string }

func (s *stubReader) ReadTable(_ context.Context, table string) (models.Table, error) {
	s.table = table
	return models.Table{Header: []string{"Service"}, Rows: [][]string{{"Billing"}}}, nil
}

func TestPostgresSourceTableFallback(t *testing.T) {
	r := &stubReader{}
	_, err := (&PostgresSource{Store: r, Table: "srr_interactions"}).ReadWorksheet(context.Background(), "Interactions")
	require.NoError(t, err)
	require.Equal(t, "srr_interactions", r.table)

	_, err = (&PostgresSource{Store: r}).ReadWorksheet(context.Background(), "Interactions")
	require.NoError(t, err)
	require.Equal(t, "Interactions", r.table)
}

func TestNewSelectsKind(t *testing.T) {
	ctx := context.Background()
	src, closeFn, err := New(ctx, config.Config{SourceKind: KindFile, SourceFile: "/tmp/x.csv"})
	require.NoError(t, err)
	defer closeFn()
	require.Equal(t, KindFile, src.Kind())

	src, _, err = New(ctx, config.Config{SourceKind: KindSheets, SheetCSVURL: "https://example.com/pub"})
	require.NoError(t, err)
	require.Equal(t, KindSheets, src.Kind())

	_, closeFn, err = New(ctx, config.Config{SourceKind: "excel"})
	require.ErrorIs(t, err, ErrUnknownKind)
	require.NotNil(t, closeFn)
}
