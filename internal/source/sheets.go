package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/srr_metrics/backend/internal/models"
)

// SheetsSource fetches the CSV export of a Google Sheet published to the web.
// When the worksheet name is set it is passed as the sheet parameter.
type SheetsSource struct {
	CSVURL   string
	MaxTries uint
	Client   *http.Client
	// BackOff overrides the retry schedule; tests use a zero backoff.
	BackOff backoff.BackOff
}

type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("sheet export http error: %s", e.status)
}

func (s *SheetsSource) Kind() string { return KindSheets }

func (s *SheetsSource) ReadWorksheet(ctx context.Context, worksheet string) (models.Table, error) {
	if s.Client == nil {
		s.Client = &http.Client{Timeout: 30 * time.Second}
	}
	endpoint, err := exportURL(s.CSVURL, worksheet)
	if err != nil {
		return models.Table{}, err
	}
	tries := s.MaxTries
	if tries == 0 {
		tries = 3
	}
	var bo backoff.BackOff = backoff.NewExponentialBackOff()
	if s.BackOff != nil {
		bo = s.BackOff
	}

	return backoff.Retry(ctx, func() (models.Table, error) {
		return s.fetch(ctx, endpoint)
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(tries))
}

func (s *SheetsSource) fetch(ctx context.Context, endpoint string) (models.Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.Table{}, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := s.Client.Do(req)
	if err != nil {
		return models.Table{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		serr := &statusError{code: resp.StatusCode, status: resp.Status}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return models.Table{}, serr
		}
		return models.Table{}, backoff.Permanent(serr)
	}

	table, err := DecodeCSV(resp.Body)
	if err != nil {
		return models.Table{}, backoff.Permanent(err)
	}
	return table, nil
}

func exportURL(raw, worksheet string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("sheet csv url is not set")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse sheet csv url: %w", err)
	}
	q := u.Query()
	if q.Get("output") == "" {
		q.Set("output", "csv")
	}
	if worksheet != "" && q.Get("gid") == "" {
		q.Set("sheet", worksheet)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
