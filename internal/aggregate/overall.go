// Package aggregate holds the pure reductions behind the dashboard. Every
// function takes a normalized record set and returns fresh values; nothing
// here performs I/O or keeps state between calls.
package aggregate

import (
	"time"

	"github.com/srr_metrics/backend/internal/models"
)

// mean accumulates an arithmetic mean; value is nil while nothing was added.
type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v float64) {
	m.sum += v
	m.n++
}

func (m mean) value() *float64 {
	if m.n == 0 {
		return nil
	}
	v := m.sum / float64(m.n)
	return &v
}

func (m mean) or0() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sum / float64(m.n)
}

type Overall struct {
	Count             int      `json:"count"`
	SurveyAvg         *float64 `json:"survey_avg"`
	SurveyCount       int      `json:"survey_count"`
	AvgAckSeconds     *float64 `json:"avg_ack_seconds"`
	AvgResolveSeconds *float64 `json:"avg_resolve_seconds"`
}

// Averages are the two response-time means. Nil means no contributing value.
type Averages struct {
	AckSeconds     *float64 `json:"ack_seconds"`
	ResolveSeconds *float64 `json:"resolve_seconds"`
}

// OverallMetrics counts every record and averages only the durations that
// were present and parsed, and only the survey scores that were answered.
func OverallMetrics(records []models.Interaction) Overall {
	var survey mean
	for _, r := range records {
		if r.SurveyScore != nil {
			survey.add(*r.SurveyScore)
		}
	}
	avg := ResponseAverages(records)
	return Overall{
		Count:             len(records),
		SurveyAvg:         survey.value(),
		SurveyCount:       survey.n,
		AvgAckSeconds:     avg.AckSeconds,
		AvgResolveSeconds: avg.ResolveSeconds,
	}
}

// ResponseAverages averages the whole-string-signed durations that parsed.
// Breakdowns and the agent summary use the per-token Seconds instead.
func ResponseAverages(records []models.Interaction) Averages {
	var ack, resolve mean
	for _, r := range records {
		if r.TimeToAcknowledge.Valid {
			ack.add(float64(r.TimeToAcknowledge.Signed))
		}
		if r.TimeToResolve.Valid {
			resolve.add(float64(r.TimeToResolve.Signed))
		}
	}
	return Averages{AckSeconds: ack.value(), ResolveSeconds: resolve.value()}
}

// Window is an inclusive range on created_at.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w Window) Contains(t *time.Time) bool {
	if t == nil {
		return false
	}
	return !t.Before(w.Start) && !t.After(w.End)
}

// PreviousMonth spans the whole calendar month before now, in now's zone.
func PreviousMonth(now time.Time) Window {
	firstOfThis := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	start := firstOfThis.AddDate(0, -1, 0)
	end := firstOfThis.Add(-time.Nanosecond)
	return Window{Start: start, End: end}
}

// DayWindow spans from the start of the first day to the last instant of
// the second, both interpreted in loc.
func DayWindow(start, end time.Time, loc *time.Location) Window {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
	return Window{Start: s, End: e}
}

func InWindow(records []models.Interaction, w Window) []models.Interaction {
	var out []models.Interaction
	for _, r := range records {
		if w.Contains(r.CreatedAt) {
			out = append(out, r)
		}
	}
	return out
}

type Delta struct {
	AckDeltaSeconds     float64 `json:"ack_delta_seconds"`
	ResolveDeltaSeconds float64 `json:"resolve_delta_seconds"`
}

// WindowedDelta compares the averages of records against the same averages
// restricted to w. An undefined side yields 0, which callers read as "no
// comparison data".
func WindowedDelta(records []models.Interaction, w Window) Delta {
	return WindowedDeltaAgainst(ResponseAverages(records), records, w)
}

// WindowedDeltaAgainst uses a precomputed baseline, so the window can be
// drawn from a wider record set than the baseline was.
func WindowedDeltaAgainst(baseline Averages, records []models.Interaction, w Window) Delta {
	windowed := ResponseAverages(InWindow(records, w))
	return Delta{
		AckDeltaSeconds:     diffOrZero(baseline.AckSeconds, windowed.AckSeconds),
		ResolveDeltaSeconds: diffOrZero(baseline.ResolveSeconds, windowed.ResolveSeconds),
	}
}

func diffOrZero(a, b *float64) float64 {
	if a == nil || b == nil {
		return 0
	}
	return *a - *b
}
