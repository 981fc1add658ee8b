package aggregate

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/srr_metrics/backend/internal/duration"
	"github.com/srr_metrics/backend/internal/models"
)

var ErrUnknownDimension = errors.New("unknown dimension")

type Dimension string

const (
	DimHour       Dimension = "hour_created"
	DimMonth      Dimension = "month"
	DimService    Dimension = "service"
	DimCaseReason Dimension = "case_reason"
	DimRequestor  Dimension = "requestor"
	DimAgent      Dimension = "assigned_agent"
)

// BreakdownDimensions are the dimensions Breakdown accepts.
var BreakdownDimensions = []Dimension{DimHour, DimMonth, DimService, DimCaseReason}

func ParseDimension(s string) (Dimension, error) {
	for _, d := range BreakdownDimensions {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDimension, s)
}

// key reports the record's value for dim; records without one are skipped
// by every grouping.
func (d Dimension) key(r models.Interaction) (string, bool) {
	var v string
	switch d {
	case DimHour:
		if r.HourCreated == nil {
			return "", false
		}
		return strconv.Itoa(*r.HourCreated), true
	case DimMonth:
		v = r.Month
	case DimService:
		v = r.Service
	case DimCaseReason:
		v = r.CaseReason
	case DimRequestor:
		v = r.Requestor
	case DimAgent:
		v = r.AssignedAgent
	}
	return v, v != ""
}

type BreakdownRow struct {
	Value             string  `json:"value"`
	Count             int     `json:"count"`
	AvgAckSeconds     float64 `json:"avg_ack_seconds"`
	AvgResolveSeconds float64 `json:"avg_resolve_seconds"`
	AvgAckMinutes     float64 `json:"avg_ack_minutes"`
	AvgResolveMinutes float64 `json:"avg_resolve_minutes"`
	AvgAck            string  `json:"avg_ack"`
	AvgResolve        string  `json:"avg_resolve"`
	AvgAckMinute      string  `json:"avg_ack_minute"`
	AvgResolveMinute  string  `json:"avg_resolve_minute"`
}

// Breakdown groups by dim and averages the derived seconds, where a missing
// or malformed duration counts as zero.
func Breakdown(records []models.Interaction, dim Dimension) []BreakdownRow {
	type acc struct {
		count       int
		ack, resolv mean
	}
	groups := map[string]*acc{}
	for _, r := range records {
		k, ok := dim.key(r)
		if !ok {
			continue
		}
		g := groups[k]
		if g == nil {
			g = &acc{}
			groups[k] = g
		}
		g.count++
		g.ack.add(float64(r.TimeToAcknowledge.Seconds))
		g.resolv.add(float64(r.TimeToResolve.Seconds))
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sortKeys(keys, dim)

	out := make([]BreakdownRow, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		ack, resolve := g.ack.or0(), g.resolv.or0()
		out = append(out, BreakdownRow{
			Value:             k,
			Count:             g.count,
			AvgAckSeconds:     ack,
			AvgResolveSeconds: resolve,
			AvgAckMinutes:     ack / 60,
			AvgResolveMinutes: resolve / 60,
			AvgAck:            duration.FormatSeconds(ack),
			AvgResolve:        duration.FormatSeconds(resolve),
			AvgAckMinute:      duration.FormatMinutes(ack / 60),
			AvgResolveMinute:  duration.FormatMinutes(resolve / 60),
		})
	}
	return out
}

type Measure string

const (
	MeasureAck     Measure = "ack"
	MeasureResolve Measure = "resolve"
)

// RankByAverage returns a copy of rows ordered by the chosen average,
// slowest first.
func RankByAverage(rows []BreakdownRow, m Measure) []BreakdownRow {
	out := append([]BreakdownRow(nil), rows...)
	pick := func(r BreakdownRow) float64 {
		if m == MeasureResolve {
			return r.AvgResolveSeconds
		}
		return r.AvgAckSeconds
	}
	sort.SliceStable(out, func(i, j int) bool { return pick(out[i]) > pick(out[j]) })
	return out
}
