// Package chart draws the dashboard's bar charts as PNG images.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/srr_metrics/backend/internal/aggregate"
	"github.com/srr_metrics/backend/internal/service"
)

var (
	ErrUnknownChart = errors.New("unknown chart")
	ErrNoData       = errors.New("no data to chart")
)

type Kind string

const (
	KindServices  Kind = "services"
	KindHourlyAck Kind = "hourly_ack"
	KindAgentAck  Kind = "agent_ack"
)

var Kinds = []Kind{KindServices, KindHourlyAck, KindAgentAck}

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownChart, s)
}

const (
	width  = 1024
	height = 480
)

// Render draws chart k from v and returns the PNG bytes.
func Render(k Kind, v service.View) ([]byte, error) {
	switch k {
	case KindServices:
		return bars("Interactions per Service", "Interactions", countBars(v.ServiceCounts))
	case KindHourlyAck:
		return bars("Avg Time to Acknowledge by Hour (Minutes)", "Minutes", breakdownBars(v.Breakdowns[aggregate.DimHour]))
	case KindAgentAck:
		var vals []gochart.Value
		for _, a := range v.Agents {
			vals = append(vals, gochart.Value{Label: a.Agent, Value: a.AvgAckSeconds / 60})
		}
		return bars("Avg Time to Acknowledge by Agent (Minutes)", "Minutes", vals)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownChart, string(k))
}

func countBars(counts []aggregate.Count) []gochart.Value {
	vals := make([]gochart.Value, 0, len(counts))
	for _, c := range counts {
		vals = append(vals, gochart.Value{Label: c.Value, Value: float64(c.Count)})
	}
	return vals
}

func breakdownBars(rows []aggregate.BreakdownRow) []gochart.Value {
	vals := make([]gochart.Value, 0, len(rows))
	for _, r := range rows {
		vals = append(vals, gochart.Value{Label: r.Value, Value: r.AvgAckMinutes})
	}
	return vals
}

func bars(title, yName string, vals []gochart.Value) ([]byte, error) {
	if len(vals) == 0 {
		return nil, ErrNoData
	}
	minVal, maxVal := 0.0, 0.0
	for _, v := range vals {
		minVal = math.Min(minVal, v.Value)
		maxVal = math.Max(maxVal, v.Value)
	}
	if maxVal <= 0 {
		maxVal = 1
	}

	barWidth := (width - 120) / len(vals)
	if barWidth > 60 {
		barWidth = 60
	}
	if barWidth < 4 {
		barWidth = 4
	}

	bc := gochart.BarChart{
		Title:      title,
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis:      gochart.Style{FontSize: 8},
		YAxis: gochart.YAxis{
			Name:  yName,
			Range: &gochart.ContinuousRange{Min: minVal * 1.1, Max: maxVal * 1.1},
		},
		Bars: vals,
	}

	var buf bytes.Buffer
	if err := bc.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", title, err)
	}
	return buf.Bytes(), nil
}
