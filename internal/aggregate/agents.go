package aggregate

import (
	"sort"

	"github.com/srr_metrics/backend/internal/duration"
	"github.com/srr_metrics/backend/internal/models"
)

// SlowAckThresholdSeconds marks agents whose average acknowledgement is
// slower than five minutes.
const SlowAckThresholdSeconds = 5 * 60

type AgentRow struct {
	Agent             string   `json:"agent"`
	AvgAckSeconds     float64  `json:"avg_ack_seconds"`
	AvgResolveSeconds float64  `json:"avg_resolve_seconds"`
	TotalAvgSeconds   float64  `json:"total_avg_seconds"`
	InteractionCount  int      `json:"interaction_count"`
	AvgSurvey         *float64 `json:"avg_survey"`
	AvgAck            string   `json:"avg_ack"`
	AvgResolve        string   `json:"avg_resolve"`
	AckOverThreshold  bool     `json:"ack_over_threshold"`
}

// AgentSummary ranks agents by speed, then workload, then satisfaction:
// total average ascending, interaction count descending, average survey
// descending with unanswered last. Remaining ties fall back to the name.
func AgentSummary(records []models.Interaction) []AgentRow {
	type acc struct {
		count       int
		ack, resolv mean
		survey      mean
	}
	groups := map[string]*acc{}
	for _, r := range records {
		k, ok := DimAgent.key(r)
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
		if r.SurveyScore != nil {
			g.survey.add(*r.SurveyScore)
		}
	}

	out := make([]AgentRow, 0, len(groups))
	for agent, g := range groups {
		ack, resolve := g.ack.or0(), g.resolv.or0()
		out = append(out, AgentRow{
			Agent:             agent,
			AvgAckSeconds:     ack,
			AvgResolveSeconds: resolve,
			TotalAvgSeconds:   ack + resolve,
			InteractionCount:  g.count,
			AvgSurvey:         g.survey.value(),
			AvgAck:            duration.FormatSeconds(ack),
			AvgResolve:        duration.FormatSeconds(resolve),
			AckOverThreshold:  ack > SlowAckThresholdSeconds,
		})
	}
	sort.Slice(out, func(i, j int) bool { return agentLess(out[i], out[j]) })
	return out
}

func agentLess(a, b AgentRow) bool {
	if a.TotalAvgSeconds != b.TotalAvgSeconds {
		return a.TotalAvgSeconds < b.TotalAvgSeconds
	}
	if a.InteractionCount != b.InteractionCount {
		return a.InteractionCount > b.InteractionCount
	}
	switch {
	case a.AvgSurvey != nil && b.AvgSurvey != nil:
		if *a.AvgSurvey != *b.AvgSurvey {
			return *a.AvgSurvey > *b.AvgSurvey
		}
	case a.AvgSurvey != nil:
		return true
	case b.AvgSurvey != nil:
		return false
	}
	return a.Agent < b.Agent
}
