package aggregate

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/srr_metrics/backend/internal/models"
)

func ptr[T any](v T) *T { return &v }

func dur(raw string, secs int, valid bool) models.Duration {
	return models.Duration{Raw: ptr(raw), Seconds: secs, Signed: secs, Valid: valid}
}

func at(day, hour int) *time.Time {
	t := time.Date(2024, time.April, day, hour, 0, 0, 0, time.UTC)
	return &t
}

// fixture is five cases with hand-checked durations:
// ack 60, 120, 180, 240, 300 (mean 180); resolve 600, 1200, 1800, 2400, 3000 (mean 1800).
func fixture() []models.Interaction {
	return []models.Interaction{
		{CaseID: "1", Service: "Billing", CaseReason: "Refund", Requestor: "alice", AssignedAgent: "sme1", Status: models.StatusInQueue,
			CreatedAt: at(1, 9), Month: "April", HourCreated: ptr(9), SurveyScore: ptr(5.0),
			TimeToAcknowledge: dur("0:01:00", 60, true), TimeToResolve: dur("0:10:00", 600, true)},
		{CaseID: "2", Service: "Billing", CaseReason: "Access", Requestor: "bob", AssignedAgent: "sme2", Status: models.StatusInProgress,
			CreatedAt: at(2, 10), Month: "April", HourCreated: ptr(10), SurveyScore: nil,
			TimeToAcknowledge: dur("0:02:00", 120, true), TimeToResolve: dur("0:20:00", 1200, true)},
		{CaseID: "3", Service: "Tech", CaseReason: "Refund", Requestor: "alice", AssignedAgent: "sme1", Status: "Attended",
			CreatedAt: at(3, 9), Month: "May", HourCreated: ptr(9), SurveyScore: ptr(3.0),
			TimeToAcknowledge: dur("0:03:00", 180, true), TimeToResolve: dur("0:30:00", 1800, true)},
		{CaseID: "4", Service: "Tech", CaseReason: "Access", Requestor: "carol", AssignedAgent: "sme3", Status: "Attended",
			CreatedAt: at(4, 14), Month: "May", HourCreated: ptr(14), SurveyScore: ptr(4.0),
			TimeToAcknowledge: dur("0:04:00", 240, true), TimeToResolve: dur("0:40:00", 2400, true)},
		{CaseID: "5", Service: "Billing", CaseReason: "Refund", Requestor: "carol", AssignedAgent: "sme2", Status: models.StatusInProgress,
			CreatedAt: at(5, 14), Month: "March", HourCreated: ptr(14), SurveyScore: nil,
			TimeToAcknowledge: dur("0:05:00", 300, true), TimeToResolve: dur("0:50:00", 3000, true)},
	}
}

func TestOverallMetrics(t *testing.T) {
	o := OverallMetrics(fixture())
	require.Equal(t, 5, o.Count)
	require.Equal(t, 3, o.SurveyCount)
	require.NotNil(t, o.SurveyAvg)
	require.Equal(t, 4.0, *o.SurveyAvg)
	require.Equal(t, 180.0, *o.AvgAckSeconds)
	require.Equal(t, 1800.0, *o.AvgResolveSeconds)
}

func TestOverallMetricsExcludesUnparsedDurations(t *testing.T) {
	records := fixture()
	records[0].TimeToAcknowledge = dur("bad", 0, false)
	records[1].TimeToAcknowledge = models.Duration{}
	o := OverallMetrics(records)
	require.Equal(t, 5, o.Count)
	require.Equal(t, 240.0, *o.AvgAckSeconds)
}

func TestOverallMetricsNegatesWholeDuration(t *testing.T) {
	records := fixture()[:2]
	records[0].TimeToAcknowledge = models.Duration{Raw: ptr("-0:05:00"), Seconds: 300, Signed: -300, Valid: true}
	records[1].TimeToAcknowledge = dur("0:05:00", 300, true)
	o := OverallMetrics(records)
	require.Equal(t, 0.0, *o.AvgAckSeconds)

	// breakdowns keep the per-token reading
	rows := Breakdown(records, DimService)
	require.Len(t, rows, 1)
	require.Equal(t, 300.0, rows[0].AvgAckSeconds)
}

func TestOverallMetricsEmpty(t *testing.T) {
	o := OverallMetrics(nil)
	require.Equal(t, 0, o.Count)
	require.Nil(t, o.SurveyAvg)
	require.Nil(t, o.AvgAckSeconds)
	require.Nil(t, o.AvgResolveSeconds)
}

func TestWindowedDelta(t *testing.T) {
	w := Window{Start: *at(1, 0), End: *at(2, 23)}
	d := WindowedDelta(fixture(), w)
	// window holds cases 1 and 2: ack mean 90, resolve mean 900
	require.Equal(t, 90.0, d.AckDeltaSeconds)
	require.Equal(t, 900.0, d.ResolveDeltaSeconds)
}

func TestWindowedDeltaIsInclusive(t *testing.T) {
	w := Window{Start: *at(5, 14), End: *at(5, 14)}
	d := WindowedDelta(fixture(), w)
	require.Equal(t, 180.0-300.0, d.AckDeltaSeconds)
}

func TestWindowedDeltaEmptyWindowIsZero(t *testing.T) {
	w := Window{Start: *at(20, 0), End: *at(25, 0)}
	d := WindowedDelta(fixture(), w)
	require.Equal(t, Delta{AckDeltaSeconds: 0, ResolveDeltaSeconds: 0}, d)
}

func TestWindowedDeltaSkipsMissingTimestamps(t *testing.T) {
	records := fixture()
	for i := range records {
		records[i].CreatedAt = nil
	}
	d := WindowedDelta(records, Window{Start: *at(1, 0), End: *at(30, 0)})
	require.Equal(t, Delta{}, d)
}

func TestWindowedDeltaAgainstBaseline(t *testing.T) {
	baseline := Averages{AckSeconds: ptr(100.0), ResolveSeconds: nil}
	d := WindowedDeltaAgainst(baseline, fixture(), Window{Start: *at(1, 0), End: *at(1, 23)})
	require.Equal(t, 40.0, d.AckDeltaSeconds)
	require.Equal(t, 0.0, d.ResolveDeltaSeconds)
}

func TestPreviousMonth(t *testing.T) {
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	now := time.Date(2024, time.March, 15, 10, 0, 0, 0, loc)
	w := PreviousMonth(now)
	require.True(t, w.Start.Equal(time.Date(2024, time.February, 1, 0, 0, 0, 0, loc)))
	require.True(t, w.End.Equal(time.Date(2024, time.February, 29, 23, 59, 59, 999999999, loc)))

	jan := PreviousMonth(time.Date(2024, time.January, 3, 0, 0, 0, 0, loc))
	require.Equal(t, time.December, jan.Start.Month())
	require.Equal(t, 2023, jan.Start.Year())
}

func TestDayWindow(t *testing.T) {
	w := DayWindow(time.Date(2024, 4, 2, 15, 0, 0, 0, time.UTC), time.Date(2024, 4, 3, 1, 0, 0, 0, time.UTC), time.UTC)
	require.True(t, w.Contains(at(2, 0)))
	require.True(t, w.Contains(ptr(time.Date(2024, 4, 3, 23, 59, 59, 0, time.UTC))))
	require.False(t, w.Contains(at(4, 0)))
	require.False(t, w.Contains(nil))
}

func TestBreakdownByService(t *testing.T) {
	rows := Breakdown(fixture(), DimService)
	require.Len(t, rows, 2)
	require.Equal(t, "Billing", rows[0].Value)
	require.Equal(t, 3, rows[0].Count)
	require.InDelta(t, (60.0+120+300)/3, rows[0].AvgAckSeconds, 1e-9)
	require.Equal(t, "Tech", rows[1].Value)
	require.Equal(t, 210.0, rows[1].AvgAckSeconds)
	require.Equal(t, "00:03:30", rows[1].AvgAck)
	require.Equal(t, "00:03:00", rows[1].AvgAckMinute)
}

func TestBreakdownCountsMalformedAsZero(t *testing.T) {
	records := fixture()[:2]
	records[1].TimeToAcknowledge = dur("bad", 0, false)
	rows := Breakdown(records, DimService)
	require.Len(t, rows, 1)
	require.Equal(t, 30.0, rows[0].AvgAckSeconds)
}

func TestBreakdownOrdering(t *testing.T) {
	records := fixture()
	records = append(records, models.Interaction{Service: "Billing", HourCreated: ptr(2), Month: "Smarch"})

	hours := Breakdown(records, DimHour)
	var hv []string
	for _, r := range hours {
		hv = append(hv, r.Value)
	}
	require.Equal(t, []string{"2", "9", "10", "14"}, hv)

	months := Breakdown(records, DimMonth)
	var mv []string
	for _, r := range months {
		mv = append(mv, r.Value)
	}
	require.Equal(t, []string{"March", "April", "May", "Smarch"}, mv)
}

func TestBreakdownSkipsMissingValues(t *testing.T) {
	records := fixture()
	records[0].CaseReason = ""
	rows := Breakdown(records, DimCaseReason)
	total := 0
	for _, r := range rows {
		total += r.Count
	}
	require.Equal(t, 4, total)
}

func TestRankByAverage(t *testing.T) {
	records := fixture()
	records[0].TimeToResolve = dur("1:40:00", 6000, true)
	base := Breakdown(records, DimCaseReason)
	require.Equal(t, "Access", base[0].Value)

	rows := RankByAverage(base, MeasureResolve)
	require.Equal(t, "Refund", rows[0].Value)
	require.Equal(t, 3600.0, rows[0].AvgResolveSeconds)
	require.Equal(t, "Access", rows[1].Value)
	require.Equal(t, "Access", base[0].Value)
}

func TestParseDimension(t *testing.T) {
	d, err := ParseDimension("case_reason")
	require.NoError(t, err)
	require.Equal(t, DimCaseReason, d)

	_, err = ParseDimension("requestor")
	require.ErrorIs(t, err, ErrUnknownDimension)
}

func TestAgentSummary(t *testing.T) {
	rows := AgentSummary(fixture())
	require.Len(t, rows, 3)
	// sme1: (60+180)/2 + (600+1800)/2 = 120 + 1200
	require.Equal(t, "sme1", rows[0].Agent)
	require.Equal(t, 1320.0, rows[0].TotalAvgSeconds)
	require.Equal(t, 2, rows[0].InteractionCount)
	require.Equal(t, 4.0, *rows[0].AvgSurvey)
	require.Equal(t, "sme2", rows[1].Agent)
	require.Nil(t, rows[1].AvgSurvey)
	require.Equal(t, "sme3", rows[2].Agent)
	require.False(t, rows[0].AckOverThreshold)
}

func TestAgentSummaryTieBreaks(t *testing.T) {
	mk := func(agent string, ack int, survey *float64) models.Interaction {
		return models.Interaction{Service: "S", AssignedAgent: agent, SurveyScore: survey,
			TimeToAcknowledge: dur("x", ack, true)}
	}
	records := []models.Interaction{
		mk("solo", 100, ptr(5.0)),
		mk("pair", 100, ptr(1.0)), mk("pair", 100, ptr(1.0)),
		mk("happy", 100, ptr(5.0)), mk("happy", 100, ptr(5.0)),
		mk("silent", 100, nil), mk("silent", 100, nil),
		mk("fast", 10, nil),
	}
	rows := AgentSummary(records)
	var order []string
	for _, r := range rows {
		order = append(order, r.Agent)
	}
	require.Equal(t, []string{"fast", "happy", "pair", "silent", "solo"}, order)
}

func TestAgentSummarySortInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	agents := []string{"a", "b", "c", "d", "e", "f", "g"}
	var records []models.Interaction
	for i := 0; i < 300; i++ {
		var survey *float64
		if rng.Intn(3) > 0 {
			survey = ptr(float64(1 + rng.Intn(5)))
		}
		records = append(records, models.Interaction{
			Service:           "S",
			AssignedAgent:     agents[rng.Intn(len(agents))],
			SurveyScore:       survey,
			TimeToAcknowledge: dur("x", rng.Intn(3)*60, true),
			TimeToResolve:     dur("x", rng.Intn(2)*60, true),
		})
	}
	rows := AgentSummary(records)
	for i := 1; i < len(rows); i++ {
		a, b := rows[i-1], rows[i]
		require.LessOrEqual(t, a.TotalAvgSeconds, b.TotalAvgSeconds)
		if a.TotalAvgSeconds == b.TotalAvgSeconds {
			require.GreaterOrEqual(t, a.InteractionCount, b.InteractionCount)
		}
	}
}

func TestAgentSummaryFlagsSlowAck(t *testing.T) {
	rows := AgentSummary([]models.Interaction{
		{Service: "S", AssignedAgent: "slow", TimeToAcknowledge: dur("0:06:00", 360, true)},
	})
	require.True(t, rows[0].AckOverThreshold)
	require.Equal(t, "00:06:00", rows[0].AvgAck)
}

func TestRequestorServiceMatrix(t *testing.T) {
	m := RequestorServiceMatrix(fixture())
	require.Equal(t, []string{"alice", "bob", "carol"}, m.Rows)
	require.Equal(t, []string{"Billing", "Tech"}, m.Columns)
	require.Equal(t, [][]int{{1, 1}, {1, 0}, {1, 1}}, m.Counts)
	require.Equal(t, []int{2, 1, 2}, m.Totals)
	require.Equal(t, 0, m.At("bob", "Tech"))
	require.Equal(t, 0, m.At("nobody", "Tech"))
}

func TestHourlyServiceCounts(t *testing.T) {
	m := HourlyServiceCounts(fixture())
	require.Equal(t, []string{"9", "10", "14"}, m.Rows)
	require.Equal(t, 1, m.At("9", "Tech"))
	require.Equal(t, []int{2, 1, 2}, m.Totals)
}

func TestCounts(t *testing.T) {
	require.Equal(t, []Count{{"Access", 2}, {"Refund", 3}}, ReasonDistribution(fixture()))
	require.Equal(t, []Count{{"Billing", 3}, {"Tech", 2}}, ServiceCounts(fixture()))
	require.Equal(t, []Count{{"sme1", 2}, {"sme2", 2}, {"sme3", 1}}, AgentCounts(fixture()))
}

func TestQueue(t *testing.T) {
	q := Queue(fixture(), models.StatusInQueue)
	require.Equal(t, 1, q.Count)
	require.Equal(t, "1", q.Entries[0].CaseID)
	require.Empty(t, q.Entries[0].AssignedAgent)

	p := Queue(fixture(), models.StatusInProgress)
	require.Equal(t, 2, p.Count)
	require.Equal(t, "sme2", p.Entries[0].AssignedAgent)
	require.Equal(t, "0:02:00", p.Entries[0].TimeToAcknowledge)

	empty := Queue(nil, models.StatusInQueue)
	require.Equal(t, 0, empty.Count)
	require.NotNil(t, empty.Entries)
}

func TestFilters(t *testing.T) {
	records := fixture()
	require.Len(t, Filters{}.Apply(records), 5)
	require.Len(t, Filters{Service: "All", Month: "all"}.Apply(records), 5)
	require.Len(t, Filters{Service: "Billing"}.Apply(records), 3)
	require.Len(t, Filters{Service: "Billing", Month: "April"}.Apply(records), 2)
	require.Len(t, Filters{Month: "May"}.Apply(records), 2)
}

func TestFilterOptions(t *testing.T) {
	april := time.Date(2024, time.April, 20, 0, 0, 0, 0, time.UTC)
	opts := FilterOptions(fixture(), "", april)
	require.Equal(t, []string{"Billing", "Tech"}, opts.Services)
	require.Equal(t, []string{"April", "May", "March"}, opts.Months)
	require.Equal(t, "April", opts.DefaultMonth)

	opts = FilterOptions(fixture(), "Tech", april)
	require.Equal(t, []string{"Billing", "Tech"}, opts.Services)
	require.Equal(t, []string{"May"}, opts.Months)
	require.Equal(t, All, opts.DefaultMonth)
}

func TestAggregatesArePure(t *testing.T) {
	records := fixture()
	first := AgentSummary(records)
	second := AgentSummary(records)
	require.Equal(t, first, second)
	require.Equal(t, fixture(), records)
}
