package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/srr_metrics/backend/internal/aggregate"
	"github.com/srr_metrics/backend/internal/models"
	"github.com/srr_metrics/backend/internal/service"
)

func strp(s string) *string { return &s }

func testView() service.View {
	survey := 4.5
	hour := 9
	records := []models.Interaction{
		{
			CaseID: "1001", Service: "Billing", Requestor: "Ops", AssignedAgent: "Ana",
			Status: models.StatusInProgress, CaseReason: "Refund", Month: "March",
			TimeToAcknowledge: models.Duration{Raw: strp("00:05:00"), Seconds: 300, Valid: true},
			TimeToResolve:     models.Duration{Raw: strp("bad"), Seconds: 0, Valid: false},
			SurveyScore:       &survey,
			HourCreated:       &hour,
			IsWorkingHours:    true,
			MessageLink:       "https://chat.example/1001",
		},
		{
			CaseID: "1002", Service: "Access", Requestor: "Sales", Status: models.StatusInQueue,
			CaseReason: "Login", Month: "March", HourCreated: &hour,
		},
	}
	v := service.View{
		Records:        records,
		InQueue:        aggregate.Queue(records, models.StatusInQueue),
		InProgress:     aggregate.Queue(records, models.StatusInProgress),
		Agents:         aggregate.AgentSummary(records),
		Requestors:     aggregate.RequestorServiceMatrix(records),
		HourlyServices: aggregate.HourlyServiceCounts(records),
		Breakdowns:     map[aggregate.Dimension][]aggregate.BreakdownRow{},
	}
	for _, d := range aggregate.BreakdownDimensions {
		v.Breakdowns[d] = aggregate.Breakdown(records, d)
	}
	v.ReasonsByResolve = aggregate.RankByAverage(v.Breakdowns[aggregate.DimCaseReason], aggregate.MeasureResolve)
	return v
}

func readBack(t *testing.T, tbl Table, v service.View) [][]string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, tbl, v))
	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	return recs
}

func TestWriteEveryTable(t *testing.T) {
	v := testView()
	for _, tbl := range Tables {
		recs := readBack(t, tbl, v)
		require.NotEmpty(t, recs, tbl)
		require.NotEqual(t, "", recs[0][0], tbl)
	}
}

func TestWriteHourlyServices(t *testing.T) {
	recs := readBack(t, TableHourlyServices, testView())
	require.Equal(t, []string{"Hour", "Access", "Billing", "Total"}, recs[0])
	require.Equal(t, []string{"9", "1", "1", "2"}, recs[1])
}

func TestWriteQueues(t *testing.T) {
	v := testView()
	recs := readBack(t, TableInQueue, v)
	require.Equal(t, []string{"Case #", "Requestor", "Service", "Creation Timestamp", "Message Link"}, recs[0])
	require.Len(t, recs, 2)

	recs = readBack(t, TableInProgress, v)
	require.Len(t, recs[0], 7)
	require.Equal(t, "Ana", recs[1][4])
	require.Equal(t, "00:05:00", recs[1][5])
}

func TestWriteRawKeepsRawDurationText(t *testing.T) {
	recs := readBack(t, TableRaw, testView())
	require.Len(t, recs, 3)
	require.Equal(t, "00:05:00", recs[1][13])
	require.Equal(t, "bad", recs[1][14])
	require.Equal(t, "300", recs[1][15])
	require.Equal(t, "0", recs[1][16])
	require.Equal(t, "4.5", recs[1][17])
}

func TestWriteAgents(t *testing.T) {
	recs := readBack(t, TableAgents, testView())
	require.Equal(t, "Agent", recs[0][0])
	require.Equal(t, []string{"Ana", "00:05:00", "00:00:00", "1", "4.50"}, recs[1])
}

func TestParseTable(t *testing.T) {
	tbl, err := ParseTable("agents")
	require.NoError(t, err)
	require.Equal(t, "srr_agents.csv", tbl.Filename())

	_, err = ParseTable("salaries")
	require.ErrorIs(t, err, ErrUnknownTable)
}
