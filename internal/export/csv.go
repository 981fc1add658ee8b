// Package export renders dashboard tables as CSV downloads: UTF-8, comma
// separated, one header row and no index column.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/srr_metrics/backend/internal/aggregate"
	"github.com/srr_metrics/backend/internal/models"
	"github.com/srr_metrics/backend/internal/service"
)

var ErrUnknownTable = errors.New("unknown export table")

type Table string

const (
	TableHourlyServices Table = "hourly_services"
	TableHourlyAck      Table = "hourly_ack"
	TableMonthly        Table = "monthly"
	TableGroups         Table = "groups"
	TableRequestors     Table = "requestors"
	TableAgents         Table = "agents"
	TableCaseReasons    Table = "case_reasons"
	TableInQueue        Table = "in_queue"
	TableInProgress     Table = "in_progress"
	TableRaw            Table = "raw"
)

var Tables = []Table{
	TableHourlyServices, TableHourlyAck, TableMonthly, TableGroups, TableRequestors,
	TableAgents, TableCaseReasons, TableInQueue, TableInProgress, TableRaw,
}

func ParseTable(s string) (Table, error) {
	for _, t := range Tables {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTable, s)
}

func (t Table) Filename() string {
	return "srr_" + string(t) + ".csv"
}

// Write renders table t of v to w.
func Write(w io.Writer, t Table, v service.View) error {
	header, rows, err := Rows(t, v)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// Rows returns the header and cells of table t; the CLI prints the same cells.
func Rows(t Table, v service.View) ([]string, [][]string, error) {
	switch t {
	case TableHourlyServices:
		return matrixRows(v.HourlyServices, "Hour")
	case TableRequestors:
		return matrixRows(v.Requestors, "Requestor")
	case TableHourlyAck:
		header := []string{"Hour_Created", "Avg Time to Acknowledge (Minutes)"}
		var rows [][]string
		for _, r := range v.Breakdowns[aggregate.DimHour] {
			rows = append(rows, []string{r.Value, r.AvgAckMinute})
		}
		return header, rows, nil
	case TableMonthly:
		return breakdownRows(v.Breakdowns[aggregate.DimMonth], "Month", true)
	case TableGroups:
		return breakdownRows(v.Breakdowns[aggregate.DimService], "Service", false)
	case TableCaseReasons:
		return breakdownRows(v.ReasonsByResolve, "Case Reason", false)
	case TableAgents:
		return agentRows(v.Agents)
	case TableInQueue:
		return queueRows(v.InQueue, false)
	case TableInProgress:
		return queueRows(v.InProgress, true)
	case TableRaw:
		return recordRows(v.Records)
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrUnknownTable, string(t))
}

func matrixRows(m aggregate.Matrix, label string) ([]string, [][]string, error) {
	header := append([]string{label}, m.Columns...)
	header = append(header, "Total")
	rows := make([][]string, 0, len(m.Rows))
	for i, r := range m.Rows {
		rec := []string{r}
		for _, n := range m.Counts[i] {
			rec = append(rec, strconv.Itoa(n))
		}
		rec = append(rec, strconv.Itoa(m.Totals[i]))
		rows = append(rows, rec)
	}
	return header, rows, nil
}

func breakdownRows(in []aggregate.BreakdownRow, label string, minutes bool) ([]string, [][]string, error) {
	header := []string{label, "Interactions", "Avg Time to Acknowledge", "Avg Time to Resolve"}
	rows := make([][]string, 0, len(in))
	for _, r := range in {
		ack, resolve := r.AvgAck, r.AvgResolve
		if minutes {
			ack, resolve = r.AvgAckMinute, r.AvgResolveMinute
		}
		rows = append(rows, []string{r.Value, strconv.Itoa(r.Count), ack, resolve})
	}
	return header, rows, nil
}

func agentRows(in []aggregate.AgentRow) ([]string, [][]string, error) {
	header := []string{"Agent", "Avg Time to Acknowledge", "Avg Time to Resolve", "Number of Interactions", "Avg Survey"}
	rows := make([][]string, 0, len(in))
	for _, r := range in {
		survey := ""
		if r.AvgSurvey != nil {
			survey = strconv.FormatFloat(*r.AvgSurvey, 'f', 2, 64)
		}
		rows = append(rows, []string{r.Agent, r.AvgAck, r.AvgResolve, strconv.Itoa(r.InteractionCount), survey})
	}
	return header, rows, nil
}

func queueRows(q aggregate.QueueSnapshot, inProgress bool) ([]string, [][]string, error) {
	header := []string{"Case #", "Requestor", "Service", "Creation Timestamp"}
	if inProgress {
		header = append(header, "SME (On It)", "TimeTo: On It")
	}
	header = append(header, "Message Link")
	rows := make([][]string, 0, len(q.Entries))
	for _, e := range q.Entries {
		rec := []string{e.CaseID, e.Requestor, e.Service, e.CreationTimestamp}
		if inProgress {
			rec = append(rec, e.AssignedAgent, e.TimeToAcknowledge)
		}
		rows = append(rows, append(rec, e.MessageLink))
	}
	return header, rows, nil
}

func recordRows(in []models.Interaction) ([]string, [][]string, error) {
	header := []string{
		"Case #", "Service", "Inquiry", "Requestor", "Creation Timestamp", "SME (On It)",
		"On It Time", "Attendee", "Attended Timestamp", "Message Link", "Status", "Case Reason",
		"Date Created", "TimeTo: On It", "TimeTo: Attended", "TimeTo: On It Sec",
		"TimeTo: Attended Sec", "Survey", "Month", "Day", "Weekend?", "Working Hours?", "Hour_Created",
	}
	rows := make([][]string, 0, len(in))
	for _, r := range in {
		created := ""
		if r.CreatedAt != nil {
			created = r.CreatedAt.Format("2006-01-02 15:04:05")
		}
		survey := ""
		if r.SurveyScore != nil {
			survey = strconv.FormatFloat(*r.SurveyScore, 'f', -1, 64)
		}
		hour := ""
		if r.HourCreated != nil {
			hour = strconv.Itoa(*r.HourCreated)
		}
		rows = append(rows, []string{
			r.CaseID, r.Service, r.Inquiry, r.Requestor, r.CreationTimestamp, r.AssignedAgent,
			r.OnItTime, r.Attendee, r.AttendedTimestamp, r.MessageLink, r.Status, r.CaseReason,
			created, rawDuration(r.TimeToAcknowledge), rawDuration(r.TimeToResolve),
			strconv.Itoa(r.TimeToAcknowledge.Seconds), strconv.Itoa(r.TimeToResolve.Seconds),
			survey, r.Month, r.Day, yesNo(r.IsWeekend), yesNo(r.IsWorkingHours), hour,
		})
	}
	return header, rows, nil
}

func rawDuration(d models.Duration) string {
	if d.Raw == nil {
		return ""
	}
	return *d.Raw
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
