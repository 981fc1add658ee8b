package service

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/srr_metrics/backend/internal/duration"
	"github.com/srr_metrics/backend/internal/models"
)

var ErrMissingColumn = errors.New("missing column")

type Variant string

const (
	VariantAll          Variant = "all"
	VariantWorkingHours Variant = "working_hours"
)

func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(VariantAll):
		return VariantAll, nil
	case string(VariantWorkingHours), "working-hours", "workinghours":
		return VariantWorkingHours, nil
	default:
		return "", fmt.Errorf("unknown variant %q", s)
	}
}

type column struct {
	name     string
	aliases  []string
	required bool
}

var (
	colCaseID            = column{name: "case_id", aliases: []string{"Case #", "case #", "case_id", "case id"}}
	colService           = column{name: "service", aliases: []string{"Service"}, required: true}
	colInquiry           = column{name: "inquiry", aliases: []string{"Inquiry"}}
	colRequestor         = column{name: "requestor", aliases: []string{"Requestor"}}
	colCreationTimestamp = column{name: "creation_timestamp", aliases: []string{"Creation Timestamp"}}
	colAgent             = column{name: "assigned_agent", aliases: []string{"SME (On It)", "In process (On It SME)", "assigned_agent"}, required: true}
	colOnItTime          = column{name: "on_it_time", aliases: []string{"On It Time"}}
	colAttendee          = column{name: "attendee", aliases: []string{"Attendee"}}
	colAttendedTimestamp = column{name: "attended_timestamp", aliases: []string{"Attended Timestamp"}}
	colMessageLink       = column{name: "message_link", aliases: []string{"Message Link"}}
	colStatus            = column{name: "status", aliases: []string{"Status"}}
	colCaseReason        = column{name: "case_reason", aliases: []string{"Case Reason"}}
	colCreatedAt         = column{name: "created_at", aliases: []string{"Date Created", "created_at"}, required: true}
	colAck               = column{name: "time_to_acknowledge", aliases: []string{"TimeTo: On It", "time_to_acknowledge"}, required: true}
	colResolve           = column{name: "time_to_resolve", aliases: []string{"TimeTo: Attended", "time_to_resolve"}, required: true}
	colSurvey            = column{name: "survey_score", aliases: []string{"Survey", "survey_score"}}
	colMonth             = column{name: "month", aliases: []string{"Month"}}
	colDay               = column{name: "day", aliases: []string{"Day"}}
	colWeekend           = column{name: "is_weekend", aliases: []string{"Weekend?", "is_weekend"}}
	colWorkingHours      = column{name: "is_working_hours", aliases: []string{"Working Hours?", "is_working_hours"}}
	colHourCreated       = column{name: "hour_created", aliases: []string{"Hour_Created", "hour_created"}}
)

var schema = []column{
	colCaseID, colService, colInquiry, colRequestor, colCreationTimestamp, colAgent,
	colOnItTime, colAttendee, colAttendedTimestamp, colMessageLink, colStatus, colCaseReason,
	colCreatedAt, colAck, colResolve, colSurvey, colMonth, colDay, colWeekend,
	colWorkingHours, colHourCreated,
}

var timestampLayouts = []string{
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"1/2/2006",
	"2006-01-02",
}

type NormalizeOptions struct {
	Location *time.Location
	Variant  Variant
}

type NormalizeStats struct {
	Rows                    int `json:"rows"`
	Kept                    int `json:"kept"`
	DroppedNoService        int `json:"dropped_no_service"`
	DroppedOutsideWorkHours int `json:"dropped_outside_working_hours"`
	BadTimestamps           int `json:"bad_timestamps"`
	BadDurations            int `json:"bad_durations"`
}

// resolved maps each schema column to its position in the worksheet header.
type resolved map[string]int

func resolveSchema(header []string, variant Variant) (resolved, error) {
	index := headerIndex(header)
	out := resolved{}
	var missing []string
	for _, col := range schema {
		pos, ok := lookup(index, col.aliases)
		if ok {
			out[col.name] = pos
			continue
		}
		required := col.required || (col.name == colWorkingHours.name && variant == VariantWorkingHours)
		if required {
			missing = append(missing, col.aliases[0])
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return out, nil
}

// Normalize checks the header once against the schema, then converts every
// row. Row-level failures never abort the batch; they degrade to nil or zero.
func Normalize(table models.Table, opts NormalizeOptions) ([]models.Interaction, NormalizeStats, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	variant := opts.Variant
	if variant == "" {
		variant = VariantAll
	}
	cols, err := resolveSchema(table.Header, variant)
	if err != nil {
		return nil, NormalizeStats{}, err
	}

	stats := NormalizeStats{Rows: len(table.Rows)}
	out := make([]models.Interaction, 0, len(table.Rows))
	for _, rec := range table.Rows {
		cell := func(c column) *string { return cols.cell(rec, c) }

		service := cell(colService)
		if service == nil {
			stats.DroppedNoService++
			continue
		}
		working := isYes(cell(colWorkingHours))
		if variant == VariantWorkingHours && !working {
			stats.DroppedOutsideWorkHours++
			continue
		}

		createdAt := parseTimestamp(cell(colCreatedAt), loc)
		if createdAt == nil && cell(colCreatedAt) != nil {
			stats.BadTimestamps++
		}
		ack := parseDuration(cell(colAck))
		resolve := parseDuration(cell(colResolve))
		if ack.Raw != nil && !ack.Valid {
			stats.BadDurations++
		}
		if resolve.Raw != nil && !resolve.Valid {
			stats.BadDurations++
		}

		out = append(out, models.Interaction{
			CaseID:            strings.ReplaceAll(deref(cell(colCaseID)), ",", ""),
			Service:           *service,
			Inquiry:           deref(cell(colInquiry)),
			Requestor:         deref(cell(colRequestor)),
			CreationTimestamp: deref(cell(colCreationTimestamp)),
			AssignedAgent:     deref(cell(colAgent)),
			OnItTime:          deref(cell(colOnItTime)),
			Attendee:          deref(cell(colAttendee)),
			AttendedTimestamp: deref(cell(colAttendedTimestamp)),
			MessageLink:       deref(cell(colMessageLink)),
			Status:            deref(cell(colStatus)),
			CaseReason:        deref(cell(colCaseReason)),
			CreatedAt:         createdAt,
			TimeToAcknowledge: ack,
			TimeToResolve:     resolve,
			SurveyScore:       parseFloat(cell(colSurvey)),
			Month:             deref(cell(colMonth)),
			Day:               deref(cell(colDay)),
			IsWeekend:         isYes(cell(colWeekend)),
			IsWorkingHours:    working,
			HourCreated:       parseHour(cell(colHourCreated)),
		})
	}
	stats.Kept = len(out)
	return out, stats, nil
}

// cell returns nil for absent columns and blank cells, mirroring how the
// sheet export represents missing values.
func (r resolved) cell(rec []string, c column) *string {
	pos, ok := r[c.name]
	if !ok || pos >= len(rec) {
		return nil
	}
	v := strings.TrimSpace(rec[pos])
	if v == "" {
		return nil
	}
	return &v
}

func parseDuration(raw *string) models.Duration {
	d := models.Duration{Raw: raw}
	if raw == nil {
		return d
	}
	d.Seconds, d.Valid = duration.ParseString(*raw)
	d.Signed, _ = duration.ParseSigned(*raw)
	return d
}

func parseTimestamp(raw *string, loc *time.Location) *time.Time {
	if raw == nil {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, *raw); err == nil {
		t = t.In(loc)
		return &t
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, *raw, loc); err == nil {
			return &t
		}
	}
	return nil
}

func parseFloat(raw *string) *float64 {
	if raw == nil {
		return nil
	}
	v, err := strconv.ParseFloat(*raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func parseHour(raw *string) *int {
	v := parseFloat(raw)
	if v == nil {
		return nil
	}
	h := int(*v)
	return &h
}

func isYes(raw *string) bool {
	if raw == nil {
		return false
	}
	switch strings.ToLower(*raw) {
	case "yes", "y", "true", "1":
		return true
	}
	return false
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func headerIndex(headers []string) map[string]int {
	idx := map[string]int{}
	for i, h := range headers {
		key := normalizeHeader(h)
		if _, dup := idx[key]; dup {
			continue
		}
		idx[key] = i
	}
	return idx
}

func lookup(idx map[string]int, names []string) (int, bool) {
	for _, name := range names {
		if pos, ok := idx[normalizeHeader(name)]; ok {
			return pos, true
		}
	}
	return 0, false
}

func normalizeHeader(h string) string {
	h = strings.ReplaceAll(h, "\ufeff", "")
	return strings.ToLower(strings.TrimSpace(h))
}
