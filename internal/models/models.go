package models

import "time"

// Table is a worksheet as returned by a source: one header row plus data rows.
// Rows may be shorter than Header; missing cells read as null.
type Table struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Duration keeps the audit string from the sheet next to its derived values.
// Seconds applies each token's own sign; Signed negates the whole value when
// the string starts with "-".
type Duration struct {
	Raw     *string `json:"raw"`
	Seconds int     `json:"seconds"`
	Signed  int     `json:"signed_seconds"`
	Valid   bool    `json:"valid"`
}

type Interaction struct {
	CaseID            string     `json:"case_id"`
	Service           string     `json:"service"`
	Inquiry           string     `json:"inquiry,omitempty"`
	Requestor         string     `json:"requestor"`
	CreationTimestamp string     `json:"creation_timestamp,omitempty"`
	AssignedAgent     string     `json:"assigned_agent"`
	OnItTime          string     `json:"on_it_time,omitempty"`
	Attendee          string     `json:"attendee,omitempty"`
	AttendedTimestamp string     `json:"attended_timestamp,omitempty"`
	MessageLink       string     `json:"message_link,omitempty"`
	Status            string     `json:"status"`
	CaseReason        string     `json:"case_reason"`
	CreatedAt         *time.Time `json:"created_at"`
	TimeToAcknowledge Duration   `json:"time_to_acknowledge"`
	TimeToResolve     Duration   `json:"time_to_resolve"`
	SurveyScore       *float64   `json:"survey_score"`
	Month             string     `json:"month"`
	Day               string     `json:"day"`
	IsWeekend         bool       `json:"is_weekend"`
	IsWorkingHours    bool       `json:"is_working_hours"`
	HourCreated       *int       `json:"hour_created"`
}

const (
	StatusInQueue    = "In Queue"
	StatusInProgress = "In Progress"
)
