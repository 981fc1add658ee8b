package aggregate

import "github.com/srr_metrics/backend/internal/models"

type QueueEntry struct {
	CaseID            string `json:"case_id"`
	Requestor         string `json:"requestor"`
	Service           string `json:"service"`
	CreationTimestamp string `json:"creation_timestamp"`
	AssignedAgent     string `json:"assigned_agent,omitempty"`
	TimeToAcknowledge string `json:"time_to_acknowledge,omitempty"`
	MessageLink       string `json:"message_link"`
}

type QueueSnapshot struct {
	Status  string       `json:"status"`
	Count   int          `json:"count"`
	Entries []QueueEntry `json:"entries"`
}

// Queue lists the records currently in status, in sheet order. Cases still
// waiting in the queue have no agent or acknowledgement to show.
func Queue(records []models.Interaction, status string) QueueSnapshot {
	snap := QueueSnapshot{Status: status, Entries: []QueueEntry{}}
	for _, r := range records {
		if r.Status != status {
			continue
		}
		e := QueueEntry{
			CaseID:            r.CaseID,
			Requestor:         r.Requestor,
			Service:           r.Service,
			CreationTimestamp: r.CreationTimestamp,
			MessageLink:       r.MessageLink,
		}
		if status != models.StatusInQueue {
			e.AssignedAgent = r.AssignedAgent
			if r.TimeToAcknowledge.Raw != nil {
				e.TimeToAcknowledge = *r.TimeToAcknowledge.Raw
			}
		}
		snap.Entries = append(snap.Entries, e)
	}
	snap.Count = len(snap.Entries)
	return snap
}
