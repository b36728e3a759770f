package dto

import (
	"time"

	"github.com/vibast-solutions/ms-go-campaigns/app/campaign"
	"google.golang.org/protobuf/types/known/structpb"
)

// StatusResponse is the campaign-status payload.
type StatusResponse struct {
	IsRunning  bool     `json:"isRunning"`
	Remaining  int      `json:"remaining"`
	Status     string   `json:"status"`
	Total      int      `json:"total"`
	Delivered  int      `json:"delivered"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors"`
	LastError  string   `json:"lastError,omitempty"`
	RunID      string   `json:"runId,omitempty"`
	StartedAt  string   `json:"startedAt,omitempty"`
	FinishedAt string   `json:"finishedAt,omitempty"`
}

// NewStatusResponse converts a snapshot.
func NewStatusResponse(s campaign.Snapshot) StatusResponse {
	errs := s.RecentErrors
	if errs == nil {
		errs = []string{}
	}
	return StatusResponse{
		IsRunning:  s.IsRunning,
		Remaining:  s.Remaining,
		Status:     string(s.Status),
		Total:      s.Total,
		Delivered:  s.Delivered,
		Failed:     s.Failed,
		Errors:     errs,
		LastError:  s.LastError,
		RunID:      s.RunID,
		StartedAt:  formatTime(s.StartedAt),
		FinishedAt: formatTime(s.FinishedAt),
	}
}

// ToStruct renders the response for gRPC clients with the same keys as JSON.
func (r StatusResponse) ToStruct() (*structpb.Struct, error) {
	errs := make([]interface{}, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	fields := map[string]interface{}{
		"isRunning": r.IsRunning,
		"remaining": r.Remaining,
		"status":    r.Status,
		"total":     r.Total,
		"delivered": r.Delivered,
		"failed":    r.Failed,
		"errors":    errs,
	}
	for key, value := range map[string]string{
		"lastError":  r.LastError,
		"runId":      r.RunID,
		"startedAt":  r.StartedAt,
		"finishedAt": r.FinishedAt,
	} {
		if value != "" {
			fields[key] = value
		}
	}
	return structpb.NewStruct(fields)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
