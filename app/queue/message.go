package queue

import (
	"strconv"
	"time"

	"github.com/vibast-solutions/ms-go-campaigns/app/campaign"
)

const StreamName = "campaigns:events"
const ConsumerGroup = "campaign-event-consumers"

// streamMaxLen caps the stream length (approximately).
const streamMaxLen = 10000

type CampaignEvent struct {
	RunID      string
	Type       string
	Status     string
	Recipient  string
	Delivered  bool
	Attempts   int
	Error      string
	Remaining  int
	Total      int
	OccurredAt time.Time
}

// NewCampaignEvent flattens a dispatcher event for the stream.
func NewCampaignEvent(e campaign.Event) CampaignEvent {
	return CampaignEvent{
		RunID:      e.RunID,
		Type:       string(e.Type),
		Status:     string(e.Snapshot.Status),
		Recipient:  e.Recipient,
		Delivered:  e.Delivered,
		Attempts:   e.Attempts,
		Error:      e.Error,
		Remaining:  e.Snapshot.Remaining,
		Total:      e.Snapshot.Total,
		OccurredAt: time.Now().UTC(),
	}
}

func (e CampaignEvent) values() map[string]interface{} {
	return map[string]interface{}{
		"run_id":      e.RunID,
		"type":        e.Type,
		"status":      e.Status,
		"recipient":   e.Recipient,
		"delivered":   strconv.FormatBool(e.Delivered),
		"attempts":    strconv.Itoa(e.Attempts),
		"error":       e.Error,
		"remaining":   strconv.Itoa(e.Remaining),
		"total":       strconv.Itoa(e.Total),
		"occurred_at": e.OccurredAt.Format(time.RFC3339Nano),
	}
}

func parseCampaignEvent(values map[string]interface{}) CampaignEvent {
	str := func(key string) string {
		s, _ := values[key].(string)
		return s
	}
	num := func(key string) int {
		n, _ := strconv.Atoi(str(key))
		return n
	}
	delivered, _ := strconv.ParseBool(str("delivered"))
	occurredAt, _ := time.Parse(time.RFC3339Nano, str("occurred_at"))

	return CampaignEvent{
		RunID:      str("run_id"),
		Type:       str("type"),
		Status:     str("status"),
		Recipient:  str("recipient"),
		Delivered:  delivered,
		Attempts:   num("attempts"),
		Error:      str("error"),
		Remaining:  num("remaining"),
		Total:      num("total"),
		OccurredAt: occurredAt,
	}
}
