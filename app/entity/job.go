package entity

const (
	JobStatusPending   int16 = 0
	JobStatusSending   int16 = 1
	JobStatusDelivered int16 = 10
	JobStatusFailed    int16 = 50
)
