package campaign

import (
	"errors"
	"net/textproto"
	"time"

	"github.com/aws/smithy-go"
	gomail "github.com/wneessen/go-mail"
)

type FailureKind int

const (
	Transient FailureKind = iota
	Permanent
)

func (k FailureKind) String() string {
	if k == Permanent {
		return "permanent"
	}
	return "transient"
}

// RetryPolicy bounds attempts per job and classifies send failures.
type RetryPolicy struct {
	Retries int
	Backoff time.Duration
}

// NewRetryPolicy builds the policy from run settings.
func NewRetryPolicy(settings Settings) RetryPolicy {
	return RetryPolicy{Retries: settings.Retries, Backoff: settings.PauseBetweenMessages}
}

// ShouldRetry reports whether the job has retry budget left.
func (p RetryPolicy) ShouldRetry(job *Job) bool {
	return job.Attempts <= p.Retries
}

// Classify maps a send error to Transient or Permanent. Unknown errors are
// transient; the retry budget bounds them.
func (p RetryPolicy) Classify(err error) FailureKind {
	var permErr *PermanentSendError
	if errors.As(err, &permErr) {
		return Permanent
	}
	var tempErr *TransientSendError
	if errors.As(err, &tempErr) {
		return Transient
	}

	// go-mail marks only 4xx replies as temporary, so a dropped connection
	// looks permanent to IsTemp. Only a 5xx reply or a message go-mail can
	// never send is permanent.
	var sendErr *gomail.SendError
	if errors.As(err, &sendErr) {
		if sendErr.ErrorCode() >= 500 || permanentSendReasons[sendErr.Reason] {
			return Permanent
		}
		return Transient
	}

	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		if protoErr.Code >= 500 {
			return Permanent
		}
		return Transient
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if apiErr.ErrorFault() == smithy.FaultClient && !throttlingCodes[apiErr.ErrorCode()] {
			return Permanent
		}
		return Transient
	}

	// Network errors, timeouts and anything unrecognised.
	return Transient
}

var permanentSendReasons = map[gomail.SendErrReason]bool{
	gomail.ErrGetSender:   true,
	gomail.ErrGetRcpts:    true,
	gomail.ErrNoUnencoded: true,
}

var throttlingCodes = map[string]bool{
	"Throttling":               true,
	"ThrottlingException":      true,
	"TooManyRequestsException": true,
	"LimitExceededException":   true,
	"RequestTimeout":           true,
	"RequestTimeoutException":  true,
	"ServiceUnavailable":       true,
}
