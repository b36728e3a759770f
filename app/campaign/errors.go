package campaign

import (
	"errors"
	"fmt"
)

var (
	ErrConflict   = errors.New("campaign already running")
	ErrNotRunning = errors.New("campaign is not running")
	ErrPoolClosed = errors.New("connection pool closed")
)

// ValidationError reports malformed input rejected before a run starts.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ConfigError reports a structurally valid but unusable configuration.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "invalid configuration: " + e.Reason
	}
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// TransientSendError marks a send failure worth retrying.
type TransientSendError struct {
	Err error
}

func (e *TransientSendError) Error() string { return "transient send failure: " + e.Err.Error() }
func (e *TransientSendError) Unwrap() error { return e.Err }

// PermanentSendError marks a send failure that no retry can fix.
type PermanentSendError struct {
	Err error
}

func (e *PermanentSendError) Error() string { return "permanent send failure: " + e.Err.Error() }
func (e *PermanentSendError) Unwrap() error { return e.Err }

// FatalError aborts the whole run.
type FatalError struct {
	Cause error
}

func (e *FatalError) Error() string { return "campaign aborted: " + e.Cause.Error() }
func (e *FatalError) Unwrap() error { return e.Cause }

// IsInputError reports whether err should be surfaced as a bad request.
func IsInputError(err error) bool {
	var verr *ValidationError
	var cerr *ConfigError
	return errors.As(err, &verr) || errors.As(err, &cerr)
}

// FieldOf returns the offending field of a validation or config error.
func FieldOf(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Field
	}
	var cerr *ConfigError
	if errors.As(err, &cerr) {
		return cerr.Field
	}
	return ""
}
