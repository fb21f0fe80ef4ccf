// Package usage records one event per inference task execution and hands
// it to a sink in the background.
package usage

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/ekisa-team/lingua/internal/apperr"
	"github.com/ekisa-team/lingua/internal/caller"
	"github.com/ekisa-team/lingua/internal/task"
)

// Event is a write-once usage record.
type Event struct {
	ID        string          `json:"id"`
	Task      task.Type       `json:"task"`
	ServiceID string          `json:"serviceId"`
	CallerIP  string          `json:"callerIp,omitempty"`
	APIKeyID  string          `json:"apiKeyId,omitempty"`
	Consent   bool            `json:"consent"`
	Error     string          `json:"error,omitempty"`
	Request   json.RawMessage `json:"request,omitempty"`
	Response  json.RawMessage `json:"response,omitempty"`
	Elapsed   time.Duration   `json:"elapsedNs"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEvent builds an event for one task execution that started at start.
// Request and response bodies are always recorded; consumers honour Consent
// when they retain them beyond metering.
func NewEvent(c caller.Caller, t task.Type, serviceID string, consent bool, req, resp any, err error, start time.Time) Event {
	return Event{
		ID:        uuid.NewString(),
		Task:      t,
		ServiceID: serviceID,
		CallerIP:  c.IP,
		APIKeyID:  c.APIKeyID,
		Consent:   consent,
		Error:     apperr.Summarize(err),
		Request:   marshal(req),
		Response:  marshal(resp),
		Elapsed:   time.Since(start),
		Timestamp: start.UTC(),
	}
}

// Consent reports whether a task's payloads may be recorded. The caller's
// permission is the baseline; an explicit dataTracking value overrides it.
func Consent(permitted bool, cc *task.ControlConfig) bool {
	if cc != nil && cc.DataTracking != nil {
		return permitted && *cc.DataTracking
	}
	return permitted
}

func marshal(v any) json.RawMessage {
	if v == nil {
		return nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}

	return b
}
