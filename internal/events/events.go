package events

import (
	"encoding/json"
	"time"
)

// Event types published while an ingestion run progresses.
const (
	IngestStarted   = "ingest_started"
	ProviderMatched = "provider_matched"
	ProviderError   = "provider_error"
	IngestFinished  = "ingest_finished"
)

// Version is the payload version every event carries.
const Version = 1

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RunID     string          `json:"run_id,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// MakeEvent renders an event as the JSON line sent to SSE clients.
func MakeEvent(runID, typ string, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err == nil {
			raw = b
		}
	}
	e := Event{
		Type:    typ,
		Version: Version,
		At:      time.Now().UTC(),
		RunID:   runID,
		Data:    raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}
