// Package rollback implements a LIFO compensation stack for multi-step
// operations: push a compensating request per completed step, then drain
// the stack through a channel if a later step fails.
package rollback

import (
	"encoding/json"
	"log/slog"
)

// Snapshot describes a rollback that could not be fully delivered: the
// requests still pending once the send failure was hit.
type Snapshot[R any] struct {
	FailureMessage  string `json:"failure_message"`
	PendingRequests []R    `json:"pending_requests"`
}

// NewSnapshot builds a Snapshot.
func NewSnapshot[R any](failureMessage string, pendingRequests []R) *Snapshot[R] {
	return &Snapshot[R]{FailureMessage: failureMessage, PendingRequests: pendingRequests}
}

// String renders the snapshot as its wire JSON, for inclusion in log lines.
func (s *Snapshot[R]) String() string {
	encoded, err := json.Marshal(s)
	if err != nil {
		slog.Warn("failed to serialize rollback snapshot", slog.Any("error", err))
		return ""
	}
	return string(encoded)
}
