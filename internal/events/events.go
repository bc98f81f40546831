// Package events carries progress observations of batch and interview runs
// out to external observers (dashboards). Events are keyed by the batch or
// vacancy identifier so multiple UIs can subscribe independently.
package events

import "context"

type Status string

const (
	StatusStarted    Status = "started"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Progress is one observation of a running operation.
type Progress struct {
	Key       string `json:"key"`
	Status    Status `json:"status"`
	Message   string `json:"message"`
	Total     int    `json:"total,omitempty"`
	Processed int    `json:"processed,omitempty"`
	Failed    int    `json:"failed,omitempty"`
}

// Publisher delivers progress observations. Publishing must never fail the
// operation being observed; implementations log and swallow their own errors.
type Publisher interface {
	Publish(ctx context.Context, p Progress)
}

// NopPublisher discards all observations.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Progress) {}
