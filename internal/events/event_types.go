package events

import (
	"time"

	"github.com/spec-kit/anamaak-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventReportCreated           EventType = "report_created"
	EventReportStatusChanged     EventType = "report_status_changed"
	EventReportVisibilityChanged EventType = "report_visibility_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID           string      `json:"id"`
	Type         EventType   `json:"type"`
	ReportID     int64       `json:"report_id"`
	TrackingCode string      `json:"tracking_code"`
	Timestamp    time.Time   `json:"timestamp"`
	Payload      interface{} `json:"payload"`
}

// ReportCreatedPayload payload.
type ReportCreatedPayload struct {
	Type         string  `json:"type"`
	Neighborhood string  `json:"quartier"`
	OwnerID      *int64  `json:"utilisateur_id,omitempty"`
	OwnerEmail   *string `json:"owner_email,omitempty"`
}

// ReportStatusChangedPayload payload.
type ReportStatusChangedPayload struct {
	OldStatus  domain.ReportStatus `json:"old_status"`
	NewStatus  domain.ReportStatus `json:"new_status"`
	Comment    string              `json:"comment,omitempty"`
	AdminID    int64               `json:"admin_id"`
	OwnerEmail *string             `json:"owner_email,omitempty"`
	OwnerName  *string             `json:"owner_name,omitempty"`
}

// ReportVisibilityChangedPayload payload.
type ReportVisibilityChangedPayload struct {
	Visible bool  `json:"visible"`
	AdminID int64 `json:"admin_id"`
}
