package domain

import (
	"fmt"
	"time"
)

// ReportStatus enumerates lifecycle states for citizen reports.
type ReportStatus string

const (
	ReportStatusSubmitted  ReportStatus = "soumise"
	ReportStatusInProgress ReportStatus = "en_traitement"
	ReportStatusResolved   ReportStatus = "resolu"
)

// Valid reports whether the status is a known value.
func (s ReportStatus) Valid() bool {
	switch s {
	case ReportStatusSubmitted, ReportStatusInProgress, ReportStatusResolved:
		return true
	}
	return false
}

// Point amounts credited to report owners.
const (
	PointsReportSubmitted = 10
	PointsReportResolved  = 5
)

// OtherTypeLabel is the sentinel incident type selecting free-text input.
const OtherTypeLabel = "Autre (précisez)"

// Report is the aggregate for citizen incident reports (signalements).
// TrackingCode is immutable once assigned. Soft deletion only toggles
// PublicVisible; rows are kept for audit and restore.
type Report struct {
	ID              int64
	TrackingCode    string
	Type            string
	OtherType       *string
	Description     string
	Location        string
	Neighborhood    string
	Latitude        *float64
	Longitude       *float64
	PhotoPath       *string
	Status          ReportStatus
	PointsAwarded   int
	UserID          *int64
	AssignedAdminID *int64
	AdminComment    *string
	PublicVisible   bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ResolvedAt      *time.Time

	// Joined columns, populated by list/lookup queries.
	OwnerName  *string
	OwnerEmail *string
}

// FormatTrackingCode renders a tracking code for the given year and
// per-year sequence number.
func FormatTrackingCode(year, seq int) string {
	return fmt.Sprintf("SIG-%d-%04d", year, seq)
}
