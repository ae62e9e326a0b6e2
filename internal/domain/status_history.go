package domain

import "time"

// StatusHistoryEntry is an immutable audit entry for a report status change.
// OldStatus is nil only for the initial entry recorded at submission.
type StatusHistoryEntry struct {
	ID        int64
	ReportID  int64
	OldStatus *ReportStatus
	NewStatus ReportStatus
	AdminID   *int64
	Comment   *string
	CreatedAt time.Time

	// AdminName is joined from the acting admin account when present.
	AdminName *string
}
