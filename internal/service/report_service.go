package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/anamaak-service/internal/domain"
	"github.com/spec-kit/anamaak-service/internal/events"
	"github.com/spec-kit/anamaak-service/internal/repository"
	"github.com/spec-kit/anamaak-service/pkg/util"
)

// ReportService coordinates the signalement workflows: submission, status
// transitions, lookup and soft deletion.
type ReportService struct {
	reports    repository.ReportRepository
	history    repository.StatusHistoryRepository
	users      repository.UserRepository
	stats      repository.StatsRepository
	tx         repository.TxManager
	dispatcher events.Dispatcher
	now        func() time.Time
}

// ReportDependencies bundles repositories for the report service.
type ReportDependencies struct {
	ReportRepo  repository.ReportRepository
	HistoryRepo repository.StatusHistoryRepository
	UserRepo    repository.UserRepository
	StatsRepo   repository.StatsRepository
	TxManager   repository.TxManager
	Dispatcher  events.Dispatcher
}

// CreateReportInput describes a submission payload after validation.
type CreateReportInput struct {
	Type         string
	OtherType    *string
	Description  string
	Location     string
	Neighborhood string
	Latitude     *float64
	Longitude    *float64
	PhotoPath    *string
	UserID       *int64
}

// ListFilter describes listing parameters at the service boundary.
type ListFilter struct {
	Status       *domain.ReportStatus
	Type         *string
	Neighborhood *string
	Search       *string
	UserOnly     bool
	UserID       *int64
	Page         int
	Limit        int
}

// Pagination describes the page window returned alongside listings.
type Pagination struct {
	CurrentPage  int
	TotalPages   int
	TotalItems   int64
	ItemsPerPage int
}

// NewReportService constructs the service.
func NewReportService(deps ReportDependencies) *ReportService {
	return &ReportService{
		reports:    deps.ReportRepo,
		history:    deps.HistoryRepo,
		users:      deps.UserRepo,
		stats:      deps.StatsRepo,
		tx:         deps.TxManager,
		dispatcher: deps.Dispatcher,
		now:        time.Now,
	}
}

// Create submits a new report. Code allocation, the report row, the initial
// history entry and the submission points all commit atomically.
func (s *ReportService) Create(ctx context.Context, input CreateReportInput) (*domain.Report, error) {
	finalType := strings.TrimSpace(input.Type)
	var otherType *string
	if finalType == domain.OtherTypeLabel {
		if input.OtherType == nil || strings.TrimSpace(*input.OtherType) == "" {
			return nil, util.NewValidationError("Précisez le type de signalement", []util.FieldError{
				{Field: "autre_type", Message: "Champ requis"},
			})
		}
		trimmed := strings.TrimSpace(*input.OtherType)
		finalType = trimmed
		otherType = &trimmed
	}

	report := &domain.Report{
		Type:          finalType,
		OtherType:     otherType,
		Description:   strings.TrimSpace(input.Description),
		Location:      strings.TrimSpace(input.Location),
		Neighborhood:  strings.TrimSpace(input.Neighborhood),
		Latitude:      input.Latitude,
		Longitude:     input.Longitude,
		PhotoPath:     input.PhotoPath,
		Status:        domain.ReportStatusSubmitted,
		PointsAwarded: domain.PointsReportSubmitted,
		UserID:        input.UserID,
		PublicVisible: true,
	}

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		year := s.now().Year()
		seq, err := s.reports.NextSequence(ctx, year)
		if err != nil {
			return err
		}
		report.TrackingCode = domain.FormatTrackingCode(year, seq)

		if err := s.reports.Create(ctx, report); err != nil {
			return err
		}

		comment := "Signalement initial créé"
		if err := s.history.Create(ctx, &domain.StatusHistoryEntry{
			ReportID:  report.ID,
			OldStatus: nil,
			NewStatus: domain.ReportStatusSubmitted,
			Comment:   &comment,
		}); err != nil {
			return err
		}

		if report.UserID != nil {
			return s.users.AddPoints(ctx, *report.UserID, domain.PointsReportSubmitted)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:         events.EventReportCreated,
		ReportID:     report.ID,
		TrackingCode: report.TrackingCode,
		Payload: events.ReportCreatedPayload{
			Type:         report.Type,
			Neighborhood: report.Neighborhood,
			OwnerID:      report.UserID,
		},
	})
	return report, nil
}

// GetByCode returns a publicly visible report and its ordered history.
func (s *ReportService) GetByCode(ctx context.Context, code string) (*domain.Report, []domain.StatusHistoryEntry, error) {
	report, err := s.reports.GetByTrackingCode(ctx, code, true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, util.NewNotFound("Signalement non trouvé avec ce code")
		}
		return nil, nil, err
	}
	history, err := s.history.ListByReport(ctx, report.ID)
	if err != nil {
		return nil, nil, err
	}
	return report, history, nil
}

// GetByID returns a report regardless of visibility, for admin views.
func (s *ReportService) GetByID(ctx context.Context, id int64) (*domain.Report, []domain.StatusHistoryEntry, error) {
	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, util.NewNotFound("Signalement non trouvé")
		}
		return nil, nil, err
	}
	history, err := s.history.ListByReport(ctx, report.ID)
	if err != nil {
		return nil, nil, err
	}
	return report, history, nil
}

// List returns publicly visible reports matching the filter.
func (s *ReportService) List(ctx context.Context, filter ListFilter) ([]domain.Report, Pagination, error) {
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	repoFilter := repository.ReportFilter{
		Status:       filter.Status,
		Type:         filter.Type,
		Neighborhood: filter.Neighborhood,
		SearchTerm:   filter.Search,
		VisibleOnly:  true,
		Limit:        limit,
		Offset:       (page - 1) * limit,
	}
	if filter.UserOnly && filter.UserID != nil {
		repoFilter.UserID = filter.UserID
	}

	reports, total, err := s.reports.List(ctx, repoFilter)
	if err != nil {
		return nil, Pagination{}, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return reports, Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: limit,
	}, nil
}

// UpdateStatus transitions a report to a new status. Any status is reachable
// from any other; only no-op transitions are rejected. The status row, the
// history entry and the resolution bonus commit atomically.
func (s *ReportService) UpdateStatus(ctx context.Context, admin *domain.User, id int64, newStatus domain.ReportStatus, comment string) (*domain.Report, error) {
	if !newStatus.Valid() {
		return nil, util.NewValidationError("Statut invalide. Valeurs autorisées: soumise, en_traitement, resolu", nil)
	}

	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("Signalement non trouvé")
		}
		return nil, err
	}

	oldStatus := report.Status
	if oldStatus == newStatus {
		return nil, util.NewConflict("Le signalement a déjà ce statut")
	}

	comment = strings.TrimSpace(comment)
	historyComment := comment
	if historyComment == "" {
		historyComment = fmt.Sprintf("Statut changé de %s à %s", oldStatus, newStatus)
	}

	report.Status = newStatus
	report.AssignedAdminID = &admin.ID
	if comment != "" {
		report.AdminComment = &comment
	}
	if newStatus == domain.ReportStatusResolved {
		now := s.now()
		report.ResolvedAt = &now
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.reports.UpdateStatus(ctx, report); err != nil {
			return err
		}
		if err := s.history.Create(ctx, &domain.StatusHistoryEntry{
			ReportID:  report.ID,
			OldStatus: &oldStatus,
			NewStatus: newStatus,
			AdminID:   &admin.ID,
			Comment:   &historyComment,
		}); err != nil {
			return err
		}
		if newStatus == domain.ReportStatusResolved && report.UserID != nil {
			return s.users.AddPoints(ctx, *report.UserID, domain.PointsReportResolved)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:         events.EventReportStatusChanged,
		ReportID:     report.ID,
		TrackingCode: report.TrackingCode,
		Payload: events.ReportStatusChangedPayload{
			OldStatus:  oldStatus,
			NewStatus:  newStatus,
			Comment:    comment,
			AdminID:    admin.ID,
			OwnerEmail: report.OwnerEmail,
			OwnerName:  report.OwnerName,
		},
	})
	return report, nil
}

// Hide soft-deletes a report by removing it from public views.
func (s *ReportService) Hide(ctx context.Context, admin *domain.User, id int64) error {
	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return util.NewNotFound("Signalement non trouvé")
		}
		return err
	}
	if err := s.reports.SetVisibility(ctx, report.ID, false); err != nil {
		return err
	}
	s.publishVisibility(ctx, report, admin, false)
	return nil
}

// Restore makes a hidden report publicly visible again.
func (s *ReportService) Restore(ctx context.Context, admin *domain.User, id int64) error {
	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return util.NewNotFound("Signalement non trouvé")
		}
		return err
	}
	if report.PublicVisible {
		return util.NewConflict("Le signalement est déjà visible")
	}
	if err := s.reports.SetVisibility(ctx, report.ID, true); err != nil {
		return err
	}
	s.publishVisibility(ctx, report, admin, true)
	return nil
}

// Statistics aggregates the public dashboard figures.
func (s *ReportService) Statistics(ctx context.Context) (*domain.Statistics, error) {
	global, err := s.stats.Global(ctx)
	if err != nil {
		return nil, err
	}
	byNeighborhood, err := s.stats.ByNeighborhood(ctx)
	if err != nil {
		return nil, err
	}
	byType, err := s.stats.ByType(ctx, 10)
	if err != nil {
		return nil, err
	}
	evolution, err := s.stats.Evolution(ctx, 6)
	if err != nil {
		return nil, err
	}
	return &domain.Statistics{
		Global:         global,
		ByNeighborhood: byNeighborhood,
		ByType:         byType,
		Evolution:      evolution,
	}, nil
}

func (s *ReportService) publishVisibility(ctx context.Context, report *domain.Report, admin *domain.User, visible bool) {
	s.publishEvent(ctx, events.Event{
		Type:         events.EventReportVisibilityChanged,
		ReportID:     report.ID,
		TrackingCode: report.TrackingCode,
		Payload: events.ReportVisibilityChangedPayload{
			Visible: visible,
			AdminID: admin.ID,
		},
	})
}

func (s *ReportService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
