package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/anamaak-service/internal/domain"
	"github.com/spec-kit/anamaak-service/internal/events"
	"github.com/spec-kit/anamaak-service/pkg/util"
)

type reportFixture struct {
	service    *ReportService
	reports    *fakeReportRepo
	history    *fakeHistoryRepo
	users      *fakeUserRepo
	tx         *fakeTxManager
	dispatcher *capturingDispatcher
	now        time.Time
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	f := &reportFixture{
		reports:    newFakeReportRepo(),
		history:    &fakeHistoryRepo{},
		users:      newFakeUserRepo(),
		tx:         &fakeTxManager{},
		dispatcher: &capturingDispatcher{},
		now:        time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
	}
	f.service = NewReportService(ReportDependencies{
		ReportRepo:  f.reports,
		HistoryRepo: f.history,
		UserRepo:    f.users,
		StatsRepo:   &fakeStatsRepo{},
		TxManager:   f.tx,
		Dispatcher:  f.dispatcher,
	})
	f.service.now = func() time.Time { return f.now }
	return f
}

func validInput() CreateReportInput {
	return CreateReportInput{
		Type:         "Voirie",
		Description:  "Nid de poule dangereux sur la chaussée",
		Location:     "Avenue Mohammed V, près de la poste",
		Neighborhood: "Centre-ville",
	}
}

func TestCreateAssignsTrackingCodeAndInitialHistory(t *testing.T) {
	f := newReportFixture(t)

	report, err := f.service.Create(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, "SIG-2026-0001", report.TrackingCode)
	assert.Equal(t, domain.ReportStatusSubmitted, report.Status)
	assert.Equal(t, domain.PointsReportSubmitted, report.PointsAwarded)
	assert.True(t, report.PublicVisible)
	assert.Equal(t, 1, f.tx.calls)

	require.Len(t, f.history.entries, 1)
	entry := f.history.entries[0]
	assert.Nil(t, entry.OldStatus)
	assert.Equal(t, domain.ReportStatusSubmitted, entry.NewStatus)

	require.Len(t, f.dispatcher.published, 1)
	assert.Equal(t, events.EventReportCreated, f.dispatcher.published[0].Type)
}

func TestCreateSequenceIsPerYear(t *testing.T) {
	f := newReportFixture(t)

	first, err := f.service.Create(context.Background(), validInput())
	require.NoError(t, err)
	second, err := f.service.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, "SIG-2026-0001", first.TrackingCode)
	assert.Equal(t, "SIG-2026-0002", second.TrackingCode)

	f.now = time.Date(2027, 1, 2, 0, 0, 0, 0, time.UTC)
	third, err := f.service.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, "SIG-2027-0001", third.TrackingCode)
}

func TestCreateAwardsPointsToOwnerOnly(t *testing.T) {
	f := newReportFixture(t)
	owner := f.users.add(&domain.User{Email: "a@b.ma", Name: "Amina", Role: domain.RoleCitizen, Active: true})

	input := validInput()
	input.UserID = &owner.ID
	_, err := f.service.Create(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, domain.PointsReportSubmitted, owner.Points)

	// Anonymous submission credits nobody.
	_, err = f.service.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, domain.PointsReportSubmitted, owner.Points)
}

func TestCreateOtherTypeRequiresFreeText(t *testing.T) {
	f := newReportFixture(t)

	input := validInput()
	input.Type = domain.OtherTypeLabel
	_, err := f.service.Create(context.Background(), input)
	var domainErr *util.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 400, domainErr.HTTPStatus)

	custom := "Nuisance sonore"
	input.OtherType = &custom
	report, err := f.service.Create(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, custom, report.Type)
	require.NotNil(t, report.OtherType)
	assert.Equal(t, custom, *report.OtherType)
}

func TestUpdateStatusRejectsNoopTransition(t *testing.T) {
	f := newReportFixture(t)
	admin := f.users.add(&domain.User{Email: "admin@anamak.ma", Role: domain.RoleAdmin, Active: true})
	report, err := f.service.Create(context.Background(), validInput())
	require.NoError(t, err)

	_, err = f.service.UpdateStatus(context.Background(), admin, report.ID, domain.ReportStatusSubmitted, "")
	var domainErr *util.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 400, domainErr.HTTPStatus)
	assert.Equal(t, "Le signalement a déjà ce statut", domainErr.Message)

	// The rejected transition leaves no trace: only the submission entry.
	assert.Len(t, f.history.entries, 1)
}

func TestUpdateStatusToResolvedAwardsBonusAndTimestamps(t *testing.T) {
	f := newReportFixture(t)
	admin := f.users.add(&domain.User{Email: "admin@anamak.ma", Role: domain.RoleAdmin, Active: true})
	owner := f.users.add(&domain.User{Email: "a@b.ma", Role: domain.RoleCitizen, Active: true})

	input := validInput()
	input.UserID = &owner.ID
	report, err := f.service.Create(context.Background(), input)
	require.NoError(t, err)

	updated, err := f.service.UpdateStatus(context.Background(), admin, report.ID, domain.ReportStatusResolved, "Travaux terminés")
	require.NoError(t, err)

	assert.Equal(t, domain.ReportStatusResolved, updated.Status)
	require.NotNil(t, updated.ResolvedAt)
	assert.Equal(t, f.now, *updated.ResolvedAt)
	require.NotNil(t, updated.AssignedAdminID)
	assert.Equal(t, admin.ID, *updated.AssignedAdminID)
	// date_modification is refreshed by the update, not left at its
	// pre-transition value.
	assert.True(t, updated.UpdatedAt.After(report.UpdatedAt))
	assert.Equal(t, domain.PointsReportSubmitted+domain.PointsReportResolved, owner.Points)

	require.Len(t, f.history.entries, 2)
	last := f.history.entries[1]
	require.NotNil(t, last.OldStatus)
	assert.Equal(t, domain.ReportStatusSubmitted, *last.OldStatus)
	assert.Equal(t, domain.ReportStatusResolved, last.NewStatus)
	require.NotNil(t, last.Comment)
	assert.Equal(t, "Travaux terminés", *last.Comment)
}

func TestUpdateStatusDefaultsHistoryComment(t *testing.T) {
	f := newReportFixture(t)
	admin := f.users.add(&domain.User{Email: "admin@anamak.ma", Role: domain.RoleAdmin, Active: true})
	report, err := f.service.Create(context.Background(), validInput())
	require.NoError(t, err)

	_, err = f.service.UpdateStatus(context.Background(), admin, report.ID, domain.ReportStatusInProgress, "")
	require.NoError(t, err)

	last := f.history.entries[len(f.history.entries)-1]
	require.NotNil(t, last.Comment)
	assert.Equal(t,
		fmt.Sprintf("Statut changé de %s à %s", domain.ReportStatusSubmitted, domain.ReportStatusInProgress),
		*last.Comment)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	f := newReportFixture(t)
	admin := f.users.add(&domain.User{Email: "admin@anamak.ma", Role: domain.RoleAdmin, Active: true})

	_, err := f.service.UpdateStatus(context.Background(), admin, 1, domain.ReportStatus("archive"), "")
	var domainErr *util.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 400, domainErr.HTTPStatus)
}

func TestHideAndRestore(t *testing.T) {
	f := newReportFixture(t)
	admin := f.users.add(&domain.User{Email: "admin@anamak.ma", Role: domain.RoleAdmin, Active: true})
	report, err := f.service.Create(context.Background(), validInput())
	require.NoError(t, err)

	// A visible report cannot be restored.
	err = f.service.Restore(context.Background(), admin, report.ID)
	var domainErr *util.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "Le signalement est déjà visible", domainErr.Message)

	require.NoError(t, f.service.Hide(context.Background(), admin, report.ID))
	_, _, err = f.service.GetByCode(context.Background(), report.TrackingCode)
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 404, domainErr.HTTPStatus)

	require.NoError(t, f.service.Restore(context.Background(), admin, report.ID))
	found, _, err := f.service.GetByCode(context.Background(), report.TrackingCode)
	require.NoError(t, err)
	assert.Equal(t, report.ID, found.ID)
}

func TestGetByCodeReturnsOrderedHistory(t *testing.T) {
	f := newReportFixture(t)
	admin := f.users.add(&domain.User{Email: "admin@anamak.ma", Role: domain.RoleAdmin, Active: true})
	report, err := f.service.Create(context.Background(), validInput())
	require.NoError(t, err)
	_, err = f.service.UpdateStatus(context.Background(), admin, report.ID, domain.ReportStatusInProgress, "Équipe dépêchée")
	require.NoError(t, err)

	_, history, err := f.service.GetByCode(context.Background(), report.TrackingCode)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Nil(t, history[0].OldStatus)
	assert.Equal(t, domain.ReportStatusInProgress, history[1].NewStatus)
}

func TestListPagination(t *testing.T) {
	f := newReportFixture(t)
	f.reports.listResp = make([]domain.Report, 20)
	f.reports.total = 45

	_, pagination, err := f.service.List(context.Background(), ListFilter{Page: 2, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 2, pagination.CurrentPage)
	assert.Equal(t, 3, pagination.TotalPages)
	assert.Equal(t, int64(45), pagination.TotalItems)
	assert.Equal(t, 20, pagination.ItemsPerPage)
}

func TestListDefaultsPageAndLimit(t *testing.T) {
	f := newReportFixture(t)
	f.reports.total = 5

	_, pagination, err := f.service.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, pagination.CurrentPage)
	assert.Equal(t, 20, pagination.ItemsPerPage)
	assert.Equal(t, 1, pagination.TotalPages)
}
