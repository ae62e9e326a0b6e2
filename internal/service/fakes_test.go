package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/anamaak-service/internal/domain"
	"github.com/spec-kit/anamaak-service/internal/events"
	"github.com/spec-kit/anamaak-service/internal/repository"
)

// In-memory repository fakes backing the service tests.

type fakeTxManager struct {
	calls int
}

func (f *fakeTxManager) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeUserRepo struct {
	byID    map[int64]*domain.User
	byEmail map[string]*domain.User
	points  map[int64]int
	nextID  int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    map[int64]*domain.User{},
		byEmail: map[string]*domain.User{},
		points:  map[int64]int{},
	}
}

func (f *fakeUserRepo) add(user *domain.User) *domain.User {
	if user.ID == 0 {
		f.nextID++
		user.ID = f.nextID
	}
	f.byID[user.ID] = user
	f.byEmail[user.Email] = user
	return user
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.add(user)
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (f *fakeUserRepo) UpdateName(_ context.Context, id int64, name string) error {
	user, ok := f.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.Name = name
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	user, ok := f.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.PasswordHash = hash
	return nil
}

func (f *fakeUserRepo) AddPoints(_ context.Context, id int64, delta int) error {
	user, ok := f.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.Points += delta
	f.points[id] += delta
	return nil
}

func (f *fakeUserRepo) TouchLastLogin(_ context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	return nil
}

type fakeReportRepo struct {
	byID     map[int64]*domain.Report
	seqs     map[int]int
	nextID   int64
	listResp []domain.Report
	total    int64
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{byID: map[int64]*domain.Report{}, seqs: map[int]int{}}
}

func (f *fakeReportRepo) NextSequence(_ context.Context, year int) (int, error) {
	f.seqs[year]++
	return f.seqs[year], nil
}

func (f *fakeReportRepo) Create(_ context.Context, report *domain.Report) error {
	f.nextID++
	report.ID = f.nextID
	clone := *report
	f.byID[report.ID] = &clone
	return nil
}

func (f *fakeReportRepo) UpdateStatus(_ context.Context, report *domain.Report) error {
	stored, ok := f.byID[report.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	// Mirrors the date_modification=NOW() ... RETURNING of the real query.
	report.UpdatedAt = time.Now()
	*stored = *report
	return nil
}

func (f *fakeReportRepo) SetVisibility(_ context.Context, id int64, visible bool) error {
	stored, ok := f.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.PublicVisible = visible
	return nil
}

func (f *fakeReportRepo) GetByID(_ context.Context, id int64) (*domain.Report, error) {
	stored, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *stored
	return &clone, nil
}

func (f *fakeReportRepo) GetByTrackingCode(_ context.Context, code string, visibleOnly bool) (*domain.Report, error) {
	for _, report := range f.byID {
		if report.TrackingCode != code {
			continue
		}
		if visibleOnly && !report.PublicVisible {
			return nil, pgx.ErrNoRows
		}
		clone := *report
		return &clone, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeReportRepo) List(_ context.Context, _ repository.ReportFilter) ([]domain.Report, int64, error) {
	return f.listResp, f.total, nil
}

type fakeHistoryRepo struct {
	entries []domain.StatusHistoryEntry
}

func (f *fakeHistoryRepo) Create(_ context.Context, entry *domain.StatusHistoryEntry) error {
	entry.ID = int64(len(f.entries) + 1)
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeHistoryRepo) ListByReport(_ context.Context, reportID int64) ([]domain.StatusHistoryEntry, error) {
	var out []domain.StatusHistoryEntry
	for _, entry := range f.entries {
		if entry.ReportID == reportID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type fakeBlacklistRepo struct {
	hashes map[string]struct{}
}

func newFakeBlacklistRepo() *fakeBlacklistRepo {
	return &fakeBlacklistRepo{hashes: map[string]struct{}{}}
}

func (f *fakeBlacklistRepo) Add(_ context.Context, token *domain.BlacklistedToken) error {
	f.hashes[token.TokenHash] = struct{}{}
	return nil
}

func (f *fakeBlacklistRepo) Contains(_ context.Context, hash string) (bool, error) {
	_, ok := f.hashes[hash]
	return ok, nil
}

type fakeStatsRepo struct {
	userStats domain.UserReportStats
}

func (f *fakeStatsRepo) Global(_ context.Context) (domain.GlobalStats, error) {
	return domain.GlobalStats{}, nil
}

func (f *fakeStatsRepo) ByNeighborhood(_ context.Context) ([]domain.NeighborhoodCount, error) {
	return nil, nil
}

func (f *fakeStatsRepo) ByType(_ context.Context, _ int) ([]domain.TypeCount, error) {
	return nil, nil
}

func (f *fakeStatsRepo) Evolution(_ context.Context, _ int) ([]domain.MonthlyCount, error) {
	return nil, nil
}

func (f *fakeStatsRepo) ForUser(_ context.Context, _ int64) (domain.UserReportStats, error) {
	return f.userStats, nil
}

type capturingDispatcher struct {
	published []events.Event
}

func (d *capturingDispatcher) Subscribe(_ events.EventType, _ events.EventHandler) {}

func (d *capturingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}
