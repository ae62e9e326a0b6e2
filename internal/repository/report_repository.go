package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/anamaak-service/internal/domain"
)

// ReportFilter captures listing parameters. The "tous" wildcard values are
// resolved by the handler before reaching the repository.
type ReportFilter struct {
	Status       *domain.ReportStatus
	Type         *string
	Neighborhood *string
	UserID       *int64
	SearchTerm   *string
	VisibleOnly  bool
	Limit        int
	Offset       int
}

// ReportRepository encapsulates report persistence.
type ReportRepository interface {
	NextSequence(ctx context.Context, year int) (int, error)
	Create(ctx context.Context, report *domain.Report) error
	UpdateStatus(ctx context.Context, report *domain.Report) error
	SetVisibility(ctx context.Context, id int64, visible bool) error
	GetByID(ctx context.Context, id int64) (*domain.Report, error)
	GetByTrackingCode(ctx context.Context, code string, visibleOnly bool) (*domain.Report, error)
	List(ctx context.Context, filter ReportFilter) ([]domain.Report, int64, error)
}

type reportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository instantiates the repository.
func NewReportRepository(pool *pgxpool.Pool) ReportRepository {
	return &reportRepository{pool: pool}
}

// NextSequence atomically increments the per-year counter backing tracking
// codes, so concurrent submissions never compute the same number.
func (r *reportRepository) NextSequence(ctx context.Context, year int) (int, error) {
	const query = `
        INSERT INTO report_sequences (annee, seq) VALUES ($1, 1)
        ON CONFLICT (annee) DO UPDATE SET seq = report_sequences.seq + 1
        RETURNING seq`
	var seq int
	if err := querier(ctx, r.pool).QueryRow(ctx, query, year).Scan(&seq); err != nil {
		return 0, err
	}
	return seq, nil
}

func (r *reportRepository) Create(ctx context.Context, report *domain.Report) error {
	const query = `
        INSERT INTO signalements (
            code_suivi, type, autre_type, description, localisation, quartier,
            latitude, longitude, photo, statut, points_attribues, utilisateur_id, visible_public
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING id, date_creation, date_modification`
	return querier(ctx, r.pool).QueryRow(ctx, query,
		report.TrackingCode,
		report.Type,
		report.OtherType,
		report.Description,
		report.Location,
		report.Neighborhood,
		report.Latitude,
		report.Longitude,
		report.PhotoPath,
		report.Status,
		report.PointsAwarded,
		report.UserID,
		report.PublicVisible,
	).Scan(&report.ID, &report.CreatedAt, &report.UpdatedAt)
}

func (r *reportRepository) UpdateStatus(ctx context.Context, report *domain.Report) error {
	const query = `
        UPDATE signalements
        SET statut=$1, admin_assigne_id=$2, commentaire_admin=$3, date_resolution=$4, date_modification=NOW()
        WHERE id=$5
        RETURNING date_modification`
	return querier(ctx, r.pool).QueryRow(ctx, query,
		report.Status,
		report.AssignedAdminID,
		report.AdminComment,
		report.ResolvedAt,
		report.ID,
	).Scan(&report.UpdatedAt)
}

func (r *reportRepository) SetVisibility(ctx context.Context, id int64, visible bool) error {
	cmd, err := querier(ctx, r.pool).Exec(ctx,
		`UPDATE signalements SET visible_public=$1, date_modification=NOW() WHERE id=$2`, visible, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

const reportSelect = `
        SELECT s.id, s.code_suivi, s.type, s.autre_type, s.description, s.localisation, s.quartier,
               s.latitude, s.longitude, s.photo, s.statut, s.points_attribues, s.utilisateur_id,
               s.admin_assigne_id, s.commentaire_admin, s.visible_public,
               s.date_creation, s.date_modification, s.date_resolution,
               u.nom, u.email
        FROM signalements s
        LEFT JOIN utilisateurs u ON s.utilisateur_id = u.id`

func (r *reportRepository) GetByID(ctx context.Context, id int64) (*domain.Report, error) {
	return r.fetchSingle(ctx, reportSelect+` WHERE s.id=$1`, id)
}

func (r *reportRepository) GetByTrackingCode(ctx context.Context, code string, visibleOnly bool) (*domain.Report, error) {
	query := reportSelect + ` WHERE s.code_suivi=$1`
	if visibleOnly {
		query += ` AND s.visible_public`
	}
	return r.fetchSingle(ctx, query, code)
}

func (r *reportRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Report, error) {
	row := querier(ctx, r.pool).QueryRow(ctx, query, arg)
	report, err := scanReport(row)
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (r *reportRepository) List(ctx context.Context, filter ReportFilter) ([]domain.Report, int64, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.VisibleOnly {
		clauses = append(clauses, "s.visible_public")
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("s.utilisateur_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("s.statut=$%d", len(args)))
	}
	if filter.Type != nil {
		args = append(args, "%"+*filter.Type+"%")
		clauses = append(clauses, fmt.Sprintf("s.type ILIKE $%d", len(args)))
	}
	if filter.Neighborhood != nil {
		args = append(args, *filter.Neighborhood)
		clauses = append(clauses, fmt.Sprintf("s.quartier=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		args = append(args, "%"+strings.TrimSpace(*filter.SearchTerm)+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(s.description ILIKE %s OR s.localisation ILIKE %s OR s.code_suivi ILIKE %s)",
			placeholder, placeholder, placeholder))
	}

	where := strings.Join(clauses, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM signalements s WHERE ` + where
	if err := querier(ctx, r.pool).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY s.date_creation DESC LIMIT %d OFFSET %d`,
		reportSelect, where, limit, offset)

	rows, err := querier(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *report)
	}
	return result, total, rows.Err()
}

func scanReport(row pgx.Row) (*domain.Report, error) {
	var report domain.Report
	if err := row.Scan(
		&report.ID,
		&report.TrackingCode,
		&report.Type,
		&report.OtherType,
		&report.Description,
		&report.Location,
		&report.Neighborhood,
		&report.Latitude,
		&report.Longitude,
		&report.PhotoPath,
		&report.Status,
		&report.PointsAwarded,
		&report.UserID,
		&report.AssignedAdminID,
		&report.AdminComment,
		&report.PublicVisible,
		&report.CreatedAt,
		&report.UpdatedAt,
		&report.ResolvedAt,
		&report.OwnerName,
		&report.OwnerEmail,
	); err != nil {
		return nil, err
	}
	return &report, nil
}
