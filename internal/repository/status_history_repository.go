package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/anamaak-service/internal/domain"
)

// StatusHistoryRepository stores append-only status audit entries.
type StatusHistoryRepository interface {
	Create(ctx context.Context, entry *domain.StatusHistoryEntry) error
	ListByReport(ctx context.Context, reportID int64) ([]domain.StatusHistoryEntry, error)
}

type statusHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewStatusHistoryRepository builds the repository.
func NewStatusHistoryRepository(pool *pgxpool.Pool) StatusHistoryRepository {
	return &statusHistoryRepository{pool: pool}
}

func (r *statusHistoryRepository) Create(ctx context.Context, entry *domain.StatusHistoryEntry) error {
	const query = `
        INSERT INTO historique_statuts (signalement_id, ancien_statut, nouveau_statut, admin_id, commentaire)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, date_changement`
	return querier(ctx, r.pool).QueryRow(ctx, query,
		entry.ReportID,
		entry.OldStatus,
		entry.NewStatus,
		entry.AdminID,
		entry.Comment,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *statusHistoryRepository) ListByReport(ctx context.Context, reportID int64) ([]domain.StatusHistoryEntry, error) {
	const query = `
        SELECT hs.id, hs.signalement_id, hs.ancien_statut, hs.nouveau_statut, hs.admin_id, hs.commentaire,
               hs.date_changement, u.nom
        FROM historique_statuts hs
        LEFT JOIN utilisateurs u ON hs.admin_id = u.id
        WHERE hs.signalement_id=$1
        ORDER BY hs.date_changement ASC`
	rows, err := querier(ctx, r.pool).Query(ctx, query, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StatusHistoryEntry
	for rows.Next() {
		var entry domain.StatusHistoryEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.ReportID,
			&entry.OldStatus,
			&entry.NewStatus,
			&entry.AdminID,
			&entry.Comment,
			&entry.CreatedAt,
			&entry.AdminName,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
