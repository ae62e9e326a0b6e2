package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/anamaak-service/internal/domain"
)

// StatsRepository provides read-only aggregations over reports.
type StatsRepository interface {
	Global(ctx context.Context) (domain.GlobalStats, error)
	ByNeighborhood(ctx context.Context) ([]domain.NeighborhoodCount, error)
	ByType(ctx context.Context, limit int) ([]domain.TypeCount, error)
	Evolution(ctx context.Context, months int) ([]domain.MonthlyCount, error)
	ForUser(ctx context.Context, userID int64) (domain.UserReportStats, error)
}

type statsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository builds the repository.
func NewStatsRepository(pool *pgxpool.Pool) StatsRepository {
	return &statsRepository{pool: pool}
}

func (r *statsRepository) Global(ctx context.Context) (domain.GlobalStats, error) {
	const query = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE statut='soumise'),
               COUNT(*) FILTER (WHERE statut='en_traitement'),
               COUNT(*) FILTER (WHERE statut='resolu'),
               AVG(EXTRACT(EPOCH FROM (date_resolution - date_creation)) / 86400)
                   FILTER (WHERE statut='resolu' AND date_resolution IS NOT NULL)
        FROM signalements
        WHERE visible_public`
	var stats domain.GlobalStats
	if err := querier(ctx, r.pool).QueryRow(ctx, query).Scan(
		&stats.Total,
		&stats.Submitted,
		&stats.InProgress,
		&stats.Resolved,
		&stats.AvgResolutionDays,
	); err != nil {
		return domain.GlobalStats{}, err
	}
	return stats, nil
}

func (r *statsRepository) ByNeighborhood(ctx context.Context) ([]domain.NeighborhoodCount, error) {
	const query = `
        SELECT quartier, COUNT(*), COUNT(*) FILTER (WHERE statut='resolu')
        FROM signalements
        WHERE visible_public
        GROUP BY quartier
        ORDER BY COUNT(*) DESC`
	rows, err := querier(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.NeighborhoodCount
	for rows.Next() {
		var count domain.NeighborhoodCount
		if err := rows.Scan(&count.Neighborhood, &count.Total, &count.Resolved); err != nil {
			return nil, err
		}
		result = append(result, count)
	}
	return result, rows.Err()
}

func (r *statsRepository) ByType(ctx context.Context, limit int) ([]domain.TypeCount, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `
        SELECT type, COUNT(*), COUNT(*) FILTER (WHERE statut='resolu')
        FROM signalements
        WHERE visible_public
        GROUP BY type
        ORDER BY COUNT(*) DESC
        LIMIT $1`
	rows, err := querier(ctx, r.pool).Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TypeCount
	for rows.Next() {
		var count domain.TypeCount
		if err := rows.Scan(&count.Type, &count.Total, &count.Resolved); err != nil {
			return nil, err
		}
		result = append(result, count)
	}
	return result, rows.Err()
}

func (r *statsRepository) Evolution(ctx context.Context, months int) ([]domain.MonthlyCount, error) {
	if months <= 0 {
		months = 6
	}
	const query = `
        SELECT EXTRACT(YEAR FROM date_creation)::int,
               EXTRACT(MONTH FROM date_creation)::int,
               COUNT(*),
               COUNT(*) FILTER (WHERE statut='resolu')
        FROM signalements
        WHERE visible_public
          AND date_creation >= CURRENT_DATE - ($1 * INTERVAL '1 month')
        GROUP BY 1, 2
        ORDER BY 1 DESC, 2 DESC`
	rows, err := querier(ctx, r.pool).Query(ctx, query, months)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.MonthlyCount
	for rows.Next() {
		var count domain.MonthlyCount
		if err := rows.Scan(&count.Year, &count.Month, &count.Total, &count.Resolved); err != nil {
			return nil, err
		}
		result = append(result, count)
	}
	return result, rows.Err()
}

func (r *statsRepository) ForUser(ctx context.Context, userID int64) (domain.UserReportStats, error) {
	const query = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE statut='soumise'),
               COUNT(*) FILTER (WHERE statut='en_traitement'),
               COUNT(*) FILTER (WHERE statut='resolu'),
               COALESCE(SUM(points_attribues), 0)
        FROM signalements
        WHERE utilisateur_id=$1`
	var stats domain.UserReportStats
	if err := querier(ctx, r.pool).QueryRow(ctx, query, userID).Scan(
		&stats.Total,
		&stats.Submitted,
		&stats.InProgress,
		&stats.Resolved,
		&stats.Points,
	); err != nil {
		return domain.UserReportStats{}, err
	}
	return stats, nil
}
