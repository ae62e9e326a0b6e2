package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/anamaak-service/internal/domain"
)

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateName(ctx context.Context, id int64, name string) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	AddPoints(ctx context.Context, id int64, delta int) error
	TouchLastLogin(ctx context.Context, id int64) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, email, mot_de_passe, nom, role, points, actif, date_inscription, derniere_connexion, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO utilisateurs (email, mot_de_passe, nom, role, points, actif)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, date_inscription, created_at, updated_at`

	return querier(ctx, r.pool).QueryRow(ctx, query,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Role,
		user.Points,
		user.Active,
	).Scan(&user.ID, &user.RegisteredAt, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM utilisateurs WHERE id=$1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM utilisateurs WHERE email=$1`, email)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := querier(ctx, r.pool).QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Role,
		&user.Points,
		&user.Active,
		&user.RegisteredAt,
		&user.LastLoginAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdateName(ctx context.Context, id int64, name string) error {
	return r.exec(ctx, `UPDATE utilisateurs SET nom=$1, updated_at=NOW() WHERE id=$2`, name, id)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return r.exec(ctx, `UPDATE utilisateurs SET mot_de_passe=$1, updated_at=NOW() WHERE id=$2`, passwordHash, id)
}

func (r *userRepository) AddPoints(ctx context.Context, id int64, delta int) error {
	return r.exec(ctx, `UPDATE utilisateurs SET points=points+$1, updated_at=NOW() WHERE id=$2`, delta, id)
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id int64) error {
	return r.exec(ctx, `UPDATE utilisateurs SET derniere_connexion=NOW() WHERE id=$1`, id)
}

func (r *userRepository) exec(ctx context.Context, query string, args ...any) error {
	cmd, err := querier(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
