package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/anamaak-service/internal/auth"
	"github.com/spec-kit/anamaak-service/internal/config"
	"github.com/spec-kit/anamaak-service/internal/domain"
	"github.com/spec-kit/anamaak-service/internal/persistence"
	"github.com/spec-kit/anamaak-service/internal/repository"
	"github.com/spec-kit/anamaak-service/pkg/util"
)

const blacklistKeyPrefix = "blacklist:"

// AuthService coordinates registration, login and token revocation.
type AuthService struct {
	users      repository.UserRepository
	blacklist  repository.TokenBlacklistRepository
	stats      repository.StatsRepository
	redis      *persistence.Redis
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AuthDependencies bundles repositories for the auth service.
type AuthDependencies struct {
	UserRepo      repository.UserRepository
	BlacklistRepo repository.TokenBlacklistRepository
	StatsRepo     repository.StatsRepository
	Redis         *persistence.Redis
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		blacklist:  deps.BlacklistRepo,
		stats:      deps.StatsRepo,
		redis:      deps.Redis,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL()),
		bcryptCost: cfg.BcryptCost,
	}
}

// Register creates a new citizen account and signs it in.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", util.NewConflict("Un compte avec cet email existe déjà")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(name),
		Role:         domain.RoleCitizen,
		Points:       0,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, _, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login authenticates an account and stamps its last-login time.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", util.NewUnauthorized("Email ou mot de passe incorrect")
		}
		return nil, "", err
	}
	if !user.Active {
		return nil, "", util.NewUnauthorized("Compte désactivé. Contactez l'administration")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", util.NewUnauthorized("Email ou mot de passe incorrect")
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		return nil, "", err
	}
	now := time.Now()
	user.LastLoginAt = &now

	token, _, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Logout blacklists the presented token until its natural expiry. The
// durable record lives in Postgres; Redis mirrors it for fast middleware
// checks and is best-effort.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokenMgr.ParseToken(token)
	if err != nil && !errors.Is(err, auth.ErrTokenExpired) {
		return util.NewUnauthorized("Token invalide")
	}

	expiresAt := time.Now()
	if claims != nil && claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	entry := &domain.BlacklistedToken{
		TokenHash: auth.HashToken(token),
		ExpiresAt: expiresAt,
	}
	if err := s.blacklist.Add(ctx, entry); err != nil {
		return err
	}

	if ttl := time.Until(expiresAt); ttl > 0 && s.redis != nil && s.redis.Client != nil {
		_ = s.redis.Client.Set(ctx, blacklistKeyPrefix+entry.TokenHash, "1", ttl).Err()
	}
	return nil
}

// IsRevoked implements auth.RevocationChecker. Redis answers first; a miss
// or an unreachable cache falls back to the blacklist table.
func (s *AuthService) IsRevoked(ctx context.Context, token string) (bool, error) {
	hash := auth.HashToken(token)

	if s.redis != nil && s.redis.Client != nil {
		// redis.Nil means not cached; any other error means the cache is
		// unreachable. Either way the table decides.
		if err := s.redis.Client.Get(ctx, blacklistKeyPrefix+hash).Err(); err == nil {
			return true, nil
		}
	}
	return s.blacklist.Contains(ctx, hash)
}

// Profile returns the account plus its personal report statistics.
func (s *AuthService) Profile(ctx context.Context, userID int64) (*domain.User, domain.UserReportStats, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.UserReportStats{}, util.NewNotFound("Utilisateur non trouvé")
		}
		return nil, domain.UserReportStats{}, err
	}
	stats, err := s.stats.ForUser(ctx, userID)
	if err != nil {
		return nil, domain.UserReportStats{}, err
	}
	return user, stats, nil
}

// UpdateProfile changes the display name.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, name string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if len([]rune(name)) < 2 {
		return nil, util.NewValidationError("Le nom doit contenir au moins 2 caractères", nil)
	}
	if err := s.users.UpdateName(ctx, userID, name); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

// ChangePassword verifies the current password before storing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return util.NewValidationError("Le nouveau mot de passe doit contenir au moins 6 caractères", nil)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return util.NewNotFound("Utilisateur non trouvé")
		}
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return util.NewValidationError("Mot de passe actuel incorrect", nil)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
