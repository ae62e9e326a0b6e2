package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/anamaak-service/internal/domain"
	"github.com/spec-kit/anamaak-service/internal/repository"
	"github.com/spec-kit/anamaak-service/pkg/util"
)

const (
	principalKey = "auth_user"
	tokenKey     = "auth_token"
)

// RevocationChecker answers whether a bearer token has been blacklisted.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// Middleware validates bearer tokens and loads the calling account.
type Middleware struct {
	tokens  *TokenManager
	users   repository.UserRepository
	revoked RevocationChecker
}

// NewMiddleware constructs the middleware.
func NewMiddleware(tokens *TokenManager, users repository.UserRepository, revoked RevocationChecker) *Middleware {
	return &Middleware{tokens: tokens, users: users, revoked: revoked}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	token, ok := bearerToken(c)
	if !ok {
		return util.NewUnauthorized("Token d'accès requis")
	}

	if m.revoked != nil {
		revoked, err := m.revoked.IsRevoked(c.Context(), token)
		if err != nil {
			return util.NewInternalError(err)
		}
		if revoked {
			return util.NewUnauthorized("Token révoqué")
		}
	}

	claims, err := m.tokens.ParseToken(token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return util.NewUnauthorized("Token expiré")
		}
		return util.NewUnauthorized("Token invalide")
	}

	user, err := m.users.GetByID(c.Context(), claims.UserID)
	if err != nil || !user.Active {
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return util.NewInternalError(err)
		}
		return util.NewUnauthorized("Utilisateur non trouvé ou inactif")
	}

	c.Locals(principalKey, user)
	c.Locals(tokenKey, token)
	return c.Next()
}

// Optional loads the account when a valid token is present without ever
// blocking the request.
func (m *Middleware) Optional(c *fiber.Ctx) error {
	token, ok := bearerToken(c)
	if !ok {
		return c.Next()
	}

	claims, err := m.tokens.ParseToken(token)
	if err != nil {
		return c.Next()
	}

	user, err := m.users.GetByID(c.Context(), claims.UserID)
	if err == nil && user.Active {
		c.Locals(principalKey, user)
		c.Locals(tokenKey, token)
	}
	return c.Next()
}

// UserFromContext retrieves the authenticated account, when any.
func UserFromContext(c *fiber.Ctx) (*domain.User, bool) {
	user, ok := c.Locals(principalKey).(*domain.User)
	return user, ok
}

// TokenFromContext retrieves the raw bearer token of the request.
func TokenFromContext(c *fiber.Ctx) (string, bool) {
	token, ok := c.Locals(tokenKey).(string)
	return token, ok
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	header := c.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
