package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/anamaak-service/internal/domain"
	"github.com/spec-kit/anamaak-service/pkg/util"
)

type stubUserRepo struct {
	users map[int64]*domain.User
}

func (s *stubUserRepo) Create(context.Context, *domain.User) error { return nil }

func (s *stubUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (s *stubUserRepo) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}

func (s *stubUserRepo) UpdateName(context.Context, int64, string) error     { return nil }
func (s *stubUserRepo) UpdatePassword(context.Context, int64, string) error { return nil }
func (s *stubUserRepo) AddPoints(context.Context, int64, int) error         { return nil }
func (s *stubUserRepo) TouchLastLogin(context.Context, int64) error         { return nil }

type stubRevocation struct {
	revoked bool
}

func (s *stubRevocation) IsRevoked(context.Context, string) (bool, error) {
	return s.revoked, nil
}

func newMiddlewareApp(m *Middleware) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := util.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{
				"success": false,
				"message": domainErr.Message,
			})
		},
	})
	app.Get("/protected", m.Handle, func(c *fiber.Ctx) error {
		user, _ := UserFromContext(c)
		return c.JSON(fiber.Map{"success": true, "email": user.Email})
	})
	return app
}

func TestHandleRejectsRevokedToken(t *testing.T) {
	tokens := NewTokenManager("secret", time.Hour)
	user := &domain.User{ID: 7, Email: "a@b.ma", Role: domain.RoleCitizen, Active: true}
	repo := &stubUserRepo{users: map[int64]*domain.User{user.ID: user}}
	revocation := &stubRevocation{}
	app := newMiddlewareApp(NewMiddleware(tokens, repo, revocation))

	token, _, err := tokens.GenerateToken(user)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	// Same token after logout.
	revocation.revoked = true
	req = httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Token révoqué", body["message"])
}

func TestHandleRejectsMissingAndInactive(t *testing.T) {
	tokens := NewTokenManager("secret", time.Hour)
	user := &domain.User{ID: 7, Email: "a@b.ma", Role: domain.RoleCitizen, Active: false}
	repo := &stubUserRepo{users: map[int64]*domain.User{user.ID: user}}
	app := newMiddlewareApp(NewMiddleware(tokens, repo, &stubRevocation{}))

	resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	token, _, err := tokens.GenerateToken(user)
	require.NoError(t, err)
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}
