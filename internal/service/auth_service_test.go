package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/anamaak-service/internal/config"
	"github.com/spec-kit/anamaak-service/internal/domain"
	"github.com/spec-kit/anamaak-service/pkg/util"
)

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo, *fakeBlacklistRepo) {
	t.Helper()
	users := newFakeUserRepo()
	blacklist := newFakeBlacklistRepo()
	svc := NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            4, // keep hashing fast in tests
	}, AuthDependencies{
		UserRepo:      users,
		BlacklistRepo: blacklist,
		StatsRepo:     &fakeStatsRepo{},
	})
	return svc, users, blacklist
}

func TestRegisterCreatesCitizenAndToken(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	user, token, err := svc.Register(context.Background(), "Fatima@Example.MA", "secret123", "Fatima")
	require.NoError(t, err)

	assert.Equal(t, "fatima@example.ma", user.Email)
	assert.Equal(t, domain.RoleCitizen, user.Role)
	assert.Equal(t, 0, user.Points)
	assert.True(t, user.Active)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.NotEmpty(t, token)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, _, err := svc.Register(context.Background(), "a@b.ma", "secret123", "Amina")
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), "A@B.MA", "secret123", "Amina")
	var domainErr *util.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "Un compte avec cet email existe déjà", domainErr.Message)
}

func TestLoginRejectsWrongPasswordWithGenericMessage(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	_, _, err := svc.Register(context.Background(), "a@b.ma", "secret123", "Amina")
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "a@b.ma", "wrong")
	var domainErr *util.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 401, domainErr.HTTPStatus)
	assert.Equal(t, "Email ou mot de passe incorrect", domainErr.Message)

	// Unknown accounts get the same message so emails cannot be probed.
	_, _, err = svc.Login(context.Background(), "nobody@b.ma", "secret123")
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "Email ou mot de passe incorrect", domainErr.Message)
}

func TestLoginRejectsDeactivatedAccount(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	user, _, err := svc.Register(context.Background(), "a@b.ma", "secret123", "Amina")
	require.NoError(t, err)
	users.byID[user.ID].Active = false

	_, _, err = svc.Login(context.Background(), "a@b.ma", "secret123")
	var domainErr *util.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "Compte désactivé. Contactez l'administration", domainErr.Message)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	_, token, err := svc.Register(context.Background(), "a@b.ma", "secret123", "Amina")
	require.NoError(t, err)

	revoked, err := svc.IsRevoked(context.Background(), token)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, svc.Logout(context.Background(), token))

	revoked, err = svc.IsRevoked(context.Background(), token)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestChangePasswordVerifiesCurrent(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	user, _, err := svc.Register(context.Background(), "a@b.ma", "secret123", "Amina")
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), user.ID, "wrong", "newsecret")
	var domainErr *util.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "Mot de passe actuel incorrect", domainErr.Message)

	require.NoError(t, svc.ChangePassword(context.Background(), user.ID, "secret123", "newsecret"))
	_, _, err = svc.Login(context.Background(), "a@b.ma", "newsecret")
	require.NoError(t, err)
}

func TestUpdateProfileValidatesName(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	user, _, err := svc.Register(context.Background(), "a@b.ma", "secret123", "Amina")
	require.NoError(t, err)

	_, err = svc.UpdateProfile(context.Background(), user.ID, " A ")
	var domainErr *util.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 400, domainErr.HTTPStatus)

	updated, err := svc.UpdateProfile(context.Background(), user.ID, "Amina Z.")
	require.NoError(t, err)
	assert.Equal(t, "Amina Z.", updated.Name)
}
