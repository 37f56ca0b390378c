package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authsvc "staybook/internal/app/services/auth"
	domainauth "staybook/internal/domain/auth"
	domainuser "staybook/internal/domain/user"
	"staybook/internal/infra/security"
	"staybook/internal/infra/storage/memory"
)

func newService() *authsvc.Service {
	return &authsvc.Service{
		UoWFactory: memory.NewFactory(memory.NewStore()),
		Sessions:   memory.NewSessionStore(),
		Hasher:     security.BcryptHasher{Cost: 4},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: time.Hour,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	user, err := svc.Register(ctx, authsvc.RegisterParams{
		Email:    "Guest@Example.com",
		Name:     "Abebe Bikila",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "guest@example.com", user.Email, "emails are normalized")

	result, err := svc.Login(ctx, "guest@example.com", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, user.ID, result.User.ID)

	resolved, err := svc.ResolveToken(ctx, domainauth.Token(result.Token))
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.Register(ctx, authsvc.RegisterParams{Email: "a@b.co", Name: "A", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, authsvc.RegisterParams{Email: "A@B.CO", Name: "B", Password: "password2"})
	assert.ErrorIs(t, err, domainuser.ErrEmailAlreadyUsed)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := newService()
	_, err := svc.Register(context.Background(), authsvc.RegisterParams{Email: "a@b.co", Name: "A", Password: "short"})
	assert.ErrorIs(t, err, authsvc.ErrWeakPassword)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.Register(ctx, authsvc.RegisterParams{Email: "a@b.co", Name: "A", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "a@b.co", "password2")
	assert.ErrorIs(t, err, authsvc.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@b.co", "password1")
	assert.ErrorIs(t, err, authsvc.ErrInvalidCredentials)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.Register(ctx, authsvc.RegisterParams{Email: "a@b.co", Name: "A", Password: "password1"})
	require.NoError(t, err)
	result, err := svc.Login(ctx, "a@b.co", "password1")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, domainauth.Token(result.Token)))
	_, err = svc.ResolveToken(ctx, domainauth.Token(result.Token))
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}
