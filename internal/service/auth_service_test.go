package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Studio-Zurich/fix-app-sub000/internal/pkg/apperror"
)

const testPassword = "Werkhof2024Zug"

func newTestAuth(t *testing.T) (*AuthService, *memoryAdmins) {
	t.Helper()
	repo := newMemoryAdmins()
	svc := NewAuthService(repo, NewTokenManager("test-secret-test-secret-test-secret", time.Hour))
	_, err := svc.CreateAdmin(context.Background(), CreateAdminInput{
		Email:       " Ops@Gemeinde.example ",
		Password:    testPassword,
		DisplayName: "Werkhof",
	})
	require.NoError(t, err)
	return svc, repo
}

func TestAuthService_LoginAndAuthenticate(t *testing.T) {
	svc, repo := newTestAuth(t)

	res, err := svc.Login(context.Background(), "OPS@gemeinde.example", testPassword)
	require.NoError(t, err)
	assert.Equal(t, "ops@gemeinde.example", res.Admin.Email)
	assert.NotEmpty(t, res.Token.Token)
	assert.Equal(t, 1, repo.touched)

	admin, err := svc.Authenticate(context.Background(), res.Token.Token)
	require.NoError(t, err)
	assert.Equal(t, res.Admin.ID, admin.ID)
}

func TestAuthService_LoginRejectsWrongPassword(t *testing.T) {
	svc, _ := newTestAuth(t)

	_, err := svc.Login(context.Background(), "ops@gemeinde.example", "Wrong-password-1")
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody@gemeinde.example", testPassword)
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}

func TestAuthService_LoginRejectsInactiveAdmin(t *testing.T) {
	svc, repo := newTestAuth(t)
	for _, a := range repo.byID {
		a.IsActive = false
	}

	_, err := svc.Login(context.Background(), "ops@gemeinde.example", testPassword)
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}

func TestAuthService_CreateAdminValidation(t *testing.T) {
	svc, _ := newTestAuth(t)

	_, err := svc.CreateAdmin(context.Background(), CreateAdminInput{Email: "ops@gemeinde.example", Password: testPassword})
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeConflict, appErr.Code)

	_, err = svc.CreateAdmin(context.Background(), CreateAdminInput{Email: "new@gemeinde.example", Password: "short"})
	assert.True(t, apperror.IsValidation(err))
}

func TestAuthService_AuthenticateRejectsForeignToken(t *testing.T) {
	svc, repo := newTestAuth(t)
	other := NewTokenManager("another-secret-another-secret-1234", time.Hour)

	var foreign *AccessToken
	for _, a := range repo.byID {
		tok, err := other.Generate(a)
		require.NoError(t, err)
		foreign = tok
	}
	require.NotNil(t, foreign)

	_, err := svc.Authenticate(context.Background(), foreign.Token)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestTokenManager_Expired(t *testing.T) {
	tm := NewTokenManager("test-secret-test-secret-test-secret", time.Minute)
	tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	_, repo := newTestAuth(t)
	for _, a := range repo.byID {
		tok, err := tm.Generate(a)
		require.NoError(t, err)
		_, _, err = tm.ParseAccess(tok.Token)
		assert.Error(t, err)
	}
}
