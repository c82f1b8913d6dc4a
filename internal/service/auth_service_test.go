// internal/service/auth_service_test.go
package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sanbara234/fiadoapp/internal/models"
	"github.com/sanbara234/fiadoapp/internal/repository"
	"github.com/sanbara234/fiadoapp/pkg/database"
	"github.com/sanbara234/fiadoapp/pkg/password"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	db, err := database.NewSQLite(":memory:")
	require.NoError(t, err)

	store := repository.NewSQLiteStore(db)
	require.NoError(t, store.InitSchema(context.Background()))
	t.Cleanup(func() { store.Close() })

	return NewAuthService(store, password.NewBcryptHasher(bcrypt.MinCost), zap.NewNop())
}

func register(t *testing.T, auth *AuthService, email string) *models.AuthResponse {
	t.Helper()
	resp, err := auth.Register(context.Background(), &models.RegisterRequest{
		Email:        email,
		Password:     "secret123",
		Name:         "Ana",
		BusinessName: "Kiosco",
	})
	require.NoError(t, err)
	return resp
}

func TestRegisterCreatesSessionWithFirstBusiness(t *testing.T) {
	auth := newAuthService(t)
	ctx := context.Background()

	resp := register(t, auth, "ana@example.com")
	assert.NotEmpty(t, resp.Token)
	require.NotNil(t, resp.BusinessID)
	assert.Equal(t, "Kiosco", resp.BusinessName)
	assert.Equal(t, "Ana", resp.UserName)

	session, err := auth.ResolveSession(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "Ana", session.UserName)
	require.NotNil(t, session.BusinessID)
	assert.Equal(t, *resp.BusinessID, *session.BusinessID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	auth := newAuthService(t)

	register(t, auth, "ana@example.com")
	_, err := auth.Register(context.Background(), &models.RegisterRequest{
		Email:        "ana@example.com",
		Password:     "other",
		Name:         "Clone",
		BusinessName: "Other",
	})
	assert.ErrorIs(t, err, models.ErrDuplicateEmail)
}

func TestLoginKeepsPriorSessions(t *testing.T) {
	auth := newAuthService(t)
	ctx := context.Background()

	first := register(t, auth, "ana@example.com")

	second, err := auth.Login(ctx, &models.LoginRequest{
		Email:    "ana@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)
	require.NotNil(t, second.BusinessID)
	assert.Equal(t, *first.BusinessID, *second.BusinessID)

	// both sessions stay valid
	_, err = auth.ResolveSession(ctx, first.Token)
	assert.NoError(t, err)
	_, err = auth.ResolveSession(ctx, second.Token)
	assert.NoError(t, err)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	auth := newAuthService(t)
	ctx := context.Background()

	register(t, auth, "ana@example.com")

	_, err := auth.Login(ctx, &models.LoginRequest{Email: "ana@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = auth.Login(ctx, &models.LoginRequest{Email: "ghost@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestLogoutInvalidatesAllSessions(t *testing.T) {
	auth := newAuthService(t)
	ctx := context.Background()

	first := register(t, auth, "ana@example.com")
	second, err := auth.Login(ctx, &models.LoginRequest{Email: "ana@example.com", Password: "secret123"})
	require.NoError(t, err)

	session, err := auth.ResolveSession(ctx, first.Token)
	require.NoError(t, err)
	require.NoError(t, auth.Logout(ctx, session.UserID))

	_, err = auth.ResolveSession(ctx, first.Token)
	assert.ErrorIs(t, err, models.ErrInvalidSession)
	_, err = auth.ResolveSession(ctx, second.Token)
	assert.ErrorIs(t, err, models.ErrInvalidSession)
}

func TestResolveSessionErrors(t *testing.T) {
	auth := newAuthService(t)
	ctx := context.Background()

	_, err := auth.ResolveSession(ctx, "")
	assert.ErrorIs(t, err, models.ErrUnauthenticated)

	_, err = auth.ResolveSession(ctx, "unknown-token")
	assert.ErrorIs(t, err, models.ErrInvalidSession)
}

func TestSelectBusinessChecksOwnership(t *testing.T) {
	auth := newAuthService(t)
	ctx := context.Background()

	ana := register(t, auth, "ana@example.com")
	bob := register(t, auth, "bob@example.com")

	anaSession, err := auth.ResolveSession(ctx, ana.Token)
	require.NoError(t, err)

	// selecting a business owned by someone else reads as absent
	_, err = auth.SelectBusiness(ctx, anaSession, *bob.BusinessID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	// a second business of her own can be selected
	branch, err := auth.CreateBusiness(ctx, anaSession.UserID, "Branch")
	require.NoError(t, err)
	selected, err := auth.SelectBusiness(ctx, anaSession, branch.ID)
	require.NoError(t, err)
	assert.Equal(t, "Branch", selected.Name)

	session, err := auth.ResolveSession(ctx, ana.Token)
	require.NoError(t, err)
	require.NotNil(t, session.BusinessID)
	assert.Equal(t, branch.ID, *session.BusinessID)

	me, err := auth.Me(ctx, session)
	require.NoError(t, err)
	assert.Len(t, me.Businesses, 2)
}
