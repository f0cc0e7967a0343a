package auth

import (
	"context"
	"testing"
	"time"

	pkgauth "github.com/developersvyapar-netizen/vyaapar-backend/pkg/auth"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/auth/session"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/config"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/db/models"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/enums"
	pkgerrors "github.com/developersvyapar-netizen/vyaapar-backend/pkg/errors"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/security"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubUserStore struct {
	users      map[string]*models.User
	lastLogins map[uuid.UUID]time.Time
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{
		users:      map[string]*models.User{},
		lastLogins: map[uuid.UUID]time.Time{},
	}
}

func (s *stubUserStore) FindByLoginID(_ context.Context, loginID string) (*models.User, error) {
	if user, ok := s.users[loginID]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserStore) FindActiveByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	for _, user := range s.users {
		if user.ID == id && user.IsActive {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserStore) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	s.lastLogins[id] = at
	return nil
}

func (s *stubUserStore) add(t *testing.T, loginID, password string, role enums.UserRole, active bool) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
	require.NoError(t, err)
	user := &models.User{
		ID:           uuid.New(),
		LoginID:      loginID,
		Name:         loginID,
		PasswordHash: hash,
		Role:         role,
		IsActive:     active,
	}
	s.users[loginID] = user
	return user
}

// stubSessions keeps refresh tokens keyed by access id, mirroring the redis
// manager's rotate-once semantics.
type stubSessions struct {
	refreshByID map[string]string
	revoked     []string
	nextN       int
}

func newStubSessions() *stubSessions {
	return &stubSessions{refreshByID: map[string]string{}}
}

func (s *stubSessions) Generate(_ context.Context, accessID string) (string, error) {
	s.nextN++
	token := "refresh-" + accessID
	s.refreshByID[accessID] = token
	return token, nil
}

func (s *stubSessions) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	current, ok := s.refreshByID[oldAccessID]
	if !ok || current != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(s.refreshByID, oldAccessID)
	newID := session.NewAccessID()
	token := "refresh-" + newID
	s.refreshByID[newID] = token
	return newID, token, nil
}

func (s *stubSessions) Revoke(_ context.Context, accessID string) error {
	delete(s.refreshByID, accessID)
	s.revoked = append(s.revoked, accessID)
	return nil
}

type stubLimiter struct {
	allow  bool
	scopes []string
}

func (s *stubLimiter) FixedWindowAllow(_ context.Context, scope string, _ int64, _ time.Duration) (bool, int64, error) {
	s.scopes = append(s.scopes, scope)
	return s.allow, 1, nil
}

type authFixture struct {
	svc      Service
	store    *stubUserStore
	sessions *stubSessions
	limiter  *stubLimiter
	jwtCfg   config.JWTConfig
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	store := newStubUserStore()
	sessions := newStubSessions()
	limiter := &stubLimiter{allow: true}
	jwtCfg := config.JWTConfig{
		Secret:            "test-secret-test-secret-test-secret",
		Issuer:            "vyaapar-test",
		ExpirationMinutes: 15,
	}
	limitCfg := config.AuthRateLimitConfig{
		LoginWindow:       time.Minute,
		LoginAccountLimit: 5,
		LoginIPLimit:      20,
	}

	svc, err := NewService(store, sessions, limiter, jwtCfg, limitCfg, nil)
	require.NoError(t, err)
	return &authFixture{svc: svc, store: store, sessions: sessions, limiter: limiter, jwtCfg: jwtCfg}
}

func TestLogin(t *testing.T) {
	t.Parallel()

	fx := newAuthFixture(t)
	user := fx.store.add(t, "sp-asha", "s3cret-password", enums.UserRoleSalesperson, true)

	pair, err := fx.svc.Login(context.Background(), LoginInput{
		LoginID:  "sp-asha",
		Password: "s3cret-password",
		ClientIP: "203.0.113.9",
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, pair.User.ID)
	assert.Equal(t, 15*60, pair.ExpiresIn)
	assert.NotEmpty(t, pair.RefreshToken)

	claims, err := pkgauth.ParseAccessToken(fx.jwtCfg, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, enums.UserRoleSalesperson, claims.Role)

	// The session is keyed by the token's jti.
	assert.Equal(t, pair.RefreshToken, fx.sessions.refreshByID[claims.ID])
	assert.Contains(t, fx.store.lastLogins, user.ID)
	assert.Equal(t, []string{"login:account:sp-asha", "login:ip:203.0.113.9"}, fx.limiter.scopes)
}

func TestLoginWrongPassword(t *testing.T) {
	t.Parallel()

	fx := newAuthFixture(t)
	fx.store.add(t, "sp-asha", "s3cret-password", enums.UserRoleSalesperson, true)

	_, err := fx.svc.Login(context.Background(), LoginInput{LoginID: "sp-asha", Password: "wrong"})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeUnauthorized, coded.Code())
	assert.Equal(t, "invalid credentials", coded.Message())
}

func TestLoginUnknownUser(t *testing.T) {
	t.Parallel()

	fx := newAuthFixture(t)
	_, err := fx.svc.Login(context.Background(), LoginInput{LoginID: "nobody", Password: "whatever"})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeUnauthorized, coded.Code())
	// Unknown accounts and bad passwords read identically to the caller.
	assert.Equal(t, "invalid credentials", coded.Message())
}

func TestLoginDeactivatedUser(t *testing.T) {
	t.Parallel()

	fx := newAuthFixture(t)
	fx.store.add(t, "sp-gone", "s3cret-password", enums.UserRoleSalesperson, false)

	_, err := fx.svc.Login(context.Background(), LoginInput{LoginID: "sp-gone", Password: "s3cret-password"})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeUnauthorized, coded.Code())
}

func TestLoginMissingCredentials(t *testing.T) {
	t.Parallel()

	fx := newAuthFixture(t)
	_, err := fx.svc.Login(context.Background(), LoginInput{LoginID: "  ", Password: ""})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
}

func TestLoginRateLimited(t *testing.T) {
	t.Parallel()

	fx := newAuthFixture(t)
	fx.store.add(t, "sp-asha", "s3cret-password", enums.UserRoleSalesperson, true)
	fx.limiter.allow = false

	_, err := fx.svc.Login(context.Background(), LoginInput{LoginID: "sp-asha", Password: "s3cret-password"})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeRateLimit, coded.Code())
}

func TestRefreshRotatesSession(t *testing.T) {
	t.Parallel()

	fx := newAuthFixture(t)
	user := fx.store.add(t, "sp-asha", "s3cret-password", enums.UserRoleSalesperson, true)

	pair, err := fx.svc.Login(context.Background(), LoginInput{LoginID: "sp-asha", Password: "s3cret-password"})
	require.NoError(t, err)

	rotated, err := fx.svc.Refresh(context.Background(), RefreshInput{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	claims, err := pkgauth.ParseAccessToken(fx.jwtCfg, rotated.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	// The old refresh token is burned by the rotation.
	_, err = fx.svc.Refresh(context.Background(), RefreshInput{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeUnauthorized, coded.Code())
	assert.Equal(t, "invalid refresh token", coded.Message())
}

func TestRefreshRejectsDeactivatedUser(t *testing.T) {
	t.Parallel()

	fx := newAuthFixture(t)
	user := fx.store.add(t, "sp-asha", "s3cret-password", enums.UserRoleSalesperson, true)

	pair, err := fx.svc.Login(context.Background(), LoginInput{LoginID: "sp-asha", Password: "s3cret-password"})
	require.NoError(t, err)

	user.IsActive = false
	_, err = fx.svc.Refresh(context.Background(), RefreshInput{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeUnauthorized, coded.Code())
	assert.Equal(t, "account no longer active", coded.Message())
}

func TestRefreshRejectsGarbageAccessToken(t *testing.T) {
	t.Parallel()

	fx := newAuthFixture(t)
	_, err := fx.svc.Refresh(context.Background(), RefreshInput{
		AccessToken:  "not-a-jwt",
		RefreshToken: "anything",
	})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeUnauthorized, coded.Code())
}

func TestLogoutRevokesSession(t *testing.T) {
	t.Parallel()

	fx := newAuthFixture(t)
	fx.store.add(t, "sp-asha", "s3cret-password", enums.UserRoleSalesperson, true)

	pair, err := fx.svc.Login(context.Background(), LoginInput{LoginID: "sp-asha", Password: "s3cret-password"})
	require.NoError(t, err)

	claims, err := pkgauth.ParseAccessToken(fx.jwtCfg, pair.AccessToken)
	require.NoError(t, err)

	require.NoError(t, fx.svc.Logout(context.Background(), claims.ID))
	assert.Equal(t, []string{claims.ID}, fx.sessions.revoked)

	err = fx.svc.Logout(context.Background(), " ")
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
}
