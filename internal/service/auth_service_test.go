package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dormi-app/dormi-api/internal/models"
	appErrors "github.com/dormi-app/dormi-api/pkg/errors"
)

type authStoreStub struct {
	users    map[string]*models.User
	emails   map[string]string
	profiles map[string]*models.Profile
	tokens   map[string]string
}

func newAuthStoreStub() *authStoreStub {
	return &authStoreStub{
		users:    map[string]*models.User{},
		emails:   map[string]string{},
		profiles: map[string]*models.Profile{},
		tokens:   map[string]string{},
	}
}

func (a *authStoreStub) seed(id, password string, role models.UserRole, email string) {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	a.users[id] = &models.User{ID: id, PasswordHash: string(hash), Role: role}
	a.emails[email] = id
	a.profiles[id] = &models.Profile{UserID: id, Role: role, FullName: "Seeded User", Email: email}
}

func (a *authStoreStub) Find(_ context.Context, id string) (*models.User, error) {
	return a.users[id], nil
}

func (a *authStoreStub) Profile(_ context.Context, id string) (*models.Profile, error) {
	return a.profiles[id], nil
}

func (a *authStoreStub) Register(_ context.Context, user *models.User, fullName, career, email string) error {
	a.users[user.ID] = user
	a.emails[email] = user.ID
	a.profiles[user.ID] = &models.Profile{UserID: user.ID, Role: user.Role, FullName: fullName, Email: email}
	return nil
}

func (a *authStoreStub) FindIDByEmail(_ context.Context, email string) (string, error) {
	return a.emails[email], nil
}

func (a *authStoreStub) UpdatePassword(_ context.Context, id, passwordHash string) error {
	user, ok := a.users[id]
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	user.PasswordHash = passwordHash
	return nil
}

func (a *authStoreStub) UpdateFCMToken(_ context.Context, id, token string) error {
	a.tokens[id] = token
	return nil
}

func testAuthService(store *authStoreStub) *AuthService {
	return NewAuthService(store, AuthConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "dormi-api"}, nil, nil)
}

func TestLoginIssuesValidToken(t *testing.T) {
	store := newAuthStoreStub()
	store.seed("S001", "hunter22", models.UserRoleStudent, "s001@example.edu")
	svc := testAuthService(store)

	resp, err := svc.Login(context.Background(), LoginRequest{UserID: "S001", Password: "hunter22"})

	require.NoError(t, err)
	require.NotNil(t, resp.Profile)
	assert.Equal(t, "S001", resp.Profile.UserID)

	claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "S001", claims.UserID)
	assert.Equal(t, models.UserRoleStudent, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	store := newAuthStoreStub()
	store.seed("S001", "hunter22", models.UserRoleStudent, "s001@example.edu")
	svc := testAuthService(store)

	_, err := svc.Login(context.Background(), LoginRequest{UserID: "S001", Password: "nope"})

	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestLoginUnknownUser(t *testing.T) {
	svc := testAuthService(newAuthStoreStub())

	_, err := svc.Login(context.Background(), LoginRequest{UserID: "GHOST", Password: "whatever"})

	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestRegisterHashesPassword(t *testing.T) {
	store := newAuthStoreStub()
	svc := testAuthService(store)

	user, err := svc.Register(context.Background(), RegisterRequest{
		UserID:   "S010",
		Password: "longenough",
		Role:     int(models.UserRoleStudent),
		FullName: "New Student",
		Email:    "s010@example.edu",
		Career:   "Theology",
	})

	require.NoError(t, err)
	assert.NotEqual(t, "longenough", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("longenough")))
}

func TestRegisterDuplicateUser(t *testing.T) {
	store := newAuthStoreStub()
	store.seed("S001", "hunter22", models.UserRoleStudent, "s001@example.edu")
	svc := testAuthService(store)

	_, err := svc.Register(context.Background(), RegisterRequest{
		UserID:   "S001",
		Password: "longenough",
		Role:     int(models.UserRoleStudent),
		FullName: "Duplicate",
		Email:    "dup@example.edu",
	})

	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestResetPasswordByEmail(t *testing.T) {
	store := newAuthStoreStub()
	store.seed("S001", "oldpassword", models.UserRoleStudent, "s001@example.edu")
	svc := testAuthService(store)

	err := svc.ResetPassword(context.Background(), ResetPasswordRequest{
		Email:       "s001@example.edu",
		NewPassword: "freshpassword",
	})

	require.NoError(t, err)
	_, err = svc.Login(context.Background(), LoginRequest{UserID: "S001", Password: "freshpassword"})
	assert.NoError(t, err)
}

func TestResetPasswordUnknownEmail(t *testing.T) {
	svc := testAuthService(newAuthStoreStub())

	err := svc.ResetPassword(context.Background(), ResetPasswordRequest{
		Email:       "nobody@example.edu",
		NewPassword: "freshpassword",
	})

	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	store := newAuthStoreStub()
	store.seed("S001", "hunter22", models.UserRoleStudent, "s001@example.edu")
	svc := testAuthService(store)

	resp, err := svc.Login(context.Background(), LoginRequest{UserID: "S001", Password: "hunter22"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.Token + "x")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestUpdateFCMToken(t *testing.T) {
	store := newAuthStoreStub()
	store.seed("S001", "hunter22", models.UserRoleStudent, "s001@example.edu")
	svc := testAuthService(store)

	require.NoError(t, svc.UpdateFCMToken(context.Background(), "S001", "device-token"))
	assert.Equal(t, "device-token", store.tokens["S001"])
}
