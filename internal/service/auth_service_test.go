package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/unilab/lab-reservation-api/internal/models"
	appErrors "github.com/unilab/lab-reservation-api/pkg/errors"
)

type stubUserStore struct {
	byUsername map[string]*models.User
	created    *models.User
}

func (s *stubUserStore) Create(_ context.Context, user *models.User) error {
	user.ID = "user-new"
	s.created = user
	return nil
}

func (s *stubUserStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	user, ok := s.byUsername[username]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (s *stubUserStore) ExistsByUsername(_ context.Context, username string) (bool, error) {
	_, ok := s.byUsername[username]
	return ok, nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "lab-reservation-api"}
}

func hashedUser(t *testing.T, username, password string, active bool) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:           "user-1",
		Username:     username,
		PasswordHash: string(hash),
		FullName:     "Alice Doe",
		Role:         models.RoleStudent,
		Active:       active,
	}
}

func TestAuthServiceLoginAndValidate(t *testing.T) {
	store := &stubUserStore{byUsername: map[string]*models.User{
		"alice": hashedUser(t, "alice", "s3cret-pass", true),
	}}
	svc := NewAuthService(store, nil, nil, testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "alice", Password: "s3cret-pass"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.Equal(t, int64(3600), resp.ExpiresIn)
	require.Equal(t, "alice", resp.User.Username)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, models.RoleStudent, claims.Role)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	store := &stubUserStore{byUsername: map[string]*models.User{
		"alice": hashedUser(t, "alice", "s3cret-pass", true),
	}}
	svc := NewAuthService(store, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "alice", Password: "wrong"})
	require.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "nobody", Password: "wrong"})
	require.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	store := &stubUserStore{byUsername: map[string]*models.User{
		"alice": hashedUser(t, "alice", "s3cret-pass", false),
	}}
	svc := NewAuthService(store, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "alice", Password: "s3cret-pass"})
	require.ErrorIs(t, err, appErrors.ErrInactiveAccount)
}

func TestAuthServiceRegister(t *testing.T) {
	store := &stubUserStore{byUsername: map[string]*models.User{}}
	svc := NewAuthService(store, nil, nil, testAuthConfig())

	user, err := svc.Register(context.Background(), models.RegisterRequest{
		Username: "bob",
		Password: "hunter22",
		FullName: "Bob Stone",
		Email:    "bob@example.edu",
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleStudent, user.Role)
	require.True(t, user.Active)
	require.NotEqual(t, "hunter22", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter22")))
}

func TestAuthServiceRegisterDuplicateUsername(t *testing.T) {
	store := &stubUserStore{byUsername: map[string]*models.User{
		"bob": hashedUser(t, "bob", "x", true),
	}}
	svc := NewAuthService(store, nil, nil, testAuthConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Username: "bob",
		Password: "hunter22",
		FullName: "Bob Stone",
		Email:    "bob@example.edu",
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrAlreadyExists.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService(&stubUserStore{}, nil, nil, testAuthConfig())
	_, err := svc.ValidateToken("not-a-jwt")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
