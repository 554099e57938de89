package service

import (
	"testing"
	"time"

	"khmerlearn_backend/internal/config"
	"khmerlearn_backend/internal/model"
	"khmerlearn_backend/internal/repository"
	"khmerlearn_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	env := newTestEnv(t)
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret-for-unit-tests-only!"
	cfg.JWT.ExpireTime = time.Hour
	return NewAuthService(repository.NewUserRepository(env.db), cfg)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	auth := newAuthService(t)

	user := &model.User{Name: "Dara", Email: "dara@example.com", Password: "secret123", Role: model.Student}
	require.NoError(t, auth.Register(user))
	assert.NotEqual(t, "secret123", user.Password)

	dup := &model.User{Name: "Dara Again", Email: "dara@example.com", Password: "other", Role: model.Student}
	assert.Equal(t, util.ErrEmailRegistered, auth.Register(dup))
}

func TestLogin(t *testing.T) {
	auth := newAuthService(t)

	user := &model.User{Name: "Dara", Email: "dara@example.com", Password: "secret123", Role: model.Student}
	require.NoError(t, auth.Register(user))

	_, err := auth.Login("dara@example.com", "wrong")
	assert.Equal(t, util.ErrInvalidCredentials, err)

	_, err = auth.Login("nobody@example.com", "secret123")
	assert.Equal(t, util.ErrInvalidCredentials, err)

	token, err := auth.Login("dara@example.com", "secret123")
	require.NoError(t, err)

	claims, err := util.ParseJWT(token, auth.Cfg.JWT.Secret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, model.Student, claims.Role)
}
