package service

import (
	"context"
	"testing"

	"naxospos/internal/config"
	"naxospos/internal/dto"
	"naxospos/internal/model"
	"naxospos/internal/repository"
	"naxospos/internal/testutil"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-at-least-32-characters!!"

func newAuthFixture(t *testing.T) (AuthService, model.User) {
	t.Helper()
	db := testutil.NewDB(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("naxos1234"), bcrypt.MinCost)
	require.NoError(t, err)
	user := testutil.SeedUser(t, db, "caja1", string(hash), model.RoleCashier)
	cfg := &config.Config{JWTSecret: testSecret, JWTExpirationHours: 8}
	return NewAuthService(repository.NewUserRepository(db), cfg), user
}

func TestLogin_IssuesSignedToken(t *testing.T) {
	svc, user := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "caja1", Password: "naxos1234"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.Equal(t, model.RoleCashier, resp.User.Role)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(resp.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "caja1", claims["username"])
	assert.Equal(t, model.RoleCashier, claims["role"])
	assert.EqualValues(t, user.ID, claims["user_id"])
}

func TestLogin_RejectsBadCredentials(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "caja1", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "nadie", Password: "naxos1234"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
