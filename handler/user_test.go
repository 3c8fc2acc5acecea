package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/icrowley/fake"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estatedesk/model"
)

func signup(t *testing.T, env *testEnv, email, password string) *httptest.ResponseRecorder {
	return env.json(t, http.MethodPost, "/api/signup", map[string]string{"email": email, "password": password})
}

func login(t *testing.T, env *testEnv, email, password string) *httptest.ResponseRecorder {
	return env.json(t, http.MethodPost, "/api/login", map[string]string{"email": email, "password": password})
}

func TestSignupAndLogin(t *testing.T) {
	env := newTestEnv(t, 0)
	email := fake.EmailAddress()

	rec := signup(t, env, email, "password123")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode[model.SignupResponse](t, rec).ID
	assert.NotEmpty(t, id)

	rec = login(t, env, email, "password123")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[model.UserLoginResponse](t, rec)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, id, resp.User.ID)
	assert.Equal(t, model.RoleMember, resp.User.Role)

	claims := &model.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(resp.Token, claims, func(token *jwt.Token) (interface{}, error) {
		return env.h.JWTSecret, nil
	})
	require.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, id, claims.Subject)
	assert.Equal(t, model.RoleMember, claims.Roles)
}

func TestSignupDuplicateEmail(t *testing.T) {
	env := newTestEnv(t, 0)
	email := fake.EmailAddress()

	require.Equal(t, http.StatusCreated, signup(t, env, email, "password123").Code)

	rec := signup(t, env, email, "password456")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSignupInvalidEmail(t *testing.T) {
	env := newTestEnv(t, 0)

	rec := signup(t, env, "not-an-email", "password123")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginWithIncorrectCredentials(t *testing.T) {
	env := newTestEnv(t, 0)
	email := fake.EmailAddress()

	require.Equal(t, http.StatusCreated, signup(t, env, email, "password123").Code)

	assert.Equal(t, http.StatusUnauthorized, login(t, env, email, "wrong-password").Code)
	assert.Equal(t, http.StatusUnauthorized, login(t, env, fake.EmailAddress(), "password123").Code)
}

func TestSeedAdmin(t *testing.T) {
	env := newTestEnv(t, 0)

	require.NoError(t, SeedAdmin(env.h.DB, "Admin@Example.com", "secret-pass"))
	// Idempotent
	require.NoError(t, SeedAdmin(env.h.DB, "admin@example.com", "secret-pass"))

	rec := login(t, env, "admin@example.com", "secret-pass")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, model.RoleAdmin, decode[model.UserLoginResponse](t, rec).User.Role)

	// Promotes an existing member
	email := fake.EmailAddress()
	require.Equal(t, http.StatusCreated, signup(t, env, email, "password123").Code)
	require.NoError(t, SeedAdmin(env.h.DB, email, "ignored"))

	rec = login(t, env, email, "password123")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.RoleAdmin, decode[model.UserLoginResponse](t, rec).User.Role)
}

func TestUserFromContext(t *testing.T) {
	u := model.User{ID: "3b1f4a0e-0000-4000-8000-000000000001", Roles: []string{"member", "admin"}}
	signed, err := signToken(u, []byte("secret"))
	require.NoError(t, err)

	claims := &model.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(signed, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)

	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	_, err = UserFromContext(c)
	assert.Error(t, err)

	c.Set(TokenContextKey, token)
	authUser, err := UserFromContext(c)
	require.NoError(t, err)
	assert.Equal(t, u.ID, authUser.ID)
	assert.Equal(t, []string{"member", "admin"}, authUser.Roles)
	assert.True(t, authUser.IsAdmin)
}
