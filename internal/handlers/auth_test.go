package handlers

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jowam/internal/middleware"
	"jowam/internal/models"
	"jowam/internal/session"
)

func newAuthFixture(user *models.User) (*Auth, *fakeUsers, *fakeSessions) {
	users := newFakeUsers(user)
	sessions := &fakeSessions{}
	return NewAuth(sessions, users, "Jowam Coffee"), users, sessions
}

func staffUser() *models.User {
	return &models.User{
		ID:           uuid.New(),
		Email:        "editor@jowamcoffee.com",
		PasswordHash: "s3cret-passphrase",
		DisplayName:  "Editor",
		Role:         models.RoleEditor,
	}
}

func sessionFor(r *http.Request, u *models.User) *http.Request {
	sess := &session.Data{UserID: u.ID, Email: u.Email, Role: u.Role}
	return r.WithContext(context.WithValue(r.Context(), middleware.SessionKey, sess))
}

func TestLogin(t *testing.T) {
	u := staffUser()
	auth, _, sessions := newAuthFixture(u)

	rr := httptest.NewRecorder()
	auth.Login(rr, jsonRequest(t, http.MethodPost, "/login", map[string]string{
		"email": " Editor@JowamCoffee.com ", "password": "s3cret-passphrase",
	}))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "2fa_setup", decodeBody[map[string]any](t, rr)["next"])
	require.NotNil(t, sessions.created)
	assert.False(t, sessions.created.TwoFADone)
	assert.Equal(t, models.RoleEditor, sessions.created.Role)
	assert.NotContains(t, rr.Body.String(), "s3cret", "hash must not be serialized")
}

func TestLoginFormEncoded(t *testing.T) {
	u := staffUser()
	u.TOTPEnabled = true
	auth, _, _ := newAuthFixture(u)

	form := url.Values{"email": {u.Email}, "password": {"s3cret-passphrase"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	auth.Login(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "2fa_verify", decodeBody[map[string]any](t, rr)["next"])
}

func TestLoginFailures(t *testing.T) {
	u := staffUser()
	auth, users, sessions := newAuthFixture(u)

	for _, body := range []map[string]string{
		{"email": u.Email, "password": "wrong"},
		{"email": "nobody@jowamcoffee.com", "password": "s3cret-passphrase"},
	} {
		rr := httptest.NewRecorder()
		auth.Login(rr, jsonRequest(t, http.MethodPost, "/login", body))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	}
	assert.Nil(t, sessions.created)

	rr := httptest.NewRecorder()
	auth.Login(rr, jsonRequest(t, http.MethodPost, "/login", map[string]string{"email": "not-an-email", "password": "x"}))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	users.findErr = errConnRefused
	rr = httptest.NewRecorder()
	auth.Login(rr, jsonRequest(t, http.MethodPost, "/login", map[string]string{"email": u.Email, "password": "x"}))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestTwoFAEnrollment(t *testing.T) {
	u := staffUser()
	auth, users, sessions := newAuthFixture(u)

	rr := httptest.NewRecorder()
	auth.TwoFASetup(rr, sessionFor(httptest.NewRequest(http.MethodGet, "/2fa/setup", nil), u))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	setup := decodeBody[map[string]string](t, rr)
	require.NotEmpty(t, setup["secret"])
	png, err := base64.StdEncoding.DecodeString(setup["qr_code"])
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", string(png[:4]))
	assert.Contains(t, setup["otpauth_url"], "issuer=Jowam")

	rr = httptest.NewRecorder()
	auth.TwoFAVerify(rr, sessionFor(jsonRequest(t, http.MethodPost, "/2fa/verify", map[string]string{"code": "000000"}), u))
	if rr.Code != http.StatusOK { // 000000 is valid once in a million windows
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	}

	code, err := totp.GenerateCode(setup["secret"], time.Now())
	require.NoError(t, err)
	rr = httptest.NewRecorder()
	auth.TwoFAVerify(rr, sessionFor(jsonRequest(t, http.MethodPost, "/2fa/verify", map[string]string{"code": code}), u))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	stored, _ := users.FindByID(t.Context(), u.ID)
	assert.True(t, stored.TOTPEnabled)
	require.NotNil(t, sessions.updated)
	assert.True(t, sessions.updated.TwoFADone)

	rr = httptest.NewRecorder()
	auth.TwoFASetup(rr, sessionFor(httptest.NewRequest(http.MethodGet, "/2fa/setup", nil), u))
	assert.Equal(t, http.StatusConflict, rr.Code, "enrolled users cannot re-key")
}

func TestTwoFAVerifyWithoutSecret(t *testing.T) {
	u := staffUser()
	auth, _, _ := newAuthFixture(u)

	rr := httptest.NewRecorder()
	auth.TwoFAVerify(rr, sessionFor(jsonRequest(t, http.MethodPost, "/2fa/verify", map[string]string{"code": "123456"}), u))
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = httptest.NewRecorder()
	auth.TwoFAVerify(rr, sessionFor(jsonRequest(t, http.MethodPost, "/2fa/verify", map[string]string{"code": "12ab"}), u))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestLogout(t *testing.T) {
	u := staffUser()
	auth, _, sessions := newAuthFixture(u)

	rr := httptest.NewRecorder()
	auth.Logout(rr, sessionFor(httptest.NewRequest(http.MethodPost, "/logout", nil), u))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.True(t, sessions.destroyed)
}
