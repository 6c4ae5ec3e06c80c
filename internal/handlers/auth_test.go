package handlers

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewblog/internal/models"
	"reviewblog/internal/render"
	"reviewblog/internal/session"
)

func loginForm(email, password string) url.Values {
	return url.Values{"email": {email}, "password": {password}}
}

// enableTOTP turns on 2FA for u and returns its secret.
func (e *testEnv) enableTOTP(t *testing.T, u *models.User) string {
	t.Helper()
	ctx := context.Background()
	enrol, err := e.users.BeginTOTP(ctx, u.ID)
	require.NoError(t, err)
	code, err := totp.GenerateCode(enrol.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, e.users.EnableTOTP(ctx, u.ID, code))
	return enrol.Secret
}

// sessionData loads the session behind cookie.
func (e *testEnv) sessionData(t *testing.T, cookie *http.Cookie) *session.Data {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	data, err := e.sessions.Get(context.Background(), req)
	require.NoError(t, err)
	return data
}

func TestLoginPage(t *testing.T) {
	env := newTestEnv(t)

	rr := env.get("/login")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `action="/login"`)

	signedIn := env.get("/login", env.login(t, env.signup(t, "alice")))
	assert.Equal(t, http.StatusSeeOther, signedIn.Code)
	assert.Equal(t, "/home", signedIn.Header().Get("Location"))
}

func TestLoginSubmit(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "alice")

	t.Run("wrong password", func(t *testing.T) {
		rr := env.postForm("/login", loginForm("alice@example.com", "wrong-password"))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "Invalid email or password.")
		assert.Contains(t, rr.Body.String(), `value="alice@example.com"`)
	})

	t.Run("unknown email", func(t *testing.T) {
		rr := env.postForm("/login", loginForm("nobody@example.com", "password123"))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("success without 2FA", func(t *testing.T) {
		rr := env.postForm("/login", loginForm("Alice@Example.com", "password123"))
		require.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/home", rr.Header().Get("Location"))

		data := env.sessionData(t, findCookie(t, rr, session.CookieName))
		require.NotNil(t, data)
		assert.Equal(t, "alice", data.Nickname)
		assert.True(t, data.TwoFADone)
	})
}

func TestLoginWithTwoFA(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")
	secret := env.enableTOTP(t, alice)

	rr := env.postForm("/login", loginForm("alice@example.com", "password123"))
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login/2fa", rr.Header().Get("Location"))
	cookie := findCookie(t, rr, session.CookieName)
	assert.False(t, env.sessionData(t, cookie).TwoFADone)

	page := env.get("/login/2fa", cookie)
	require.Equal(t, http.StatusOK, page.Code)
	assert.NotContains(t, page.Body.String(), "Log out", "pending session is not shown as signed in")

	bad := env.postForm("/login/2fa", url.Values{"code": {"000000"}}, cookie)
	assert.Equal(t, http.StatusUnauthorized, bad.Code)
	assert.Contains(t, bad.Body.String(), "Invalid code.")

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	ok := env.postForm("/login/2fa", url.Values{"code": {code}}, cookie)
	require.Equal(t, http.StatusSeeOther, ok.Code)
	assert.Equal(t, "/home", ok.Header().Get("Location"))
	assert.True(t, env.sessionData(t, cookie).TwoFADone)
}

func TestTwoFAVerifyWithoutSession(t *testing.T) {
	env := newTestEnv(t)

	rr := env.get("/login/2fa")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
}

func TestTwoFAVerifyDeletedUser(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.sessionCookie(t, &models.User{ID: 999, Email: "gone@example.com", Nickname: "gone"}, false)

	rr := env.postForm("/login/2fa", url.Values{"code": {"123456"}}, cookie)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
	assert.Nil(t, env.sessionData(t, cookie), "session should be destroyed")
}

func TestSignup(t *testing.T) {
	env := newTestEnv(t)

	page := env.get("/signup")
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), `action="/user"`)

	form := url.Values{"email": {"carol@example.com"}, "nickname": {"carol"}, "password": {"password123"}}
	rr := env.postForm("/user", form)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
	findCookie(t, rr, render.FlashCookie)

	u, err := env.users.FindByNickname(context.Background(), "carol")
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", u.Email)

	dup := env.postForm("/user", form)
	assert.Equal(t, http.StatusConflict, dup.Code)
	assert.Contains(t, dup.Body.String(), "already taken")
}

func TestSignupInvalid(t *testing.T) {
	env := newTestEnv(t)

	rr := env.postForm("/user", url.Values{"email": {"dave@example.com"}, "nickname": {"dave"}, "password": {"short"}})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "at least 8 characters")
	assert.Contains(t, rr.Body.String(), `value="dave"`)
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, env.signup(t, "alice"))

	rr := env.postForm("/logout", url.Values{}, cookie)

	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/home", rr.Header().Get("Location"))
	assert.Nil(t, env.sessionData(t, cookie))
}

func TestTwoFASetup(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice")
	cookie := env.login(t, alice)

	page := env.get("/account/2fa", cookie)
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), `src="data:image/png;base64,`)

	u, err := env.users.FindByID(context.Background(), alice.ID)
	require.NoError(t, err)
	require.NotNil(t, u.TOTPSecret)
	assert.False(t, u.TOTPEnabled)
	assert.Contains(t, page.Body.String(), *u.TOTPSecret)

	bad := env.postForm("/account/2fa", url.Values{"code": {"000000"}}, cookie)
	assert.Equal(t, http.StatusUnprocessableEntity, bad.Code)
	assert.Contains(t, bad.Body.String(), *u.TOTPSecret, "the pending secret is shown again")

	code, err := totp.GenerateCode(*u.TOTPSecret, time.Now())
	require.NoError(t, err)
	ok := env.postForm("/account/2fa", url.Values{"code": {code}}, cookie)
	require.Equal(t, http.StatusSeeOther, ok.Code)
	assert.Equal(t, "/account/2fa", ok.Header().Get("Location"))

	u, err = env.users.FindByID(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.True(t, u.TOTPEnabled)

	enabled := env.get("/account/2fa", cookie)
	assert.Contains(t, enabled.Body.String(), "is enabled")
}
