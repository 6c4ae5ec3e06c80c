package handlers

import (
	"encoding/base64"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"reviewblog/internal/metrics"
	"reviewblog/internal/middleware"
	"reviewblog/internal/models"
	"reviewblog/internal/render"
	"reviewblog/internal/service"
	"reviewblog/internal/session"
)

// Auth groups the login, signup and two-factor handlers.
type Auth struct {
	renderer *render.Renderer
	sessions *session.Store
	users    *service.UserService
}

// NewAuth creates a new Auth handler group.
func NewAuth(renderer *render.Renderer, sessions *session.Store, users *service.UserService) *Auth {
	return &Auth{
		renderer: renderer,
		sessions: sessions,
		users:    users,
	}
}

// LoginPage renders the login form.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	// Already signed in: nothing to do here.
	if middleware.AuthenticatedFromCtx(r.Context()) != nil {
		http.Redirect(w, r, "/home", http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "login", &render.PageData{
		Title: "Log in",
		Data:  map[string]any{"Email": ""},
	})
}

// LoginSubmit checks the credentials and starts a session. Users with 2FA
// enabled get a partial session and are sent to the code prompt.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")

	user, err := a.users.Authenticate(r.Context(), email, password)
	if err != nil {
		msg := "Invalid email or password."
		status := http.StatusUnauthorized
		if !errors.Is(err, service.ErrInvalidCredentials) {
			slog.Error("login lookup failed", "error", err)
			msg = "An unexpected error occurred."
			status = http.StatusInternalServerError
		}
		metrics.RecordLogin(metrics.LoginFailure)
		a.renderer.PageStatus(w, r, status, "login", &render.PageData{
			Title: "Log in",
			Data:  map[string]any{"Error": msg, "Email": email},
		})
		return
	}

	if err := a.startSession(w, r, user); err != nil {
		slog.Error("session create failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if user.Needs2FA() {
		metrics.RecordLogin(metrics.LoginPending)
		http.Redirect(w, r, "/login/2fa", http.StatusSeeOther)
		return
	}
	metrics.RecordLogin(metrics.LoginSuccess)
	http.Redirect(w, r, "/home", http.StatusSeeOther)
}

// startSession replaces any existing session with a fresh one for user.
func (a *Auth) startSession(w http.ResponseWriter, r *http.Request, user *models.User) error {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("stale session destroy failed", "error", err)
	}
	_, err := a.sessions.Create(r.Context(), w, &session.Data{
		UserID:    user.ID,
		Email:     user.Email,
		Nickname:  user.Nickname,
		TwoFADone: !user.Needs2FA(),
	})
	return err
}

// TwoFAVerifyPage renders the code prompt for a session still owing 2FA.
func (a *Auth) TwoFAVerifyPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if sess.TwoFADone {
		http.Redirect(w, r, "/home", http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "2fa_verify", &render.PageData{
		Title: "Two-factor authentication",
	})
}

// TwoFAVerifySubmit validates the TOTP code and completes the login.
func (a *Auth) TwoFAVerifySubmit(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if sess.TwoFADone {
		http.Redirect(w, r, "/home", http.StatusSeeOther)
		return
	}

	user, err := a.users.FindByID(r.Context(), sess.UserID)
	if errors.Is(err, service.ErrNotFound) {
		// The account went away mid-login.
		if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
			slog.Warn("session destroy failed", "error", err)
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err != nil {
		slog.Error("user lookup for 2fa failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if !a.users.VerifyTOTP(user, r.FormValue("code")) {
		metrics.RecordLogin(metrics.LoginFailure)
		a.renderer.PageStatus(w, r, http.StatusUnauthorized, "2fa_verify", &render.PageData{
			Title: "Two-factor authentication",
			Data:  map[string]any{"Error": "Invalid code. Please try again."},
		})
		return
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	metrics.RecordLogin(metrics.LoginSuccess)
	http.Redirect(w, r, "/home", http.StatusSeeOther)
}

// Logout destroys the session and returns to the article list.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	http.Redirect(w, r, "/home", http.StatusSeeOther)
}

// SignupPage renders the signup form.
func (a *Auth) SignupPage(w http.ResponseWriter, r *http.Request) {
	a.renderer.Page(w, r, "signup", &render.PageData{
		Title: "Sign up",
		Data:  map[string]any{"Email": "", "Nickname": ""},
	})
}

// SignupSubmit creates the account and sends the user to the login page.
func (a *Auth) SignupSubmit(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	nickname := r.FormValue("nickname")
	password := r.FormValue("password")

	fail := func(status int, msg string) {
		a.renderer.PageStatus(w, r, status, "signup", &render.PageData{
			Title: "Sign up",
			Data:  map[string]any{"Error": msg, "Email": email, "Nickname": nickname},
		})
	}

	if msg := validateSignup(email, nickname, password); msg != "" {
		fail(http.StatusBadRequest, msg)
		return
	}

	if _, err := a.users.Signup(r.Context(), email, nickname, password); err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateName):
			fail(http.StatusConflict, "That email or nickname is already taken.")
		case errors.Is(err, service.ErrInvalidInput):
			fail(http.StatusBadRequest, "Please check the form and try again.")
		default:
			slog.Error("signup failed", "error", err)
			fail(http.StatusInternalServerError, "An unexpected error occurred.")
		}
		return
	}

	render.SetFlash(w, render.FlashSuccess, "Account created. Please log in.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// TwoFASetupPage starts TOTP enrolment for the signed-in user, or reports
// that it is already enabled.
func (a *Auth) TwoFASetupPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.AuthenticatedFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	user, err := a.users.FindByID(r.Context(), sess.UserID)
	if err != nil {
		renderError(a.renderer, w, r, err)
		return
	}
	if user.TOTPEnabled {
		a.renderer.Page(w, r, "2fa_setup", &render.PageData{
			Title: "Two-factor authentication",
			Data:  map[string]any{"Enabled": true},
		})
		return
	}

	enrol, err := a.users.BeginTOTP(r.Context(), user.ID)
	if err != nil {
		renderError(a.renderer, w, r, err)
		return
	}
	a.renderSetup(w, r, http.StatusOK, enrol, "")
}

// TwoFASetupSubmit confirms enrolment with a code from the new secret.
func (a *Auth) TwoFASetupSubmit(w http.ResponseWriter, r *http.Request) {
	sess := middleware.AuthenticatedFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	err := a.users.EnableTOTP(r.Context(), sess.UserID, r.FormValue("code"))
	switch {
	case err == nil:
		render.SetFlash(w, render.FlashSuccess, "Two-factor authentication enabled.")
		http.Redirect(w, r, "/account/2fa", http.StatusSeeOther)
	case errors.Is(err, service.ErrInvalidCredentials):
		user, ferr := a.users.FindByID(r.Context(), sess.UserID)
		if ferr != nil {
			renderError(a.renderer, w, r, ferr)
			return
		}
		// Show the same secret again rather than rotating it.
		enrol, perr := a.users.PendingTOTP(user)
		if perr != nil {
			http.Redirect(w, r, "/account/2fa", http.StatusSeeOther)
			return
		}
		a.renderSetup(w, r, http.StatusUnprocessableEntity, enrol, "Invalid code. Please try again.")
	default:
		renderError(a.renderer, w, r, err)
	}
}

func (a *Auth) renderSetup(w http.ResponseWriter, r *http.Request, status int, enrol *service.TOTPEnrolment, errMsg string) {
	data := map[string]any{
		"Enabled": false,
		"Secret":  enrol.Secret,
		"QRCode":  template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(enrol.QRCode)),
	}
	if errMsg != "" {
		data["Error"] = errMsg
	}
	a.renderer.PageStatus(w, r, status, "2fa_setup", &render.PageData{
		Title: "Two-factor authentication",
		Data:  data,
	})
}
