// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for
// ReviewBlog. Routes are split into public pages, pages that need a
// signed-in user, and the JSON API.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"reviewblog/internal/handlers"
	"reviewblog/internal/metrics"
	"reviewblog/internal/middleware"
	"reviewblog/internal/session"
)

// Deps are the collaborators the routes are wired to.
type Deps struct {
	Sessions *session.Store
	Views    *handlers.Views
	API      *handlers.API
	Auth     *handlers.Auth

	// LoginLimiter throttles POST /login and POST /user per client IP.
	LoginLimiter *middleware.RateLimiter

	// Static is served under /static/ when non-nil.
	Static fs.FS

	// SecureCookies marks the CSRF cookie Secure.
	SecureCookies bool
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(metrics.Instrument)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(d.Sessions))

	// Health, metrics and assets: no auth, no CSRF.
	r.Get("/health", healthHandler)
	r.Handle("/metrics", metrics.Handler())
	if d.Static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(d.Static))))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCSRF(d.SecureCookies))

		// Public pages.
		r.Get("/", d.Views.Root)
		r.Get("/home", d.Views.Home)
		r.Get("/login", d.Auth.LoginPage)
		r.Get("/signup", d.Auth.SignupPage)
		r.Post("/logout", d.Auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(d.LoginLimiter.Middleware)
			r.Post("/login", d.Auth.LoginSubmit)
			r.Post("/user", d.Auth.SignupSubmit)
		})

		// Second factor, for a password-only session.
		r.Get("/login/2fa", d.Auth.TwoFAVerifyPage)
		r.Post("/login/2fa", d.Auth.TwoFAVerifySubmit)

		// Signed in with 2FA, if enabled, completed.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)

			r.Get("/article/{id}", d.Views.ViewArticle)
			r.Get("/new-article", d.Views.NewArticle)
			r.Get("/account/2fa", d.Auth.TwoFASetupPage)
			r.Post("/account/2fa", d.Auth.TwoFASetupSubmit)
		})

		// JSON API used by the page scripts.
		r.Route("/api", func(r chi.Router) {
			r.Use(middleware.RequireAuthAPI)

			r.Get("/category", d.API.ListCategories)
			r.Post("/category", d.API.CreateCategory)
			r.Post("/article", d.API.CreateArticle)
			r.Put("/article/{id}", d.API.UpdateArticle)
			r.Delete("/article/{id}", d.API.DeleteArticle)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
