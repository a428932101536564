// Package router sets up all HTTP routes and middleware chains. Routes
// are organized into public, authenticated, and admin groups, with the
// catch-all slug route registered last so every named route wins first.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"inkpress/internal/handlers"
	"inkpress/internal/middleware"
	"inkpress/internal/session"
	"inkpress/web"
)

// Deps bundles everything the router needs.
type Deps struct {
	Sessions  *session.Store
	Blog      *handlers.Blog
	Auth      *handlers.Auth
	Profile   *handlers.Profile
	Chat      *handlers.Chat
	Admin     *handlers.Admin
	AdminAuth *handlers.AdminAuth
}

// New creates the configured Chi router with all middleware and route
// groups wired up.
func New(deps Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(deps.Sessions))

	// Health check and static assets sit outside CSRF.
	r.Get("/health", healthHandler)
	r.Handle("/static/*", http.FileServer(http.FS(web.StaticFS)))

	// Credential endpoints get a tighter rate limit.
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)

	r.Group(func(r chi.Router) {
		r.Use(middleware.CSRF)

		// Auth.
		r.Group(func(r chi.Router) {
			r.Use(loginLimiter.Middleware)
			r.Get("/register", deps.Auth.RegisterPage)
			r.Post("/register", deps.Auth.RegisterSubmit)
			r.Get("/login", deps.Auth.LoginPage)
			r.Post("/login", deps.Auth.LoginSubmit)
		})
		r.Get("/captcha/new", deps.Auth.NewCaptcha)
		r.Post("/logout", deps.Auth.Logout)

		// Public blog.
		r.Get("/", deps.Blog.Home)
		r.Post("/search", deps.Blog.Search)
		r.Get("/user/{username}", deps.Profile.Look)

		// Logged-in area.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/saved", deps.Blog.Saved)
			r.Post("/like/{id}", deps.Blog.Like)
			r.Post("/save/{id}", deps.Blog.Save)

			r.Get("/profile", deps.Profile.Own)
			r.Post("/profile", deps.Profile.OwnSubmit)

			r.Get("/chat", deps.Chat.Home)
			r.Get("/chat/search_user", deps.Chat.SearchUser)
			r.Get("/chat/ajax/{id}", deps.Chat.Ajax)
		})

		// Admin area.
		r.Route("/admin", func(r chi.Router) {
			// The sign-in pair sits outside the auth gates, rate-limited
			// like the site login.
			r.Group(func(r chi.Router) {
				r.Use(loginLimiter.Middleware)
				r.Get("/login", deps.AdminAuth.LoginPage)
				r.Post("/login", deps.AdminAuth.LoginSubmit)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Use(middleware.RequireAdmin)

				r.Post("/logout", deps.AdminAuth.Logout)

				// 2FA pages sit before the Require2FA gate.
				r.Get("/2fa/setup", deps.AdminAuth.TwoFASetupPage)
				r.Get("/2fa/verify", deps.AdminAuth.TwoFAVerifyPage)
				r.Post("/2fa/verify", deps.AdminAuth.TwoFAVerifySubmit)

				r.Group(func(r chi.Router) {
					r.Use(middleware.Require2FA)

					r.Get("/", deps.Admin.Dashboard)

					r.Route("/posts", func(r chi.Router) {
						r.Get("/", deps.Admin.Posts)
						r.Get("/new", deps.Admin.NewPost)
						r.Post("/", deps.Admin.CreatePost)
						r.Get("/{id}/edit", deps.Admin.EditPost)
						r.Post("/{id}", deps.Admin.UpdatePost)
						r.Post("/{id}/delete", deps.Admin.DeletePost)
					})

					r.Route("/categories", func(r chi.Router) {
						r.Get("/", deps.Admin.Categories)
						r.Post("/", deps.Admin.CreateCategory)
						r.Get("/{id}/edit", deps.Admin.EditCategory)
						r.Post("/{id}", deps.Admin.UpdateCategory)
						r.Post("/{id}/delete", deps.Admin.DeleteCategory)
					})

					r.Route("/users", func(r chi.Router) {
						r.Get("/", deps.Admin.UsersList)
						r.Post("/{id}/reset-2fa", deps.Admin.UserResetTwoFA)
						r.Post("/{id}/delete", deps.Admin.UserDelete)
					})
				})
			})
		})

		// Catch-all: category slug first, then post slug, then 404.
		r.Get("/{slug}", deps.Blog.Slug)
		r.Post("/{slug}", deps.Blog.Slug)
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
