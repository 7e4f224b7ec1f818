package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lumeo-dev/lumeo/internal/middleware"
	"github.com/lumeo-dev/lumeo/internal/middleware/metrics"
	"github.com/lumeo-dev/lumeo/internal/middleware/ratelimiter"
	"github.com/lumeo-dev/lumeo/internal/setup"
)

// New wires every route. Rate limits: endpoints that send email get the
// strict per-email limiter, other mutations a per-IP one.
func New(deps *setup.Dependencies) *chi.Mux {
	r := chi.NewRouter()
	h := deps.Handler

	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Public.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(metrics.Middleware)

	r.Get("/healthz", h.Health)
	r.Get("/readyz", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	emailLimiter := ratelimiter.New(1.0/10, 2, time.Hour)
	tokenLimiter := ratelimiter.New(5.0/600, 5, time.Hour)
	ipLimiter := ratelimiter.OnceInSecond

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			// Registration and reset requests send email: limited per
			// target address and per IP.
			r.Group(func(r chi.Router) {
				r.Use(func(next http.Handler) http.Handler {
					return middleware.LimitByIPAndEmail(emailLimiter, next)
				})
				r.Post("/register", h.Register)
				r.Post("/password-reset", h.RequestPasswordReset)
			})

			// Token redemption: strict, it is the brute-force surface.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(tokenLimiter, middleware.IPIdentity))
				r.Post("/activate", h.Activate)
				r.Post("/password-reset/confirm", h.ConfirmPasswordReset)
			})

			r.With(middleware.RateLimit(ipLimiter, middleware.IPIdentity)).Post("/login", h.Login)
			r.Post("/logout", h.Logout)
		})

		r.Route("/account", func(r chi.Router) {
			// Unauthenticated: the account is deactivated while the
			// change is pending, the token is the credential.
			r.With(middleware.RateLimit(tokenLimiter, middleware.IPIdentity)).
				Post("/email-change/confirm", h.ConfirmEmailChange)

			r.Group(func(r chi.Router) {
				r.Use(middleware.NeedAuth(deps.Jwt))
				r.Use(middleware.RateLimit(ipLimiter, middleware.AccountIdentity))

				r.Get("/", h.Me)
				r.Delete("/", h.DeleteAccount)
				r.Post("/email-change", h.RequestEmailChange)
				r.Post("/password", h.ChangePassword)
				r.Post("/username", h.ChangeUsername)
				r.Get("/profile", h.GetProfile)
				r.Put("/profile", h.UpdateProfile)
			})
		})

		// Recommendation queries are open but cheap to abuse, so they
		// share the per-IP limiter with login.
		r.With(middleware.RateLimit(ipLimiter, middleware.IPIdentity)).
			Post("/recommendations", h.Recommend)

		r.Route("/info", func(r chi.Router) {
			r.Get("/site", h.SiteInfo)
			r.Get("/faqs", h.ListFAQs)
			r.Get("/team", h.ListTeamMembers)
			r.Get("/news", h.ListNews)
			r.Get("/news/{id}", h.GetNews)
			r.Get("/partners", h.ListPartners)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.AdminOnly(deps.Jwt))

			r.Put("/info/site", h.AdminUpdateSiteInfo)

			r.Get("/faqs", h.AdminListFAQs)
			r.Post("/faqs", h.AdminSaveFAQ)
			r.Delete("/faqs/{id}", h.AdminDeleteFAQ)

			r.Get("/team", h.AdminListTeamMembers)
			r.Post("/team", h.AdminSaveTeamMember)
			r.Delete("/team/{id}", h.AdminDeleteTeamMember)

			r.Get("/news", h.AdminListNews)
			r.Get("/news/{id}", h.AdminGetNews)
			r.Post("/news", h.AdminSaveNews)
			r.Delete("/news/{id}", h.AdminDeleteNews)

			r.Get("/partners", h.AdminListPartners)
			r.Post("/partners", h.AdminSavePartner)
			r.Delete("/partners/{id}", h.AdminDeletePartner)

			r.Get("/movie-queries", h.AdminListMovieQueries)
			r.Post("/movies/sync", h.AdminSyncMovies)

			r.Route("/stats", func(r chi.Router) {
				r.Get("/accounts-by-role", h.StatsAccountsByRole)
				r.Get("/activity", h.StatsAccountActivity)
				r.Get("/registrations", h.StatsRegistrations)
				r.Get("/content", h.StatsContent)
			})
		})
	})

	return r
}
