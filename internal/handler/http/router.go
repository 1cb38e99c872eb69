package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teamboardhq/teamboard/internal/auth"
	"github.com/teamboardhq/teamboard/internal/domain"
	"github.com/teamboardhq/teamboard/internal/service"
	"github.com/teamboardhq/teamboard/pkg/health"
	"github.com/teamboardhq/teamboard/pkg/middleware"
)

// RouterConfig carries everything the router needs beyond the services.
type RouterConfig struct {
	JWTManager    *auth.JWTManager
	Cookies       CookieConfig
	CORS          middleware.CORSConfig
	AuthLimiter   middleware.RateLimiter // nil disables rate limiting on auth endpoints
	PprofCIDRs    []string
	HealthHandler *health.Handler
}

// Services groups the service layer for route registration.
type Services struct {
	Auth          *service.AuthService
	Users         *service.UserService
	Teams         *service.TeamService
	Projects      *service.ProjectService
	Tasks         *service.TaskService
	Notifications *service.NotificationService
}

// NewRouter creates a chi router with all routes registered.
func NewRouter(svcs Services, cfg RouterConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing("teamboard"))
	r.Use(middleware.PrometheusMetrics("teamboard"))

	// Health check endpoints
	r.Get("/health/live", cfg.HealthHandler.LivenessHandler())
	r.Get("/health/ready", cfg.HealthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	authHandler := NewAuthHandler(svcs.Auth, cfg.Cookies, logger)
	userHandler := NewUserHandler(svcs.Users)
	teamHandler := NewTeamHandler(svcs.Teams)
	projectHandler := NewProjectHandler(svcs.Projects)
	taskHandler := NewTaskHandler(svcs.Tasks)
	notificationHandler := NewNotificationHandler(svcs.Notifications)

	tokenValidator := AccessTokenValidator(cfg.JWTManager)

	// Browser-facing endpoints ride the auto-refresh middleware: an expired
	// access cookie with a valid refresh cookie gets a rotated pair instead
	// of a 401.
	autoRefresh := AutoRefresh(cfg.JWTManager, svcs.Auth.Refresh, cfg.Cookies)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Login and the email-driven flows are rate limited per client IP;
		// the limiter fails open if Redis is down.
		r.Group(func(r chi.Router) {
			if cfg.AuthLimiter != nil {
				r.Use(middleware.RateLimit(cfg.AuthLimiter, logger))
			}

			r.Post("/login", authHandler.Login)
			r.Post("/resend-verification", authHandler.ResendVerification)
			r.Post("/forgot-password", authHandler.ForgotPassword)
		})

		r.Post("/refresh", authHandler.Refresh)
		r.Post("/logout", authHandler.Logout)
		r.Get("/verify-email", authHandler.VerifyEmail)
		r.Post("/reset-password", authHandler.ResetPassword)

		r.With(autoRefresh).Get("/me", authHandler.Me)

		// Changing a password requires a live, unexpired access token; an
		// expired one is never refreshed here.
		r.With(middleware.Auth(tokenValidator)).Post("/change-password", authHandler.ChangePassword)
	})

	// Public invite completion: the verification token in the body is the
	// credential, so no session is required.
	r.With(ContentTypeJSON).Post("/api/v1/users/complete-profile", userHandler.CompleteProfile)

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(autoRefresh)
		r.Use(middleware.RequireRole(domain.RoleSuperAdmin))

		r.Post("/invite", userHandler.Invite)
		r.Get("/", userHandler.List)
		r.Get("/{id}", userHandler.Get)
		r.Patch("/{id}/role", userHandler.UpdateRole)
		r.Delete("/{id}", userHandler.Delete)
	})

	// Reads are open to any authenticated user; structural mutations are
	// gated by role. Task updates stay open so assignees can move their own
	// work.
	adminUp := middleware.RequireRole(domain.RoleSuperAdmin, domain.RoleAdmin)
	managerUp := middleware.RequireRole(domain.RoleSuperAdmin, domain.RoleAdmin, domain.RoleProjectManager)

	r.Route("/api/v1/teams", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(autoRefresh)

		r.With(adminUp).Post("/", teamHandler.Create)
		r.Get("/", teamHandler.List)
		r.Get("/{id}", teamHandler.Get)
		r.Put("/{id}", teamHandler.Update)
		r.With(adminUp).Delete("/{id}", teamHandler.Delete)
		r.With(adminUp).Post("/{id}/members", teamHandler.AddMember)
		r.With(adminUp).Delete("/{id}/members/{userID}", teamHandler.RemoveMember)
		r.Get("/{id}/projects", projectHandler.ListByTeam)
	})

	r.Route("/api/v1/projects", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(autoRefresh)

		r.With(managerUp).Post("/", projectHandler.Create)
		r.Get("/{id}", projectHandler.Get)
		r.With(managerUp).Put("/{id}", projectHandler.Update)
		r.With(managerUp).Delete("/{id}", projectHandler.Delete)
		r.Get("/{id}/tasks", taskHandler.ListByProject)
	})

	r.Route("/api/v1/tasks", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(autoRefresh)

		r.With(managerUp).Post("/", taskHandler.Create)
		r.Get("/{id}", taskHandler.Get)
		r.Put("/{id}", taskHandler.Update)
		r.With(managerUp).Delete("/{id}", taskHandler.Delete)
	})

	r.Route("/api/v1/notifications", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(autoRefresh)

		r.Get("/", notificationHandler.List)
		r.Post("/{id}/read", notificationHandler.MarkRead)
		r.Post("/read-all", notificationHandler.MarkAllRead)
	})

	return r
}
