package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/amanagarwal0602/randomcafe-sub001/api/controllers"
	"github.com/amanagarwal0602/randomcafe-sub001/api/middleware"
	"github.com/amanagarwal0602/randomcafe-sub001/internal/auth"
	"github.com/amanagarwal0602/randomcafe-sub001/internal/content"
	"github.com/amanagarwal0602/randomcafe-sub001/internal/coupons"
	"github.com/amanagarwal0602/randomcafe-sub001/internal/editsession"
	"github.com/amanagarwal0602/randomcafe-sub001/internal/orders"
	"github.com/amanagarwal0602/randomcafe-sub001/internal/storefront"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/auth/session"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/config"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/db/models"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/enums"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/logger"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/metrics"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/redis"
	"github.com/google/uuid"
)

const apiBase = "/api/v1"

// Pinger is a dependency the readiness probe can reach.
type Pinger interface {
	Ping(context.Context) error
}

type rateCounter interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

type userLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Dependencies is everything the HTTP surface is built from. Storefront, the
// Redis-backed helpers and the pingers may be left nil.
type Dependencies struct {
	Config   *config.Config
	Logger   *logger.Logger
	Metrics  *metrics.Collector
	DB       Pinger
	Redis    Pinger
	Sessions session.AccessSessionChecker
	Browser  *scs.SessionManager

	Idempotency redis.IdempotencyStore
	RateCounter rateCounter

	Auth     auth.Service
	Register auth.RegisterService
	Users    userLookup
	Content  content.Service
	Coupons  coupons.Service
	Orders   orders.Service

	Storefront *storefront.Renderer
}

func NewRouter(deps Dependencies) http.Handler {
	cfg, logg := deps.Config, deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.CORS),
		middleware.Logging(logg, deps.Metrics),
	)

	requireAuth := middleware.Auth(cfg.JWT, deps.Sessions, logg)
	optionalAuth := middleware.OptionalAuth(cfg.JWT, deps.Sessions, logg)
	idempotent := middleware.Idempotency(deps.Idempotency, middleware.IdempotencyTTL, logg)
	orderIdempotent := middleware.Idempotency(deps.Idempotency, middleware.OrderIdempotencyTTL, logg)
	throttled := middleware.RateLimit(cfg.RateLimit, logg)
	editors := middleware.RequireRole(logg, enums.RoleAdmin, enums.RoleStaff)

	browser := func(next http.Handler) http.Handler { return next }
	if deps.Browser != nil {
		browser = deps.Browser.LoadAndSave
	}
	var editStorage editsession.Storage = editsession.NewMemoryStorage()
	if deps.Browser != nil {
		editStorage = editsession.NewSessionStorage(deps.Browser)
	}
	editGate := middleware.EditSession(editStorage, logg)

	var checks []controllers.ReadinessCheck
	if deps.DB != nil {
		checks = append(checks, controllers.ReadinessCheck{Name: "db", Ping: deps.DB.Ping})
	}
	if deps.Redis != nil {
		checks = append(checks, controllers.ReadinessCheck{Name: "redis", Ping: deps.Redis.Ping})
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, checks...))
	})
	r.Handle("/metrics", deps.Metrics.Handler())

	if deps.Storefront != nil && cfg.FeatureFlags.Storefront {
		r.With(browser, optionalAuth, editGate).Get("/", controllers.StorefrontPage(deps.Storefront, logg))
	}

	r.Route(apiBase, func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			login := middleware.NewAuthRateLimitPolicy("login", cfg.AuthRateLimit.LoginWindow, cfg.AuthRateLimit.LoginIPLimit, cfg.AuthRateLimit.LoginEmailLimit)
			register := middleware.NewAuthRateLimitPolicy("register", cfg.AuthRateLimit.RegisterWindow, cfg.AuthRateLimit.RegisterIPLimit, cfg.AuthRateLimit.RegisterEmailLimit)

			r.With(middleware.AuthRateLimit(login, deps.RateCounter, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
			r.With(middleware.AuthRateLimit(register, deps.RateCounter, logg), idempotent).Post("/register", controllers.AuthRegister(deps.Register, deps.Auth, logg))
			r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
			r.Post("/logout", controllers.AuthLogout(deps.Auth, logg))
			r.With(requireAuth).Get("/me", controllers.AuthMe(deps.Users, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)

			for _, res := range content.Resources() {
				mountContent(r, res, deps.Content, logg, requireAuth, editors)
			}

			r.With(throttled).Post("/coupons/validate", controllers.CouponValidate(deps.Coupons, logg))
			r.With(throttled, orderIdempotent).Post("/orders", controllers.OrderCreate(deps.Orders, logg))

			r.Route("/edit-mode", func(r chi.Router) {
				r.Use(browser, editGate)
				r.Get("/", controllers.EditModeGet(logg))
				r.Post("/toggle", controllers.EditModeToggle(deps.Metrics, logg))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/orders/mine", controllers.OrdersMine(deps.Orders, logg))
			r.Get("/orders/{id}", controllers.OrderGet(deps.Orders, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAuth, editors)

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminOrderList(deps.Orders, logg))
				r.Patch("/{id}/status", controllers.AdminOrderStatus(deps.Orders, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.RoleAdmin))
				r.Get("/coupons", controllers.AdminCouponList(deps.Coupons, logg))
				r.With(idempotent).Post("/coupons", controllers.AdminCouponCreate(deps.Coupons, logg))
				r.With(idempotent).Post("/content/{resource}", controllers.AdminContentCreate(deps.Content, logg))
				r.Delete("/content/{resource}/{id}", controllers.AdminContentDelete(deps.Content, logg))
			})
		})
	})

	return r
}

// mountContent registers the read and write routes of one content resource.
func mountContent(r chi.Router, res content.Resource, svc content.Service, logg *logger.Logger, requireAuth, editors func(http.Handler) http.Handler) {
	base := "/" + res.Name
	if !res.Collection {
		r.Get(base, controllers.ContentGet(svc, res.Name, logg))
		r.With(requireAuth, editors).Put(base, controllers.ContentPut(svc, res.Name, false, logg))
		return
	}

	r.Get(base, controllers.ContentList(svc, res.Name, false, logg))
	if res.Visible != nil {
		r.Get(base+"/all", controllers.ContentList(svc, res.Name, true, logg))
	}
	r.Get(base+"/{id}", controllers.ContentItem(svc, res.Name, logg))
	r.With(requireAuth, editors).Put(base+"/{id}", controllers.ContentPut(svc, res.Name, true, logg))
}
