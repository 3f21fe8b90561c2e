package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rahulvermadev/tiffinbox-backend/api/controllers"
	webhookcontrollers "github.com/rahulvermadev/tiffinbox-backend/api/controllers/webhooks"
	"github.com/rahulvermadev/tiffinbox-backend/api/middleware"
	"github.com/rahulvermadev/tiffinbox-backend/internal/auth"
	cartsvc "github.com/rahulvermadev/tiffinbox-backend/internal/cart"
	"github.com/rahulvermadev/tiffinbox-backend/internal/catalog"
	checkoutsvc "github.com/rahulvermadev/tiffinbox-backend/internal/checkout"
	couponsvc "github.com/rahulvermadev/tiffinbox-backend/internal/coupons"
	ordersvc "github.com/rahulvermadev/tiffinbox-backend/internal/orders"
	"github.com/rahulvermadev/tiffinbox-backend/internal/payments/phonepe"
	"github.com/rahulvermadev/tiffinbox-backend/internal/payments/razorpay"
	"github.com/rahulvermadev/tiffinbox-backend/internal/pricing"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/config"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/db"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/logger"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/metrics"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs. The storefront routes
// are anonymous; only /api/admin/v1 sits behind JWT auth.
type Deps struct {
	Config  *config.Config
	Logger  *logger.Logger
	DB      db.Pinger
	Redis   *redis.Client
	Metrics *metrics.CallbackMetrics

	Gatherer prometheus.Gatherer

	Catalog  catalog.Service
	Cart     cartsvc.Service
	Coupons  couponsvc.Service
	Checkout checkoutsvc.Service
	Orders   ordersvc.Service
	Auth     auth.Service

	Plans      pricing.Repository
	CouponRepo couponsvc.Repository

	Razorpay *razorpay.Client
	PhonePe  *phonepe.Client
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.CatalogList(deps.Catalog, logg))
		r.Get("/products/{slug}", controllers.CatalogGetBySlug(deps.Catalog, logg))
		r.Get("/plans", controllers.PlansList(deps.Plans, logg))

		r.Post("/cart/quote", controllers.CartQuote(deps.Cart, logg))
		r.Post("/coupons/apply", controllers.CouponApply(deps.Coupons, logg))
		r.Post("/coupons/remove", controllers.CouponRemove(deps.Coupons, logg))

		r.With(middleware.Idempotency(deps.Redis, logg)).
			Post("/checkout", controllers.Checkout(deps.Checkout, logg))

		r.Get("/orders/track", controllers.OrderTrack(deps.Orders, logg))

		var guard *webhookcontrollers.CallbackGuard
		if deps.Redis != nil {
			guard = &webhookcontrollers.CallbackGuard{
				Store: deps.Redis,
				TTL:   cfg.Checkout.CallbackDedupeTTL,
			}
		}
		r.Route("/webhooks", func(r chi.Router) {
			r.Post("/razorpay", webhookcontrollers.RazorpayConfirm(deps.Orders, deps.Razorpay, guard, deps.Metrics, logg))
			r.Post("/phonepe", webhookcontrollers.PhonePeCallback(deps.Orders, deps.PhonePe, guard, deps.Metrics, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/auth/login", controllers.AdminAuthLogin(deps.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(deps.Redis, logg))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.AdminProductsList(deps.Catalog, logg))
				r.Post("/", controllers.AdminProductCreate(deps.Catalog, logg))
				r.Patch("/{productId}", controllers.AdminProductUpdate(deps.Catalog, logg))
				r.Delete("/{productId}", controllers.AdminProductDelete(deps.Catalog, logg))
			})

			r.Route("/coupons", func(r chi.Router) {
				r.Get("/", controllers.AdminCouponsList(deps.CouponRepo, logg))
				r.Post("/", controllers.AdminCouponCreate(deps.CouponRepo, logg))
				r.Patch("/{code}", controllers.AdminCouponUpdate(deps.CouponRepo, logg))
				r.Delete("/{code}", controllers.AdminCouponDelete(deps.CouponRepo, logg))
			})

			r.Route("/plans", func(r chi.Router) {
				r.Get("/", controllers.AdminPlansList(deps.Plans, logg))
				r.Post("/", controllers.AdminPlanUpsert(deps.Plans, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminOrdersList(deps.Orders, logg))
				r.Get("/{orderId}", controllers.AdminOrderDetail(deps.Orders, logg))
				r.Post("/{orderId}/status", controllers.AdminOrderSetStatus(deps.Orders, logg))
			})
		})
	})

	return r
}
