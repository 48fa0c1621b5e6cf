package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tbostore/storefront-backend/api/controllers"
	webhookcontrollers "github.com/tbostore/storefront-backend/api/controllers/webhooks"
	"github.com/tbostore/storefront-backend/api/middleware"
	"github.com/tbostore/storefront-backend/internal/cart"
	checkoutsvc "github.com/tbostore/storefront-backend/internal/checkout"
	coupons "github.com/tbostore/storefront-backend/internal/coupons"
	"github.com/tbostore/storefront-backend/internal/currency"
	"github.com/tbostore/storefront-backend/internal/orders"
	product "github.com/tbostore/storefront-backend/internal/products"
	"github.com/tbostore/storefront-backend/internal/settings"
	stripewebhook "github.com/tbostore/storefront-backend/internal/webhooks/stripe"
	"github.com/tbostore/storefront-backend/pkg/config"
	"github.com/tbostore/storefront-backend/pkg/db"
	"github.com/tbostore/storefront-backend/pkg/logger"
	"github.com/tbostore/storefront-backend/pkg/redis"
	"github.com/tbostore/storefront-backend/pkg/stripe"
)

// RouterParams carries everything the HTTP surface needs. Grouping them in a
// struct keeps cmd/api readable as the service count grows.
type RouterParams struct {
	Config *config.Config
	Logger *logger.Logger

	DB    db.Pinger
	Redis *redis.Client

	Carts       *cart.Manager
	Products    product.Service
	Coupons     coupons.Service
	Orders      orders.Service
	Settings    settings.Service
	Currency    currency.Service
	Checkout    checkoutsvc.Service
	Stripe      *stripe.Client

	WebhookService *stripewebhook.Service
	WebhookGuard   *stripewebhook.IdempotencyGuard

	MetricsGatherer prometheus.Gatherer
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})

	if p.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(p.WebhookService, p.Stripe, p.WebhookGuard, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public catalog and settings need no session.
		r.Get("/products", controllers.ListProducts(p.Products, logg))
		r.Get("/products/{productId}", controllers.GetProduct(p.Products, logg))
		r.Get("/settings", controllers.PublicSettings(p.Settings, logg))
		r.Get("/coupons/{code}", controllers.ValidateCoupon(p.Coupons, logg))
		r.Get("/orders/{orderNumber}", controllers.TrackOrder(p.Orders, logg))

		// Session-scoped shopper surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(logg))
			r.Use(middleware.Idempotency(p.Redis, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.GetCart(p.Carts, p.Currency, logg))
				r.Delete("/", controllers.ClearCart(p.Carts, logg))
				r.Post("/items", controllers.AddCartItem(p.Carts, p.Products, p.Currency, logg))
				r.Put("/items/{productId}", controllers.SetCartQuantity(p.Carts, p.Currency, logg))
				r.Delete("/items/{productId}", controllers.RemoveCartItem(p.Carts, p.Currency, logg))
			})

			r.Get("/currency", controllers.GetCurrency(p.Currency, logg))
			r.Put("/currency", controllers.SetCurrency(p.Currency, logg))

			r.Post("/checkout", controllers.Checkout(p.Checkout, logg))
			r.Get("/checkout/confirm", controllers.CheckoutConfirm(p.Checkout, logg))
		})

		// Admin surface: bearer token with the admin capability.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.AdminOnly(logg))
			r.Use(middleware.Idempotency(p.Redis, logg))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.AdminListProducts(p.Products, logg))
				r.Post("/", controllers.AdminCreateProduct(p.Products, logg))
				r.Put("/{productId}", controllers.AdminUpdateProduct(p.Products, logg))
				r.Delete("/{productId}", controllers.AdminDeleteProduct(p.Products, logg))
			})

			r.Route("/coupons", func(r chi.Router) {
				r.Get("/", controllers.AdminListCoupons(p.Coupons, logg))
				r.Post("/", controllers.AdminCreateCoupon(p.Coupons, logg))
				r.Put("/{couponId}", controllers.AdminUpdateCoupon(p.Coupons, logg))
				r.Delete("/{couponId}", controllers.AdminDeleteCoupon(p.Coupons, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminListOrders(p.Orders, logg))
				r.Get("/{orderId}", controllers.AdminGetOrder(p.Orders, logg))
				r.Put("/{orderId}/status", controllers.AdminUpdateOrderStatus(p.Orders, logg))
			})

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", controllers.AdminGetSettings(p.Settings, logg))
				r.Put("/", controllers.AdminUpdateSettings(p.Settings, logg))
			})
		})
	})

	return r
}
