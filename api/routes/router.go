package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/essenzakw/essenza-backend/api/controllers"
	"github.com/essenzakw/essenza-backend/api/middleware"
	"github.com/essenzakw/essenza-backend/internal/auth"
	"github.com/essenzakw/essenza-backend/internal/cart"
	"github.com/essenzakw/essenza-backend/internal/catalog"
	checkoutsvc "github.com/essenzakw/essenza-backend/internal/checkout"
	"github.com/essenzakw/essenza-backend/internal/customers"
	"github.com/essenzakw/essenza-backend/internal/orders"
	"github.com/essenzakw/essenza-backend/internal/stats"
	"github.com/essenzakw/essenza-backend/pkg/auth/session"
	"github.com/essenzakw/essenza-backend/pkg/config"
	"github.com/essenzakw/essenza-backend/pkg/enums"
	"github.com/essenzakw/essenza-backend/pkg/logger"
	"github.com/essenzakw/essenza-backend/pkg/redis"
)

// Services bundles everything the HTTP layer depends on.
type Services struct {
	Sessions session.AccessSessionChecker
	Auth     auth.Service
	Catalog  catalog.Service
	Cart     cart.Service
	Checkout checkoutsvc.Service
	Orders   orders.Service
	Customer customers.Service
	Stats    stats.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthLimit.LoginWindow,
		cfg.AuthLimit.LoginIPLimit,
		cfg.AuthLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, redisClient, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(svcs.Catalog, logg))
			r.Get("/{id}", controllers.GetProduct(svcs.Catalog, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.CartToken(logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.GetCart(svcs.Cart, logg))
				r.Delete("/", controllers.ClearCart(svcs.Cart, logg))
				r.Post("/items", controllers.AddToCart(svcs.Cart, logg))
				r.Patch("/items/{productID}", controllers.UpdateCartItem(svcs.Cart, logg))
				r.Delete("/items/{productID}", controllers.RemoveFromCart(svcs.Cart, logg))
				r.Post("/reconcile", controllers.ReconcileCart(svcs.Cart, logg))
			})

			r.Post("/checkout", controllers.SubmitCheckout(svcs.Checkout, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
			if !cfg.App.IsProd() {
				r.Post("/register", controllers.AuthRegister(svcs.Auth, logg))
			}
			r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
			r.With(middleware.Auth(cfg.JWT, svcs.Sessions, logg)).Post("/logout", controllers.AuthLogout(svcs.Auth, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, svcs.Sessions, logg))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.ListProducts(svcs.Catalog, logg))
				r.Post("/", controllers.CreateProduct(svcs.Catalog, logg))
				r.Get("/{id}", controllers.GetProduct(svcs.Catalog, logg))
				r.Patch("/{id}", controllers.UpdateProduct(svcs.Catalog, logg))
				r.Patch("/{id}/stock", controllers.UpdateProductStock(svcs.Catalog, logg))
				r.With(middleware.RequireRole(string(enums.RoleAdmin), logg)).Delete("/{id}", controllers.DeleteProduct(svcs.Catalog, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.ListOrders(svcs.Orders, logg))
				r.Get("/{id}", controllers.GetOrder(svcs.Orders, logg))
				r.Patch("/{id}/status", controllers.UpdateOrderStatus(svcs.Orders, logg))
				r.With(middleware.RequireRole(string(enums.RoleAdmin), logg)).Delete("/{id}", controllers.DeleteOrder(svcs.Orders, logg))
			})

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", controllers.ListCustomers(svcs.Customer, logg))
				r.Get("/{id}", controllers.GetCustomer(svcs.Customer, logg))
			})

			r.Get("/stats/dashboard", controllers.DashboardStats(svcs.Stats, logg))
		})
	})

	return r
}
