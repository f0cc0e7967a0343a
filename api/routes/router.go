package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/developersvyapar-netizen/vyaapar-backend/api/controllers"
	"github.com/developersvyapar-netizen/vyaapar-backend/api/middleware"
	attendancesvc "github.com/developersvyapar-netizen/vyaapar-backend/internal/attendance"
	authsvc "github.com/developersvyapar-netizen/vyaapar-backend/internal/auth"
	cartsvc "github.com/developersvyapar-netizen/vyaapar-backend/internal/cart"
	catalogsvc "github.com/developersvyapar-netizen/vyaapar-backend/internal/catalog"
	checkoutsvc "github.com/developersvyapar-netizen/vyaapar-backend/internal/checkout"
	ordersvc "github.com/developersvyapar-netizen/vyaapar-backend/internal/orders"
	usersvc "github.com/developersvyapar-netizen/vyaapar-backend/internal/users"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/auth/session"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/config"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/db"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/enums"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/logger"
	redisclient "github.com/developersvyapar-netizen/vyaapar-backend/pkg/redis"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	Auth       authsvc.Service
	Users      usersvc.Service
	Catalog    catalogsvc.Service
	Cart       cartsvc.Service
	Checkout   checkoutsvc.Service
	Orders     ordersvc.Service
	Attendance attendancesvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redisclient.Client,
	sessions session.AccessSessionChecker,
	registry *prometheus.Registry,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.Login(svcs.Auth, logg))
		r.Post("/refresh", controllers.Refresh(svcs.Auth, logg))
		r.Post("/logout", controllers.Logout(svcs.Auth, logg))
		r.With(middleware.Auth(cfg.JWT, sessions, logg)).
			Get("/me", controllers.Me(svcs.Users, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(svcs.Catalog, logg))
			r.Get("/{productID}", controllers.ProductGet(svcs.Catalog, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleSalesperson.String(), logg))
			r.Get("/", controllers.CartGet(svcs.Cart, logg))
			r.Post("/items", controllers.CartAddItem(svcs.Cart, logg))
			r.Patch("/items/{itemID}", controllers.CartUpdateItem(svcs.Cart, logg))
			r.Delete("/items/{itemID}", controllers.CartRemoveItem(svcs.Cart, logg))
			r.Put("/buyer", controllers.CartSetBuyer(svcs.Cart, logg))
			r.Put("/supplier", controllers.CartSetSupplier(svcs.Cart, logg))
			r.Delete("/", controllers.CartClear(svcs.Cart, logg))
			r.Post("/checkout", controllers.CartCheckout(svcs.Checkout, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(svcs.Orders, logg))
			r.Get("/{orderID}", controllers.OrderGet(svcs.Orders, logg))
		})

		r.Route("/retailer/orders", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleRetailer.String(), logg))
			r.Post("/", controllers.RetailerOrderCreate(svcs.Orders, logg))
		})

		r.Route("/attendance", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleSalesperson.String(), logg))
			r.Post("/clock-in", controllers.AttendanceClockIn(svcs.Attendance, logg))
			r.Post("/clock-out", controllers.AttendanceClockOut(svcs.Attendance, logg))
			r.Get("/history", controllers.AttendanceHistory(svcs.Attendance, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.RequireAnyRole(logg, enums.UserRoleAdmin.String(), enums.UserRoleSuperAdmin.String()))

		r.Route("/users", func(r chi.Router) {
			r.Post("/", controllers.UserCreate(svcs.Users, logg))
			r.Get("/", controllers.UserList(svcs.Users, logg))
			r.Get("/{userID}", controllers.UserGet(svcs.Users, logg))
			r.Post("/{userID}/deactivate", controllers.UserDeactivate(svcs.Users, logg))
			r.Post("/{userID}/reactivate", controllers.UserReactivate(svcs.Users, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.ProductCreate(svcs.Catalog, logg))
			r.Patch("/{productID}/price", controllers.ProductUpdatePrice(svcs.Catalog, logg))
			r.Patch("/{productID}/active", controllers.ProductSetActive(svcs.Catalog, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Patch("/{orderID}/status", controllers.OrderUpdateStatus(svcs.Orders, logg))
		})

		r.Route("/attendance", func(r chi.Router) {
			r.Get("/report", controllers.AttendanceDailyReport(svcs.Attendance, logg))
			r.Post("/close-stale", controllers.AttendanceCloseStale(svcs.Attendance, logg))
		})
	})

	return r
}
