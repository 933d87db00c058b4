package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/richrisemansion/ebook-pop/api/controllers"
	webhookcontrollers "github.com/richrisemansion/ebook-pop/api/controllers/webhooks"
	"github.com/richrisemansion/ebook-pop/api/middleware"
	authsvc "github.com/richrisemansion/ebook-pop/internal/auth"
	booksvc "github.com/richrisemansion/ebook-pop/internal/books"
	cartsvc "github.com/richrisemansion/ebook-pop/internal/cart"
	checkoutsvc "github.com/richrisemansion/ebook-pop/internal/checkout"
	ordersvc "github.com/richrisemansion/ebook-pop/internal/orders"
	"github.com/richrisemansion/ebook-pop/pkg/config"
	"github.com/richrisemansion/ebook-pop/pkg/logger"
)

type callbackAnswerer interface {
	AnswerCallbackQuery(ctx context.Context, callbackQueryID, text string) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Deps collects everything the router wires into handlers. Pingers and the
// bot may be nil in demo deployments.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Registry *prometheus.Registry

	DB    pinger
	Redis pinger
	GCS   pinger

	Auth     authsvc.Service
	Books    booksvc.Service
	Cart     cartsvc.Service
	Checkout checkoutsvc.Service
	Orders   ordersvc.Service

	Bot callbackAnswerer
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

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, healthDeps(deps)))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/books", func(r chi.Router) {
			r.Get("/", controllers.StorefrontBooks(deps.Books, logg))
			r.Get("/{bookId}", controllers.StorefrontBookDetail(deps.Books, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.CartSession(logg))
			r.Get("/", controllers.CartFetch(deps.Cart, logg))
			r.Post("/items", controllers.CartAddItem(deps.Cart, logg))
			r.Patch("/items/{bookId}", controllers.CartUpdateItem(deps.Cart, logg))
			r.Delete("/items/{bookId}", controllers.CartRemoveItem(deps.Cart, logg))
			r.Put("/customer", controllers.CartSetCustomer(deps.Cart, logg))
			r.Delete("/", controllers.CartClear(deps.Cart, logg))
		})

		r.With(middleware.CartSession(logg)).Post("/checkout", controllers.Checkout(deps.Checkout, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/{orderId}", controllers.OrderDetail(deps.Orders, logg))
			r.Get("/number/{orderNumber}", controllers.OrderLookup(deps.Orders, logg))
			r.Get("/{orderId}/payment", controllers.PaymentInfo(deps.Checkout, logg))
			r.Post("/{orderId}/slip", controllers.SubmitSlip(deps.Orders, cfg.Slip, logg))
		})
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/telegram", webhookcontrollers.TelegramWebhook(deps.Orders, deps.Bot, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Post("/auth/login", controllers.AdminLogin(deps.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuth(cfg.JWT, logg))

			r.Route("/books", func(r chi.Router) {
				r.Get("/", controllers.AdminBooks(deps.Books, logg))
				r.Post("/", controllers.AdminCreateBook(deps.Books, logg))
				r.Patch("/{bookId}", controllers.AdminUpdateBook(deps.Books, logg))
				r.Delete("/{bookId}", controllers.AdminDeactivateBook(deps.Books, logg))
				r.Post("/{bookId}/cover", controllers.AdminUploadCover(deps.Books, cfg.Slip, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminOrders(deps.Orders, logg))
				r.Get("/stats", controllers.AdminOrderStats(deps.Orders, logg))
				r.Post("/{orderId}/verify", controllers.AdminVerifyOrder(deps.Orders, logg))
				r.Post("/{orderId}/verify-and-send", controllers.AdminVerifyAndSend(deps.Orders, logg))
				r.Post("/{orderId}/reject", controllers.AdminRejectOrder(deps.Orders, logg))
				r.Post("/{orderId}/cancel", controllers.AdminCancelOrder(deps.Orders, logg))
				r.Post("/{orderId}/deliver", controllers.AdminDeliverOrder(deps.Orders, logg))
				r.Post("/{orderId}/resend", controllers.AdminResendOrder(deps.Orders, logg))
			})
		})
	})

	return r
}

func healthDeps(deps Deps) map[string]controllers.Pinger {
	checks := map[string]controllers.Pinger{}
	if deps.DB != nil {
		checks["postgres"] = deps.DB
	}
	if deps.Redis != nil {
		checks["redis"] = deps.Redis
	}
	if deps.GCS != nil {
		checks["gcs"] = deps.GCS
	}
	return checks
}
