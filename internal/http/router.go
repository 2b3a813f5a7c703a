package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Handlers struct {
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Backend  *BackendHandler
	Products *ProductHandler
	Admin    *AdminHandler
	Verifier TokenVerifier
}

type RouterConfig struct {
	RequestTimeout time.Duration
	SecureCookies  bool
}

func NewRouter(h Handlers, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	adminOnly := AdminOnly(h.Verifier)

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Products.ListProducts)
			r.Get("/{id}", h.Products.GetProduct)
			r.With(adminOnly).Post("/add", h.Products.AddProduct)
		})
		r.Get("/ai-products", h.Products.ListAIProducts)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.Admin.Login)
			r.Post("/logout", h.Admin.Logout)
			r.Get("/me", h.Admin.Me)
			r.With(adminOnly).Get("/orders", h.Admin.ListOrders)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/cash", h.Backend.Cash)
			r.Post("/paypal", h.Backend.PayPal)
			r.Post("/stripe", h.Backend.Stripe)
		})

		r.Route("/v1", func(r chi.Router) {
			r.Use(SessionMiddleware(cfg.SecureCookies))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.Cart.GetCart)
				r.Delete("/", h.Cart.ClearCart)
				r.Post("/items", h.Cart.AddItem)
				r.Delete("/items/{id}", h.Cart.RemoveItem)
				r.Post("/items/{id}/increase", h.Cart.IncreaseQuantity)
				r.Post("/items/{id}/decrease", h.Cart.DecreaseQuantity)
				r.Delete("/message", h.Cart.ClearMessage)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Post("/", h.Checkout.Submit)
				r.Get("/status", h.Checkout.Status)
				r.Get("/paypal/return", h.Checkout.PayPalReturn)
				r.Get("/paypal/cancel", h.Checkout.PayPalCancel)
			})
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}
