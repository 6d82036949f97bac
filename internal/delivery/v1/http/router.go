package http

import (
	_ "github.com/DRSN-tech/storefront/docs" // Регистрация swagger-спецификации
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// Usecases — набор сценариев, которые обслуживает HTTP API.
type Usecases struct {
	Catalog  usecase.CatalogUC
	Cart     usecase.CartUC
	Shipping usecase.ShippingUC
	Payment  usecase.PaymentUC
	Checkout usecase.CheckoutUC
}

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(uc Usecases) {
	r.router.Use(middleware.RequestID)
	r.router.Use(middleware.Recoverer)
	r.router.Use(RequestLogger(r.logger))

	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		registerCatalogRoutes(v1, NewCatalogHandler(uc.Catalog, r.logger))
		registerShippingRoutes(v1, NewShippingHandler(uc.Shipping, r.logger))
		registerPaymentRoutes(v1, NewPaymentHandler(uc.Payment, r.logger))

		v1.Group(func(session chi.Router) {
			session.Use(SessionMiddleware)
			registerCartRoutes(session, NewCartHandler(uc.Cart, r.logger))
			registerCheckoutRoutes(session, NewCheckoutHandler(uc.Checkout, r.logger))
		})
	})
}

func registerCatalogRoutes(router chi.Router, h *CatalogHandler) {
	router.Route("/products", func(pr chi.Router) {
		pr.Get("/", h.listProducts)
		pr.Get("/{id}", h.getProduct)
		pr.Get("/{id}/accessories", h.getAccessories)
	})
}

func registerCartRoutes(router chi.Router, h *CartHandler) {
	router.Route("/cart", func(cr chi.Router) {
		cr.Get("/", h.getCart)
		cr.Delete("/", h.clearCart)
		cr.Post("/items", h.addItem)
		cr.Patch("/items/{id}", h.updateQuantity)
		cr.Delete("/items/{id}", h.removeItem)
		cr.Put("/shipping-method", h.setShippingMethod)
	})
}

func registerShippingRoutes(router chi.Router, h *ShippingHandler) {
	router.Post("/shipping-rates", h.getShippingRates)
}

func registerPaymentRoutes(router chi.Router, h *PaymentHandler) {
	router.Post("/checkout-sessions", h.createCheckoutSession)
	router.Post("/payment-intents", h.createPaymentIntent)
}

func registerCheckoutRoutes(router chi.Router, h *CheckoutHandler) {
	router.Route("/checkout", func(ch chi.Router) {
		ch.Post("/", h.startCheckout)
		ch.Get("/{id}", h.getCheckout)
		ch.Post("/{id}/address", h.submitAddress)
		ch.Post("/{id}/shipping-method", h.selectShippingMethod)
		ch.Post("/{id}/payment-step", h.proceedToPayment)
		ch.Post("/{id}/back", h.back)
		ch.Post("/{id}/confirm", h.confirmPayment)
	})
}
