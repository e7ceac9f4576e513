package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/andybalholm/brotli"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/igaue-takahiko/food-delivery-app/internal/auth"
	"github.com/igaue-takahiko/food-delivery-app/internal/logger"
	"github.com/igaue-takahiko/food-delivery-app/internal/metrics"
	"github.com/igaue-takahiko/food-delivery-app/internal/model"
	"github.com/igaue-takahiko/food-delivery-app/internal/service"
)

type OrderService interface {
	Checkout(ctx context.Context, accountID string) ([]model.Order, error)
	ListOrders(ctx context.Context, accountID string, role model.Role) ([]model.Order, error)
	UpdateStatus(ctx context.Context, orderID, status string) (*model.Order, error)
}

type CartService interface {
	AddItem(ctx context.Context, accountID, itemID string) error
	ReduceItem(ctx context.Context, accountID, itemID string) error
	RemoveItem(ctx context.Context, accountID, itemID string) error
	View(ctx context.Context, accountID string) (*service.CartView, error)
}

type RestaurantService interface {
	List(ctx context.Context) ([]model.Seller, error)
	Get(ctx context.Context, sellerID string) (*model.Seller, error)
	Nearby(ctx context.Context, lat, lng float64) ([]model.Seller, error)
}

type ProfileService interface {
	UpdateAddress(ctx context.Context, accountID string, addr model.Address, formatted string) (*model.User, error)
	Me(ctx context.Context, accountID string, role model.Role) (*service.Profile, error)
}

// ClientLister exposes the participant to session bindings.
type ClientLister interface {
	Snapshot() map[string]string
}

type Deps struct {
	Orders        OrderService
	Carts         CartService
	Restaurants   RestaurantService
	Profiles      ProfileService
	Auth          *auth.Manager
	Realtime      http.Handler
	Clients       ClientLister
	ClientBaseURL string
	Log           *zap.Logger
	Metrics       *metrics.Metrics
}

type Handler struct {
	router      *chi.Mux
	orders      OrderService
	carts       CartService
	restaurants RestaurantService
	profiles    ProfileService
	auth        *auth.Manager
	realtime    http.Handler
	clients     ClientLister
	validate    *validator.Validate
	log         *zap.Logger
	metrics     *metrics.Metrics
}

func NewHandler(d Deps) *Handler {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(logger.Middleware(d.Log))
	router.Use(middleware.Recoverer)
	router.Use(cors(d.ClientBaseURL))
	router.Use(d.Metrics.Middleware)

	h := &Handler{
		router:      router,
		orders:      d.Orders,
		carts:       d.Carts,
		restaurants: d.Restaurants,
		profiles:    d.Profiles,
		auth:        d.Auth,
		realtime:    d.Realtime,
		clients:     d.Clients,
		validate:    newValidator(),
		log:         d.Log,
		metrics:     d.Metrics,
	}

	h.registerRoutes()
	return h
}

func newCompressor() *middleware.Compressor {
	c := middleware.NewCompressor(5, "application/json", "text/plain")
	c.SetEncoder("br", func(w io.Writer, level int) io.Writer {
		return brotli.NewWriterLevel(w, level)
	})
	return c
}

func (h *Handler) registerRoutes() {
	// The websocket upgrade must not pass through the compressor.
	h.router.Handle("/ws", h.realtime)
	h.router.Get("/health", h.HealthCheck)
	h.router.Handle("/metrics", h.metrics.Handler())

	h.router.Group(func(r chi.Router) {
		r.Use(newCompressor().Handler)

		r.Get("/clients/connected", h.ConnectedClients)
		r.Get("/restaurants", h.ListRestaurants)
		r.Get("/restaurant/{restId}", h.GetRestaurant)
		r.Get("/restaurants-location/{lat}/{lng}", h.NearbyRestaurants)

		r.Group(func(r chi.Router) {
			r.Use(h.auth.Authenticate(h.writeError))

			r.Get("/user", h.GetProfile)
			r.Post("/order-status/{orderId}", h.UpdateOrderStatus)
			r.With(auth.RequireRole(h.writeError, model.RoleUser, model.RoleSeller)).Get("/orders", h.ListOrders)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(h.writeError, model.RoleUser))

				r.Post("/order", h.PlaceOrder)
				r.Get("/cart", h.GetCart)
				r.Post("/cart", h.AddToCart)
				r.Post("/cart/remove/{itemId}", h.ReduceCartItem)
				r.Post("/cart/delete", h.DeleteCartItem)
				r.Post("/user/address", h.UpdateAddress)
			})
		})
	})
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// cors allows the configured client origin; "*" allows any.
func cors(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "OPTIONS, GET, POST, PUT, PATCH, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if origin != "*" {
				w.Header().Add("Vary", "Origin")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
