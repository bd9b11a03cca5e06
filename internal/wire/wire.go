// internal/wire/wire.go
package wire

import (
	"net/http"

	"event-booking/internal/adaptor"
	"event-booking/internal/data/repository"
	"event-booking/internal/usecase"
	"event-booking/pkg/middleware"
	"event-booking/pkg/queue"
	"event-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deps are the infrastructure pieces built by main.
type Deps struct {
	Repo      *repository.Repository
	Clock     utils.Clock
	Publisher queue.Publisher
	Redis     *redis.Client // nil disables rate limiting
	Health    adaptor.HealthChecker
}

type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Wiring builds services, handlers and the router.
func Wiring(deps Deps, config *utils.Config, logger *zap.Logger) *App {
	service := usecase.NewService(deps.Repo, config, deps.Clock, deps.Publisher, logger)
	handler := adaptor.NewHandler(service, config, deps.Health, logger)

	router := setupRouter(handler, service, deps, config, logger)

	return &App{
		Router:  router,
		Service: service,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	service *usecase.Service,
	deps Deps,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.App.CORSOrigins))

	g := guards{
		auth:      middleware.AuthSession(service.Auth, logger),
		admin:     middleware.Admin(logger),
		rateLimit: middleware.RateLimit(config.RateLimit, deps.Redis, logger),
	}

	wireAuth(r, handler.Auth, g)
	wireEvent(r, handler.Event, handler.Inventory, g)
	wireBooking(r, handler.Booking, g)
	wirePayment(r, handler.Payment, g)

	r.Get("/health", handler.Health.Health)

	return r
}

type middlewareFunc = func(http.Handler) http.Handler

// guards are the route-level middleware shared by the wire functions.
type guards struct {
	auth      middlewareFunc
	admin     middlewareFunc
	rateLimit middlewareFunc
}
