package api

import (
	"github.com/ayo6706/bank-transfer-saga/internal/api/handler"
	"github.com/ayo6706/bank-transfer-saga/internal/api/middleware"
	"github.com/ayo6706/bank-transfer-saga/internal/bus"
	"github.com/ayo6706/bank-transfer-saga/internal/config"
	"github.com/ayo6706/bank-transfer-saga/internal/query"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Router struct {
	cfg      *config.Config
	logger   *zap.Logger
	commands *bus.CommandBus
	queries  *query.Service
}

func NewRouter(cfg *config.Config, logger *zap.Logger, commands *bus.CommandBus, queries *query.Service) *Router {
	return &Router{cfg: cfg, logger: logger, commands: commands, queries: queries}
}

func (api *Router) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware)
	r.Use(middleware.LoggingMiddleware(api.logger))
	r.Use(middleware.RecoverMiddleware(api.logger))
	r.Use(middleware.MetricsMiddleware)
	r.Use(middleware.RateLimiter(api.cfg.RateLimitRPS))

	accountHandler := handler.NewAccountHandler(api.commands, api.queries)
	transferHandler := handler.NewTransferHandler(api.commands, api.queries)

	r.Get("/healthz", handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if middleware.Enabled() {
			r.Use(middleware.AuthMiddleware)
		}

		r.Post("/v1/accounts", accountHandler.CreateAccount)
		r.Get("/v1/accounts/{id}", accountHandler.GetAccount)
		r.Post("/v1/accounts/{id}/deposit", accountHandler.Deposit)
		r.Post("/v1/accounts/{id}/withdraw", accountHandler.Withdraw)

		r.Post("/v1/transfers", transferHandler.CreateTransfer)
		r.Get("/v1/transfers/{id}", transferHandler.GetTransfer)
	})

	return r
}
