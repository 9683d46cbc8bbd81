// Betty Organic - Back-Office Order Notifications and Sales Reports
// Copyright 2026 Yosef Ali
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Yosef-Ali/betty-organic-sub002

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Yosef-Ali/betty-organic-sub002/internal/config"
	"github.com/Yosef-Ali/betty-organic-sub002/internal/middleware"
)

// Router sets up HTTP routes using Chi.
type Router struct {
	handler *Handler
	cfg     *config.APIConfig
}

// NewRouter creates a router around the handler.
func NewRouter(handler *Handler, cfg *config.APIConfig) *Router {
	return &Router{handler: handler, cfg: cfg}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   router.cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health endpoints: permissive rate limiting so monitors can poll
	// frequently without abuse.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(httprate.LimitByIP(1000, router.cfg.RateLimitWindow))
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Core API endpoints.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(router.cfg.RateLimitReqs, router.cfg.RateLimitWindow))
		r.Use(middleware.PrometheusMetrics)

		// Manual out-of-cadence pass over both pipelines.
		r.Post("/refresh", router.handler.Refresh)

		// Notifications
		r.Get("/notifications", router.handler.Notifications)
		r.Post("/notifications/refresh", router.handler.NotificationsRefresh)
		r.Post("/notifications/interaction", router.handler.Interaction)

		// Reports
		r.Get("/reports/metrics", router.handler.ReportMetrics)
		r.Post("/reports/refresh", router.handler.ReportsRefresh)

		// Order management
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", router.handler.ListOrders)
			r.Post("/", router.handler.CreateOrder)
			r.Get("/{id}", router.handler.GetOrder)
			r.Patch("/{id}/status", router.handler.UpdateOrderStatus)
			r.Delete("/{id}", router.handler.DeleteOrder)
		})
	})

	// WebSocket upgrade: no rate limit, long-lived connections.
	r.Get("/ws", router.handler.WebSocket)

	// Observability
	r.Handle("/metrics", promhttp.Handler())

	return r
}
