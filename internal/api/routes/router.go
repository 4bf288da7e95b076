package routes

import (
	"net/http"

	"github.com/rohanthuse/infinite-care-vue-sub018/internal/api/handlers"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/api/middleware"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	reconciliationHandler *handlers.ReconciliationHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	reconciliationHandler *handlers.ReconciliationHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:                   http.NewServeMux(),
		reconciliationHandler: reconciliationHandler,
		metrics:               metrics,
	}
}

// SetupRoutes sets up all routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			observability.LoggerFromContext(req.Context()).Error().Err(err).Msg("failed to write health response")
		}
	})

	// Scheduler-triggered jobs
	r.mux.HandleFunc("POST /api/jobs/booking-lateness", r.reconciliationHandler.RunBookingLateness)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// CORS wraps everything so preflights never reach the mux
	handler = middleware.CORSMiddleware(handler)

	return handler
}
