package router

import (
	"net/http"
	"time"

	"recyclehub/internal/docs"
	"recyclehub/internal/middleware"
	"recyclehub/internal/response"
	"recyclehub/internal/services"
	"recyclehub/internal/upload"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// Dependencies are what the router needs to build every controller
type Dependencies struct {
	Services        *services.ServiceCollection
	Auth            *middleware.AuthMiddleware
	Storage         upload.FileStorage // nil when uploads are disabled
	ResponseBuilder *response.Builder
	CORSOrigins     []string
	MaxUploadSize   int64
	Logger          *zap.Logger
}

// SetupRouter configures all HTTP routes and returns the main handler
func SetupRouter(deps *Dependencies) http.Handler {
	r := mux.NewRouter()
	r.StrictSlash(true)

	builder := deps.ResponseBuilder
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		builder.WriteNotFound(w, req, "route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		builder.WriteJSON(w, req, builder.Error(req.Context(),
			services.NewValidationError("method not allowed", nil)), http.StatusMethodNotAllowed)
	})

	// ===============================
	// PUBLIC ENDPOINTS
	// ===============================

	r.HandleFunc("/health", healthHandler(deps)).Methods(http.MethodGet)

	r.HandleFunc("/swagger/doc.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(docs.SwaggerJSON)
	}).Methods(http.MethodGet)
	r.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	AddAPIv1Routes(r.PathPrefix("/api/v1").Subrouter(), deps)

	// middleware runs outermost first
	r.Use(
		middleware.RequestID(deps.Logger),
		middleware.EnhancedLogging(),
		middleware.RecoverPanic(builder),
		middleware.SecureHeaders,
	)

	deps.Logger.Info("Router setup completed",
		zap.Strings("cors_origins", deps.CORSOrigins),
		zap.Bool("uploads_enabled", deps.Storage != nil),
	)

	return handlers.CORS(
		handlers.AllowedOrigins(deps.CORSOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "X-Request-ID"}),
		handlers.ExposedHeaders([]string{"X-Request-ID"}),
		handlers.MaxAge(int((10 * time.Minute).Seconds())),
	)(r)
}

func healthHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deps.ResponseBuilder.WriteHealthCheck(w, r, deps.Services.HealthCheck(r.Context()))
	}
}
