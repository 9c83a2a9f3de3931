package queryapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rocketmq-go/namesrv/internal/bytesize"
	"github.com/rocketmq-go/namesrv/internal/logger"
	"github.com/rocketmq-go/namesrv/internal/rim"
)

// NewRouter builds the chi router backing the name-service control
// surface: GET /health, GET /route/{topic}, GET /cluster, POST
// /broker/register, POST /broker/unregister. Metrics are served on their
// own listener (pkg/metrics.NewServer), mirroring the teacher's separate
// metrics port.
func NewRouter(r *rim.RIM, maxRegisterBodySize bytesize.ByteSize) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(30 * time.Second))

	h := newHandler(r)

	router.Get("/health", h.Liveness)
	router.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/health", http.StatusTemporaryRedirect)
	})

	router.Get("/route/{topic}", h.Route)
	router.Get("/cluster", h.Cluster)

	router.Group(func(router chi.Router) {
		router.Use(middleware.RequestSize(int64(maxRegisterBodySize)))
		router.Post("/broker/register", h.Register)
	})
	router.Post("/broker/unregister", h.Unregister)

	return router
}

func isHealthPath(path string) bool {
	return path == "/health"
}

// requestLogger mirrors the teacher's custom request-logging middleware,
// logging healthcheck traffic at DEBUG to keep it out of INFO-level noise.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logArgs := []any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
		}

		if isHealthPath(r.URL.Path) {
			logger.Debug("query API request completed", logArgs...)
		} else {
			logger.Info("query API request completed", logArgs...)
		}
	})
}
