package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/arrendix/protecciones/internal/auth"
	"github.com/arrendix/protecciones/internal/handler"
)

type Handlers struct {
	Policies *handler.PolicyHandler
	Actors   *handler.ActorHandler
	Payments *handler.PaymentHandler
}

func SetupRoutes(h Handlers, verifier auth.Verifier, allowedOrigins []string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticate(verifier, logger))

		r.Get("/statuses", h.Policies.HandleStatuses)

		r.Route("/policies", func(r chi.Router) {
			r.With(auth.Require(auth.CapPolicyCreate)).Post("/", h.Policies.HandleCreate)
			r.With(auth.Require(auth.CapPolicyRead)).Get("/", h.Policies.HandleList)

			r.Route("/{id}", func(r chi.Router) {
				r.With(auth.Require(auth.CapPolicyRead)).Get("/", h.Policies.HandleGet)
				r.With(auth.Require(auth.CapPolicyRead)).Get("/activities", h.Policies.HandleActivities)
				r.With(auth.Require(auth.CapPolicyRead)).Get("/completion", h.Policies.HandleCompletion)

				// capability depends on the requested status
				r.Put("/status", h.Policies.HandleUpdateStatus)

				r.Route("/actors/{type}", func(r chi.Router) {
					r.Use(auth.Require(auth.CapActorManage))
					r.Post("/", h.Actors.HandleAdd)
					r.Put("/{actorId}/complete", h.Actors.HandleComplete)
				})

				r.With(auth.Require(auth.CapPaymentRecord)).Post("/payments", h.Payments.HandleRecord)
				r.With(auth.Require(auth.CapPolicyRead)).Get("/payments", h.Payments.HandleList)
			})
		})
	})

	return r
}

// LoggerMiddleware logs HTTP requests
func LoggerMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info("http request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote_addr", r.RemoteAddr),
			)
		})
	}
}
