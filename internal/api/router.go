package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/wonny/fixconv/internal/api/handlers"
	"github.com/wonny/fixconv/internal/scheduler"
	"github.com/wonny/fixconv/pkg/config"
	"github.com/wonny/fixconv/pkg/logger"
	"github.com/wonny/fixconv/pkg/metrics"
)

// RouterDeps groups everything the router wires together
type RouterDeps struct {
	Config  *config.Config
	Fix     *handlers.FixHandler
	Stream  *handlers.StreamHandler
	Metrics *metrics.Metrics
	Limiter Limiter // nil disables rate limiting
	Logger  *logger.Logger

	// Scheduler, when set, adds each job's last run to /health
	Scheduler *scheduler.Scheduler
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(deps RouterDeps) http.Handler {
	r := mux.NewRouter()

	// Health check and metrics stay outside the rate limit
	r.HandleFunc("/health", healthCheckHandler(deps.Scheduler)).Methods("GET")
	if deps.Config.MetricsEnabled {
		r.Handle("/metrics", deps.Metrics.Handler()).Methods("GET")
	}

	api := r.PathPrefix("/").Subrouter()

	// Encode
	api.HandleFunc("/fix", deps.Fix.Fix).Methods("POST")
	api.HandleFunc("/convert-to-fix-deparsed", deps.Fix.ConvertAndExplain).Methods("POST")

	// Explain
	api.HandleFunc("/explain", deps.Fix.Explain).Methods("POST")
	api.HandleFunc("/explain", deps.Fix.ExplainView).Methods("GET")
	api.HandleFunc("/fields", deps.Fix.Fields).Methods("GET")
	api.HandleFunc("/ws/explain", deps.Stream.Explain).Methods("GET")

	if deps.Limiter != nil {
		api.Use(rateLimitMiddleware(deps.Limiter, deps.Logger, deps.Metrics))
	}

	// Apply middleware
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(deps.Logger, deps.Metrics))
	r.Use(recoveryMiddleware(deps.Logger))

	c := cors.New(cors.Options{
		AllowedOrigins: deps.Config.API.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
	})

	return c.Handler(r)
}

// OriginChecker accepts requests without an Origin header and those from allowed origins
func OriginChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return nil
		}
		set[o] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status  string                         `json:"status"`
	Service string                         `json:"service"`
	Jobs    map[string]scheduler.JobResult `json:"jobs,omitempty"`
}

// healthCheckHandler returns server health status.
// Jobs that have not run yet are left out.
func healthCheckHandler(sched *scheduler.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{Status: "ok", Service: "fixconv"}

		if sched != nil {
			for _, name := range sched.Jobs() {
				history, err := sched.GetJobHistory(name)
				if err != nil {
					continue
				}
				if latest, ok := history.Latest(); ok {
					if resp.Jobs == nil {
						resp.Jobs = make(map[string]scheduler.JobResult)
					}
					resp.Jobs[name] = latest
				}
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
