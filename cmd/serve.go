package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/civicsnap/civic-cli/internal/resilience"
	"github.com/civicsnap/civic-cli/internal/scorer"
	"github.com/civicsnap/civic-cli/pkg/openstates"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the civic snapshot HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env, cfg.Server.AllowedOrigins),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func newRouter(env *appEnv, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/snapshot/{zip}", func(w http.ResponseWriter, r *http.Request) {
			snap, err := env.service.Snapshot(r.Context(), chi.URLParam(r, "zip"))
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, snap)
		})

		r.Get("/geocode/{zip}", func(w http.ResponseWriter, r *http.Request) {
			res, err := env.service.Geocode(r.Context(), chi.URLParam(r, "zip"))
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, res)
		})

		r.Get("/bills", func(w http.ResponseWriter, r *http.Request) {
			state := r.URL.Query().Get("state")
			if state == "" {
				writeJSON(w, http.StatusBadRequest, errorBody(resilience.KindInvalidArg, "state query parameter is required"))
				return
			}
			issues, err := env.service.Issues(r.Context(), state)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, issues)
		})

		r.Get("/legislators", func(w http.ResponseWriter, r *http.Request) {
			zip := r.URL.Query().Get("zip")
			state := r.URL.Query().Get("state")
			switch {
			case zip != "":
				loc, err := env.service.Geocode(r.Context(), zip)
				if err != nil {
					writeError(w, err)
					return
				}
				reps, err := env.service.Legislators(r.Context(), loc.Lat, loc.Lng)
				if err != nil {
					writeError(w, err)
					return
				}
				writeJSON(w, http.StatusOK, reps)
			case state != "":
				jurisdiction, err := openstates.JurisdictionID(state)
				if err != nil {
					writeError(w, err)
					return
				}
				resp, err := env.legislature.PeopleByJurisdiction(r.Context(), jurisdiction, parseInt(r, "per_page"), parseInt(r, "page"))
				if err != nil {
					writeError(w, err)
					return
				}
				writeJSON(w, http.StatusOK, scorer.Rank(resp.Results))
			default:
				writeJSON(w, http.StatusBadRequest, errorBody(resilience.KindInvalidArg, "zip or state query parameter is required"))
			}
		})
	})

	return r
}

func parseInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}

// statusForKind maps the error taxonomy onto HTTP statuses for API callers.
func statusForKind(kind string) int {
	switch kind {
	case resilience.KindInvalidArg:
		return http.StatusBadRequest
	case resilience.KindNotFound:
		return http.StatusNotFound
	case resilience.KindRateLimited:
		return http.StatusTooManyRequests
	case resilience.KindUpstream, resilience.KindDecode:
		return http.StatusBadGateway
	case resilience.KindTransport:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(kind, message string) map[string]string {
	return map[string]string{"kind": kind, "error": message}
}

func writeError(w http.ResponseWriter, err error) {
	kind := resilience.Kind(err)
	writeJSON(w, statusForKind(kind), errorBody(kind, err.Error()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("write response", zap.Error(err))
	}
}

// requestID tags every request with a UUID echoed in the response headers.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		zap.L().Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
