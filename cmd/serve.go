package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vendora-crm/research-service/internal/model"
	"github.com/vendora-crm/research-service/internal/research"
	"github.com/vendora-crm/research-service/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the research HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initService(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		r := chi.NewRouter()
		r.Use(chimiddleware.RequestID)
		r.Use(chimiddleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.Server.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", handleHealth)
		r.Post("/api/research", handleResearch(env))
		r.Get("/api/research/settings", handleGetSettings(env))
		r.Put("/api/research/settings", handlePutSettings(env))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleResearch runs one research request. Provider failures surface in
// the response's aiError field, not as HTTP errors.
func handleResearch(env *serviceEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.ResearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		resp, err := env.Service.Run(r.Context(), req)
		if err != nil {
			switch {
			case errors.Is(err, research.ErrMissingIdentity):
				writeError(w, http.StatusBadRequest, "customerId or companyName is required")
			case errors.Is(err, store.ErrNotFound):
				writeError(w, http.StatusNotFound, "customer not found")
			default:
				zap.L().Error("research run failed", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "research failed")
			}
			return
		}

		writeResponse(w, http.StatusOK, resp)
	}
}

func handleGetSettings(env *serviceEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings, err := env.Store.GetSettings(r.Context())
		if err != nil {
			zap.L().Error("settings read failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "settings read failed")
			return
		}
		if settings == nil {
			settings = &model.ResearchSettings{
				VendorSites:       cfg.Research.VendorSites,
				BrandSites:        cfg.Research.BrandSites,
				ExtraInstructions: cfg.Research.ExtraInstructions,
				DefaultScope:      cfg.Research.DefaultScope,
			}
		}
		writeResponse(w, http.StatusOK, settings)
	}
}

func handlePutSettings(env *serviceEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in model.ResearchSettings
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		saved, err := env.Store.SaveSettings(r.Context(), in)
		if err != nil {
			zap.L().Error("settings save failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "settings save failed")
			return
		}
		writeResponse(w, http.StatusOK, saved)
	}
}

func writeResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeResponse(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
