package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zustellwerk/gebiet-cli/internal/model"
	"github.com/zustellwerk/gebiet-cli/internal/store"
	"github.com/zustellwerk/gebiet-cli/internal/tracker"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the shared progress API",
	Long:  "Exposes street progress and the latest plan over HTTP so volunteers can mark streets done from their phones.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		// The street list changes rarely; fetch it once so /api/progress
		// does not hit Overpass per request. The server still works
		// without it, it just cannot attach house counts.
		var streets []model.Street
		if cfg.Place != "" {
			if streets, err = fetchStreets(ctx); err != nil {
				zap.L().Warn("street list unavailable, serving store-only progress", zap.Error(err))
				streets = nil
			}
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(st, tracker.New(st), streets),
			ReadHeaderTimeout: 10 * time.Second,
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

func newRouter(st store.Store, tr *tracker.Tracker, streets []model.Street) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Admin-Token"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/plan", func(w http.ResponseWriter, r *http.Request) {
		rec, err := st.LatestPlan(r.Context(), cfg.Place)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if rec == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no plan stored"})
			return
		}
		writeJSON(w, http.StatusOK, rec)
	})

	r.Get("/api/progress", func(w http.ResponseWriter, r *http.Request) {
		if len(streets) > 0 {
			statuses, sum, err := tr.Snapshot(r.Context(), streets)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"streets": statuses, "summary": sum})
			return
		}

		entries, err := st.ListProgress(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"streets": entries})
	})

	r.Post("/api/streets/{name}/done", func(w http.ResponseWriter, r *http.Request) {
		name, err := url.PathUnescape(chi.URLParam(r, "name"))
		if err != nil || name == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "street name is required"})
			return
		}

		var body struct {
			By string `json:"by"`
		}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&body)
		}

		if err := tr.MarkDone(r.Context(), name, body.By); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"street": name, "status": "done"})
	})

	r.Post("/api/streets/{name}/undo", func(w http.ResponseWriter, r *http.Request) {
		name, err := url.PathUnescape(chi.URLParam(r, "name"))
		if err != nil || name == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "street name is required"})
			return
		}

		if err := tr.Reopen(r.Context(), name); err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"street": name, "status": "open"})
	})

	r.Post("/api/admin/reset", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Server.AdminToken == "" || r.Header.Get("X-Admin-Token") != cfg.Server.AdminToken {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "admin token required"})
			return
		}
		n, err := tr.Reset(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"cleared": n})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, err error) {
	zap.L().Error("request failed", zap.Error(err))
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
