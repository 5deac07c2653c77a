package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/eol-research/internal/model"
	"github.com/sells-group/eol-research/internal/research"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the research engine over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		eng, err := initEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           newRouter(eng.Orchestrator),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("serving", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func newRouter(orch *research.Orchestrator) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Post("/api/research", func(w http.ResponseWriter, req *http.Request) {
		var pq model.ProductQuery
		if err := json.NewDecoder(req.Body).Decode(&pq); err != nil || pq.ProductID == "" {
			http.Error(w, "invalid request: productId required", http.StatusBadRequest)
			return
		}
		result, err := orch.Research(req.Context(), pq)
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, result)
	})

	// Streams NDJSON: one progress event per line, then a final line with
	// the full result list.
	r.Post("/api/research/batch", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Products    []model.ProductQuery `json:"products"`
			Concurrency int                  `json:"concurrency"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil || len(body.Products) == 0 {
			http.Error(w, "invalid request: products required", http.StatusBadRequest)
			return
		}
		if body.Concurrency < 1 {
			body.Concurrency = cfg.Research.Concurrency
		}

		w.Header().Set("Content-Type", "application/x-ndjson")
		w.WriteHeader(http.StatusOK)
		flusher, _ := w.(http.Flusher)
		enc := json.NewEncoder(w)

		results, err := orch.ResearchBatch(req.Context(), body.Products, body.Concurrency, func(p research.Progress) {
			_ = enc.Encode(map[string]any{"event": "progress", "progress": p})
			if flusher != nil {
				flusher.Flush()
			}
		})
		if err != nil {
			_ = enc.Encode(map[string]any{"event": "error", "error": err.Error()})
			return
		}
		_ = enc.Encode(map[string]any{"event": "done", "results": results})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("write response", zap.Error(err))
	}
}
