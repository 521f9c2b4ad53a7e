package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/suggest-cli/internal/engine"
	"github.com/sells-group/suggest-cli/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the suggestions API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		r := buildRouter(env.Engine)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go drainOnDone(ctx, srv)

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

const drainTimeout = 15 * time.Second

// buildRouter assembles the API routes around an engine.
func buildRouter(eng *engine.Engine) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/funds/{fundID}", func(r chi.Router) {
		r.Get("/suggestions", handleSuggestions(eng))
		r.Post("/candidates", handleAddCandidate(eng))
		r.Post("/suggestions/accept", handleDecision(eng, true))
		r.Post("/suggestions/reject", handleDecision(eng, false))
	})
	return r
}

// drainOnDone waits for the signal context to cancel and drains in-flight
// requests under a fresh timeout; shutting down with the canceled context
// would abort them instead.
func drainOnDone(ctx context.Context, srv *http.Server) {
	<-ctx.Done()
	zap.L().Info("shutting down server")
	drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := srv.Shutdown(drainCtx); err != nil {
		zap.L().Warn("server shutdown", zap.Error(err))
	}
}

func handleSuggestions(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		fundID := chi.URLParam(req, "fundID")
		result, err := eng.Reconcile(req.Context(), fundID)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func handleAddCandidate(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		fundID := chi.URLParam(req, "fundID")

		var c model.ServiceCandidate
		if err := json.NewDecoder(req.Body).Decode(&c); err != nil {
			writeJSON(w, http.StatusBadRequest, errBody("invalid request body"))
			return
		}
		if c.RowID == "" || c.ColumnID == "" {
			writeJSON(w, http.StatusBadRequest, errBody("row_id and column_id are required"))
			return
		}

		if err := eng.AddServiceCandidate(req.Context(), fundID, c); err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
	}
}

// decisionRequest carries everything needed to key the decision at all
// three ledger forms, so the client echoes back the suggestion identity.
type decisionRequest struct {
	ID             string           `json:"id"`
	RowID          string           `json:"row_id"`
	ColumnID       string           `json:"column_id"`
	SuggestedValue any              `json:"suggested_value"`
	Provenance     model.Provenance `json:"provenance"`
}

func handleDecision(eng *engine.Engine, accept bool) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		fundID := chi.URLParam(req, "fundID")

		var body decisionRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, errBody("invalid request body"))
			return
		}
		if body.RowID == "" || body.ColumnID == "" {
			writeJSON(w, http.StatusBadRequest, errBody("row_id and column_id are required"))
			return
		}

		s := model.Suggestion{
			ID:             body.ID,
			RowID:          body.RowID,
			ColumnID:       body.ColumnID,
			SuggestedValue: body.SuggestedValue,
			Provenance:     body.Provenance,
		}

		var err error
		if accept {
			err = eng.Accept(req.Context(), fundID, s)
		} else {
			err = eng.Reject(req.Context(), fundID, s)
		}
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
	}
}

// writeEngineError maps engine errors onto HTTP statuses. Grid rejections
// pass the upstream detail through; a decision-record failure after a
// successful grid edit gets its own conflict status so the client knows
// the cell changed but the suggestion may reappear.
func writeEngineError(w http.ResponseWriter, err error) {
	var applyErr *engine.ApplyError
	switch {
	case eris.Is(err, engine.ErrMissingFund):
		writeJSON(w, http.StatusBadRequest, errBody("fund id required"))
	case eris.Is(err, engine.ErrNoStore):
		writeJSON(w, http.StatusServiceUnavailable, errBody("no store configured"))
	case eris.Is(err, engine.ErrDecisionNotRecorded):
		writeJSON(w, http.StatusConflict, map[string]string{
			"error":  "decision not recorded",
			"detail": "the grid edit succeeded but the decision write failed; the suggestion may reappear until retried",
		})
	case eris.As(err, &applyErr):
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":       "grid rejected update",
			"grid_status": applyErr.Status,
			"grid_code":   applyErr.Code,
		})
	default:
		zap.L().Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errBody("internal error"))
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func errBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// requestLogger logs one line per request through the global zap logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)
		zap.L().Info("request",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
