package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/dedupe-cli/internal/match"
	"github.com/sells-group/dedupe-cli/internal/model"
	"github.com/sells-group/dedupe-cli/internal/resilience"
	"github.com/sells-group/dedupe-cli/internal/review"
	"github.com/sells-group/dedupe-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an HTTP API for scans and resolutions",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newServeMux(st, cfg.Match.Workspace),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newServeMux builds the API routes over the given store.
func newServeMux(st store.Store, defaultWorkspace string) *http.ServeMux {
	mux := http.NewServeMux()

	// Reviewers are rebuilt per request, so the cross-request in-flight
	// guard lives at the server level: two resolutions touching the same
	// record must not race the store.
	guard := review.NewGuard()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "store unreachable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /scan", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Workspace string `json:"workspace"`
			MinScore  int    `json:"min_score"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if req.Workspace == "" {
			req.Workspace = defaultWorkspace
		}

		contacts, err := st.ListContacts(r.Context(), req.Workspace)
		if err != nil {
			zap.L().Error("scan failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "scan failed"})
			return
		}

		pairs, stats := match.Scan(contacts)
		pairs = filterPairs(pairs, req.MinScore)

		writeJSON(w, http.StatusOK, map[string]any{
			"workspace": req.Workspace,
			"records":   stats.Records,
			"pairs":     pairs,
		})
	})

	mux.HandleFunc("POST /resolve", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Workspace string `json:"workspace"`
			A         string `json:"a"`
			B         string `json:"b"`
			Action    string `json:"action"`
			Keep      string `json:"keep"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if req.A == "" || req.B == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "a and b are required"})
			return
		}
		if req.Workspace == "" {
			req.Workspace = defaultWorkspace
		}

		contacts, err := st.ListContacts(r.Context(), req.Workspace)
		if err != nil {
			zap.L().Error("resolve scan failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "scan failed"})
			return
		}

		if req.Keep == "" && req.Action != "keep" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "keep is required for merge and delete"})
			return
		}

		key := model.NewPairKey(req.A, req.B)
		if req.Action != "keep" && !keepInPair(key, req.Keep) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "keep must name one of the pair records"})
			return
		}

		release, err := guard.Acquire(req.A, req.B)
		if err != nil {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "record has a resolution in flight"})
			return
		}
		defer release()

		rev := review.NewReviewer(st, match.FindDuplicates(contacts))
		if _, ok := rev.State().Find(key); !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "pair is not a duplicate candidate"})
			return
		}

		switch req.Action {
		case "merge":
			err = rev.Merge(r.Context(), key, req.Keep)
		case "delete":
			loser := key.Lo
			if loser == req.Keep {
				loser = key.Hi
			}
			err = rev.DeleteOne(r.Context(), key, loser)
		case "keep":
			rev.KeepBoth(key)
		default:
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "action must be merge, delete, or keep"})
			return
		}

		switch {
		case errors.Is(err, review.ErrRecordBusy):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "record has a resolution in flight"})
		case err != nil && resilience.IsTransient(err):
			zap.L().Warn("resolution hit transient store failure",
				zap.String("a", req.A),
				zap.String("b", req.B),
				zap.Error(err),
			)
			writeJSON(w, http.StatusBadGateway, map[string]any{"error": "store unavailable", "retryable": true})
		case err != nil:
			zap.L().Error("resolution failed",
				zap.String("a", req.A),
				zap.String("b", req.B),
				zap.Error(err),
			)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "resolution failed"})
		default:
			writeJSON(w, http.StatusOK, map[string]string{"status": "resolved", "action": req.Action})
		}
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
