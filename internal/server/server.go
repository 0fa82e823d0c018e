package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"thinkclear-backend/internal/ai"
	"thinkclear-backend/internal/analytics"
	"thinkclear-backend/internal/analyze"
	"thinkclear-backend/internal/auth"
	"thinkclear-backend/internal/config"
	"thinkclear-backend/internal/journal"
	"thinkclear-backend/internal/prefs"
	"thinkclear-backend/internal/sanitize"
)

const shutdownTimeout = 10 * time.Second

type Deps struct {
	Config    *config.Config
	Log       *zap.Logger
	AI        ai.Completer
	Sanitizer *sanitize.Sanitizer
	Storage   *Storage
}

// NewHandler wires every route behind CORS, panic recovery and request logging.
func NewHandler(d Deps) http.Handler {
	secret := []byte(d.Config.Auth.JWTSecret)
	mw := auth.New(secret)
	st := d.Storage
	log := d.Log

	mux := http.NewServeMux()

	// Health endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// ----- ANALYZE -----
	an := analyze.New(d.AI, d.Sanitizer, st.Journal, st.Events, log.Named("analyze"))
	mux.HandleFunc("POST /api/analyze", mw.Optional(an.ServeHTTP))

	// ----- SESSION -----
	mux.HandleFunc("POST /session", auth.CreateSessionHandler(secret, d.Config.Auth.SessionTTL, log))
	mux.HandleFunc("DELETE /session", mw.Wrap(auth.DeleteSessionHandler(st.Eraser, log)))

	// ----- JOURNAL -----
	mux.HandleFunc("GET /journal", mw.Wrap(journal.ListHandler(st.Journal, log)))
	mux.HandleFunc("PATCH /journal/{id}", mw.Wrap(journal.PatchHandler(st.Journal, log)))
	mux.HandleFunc("DELETE /journal/{id}", mw.Wrap(journal.DeleteHandler(st.Journal, log)))

	// ----- PREFS -----
	mux.HandleFunc("GET /prefs", mw.Wrap(prefs.GetHandler(st.Prefs, log)))
	mux.HandleFunc("PUT /prefs", mw.Wrap(prefs.PutHandler(st.Prefs, log)))

	// ----- ANALYTICS -----
	mux.HandleFunc("POST /events", mw.Optional(analytics.EventsHandler(st.Events, log)))

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins: d.Config.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Content-Type", "Authorization", "Idempotency-Key", "X-Source-Event-Key",
			"X-Platform", "X-App-Version", "X-Session-Id", "X-Device-Locale", "X-Request-Id",
		},
		AllowCredentials: true,
	})

	return c.Handler(recoverer(log, requestLogger(log, mux)))
}

// Run serves on ln until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, ln net.Listener, h http.Handler, log *zap.Logger) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("API server is running", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	return g.Wait()
}
