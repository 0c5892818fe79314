// Package api serves the HTTP surface of the world: a public state snapshot
// and the vote endpoint. Both map straight onto the engine's two operations.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"syscall"
	"time"

	"github.com/pixil98/go-log"

	"colonyworld/internal/world"
)

// Server is the HTTP worker. It owns nothing but the listener; all world
// semantics live behind the engine.
type Server struct {
	port   uint16
	engine *world.Engine
}

func NewServer(port uint16, engine *world.Engine) *Server {
	return &Server{
		port:   port,
		engine: engine,
	}
}

func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/world/state", s.handleState)
	mux.HandleFunc("POST /api/world/vote", s.handleVote)

	svr := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           withCORS(withRequestLogger(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// done signals that Start is returning (either success or failure)
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := svr.Shutdown(shutdownCtx); err != nil {
				log.GetLogger(ctx).WithError(err).Error("shutting down http server")
			}
		case <-done:
			// Start returned (likely with error) - nothing to stop
		}
	}()

	log.GetLogger(ctx).Infof("http server listening on %s", svr.Addr)

	err := svr.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("port %d is already in use (another server running?)", s.port)
		}
		return fmt.Errorf("serving http on port %d: %w", s.port, err)
	}

	return nil
}

// withCORS allows browser clients on other origins to read the public state.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func withRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.GetLogger(r.Context()).Infof("%s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}
