package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/chrisvdg/peeps/app"
	"github.com/chrisvdg/peeps/cache"
	"github.com/chrisvdg/peeps/texture"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 5 * time.Second

// StateSource provides the app state as of the last frame, safe to call from any goroutine
type StateSource interface {
	Snapshot() app.Snapshot
}

// AssetSource provides the decoded assets without requesting them
type AssetSource interface {
	Peek(id string) (*texture.Texture, bool)
	Stats() cache.Stats
}

// BacklogSource provides the amount of queued jobs per lane
type BacklogSource interface {
	Pending() (data, auth int)
}

// New creates a new inspection server instance
func New(c *Config, state StateSource, assets AssetSource, backlog BacklogSource) (*Server, error) {
	if !c.Enabled() {
		return nil, errors.New("No listen address provided")
	}

	return &Server{
		c: c,
		h: newHandlers(state, assets, backlog),
	}, nil
}

// Server represents a server instance
type Server struct {
	c *Config
	h *handlers
}

// Handler returns the routes of the server
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/status", s.h.StatusHandler).Methods("GET")
	r.HandleFunc("/assets/{id}", s.h.AssetHandler).Methods("GET")

	return r
}

// ListenAndServe listens for new requests and serves them until ctx is done or a listener fails
func (s *Server) ListenAndServe(ctx context.Context) {
	handler := s.Handler()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if !s.c.TLSOnly && s.c.ListenAddr != "" {
		go listenAndServe(ctx, cancel, s.c.ListenAddr, handler)
	}

	if s.c.tlsEnabled() {
		go listenAndServeTLS(ctx, cancel, s.c.TLSListenAddr, s.c.TLS, handler)
	}

	<-ctx.Done()
}

// listenAndServe serves a plain http webserver
func listenAndServe(ctx context.Context, cancel func(), addr string, handler http.Handler) {
	defer cancel()
	srv := &http.Server{Addr: addr, Handler: handler}
	go shutdownOnDone(ctx, srv)

	log.Infof("http server listening on: http://%s", getAddrString(addr))
	err := srv.ListenAndServe()
	if err != http.ErrServerClosed {
		log.Error(err)
	}
}

// listenAndServeTLS serves a tls webserver
func listenAndServeTLS(ctx context.Context, cancel func(), addr string, tls *TLSConfig, handler http.Handler) {
	defer cancel()
	srv := &http.Server{Addr: addr, Handler: handler}
	go shutdownOnDone(ctx, srv)

	log.Infof("https server listening on: https://%s", getAddrString(addr))
	err := srv.ListenAndServeTLS(tls.CertFile, tls.KeyFile)
	if err != http.ErrServerClosed {
		log.Error(err)
	}
}

func shutdownOnDone(ctx context.Context, srv *http.Server) {
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	if err != nil {
		log.WithError(err).Warn("failed to shut down http server")
	}
}

func getAddrString(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = fmt.Sprintf("0.0.0.0%s", addr)
	}
	return addr
}
