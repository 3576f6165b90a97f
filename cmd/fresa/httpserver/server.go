// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpserver

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/vechain/fresa/metrics"
)

// requestBodyLimit caps request bodies, a batch of instructions fits well below it.
const requestBodyLimit = 200 * 1024

// Server serves one handler on its listener until the context of Run is done.
type Server struct {
	name     string
	path     string
	listener net.Listener
	srv      *http.Server
}

func newServer(name, addr, path string, handler http.Handler) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen %v addr [%v]", name, addr)
	}
	return &Server{
		name:     name,
		path:     path,
		listener: listener,
		srv:      &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second},
	}, nil
}

// NewAPIServer listens on addr. Requests taking longer than timeout are aborted with 503, zero disables it.
func NewAPIServer(addr string, handler http.Handler, timeout time.Duration) (*Server, error) {
	if timeout > 0 {
		handler = http.TimeoutHandler(handler, timeout, "request timed out")
	}
	return newServer("API", addr, "/", limitBody(handler, requestBodyLimit))
}

// NewMetricsServer exposes the prometheus registry under /metrics.
func NewMetricsServer(addr string) (*Server, error) {
	router := mux.NewRouter()
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	return newServer("metrics", addr, "/metrics", handlers.CompressHandler(router))
}

// URL returns the url the server is reachable on.
func (s *Server) URL() string {
	return "http://" + s.listener.Addr().String() + s.path
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.srv.Serve(s.listener); !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrapf(err, "serve %v", s.name)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func limitBody(h http.Handler, n int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, n)
		h.ServeHTTP(w, r)
	})
}
