package watch

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/bioimagesuiteweb/bisresample/config"
)

// Server exposes Metrics over HTTP at <prefix>/metrics.
type Server struct {
	srv  *http.Server
	path string
	log  *zap.Logger
}

func NewServer(conf config.Metrics, m *Metrics, log *zap.Logger) *Server {
	path := fmt.Sprintf("%s/metrics", conf.URLPrefix)
	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())
	return &Server{
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", conf.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		path: path,
		log:  log,
	}
}

// Run serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.log.Info("metrics server started", zap.String("addr", ln.Addr().String()+s.path))

	errc := make(chan error, 1)
	go func() { errc <- s.srv.Serve(ln) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.srv.Shutdown(shutdownCtx)
	if serr := <-errc; serr != nil && !stderrors.Is(serr, http.ErrServerClosed) && err == nil {
		err = serr
	}
	s.log.Info("metrics server stopped")
	return err
}

func (s *Server) String() string {
	return "metrics::" + s.srv.Addr + s.path
}
