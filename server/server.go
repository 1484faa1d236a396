package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rushteam/homerec/logging"
)

// 请求头：会话与登录用户由上游网关注入。
const (
	HeaderSessionID = "X-Session-ID"
	HeaderUserID    = "X-User-ID"
)

// DefaultMaxK 参数 k 的默认上限。
const DefaultMaxK = 50

// Options 是 HTTP 层配置。
type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// RateLimit 每个客户端 IP 每分钟请求上限，<= 0 不限流
	RateLimit int
	// MaxK 参数 k 的上限，<= 0 时使用 DefaultMaxK
	MaxK int
}

// Pinger 由可探活的后端实现（例如 RedisStore）。
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server 是推荐服务的 HTTP 入口。
type Server struct {
	svc  *Service
	opts Options

	// probes 为 /readyz 依次检查的依赖
	probes map[string]Pinger

	http *http.Server
}

func New(svc *Service, opts Options) *Server {
	if opts.MaxK <= 0 {
		opts.MaxK = DefaultMaxK
	}
	return &Server{svc: svc, opts: opts, probes: make(map[string]Pinger)}
}

// AddProbe 注册 /readyz 检查项。
func (s *Server) AddProbe(name string, p Pinger) {
	if p != nil {
		s.probes[name] = p
	}
}

// Handler 构建 chi 路由。
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(accessLog)
		r.Use(rateLimit(s.opts.RateLimit))

		r.Get("/recommendations", s.handleRecommendations)
		r.Post("/history", s.handleRecordHistory)
		r.Get("/products/{id}/similar", s.handleSimilar)
	})
	return r
}

// ListenAndServe 启动 HTTP 服务，ctx 取消后在 ShutdownTimeout 内优雅退出。
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.http = &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.opts.Addr).Msg("http server listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	logging.Info().Dur("timeout", timeout).Msg("http server shutting down")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
