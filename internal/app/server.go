package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"subscription-tracker/internal/metrics"
	"subscription-tracker/internal/models/config"
	"subscription-tracker/internal/web"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Server adds the HTTP API on top of Core.
var Server = fx.Options(
	fx.Provide(
		web.NewHandler,
		newRouter,
		newHTTPServer,
	),
	fx.Invoke(func(*http.Server) {}),
)

func newRouter(h *web.Handler, m *metrics.Metrics, cfg *config.Config, log *zap.Logger) http.Handler {
	return web.NewRouter(h, m, log, cfg.HTTP.RequestTimeout)
}

func newHTTPServer(lc fx.Lifecycle, cfg *config.Config, handler http.Handler, log *zap.Logger) *http.Server {
	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("🚀 server listening",
				zap.String("addr", srv.Addr),
				zap.String("api", "http://localhost"+srv.Addr+"/api/subscriptions"))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("🛑 shutting down http server")
			return srv.Shutdown(ctx)
		},
	})
	return srv
}
