package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/finease/finease-backend/config"
	"github.com/finease/finease-backend/engine"
	"github.com/finease/finease-backend/internal/metrics"
	"github.com/finease/finease-backend/internal/store"
	"github.com/finease/finease-backend/provider"
	"github.com/finease/finease-backend/rag/session/inmemory"
	"github.com/finease/finease-backend/tools/webfetch"
	"github.com/finease/finease-backend/tools/webfetch/cache"
)

// Run builds all dependencies from the configuration, registers the routes
// and serves until interrupted.
func Run(cfg *config.Config) error {
	if cfg.Mongo.URL == "" {
		return fmt.Errorf("mongo.url is required (set MONGO_URL)")
	}

	e := newEcho(cfg.Server.CORSOrigins)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	st, err := store.New(ctx, cfg.Mongo.URL, cfg.Mongo.Database)
	cancel()
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = st.Close(shutdownCtx)
	}()

	prov, err := provider.NewProvider(cfg.Provider)
	if err != nil {
		return err
	}
	prov = metrics.MeterProvider(prov)

	fetcher, closeFetcher, err := webfetch.NewFetcher(cfg.Fetcher)
	if err != nil {
		return err
	}
	defer closeFetcher()

	var pageCache cache.Cache
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedis(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer rc.Close()
		pageCache = rc
	} else {
		pageCache = cache.NewMemory()
	}
	fetcher = cache.Wrap(fetcher, pageCache, cfg.Fetcher.CacheTTL)

	sessions := inmemory.NewStore(cfg.Sessions.TTL, cfg.Sessions.Capacity)
	defer sessions.Stop()

	svc := engine.NewService(prov, fetcher, sessions, cfg.RAG)

	api := e.Group("/api")
	(&RAGHandler{Service: svc}).Register(api)
	(&ChatHandler{Store: st, Respond: DefaultResponder}).Register(api.Group("/chat"))

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(cfg.Server.Address)
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-sigCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}

// newEcho assembles the router, CORS allow-list and the unified JSON error
// handler. Split out so handler tests can run against the same setup.
func newEcho(corsOrigins []string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	httpLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		httpLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]string{"detail": msg})
		}
	}

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders:     []string{"*"},
		AllowCredentials: true,
	}))

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "FinEase Web-RAG Backend is running!"})
	})
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}
