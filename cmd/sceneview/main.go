// Sceneview draws a demo scene, either in a window or headless against the
// in-memory backend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Faultbox/retain3d/internal/config"
	"github.com/Faultbox/retain3d/internal/logger"
)

var flagTexture = flag.String("texture", "", "Image applied to the ground (.tga, .png, .bmp or .jpg)")

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== retain3d sceneview ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Enabled {
		srv := serveMetrics(cfg.Metrics.ListenAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	v := &viewer{cfg: cfg, texturePath: *flagTexture, changes: make(chan *config.Config, 1)}
	if path := config.Path(); path != "" {
		go func() {
			if err := config.Watch(ctx, path, v.queueConfig); err != nil {
				logger.Warn("config watch stopped", zap.String("path", path), zap.Error(err))
			}
		}()
	}

	switch {
	case cfg.Viewer.Headless:
		err = v.runHeadless(ctx)
	case cfg.Viewer.Overlay:
		err = v.runOverlay(ctx)
	default:
		err = v.runWindowed(ctx)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("viewer failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("viewer closed normally")
}

func serveMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics endpoint stopped", zap.String("addr", addr), zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", addr))
	return srv
}
