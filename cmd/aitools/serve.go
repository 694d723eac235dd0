package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v3"

	"github.com/ashwinyue/aitools-hub/internal/handler"
	"github.com/ashwinyue/aitools-hub/internal/middleware"
	"github.com/ashwinyue/aitools-hub/internal/router"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API server",
		Action: func(ctx context.Context, c *cli.Command) error {
			return runServer(ctx, c.String("config"))
		},
	}
}

func runServer(ctx context.Context, configPath string) error {
	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	// 设置 Gin 模式
	gin.SetMode(a.cfg.Server.Mode)

	handlers := handler.NewHandlers(a.svc, a.db)
	resolver := middleware.NewTokenResolver(a.svc.Auth, a.cfg.Auth.CookieName)
	r := router.SetupRouter(handlers, resolver, a.log, a.cfg)

	srv := &http.Server{
		Addr:              a.cfg.Server.GetAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(a.cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(a.cfg.Server.WriteTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server starting", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		a.log.Info("shutting down server", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	// 优雅关闭
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(a.cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	a.log.Info("server exited")
	return nil
}
