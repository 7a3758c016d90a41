package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"jobfair-live/internal/handler"
	"jobfair-live/internal/redis"
	"jobfair-live/internal/server"
	"jobfair-live/internal/websocket"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and WebSocket API",
	RunE:  runServe,
}

type handlerSet struct {
	queue       *handler.QueueHandler
	call        *handler.CallHandler
	interpreter *handler.InterpreterHandler
	presence    *handler.PresenceHandler
	health      *handler.HealthHandler
	websocket   *websocket.Handler
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, l, err := loadConfig()
	if err != nil {
		return err
	}
	defer l.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.callSvc.SyncActiveCalls(ctx); err != nil {
		l.Logger.Warn("serve: sync active calls", zap.Error(err))
	}

	h := a.handlers()
	srv := server.New(cfg, l)
	srv.SetupRoutes(&server.Handlers{
		Queue:       h.queue,
		Call:        h.call,
		Interpreter: h.interpreter,
		Presence:    h.presence,
		Health:      h.health,
		WebSocket:   h.websocket,
	}, a.auth, a.limiter)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.hub.Run(gctx) })
	g.Go(func() error { return srv.Run(gctx) })
	if a.redis != nil {
		bridge := websocket.NewRedisBridge(redis.NewSubscriber(a.redis), a.hub, l)
		g.Go(func() error { return bridge.Run(gctx) })
	}
	if cfg.StaleSweepInterval > 0 {
		g.Go(func() error {
			a.interpreters.RunSweeper(gctx, cfg.StaleSweepInterval)
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
