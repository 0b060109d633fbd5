// Package server runs the HTTP and gRPC listeners until the context is
// cancelled, then drains them.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shashiranjanraj/shopfront/config"
	"github.com/shashiranjanraj/shopfront/internal/kernel"
	"github.com/shashiranjanraj/shopfront/pkg/grpc"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// Options tune Start.
type Options struct {
	// Worker also runs the queue consumer in this process. Required with
	// the memory queue driver, where nothing else can read the queue.
	Worker bool
}

// Start boots the application and serves until ctx is done.
func Start(ctx context.Context, opts Options) error {
	app, err := kernel.Boot(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	handler, err := app.Handler()
	if err != nil {
		return err
	}
	return Run(ctx, app, handler, ":"+config.AppPort(), config.GRPCPort(), opts)
}

// Run serves handler on httpAddr and gRPC health on grpcPort. An empty
// grpcPort skips gRPC.
func Run(ctx context.Context, app *kernel.App, handler http.Handler, httpAddr, grpcPort string, opts Options) error {
	srv := &http.Server{
		Addr:              httpAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	var grpcSrv *grpc.Server
	if grpcPort != "" {
		s, err := grpc.Start(grpcPort)
		if err != nil {
			return err
		}
		grpcSrv = s
	}

	workerDone := make(chan error, 1)
	if opts.Worker {
		go func() { workerDone <- app.Consumer().Run(ctx) }()
	} else {
		close(workerDone)
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http: server started", "addr", httpAddr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("http: shutdown requested")
	case err, ok := <-serveErr:
		if ok {
			runErr = fmt.Errorf("http: serve: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http: shutdown", "error", err)
	}
	grpcSrv.Stop()

	if err := <-workerDone; err != nil && runErr == nil {
		runErr = fmt.Errorf("queue worker: %w", err)
	}
	logger.Info("server stopped")
	return runErr
}
