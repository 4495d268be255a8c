/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"token-ledger-go/internal/common"
	"token-ledger-go/internal/config"
	"token-ledger-go/internal/reconciler"
	"token-ledger-go/internal/server"

	"go.uber.org/zap"
)

func main() {
	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	zap.L().Info("Starting token ledger server")

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	auth, err := server.NewTokenIssuer(cfg.Auth)
	if err != nil {
		zap.L().Fatal("Failed to initialize token issuer", zap.Error(err))
	}

	var rec *reconciler.Reconciler
	if cfg.Reconciler.Enabled {
		rec, err = reconciler.New(reconciler.Config{
			Source:      services.Ledger,
			Interval:    cfg.Reconciler.Interval,
			Concurrency: cfg.Reconciler.Concurrency,
		})
		if err != nil {
			zap.L().Fatal("Failed to initialize reconciler", zap.Error(err))
		}
		rec.Start(ctx)
	}

	router := server.NewRouter(cfg.Server, server.NewHandler(services.Ledger), auth)
	httpServer := server.NewHTTPServer(cfg.Server, router)

	serverErr := make(chan error, 1)
	go func() {
		zap.L().Info("HTTP server listening", zap.String("addr", cfg.Server.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		zap.L().Info("Shutdown signal received", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			zap.L().Error("HTTP server failed", zap.Error(err))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zap.L().Warn("Forced shutdown after timeout", zap.Error(err))
	} else {
		zap.L().Info("HTTP server stopped gracefully")
	}

	if rec != nil {
		done := make(chan struct{})
		go func() {
			rec.Stop()
			close(done)
		}()
		select {
		case <-done:
		case <-shutdownCtx.Done():
			zap.L().Warn("Reconciler did not stop before timeout")
		}
	}
}
