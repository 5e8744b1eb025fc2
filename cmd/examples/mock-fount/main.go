// Copyright (C) 2025 Planet Nine
//
// This file is part of fount-go.
//
// fount-go is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// fount-go is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with fount-go.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/planet-nine-app/fount-go/pkg/config"
	"github.com/planet-nine-app/fount-go/pkg/server"
	"go.uber.org/zap"
)

// mock-fount runs the in-memory fount service. Point any fount client at
// it with FOUNT_BASE_URL=http://<listenAddr>/.
func main() {
	cfg, err := config.Load(os.Getenv("FOUNT_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(
		server.WithLogger(logger),
		server.WithAssociatedKeySigning(true),
	)

	fmt.Printf("mock fount on http://%s/\n", cfg.ListenAddr)
	if err := srv.ListenAndServe(ctx, cfg.ListenAddr); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
