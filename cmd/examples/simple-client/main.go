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

	"github.com/planet-nine-app/fount-go/pkg/config"
	"github.com/planet-nine-app/fount-go/pkg/server"
	"github.com/planet-nine-app/fount-go/pkg/transport"
)

func main() {
	fmt.Println("fount-go - Simple Client Example")
	fmt.Println("================================")

	ctx := context.Background()

	// Load settings from FOUNT_* variables
	fmt.Println("\n1. Loading configuration...")
	cfg, err := config.Load(os.Getenv("FOUNT_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Without FOUNT_BASE_URL, run against an in-process fount
	if os.Getenv(config.EnvBaseURL) == "" {
		baseURL, stop, err := server.NewServer().Start("127.0.0.1:0")
		if err != nil {
			log.Fatalf("Failed to start local fount: %v", err)
		}
		defer func() { _ = stop(ctx) }()
		cfg.BaseURL = baseURL
	}
	fmt.Printf("   fount: %s\n", cfg.BaseURL)

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	fmt.Println("\n2. Creating client...")
	c, err := cfg.NewClient(logger)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	fmt.Printf("   Public key: %s\n", c.PublicKey())

	fmt.Println("\n3. Creating user...")
	user, err := c.CreateUser(ctx)
	if err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}
	fmt.Printf("   UUID: %s\n", user.UUID)
	fmt.Printf("   MP:   %d/%d\n", user.MP, user.MaxMP)

	fmt.Println("\n4. Fetching user by public key...")
	same, err := c.GetUserByPublicKey(ctx, c.PublicKey())
	if err != nil {
		log.Fatalf("Failed to fetch user: %v", err)
	}
	fmt.Printf("   ✓ Same user: %v\n", same.UUID == user.UUID)

	fmt.Println("\n5. Deleting user...")
	if _, err := c.DeleteUser(ctx, user.UUID); err != nil {
		log.Fatalf("Failed to delete user: %v", err)
	}

	_, err = c.GetUserByUUID(ctx, user.UUID)
	if transport.IsRemoteRejected(err) {
		fmt.Printf("   ✓ User is gone (status %d)\n", transport.StatusCode(err))
	} else {
		log.Fatalf("Expected rejection after delete, got: %v", err)
	}

	fmt.Println("\n✅ Example completed successfully!")
}
