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

	"github.com/planet-nine-app/fount-go/pkg/client"
	"github.com/planet-nine-app/fount-go/pkg/config"
	"github.com/planet-nine-app/fount-go/pkg/server"
	"github.com/planet-nine-app/fount-go/pkg/sessionless"
	"github.com/planet-nine-app/fount-go/pkg/transport"
)

// This example exchanges signed messages between two fount users and
// shows that a message cannot be sent on someone else's behalf
func main() {
	fmt.Println("=== Messaging Example ===")

	ctx := context.Background()
	baseURL := os.Getenv(config.EnvBaseURL)
	if baseURL == "" {
		url, stop, err := server.NewServer().Start("127.0.0.1:0")
		if err != nil {
			log.Fatalf("Failed to start local fount: %v", err)
		}
		defer func() { _ = stop(ctx) }()
		baseURL = url
	}

	names := []string{"alice", "bob"}
	clients := make(map[string]*client.Client)
	uuids := make(map[string]string)
	for _, name := range names {
		keyPair, err := sessionless.GenerateKeyPair()
		if err != nil {
			log.Fatalf("Failed to generate key: %v", err)
		}
		c, err := client.New(keyPair, client.WithBaseURL(baseURL))
		if err != nil {
			log.Fatalf("Failed to create client: %v", err)
		}
		user, err := c.CreateUser(ctx)
		if err != nil {
			log.Fatalf("Failed to create %s: %v", name, err)
		}
		clients[name] = c
		uuids[name] = user.UUID
		fmt.Printf("  %s joined as %s\n", name, user.UUID)
	}

	conversation := []struct{ from, to, text string }{
		{"alice", "bob", "hi bob"},
		{"bob", "alice", "hey alice, got your mp"},
		{"alice", "bob", "spend it well"},
	}

	fmt.Println("\nSending messages...")
	for _, m := range conversation {
		result, err := clients[m.from].PostMessage(ctx, uuids[m.from], uuids[m.to], m.text)
		if err != nil {
			log.Fatalf("Message failed: %v", err)
		}
		fmt.Printf("  ✓ %s -> %s: %q (success=%v)\n", m.from, m.to, m.text, result.Success)
	}

	fmt.Println("\nBob tries to speak for Alice...")
	_, err := clients["bob"].PostMessage(ctx, uuids["alice"], uuids["bob"], "forged")
	if transport.IsRemoteRejected(err) {
		fmt.Printf("  ✓ Rejected with status %d\n", transport.StatusCode(err))
	} else {
		log.Fatalf("Expected rejection, got: %v", err)
	}

	fmt.Println("\n=== Example completed successfully! ===")
}
