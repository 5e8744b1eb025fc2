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
	"github.com/planet-nine-app/fount-go/pkg/protocol"
	"github.com/planet-nine-app/fount-go/pkg/server"
	"github.com/planet-nine-app/fount-go/pkg/sessionless"
	"go.uber.org/zap"
)

// This example moves mp and nineum between two users and resolves a spell
// relayed through a gateway
func main() {
	fmt.Println("=== Grant and Transfer Example ===")

	ctx := context.Background()
	cfg, err := config.Load(os.Getenv("FOUNT_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv(config.EnvBaseURL) == "" {
		baseURL, stop, err := server.NewServer().Start("127.0.0.1:0")
		if err != nil {
			log.Fatalf("Failed to start local fount: %v", err)
		}
		defer func() { _ = stop(ctx) }()
		cfg.BaseURL = baseURL
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	// Step 1: Two identities
	fmt.Println("\nStep 1: Creating Alice and Bob...")
	alice, aliceUser := newParticipant(ctx, cfg, logger, "alice")
	bob, bobUser := newParticipant(ctx, cfg, logger, "bob")

	// Step 2: MP grant
	fmt.Println("\nStep 2: Alice grants Bob 200 mp...")
	updated, err := alice.Grant(ctx, aliceUser.UUID, bobUser.UUID, 200, "welcome")
	if err != nil {
		log.Fatalf("Grant failed: %v", err)
	}
	fmt.Printf("  ✓ Alice now has %d mp\n", updated.MP)

	// Step 3: Claim a galaxy and mint nineum
	fmt.Println("\nStep 3: Alice claims a galaxy and mints nineum...")
	if _, err := alice.GrantGalacticNineum(ctx, aliceUser.UUID, protocol.DefaultGalaxy); err != nil {
		log.Fatalf("Galaxy claim failed: %v", err)
	}
	flavor, err := protocol.NewFlavor(protocol.FlavorParts{
		Charge: "01", Direction: "02", Rarity: "03", Size: "04", Texture: "05", Shape: "06",
	})
	if err != nil {
		log.Fatalf("Invalid flavor: %v", err)
	}
	if _, err := alice.GrantNineum(ctx, aliceUser.UUID, aliceUser.UUID, flavor, 3); err != nil {
		log.Fatalf("Nineum grant failed: %v", err)
	}

	nineum, err := alice.GetNineum(ctx, aliceUser.UUID)
	if err != nil {
		log.Fatalf("Failed to list nineum: %v", err)
	}
	for _, id := range nineum.Nineum {
		fmt.Printf("  %s permission=%q\n", id, protocol.Permission(id))
	}

	// Step 4: Transfer everything
	fmt.Println("\nStep 4: Alice transfers all nineum to Bob...")
	updated, err = alice.TransferNineum(ctx, aliceUser.UUID, bobUser.UUID, nineum.Nineum, 0, "")
	if err != nil {
		log.Fatalf("Transfer failed: %v", err)
	}
	fmt.Printf("  ✓ Alice holds %d nineum\n", updated.NineumCount)

	// Step 5: Bob casts a spell that Alice relays
	fmt.Println("\nStep 5: Bob casts a spell through Alice's gateway...")
	spell := &protocol.Spell{Spell: "joinup", CasterUUID: bobUser.UUID, TotalCost: 50, MP: true, Ordinal: 1}
	if err := bob.SignSpell(ctx, spell); err != nil {
		log.Fatalf("Failed to sign spell: %v", err)
	}
	gateway := protocol.Gateway{UUID: aliceUser.UUID, MinimumCost: 10, Ordinal: 1}
	if err := alice.SignGateway(ctx, &gateway); err != nil {
		log.Fatalf("Failed to sign gateway: %v", err)
	}
	spell.Gateways = append(spell.Gateways, gateway)

	result, err := alice.Resolve(ctx, spell)
	if err != nil {
		log.Fatalf("Resolve failed: %v", err)
	}
	fmt.Printf("  ✓ Spell resolved: success=%v\n", result.Success)

	fmt.Println("\n=== Example completed successfully! ===")
}

func newParticipant(ctx context.Context, cfg *config.Config, logger *zap.Logger, name string) (*client.Client, *protocol.User) {
	keyPair, err := sessionless.GenerateKeyPair()
	if err != nil {
		log.Fatalf("Failed to generate key for %s: %v", name, err)
	}
	c, err := client.New(keyPair,
		client.WithBaseURL(cfg.BaseURL),
		client.WithLogger(logger.Named(name)),
	)
	if err != nil {
		log.Fatalf("Failed to create client for %s: %v", name, err)
	}
	user, err := c.CreateUser(ctx)
	if err != nil {
		log.Fatalf("Failed to create user %s: %v", name, err)
	}
	fmt.Printf("  %s: %s (%d mp)\n", name, user.UUID, user.MP)
	return c, user
}
