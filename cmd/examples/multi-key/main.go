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

// This example associates a second device key with a user, uses it, and
// removes it again
func main() {
	fmt.Println("=== Multi-Key Example ===")

	ctx := context.Background()
	baseURL := os.Getenv(config.EnvBaseURL)
	if baseURL == "" {
		url, stop, err := server.NewServer(server.WithAssociatedKeySigning(true)).Start("127.0.0.1:0")
		if err != nil {
			log.Fatalf("Failed to start local fount: %v", err)
		}
		defer func() { _ = stop(ctx) }()
		baseURL = url
	}

	// Step 1: Owner and device identities
	fmt.Println("\nStep 1: Creating owner and device identities...")
	owner := mustClient(baseURL)
	device := mustClient(baseURL)

	ownerUser, err := owner.CreateUser(ctx)
	if err != nil {
		log.Fatalf("Failed to create owner: %v", err)
	}
	deviceUser, err := device.CreateUser(ctx)
	if err != nil {
		log.Fatalf("Failed to create device: %v", err)
	}
	fmt.Printf("  owner:  %s\n", ownerUser.UUID)
	fmt.Printf("  device: %s\n", deviceUser.UUID)

	// Step 2: The device registers and signs a prompt
	const prompt = "8675309"
	fmt.Println("\nStep 2: Device signs the prompt...")
	if _, err := device.SignPrompt(ctx, deviceUser.UUID, prompt); err != nil {
		log.Fatalf("SignPrompt failed: %v", err)
	}
	signedPrompt, err := device.NewPrompt(ctx, deviceUser.UUID, prompt)
	if err != nil {
		log.Fatalf("NewPrompt failed: %v", err)
	}
	fmt.Printf("  ✓ Prompt %s signed at %s\n", signedPrompt.Prompt, signedPrompt.NewTimestamp)

	// Step 3: The owner accepts it
	fmt.Println("\nStep 3: Owner associates the device key...")
	user, err := owner.Associate(ctx, ownerUser.UUID, signedPrompt)
	if err != nil {
		log.Fatalf("Associate failed: %v", err)
	}
	for assoc, key := range user.Keys {
		fmt.Printf("  ✓ %s -> %s\n", assoc, key)
	}

	// Step 4: The device key now signs for the owner
	fmt.Println("\nStep 4: Device reads the owner's record...")
	if _, err := device.GetUserByUUID(ctx, ownerUser.UUID); err != nil {
		log.Fatalf("Associated key was not accepted: %v", err)
	}
	fmt.Println("  ✓ Accepted")

	// Step 5: Remove the association
	fmt.Println("\nStep 5: Owner removes the device key...")
	if _, err := owner.DeleteKey(ctx, ownerUser.UUID, deviceUser.UUID); err != nil {
		log.Fatalf("DeleteKey failed: %v", err)
	}
	_, err = device.GetUserByUUID(ctx, ownerUser.UUID)
	if transport.IsRemoteRejected(err) {
		fmt.Println("  ✓ Device key no longer accepted")
	} else {
		log.Fatalf("Expected rejection, got: %v", err)
	}

	fmt.Println("\n=== Example completed successfully! ===")
}

func mustClient(baseURL string) *client.Client {
	keyPair, err := sessionless.GenerateKeyPair()
	if err != nil {
		log.Fatalf("Failed to generate key: %v", err)
	}
	c, err := client.New(keyPair, client.WithBaseURL(baseURL))
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	return c
}
