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

package protocol

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// User is the fount record for one identity. Clients never mutate it
// locally; every change goes through a signed request.
type User struct {
	UUID             string `json:"uuid"`
	PubKey           string `json:"pubKey"`
	MP               uint64 `json:"mp"`
	MaxMP            uint64 `json:"maxMP"`
	LastMPUsed       int64  `json:"lastMPUsed,omitempty"`
	MPRecalculatedAt int64  `json:"mpRecalculatedAt,omitempty"`
	Experience       uint64 `json:"experience"`
	ExperiencePool   uint64 `json:"experiencePool"`
	NineumCount      uint64 `json:"nineumCount"`
	Ordinal          uint64 `json:"ordinal"`

	// Keys maps associated user uuids to their public keys
	Keys map[string]string `json:"keys,omitempty"`
}

// Nineum is the ordered list of nineum unique ids owned by a user
type Nineum struct {
	Nineum []string `json:"nineum"`
}

// Count returns the number of nineum held
func (n *Nineum) Count() int {
	if n == nil {
		return 0
	}
	return len(n.Nineum)
}

// Transfer is a message record between two users
type Transfer struct {
	Timestamp    string `json:"timestamp"`
	SenderUUID   string `json:"senderUUID"`
	ReceiverUUID string `json:"receiverUUID"`
	Message      string `json:"message"`
}

// Prompt is the key-association record. The new* fields are produced and
// signed by the identity being associated.
type Prompt struct {
	Timestamp    string `json:"timestamp,omitempty"`
	NewTimestamp string `json:"newTimestamp"`
	NewUUID      string `json:"newUUID"`
	NewPubKey    string `json:"newPubKey"`
	NewSignature string `json:"newSignature"`
	Prompt       string `json:"prompt"`
}

// Messages is the list of messages sent or received by a user, oldest first
type Messages struct {
	Messages []Transfer `json:"messages"`
}

// SuccessResult is the generic {"success": bool} response
type SuccessResult struct {
	Success bool `json:"success"`
}

// ErrorResponse is the body fount sends when it rejects a request
type ErrorResponse struct {
	Error string `json:"error"`
}

// FlavorLength is the number of hex characters in a Flavor
const FlavorLength = 12

// Rarity bytes that grant permissions, highest first. Admin nineum are
// also called constellation nineum.
const (
	RarityGalactic   = "ff"
	RarityAdmin      = "fe"
	RarityScalar     = "fd"
	RarityStellation = "fc"
	RarityWorld      = "fb"
)

// Flavor describes a kind of nineum: six hex bytes for charge, direction,
// rarity, size, texture and shape.
type Flavor string

// FlavorParts are the six components of a Flavor
type FlavorParts struct {
	Charge    string `json:"charge"`
	Direction string `json:"direction"`
	Rarity    string `json:"rarity"`
	Size      string `json:"size"`
	Texture   string `json:"texture"`
	Shape     string `json:"shape"`
}

// NewFlavor assembles a Flavor from its parts
func NewFlavor(p FlavorParts) (Flavor, error) {
	f := Flavor(strings.ToLower(p.Charge + p.Direction + p.Rarity + p.Size + p.Texture + p.Shape))
	if err := f.Validate(); err != nil {
		return "", err
	}
	return f, nil
}

// Validate checks that f is exactly twelve hex characters
func (f Flavor) Validate() error {
	if len(f) != FlavorLength {
		return fmt.Errorf("invalid flavor %q: expected %d hex characters", string(f), FlavorLength)
	}
	if _, err := hex.DecodeString(string(f)); err != nil {
		return fmt.Errorf("invalid flavor %q: %w", string(f), err)
	}
	return nil
}

// Parts splits a valid Flavor into its components
func (f Flavor) Parts() (FlavorParts, error) {
	if err := f.Validate(); err != nil {
		return FlavorParts{}, err
	}
	s := string(f)
	return FlavorParts{
		Charge:    s[0:2],
		Direction: s[2:4],
		Rarity:    s[4:6],
		Size:      s[6:8],
		Texture:   s[8:10],
		Shape:     s[10:12],
	}, nil
}

func (f Flavor) String() string {
	return string(f)
}
