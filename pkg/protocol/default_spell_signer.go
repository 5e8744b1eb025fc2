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
	"context"
	"fmt"

	"github.com/planet-nine-app/fount-go/pkg/canonical"
	"github.com/planet-nine-app/fount-go/pkg/sessionless"
	"github.com/planet-nine-app/fount-go/pkg/signer"
)

// DefaultSpellSigner implements SpellSigner interface
type DefaultSpellSigner struct {
	signer signer.MessageSigner
}

// NewDefaultSpellSigner creates a new DefaultSpellSigner.
// s may be nil for a verify-only signer.
func NewDefaultSpellSigner(s signer.MessageSigner) *DefaultSpellSigner {
	return &DefaultSpellSigner{
		signer: s,
	}
}

// SignSpell sets the spell's timestamp (when empty) and casterSignature
func (d *DefaultSpellSigner) SignSpell(ctx context.Context, spell *Spell) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if spell == nil {
		return fmt.Errorf("spell cannot be nil")
	}

	if d.signer == nil {
		return fmt.Errorf("signer cannot be nil")
	}

	if spell.Spell == "" || spell.CasterUUID == "" {
		return fmt.Errorf("invalid spell: spell name and casterUUID are required")
	}

	signed, err := d.signer.SignWithOptions(ctx, func(ts string) string {
		return canonical.SpellCaster(ts, spell.Spell, spell.CasterUUID, spell.TotalCost, spell.MP, spell.Ordinal)
	}, &signer.SigningOptions{Timestamp: spell.Timestamp})
	if err != nil {
		return fmt.Errorf("failed to sign spell: %w", err)
	}

	spell.Timestamp = signed.Timestamp
	spell.CasterSignature = signed.Signature
	return nil
}

// SignGateway sets the gateway's pubKey, timestamp (when empty) and signature
func (d *DefaultSpellSigner) SignGateway(ctx context.Context, gateway *Gateway) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if gateway == nil {
		return fmt.Errorf("gateway cannot be nil")
	}

	if d.signer == nil {
		return fmt.Errorf("signer cannot be nil")
	}

	if gateway.UUID == "" {
		return fmt.Errorf("invalid gateway: uuid is required")
	}

	signed, err := d.signer.SignWithOptions(ctx, func(ts string) string {
		return canonical.Gateway(ts, gateway.UUID, gateway.MinimumCost, gateway.Ordinal)
	}, &signer.SigningOptions{Timestamp: gateway.Timestamp})
	if err != nil {
		return fmt.Errorf("failed to sign gateway: %w", err)
	}

	gateway.Timestamp = signed.Timestamp
	gateway.PubKey = d.signer.PublicKey()
	gateway.Signature = signed.Signature
	return nil
}

// VerifySpell checks the caster signature against casterPubKey
func (d *DefaultSpellSigner) VerifySpell(ctx context.Context, spell *Spell, casterPubKey string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if spell == nil {
		return fmt.Errorf("spell cannot be nil")
	}

	if spell.CasterSignature == "" {
		return fmt.Errorf("spell has no caster signature")
	}

	message := canonical.SpellCaster(spell.Timestamp, spell.Spell, spell.CasterUUID, spell.TotalCost, spell.MP, spell.Ordinal)
	if err := sessionless.Verify(spell.CasterSignature, []byte(message), casterPubKey); err != nil {
		return fmt.Errorf("caster signature verification failed: %w", err)
	}
	return nil
}

// VerifyGateway checks a gateway signature against the gateway's own pubKey
func (d *DefaultSpellSigner) VerifyGateway(ctx context.Context, gateway *Gateway) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if gateway == nil {
		return fmt.Errorf("gateway cannot be nil")
	}

	if gateway.Signature == "" {
		return fmt.Errorf("gateway %s has no signature", gateway.UUID)
	}

	message := canonical.Gateway(gateway.Timestamp, gateway.UUID, gateway.MinimumCost, gateway.Ordinal)
	if err := sessionless.Verify(gateway.Signature, []byte(message), gateway.PubKey); err != nil {
		return fmt.Errorf("gateway %s signature verification failed: %w", gateway.UUID, err)
	}
	return nil
}

// VerifyGateways checks every gateway in order and stops at the first failure
func (d *DefaultSpellSigner) VerifyGateways(ctx context.Context, spell *Spell) error {
	for i := range spell.Gateways {
		if err := d.VerifyGateway(ctx, &spell.Gateways[i]); err != nil {
			return fmt.Errorf("gateway %d: %w", i, err)
		}
	}
	return nil
}
