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

package verifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/planet-nine-app/fount-go/pkg/canonical"
	"github.com/planet-nine-app/fount-go/pkg/protocol"
)

// DefaultVerifier recomputes the canonical message of each fount operation
// from the transmitted fields and checks the attached signature.
type DefaultVerifier struct {
	selector          KeySelector
	signatureVerifier SignatureVerifier
}

// NewDefaultVerifier creates a verifier from its parts
func NewDefaultVerifier(selector KeySelector, signatureVerifier SignatureVerifier) *DefaultVerifier {
	return &DefaultVerifier{
		selector:          selector,
		signatureVerifier: signatureVerifier,
	}
}

// NewVerifier creates a verifier that accepts only each user's own key
func NewVerifier(resolver KeyResolver) *DefaultVerifier {
	return NewDefaultVerifier(NewDefaultKeySelector(resolver), NewSessionlessVerifier())
}

// VerifyForUser implements MessageVerifier
func (v *DefaultVerifier) VerifyForUser(ctx context.Context, uuid, message, signature string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	if signature == "" {
		return ErrMissingSignature
	}
	if v.signatureVerifier == nil {
		return errors.New("signature verifier not configured")
	}

	keys, err := v.selector.SelectKeys(ctx, uuid)
	if err != nil {
		return err
	}

	var lastErr error
	for _, key := range keys {
		if lastErr = v.signatureVerifier.VerifyMessage(message, signature, key); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("%w for %s: %v", ErrSignatureMismatch, uuid, lastErr)
}

// VerifyWithKey implements MessageVerifier
func (v *DefaultVerifier) VerifyWithKey(ctx context.Context, pubKey, message, signature string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	if signature == "" {
		return ErrMissingSignature
	}
	if v.signatureVerifier == nil {
		return errors.New("signature verifier not configured")
	}

	if err := v.signatureVerifier.VerifyMessage(message, signature, pubKey); err != nil {
		return fmt.Errorf("%w: %v", ErrSignatureMismatch, err)
	}
	return nil
}

// CreateUser verifies a user creation against the key being registered
func (v *DefaultVerifier) CreateUser(ctx context.Context, req *protocol.CreateUserRequest) error {
	return v.VerifyWithKey(ctx, req.PubKey, canonical.CreateUser(req.Timestamp, req.PubKey), req.Signature)
}

// GetUserByUUID verifies a query-signed user lookup
func (v *DefaultVerifier) GetUserByUUID(ctx context.Context, uuid, timestamp, signature string) error {
	return v.VerifyForUser(ctx, uuid, canonical.GetUserByUUID(timestamp, uuid), signature)
}

// GetUserByPublicKey verifies a lookup signed by the key being looked up
func (v *DefaultVerifier) GetUserByPublicKey(ctx context.Context, pubKey, timestamp, signature string) error {
	return v.VerifyWithKey(ctx, pubKey, canonical.GetUserByPublicKey(timestamp, pubKey), signature)
}

// GetNineum verifies a nineum listing
func (v *DefaultVerifier) GetNineum(ctx context.Context, uuid, timestamp, signature string) error {
	return v.VerifyForUser(ctx, uuid, canonical.GetNineum(timestamp, uuid), signature)
}

// Grant verifies an mp grant from uuid
func (v *DefaultVerifier) Grant(ctx context.Context, uuid string, req *protocol.GrantRequest) error {
	message := canonical.Grant(req.Timestamp, uuid, req.DestinationUUID, req.Amount, req.Description)
	return v.VerifyForUser(ctx, uuid, message, req.Signature)
}

// TransferNineum verifies a nineum transfer from uuid
func (v *DefaultVerifier) TransferNineum(ctx context.Context, uuid string, req *protocol.TransferRequest) error {
	message := canonical.TransferNineum(req.Timestamp, uuid, req.DestinationUUID, req.NineumUniqueIDs, req.Price, req.Currency)
	return v.VerifyForUser(ctx, uuid, message, req.Signature)
}

// DeleteUser verifies a deletion of the user named in the body
func (v *DefaultVerifier) DeleteUser(ctx context.Context, req *protocol.DeleteUserRequest) error {
	return v.VerifyForUser(ctx, req.UUID, canonical.DeleteUser(req.Timestamp, req.UUID), req.Signature)
}

// GrantNineum verifies a flavored nineum grant. The flavor is the plain
// concatenation of the transmitted parts.
func (v *DefaultVerifier) GrantNineum(ctx context.Context, uuid string, req *protocol.GrantNineumRequest) error {
	p := req.FlavorParts
	flavor := p.Charge + p.Direction + p.Rarity + p.Size + p.Texture + p.Shape
	message := canonical.GrantNineum(req.Timestamp, uuid, req.ToUserUUID, flavor, req.Quantity)
	return v.VerifyForUser(ctx, uuid, message, req.Signature)
}

// GrantAdminNineum verifies an admin nineum grant
func (v *DefaultVerifier) GrantAdminNineum(ctx context.Context, uuid string, req *protocol.GrantAdminNineumRequest) error {
	return v.VerifyForUser(ctx, uuid, canonical.GrantAdminNineum(req.Timestamp, uuid), req.Signature)
}

// GrantGalacticNineum verifies a galaxy claim
func (v *DefaultVerifier) GrantGalacticNineum(ctx context.Context, uuid string, req *protocol.GrantGalacticNineumRequest) error {
	return v.VerifyForUser(ctx, uuid, canonical.GrantGalacticNineum(req.Timestamp, uuid, req.Galaxy), req.Signature)
}

// PostMessage verifies a message against its sender
func (v *DefaultVerifier) PostMessage(ctx context.Context, req *protocol.MessageRequest) error {
	message := canonical.PostMessage(req.Timestamp, req.SenderUUID, req.ReceiverUUID, req.Message)
	return v.VerifyForUser(ctx, req.SenderUUID, message, req.Signature)
}

// GetMessages verifies a message listing
func (v *DefaultVerifier) GetMessages(ctx context.Context, uuid, timestamp, signature string) error {
	return v.VerifyForUser(ctx, uuid, canonical.GetMessages(timestamp, uuid), signature)
}

// SignPrompt verifies a prompt signed with the key named in the body
func (v *DefaultVerifier) SignPrompt(ctx context.Context, req *protocol.SignPromptRequest) error {
	message := canonical.SignPrompt(req.Timestamp, req.UUID, req.PubKey, req.Prompt)
	return v.VerifyWithKey(ctx, req.PubKey, message, req.Signature)
}

// Associate verifies both halves of a key association: the outer
// signature by uuid and the new identity's own signature
func (v *DefaultVerifier) Associate(ctx context.Context, uuid string, req *protocol.AssociateRequest) error {
	message := canonical.Associate(req.NewTimestamp, req.NewUUID, req.NewPubKey, req.Prompt)
	if err := v.VerifyForUser(ctx, uuid, message, req.Signature); err != nil {
		return err
	}
	if err := v.VerifyWithKey(ctx, req.NewPubKey, message, req.NewSignature); err != nil {
		return fmt.Errorf("new key: %w", err)
	}
	return nil
}

// DeleteKey verifies removal of an association by uuid
func (v *DefaultVerifier) DeleteKey(ctx context.Context, uuid, associatedUUID string, req *protocol.DeleteKeyRequest) error {
	return v.VerifyForUser(ctx, uuid, canonical.DeleteKey(req.Timestamp, associatedUUID, uuid), req.Signature)
}

// Spell verifies the caster signature with the caster's registered key and
// every gateway signature with the key registered for the gateway's uuid.
// The pubKey a gateway carries is informational only.
func (v *DefaultVerifier) Spell(ctx context.Context, spell *protocol.Spell) error {
	message := canonical.SpellCaster(spell.Timestamp, spell.Spell, spell.CasterUUID, spell.TotalCost, spell.MP, spell.Ordinal)
	if err := v.VerifyForUser(ctx, spell.CasterUUID, message, spell.CasterSignature); err != nil {
		return fmt.Errorf("caster: %w", err)
	}

	for i, g := range spell.Gateways {
		message := canonical.Gateway(g.Timestamp, g.UUID, g.MinimumCost, g.Ordinal)
		if err := v.VerifyForUser(ctx, g.UUID, message, g.Signature); err != nil {
			return fmt.Errorf("gateway %d (%s): %w", i, g.UUID, err)
		}
	}
	return nil
}

var _ MessageVerifier = (*DefaultVerifier)(nil)
