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
	"testing"

	"github.com/planet-nine-app/fount-go/pkg/canonical"
	"github.com/planet-nine-app/fount-go/pkg/protocol"
	"github.com/planet-nine-app/fount-go/pkg/sessionless"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockResolver is a mock implementation of AssociatedKeyResolver for testing
type mockResolver struct {
	keys       map[string]string
	associated map[string][]string
	assocErr   error
}

func (m *mockResolver) ResolvePublicKey(ctx context.Context, uuid string) (string, error) {
	key, ok := m.keys[uuid]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownUser, uuid)
	}
	return key, nil
}

func (m *mockResolver) ResolveAssociatedKeys(ctx context.Context, uuid string) ([]string, error) {
	if m.assocErr != nil {
		return nil, m.assocErr
	}
	return m.associated[uuid], nil
}

func newKey(t testing.TB) *sessionless.Secp256k1KeyPair {
	t.Helper()
	keyPair, err := sessionless.GenerateKeyPair()
	require.NoError(t, err)
	return keyPair
}

func sign(t testing.TB, keyPair *sessionless.Secp256k1KeyPair, message string) string {
	t.Helper()
	sig, err := keyPair.Sign([]byte(message))
	require.NoError(t, err)
	return sig
}

func TestDefaultVerifier_GrantRoundTrip(t *testing.T) {
	ctx := context.Background()
	u1 := newKey(t)
	v := NewVerifier(&mockResolver{keys: map[string]string{"U1": u1.PublicKey()}})

	req := &protocol.GrantRequest{
		Timestamp:       "1718000000000",
		UUID:            "U1",
		DestinationUUID: "U2",
		Amount:          200,
		Description:     "d",
	}
	req.Signature = sign(t, u1, "1718000000000U1U2200d")

	require.NoError(t, v.Grant(ctx, "U1", req))

	tampered := *req
	tampered.Amount = 2000
	err := v.Grant(ctx, "U1", &tampered)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSignatureMismatch)
}

func TestDefaultVerifier_UnknownUser(t *testing.T) {
	v := NewVerifier(&mockResolver{keys: map[string]string{}})

	err := v.GetUserByUUID(context.Background(), "ghost", "1", "ab")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestDefaultVerifier_MissingSignature(t *testing.T) {
	u1 := newKey(t)
	v := NewVerifier(&mockResolver{keys: map[string]string{"U1": u1.PublicKey()}})

	assert.ErrorIs(t, v.GetNineum(context.Background(), "U1", "1", ""), ErrMissingSignature)
	assert.ErrorIs(t, v.CreateUser(context.Background(), &protocol.CreateUserRequest{PubKey: u1.PublicKey()}), ErrMissingSignature)
}

func TestDefaultVerifier_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v := NewVerifier(&mockResolver{})
	err := v.VerifyWithKey(ctx, "02", "m", "ab")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefaultVerifier_NoSignatureVerifier(t *testing.T) {
	u1 := newKey(t)
	v := NewDefaultVerifier(NewDefaultKeySelector(&mockResolver{keys: map[string]string{"U1": u1.PublicKey()}}), nil)

	err := v.GetUserByUUID(context.Background(), "U1", "1", "ab")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestDefaultVerifier_Operations(t *testing.T) {
	ctx := context.Background()
	u1 := newKey(t)
	u2 := newKey(t)
	v := NewVerifier(&mockResolver{keys: map[string]string{"U1": u1.PublicKey(), "U2": u2.PublicKey()}})
	ts := "1718000000000"

	tests := []struct {
		name   string
		verify func(sig string) error
		msg    string
		signer *sessionless.Secp256k1KeyPair
	}{
		{
			name: "create user",
			verify: func(sig string) error {
				return v.CreateUser(ctx, &protocol.CreateUserRequest{Timestamp: ts, PubKey: u1.PublicKey(), Signature: sig})
			},
			msg:    canonical.CreateUser(ts, u1.PublicKey()),
			signer: u1,
		},
		{
			name:   "get user by uuid",
			verify: func(sig string) error { return v.GetUserByUUID(ctx, "U1", ts, sig) },
			msg:    canonical.GetUserByUUID(ts, "U1"),
			signer: u1,
		},
		{
			name:   "get user by public key",
			verify: func(sig string) error { return v.GetUserByPublicKey(ctx, u2.PublicKey(), ts, sig) },
			msg:    canonical.GetUserByPublicKey(ts, u2.PublicKey()),
			signer: u2,
		},
		{
			name: "transfer nineum",
			verify: func(sig string) error {
				return v.TransferNineum(ctx, "U1", &protocol.TransferRequest{
					Timestamp: ts, DestinationUUID: "U2", NineumUniqueIDs: []string{"a", "b"}, Currency: "usd", Signature: sig,
				})
			},
			msg:    canonical.TransferNineum(ts, "U1", "U2", []string{"a", "b"}, 0, "usd"),
			signer: u1,
		},
		{
			name: "delete user",
			verify: func(sig string) error {
				return v.DeleteUser(ctx, &protocol.DeleteUserRequest{Timestamp: ts, UUID: "U2", Signature: sig})
			},
			msg:    canonical.DeleteUser(ts, "U2"),
			signer: u2,
		},
		{
			name: "grant nineum",
			verify: func(sig string) error {
				return v.GrantNineum(ctx, "U1", &protocol.GrantNineumRequest{
					Timestamp: ts, ToUserUUID: "U2", Quantity: 3, Signature: sig,
					FlavorParts: protocol.FlavorParts{Charge: "01", Direction: "02", Rarity: "03", Size: "04", Texture: "05", Shape: "06"},
				})
			},
			msg:    canonical.GrantNineum(ts, "U1", "U2", "010203040506", 3),
			signer: u1,
		},
		{
			name: "grant admin nineum",
			verify: func(sig string) error {
				return v.GrantAdminNineum(ctx, "U1", &protocol.GrantAdminNineumRequest{Timestamp: ts, ToUserUUID: "U2", Signature: sig})
			},
			msg:    canonical.GrantAdminNineum(ts, "U1"),
			signer: u1,
		},
		{
			name: "grant galactic nineum",
			verify: func(sig string) error {
				return v.GrantGalacticNineum(ctx, "U1", &protocol.GrantGalacticNineumRequest{Timestamp: ts, Galaxy: "28880014", Signature: sig})
			},
			msg:    canonical.GrantGalacticNineum(ts, "U1", "28880014"),
			signer: u1,
		},
		{
			name: "post message",
			verify: func(sig string) error {
				return v.PostMessage(ctx, &protocol.MessageRequest{Timestamp: ts, SenderUUID: "U2", ReceiverUUID: "U1", Message: "hi", Signature: sig})
			},
			msg:    canonical.PostMessage(ts, "U2", "U1", "hi"),
			signer: u2,
		},
		{
			name: "get messages",
			verify: func(sig string) error {
				return v.GetMessages(ctx, "U2", ts, sig)
			},
			msg:    canonical.GetMessages(ts, "U2"),
			signer: u2,
		},
		{
			name: "sign prompt",
			verify: func(sig string) error {
				return v.SignPrompt(ctx, &protocol.SignPromptRequest{Timestamp: ts, UUID: "U2", PubKey: u2.PublicKey(), Prompt: "p", Signature: sig})
			},
			msg:    canonical.SignPrompt(ts, "U2", u2.PublicKey(), "p"),
			signer: u2,
		},
		{
			name: "delete key",
			verify: func(sig string) error {
				return v.DeleteKey(ctx, "U1", "U2", &protocol.DeleteKeyRequest{Timestamp: ts, Signature: sig})
			},
			msg:    canonical.DeleteKey(ts, "U2", "U1"),
			signer: u1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, tt.verify(sign(t, tt.signer, tt.msg)))

			err := tt.verify(sign(t, tt.signer, tt.msg+"x"))
			assert.ErrorIs(t, err, ErrSignatureMismatch)
		})
	}
}

func TestDefaultVerifier_Associate(t *testing.T) {
	ctx := context.Background()
	owner := newKey(t)
	newcomer := newKey(t)
	v := NewVerifier(&mockResolver{keys: map[string]string{"U1": owner.PublicKey(), "U2": newcomer.PublicKey()}})

	message := canonical.Associate("100", "U2", newcomer.PublicKey(), "p")
	req := &protocol.AssociateRequest{
		Timestamp:    "101",
		NewTimestamp: "100",
		NewUUID:      "U2",
		NewPubKey:    newcomer.PublicKey(),
		NewSignature: sign(t, newcomer, message),
		Prompt:       "p",
		Signature:    sign(t, owner, message),
	}
	require.NoError(t, v.Associate(ctx, "U1", req))

	forged := *req
	forged.NewSignature = sign(t, owner, message)
	err := v.Associate(ctx, "U1", &forged)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "new key")
}

func TestDefaultVerifier_Spell(t *testing.T) {
	ctx := context.Background()
	caster := newKey(t)
	gateway := newKey(t)
	v := NewVerifier(&mockResolver{keys: map[string]string{"U1": caster.PublicKey(), "G1": gateway.PublicKey()}})

	spell := &protocol.Spell{Timestamp: "1", Spell: "test", CasterUUID: "U1", TotalCost: 400, MP: true, Ordinal: 2}
	spell.CasterSignature = sign(t, caster, canonical.SpellCaster("1", "test", "U1", 400, true, 2))
	spell.Gateways = []protocol.Gateway{{
		Timestamp: "2", UUID: "G1", PubKey: gateway.PublicKey(), MinimumCost: 20, Ordinal: 1,
		Signature: sign(t, gateway, canonical.Gateway("2", "G1", 20, 1)),
	}}

	require.NoError(t, v.Spell(ctx, spell))

	spell.Gateways[0].MinimumCost = 10
	err := v.Spell(ctx, spell)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway 0")

	spell.MP = false
	err = v.Spell(ctx, spell)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "caster")
}

func TestDefaultVerifier_SpellGatewayUsesRegisteredKey(t *testing.T) {
	ctx := context.Background()
	caster := newKey(t)
	victim := newKey(t)
	intruder := newKey(t)
	v := NewVerifier(&mockResolver{keys: map[string]string{"U1": caster.PublicKey(), "G1": victim.PublicKey()}})

	spell := &protocol.Spell{Timestamp: "1", Spell: "test", CasterUUID: "U1", TotalCost: 400, MP: true, Ordinal: 2}
	spell.CasterSignature = sign(t, caster, canonical.SpellCaster("1", "test", "U1", 400, true, 2))
	spell.Gateways = []protocol.Gateway{{
		Timestamp: "2", UUID: "G1", PubKey: intruder.PublicKey(), MinimumCost: 20, Ordinal: 1,
		Signature: sign(t, intruder, canonical.Gateway("2", "G1", 20, 1)),
	}}

	err := v.Spell(ctx, spell)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSignatureMismatch)
	assert.Contains(t, err.Error(), "gateway 0")

	spell.Gateways[0].UUID = "G9"
	spell.Gateways[0].Signature = sign(t, intruder, canonical.Gateway("2", "G9", 20, 1))
	err = v.Spell(ctx, spell)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestDefaultKeySelector(t *testing.T) {
	ctx := context.Background()
	resolver := &mockResolver{
		keys:       map[string]string{"U1": "k1"},
		associated: map[string][]string{"U1": {"k2", "k1", ""}},
	}

	keys, err := NewDefaultKeySelector(resolver).SelectKeys(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, []string{"k1"}, keys)

	keys, err = NewDefaultKeySelector(resolver).IncludeAssociated(true).SelectKeys(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, []string{"k1", "k2"}, keys)

	resolver.assocErr = errors.New("store offline")
	keys, err = NewDefaultKeySelector(resolver).IncludeAssociated(true).SelectKeys(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, []string{"k1"}, keys)

	_, err = NewDefaultKeySelector(resolver).SelectKeys(ctx, "U9")
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestDefaultVerifier_AssociatedKeySigns(t *testing.T) {
	ctx := context.Background()
	owner := newKey(t)
	delegate := newKey(t)
	resolver := &mockResolver{
		keys:       map[string]string{"U1": owner.PublicKey()},
		associated: map[string][]string{"U1": {delegate.PublicKey()}},
	}
	sig := sign(t, delegate, canonical.GetNineum("1", "U1"))

	strict := NewVerifier(resolver)
	assert.ErrorIs(t, strict.GetNineum(ctx, "U1", "1", sig), ErrSignatureMismatch)

	lenient := NewDefaultVerifier(NewDefaultKeySelector(resolver).IncludeAssociated(true), NewSessionlessVerifier())
	assert.NoError(t, lenient.GetNineum(ctx, "U1", "1", sig))
}
