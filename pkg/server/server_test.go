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

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/planet-nine-app/fount-go/pkg/canonical"
	"github.com/planet-nine-app/fount-go/pkg/protocol"
	"github.com/planet-nine-app/fount-go/pkg/sessionless"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testIdentity struct {
	keyPair *sessionless.Secp256k1KeyPair
	uuid    string
}

func (id *testIdentity) sign(t *testing.T, message string) string {
	t.Helper()
	sig, err := id.keyPair.Sign([]byte(message))
	require.NoError(t, err)
	return sig
}

func newTestServer(opts ...Option) *Server {
	return NewServer(append([]Option{WithClock(fixedNow)}, opts...)...)
}

func serve(t *testing.T, s *Server, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	return rr
}

func signedQuery(timestamp, signature string) string {
	return "?" + url.Values{"timestamp": {timestamp}, "signature": {signature}}.Encode()
}

func createIdentity(t *testing.T, s *Server) *testIdentity {
	t.Helper()
	keyPair, err := sessionless.GenerateKeyPair()
	require.NoError(t, err)
	id := &testIdentity{keyPair: keyPair}

	ts := ms(0)
	rr := serve(t, s, "PUT", "/user/create", protocol.CreateUserRequest{
		Timestamp: ts,
		PubKey:    keyPair.PublicKey(),
		Signature: id.sign(t, canonical.CreateUser(ts, keyPair.PublicKey())),
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var user protocol.User
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &user))
	id.uuid = user.UUID
	return id
}

func decodeUser(t *testing.T, rr *httptest.ResponseRecorder) protocol.User {
	t.Helper()
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var user protocol.User
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &user))
	return user
}

func TestServer_CreateAndGetUser(t *testing.T) {
	s := newTestServer()
	alice := createIdentity(t, s)
	assert.Len(t, alice.uuid, 36)

	ts := ms(0)
	rr := serve(t, s, "GET", "/user/"+alice.uuid+signedQuery(ts, alice.sign(t, canonical.GetUserByUUID(ts, alice.uuid))), nil)
	user := decodeUser(t, rr)
	assert.Equal(t, alice.uuid, user.UUID)
	assert.Equal(t, uint64(DefaultInitialMP), user.MP)

	pubKey := alice.keyPair.PublicKey()
	rr = serve(t, s, "GET", "/user/pubKey/"+pubKey+signedQuery(ts, alice.sign(t, canonical.GetUserByPublicKey(ts, pubKey))), nil)
	assert.Equal(t, alice.uuid, decodeUser(t, rr).UUID)
}

func TestServer_CreateUserBadSignature(t *testing.T) {
	s := newTestServer()
	keyPair, err := sessionless.GenerateKeyPair()
	require.NoError(t, err)
	other, err := sessionless.GenerateKeyPair()
	require.NoError(t, err)

	ts := ms(0)
	sig, err := other.Sign([]byte(canonical.CreateUser(ts, keyPair.PublicKey())))
	require.NoError(t, err)

	rr := serve(t, s, "PUT", "/user/create", protocol.CreateUserRequest{
		Timestamp: ts,
		PubKey:    keyPair.PublicKey(),
		Signature: sig,
	})
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.JSONEq(t, `{"error":"auth error"}`, rr.Body.String())
}

func TestServer_GetUserErrors(t *testing.T) {
	s := newTestServer()
	alice := createIdentity(t, s)
	bob := createIdentity(t, s)
	ts := ms(0)

	t.Run("malformed uuid", func(t *testing.T) {
		rr := serve(t, s, "GET", "/user/not-a-uuid"+signedQuery(ts, "00"), nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("unknown uuid", func(t *testing.T) {
		missing := "00000000-0000-4000-8000-000000000000"
		rr := serve(t, s, "GET", "/user/"+missing+signedQuery(ts, alice.sign(t, canonical.GetUserByUUID(ts, missing))), nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.JSONEq(t, `{"error":"not found"}`, rr.Body.String())
	})

	t.Run("signed by someone else", func(t *testing.T) {
		rr := serve(t, s, "GET", "/user/"+alice.uuid+signedQuery(ts, bob.sign(t, canonical.GetUserByUUID(ts, alice.uuid))), nil)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("stale timestamp", func(t *testing.T) {
		old := ms(-10 * time.Minute)
		rr := serve(t, s, "GET", "/user/"+alice.uuid+signedQuery(old, alice.sign(t, canonical.GetUserByUUID(old, alice.uuid))), nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"error":"no time like the present"}`, rr.Body.String())
	})
}

func TestServer_GrantAndTransfer(t *testing.T) {
	s := newTestServer()
	alice := createIdentity(t, s)
	bob := createIdentity(t, s)
	ts := ms(0)

	rr := serve(t, s, "POST", "/user/"+alice.uuid+"/grant", protocol.GrantRequest{
		Timestamp:       ts,
		UUID:            alice.uuid,
		DestinationUUID: bob.uuid,
		Amount:          200,
		Description:     "thanks",
		Signature:       alice.sign(t, canonical.Grant(ts, alice.uuid, bob.uuid, 200, "thanks")),
	})
	assert.Equal(t, uint64(800), decodeUser(t, rr).MP)

	rr = serve(t, s, "POST", "/user/"+alice.uuid+"/grant", protocol.GrantRequest{
		Timestamp:       ts,
		DestinationUUID: bob.uuid,
		Amount:          5000,
		Signature:       alice.sign(t, canonical.Grant(ts, alice.uuid, bob.uuid, 5000, "")),
	})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	galaxy := protocol.DefaultGalaxy
	rr = serve(t, s, "PUT", "/user/"+alice.uuid+"/nineum/galactic", protocol.GrantGalacticNineumRequest{
		Timestamp: ts,
		Galaxy:    galaxy,
		Signature: alice.sign(t, canonical.GrantGalacticNineum(ts, alice.uuid, galaxy)),
	})
	assert.Equal(t, uint64(1), decodeUser(t, rr).NineumCount)

	held, err := s.Store().Nineum(alice.uuid)
	require.NoError(t, err)

	priced := protocol.TransferRequest{
		Timestamp:       ts,
		DestinationUUID: bob.uuid,
		NineumUniqueIDs: held,
		Price:           10,
		Currency:        "USD",
		Signature:       alice.sign(t, canonical.TransferNineum(ts, alice.uuid, bob.uuid, held, 10, "USD")),
	}
	rr = serve(t, s, "POST", "/user/"+alice.uuid+"/transfer", priced)
	assert.Equal(t, http.StatusNotImplemented, rr.Code)
	assert.JSONEq(t, `{"error":"unimplemented"}`, rr.Body.String())

	rr = serve(t, s, "POST", "/user/"+alice.uuid+"/transfer", protocol.TransferRequest{
		Timestamp:       ts,
		DestinationUUID: bob.uuid,
		NineumUniqueIDs: held,
		Signature:       alice.sign(t, canonical.TransferNineum(ts, alice.uuid, bob.uuid, held, 0, "")),
	})
	assert.Equal(t, uint64(0), decodeUser(t, rr).NineumCount)

	rr = serve(t, s, "GET", "/user/"+bob.uuid+"/nineum"+signedQuery(ts, bob.sign(t, canonical.GetNineum(ts, bob.uuid))), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var nineum protocol.Nineum
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &nineum))
	assert.Equal(t, held, nineum.Nineum)
}

func TestServer_NineumPermissions(t *testing.T) {
	s := newTestServer()
	owner := createIdentity(t, s)
	admin := createIdentity(t, s)
	ts := ms(0)

	grantAdmin := func(from, to *testIdentity) *httptest.ResponseRecorder {
		return serve(t, s, "PUT", "/user/"+from.uuid+"/nineum/admin", protocol.GrantAdminNineumRequest{
			Timestamp:  ts,
			ToUserUUID: to.uuid,
			Signature:  from.sign(t, canonical.GrantAdminNineum(ts, from.uuid)),
		})
	}

	rr := grantAdmin(owner, admin)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.JSONEq(t, `{"error":"no galaxy"}`, rr.Body.String())

	claim := func(who *testIdentity) *httptest.ResponseRecorder {
		return serve(t, s, "PUT", "/user/"+who.uuid+"/nineum/galactic", protocol.GrantGalacticNineumRequest{
			Timestamp: ts,
			Galaxy:    protocol.DefaultGalaxy,
			Signature: who.sign(t, canonical.GrantGalacticNineum(ts, who.uuid, protocol.DefaultGalaxy)),
		})
	}
	assert.Equal(t, owner.uuid, decodeUser(t, claim(owner)).UUID)

	rr = claim(admin)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.JSONEq(t, `{"error":"galaxy in use"}`, rr.Body.String())

	assert.Equal(t, admin.uuid, decodeUser(t, grantAdmin(owner, admin)).UUID)

	parts := protocol.FlavorParts{Charge: "01", Direction: "02", Rarity: "03", Size: "04", Texture: "05", Shape: "06"}
	rr = serve(t, s, "PUT", "/user/"+admin.uuid+"/nineum", protocol.GrantNineumRequest{
		Timestamp:   ts,
		ToUserUUID:  owner.uuid,
		FlavorParts: parts,
		Quantity:    2,
		Signature:   admin.sign(t, canonical.GrantNineum(ts, admin.uuid, owner.uuid, "010203040506", 2)),
	})
	assert.Equal(t, uint64(3), decodeUser(t, rr).NineumCount)

	rr = serve(t, s, "PUT", "/user/"+admin.uuid+"/nineum", protocol.GrantNineumRequest{
		Timestamp:   ts,
		ToUserUUID:  owner.uuid,
		FlavorParts: parts,
		Quantity:    MaxGrantQuantity + 1,
		Signature:   admin.sign(t, canonical.GrantNineum(ts, admin.uuid, owner.uuid, "010203040506", MaxGrantQuantity+1)),
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestServer_DeleteUser(t *testing.T) {
	s := newTestServer()
	alice := createIdentity(t, s)
	ts := ms(0)

	rr := serve(t, s, "DELETE", "/user/"+alice.uuid, protocol.DeleteUserRequest{
		Timestamp: ts,
		UUID:      alice.uuid,
		Signature: alice.sign(t, canonical.DeleteUser(ts, alice.uuid)),
	})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Body.String())

	rr = serve(t, s, "GET", "/user/"+alice.uuid+signedQuery(ts, alice.sign(t, canonical.GetUserByUUID(ts, alice.uuid))), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestServer_Resolve(t *testing.T) {
	s := newTestServer()
	caster := createIdentity(t, s)
	gateway := createIdentity(t, s)
	ts := ms(0)

	spell := protocol.Spell{
		Timestamp:  ts,
		Spell:      "joinup",
		CasterUUID: caster.uuid,
		TotalCost:  400,
		MP:         true,
		Ordinal:    1,
	}
	spell.CasterSignature = caster.sign(t, canonical.SpellCaster(ts, "joinup", caster.uuid, 400, true, 1))
	spell.Gateways = []protocol.Gateway{{
		Timestamp:   ts,
		UUID:        gateway.uuid,
		PubKey:      gateway.keyPair.PublicKey(),
		MinimumCost: 20,
		Ordinal:     1,
		Signature:   gateway.sign(t, canonical.Gateway(ts, gateway.uuid, 20, 1)),
	}}

	rr := serve(t, s, "POST", "/resolve/joinup", spell)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())

	user, err := s.Store().GetUser(caster.uuid)
	require.NoError(t, err)
	assert.Equal(t, uint64(600), user.MP)

	rr = serve(t, s, "POST", "/resolve/other", spell)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	spell.Gateways[0].MinimumCost = 0
	rr = serve(t, s, "POST", "/resolve/joinup", spell)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.JSONEq(t, `{"success":false}`, rr.Body.String())

	intruder, err := sessionless.GenerateKeyPair()
	require.NoError(t, err)
	forged, err := intruder.Sign([]byte(canonical.Gateway(ts, gateway.uuid, 20, 1)))
	require.NoError(t, err)
	spell.Gateways[0].MinimumCost = 20
	spell.Gateways[0].PubKey = intruder.PublicKey()
	spell.Gateways[0].Signature = forged
	rr = serve(t, s, "POST", "/resolve/joinup", spell)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.JSONEq(t, `{"success":false}`, rr.Body.String())
}

func TestServer_Messages(t *testing.T) {
	s := newTestServer()
	alice := createIdentity(t, s)
	bob := createIdentity(t, s)
	ts := ms(0)

	rr := serve(t, s, "POST", "/message", protocol.MessageRequest{
		Timestamp:    ts,
		SenderUUID:   alice.uuid,
		ReceiverUUID: bob.uuid,
		Message:      "hello",
		Signature:    alice.sign(t, canonical.PostMessage(ts, alice.uuid, bob.uuid, "hello")),
	})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())

	rr = serve(t, s, "GET", "/messages/user/"+bob.uuid+signedQuery(ts, bob.sign(t, canonical.GetMessages(ts, bob.uuid))), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var got protocol.Messages
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "hello", got.Messages[0].Message)
}

func TestServer_AssociateAndDeleteKey(t *testing.T) {
	s := newTestServer(WithAssociatedKeySigning(true))
	owner := createIdentity(t, s)
	device := createIdentity(t, s)
	ts := ms(0)
	prompt := "4242"

	rr := serve(t, s, "POST", "/user/"+device.uuid+"/associate/signedPrompt", protocol.SignPromptRequest{
		Timestamp: ts,
		UUID:      device.uuid,
		PubKey:    device.keyPair.PublicKey(),
		Prompt:    prompt,
		Signature: device.sign(t, canonical.SignPrompt(ts, device.uuid, device.keyPair.PublicKey(), prompt)),
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	message := canonical.Associate(ts, device.uuid, device.keyPair.PublicKey(), prompt)
	rr = serve(t, s, "POST", "/user/"+owner.uuid+"/associate", protocol.AssociateRequest{
		Timestamp:    ts,
		NewTimestamp: ts,
		NewUUID:      device.uuid,
		NewPubKey:    device.keyPair.PublicKey(),
		NewSignature: device.sign(t, message),
		Prompt:       prompt,
		Signature:    owner.sign(t, message),
	})
	user := decodeUser(t, rr)
	assert.Equal(t, device.keyPair.PublicKey(), user.Keys[device.uuid])

	// the associated key now signs for the owner
	rr = serve(t, s, "GET", "/user/"+owner.uuid+signedQuery(ts, device.sign(t, canonical.GetUserByUUID(ts, owner.uuid))), nil)
	assert.Equal(t, owner.uuid, decodeUser(t, rr).UUID)

	rr = serve(t, s, "DELETE", "/associated/"+device.uuid+"/user/"+owner.uuid, protocol.DeleteKeyRequest{
		Timestamp: ts,
		Signature: owner.sign(t, canonical.DeleteKey(ts, device.uuid, owner.uuid)),
	})
	assert.Empty(t, decodeUser(t, rr).Keys)

	rr = serve(t, s, "GET", "/user/"+owner.uuid+signedQuery(ts, device.sign(t, canonical.GetUserByUUID(ts, owner.uuid))), nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestServer_SignPromptRejectsForeignKey(t *testing.T) {
	s := newTestServer()
	victim := createIdentity(t, s)
	attacker := createIdentity(t, s)
	ts := ms(0)

	rr := serve(t, s, "POST", "/user/"+victim.uuid+"/associate/signedPrompt", protocol.SignPromptRequest{
		Timestamp: ts,
		UUID:      victim.uuid,
		PubKey:    attacker.keyPair.PublicKey(),
		Prompt:    "1",
		Signature: attacker.sign(t, canonical.SignPrompt(ts, victim.uuid, attacker.keyPair.PublicKey(), "1")),
	})
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestServer_Start(t *testing.T) {
	s := newTestServer()
	baseURL, stop, err := s.Start("127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = stop(context.Background()) }()

	assert.Regexp(t, `^http://127\.0\.0\.1:\d+/$`, baseURL)

	resp, err := http.Get(baseURL + "user/not-a-uuid")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
