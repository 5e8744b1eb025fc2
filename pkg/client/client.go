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

package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/planet-nine-app/fount-go/pkg/canonical"
	"github.com/planet-nine-app/fount-go/pkg/protocol"
	"github.com/planet-nine-app/fount-go/pkg/sessionless"
	"github.com/planet-nine-app/fount-go/pkg/signer"
	"github.com/planet-nine-app/fount-go/pkg/transport"
	"go.uber.org/zap"
)

// Client is a fount client that signs every request with its sessionless
// identity. It keeps no state between calls besides that identity and is
// safe for concurrent use.
type Client struct {
	signer      signer.MessageSigner
	transport   *transport.HTTPTransport
	logger      *zap.Logger
	resolveHook ResolveHook
}

// New creates a Client for keyPair. keyPair may be nil only when
// WithSigner is given.
func New(keyPair sessionless.KeyPair, opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	s := o.signer
	if s == nil {
		if keyPair == nil {
			return nil, errors.New("key pair cannot be nil")
		}
		ds, err := signer.NewDefaultSigner(keyPair)
		if err != nil {
			return nil, fmt.Errorf("failed to create signer: %w", err)
		}
		ds.WithClock(o.now)
		s = ds
	}

	t, err := transport.NewHTTPTransport(o.baseURL, o.httpClient, o.logger)
	if err != nil {
		return nil, err
	}

	return &Client{
		signer:      s,
		transport:   t,
		logger:      o.logger,
		resolveHook: o.resolveHook,
	}, nil
}

// NewFromPrivateKeyHex creates a Client from a hex encoded private key
func NewFromPrivateKeyHex(privateKeyHex string, opts ...Option) (*Client, error) {
	keyPair, err := sessionless.KeyPairFromHex(privateKeyHex)
	if err != nil {
		return nil, err
	}
	return New(keyPair, opts...)
}

// PublicKey returns the hex public key this client signs with
func (c *Client) PublicKey() string {
	return c.signer.PublicKey()
}

// BaseURL returns the fount service URL
func (c *Client) BaseURL() string {
	return c.transport.BaseURL()
}

func (c *Client) sign(ctx context.Context, op string, build signer.MessageBuilder) (*signer.SignedMessage, error) {
	signed, err := c.signer.Sign(ctx, build)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to sign request: %w", op, err)
	}
	return signed, nil
}

func (c *Client) callUser(ctx context.Context, req *transport.Request) (*protocol.User, error) {
	var user protocol.User
	req.Check = func() error {
		if user.UUID == "" {
			return errors.New("user response has no uuid")
		}
		return nil
	}
	if err := c.transport.Call(ctx, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) callSuccess(ctx context.Context, req *transport.Request) (*protocol.SuccessResult, error) {
	var result protocol.SuccessResult
	if err := c.transport.Call(ctx, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateUser registers this client's public key and returns the new user
func (c *Client) CreateUser(ctx context.Context) (*protocol.User, error) {
	pubKey := c.PublicKey()
	signed, err := c.sign(ctx, "createUser", func(ts string) string {
		return canonical.CreateUser(ts, pubKey)
	})
	if err != nil {
		return nil, err
	}

	body := &protocol.CreateUserRequest{
		Timestamp: signed.Timestamp,
		PubKey:    pubKey,
		Signature: signed.Signature,
	}
	user, err := c.callUser(ctx, transport.NewWithBody("createUser", http.MethodPut, body, "user", "create"))
	if err != nil {
		return nil, err
	}

	c.logger.Debug("created fount user", zap.String("uuid", user.UUID))
	return user, nil
}

// GetUserByUUID fetches a user by uuid
func (c *Client) GetUserByUUID(ctx context.Context, uuid string) (*protocol.User, error) {
	signed, err := c.sign(ctx, "getUserByUUID", func(ts string) string {
		return canonical.GetUserByUUID(ts, uuid)
	})
	if err != nil {
		return nil, err
	}

	return c.callUser(ctx, transport.NewGet("getUserByUUID", signed.Timestamp, signed.Signature, "user", uuid))
}

// GetUserByPublicKey fetches the user registered for pubKey
func (c *Client) GetUserByPublicKey(ctx context.Context, pubKey string) (*protocol.User, error) {
	signed, err := c.sign(ctx, "getUserByPublicKey", func(ts string) string {
		return canonical.GetUserByPublicKey(ts, pubKey)
	})
	if err != nil {
		return nil, err
	}

	return c.callUser(ctx, transport.NewGet("getUserByPublicKey", signed.Timestamp, signed.Signature, "user", "pubKey", pubKey))
}

// Grant moves amount of mp from uuid to destinationUUID and returns the
// updated grantor
func (c *Client) Grant(ctx context.Context, uuid, destinationUUID string, amount uint64, description string) (*protocol.User, error) {
	signed, err := c.sign(ctx, "grant", func(ts string) string {
		return canonical.Grant(ts, uuid, destinationUUID, amount, description)
	})
	if err != nil {
		return nil, err
	}

	body := &protocol.GrantRequest{
		Timestamp:       signed.Timestamp,
		UUID:            uuid,
		DestinationUUID: destinationUUID,
		Amount:          amount,
		Description:     description,
		Signature:       signed.Signature,
	}
	return c.callUser(ctx, transport.NewWithBody("grant", http.MethodPost, body, "user", uuid, "grant"))
}

// GetNineum lists the nineum held by uuid
func (c *Client) GetNineum(ctx context.Context, uuid string) (*protocol.Nineum, error) {
	signed, err := c.sign(ctx, "getNineum", func(ts string) string {
		return canonical.GetNineum(ts, uuid)
	})
	if err != nil {
		return nil, err
	}

	var nineum protocol.Nineum
	req := transport.NewGet("getNineum", signed.Timestamp, signed.Signature, "user", uuid, "nineum")
	req.Check = func() error {
		if nineum.Nineum == nil {
			return errors.New("nineum response has no nineum list")
		}
		return nil
	}
	if err := c.transport.Call(ctx, req, &nineum); err != nil {
		return nil, err
	}
	return &nineum, nil
}

// TransferNineum moves the given nineum from uuid to destinationUUID and
// returns the updated sender
func (c *Client) TransferNineum(ctx context.Context, uuid, destinationUUID string, nineumUniqueIDs []string, price uint64, currency string) (*protocol.User, error) {
	if nineumUniqueIDs == nil {
		nineumUniqueIDs = []string{}
	}

	signed, err := c.sign(ctx, "transferNineum", func(ts string) string {
		return canonical.TransferNineum(ts, uuid, destinationUUID, nineumUniqueIDs, price, currency)
	})
	if err != nil {
		return nil, err
	}

	body := &protocol.TransferRequest{
		Timestamp:       signed.Timestamp,
		DestinationUUID: destinationUUID,
		NineumUniqueIDs: nineumUniqueIDs,
		Price:           price,
		Currency:        currency,
		Signature:       signed.Signature,
	}
	return c.callUser(ctx, transport.NewWithBody("transferNineum", http.MethodPost, body, "user", uuid, "transfer"))
}

// DeleteUser deletes uuid. fount answers with an empty 200, which is
// reported as success.
func (c *Client) DeleteUser(ctx context.Context, uuid string) (*protocol.SuccessResult, error) {
	signed, err := c.sign(ctx, "deleteUser", func(ts string) string {
		return canonical.DeleteUser(ts, uuid)
	})
	if err != nil {
		return nil, err
	}

	body := &protocol.DeleteUserRequest{
		Timestamp: signed.Timestamp,
		UUID:      uuid,
		Signature: signed.Signature,
	}
	req := transport.NewWithBody("deleteUser", http.MethodDelete, body, "user", uuid)
	req.AllowEmpty = true

	result := &protocol.SuccessResult{Success: true}
	if err := c.transport.Call(ctx, req, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Resolve submits a spell that its caster and gateways have already
// signed. The client does not add a signature of its own; install a
// ResolveHook such as CasterSignatureHook to change that.
func (c *Client) Resolve(ctx context.Context, spell *protocol.Spell) (*protocol.SpellResult, error) {
	if spell == nil {
		return nil, errors.New("resolve: spell cannot be nil")
	}
	if spell.Spell == "" {
		return nil, errors.New("resolve: spell name is required")
	}

	if c.resolveHook != nil {
		if err := c.resolveHook(ctx, c, spell); err != nil {
			return nil, fmt.Errorf("resolve: hook failed: %w", err)
		}
	}

	var result protocol.SpellResult
	req := transport.NewWithBody("resolve", http.MethodPost, spell, "resolve", spell.Spell)
	if err := c.transport.Call(ctx, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CasterSignatureHook signs the spell as its caster when casterSignature
// is empty. The spell's timestamp is kept when set.
func CasterSignatureHook(ctx context.Context, c *Client, spell *protocol.Spell) error {
	if spell.CasterSignature != "" {
		return nil
	}
	return protocol.NewDefaultSpellSigner(c.signer).SignSpell(ctx, spell)
}

// SignSpell sets the spell's casterSignature with this client's identity
func (c *Client) SignSpell(ctx context.Context, spell *protocol.Spell) error {
	return protocol.NewDefaultSpellSigner(c.signer).SignSpell(ctx, spell)
}

// SignGateway signs gateway as an intermediary of a spell
func (c *Client) SignGateway(ctx context.Context, gateway *protocol.Gateway) error {
	return protocol.NewDefaultSpellSigner(c.signer).SignGateway(ctx, gateway)
}

// GrantNineum mints quantity nineum of flavor for toUserUUID. The grantor
// must hold galactic or admin nineum. Returns the updated recipient.
func (c *Client) GrantNineum(ctx context.Context, uuid, toUserUUID string, flavor protocol.Flavor, quantity uint64) (*protocol.User, error) {
	parts, err := flavor.Parts()
	if err != nil {
		return nil, fmt.Errorf("grantNineum: %w", err)
	}

	signed, err := c.sign(ctx, "grantNineum", func(ts string) string {
		return canonical.GrantNineum(ts, uuid, toUserUUID, flavor.String(), quantity)
	})
	if err != nil {
		return nil, err
	}

	body := &protocol.GrantNineumRequest{
		Timestamp:   signed.Timestamp,
		ToUserUUID:  toUserUUID,
		FlavorParts: parts,
		Quantity:    quantity,
		Signature:   signed.Signature,
	}
	return c.callUser(ctx, transport.NewWithBody("grantNineum", http.MethodPut, body, "user", uuid, "nineum"))
}

// GrantAdminNineum gives toUserUUID an admin nineum of the grantor's galaxy
func (c *Client) GrantAdminNineum(ctx context.Context, uuid, toUserUUID string) (*protocol.User, error) {
	signed, err := c.sign(ctx, "grantAdminNineum", func(ts string) string {
		return canonical.GrantAdminNineum(ts, uuid)
	})
	if err != nil {
		return nil, err
	}

	body := &protocol.GrantAdminNineumRequest{
		Timestamp:  signed.Timestamp,
		ToUserUUID: toUserUUID,
		Signature:  signed.Signature,
	}
	return c.callUser(ctx, transport.NewWithBody("grantAdminNineum", http.MethodPut, body, "user", uuid, "nineum", "admin"))
}

// GrantGalacticNineum claims galaxy for uuid
func (c *Client) GrantGalacticNineum(ctx context.Context, uuid, galaxy string) (*protocol.User, error) {
	signed, err := c.sign(ctx, "grantGalacticNineum", func(ts string) string {
		return canonical.GrantGalacticNineum(ts, uuid, galaxy)
	})
	if err != nil {
		return nil, err
	}

	body := &protocol.GrantGalacticNineumRequest{
		Timestamp: signed.Timestamp,
		Galaxy:    galaxy,
		Signature: signed.Signature,
	}
	return c.callUser(ctx, transport.NewWithBody("grantGalacticNineum", http.MethodPut, body, "user", uuid, "nineum", "galactic"))
}

// PostMessage sends contents from senderUUID to receiverUUID
func (c *Client) PostMessage(ctx context.Context, senderUUID, receiverUUID, contents string) (*protocol.SuccessResult, error) {
	signed, err := c.sign(ctx, "postMessage", func(ts string) string {
		return canonical.PostMessage(ts, senderUUID, receiverUUID, contents)
	})
	if err != nil {
		return nil, err
	}

	body := &protocol.MessageRequest{
		Timestamp:    signed.Timestamp,
		SenderUUID:   senderUUID,
		ReceiverUUID: receiverUUID,
		Message:      contents,
		Signature:    signed.Signature,
	}
	return c.callSuccess(ctx, transport.NewWithBody("postMessage", http.MethodPost, body, "message"))
}

// GetMessages lists the messages sent or received by uuid
func (c *Client) GetMessages(ctx context.Context, uuid string) (*protocol.Messages, error) {
	signed, err := c.sign(ctx, "getMessages", func(ts string) string {
		return canonical.GetMessages(ts, uuid)
	})
	if err != nil {
		return nil, err
	}

	var messages protocol.Messages
	req := transport.NewGet("getMessages", signed.Timestamp, signed.Signature, "messages", "user", uuid)
	req.Check = func() error {
		if messages.Messages == nil {
			return errors.New("messages response has no messages list")
		}
		return nil
	}
	if err := c.transport.Call(ctx, req, &messages); err != nil {
		return nil, err
	}
	return &messages, nil
}

// NewPrompt returns the new* half of a key-association prompt, signed by
// this client for uuid. Pass it to SignPrompt, then to the other user's
// Associate.
func (c *Client) NewPrompt(ctx context.Context, uuid, prompt string) (*protocol.Prompt, error) {
	pubKey := c.PublicKey()
	signed, err := c.sign(ctx, "newPrompt", func(ts string) string {
		return canonical.Associate(ts, uuid, pubKey, prompt)
	})
	if err != nil {
		return nil, err
	}

	return &protocol.Prompt{
		NewTimestamp: signed.Timestamp,
		NewUUID:      uuid,
		NewPubKey:    pubKey,
		NewSignature: signed.Signature,
		Prompt:       prompt,
	}, nil
}

// SignPrompt registers prompt for uuid, signed with this client's key
func (c *Client) SignPrompt(ctx context.Context, uuid, prompt string) (*protocol.SuccessResult, error) {
	pubKey := c.PublicKey()
	signed, err := c.sign(ctx, "signPrompt", func(ts string) string {
		return canonical.SignPrompt(ts, uuid, pubKey, prompt)
	})
	if err != nil {
		return nil, err
	}

	body := &protocol.SignPromptRequest{
		Timestamp: signed.Timestamp,
		UUID:      uuid,
		PubKey:    pubKey,
		Prompt:    prompt,
		Signature: signed.Signature,
	}
	return c.callSuccess(ctx, transport.NewWithBody("signPrompt", http.MethodPost, body, "user", uuid, "associate", "signedPrompt"))
}

// Associate links the identity described by signedPrompt to uuid and
// returns the updated user. The outer signature covers the same fields as
// the prompt's own signature.
func (c *Client) Associate(ctx context.Context, uuid string, signedPrompt *protocol.Prompt) (*protocol.User, error) {
	if signedPrompt == nil {
		return nil, errors.New("associate: prompt cannot be nil")
	}

	// the request timestamp is not part of the signed message
	signed, err := c.sign(ctx, "associate", func(string) string {
		return canonical.Associate(signedPrompt.NewTimestamp, signedPrompt.NewUUID, signedPrompt.NewPubKey, signedPrompt.Prompt)
	})
	if err != nil {
		return nil, err
	}

	body := &protocol.AssociateRequest{
		Timestamp:    signed.Timestamp,
		NewTimestamp: signedPrompt.NewTimestamp,
		NewUUID:      signedPrompt.NewUUID,
		NewPubKey:    signedPrompt.NewPubKey,
		NewSignature: signedPrompt.NewSignature,
		Prompt:       signedPrompt.Prompt,
		Signature:    signed.Signature,
	}
	return c.callUser(ctx, transport.NewWithBody("associate", http.MethodPost, body, "user", uuid, "associate"))
}

// DeleteKey removes the association between uuid and associatedUUID
func (c *Client) DeleteKey(ctx context.Context, uuid, associatedUUID string) (*protocol.User, error) {
	signed, err := c.sign(ctx, "deleteKey", func(ts string) string {
		return canonical.DeleteKey(ts, associatedUUID, uuid)
	})
	if err != nil {
		return nil, err
	}

	body := &protocol.DeleteKeyRequest{
		Timestamp: signed.Timestamp,
		Signature: signed.Signature,
	}
	return c.callUser(ctx, transport.NewWithBody("deleteKey", http.MethodDelete, body, "associated", associatedUUID, "user", uuid))
}
