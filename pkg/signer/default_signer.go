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

package signer

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/planet-nine-app/fount-go/pkg/sessionless"
)

// DefaultSigner implements MessageSigner
type DefaultSigner struct {
	keyPair sessionless.KeyPair
	now     func() time.Time
}

// NewDefaultSigner creates a new DefaultSigner around keyPair
func NewDefaultSigner(keyPair sessionless.KeyPair) (*DefaultSigner, error) {
	if keyPair == nil {
		return nil, fmt.Errorf("key pair cannot be nil")
	}
	return &DefaultSigner{
		keyPair: keyPair,
		now:     time.Now,
	}, nil
}

// WithClock replaces the time source used for timestamps
func (s *DefaultSigner) WithClock(now func() time.Time) *DefaultSigner {
	if now != nil {
		s.now = now
	}
	return s
}

// Timestamp formats t as fount expects: milliseconds since epoch, decimal
func Timestamp(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// PublicKey returns the hex public key of the underlying identity
func (s *DefaultSigner) PublicKey() string {
	return s.keyPair.PublicKey()
}

// Sign stamps the message with the current time and signs it
func (s *DefaultSigner) Sign(ctx context.Context, build MessageBuilder) (*SignedMessage, error) {
	return s.SignWithOptions(ctx, build, nil)
}

// SignWithOptions signs with custom options
func (s *DefaultSigner) SignWithOptions(ctx context.Context, build MessageBuilder, opts *SigningOptions) (*SignedMessage, error) {
	if build == nil {
		return nil, fmt.Errorf("message builder cannot be nil")
	}

	timestamp := ""
	if opts != nil {
		timestamp = opts.Timestamp
	}
	if timestamp == "" {
		timestamp = Timestamp(s.now())
	}

	message := build(timestamp)

	signature, err := s.SignMessage(ctx, message)
	if err != nil {
		return nil, err
	}

	return &SignedMessage{
		Timestamp: timestamp,
		Message:   message,
		Signature: signature,
	}, nil
}

// SignMessage signs an already assembled message
func (s *DefaultSigner) SignMessage(ctx context.Context, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context error: %w", err)
	}

	signature, err := s.keyPair.Sign([]byte(message))
	if err != nil {
		return "", fmt.Errorf("failed to sign: %w", err)
	}
	return signature, nil
}
