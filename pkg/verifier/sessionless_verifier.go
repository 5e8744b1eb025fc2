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
	"github.com/planet-nine-app/fount-go/pkg/sessionless"
)

// SignatureVerifier checks one signature against one public key
type SignatureVerifier interface {
	VerifyMessage(message, signature, pubKey string) error
}

// SessionlessVerifier verifies secp256k1 signatures over keccak-256 of the message
type SessionlessVerifier struct{}

// NewSessionlessVerifier creates a new SessionlessVerifier
func NewSessionlessVerifier() *SessionlessVerifier {
	return &SessionlessVerifier{}
}

// VerifyMessage implements SignatureVerifier
func (v *SessionlessVerifier) VerifyMessage(message, signature, pubKey string) error {
	return sessionless.Verify(signature, []byte(message), pubKey)
}
