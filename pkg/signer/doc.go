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

// Package signer stamps fount canonical messages with a timestamp and signs
// them with a sessionless identity.
//
// # Basic Usage
//
//	keyPair, _ := sessionless.GenerateKeyPair()
//	s, err := signer.NewDefaultSigner(keyPair)
//	if err != nil {
//	    return err
//	}
//
//	signed, err := s.Sign(ctx, func(ts string) string {
//	    return canonical.GetUserByUUID(ts, uuid)
//	})
//
//	// signed.Timestamp and signed.Signature go on the wire
//
// # Custom Signing Options
//
// Pin the timestamp, for example when a request is replayed in a test:
//
//	opts := &signer.SigningOptions{
//	    Timestamp: "1718000000000",
//	}
//
//	signed, err := s.SignWithOptions(ctx, build, opts)
//
// # Timestamps
//
// Timestamps are decimal milliseconds since the Unix epoch. They act as a
// replay nonce: the fount rejects requests whose timestamp is too far from
// its own clock. The signer does not enforce monotonicity.
//
// # Error Handling
//
// Common signing errors:
//
//   - Nil key pair: NewDefaultSigner was given no identity
//   - Nil builder: no message builder was supplied
//   - Context canceled: operation interrupted
package signer
