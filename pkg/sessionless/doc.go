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

// Package sessionless provides the identity primitive used to authenticate
// fount requests.
//
// An identity is a secp256k1 key pair. Messages are hashed with
// keccak-256 and signed with ECDSA; the signature travels as the hex of the
// 64-byte compact r||s form and the public key as the hex of the 33-byte
// compressed point.
//
// # Usage
//
//	keyPair, err := sessionless.GenerateKeyPair()
//	if err != nil {
//	    return err
//	}
//
//	sig, err := keyPair.Sign([]byte(timestamp + keyPair.PublicKey()))
//
//	// On the receiving side
//	err = sessionless.Verify(sig, []byte(message), pubKeyHex)
//
// # Importing Keys
//
// KeyPairFromHex and KeyPairFromPrivateKey reject key material of the wrong
// length, a zero scalar, or a scalar outside the curve order. This is the
// only point at which an identity can fail; signing with a constructed
// KeyPair does not fail in practice.
package sessionless
