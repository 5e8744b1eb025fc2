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

package sessionless

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"golang.org/x/crypto/sha3"
)

const (
	// PrivateKeySize is the length in bytes of a secp256k1 private scalar
	PrivateKeySize = 32

	// PublicKeySize is the length in bytes of a compressed secp256k1 point
	PublicKeySize = 33

	// SignatureSize is the length in bytes of a compact r||s signature
	SignatureSize = 64
)

var (
	// ErrInvalidPrivateKey is returned when imported key material is not a usable secp256k1 scalar
	ErrInvalidPrivateKey = errors.New("invalid private key")

	// ErrInvalidPublicKey is returned when a public key cannot be parsed
	ErrInvalidPublicKey = errors.New("invalid public key")

	// ErrInvalidSignature is returned when a signature cannot be parsed or does not verify
	ErrInvalidSignature = errors.New("invalid signature")
)

// KeyPair is a sessionless identity: it signs canonical messages and
// exposes the hex public key the fount uses to look the signer up.
type KeyPair interface {
	// PublicKey returns the hex-encoded compressed public key
	PublicKey() string

	// Sign returns the hex-encoded compact signature over keccak256(message)
	Sign(message []byte) (string, error)
}

// Secp256k1KeyPair implements KeyPair with a secp256k1 private key.
// It holds no mutable state and is safe for concurrent use.
type Secp256k1KeyPair struct {
	privateKey *btcec.PrivateKey
	publicKey  string
}

// GenerateKeyPair creates a new random identity.
func GenerateKeyPair() (*Secp256k1KeyPair, error) {
	privateKey, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate private key: %w", err)
	}
	return newKeyPair(privateKey), nil
}

// KeyPairFromPrivateKey imports a 32-byte private scalar.
func KeyPairFromPrivateKey(raw []byte) (*Secp256k1KeyPair, error) {
	if len(raw) != PrivateKeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidPrivateKey, PrivateKeySize, len(raw))
	}

	var scalar btcec.ModNScalar
	if overflow := scalar.SetByteSlice(raw); overflow {
		return nil, fmt.Errorf("%w: scalar exceeds curve order", ErrInvalidPrivateKey)
	}
	if scalar.IsZero() {
		return nil, fmt.Errorf("%w: scalar is zero", ErrInvalidPrivateKey)
	}

	privateKey, _ := btcec.PrivKeyFromBytes(raw)
	return newKeyPair(privateKey), nil
}

// KeyPairFromHex imports a hex-encoded private key, with or without a 0x prefix.
func KeyPairFromHex(privateKeyHex string) (*Secp256k1KeyPair, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	return KeyPairFromPrivateKey(raw)
}

func newKeyPair(privateKey *btcec.PrivateKey) *Secp256k1KeyPair {
	return &Secp256k1KeyPair{
		privateKey: privateKey,
		publicKey:  hex.EncodeToString(privateKey.PubKey().SerializeCompressed()),
	}
}

// PublicKey returns the hex-encoded compressed public key
func (k *Secp256k1KeyPair) PublicKey() string {
	return k.publicKey
}

// PrivateKeyHex exports the private scalar. Callers own its storage.
func (k *Secp256k1KeyPair) PrivateKeyHex() string {
	return hex.EncodeToString(k.privateKey.Serialize())
}

// Sign signs keccak256(message) and returns the 64-byte r||s signature as hex.
func (k *Secp256k1KeyPair) Sign(message []byte) (string, error) {
	compact, err := ecdsa.SignCompact(k.privateKey, Hash(message), true)
	if err != nil {
		return "", fmt.Errorf("failed to sign: %w", err)
	}
	// drop the recovery byte
	return hex.EncodeToString(compact[1:]), nil
}

// Hash is the sessionless message digest: keccak256 over the UTF-8 bytes.
func Hash(message []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(message)
	return h.Sum(nil)
}

// ParsePublicKey decodes a hex public key in compressed or uncompressed form.
func ParsePublicKey(publicKeyHex string) (*btcec.PublicKey, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(publicKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	publicKey, err := btcec.ParsePubKey(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	return publicKey, nil
}

// Verify checks a hex compact signature over message against a hex public key.
func Verify(signatureHex string, message []byte, publicKeyHex string) error {
	publicKey, err := ParsePublicKey(publicKeyHex)
	if err != nil {
		return err
	}

	raw, err := hex.DecodeString(signatureHex)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if len(raw) != SignatureSize {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSignature, SignatureSize, len(raw))
	}

	var r, s btcec.ModNScalar
	if overflow := r.SetByteSlice(raw[:32]); overflow || r.IsZero() {
		return fmt.Errorf("%w: r out of range", ErrInvalidSignature)
	}
	if overflow := s.SetByteSlice(raw[32:]); overflow || s.IsZero() {
		return fmt.Errorf("%w: s out of range", ErrInvalidSignature)
	}

	if !ecdsa.NewSignature(&r, &s).Verify(Hash(message), publicKey) {
		return ErrInvalidSignature
	}
	return nil
}

// VerifyString is Verify for string messages.
func VerifyString(signatureHex, message, publicKeyHex string) bool {
	return Verify(signatureHex, []byte(message), publicKeyHex) == nil
}
