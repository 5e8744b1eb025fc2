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
	"encoding/json"
)

// Spell is a costed action cast by a user and relayed through gateways.
// Fields the server or an intermediary adds beyond the declared ones are
// kept in Extra and written back out on encode.
type Spell struct {
	// Timestamp is the caster's decimal millisecond timestamp
	Timestamp string `json:"timestamp"`

	// Spell is the operation name; it also selects the /resolve/{spell} endpoint
	Spell string `json:"spell"`

	// CasterUUID identifies the user paying for the spell
	CasterUUID string `json:"casterUUID"`

	// TotalCost is the cost charged to the caster
	TotalCost uint64 `json:"totalCost"`

	// MP is true when the cost is paid from the caster's mp balance
	MP bool `json:"mp"`

	// Ordinal is the caster's spell counter
	Ordinal uint64 `json:"ordinal"`

	// CasterSignature signs canonical.SpellCaster over the fields above
	CasterSignature string `json:"casterSignature"`

	// Gateways are the intermediaries the spell passed through, in order
	Gateways []Gateway `json:"gateways"`

	// Extra holds additional named fields
	Extra map[string]any `json:"-"`
}

var spellFields = []string{
	"timestamp", "spell", "casterUUID", "totalCost", "mp", "ordinal", "casterSignature", "gateways",
}

type spellFieldsOnly Spell

// MarshalJSON merges Extra into the encoded object
func (s Spell) MarshalJSON() ([]byte, error) {
	known := spellFieldsOnly(s)
	if known.Gateways == nil {
		known.Gateways = []Gateway{}
	}
	return marshalWithExtra(known, s.Extra)
}

// UnmarshalJSON keeps undeclared fields in Extra
func (s *Spell) UnmarshalJSON(data []byte) error {
	var known spellFieldsOnly
	extra, err := unmarshalWithExtra(data, &known, spellFields)
	if err != nil {
		return err
	}
	*s = Spell(known)
	s.Extra = extra
	return nil
}

// Gateway is one intermediary checkpoint of a Spell. Each gateway signs its
// own entry, so a spell carries a chain of independent signatures.
type Gateway struct {
	Timestamp   string `json:"timestamp"`
	UUID        string `json:"uuid"`
	PubKey      string `json:"pubKey"`
	MinimumCost uint64 `json:"minimumCost"`
	Ordinal     uint64 `json:"ordinal"`
	Signature   string `json:"signature"`

	// Extra holds additional named fields
	Extra map[string]any `json:"-"`
}

var gatewayFields = []string{"timestamp", "uuid", "pubKey", "minimumCost", "ordinal", "signature"}

type gatewayFieldsOnly Gateway

// MarshalJSON merges Extra into the encoded object
func (g Gateway) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(gatewayFieldsOnly(g), g.Extra)
}

// UnmarshalJSON keeps undeclared fields in Extra
func (g *Gateway) UnmarshalJSON(data []byte) error {
	var known gatewayFieldsOnly
	extra, err := unmarshalWithExtra(data, &known, gatewayFields)
	if err != nil {
		return err
	}
	*g = Gateway(known)
	g.Extra = extra
	return nil
}

// SpellResult is the outcome of resolving a spell. Anything the server
// returns besides success is preserved in Extra.
type SpellResult struct {
	Success bool           `json:"success"`
	Extra   map[string]any `json:"-"`
}

type spellResultFieldsOnly SpellResult

// MarshalJSON merges Extra into the encoded object
func (r SpellResult) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(spellResultFieldsOnly(r), r.Extra)
}

// UnmarshalJSON keeps undeclared fields in Extra
func (r *SpellResult) UnmarshalJSON(data []byte) error {
	var known spellResultFieldsOnly
	extra, err := unmarshalWithExtra(data, &known, []string{"success"})
	if err != nil {
		return err
	}
	*r = SpellResult(known)
	r.Extra = extra
	return nil
}

// Field returns an extra field of the result and whether it was present
func (r *SpellResult) Field(name string) (any, bool) {
	v, ok := r.Extra[name]
	return v, ok
}

// Validate performs basic validation on the Spell
func (s *Spell) Validate() error {
	if s.Spell == "" {
		return ErrInvalidSpell{"spell name is required"}
	}
	if s.CasterUUID == "" {
		return ErrInvalidSpell{"casterUUID is required"}
	}
	if s.Timestamp == "" {
		return ErrInvalidSpell{"timestamp is required"}
	}
	return nil
}

// WithExtra sets an additional named field on the Spell
func (s *Spell) WithExtra(key string, value any) *Spell {
	if s.Extra == nil {
		s.Extra = make(map[string]any)
	}
	s.Extra[key] = value
	return s
}

// ErrInvalidSpell is returned when a Spell is invalid
type ErrInvalidSpell struct {
	Message string
}

func (e ErrInvalidSpell) Error() string {
	return "invalid spell: " + e.Message
}

// SpellSigner signs and verifies the caster and gateway signatures of a Spell
type SpellSigner interface {
	// SignSpell sets the spell's timestamp (when empty) and casterSignature
	SignSpell(ctx context.Context, spell *Spell) error

	// SignGateway sets the gateway's pubKey, timestamp (when empty) and signature
	SignGateway(ctx context.Context, gateway *Gateway) error

	// VerifySpell checks the caster signature against casterPubKey
	VerifySpell(ctx context.Context, spell *Spell, casterPubKey string) error

	// VerifyGateway checks a gateway signature against the gateway's own pubKey
	VerifyGateway(ctx context.Context, gateway *Gateway) error
}

var (
	_ json.Marshaler   = Spell{}
	_ json.Unmarshaler = (*Spell)(nil)
	_ json.Marshaler   = Gateway{}
	_ json.Unmarshaler = (*Gateway)(nil)
)
