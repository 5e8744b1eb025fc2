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
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/planet-nine-app/fount-go/pkg/protocol"
	"github.com/planet-nine-app/fount-go/pkg/verifier"
)

// MaxGrantQuantity bounds how many nineum a single flavor grant may mint
const MaxGrantQuantity = 10000

// Store errors. Handlers map ErrNotFound and ErrNoPermission to 404 and
// the rest to 403.
var (
	ErrNotFound       = errors.New("not found")
	ErrInsufficientMP = errors.New("insufficient mp")
	ErrNoPermission   = errors.New("no permission")
	ErrNoGalaxy       = errors.New("no galaxy")
	ErrGalaxyInUse    = errors.New("galaxy in use")
	ErrNotOwned       = errors.New("nineum not owned")
	ErrNoPrompt       = errors.New("no matching prompt")
	ErrDuplicateID    = errors.New("duplicate nineum id")
	ErrQuantity       = errors.New("quantity out of range")
)

// systemStart anchors the nineum year field
var systemStart = time.UnixMilli(1722399380889)

// default flavor components for permission nineum: positive, up, standard, soft, sphere
const permissionFlavorFormat = "0105%s050101"

// Store is the in-memory state of the reference server
type Store struct {
	mu sync.RWMutex

	users    map[string]*protocol.User
	byPubKey map[string]string
	nineum   map[string][]string
	galaxies map[string]string
	flavors  map[protocol.Flavor]uint32
	prompts  map[string]protocol.Prompt
	messages []protocol.Transfer

	initialMP uint64
	now       func() time.Time
}

// NewStore creates an empty store. New users start with initialMP.
func NewStore(initialMP uint64) *Store {
	return &Store{
		users:     make(map[string]*protocol.User),
		byPubKey:  make(map[string]string),
		nineum:    make(map[string][]string),
		galaxies:  make(map[string]string),
		flavors:   make(map[protocol.Flavor]uint32),
		prompts:   make(map[string]protocol.Prompt),
		initialMP: initialMP,
		now:       time.Now,
	}
}

// snapshot returns a copy of the user with derived fields filled. Caller holds mu.
func (s *Store) snapshot(id string) protocol.User {
	u := *s.users[id]
	u.NineumCount = uint64(len(s.nineum[id]))
	if len(u.Keys) > 0 {
		keys := make(map[string]string, len(u.Keys))
		for k, v := range u.Keys {
			keys[k] = v
		}
		u.Keys = keys
	}
	return u
}

// CreateUser registers pubKey. An already registered key returns its
// existing user and created=false.
func (s *Store) CreateUser(pubKey string) (user protocol.User, created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byPubKey[pubKey]; ok {
		return s.snapshot(id), false
	}

	id := uuid.NewString()
	s.users[id] = &protocol.User{
		UUID:             id,
		PubKey:           pubKey,
		MP:               s.initialMP,
		MaxMP:            s.initialMP,
		MPRecalculatedAt: s.now().UnixMilli(),
	}
	s.byPubKey[pubKey] = id
	s.nineum[id] = []string{}
	return s.snapshot(id), true
}

// GetUser returns the user with uuid id
func (s *Store) GetUser(id string) (protocol.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.users[id]; !ok {
		return protocol.User{}, ErrNotFound
	}
	return s.snapshot(id), nil
}

// GetUserByPublicKey returns the user registered for pubKey
func (s *Store) GetUserByPublicKey(pubKey string) (protocol.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byPubKey[pubKey]
	if !ok {
		return protocol.User{}, ErrNotFound
	}
	return s.snapshot(id), nil
}

// DeleteUser removes the user and everything it owns
func (s *Store) DeleteUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.byPubKey, u.PubKey)
	delete(s.users, id)
	delete(s.nineum, id)
	delete(s.prompts, id)
	for galaxy, owner := range s.galaxies {
		if owner == id {
			delete(s.galaxies, galaxy)
		}
	}
	return nil
}

// Grant moves amount mp from one user to another and returns the updated grantor
func (s *Store) Grant(from, to string, amount uint64) (protocol.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	source, ok := s.users[from]
	if !ok {
		return protocol.User{}, ErrNotFound
	}
	destination, ok := s.users[to]
	if !ok {
		return protocol.User{}, ErrNotFound
	}
	if source.MP < amount {
		return protocol.User{}, fmt.Errorf("%w: have %d, need %d", ErrInsufficientMP, source.MP, amount)
	}

	source.MP -= amount
	source.LastMPUsed = s.now().UnixMilli()
	destination.MP += amount
	return s.snapshot(from), nil
}

// SpendMP charges cost to a user, for spells paid in mp
func (s *Store) SpendMP(id string, cost uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	if u.MP < cost {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientMP, u.MP, cost)
	}
	u.MP -= cost
	u.LastMPUsed = s.now().UnixMilli()
	u.Ordinal++
	return nil
}

// Nineum returns the nineum ids held by a user
func (s *Store) Nineum(id string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	held, ok := s.nineum[id]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]string{}, held...), nil
}

// Transfer moves the listed nineum and returns the updated sender. Either
// every id moves or none does.
func (s *Store) Transfer(from, to string, ids []string) (protocol.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[from]; !ok {
		return protocol.User{}, ErrNotFound
	}
	if _, ok := s.users[to]; !ok {
		return protocol.User{}, ErrNotFound
	}

	moving := make(map[string]bool, len(ids))
	for _, id := range ids {
		if moving[id] {
			return protocol.User{}, ErrDuplicateID
		}
		moving[id] = true
	}

	kept := make([]string, 0, len(s.nineum[from]))
	found := 0
	for _, id := range s.nineum[from] {
		if moving[id] {
			found++
			continue
		}
		kept = append(kept, id)
	}
	if found != len(moving) {
		return protocol.User{}, ErrNotOwned
	}

	s.nineum[from] = kept
	s.nineum[to] = append(s.nineum[to], ids...)
	return s.snapshot(from), nil
}

// mint builds the next nineum id for galaxy and flavor. Caller holds mu.
func (s *Store) mint(galaxy string, flavor protocol.Flavor) string {
	s.flavors[flavor]++
	year := int(s.now().Sub(systemStart).Hours()/(24*365)) + 1
	return protocol.NineumID{
		Universe: protocol.Universe,
		Galaxy:   galaxy,
		Flavor:   flavor,
		Year:     uint8(year),
		Ordinal:  s.flavors[flavor],
	}.String()
}

// permissionGalaxy returns the galaxy of the strongest permission nineum
// held by id, provided it is at least required. Caller holds mu.
func (s *Store) permissionGalaxy(id, required string) (string, bool) {
	held := s.nineum[id]
	best := protocol.HighestPermission(held)
	for _, nineumID := range held {
		if protocol.Permission(nineumID) != best || !protocol.HasPermission(nineumID, required) {
			continue
		}
		parsed, err := protocol.ParseNineumID(nineumID)
		if err != nil {
			continue
		}
		return parsed.Galaxy, true
	}
	return "", false
}

// GrantGalactic gives id the galactic nineum of an unclaimed galaxy
func (s *Store) GrantGalactic(id, galaxy string) (protocol.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return protocol.User{}, ErrNotFound
	}
	if _, taken := s.galaxies[galaxy]; taken {
		return protocol.User{}, ErrGalaxyInUse
	}

	s.galaxies[galaxy] = id
	flavor := protocol.Flavor(fmt.Sprintf(permissionFlavorFormat, protocol.RarityGalactic))
	s.nineum[id] = append(s.nineum[id], s.mint(galaxy, flavor))
	return s.snapshot(id), nil
}

// GrantAdmin gives to an admin nineum of the granter's galaxy. The granter
// must hold a galactic nineum. Returns the updated recipient.
func (s *Store) GrantAdmin(granter, to string) (protocol.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[granter]; !ok {
		return protocol.User{}, ErrNotFound
	}
	if _, ok := s.users[to]; !ok {
		return protocol.User{}, ErrNotFound
	}

	galaxy, ok := s.permissionGalaxy(granter, protocol.RarityGalactic)
	if !ok {
		return protocol.User{}, ErrNoGalaxy
	}

	flavor := protocol.Flavor(fmt.Sprintf(permissionFlavorFormat, protocol.RarityAdmin))
	s.nineum[to] = append(s.nineum[to], s.mint(galaxy, flavor))
	return s.snapshot(to), nil
}

// GrantFlavor mints quantity nineum of flavor for to. The granter must
// hold admin or galactic nineum. Returns the updated recipient.
func (s *Store) GrantFlavor(granter, to string, flavor protocol.Flavor, quantity uint64) (protocol.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[granter]; !ok {
		return protocol.User{}, ErrNotFound
	}
	if _, ok := s.users[to]; !ok {
		return protocol.User{}, ErrNotFound
	}

	if quantity > MaxGrantQuantity {
		return protocol.User{}, ErrQuantity
	}

	galaxy, ok := s.permissionGalaxy(granter, protocol.RarityAdmin)
	if !ok {
		return protocol.User{}, ErrNoPermission
	}

	for i := uint64(0); i < quantity; i++ {
		s.nineum[to] = append(s.nineum[to], s.mint(galaxy, flavor))
	}
	return s.snapshot(to), nil
}

// PostMessage records a message between two existing users
func (s *Store) PostMessage(t protocol.Transfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[t.SenderUUID]; !ok {
		return ErrNotFound
	}
	if _, ok := s.users[t.ReceiverUUID]; !ok {
		return ErrNotFound
	}
	s.messages = append(s.messages, t)
	return nil
}

// Messages returns every message sent or received by id, oldest first
func (s *Store) Messages(id string) []protocol.Transfer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []protocol.Transfer
	for _, m := range s.messages {
		if m.SenderUUID == id || m.ReceiverUUID == id {
			out = append(out, m)
		}
	}
	return out
}

// SavePrompt stores the latest signed prompt of a user
func (s *Store) SavePrompt(id string, p protocol.Prompt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	s.prompts[id] = p
	return nil
}

// Associate links newUUID to id. newUUID must have registered the same
// prompt with the same key beforehand. Returns the updated user.
func (s *Store) Associate(id string, p protocol.Prompt) (protocol.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return protocol.User{}, ErrNotFound
	}
	saved, ok := s.prompts[p.NewUUID]
	if !ok || saved.Prompt != p.Prompt || saved.NewPubKey != p.NewPubKey {
		return protocol.User{}, ErrNoPrompt
	}

	if u.Keys == nil {
		u.Keys = make(map[string]string)
	}
	u.Keys[p.NewUUID] = p.NewPubKey
	delete(s.prompts, p.NewUUID)
	return s.snapshot(id), nil
}

// DeleteKey removes an association. Returns the updated user.
func (s *Store) DeleteKey(id, associatedUUID string) (protocol.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return protocol.User{}, ErrNotFound
	}
	if _, ok := u.Keys[associatedUUID]; !ok {
		return protocol.User{}, ErrNotFound
	}
	delete(u.Keys, associatedUUID)
	return s.snapshot(id), nil
}

// ResolvePublicKey implements verifier.KeyResolver
func (s *Store) ResolvePublicKey(ctx context.Context, id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", verifier.ErrUnknownUser, id)
	}
	return u.PubKey, nil
}

// ResolveAssociatedKeys implements verifier.AssociatedKeyResolver
func (s *Store) ResolveAssociatedKeys(ctx context.Context, id string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", verifier.ErrUnknownUser, id)
	}
	keys := make([]string, 0, len(u.Keys))
	for _, k := range u.Keys {
		keys = append(keys, k)
	}
	return keys, nil
}

var _ verifier.AssociatedKeyResolver = (*Store)(nil)
