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
	"encoding/hex"
	"fmt"
	"strconv"
)

// A nineum unique id is 32 hex characters:
//
//	universe(2) galaxy(8) flavor(12) year(2) ordinal(8)
const (
	NineumIDLength = 32
	Universe       = "01"
	galaxyLength   = 8
)

// DefaultGalaxy is the galaxy used when none is configured
const DefaultGalaxy = "28880014"

var permissionRank = map[string]int{
	RarityGalactic:   5,
	RarityAdmin:      4,
	RarityScalar:     3,
	RarityStellation: 2,
	RarityWorld:      1,
}

// NineumID is a parsed nineum unique id
type NineumID struct {
	Universe string
	Galaxy   string
	Flavor   Flavor
	Year     uint8
	Ordinal  uint32
}

// ParseNineumID splits a nineum unique id into its fields
func ParseNineumID(id string) (NineumID, error) {
	if len(id) != NineumIDLength {
		return NineumID{}, fmt.Errorf("invalid nineum id %q: expected %d characters", id, NineumIDLength)
	}
	if _, err := hex.DecodeString(id[:24]); err != nil {
		return NineumID{}, fmt.Errorf("invalid nineum id %q: %w", id, err)
	}

	year, err := strconv.ParseUint(id[22:24], 10, 8)
	if err != nil {
		return NineumID{}, fmt.Errorf("invalid nineum id %q: bad year: %w", id, err)
	}
	ordinal, err := strconv.ParseUint(id[24:], 10, 32)
	if err != nil {
		return NineumID{}, fmt.Errorf("invalid nineum id %q: bad ordinal: %w", id, err)
	}

	return NineumID{
		Universe: id[0:2],
		Galaxy:   id[2:10],
		Flavor:   Flavor(id[10:22]),
		Year:     uint8(year),
		Ordinal:  uint32(ordinal),
	}, nil
}

// String renders the id in its 32 character form
func (n NineumID) String() string {
	return fmt.Sprintf("%s%s%s%02d%08d", n.Universe, n.Galaxy, n.Flavor, n.Year, n.Ordinal)
}

// ValidateGalaxy checks that galaxy is eight hex characters
func ValidateGalaxy(galaxy string) error {
	if len(galaxy) != galaxyLength {
		return fmt.Errorf("invalid galaxy %q: expected %d hex characters", galaxy, galaxyLength)
	}
	if _, err := hex.DecodeString(galaxy); err != nil {
		return fmt.Errorf("invalid galaxy %q: %w", galaxy, err)
	}
	return nil
}

// Permission returns the permission rarity carried by a nineum id, or ""
// for an ordinary nineum
func Permission(id string) string {
	if len(id) < 16 {
		return ""
	}
	level := id[14:16]
	if _, ok := permissionRank[level]; !ok {
		return ""
	}
	return level
}

// HasPermission reports whether id carries required or a higher permission
func HasPermission(id, required string) bool {
	have, ok := permissionRank[Permission(id)]
	if !ok {
		return false
	}
	need, ok := permissionRank[required]
	return ok && have >= need
}

// HighestPermission returns the strongest permission among ids, or ""
func HighestPermission(ids []string) string {
	best, bestRank := "", 0
	for _, id := range ids {
		level := Permission(id)
		if rank := permissionRank[level]; rank > bestRank {
			best, bestRank = level, rank
		}
	}
	return best
}
