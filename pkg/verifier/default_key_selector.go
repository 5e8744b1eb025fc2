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
	"context"
	"fmt"
)

// DefaultKeySelector selects the user's registered key and, when enabled,
// the keys of associated users after it
type DefaultKeySelector struct {
	resolver          KeyResolver
	includeAssociated bool
}

// NewDefaultKeySelector creates a selector that only accepts the user's own key
func NewDefaultKeySelector(resolver KeyResolver) *DefaultKeySelector {
	return &DefaultKeySelector{
		resolver: resolver,
	}
}

// IncludeAssociated makes associated keys valid signers for a user.
// It only has an effect when the resolver implements AssociatedKeyResolver.
func (s *DefaultKeySelector) IncludeAssociated(include bool) *DefaultKeySelector {
	s.includeAssociated = include
	return s
}

// SelectKeys implements KeySelector
func (s *DefaultKeySelector) SelectKeys(ctx context.Context, uuid string) ([]string, error) {
	// Check context first
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	primary, err := s.resolver.ResolvePublicKey(ctx, uuid)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve key for %s: %w", uuid, err)
	}
	keys := []string{primary}

	if !s.includeAssociated {
		return keys, nil
	}

	associated, ok := s.resolver.(AssociatedKeyResolver)
	if !ok {
		return keys, nil
	}

	extra, err := associated.ResolveAssociatedKeys(ctx, uuid)
	if err != nil {
		// Fallback: the primary key alone still identifies the user
		return keys, nil
	}
	for _, k := range extra {
		if k != "" && k != primary {
			keys = append(keys, k)
		}
	}
	return keys, nil
}
