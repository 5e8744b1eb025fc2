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

// Package verifier checks sessionless signatures on fount requests.
//
// A signed request carries a timestamp, its operation fields and a
// signature. DefaultVerifier rebuilds the canonical message from those
// fields with pkg/canonical and verifies the signature against the key of
// the user the request acts for:
//
//	v := verifier.NewVerifier(store)
//	if err := v.Grant(ctx, uuid, &req); err != nil {
//	    // 403
//	}
//
// # Key Selection
//
// A KeySelector decides which public keys may sign for a uuid. The default
// selector returns only the user's registered key; IncludeAssociated also
// admits keys linked through the associate operation, tried after the
// user's own key:
//
//	selector := verifier.NewDefaultKeySelector(store).IncludeAssociated(true)
//	v := verifier.NewDefaultVerifier(selector, verifier.NewSessionlessVerifier())
//
// # Errors
//
// Failures wrap ErrMissingSignature, ErrUnknownUser or ErrSignatureMismatch
// so callers can tell a missing user from a bad signature with errors.Is.
package verifier
