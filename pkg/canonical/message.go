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

package canonical

import (
	"strconv"
	"strings"
)

// Concat joins fields with no delimiter and no escaping.
func Concat(fields ...string) string {
	return strings.Join(fields, "")
}

// Uint renders an unsigned integer as decimal ASCII.
func Uint(n uint64) string {
	return strconv.FormatUint(n, 10)
}

// Bool renders a flag as "true" or "false".
func Bool(b bool) string {
	return strconv.FormatBool(b)
}

// CreateUser: timestamp, public key.
func CreateUser(timestamp, pubKey string) string {
	return Concat(timestamp, pubKey)
}

// GetUserByUUID: timestamp, uuid.
func GetUserByUUID(timestamp, uuid string) string {
	return Concat(timestamp, uuid)
}

// GetUserByPublicKey: timestamp, public key.
func GetUserByPublicKey(timestamp, pubKey string) string {
	return Concat(timestamp, pubKey)
}

// GetNineum: timestamp, uuid.
func GetNineum(timestamp, uuid string) string {
	return Concat(timestamp, uuid)
}

// Grant: timestamp, grantor uuid, destination uuid, amount, description.
func Grant(timestamp, uuid, destinationUUID string, amount uint64, description string) string {
	return Concat(timestamp, uuid, destinationUUID, Uint(amount), description)
}

// TransferNineum: timestamp, sender uuid, destination uuid, the ids joined
// in the order given, price, currency.
func TransferNineum(timestamp, uuid, destinationUUID string, nineumUniqueIDs []string, price uint64, currency string) string {
	return Concat(timestamp, uuid, destinationUUID, Concat(nineumUniqueIDs...), Uint(price), currency)
}

// DeleteUser: timestamp, uuid.
func DeleteUser(timestamp, uuid string) string {
	return Concat(timestamp, uuid)
}

// SpellCaster is what the caster signs into a spell's casterSignature.
func SpellCaster(timestamp, spell, casterUUID string, totalCost uint64, mp bool, ordinal uint64) string {
	return Concat(timestamp, spell, casterUUID, Uint(totalCost), Bool(mp), Uint(ordinal))
}

// Gateway is what each gateway signs when it relays a spell.
func Gateway(timestamp, uuid string, minimumCost, ordinal uint64) string {
	return Concat(timestamp, uuid, Uint(minimumCost), Uint(ordinal))
}

// GrantNineum: timestamp, grantor uuid, recipient uuid, flavor, quantity.
func GrantNineum(timestamp, uuid, toUserUUID, flavor string, quantity uint64) string {
	return Concat(timestamp, uuid, toUserUUID, flavor, Uint(quantity))
}

// GrantAdminNineum: timestamp, grantor uuid. The recipient is not signed.
func GrantAdminNineum(timestamp, uuid string) string {
	return Concat(timestamp, uuid)
}

// GrantGalacticNineum: timestamp, uuid, galaxy.
func GrantGalacticNineum(timestamp, uuid, galaxy string) string {
	return Concat(timestamp, uuid, galaxy)
}

// PostMessage: timestamp, sender uuid, receiver uuid, contents.
func PostMessage(timestamp, senderUUID, receiverUUID, contents string) string {
	return Concat(timestamp, senderUUID, receiverUUID, contents)
}

// GetMessages: timestamp, uuid.
func GetMessages(timestamp, uuid string) string {
	return Concat(timestamp, uuid)
}

// SignPrompt: timestamp, uuid, public key, prompt.
func SignPrompt(timestamp, uuid, pubKey, prompt string) string {
	return Concat(timestamp, uuid, pubKey, prompt)
}

// Associate is signed over the new identity's half of the prompt.
func Associate(newTimestamp, newUUID, newPubKey, prompt string) string {
	return Concat(newTimestamp, newUUID, newPubKey, prompt)
}

// DeleteKey: timestamp, associated uuid, uuid.
func DeleteKey(timestamp, associatedUUID, uuid string) string {
	return Concat(timestamp, associatedUUID, uuid)
}
