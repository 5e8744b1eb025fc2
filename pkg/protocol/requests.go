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

// Request bodies for the signed fount endpoints. Field names and order
// match what the server reads; the signature always covers the canonical
// message of the operation, not the JSON encoding.

// CreateUserRequest is the body of PUT /user/create
type CreateUserRequest struct {
	Timestamp string `json:"timestamp"`
	PubKey    string `json:"pubKey"`
	Signature string `json:"signature"`
}

// GrantRequest is the body of POST /user/{uuid}/grant
type GrantRequest struct {
	Timestamp       string `json:"timestamp"`
	UUID            string `json:"uuid"`
	DestinationUUID string `json:"destinationUUID"`
	Amount          uint64 `json:"amount"`
	Description     string `json:"description"`
	Signature       string `json:"signature"`
}

// TransferRequest is the body of POST /user/{uuid}/transfer
type TransferRequest struct {
	Timestamp       string   `json:"timestamp"`
	DestinationUUID string   `json:"destinationUUID"`
	NineumUniqueIDs []string `json:"nineumUniqueIds"`
	Price           uint64   `json:"price"`
	Currency        string   `json:"currency"`
	Signature       string   `json:"signature"`
}

// DeleteUserRequest is the body of DELETE /user/{uuid}
type DeleteUserRequest struct {
	Timestamp string `json:"timestamp"`
	UUID      string `json:"uuid"`
	Signature string `json:"signature"`
}

// GrantNineumRequest is the body of PUT /user/{uuid}/nineum
type GrantNineumRequest struct {
	Timestamp  string `json:"timestamp"`
	ToUserUUID string `json:"toUserUUID"`
	FlavorParts
	Quantity  uint64 `json:"quantity"`
	Signature string `json:"signature"`
}

// Flavor reassembles the flavor carried by the request
func (r *GrantNineumRequest) Flavor() (Flavor, error) {
	return NewFlavor(r.FlavorParts)
}

// GrantAdminNineumRequest is the body of PUT /user/{uuid}/nineum/admin
type GrantAdminNineumRequest struct {
	Timestamp  string `json:"timestamp"`
	ToUserUUID string `json:"toUserUUID"`
	Signature  string `json:"signature"`
}

// GrantGalacticNineumRequest is the body of PUT /user/{uuid}/nineum/galactic
type GrantGalacticNineumRequest struct {
	Timestamp string `json:"timestamp"`
	Galaxy    string `json:"galaxy"`
	Signature string `json:"signature"`
}

// MessageRequest is the body of POST /message
type MessageRequest struct {
	Timestamp    string `json:"timestamp"`
	SenderUUID   string `json:"senderUUID"`
	ReceiverUUID string `json:"receiverUUID"`
	Message      string `json:"message"`
	Signature    string `json:"signature"`
}

// Transfer returns the message record described by the request
func (r *MessageRequest) Transfer() Transfer {
	return Transfer{
		Timestamp:    r.Timestamp,
		SenderUUID:   r.SenderUUID,
		ReceiverUUID: r.ReceiverUUID,
		Message:      r.Message,
	}
}

// SignPromptRequest is the body of POST /user/{uuid}/associate/signedPrompt
type SignPromptRequest struct {
	Timestamp string `json:"timestamp"`
	UUID      string `json:"uuid"`
	PubKey    string `json:"pubKey"`
	Prompt    string `json:"prompt"`
	Signature string `json:"signature"`
}

// AssociateRequest is the body of POST /user/{uuid}/associate
type AssociateRequest struct {
	Timestamp    string `json:"timestamp"`
	NewTimestamp string `json:"newTimestamp"`
	NewUUID      string `json:"newUUID"`
	NewPubKey    string `json:"newPubKey"`
	NewSignature string `json:"newSignature"`
	Prompt       string `json:"prompt"`
	Signature    string `json:"signature"`
}

// DeleteKeyRequest is the body of DELETE /associated/{associatedUUID}/user/{uuid}
type DeleteKeyRequest struct {
	Timestamp string `json:"timestamp"`
	Signature string `json:"signature"`
}
