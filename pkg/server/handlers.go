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
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/planet-nine-app/fount-go/pkg/protocol"
	"github.com/planet-nine-app/fount-go/pkg/verifier"
	"go.uber.org/zap"
)

// Error bodies as fount sends them
const (
	msgAuthError     = "auth error"
	msgNotFound      = "not found"
	msgUnimplemented = "unimplemented"
	msgBadRequest    = "bad request"
)

func errorBody(message string) protocol.ErrorResponse {
	return protocol.ErrorResponse{Error: message}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody(message))
}

// writeVerifyError maps a signature failure. Unknown users are not found,
// everything else is an auth error.
func (s *Server) writeVerifyError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Debug("signature rejected", zap.String("path", r.URL.Path), zap.Error(err))
	if errors.Is(err, verifier.ErrUnknownUser) {
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	}
	writeError(w, http.StatusForbidden, msgAuthError)
}

// writeStoreError maps a store failure
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoPermission):
		writeError(w, http.StatusNotFound, msgNotFound)
	default:
		writeError(w, http.StatusForbidden, err.Error())
	}
}

// decode reads a JSON body, answering 400 on failure
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, msgBadRequest)
		return false
	}
	return true
}

// pathUUID returns the named path variable when it is a well formed uuid
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := mux.Vars(r)[name]
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusNotFound, msgNotFound)
		return "", false
	}
	return id, true
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req protocol.CreateUserRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.verifier.CreateUser(r.Context(), &req); err != nil {
		s.writeVerifyError(w, r, err)
		return
	}

	user, created := s.store.CreateUser(req.PubKey)
	if created {
		s.logger.Info("user created", zap.String("uuid", user.UUID))
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleGetUserByUUID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "uuid")
	if !ok {
		return
	}
	q := r.URL.Query()
	if err := s.verifier.GetUserByUUID(r.Context(), id, q.Get("timestamp"), q.Get("signature")); err != nil {
		s.writeVerifyError(w, r, err)
		return
	}

	user, err := s.store.GetUser(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleGetUserByPublicKey(w http.ResponseWriter, r *http.Request) {
	pubKey := mux.Vars(r)["pubKey"]
	q := r.URL.Query()
	if err := s.verifier.GetUserByPublicKey(r.Context(), pubKey, q.Get("timestamp"), q.Get("signature")); err != nil {
		s.writeVerifyError(w, r, err)
		return
	}

	user, err := s.store.GetUserByPublicKey(pubKey)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleGetNineum(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "uuid")
	if !ok {
		return
	}
	q := r.URL.Query()
	if err := s.verifier.GetNineum(r.Context(), id, q.Get("timestamp"), q.Get("signature")); err != nil {
		s.writeVerifyError(w, r, err)
		return
	}

	held, err := s.store.Nineum(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, protocol.Nineum{Nineum: held})
}

func (s *Server) handleGrant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "uuid")
	if !ok {
		return
	}
	var req protocol.GrantRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.verifier.Grant(r.Context(), id, &req); err != nil {
		s.writeVerifyError(w, r, err)
		return
	}

	user, err := s.store.Grant(id, req.DestinationUUID, req.Amount)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	s.logger.Info("mp granted",
		zap.String("from", id),
		zap.String("to", req.DestinationUUID),
		zap.Uint64("amount", req.Amount))
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "uuid")
	if !ok {
		return
	}
	var req protocol.TransferRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.verifier.TransferNineum(r.Context(), id, &req); err != nil {
		s.writeVerifyError(w, r, err)
		return
	}

	// priced transfers are not supported
	if req.Price != 0 {
		writeError(w, http.StatusNotImplemented, msgUnimplemented)
		return
	}

	user, err := s.store.Transfer(id, req.DestinationUUID, req.NineumUniqueIDs)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "uuid")
	if !ok {
		return
	}
	var req protocol.DeleteUserRequest
	if !decode(w, r, &req) {
		return
	}
	if req.UUID != id {
		writeError(w, http.StatusForbidden, msgAuthError)
		return
	}
	if err := s.verifier.DeleteUser(r.Context(), &req); err != nil {
		s.writeVerifyError(w, r, err)
		return
	}

	if err := s.store.DeleteUser(id); err != nil {
		writeStoreError(w, err)
		return
	}
	s.logger.Info("user deleted", zap.String("uuid", id))
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var spell protocol.Spell
	if !decode(w, r, &spell) {
		return
	}
	if spell.Spell != mux.Vars(r)["spell"] {
		writeJSON(w, http.StatusForbidden, protocol.SpellResult{Success: false})
		return
	}
	if err := spell.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, protocol.SpellResult{Success: false})
		return
	}
	if err := s.verifier.Spell(r.Context(), &spell); err != nil {
		s.logger.Debug("spell rejected", zap.String("spell", spell.Spell), zap.Error(err))
		writeJSON(w, http.StatusForbidden, protocol.SpellResult{Success: false})
		return
	}

	if spell.MP {
		if err := s.store.SpendMP(spell.CasterUUID, spell.TotalCost); err != nil {
			writeJSON(w, http.StatusForbidden, protocol.SpellResult{Success: false})
			return
		}
	}
	s.logger.Info("spell resolved",
		zap.String("spell", spell.Spell),
		zap.String("caster", spell.CasterUUID),
		zap.Int("gateways", len(spell.Gateways)))
	writeJSON(w, http.StatusOK, protocol.SpellResult{Success: true})
}

func (s *Server) handleGrantNineum(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "uuid")
	if !ok {
		return
	}
	var req protocol.GrantNineumRequest
	if !decode(w, r, &req) {
		return
	}
	flavor, err := req.Flavor()
	if err != nil {
		writeError(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	if req.Quantity > MaxGrantQuantity {
		writeError(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	if err := s.verifier.GrantNineum(r.Context(), id, &req); err != nil {
		s.writeVerifyError(w, r, err)
		return
	}

	user, err := s.store.GrantFlavor(id, req.ToUserUUID, flavor, req.Quantity)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleGrantAdminNineum(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "uuid")
	if !ok {
		return
	}
	var req protocol.GrantAdminNineumRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.verifier.GrantAdminNineum(r.Context(), id, &req); err != nil {
		s.writeVerifyError(w, r, err)
		return
	}

	user, err := s.store.GrantAdmin(id, req.ToUserUUID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleGrantGalacticNineum(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "uuid")
	if !ok {
		return
	}
	var req protocol.GrantGalacticNineumRequest
	if !decode(w, r, &req) {
		return
	}
	if err := protocol.ValidateGalaxy(req.Galaxy); err != nil {
		writeError(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	if err := s.verifier.GrantGalacticNineum(r.Context(), id, &req); err != nil {
		s.writeVerifyError(w, r, err)
		return
	}

	user, err := s.store.GrantGalactic(id, req.Galaxy)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	s.logger.Info("galaxy claimed", zap.String("uuid", id), zap.String("galaxy", req.Galaxy))
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var req protocol.MessageRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.verifier.PostMessage(r.Context(), &req); err != nil {
		s.writeVerifyError(w, r, err)
		return
	}

	if err := s.store.PostMessage(req.Transfer()); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, protocol.SuccessResult{Success: true})
}

func (s *Server) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "uuid")
	if !ok {
		return
	}
	q := r.URL.Query()
	if err := s.verifier.GetMessages(r.Context(), id, q.Get("timestamp"), q.Get("signature")); err != nil {
		s.writeVerifyError(w, r, err)
		return
	}

	messages := s.store.Messages(id)
	if messages == nil {
		messages = []protocol.Transfer{}
	}
	writeJSON(w, http.StatusOK, protocol.Messages{Messages: messages})
}

func (s *Server) handleSignPrompt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "uuid")
	if !ok {
		return
	}
	var req protocol.SignPromptRequest
	if !decode(w, r, &req) {
		return
	}
	if req.UUID != id {
		writeError(w, http.StatusForbidden, msgAuthError)
		return
	}

	// the prompt must be signed by the key registered for uuid
	user, err := s.store.GetUser(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if user.PubKey != req.PubKey {
		writeError(w, http.StatusForbidden, msgAuthError)
		return
	}
	if err := s.verifier.SignPrompt(r.Context(), &req); err != nil {
		s.writeVerifyError(w, r, err)
		return
	}

	prompt := protocol.Prompt{
		Timestamp: req.Timestamp,
		NewUUID:   req.UUID,
		NewPubKey: req.PubKey,
		Prompt:    req.Prompt,
	}
	if err := s.store.SavePrompt(id, prompt); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, protocol.SuccessResult{Success: true})
}

func (s *Server) handleAssociate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "uuid")
	if !ok {
		return
	}
	var req protocol.AssociateRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.verifier.Associate(r.Context(), id, &req); err != nil {
		s.writeVerifyError(w, r, err)
		return
	}

	user, err := s.store.Associate(id, protocol.Prompt{
		NewTimestamp: req.NewTimestamp,
		NewUUID:      req.NewUUID,
		NewPubKey:    req.NewPubKey,
		NewSignature: req.NewSignature,
		Prompt:       req.Prompt,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	s.logger.Info("key associated", zap.String("uuid", id), zap.String("associated", req.NewUUID))
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeleteKey(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "uuid")
	if !ok {
		return
	}
	associated, ok := pathUUID(w, r, "associatedUUID")
	if !ok {
		return
	}
	var req protocol.DeleteKeyRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.verifier.DeleteKey(r.Context(), id, associated, &req); err != nil {
		s.writeVerifyError(w, r, err)
		return
	}

	user, err := s.store.DeleteKey(id, associated)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
