package verifier

import (
	"context"
	"errors"
)

var (
	// ErrMissingSignature is returned when a request carries no signature
	ErrMissingSignature = errors.New("missing signature")

	// ErrUnknownUser is returned by a KeyResolver that has no record of a uuid
	ErrUnknownUser = errors.New("unknown user")

	// ErrSignatureMismatch is returned when no candidate key verifies a signature
	ErrSignatureMismatch = errors.New("signature does not match")
)

// MessageVerifier checks sessionless signatures over canonical messages
type MessageVerifier interface {
	// VerifyForUser verifies signature over message with a key selected for uuid
	VerifyForUser(ctx context.Context, uuid, message, signature string) error

	// VerifyWithKey verifies signature over message with an explicit public key
	VerifyWithKey(ctx context.Context, pubKey, message, signature string) error
}
