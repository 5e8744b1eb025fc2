package signer

import (
	"context"
)

// MessageBuilder produces the canonical message for a given timestamp.
// See package canonical for the per-operation builders.
type MessageBuilder func(timestamp string) string

// MessageSigner signs fount canonical messages with a sessionless identity
type MessageSigner interface {
	// Sign stamps the message with the current time and signs it
	Sign(ctx context.Context, build MessageBuilder) (*SignedMessage, error)

	// SignWithOptions signs with custom options
	SignWithOptions(ctx context.Context, build MessageBuilder, opts *SigningOptions) (*SignedMessage, error)

	// SignMessage signs an already assembled message without stamping it
	SignMessage(ctx context.Context, message string) (string, error)

	// PublicKey returns the hex public key the signatures verify against
	PublicKey() string
}

// SigningOptions contains options for signing fount messages
type SigningOptions struct {
	// Timestamp overrides the generated timestamp (milliseconds since epoch,
	// decimal). If empty, the signer's clock is used.
	Timestamp string
}

// SignedMessage is a canonical message together with the values that go on the wire
type SignedMessage struct {
	// Timestamp is the decimal millisecond timestamp embedded in Message
	Timestamp string

	// Message is the exact string that was signed
	Message string

	// Signature is the hex-encoded signature over Message
	Signature string
}
