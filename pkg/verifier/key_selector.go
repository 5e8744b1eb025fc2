package verifier

import (
	"context"
)

// KeyResolver looks up the registered public key of a user
type KeyResolver interface {
	// ResolvePublicKey returns the hex public key of uuid, or an error
	// wrapping ErrUnknownUser
	ResolvePublicKey(ctx context.Context, uuid string) (string, error)
}

// AssociatedKeyResolver additionally lists keys associated with a user
type AssociatedKeyResolver interface {
	KeyResolver

	// ResolveAssociatedKeys returns the public keys of users associated with uuid
	ResolveAssociatedKeys(ctx context.Context, uuid string) ([]string, error)
}

// KeySelector picks the public keys allowed to sign for a user
type KeySelector interface {
	// SelectKeys returns candidate keys in preference order; the user's own key first
	SelectKeys(ctx context.Context, uuid string) ([]string, error)
}
