// Package client provides a fount client with automatic sessionless signing.
//
// Every operation builds the canonical message for its endpoint, signs it
// with the client's secp256k1 key and sends the signature with the request.
// There are no sessions, tokens or cookies: each request proves itself.
//
// # Features
//
//   - User lifecycle: create, look up by uuid or public key, delete
//   - MP grants and nineum transfers
//   - Galactic, admin and flavored nineum grants
//   - Spell resolution with an optional pre-send hook
//   - Messages between users
//   - Associating additional keys with a user
//
// # Basic Usage
//
//	keyPair, _ := sessionless.GenerateKeyPair()
//	c, err := client.New(keyPair,
//	    client.WithBaseURL("https://dev.fount.allyabase.com/"),
//	    client.WithLogger(logger),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	user, err := c.CreateUser(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	user, err = c.Grant(ctx, user.UUID, friendUUID, 200, "thanks")
//
// # Error Handling
//
// Errors are classified by the transport package:
//
//	_, err := c.GetUserByUUID(ctx, uuid)
//	switch {
//	case transport.IsRemoteRejected(err):
//	    // the service answered and said no
//	case errors.Is(err, transport.ErrTransport):
//	    // the request never completed
//	case errors.Is(err, transport.ErrDecode):
//	    // the response could not be read
//	}
//
// # Spells
//
// Resolve sends a spell as built by the caller. To have the client add the
// caster signature first, install CasterSignatureHook:
//
//	c, _ := client.New(keyPair, client.WithResolveHook(client.CasterSignatureHook))
//
// # Thread Safety
//
// A Client is safe for concurrent use by multiple goroutines.
package client
