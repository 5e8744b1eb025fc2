// Package protocol defines the fount data model and the signing of spells.
//
// # Records
//
// User, Nineum, Transfer, Prompt and SuccessResult mirror the JSON the
// fount service returns. The *Request types are the signed request bodies
// shared by the client and the reference server.
//
// # Spells
//
// A Spell is signed once by its caster and then once per Gateway it passes
// through. Both Spell and Gateway keep any field they do not declare in
// Extra, so a spell relayed through this package arrives at the server
// with everything an earlier hop added:
//
//	spell := &protocol.Spell{Spell: "allyabase", CasterUUID: uuid, TotalCost: 400, MP: true}
//	spell.WithExtra("caster", map[string]any{"name": "zach"})
//
//	ss := protocol.NewDefaultSpellSigner(msgSigner)
//	if err := ss.SignSpell(ctx, spell); err != nil {
//	    return err
//	}
//
// VerifySpell and VerifyGateway recompute the canonical messages and check
// the signatures with pkg/sessionless.
//
// # Flavors
//
// A Flavor is the twelve-hex-character description of a nineum kind:
// charge, direction, rarity, size, texture and shape, two characters each.
package protocol
