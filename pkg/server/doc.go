// Package server provides an in-memory fount service.
//
// The server verifies sessionless signatures exactly as the hosted fount
// service does, answers with the same status codes and error bodies, and
// keeps users, nineum, messages and key associations in a Store. It backs
// the client tests, the end-to-end tests and the mock-fount example.
//
// # Basic Usage
//
//	srv := server.NewServer(server.WithLogger(logger))
//	http.ListenAndServe(":3006", srv)
//
// In tests:
//
//	ts := httptest.NewServer(server.NewServer())
//	defer ts.Close()
//	c, _ := client.New(keyPair, client.WithBaseURL(ts.URL))
//
// # Routes
//
//	PUT    /user/create
//	GET    /user/{uuid}
//	GET    /user/pubKey/{pubKey}
//	DELETE /user/{uuid}
//	POST   /user/{uuid}/grant
//	GET    /user/{uuid}/nineum
//	PUT    /user/{uuid}/nineum
//	PUT    /user/{uuid}/nineum/admin
//	PUT    /user/{uuid}/nineum/galactic
//	POST   /user/{uuid}/transfer
//	POST   /resolve/{spell}
//	POST   /message
//	GET    /messages/user/{uuid}
//	POST   /user/{uuid}/associate/signedPrompt
//	POST   /user/{uuid}/associate
//	DELETE /associated/{associatedUUID}/user/{uuid}
//
// # Timestamps
//
// TimestampMiddleware reads the timestamp from the query or the JSON body.
// Requests more than five minutes from the server clock get a 200 response
// with {"error":"no time like the present"}. Requests without a timestamp
// pass unless SetRequired(true) is used.
//
// # Errors
//
// Signature failures answer 403 {"error":"auth error"}. Unknown users answer
// 404 {"error":"not found"}. Priced nineum transfers answer 501.
//
// # Thread Safety
//
// Server and Store are safe for concurrent use.
package server
