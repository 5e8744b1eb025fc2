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

// Package transport sends sessionless-signed requests to a fount service.
//
// The caller signs; this package only places the already-signed fields in
// the query (GET) or the JSON body (PUT, POST, DELETE), issues the request
// and decodes the response:
//
//	t, err := transport.NewHTTPTransport("https://dev.fount.allyabase.com/", nil, logger)
//	if err != nil {
//	    return err
//	}
//
//	var user protocol.User
//	req := transport.NewGet("getUserByUUID", ts, sig, "user", uuid)
//	if err := t.Call(ctx, req, &user); err != nil {
//	    return err
//	}
//
// # Errors
//
// Every failure is one of three types, each matching a sentinel:
//
//   - *TransportError (ErrTransport): no response, including context cancellation
//   - *DecodeError (ErrDecode): the body does not have the expected shape
//   - *RemoteError (ErrRemoteRejected): non-2xx status, a {"success": false}
//     body, or a 2xx body holding only an "error" field
//
// Nothing is retried.
//
// # Logging
//
// Requests are logged with zap at debug level and rejections at warn level.
// Query strings are never logged, so signatures stay out of the logs.
package transport
