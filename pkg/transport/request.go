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

package transport

import (
	"net/http"
	"net/url"
	"strings"
)

// Request describes one fount call. Path segments are escaped
// individually, so a public key or uuid can never change the route.
type Request struct {
	// Op names the operation in errors and logs
	Op string

	Method string
	Path   []string
	Query  url.Values

	// Body is JSON encoded when non-nil
	Body any

	// AllowEmpty accepts a 2xx response with no body
	AllowEmpty bool

	// Check validates the decoded value; a failure becomes a DecodeError
	Check func() error
}

// NewGet creates a GET request carrying timestamp and signature in the query
func NewGet(op string, timestamp, signature string, path ...string) *Request {
	q := url.Values{}
	q.Set("timestamp", timestamp)
	q.Set("signature", signature)
	return &Request{
		Op:     op,
		Method: http.MethodGet,
		Path:   path,
		Query:  q,
	}
}

// NewWithBody creates a request whose signed fields travel in the JSON body
func NewWithBody(op, method string, body any, path ...string) *Request {
	return &Request{
		Op:     op,
		Method: method,
		Path:   path,
		Body:   body,
	}
}

// EscapedPath returns the request path with each segment escaped
func (r *Request) EscapedPath() string {
	segments := make([]string, len(r.Path))
	for i, s := range r.Path {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
