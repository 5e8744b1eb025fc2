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
	"errors"
	"fmt"
)

// Sentinels for errors.Is. Once the request body is encoded, every error
// returned by HTTPTransport.Call wraps exactly one of them. A body that
// cannot be marshaled is a caller error and wraps none.
var (
	// ErrTransport marks connection, DNS, TLS and cancellation failures
	ErrTransport = errors.New("fount transport failure")

	// ErrDecode marks responses whose body does not have the expected shape
	ErrDecode = errors.New("fount response could not be decoded")

	// ErrRemoteRejected marks requests the server refused
	ErrRemoteRejected = errors.New("fount rejected the request")
)

// maxBodyExcerpt bounds how much of a response body an error carries
const maxBodyExcerpt = 256

// TransportError is returned when the request never produced a response
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: request to %s failed: %v", e.Op, e.URL, e.Err)
}

// Unwrap exposes both ErrTransport and the underlying cause
func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

// DecodeError is returned when a response body does not match the
// expected shape
type DecodeError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: failed to decode response (status %d): %v", e.Op, e.StatusCode, e.Err)
}

// Unwrap exposes both ErrDecode and the underlying cause
func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}

// RemoteError is returned when the server refuses a request, either with a
// non-2xx status or with an error or success:false body
type RemoteError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: rejected with status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: rejected with status %d: %s", e.Op, e.StatusCode, e.Message)
}

// Unwrap returns ErrRemoteRejected
func (e *RemoteError) Unwrap() error {
	return ErrRemoteRejected
}

// IsRemoteRejected reports whether err is a server rejection
func IsRemoteRejected(err error) bool {
	return errors.Is(err, ErrRemoteRejected)
}

// StatusCode returns the HTTP status carried by err, or 0 when none
func StatusCode(err error) int {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.StatusCode
	}
	var decode *DecodeError
	if errors.As(err, &decode) {
		return decode.StatusCode
	}
	return 0
}

func excerpt(body []byte) string {
	if len(body) <= maxBodyExcerpt {
		return string(body)
	}
	return string(body[:maxBodyExcerpt]) + "..."
}
