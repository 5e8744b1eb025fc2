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

package client

import (
	"context"
	"net/http"
	"time"

	"github.com/planet-nine-app/fount-go/pkg/protocol"
	"github.com/planet-nine-app/fount-go/pkg/signer"
	"go.uber.org/zap"
)

// DefaultBaseURL is the fount deployment used when WithBaseURL is not given
const DefaultBaseURL = "https://dev.fount.allyabase.com/"

// ResolveHook may adjust a spell before Resolve sends it.
// Returning an error aborts the call.
type ResolveHook func(ctx context.Context, c *Client, spell *protocol.Spell) error

// Option configures a Client
type Option func(*options)

type options struct {
	baseURL     string
	httpClient  *http.Client
	logger      *zap.Logger
	resolveHook ResolveHook
	signer      signer.MessageSigner
	now         func() time.Time
}

func defaultOptions() *options {
	return &options{
		baseURL: DefaultBaseURL,
		logger:  zap.NewNop(),
	}
}

// WithBaseURL sets the fount service URL
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client used for every request.
// Use it to configure timeouts, proxies or TLS.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *options) {
		o.httpClient = httpClient
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithResolveHook installs a hook run by Resolve before the spell is sent
func WithResolveHook(hook ResolveHook) Option {
	return func(o *options) {
		o.resolveHook = hook
	}
}

// WithSigner replaces the signer built from the key pair
func WithSigner(s signer.MessageSigner) Option {
	return func(o *options) {
		o.signer = s
	}
}

// WithClock sets the time source for request timestamps
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}
