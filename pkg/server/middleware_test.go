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

package server

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const nowMillis int64 = 1718000000000

func fixedNow() time.Time {
	return time.UnixMilli(nowMillis)
}

func ms(offset time.Duration) string {
	return strconv.FormatInt(nowMillis+offset.Milliseconds(), 10)
}

// Test middleware passes a fresh query timestamp and records it in the context
func TestTimestampMiddleware_FreshQueryTimestamp(t *testing.T) {
	middleware := NewTimestampMiddleware(0, fixedNow)

	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true

		got, ok := GetTimestampFromContext(r.Context())
		assert.True(t, ok)
		assert.Equal(t, nowMillis-1000, got)

		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/user/x?timestamp="+ms(-time.Second)+"&signature=ab", nil)
	rr := httptest.NewRecorder()
	middleware.Wrap(handler).ServeHTTP(rr, req)

	assert.True(t, handlerCalled)
	assert.Equal(t, http.StatusOK, rr.Code)
}

// Test middleware rejects stale and future timestamps with a 200 error body
func TestTimestampMiddleware_OutOfWindow(t *testing.T) {
	middleware := NewTimestampMiddleware(DefaultTimestampWindow, fixedNow)

	for _, offset := range []time.Duration{-6 * time.Minute, 6 * time.Minute} {
		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		req := httptest.NewRequest("GET", "/user/x?timestamp="+ms(offset), nil)
		rr := httptest.NewRecorder()
		middleware.Wrap(handler).ServeHTTP(rr, req)

		assert.False(t, handlerCalled, "offset %s", offset)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"error":"no time like the present"}`, rr.Body.String())
	}
}

// Test middleware reads string and numeric body timestamps
func TestTimestampMiddleware_BodyTimestamp(t *testing.T) {
	middleware := NewTimestampMiddleware(time.Minute, fixedNow)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	tests := []struct {
		name string
		body string
		code int
	}{
		{"string fresh", `{"timestamp":"` + ms(0) + `"}`, http.StatusAccepted},
		{"number fresh", `{"timestamp":` + ms(0) + `}`, http.StatusAccepted},
		{"string stale", `{"timestamp":"` + ms(-2*time.Minute) + `"}`, http.StatusOK},
		{"no timestamp", `{"pubKey":"02ab"}`, http.StatusAccepted},
		{"not json", `timestamp`, http.StatusAccepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/user/create", bytes.NewReader([]byte(tt.body)))
			rr := httptest.NewRecorder()
			middleware.Wrap(handler).ServeHTTP(rr, req)
			assert.Equal(t, tt.code, rr.Code)
		})
	}
}

// Test middleware rejects missing timestamps when required
func TestTimestampMiddleware_Required(t *testing.T) {
	middleware := NewTimestampMiddleware(0, fixedNow)
	middleware.SetRequired(true)

	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
	})

	req := httptest.NewRequest("GET", "/user/x", nil)
	rr := httptest.NewRecorder()
	middleware.Wrap(handler).ServeHTTP(rr, req)

	assert.False(t, handlerCalled)
	assert.Contains(t, rr.Body.String(), "no time like the present")
}

// Test middleware with custom error handler
func TestTimestampMiddleware_CustomErrorHandler(t *testing.T) {
	customErrorCalled := false
	middleware := NewTimestampMiddleware(0, fixedNow)
	middleware.SetErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
		customErrorCalled = true
		assert.ErrorIs(t, err, ErrStaleTimestamp)
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("custom error"))
	})

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/user/x?timestamp=1", nil)
	rr := httptest.NewRecorder()
	middleware.Wrap(handler).ServeHTTP(rr, req)

	assert.True(t, customErrorCalled)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "custom error", rr.Body.String())
}

// Test middleware with OPTIONS request (CORS preflight)
func TestTimestampMiddleware_OptionsRequest(t *testing.T) {
	middleware := NewTimestampMiddleware(0, fixedNow)
	middleware.SetRequired(true)

	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("OPTIONS", "/user/create", nil)
	rr := httptest.NewRecorder()
	middleware.Wrap(handler).ServeHTTP(rr, req)

	assert.True(t, handlerCalled)
	assert.Equal(t, http.StatusOK, rr.Code)
}

// Test middleware preserves request body
func TestTimestampMiddleware_PreservesBody(t *testing.T) {
	middleware := NewTimestampMiddleware(0, fixedNow)

	originalBody := []byte(`{"timestamp":"` + ms(0) + `","pubKey":"02ab","signature":"cd"}`)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, originalBody, body)

		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("PUT", "/user/create", bytes.NewReader(originalBody))
	rr := httptest.NewRecorder()
	middleware.Wrap(handler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestGetTimestampFromContext_Missing(t *testing.T) {
	_, ok := GetTimestampFromContext(context.Background())
	assert.False(t, ok)
}

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	wrap := LoggingMiddleware(zap.New(core))

	ok := wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	denied := wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	ok.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/user/x?signature=secret", nil))
	denied.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/user/x/grant", nil))

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "/user/x", entries[0].ContextMap()["path"])
	assert.NotContains(t, entries[0].ContextMap(), "query")

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.EqualValues(t, http.StatusForbidden, entries[1].ContextMap()["status"])
}
