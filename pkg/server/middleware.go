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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

type contextKey string

const timestampKey contextKey = "fount_timestamp"

// DefaultTimestampWindow is how far a request timestamp may drift from the server clock
const DefaultTimestampWindow = 5 * time.Minute

// ErrStaleTimestamp is passed to the ErrorHandler for out-of-window requests
var ErrStaleTimestamp = errors.New("no time like the present")

// ErrorHandler handles rejected requests
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// TimestampMiddleware rejects requests whose timestamp is outside the
// accepted window. The timestamp is read from the query, then from a JSON body.
type TimestampMiddleware struct {
	window       time.Duration
	now          func() time.Time
	errorHandler ErrorHandler
	required     bool
}

// NewTimestampMiddleware creates a timestamp middleware
func NewTimestampMiddleware(window time.Duration, now func() time.Time) *TimestampMiddleware {
	if window <= 0 {
		window = DefaultTimestampWindow
	}
	if now == nil {
		now = time.Now
	}
	return &TimestampMiddleware{
		window:       window,
		now:          now,
		errorHandler: defaultErrorHandler,
	}
}

// SetErrorHandler sets a custom error handler
func (m *TimestampMiddleware) SetErrorHandler(handler ErrorHandler) {
	m.errorHandler = handler
}

// SetRequired sets whether requests without a timestamp are rejected.
// By default they pass through.
func (m *TimestampMiddleware) SetRequired(required bool) {
	m.required = required
}

// Wrap wraps an HTTP handler with the timestamp check
func (m *TimestampMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		raw := r.URL.Query().Get("timestamp")
		if raw == "" && r.Body != nil {
			bodyBytes, _ := io.ReadAll(r.Body)
			r.Body.Close()
			raw = bodyTimestamp(bodyBytes)

			// Restore body for handler
			r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			if m.required {
				m.errorHandler(w, r, fmt.Errorf("%w: missing timestamp", ErrStaleTimestamp))
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		drift := m.now().Sub(time.UnixMilli(ms))
		if drift > m.window || drift < -m.window {
			m.errorHandler(w, r, ErrStaleTimestamp)
			return
		}

		ctx := context.WithValue(r.Context(), timestampKey, ms)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bodyTimestamp extracts a string or numeric timestamp field from a JSON body
func bodyTimestamp(body []byte) string {
	var envelope struct {
		Timestamp json.RawMessage `json:"timestamp"`
	}
	if len(body) == 0 || json.Unmarshal(body, &envelope) != nil {
		return ""
	}
	return strings.Trim(string(envelope.Timestamp), `"`)
}

// GetTimestampFromContext returns the accepted request timestamp in milliseconds
func GetTimestampFromContext(ctx context.Context) (int64, bool) {
	ms, ok := ctx.Value(timestampKey).(int64)
	return ms, ok
}

// defaultErrorHandler answers 200 with an error body, as fount does
func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	writeJSON(w, http.StatusOK, errorBody(ErrStaleTimestamp.Error()))
}

// statusRecorder captures the status written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs one line per request. The query is left out so
// signatures never reach the log.
func LoggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("elapsed", time.Since(start)),
			}
			if rec.status >= http.StatusBadRequest {
				logger.Warn("request rejected", fields...)
				return
			}
			logger.Debug("request served", fields...)
		})
	}
}
