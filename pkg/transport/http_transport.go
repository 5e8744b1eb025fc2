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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// HTTPTransport sends signed fount requests over HTTP/JSON and classifies
// every failure as a TransportError, DecodeError or RemoteError.
//
// The transport holds no per-call state and is safe for concurrent use.
// Timeouts and cancellation come from the context and the http.Client.
type HTTPTransport struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPTransport creates a transport rooted at baseURL.
//
// Parameters:
//   - baseURL: absolute http(s) URL of the fount service; a trailing slash is added when missing
//   - httpClient: Optional HTTP client (nil to use http.DefaultClient)
//   - logger: Optional logger (nil to discard logs)
func NewHTTPTransport(baseURL string, httpClient *http.Client, logger *zap.Logger) (*HTTPTransport, error) {
	u, err := ParseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &HTTPTransport{
		baseURL:    u,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// ParseBaseURL validates raw as an absolute http(s) URL and normalizes it
// to end with a slash
func ParseBaseURL(raw string) (*url.URL, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("base URL cannot be empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: missing host", raw)
	}

	u.RawQuery = ""
	u.Fragment = ""
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
		u.RawPath = ""
	}
	return u, nil
}

// BaseURL returns the normalized base URL
func (t *HTTPTransport) BaseURL() string {
	return t.baseURL.String()
}

// URL returns the absolute URL of req without its query
func (t *HTTPTransport) URL(req *Request) string {
	return t.baseURL.String() + req.EscapedPath()
}

// Call sends req and decodes a successful JSON response into out.
// out may be nil when the caller only needs the outcome.
func (t *HTTPTransport) Call(ctx context.Context, req *Request, out any) error {
	endpoint := t.URL(req)
	target := endpoint
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("%s: failed to marshal request body: %w", req.Op, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return &TransportError{Op: req.Op, URL: endpoint, Err: fmt.Errorf("failed to create HTTP request: %w", err)}
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		t.logger.Warn("fount request failed",
			zap.String("op", req.Op),
			zap.String("method", req.Method),
			zap.String("url", endpoint),
			zap.Error(err))
		return &TransportError{Op: req.Op, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: req.Op, URL: endpoint, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	t.logger.Debug("fount response",
		zap.String("op", req.Op),
		zap.String("method", req.Method),
		zap.String("path", "/"+req.EscapedPath()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if err := classify(req.Op, resp.StatusCode, respBody); err != nil {
		t.logger.Warn("fount rejected request",
			zap.String("op", req.Op),
			zap.Int("status", resp.StatusCode),
			zap.Error(err))
		return err
	}

	if len(bytes.TrimSpace(respBody)) == 0 {
		if req.AllowEmpty {
			return nil
		}
		return &DecodeError{Op: req.Op, StatusCode: resp.StatusCode, Err: errors.New("empty response body")}
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &DecodeError{Op: req.Op, StatusCode: resp.StatusCode, Body: excerpt(respBody), Err: err}
	}

	if req.Check != nil {
		if err := req.Check(); err != nil {
			return &DecodeError{Op: req.Op, StatusCode: resp.StatusCode, Body: excerpt(respBody), Err: err}
		}
	}

	return nil
}

// classify turns non-2xx statuses and 2xx rejection bodies into a RemoteError.
// fount answers some rejections with 200 and {"error": "..."}, and others
// with {"success": false}.
func classify(op string, status int, body []byte) error {
	if status < 200 || status > 299 {
		return &RemoteError{Op: op, StatusCode: status, Message: remoteMessage(body)}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil
	}

	if raw, ok := fields["error"]; ok && len(fields) == 1 {
		return &RemoteError{Op: op, StatusCode: status, Message: stringValue(raw)}
	}

	if raw, ok := fields["success"]; ok && string(bytes.TrimSpace(raw)) == "false" {
		msg := "success=false"
		if errRaw, ok := fields["error"]; ok {
			msg = stringValue(errRaw)
		}
		return &RemoteError{Op: op, StatusCode: status, Message: msg}
	}

	return nil
}

func remoteMessage(body []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err == nil {
		if raw, ok := fields["error"]; ok {
			return stringValue(raw)
		}
	}
	return strings.TrimSpace(excerpt(body))
}

func stringValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
