// Package response defines the persisted unit of a captured response and its
// wire format.
package response

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"unicode/utf8"
)

// StorableResponse is a captured response body together with its headers.
// Header names are lower-case and carry a single value each.
type StorableResponse struct {
	Body    string            `json:"body"`
	Headers map[string]string `json:"headers"`
}

// New returns a StorableResponse with a non-nil header map.
func New(body string, headers map[string]string) StorableResponse {
	if headers == nil {
		headers = map[string]string{}
	}
	return StorableResponse{Body: body, Headers: headers}
}

// SerializationError reports a stored value that is not a valid record, or a
// record that could not be encoded.
type SerializationError struct {
	Reason string
	Err    error
}

func (e *SerializationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("serialization: %s: %v", e.Reason, e.Err)
	}
	return "serialization: " + e.Reason
}

func (e *SerializationError) Unwrap() error { return e.Err }

// Marshal encodes r in its wire format.
func Marshal(r StorableResponse) (string, error) {
	if r.Headers == nil {
		r.Headers = map[string]string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return "", &SerializationError{Reason: "encoding record", Err: err}
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// wireRecord distinguishes absent and null fields from empty ones.
type wireRecord struct {
	Body    *string            `json:"body"`
	Headers *map[string]string `json:"headers"`
}

// Unmarshal decodes a stored value. Both fields must be present and typed
// correctly.
func Unmarshal(data string) (StorableResponse, error) {
	var w wireRecord
	if err := json.Unmarshal([]byte(data), &w); err != nil {
		return StorableResponse{}, &SerializationError{Reason: "decoding record", Err: err}
	}
	if w.Body == nil {
		return StorableResponse{}, &SerializationError{Reason: `missing field "body"`}
	}
	if w.Headers == nil || *w.Headers == nil {
		return StorableResponse{}, &SerializationError{Reason: `missing field "headers"`}
	}
	return StorableResponse{Body: *w.Body, Headers: *w.Headers}, nil
}

// HeadersFromHTTP flattens h into one lower-cased entry per name. When a name
// has several values the last one is kept. Values that are not valid UTF-8
// are dropped.
func HeadersFromHTTP(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vals := range h {
		if len(vals) == 0 {
			continue
		}
		v := vals[len(vals)-1]
		if !utf8.ValidString(v) {
			continue
		}
		out[strings.ToLower(k)] = v
	}
	return out
}

// replayDenied lists headers that describe the upstream transfer rather than
// the payload and must not be written back by the mock server.
var replayDenied = map[string]bool{
	"transfer-encoding": true,
	"connection":        true,
	"keep-alive":        true,
	"proxy-connection":  true,
	"upgrade":           true,
	"te":                true,
	"trailer":           true,
	"content-length":    true,
}

// IsReplayable reports whether a stored header may be sent on replay.
func IsReplayable(name string) bool {
	return !replayDenied[strings.ToLower(name)]
}

// ReplayHeaders returns the headers to send when serving r.
func (r StorableResponse) ReplayHeaders() map[string]string {
	out := make(map[string]string, len(r.Headers))
	for k, v := range r.Headers {
		if IsReplayable(k) {
			out[k] = v
		}
	}
	return out
}

// HeaderNames returns the stored header names in sorted order.
func (r StorableResponse) HeaderNames() []string {
	names := make([]string, 0, len(r.Headers))
	for k := range r.Headers {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ContentType returns the stored content-type header, if any.
func (r StorableResponse) ContentType() string {
	for k, v := range r.Headers {
		if strings.EqualFold(k, "content-type") {
			return v
		}
	}
	return ""
}
