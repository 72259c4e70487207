package har

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/sadopc/jsonstash/internal/capture"
	"github.com/sadopc/jsonstash/internal/core/response"
)

// Capture is a response taken from a HAR entry, ready to be stored under
// Alias.
type Capture struct {
	Alias    string
	URL      string
	Response response.StorableResponse
}

// Skipped describes an entry that could not be imported.
type Skipped struct {
	URL    string
	Reason string
}

// Parse decodes a HAR archive.
func Parse(data []byte) (*HAR, error) {
	var h HAR
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("parsing HAR: %w", err)
	}
	if len(h.Log.Entries) == 0 {
		return nil, fmt.Errorf("HAR file contains no entries")
	}
	return &h, nil
}

// Captures converts every successful GET entry into a Capture keyed by the
// request URL path. Later entries for the same path replace earlier ones.
func Captures(h *HAR) ([]Capture, []Skipped) {
	var (
		captures []Capture
		skipped  []Skipped
		index    = map[string]int{}
	)

	for _, entry := range h.Log.Entries {
		c, reason := convertEntry(entry)
		if reason != "" {
			skipped = append(skipped, Skipped{URL: entry.Request.URL, Reason: reason})
			continue
		}
		if i, ok := index[c.Alias]; ok {
			captures[i] = c
			continue
		}
		index[c.Alias] = len(captures)
		captures = append(captures, c)
	}

	return captures, skipped
}

func convertEntry(entry HAREntry) (Capture, string) {
	if !strings.EqualFold(entry.Request.Method, http.MethodGet) {
		return Capture{}, fmt.Sprintf("method %s is not GET", entry.Request.Method)
	}
	if entry.Response.Status < 200 || entry.Response.Status > 299 {
		return Capture{}, fmt.Sprintf("status %d", entry.Response.Status)
	}

	u, err := url.Parse(entry.Request.URL)
	if err != nil {
		return Capture{}, fmt.Sprintf("invalid URL: %v", err)
	}
	alias := u.Path
	if alias == "" {
		alias = "/"
	}

	body, err := contentText(entry.Response.Content)
	if err != nil {
		return Capture{}, err.Error()
	}

	if isJSON(entry.Response.Content.MimeType) {
		canonical, err := capture.CanonicalJSON([]byte(body))
		if err != nil {
			return Capture{}, err.Error()
		}
		body = canonical
	}

	headers := make(map[string]string, len(entry.Response.Headers))
	for _, hdr := range entry.Response.Headers {
		name := strings.ToLower(hdr.Name)
		if strings.HasPrefix(name, ":") {
			continue // skip HTTP/2 pseudo-headers
		}
		headers[name] = hdr.Value
	}

	return Capture{
		Alias:    alias,
		URL:      entry.Request.URL,
		Response: response.New(body, headers),
	}, ""
}

func contentText(c HARContent) (string, error) {
	text := c.Text
	if strings.EqualFold(c.Encoding, "base64") {
		raw, err := base64.StdEncoding.DecodeString(c.Text)
		if err != nil {
			return "", fmt.Errorf("decoding base64 content: %w", err)
		}
		text = string(raw)
	}
	if !utf8.ValidString(text) {
		return "", fmt.Errorf("content is not valid UTF-8 text")
	}
	return text, nil
}

func isJSON(mimeType string) bool {
	return strings.Contains(strings.ToLower(mimeType), "json")
}
