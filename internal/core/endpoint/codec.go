// Package endpoint converts local endpoint paths to storage keys and back.
package endpoint

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const upperhex = "0123456789ABCDEF"

// DecodeError reports a storage key that cannot be turned back into a path.
type DecodeError struct {
	Key    string
	Offset int
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding key %q at offset %d: %s", e.Key, e.Offset, e.Reason)
}

// shouldEscape reports whether b is escaped in a storage key. The set covers
// ASCII controls, the URL fragment reserved characters, '%' itself and every
// byte of a multi-byte UTF-8 sequence.
func shouldEscape(b byte) bool {
	if b < 0x20 || b >= 0x7F {
		return true
	}
	switch b {
	case ' ', '"', '<', '>', '`', '%':
		return true
	}
	return false
}

// Encode returns the storage key for path. '/' and other printable ASCII
// characters outside the escape set are left as they are.
func Encode(path string) string {
	n := 0
	for i := 0; i < len(path); i++ {
		if shouldEscape(path[i]) {
			n++
		}
	}
	if n == 0 {
		return path
	}

	var b strings.Builder
	b.Grow(len(path) + 2*n)
	for i := 0; i < len(path); i++ {
		c := path[i]
		if shouldEscape(c) {
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&0x0F])
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Decode reverses Encode. It fails on malformed escapes and on escapes that
// do not decode to valid UTF-8.
func Decode(key string) (string, error) {
	if !strings.Contains(key, "%") {
		if !utf8.ValidString(key) {
			return "", &DecodeError{Key: key, Offset: invalidOffset(key), Reason: "invalid UTF-8"}
		}
		return key, nil
	}

	buf := make([]byte, 0, len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c != '%' {
			buf = append(buf, c)
			continue
		}
		if i+2 >= len(key) {
			return "", &DecodeError{Key: key, Offset: i, Reason: "truncated escape"}
		}
		hi, ok1 := unhex(key[i+1])
		lo, ok2 := unhex(key[i+2])
		if !ok1 || !ok2 {
			return "", &DecodeError{Key: key, Offset: i, Reason: fmt.Sprintf("invalid escape %q", key[i:i+3])}
		}
		buf = append(buf, hi<<4|lo)
		i += 2
	}

	if !utf8.Valid(buf) {
		return "", &DecodeError{Key: key, Offset: invalidOffset(string(buf)), Reason: "escape does not decode to valid UTF-8"}
	}
	return string(buf), nil
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// invalidOffset returns the byte offset of the first invalid rune in s.
func invalidOffset(s string) int {
	for i, r := range s {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(s[i:]); size <= 1 {
				return i
			}
		}
	}
	return len(s)
}
