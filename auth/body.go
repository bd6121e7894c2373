package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FormatBody renders v in the canonical JSON form covered by request
// signatures: items separated by ", ", keys and values separated by ": ",
// no HTML escaping. The gateway recomputes the HMAC over exactly these
// bytes, so a signed request must transmit this string verbatim.
func FormatBody(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to encode body: %w", err)
	}

	return expandSeparators(bytes.TrimSpace(buf.Bytes())), nil
}

// expandSeparators widens every separator in compact JSON: "," becomes ", "
// and ":" becomes ": ". Separator characters inside string literals are left
// untouched.
func expandSeparators(b []byte) string {
	var out strings.Builder
	out.Grow(len(b) + len(b)/4)

	inString := false
	escaped := false
	for i := 0; i < len(b); i++ {
		c := b[i]
		out.WriteByte(c)

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case ',', ':':
			out.WriteByte(' ')
		}
	}

	return out.String()
}
