package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
)

// BuildHmacSignature computes the L2 request signature: HMAC-SHA256 over
// timestamp || method || path || body, keyed with the URL-safe base64
// decoded secret. An empty body contributes nothing to the message. The
// result is URL-safe base64 encoded.
func BuildHmacSignature(secret string, timestamp int64, method, requestPath, body string) (string, error) {
	decoded, err := base64.URLEncoding.DecodeString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to decode secret: %w", err)
	}

	message := strconv.FormatInt(timestamp, 10) + method + requestPath + body

	mac := hmac.New(sha256.New, decoded)
	mac.Write([]byte(message))

	return base64.URLEncoding.EncodeToString(mac.Sum(nil)), nil
}
