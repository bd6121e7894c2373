package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildHmacSignature(t *testing.T) {
	sig, err := BuildHmacSignature(
		"AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=",
		1000000,
		"test-sign",
		"/orders",
		`{"hash": "0x123"}`,
	)
	require.NoError(t, err)
	assert.Equal(t, "ZwAdJKvoYRlEKDkNMwd5BuwNNtg93kNaR_oU2HrfVvc=", sig)
}

func TestBuildHmacSignatureStable(t *testing.T) {
	a, err := BuildHmacSignature("c2VjcmV0LXNlY3JldC1zZWNyZXQ=", 1700000000, "GET", "/data/orders", "")
	require.NoError(t, err)
	b, err := BuildHmacSignature("c2VjcmV0LXNlY3JldC1zZWNyZXQ=", 1700000000, "GET", "/data/orders", "")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// every message component moves the signature
	c, err := BuildHmacSignature("c2VjcmV0LXNlY3JldC1zZWNyZXQ=", 1700000001, "GET", "/data/orders", "")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	d, err := BuildHmacSignature("c2VjcmV0LXNlY3JldC1zZWNyZXQ=", 1700000000, "DELETE", "/data/orders", "")
	require.NoError(t, err)
	assert.NotEqual(t, a, d)
}

func TestBuildHmacSignatureBadSecret(t *testing.T) {
	_, err := BuildHmacSignature("not base64!!", 1000000, "GET", "/", "")
	assert.Error(t, err)
}
