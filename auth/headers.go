package auth

import (
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/w6g2000/polymarket-go-client/signer"
)

const (
	HeaderAddress    = "POLY_ADDRESS"
	HeaderSignature  = "POLY_SIGNATURE"
	HeaderTimestamp  = "POLY_TIMESTAMP"
	HeaderNonce      = "POLY_NONCE"
	HeaderAPIKey     = "POLY_API_KEY"
	HeaderPassphrase = "POLY_PASSPHRASE"
)

// APICreds is the API key / secret / passphrase triple issued by the
// /auth/api-key endpoints and required for L2 authentication.
type APICreds struct {
	ApiKey     string `json:"apiKey"`
	Secret     string `json:"secret"`
	Passphrase string `json:"passphrase"`
}

// CreateL1Headers builds the wallet-signature header set used for api key
// bootstrap. A nil nonce means zero.
func CreateL1Headers(s signer.Signer, chainID uint64, nonce *big.Int) (map[string]string, error) {
	if nonce == nil {
		nonce = big.NewInt(0)
	}
	timestamp := strconv.FormatInt(time.Now().UTC().Unix(), 10)

	signature, err := signer.SignClobAuth(s, timestamp, nonce, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create clob auth signature: %w", err)
	}

	return map[string]string{
		HeaderAddress:   s.Address().Hex(),
		HeaderSignature: signature,
		HeaderTimestamp: timestamp,
		HeaderNonce:     nonce.String(),
	}, nil
}

// CreateL2Headers builds the API-credential header set for a request. When
// body is non-nil its canonical form is signed and returned; the request
// must transmit that exact string or the gateway rejects the signature.
func CreateL2Headers(s signer.Signer, creds APICreds, method, requestPath string, body any) (map[string]string, string, error) {
	timestamp := time.Now().UTC().Unix()

	bodyStr := ""
	if body != nil {
		var err error
		bodyStr, err = FormatBody(body)
		if err != nil {
			return nil, "", err
		}
	}

	signature, err := BuildHmacSignature(creds.Secret, timestamp, method, requestPath, bodyStr)
	if err != nil {
		return nil, "", err
	}

	headers := map[string]string{
		HeaderAddress:    s.Address().Hex(),
		HeaderSignature:  signature,
		HeaderTimestamp:  strconv.FormatInt(timestamp, 10),
		HeaderAPIKey:     creds.ApiKey,
		HeaderPassphrase: creds.Passphrase,
	}

	return headers, bodyStr, nil
}
