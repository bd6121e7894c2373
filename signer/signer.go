package signer

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer is the wallet capability consumed by order building and request
// authentication. Implementations may hold a local key or delegate to a
// hardware or remote signer. SignDigest must return a 65-byte [R || S || V]
// signature with V in {0, 1}.
type Signer interface {
	Address() common.Address
	SignDigest(digest common.Hash) ([]byte, error)
}

// PrivateKeySigner signs with a local ECDSA private key.
type PrivateKeySigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

func NewPrivateKeySigner(privateKeyHex string) (*PrivateKeySigner, error) {
	if len(privateKeyHex) > 2 && privateKeyHex[:2] == "0x" {
		privateKeyHex = privateKeyHex[2:]
	}

	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	return &PrivateKeySigner{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

func (s *PrivateKeySigner) Address() common.Address {
	return s.address
}

func (s *PrivateKeySigner) SignDigest(digest common.Hash) ([]byte, error) {
	return crypto.Sign(digest.Bytes(), s.key)
}
