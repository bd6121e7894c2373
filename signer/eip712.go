package signer

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// EIP-712 signing for the CTF exchange order struct and the CLOB auth
// attestation. Reference:
// https://github.com/Polymarket/clob-client/blob/main/src/signing/eip712.ts
const (
	orderDomainName    = "Polymarket CTF Exchange"
	orderDomainVersion = "1"

	authDomainName    = "ClobAuthDomain"
	authDomainVersion = "1"

	// AuthMessage is the fixed attestation covered by L1 auth signatures.
	AuthMessage = "This message attests that I control the given wallet"
)

// Order is the typed-data record verified by the settlement contract. All
// uint256 fields are non-negative.
type Order struct {
	Salt          *big.Int
	Maker         common.Address
	Signer        common.Address
	Taker         common.Address
	TokenID       *big.Int
	MakerAmount   *big.Int
	TakerAmount   *big.Int
	Expiration    *big.Int
	Nonce         *big.Int
	FeeRateBps    *big.Int
	Side          uint8
	SignatureType uint8
}

// SignOrder hashes the order as EIP-712 typed data against the verifying
// exchange contract and signs the digest.
func SignOrder(s Signer, order *Order, chainID uint64, verifyingContract common.Address) (string, error) {
	return signTypedData(s, orderTypedData(order, chainID, verifyingContract))
}

func orderTypedData(order *Order, chainID uint64, verifyingContract common.Address) apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": []apitypes.Type{
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"Order": []apitypes.Type{
				{Name: "salt", Type: "uint256"},
				{Name: "maker", Type: "address"},
				{Name: "signer", Type: "address"},
				{Name: "taker", Type: "address"},
				{Name: "tokenId", Type: "uint256"},
				{Name: "makerAmount", Type: "uint256"},
				{Name: "takerAmount", Type: "uint256"},
				{Name: "expiration", Type: "uint256"},
				{Name: "nonce", Type: "uint256"},
				{Name: "feeRateBps", Type: "uint256"},
				{Name: "side", Type: "uint8"},
				{Name: "signatureType", Type: "uint8"},
			},
		},
		PrimaryType: "Order",
		Domain: apitypes.TypedDataDomain{
			Name:              orderDomainName,
			Version:           orderDomainVersion,
			ChainId:           math.NewHexOrDecimal256(int64(chainID)),
			VerifyingContract: verifyingContract.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"salt":          order.Salt.String(),
			"maker":         strings.ToLower(order.Maker.Hex()),
			"signer":        strings.ToLower(order.Signer.Hex()),
			"taker":         strings.ToLower(order.Taker.Hex()),
			"tokenId":       order.TokenID.String(),
			"makerAmount":   order.MakerAmount.String(),
			"takerAmount":   order.TakerAmount.String(),
			"expiration":    order.Expiration.String(),
			"nonce":         order.Nonce.String(),
			"feeRateBps":    order.FeeRateBps.String(),
			"side":          strconv.Itoa(int(order.Side)),
			"signatureType": strconv.Itoa(int(order.SignatureType)),
		},
	}
}

// SignClobAuth signs the wallet-control attestation used by L1 headers. The
// domain carries only the chain id, no verifying contract.
func SignClobAuth(s Signer, timestamp string, nonce *big.Int, chainID uint64) (string, error) {
	return signTypedData(s, authTypedData(s.Address(), timestamp, nonce, chainID))
}

func authTypedData(address common.Address, timestamp string, nonce *big.Int, chainID uint64) apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": []apitypes.Type{
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
			},
			"ClobAuth": []apitypes.Type{
				{Name: "address", Type: "address"},
				{Name: "timestamp", Type: "string"},
				{Name: "nonce", Type: "uint256"},
				{Name: "message", Type: "string"},
			},
		},
		PrimaryType: "ClobAuth",
		Domain: apitypes.TypedDataDomain{
			Name:    authDomainName,
			Version: authDomainVersion,
			ChainId: math.NewHexOrDecimal256(int64(chainID)),
		},
		Message: apitypes.TypedDataMessage{
			"address":   address.Hex(),
			"timestamp": timestamp,
			"nonce":     nonce.String(),
			"message":   AuthMessage,
		},
	}
}

func typedDataDigest(typedData apitypes.TypedData) (common.Hash, error) {
	domainSeparator, err := typedData.HashStruct("EIP712Domain", typedData.Domain.Map())
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to hash domain: %w", err)
	}

	messageHash, err := typedData.HashStruct(typedData.PrimaryType, typedData.Message)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to hash message: %w", err)
	}

	rawData := []byte{0x19, 0x01}
	rawData = append(rawData, domainSeparator...)
	rawData = append(rawData, messageHash...)
	return crypto.Keccak256Hash(rawData), nil
}

func signTypedData(s Signer, typedData apitypes.TypedData) (string, error) {
	digest, err := typedDataDigest(typedData)
	if err != nil {
		return "", err
	}

	signature, err := s.SignDigest(digest)
	if err != nil {
		return "", fmt.Errorf("failed to sign: %w", err)
	}
	if len(signature) != crypto.SignatureLength {
		return "", fmt.Errorf("unexpected signature length %d", len(signature))
	}

	signature[64] += 27

	return "0x" + hex.EncodeToString(signature), nil
}
