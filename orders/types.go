package orders

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Side of an order. The numeric values match the on-chain representation.
type Side uint8

const (
	BUY Side = iota
	SELL
)

func (s Side) String() string {
	if s == SELL {
		return "SELL"
	}
	return "BUY"
}

func (s Side) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func (s *Side) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"BUY"`:
		*s = BUY
	case `"SELL"`:
		*s = SELL
	default:
		return fmt.Errorf("unknown side %s", data)
	}
	return nil
}

// SigType selects the signature scheme the exchange verifies the order with.
type SigType uint8

const (
	// Eoa orders carry plain ECDSA EIP-712 signatures from the maker's
	// externally owned account.
	Eoa SigType = iota
	// PolyProxy orders are signed by the EOA owning a Polymarket proxy wallet.
	PolyProxy
	// PolyGnosisSafe orders are signed by the EOA owning a Polymarket Gnosis
	// safe.
	PolyGnosisSafe
)

type OrderType string

const (
	GTC OrderType = "GTC"
	FOK OrderType = "FOK"
	GTD OrderType = "GTD"
	FAK OrderType = "FAK"
)

const zeroAddress = "0x0000000000000000000000000000000000000000"

// OrderArgs describes a limit order intent.
type OrderArgs struct {
	TokenID string
	Price   decimal.Decimal
	Size    decimal.Decimal
	Side    Side
}

// MarketOrderArgs describes a market buy of a notional collateral amount.
type MarketOrderArgs struct {
	TokenID string
	Amount  decimal.Decimal
}

// ExtraOrderArgs carries optional order overrides. The zero value means no
// fee, nonce zero and any taker may fill.
type ExtraOrderArgs struct {
	FeeRateBps uint32
	Nonce      *big.Int // nil means zero
	Taker      string   // empty means the zero address
}

// CreateOrderOptions must be fully resolved against exchange metadata before
// an order can be built: a zero TickSize or nil NegRisk is rejected.
type CreateOrderOptions struct {
	TickSize decimal.Decimal
	NegRisk  *bool
}

// OrderSummary is one priced level of an order book side.
type OrderSummary struct {
	Price decimal.Decimal `json:"price"`
	Size  decimal.Decimal `json:"size"`
}

// SignedOrderRequest is the wire form of a signed order. Amount fields are
// decimal strings so no precision is lost crossing serialization boundaries.
type SignedOrderRequest struct {
	Salt          uint64 `json:"salt"`
	Maker         string `json:"maker"`
	Signer        string `json:"signer"`
	Taker         string `json:"taker"`
	TokenID       string `json:"tokenId"`
	MakerAmount   string `json:"makerAmount"`
	TakerAmount   string `json:"takerAmount"`
	Expiration    string `json:"expiration"`
	Nonce         string `json:"nonce"`
	FeeRateBps    string `json:"feeRateBps"`
	Side          string `json:"side"`
	SignatureType uint8  `json:"signatureType"`
	Signature     string `json:"signature"`
}
