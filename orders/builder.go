package orders

import (
	"errors"
	"fmt"
	"math/big"
	"math/rand"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/w6g2000/polymarket-go-client/config"
	"github.com/w6g2000/polymarket-go-client/signer"
)

var (
	// ErrNotEnoughLiquidity means the book side ran out before the target
	// notional was covered. Expected in steady state on thin markets.
	ErrNotEnoughLiquidity = errors.New("not enough liquidity to fill amount")
	// ErrPriceOutOfRange means the price fell outside [tick, 1-tick].
	ErrPriceOutOfRange = errors.New("price is not in range of tick size")
)

// SaltSource produces per-order salts. Salts only keep order hashes
// distinct; they are not security material.
type SaltSource func() uint64

func generateSalt() uint64 {
	return uint64(float64(time.Now().UTC().Unix()) * rand.Float64())
}

// OrderBuilder assembles and signs settlement-contract orders. It owns the
// wallet signing capability exclusively and holds no mutable state after
// construction, so one instance serves concurrent callers.
type OrderBuilder struct {
	signer  signer.Signer
	sigType SigType
	funder  common.Address
	salt    SaltSource
}

// NewOrderBuilder wires a builder to a wallet. A nil funder defaults the
// funding account to the signer's own address.
func NewOrderBuilder(s signer.Signer, sigType SigType, funder *common.Address) *OrderBuilder {
	f := s.Address()
	if funder != nil {
		f = *funder
	}
	return &OrderBuilder{
		signer:  s,
		sigType: sigType,
		funder:  f,
		salt:    generateSalt,
	}
}

func (b *OrderBuilder) SigType() SigType {
	return b.sigType
}

func resolvedRoundConfig(options CreateOrderOptions) (RoundConfig, error) {
	if options.TickSize.IsZero() {
		return RoundConfig{}, errors.New("cannot create order without tick size")
	}
	if options.NegRisk == nil {
		return RoundConfig{}, errors.New("cannot create order without neg risk flag")
	}
	return roundConfigFor(options.TickSize)
}

// CreateOrder rounds, assembles and signs a limit order. The options must
// already carry a concrete tick size and neg-risk flag; price range checking
// is the caller's job before signing work starts.
func (b *OrderBuilder) CreateOrder(chainID uint64, args OrderArgs, expiration uint64, extras ExtraOrderArgs, options CreateOrderOptions) (*SignedOrderRequest, error) {
	cfg, err := resolvedRoundConfig(options)
	if err != nil {
		return nil, err
	}

	makerAmount, takerAmount, err := getOrderAmounts(args.Side, args.Size, args.Price, cfg)
	if err != nil {
		return nil, err
	}

	contracts, err := config.GetContractConfig(chainID, *options.NegRisk)
	if err != nil {
		return nil, err
	}

	return b.buildSignedOrder(args.TokenID, args.Side, chainID, contracts.Exchange, makerAmount, takerAmount, expiration, extras)
}

// CreateMarketOrder signs a market buy of args.Amount collateral at the
// supplied book price (see CalculateMarketPrice).
func (b *OrderBuilder) CreateMarketOrder(chainID uint64, args MarketOrderArgs, price decimal.Decimal, extras ExtraOrderArgs, options CreateOrderOptions) (*SignedOrderRequest, error) {
	cfg, err := resolvedRoundConfig(options)
	if err != nil {
		return nil, err
	}

	makerAmount, takerAmount, err := getMarketOrderAmounts(args.Amount, price, cfg)
	if err != nil {
		return nil, err
	}

	contracts, err := config.GetContractConfig(chainID, *options.NegRisk)
	if err != nil {
		return nil, err
	}

	return b.buildSignedOrder(args.TokenID, BUY, chainID, contracts.Exchange, makerAmount, takerAmount, 0, extras)
}

// CalculateMarketPrice walks book levels best-first and returns the price of
// the level at which the cumulative notional covers amountToMatch.
func (b *OrderBuilder) CalculateMarketPrice(levels []OrderSummary, amountToMatch decimal.Decimal) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, level := range levels {
		sum = sum.Add(level.Size.Mul(level.Price))
		if sum.GreaterThanOrEqual(amountToMatch) {
			return level.Price, nil
		}
	}
	return decimal.Decimal{}, fmt.Errorf("%w: amount=%s", ErrNotEnoughLiquidity, amountToMatch)
}

func (b *OrderBuilder) buildSignedOrder(tokenID string, side Side, chainID uint64, exchange common.Address, makerAmount, takerAmount, expiration uint64, extras ExtraOrderArgs) (*SignedOrderRequest, error) {
	salt := b.salt()

	taker := extras.Taker
	if taker == "" {
		taker = zeroAddress
	}
	if !common.IsHexAddress(taker) {
		return nil, fmt.Errorf("invalid taker address %q", taker)
	}
	takerAddress := common.HexToAddress(taker)

	tokenIDInt, ok := new(big.Int).SetString(tokenID, 10)
	if !ok {
		return nil, fmt.Errorf("incorrect tokenId format %q", tokenID)
	}

	nonce := extras.Nonce
	if nonce == nil {
		nonce = big.NewInt(0)
	}

	order := &signer.Order{
		Salt:          new(big.Int).SetUint64(salt),
		Maker:         b.funder,
		Signer:        b.signer.Address(),
		Taker:         takerAddress,
		TokenID:       tokenIDInt,
		MakerAmount:   new(big.Int).SetUint64(makerAmount),
		TakerAmount:   new(big.Int).SetUint64(takerAmount),
		Expiration:    new(big.Int).SetUint64(expiration),
		Nonce:         nonce,
		FeeRateBps:    new(big.Int).SetUint64(uint64(extras.FeeRateBps)),
		Side:          uint8(side),
		SignatureType: uint8(b.sigType),
	}

	signature, err := signer.SignOrder(b.signer, order, chainID, exchange)
	if err != nil {
		return nil, fmt.Errorf("failed to sign order: %w", err)
	}

	return &SignedOrderRequest{
		Salt:          salt,
		Maker:         b.funder.Hex(),
		Signer:        b.signer.Address().Hex(),
		Taker:         takerAddress.Hex(),
		TokenID:       tokenID,
		MakerAmount:   strconv.FormatUint(makerAmount, 10),
		TakerAmount:   strconv.FormatUint(takerAmount, 10),
		Expiration:    strconv.FormatUint(expiration, 10),
		Nonce:         nonce.String(),
		FeeRateBps:    strconv.FormatUint(uint64(extras.FeeRateBps), 10),
		Side:          side.String(),
		SignatureType: uint8(b.sigType),
		Signature:     signature,
	}, nil
}
