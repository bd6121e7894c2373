package orders

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// RoundConfig fixes the number of decimal places legal for the price, size
// and notional amount of an order at a given tick size.
type RoundConfig struct {
	Price  int32
	Size   int32
	Amount int32
}

var roundingConfig = []struct {
	tick decimal.Decimal
	cfg  RoundConfig
}{
	{decimal.RequireFromString("0.1"), RoundConfig{Price: 1, Size: 2, Amount: 3}},
	{decimal.RequireFromString("0.01"), RoundConfig{Price: 2, Size: 2, Amount: 4}},
	{decimal.RequireFromString("0.001"), RoundConfig{Price: 3, Size: 2, Amount: 5}},
	{decimal.RequireFromString("0.0001"), RoundConfig{Price: 4, Size: 2, Amount: 6}},
}

func roundConfigFor(tickSize decimal.Decimal) (RoundConfig, error) {
	for _, entry := range roundingConfig {
		if tickSize.Equal(entry.tick) {
			return entry.cfg, nil
		}
	}
	return RoundConfig{}, fmt.Errorf("unsupported tick size %s", tickSize)
}

var (
	half           = decimal.New(5, -1)
	one            = decimal.New(1, 0)
	tokenUnitScale = decimal.New(1, 6)
	maxTokenUnits  = decimal.NewFromInt(math.MaxUint32)
)

func scale(d decimal.Decimal) int32 {
	if e := d.Exponent(); e < 0 {
		return -e
	}
	return 0
}

// roundHalfTowardZero rounds to places decimal places with ties going toward
// zero.
func roundHalfTowardZero(d decimal.Decimal, places int32) decimal.Decimal {
	shifted := d.Shift(places)
	trunc := shifted.Truncate(0)
	frac := shifted.Sub(trunc).Abs()
	if frac.GreaterThan(half) {
		if d.Sign() < 0 {
			trunc = trunc.Sub(one)
		} else {
			trunc = trunc.Add(one)
		}
	}
	return trunc.Shift(-places)
}

// fixAmountRounding repairs the stray fractional digits a decimal
// multiplication can leave past the amount precision: first a generous
// away-from-zero rounding four places past the limit, then a plain
// truncation if digits still remain. The intermediate step lets an amount
// sitting at x.9999... drift carry up to its intended value instead of being
// truncated away. Verifying parties recompute amounts with these exact
// steps, so the order matters.
func fixAmountRounding(amt decimal.Decimal, cfg RoundConfig) decimal.Decimal {
	if scale(amt) > cfg.Amount {
		amt = amt.RoundUp(cfg.Amount + 4)
		if scale(amt) > cfg.Amount {
			amt = amt.Truncate(cfg.Amount)
		}
	}
	return amt
}

// clampAmountPrecision pins the two order legs to the on-wire precision: the
// collateral leg keeps 2 decimal places, the outcome token leg 4.
func clampAmountPrecision(side Side, maker, taker decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if side == BUY {
		return roundHalfTowardZero(maker, 2), roundHalfTowardZero(taker, 4)
	}
	return roundHalfTowardZero(maker, 4), roundHalfTowardZero(taker, 2)
}

// decimalToTokenUnits converts a clamped amount to integer exchange units at
// 10^6 scale. Any residual fraction rounds half toward zero. The exchange
// encodes amounts as uint32, so anything larger is rejected.
func decimalToTokenUnits(amt decimal.Decimal) (uint64, error) {
	units := amt.Mul(tokenUnitScale)
	if scale(units) > 0 {
		units = roundHalfTowardZero(units, 0)
	}
	if units.Sign() < 0 || units.GreaterThan(maxTokenUnits) {
		return 0, fmt.Errorf("amount %s does not fit token units", amt)
	}
	return units.BigInt().Uint64(), nil
}

// getOrderAmounts turns a limit order's decimal price and size into the two
// integer legs of the order. The maker leg is what the creator offers, the
// taker leg what they expect back.
func getOrderAmounts(side Side, size, price decimal.Decimal, cfg RoundConfig) (uint64, uint64, error) {
	rawPrice := roundHalfTowardZero(price, cfg.Price)

	var rawMaker, rawTaker decimal.Decimal
	switch side {
	case BUY:
		rawTaker = size.Truncate(cfg.Size)
		rawMaker = fixAmountRounding(rawTaker.Mul(rawPrice), cfg)
	case SELL:
		rawMaker = size.Truncate(cfg.Size)
		rawTaker = fixAmountRounding(rawMaker.Mul(rawPrice), cfg)
	default:
		return 0, 0, fmt.Errorf("unknown side %d", side)
	}

	makerAmt, takerAmt := clampAmountPrecision(side, rawMaker, rawTaker)

	maker, err := decimalToTokenUnits(makerAmt)
	if err != nil {
		return 0, 0, err
	}
	taker, err := decimalToTokenUnits(takerAmt)
	if err != nil {
		return 0, 0, err
	}
	return maker, taker, nil
}

// getMarketOrderAmounts prices a market buy: the maker leg is the requested
// notional, the taker leg the tokens it purchases at the book price. The
// clamp treats the order as a BUY.
func getMarketOrderAmounts(amount, price decimal.Decimal, cfg RoundConfig) (uint64, uint64, error) {
	rawMaker := amount.Truncate(cfg.Size)
	rawPrice := roundHalfTowardZero(price, cfg.Price)
	if rawPrice.Sign() <= 0 {
		return 0, 0, fmt.Errorf("market price %s must be positive", price)
	}

	rawTaker := fixAmountRounding(rawMaker.Div(rawPrice), cfg)

	makerAmt, takerAmt := clampAmountPrecision(BUY, rawMaker, rawTaker)

	maker, err := decimalToTokenUnits(makerAmt)
	if err != nil {
		return 0, 0, err
	}
	taker, err := decimalToTokenUnits(takerAmt)
	if err != nil {
		return 0, 0, err
	}
	return maker, taker, nil
}

// PriceInRange reports whether price lies in [tickSize, 1-tickSize]. Binary
// outcome markets never trade at the 0/1 probability extremes, and the
// gateway rejects orders outside this interval, so callers check it before
// any signing work happens.
func PriceInRange(price, tickSize decimal.Decimal) bool {
	return price.GreaterThanOrEqual(tickSize) && price.LessThanOrEqual(one.Sub(tickSize))
}
