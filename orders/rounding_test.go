package orders

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRoundConfigFor(t *testing.T) {
	tests := []struct {
		tick string
		want RoundConfig
	}{
		{"0.1", RoundConfig{Price: 1, Size: 2, Amount: 3}},
		{"0.01", RoundConfig{Price: 2, Size: 2, Amount: 4}},
		{"0.001", RoundConfig{Price: 3, Size: 2, Amount: 5}},
		{"0.0001", RoundConfig{Price: 4, Size: 2, Amount: 6}},
	}
	for _, tt := range tests {
		cfg, err := roundConfigFor(d(tt.tick))
		require.NoError(t, err)
		assert.Equal(t, tt.want, cfg, "tick %s", tt.tick)
	}

	// trailing zeros still match the table entry
	cfg, err := roundConfigFor(d("0.010"))
	require.NoError(t, err)
	assert.Equal(t, RoundConfig{Price: 2, Size: 2, Amount: 4}, cfg)

	_, err = roundConfigFor(d("0.05"))
	assert.Error(t, err)
}

func TestRoundHalfTowardZero(t *testing.T) {
	tests := []struct {
		in     string
		places int32
		want   string
	}{
		{"0.125", 2, "0.12"},
		{"0.135", 2, "0.13"},
		{"0.136", 2, "0.14"},
		{"0.134", 2, "0.13"},
		{"-0.125", 2, "-0.12"},
		{"-0.126", 2, "-0.13"},
		{"1.5", 0, "1"},
		{"1.51", 0, "2"},
		{"0.5555", 3, "0.555"},
		{"0.42", 2, "0.42"},
	}
	for _, tt := range tests {
		got := roundHalfTowardZero(d(tt.in), tt.places)
		assert.True(t, got.Equal(d(tt.want)), "round(%s, %d) = %s, want %s", tt.in, tt.places, got, tt.want)
	}
}

func TestRoundHalfTowardZeroIdempotent(t *testing.T) {
	for _, in := range []string{"0.125", "0.136", "0.5", "123.456789"} {
		once := roundHalfTowardZero(d(in), 2)
		twice := roundHalfTowardZero(once, 2)
		assert.True(t, once.Equal(twice), "rounding %s twice changed the value", in)
	}
}

func TestGetOrderAmounts(t *testing.T) {
	tests := []struct {
		name      string
		side      Side
		size      string
		price     string
		tick      string
		wantMaker uint64
		wantTaker uint64
	}{
		{
			name: "buy at 35 cents", side: BUY,
			size: "100", price: "0.35", tick: "0.01",
			wantMaker: 35000000, wantTaker: 100000000,
		},
		{
			name: "sell at 35 cents", side: SELL,
			size: "100", price: "0.35", tick: "0.01",
			wantMaker: 100000000, wantTaker: 35000000,
		},
		{
			name: "buy rounds price half toward zero", side: BUY,
			size: "100", price: "0.555", tick: "0.01",
			wantMaker: 55000000, wantTaker: 100000000,
		},
		{
			name: "buy truncates size", side: BUY,
			size: "100.129", price: "0.5", tick: "0.01",
			wantMaker: 50060000, wantTaker: 100120000,
		},
		{
			name: "sell truncates size", side: SELL,
			size: "100.129", price: "0.5", tick: "0.01",
			wantMaker: 100120000, wantTaker: 50060000,
		},
		{
			// 82.82 * 0.1234 = 10.219988, collateral clamp carries it to 10.22
			name: "fine tick clamps collateral to two places", side: BUY,
			size: "82.82", price: "0.1234", tick: "0.0001",
			wantMaker: 10220000, wantTaker: 82820000,
		},
		{
			name: "coarse tick rounds price to one place", side: BUY,
			size: "10", price: "0.54", tick: "0.1",
			wantMaker: 5000000, wantTaker: 10000000,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := roundConfigFor(d(tt.tick))
			require.NoError(t, err)

			maker, taker, err := getOrderAmounts(tt.side, d(tt.size), d(tt.price), cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMaker, maker)
			assert.Equal(t, tt.wantTaker, taker)
		})
	}
}

func TestGetOrderAmountsIdempotent(t *testing.T) {
	cases := []struct {
		side  Side
		size  string
		price string
		tick  string
	}{
		{BUY, "100.129", "0.555", "0.01"},
		{SELL, "82.82", "0.1234", "0.0001"},
		{BUY, "10", "0.54", "0.1"},
		{SELL, "3.333", "0.123", "0.001"},
	}
	for _, tc := range cases {
		cfg, err := roundConfigFor(d(tc.tick))
		require.NoError(t, err)

		maker1, taker1, err := getOrderAmounts(tc.side, d(tc.size), d(tc.price), cfg)
		require.NoError(t, err)

		// already-rounded inputs reproduce the same integer units
		roundedSize := d(tc.size).Truncate(cfg.Size)
		roundedPrice := roundHalfTowardZero(d(tc.price), cfg.Price)
		maker2, taker2, err := getOrderAmounts(tc.side, roundedSize, roundedPrice, cfg)
		require.NoError(t, err)

		assert.Equal(t, maker1, maker2, "%+v", tc)
		assert.Equal(t, taker1, taker2, "%+v", tc)
	}
}

func TestGetOrderAmountsSideSymmetry(t *testing.T) {
	cfg, err := roundConfigFor(d("0.01"))
	require.NoError(t, err)

	// the collateral leg gets 2 places whichever side it sits on, so a
	// mirrored order swaps the legs exactly
	buyMaker, buyTaker, err := getOrderAmounts(BUY, d("21.04"), d("0.82"), cfg)
	require.NoError(t, err)
	sellMaker, sellTaker, err := getOrderAmounts(SELL, d("21.04"), d("0.82"), cfg)
	require.NoError(t, err)

	assert.Equal(t, buyTaker, sellMaker)
	assert.Equal(t, buyMaker, sellTaker)
	assert.Equal(t, uint64(17250000), buyMaker)
	assert.Equal(t, uint64(21040000), buyTaker)
}

func TestGetOrderAmountsOverflow(t *testing.T) {
	cfg, err := roundConfigFor(d("0.01"))
	require.NoError(t, err)

	// 5000 collateral is past the uint32 ceiling of ~4294.97
	_, _, err = getOrderAmounts(BUY, d("10000"), d("0.5"), cfg)
	assert.Error(t, err)
}

func TestGetMarketOrderAmounts(t *testing.T) {
	cfg, err := roundConfigFor(d("0.01"))
	require.NoError(t, err)

	maker, taker, err := getMarketOrderAmounts(d("100"), d("0.3"), cfg)
	require.NoError(t, err)
	assert.Equal(t, uint64(100000000), maker)
	// 100/0.3 repaired and truncated to the amount precision
	assert.Equal(t, uint64(333333300), taker)

	maker, taker, err = getMarketOrderAmounts(d("50"), d("0.5"), cfg)
	require.NoError(t, err)
	assert.Equal(t, uint64(50000000), maker)
	assert.Equal(t, uint64(100000000), taker)
}

func TestGetMarketOrderAmountsRejectsZeroPrice(t *testing.T) {
	cfg, err := roundConfigFor(d("0.01"))
	require.NoError(t, err)

	_, _, err = getMarketOrderAmounts(d("100"), d("0"), cfg)
	assert.Error(t, err)

	// a price that rounds to zero at the tick precision is also rejected
	_, _, err = getMarketOrderAmounts(d("100"), d("0.004"), cfg)
	assert.Error(t, err)
}

func TestFixAmountRounding(t *testing.T) {
	cfg := RoundConfig{Price: 2, Size: 2, Amount: 4}

	// within precision, untouched
	assert.True(t, fixAmountRounding(d("12.3456"), cfg).Equal(d("12.3456")))

	// drift just below the next representable value carries up
	assert.True(t, fixAmountRounding(d("1.23459999999"), cfg).Equal(d("1.2346")))

	// ordinary excess digits truncate
	assert.True(t, fixAmountRounding(d("1.23451"), cfg).Equal(d("1.2345")))
}

func TestDecimalToTokenUnits(t *testing.T) {
	units, err := decimalToTokenUnits(d("35"))
	require.NoError(t, err)
	assert.Equal(t, uint64(35000000), units)

	units, err = decimalToTokenUnits(d("0.0000005"))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), units)

	_, err = decimalToTokenUnits(d("-1"))
	assert.Error(t, err)

	_, err = decimalToTokenUnits(d("4295"))
	assert.Error(t, err)
}

func TestPriceInRange(t *testing.T) {
	tick := d("0.01")
	assert.True(t, PriceInRange(d("0.01"), tick))
	assert.True(t, PriceInRange(d("0.5"), tick))
	assert.True(t, PriceInRange(d("0.99"), tick))
	assert.False(t, PriceInRange(d("0.005"), tick))
	assert.False(t, PriceInRange(d("0.995"), tick))
	assert.False(t, PriceInRange(d("0"), tick))
	assert.False(t, PriceInRange(d("1"), tick))
}
