package client

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/w6g2000/polymarket-go-client/orders"
)

// FlexUint64 decodes from either a JSON number or a quoted numeral; the API
// is not consistent about which it sends.
type FlexUint64 uint64

func (f *FlexUint64) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return err
	}
	*f = FlexUint64(v)
	return nil
}

// =============================
// CLOB response types
// =============================

type TickSizeResponse struct {
	MinimumTickSize decimal.Decimal `json:"minimum_tick_size"`
}

type NegRiskResponse struct {
	NegRisk bool `json:"neg_risk"`
}

type MidpointResponse struct {
	Mid decimal.Decimal `json:"mid"`
}

type PriceResponse struct {
	Price decimal.Decimal `json:"price"`
}

type SpreadResponse struct {
	Spread decimal.Decimal `json:"spread"`
}

type ApiKeysResponse struct {
	ApiKeys []string `json:"apiKeys"`
}

type OrderBookSummary struct {
	Market    string                `json:"market"`
	AssetID   string                `json:"asset_id"`
	Hash      string                `json:"hash"`
	Timestamp FlexUint64            `json:"timestamp"`
	Bids      []orders.OrderSummary `json:"bids"`
	Asks      []orders.OrderSummary `json:"asks"`
}

type OpenOrder struct {
	AssociateTrades []string         `json:"associate_trades"`
	ID              string           `json:"id"`
	Status          string           `json:"status"`
	Market          string           `json:"market"`
	OriginalSize    decimal.Decimal  `json:"original_size"`
	Outcome         string           `json:"outcome"`
	MakerAddress    string           `json:"maker_address"`
	Owner           string           `json:"owner"`
	Price           decimal.Decimal  `json:"price"`
	Side            orders.Side      `json:"side"`
	SizeMatched     decimal.Decimal  `json:"size_matched"`
	AssetID         string           `json:"asset_id"`
	Expiration      FlexUint64       `json:"expiration"`
	OrderType       orders.OrderType `json:"type"`
	CreatedAt       FlexUint64       `json:"created_at"`
}

type Token struct {
	TokenID string `json:"token_id"`
	Outcome string `json:"outcome"`
}

type Rewards struct {
	Rates            json.RawMessage  `json:"rates"`
	MinSize          decimal.Decimal  `json:"min_size"`
	MaxSpread        decimal.Decimal  `json:"max_spread"`
	EventStartDate   string           `json:"event_start_date"`
	EventEndDate     string           `json:"event_end_date"`
	InGameMultiplier *decimal.Decimal `json:"in_game_multiplier"`
	RewardEpoch      *decimal.Decimal `json:"reward_epoch"`
}

type Market struct {
	ConditionID        string          `json:"condition_id"`
	Tokens             [2]Token        `json:"tokens"`
	Rewards            Rewards         `json:"rewards"`
	MinIncentiveSize   string          `json:"min_incentive_size"`
	MaxIncentiveSpread string          `json:"max_incentive_spread"`
	Active             bool            `json:"active"`
	Closed             bool            `json:"closed"`
	QuestionID         string          `json:"question_id"`
	MinimumOrderSize   decimal.Decimal `json:"minimum_order_size"`
	MinimumTickSize    decimal.Decimal `json:"minimum_tick_size"`
	Description        string          `json:"description"`
	Category           string          `json:"category"`
	EndDateISO         string          `json:"end_date_iso"`
	GameStartTime      string          `json:"game_start_time"`
	Question           string          `json:"question"`
	MarketSlug         string          `json:"market_slug"`
	SecondsDelay       decimal.Decimal `json:"seconds_delay"`
	Icon               string          `json:"icon"`
	FPMM               string          `json:"fpmm"`
}

type SimplifiedMarket struct {
	ConditionID        string   `json:"condition_id"`
	Tokens             [2]Token `json:"tokens"`
	Rewards            Rewards  `json:"rewards"`
	MinIncentiveSize   string   `json:"min_incentive_size"`
	MaxIncentiveSpread string   `json:"max_incentive_spread"`
	Active             bool     `json:"active"`
	Closed             bool     `json:"closed"`
}

type MarketsResponse struct {
	Limit      decimal.Decimal `json:"limit"`
	Count      decimal.Decimal `json:"count"`
	NextCursor string          `json:"next_cursor"`
	Data       []Market        `json:"data"`
}

type SimplifiedMarketsResponse struct {
	Limit      decimal.Decimal    `json:"limit"`
	Count      decimal.Decimal    `json:"count"`
	NextCursor string             `json:"next_cursor"`
	Data       []SimplifiedMarket `json:"data"`
}

type OrderScoringResponse struct {
	Scoring bool `json:"scoring"`
}

// BookParams identifies one token/side pair in batch price queries.
type BookParams struct {
	TokenID string      `json:"token_id"`
	Side    orders.Side `json:"side"`
}

type tokenParams struct {
	TokenID string `json:"token_id"`
}

// PostOrderRequest is the top-level order placement payload.
type PostOrderRequest struct {
	Order     *orders.SignedOrderRequest `json:"order"`
	Owner     string                     `json:"owner"`
	OrderType orders.OrderType           `json:"orderType"`
}

// =============================
// Query parameter types
// =============================

type AssetType string

const (
	AssetTypeCollateral  AssetType = "COLLATERAL"
	AssetTypeConditional AssetType = "CONDITIONAL"
)

type OpenOrderParams struct {
	ID      string
	AssetID string
	Market  string
}

func (p *OpenOrderParams) apply(q url.Values) {
	if p == nil {
		return
	}
	if p.ID != "" {
		q.Set("id", p.ID)
	}
	if p.AssetID != "" {
		q.Set("asset_id", p.AssetID)
	}
	if p.Market != "" {
		q.Set("market", p.Market)
	}
}

type TradeParams struct {
	ID           string
	MakerAddress string
	Market       string
	AssetID      string
	Before       uint64
	After        uint64
}

func (p *TradeParams) apply(q url.Values) {
	if p == nil {
		return
	}
	if p.ID != "" {
		q.Set("id", p.ID)
	}
	if p.MakerAddress != "" {
		q.Set("maker_address", p.MakerAddress)
	}
	if p.Market != "" {
		q.Set("market", p.Market)
	}
	if p.AssetID != "" {
		q.Set("asset_id", p.AssetID)
	}
	if p.Before != 0 {
		q.Set("before", strconv.FormatUint(p.Before, 10))
	}
	if p.After != 0 {
		q.Set("after", strconv.FormatUint(p.After, 10))
	}
}

type BalanceAllowanceParams struct {
	AssetType     AssetType
	TokenID       string
	SignatureType *orders.SigType
}

func (p *BalanceAllowanceParams) apply(q url.Values) {
	if p == nil {
		return
	}
	if p.AssetType != "" {
		q.Set("asset_type", string(p.AssetType))
	}
	if p.TokenID != "" {
		q.Set("token_id", p.TokenID)
	}
	if p.SignatureType != nil {
		q.Set("signature_type", strconv.Itoa(int(*p.SignatureType)))
	}
}

type ordersPage struct {
	Data       []OpenOrder `json:"data"`
	NextCursor string      `json:"next_cursor"`
}

type tradesPage struct {
	Data       []json.RawMessage `json:"data"`
	NextCursor string            `json:"next_cursor"`
}
