package client

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/w6g2000/polymarket-go-client/auth"
	"github.com/w6g2000/polymarket-go-client/orders"
)

// Pagination cursors used by the gateway: "MA==" is page zero, "LTE=" marks
// the end of the result set.
const (
	initialCursor = "MA=="
	endCursor     = "LTE="
)

// GetOk pings the gateway root.
func (c *ClobClient) GetOk(ctx context.Context) error {
	_, err := c.doText(ctx, http.MethodGet, "/", nil)
	return err
}

// GetServerTime returns the gateway clock as unix seconds.
func (c *ClobClient) GetServerTime(ctx context.Context) (uint64, error) {
	body, err := c.doText(ctx, http.MethodGet, "/time", nil)
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(strings.TrimSpace(body), 10, 64)
}

// CreateAPIKey registers new api credentials for the wallet. nonce may be
// nil for the default of zero.
func (c *ClobClient) CreateAPIKey(ctx context.Context, nonce *big.Int) (auth.APICreds, error) {
	s, chainID, err := c.l1Parameters()
	if err != nil {
		return auth.APICreds{}, err
	}

	headers, err := auth.CreateL1Headers(s, chainID, nonce)
	if err != nil {
		return auth.APICreds{}, err
	}

	var creds auth.APICreds
	if err := c.do(ctx, http.MethodPost, "/auth/api-key", nil, headers, "", &creds); err != nil {
		return auth.APICreds{}, err
	}
	return creds, nil
}

// DeriveAPIKey recovers credentials previously registered for the wallet.
func (c *ClobClient) DeriveAPIKey(ctx context.Context, nonce *big.Int) (auth.APICreds, error) {
	s, chainID, err := c.l1Parameters()
	if err != nil {
		return auth.APICreds{}, err
	}

	headers, err := auth.CreateL1Headers(s, chainID, nonce)
	if err != nil {
		return auth.APICreds{}, err
	}

	var creds auth.APICreds
	if err := c.get(ctx, "/auth/derive-api-key", nil, headers, &creds); err != nil {
		return auth.APICreds{}, err
	}
	return creds, nil
}

// CreateOrDeriveAPIKey tries to register credentials and falls back to
// deriving the existing ones.
func (c *ClobClient) CreateOrDeriveAPIKey(ctx context.Context, nonce *big.Int) (auth.APICreds, error) {
	creds, err := c.CreateAPIKey(ctx, nonce)
	if err == nil {
		return creds, nil
	}
	return c.DeriveAPIKey(ctx, nonce)
}

// GetAPIKeys lists the api keys registered for the credentials.
func (c *ClobClient) GetAPIKeys(ctx context.Context) (ApiKeysResponse, error) {
	var resp ApiKeysResponse
	err := c.l2Get(ctx, "/auth/api-keys", nil, &resp)
	return resp, err
}

// DeleteAPIKey revokes the credentials the client is currently using.
func (c *ClobClient) DeleteAPIKey(ctx context.Context) (string, error) {
	s, creds, err := c.l2Parameters()
	if err != nil {
		return "", err
	}

	headers, _, err := auth.CreateL2Headers(s, creds, http.MethodDelete, "/auth/api-key", nil)
	if err != nil {
		return "", err
	}
	return c.doText(ctx, http.MethodDelete, "/auth/api-key", headers)
}

// GetMidpoint returns the midpoint price for a token.
func (c *ClobClient) GetMidpoint(ctx context.Context, tokenID string) (decimal.Decimal, error) {
	var resp MidpointResponse
	if err := c.get(ctx, "/midpoint", queryParams("token_id", tokenID), nil, &resp); err != nil {
		return decimal.Decimal{}, err
	}
	return resp.Mid, nil
}

// GetMidpoints returns midpoint prices keyed by token id.
func (c *ClobClient) GetMidpoints(ctx context.Context, tokenIDs []string) (map[string]decimal.Decimal, error) {
	body, err := tokenIDsBody(tokenIDs)
	if err != nil {
		return nil, err
	}
	var resp map[string]decimal.Decimal
	if err := c.do(ctx, http.MethodPost, "/midpoints", nil, nil, body, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetPrice returns the best price for one side of a token's book.
func (c *ClobClient) GetPrice(ctx context.Context, tokenID string, side orders.Side) (decimal.Decimal, error) {
	var resp PriceResponse
	params := queryParams("token_id", tokenID, "side", side.String())
	if err := c.get(ctx, "/price", params, nil, &resp); err != nil {
		return decimal.Decimal{}, err
	}
	return resp.Price, nil
}

// GetPrices returns best prices for a batch of token/side pairs, keyed by
// token id then side.
func (c *ClobClient) GetPrices(ctx context.Context, params []BookParams) (map[string]map[string]decimal.Decimal, error) {
	body, err := auth.FormatBody(params)
	if err != nil {
		return nil, err
	}
	var resp map[string]map[string]decimal.Decimal
	if err := c.do(ctx, http.MethodPost, "/prices", nil, nil, body, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetSpread returns the bid-ask spread for a token.
func (c *ClobClient) GetSpread(ctx context.Context, tokenID string) (decimal.Decimal, error) {
	var resp SpreadResponse
	if err := c.get(ctx, "/spread", queryParams("token_id", tokenID), nil, &resp); err != nil {
		return decimal.Decimal{}, err
	}
	return resp.Spread, nil
}

// GetSpreads returns spreads keyed by token id.
func (c *ClobClient) GetSpreads(ctx context.Context, tokenIDs []string) (map[string]decimal.Decimal, error) {
	body, err := tokenIDsBody(tokenIDs)
	if err != nil {
		return nil, err
	}
	var resp map[string]decimal.Decimal
	if err := c.do(ctx, http.MethodPost, "/spreads", nil, nil, body, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetOrderBook returns the current book snapshot for a token.
func (c *ClobClient) GetOrderBook(ctx context.Context, tokenID string) (OrderBookSummary, error) {
	var resp OrderBookSummary
	err := c.get(ctx, "/book", queryParams("token_id", tokenID), nil, &resp)
	return resp, err
}

// GetOrderBooks returns book snapshots for a batch of tokens.
func (c *ClobClient) GetOrderBooks(ctx context.Context, tokenIDs []string) ([]OrderBookSummary, error) {
	body, err := tokenIDsBody(tokenIDs)
	if err != nil {
		return nil, err
	}
	var resp []OrderBookSummary
	if err := c.do(ctx, http.MethodPost, "/books", nil, nil, body, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetLastTradePrice returns the last traded price for a token.
func (c *ClobClient) GetLastTradePrice(ctx context.Context, tokenID string) (decimal.Decimal, error) {
	var resp PriceResponse
	if err := c.get(ctx, "/last-trade-price", queryParams("token_id", tokenID), nil, &resp); err != nil {
		return decimal.Decimal{}, err
	}
	return resp.Price, nil
}

// GetLastTradesPrices returns last traded prices for a batch of tokens.
func (c *ClobClient) GetLastTradesPrices(ctx context.Context, tokenIDs []string) (json.RawMessage, error) {
	body, err := tokenIDsBody(tokenIDs)
	if err != nil {
		return nil, err
	}
	var resp json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/last-trades-prices", nil, nil, body, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetOrder fetches a single order owned by the credentials.
func (c *ClobClient) GetOrder(ctx context.Context, orderID string) (OpenOrder, error) {
	var resp OpenOrder
	err := c.l2Get(ctx, "/data/order/"+orderID, nil, &resp)
	return resp, err
}

// GetOrders walks every page of open orders matching the filter. params may
// be nil.
func (c *ClobClient) GetOrders(ctx context.Context, params *OpenOrderParams) ([]OpenOrder, error) {
	var out []OpenOrder
	cursor := initialCursor
	for cursor != endCursor {
		q := url.Values{}
		params.apply(q)
		q.Set("next_cursor", cursor)

		var page ordersPage
		if err := c.l2Get(ctx, "/data/orders", q, &page); err != nil {
			return nil, err
		}
		out = append(out, page.Data...)
		if page.NextCursor == "" || page.NextCursor == cursor {
			break
		}
		cursor = page.NextCursor
	}
	return out, nil
}

// GetTrades walks every page of trades matching the filter. params may be
// nil.
func (c *ClobClient) GetTrades(ctx context.Context, params *TradeParams) ([]json.RawMessage, error) {
	var out []json.RawMessage
	cursor := initialCursor
	for cursor != endCursor {
		q := url.Values{}
		params.apply(q)
		q.Set("next_cursor", cursor)

		var page tradesPage
		if err := c.l2Get(ctx, "/data/trades", q, &page); err != nil {
			return nil, err
		}
		out = append(out, page.Data...)
		if page.NextCursor == "" || page.NextCursor == cursor {
			break
		}
		cursor = page.NextCursor
	}
	return out, nil
}

// GetNotifications lists pending notifications for the account.
func (c *ClobClient) GetNotifications(ctx context.Context) (json.RawMessage, error) {
	if c.builder == nil {
		return nil, errors.New("order builder is not set")
	}
	q := queryParams("signature_type", strconv.Itoa(int(c.builder.SigType())))

	var resp json.RawMessage
	if err := c.l2Get(ctx, "/notifications", q, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// DropNotifications acknowledges notifications by id.
func (c *ClobClient) DropNotifications(ctx context.Context, ids []string) error {
	s, creds, err := c.l2Parameters()
	if err != nil {
		return err
	}

	headers, _, err := auth.CreateL2Headers(s, creds, http.MethodDelete, "/notifications", nil)
	if err != nil {
		return err
	}

	q := queryParams("ids", strings.Join(ids, ","))
	return c.do(ctx, http.MethodDelete, "/notifications", q, headers, "", nil)
}

// GetBalanceAllowance fetches the collateral or conditional balance and
// allowance for the account. The builder's signature type is used when the
// params leave it unset.
func (c *ClobClient) GetBalanceAllowance(ctx context.Context, params *BalanceAllowanceParams) (json.RawMessage, error) {
	q := url.Values{}
	c.applyBalanceParams(params, q)

	var resp json.RawMessage
	if err := c.l2Get(ctx, "/balance-allowance", q, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// UpdateBalanceAllowance refreshes the cached balance and allowance server
// side.
func (c *ClobClient) UpdateBalanceAllowance(ctx context.Context, params *BalanceAllowanceParams) error {
	s, creds, err := c.l2Parameters()
	if err != nil {
		return err
	}

	headers, _, err := auth.CreateL2Headers(s, creds, http.MethodGet, "/balance-allowance/update", nil)
	if err != nil {
		return err
	}

	q := url.Values{}
	c.applyBalanceParams(params, q)
	return c.get(ctx, "/balance-allowance/update", q, headers, nil)
}

func (c *ClobClient) applyBalanceParams(params *BalanceAllowanceParams, q url.Values) {
	params.apply(q)
	if !q.Has("signature_type") && c.builder != nil {
		q.Set("signature_type", strconv.Itoa(int(c.builder.SigType())))
	}
}

// IsOrderScoring reports whether an order counts toward liquidity rewards.
func (c *ClobClient) IsOrderScoring(ctx context.Context, orderID string) (bool, error) {
	var resp OrderScoringResponse
	if err := c.l2Get(ctx, "/order-scoring", queryParams("order_id", orderID), &resp); err != nil {
		return false, err
	}
	return resp.Scoring, nil
}

// AreOrdersScoring reports scoring status for a batch of orders, keyed by
// order id.
func (c *ClobClient) AreOrdersScoring(ctx context.Context, orderIDs []string) (map[string]bool, error) {
	s, creds, err := c.l2Parameters()
	if err != nil {
		return nil, err
	}

	// the body is the bare id array, not an object wrapping it
	headers, bodyStr, err := auth.CreateL2Headers(s, creds, http.MethodPost, "/orders-scoring", orderIDs)
	if err != nil {
		return nil, err
	}

	var resp map[string]bool
	if err := c.do(ctx, http.MethodPost, "/orders-scoring", nil, headers, bodyStr, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetSamplingMarkets pages through markets with active rewards.
func (c *ClobClient) GetSamplingMarkets(ctx context.Context, cursor string) (MarketsResponse, error) {
	return c.getMarketsPage(ctx, "/sampling-markets", cursor)
}

// GetSamplingSimplifiedMarkets pages through the reduced schema of markets
// with active rewards.
func (c *ClobClient) GetSamplingSimplifiedMarkets(ctx context.Context, cursor string) (SimplifiedMarketsResponse, error) {
	return c.getSimplifiedMarketsPage(ctx, "/sampling-simplified-markets", cursor)
}

// GetMarkets pages through all markets.
func (c *ClobClient) GetMarkets(ctx context.Context, cursor string) (MarketsResponse, error) {
	return c.getMarketsPage(ctx, "/markets", cursor)
}

// GetSimplifiedMarkets pages through the reduced market schema.
func (c *ClobClient) GetSimplifiedMarkets(ctx context.Context, cursor string) (SimplifiedMarketsResponse, error) {
	return c.getSimplifiedMarketsPage(ctx, "/simplified-markets", cursor)
}

// GetMarket fetches one market by condition id.
func (c *ClobClient) GetMarket(ctx context.Context, conditionID string) (Market, error) {
	var resp Market
	err := c.get(ctx, "/markets/"+conditionID, nil, nil, &resp)
	return resp, err
}

// GetMarketTradesEvents returns the trade event feed for a market.
func (c *ClobClient) GetMarketTradesEvents(ctx context.Context, conditionID string) (json.RawMessage, error) {
	var resp json.RawMessage
	if err := c.get(ctx, "/live-activity/events/"+conditionID, nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *ClobClient) getMarketsPage(ctx context.Context, endpoint, cursor string) (MarketsResponse, error) {
	if cursor == "" {
		cursor = initialCursor
	}
	var resp MarketsResponse
	err := c.get(ctx, endpoint, queryParams("next_cursor", cursor), nil, &resp)
	return resp, err
}

func (c *ClobClient) getSimplifiedMarketsPage(ctx context.Context, endpoint, cursor string) (SimplifiedMarketsResponse, error) {
	if cursor == "" {
		cursor = initialCursor
	}
	var resp SimplifiedMarketsResponse
	err := c.get(ctx, endpoint, queryParams("next_cursor", cursor), nil, &resp)
	return resp, err
}

// l2Get signs a GET over the bare endpoint path and performs it with the
// given query parameters. The query string is not part of the signed
// message.
func (c *ClobClient) l2Get(ctx context.Context, endpoint string, q url.Values, result any) error {
	s, creds, err := c.l2Parameters()
	if err != nil {
		return err
	}

	headers, _, err := auth.CreateL2Headers(s, creds, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return c.get(ctx, endpoint, q, headers, result)
}

func tokenIDsBody(tokenIDs []string) (string, error) {
	params := make([]tokenParams, len(tokenIDs))
	for i, id := range tokenIDs {
		params[i] = tokenParams{TokenID: id}
	}
	return auth.FormatBody(params)
}
