package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/w6g2000/polymarket-go-client/auth"
	"github.com/w6g2000/polymarket-go-client/logger"
	"github.com/w6g2000/polymarket-go-client/orders"
	"github.com/w6g2000/polymarket-go-client/signer"
)

// ClobClient talks to the exchange gateway. Level 0 clients can only read
// public market data; level 1 adds a wallet (order signing, api key
// bootstrap); level 2 adds api credentials for the private endpoints.
type ClobClient struct {
	*httpCore
	log     *logger.Logger
	signer  signer.Signer
	chainID uint64
	creds   *auth.APICreds
	builder *orders.OrderBuilder

	// tick size and neg-risk flags are immutable per token, cache them
	mu        sync.RWMutex
	tickSizes map[string]decimal.Decimal
	negRisk   map[string]bool
}

// SignerConfig selects the signature scheme and the funding account for
// orders built by the client.
type SignerConfig struct {
	SignatureType orders.SigType
	Funder        *common.Address
}

// NewClobClient builds a level 0 client for public market data.
func NewClobClient(host string, log *logger.Logger) *ClobClient {
	if log == nil {
		log = logger.NewNop()
	}
	return &ClobClient{
		httpCore:  newHTTPCore(host),
		log:       log,
		tickSizes: make(map[string]decimal.Decimal),
		negRisk:   make(map[string]bool),
	}
}

// NewClobClientWithL1Headers builds a level 1 client owning a wallet key.
func NewClobClientWithL1Headers(host, privateKey string, chainID uint64, cfg SignerConfig, log *logger.Logger) (*ClobClient, error) {
	c := NewClobClient(host, log)

	s, err := signer.NewPrivateKeySigner(privateKey)
	if err != nil {
		return nil, err
	}
	c.signer = s
	c.chainID = chainID
	c.builder = orders.NewOrderBuilder(s, cfg.SignatureType, cfg.Funder)
	return c, nil
}

// NewClobClientWithL2Headers builds a level 2 client with api credentials.
func NewClobClientWithL2Headers(host, privateKey string, chainID uint64, creds auth.APICreds, cfg SignerConfig, log *logger.Logger) (*ClobClient, error) {
	c, err := NewClobClientWithL1Headers(host, privateKey, chainID, cfg, log)
	if err != nil {
		return nil, err
	}
	c.creds = &creds
	return c, nil
}

// SetAPICreds upgrades a level 1 client after api key bootstrap.
func (c *ClobClient) SetAPICreds(creds auth.APICreds) {
	c.creds = &creds
}

// Address returns the wallet address, or the zero address for a level 0
// client.
func (c *ClobClient) Address() common.Address {
	if c.signer == nil {
		return common.Address{}
	}
	return c.signer.Address()
}

func (c *ClobClient) l1Parameters() (signer.Signer, uint64, error) {
	if c.signer == nil {
		return nil, 0, errors.New("signer is not set")
	}
	return c.signer, c.chainID, nil
}

func (c *ClobClient) l2Parameters() (signer.Signer, auth.APICreds, error) {
	if c.signer == nil {
		return nil, auth.APICreds{}, errors.New("signer is not set")
	}
	if c.creds == nil {
		return nil, auth.APICreds{}, errors.New("api credentials are not set")
	}
	return c.signer, *c.creds, nil
}

// GetTickSize fetches the minimum tick size for a token, caching it for the
// client's lifetime.
func (c *ClobClient) GetTickSize(ctx context.Context, tokenID string) (decimal.Decimal, error) {
	c.mu.RLock()
	cached, ok := c.tickSizes[tokenID]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	var resp TickSizeResponse
	if err := c.get(ctx, "/tick-size", queryParams("token_id", tokenID), nil, &resp); err != nil {
		return decimal.Decimal{}, err
	}

	c.mu.Lock()
	c.tickSizes[tokenID] = resp.MinimumTickSize
	c.mu.Unlock()
	return resp.MinimumTickSize, nil
}

// GetNegRisk reports whether a token belongs to a neg-risk market, caching
// the answer.
func (c *ClobClient) GetNegRisk(ctx context.Context, tokenID string) (bool, error) {
	c.mu.RLock()
	cached, ok := c.negRisk[tokenID]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	var resp NegRiskResponse
	if err := c.get(ctx, "/neg-risk", queryParams("token_id", tokenID), nil, &resp); err != nil {
		return false, err
	}

	c.mu.Lock()
	c.negRisk[tokenID] = resp.NegRisk
	c.mu.Unlock()
	return resp.NegRisk, nil
}

// resolveOrderOptions fills the gaps in caller-supplied options from live
// exchange metadata. A caller tick size below the market minimum is an
// error, not silently widened.
func (c *ClobClient) resolveOrderOptions(ctx context.Context, tokenID string, options *orders.CreateOrderOptions) (orders.CreateOrderOptions, error) {
	var tick decimal.Decimal
	var negRisk *bool
	if options != nil {
		tick = options.TickSize
		negRisk = options.NegRisk
	}

	minTick, err := c.GetTickSize(ctx, tokenID)
	if err != nil {
		return orders.CreateOrderOptions{}, fmt.Errorf("error fetching tick size: %w", err)
	}
	if tick.IsZero() {
		tick = minTick
	} else if tick.LessThan(minTick) {
		return orders.CreateOrderOptions{}, fmt.Errorf("tick size %s is smaller than min tick size %s for token_id %s", tick, minTick, tokenID)
	}

	if negRisk == nil {
		nr, err := c.GetNegRisk(ctx, tokenID)
		if err != nil {
			return orders.CreateOrderOptions{}, fmt.Errorf("error fetching neg risk: %w", err)
		}
		negRisk = &nr
	}

	return orders.CreateOrderOptions{TickSize: tick, NegRisk: negRisk}, nil
}

// CreateOrder resolves options, validates the price range and returns a
// signed limit order ready for PostOrder. extras and options may be nil.
func (c *ClobClient) CreateOrder(ctx context.Context, args orders.OrderArgs, expiration uint64, extras *orders.ExtraOrderArgs, options *orders.CreateOrderOptions) (*orders.SignedOrderRequest, error) {
	_, chainID, err := c.l1Parameters()
	if err != nil {
		return nil, err
	}

	resolved, err := c.resolveOrderOptions(ctx, args.TokenID, options)
	if err != nil {
		return nil, err
	}

	if !orders.PriceInRange(args.Price, resolved.TickSize) {
		return nil, fmt.Errorf("%w: price=%s tick_size=%s", orders.ErrPriceOutOfRange, args.Price, resolved.TickSize)
	}

	var ex orders.ExtraOrderArgs
	if extras != nil {
		ex = *extras
	}

	return c.builder.CreateOrder(chainID, args, expiration, ex, resolved)
}

// CreateMarketOrder resolves options, prices the requested notional against
// the ask side of the book and returns a signed market buy.
func (c *ClobClient) CreateMarketOrder(ctx context.Context, args orders.MarketOrderArgs, extras *orders.ExtraOrderArgs, options *orders.CreateOrderOptions) (*orders.SignedOrderRequest, error) {
	_, chainID, err := c.l1Parameters()
	if err != nil {
		return nil, err
	}

	resolved, err := c.resolveOrderOptions(ctx, args.TokenID, options)
	if err != nil {
		return nil, err
	}

	price, err := c.CalculateMarketPrice(ctx, args.TokenID, orders.BUY, args.Amount)
	if err != nil {
		return nil, err
	}

	if !orders.PriceInRange(price, resolved.TickSize) {
		return nil, fmt.Errorf("%w: price=%s tick_size=%s", orders.ErrPriceOutOfRange, price, resolved.TickSize)
	}

	var ex orders.ExtraOrderArgs
	if extras != nil {
		ex = *extras
	}

	return c.builder.CreateMarketOrder(chainID, args, price, ex, resolved)
}

// CalculateMarketPrice fetches the book and finds the clearing price for the
// given notional amount on one side.
func (c *ClobClient) CalculateMarketPrice(ctx context.Context, tokenID string, side orders.Side, amount decimal.Decimal) (decimal.Decimal, error) {
	if c.builder == nil {
		return decimal.Decimal{}, errors.New("order builder is not set")
	}

	book, err := c.GetOrderBook(ctx, tokenID)
	if err != nil {
		return decimal.Decimal{}, err
	}

	if side == orders.BUY {
		return c.builder.CalculateMarketPrice(book.Asks, amount)
	}
	return c.builder.CalculateMarketPrice(book.Bids, amount)
}

// PostOrder submits a signed order. The canonical body string returned by
// the header builder is transmitted as-is; re-encoding it would invalidate
// the HMAC.
func (c *ClobClient) PostOrder(ctx context.Context, order *orders.SignedOrderRequest, orderType orders.OrderType) (json.RawMessage, error) {
	s, creds, err := c.l2Parameters()
	if err != nil {
		return nil, err
	}

	body := PostOrderRequest{Order: order, Owner: creds.ApiKey, OrderType: orderType}
	headers, bodyStr, err := auth.CreateL2Headers(s, creds, http.MethodPost, "/order", body)
	if err != nil {
		return nil, err
	}

	c.log.Debugw("posting order", "token_id", order.TokenID, "side", order.Side, "order_type", orderType)

	var result json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/order", nil, headers, bodyStr, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// CreateAndPostOrder is the one-shot convenience used by most callers: GTC
// limit order with default extras.
func (c *ClobClient) CreateAndPostOrder(ctx context.Context, args orders.OrderArgs) (json.RawMessage, error) {
	order, err := c.CreateOrder(ctx, args, 0, nil, nil)
	if err != nil {
		return nil, err
	}
	return c.PostOrder(ctx, order, orders.GTC)
}

// Cancel removes a single order by id.
func (c *ClobClient) Cancel(ctx context.Context, orderID string) (json.RawMessage, error) {
	return c.deleteWithBody(ctx, "/order", map[string]string{"orderID": orderID})
}

// CancelOrders removes a batch of orders by id.
func (c *ClobClient) CancelOrders(ctx context.Context, orderIDs []string) (json.RawMessage, error) {
	return c.deleteWithBody(ctx, "/orders", orderIDs)
}

// CancelAll removes every open order owned by the credentials.
func (c *ClobClient) CancelAll(ctx context.Context) (json.RawMessage, error) {
	s, creds, err := c.l2Parameters()
	if err != nil {
		return nil, err
	}

	headers, _, err := auth.CreateL2Headers(s, creds, http.MethodDelete, "/cancel-all", nil)
	if err != nil {
		return nil, err
	}

	var result json.RawMessage
	if err := c.do(ctx, http.MethodDelete, "/cancel-all", nil, headers, "", &result); err != nil {
		return nil, err
	}
	return result, nil
}

// CancelMarketOrders removes open orders in one market, optionally filtered
// by asset id.
func (c *ClobClient) CancelMarketOrders(ctx context.Context, market, assetID string) (json.RawMessage, error) {
	body := map[string]string{
		"market":   market,
		"asset_id": assetID,
	}
	return c.deleteWithBody(ctx, "/cancel-market-orders", body)
}

func (c *ClobClient) deleteWithBody(ctx context.Context, endpoint string, body any) (json.RawMessage, error) {
	s, creds, err := c.l2Parameters()
	if err != nil {
		return nil, err
	}

	headers, bodyStr, err := auth.CreateL2Headers(s, creds, http.MethodDelete, endpoint, body)
	if err != nil {
		return nil, err
	}

	var result json.RawMessage
	if err := c.do(ctx, http.MethodDelete, endpoint, nil, headers, bodyStr, &result); err != nil {
		return nil, err
	}
	return result, nil
}
