package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/w6g2000/polymarket-go-client/logger"
	"github.com/w6g2000/polymarket-go-client/orders"
)

type marketSubscribeMessage struct {
	Type    string   `json:"type"`
	Markets []string `json:"markets,omitempty"`
	Assets  []string `json:"assets_ids,omitempty"`
}

type PriceChange struct {
	AssetID string          `json:"asset_id"`
	Price   decimal.Decimal `json:"price"`
	Size    decimal.Decimal `json:"size"`
	Side    orders.Side     `json:"side"`
	Hash    string          `json:"hash"`
	BestBid decimal.Decimal `json:"best_bid"`
	BestAsk decimal.Decimal `json:"best_ask"`
}

type PriceChangeMessage struct {
	EventType    string        `json:"event_type"`
	Market       string        `json:"market"`
	PriceChanges []PriceChange `json:"price_changes"`
	Timestamp    FlexUint64    `json:"timestamp"`
}

type TickSizeChangeMessage struct {
	EventType   string          `json:"event_type"`
	AssetID     string          `json:"asset_id"`
	Market      string          `json:"market"`
	OldTickSize decimal.Decimal `json:"old_tick_size"`
	NewTickSize decimal.Decimal `json:"new_tick_size"`
	Timestamp   FlexUint64      `json:"timestamp"`
}

type LastTradePriceMessage struct {
	EventType string          `json:"event_type"`
	AssetID   string          `json:"asset_id"`
	Market    string          `json:"market"`
	Price     decimal.Decimal `json:"price"`
	Side      orders.Side     `json:"side"`
	Size      decimal.Decimal `json:"size"`
	Timestamp FlexUint64      `json:"timestamp"`
}

type BestBidAskMessage struct {
	EventType string          `json:"event_type"`
	Market    string          `json:"market"`
	AssetID   string          `json:"asset_id"`
	BestBid   decimal.Decimal `json:"best_bid"`
	BestAsk   decimal.Decimal `json:"best_ask"`
	Spread    decimal.Decimal `json:"spread"`
	Timestamp FlexUint64      `json:"timestamp"`
}

type BookMessage struct {
	EventType string                `json:"event_type"`
	AssetID   string                `json:"asset_id"`
	Market    string                `json:"market"`
	Bids      []orders.OrderSummary `json:"bids"`
	Asks      []orders.OrderSummary `json:"asks"`
	Timestamp FlexUint64            `json:"timestamp"`
	Hash      string                `json:"hash"`
}

type wsEnvelope struct {
	EventType string `json:"event_type"`
}

type WSMarketCallbacks struct {
	OnPriceChange    func(PriceChangeMessage)
	OnTickSizeChange func(TickSizeChangeMessage)
	OnLastTradePrice func(LastTradePriceMessage)
	OnBestBidAsk     func(BestBidAskMessage)
	OnBook           func(BookMessage)
}

// WSMarketClient streams public book and price events for a set of tokens.
type WSMarketClient struct {
	*WSClient
	callbacks WSMarketCallbacks
}

func NewWSMarketClient(callbacks WSMarketCallbacks, log *logger.Logger) *WSMarketClient {
	return &WSMarketClient{
		WSClient:  NewWSClient(MarketStreamURL, log),
		callbacks: callbacks,
	}
}

// SubscribeToMarket subscribes the connection to the given token ids.
func (ws *WSMarketClient) SubscribeToMarket(tokenIDs []string) error {
	if ws.WSClient == nil {
		return fmt.Errorf("websocket not connected")
	}

	subMsg := marketSubscribeMessage{
		Type:   "market",
		Assets: tokenIDs,
	}
	if err := ws.WriteJSON(subMsg); err != nil {
		return fmt.Errorf("failed to send subscribe message: %w", err)
	}
	ws.log.Infow("subscribed to market stream", "tokens", len(tokenIDs))
	return nil
}

// Listen reads the stream until the context is cancelled or the connection
// fails. Events arrive both singly and batched in arrays.
func (ws *WSMarketClient) Listen(ctx context.Context) error {
	if ws.WSClient == nil {
		return fmt.Errorf("websocket not connected")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			_, message, err := ws.ReadMessage()
			if err != nil {
				return err
			}
			ws.dispatch(message)
		}
	}
}

// dispatch unpacks a frame, which carries either one event object or an
// array of them, and routes each event to its callback.
func (ws *WSMarketClient) dispatch(message []byte) {
	if len(message) > 0 && message[0] == '[' {
		var arr []json.RawMessage
		if err := json.Unmarshal(message, &arr); err != nil {
			return
		}
		for _, elem := range arr {
			ws.dispatchOne(elem)
		}
		return
	}
	ws.dispatchOne(message)
}

func (ws *WSMarketClient) dispatchOne(message []byte) {
	var env wsEnvelope
	if err := json.Unmarshal(message, &env); err != nil {
		return
	}

	switch env.EventType {
	case "price_change":
		if ws.callbacks.OnPriceChange != nil {
			var m PriceChangeMessage
			if err := json.Unmarshal(message, &m); err == nil {
				ws.callbacks.OnPriceChange(m)
			}
		}
	case "tick_size_change":
		if ws.callbacks.OnTickSizeChange != nil {
			var m TickSizeChangeMessage
			if err := json.Unmarshal(message, &m); err == nil {
				ws.callbacks.OnTickSizeChange(m)
			}
		}
	case "last_trade_price":
		if ws.callbacks.OnLastTradePrice != nil {
			var m LastTradePriceMessage
			if err := json.Unmarshal(message, &m); err == nil {
				ws.callbacks.OnLastTradePrice(m)
			}
		}
	case "best_bid_ask":
		if ws.callbacks.OnBestBidAsk != nil {
			var m BestBidAskMessage
			if err := json.Unmarshal(message, &m); err == nil {
				ws.callbacks.OnBestBidAsk(m)
			}
		}
	case "book":
		if ws.callbacks.OnBook != nil {
			var m BookMessage
			if err := json.Unmarshal(message, &m); err == nil {
				ws.callbacks.OnBook(m)
			}
		}
	}
}
