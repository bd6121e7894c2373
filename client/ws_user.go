package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/w6g2000/polymarket-go-client/auth"
	"github.com/w6g2000/polymarket-go-client/logger"
	"github.com/w6g2000/polymarket-go-client/orders"
)

type MakerOrder struct {
	AssetID       string          `json:"asset_id"`
	MatchedAmount decimal.Decimal `json:"matched_amount"`
	OrderID       string          `json:"order_id"`
	Outcome       string          `json:"outcome"`
	Owner         string          `json:"owner"`
	Price         decimal.Decimal `json:"price"`
}

type UserTradeMessage struct {
	AssetID      string          `json:"asset_id"`
	EventType    string          `json:"event_type"`
	ID           string          `json:"id"`
	LastUpdate   string          `json:"last_update"`
	MakerOrders  []MakerOrder    `json:"maker_orders"`
	Market       string          `json:"market"`
	MatchTime    string          `json:"matchtime"`
	Outcome      string          `json:"outcome"`
	Owner        string          `json:"owner"`
	Price        decimal.Decimal `json:"price"`
	Side         orders.Side     `json:"side"`
	Size         decimal.Decimal `json:"size"`
	Status       string          `json:"status"`
	TakerOrderID string          `json:"taker_order_id"`
	Timestamp    string          `json:"timestamp"`
	TradeOwner   string          `json:"trade_owner"`
	Type         string          `json:"type"`
}

type UserOrderMessage struct {
	AssetID         string          `json:"asset_id"`
	AssociateTrades []string        `json:"associate_trades"`
	EventType       string          `json:"event_type"`
	ID              string          `json:"id"`
	Market          string          `json:"market"`
	OrderOwner      string          `json:"order_owner"`
	OriginalSize    decimal.Decimal `json:"original_size"`
	Outcome         string          `json:"outcome"`
	Owner           string          `json:"owner"`
	Price           decimal.Decimal `json:"price"`
	Side            orders.Side     `json:"side"`
	SizeMatched     decimal.Decimal `json:"size_matched"`
	Timestamp       string          `json:"timestamp"`
	Type            string          `json:"type"` // PLACEMENT, UPDATE, CANCELLATION
}

type subscriptionAuth struct {
	APIKey     string `json:"apiKey"`
	Secret     string `json:"secret"`
	Passphrase string `json:"passphrase"`
}

type userSubscribeMessage struct {
	Type    string            `json:"type"`
	Markets []string          `json:"markets"`
	Auth    *subscriptionAuth `json:"auth,omitempty"`
}

type WSUserCallbacks struct {
	OnTrade func(UserTradeMessage)
	OnOrder func(UserOrderMessage)
}

// WSUserClient streams the authenticated order and trade feed.
type WSUserClient struct {
	*WSClient
	callbacks WSUserCallbacks
	creds     auth.APICreds
}

func NewWSUserClient(callbacks WSUserCallbacks, creds auth.APICreds, log *logger.Logger) *WSUserClient {
	return &WSUserClient{
		WSClient:  NewWSClient(UserStreamURL, log),
		callbacks: callbacks,
		creds:     creds,
	}
}

// Subscribe authenticates the connection, optionally filtered by condition
// ids.
func (ws *WSUserClient) Subscribe(markets []string) error {
	if ws.WSClient == nil {
		return fmt.Errorf("websocket not connected")
	}

	subMsg := userSubscribeMessage{
		Type:    "user",
		Markets: markets,
		Auth: &subscriptionAuth{
			APIKey:     ws.creds.ApiKey,
			Secret:     ws.creds.Secret,
			Passphrase: ws.creds.Passphrase,
		},
	}
	if err := ws.WriteJSON(subMsg); err != nil {
		return fmt.Errorf("failed to send subscribe message: %w", err)
	}
	return nil
}

func (ws *WSUserClient) Listen(ctx context.Context) error {
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

func (ws *WSUserClient) dispatch(message []byte) {
	var arr []json.RawMessage
	if err := json.Unmarshal(message, &arr); err == nil {
		for _, elem := range arr {
			ws.dispatchOne(elem)
		}
		return
	}
	ws.dispatchOne(message)
}

func (ws *WSUserClient) dispatchOne(message []byte) {
	var env wsEnvelope
	if err := json.Unmarshal(message, &env); err != nil {
		return
	}

	switch env.EventType {
	case "trade":
		if ws.callbacks.OnTrade != nil {
			var m UserTradeMessage
			if err := json.Unmarshal(message, &m); err == nil {
				ws.callbacks.OnTrade(m)
			}
		}
	case "order":
		if ws.callbacks.OnOrder != nil {
			var m UserOrderMessage
			if err := json.Unmarshal(message, &m); err == nil {
				ws.callbacks.OnOrder(m)
			}
		}
	}
}
