package client

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/w6g2000/polymarket-go-client/logger"
)

const (
	MarketStreamURL = "wss://ws-subscriptions-clob.polymarket.com/ws/market"
	UserStreamURL   = "wss://ws-subscriptions-clob.polymarket.com/ws/user"
)

// WSClient provides shared websocket utilities (headers, connect, read/write,
// close) used by the specialized market and user stream clients.
type WSClient struct {
	conn         *websocket.Conn
	url          string
	headers      map[string]string
	log          *logger.Logger
	pingInterval time.Duration
	stopPing     chan struct{}
	closeOnce    sync.Once
}

func NewWSClient(url string, log *logger.Logger) *WSClient {
	if log == nil {
		log = logger.NewNop()
	}
	return &WSClient{
		url:          url,
		headers:      map[string]string{},
		log:          log,
		pingInterval: 50 * time.Second,
		stopPing:     make(chan struct{}),
	}
}

func (ws *WSClient) SetHeaders(h map[string]string) {
	if ws.headers == nil {
		ws.headers = map[string]string{}
	}
	for k, v := range h {
		ws.headers[k] = v
	}
}

func (ws *WSClient) Connect() error {
	reqHeaders := make(http.Header)
	for k, v := range ws.headers {
		reqHeaders.Set(k, v)
	}
	conn, resp, err := websocket.DefaultDialer.Dial(ws.url, reqHeaders)
	if err != nil {
		if resp != nil {
			ws.log.Errorw("ws connect failed", "status", resp.Status, "err", err)
		}
		return err
	}
	ws.conn = conn
	ws.log.Infow("ws connected", "url", ws.url)

	go ws.startPinger()

	return nil
}

func (ws *WSClient) Close() error {
	var err error
	ws.closeOnce.Do(func() {
		close(ws.stopPing)
		if ws.conn != nil {
			err = ws.conn.Close()
		}
	})
	return err
}

func (ws *WSClient) WriteJSON(v any) error {
	if ws.conn == nil {
		return websocket.ErrBadHandshake
	}
	return ws.conn.WriteJSON(v)
}

func (ws *WSClient) ReadMessage() (int, []byte, error) {
	if ws.conn == nil {
		return 0, nil, websocket.ErrBadHandshake
	}
	return ws.conn.ReadMessage()
}

// The upstream drops connections idle for more than a minute, keepalives go
// out every 50 seconds.
func (ws *WSClient) startPinger() {
	ticker := time.NewTicker(ws.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ws.stopPing:
			return
		case <-ticker.C:
			if err := ws.conn.WriteMessage(websocket.TextMessage, []byte("PING")); err != nil {
				ws.log.Errorw("ping failed", "err", err)
				return
			}
		}
	}
}
