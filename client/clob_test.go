package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/w6g2000/polymarket-go-client/auth"
	"github.com/w6g2000/polymarket-go-client/orders"
)

const testKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func testCreds() auth.APICreds {
	return auth.APICreds{
		ApiKey:     "11111111-2222-3333-4444-555555555555",
		Secret:     "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=",
		Passphrase: "passphrase",
	}
}

func l2Client(t *testing.T, host string) *ClobClient {
	t.Helper()
	c, err := NewClobClientWithL2Headers(host, testKey, 137, testCreds(), SignerConfig{}, nil)
	require.NoError(t, err)
	return c
}

func TestGetTickSizeCaches(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tick-size", r.URL.Path)
		require.Equal(t, "42", r.URL.Query().Get("token_id"))
		hits++
		fmt.Fprint(w, `{"minimum_tick_size": "0.01"}`)
	}))
	defer srv.Close()

	c := NewClobClient(srv.URL, nil)

	for i := 0; i < 3; i++ {
		tick, err := c.GetTickSize(context.Background(), "42")
		require.NoError(t, err)
		assert.True(t, tick.Equal(decimal.RequireFromString("0.01")))
	}
	assert.Equal(t, 1, hits)
}

func TestResolveOrderOptionsRejectsSmallTick(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tick-size":
			fmt.Fprint(w, `{"minimum_tick_size": "0.01"}`)
		case "/neg-risk":
			fmt.Fprint(w, `{"neg_risk": false}`)
		}
	}))
	defer srv.Close()

	c := NewClobClient(srv.URL, nil)
	_, err := c.resolveOrderOptions(context.Background(), "42", &orders.CreateOrderOptions{
		TickSize: decimal.RequireFromString("0.001"),
	})
	assert.ErrorContains(t, err, "smaller than min tick size")
}

func TestCreateOrderPriceOutOfRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tick-size":
			fmt.Fprint(w, `{"minimum_tick_size": "0.01"}`)
		case "/neg-risk":
			fmt.Fprint(w, `{"neg_risk": false}`)
		}
	}))
	defer srv.Close()

	c := l2Client(t, srv.URL)
	args := orders.OrderArgs{
		TokenID: "42",
		Price:   decimal.RequireFromString("0.995"),
		Size:    decimal.RequireFromString("10"),
		Side:    orders.BUY,
	}
	_, err := c.CreateOrder(context.Background(), args, 0, nil, nil)
	assert.ErrorIs(t, err, orders.ErrPriceOutOfRange)
}

func TestCreateAndPostOrder(t *testing.T) {
	creds := testCreds()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tick-size":
			fmt.Fprint(w, `{"minimum_tick_size": "0.01"}`)
		case "/neg-risk":
			fmt.Fprint(w, `{"neg_risk": false}`)
		case "/order":
			require.Equal(t, http.MethodPost, r.Method)

			raw, err := io.ReadAll(r.Body)
			require.NoError(t, err)

			// the signature must verify over the bytes actually sent
			ts, err := strconv.ParseInt(r.Header.Get(auth.HeaderTimestamp), 10, 64)
			require.NoError(t, err)
			expected, err := auth.BuildHmacSignature(creds.Secret, ts, http.MethodPost, "/order", string(raw))
			require.NoError(t, err)
			assert.Equal(t, expected, r.Header.Get(auth.HeaderSignature))
			assert.Equal(t, creds.ApiKey, r.Header.Get(auth.HeaderAPIKey))
			assert.Equal(t, creds.Passphrase, r.Header.Get(auth.HeaderPassphrase))

			var posted PostOrderRequest
			require.NoError(t, json.Unmarshal(raw, &posted))
			assert.Equal(t, creds.ApiKey, posted.Owner)
			assert.Equal(t, orders.GTC, posted.OrderType)
			assert.Equal(t, "42", posted.Order.TokenID)
			assert.Equal(t, "17500000", posted.Order.MakerAmount)
			assert.Equal(t, "50000000", posted.Order.TakerAmount)
			assert.Equal(t, "BUY", posted.Order.Side)
			assert.NotZero(t, posted.Order.Salt)

			fmt.Fprint(w, `{"success": true, "orderID": "0xabc"}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := l2Client(t, srv.URL)
	args := orders.OrderArgs{
		TokenID: "42",
		Price:   decimal.RequireFromString("0.35"),
		Size:    decimal.RequireFromString("50"),
		Side:    orders.BUY,
	}

	resp, err := c.CreateAndPostOrder(context.Background(), args)
	require.NoError(t, err)
	assert.Contains(t, string(resp), "0xabc")
}

func TestCreateMarketOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tick-size":
			fmt.Fprint(w, `{"minimum_tick_size": "0.01"}`)
		case "/neg-risk":
			fmt.Fprint(w, `{"neg_risk": false}`)
		case "/book":
			fmt.Fprint(w, `{
				"market": "0xcond",
				"asset_id": "42",
				"bids": [{"price": "0.4", "size": "100"}],
				"asks": [{"price": "0.5", "size": "10"}, {"price": "0.6", "size": "10"}]
			}`)
		}
	}))
	defer srv.Close()

	c := l2Client(t, srv.URL)
	args := orders.MarketOrderArgs{TokenID: "42", Amount: decimal.RequireFromString("4")}

	order, err := c.CreateMarketOrder(context.Background(), args, nil, nil)
	require.NoError(t, err)
	// 4 collateral clears at the first ask level of 0.5
	assert.Equal(t, "4000000", order.MakerAmount)
	assert.Equal(t, "8000000", order.TakerAmount)
}

func TestCreateMarketOrderNotEnoughLiquidity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tick-size":
			fmt.Fprint(w, `{"minimum_tick_size": "0.01"}`)
		case "/neg-risk":
			fmt.Fprint(w, `{"neg_risk": false}`)
		case "/book":
			fmt.Fprint(w, `{"bids": [], "asks": [{"price": "0.5", "size": "1"}]}`)
		}
	}))
	defer srv.Close()

	c := l2Client(t, srv.URL)
	args := orders.MarketOrderArgs{TokenID: "42", Amount: decimal.RequireFromString("10")}

	_, err := c.CreateMarketOrder(context.Background(), args, nil, nil)
	assert.ErrorIs(t, err, orders.ErrNotEnoughLiquidity)
}

func TestGetOrdersPagination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/data/orders", r.URL.Path)
		require.NotEmpty(t, r.Header.Get(auth.HeaderSignature))

		switch r.URL.Query().Get("next_cursor") {
		case "MA==":
			fmt.Fprint(w, `{"data": [{"id": "a"}, {"id": "b"}], "next_cursor": "Mg=="}`)
		case "Mg==":
			fmt.Fprint(w, `{"data": [{"id": "c"}], "next_cursor": "LTE="}`)
		default:
			t.Errorf("unexpected cursor %q", r.URL.Query().Get("next_cursor"))
		}
	}))
	defer srv.Close()

	c := l2Client(t, srv.URL)
	got, err := c.GetOrders(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[2].ID)
}

func TestCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/order", r.URL.Path)
		require.Equal(t, http.MethodDelete, r.Method)

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, `{"orderID": "0xabc"}`, string(raw))

		fmt.Fprint(w, `{"canceled": ["0xabc"]}`)
	}))
	defer srv.Close()

	c := l2Client(t, srv.URL)
	resp, err := c.Cancel(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Contains(t, string(resp), "canceled")
}

func TestAreOrdersScoring(t *testing.T) {
	creds := testCreds()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders-scoring", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		// the body is the bare id array
		assert.Equal(t, `["0xaaa", "0xbbb"]`, string(raw))

		ts, err := strconv.ParseInt(r.Header.Get(auth.HeaderTimestamp), 10, 64)
		require.NoError(t, err)
		expected, err := auth.BuildHmacSignature(creds.Secret, ts, http.MethodPost, "/orders-scoring", string(raw))
		require.NoError(t, err)
		assert.Equal(t, expected, r.Header.Get(auth.HeaderSignature))

		fmt.Fprint(w, `{"0xaaa": true, "0xbbb": false}`)
	}))
	defer srv.Close()

	c := l2Client(t, srv.URL)
	scoring, err := c.AreOrdersScoring(context.Background(), []string{"0xaaa", "0xbbb"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"0xaaa": true, "0xbbb": false}, scoring)
}

func TestGetServerTime(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/time", r.URL.Path)
		fmt.Fprint(w, "1700000000")
	}))
	defer srv.Close()

	c := NewClobClient(srv.URL, nil)
	ts, err := c.GetServerTime(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1700000000), ts)
}

func TestLevelGuards(t *testing.T) {
	c := NewClobClient("http://localhost:0", nil)

	_, err := c.CreateAPIKey(context.Background(), nil)
	assert.ErrorContains(t, err, "signer is not set")

	_, err = c.GetAPIKeys(context.Background())
	assert.ErrorContains(t, err, "signer is not set")

	l1, err := NewClobClientWithL1Headers("http://localhost:0", testKey, 137, SignerConfig{}, nil)
	require.NoError(t, err)
	_, err = l1.GetAPIKeys(context.Background())
	assert.ErrorContains(t, err, "api credentials are not set")
}

func TestRequestErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "invalid token"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClobClient(srv.URL, nil)
	_, err := c.GetMidpoint(context.Background(), "42")
	assert.ErrorIs(t, err, ErrAPIFailure)
	assert.ErrorContains(t, err, "invalid token")
}

func TestFlexUint64(t *testing.T) {
	var v struct {
		A FlexUint64 `json:"a"`
		B FlexUint64 `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": "123", "b": 456}`), &v))
	assert.Equal(t, FlexUint64(123), v.A)
	assert.Equal(t, FlexUint64(456), v.B)
}
