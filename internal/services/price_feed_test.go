package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newFeedServer(t *testing.T, status int, body string) (*httptest.Server, *string) {
	t.Helper()

	var lastQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastQuery = r.URL.RawQuery
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	return server, &lastQuery
}

func feedConfig(server *httptest.Server, responsePath string) PriceFeedConfig {
	return PriceFeedConfig{
		URLTemplate:  server.URL + "/v7/finance/quote?symbols={ticker}",
		ResponsePath: responsePath,
		Timeout:      2 * time.Second,
	}
}

func TestHTTPPriceFeedFetchesQuote(t *testing.T) {
	server, lastQuery := newFeedServer(t, http.StatusOK,
		`{"quoteResponse":{"result":[{"symbol":"AAPL","regularMarketPrice":123.45}]}}`)
	feed := NewHTTPPriceFeed(feedConfig(server, "quoteResponse.result.0.regularMarketPrice"), zap.NewNop())

	price, err := feed.LatestPrice(context.Background(), "AAPL")
	require.NoError(t, err)
	requireDecimal(t, "123.45", price)
	require.Equal(t, "symbols=AAPL", *lastQuery)
}

func TestHTTPPriceFeedParsesStringPrice(t *testing.T) {
	server, _ := newFeedServer(t, http.StatusOK, `{"price":"88.5"}`)
	feed := NewHTTPPriceFeed(feedConfig(server, "price"), zap.NewNop())

	price, err := feed.LatestPrice(context.Background(), "BTC-USD")
	require.NoError(t, err)
	requireDecimal(t, "88.5", price)
}

func TestHTTPPriceFeedRejectsBadResponses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		path    string
		wantErr string
	}{
		{"server error", http.StatusInternalServerError, `{}`, "price", "status 500"},
		{"invalid json", http.StatusOK, `not json`, "price", "invalid JSON"},
		{"missing field", http.StatusOK, `{"quote":1}`, "price", "not found"},
		{"bad index", http.StatusOK, `{"result":[]}`, "result.0", "invalid array index"},
		{"wrong type", http.StatusOK, `{"price":true}`, "price", "unsupported price type"},
		{"zero price", http.StatusOK, `{"price":0}`, "price", "non-positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := newFeedServer(t, tt.status, tt.body)
			feed := NewHTTPPriceFeed(feedConfig(server, tt.path), zap.NewNop())

			_, err := feed.LatestPrice(context.Background(), "AAPL")
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestHTTPPriceFeedRequiresTicker(t *testing.T) {
	server, _ := newFeedServer(t, http.StatusOK, `{"price":1}`)
	feed := NewHTTPPriceFeed(feedConfig(server, "price"), zap.NewNop())

	_, err := feed.LatestPrice(context.Background(), "")
	require.Error(t, err)
}

func TestExtractJSONPath(t *testing.T) {
	payload := map[string]interface{}{
		"a": map[string]interface{}{
			"b": []interface{}{
				map[string]interface{}{"c": 1.5},
			},
		},
	}

	value, err := extractJSONPath(payload, "a.b.0.c")
	require.NoError(t, err)
	require.Equal(t, 1.5, value)

	_, err = extractJSONPath(payload, "a.b.1.c")
	require.Error(t, err)

	_, err = extractJSONPath(payload, "a.b.0.c.d")
	require.Error(t, err)

	same, err := extractJSONPath(payload, "")
	require.NoError(t, err)
	require.Equal(t, payload, same)
}
