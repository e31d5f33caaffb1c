package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PriceFeedConfig configures the HTTP price feed client.
type PriceFeedConfig struct {
	// URLTemplate is the quote endpoint with a {ticker} placeholder.
	URLTemplate string
	// ResponsePath is the dot-separated path to the price field in the
	// JSON response, e.g. "quoteResponse.result.0.regularMarketPrice".
	ResponsePath string
	Timeout      time.Duration
	Debug        bool
}

type httpPriceFeed struct {
	client       *resty.Client
	urlTemplate  string
	responsePath string
	logger       *zap.Logger
}

// NewHTTPPriceFeed creates a resty-backed price feed client
func NewHTTPPriceFeed(cfg PriceFeedConfig, logger *zap.Logger) PriceFeed {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetDebug(cfg.Debug).
		SetHeader("Accept", "application/json")

	return &httpPriceFeed{
		client:       client,
		urlTemplate:  cfg.URLTemplate,
		responsePath: cfg.ResponsePath,
		logger:       logger,
	}
}

func (f *httpPriceFeed) LatestPrice(ctx context.Context, ticker string) (decimal.Decimal, error) {
	if ticker == "" {
		return decimal.Zero, fmt.Errorf("ticker is required")
	}

	url := strings.ReplaceAll(f.urlTemplate, "{ticker}", ticker)

	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return decimal.Zero, fmt.Errorf("price feed request failed for %s: %w", ticker, err)
	}
	if resp.StatusCode() != 200 {
		return decimal.Zero, fmt.Errorf("price feed returned status %d for %s", resp.StatusCode(), ticker)
	}

	var payload interface{}
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return decimal.Zero, fmt.Errorf("price feed returned invalid JSON for %s: %w", ticker, err)
	}

	value, err := extractJSONPath(payload, f.responsePath)
	if err != nil {
		return decimal.Zero, fmt.Errorf("price feed response for %s: %w", ticker, err)
	}

	price, err := toDecimal(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("price feed response for %s: %w", ticker, err)
	}
	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("price feed returned non-positive price for %s", ticker)
	}

	f.logger.Debug("fetched price", zap.String("ticker", ticker), zap.String("price", price.String()))

	return price, nil
}

// extractJSONPath walks a dot-separated path through decoded JSON,
// treating numeric segments as array indexes.
func extractJSONPath(data interface{}, path string) (interface{}, error) {
	if path == "" {
		return data, nil
	}

	current := data
	for _, part := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]interface{}:
			value, ok := node[part]
			if !ok {
				return nil, fmt.Errorf("path segment %q not found", part)
			}
			current = value
		case []interface{}:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, fmt.Errorf("invalid array index %q", part)
			}
			current = node[idx]
		default:
			return nil, fmt.Errorf("cannot descend into %q", part)
		}
	}

	return current, nil
}

func toDecimal(value interface{}) (decimal.Decimal, error) {
	switch v := value.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		price, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, fmt.Errorf("unparseable price %q", v)
		}
		return price, nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported price type %T", value)
	}
}
