package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// HTTPOracle fetches quotes from a Yahoo-style chart endpoint.
type HTTPOracle struct {
	baseURL string
	client  *http.Client
}

func NewHTTPOracle(baseURL string) *HTTPOracle {
	return &HTTPOracle{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
		} `json:"result"`
	} `json:"chart"`
}

func (o *HTTPOracle) CurrentPrice(ctx context.Context, symbol string) decimal.Decimal {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d", o.baseURL, url.PathEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		log.Printf("[pricing] build request for %s: %v", symbol, err)
		return decimal.Zero
	}
	req.Header.Set("User-Agent", "lv-brokerage/1.0")
	resp, err := o.client.Do(req)
	if err != nil {
		log.Printf("[pricing] fetch %s: %v", symbol, err)
		return decimal.Zero
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("[pricing] fetch %s: status %d", symbol, resp.StatusCode)
		return decimal.Zero
	}
	var body chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Printf("[pricing] decode %s: %v", symbol, err)
		return decimal.Zero
	}
	if len(body.Chart.Result) == 0 || body.Chart.Result[0].Meta.RegularMarketPrice <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(body.Chart.Result[0].Meta.RegularMarketPrice)
}
