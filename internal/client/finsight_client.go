// Package client communicates with the finsight-server REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/finsight/finsight-portal/internal/models"
)

// maxResponseSize caps response bodies to prevent OOM from unexpectedly large responses.
const maxResponseSize = 10 << 20 // 10MB

// statusSuccess is the envelope marker finsight-server sets on good responses.
const statusSuccess = "success"

// FinsightClient communicates with the finsight-server REST API.
// Every call carries a context and the client enforces a 10 second timeout;
// a timeout is reported as an ordinary fetch error.
type FinsightClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewFinsightClient creates a new client targeting the given finsight-server URL.
func NewFinsightClient(baseURL string) *FinsightClient {
	return &FinsightClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// envelope is the {status, data, message} wrapper finsight-server puts on
// every response. Extra backend fields are ignored.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// get performs a GET request and returns the raw body.
func (c *FinsightClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

// postJSON performs a POST request with a JSON body and returns the raw body.
func (c *FinsightClient) postJSON(ctx context.Context, path string, data interface{}) ([]byte, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// del performs a DELETE request and returns the raw body.
func (c *FinsightClient) del(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *FinsightClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach finsight-server: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// decodeEnvelope unmarshals a {status, data} response into out.
// A non-success status is returned as an error carrying the server message.
func decodeEnvelope(body []byte, out interface{}) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if env.Status != statusSuccess {
		if env.Message != "" {
			return fmt.Errorf("server error: %s", env.Message)
		}
		return fmt.Errorf("server returned status %q", env.Status)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to parse response data: %w", err)
	}
	return nil
}

// GetStock fetches the full analysis snapshot for a ticker.
// GET /api/stock/{ticker} -> { status: "success", data: StockSnapshot }
func (c *FinsightClient) GetStock(ctx context.Context, ticker string) (*models.StockSnapshot, error) {
	body, err := c.get(ctx, "/api/stock/"+url.PathEscape(ticker))
	if err != nil {
		return nil, err
	}
	var snapshot models.StockSnapshot
	if err := decodeEnvelope(body, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// GetQuote fetches a live quote without triggering AI analysis.
// GET /api/quote/{symbol} -> { status: "success", data: Quote }
func (c *FinsightClient) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	body, err := c.get(ctx, "/api/quote/"+url.PathEscape(symbol))
	if err != nil {
		return nil, err
	}
	var quote models.Quote
	if err := decodeEnvelope(body, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

// ListAlerts fetches all stored alerts.
func (c *FinsightClient) ListAlerts(ctx context.Context) ([]models.Alert, error) {
	body, err := c.get(ctx, "/api/alerts")
	if err != nil {
		return nil, err
	}
	var alerts []models.Alert
	if err := decodeEnvelope(body, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

// CreateAlert stores a new alert on finsight-server.
func (c *FinsightClient) CreateAlert(ctx context.Context, req *models.CreateAlertRequest) (*models.Alert, error) {
	body, err := c.postJSON(ctx, "/api/alerts", req)
	if err != nil {
		return nil, err
	}
	var alert models.Alert
	if err := decodeEnvelope(body, &alert); err != nil {
		return nil, err
	}
	return &alert, nil
}

// DeleteAlert removes an alert by ID.
func (c *FinsightClient) DeleteAlert(ctx context.Context, id int64) error {
	body, err := c.del(ctx, fmt.Sprintf("/api/alerts/%d", id))
	if err != nil {
		return err
	}
	return decodeEnvelope(body, nil)
}

// CheckAlerts asks the server to evaluate all active alerts now.
func (c *FinsightClient) CheckAlerts(ctx context.Context) error {
	body, err := c.get(ctx, "/api/alerts/check")
	if err != nil {
		return err
	}
	return decodeEnvelope(body, nil)
}

// OptimizePortfolio runs the mean-variance optimizer on the given symbols.
// POST /api/portfolio/optimize -> {allocation, metrics, doctor_note}
// The optimizer responds without the standard envelope.
func (c *FinsightClient) OptimizePortfolio(ctx context.Context, symbols []string) (*models.OptimizationResult, error) {
	body, err := c.postJSON(ctx, "/api/portfolio/optimize", models.OptimizeRequest{Symbols: symbols})
	if err != nil {
		return nil, err
	}

	// The optimizer returns either a bare result or {status:"error",message}.
	var probe struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &probe) == nil && probe.Status == "error" {
		return nil, fmt.Errorf("server error: %s", probe.Message)
	}

	var result models.OptimizationResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &result, nil
}

// GetWatchlist fetches the watchlist symbols.
// GET /api/watchlist -> { status: "success", data: []string }
func (c *FinsightClient) GetWatchlist(ctx context.Context) ([]string, error) {
	body, err := c.get(ctx, "/api/watchlist")
	if err != nil {
		return nil, err
	}
	var symbols []string
	if err := decodeEnvelope(body, &symbols); err != nil {
		return nil, err
	}
	return symbols, nil
}

// AddWatchlist adds a symbol to the watchlist.
func (c *FinsightClient) AddWatchlist(ctx context.Context, symbol string) error {
	body, err := c.postJSON(ctx, "/api/watchlist", map[string]string{"symbol": symbol})
	if err != nil {
		return err
	}
	return decodeEnvelope(body, nil)
}

// RemoveWatchlist removes a symbol from the watchlist.
func (c *FinsightClient) RemoveWatchlist(ctx context.Context, symbol string) error {
	body, err := c.del(ctx, "/api/watchlist/"+url.PathEscape(symbol))
	if err != nil {
		return err
	}
	return decodeEnvelope(body, nil)
}

// ClearWatchlist removes every symbol from the watchlist.
func (c *FinsightClient) ClearWatchlist(ctx context.Context) error {
	body, err := c.del(ctx, "/api/watchlist")
	if err != nil {
		return err
	}
	return decodeEnvelope(body, nil)
}

// GetMarketStatus fetches the market traffic-light status.
func (c *FinsightClient) GetMarketStatus(ctx context.Context) (*models.MarketStatus, error) {
	body, err := c.get(ctx, "/api/market/status")
	if err != nil {
		return nil, err
	}
	var status models.MarketStatus
	if err := decodeEnvelope(body, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetAssets fetches the cross-asset ticker tape (indices, FX, crypto).
func (c *FinsightClient) GetAssets(ctx context.Context) ([]models.AssetQuote, error) {
	body, err := c.get(ctx, "/api/assets")
	if err != nil {
		return nil, err
	}
	var assets []models.AssetQuote
	if err := decodeEnvelope(body, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

// GetTopMovers fetches the realtime top-10 ranking for a market ("KR" or "US").
func (c *FinsightClient) GetTopMovers(ctx context.Context, market string) ([]models.TopMover, error) {
	body, err := c.get(ctx, "/api/rank/top10/"+url.PathEscape(strings.ToUpper(market)))
	if err != nil {
		return nil, err
	}
	var movers []models.TopMover
	if err := decodeEnvelope(body, &movers); err != nil {
		return nil, err
	}
	return movers, nil
}

// GetCalendar fetches the macro-economic calendar.
func (c *FinsightClient) GetCalendar(ctx context.Context) ([]models.CalendarEvent, error) {
	body, err := c.get(ctx, "/api/market/calendar")
	if err != nil {
		return nil, err
	}
	var events []models.CalendarEvent
	if err := decodeEnvelope(body, &events); err != nil {
		return nil, err
	}
	return events, nil
}
