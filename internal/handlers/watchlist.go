package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/finsight/finsight-portal/internal/client"
	"github.com/finsight/finsight-portal/internal/common"
	"github.com/finsight/finsight-portal/internal/models"
)

// WatchlistHandler serves the watchlist API and the markdown summary.
type WatchlistHandler struct {
	logger *common.Logger
	client *client.FinsightClient
}

// NewWatchlistHandler creates a new watchlist handler.
func NewWatchlistHandler(logger *common.Logger, c *client.FinsightClient) *WatchlistHandler {
	return &WatchlistHandler{logger: logger, client: c}
}

// HandleCollection handles GET, POST and DELETE /api/watchlist.
// DELETE on the collection clears the whole list.
func (h *WatchlistHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.list(w, r)
	case http.MethodPost:
		h.add(w, r)
	case http.MethodDelete:
		h.clear(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *WatchlistHandler) list(w http.ResponseWriter, r *http.Request) {
	symbols, err := h.client.GetWatchlist(r.Context())
	if err != nil {
		h.logger.Warn().Err(err).Msg("Watchlist fetch failed")
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	if symbols == nil {
		symbols = []string{}
	}
	WriteData(w, symbols)
}

func (h *WatchlistHandler) add(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol string `json:"symbol"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	if err := h.client.AddWatchlist(r.Context(), symbol); err != nil {
		h.logger.Warn().Err(err).Str("symbol", symbol).Msg("Watchlist add failed")
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	h.logger.Info().Str("symbol", symbol).Msg("Watchlist symbol added")
	WriteData(w, map[string]string{"added": symbol})
}

func (h *WatchlistHandler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.client.ClearWatchlist(r.Context()); err != nil {
		h.logger.Warn().Err(err).Msg("Watchlist clear failed")
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	WriteData(w, map[string]bool{"cleared": true})
}

// HandleItem handles DELETE /api/watchlist/{symbol}.
func (h *WatchlistHandler) HandleItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	symbol := strings.TrimPrefix(r.URL.Path, "/api/watchlist/")
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" || strings.Contains(symbol, "/") {
		WriteError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	if err := h.client.RemoveWatchlist(r.Context(), symbol); err != nil {
		h.logger.Warn().Err(err).Str("symbol", symbol).Msg("Watchlist remove failed")
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	WriteData(w, map[string]string{"removed": symbol})
}

// HandleSummary handles GET /api/watchlist/summary: the watchlist with a
// quote per symbol, rendered as markdown. A symbol whose quote fetch fails
// is listed as pending rather than failing the whole summary.
func (h *WatchlistHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	symbols, err := h.client.GetWatchlist(r.Context())
	if err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	summary := models.WatchlistSummary{UpdatedAt: time.Now()}
	for _, s := range symbols {
		entry := models.WatchlistEntry{Symbol: s}
		if quote, qerr := h.client.GetQuote(r.Context(), s); qerr == nil {
			entry.Quote = quote
		} else {
			h.logger.Debug().Err(qerr).Str("symbol", s).Msg("Summary quote fetch failed")
		}
		summary.Entries = append(summary.Entries, entry)
	}

	WriteData(w, map[string]interface{}{
		"markdown": summary.ToMarkdown(),
		"entries":  summary.Entries,
	})
}
