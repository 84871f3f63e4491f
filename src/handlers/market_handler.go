package handlers

import (
	"context"
	"net/http"

	"github.com/username/nepsefolio/backend/src/utils"
)

// RawQuoteSource returns the upstream snapshot as received. *quotes.Service implements it.
type RawQuoteSource interface {
	RawSnapshot(ctx context.Context) ([]byte, error)
}

type MarketHandler struct {
	quotes RawQuoteSource
}

func NewMarketHandler(quotes RawQuoteSource) *MarketHandler {
	return &MarketHandler{quotes: quotes}
}

// NepseProxy relays the cached market snapshot.
func (h *MarketHandler) NepseProxy(w http.ResponseWriter, r *http.Request) {
	raw, err := h.quotes.RawSnapshot(r.Context())
	if err != nil {
		sendServiceError(w, r, err, "fetch market data")
		return
	}
	utils.SendRawJSON(w, raw, http.StatusOK)
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	utils.SendJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}
