package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/username/nepsefolio/backend/src/models"
	"github.com/username/nepsefolio/backend/src/services"
	"github.com/username/nepsefolio/backend/src/utils"
)

type WatchlistHandler struct {
	service services.WatchlistService
}

func NewWatchlistHandler(service services.WatchlistService) *WatchlistHandler {
	return &WatchlistHandler{service: service}
}

func (h *WatchlistHandler) ListWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	items, err := h.service.ListWatchlist(r.Context(), userID)
	if err != nil {
		sendServiceError(w, r, err, "retrieve watchlist")
		return
	}
	if items == nil {
		items = []models.WatchlistItem{}
	}
	utils.SendJSON(w, items, http.StatusOK)
}

func (h *WatchlistHandler) AddToWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var in services.WatchlistInput
	if err := decodeBody(r, &in); err != nil {
		sendServiceError(w, r, err, "add to watchlist")
		return
	}
	entry, err := h.service.AddToWatchlist(r.Context(), userID, in)
	if err != nil {
		sendServiceError(w, r, err, "add to watchlist")
		return
	}
	utils.SendJSON(w, entry, http.StatusCreated)
}

func (h *WatchlistHandler) UpdateWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var in services.WatchlistInput
	if err := decodeBody(r, &in); err != nil {
		sendServiceError(w, r, err, "update watchlist")
		return
	}
	entry, err := h.service.UpdateWatchlist(r.Context(), userID, chi.URLParam(r, "symbol"), in)
	if err != nil {
		sendServiceError(w, r, err, "update watchlist")
		return
	}
	utils.SendJSON(w, entry, http.StatusOK)
}

// RemoveFromWatchlist takes the symbol in the body: {"stock_symbol": "NABIL"}.
func (h *WatchlistHandler) RemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var in services.WatchlistInput
	if err := decodeBody(r, &in); err != nil {
		sendServiceError(w, r, err, "remove from watchlist")
		return
	}
	if err := h.service.RemoveFromWatchlist(r.Context(), userID, in.StockSymbol); err != nil {
		sendServiceError(w, r, err, "remove from watchlist")
		return
	}
	utils.SendJSON(w, map[string]string{"stock_symbol": in.StockSymbol}, http.StatusOK)
}
