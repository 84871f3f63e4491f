package handlers

import (
	"net/http"

	"github.com/username/nepsefolio/backend/src/services"
	"github.com/username/nepsefolio/backend/src/utils"
)

type DividendHandler struct {
	service services.DividendService
}

func NewDividendHandler(service services.DividendService) *DividendHandler {
	return &DividendHandler{service: service}
}

func (h *DividendHandler) ListDividends(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	portfolioID, err := queryPortfolioID(r)
	if err != nil {
		sendServiceError(w, r, err, "retrieve dividends")
		return
	}
	view, err := h.service.ListDividends(r.Context(), userID, portfolioID)
	if err != nil {
		sendServiceError(w, r, err, "retrieve dividends")
		return
	}
	utils.SendJSON(w, view, http.StatusOK)
}

func (h *DividendHandler) AddDividend(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var in services.AddDividendInput
	if err := decodeBody(r, &in); err != nil {
		sendServiceError(w, r, err, "add dividend")
		return
	}
	d, err := h.service.AddDividend(r.Context(), userID, in)
	if err != nil {
		sendServiceError(w, r, err, "add dividend")
		return
	}
	utils.SendJSON(w, d, http.StatusCreated)
}

func (h *DividendHandler) DeleteDividend(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := urlID(r)
	if err != nil {
		sendServiceError(w, r, err, "delete dividend")
		return
	}
	if err := h.service.DeleteDividend(r.Context(), userID, id); err != nil {
		sendServiceError(w, r, err, "delete dividend")
		return
	}
	utils.SendJSON(w, map[string]int64{"id": id}, http.StatusOK)
}
