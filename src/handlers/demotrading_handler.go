package handlers

import (
	"net/http"

	"github.com/username/nepsefolio/backend/src/services"
	"github.com/username/nepsefolio/backend/src/utils"
)

type DemoTradingHandler struct {
	service services.DemoTradingService
}

func NewDemoTradingHandler(service services.DemoTradingService) *DemoTradingHandler {
	return &DemoTradingHandler{service: service}
}

func (h *DemoTradingHandler) GetDemoTrading(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	view, err := h.service.GetDemoTrading(r.Context(), userID)
	if err != nil {
		sendServiceError(w, r, err, "retrieve demo account")
		return
	}
	utils.SendJSON(w, view, http.StatusOK)
}

func (h *DemoTradingHandler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var in services.DemoTransactionInput
	if err := decodeBody(r, &in); err != nil {
		sendServiceError(w, r, err, "record demo trade")
		return
	}
	tx, err := h.service.RecordTransaction(r.Context(), userID, in)
	if err != nil {
		sendServiceError(w, r, err, "record demo trade")
		return
	}
	utils.SendJSON(w, tx, http.StatusCreated)
}

// ResetAccount clears the journal and restores the starting balance.
func (h *DemoTradingHandler) ResetAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	account, err := h.service.ResetAccount(r.Context(), userID)
	if err != nil {
		sendServiceError(w, r, err, "reset demo account")
		return
	}
	utils.SendJSON(w, account, http.StatusOK)
}

func (h *DemoTradingHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := urlID(r)
	if err != nil {
		sendServiceError(w, r, err, "delete demo trade")
		return
	}
	if err := h.service.DeleteTransaction(r.Context(), userID, id); err != nil {
		sendServiceError(w, r, err, "delete demo trade")
		return
	}
	utils.SendJSON(w, map[string]int64{"id": id}, http.StatusOK)
}
