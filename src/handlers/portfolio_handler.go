package handlers

import (
	"net/http"

	"github.com/username/nepsefolio/backend/src/models"
	"github.com/username/nepsefolio/backend/src/services"
	"github.com/username/nepsefolio/backend/src/utils"
)

// PortfolioHandler serves /portfolios and /portfolio-holdings.
type PortfolioHandler struct {
	service services.PortfolioService
}

func NewPortfolioHandler(service services.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{service: service}
}

func (h *PortfolioHandler) ListPortfolios(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	portfolios, err := h.service.ListPortfolios(r.Context(), userID)
	if err != nil {
		sendServiceError(w, r, err, "retrieve portfolios")
		return
	}
	if portfolios == nil {
		portfolios = []models.PortfolioWithMetrics{}
	}
	utils.SendJSON(w, portfolios, http.StatusOK)
}

func (h *PortfolioHandler) CreatePortfolio(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var in services.CreatePortfolioInput
	if err := decodeBody(r, &in); err != nil {
		sendServiceError(w, r, err, "create portfolio")
		return
	}
	p, err := h.service.CreatePortfolio(r.Context(), userID, in)
	if err != nil {
		sendServiceError(w, r, err, "create portfolio")
		return
	}
	utils.SendJSON(w, p, http.StatusCreated)
}

func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := urlID(r)
	if err != nil {
		sendServiceError(w, r, err, "retrieve portfolio")
		return
	}
	detail, err := h.service.GetPortfolio(r.Context(), userID, id)
	if err != nil {
		sendServiceError(w, r, err, "retrieve portfolio")
		return
	}
	utils.SendJSON(w, detail, http.StatusOK)
}

func (h *PortfolioHandler) UpdatePortfolio(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := urlID(r)
	if err != nil {
		sendServiceError(w, r, err, "update portfolio")
		return
	}
	var upd models.PortfolioUpdate
	if err := decodeBody(r, &upd); err != nil {
		sendServiceError(w, r, err, "update portfolio")
		return
	}
	p, err := h.service.UpdatePortfolio(r.Context(), userID, id, upd)
	if err != nil {
		sendServiceError(w, r, err, "update portfolio")
		return
	}
	utils.SendJSON(w, p, http.StatusOK)
}

func (h *PortfolioHandler) DeletePortfolio(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := urlID(r)
	if err != nil {
		sendServiceError(w, r, err, "delete portfolio")
		return
	}
	if err := h.service.DeletePortfolio(r.Context(), userID, id); err != nil {
		sendServiceError(w, r, err, "delete portfolio")
		return
	}
	utils.SendJSON(w, map[string]int64{"id": id}, http.StatusOK)
}

func (h *PortfolioHandler) GetHoldings(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	portfolioID, err := queryPortfolioID(r)
	if err != nil {
		sendServiceError(w, r, err, "retrieve holdings")
		return
	}
	view, err := h.service.GetHoldings(r.Context(), userID, portfolioID)
	if err != nil {
		sendServiceError(w, r, err, "retrieve holdings")
		return
	}
	utils.SendJSON(w, view, http.StatusOK)
}

func (h *PortfolioHandler) AddHolding(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var in services.AddHoldingInput
	if err := decodeBody(r, &in); err != nil {
		sendServiceError(w, r, err, "add holding")
		return
	}
	holding, err := h.service.AddHolding(r.Context(), userID, in)
	if err != nil {
		sendServiceError(w, r, err, "add holding")
		return
	}
	utils.SendJSON(w, holding, http.StatusCreated)
}

func (h *PortfolioHandler) DeleteHolding(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := urlID(r)
	if err != nil {
		sendServiceError(w, r, err, "delete holding")
		return
	}
	if err := h.service.DeleteHolding(r.Context(), userID, id); err != nil {
		sendServiceError(w, r, err, "delete holding")
		return
	}
	utils.SendJSON(w, map[string]int64{"id": id}, http.StatusOK)
}
