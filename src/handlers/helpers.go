package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/username/nepsefolio/backend/src/logger"
	"github.com/username/nepsefolio/backend/src/quotes"
	"github.com/username/nepsefolio/backend/src/repository"
	"github.com/username/nepsefolio/backend/src/security/validation"
	"github.com/username/nepsefolio/backend/src/services"
	"github.com/username/nepsefolio/backend/src/utils"
)

const maxBodyBytes = 1 << 20

// sendServiceError maps service and repository errors onto HTTP statuses.
// Unexpected errors are logged and reported with a generic message.
func sendServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	switch {
	case errors.Is(err, validation.ErrValidationFailed),
		errors.Is(err, repository.ErrLimitExceeded),
		errors.Is(err, repository.ErrDuplicateName),
		errors.Is(err, repository.ErrInsufficientShares):
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, repository.ErrNotFound):
		utils.SendJSONError(w, "resource not found", http.StatusNotFound)
	case errors.Is(err, repository.ErrDuplicate):
		utils.SendJSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.SendJSONError(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, quotes.ErrUpstreamUnavailable):
		logger.FromContext(r.Context()).Warn("Upstream unavailable", "action", action, "error", err)
		utils.SendJSONError(w, "market data is currently unavailable", http.StatusBadGateway)
	default:
		logger.FromContext(r.Context()).Error("Request failed", "action", action, "error", err)
		utils.SendJSONError(w, "failed to "+action, http.StatusInternalServerError)
	}
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body", validation.ErrValidationFailed)
	}
	return nil
}

func parseID(raw, name string) (int64, error) {
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", validation.ErrValidationFailed, name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", validation.ErrValidationFailed, name)
	}
	return id, nil
}

func urlID(r *http.Request) (int64, error) {
	return parseID(chi.URLParam(r, "id"), "id")
}

func queryPortfolioID(r *http.Request) (int64, error) {
	return parseID(r.URL.Query().Get("portfolio_id"), "portfolio_id")
}

// requireUser fetches the authenticated user or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
	}
	return userID, ok
}
