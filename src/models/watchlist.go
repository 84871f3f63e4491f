package models

import "time"

// WatchlistEntry is a symbol a user follows, with an optional price alert.
type WatchlistEntry struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	StockSymbol string    `json:"stock_symbol"`
	TargetPrice *float64  `json:"target_price,omitempty"`
	Notes       *string   `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type WatchlistInput struct {
	StockSymbol string
	TargetPrice *float64
	Notes       *string
}

// WatchlistItem is an entry annotated with the latest quote.
type WatchlistItem struct {
	WatchlistEntry
	LivePrice      *float64 `json:"live_price,omitempty"`
	ChangePercent  *float64 `json:"change_percent,omitempty"`
	CompanyName    string   `json:"company_name,omitempty"`
	TargetReached  bool     `json:"target_reached"`
	QuoteAvailable bool     `json:"quote_available"`
}
