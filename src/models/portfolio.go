package models

import "time"

// Transaction types for holding rows. Comparisons against stored rows are case-insensitive.
const (
	TransactionBuy  = "Buy"
	TransactionSell = "Sell"
)

// Portfolio is a named container of holdings owned by one user.
type Portfolio struct {
	ID             int64      `json:"id"`
	UserID         int64      `json:"user_id"`
	Name           string     `json:"name"`
	Description    *string    `json:"description,omitempty"`
	InitialBalance float64    `json:"initial_balance"`
	CreatedAt      time.Time  `json:"created_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
}

// PortfolioWithMetrics is a portfolio annotated with stored aggregates.
// TotalValue is the cost of buy rows, not a live market value.
type PortfolioWithMetrics struct {
	Portfolio
	HoldingsCount int     `json:"holdings_count"`
	TotalValue    float64 `json:"total_value"`
}

// PortfolioUpdate carries the fields of a partial update; nil means unchanged.
type PortfolioUpdate struct {
	Name           *string  `json:"name"`
	Description    *string  `json:"description"`
	InitialBalance *float64 `json:"initial_balance"`
}

// Holding is a single Buy or Sell row. AveragePrice is the per-share price
// of this transaction, not a running average.
type Holding struct {
	ID              int64     `json:"id"`
	PortfolioID     int64     `json:"portfolio_id"`
	StockSymbol     string    `json:"stock_symbol"`
	Quantity        int64     `json:"quantity"`
	AveragePrice    float64   `json:"average_price"`
	TransactionType string    `json:"transaction_type"`
	BonusShares     int64     `json:"bonus_shares"`
	RightShares     int64     `json:"right_shares"`
	CashDividend    float64   `json:"cash_dividend"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewHolding is the validated input for recording a holding row.
type NewHolding struct {
	PortfolioID     int64
	StockSymbol     string
	Quantity        int64
	AveragePrice    float64
	TransactionType string
	BonusShares     int64
	RightShares     int64
	CashDividend    float64
}

// PortfolioSummary holds the valuation metrics of a set of holding rows.
type PortfolioSummary struct {
	TotalInvestment   float64 `json:"total_investment"`
	TotalDisposed     float64 `json:"total_disposed"`
	NetInvestment     float64 `json:"net_investment"`
	CurrentValue      float64 `json:"current_value"`
	ProfitLoss        float64 `json:"profit_loss"`
	ProfitLossPercent float64 `json:"profit_loss_percent"`
	HoldingsCount     int     `json:"holdings_count"`
}

// Position is the per-symbol net share view of a portfolio.
type Position struct {
	StockSymbol    string  `json:"stock_symbol"`
	BoughtQuantity int64   `json:"bought_quantity"`
	SoldQuantity   int64   `json:"sold_quantity"`
	NetQuantity    int64   `json:"net_quantity"`
	BuyCost        float64 `json:"buy_cost"`
	SellProceeds   float64 `json:"sell_proceeds"`
	LivePrice      float64 `json:"live_price"`
	MarketValue    float64 `json:"market_value"`
	QuoteAvailable bool    `json:"quote_available"`
}

// PortfolioDetail is a portfolio with its live valuation.
type PortfolioDetail struct {
	Portfolio
	Summary PortfolioSummary `json:"summary"`
}

// HoldingsView is the payload served for a portfolio's holdings.
type HoldingsView struct {
	PortfolioID int64            `json:"portfolio_id"`
	Holdings    []Holding        `json:"holdings"`
	Summary     PortfolioSummary `json:"summary"`
	Positions   []Position       `json:"positions"`
	QuotesStale bool             `json:"quotes_stale"`
}
