package models

import "time"

// Dividend types. Stored values may differ in case; compare with strings.EqualFold.
const (
	DividendCash  = "Cash"
	DividendBonus = "Bonus"
	DividendRight = "Right"
)

// Dividend records a corporate action on a symbol held in a portfolio.
// Value is a currency amount for Cash and a share count for Bonus/Right.
type Dividend struct {
	ID          int64     `json:"id"`
	PortfolioID int64     `json:"portfolio_id"`
	StockSymbol string    `json:"stock_symbol"`
	Type        string    `json:"type"`
	Value       float64   `json:"value"`
	Date        string    `json:"date"`
	Notes       *string   `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type NewDividend struct {
	PortfolioID int64
	StockSymbol string
	Type        string
	Value       float64
	Date        string
	Notes       *string
}

// DividendSummary aggregates dividend rows. Bonus and right totals are share counts.
type DividendSummary struct {
	TotalCash        float64            `json:"total_cash"`
	TotalBonusShares float64            `json:"total_bonus_shares"`
	TotalRightShares float64            `json:"total_right_shares"`
	CashBySymbol     map[string]float64 `json:"cash_by_symbol"`
	Count            int                `json:"count"`
}

type DividendsView struct {
	PortfolioID int64           `json:"portfolio_id"`
	Dividends   []Dividend      `json:"dividends"`
	Summary     DividendSummary `json:"summary"`
}
