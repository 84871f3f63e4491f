package models

import "time"

// DemoInitialBalance is the virtual currency credited to every new demo account.
const DemoInitialBalance = 10_000_000

const (
	DemoSideBuy  = "BUY"
	DemoSideSell = "SELL"
)

// DemoTradingAccount is a paper-trading journal. CurrentBalance is not
// debited or credited by recorded transactions.
type DemoTradingAccount struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	CurrentBalance float64   `json:"current_balance"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type DemoTradingTransaction struct {
	ID          int64     `json:"id"`
	AccountID   int64     `json:"account_id"`
	StockSymbol string    `json:"stock_symbol"`
	Side        string    `json:"side"`
	Quantity    int64     `json:"quantity"`
	Price       float64   `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
}

type NewDemoTransaction struct {
	StockSymbol string
	Side        string
	Quantity    int64
	Price       float64
}

type DemoTradingView struct {
	Account      DemoTradingAccount       `json:"account"`
	Transactions []DemoTradingTransaction `json:"transactions"`
	Summary      PortfolioSummary         `json:"summary"`
	Positions    []Position               `json:"positions"`
	QuotesStale  bool                     `json:"quotes_stale"`
}
