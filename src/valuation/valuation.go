// Package valuation turns holding rows and a quote snapshot into portfolio metrics.
// Everything here is pure; inputs are assumed to be validated by the write path.
package valuation

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/username/nepsefolio/backend/src/models"
	"github.com/username/nepsefolio/backend/src/quotes"
)

var hundred = decimal.NewFromInt(100)

func isBuy(h models.Holding) bool  { return strings.EqualFold(h.TransactionType, models.TransactionBuy) }
func isSell(h models.Holding) bool { return strings.EqualFold(h.TransactionType, models.TransactionSell) }

// ResolveLivePrice returns the snapshot's live price for the holding's symbol,
// or the holding's own price when the symbol has no usable quote.
func ResolveLivePrice(h models.Holding, snap quotes.Snapshot) float64 {
	if price, ok := snap.LivePrice(h.StockSymbol); ok {
		return price
	}
	return h.AveragePrice
}

func lineValue(qty int64, price float64) decimal.Decimal {
	return decimal.NewFromInt(qty).Mul(decimal.NewFromFloat(price))
}

// Valuate computes the summary of a portfolio. Sells reduce the cost basis
// but do not reduce currentValue, which is valued over buy rows only.
// Rows with an unknown transaction type are ignored.
func Valuate(holdings []models.Holding, snap quotes.Snapshot) models.PortfolioSummary {
	invested := decimal.Zero
	disposed := decimal.Zero
	current := decimal.Zero
	buys := 0

	for _, h := range holdings {
		switch {
		case isBuy(h):
			buys++
			invested = invested.Add(lineValue(h.Quantity, h.AveragePrice))
			current = current.Add(lineValue(h.Quantity, ResolveLivePrice(h, snap)))
		case isSell(h):
			disposed = disposed.Add(lineValue(h.Quantity, h.AveragePrice))
		}
	}

	net := invested.Sub(disposed)
	profit := current.Sub(net)
	percent := decimal.Zero
	if net.IsPositive() {
		percent = profit.Div(net).Mul(hundred)
	}

	return models.PortfolioSummary{
		TotalInvestment:   invested.InexactFloat64(),
		TotalDisposed:     disposed.InexactFloat64(),
		NetInvestment:     net.InexactFloat64(),
		CurrentValue:      current.InexactFloat64(),
		ProfitLoss:        profit.InexactFloat64(),
		ProfitLossPercent: percent.Round(4).InexactFloat64(),
		HoldingsCount:     buys,
	}
}

type tally struct {
	bought   int64
	sold     int64
	cost     decimal.Decimal
	proceeds decimal.Decimal
	price    float64
}

// Positions nets buy and sell rows per symbol. Market value is the net share
// count at the live price, falling back to the last buy price when no quote exists.
func Positions(holdings []models.Holding, snap quotes.Snapshot) []models.Position {
	bySymbol := make(map[string]*tally)
	for _, h := range holdings {
		if !isBuy(h) && !isSell(h) {
			continue
		}
		sym := strings.ToUpper(strings.TrimSpace(h.StockSymbol))
		t, ok := bySymbol[sym]
		if !ok {
			t = &tally{cost: decimal.Zero, proceeds: decimal.Zero}
			bySymbol[sym] = t
		}
		if isBuy(h) {
			t.bought += h.Quantity
			t.cost = t.cost.Add(lineValue(h.Quantity, h.AveragePrice))
			t.price = h.AveragePrice
		} else {
			t.sold += h.Quantity
			t.proceeds = t.proceeds.Add(lineValue(h.Quantity, h.AveragePrice))
			if t.price == 0 {
				t.price = h.AveragePrice
			}
		}
	}

	out := make([]models.Position, 0, len(bySymbol))
	for sym, t := range bySymbol {
		live, quoted := snap.LivePrice(sym)
		if !quoted {
			live = t.price
		}
		net := t.bought - t.sold
		out = append(out, models.Position{
			StockSymbol:    sym,
			BoughtQuantity: t.bought,
			SoldQuantity:   t.sold,
			NetQuantity:    net,
			BuyCost:        t.cost.InexactFloat64(),
			SellProceeds:   t.proceeds.InexactFloat64(),
			LivePrice:      live,
			MarketValue:    lineValue(net, live).InexactFloat64(),
			QuoteAvailable: quoted,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StockSymbol < out[j].StockSymbol })
	return out
}

// NetShares returns bought minus sold shares of symbol across the rows.
func NetShares(holdings []models.Holding, symbol string) int64 {
	var net int64
	for _, h := range holdings {
		if !strings.EqualFold(strings.TrimSpace(h.StockSymbol), strings.TrimSpace(symbol)) {
			continue
		}
		switch {
		case isBuy(h):
			net += h.Quantity
		case isSell(h):
			net -= h.Quantity
		}
	}
	return net
}

// SummarizeDividends totals cash amounts and bonus/right share counts.
func SummarizeDividends(divs []models.Dividend) models.DividendSummary {
	cash := decimal.Zero
	bonus := decimal.Zero
	right := decimal.Zero
	bySymbol := make(map[string]decimal.Decimal)

	for _, d := range divs {
		v := decimal.NewFromFloat(d.Value)
		switch {
		case strings.EqualFold(d.Type, models.DividendCash):
			cash = cash.Add(v)
			sym := strings.ToUpper(d.StockSymbol)
			bySymbol[sym] = bySymbol[sym].Add(v)
		case strings.EqualFold(d.Type, models.DividendBonus):
			bonus = bonus.Add(v)
		case strings.EqualFold(d.Type, models.DividendRight):
			right = right.Add(v)
		}
	}

	summary := models.DividendSummary{
		TotalCash:        cash.InexactFloat64(),
		TotalBonusShares: bonus.InexactFloat64(),
		TotalRightShares: right.InexactFloat64(),
		CashBySymbol:     make(map[string]float64, len(bySymbol)),
		Count:            len(divs),
	}
	for sym, v := range bySymbol {
		summary.CashBySymbol[sym] = v.InexactFloat64()
	}
	return summary
}

// DemoHoldings maps demo journal entries onto holding rows so the same
// engine can value them.
func DemoHoldings(txs []models.DemoTradingTransaction) []models.Holding {
	out := make([]models.Holding, 0, len(txs))
	for _, tx := range txs {
		kind := models.TransactionBuy
		if strings.EqualFold(tx.Side, models.DemoSideSell) {
			kind = models.TransactionSell
		}
		out = append(out, models.Holding{
			ID:              tx.ID,
			StockSymbol:     tx.StockSymbol,
			Quantity:        tx.Quantity,
			AveragePrice:    tx.Price,
			TransactionType: kind,
			CreatedAt:       tx.CreatedAt,
		})
	}
	return out
}
