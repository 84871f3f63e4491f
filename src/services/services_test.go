package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/username/nepsefolio/backend/src/cache"
	"github.com/username/nepsefolio/backend/src/database"
	"github.com/username/nepsefolio/backend/src/models"
	"github.com/username/nepsefolio/backend/src/quotes"
	"github.com/username/nepsefolio/backend/src/repository"
	"github.com/username/nepsefolio/backend/src/security"
	"github.com/username/nepsefolio/backend/src/security/validation"
)

const testTTL = 10 * time.Second

type fakeQuotes struct {
	snap  quotes.Snapshot
	fail  atomic.Bool
	calls atomic.Int32
}

func (f *fakeQuotes) Snapshot(ctx context.Context) (quotes.Snapshot, error) {
	f.calls.Add(1)
	if f.fail.Load() {
		return nil, quotes.ErrUpstreamUnavailable
	}
	return f.snap, nil
}

func price(v float64) *float64 { return &v }

type fixture struct {
	repo   repository.Repository
	store  *cache.MemoryStore
	quotes *fakeQuotes
	user   int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn, err := database.Open(filepath.Join(t.TempDir(), "services.db"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := database.RunMigrations(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	repo := repository.New(conn)
	u, err := repo.CreateUser(context.Background(), "alice", "alice@example.com", "hash")
	if err != nil {
		t.Fatal(err)
	}
	return &fixture{
		repo:  repo,
		store: cache.NewMemoryStore(time.Minute, nil),
		quotes: &fakeQuotes{snap: quotes.NewSnapshot([]quotes.Quote{
			{Symbol: "NABIL", CompanyName: "Nabil Bank", LastTradedPrice: price(1100), ChangePercent: price(2.5)},
		})},
		user: u.ID,
	}
}

func (f *fixture) portfolios() PortfolioService {
	return NewPortfolioService(f.repo, f.store, f.quotes, testTTL)
}

func TestPortfolioService_ScenarioValuation(t *testing.T) {
	f := newFixture(t)
	svc := f.portfolios()
	ctx := context.Background()

	p, err := svc.CreatePortfolio(ctx, f.user, CreatePortfolioInput{Name: "Core"})
	if err != nil {
		t.Fatalf("CreatePortfolio: %v", err)
	}
	for _, in := range []AddHoldingInput{
		{PortfolioID: p.ID, StockSymbol: "nabil", Quantity: 10, AveragePrice: 1000, TransactionType: "Buy"},
		{PortfolioID: p.ID, StockSymbol: "NIMB", Quantity: 5, AveragePrice: 500, TransactionType: "buy"},
	} {
		if _, err := svc.AddHolding(ctx, f.user, in); err != nil {
			t.Fatalf("AddHolding: %v", err)
		}
	}

	view, err := svc.GetHoldings(ctx, f.user, p.ID)
	if err != nil {
		t.Fatalf("GetHoldings: %v", err)
	}
	want := models.PortfolioSummary{
		TotalInvestment: 12500, NetInvestment: 12500, CurrentValue: 13500,
		ProfitLoss: 1000, ProfitLossPercent: 8, HoldingsCount: 2,
	}
	if view.Summary != want {
		t.Errorf("summary = %+v, want %+v", view.Summary, want)
	}
	if view.QuotesStale || len(view.Positions) != 2 || len(view.Holdings) != 2 {
		t.Errorf("unexpected view %+v", view)
	}

	detail, err := svc.GetPortfolio(ctx, f.user, p.ID)
	if err != nil {
		t.Fatalf("GetPortfolio: %v", err)
	}
	if detail.Summary != want || detail.Name != "Core" {
		t.Errorf("detail = %+v", detail)
	}
}

func TestPortfolioService_HoldingsAreCached(t *testing.T) {
	f := newFixture(t)
	svc := f.portfolios()
	ctx := context.Background()
	p, _ := svc.CreatePortfolio(ctx, f.user, CreatePortfolioInput{Name: "Core"})
	if _, err := svc.AddHolding(ctx, f.user, AddHoldingInput{PortfolioID: p.ID, StockSymbol: "NABIL", Quantity: 1, AveragePrice: 1000, TransactionType: "Buy"}); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.GetHoldings(ctx, f.user, p.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetHoldings(ctx, f.user, p.ID); err != nil {
		t.Fatal(err)
	}
	if got := f.quotes.calls.Load(); got != 1 {
		t.Errorf("second read should be served from cache, quote calls = %d", got)
	}
	if _, ok := f.store.Get(cache.HoldingsKey(f.user, p.ID)); !ok {
		t.Error("holdings view not cached")
	}
}

func TestPortfolioService_WritesInvalidateReads(t *testing.T) {
	f := newFixture(t)
	svc := f.portfolios()
	ctx := context.Background()
	p, _ := svc.CreatePortfolio(ctx, f.user, CreatePortfolioInput{Name: "Core"})

	list, err := svc.ListPortfolios(ctx, f.user)
	if err != nil || len(list) != 1 || list[0].HoldingsCount != 0 {
		t.Fatalf("ListPortfolios = %+v, %v", list, err)
	}
	if _, err := svc.GetHoldings(ctx, f.user, p.ID); err != nil {
		t.Fatal(err)
	}

	h, err := svc.AddHolding(ctx, f.user, AddHoldingInput{PortfolioID: p.ID, StockSymbol: "NABIL", Quantity: 10, AveragePrice: 1000, TransactionType: "Buy"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := f.store.Get(cache.PortfoliosKey(f.user)); ok {
		t.Error("portfolios key survived AddHolding")
	}
	if _, ok := f.store.Get(cache.HoldingsKey(f.user, p.ID)); ok {
		t.Error("holdings key survived AddHolding")
	}

	list, _ = svc.ListPortfolios(ctx, f.user)
	if list[0].HoldingsCount != 1 || list[0].TotalValue != 10000 {
		t.Errorf("list not refreshed after write: %+v", list[0])
	}
	view, _ := svc.GetHoldings(ctx, f.user, p.ID)
	if len(view.Holdings) != 1 {
		t.Errorf("holdings not refreshed after write: %d rows", len(view.Holdings))
	}

	if err := svc.DeleteHolding(ctx, f.user, h.ID); err != nil {
		t.Fatal(err)
	}
	list, _ = svc.ListPortfolios(ctx, f.user)
	view, _ = svc.GetHoldings(ctx, f.user, p.ID)
	if list[0].HoldingsCount != 0 || len(view.Holdings) != 0 {
		t.Errorf("reads stale after DeleteHolding: %+v / %d", list[0], len(view.Holdings))
	}

	name := "Renamed"
	if _, err := svc.UpdatePortfolio(ctx, f.user, p.ID, models.PortfolioUpdate{Name: &name}); err != nil {
		t.Fatal(err)
	}
	list, _ = svc.ListPortfolios(ctx, f.user)
	if list[0].Name != "Renamed" {
		t.Errorf("list stale after rename: %+v", list[0])
	}

	if err := svc.DeletePortfolio(ctx, f.user, p.ID); err != nil {
		t.Fatal(err)
	}
	list, _ = svc.ListPortfolios(ctx, f.user)
	if len(list) != 0 {
		t.Errorf("list stale after delete: %+v", list)
	}
}

func TestPortfolioService_QuoteFailureFallsBackToCost(t *testing.T) {
	f := newFixture(t)
	svc := f.portfolios()
	ctx := context.Background()
	p, _ := svc.CreatePortfolio(ctx, f.user, CreatePortfolioInput{Name: "Core"})
	if _, err := svc.AddHolding(ctx, f.user, AddHoldingInput{PortfolioID: p.ID, StockSymbol: "NABIL", Quantity: 10, AveragePrice: 1000, TransactionType: "Buy"}); err != nil {
		t.Fatal(err)
	}

	f.quotes.fail.Store(true)
	view, err := svc.GetHoldings(ctx, f.user, p.ID)
	if err != nil {
		t.Fatalf("quote failure must not fail the read: %v", err)
	}
	if !view.QuotesStale || view.Summary.CurrentValue != 10000 || view.Summary.ProfitLoss != 0 {
		t.Errorf("expected cost valuation, got %+v", view)
	}
	if _, ok := f.store.Get(cache.HoldingsKey(f.user, p.ID)); ok {
		t.Error("view without quotes should not be cached")
	}

	f.quotes.fail.Store(false)
	view, _ = svc.GetHoldings(ctx, f.user, p.ID)
	if view.QuotesStale || view.Summary.CurrentValue != 11000 {
		t.Errorf("expected live valuation after recovery, got %+v", view.Summary)
	}
}

func TestPortfolioService_SellValidation(t *testing.T) {
	f := newFixture(t)
	svc := f.portfolios()
	ctx := context.Background()
	p, _ := svc.CreatePortfolio(ctx, f.user, CreatePortfolioInput{Name: "Core"})
	if _, err := svc.AddHolding(ctx, f.user, AddHoldingInput{PortfolioID: p.ID, StockSymbol: "NABIL", Quantity: 10, AveragePrice: 100, TransactionType: "Buy"}); err != nil {
		t.Fatal(err)
	}

	_, err := svc.AddHolding(ctx, f.user, AddHoldingInput{PortfolioID: p.ID, StockSymbol: "NABIL", Quantity: 11, AveragePrice: 120, TransactionType: "Sell"})
	if !errors.Is(err, repository.ErrInsufficientShares) {
		t.Errorf("expected ErrInsufficientShares, got %v", err)
	}
	if _, err := svc.AddHolding(ctx, f.user, AddHoldingInput{PortfolioID: p.ID, StockSymbol: "NABIL", Quantity: 4, AveragePrice: 120, TransactionType: "Sell"}); err != nil {
		t.Errorf("valid sell rejected: %v", err)
	}

	view, _ := svc.GetHoldings(ctx, f.user, p.ID)
	if view.Summary.NetInvestment != 520 {
		t.Errorf("NetInvestment = %v, want 520", view.Summary.NetInvestment)
	}
}

func TestPortfolioService_InputValidation(t *testing.T) {
	f := newFixture(t)
	svc := f.portfolios()
	ctx := context.Background()
	p, _ := svc.CreatePortfolio(ctx, f.user, CreatePortfolioInput{Name: "Core"})

	bad := []AddHoldingInput{
		{PortfolioID: p.ID, StockSymbol: "", Quantity: 1, AveragePrice: 1, TransactionType: "Buy"},
		{PortfolioID: p.ID, StockSymbol: "NABIL", Quantity: 0, AveragePrice: 1, TransactionType: "Buy"},
		{PortfolioID: p.ID, StockSymbol: "NABIL", Quantity: 1.5, AveragePrice: 1, TransactionType: "Buy"},
		{PortfolioID: p.ID, StockSymbol: "NABIL", Quantity: 1, AveragePrice: -1, TransactionType: "Buy"},
		{PortfolioID: p.ID, StockSymbol: "NABIL", Quantity: 1, AveragePrice: 1, TransactionType: "Hold"},
		{StockSymbol: "NABIL", Quantity: 1, AveragePrice: 1, TransactionType: "Buy"},
	}
	for i, in := range bad {
		if _, err := svc.AddHolding(ctx, f.user, in); !errors.Is(err, validation.ErrValidationFailed) {
			t.Errorf("case %d: expected validation error, got %v", i, err)
		}
	}

	if _, err := svc.CreatePortfolio(ctx, f.user, CreatePortfolioInput{Name: "  "}); !errors.Is(err, validation.ErrValidationFailed) {
		t.Errorf("blank name: expected validation error, got %v", err)
	}
	if _, err := svc.CreatePortfolio(ctx, f.user, CreatePortfolioInput{Name: "Neg", InitialBalance: -5}); !errors.Is(err, validation.ErrValidationFailed) {
		t.Errorf("negative balance: expected validation error, got %v", err)
	}
}

func TestDividendService_ListWithSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, _ := f.portfolios().CreatePortfolio(ctx, f.user, CreatePortfolioInput{Name: "Core"})
	svc := NewDividendService(f.repo)

	for _, in := range []AddDividendInput{
		{PortfolioID: p.ID, StockSymbol: "NABIL", Type: "Cash", Value: 150, Date: "2024-01-10"},
		{PortfolioID: p.ID, StockSymbol: "NABIL", Type: "cash", Value: 50, Date: "2024-02-10"},
		{PortfolioID: p.ID, StockSymbol: "NABIL", Type: "Bonus", Value: 12, Date: "2024-03-10"},
	} {
		if _, err := svc.AddDividend(ctx, f.user, in); err != nil {
			t.Fatalf("AddDividend: %v", err)
		}
	}
	if _, err := svc.AddDividend(ctx, f.user, AddDividendInput{PortfolioID: p.ID, StockSymbol: "NABIL", Type: "Cash", Value: 1, Date: "10-01-2024"}); !errors.Is(err, validation.ErrValidationFailed) {
		t.Errorf("bad date: expected validation error, got %v", err)
	}

	view, err := svc.ListDividends(ctx, f.user, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if view.Summary.TotalCash != 200 || view.Summary.TotalBonusShares != 12 || view.Summary.Count != 3 {
		t.Errorf("unexpected summary %+v", view.Summary)
	}

	if err := svc.DeleteDividend(ctx, f.user, view.Dividends[0].ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteDividend(ctx, f.user, view.Dividends[0].ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestWatchlistService_TargetReached(t *testing.T) {
	f := newFixture(t)
	svc := NewWatchlistService(f.repo, f.store, f.quotes, testTTL)
	ctx := context.Background()

	if _, err := svc.AddToWatchlist(ctx, f.user, WatchlistInput{StockSymbol: "nabil", TargetPrice: price(1050)}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddToWatchlist(ctx, f.user, WatchlistInput{StockSymbol: "NIMB", TargetPrice: price(100)}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddToWatchlist(ctx, f.user, WatchlistInput{StockSymbol: "NABIL"}); !errors.Is(err, repository.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	items, err := svc.ListWatchlist(ctx, f.user)
	if err != nil || len(items) != 2 {
		t.Fatalf("ListWatchlist = %+v, %v", items, err)
	}
	nabil, nimb := items[0], items[1]
	if !nabil.TargetReached || !nabil.QuoteAvailable || *nabil.LivePrice != 1100 || nabil.CompanyName != "Nabil Bank" {
		t.Errorf("NABIL annotation wrong: %+v", nabil)
	}
	if nimb.TargetReached || nimb.QuoteAvailable || nimb.LivePrice != nil {
		t.Errorf("NIMB has no quote: %+v", nimb)
	}

	if _, err := svc.UpdateWatchlist(ctx, f.user, "NABIL", WatchlistInput{TargetPrice: price(1200)}); err != nil {
		t.Fatal(err)
	}
	items, _ = svc.ListWatchlist(ctx, f.user)
	if items[0].TargetReached {
		t.Error("update did not invalidate the cached watchlist")
	}

	if err := svc.RemoveFromWatchlist(ctx, f.user, "nimb"); err != nil {
		t.Fatal(err)
	}
	items, _ = svc.ListWatchlist(ctx, f.user)
	if len(items) != 1 {
		t.Errorf("remove did not invalidate the cached watchlist: %d items", len(items))
	}
}

func TestDemoTradingService_JournalAndReset(t *testing.T) {
	f := newFixture(t)
	svc := NewDemoTradingService(f.repo, f.store, f.quotes, testTTL)
	ctx := context.Background()

	view, err := svc.GetDemoTrading(ctx, f.user)
	if err != nil {
		t.Fatal(err)
	}
	if view.Account.CurrentBalance != models.DemoInitialBalance || len(view.Transactions) != 0 {
		t.Fatalf("unexpected fresh account %+v", view)
	}

	if _, err := svc.RecordTransaction(ctx, f.user, DemoTransactionInput{StockSymbol: "NABIL", Side: "buy", Quantity: 10, Price: 1000}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RecordTransaction(ctx, f.user, DemoTransactionInput{StockSymbol: "NABIL", Side: "hold", Quantity: 1, Price: 1}); !errors.Is(err, validation.ErrValidationFailed) {
		t.Errorf("expected validation error for bad side, got %v", err)
	}

	view, _ = svc.GetDemoTrading(ctx, f.user)
	if view.Account.CurrentBalance != models.DemoInitialBalance {
		t.Errorf("balance moved: %v", view.Account.CurrentBalance)
	}
	if len(view.Transactions) != 1 || view.Summary.CurrentValue != 11000 || view.Summary.ProfitLoss != 1000 {
		t.Errorf("unexpected demo view %+v", view)
	}

	if err := svc.DeleteTransaction(ctx, f.user, view.Transactions[0].ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RecordTransaction(ctx, f.user, DemoTransactionInput{StockSymbol: "NIMB", Side: "SELL", Quantity: 1, Price: 10}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ResetAccount(ctx, f.user); err != nil {
		t.Fatal(err)
	}
	view, _ = svc.GetDemoTrading(ctx, f.user)
	if len(view.Transactions) != 0 {
		t.Errorf("reset did not clear the journal: %+v", view.Transactions)
	}
}

func TestDemoTradingService_QuoteFailureFlagsStaleView(t *testing.T) {
	f := newFixture(t)
	svc := NewDemoTradingService(f.repo, f.store, f.quotes, testTTL)
	ctx := context.Background()
	if _, err := svc.RecordTransaction(ctx, f.user, DemoTransactionInput{StockSymbol: "NABIL", Side: "BUY", Quantity: 10, Price: 1000}); err != nil {
		t.Fatal(err)
	}

	f.quotes.fail.Store(true)
	view, err := svc.GetDemoTrading(ctx, f.user)
	if err != nil {
		t.Fatalf("quote failure must not fail the read: %v", err)
	}
	if !view.QuotesStale || view.Summary.CurrentValue != 10000 {
		t.Errorf("expected stale cost valuation, got stale=%v summary=%+v", view.QuotesStale, view.Summary)
	}
	if _, ok := f.store.Get(cache.DemoKey(f.user)); ok {
		t.Error("demo view without quotes should not be cached")
	}

	f.quotes.fail.Store(false)
	view, _ = svc.GetDemoTrading(ctx, f.user)
	if view.QuotesStale || view.Summary.CurrentValue != 11000 {
		t.Errorf("expected live valuation after recovery, got stale=%v summary=%+v", view.QuotesStale, view.Summary)
	}
}

func TestPortfolioService_TextRoundTripsUnchanged(t *testing.T) {
	f := newFixture(t)
	svc := f.portfolios()
	ctx := context.Background()

	desc := `Dividends & "bonus" shares`
	p, err := svc.CreatePortfolio(ctx, f.user, CreatePortfolioInput{Name: "Tom's A&B", Description: &desc})
	if err != nil {
		t.Fatalf("CreatePortfolio: %v", err)
	}
	if p.Name != "Tom's A&B" || p.Description == nil || *p.Description != desc {
		t.Errorf("stored text changed: name=%q description=%v", p.Name, p.Description)
	}
	if _, err := svc.CreatePortfolio(ctx, f.user, CreatePortfolioInput{Name: "Tom's A&B"}); !errors.Is(err, repository.ErrDuplicateName) {
		t.Errorf("same name again: expected ErrDuplicateName, got %v", err)
	}
	list, _ := svc.ListPortfolios(ctx, f.user)
	if len(list) != 1 || list[0].Name != "Tom's A&B" {
		t.Errorf("listed name changed: %+v", list)
	}
}

func TestPortfolioService_DeleteCoveringBuyRejected(t *testing.T) {
	f := newFixture(t)
	svc := f.portfolios()
	ctx := context.Background()
	p, _ := svc.CreatePortfolio(ctx, f.user, CreatePortfolioInput{Name: "Core"})
	buy, err := svc.AddHolding(ctx, f.user, AddHoldingInput{PortfolioID: p.ID, StockSymbol: "NABIL", Quantity: 10, AveragePrice: 100, TransactionType: "Buy"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddHolding(ctx, f.user, AddHoldingInput{PortfolioID: p.ID, StockSymbol: "NABIL", Quantity: 10, AveragePrice: 120, TransactionType: "Sell"}); err != nil {
		t.Fatal(err)
	}

	if err := svc.DeleteHolding(ctx, f.user, buy.ID); !errors.Is(err, repository.ErrInsufficientShares) {
		t.Fatalf("expected ErrInsufficientShares, got %v", err)
	}
	view, _ := svc.GetHoldings(ctx, f.user, p.ID)
	for _, pos := range view.Positions {
		if pos.NetQuantity < 0 {
			t.Errorf("negative position after rejected delete: %+v", pos)
		}
	}
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	tokens := security.NewAuthService("0123456789abcdef0123456789abcdef", time.Hour)
	svc := NewAuthService(f.repo, tokens)
	ctx := context.Background()

	u, err := svc.Register(ctx, "bob", "Bob@Example.com", "s3cret-password")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(ctx, "bob", "bob@example.com", "s3cret-password"); !errors.Is(err, repository.ErrDuplicate) {
		t.Errorf("duplicate register: expected ErrDuplicate, got %v", err)
	}
	if _, err := svc.Register(ctx, "carol", "carol@example.com", "short"); !errors.Is(err, validation.ErrValidationFailed) {
		t.Errorf("short password: expected validation error, got %v", err)
	}

	token, got, err := svc.Login(ctx, "bob@example.com", "s3cret-password")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("logged in as %d, want %d", got.ID, u.ID)
	}
	sub, err := tokens.ValidateToken(token)
	if err != nil || sub == "" {
		t.Errorf("issued token invalid: %q %v", sub, err)
	}

	if _, _, err := svc.Login(ctx, "bob@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}
