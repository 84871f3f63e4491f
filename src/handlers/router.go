package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/username/nepsefolio/backend/src/metrics"
	"github.com/username/nepsefolio/backend/src/utils"
)

// RouterConfig carries everything NewRouter wires together.
type RouterConfig struct {
	Auth        *AuthHandler
	Portfolios  *PortfolioHandler
	Dividends   *DividendHandler
	Watchlist   *WatchlistHandler
	DemoTrading *DemoTradingHandler
	Market      *MarketHandler

	Metrics        *metrics.Metrics
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(ContextualLoggerMiddleware)
	if cfg.Metrics != nil {
		r.Use(MetricsMiddleware(cfg.Metrics))
	}
	r.Use(CORSMiddleware(cfg.AllowedOrigins))

	r.Get("/healthz", Healthz)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimitRPS > 0 {
			r.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))
		}

		// Public routes
		r.Post("/auth/register", cfg.Auth.Register)
		r.Post("/auth/login", cfg.Auth.Login)
		r.Get("/nepse-proxy", cfg.Market.NepseProxy)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(cfg.Auth.AuthMiddleware)

			r.Get("/portfolios", cfg.Portfolios.ListPortfolios)
			r.Post("/portfolios", cfg.Portfolios.CreatePortfolio)
			r.Get("/portfolios/{id}", cfg.Portfolios.GetPortfolio)
			r.Put("/portfolios/{id}", cfg.Portfolios.UpdatePortfolio)
			r.Delete("/portfolios/{id}", cfg.Portfolios.DeletePortfolio)

			r.Get("/portfolio-holdings", cfg.Portfolios.GetHoldings)
			r.Post("/portfolio-holdings", cfg.Portfolios.AddHolding)
			r.Delete("/portfolio-holdings/{id}", cfg.Portfolios.DeleteHolding)

			r.Get("/dividends", cfg.Dividends.ListDividends)
			r.Post("/dividends", cfg.Dividends.AddDividend)
			r.Delete("/dividends/{id}", cfg.Dividends.DeleteDividend)

			r.Get("/watchlist", cfg.Watchlist.ListWatchlist)
			r.Post("/watchlist", cfg.Watchlist.AddToWatchlist)
			r.Post("/watchlist/remove", cfg.Watchlist.RemoveFromWatchlist)
			r.Put("/watchlist/{symbol}", cfg.Watchlist.UpdateWatchlist)

			r.Get("/demotrading", cfg.DemoTrading.GetDemoTrading)
			r.Post("/demotrading", cfg.DemoTrading.RecordTransaction)
			r.Put("/demotrading", cfg.DemoTrading.ResetAccount)
			r.Delete("/demotrading/{id}", cfg.DemoTrading.DeleteTransaction)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			utils.SendJSONError(w, "route not found", http.StatusNotFound)
			return
		}
		http.NotFound(w, r)
	})

	return r
}
