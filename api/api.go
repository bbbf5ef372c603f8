// Package api exposes the backtester over HTTP. One server instance wraps a
// loaded contract chain; each request runs against a fresh account so
// concurrent requests never share simulation state.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rustyeddy/rollsim/backtest"
	"github.com/rustyeddy/rollsim/config"
	"github.com/rustyeddy/rollsim/data"
	"github.com/rustyeddy/rollsim/market"
	"github.com/rustyeddy/rollsim/sim"
	"github.com/rustyeddy/rollsim/strategies"
)

// Server runs backtests over a chain loaded at startup.
type Server struct {
	base  *config.Config
	chain *market.Chain
	cal   *market.Calendar
	log   *slog.Logger
}

func NewServer(base *config.Config, chain *market.Chain, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		base:  base,
		chain: chain,
		cal:   market.NewCalendar(chain.Index.TradingDates()),
		log:   log,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.health)
	v1 := r.Group("/api/v1")
	{
		v1.GET("/strategies", s.listStrategies)
		v1.POST("/backtest", s.runBacktest)
	}
	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "fut_code": s.chain.FutCode})
}

func (s *Server) listStrategies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"strategies": strategies.Names()})
}

// runBacktest handles POST /api/v1/backtest.
func (s *Server) runBacktest(c *gin.Context) {
	var req BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	cfg := req.apply(s.base)
	if err := cfg.Validate(); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_CONFIG", err.Error())
		return
	}
	start, err := cfg.Backtest.StartDate()
	if err != nil {
		fail(c, http.StatusBadRequest, "INVALID_CONFIG", err.Error())
		return
	}
	end, err := cfg.Backtest.EndDate()
	if err != nil {
		fail(c, http.StatusBadRequest, "INVALID_CONFIG", err.Error())
		return
	}

	strat, err := strategies.FromConfig(cfg, s.chain, s.cal, s.log)
	if err != nil {
		fail(c, http.StatusBadRequest, "INVALID_CONFIG", err.Error())
		return
	}
	acct := sim.NewAccount(sim.AccountParams{
		InitialCapital:  cfg.Account.InitialCapital,
		MarginRate:      cfg.Account.MarginRate,
		CommissionRate:  cfg.Account.CommissionRate,
		MarginTolerance: cfg.Account.MarginTolerance,
	}, s.chain, s.log)

	runner := &backtest.Runner{
		Account:  acct,
		Strategy: strat,
		Source:   data.NewChainSource(s.chain),
		Calendar: s.cal,
		Log:      s.log,
	}

	res, err := runner.Run(c.Request.Context(), start, end)
	if err != nil {
		status, code := classifyRunError(err)
		c.JSON(status, BacktestResponse{
			Result:  resultPayload(res),
			Metrics: backtest.Analyze(res, cfg.Backtest.TradingDaysPerYear),
			Error:   &ErrorDetail{Code: code, Message: err.Error()},
		})
		return
	}

	c.JSON(http.StatusOK, BacktestResponse{
		Result:  resultPayload(res),
		Metrics: backtest.Analyze(res, cfg.Backtest.TradingDaysPerYear),
	})
}

// classifyRunError maps simulation failures onto HTTP statuses. Data and
// eligibility problems are the request's fault in the sense that the window
// cannot be served; they still carry partial results.
func classifyRunError(err error) (int, string) {
	switch {
	case errors.Is(err, sim.ErrMissingMarketData):
		return http.StatusUnprocessableEntity, "MISSING_MARKET_DATA"
	case errors.Is(err, strategies.ErrNoEligibleContract):
		return http.StatusUnprocessableEntity, "NO_ELIGIBLE_CONTRACT"
	case errors.Is(err, sim.ErrMarginBreach):
		return http.StatusUnprocessableEntity, "MARGIN_BREACH"
	default:
		return http.StatusInternalServerError, "BACKTEST_FAILED"
	}
}

func fail(c *gin.Context, status int, code, msg string) {
	c.JSON(status, gin.H{"error": ErrorDetail{Code: code, Message: msg}})
}

func resultPayload(res backtest.Result) ResultPayload {
	nav := make([]NAVPointPayload, len(res.NAV))
	for i, p := range res.NAV {
		nav[i] = NAVPointPayload{Date: p.Date.Format(time.DateOnly), NAV: p.NAV}
	}
	return ResultPayload{
		RunID:       res.RunID,
		NAV:         nav,
		Trades:      res.Trades,
		FinalEquity: res.FinalEquity,
	}
}
