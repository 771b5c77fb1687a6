// Package server exposes the optimizer as a JSON API over fasthttp.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/rgehrsitz/ssopt/internal/config"
	"github.com/rgehrsitz/ssopt/internal/discount"
	"github.com/rgehrsitz/ssopt/internal/domain"
	"github.com/rgehrsitz/ssopt/internal/logging"
	"github.com/rgehrsitz/ssopt/internal/mortality"
	"github.com/rgehrsitz/ssopt/internal/optimizer"
	"github.com/rgehrsitz/ssopt/internal/output"
	"github.com/rgehrsitz/ssopt/internal/ssadata"
)

const (
	defaultMaxGridWidth = 59
	defaultTimeout      = 2 * time.Minute
	maxRanked           = 50
)

// RateSource supplies the discount rate when a household leaves it unset.
type RateSource interface {
	Rate(ctx context.Context) discount.Result
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Server holds the dependencies shared by every request. Rates, Mortality
// and Gatherer are optional; the routes that need them answer 503 without.
type Server struct {
	Runner    *optimizer.Runner
	Rates     RateSource
	Mortality mortality.Source
	Tables    ssadata.Source
	Gatherer  prometheus.Gatherer
	Logger    logging.Logger

	Workers      int
	MaxGridWidth int
	Timeout      time.Duration

	now     func() time.Time
	metrics fasthttp.RequestHandler
}

// New returns a Server with default limits.
func New(runner *optimizer.Runner, rates RateSource, logger logging.Logger) *Server {
	if runner == nil {
		runner = &optimizer.Runner{}
	}
	return &Server{
		Runner:       runner,
		Rates:        rates,
		Logger:       logger,
		Gatherer:     prometheus.DefaultGatherer,
		MaxGridWidth: defaultMaxGridWidth,
		Timeout:      defaultTimeout,
		now:          time.Now,
	}
}

// Handler routes requests.
func (s *Server) Handler() fasthttp.RequestHandler {
	if s.Gatherer != nil {
		s.metrics = fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		path := string(ctx.Path())
		switch {
		case path == "/healthz" && ctx.IsGet():
			writeJSON(ctx, fasthttp.StatusOK, map[string]string{"status": "ok"})
		case path == "/metrics" && ctx.IsGet():
			if s.metrics == nil {
				writeError(ctx, fasthttp.StatusServiceUnavailable, "metrics are disabled")
				break
			}
			s.metrics(ctx)
		case path == "/v1/discount-rate" && ctx.IsGet():
			s.handleDiscountRate(ctx)
		case path == "/v1/strategy" && ctx.IsPost():
			s.handleStrategy(ctx)
		case path == "/v1/grid" && ctx.IsPost():
			s.handleGrid(ctx)
		case path == "/v1/weighted" && ctx.IsPost():
			s.handleWeighted(ctx)
		case path == "/healthz" || path == "/metrics" || path == "/v1/discount-rate" ||
			path == "/v1/strategy" || path == "/v1/grid" || path == "/v1/weighted":
			writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
		default:
			writeError(ctx, fasthttp.StatusNotFound, "Not found")
		}
		logging.OrNop(s.Logger).Debugf("%s %s %d %s", ctx.Method(), path, ctx.Response.StatusCode(), time.Since(start))
	}
}

// Serve handles connections from ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &fasthttp.Server{
		Handler:      s.Handler(),
		Name:         "ssopt",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: s.timeout() + 30*time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.ShutdownWithContext(shutdownCtx)
	}
}

// ListenAndServe listens on addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	logging.OrNop(s.Logger).Infof("listening on %s", ln.Addr())
	return s.Serve(ctx, ln)
}

func (s *Server) timeout() time.Duration {
	if s.Timeout <= 0 {
		return defaultTimeout
	}
	return s.Timeout
}

func (s *Server) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

func (s *Server) handleDiscountRate(ctx *fasthttp.RequestCtx) {
	if s.Rates == nil {
		writeError(ctx, fasthttp.StatusServiceUnavailable, "discount rate lookup is disabled")
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, s.Rates.Rate(ctx))
}

func (s *Server) handleStrategy(ctx *fasthttp.RequestCtx) {
	plan, report, ok := s.prepare(ctx)
	if !ok {
		return
	}
	top := ctx.QueryArgs().GetUintOrZero("top")
	if top > maxRanked {
		top = maxRanked
	}

	in, err := plan.StrategyInput(report.DiscountRate)
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		return
	}
	if top > 1 && len(plan.Recipients) == 2 {
		report.Strategies = s.Runner.Rank(in, top)
	} else {
		report.Strategies = []domain.StrategyResult{s.Runner.Strategy(in)}
	}
	s.respond(ctx, report)
}

func (s *Server) handleGrid(ctx *fasthttp.RequestCtx) {
	plan, report, ok := s.prepare(ctx)
	if !ok {
		return
	}
	if len(plan.Recipients) != 2 {
		writeError(ctx, fasthttp.StatusBadRequest, "a grid needs exactly two recipients")
		return
	}
	cfg := plan.GridConfig(report.DiscountRate, s.Workers)
	if width := cfg.Width(); width > s.MaxGridWidth && s.MaxGridWidth > 0 {
		writeError(ctx, fasthttp.StatusBadRequest, fmt.Sprintf("grid width %d exceeds the limit of %d", width, s.MaxGridWidth))
		return
	}

	runCtx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()
	grid, err := s.Runner.Grid(runCtx, cfg, nil)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		writeError(ctx, fasthttp.StatusGatewayTimeout, "grid search timed out")
		return
	case err != nil:
		writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		return
	}
	report.Grid = grid
	s.respond(ctx, report)
}

func (s *Server) handleWeighted(ctx *fasthttp.RequestCtx) {
	if s.Mortality == nil {
		writeError(ctx, fasthttp.StatusServiceUnavailable, "life tables are not configured")
		return
	}
	plan, report, ok := s.prepare(ctx)
	if !ok {
		return
	}
	in, err := plan.WeightedInput(ctx, s.Mortality, report.DiscountRate)
	switch {
	case errors.Is(err, mortality.ErrDataNotFound):
		writeError(ctx, fasthttp.StatusNotFound, err.Error())
		return
	case errors.Is(err, mortality.ErrValidation):
		writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		return
	case err != nil:
		writeError(ctx, fasthttp.StatusBadGateway, err.Error())
		return
	}
	for i, buckets := range in.Buckets {
		if n := len(buckets); n > s.MaxGridWidth && s.MaxGridWidth > 0 {
			writeError(ctx, fasthttp.StatusBadRequest, fmt.Sprintf("%d death-age buckets for recipient %d exceed the limit of %d", n, i+1, s.MaxGridWidth))
			return
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()
	res, err := s.Runner.Weighted(runCtx, in)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		writeError(ctx, fasthttp.StatusGatewayTimeout, "weighted search timed out")
		return
	case err != nil:
		writeError(ctx, fasthttp.StatusServiceUnavailable, err.Error())
		return
	}
	report.Strategies = []domain.StrategyResult{res}
	s.respond(ctx, report)
}

// prepare decodes and validates the household body and resolves the
// discount rate. It writes the error response itself when ok is false.
func (s *Server) prepare(ctx *fasthttp.RequestCtx) (*config.Plan, *output.Report, bool) {
	var household domain.Household
	if err := json.Unmarshal(ctx.PostBody(), &household); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid request body: "+err.Error())
		return nil, nil, false
	}
	if err := config.NewInputParser().ValidateHousehold(&household); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		return nil, nil, false
	}
	plan, err := config.BuildPlan(&household, s.Tables, s.clock())
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		return nil, nil, false
	}

	rate, source := discount.DefaultRate.InexactFloat64(), discount.SourceDefault
	switch {
	case plan.DiscountRate != nil:
		rate, source = *plan.DiscountRate, "household"
	case s.Rates != nil:
		res := s.Rates.Rate(ctx)
		rate, source = res.Float(), res.Source
	}
	report := output.NewReport(plan.Recipients, plan.CurrentDate, rate)
	report.RateSource = source
	report.GeneratedAt = s.clock()
	return plan, report, true
}

func (s *Server) respond(ctx *fasthttp.RequestCtx, report *output.Report) {
	body, err := output.JSONFormatter{}.Format(report)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, err.Error())
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBody(body)
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = fasthttp.StatusInternalServerError
		body = []byte(`{"status":500,"message":"failed to encode response"}`)
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

func writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	writeJSON(ctx, status, ErrorResponse{Status: status, Message: message})
}
