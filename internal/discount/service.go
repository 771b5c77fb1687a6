// Package discount finds the discount rate used for present-value
// comparisons: the current 20-year Treasury real yield, falling back to the
// FRED series for the same yield and finally to a fixed default.
package discount

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"

	"github.com/rgehrsitz/ssopt/internal/cache"
	"github.com/rgehrsitz/ssopt/internal/logging"
	"github.com/rgehrsitz/ssopt/internal/metrics"
)

const (
	DefaultTreasuryURL = "https://home.treasury.gov/resource-center/data-chart-center/interest-rates/pages/xml?data=daily_treasury_real_yield_curve"
	DefaultFREDURL     = "https://fred.stlouisfed.org/graph/fredgraph.csv?id=DFII20"

	SourceTreasury = "treasury"
	SourceFRED     = "fred"
	SourceDefault  = "default"

	treasuryMonthParam = "field_tdr_date_value_month"
)

// DefaultRate is used when no feed can be read.
var DefaultRate = decimal.RequireFromString("0.025")

// Result is the outcome of a rate lookup. Success is false only when the
// default was used, in which case Err says why.
type Result struct {
	Date    time.Time       `json:"date"`
	Rate    decimal.Decimal `json:"rate"`
	Success bool            `json:"success"`
	Source  string          `json:"source"`
	Err     error           `json:"-"`
}

// Float returns Rate as a float64 for the optimizer.
func (r Result) Float() float64 {
	return r.Rate.InexactFloat64()
}

// Service looks up the discount rate. Successful lookups are cached per
// calendar month when Cache is set.
type Service struct {
	Client      *fasthttp.Client
	TreasuryURL string
	FREDURL     string
	Timeout     time.Duration
	Cache       cache.Cache
	TTL         time.Duration
	Logger      logging.Logger
	Metrics     *metrics.Metrics

	now func() time.Time
}

// NewService returns a Service reading the public Treasury and FRED feeds.
func NewService() *Service {
	return &Service{
		Client:      &fasthttp.Client{Name: "ssopt"},
		TreasuryURL: DefaultTreasuryURL,
		FREDURL:     DefaultFREDURL,
		Timeout:     10 * time.Second,
		TTL:         12 * time.Hour,
		now:         time.Now,
	}
}

func (s *Service) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// Rate never fails: it tries the Treasury feed for this month, then last
// month, then FRED, then returns DefaultRate.
func (s *Service) Rate(ctx context.Context) Result {
	log := logging.OrNop(s.Logger)
	now := s.clock()
	key := "discount:" + now.Format("2006-01")

	if s.Cache != nil {
		if raw, ok := s.Cache.Get(ctx, key); ok {
			var cached Result
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached
			}
		}
	}

	var errs []error
	for _, month := range []time.Time{now, now.AddDate(0, -1, 0)} {
		obs, err := s.fetchTreasury(ctx, month)
		s.Metrics.ObserveFetch(SourceTreasury, err == nil)
		if err == nil {
			return s.remember(ctx, key, Result{Date: obs.Date, Rate: obs.Rate, Success: true, Source: SourceTreasury})
		}
		log.Warnf("treasury real yield for %s unavailable: %v", month.Format("2006-01"), err)
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}

	if ctx.Err() == nil {
		obs, err := s.fetchFRED(ctx)
		s.Metrics.ObserveFetch(SourceFRED, err == nil)
		if err == nil {
			return s.remember(ctx, key, Result{Date: obs.Date, Rate: obs.Rate, Success: true, Source: SourceFRED})
		}
		log.Warnf("FRED real yield unavailable: %v", err)
		errs = append(errs, err)
	}

	log.Warnf("using default discount rate %s", DefaultRate)
	return Result{
		Date:   now,
		Rate:   DefaultRate,
		Source: SourceDefault,
		Err:    errors.Join(errs...),
	}
}

func (s *Service) remember(ctx context.Context, key string, res Result) Result {
	if s.Cache == nil {
		return res
	}
	raw, err := json.Marshal(res)
	if err == nil {
		err = s.Cache.Set(ctx, key, string(raw), s.TTL)
	}
	if err != nil {
		logging.OrNop(s.Logger).Debugf("discount rate not cached: %v", err)
	}
	return res
}

func (s *Service) fetchTreasury(ctx context.Context, month time.Time) (Observation, error) {
	body, err := s.get(ctx, s.TreasuryURL, func(req *fasthttp.Request) {
		req.URI().QueryArgs().Set(treasuryMonthParam, month.Format("200601"))
	})
	if err != nil {
		return Observation{}, err
	}
	return ParseTreasuryXML(body)
}

func (s *Service) fetchFRED(ctx context.Context) (Observation, error) {
	body, err := s.get(ctx, s.FREDURL, nil)
	if err != nil {
		return Observation{}, err
	}
	return ParseFREDCSV(body)
}

func (s *Service) get(ctx context.Context, url string, prepare func(*fasthttp.Request)) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)
	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	if prepare != nil {
		prepare(req)
	}

	client := s.Client
	if client == nil {
		client = &fasthttp.Client{}
	}
	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = client.DoDeadline(req, resp, deadline)
	} else {
		timeout := s.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		err = client.DoTimeout(req, resp, timeout)
	}
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	if status := resp.StatusCode(); status != fasthttp.StatusOK {
		return nil, fmt.Errorf("GET %s: unexpected status %d", url, status)
	}
	return append([]byte(nil), resp.Body()...), nil
}
