// Package mortality loads period life tables and turns them into
// death-age probability distributions and buckets.
package mortality

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rgehrsitz/ssopt/internal/cache"
	"github.com/rgehrsitz/ssopt/internal/domain"
	"github.com/valyala/fasthttp"
)

const (
	MinBirthYear = 1900
	MaxBirthYear = 2100
	// MaxAge is the synthetic terminal age that absorbs remaining survival.
	MaxAge = 120
)

// Entry is one row of a life table: the probability q_x of dying between
// age x and x+1.
type Entry struct {
	X  int     `json:"x"`
	Qx float64 `json:"q_x"`
}

// Table is a life table ordered by age.
type Table []Entry

// Source loads the life table for a single gender (male or female) and birth year.
type Source interface {
	LifeTable(ctx context.Context, gender domain.Gender, birthYear int) (Table, error)
}

// TablePath is the conventional relative location of a life table.
func TablePath(gender domain.Gender, birthYear int) string {
	return fmt.Sprintf("%s/%d.json", gender, birthYear)
}

// ParseTable decodes a JSON array of {x, q_x} rows and sorts it by age.
func ParseTable(data []byte) (Table, error) {
	var table Table
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse life table: %w", err)
	}
	sort.Slice(table, func(i, j int) bool { return table[i].X < table[j].X })
	return table, nil
}

// FileSource reads life tables from <Dir>/<gender>/<birthYear>.json.
type FileSource struct {
	Dir string
}

func (s FileSource) LifeTable(_ context.Context, gender domain.Gender, birthYear int) (Table, error) {
	path := filepath.Join(s.Dir, filepath.FromSlash(TablePath(gender, birthYear)))
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &DataNotFoundError{Gender: gender, BirthYear: birthYear, Location: path}
		}
		return nil, &FetchError{Location: path, Err: err}
	}
	return ParseTable(data)
}

// HTTPSource fetches life tables from <BaseURL>/<gender>/<birthYear>.json.
type HTTPSource struct {
	BaseURL string
	Client  *fasthttp.Client
	Timeout time.Duration
}

// NewHTTPSource uses a default fasthttp client with a 5 second timeout.
func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &fasthttp.Client{Name: "ssopt"},
		Timeout: 5 * time.Second,
	}
}

func (s *HTTPSource) LifeTable(ctx context.Context, gender domain.Gender, birthYear int) (Table, error) {
	url := s.BaseURL + "/" + TablePath(gender, birthYear)
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Location: url, Err: err}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)
	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := doWithContext(ctx, s.Client, req, resp, s.Timeout); err != nil {
		return nil, &FetchError{Location: url, Err: err}
	}
	switch status := resp.StatusCode(); {
	case status == fasthttp.StatusNotFound:
		return nil, &DataNotFoundError{Gender: gender, BirthYear: birthYear, Location: url}
	case status != fasthttp.StatusOK:
		return nil, &FetchError{Location: url, Err: fmt.Errorf("unexpected status %d", status)}
	}
	return ParseTable(resp.Body())
}

func doWithContext(ctx context.Context, client *fasthttp.Client, req *fasthttp.Request, resp *fasthttp.Response, timeout time.Duration) error {
	if deadline, ok := ctx.Deadline(); ok {
		return client.DoDeadline(req, resp, deadline)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return client.DoTimeout(req, resp, timeout)
}

// CachedSource memoizes another Source's tables in a Cache.
type CachedSource struct {
	Inner Source
	Cache cache.Cache
	TTL   time.Duration
}

func (s CachedSource) LifeTable(ctx context.Context, gender domain.Gender, birthYear int) (Table, error) {
	key := "lifetable:" + TablePath(gender, birthYear)
	if raw, ok := s.Cache.Get(ctx, key); ok {
		if table, err := ParseTable([]byte(raw)); err == nil {
			return table, nil
		}
	}
	table, err := s.Inner.LifeTable(ctx, gender, birthYear)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(table); err == nil {
		// A cache write failure only costs a refetch.
		_ = s.Cache.Set(ctx, key, string(data), s.TTL)
	}
	return table, nil
}

// GetLifeTableData validates its inputs and loads the table for gender and
// birthYear. The blended table averages male and female q_x for each age
// present in both.
func GetLifeTableData(ctx context.Context, src Source, gender domain.Gender, birthYear int) (Table, error) {
	if birthYear < MinBirthYear || birthYear > MaxBirthYear {
		return nil, &ValidationError{Field: "birth year", Value: birthYear,
			Reason: fmt.Sprintf("must be between %d and %d", MinBirthYear, MaxBirthYear)}
	}
	switch gender {
	case domain.GenderMale, domain.GenderFemale:
		return src.LifeTable(ctx, gender, birthYear)
	case domain.GenderBlended:
		male, err := src.LifeTable(ctx, domain.GenderMale, birthYear)
		if err != nil {
			return nil, err
		}
		female, err := src.LifeTable(ctx, domain.GenderFemale, birthYear)
		if err != nil {
			return nil, err
		}
		return blend(male, female), nil
	default:
		return nil, &ValidationError{Field: "gender", Value: gender, Reason: "must be male, female or blended"}
	}
}

func blend(male, female Table) Table {
	femaleByAge := make(map[int]float64, len(female))
	for _, e := range female {
		femaleByAge[e.X] = e.Qx
	}
	out := make(Table, 0, len(male))
	for _, e := range male {
		if fq, ok := femaleByAge[e.X]; ok {
			out = append(out, Entry{X: e.X, Qx: (e.Qx + fq) / 2})
		}
	}
	return out
}
