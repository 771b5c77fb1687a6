package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/ssopt/internal/domain"
	"github.com/rgehrsitz/ssopt/internal/mortality"
	"github.com/rgehrsitz/ssopt/internal/optimizer"
)

func loadPlan(t *testing.T, file string) *Plan {
	t.Helper()
	household, err := NewInputParser().LoadFromFile(filepath.Join(fixtures, file))
	require.NoError(t, err)
	plan, err := BuildPlan(household, nil, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return plan
}

func TestBuildPlan(t *testing.T) {
	plan := loadPlan(t, "household.yaml")

	assert.Equal(t, domain.MonthDateFromYM(2024, 5), plan.CurrentDate, "file date wins over now")
	require.NotNil(t, plan.DiscountRate)
	assert.InDelta(t, 0.025, *plan.DiscountRate, 1e-12)
	assert.InDelta(t, 0.025, plan.Rate(0.04), 1e-12)
	assert.Equal(t, 3, plan.BucketYears)

	require.Len(t, plan.Recipients, 2)
	alex, chris := plan.Recipients[0], plan.Recipients[1]
	assert.Equal(t, domain.MoneyFromDollars(2000), alex.PIA())
	assert.True(t, alex.HasOverridePIA())
	assert.Equal(t, domain.GenderMale, alex.Gender)
	assert.Equal(t, 1, chris.Index)
	assert.InDelta(t, 1.2, chris.HealthMultiplier, 1e-12)

	finals, ok := plan.FinalDates()
	require.True(t, ok)
	assert.Equal(t, []domain.MonthDate{domain.MonthDateFromYM(2045, 2), domain.MonthDateFromYM(2052, 6)}, finals)

	in, err := plan.StrategyInput(0.03)
	require.NoError(t, err)
	assert.Equal(t, finals, in.FinalDates)
	assert.InDelta(t, 0.03, in.DiscountRate, 1e-12)

	cfg := plan.GridConfig(0.03, 2)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, optimizer.ConfigVersion, cfg.Version)
	assert.Equal(t, 62, cfg.MinFinalAge)
	assert.Equal(t, 100, cfg.MaxFinalAge)
	assert.Equal(t, 2, cfg.Workers)

	people := plan.People()
	assert.Equal(t, 1962, people[1].BirthYear)
	assert.Equal(t, domain.GenderFemale, people[1].Gender)
}

func TestBuildPlanFromEarnings(t *testing.T) {
	plan := loadPlan(t, "earnings.yaml")

	require.Len(t, plan.Recipients, 1)
	sam := plan.Recipients[0]
	assert.False(t, sam.HasOverridePIA())
	assert.Len(t, sam.Earnings(), 4)
	assert.True(t, sam.Earnings()[3].Incomplete)
	assert.Equal(t, 2024, sam.EvaluationYear())
	assert.True(t, sam.PIA().GreaterThan(domain.Money{}))
	assert.Nil(t, plan.DiscountRate)
	assert.InDelta(t, 0.04, plan.Rate(0.04), 1e-12)
	assert.Equal(t, DefaultBucketYears, plan.BucketYears)
	assert.Equal(t, domain.GenderBlended, sam.Gender)
}

func TestPlanWeightedInput(t *testing.T) {
	plan := loadPlan(t, "household.yaml")
	src := mortality.FileSource{Dir: filepath.Join(fixtures, "lifetables")}

	in, err := plan.WeightedInput(context.Background(), src, 0.02)
	require.NoError(t, err)
	require.Len(t, in.Buckets, 2)
	assert.InDelta(t, 0.02, in.DiscountRate, 1e-12)
	for i, buckets := range in.Buckets {
		require.NotEmpty(t, buckets)
		total := 0.0
		for _, b := range buckets {
			total += b.Probability
		}
		assert.InDelta(t, 1.0, total, 1e-9, "recipient %d", i)
		assert.Equal(t, 3, *buckets[0].EndAgeInclusive-buckets[0].StartAge+1)
	}

	_, err = plan.WeightedInput(context.Background(), mortality.FileSource{Dir: t.TempDir()}, 0.02)
	assert.ErrorIs(t, err, mortality.ErrDataNotFound)
}

func TestPlanWithoutFinalAges(t *testing.T) {
	h := validHousehold()
	h.Strategy.FinalAges = nil
	h.Strategy.CurrentDate = ""
	plan, err := BuildPlan(h, nil, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, domain.MonthDateFromYM(2025, 2), plan.CurrentDate)
	_, ok := plan.FinalDates()
	assert.False(t, ok)
	_, err = plan.StrategyInput(0.02)
	assert.Error(t, err)
}

func TestLoadSettings(t *testing.T) {
	t.Setenv("SSOPT_WORKERS", "3")
	t.Setenv("SSOPT_LOG_LEVEL", "debug")

	file := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(file, []byte("redis_addr: localhost:6379\ncache_ttl: 30m\nworkers: 8\n"), 0644))

	s, err := LoadSettings(file)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Workers, "environment wins over the file")
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, "localhost:6379", s.RedisAddr)
	assert.Equal(t, 30*time.Minute, s.CacheTTL)
	assert.Equal(t, DefaultSettings().TreasuryURL, s.TreasuryURL)

	_, err = LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "an explicit settings file must exist")
}

func TestSettingsValidate(t *testing.T) {
	s := DefaultSettings()
	assert.NoError(t, s.Validate())

	s.Timeout = 0
	assert.Error(t, s.Validate())

	s = DefaultSettings()
	s.Workers = -2
	assert.Error(t, s.Validate())
}
