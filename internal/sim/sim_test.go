package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clickforge/clicker-core/internal/config"
	"github.com/clickforge/clicker-core/internal/upgrade"
)

func TestCalcStats(t *testing.T) {
	s := calcStats([]int64{4, 1, 3, 2})
	assert.Equal(t, 2.5, s.Mean)
	assert.Equal(t, 1.25, s.Var)
	assert.Equal(t, int64(1), s.Min)
	assert.Equal(t, int64(4), s.Max)
	assert.Equal(t, 2.5, s.P50)
	assert.InDelta(t, 3.7, s.P90, 1e-9)
	assert.Equal(t, []int64{4, 1, 3, 2}, s.Samples, "input order kept")

	one := calcStats([]int64{7})
	assert.Equal(t, 7.0, one.P99)
	assert.Zero(t, one.StdDev)

	assert.Equal(t, Stats{}, calcStats(nil))
}

func TestClicksOnly(t *testing.T) {
	res, err := Run(context.Background(), Params{
		Balance:  config.Default(),
		Strategy: Strategy{ClicksPerSecond: 5, Priority: []string{}},
		Duration: time.Minute,
		Trials:   3,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Trials)
	assert.Equal(t, 300.0, res.Score.Mean)
	assert.Zero(t, res.Score.StdDev)
	assert.Zero(t, res.Hired.Max)
}

func TestRunIsDeterministic(t *testing.T) {
	p := Params{
		Balance:  config.Default(),
		Strategy: Strategy{ClicksPerSecond: 8},
		Duration: 10 * time.Minute,
		Trials:   5,
		Seed:     99,
	}
	a, err := Run(context.Background(), p)
	require.NoError(t, err)
	b, err := Run(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, a.Score.Samples, b.Score.Samples)
	assert.Equal(t, a.Hired.Samples, b.Hired.Samples)
}

func TestWorkersGetHired(t *testing.T) {
	res, err := Run(context.Background(), Params{
		Balance:  config.Default(),
		Strategy: Strategy{ClicksPerSecond: 10, Priority: []string{upgrade.Worker}},
		Duration: 10 * time.Minute,
		Trials:   4,
		Seed:     1,
	})
	require.NoError(t, err)
	assert.Positive(t, res.Hired.Min)
	for i := range res.Score.Samples {
		assert.GreaterOrEqual(t, res.Earned.Samples[i], res.Score.Samples[i])
	}
}

func TestDefaultPriorityFollowsCatalog(t *testing.T) {
	bal := config.Default()
	bal.Upgrades = []upgrade.Definition{
		{ID: "hire", Name: "Hire", Kind: upgrade.KindWorker, BaseCost: 10},
	}
	res, err := Run(context.Background(), Params{
		Balance:  bal,
		Strategy: Strategy{ClicksPerSecond: 1},
		Duration: time.Minute,
		Trials:   1,
	})
	require.NoError(t, err)
	assert.Zero(t, res.Hired.Max, "no default id is in this catalog")
}

func TestRunRejectsBadParams(t *testing.T) {
	res, err := Run(context.Background(), Params{Balance: config.Default()})
	require.NoError(t, err)
	assert.Zero(t, res.Trials)

	_, err = Run(context.Background(), Params{Balance: config.Default(), Trials: 1})
	assert.ErrorIs(t, err, errNoDuration)

	_, err = Run(context.Background(), Params{
		Balance:  config.Default(),
		Strategy: Strategy{Priority: []string{"nope"}},
		Duration: time.Second,
		Trials:   1,
	})
	assert.ErrorIs(t, err, upgrade.ErrUnknownUpgrade)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Run(ctx, Params{Balance: config.Default(), Duration: time.Second, Trials: 1})
	assert.ErrorIs(t, err, context.Canceled)
}
