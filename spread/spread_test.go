package spread

import (
	"math"
	"testing"

	"github.com/banachtech/statarb/data"
	"github.com/stretchr/testify/require"
)

func wavyPair(n int) data.Pair {
	p := data.Pair{XTicker: "X", YTicker: "Y", X: make([]float64, n), Y: make([]float64, n)}
	for i := 0; i < n; i++ {
		x := 50 + 5*math.Sin(float64(i)/7) + 0.01*float64(i)
		p.X[i] = x
		p.Y[i] = 10 + 1.5*x + math.Cos(float64(i)*1.3)
	}
	return p
}

// jumpPair holds both legs at 100 and lifts Y to 110 from index 100 on.
func jumpPair() data.Pair {
	p := data.Pair{XTicker: "X", YTicker: "Y", X: make([]float64, 110), Y: make([]float64, 110)}
	for i := range p.X {
		p.X[i] = 100
		p.Y[i] = 100
		if i >= 100 {
			p.Y[i] = 110
		}
	}
	return p
}

func TestBuildInvalidInput(t *testing.T) {
	p := wavyPair(20)
	testCases := []struct {
		name     string
		pair     data.Pair
		lookback int
	}{
		{"lookback one", p, 1},
		{"lookback zero", p, 0},
		{"empty", data.Pair{}, 5},
		{"mismatched legs", data.Pair{X: p.X, Y: p.Y[:10]}, 5},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := Build(tc.pair, tc.lookback)
			require.ErrorIs(t, err, ErrInvalidInput)
			require.Nil(t, s)
		})
	}
}

func TestBuildWarmup(t *testing.T) {
	for _, lookback := range []int{3, 5, 30} {
		s, err := Build(wavyPair(120), lookback)
		require.NoError(t, err)
		require.Equal(t, 120, s.Len())
		for i := 0; i < lookback-1; i++ {
			require.False(t, s.Points[i].Defined(), "index %d lookback %d", i, lookback)
		}
		for i := lookback - 1; i < s.Len(); i++ {
			require.True(t, s.Points[i].Defined(), "index %d lookback %d", i, lookback)
			require.False(t, math.IsInf(s.Points[i].ZScore, 0))
		}
		require.Equal(t, lookback-1, s.FirstDefined())
	}
}

func TestBuildSpreadIdentity(t *testing.T) {
	p := wavyPair(80)
	s, err := Build(p, 15)
	require.NoError(t, err)
	for i, pt := range s.Points {
		require.InDelta(t, p.Y[i]-(pt.Alpha+pt.Beta*p.X[i]), pt.Spread, 1e-12)
	}
	// first point has a single observation: no slope
	require.Equal(t, 0.0, s.Points[0].Beta)
	require.Equal(t, 0.0, s.Points[0].Spread)
}

func TestBuildNoLookAhead(t *testing.T) {
	p := wavyPair(100)
	base, err := Build(p, 20)
	require.NoError(t, err)

	for i := 60; i < 100; i++ {
		p.Y[i] *= 3
		p.X[i] += 40
	}
	changed, err := Build(p, 20)
	require.NoError(t, err)
	for i := 0; i < 60; i++ {
		require.Equal(t, base.Points[i], changed.Points[i], "index %d", i)
	}
}

func TestBuildJump(t *testing.T) {
	s, err := Build(jumpPair(), 10)
	require.NoError(t, err)

	// a flat history has zero deviation, so no z-score exists before the jump
	for i := 0; i < 100; i++ {
		require.False(t, s.Points[i].Defined())
		require.Equal(t, 0.0, s.Points[i].Spread)
	}
	require.Equal(t, 100, s.FirstDefined())
	require.InDelta(t, 9.0, s.Points[100].Spread, 1e-9)
	require.InDelta(t, math.Sqrt(8.1), s.Points[100].ZScore, 1e-9)
	require.Greater(t, s.Points[100].ZScore, 2.0)
}

func TestSeriesColumns(t *testing.T) {
	s, err := Build(wavyPair(30), 5)
	require.NoError(t, err)
	z, b := s.ZScores(), s.Betas()
	require.Len(t, z, 30)
	require.Len(t, b, 30)
	require.True(t, math.IsNaN(z[0]))
	require.Equal(t, s.Points[10].Beta, b[10])

	empty := &Series{}
	require.Equal(t, -1, empty.FirstDefined())
}
