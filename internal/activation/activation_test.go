package activation

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"

	"github.com/jacobian-ml/jacobian/internal/parallel"
)

var probes = []float64{-2.5, -0.7, 0.3, 1.2, 3.1}

func TestRegistry_Names(t *testing.T) {
	for _, name := range []string{
		"linear", "sigmoid", "tanh", "lecun_tanh", "step", "inverse_logit",
		"softplus", "cloglog", "relu", "resig", "leaky_relu", "hard_tanh",
		"bipolar", "bipolar_sigmoid",
	} {
		a, err := Default.Lookup(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, a.Name)
		assert.Equal(t, name, a.Kind.String())
		assert.NotNil(t, a.F)
		assert.NotNil(t, a.Deriv)
	}
}

func TestRegistry_Unknown(t *testing.T) {
	_, err := Default.Lookup("swish")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknown))
	assert.Contains(t, err.Error(), "swish")
}

func TestRegistry_Get(t *testing.T) {
	a, err := Default.Get(Softplus)
	require.NoError(t, err)
	assert.Equal(t, Softplus, a.Kind)

	_, err = Default.Get(Custom)
	assert.ErrorIs(t, err, ErrUnknown)
}

func TestFormulas(t *testing.T) {
	sigma := func(x float64) float64 { return 1 / (1 + math.Exp(-x)) }
	sech2 := func(x float64) float64 { c := math.Cosh(x); return 1 / (c * c) }

	tests := []struct {
		name string
		f    func(float64) float64
		df   func(float64) float64
	}{
		{"linear", func(x float64) float64 { return x }, func(float64) float64 { return 1 }},
		{"sigmoid", sigma, func(x float64) float64 { return sigma(x) * (1 - sigma(x)) }},
		{"lecun_tanh",
			func(x float64) float64 { return 1.7159 * math.Tanh(0.66*x) },
			func(x float64) float64 { return 1.14393 * sech2(0.66*x) }},
		{"inverse_logit",
			func(x float64) float64 { return math.Exp(x) / (math.Exp(x) + 1) },
			func(x float64) float64 { e := math.Exp(x); return e / ((e + 1) * (e + 1)) }},
		{"softplus",
			func(x float64) float64 { return math.Log(1 + math.Exp(x)) },
			func(x float64) float64 { return math.Exp(x) / (math.Exp(x) + 1) }},
		{"cloglog",
			func(x float64) float64 { return 1 - math.Exp(-math.Exp(x)) },
			func(x float64) float64 { return math.Exp(x - math.Exp(x)) }},
		{"step",
			func(x float64) float64 {
				if x > 0 {
					return 1
				}
				return 0
			},
			func(float64) float64 { return 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Default.Lookup(tt.name)
			require.NoError(t, err)
			for _, x := range probes {
				assert.InDelta(t, tt.f(x), a.F(x), 1e-12, "f(%v)", x)
				assert.InDelta(t, tt.df(x), a.Deriv(x), 1e-12, "f'(%v)", x)
			}
		})
	}
}

func TestDerivativesMatchFiniteDifferences(t *testing.T) {
	// lecun_tanh is excluded: its published derivative constant is 2/3-based.
	names := []string{
		"linear", "sigmoid", "tanh", "inverse_logit", "softplus", "cloglog",
		"relu", "resig", "leaky_relu", "hard_tanh", "bipolar_sigmoid",
	}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			a, err := Default.Lookup(name)
			require.NoError(t, err)
			for _, x := range probes {
				numeric := fd.Derivative(a.F, x, &fd.Settings{Formula: fd.Central})
				assert.InDelta(t, numeric, a.Deriv(x), 1e-6, "x=%v", x)
			}
		})
	}
}

func TestStableAtExtremes(t *testing.T) {
	for _, name := range Default.Names() {
		a, err := Default.Lookup(name)
		require.NoError(t, err)
		for _, x := range []float64{-1000, -50, 50, 1000} {
			assert.False(t, math.IsNaN(a.F(x)), "%s f(%v)", name, x)
			assert.False(t, math.IsNaN(a.Deriv(x)), "%s f'(%v)", name, x)
		}
	}
}

func TestRectify(t *testing.T) {
	sq := NewCustom("square", func(x float64) float64 { return x * x }, func(x float64) float64 { return 2 * x })
	r := Rectify(sq)

	assert.Equal(t, Rectified, r.Kind)
	assert.Equal(t, "rectified_square", r.Name)
	assert.Equal(t, 9.0, r.F(3))
	assert.Equal(t, 6.0, r.Deriv(3))
	assert.Zero(t, r.F(-3))
	assert.Zero(t, r.Deriv(-3))
	assert.Zero(t, r.F(0))
}

func TestLeaky(t *testing.T) {
	p := Leaky(0.2)
	assert.Equal(t, PReLU, p.Kind)
	assert.Equal(t, 2.0, p.F(2))
	assert.InDelta(t, -0.4, p.F(-2), 1e-15)
	assert.Equal(t, 1.0, p.Deriv(2))
	assert.Equal(t, 0.2, p.Deriv(-2))
}

func TestApply(t *testing.T) {
	a, err := Default.Lookup("relu")
	require.NoError(t, err)

	src := mat.NewDense(2, 2, []float64{-1, 2, 3, -4})
	out := mat.NewDense(2, 2, nil)
	d := mat.NewDense(2, 2, nil)

	// Derivative first, then in-place activation, as the forward pass does.
	a.ApplyDeriv(d, src, parallel.Sequential())
	a.Apply(out, src, parallel.Sequential())

	assert.Equal(t, []float64{0, 2, 3, 0}, out.RawMatrix().Data)
	assert.Equal(t, []float64{0, 1, 1, 0}, d.RawMatrix().Data)
}

func TestFastExp(t *testing.T) {
	for x := -20.0; x <= 20; x += 0.37 {
		exact := math.Exp(x)
		assert.InEpsilon(t, exact, FastExp(x), 0.05, "x=%v", x)
	}
	assert.Zero(t, FastExp(-800))
	assert.True(t, math.IsInf(FastExp(800), 1))
	assert.True(t, math.IsNaN(FastExp(math.NaN())))
}

func TestFastRegistry(t *testing.T) {
	exact, err := Default.Lookup("sigmoid")
	require.NoError(t, err)
	fast, err := Fast.Lookup("sigmoid")
	require.NoError(t, err)

	for _, x := range probes {
		assert.InDelta(t, exact.F(x), fast.F(x), 0.02)
	}
}
