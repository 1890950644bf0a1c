package basis_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/tmcnulty/emucal/basis"
)

// randomEnsemble builds a reproducible neta x m matrix with a smooth signal
// plus noise, on a ntime x nphi grid.
func randomEnsemble(ntime, nphi, m int, seed uint64) (*mat.Dense, []float64, []float64) {
	rng := rand.New(rand.NewSource(seed))
	time := make([]float64, ntime)
	for i := range time {
		time[i] = float64(i)
	}
	phi := make([]float64, nphi)
	for i := range phi {
		phi[i] = 2 * math.Pi * float64(i) / float64(nphi-1)
	}
	neta := ntime * nphi
	y := mat.NewDense(neta, m, nil)
	for j := 0; j < m; j++ {
		a, b := rng.Float64(), rng.Float64()
		for iphi := 0; iphi < nphi; iphi++ {
			for it := 0; it < ntime; it++ {
				v := a*time[it] + b*math.Cos(phi[iphi]) + 0.05*rng.NormFloat64()
				y.Set(iphi*ntime+it, j, v)
			}
		}
	}
	return y, time, phi
}

// TestNew_ReconstructionIdentity: the untruncated factorization reconstructs
// the standardized matrix to numerical precision.
func TestNew_ReconstructionIdentity(t *testing.T) {
	y, time, phi := randomEnsemble(4, 3, 6, 1)
	s, err := basis.New(y, time, phi, basis.Options{Components: 6, Center: true})
	require.NoError(t, err)

	// K Wᵀ = U S Vᵀ at full rank.
	var rec mat.Dense
	rec.Mul(s.K, s.W.T())
	rec.Sub(s.YStd, &rec)
	assert.Less(t, mat.Norm(&rec, math.Inf(1)), 1e-8)
}

// TestNew_TruncationMonotonicity: the Frobenius reconstruction error is
// non-increasing in the retained component count.
func TestNew_TruncationMonotonicity(t *testing.T) {
	y, time, phi := randomEnsemble(5, 4, 8, 2)

	prev := math.Inf(1)
	for peta := 1; peta <= 8; peta++ {
		s, err := basis.New(y, time, phi, basis.Options{Components: peta, Center: true})
		require.NoError(t, err)
		e := s.TruncationError()
		assert.LessOrEqual(t, e, prev+1e-12, "peta=%d", peta)
		prev = e
	}
}

// TestNew_Standardization checks the centering and the ddof=1 scalar scale.
func TestNew_Standardization(t *testing.T) {
	y, time, phi := randomEnsemble(3, 3, 5, 3)
	s, err := basis.New(y, time, phi, basis.DefaultOptions())
	require.NoError(t, err)

	neta, m := y.Dims()
	// Rows of YStd have zero mean.
	for i := 0; i < neta; i++ {
		sum := 0.0
		for j := 0; j < m; j++ {
			sum += s.YStd.At(i, j)
		}
		assert.InDelta(t, 0, sum, 1e-10, "row %d", i)
	}
	// Sum of squares of YStd equals neta*m - 1 under the ddof=1 scalar scale.
	ss := 0.0
	for i := 0; i < neta; i++ {
		for j := 0; j < m; j++ {
			ss += s.YStd.At(i, j) * s.YStd.At(i, j)
		}
	}
	assert.InDelta(t, float64(neta*m-1), ss, 1e-6)
}

// TestNew_ColumnwiseScale checks that every coordinate has unit sample
// variance under Columnwise scaling.
func TestNew_ColumnwiseScale(t *testing.T) {
	y, time, phi := randomEnsemble(3, 3, 6, 4)
	s, err := basis.New(y, time, phi, basis.Options{Components: 2, Center: true, Columnwise: true})
	require.NoError(t, err)
	require.NotNil(t, s.SDs)

	neta, m := y.Dims()
	for i := 0; i < neta; i++ {
		ss := 0.0
		for j := 0; j < m; j++ {
			ss += s.YStd.At(i, j) * s.YStd.At(i, j)
		}
		assert.InDelta(t, float64(m-1), ss, 1e-9, "row %d", i)
	}
	assert.NotNil(t, s.SDField())
}

// TestComponentsForVariance checks the cumulative-variance cutoff.
func TestComponentsForVariance(t *testing.T) {
	sing := []float64{3, 2, 1} // squared: 9, 4, 1; total 14
	assert.Equal(t, 1, basis.ComponentsForVariance(sing, 0.6))  // 9/14 = 0.643
	assert.Equal(t, 2, basis.ComponentsForVariance(sing, 0.9))  // 13/14 = 0.929
	assert.Equal(t, 3, basis.ComponentsForVariance(sing, 0.99)) // needs all
}

// TestNew_Errors covers the shape and component-count fail-fasts.
func TestNew_Errors(t *testing.T) {
	y, time, phi := randomEnsemble(3, 2, 4, 5)

	_, err := basis.New(y, time, []float64{0}, basis.DefaultOptions())
	assert.ErrorIs(t, err, basis.ErrGridShape)

	_, err = basis.New(y, time, phi, basis.Options{Components: 99, Center: true})
	assert.ErrorIs(t, err, basis.ErrComponents)
}

// TestMeanField_Layout verifies the time-fastest flattening convention.
func TestMeanField_Layout(t *testing.T) {
	time := []float64{0, 1}
	phi := []float64{0, math.Pi}
	// neta = 4; the second run is offset by 1 so the mean sits in between.
	col := []float64{10, 11, 20, 21} // (t0,p0), (t1,p0), (t0,p1), (t1,p1)
	y := mat.NewDense(4, 2, nil)
	for i, v := range col {
		y.Set(i, 0, v)
		y.Set(i, 1, v+1)
	}

	s, err := basis.New(y, time, phi, basis.Options{Components: 1, Center: true})
	require.NoError(t, err)

	f := s.MeanField()
	assert.Equal(t, 10.5, f.At(0, 0))
	assert.Equal(t, 11.5, f.At(1, 0))
	assert.Equal(t, 20.5, f.At(0, 1))
	assert.Equal(t, 21.5, f.At(1, 1))
}
