// Package basis reduces a simulator output ensemble to a truncated
// empirical-orthogonal-function basis via the singular value decomposition.
package basis

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrEmptyEnsemble indicates an output matrix with no rows or columns.
	ErrEmptyEnsemble = errors.New("basis: ensemble output matrix is empty")

	// ErrGridShape indicates time/angle grids inconsistent with the output
	// matrix row count.
	ErrGridShape = errors.New("basis: time and angle grids do not match output rows")

	// ErrComponents indicates a retained-component count outside [1, m].
	ErrComponents = errors.New("basis: retained component count out of range")

	// ErrSVD indicates that the SVD factorization did not converge.
	ErrSVD = errors.New("basis: SVD factorization failed")
)

// Options configures the reduction.
//
// Components is the number of retained components. When zero, the count is
// chosen as the smallest number of components whose cumulative squared
// singular values reach VarianceFraction of the total.
type Options struct {
	Components       int
	VarianceFraction float64
	Center           bool
	Columnwise       bool // per-coordinate scale instead of a single scalar
}

// DefaultOptions retains 3 components and centers with a scalar scale.
func DefaultOptions() Options {
	return Options{Components: 3, Center: true}
}

// Summary is the immutable reduction of one simulator ensemble. It is built
// once and shared read-only by every experiment.
//
// Columns of Y are runs; each column is a (time x angle) image flattened
// time-fastest: row iphi*len(Time)+it holds the value at (Time[it],
// Phi[iphi]). K holds the basis U_p S_p / sqrt(m) (one column per retained
// component) and W the run loadings V_p sqrt(m), so that YStd ~= K Wᵀ up to
// the truncation residual.
type Summary struct {
	Y    *mat.Dense // neta x m raw outputs
	YStd *mat.Dense // neta x m centered and scaled
	Mean []float64  // per-coordinate ensemble mean, length neta
	SD   float64    // scalar scale factor (1 when Columnwise)
	SDs  []float64  // per-coordinate scale factors (nil unless Columnwise)
	Sing []float64  // all singular values of YStd
	PEta int        // retained component count
	K    *mat.Dense // neta x PEta basis
	W    *mat.Dense // m x PEta loadings
	Time []float64
	Phi  []float64
}

// New centers and scales the output matrix, factorizes it, and truncates to
// the retained component count.
func New(y *mat.Dense, time, phi []float64, opts Options) (*Summary, error) {
	neta, m := y.Dims()
	if neta == 0 || m == 0 {
		return nil, ErrEmptyEnsemble
	}
	if len(time)*len(phi) != neta {
		return nil, fmt.Errorf("%w: %d x %d grid, %d rows", ErrGridShape, len(time), len(phi), neta)
	}

	s := &Summary{Y: y, Time: time, Phi: phi, SD: 1}

	// Center on the per-coordinate ensemble mean.
	s.Mean = make([]float64, neta)
	if opts.Center {
		row := make([]float64, m)
		for i := 0; i < neta; i++ {
			s.Mean[i] = stat.Mean(mat.Row(row, i, y), nil)
		}
	}
	dev := mat.NewDense(neta, m, nil)
	for i := 0; i < neta; i++ {
		for j := 0; j < m; j++ {
			dev.Set(i, j, y.At(i, j)-s.Mean[i])
		}
	}

	// Scale: single sample standard deviation over all entries, or one per
	// output coordinate.
	if opts.Columnwise {
		s.SDs = make([]float64, neta)
		row := make([]float64, m)
		for i := 0; i < neta; i++ {
			s.SDs[i] = stat.StdDev(mat.Row(row, i, dev), nil)
			for j := 0; j < m; j++ {
				dev.Set(i, j, dev.At(i, j)/s.SDs[i])
			}
		}
	} else {
		s.SD = stat.StdDev(dev.RawMatrix().Data, nil)
		dev.Scale(1/s.SD, dev)
	}
	s.YStd = dev

	// Economy-size SVD of the standardized matrix.
	var svd mat.SVD
	if ok := svd.Factorize(dev, mat.SVDThin); !ok {
		return nil, ErrSVD
	}
	s.Sing = svd.Values(nil)

	peta := opts.Components
	if peta == 0 {
		peta = ComponentsForVariance(s.Sing, opts.VarianceFraction)
	}
	if peta < 1 || peta > len(s.Sing) {
		return nil, fmt.Errorf("%w: %d retained of %d", ErrComponents, peta, len(s.Sing))
	}
	s.PEta = peta

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	// K = U_p S_p / sqrt(m),  W = V_p sqrt(m)
	rootM := math.Sqrt(float64(m))
	s.K = mat.NewDense(neta, peta, nil)
	for j := 0; j < peta; j++ {
		for i := 0; i < neta; i++ {
			s.K.Set(i, j, u.At(i, j)*s.Sing[j]/rootM)
		}
	}
	s.W = mat.NewDense(m, peta, nil)
	for j := 0; j < peta; j++ {
		for i := 0; i < m; i++ {
			s.W.Set(i, j, v.At(i, j)*rootM)
		}
	}
	return s, nil
}

// ComponentsForVariance returns the smallest component count whose cumulative
// squared singular values reach the given fraction of the total.
func ComponentsForVariance(sing []float64, frac float64) int {
	total := 0.0
	for _, sv := range sing {
		total += sv * sv
	}
	cum := 0.0
	for i, sv := range sing {
		cum += sv * sv
		if cum >= frac*total {
			return i + 1
		}
	}
	return len(sing)
}

// TruncationError is the Frobenius norm of YStd - K Wᵀ.
func (s *Summary) TruncationError() float64 {
	var rec mat.Dense
	rec.Mul(s.K, s.W.T())
	rec.Sub(s.YStd, &rec)
	return mat.Norm(&rec, 2)
}

// MeanField reshapes the ensemble mean onto the (time x angle) grid.
func (s *Summary) MeanField() *mat.Dense {
	return s.field(s.Mean)
}

// BasisField reshapes the j-th basis component onto the (time x angle) grid.
func (s *Summary) BasisField(j int) *mat.Dense {
	return s.field(mat.Col(nil, j, s.K))
}

// SDField reshapes the per-coordinate scale factors onto the grid. It returns
// nil unless the summary was built with Columnwise scaling.
func (s *Summary) SDField() *mat.Dense {
	if s.SDs == nil {
		return nil
	}
	return s.field(s.SDs)
}

func (s *Summary) field(v []float64) *mat.Dense {
	ntime, nphi := len(s.Time), len(s.Phi)
	out := mat.NewDense(ntime, nphi, nil)
	for iphi := 0; iphi < nphi; iphi++ {
		for it := 0; it < ntime; it++ {
			out.Set(it, iphi, v[iphi*ntime+it])
		}
	}
	return out
}
