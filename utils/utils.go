package utils

import (
	"gonum.org/v1/gonum/mat"
)

// Concatenate multiple vectors.
func ConcatVecs(size int, vecs ...*mat.VecDense) *mat.VecDense {
	out := mat.NewVecDense(size, nil)
	offset := 0
	var slice *mat.VecDense
	for _, vec := range vecs {
		slice = out.SliceVec(offset, size).(*mat.VecDense)
		slice.CopyVec(vec)
		offset += vec.Len()
	}
	return out
}

// Concatenate matrices left to right. All matrices must have the same
// number of rows.
func Hstack(mats ...mat.Matrix) *mat.Dense {
	rows, _ := mats[0].Dims()
	cols := 0
	for _, m := range mats {
		_, c := m.Dims()
		cols += c
	}
	out := mat.NewDense(rows, cols, nil)
	offset := 0
	for _, m := range mats {
		_, c := m.Dims()
		out.Slice(0, rows, offset, offset+c).(*mat.Dense).Copy(m)
		offset += c
	}
	return out
}

// Identity matrix.
func Eye(n int) *mat.Dense {
	out := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		out.Set(i, i, 1)
	}
	return out
}

// Linspace returns n evenly spaced values from start to stop, inclusive.
// For n == 1 it returns the midpoint of the interval.
func Linspace(start, stop float64, n int) []float64 {
	if n == 1 {
		return []float64{(start + stop) / 2}
	}
	out := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}
