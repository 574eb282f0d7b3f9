package eval

import (
	"gonum.org/v1/gonum/mat"
)

// rcond drops singular values below rcond times the largest one.
const rcond = 1e-10

// Fit solves the least-squares problem X·w ≈ Y without an intercept. Rank
// deficient systems (a feature that never varies, fewer rows than features)
// get the minimum-norm solution; an empty or all-zero system yields zeros.
func Fit(s TurnSamples) [NumFeatures]float64 {
	var w [NumFeatures]float64
	rows := s.Rows()
	if rows == 0 {
		return w
	}

	x := mat.NewDense(rows, NumFeatures, s.X)
	y := mat.NewVecDense(rows, s.Y)

	var svd mat.SVD
	if !svd.Factorize(x, mat.SVDThin) {
		return w
	}
	rank := svd.Rank(rcond)
	if rank == 0 {
		return w
	}

	var sol mat.VecDense
	svd.SolveVecTo(&sol, y, rank)
	for i := range w {
		w[i] = sol.AtVec(i)
	}
	return w
}
