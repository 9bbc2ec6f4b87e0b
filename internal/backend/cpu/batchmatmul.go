package cpu

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/blas/blas64"

	"github.com/born-ml/attend/internal/parallel"
)

// forEachBatch calls f with the element offsets of each batch's C, A and B matrices.
func forEachBatch(batchSize, m, k, n int, cfg parallel.Config, f func(cOff, aOff, bOff int)) {
	parallel.For(batchSize, func(batch int) {
		f(batch*m*n, batch*m*k, batch*k*n)
	}, cfg)
}

// gemmFloat32 computes c = a @ b for row-major a [m,k], b [k,n], c [m,n].
func gemmFloat32(c, a, b []float32, m, k, n int) {
	blas32.Gemm(blas.NoTrans, blas.NoTrans, 1,
		blas32.General{Rows: m, Cols: k, Stride: k, Data: a},
		blas32.General{Rows: k, Cols: n, Stride: n, Data: b},
		0,
		blas32.General{Rows: m, Cols: n, Stride: n, Data: c})
}

// gemmFloat64 computes c = a @ b for row-major a [m,k], b [k,n], c [m,n].
func gemmFloat64(c, a, b []float64, m, k, n int) {
	blas64.Gemm(blas.NoTrans, blas.NoTrans, 1,
		blas64.General{Rows: m, Cols: k, Stride: k, Data: a},
		blas64.General{Rows: k, Cols: n, Stride: n, Data: b},
		0,
		blas64.General{Rows: m, Cols: n, Stride: n, Data: c})
}
