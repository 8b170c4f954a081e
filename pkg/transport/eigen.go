package transport

import (
	"fmt"
	"math"
	"slices"

	"github.com/matzehuels/tipscan/pkg/device"
)

const jacobiSweeps = 100

// symEigen diagonalizes the real symmetric matrix m by cyclic Jacobi
// rotations. vecs is row-major and column k holds the eigenvector of
// vals[k].
func symEigen(m *device.Matrix) (vals, vecs []float64, err error) {
	n := m.Rows
	a := slices.Clone(m.Data)
	v := make([]float64, n*n)
	for i := 0; i < n; i++ {
		v[i*n+i] = 1
	}
	var norm float64
	for _, x := range a {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	limit := 1e-14 * norm * float64(n)

	for sweep := 0; sweep < jacobiSweeps; sweep++ {
		var off float64
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i != j {
					off += a[i*n+j] * a[i*n+j]
				}
			}
		}
		if math.Sqrt(off) <= limit {
			vals = make([]float64, n)
			for i := range vals {
				vals[i] = a[i*n+i]
			}
			return vals, v, nil
		}
		for p := 0; p < n; p++ {
			for q := p + 1; q < n; q++ {
				apq := a[p*n+q]
				if apq == 0 {
					continue
				}
				theta := (a[q*n+q] - a[p*n+p]) / (2 * apq)
				t := 1 / (math.Abs(theta) + math.Hypot(theta, 1))
				if theta < 0 {
					t = -t
				}
				c := 1 / math.Hypot(t, 1)
				s := t * c
				for k := 0; k < n; k++ {
					akp, akq := a[k*n+p], a[k*n+q]
					a[k*n+p], a[k*n+q] = c*akp-s*akq, s*akp+c*akq
				}
				for k := 0; k < n; k++ {
					apk, aqk := a[p*n+k], a[q*n+k]
					a[p*n+k], a[q*n+k] = c*apk-s*aqk, s*apk+c*aqk
				}
				for k := 0; k < n; k++ {
					vkp, vkq := v[k*n+p], v[k*n+q]
					v[k*n+p], v[k*n+q] = c*vkp-s*vkq, s*vkp+c*vkq
				}
			}
		}
	}
	return nil, nil, fmt.Errorf("eigenvalues did not converge after %d Jacobi sweeps", jacobiSweeps)
}
