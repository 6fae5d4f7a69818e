package photon

import (
	"fmt"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/stat/distuv"
)

func TestMeasureMatchingBasis(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for _, basis := range []Basis{Rectilinear, Diagonal} {
		for _, bit := range []bool{false, true} {
			t.Run(fmt.Sprintf("%v/%v", basis, bit), func(t *testing.T) {
				for i := 0; i < 1000; i++ {
					if got := Measure(r, bit, basis, basis); got != bit {
						t.Fatalf("Measure(%v, %v, %v) == %v on call %d", bit, basis, basis, got, i)
					}
				}
			})
		}
	}
}

func TestMeasureMatchingBasisDrawsNothing(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	ref := rand.New(rand.NewSource(11))
	q := Prepare(true, Diagonal)
	for i := 0; i < 100; i++ {
		q.Measure(r, Diagonal)
	}
	if got, want := r.Int63(), ref.Int63(); got != want {
		t.Errorf("random stream advanced by matching-basis measurement: got %d, want %d", got, want)
	}

	Measure(r, true, Rectilinear, Diagonal)
	ref.Intn(2)
	if got, want := r.Int63(), ref.Int63(); got != want {
		t.Errorf("mismatched-basis measurement should draw exactly once: got %d, want %d", got, want)
	}
}

func TestMeasureMismatchedBasisUniform(t *testing.T) {
	const n = 10000
	tcs := []struct {
		bit                bool
		prepared, measured Basis
	}{
		{false, Rectilinear, Diagonal},
		{true, Rectilinear, Diagonal},
		{false, Diagonal, Rectilinear},
		{true, Diagonal, Rectilinear},
	}
	r := rand.New(rand.NewSource(42))
	chi2 := distuv.ChiSquared{K: 1}
	for _, tc := range tcs {
		t.Run(fmt.Sprintf("%v/%v->%v", tc.bit, tc.prepared, tc.measured), func(t *testing.T) {
			ones := 0
			for i := 0; i < n; i++ {
				if Measure(r, tc.bit, tc.prepared, tc.measured) {
					ones++
				}
			}
			exp := float64(n) / 2
			d1, d0 := float64(ones)-exp, float64(n-ones)-exp
			stat := d1*d1/exp + d0*d0/exp
			if p := 1 - chi2.CDF(stat); p < 1e-4 {
				t.Errorf("got %d ones in %d measurements (p=%g), want a fair coin", ones, n, p)
			}
		})
	}
}

func TestBasisOf(t *testing.T) {
	if BasisOf(false) != Rectilinear {
		t.Errorf("BasisOf(false) == %v, want rectilinear", BasisOf(false))
	}
	if BasisOf(true) != Diagonal {
		t.Errorf("BasisOf(true) == %v, want diagonal", BasisOf(true))
	}
}
