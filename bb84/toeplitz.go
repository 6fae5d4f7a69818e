package bb84

import (
	"fmt"
	"math/rand"

	"github.com/alan-christopher/bb84sim/bb84/bitmap"
)

// A toeplitz represents a matrix whose diagonals are all constant. It operates
// in F_2, i.e. all of its scalars are 0 or 1.
type toeplitz struct {
	// The diagonal constants for this toeplitz matrix, starting from the bottom
	// left and ending with the top right.
	diags bitmap.Dense

	m int
	n int
}

// Mul computes the matrix product Av between the toeplitz matrix t and the
// provided vector.
func (t toeplitz) Mul(vec bitmap.Dense) (bitmap.Dense, error) {
	if t.diags.Size() < t.m+t.n-1 {
		return bitmap.Dense{}, fmt.Errorf("improper toeplitz construction, has %d diagonals, needs %d", t.diags.Size(), t.m+t.n-1)
	}
	if t.n != vec.Size() {
		return bitmap.Dense{}, fmt.Errorf("multiplying %dx%d matrix into %d-dim vector", t.m, t.n, vec.Size())
	}

	r := bitmap.Dense{}
	for off := t.m - 1; off >= 0; off-- {
		row, err := bitmap.Slice(t.diags, off, off+t.n)
		if err != nil {
			return bitmap.Empty(), err
		}
		r.AppendBit(bitmap.Parity(bitmap.And(row, vec)))
	}
	return r, nil
}

// amplify compresses both parties' residual keys with one shared random
// Toeplitz hash to at most bits bits. Alice's residual is her own bits at the
// positions Bob kept, so any interception errors carry through to the hashes.
func amplify(r *rand.Rand, rec *Record, bits int) error {
	var aliceRes, bobRes bitmap.Dense
	for i, s := range rec.Outcome {
		if !s.Present {
			continue
		}
		aliceRes.AppendBit(rec.AliceBits.Get(i))
		bobRes.AppendBit(s.Bit)
	}
	n := aliceRes.Size()
	if n == 0 {
		return nil
	}
	t := toeplitz{m: min(bits, n), n: n}
	t.diags = bitmap.Random(r, t.m+t.n-1)

	var err error
	if rec.AliceFinal, err = t.Mul(aliceRes); err != nil {
		return err
	}
	if rec.BobFinal, err = t.Mul(bobRes); err != nil {
		return err
	}
	return nil
}
