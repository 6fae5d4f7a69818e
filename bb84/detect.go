package bb84

import (
	"fmt"
	"math/rand"

	"github.com/alan-christopher/bb84sim/bb84/bitmap"
)

// A Verdict is Alice's judgement of a single position after Bob discloses his
// check bits.
type Verdict uint8

const (
	NotDisclosed Verdict = iota
	Confirmed
	Discrepancy
)

func (v Verdict) String() string {
	switch v {
	case Confirmed:
		return "confirmed"
	case Discrepancy:
		return "discrepancy"
	default:
		return "not disclosed"
	}
}

// detect discloses half of the correct bits, has Alice check them, and
// computes the eavesdropping ratio and residual outcome.
func detect(r *rand.Rand, rec *Record) error {
	disclosed, err := sampleChecks(r, rec.CorrectBits)
	if err != nil {
		return err
	}
	rec.Disclosed = disclosed
	rec.Confirmations = confirm(rec.AliceBits, disclosed)
	rec.Outcome = residual(rec.CorrectBits, disclosed)

	var discrepancies int
	for _, v := range rec.Confirmations {
		switch v {
		case Confirmed:
			rec.Checks++
		case Discrepancy:
			rec.Checks++
			discrepancies++
		}
	}
	rec.EavesdroppingRatio = eavesdroppingRatio(discrepancies, rec.Qubits)
	rec.QBER = float64(discrepancies) / float64(rec.Checks)
	return nil
}

// sampleChecks picks, uniformly without replacement, half (rounded down) of
// the present slots in correct. The returned slots are present only at the
// picked positions.
func sampleChecks(r *rand.Rand, correct []Slot) ([]Slot, error) {
	var usable []int
	for i, s := range correct {
		if s.Present {
			usable = append(usable, i)
		}
	}
	if len(usable) < 2 {
		return nil, fmt.Errorf("%w: %d of %d positions survived sifting, need at least 2",
			ErrSampling, len(usable), len(correct))
	}
	r.Shuffle(len(usable), func(i, j int) {
		usable[i], usable[j] = usable[j], usable[i]
	})
	disclosed := make([]Slot, len(correct))
	for _, idx := range usable[:len(usable)/2] {
		disclosed[idx] = correct[idx]
	}
	return disclosed, nil
}

func confirm(aliceBits bitmap.Dense, disclosed []Slot) []Verdict {
	verdicts := make([]Verdict, len(disclosed))
	for i, s := range disclosed {
		switch {
		case !s.Present:
			verdicts[i] = NotDisclosed
		case s.Bit == aliceBits.Get(i):
			verdicts[i] = Confirmed
		default:
			verdicts[i] = Discrepancy
		}
	}
	return verdicts
}

func residual(correct, disclosed []Slot) []Slot {
	out := make([]Slot, len(correct))
	for i, s := range correct {
		if !disclosed[i].Present {
			out[i] = s
		}
	}
	return out
}

// eavesdroppingRatio normalizes by the whole transmission rather than by the
// number of check bits, so it understates the observed error rate.
func eavesdroppingRatio(discrepancies, qubits int) float64 {
	return float64(discrepancies) / float64(qubits) * 100
}
