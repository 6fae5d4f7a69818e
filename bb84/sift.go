package bb84

import "github.com/alan-christopher/bb84sim/bb84/bitmap"

const (
	MarkerKeep  byte = 'K'
	MarkerBlank byte = ' '
)

// A Slot is a per-position bit that may be absent, e.g. where bases did not
// match or a bit was withheld.
type Slot struct {
	Bit     bool
	Present bool
}

// sift reconciles bases over the (assumed authenticated) public channel and
// extracts both parties' raw keys.
func sift(rec *Record) {
	n := rec.Qubits
	mask := bitmap.XNor(rec.AliceBases, rec.BobBases)
	rec.Matches = bitmap.NewDense(nil, n)
	rec.Markers = make([]byte, n)
	rec.CorrectBits = make([]Slot, n)
	for i := 0; i < n; i++ {
		match := mask.Get(i)
		rec.Matches.Set(i, match)
		rec.Markers[i] = MarkerBlank
		if match {
			rec.Markers[i] = MarkerKeep
			rec.CorrectBits[i] = Slot{Bit: rec.BobBits.Get(i), Present: true}
		}
	}
	rec.AliceKey = bitmap.Select(rec.AliceBits, rec.Matches)
	rec.BobKey = bitmap.Select(rec.BobBits, rec.Matches)
}
