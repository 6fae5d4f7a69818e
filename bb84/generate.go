package bb84

import (
	"math/rand"

	"github.com/alan-christopher/bb84sim/bb84/bitmap"
)

// participants holds the choices every party commits to before anything is
// sent. eveBases is empty when nobody eavesdrops.
type participants struct {
	aliceBits  bitmap.Dense
	aliceBases bitmap.Dense
	eveBases   bitmap.Dense
	bobBases   bitmap.Dense
}

// generate draws every party's choices for a session. Tests replace it to pin
// those choices.
var generate = generateParticipants

func generateParticipants(r *rand.Rand, n int, eavesdrop bool) participants {
	p := participants{
		aliceBits:  bitmap.Random(r, n),
		aliceBases: bitmap.Random(r, n),
	}
	if eavesdrop {
		p.eveBases = bitmap.Random(r, n)
	}
	p.bobBases = bitmap.Random(r, n)
	return p
}
