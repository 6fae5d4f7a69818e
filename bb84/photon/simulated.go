package photon

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/alan-christopher/bb84sim/bb84/bitmap"
)

var errNothingInFlight = errors.New("no qubits in flight")

// NewSimulatedChannel creates a simulated, lossless quantum channel. All
// measurement randomness is drawn from r. It is expected that each call to
// Send is mirrored by exactly one call to Receive, with any number of
// Intercepts in between.
func NewSimulatedChannel(r *rand.Rand) *SimulatedChannel {
	return &SimulatedChannel{rand: r}
}

// A SimulatedChannel implements Sender, Interceptor and Receiver over an
// in-memory transmission.
type SimulatedChannel struct {
	rand     *rand.Rand
	inFlight []Qubit
}

func (sc *SimulatedChannel) Send(bits, bases bitmap.Dense) error {
	if bits.Size() != bases.Size() {
		return fmt.Errorf("bit and basis length must agree: %d != %d", bits.Size(), bases.Size())
	}
	if sc.inFlight != nil {
		return errors.New("previous transmission has not been received")
	}
	sc.inFlight = make([]Qubit, bits.Size())
	for i := range sc.inFlight {
		sc.inFlight[i] = Prepare(bits.Get(i), BasisOf(bases.Get(i)))
	}
	return nil
}

func (sc *SimulatedChannel) Intercept(bases bitmap.Dense) (bitmap.Dense, error) {
	if err := sc.checkBases(bases); err != nil {
		return bitmap.Empty(), fmt.Errorf("intercepting: %w", err)
	}
	bits := bitmap.NewDense(nil, len(sc.inFlight))
	for i, q := range sc.inFlight {
		basis := BasisOf(bases.Get(i))
		bit := q.Measure(sc.rand, basis)
		bits.Set(i, bit)
		sc.inFlight[i] = Prepare(bit, basis)
	}
	return bits, nil
}

func (sc *SimulatedChannel) Receive(bases bitmap.Dense) (bitmap.Dense, error) {
	if err := sc.checkBases(bases); err != nil {
		return bitmap.Empty(), fmt.Errorf("receiving: %w", err)
	}
	bits := bitmap.NewDense(nil, len(sc.inFlight))
	for i, q := range sc.inFlight {
		bits.Set(i, q.Measure(sc.rand, BasisOf(bases.Get(i))))
	}
	sc.inFlight = nil
	return bits, nil
}

func (sc *SimulatedChannel) checkBases(bases bitmap.Dense) error {
	if sc.inFlight == nil {
		return errNothingInFlight
	}
	if bases.Size() != len(sc.inFlight) {
		return fmt.Errorf("send length must match measurement basis length: %d != %d", len(sc.inFlight), bases.Size())
	}
	return nil
}
