// Package photon provides utilities for handling photon-encoded qubits.
package photon

import (
	"math/rand"

	"github.com/alan-christopher/bb84sim/bb84/bitmap"
)

// A Basis is one of the two conjugate polarization bases a qubit may be
// prepared or measured in.
type Basis uint8

const (
	Rectilinear Basis = iota
	Diagonal
)

// BasisOf interprets a bit from a basis bitmap: unset bits are Rectilinear,
// set bits Diagonal.
func BasisOf(bit bool) Basis {
	if bit {
		return Diagonal
	}
	return Rectilinear
}

func (b Basis) String() string {
	if b == Diagonal {
		return "diagonal"
	}
	return "rectilinear"
}

// A Qubit is a single photon prepared with a logical bit in a given basis. It
// cannot be altered once prepared; re-sending a measured value means preparing
// a new Qubit.
type Qubit struct {
	bit   bool
	basis Basis
}

// Prepare returns a qubit encoding bit in basis.
func Prepare(bit bool, basis Basis) Qubit {
	return Qubit{bit: bit, basis: basis}
}

// Basis returns the basis q was prepared in.
func (q Qubit) Basis() Basis {
	return q.basis
}

// Measure projects q onto basis. See the package-level Measure.
func (q Qubit) Measure(r *rand.Rand, basis Basis) bool {
	return Measure(r, q.bit, q.basis, basis)
}

// Measure returns the outcome of measuring, in basis measured, a photon that
// encodes bit in basis prepared. Measuring in the preparation basis recovers
// bit exactly and draws nothing from r. Measuring in the conjugate basis yields
// a fair coin flip independent of bit, drawn from r.
func Measure(r *rand.Rand, bit bool, prepared, measured Basis) bool {
	if prepared == measured {
		return bit
	}
	return r.Intn(2) == 1
}

// A Sender puts qubits onto a quantum channel.
type Sender interface {
	// Send prepares one qubit per position, encoding bits[i] in bases[i], and
	// transmits them in order.
	Send(bits, bases bitmap.Dense) error
}

// An Interceptor sits between a Sender and a Receiver, measuring each qubit in
// transit and forwarding a replacement prepared from what it observed.
type Interceptor interface {
	// Intercept measures every in-flight qubit in the corresponding basis and
	// returns the observed bits.
	Intercept(bases bitmap.Dense) (bits bitmap.Dense, err error)
}

// A Receiver receives linearly-polarized photons and decodes them in a given
// measurement basis.
type Receiver interface {
	// Receive measures every in-flight qubit in the corresponding basis,
	// consuming the transmission, and returns the decoded bits.
	Receive(bases bitmap.Dense) (bits bitmap.Dense, err error)
}
