// Package bb84 simulates the BB84 quantum key distribution protocol between
// two legitimate parties, optionally under an intercept-resend attack, and
// measures how reliably the attack is detected.
//
// A session runs the whole protocol once: participant choices are drawn,
// qubits cross a simulated channel (see package photon), bases are
// reconciled, and half of the sifted bits are disclosed to check for
// eavesdropping. RunTrials repeats sessions to tabulate detection accuracy.
package bb84

import (
	"errors"
	"fmt"
	"math/rand"
)

var (
	DefaultQubits = 32
	DefaultTrials = 100
)

var (
	// ErrInvalidConfiguration is returned, wrapped, when options are rejected
	// before any simulation work is done.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrSampling is returned, wrapped, when too few positions survive sifting
	// to disclose half of them as check bits.
	ErrSampling = errors.New("cannot sample check bits")
)

// A SessionOpts packages together the arguments necessary to run a single
// session. Leaving required fields zero-initialized results in Session
// returning an error wrapping ErrInvalidConfiguration.
type SessionOpts struct {
	// Qubits is the number of qubits Alice transmits. Must be positive;
	// DefaultQubits is the conventional choice.
	Qubits int

	// Eavesdrop places Eve on the channel for this session.
	Eavesdrop bool

	// Rand provides every random draw of the session: participant choices,
	// mismatched-basis measurement outcomes and check-bit sampling. Seeding it
	// makes a session reproducible. Must be non-nil.
	Rand *rand.Rand

	// AmplifiedBits, if positive, requests privacy amplification of the
	// residual keys down to at most this many bits.
	AmplifiedBits int
}

func (o SessionOpts) validate() error {
	if o.Qubits <= 0 {
		return fmt.Errorf("%w: qubit count must be positive, got %d", ErrInvalidConfiguration, o.Qubits)
	}
	if o.Rand == nil {
		return fmt.Errorf("%w: must provide Rand", ErrInvalidConfiguration)
	}
	if o.AmplifiedBits < 0 {
		return fmt.Errorf("%w: amplified key length must not be negative, got %d", ErrInvalidConfiguration, o.AmplifiedBits)
	}
	return nil
}
