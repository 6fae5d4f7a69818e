package bb84

import (
	"fmt"

	"github.com/alan-christopher/bb84sim/bb84/bitmap"
	"github.com/alan-christopher/bb84sim/bb84/photon"
)

// A Record holds everything observed during one session. Every per-position
// field has length Qubits and is indexed consistently across parties.
type Record struct {
	Qubits        int
	Eavesdropping bool

	AliceBits  bitmap.Dense
	AliceBases bitmap.Dense

	// EveBases and EveBits are empty unless Eavesdropping.
	EveBases bitmap.Dense
	EveBits  bitmap.Dense

	BobBases bitmap.Dense
	BobBits  bitmap.Dense

	// Matches flags the positions where Alice's and Bob's bases agree, and
	// Markers renders the same as 'K' or ' '.
	Matches bitmap.Dense
	Markers []byte

	// AliceKey and BobKey are the sifted keys, i.e. each party's bits at the
	// matching positions in ascending order.
	AliceKey bitmap.Dense
	BobKey   bitmap.Dense

	// CorrectBits holds Bob's bit wherever bases matched.
	CorrectBits []Slot
	// Disclosed holds the check bits Bob made public.
	Disclosed []Slot
	// Confirmations holds Alice's verdict on each disclosed bit.
	Confirmations []Verdict
	// Outcome holds the undisclosed correct bits left for the secret key.
	Outcome []Slot

	// EavesdroppingRatio is the percentage of all transmitted qubits that
	// produced a discrepancy on disclosure.
	EavesdroppingRatio float64
	// QBER is the observed error rate among disclosed check bits.
	QBER float64
	// Checks is the number of disclosed check bits.
	Checks int

	// AliceFinal and BobFinal are the privacy-amplified residual keys. Empty
	// unless amplification was requested.
	AliceFinal bitmap.Dense
	BobFinal   bitmap.Dense
}

// Detected reports whether the session flagged eavesdropping.
func (r *Record) Detected() bool {
	return r.EavesdroppingRatio > 0
}

// Session runs one complete BB84 exchange as configured by opts and returns
// its record. No partial record is returned on error.
func Session(opts SessionOpts) (*Record, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	p := generate(opts.Rand, opts.Qubits, opts.Eavesdrop)
	rec := &Record{
		Qubits:        opts.Qubits,
		Eavesdropping: opts.Eavesdrop,
		AliceBits:     p.aliceBits,
		AliceBases:    p.aliceBases,
		EveBases:      p.eveBases,
		BobBases:      p.bobBases,
	}

	ch := photon.NewSimulatedChannel(opts.Rand)
	var eve photon.Interceptor
	if opts.Eavesdrop {
		eve = ch
	}
	if err := transmit(ch, eve, ch, rec); err != nil {
		return nil, err
	}
	sift(rec)
	if err := detect(opts.Rand, rec); err != nil {
		return nil, err
	}
	if opts.AmplifiedBits > 0 {
		if err := amplify(opts.Rand, rec, opts.AmplifiedBits); err != nil {
			return nil, fmt.Errorf("amplifying privacy: %w", err)
		}
	}
	return rec, nil
}

// transmit sends Alice's qubits to Bob, via eve if non-nil, filling in the
// measured bits of rec.
func transmit(alice photon.Sender, eve photon.Interceptor, bob photon.Receiver, rec *Record) error {
	if err := alice.Send(rec.AliceBits, rec.AliceBases); err != nil {
		return fmt.Errorf("sending qubits: %w", err)
	}
	if eve != nil {
		bits, err := eve.Intercept(rec.EveBases)
		if err != nil {
			return fmt.Errorf("intercepting qubits: %w", err)
		}
		rec.EveBits = bits
	}
	bits, err := bob.Receive(rec.BobBases)
	if err != nil {
		return fmt.Errorf("receiving qubits: %w", err)
	}
	rec.BobBits = bits
	return nil
}
