package bitmap

import "fmt"

// And returns the bitwise AND of two bitmaps.
func And(a, b Dense) Dense {
	short, long := a, b
	if b.len < a.len {
		short, long = b, a
	}
	rLen := short.len
	if short.negated {
		rLen = long.len
	}
	r := Dense{
		bits:    make([]byte, 0, BytesFor(rLen)),
		len:     rLen,
		negated: a.negated && b.negated,
	}
	for i := range short.bits {
		r.bits = append(r.bits, a.bits[i]&b.bits[i])
	}
	if short.negated {
		for i := len(short.bits); i < len(long.bits); i++ {
			r.bits = append(r.bits, long.bits[i])
		}
	}
	return r
}

// XOr returns the bitwise XOR of two bitmaps.
func XOr(a, b Dense) Dense {
	short, long := a, b
	if b.len < a.len {
		short, long = b, a
	}
	r := Dense{
		bits:    make([]byte, 0, BytesFor(long.len)),
		len:     long.len,
		negated: a.negated != b.negated,
	}
	for i := range short.bits {
		r.bits = append(r.bits, a.bits[i]^b.bits[i])
	}
	var trail byte
	if a.negated {
		trail = 0xFF
	}
	for i := len(short.bits); i < len(long.bits); i++ {
		r.bits = append(r.bits, trail^long.bits[i])
	}
	return r
}

// XNOr returns the bitwise XNOR of two bitmaps.
func XNor(a, b Dense) Dense {
	short, long := a, b
	if b.len < a.len {
		short, long = b, a
	}
	r := Dense{
		bits:    make([]byte, 0, BytesFor(long.len)),
		len:     long.len,
		negated: a.negated == b.negated,
	}
	for i := range short.bits {
		r.bits = append(r.bits, ^(a.bits[i] ^ b.bits[i]))
	}
	var trail byte
	if a.negated {
		trail = 0xFF
	}
	for i := len(short.bits); i < len(long.bits); i++ {
		r.bits = append(r.bits, ^(trail ^ long.bits[i]))
	}
	return r
}

// Slice creates a view into m including bits [start, end).
func Slice(d Dense, start, end int) (Dense, error) {
	if end > d.len {
		return Dense{}, fmt.Errorf("slicing bitmap of len %d up to %d", d.len, end)
	}
	if start < 0 {
		return Dense{}, fmt.Errorf("slicing bitmap with negative start: %d", start)
	}
	if end < start {
		return Dense{}, fmt.Errorf("slicing bitmap to negative length: %d", end-start)
	}

	r := Dense{}
	for ; start%byteSize != 0 && start < end; start++ {
		r.AppendBit(d.Get(start))
	}
	if start == end {
		return r, nil
	}
	j := start / byteSize
	tmp := NewDense(append([]byte(nil), d.bits[j:j+BytesFor(end-start)]...), end-start)
	tmp.clearTail()
	r.Append(tmp)
	return r, nil
}
