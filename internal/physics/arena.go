package physics

import "unsafe"

// alignment is the byte boundary every view starts on: one 512-bit register,
// eight float64 lanes.
const alignment = 64

const alignDoubles = alignment / 8

type field int

const (
	fieldMass field = iota
	fieldSX
	fieldSY
	fieldSZ
	fieldVX
	fieldVY
	fieldVZ
	fieldFX
	fieldFY
	fieldFZ
	numFields
)

// arena owns one float64 block carved into numFields views of stride
// elements each. The first view starts on an alignment boundary and stride
// is a multiple of the lane width, so every lane batch is aligned too when
// the width divides eight.
//
// The block comes from make, which zeroes it; padding slots therefore hold
// finite values from the start and nothing ever writes them afterwards.
type arena struct {
	buf    []float64
	base   int
	stride int
}

func newArena(n, lanes int) *arena {
	stride := roundUp(n, lanes)
	buf := make([]float64, stride*int(numFields)+alignDoubles)
	return &arena{
		buf:    buf,
		base:   alignOffset(buf),
		stride: stride,
	}
}

// view returns the slice for f. Its capacity ends at the view boundary so
// an append or a reslice cannot reach the next field.
func (a *arena) view(f field) []float64 {
	lo := a.base + int(f)*a.stride
	hi := lo + a.stride
	return a.buf[lo:hi:hi]
}

// addr reports the address of the first element of f, for alignment checks.
func (a *arena) addr(f field) uintptr {
	return uintptr(unsafe.Pointer(&a.buf[a.base+int(f)*a.stride]))
}

// alignOffset returns how many leading elements of buf to skip so the next
// one sits on an alignment boundary. The Go heap does not move objects, so
// the offset stays valid for the life of buf.
func alignOffset(buf []float64) int {
	rem := uintptr(unsafe.Pointer(&buf[0])) % alignment
	if rem == 0 {
		return 0
	}
	return int((alignment - rem) / 8)
}

func roundUp(n, m int) int {
	if r := n % m; r != 0 {
		return n + m - r
	}
	return n
}
