package emu

import (
	"math"
	"math/bits"
)

// Division never traps. Division by zero yields all ones for the quotient
// and the dividend for the remainder. The signed overflow case
// (most negative value divided by -1) yields the dividend and a zero
// remainder.

func mulhu(a, b uint64) uint64 {
	hi, _ := bits.Mul64(a, b)
	return hi
}

func mulh(a, b uint64) uint64 {
	hi := mulhu(a, b)
	if int64(a) < 0 {
		hi -= b
	}
	if int64(b) < 0 {
		hi -= a
	}
	return hi
}

func mulhsu(a, b uint64) uint64 {
	hi := mulhu(a, b)
	if int64(a) < 0 {
		hi -= b
	}
	return hi
}

func div64(a, b uint64) uint64 {
	x, y := int64(a), int64(b)
	switch {
	case y == 0:
		return math.MaxUint64
	case x == math.MinInt64 && y == -1:
		return a
	}
	return uint64(x / y)
}

func divu64(a, b uint64) uint64 {
	if b == 0 {
		return math.MaxUint64
	}
	return a / b
}

func rem64(a, b uint64) uint64 {
	x, y := int64(a), int64(b)
	switch {
	case y == 0:
		return a
	case x == math.MinInt64 && y == -1:
		return 0
	}
	return uint64(x % y)
}

func remu64(a, b uint64) uint64 {
	if b == 0 {
		return a
	}
	return a % b
}

func div32(a, b uint32) uint32 {
	x, y := int32(a), int32(b)
	switch {
	case y == 0:
		return math.MaxUint32
	case x == math.MinInt32 && y == -1:
		return a
	}
	return uint32(x / y)
}

func divu32(a, b uint32) uint32 {
	if b == 0 {
		return math.MaxUint32
	}
	return a / b
}

func rem32(a, b uint32) uint32 {
	x, y := int32(a), int32(b)
	switch {
	case y == 0:
		return a
	case x == math.MinInt32 && y == -1:
		return 0
	}
	return uint32(x % y)
}

func remu32(a, b uint32) uint32 {
	if b == 0 {
		return a
	}
	return a % b
}
