package emu

import (
	"errors"
	"fmt"

	"github.com/sarchlab/rvsim/insts"
)

var (
	// ErrOutOfRange is returned by a device for an offset it does not hold.
	ErrOutOfRange = errors.New("offset out of range")
	// ErrInvalidWidth is returned for an access width other than 8/16/32/64.
	ErrInvalidWidth = errors.New("invalid access width")

	// ErrReadFailed matches execution errors raised by loads.
	ErrReadFailed = errors.New("read error")
	// ErrWriteFailed matches execution errors raised by stores.
	ErrWriteFailed = errors.New("write error")
	// ErrNotImplemented matches execution errors raised by instructions
	// that decode but have no execution semantics.
	ErrNotImplemented = errors.New("instruction not implemented")
	// ErrMisalignedTarget matches execution errors raised by jumps and
	// taken branches whose target is not a multiple of InstructionSize.
	ErrMisalignedTarget = errors.New("misaligned jump target")
	// ErrFetch matches errors raised when the next instruction cannot be
	// fetched.
	ErrFetch = errors.New("fetch error")
	// ErrInvalidLength is returned for a negative byte or instruction count.
	ErrInvalidLength = errors.New("invalid length")
)

// AddressError reports a bus access outside the mapped region.
type AddressError struct {
	Addr  uint64
	Width Width
	Write bool
	Err   error
}

func (e *AddressError) Error() string {
	op := "read"
	if e.Write {
		op = "write"
	}
	return fmt.Sprintf("%s of %d bits at 0x%X: address not mapped", op, e.Width, e.Addr)
}

func (e *AddressError) Unwrap() error {
	return e.Err
}

// ExecKind classifies an execution failure.
type ExecKind uint8

// Execution failure kinds.
const (
	ReadFailed ExecKind = iota
	WriteFailed
	NotImplemented
	MisalignedTarget
)

func (k ExecKind) sentinel() error {
	switch k {
	case ReadFailed:
		return ErrReadFailed
	case WriteFailed:
		return ErrWriteFailed
	case MisalignedTarget:
		return ErrMisalignedTarget
	default:
		return ErrNotImplemented
	}
}

func (k ExecKind) String() string {
	return k.sentinel().Error()
}

// ExecutionError reports an instruction that could not be executed.
type ExecutionError struct {
	Kind ExecKind
	PC   uint64
	Inst insts.Instruction
	Err  error
}

func (e *ExecutionError) Error() string {
	msg := fmt.Sprintf("%v at PC=0x%X (%v)", e.Kind, e.PC, e.Inst)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind.
func (e *ExecutionError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// FetchError reports a program counter that does not point at mapped memory.
type FetchError struct {
	PC  uint64
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch error at PC=0x%X: %v", e.PC, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is matches ErrFetch.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}
