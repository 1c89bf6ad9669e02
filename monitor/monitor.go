// Package monitor implements an interactive line-oriented debugger for the
// emulator.
package monitor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/rvsim/emu"
)

// Prompt is printed before each command.
const Prompt = "> "

const (
	defaultMemLen    = 16
	defaultDisasmLen = 8
)

// ErrQuit is returned by Execute for the quit command.
var ErrQuit = errors.New("quit")

const helpText = `commands:
  s, step [n]               execute n instructions (default 1)
  c, continue               run until halt, breakpoint or instruction limit
  b, break <addr>           set a breakpoint
  d, delete <addr>          remove a breakpoint
  p, print                  print pc, state and registers
  p r|reg|register          print registers
  p m|mem|memory [addr [n]] hex dump n bytes (default pc, 16)
  p pc                      print the program counter
  x, disasm [addr [n]]      disassemble n instructions (default pc, 8)
  h, help                   show this help
  q, quit                   leave the monitor
numbers are decimal or 0x-prefixed hexadecimal
`

// Monitor drives an emulator from text commands.
type Monitor struct {
	emu         *emu.Emulator
	out         io.Writer
	logger      logrus.FieldLogger
	breakpoints map[uint64]bool
}

// New creates a monitor that controls e and writes to out.
func New(e *emu.Emulator, out io.Writer, logger logrus.FieldLogger) *Monitor {
	return &Monitor{
		emu:         e,
		out:         out,
		logger:      logger,
		breakpoints: make(map[uint64]bool),
	}
}

// Breakpoints returns the breakpoint addresses in ascending order.
func (m *Monitor) Breakpoints() []uint64 {
	addrs := make([]uint64, 0, len(m.breakpoints))
	for addr := range m.breakpoints {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}

// Run reads commands from in until quit, end of input or ctx is done.
func (m *Monitor) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		m.printf("%s", Prompt)
		if !scanner.Scan() {
			m.printf("\n")
			return scanner.Err()
		}

		if err := m.Execute(ctx, scanner.Text()); err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			return err
		}
	}
}

// Execute runs a single command line. Mistyped commands are reported to the
// output and are not errors.
func (m *Monitor) Execute(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	m.logger.WithField("command", line).Debug("monitor command")

	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "s", "step":
		m.step(args)
	case "c", "continue":
		m.cont(ctx)
	case "b", "break":
		m.setBreakpoint(args, true)
	case "d", "delete":
		m.setBreakpoint(args, false)
	case "p", "print":
		return m.print(args)
	case "x", "disasm":
		m.disasm(args)
	case "h", "help", "?":
		m.printf("%s", helpText)
	case "q", "quit", "exit":
		return ErrQuit
	default:
		m.printf("unknown command: %s (try help)\n", cmd)
	}

	return nil
}

func (m *Monitor) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(m.out, format, args...)
}

// parseNumber accepts decimal, or hexadecimal with or without a 0x prefix
// when the text is not a valid decimal.
func parseNumber(s string) (uint64, error) {
	if v, err := strconv.ParseUint(s, 10, 64); err == nil {
		return v, nil
	}

	hex := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(hex, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("not a valid number: %q", s)
	}
	return v, nil
}

// optionalArgs parses up to two numeric arguments with defaults.
func (m *Monitor) optionalArgs(args []string, first, second uint64) (uint64, uint64, bool) {
	values := []uint64{first, second}
	for i := 0; i < len(args) && i < len(values); i++ {
		v, err := parseNumber(args[i])
		if err != nil {
			m.printf("%v\n", err)
			return 0, 0, false
		}
		values[i] = v
	}
	return values[0], values[1], true
}

func (m *Monitor) step(args []string) {
	n := uint64(1)
	if len(args) > 0 {
		v, err := parseNumber(args[0])
		if err != nil {
			m.printf("%v\n", err)
			return
		}
		n = v
	}

	for i := uint64(0); i < n; i++ {
		result := m.emu.Step()
		m.reportStep(result)
		if result.Err != nil {
			return
		}
	}
}

func (m *Monitor) reportStep(result emu.StepResult) {
	switch {
	case result.Err == nil:
		m.printf("0x%X: %v\n", result.PC, result.Inst)
	case errors.Is(result.Err, emu.ErrInstructionLimit):
		m.printf("instruction limit reached\n")
	default:
		m.printf("halted: %v\n", result.Err)
	}
}

func (m *Monitor) cont(ctx context.Context) {
	var steps uint64
	for {
		if err := ctx.Err(); err != nil {
			m.printf("interrupted after %d instructions\n", steps)
			return
		}

		result := m.emu.Step()
		if result.Err != nil {
			m.printf("stopped after %d instructions\n", steps)
			m.reportStep(result)
			return
		}
		steps++

		if m.breakpoints[m.emu.PC()] {
			m.printf("breakpoint at 0x%X after %d instructions\n", m.emu.PC(), steps)
			return
		}
	}
}

func (m *Monitor) setBreakpoint(args []string, set bool) {
	if len(args) != 1 {
		m.printf("expected one address\n")
		return
	}

	addr, err := parseNumber(args[0])
	if err != nil {
		m.printf("%v\n", err)
		return
	}

	if set {
		m.breakpoints[addr] = true
		m.printf("breakpoint set at 0x%X\n", addr)
		return
	}

	if !m.breakpoints[addr] {
		m.printf("no breakpoint at 0x%X\n", addr)
		return
	}
	delete(m.breakpoints, addr)
	m.printf("breakpoint deleted at 0x%X\n", addr)
}

func (m *Monitor) print(args []string) error {
	if len(args) == 0 {
		return m.emu.DumpState(m.out)
	}

	switch args[0] {
	case "r", "reg", "register", "registers":
		return m.emu.DumpRegisters(m.out)
	case "m", "mem", "memory":
		addr, n, ok := m.optionalArgs(args[1:], m.emu.PC(), defaultMemLen)
		if !ok {
			return nil
		}
		if err := m.emu.DumpMemory(m.out, addr, int(n)); err != nil {
			m.printf("%v\n", err)
		}
		return nil
	case "pc":
		m.printf("pc = 0x%X\n", m.emu.PC())
		return nil
	default:
		m.printf("unknown print target: %s, printing all\n", args[0])
		return m.emu.DumpState(m.out)
	}
}

func (m *Monitor) disasm(args []string) {
	addr, n, ok := m.optionalArgs(args, m.emu.PC(), defaultDisasmLen)
	if !ok {
		return
	}

	list, err := m.emu.Disassemble(addr, int(n))
	for i, inst := range list {
		at := addr + uint64(i)*emu.InstructionSize
		marker := "  "
		if at == m.emu.PC() {
			marker = "=>"
		}
		if m.breakpoints[at] {
			marker = "*" + marker[1:]
		}
		m.printf("%s 0x%X: %08x  %v\n", marker, at, inst.Word, inst)
	}
	if err != nil {
		m.printf("%v\n", err)
	}
}
