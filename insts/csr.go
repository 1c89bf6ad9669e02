package insts

// csrNames maps CSR addresses to their symbolic names. It is used for
// diagnostics only; the simulator does not model CSR state.
var csrNames = map[uint16]string{
	// Unprivileged floating-point and counter CSRs
	0x001: "fflags",
	0x002: "frm",
	0x003: "fcsr",
	0xC00: "cycle",
	0xC01: "time",
	0xC02: "instret",
	0xC80: "cycleh",
	0xC81: "timeh",
	0xC82: "instreth",

	// Supervisor
	0x100: "sstatus",
	0x102: "sedeleg",
	0x103: "sideleg",
	0x104: "sie",
	0x105: "stvec",
	0x106: "scounteren",
	0x140: "sscratch",
	0x141: "sepc",
	0x142: "scause",
	0x143: "stval",
	0x144: "sip",
	0x180: "satp",

	// Machine information
	0xF11: "mvendorid",
	0xF12: "marchid",
	0xF13: "mimpid",
	0xF14: "mhartid",

	// Machine trap setup and handling
	0x300: "mstatus",
	0x301: "misa",
	0x302: "medeleg",
	0x303: "mideleg",
	0x304: "mie",
	0x305: "mtvec",
	0x306: "mcounteren",
	0x340: "mscratch",
	0x341: "mepc",
	0x342: "mcause",
	0x343: "mtval",
	0x344: "mip",

	// Machine counters
	0xB00: "mcycle",
	0xB02: "minstret",
}

var csrAddrs = func() map[string]uint16 {
	m := make(map[string]uint16, len(csrNames))
	for addr, name := range csrNames {
		m[name] = addr
	}
	return m
}()

// CSRName returns the symbolic name of a CSR address.
func CSRName(addr uint16) (string, bool) {
	name, ok := csrNames[addr&0xFFF]
	return name, ok
}

// CSRAddr returns the address of a named CSR.
func CSRAddr(name string) (uint16, bool) {
	addr, ok := csrAddrs[name]
	return addr, ok
}
