package register

import "testing"

func TestFile_PairAccessors(t *testing.T) {
	var f File
	f.SetAF(0x1234)
	if f.A != 0x12 || f.F != 0x30 {
		t.Fatalf("SetAF: A=%#02x F=%#02x, want A=0x12 F=0x30 (low nibble masked)", f.A, f.F)
	}
	if got := f.AF(); got != 0x1230 {
		t.Fatalf("AF() = %#04x, want 0x1230", got)
	}

	f.SetBC(0xBEEF)
	if f.B != 0xBE || f.C != 0xEF || f.BC() != 0xBEEF {
		t.Fatalf("BC pair mismatch: B=%#02x C=%#02x BC()=%#04x", f.B, f.C, f.BC())
	}

	f.SetDE(0xCAFE)
	if f.D != 0xCA || f.E != 0xFE || f.DE() != 0xCAFE {
		t.Fatalf("DE pair mismatch: D=%#02x E=%#02x DE()=%#04x", f.D, f.E, f.DE())
	}

	f.SetHL(0x0102)
	if f.H != 0x01 || f.L != 0x02 || f.HL() != 0x0102 {
		t.Fatalf("HL pair mismatch: H=%#02x L=%#02x HL()=%#04x", f.H, f.L, f.HL())
	}
}

func TestFile_FlagBits(t *testing.T) {
	var f File
	f.SetFlag(FlagZ, true)
	f.SetFlag(FlagC, true)
	if !f.Flag(FlagZ) || !f.Flag(FlagC) {
		t.Fatalf("expected Z and C set, F=%#02x", f.F)
	}
	if f.Flag(FlagN) || f.Flag(FlagH) {
		t.Fatalf("expected N and H clear, F=%#02x", f.F)
	}
	if f.F&0x0F != 0 {
		t.Fatalf("F low nibble not masked to zero: F=%#02x", f.F)
	}

	f.SetFlags(false, true, false, true)
	if f.Flag(FlagZ) || !f.Flag(FlagN) || f.Flag(FlagH) || !f.Flag(FlagC) {
		t.Fatalf("SetFlags did not replace prior flag state, F=%#02x", f.F)
	}
}

func TestFile_ResetPostBoot(t *testing.T) {
	var f File
	f.ResetPostBoot()
	if f.AF() != 0x01B0 || f.BC() != 0x0013 || f.DE() != 0x00D8 || f.HL() != 0x014D {
		t.Fatalf("post-boot registers got AF=%#04x BC=%#04x DE=%#04x HL=%#04x",
			f.AF(), f.BC(), f.DE(), f.HL())
	}
	if f.SP != 0xFFFE || f.PC != 0x0100 {
		t.Fatalf("post-boot SP/PC got SP=%#04x PC=%#04x, want SP=0xFFFE PC=0x0100", f.SP, f.PC)
	}
}
