package input

import "testing"

func TestInput_ReadSelectsDPadGroup(t *testing.T) {
	in := New()
	in.WriteSelect(0x20) // P14 low (0x10 clear): selects D-pad
	in.Tick(Right | Up)
	got := in.Read()
	if got&0x01 != 0 {
		t.Fatalf("Right bit not cleared: JOYP=%#02x", got)
	}
	if got&0x04 != 0 {
		t.Fatalf("Up bit not cleared: JOYP=%#02x", got)
	}
	if got&0x02 == 0 || got&0x08 == 0 {
		t.Fatalf("Left/Down should read released (1), JOYP=%#02x", got)
	}
}

func TestInput_ReadSelectsButtonGroup(t *testing.T) {
	in := New()
	in.WriteSelect(0x10) // P15 low: selects buttons
	in.Tick(A | Start)
	got := in.Read()
	if got&0x01 != 0 {
		t.Fatalf("A bit not cleared: JOYP=%#02x", got)
	}
	if got&0x08 != 0 {
		t.Fatalf("Start bit not cleared: JOYP=%#02x", got)
	}
}

func TestInput_TickRaisesInterruptOnPressEdge(t *testing.T) {
	in := New()
	if raised := in.Tick(0); raised {
		t.Fatalf("no buttons pressed: unexpected interrupt")
	}
	if raised := in.Tick(Down); !raised {
		t.Fatalf("released->pressed transition on Down should raise interrupt")
	}
	if raised := in.Tick(Down); raised {
		t.Fatalf("holding Down should not re-raise interrupt")
	}
	if raised := in.Tick(0); raised {
		t.Fatalf("pressed->released transition should not raise interrupt")
	}
}
