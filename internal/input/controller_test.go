package input

import "testing"

func TestState_DefaultIsAllZero(t *testing.T) {
	s := NewState()
	for i := range s.Ports {
		if v := s.Ports[i].padMask.Load(); v != 0 {
			t.Errorf("port %d: expected zero pad mask, got 0x%02X", i, v)
		}
	}
}

func TestPort_SetButtonTogglesMask(t *testing.T) {
	var p Port
	buttons := []Button{ButtonA, ButtonB, ButtonSelect, ButtonStart, ButtonUp, ButtonDown, ButtonLeft, ButtonRight}
	for _, b := range buttons {
		p.SetButton(b, true)
		if p.padMask.Load()&uint32(b) == 0 {
			t.Errorf("expected button 0x%02X set", b)
		}
		p.SetButton(b, false)
		if p.padMask.Load()&uint32(b) != 0 {
			t.Errorf("expected button 0x%02X cleared", b)
		}
	}
}

func TestState_ShiftRegisterProtocol(t *testing.T) {
	s := NewState()
	s.Ports[0].SetMask(uint8(ButtonA | ButtonStart | ButtonRight))

	s.Write(0x4016, 1) // strobe high: continuously latches
	// While strobe is held, every read returns bit 0 (button A) without advancing.
	for i := 0; i < 3; i++ {
		if v := s.Read(0x4016); v != 1 {
			t.Errorf("expected button A bit (1) while strobed, got %d", v)
		}
	}

	s.Write(0x4016, 0) // strobe low: shift register now serializes
	expected := []uint8{1, 0, 0, 1, 0, 0, 0, 1} // A,B,Select,Start,Up,Down,Left,Right
	for i, want := range expected {
		got := s.Read(0x4016)
		if got != want {
			t.Errorf("bit %d: expected %d, got %d", i, want, got)
		}
	}
	// Reads past bit 7 return 1 (open bus pulled high), matching real hardware.
	if v := s.Read(0x4016); v != 1 {
		t.Errorf("expected 1 for read past bit 7, got %d", v)
	}
}

func TestState_Port1OpenBusBit6(t *testing.T) {
	s := NewState()
	v := s.Read(0x4017)
	if v&0x40 == 0 {
		t.Error("expected bit 6 always set on $4017 reads")
	}
}

func TestState_TurboPhaseCycling(t *testing.T) {
	s := NewState()
	s.SetTurboTiming(2, 2)
	s.Ports[0].SetTurbo(ButtonA, true)

	// turboPhase starts false (off); after 2 AdvanceTurboPhase calls it flips on.
	if s.turboPhase {
		t.Fatal("expected turbo phase to start off")
	}
	s.AdvanceTurboPhase()
	s.AdvanceTurboPhase()
	if !s.turboPhase {
		t.Error("expected turbo phase on after onFrames/offFrames elapsed")
	}

	v := s.Ports[0].effective(s.turboPhase)
	if v&uint8(ButtonA) == 0 {
		t.Error("expected turbo-masked button A to be set during on phase")
	}
	v = s.Ports[0].effective(false)
	if v&uint8(ButtonA) != 0 {
		t.Error("expected turbo-masked button A to be clear when turbo phase is off")
	}
}

func TestState_ResetClearsEverything(t *testing.T) {
	s := NewState()
	s.Ports[0].SetMask(0xFF)
	s.Ports[1].SetTurbo(ButtonB, true)
	s.Write(0x4016, 1)

	s.Reset()

	if s.Ports[0].padMask.Load() != 0 {
		t.Error("expected pad mask cleared after Reset")
	}
	if s.Ports[1].turboMask.Load() != 0 {
		t.Error("expected turbo mask cleared after Reset")
	}
	if s.Ports[0].strobe {
		t.Error("expected strobe cleared after Reset")
	}
}
