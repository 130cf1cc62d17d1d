package cartridge

import "testing"

func TestA12Watcher_DetectsFallAndRiseWithDelay(t *testing.T) {
	w := NewA12Watcher(89342)

	if got := w.UpdateVRAMAddress(0x0000, 0, 10); got != A12Fall {
		t.Fatalf("expected A12Fall on first low observation, got %v", got)
	}
	// Rising again immediately (low time 5 <= minDelay 10) should not count.
	if got := w.UpdateVRAMAddress(0x1000, 5, 10); got != A12None {
		t.Errorf("expected A12None for a too-short low period, got %v", got)
	}

	w.Reset()
	if got := w.UpdateVRAMAddress(0x0000, 0, 10); got != A12Fall {
		t.Fatalf("expected A12Fall after reset, got %v", got)
	}
	// Low for 15 cycles (> minDelay 10) before rising should count.
	if got := w.UpdateVRAMAddress(0x1000, 15, 10); got != A12Rise {
		t.Errorf("expected A12Rise after sufficient low time, got %v", got)
	}
}

func TestA12Watcher_AccountsForFrameWrap(t *testing.T) {
	frameLen := uint32(100)
	w := NewA12Watcher(frameLen)

	if got := w.UpdateVRAMAddress(0x0000, 90, 10); got != A12Fall {
		t.Fatalf("expected A12Fall, got %v", got)
	}
	// Frame wraps from 90 to 5: low time = (100-90)+5 = 15, which exceeds
	// minDelay 10 and should register as a rise.
	if got := w.UpdateVRAMAddress(0x1000, 5, 10); got != A12Rise {
		t.Errorf("expected A12Rise across frame wrap, got %v", got)
	}
}

func TestA12Watcher_StaysHighNoSpuriousFall(t *testing.T) {
	w := NewA12Watcher(89342)
	if got := w.Update(0x1000, 0); got != A12None {
		t.Errorf("expected A12None while A12 stays high, got %v", got)
	}
	if got := w.Update(0x1FFF, 5); got != A12None {
		t.Errorf("expected A12None for repeated high addresses, got %v", got)
	}
}
