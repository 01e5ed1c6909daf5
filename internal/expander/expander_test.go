package expander

import (
	"errors"
	"testing"
)

func TestPinMapping(t *testing.T) {
	tests := []struct {
		pin   Pin
		index int
		mask  uint16
		name  string
	}{
		{IO1, 0, 0x0001, "IO1"},
		{IO8, 7, 0x0080, "IO8"},
		{IO9, 8, 0x0100, "IO9"},
		{IO10, 9, 0x0200, "IO10"},
		{IO15, 14, 0x4000, "IO15"},
		{IO16, 15, 0x8000, "IO16"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.pin.Valid() {
				t.Fatalf("%s should be valid", tt.name)
			}
			if got := tt.pin.Index(); got != tt.index {
				t.Errorf("Index: got %d, want %d", got, tt.index)
			}
			if got := tt.pin.Mask(); got != tt.mask {
				t.Errorf("Mask: got 0x%04x, want 0x%04x", got, tt.mask)
			}
			if got := tt.pin.String(); got != tt.name {
				t.Errorf("String: got %q, want %q", got, tt.name)
			}
			p, err := PinFromIndex(tt.index)
			if err != nil {
				t.Fatalf("PinFromIndex(%d): %v", tt.index, err)
			}
			if p != tt.pin {
				t.Errorf("PinFromIndex(%d): got %s, want %s", tt.index, p, tt.pin)
			}
		})
	}
}

func TestPinInvalid(t *testing.T) {
	if Pin(0).Valid() {
		t.Error("Pin(0) should be invalid")
	}
	if Pin(17).Valid() {
		t.Error("Pin(17) should be invalid")
	}
	for _, i := range []int{-1, 16} {
		if _, err := PinFromIndex(i); !errors.Is(err, ErrInvalidPin) {
			t.Errorf("PinFromIndex(%d): expected ErrInvalidPin, got %v", i, err)
		}
	}
}

func TestDefaultMask(t *testing.T) {
	for p := IO1; p <= IO14; p++ {
		if DefaultMask&p.Mask() == 0 {
			t.Errorf("%s should be an input in DefaultMask", p)
		}
	}
	for _, p := range []Pin{IO15, IO16} {
		if DefaultMask&p.Mask() != 0 {
			t.Errorf("%s should be an output in DefaultMask", p)
		}
	}
}

func TestLevelString(t *testing.T) {
	if High.String() != "HIGH" {
		t.Errorf("High: got %q", High.String())
	}
	if Low.String() != "LOW" {
		t.Errorf("Low: got %q", Low.String())
	}
}
