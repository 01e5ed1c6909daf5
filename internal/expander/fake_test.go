package expander

import (
	"errors"
	"testing"
)

func TestFakeDeviceRecords(t *testing.T) {
	f := NewFakeDevice()

	if err := f.Configure(DefaultMask); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	f.Write(IO15, High)
	f.Write(IO16, Low)

	if got := f.Configures(); len(got) != 1 || got[0] != DefaultMask {
		t.Errorf("Configures: got %v", got)
	}
	want := []PinWrite{{IO15, High}, {IO16, Low}}
	got := f.Writes()
	if len(got) != len(want) {
		t.Fatalf("expected %d writes, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("write %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestFakeDeviceErrors(t *testing.T) {
	f := NewFakeDevice()
	f.ConfigureError = errors.New("configure failed")
	f.WriteError = errors.New("write failed")

	if err := f.Configure(DefaultMask); err == nil {
		t.Error("expected Configure error")
	}
	if err := f.Write(IO15, High); err == nil {
		t.Error("expected Write error")
	}
	if len(f.Configures()) != 0 || len(f.Writes()) != 0 {
		t.Error("failed calls should not be recorded")
	}
}

func TestFakeDeviceOnWrite(t *testing.T) {
	f := NewFakeDevice()
	var seen []PinWrite
	f.OnWrite = func(w PinWrite) { seen = append(seen, w) }

	f.Write(IO16, High)

	if len(seen) != 1 || seen[0] != (PinWrite{IO16, High}) {
		t.Errorf("OnWrite: got %v", seen)
	}
}

func TestFakeDeviceClose(t *testing.T) {
	f := NewFakeDevice()
	if f.Closed() {
		t.Error("should not be closed initially")
	}
	f.Close()
	if !f.Closed() {
		t.Error("should be closed after Close()")
	}
}
