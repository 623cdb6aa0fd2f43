package mag

import (
	"errors"
	"testing"
)

type fakeRegIO struct {
	regs   map[byte][]byte
	writes map[byte]byte
}

func (f *fakeRegIO) ReadReg(reg byte, n int) ([]byte, error) {
	b := f.regs[reg]
	if len(b) < n {
		return nil, errors.New("no reg")
	}
	return append([]byte(nil), b[:n]...), nil
}

func (f *fakeRegIO) ReadRegU8(reg byte) (byte, error) {
	b, err := f.ReadReg(reg, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (f *fakeRegIO) WriteRegU8(reg, value byte) error {
	if f.writes == nil {
		f.writes = map[byte]byte{}
	}
	f.writes[reg] = value
	return nil
}

func TestNew_RejectsForeignID(t *testing.T) {
	f := &fakeRegIO{regs: map[byte][]byte{regIDA: {'X'}}}
	if _, err := newWithIO(f); err == nil {
		t.Fatal("expected error for foreign ID register")
	}
}

func TestNew_ConfiguresContinuousMode(t *testing.T) {
	f := &fakeRegIO{regs: map[byte][]byte{regIDA: {idAValue}}}
	if _, err := newWithIO(f); err != nil {
		t.Fatalf("newWithIO: %v", err)
	}
	if f.writes[regConfigA] != cfgAValue {
		t.Fatalf("CONFIG_A = 0x%02X, want 0x%02X", f.writes[regConfigA], cfgAValue)
	}
	if f.writes[regMode] != modeContinuous {
		t.Fatalf("MODE = 0x%02X, want continuous", f.writes[regMode])
	}
}

func TestReadRaw_XZYOrder(t *testing.T) {
	f := &fakeRegIO{regs: map[byte][]byte{
		regIDA: {idAValue},
		// X=0x0102, Z=0x0304, Y=0x0506 in register order.
		regDataXH: {0x01, 0x02, 0x03, 0x04, 0x05, 0x06},
	}}
	d, err := newWithIO(f)
	if err != nil {
		t.Fatalf("newWithIO: %v", err)
	}

	mx, my, mz, err := d.ReadRaw()
	if err != nil {
		t.Fatalf("ReadRaw: %v", err)
	}
	if mx != 0x0102 || my != 0x0506 || mz != 0x0304 {
		t.Fatalf("ReadRaw = %d,%d,%d; register order X,Z,Y not honored", mx, my, mz)
	}
}
