package imu

import (
	"errors"
	"testing"
	"time"
)

type fakeRegIO struct {
	regs   map[byte][]byte
	writes []writeOp

	readErrFor map[byte]error
}

type writeOp struct {
	reg byte
	val byte
}

func (f *fakeRegIO) ReadReg(reg byte, n int) ([]byte, error) {
	if err := f.readErrFor[reg]; err != nil {
		return nil, err
	}
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
	f.writes = append(f.writes, writeOp{reg: reg, val: value})
	return nil
}

func stubSleep(t *testing.T) {
	t.Helper()
	oldSleep := sleep
	sleep = func(time.Duration) {}
	t.Cleanup(func() { sleep = oldSleep })
}

func TestNew_WhoAmIMismatch(t *testing.T) {
	stubSleep(t)

	f := &fakeRegIO{regs: map[byte][]byte{regWhoAmI: {0x71}}}
	if _, err := newWithIO(f); err == nil {
		t.Fatal("expected error for foreign whoami")
	}
}

func TestNew_BringUpSequence(t *testing.T) {
	stubSleep(t)

	f := &fakeRegIO{regs: map[byte][]byte{regWhoAmI: {whoAmIVal}}}
	if _, err := newWithIO(f); err != nil {
		t.Fatalf("newWithIO: %v", err)
	}

	var sawReset, sawWake, sawBypass, sawMasterOff bool
	for _, w := range f.writes {
		switch {
		case w.reg == regPwrMgmt1 && w.val == bitDeviceReset:
			sawReset = true
		case w.reg == regPwrMgmt1 && w.val == 0x00:
			sawWake = true
		case w.reg == regUserCtrl && w.val == 0x00:
			sawMasterOff = true
		case w.reg == regIntPinCfg && w.val == bitBypassEn:
			sawBypass = true
		}
	}
	if !sawReset || !sawWake {
		t.Fatalf("expected reset+wake writes to PWR_MGMT_1, got %v", f.writes)
	}
	if !sawMasterOff || !sawBypass {
		t.Fatalf("expected aux master off + bypass enable, got %v", f.writes)
	}
}

func TestReadFrame_DecodesBurst(t *testing.T) {
	stubSleep(t)

	f := &fakeRegIO{regs: map[byte][]byte{regWhoAmI: {whoAmIVal}}}
	f.regs[regAccelXoutH] = []byte{
		0x00, 0x00,
		0x00, 0x00,
		0x40, 0x00, // az = 16384 (flat, 1g)
		0x00, 0x00,
		0x00, 0x83, // gx = 131
		0x00, 0x00,
		0xFF, 0x7D, // gz = -131
	}

	d, err := newWithIO(f)
	if err != nil {
		t.Fatalf("newWithIO: %v", err)
	}

	frame, err := d.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if frame.Az != 16384 || frame.Gx != 131 || frame.Gz != -131 {
		t.Fatalf("frame = %+v", frame)
	}
}

func TestReadFrame_SurfacesBusError(t *testing.T) {
	stubSleep(t)

	busErr := errors.New("boom")
	f := &fakeRegIO{
		regs:       map[byte][]byte{regWhoAmI: {whoAmIVal}},
		readErrFor: map[byte]error{},
	}
	d, err := newWithIO(f)
	if err != nil {
		t.Fatalf("newWithIO: %v", err)
	}

	f.readErrFor[regAccelXoutH] = busErr
	if _, err := d.ReadFrame(); !errors.Is(err, busErr) {
		t.Fatalf("err = %v, want wrapped bus error", err)
	}
}
