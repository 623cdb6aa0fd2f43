package bus

import (
	"errors"
	"testing"
)

// fakeTransport scripts transport behavior at the phase level.
type fakeTransport struct {
	// Bytes the device returns on RequestFrom.
	data []byte

	// Overrides.
	acceptPerWrite int  // if >0, cap on bytes accepted per Write call
	endStatus      byte // returned from EndTransmission
	available      int  // if >=0, overrides available count
	writeErr       error

	begun  []uint16
	writes [][]byte
	holds  []bool

	rbuf []byte
}

func newFakeTransport(data []byte) *fakeTransport {
	return &fakeTransport{data: data, available: -1}
}

func (f *fakeTransport) BeginTransmission(addr uint16) {
	f.begun = append(f.begun, addr)
}

func (f *fakeTransport) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	f.writes = append(f.writes, append([]byte(nil), p...))
	if f.acceptPerWrite > 0 && len(p) > f.acceptPerWrite {
		return f.acceptPerWrite, nil
	}
	return len(p), nil
}

func (f *fakeTransport) EndTransmission(hold bool) byte {
	f.holds = append(f.holds, hold)
	return f.endStatus
}

func (f *fakeTransport) RequestFrom(addr uint16, n int) (int, error) {
	f.rbuf = append([]byte(nil), f.data...)
	if f.available >= 0 {
		return f.available, nil
	}
	return len(f.data), nil
}

func (f *fakeTransport) ReadByte() (byte, error) {
	if len(f.rbuf) == 0 {
		return 0, errors.New("fake: empty")
	}
	b := f.rbuf[0]
	f.rbuf = f.rbuf[1:]
	return b, nil
}

func TestReadReg_HoldsBusAcrossAddressing(t *testing.T) {
	f := newFakeTransport([]byte{0xAA, 0xBB})
	d := NewDev(f, 0x68)

	got, err := d.ReadReg(0x3B, 2)
	if err != nil {
		t.Fatalf("ReadReg: %v", err)
	}
	if got[0] != 0xAA || got[1] != 0xBB {
		t.Fatalf("ReadReg = % X, want AA BB", got)
	}
	if len(f.holds) != 1 || !f.holds[0] {
		t.Fatalf("expected a single held EndTransmission, got %v", f.holds)
	}
	if len(f.writes) != 1 || len(f.writes[0]) != 1 || f.writes[0][0] != 0x3B {
		t.Fatalf("expected single register-select write of 0x3B, got %v", f.writes)
	}
}

func TestReadReg_Errors(t *testing.T) {
	t.Run("address byte not accepted", func(t *testing.T) {
		f := newFakeTransport(nil)
		d := NewDev(&shortWriter{fakeTransport: f}, 0x68)
		_, err := d.ReadReg(0x3B, 2)
		if !errors.Is(err, ErrAddressWrite) {
			t.Fatalf("err = %v, want ErrAddressWrite", err)
		}
	})

	t.Run("nonzero termination status", func(t *testing.T) {
		f := newFakeTransport(nil)
		f.endStatus = 2
		d := NewDev(f, 0x68)
		_, err := d.ReadReg(0x3B, 2)
		var se *StatusError
		if !errors.As(err, &se) {
			t.Fatalf("err = %v, want StatusError", err)
		}
		if se.Code != 2 {
			t.Fatalf("status code = %d, want 2", se.Code)
		}
	})

	t.Run("short read", func(t *testing.T) {
		f := newFakeTransport([]byte{0x01})
		f.available = 1
		d := NewDev(f, 0x68)
		_, err := d.ReadReg(0x3B, 14)
		if !errors.Is(err, ErrShortRead) {
			t.Fatalf("err = %v, want ErrShortRead", err)
		}
	})
}

// shortWriter accepts zero bytes on every Write.
type shortWriter struct {
	*fakeTransport
}

func (s *shortWriter) Write(p []byte) (int, error) { return 0, nil }

func TestWriteReg_ShortPayload(t *testing.T) {
	f := newFakeTransport(nil)
	f.acceptPerWrite = 1 // accepts the address byte, truncates the payload
	d := NewDev(f, 0x68)

	err := d.WriteReg(0x6B, []byte{0x00, 0x01})
	if !errors.Is(err, ErrShortWrite) {
		t.Fatalf("err = %v, want ErrShortWrite", err)
	}
}

func TestWriteReg_PropagatesStatus(t *testing.T) {
	f := newFakeTransport(nil)
	f.endStatus = 4
	d := NewDev(f, 0x68)

	err := d.WriteRegU8(0x6B, 0x00)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want StatusError", err)
	}
	if se.Code != 4 {
		t.Fatalf("status code = %d, want 4", se.Code)
	}
	// Write path must not hold the bus.
	if len(f.holds) != 1 || f.holds[0] {
		t.Fatalf("expected a single released EndTransmission, got %v", f.holds)
	}
}

func TestWriteRegU8_Success(t *testing.T) {
	f := newFakeTransport(nil)
	d := NewDev(f, 0x1E)

	if err := d.WriteRegU8(0x02, 0x00); err != nil {
		t.Fatalf("WriteRegU8: %v", err)
	}
	if len(f.writes) != 2 {
		t.Fatalf("expected 2 writes (reg select + payload), got %d", len(f.writes))
	}
	if f.writes[0][0] != 0x02 || f.writes[1][0] != 0x00 {
		t.Fatalf("unexpected write sequence %v", f.writes)
	}
	if f.begun[0] != 0x1E {
		t.Fatalf("transaction addressed 0x%02X, want 0x1E", f.begun[0])
	}
}
