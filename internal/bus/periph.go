// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package bus

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
)

// Status codes surfaced through EndTransmission. The zero value means the
// transaction completed; anything else is carried to callers as a
// StatusError.
const (
	statusOK      byte = 0
	statusBusFail byte = 4
)

// I2CTransport adapts a periph.io I2C bus to the Transport shape.
//
// periph exposes whole transactions rather than phases, so the addressing
// phase is buffered here: a held EndTransmission defers the write and the
// following RequestFrom issues one combined write+read Tx, which is how
// the repeated start reaches the wire.
type I2CTransport struct {
	bus i2c.Bus

	addr    uint16
	wbuf    []byte
	held    []byte
	pending bool

	rbuf []byte
}

func NewI2CTransport(b i2c.Bus) *I2CTransport {
	return &I2CTransport{bus: b}
}

// OpenI2C opens the named periph I2C bus ("" selects the first available
// one) and wraps it in a transport. The returned close function releases
// the bus.
func OpenI2C(name string) (*I2CTransport, func() error, error) {
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, nil, fmt.Errorf("bus: open i2c %q: %w", name, err)
	}
	return NewI2CTransport(b), b.Close, nil
}

func (t *I2CTransport) BeginTransmission(addr uint16) {
	t.addr = addr
	t.wbuf = t.wbuf[:0]
	t.pending = false
}

func (t *I2CTransport) Write(p []byte) (int, error) {
	t.wbuf = append(t.wbuf, p...)
	return len(p), nil
}

func (t *I2CTransport) EndTransmission(hold bool) byte {
	if hold {
		// Keep ownership: the write goes out combined with the next read.
		t.held = append(t.held[:0], t.wbuf...)
		t.pending = true
		return statusOK
	}
	if err := t.bus.Tx(t.addr, t.wbuf, nil); err != nil {
		return statusBusFail
	}
	return statusOK
}

func (t *I2CTransport) RequestFrom(addr uint16, n int) (int, error) {
	var w []byte
	if t.pending && addr == t.addr {
		w = t.held
		t.pending = false
	}
	r := make([]byte, n)
	if err := t.bus.Tx(addr, w, r); err != nil {
		return 0, fmt.Errorf("bus: i2c tx addr 0x%02X: %w", addr, err)
	}
	t.rbuf = r
	return n, nil
}

func (t *I2CTransport) ReadByte() (byte, error) {
	if len(t.rbuf) == 0 {
		return 0, errors.New("bus: no received byte pending")
	}
	b := t.rbuf[0]
	t.rbuf = t.rbuf[1:]
	return b, nil
}
