// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package bus

import (
	"errors"
	"fmt"
)

// Transport is the physical byte-level bus under the register protocol.
// It mirrors the begin/write/end/request shape of small embedded serial
// bus stacks so the same transaction code runs against real hardware and
// against an in-memory fake.
//
// The implementation is external to this package; see NewI2CTransport for
// the periph.io-backed one.
type Transport interface {
	// BeginTransmission starts the addressing phase for the device at addr.
	BeginTransmission(addr uint16)
	// Write queues payload bytes for the current transmission and reports
	// how many the transport accepted.
	Write(p []byte) (int, error)
	// EndTransmission finishes the addressing phase and returns the bus
	// termination status (0 on success). When hold is true the bus is not
	// released, so a following RequestFrom continues with a repeated start.
	EndTransmission(hold bool) byte
	// RequestFrom reads n bytes from the device at addr and reports how
	// many are actually available.
	RequestFrom(addr uint16, n int) (int, error)
	// ReadByte pops one byte received by the last RequestFrom.
	ReadByte() (byte, error)
}

// Transaction failures, one per distinct condition. None of them is
// retried here; callers decide what a failed transaction means.
var (
	// ErrAddressWrite means the register-select byte was not fully
	// accepted by the transport.
	ErrAddressWrite = errors.New("bus: address byte not accepted")
	// ErrShortRead means fewer bytes were available than requested.
	ErrShortRead = errors.New("bus: short read")
	// ErrShortWrite means fewer payload bytes were accepted than given.
	ErrShortWrite = errors.New("bus: short write")
)

// StatusError carries a nonzero bus termination status.
type StatusError struct {
	Code byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bus: transaction terminated with status %d", e.Code)
}

// Dev binds a Transport to one 7-bit device address and provides
// register-level transactions against it.
type Dev struct {
	tr   Transport
	addr uint16
}

func NewDev(tr Transport, addr uint16) *Dev {
	return &Dev{tr: tr, addr: addr}
}

// Addr returns the bound device address.
func (d *Dev) Addr() uint16 { return d.addr }

// ReadReg reads n consecutive register bytes starting at reg.
//
// The bus is not released between the addressing phase and the data phase
// (repeated start); the device relies on that to return a consistent
// multi-register burst.
func (d *Dev) ReadReg(reg byte, n int) ([]byte, error) {
	d.tr.BeginTransmission(d.addr)
	written, err := d.tr.Write([]byte{reg})
	if err != nil {
		return nil, fmt.Errorf("bus: select reg 0x%02X: %w", reg, err)
	}
	if written != 1 {
		return nil, fmt.Errorf("bus: select reg 0x%02X: %w", reg, ErrAddressWrite)
	}
	if status := d.tr.EndTransmission(true); status != 0 {
		return nil, fmt.Errorf("bus: select reg 0x%02X: %w", reg, &StatusError{Code: status})
	}

	avail, err := d.tr.RequestFrom(d.addr, n)
	if err != nil {
		return nil, fmt.Errorf("bus: read reg 0x%02X: %w", reg, err)
	}
	if avail < n {
		return nil, fmt.Errorf("bus: read reg 0x%02X: want %d bytes, have %d: %w", reg, n, avail, ErrShortRead)
	}

	out := make([]byte, n)
	for i := range out {
		b, err := d.tr.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("bus: read reg 0x%02X byte %d: %w", reg, i, err)
		}
		out[i] = b
	}
	return out, nil
}

// ReadRegU8 reads a single register byte.
func (d *Dev) ReadRegU8(reg byte) (byte, error) {
	b, err := d.ReadReg(reg, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// WriteReg writes p to consecutive registers starting at reg.
func (d *Dev) WriteReg(reg byte, p []byte) error {
	d.tr.BeginTransmission(d.addr)
	written, err := d.tr.Write([]byte{reg})
	if err != nil {
		return fmt.Errorf("bus: select reg 0x%02X: %w", reg, err)
	}
	if written != 1 {
		return fmt.Errorf("bus: select reg 0x%02X: %w", reg, ErrAddressWrite)
	}
	written, err = d.tr.Write(p)
	if err != nil {
		return fmt.Errorf("bus: write reg 0x%02X: %w", reg, err)
	}
	if written != len(p) {
		return fmt.Errorf("bus: write reg 0x%02X: accepted %d of %d bytes: %w", reg, written, len(p), ErrShortWrite)
	}
	if status := d.tr.EndTransmission(false); status != 0 {
		return fmt.Errorf("bus: write reg 0x%02X: %w", reg, &StatusError{Code: status})
	}
	return nil
}

// WriteRegU8 writes a single register byte.
func (d *Dev) WriteRegU8(reg, value byte) error {
	return d.WriteReg(reg, []byte{value})
}
