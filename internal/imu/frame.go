// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"encoding/binary"
	"fmt"
)

// FrameLen is the size of one raw sensor burst: seven 16-bit fields.
const FrameLen = 14

// RawFrame is one decoded sensor burst. Values are device-native counts;
// scaling to physical units happens downstream.
type RawFrame struct {
	Ax   int16 `json:"ax"`
	Ay   int16 `json:"ay"`
	Az   int16 `json:"az"`
	Temp int16 `json:"temp"`
	Gx   int16 `json:"gx"`
	Gy   int16 `json:"gy"`
	Gz   int16 `json:"gz"`
}

// DecodeFrame turns a 14-byte burst payload into a RawFrame.
//
// Each 16-bit field arrives high-byte-first on the wire. The two bytes of
// every field are swapped in place and the buffer is then reinterpreted as
// native little-endian words, so the decode is an exact bit
// reinterpretation with no rounding anywhere.
func DecodeFrame(p []byte) (RawFrame, error) {
	if len(p) != FrameLen {
		return RawFrame{}, fmt.Errorf("imu: frame payload is %d bytes, want %d", len(p), FrameLen)
	}

	var b [FrameLen]byte
	copy(b[:], p)
	for i := 0; i < FrameLen; i += 2 {
		b[i], b[i+1] = b[i+1], b[i]
	}

	return RawFrame{
		Ax:   int16(binary.LittleEndian.Uint16(b[0:2])),
		Ay:   int16(binary.LittleEndian.Uint16(b[2:4])),
		Az:   int16(binary.LittleEndian.Uint16(b[4:6])),
		Temp: int16(binary.LittleEndian.Uint16(b[6:8])),
		Gx:   int16(binary.LittleEndian.Uint16(b[8:10])),
		Gy:   int16(binary.LittleEndian.Uint16(b[10:12])),
		Gz:   int16(binary.LittleEndian.Uint16(b[12:14])),
	}, nil
}

// EncodeFrame is the inverse of DecodeFrame: it re-swaps the fields back
// into their wire layout.
func EncodeFrame(f RawFrame) []byte {
	b := make([]byte, FrameLen)
	binary.BigEndian.PutUint16(b[0:2], uint16(f.Ax))
	binary.BigEndian.PutUint16(b[2:4], uint16(f.Ay))
	binary.BigEndian.PutUint16(b[4:6], uint16(f.Az))
	binary.BigEndian.PutUint16(b[6:8], uint16(f.Temp))
	binary.BigEndian.PutUint16(b[8:10], uint16(f.Gx))
	binary.BigEndian.PutUint16(b[10:12], uint16(f.Gy))
	binary.BigEndian.PutUint16(b[12:14], uint16(f.Gz))
	return b
}
