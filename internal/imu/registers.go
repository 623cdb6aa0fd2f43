// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

// RegisterInfo describes one device register for the debug tool.
type RegisterInfo struct {
	Address     byte       `json:"addr"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Access      string     `json:"access"`
	BitFields   []BitField `json:"bit_fields,omitempty"`
}

// BitField describes a named group of bits within a register.
type BitField struct {
	Bits        string `json:"bits"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Values      string `json:"values,omitempty"`
}

// RegisterMap returns metadata for the MPU-6050 registers this project
// touches, plus the burst data block, for the register debug tool.
func RegisterMap() []RegisterInfo {
	return []RegisterInfo{
		{Address: regSmplrtDiv, Name: "SMPLRT_DIV", Description: "Sample Rate Divider", Access: "RW",
			BitFields: []BitField{
				{Bits: "7:0", Name: "SMPLRT_DIV", Description: "Sample Rate = Gyro Output Rate / (1 + SMPLRT_DIV)", Values: "0-255"},
			}},
		{Address: regConfig, Name: "CONFIG", Description: "Configuration (DLPF, FSYNC)", Access: "RW",
			BitFields: []BitField{
				{Bits: "5:3", Name: "EXT_SYNC_SET", Description: "External FSYNC pin sampling", Values: "0=Disabled"},
				{Bits: "2:0", Name: "DLPF_CFG", Description: "Digital Low Pass Filter", Values: "0=260Hz, 1=184Hz, 2=94Hz, 3=44Hz, 4=21Hz, 5=10Hz, 6=5Hz"},
			}},
		{Address: regGyroConfig, Name: "GYRO_CONFIG", Description: "Gyroscope Configuration", Access: "RW",
			BitFields: []BitField{
				{Bits: "7", Name: "XG_ST", Description: "X Gyro self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "6", Name: "YG_ST", Description: "Y Gyro self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "5", Name: "ZG_ST", Description: "Z Gyro self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "4:3", Name: "FS_SEL", Description: "Gyro Full Scale Range", Values: "0=±250°/s (131 LSB/°/s), 1=±500°/s, 2=±1000°/s, 3=±2000°/s"},
			}},
		{Address: regAccelConfig, Name: "ACCEL_CONFIG", Description: "Accelerometer Configuration", Access: "RW",
			BitFields: []BitField{
				{Bits: "7", Name: "XA_ST", Description: "X Accel self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "6", Name: "YA_ST", Description: "Y Accel self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "5", Name: "ZA_ST", Description: "Z Accel self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "4:3", Name: "AFS_SEL", Description: "Accel Full Scale Range", Values: "0=±2g (16384 LSB/g), 1=±4g, 2=±8g, 3=±16g"},
			}},
		{Address: regIntPinCfg, Name: "INT_PIN_CFG", Description: "INT Pin / Bypass Enable Configuration", Access: "RW",
			BitFields: []BitField{
				{Bits: "7", Name: "INT_LEVEL", Description: "INT pin active low", Values: "0=Active high, 1=Active low"},
				{Bits: "1", Name: "I2C_BYPASS_EN", Description: "Auxiliary bus bypass", Values: "0=Disabled, 1=Host reaches aux devices directly"},
			}},
		{Address: regAccelXoutH, Name: "ACCEL_XOUT_H", Description: "Start of the 14-byte accel/temp/gyro burst", Access: "R"},
		{Address: 0x41, Name: "TEMP_OUT_H", Description: "Temperature High Byte", Access: "R"},
		{Address: 0x43, Name: "GYRO_XOUT_H", Description: "Gyroscope X-Axis High Byte", Access: "R"},
		{Address: regUserCtrl, Name: "USER_CTRL", Description: "User Control", Access: "RW",
			BitFields: []BitField{
				{Bits: "6", Name: "FIFO_EN", Description: "FIFO enable", Values: "0=Disabled, 1=Enabled"},
				{Bits: "5", Name: "I2C_MST_EN", Description: "Auxiliary bus master mode", Values: "0=Off (required for bypass), 1=On"},
			}},
		{Address: regPwrMgmt1, Name: "PWR_MGMT_1", Description: "Power Management 1", Access: "RW",
			BitFields: []BitField{
				{Bits: "7", Name: "DEVICE_RESET", Description: "Reset all registers", Values: "1=Reset"},
				{Bits: "6", Name: "SLEEP", Description: "Sleep mode", Values: "0=Awake, 1=Sleep"},
				{Bits: "2:0", Name: "CLKSEL", Description: "Clock source", Values: "0=Internal 8MHz, 1-5=PLL"},
			}},
		{Address: regWhoAmI, Name: "WHO_AM_I", Description: "Device identity (0x68)", Access: "R"},
	}
}

// ReadRegister reads one register for the debug tool.
func (d *Device) ReadRegister(reg byte) (byte, error) {
	return d.dev.ReadRegU8(reg)
}
