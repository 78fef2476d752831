/*
Frame decoding for the SDS011 data reply.

Sensor sends 10 byte frames when in active reporting mode

	[0]    0xAA header
	[1]    0xC0 data reply
	[2..3] PM2.5 register, low byte first
	[4..5] PM10 register, low byte first
	[6..7] device id (reserved for decoding)
	[8]    checksum, sum of [2..7]
	[9]    0xAB tail (not checked)

Frames are decoded in fixed windows. No resyncing inside a window
*/
package pmsensor

import (
	"fmt"
	"strings"
)

const (
	FRAMESIZE  = 10
	FRAMESTART = 0xAA
	FRAMESTOP  = 0xAB
)

const COMMANDID_DATAREPLY = 0xC0 //First byte in data is not function number

// Checksum is the sum of payload bytes [2..7] modulo 256. Window must be at least 8 bytes
func Checksum(window []byte) byte {
	var result byte
	for _, b := range window[2:8] {
		result += b
	}
	return result
}

// Decode returns measurement if window is valid data frame. Anything else is just line noise
func Decode(window []byte) (Measurement, bool) {
	if len(window) != FRAMESIZE {
		return Measurement{}, false
	}
	if window[0] != FRAMESTART || window[1] != COMMANDID_DATAREPLY {
		return Measurement{}, false
	}
	if Checksum(window) != window[8] {
		return Measurement{}, false
	}
	return Measurement{
		PM25: float64(uint16(window[2])+uint16(window[3])*256) / 10,
		PM10: float64(uint16(window[4])+uint16(window[5])*256) / 10,
	}, true
}

// discardReason is for debug logging only
func discardReason(window []byte) string {
	switch {
	case len(window) != FRAMESIZE:
		return fmt.Sprintf("size %v", len(window))
	case window[0] != FRAMESTART:
		return fmt.Sprintf("header %X", window[0])
	case window[1] != COMMANDID_DATAREPLY:
		return fmt.Sprintf("command id 0x%X", window[1])
	case Checksum(window) != window[8]:
		return fmt.Sprintf("checksum %X expected %X", window[8], Checksum(window))
	}
	return ""
}

// EncodeFrame creates data reply like sensor does. Registers are 10*µg/m³
func EncodeFrame(pm25Reg uint16, pm10Reg uint16, deviceId uint16) []byte {
	result := []byte{FRAMESTART, COMMANDID_DATAREPLY,
		byte(pm25Reg & 0xFF), byte(pm25Reg >> 8),
		byte(pm10Reg & 0xFF), byte(pm10Reg >> 8),
		byte(deviceId >> 8), byte(deviceId & 0xFF),
		0, FRAMESTOP}
	result[8] = Checksum(result)
	return result
}

func FrameDebugText(window []byte) string { //Like in manual
	var sb strings.Builder
	sb.WriteString("--- frame ---\n")
	for index, v := range window {
		fmt.Fprintf(&sb, "[%v]=%X\n", index, v)
	}
	sb.WriteString("-------------\n")
	return sb.String()
}
