package wire

import (
	"encoding/binary"
	"errors"
)

// Message types carried in the frame header.
const (
	MsgUnknown   uint8 = iota
	MsgStart           // start request: payload is an encoded Request
	MsgInterrupt       // interrupt request: payload is an encoded Interrupt
	MsgResult          // reply: payload is an encoded Response
	MsgError           // reply: payload is an encoded Failure
	MsgAck             // empty acknowledgement (interrupt success)
)

// Fixed header layout (28 bytes) for fast parsing over any channel.
// All integer fields are little-endian.
//
//	0 ..1   Magic   'T''W' (0x5457)
//	2       Version u8
//	3       Type    u8
//	4 ..7   Flags   u32
//	8 ..11  PayloadLen u32
//	12..27  Correlation [16]byte
const (
	headerSize = 28
	magicWord  = uint16(0x5457) // 'T''W'
)

// Version is the current protocol version.
const Version = 1

// Header describes metadata for one frame.
type Header struct {
	Version     uint8
	Type        uint8
	Flags       uint32
	PayloadLen  uint32
	Correlation [16]byte
}

// MarshalBinary encodes the header into a 28-byte buffer.
func (h *Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, headerSize)
	binary.LittleEndian.PutUint16(buf[0:2], magicWord)
	buf[2] = h.Version
	buf[3] = h.Type
	binary.LittleEndian.PutUint32(buf[4:8], h.Flags)
	binary.LittleEndian.PutUint32(buf[8:12], h.PayloadLen)
	copy(buf[12:28], h.Correlation[:])
	return buf, nil
}

// UnmarshalBinary decodes the header from a 28-byte buffer.
func (h *Header) UnmarshalBinary(buf []byte) error {
	if len(buf) < headerSize {
		return errors.New("wire: short header")
	}
	if binary.LittleEndian.Uint16(buf[0:2]) != magicWord {
		return errors.New("wire: bad magic")
	}
	h.Version = buf[2]
	h.Type = buf[3]
	h.Flags = binary.LittleEndian.Uint32(buf[4:8])
	h.PayloadLen = binary.LittleEndian.Uint32(buf[8:12])
	copy(h.Correlation[:], buf[12:28])
	return nil
}
