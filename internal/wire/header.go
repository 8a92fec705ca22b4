package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	theta "github.com/thetafeed/theta-go"
)

// HeaderSize is the fixed length of a response header in bytes.
const HeaderSize = 20

// Header is the frame header preceding every control-channel response body.
//
// Wire layout (big-endian):
//
//	Bytes 0-2:   message type (uint16)
//	Bytes 2-10:  request id (uint64)
//	Bytes 10-12: latency ms (uint16)
//	Bytes 12-14: error code (uint16)
//	Byte  14:    reserved
//	Byte  15:    format length (uint8)
//	Bytes 16-20: body size (uint32)
type Header struct {
	Type      MessageType
	ID        uint64
	Latency   uint16
	Error     uint16
	FormatLen uint8
	BodySize  uint32
}

// ParseHeader decodes a 20-byte header buffer.
func ParseHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("%w: header too short: %d bytes", theta.ErrParse, len(buf))
	}

	mt, err := MessageTypeFromCode(binary.BigEndian.Uint16(buf[0:2]))
	if err != nil {
		return Header{}, err
	}

	return Header{
		Type:      mt,
		ID:        binary.BigEndian.Uint64(buf[2:10]),
		Latency:   binary.BigEndian.Uint16(buf[10:12]),
		Error:     binary.BigEndian.Uint16(buf[12:14]),
		FormatLen: buf[15],
		BodySize:  binary.BigEndian.Uint32(buf[16:20]),
	}, nil
}

// ReadHeader reads exactly HeaderSize bytes from r and decodes them.
// I/O errors are returned unwrapped so the caller can classify them
// against its deadline.
func ReadHeader(r io.Reader) (Header, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Header{}, err
	}
	return ParseHeader(buf[:])
}

// ReadBody reads exactly size bytes from r, looping over short reads.
func ReadBody(r io.Reader, size int) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	return body, nil
}
