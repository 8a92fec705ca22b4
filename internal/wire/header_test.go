package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	theta "github.com/thetafeed/theta-go"
)

// buildHeader packs a 20-byte response header for tests.
func buildHeader(msgType uint16, id uint64, latency, errCode uint16, formatLen uint8, bodySize uint32) []byte {
	buf := make([]byte, HeaderSize)
	binary.BigEndian.PutUint16(buf[0:2], msgType)
	binary.BigEndian.PutUint64(buf[2:10], id)
	binary.BigEndian.PutUint16(buf[10:12], latency)
	binary.BigEndian.PutUint16(buf[12:14], errCode)
	buf[15] = formatLen
	binary.BigEndian.PutUint32(buf[16:20], bodySize)
	return buf
}

// TestParseHeader verifies field extraction from the fixed layout.
func TestParseHeader(t *testing.T) {
	buf := buildHeader(200, 42, 7, 0, 9, 4096)

	h, err := ParseHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, MsgHist, h.Type)
	assert.Equal(t, uint64(42), h.ID)
	assert.Equal(t, uint16(7), h.Latency)
	assert.Equal(t, uint16(0), h.Error)
	assert.Equal(t, uint8(9), h.FormatLen)
	assert.Equal(t, uint32(4096), h.BodySize)
}

// TestParseHeaderErrorFrame verifies an ERROR header carries its code and
// body size through untouched.
func TestParseHeaderErrorFrame(t *testing.T) {
	buf := buildHeader(101, 42, 0, 3, 0, 52)

	h, err := ParseHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, MsgError, h.Type)
	assert.Equal(t, uint16(3), h.Error)
	assert.Equal(t, uint32(52), h.BodySize)
}

// TestParseHeaderShort verifies truncated buffers classify as parse errors.
func TestParseHeaderShort(t *testing.T) {
	_, err := ParseHeader(make([]byte, HeaderSize-1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, theta.ErrParse))
}

// TestParseHeaderUnknownType verifies unknown message codes are rejected
// before any other field is read.
func TestParseHeaderUnknownType(t *testing.T) {
	buf := buildHeader(9999, 1, 0, 0, 0, 0)

	_, err := ParseHeader(buf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, theta.ErrEnumParse))
}

// TestReadHeader verifies exactly HeaderSize bytes are consumed and the
// remainder of the reader is left for the body.
func TestReadHeader(t *testing.T) {
	frame := append(buildHeader(203, 7, 1, 0, 0, 4), []byte("body")...)
	r := bytes.NewReader(frame)

	h, err := ReadHeader(r)
	require.NoError(t, err)
	assert.Equal(t, MsgHistEnd, h.Type)
	assert.Equal(t, uint64(7), h.ID)

	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "body", string(rest))
}

// TestReadHeaderTruncated verifies I/O errors pass through unwrapped so the
// caller can classify them against its deadline.
func TestReadHeaderTruncated(t *testing.T) {
	_, err := ReadHeader(bytes.NewReader(make([]byte, 5)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.False(t, errors.Is(err, theta.ErrParse))
}

// TestReadBody verifies full reads, empty bodies, and short-read errors.
func TestReadBody(t *testing.T) {
	body, err := ReadBody(bytes.NewReader([]byte("abcdef")), 6)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcdef"), body)

	body, err = ReadBody(bytes.NewReader(nil), 0)
	require.NoError(t, err)
	assert.Nil(t, body)

	_, err = ReadBody(bytes.NewReader([]byte("ab")), 6)
	require.Error(t, err)
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}

// TestMessageTypeFromCode verifies the closed vocabulary across all three
// code ranges.
func TestMessageTypeFromCode(t *testing.T) {
	tests := []struct {
		name    string
		code    uint16
		want    MessageType
		wantErr bool
	}{
		{"credentials", 0, MsgCredentials, false},
		{"ping", 100, MsgPing, false},
		{"error", 101, MsgError, false},
		{"kill", 108, MsgKill, false},
		{"hist", 200, MsgHist, false},
		{"stream remove", 212, MsgStreamRemove, false},
		{"gap below ping", 6, 0, true},
		{"past stream remove", 213, 0, true},
		{"far out", 9999, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MessageTypeFromCode(tt.code)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, theta.ErrEnumParse))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestMessageTypeString verifies wire names and the numeric fallback.
func TestMessageTypeString(t *testing.T) {
	assert.Equal(t, "HIST", MsgHist.String())
	assert.Equal(t, "ALL_EXPIRATIONS", MsgAllExpirations.String())
	assert.Equal(t, "MSG(500)", MessageType(500).String())
}
