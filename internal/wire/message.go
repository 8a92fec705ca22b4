// Package wire implements the Theta Terminal control-channel framing:
// ASCII request lines, the 20-byte big-endian response header, and
// read-until-full body framing. It never interprets body bytes; decoding
// belongs to the tick package.
package wire

import (
	"fmt"

	theta "github.com/thetafeed/theta-go"
)

// MessageType is the control-channel message vocabulary. Codes must match
// the wire exactly.
type MessageType uint16

// Session control codes.
const (
	MsgCredentials  MessageType = 0
	MsgSessionToken MessageType = 1
	MsgInfo         MessageType = 2
	MsgMetadata     MessageType = 3
	MsgConnected    MessageType = 4
	MsgVersion      MessageType = 5
)

// Terminal state codes.
const (
	MsgPing           MessageType = 100
	MsgError          MessageType = 101
	MsgDisconnected   MessageType = 102
	MsgReconnected    MessageType = 103
	MsgReqSyms        MessageType = 104
	MsgSetSyms        MessageType = 105
	MsgCantChangeSyms MessageType = 106
	MsgChangedSyms    MessageType = 107
	MsgKill           MessageType = 108
)

// Data request codes.
const (
	MsgHist           MessageType = 200
	MsgAllExpirations MessageType = 201
	MsgAllStrikes     MessageType = 202
	MsgHistEnd        MessageType = 203
	MsgLast           MessageType = 204
	MsgAllRoots       MessageType = 205
	MsgListEnd        MessageType = 206
	MsgAllDates       MessageType = 207
	MsgAtTime         MessageType = 208
	MsgAllDatesBulk   MessageType = 209
	MsgStreamReq      MessageType = 210
	MsgStreamCallback MessageType = 211
	MsgStreamRemove   MessageType = 212
)

var messageTypeNames = map[MessageType]string{
	MsgCredentials:    "CREDENTIALS",
	MsgSessionToken:   "SESSION_TOKEN",
	MsgInfo:           "INFO",
	MsgMetadata:       "METADATA",
	MsgConnected:      "CONNECTED",
	MsgVersion:        "VERSION",
	MsgPing:           "PING",
	MsgError:          "ERROR",
	MsgDisconnected:   "DISCONNECTED",
	MsgReconnected:    "RECONNECTED",
	MsgReqSyms:        "REQ_SYMS",
	MsgSetSyms:        "SET_SYMS",
	MsgCantChangeSyms: "CANT_CHANGE_SYMS",
	MsgChangedSyms:    "CHANGED_SYMS",
	MsgKill:           "KILL",
	MsgHist:           "HIST",
	MsgAllExpirations: "ALL_EXPIRATIONS",
	MsgAllStrikes:     "ALL_STRIKES",
	MsgHistEnd:        "HIST_END",
	MsgLast:           "LAST",
	MsgAllRoots:       "ALL_ROOTS",
	MsgListEnd:        "LIST_END",
	MsgAllDates:       "ALL_DATES",
	MsgAtTime:         "AT_TIME",
	MsgAllDatesBulk:   "ALL_DATES_BULK",
	MsgStreamReq:      "STREAM_REQ",
	MsgStreamCallback: "STREAM_CALLBACK",
	MsgStreamRemove:   "STREAM_REMOVE",
}

// MessageTypeFromCode maps a wire code to a MessageType. Unknown codes are
// a protocol error.
func MessageTypeFromCode(code uint16) (MessageType, error) {
	mt := MessageType(code)
	if _, ok := messageTypeNames[mt]; !ok {
		return 0, fmt.Errorf("%w: message type %d", theta.ErrEnumParse, code)
	}
	return mt, nil
}

// String returns the message type's wire name.
func (mt MessageType) String() string {
	if name, ok := messageTypeNames[mt]; ok {
		return name
	}
	return fmt.Sprintf("MSG(%d)", uint16(mt))
}
