package stream

import (
	"time"

	theta "github.com/thetafeed/theta-go"
)

// MsgType identifies a stream frame.
type MsgType uint8

// Stream frame tags
const (
	MsgPing         MsgType = 10 // keepalive, no event emitted
	MsgError        MsgType = 11
	MsgDisconnected MsgType = 12
	MsgReconnected  MsgType = 13
	MsgStop         MsgType = 14 // tape closed for the day
	MsgStart        MsgType = 15 // tape opened for the day
	MsgContract     MsgType = 20
	MsgQuote        MsgType = 21
	MsgTrade        MsgType = 22
	MsgOHLCVC       MsgType = 23
	MsgOpenInterest MsgType = 24
	MsgReqResponse  MsgType = 25

	// MsgStreamDead is synthesized locally when the session terminates. It
	// never appears on the wire and is always the final event of a session.
	MsgStreamDead MsgType = 99
)

// String returns the frame tag name.
func (t MsgType) String() string {
	switch t {
	case MsgPing:
		return "PING"
	case MsgError:
		return "ERROR"
	case MsgDisconnected:
		return "DISCONNECTED"
	case MsgReconnected:
		return "RECONNECTED"
	case MsgStop:
		return "STOP"
	case MsgStart:
		return "START"
	case MsgContract:
		return "CONTRACT"
	case MsgQuote:
		return "QUOTE"
	case MsgTrade:
		return "TRADE"
	case MsgOHLCVC:
		return "OHLCVC"
	case MsgOpenInterest:
		return "OPEN_INTEREST"
	case MsgReqResponse:
		return "REQ_RESPONSE"
	case MsgStreamDead:
		return "STREAM_DEAD"
	default:
		return "UNKNOWN"
	}
}

// ResponseType is the Terminal's verdict on a subscription request.
type ResponseType int

// Subscription verdicts. TimedOut is produced client-side when no ack
// arrives before the verify deadline.
const (
	TimedOut          ResponseType = -1
	Subscribed        ResponseType = 0
	MaxStreamsReached ResponseType = 1
	InvalidPerms      ResponseType = 2
)

// String returns the verdict name.
func (r ResponseType) String() string {
	switch r {
	case TimedOut:
		return "TIMED_OUT"
	case Subscribed:
		return "SUBSCRIBED"
	case MaxStreamsReached:
		return "MAX_STREAMS_REACHED"
	case InvalidPerms:
		return "INVALID_PERMS"
	default:
		return "UNKNOWN"
	}
}

// Quote is a top-of-book update (44-byte payload). Prices arrive as raw
// integers plus a PRICE_TYPE; both sides are scaled during parsing and the
// PRICE_TYPE is not retained.
type Quote struct {
	MsOfDay      int32                // Bytes 0-3: milliseconds since midnight ET
	BidSize      int32                // Bytes 4-7
	BidExchange  theta.Exchange       // Bytes 8-11
	Bid          float64              // Bytes 12-15: raw price, scaled
	BidCondition theta.QuoteCondition // Bytes 16-19
	AskSize      int32                // Bytes 20-23
	AskExchange  theta.Exchange       // Bytes 24-27
	Ask          float64              // Bytes 28-31: raw price, scaled
	AskCondition theta.QuoteCondition // Bytes 32-35
	Date         time.Time            // Bytes 40-43: YYYYMMDD
}

// Mid returns the quote midpoint.
func (q *Quote) Mid() float64 {
	return (q.Bid + q.Ask) / 2
}

// Spread returns ask minus bid.
func (q *Quote) Spread() float64 {
	return q.Ask - q.Bid
}

// Time combines Date and MsOfDay into a single instant.
func (q *Quote) Time() time.Time {
	return q.Date.Add(time.Duration(q.MsOfDay) * time.Millisecond)
}

// Trade is a single execution (32-byte payload).
type Trade struct {
	MsOfDay   int32                // Bytes 0-3: milliseconds since midnight ET
	Sequence  int64                // Bytes 4-7: u32 bit pattern, opaque ordering token
	Size      int32                // Bytes 8-11
	Condition theta.TradeCondition // Bytes 12-15
	Price     float64              // Bytes 16-19: raw price, scaled
	Exchange  theta.Exchange       // Bytes 20-23
	Date      time.Time            // Bytes 28-31: YYYYMMDD
}

// Time combines Date and MsOfDay into a single instant.
func (t *Trade) Time() time.Time {
	return t.Date.Add(time.Duration(t.MsOfDay) * time.Millisecond)
}

// OHLCVC is an intraday aggregation bar (36-byte payload).
type OHLCVC struct {
	MsOfDay int32     // Bytes 0-3: milliseconds since midnight ET
	Open    float64   // Bytes 4-7: raw price, scaled
	High    float64   // Bytes 8-11: raw price, scaled
	Low     float64   // Bytes 12-15: raw price, scaled
	Close   float64   // Bytes 16-19: raw price, scaled
	Volume  int32     // Bytes 20-23
	Count   int32     // Bytes 24-27
	Date    time.Time // Bytes 32-35: YYYYMMDD
}

// OpenInterest is a contract's open interest print (8-byte payload).
type OpenInterest struct {
	OpenInterest int32     // Bytes 0-3
	Date         time.Time // Bytes 4-7: YYYYMMDD
}

// ReqResponse is the Terminal's ack for a subscription request id.
type ReqResponse struct {
	ID       int
	Response ResponseType
}

// Msg is one event from a stream session. Type selects which payload field
// is populated; Contract is set for quote, trade, ohlcvc, and open-interest
// events. Msg is a value: it never aliases receiver-owned buffers and may be
// retained freely.
type Msg struct {
	Type     MsgType
	Contract theta.Contract

	Quote        Quote
	Trade        Trade
	OHLCVC       OHLCVC
	OpenInterest OpenInterest
	ReqResponse  ReqResponse

	// Date carries the tape date for START and STOP events.
	Date time.Time

	// Err carries detail for ERROR and STREAM_DEAD events.
	Err error
}

// Handler consumes events in callback mode. It runs on the receiver
// goroutine: a slow handler stalls the socket read loop.
type Handler func(Msg)
