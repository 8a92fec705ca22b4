package stream

import (
	"encoding/binary"
	"fmt"
	"time"

	theta "github.com/thetafeed/theta-go"
	"github.com/thetafeed/theta-go/tick"
)

// Payload sizes by frame tag. Contract-bearing frames carry these bytes
// after the contract block.
const (
	quoteSize        = 44
	tradeSize        = 32
	ohlcvcSize       = 36
	openInterestSize = 8
	pingSize         = 4
	reqResponseSize  = 8
	dateSize         = 4
)

// ParseContract decodes the contract block that precedes quote, trade,
// ohlcvc, and open-interest payloads.
// Byte 0: root length n
// Bytes 1..n: root symbol (ASCII)
// Byte n+1: is_option flag
// Option contracts continue with:
// Bytes n+2..n+5: expiration (u32, YYYYMMDD)
// Byte n+6: is_call flag
// Byte n+7: reserved
// Bytes n+8..n+11: strike (u32, milli-USD)
func ParseContract(data []byte) (theta.Contract, error) {
	if len(data) < 2 {
		return theta.Contract{}, fmt.Errorf("%w: insufficient data for contract: got %d bytes, need at least 2", theta.ErrParse, len(data))
	}
	n := int(data[0])
	if len(data) < n+2 {
		return theta.Contract{}, fmt.Errorf("%w: insufficient data for contract root: got %d bytes, need %d", theta.ErrParse, len(data), n+2)
	}
	root := string(data[1 : 1+n])
	if data[n+1] == 0 {
		return theta.StockContract(root), nil
	}

	if len(data) < n+12 {
		return theta.Contract{}, fmt.Errorf("%w: insufficient data for option contract: got %d bytes, need %d", theta.ErrParse, len(data), n+12)
	}
	exp, err := theta.DateFromInt(int(binary.BigEndian.Uint32(data[n+2 : n+6])))
	if err != nil {
		return theta.Contract{}, fmt.Errorf("contract expiration: %w", err)
	}
	right := theta.RightPut
	if data[n+6] == 1 {
		right = theta.RightCall
	}
	strike := theta.Strike(binary.BigEndian.Uint32(data[n+8 : n+12]))
	return theta.OptionContract(root, exp, strike, right), nil
}

// ParseQuote decodes a 44-byte quote payload.
// Bytes 0-3: ms_of_day
// Bytes 4-7: bid_size
// Bytes 8-11: bid_exchange
// Bytes 12-15: bid_price (raw)
// Bytes 16-19: bid_condition
// Bytes 20-23: ask_size
// Bytes 24-27: ask_exchange
// Bytes 28-31: ask_price (raw)
// Bytes 32-35: ask_condition
// Bytes 36-39: price_type
// Bytes 40-43: date (YYYYMMDD)
func ParseQuote(data []byte) (Quote, error) {
	if len(data) < quoteSize {
		return Quote{}, fmt.Errorf("%w: insufficient data for quote: got %d bytes, need %d", theta.ErrParse, len(data), quoteSize)
	}

	mul, err := tick.PriceMultiplier(int32(binary.BigEndian.Uint32(data[36:40])))
	if err != nil {
		return Quote{}, fmt.Errorf("quote price type: %w", err)
	}
	bidExch, err := theta.ExchangeFromCode(int32(binary.BigEndian.Uint32(data[8:12])))
	if err != nil {
		return Quote{}, fmt.Errorf("quote bid exchange: %w", err)
	}
	askExch, err := theta.ExchangeFromCode(int32(binary.BigEndian.Uint32(data[24:28])))
	if err != nil {
		return Quote{}, fmt.Errorf("quote ask exchange: %w", err)
	}
	date, err := theta.DateFromInt(int(binary.BigEndian.Uint32(data[40:44])))
	if err != nil {
		return Quote{}, fmt.Errorf("quote date: %w", err)
	}

	return Quote{
		MsOfDay:      int32(binary.BigEndian.Uint32(data[0:4])),
		BidSize:      int32(binary.BigEndian.Uint32(data[4:8])),
		BidExchange:  bidExch,
		Bid:          float64(int32(binary.BigEndian.Uint32(data[12:16]))) * mul,
		BidCondition: theta.QuoteConditionFromCode(int32(binary.BigEndian.Uint32(data[16:20]))),
		AskSize:      int32(binary.BigEndian.Uint32(data[20:24])),
		AskExchange:  askExch,
		Ask:          float64(int32(binary.BigEndian.Uint32(data[28:32]))) * mul,
		AskCondition: theta.QuoteConditionFromCode(int32(binary.BigEndian.Uint32(data[32:36]))),
		Date:         date,
	}, nil
}

// ParseTrade decodes a 32-byte trade payload.
// Bytes 0-3: ms_of_day
// Bytes 4-7: sequence
// Bytes 8-11: size
// Bytes 12-15: condition
// Bytes 16-19: price (raw)
// Bytes 20-23: exchange
// Bytes 24-27: price_type
// Bytes 28-31: date (YYYYMMDD)
func ParseTrade(data []byte) (Trade, error) {
	if len(data) < tradeSize {
		return Trade{}, fmt.Errorf("%w: insufficient data for trade: got %d bytes, need %d", theta.ErrParse, len(data), tradeSize)
	}

	mul, err := tick.PriceMultiplier(int32(binary.BigEndian.Uint32(data[24:28])))
	if err != nil {
		return Trade{}, fmt.Errorf("trade price type: %w", err)
	}
	exch, err := theta.ExchangeFromCode(int32(binary.BigEndian.Uint32(data[20:24])))
	if err != nil {
		return Trade{}, fmt.Errorf("trade exchange: %w", err)
	}
	date, err := theta.DateFromInt(int(binary.BigEndian.Uint32(data[28:32])))
	if err != nil {
		return Trade{}, fmt.Errorf("trade date: %w", err)
	}

	return Trade{
		MsOfDay:   int32(binary.BigEndian.Uint32(data[0:4])),
		Sequence:  int64(binary.BigEndian.Uint32(data[4:8])),
		Size:      int32(binary.BigEndian.Uint32(data[8:12])),
		Condition: theta.TradeConditionFromCode(int32(binary.BigEndian.Uint32(data[12:16]))),
		Price:     float64(int32(binary.BigEndian.Uint32(data[16:20]))) * mul,
		Exchange:  exch,
		Date:      date,
	}, nil
}

// ParseOHLCVC decodes a 36-byte aggregation bar payload.
// Bytes 0-3: ms_of_day
// Bytes 4-7: open (raw)
// Bytes 8-11: high (raw)
// Bytes 12-15: low (raw)
// Bytes 16-19: close (raw)
// Bytes 20-23: volume
// Bytes 24-27: count
// Bytes 28-31: price_type
// Bytes 32-35: date (YYYYMMDD)
func ParseOHLCVC(data []byte) (OHLCVC, error) {
	if len(data) < ohlcvcSize {
		return OHLCVC{}, fmt.Errorf("%w: insufficient data for ohlcvc: got %d bytes, need %d", theta.ErrParse, len(data), ohlcvcSize)
	}

	mul, err := tick.PriceMultiplier(int32(binary.BigEndian.Uint32(data[28:32])))
	if err != nil {
		return OHLCVC{}, fmt.Errorf("ohlcvc price type: %w", err)
	}
	date, err := theta.DateFromInt(int(binary.BigEndian.Uint32(data[32:36])))
	if err != nil {
		return OHLCVC{}, fmt.Errorf("ohlcvc date: %w", err)
	}

	return OHLCVC{
		MsOfDay: int32(binary.BigEndian.Uint32(data[0:4])),
		Open:    float64(int32(binary.BigEndian.Uint32(data[4:8]))) * mul,
		High:    float64(int32(binary.BigEndian.Uint32(data[8:12]))) * mul,
		Low:     float64(int32(binary.BigEndian.Uint32(data[12:16]))) * mul,
		Close:   float64(int32(binary.BigEndian.Uint32(data[16:20]))) * mul,
		Volume:  int32(binary.BigEndian.Uint32(data[20:24])),
		Count:   int32(binary.BigEndian.Uint32(data[24:28])),
		Date:    date,
	}, nil
}

// ParseOpenInterest decodes an 8-byte open interest payload.
// Bytes 0-3: open_interest
// Bytes 4-7: date (YYYYMMDD)
func ParseOpenInterest(data []byte) (OpenInterest, error) {
	if len(data) < openInterestSize {
		return OpenInterest{}, fmt.Errorf("%w: insufficient data for open interest: got %d bytes, need %d", theta.ErrParse, len(data), openInterestSize)
	}

	date, err := theta.DateFromInt(int(binary.BigEndian.Uint32(data[4:8])))
	if err != nil {
		return OpenInterest{}, fmt.Errorf("open interest date: %w", err)
	}

	return OpenInterest{
		OpenInterest: int32(binary.BigEndian.Uint32(data[0:4])),
		Date:         date,
	}, nil
}

// ParseReqResponse decodes an 8-byte subscription ack payload.
// Bytes 0-3: request id
// Bytes 4-7: response code
func ParseReqResponse(data []byte) (ReqResponse, error) {
	if len(data) < reqResponseSize {
		return ReqResponse{}, fmt.Errorf("%w: insufficient data for req response: got %d bytes, need %d", theta.ErrParse, len(data), reqResponseSize)
	}
	return ReqResponse{
		ID:       int(binary.BigEndian.Uint32(data[0:4])),
		Response: ResponseType(binary.BigEndian.Uint32(data[4:8])),
	}, nil
}

// parseDate decodes the 4-byte tape date carried by START and STOP frames.
func parseDate(data []byte) (time.Time, error) {
	if len(data) < dateSize {
		return time.Time{}, fmt.Errorf("%w: insufficient data for date: got %d bytes, need %d", theta.ErrParse, len(data), dateSize)
	}
	return theta.DateFromInt(int(binary.BigEndian.Uint32(data[0:4])))
}
