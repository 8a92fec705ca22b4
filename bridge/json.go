package bridge

import (
	"github.com/mailru/easyjson/jwriter"

	theta "github.com/thetafeed/theta-go"
	"github.com/thetafeed/theta-go/stream"
)

// EncodeMsg marshals one stream event to JSON. The writers are hand-rolled
// on easyjson's jwriter: Broadcast marshals every event exactly once per
// tick, which is too hot for encoding/json's reflection.
func EncodeMsg(m *stream.Msg) ([]byte, error) {
	w := jwriter.Writer{NoEscapeHTML: true}
	writeMsg(&w, m)
	return w.BuildBytes()
}

func writeMsg(w *jwriter.Writer, m *stream.Msg) {
	w.RawByte('{')
	w.RawString(`"type":`)
	w.String(m.Type.String())

	if m.Contract.Root != "" {
		w.RawString(`,"contract":`)
		writeContract(w, &m.Contract)
	}

	switch m.Type {
	case stream.MsgQuote:
		w.RawString(`,"quote":`)
		writeQuote(w, &m.Quote)
	case stream.MsgTrade:
		w.RawString(`,"trade":`)
		writeTrade(w, &m.Trade)
	case stream.MsgOHLCVC:
		w.RawString(`,"ohlcvc":`)
		writeOHLCVC(w, &m.OHLCVC)
	case stream.MsgOpenInterest:
		w.RawString(`,"open_interest":`)
		writeOpenInterest(w, &m.OpenInterest)
	case stream.MsgReqResponse:
		w.RawString(`,"req_response":{"id":`)
		w.Int(m.ReqResponse.ID)
		w.RawString(`,"response":`)
		w.String(m.ReqResponse.Response.String())
		w.RawByte('}')
	case stream.MsgStart, stream.MsgStop:
		w.RawString(`,"date":`)
		w.Int(theta.DateToInt(m.Date))
	case stream.MsgError, stream.MsgStreamDead:
		if m.Err != nil {
			w.RawString(`,"error":`)
			w.String(m.Err.Error())
		}
	}

	w.RawByte('}')
}

func writeContract(w *jwriter.Writer, c *theta.Contract) {
	w.RawString(`{"root":`)
	w.String(c.Root)
	w.RawString(`,"is_option":`)
	w.Bool(c.IsOption)
	if c.IsOption {
		w.RawString(`,"exp":`)
		w.Int(theta.DateToInt(c.Exp))
		w.RawString(`,"strike":`)
		w.Int64(int64(c.Strike))
		w.RawString(`,"right":`)
		w.String(string(c.Right))
	}
	w.RawByte('}')
}

func writeQuote(w *jwriter.Writer, q *stream.Quote) {
	w.RawString(`{"ms_of_day":`)
	w.Int32(q.MsOfDay)
	w.RawString(`,"bid_size":`)
	w.Int32(q.BidSize)
	w.RawString(`,"bid_exchange":`)
	w.String(q.BidExchange.String())
	w.RawString(`,"bid":`)
	w.Float64(q.Bid)
	w.RawString(`,"bid_condition":`)
	w.String(q.BidCondition.String())
	w.RawString(`,"ask_size":`)
	w.Int32(q.AskSize)
	w.RawString(`,"ask_exchange":`)
	w.String(q.AskExchange.String())
	w.RawString(`,"ask":`)
	w.Float64(q.Ask)
	w.RawString(`,"ask_condition":`)
	w.String(q.AskCondition.String())
	w.RawString(`,"date":`)
	w.Int(theta.DateToInt(q.Date))
	w.RawByte('}')
}

func writeTrade(w *jwriter.Writer, t *stream.Trade) {
	w.RawString(`{"ms_of_day":`)
	w.Int32(t.MsOfDay)
	w.RawString(`,"sequence":`)
	w.Int64(t.Sequence)
	w.RawString(`,"size":`)
	w.Int32(t.Size)
	w.RawString(`,"condition":`)
	w.String(t.Condition.String())
	w.RawString(`,"price":`)
	w.Float64(t.Price)
	w.RawString(`,"exchange":`)
	w.String(t.Exchange.String())
	w.RawString(`,"date":`)
	w.Int(theta.DateToInt(t.Date))
	w.RawByte('}')
}

func writeOHLCVC(w *jwriter.Writer, b *stream.OHLCVC) {
	w.RawString(`{"ms_of_day":`)
	w.Int32(b.MsOfDay)
	w.RawString(`,"open":`)
	w.Float64(b.Open)
	w.RawString(`,"high":`)
	w.Float64(b.High)
	w.RawString(`,"low":`)
	w.Float64(b.Low)
	w.RawString(`,"close":`)
	w.Float64(b.Close)
	w.RawString(`,"volume":`)
	w.Int32(b.Volume)
	w.RawString(`,"count":`)
	w.Int32(b.Count)
	w.RawString(`,"date":`)
	w.Int(theta.DateToInt(b.Date))
	w.RawByte('}')
}

func writeOpenInterest(w *jwriter.Writer, oi *stream.OpenInterest) {
	w.RawString(`{"open_interest":`)
	w.Int32(oi.OpenInterest)
	w.RawString(`,"date":`)
	w.Int(theta.DateToInt(oi.Date))
	w.RawByte('}')
}
