package client

import (
	"time"

	theta "github.com/thetafeed/theta-go"
	"github.com/thetafeed/theta-go/internal/wire"
)

// Version is the library protocol version sent in the connect handshake.
const Version = "1.0.0"

// HistOptionRequest asks for a historical option series.
type HistOptionRequest struct {
	Req    theta.OptionReq
	Root   string
	Exp    time.Time
	Strike theta.Strike
	Right  theta.Right

	Start time.Time
	End   time.Time

	// Interval is the bar interval; zero selects tick-level or EOD data
	// depending on Req.
	Interval time.Duration

	// RTH restricts results to regular trading hours.
	RTH bool
}

func (r HistOptionRequest) fields() []wire.Field {
	return []wire.Field{
		wire.Date("START_DATE", r.Start),
		wire.Date("END_DATE", r.End),
		wire.Str("root", r.Root),
		wire.Date("exp", r.Exp),
		wire.Int("strike", r.Strike.Milli()),
		wire.Str("right", string(r.Right)),
		wire.Str("sec", string(theta.SecOption)),
		wire.Int("req", int64(r.Req)),
		wire.Bool("rth", r.RTH),
		wire.Int("IVL", r.Interval.Milliseconds()),
	}
}

// HistStockRequest asks for a historical stock series.
type HistStockRequest struct {
	Req      theta.StockReq
	Root     string
	Start    time.Time
	End      time.Time
	Interval time.Duration
	RTH      bool
}

func (r HistStockRequest) fields() []wire.Field {
	return []wire.Field{
		wire.Date("START_DATE", r.Start),
		wire.Date("END_DATE", r.End),
		wire.Str("root", r.Root),
		wire.Str("sec", string(theta.SecStock)),
		wire.Int("req", int64(r.Req)),
		wire.Bool("rth", r.RTH),
		wire.Int("IVL", r.Interval.Milliseconds()),
	}
}

// AtTimeOptionRequest asks for the option data in effect at a
// time-of-day over a date range.
type AtTimeOptionRequest struct {
	Req    theta.OptionReq
	Root   string
	Exp    time.Time
	Strike theta.Strike
	Right  theta.Right
	Start  time.Time
	End    time.Time

	// TimeOfDay is the snapshot instant, measured from midnight.
	TimeOfDay time.Duration

	RTH bool
}

func (r AtTimeOptionRequest) fields() []wire.Field {
	return []wire.Field{
		wire.Date("START_DATE", r.Start),
		wire.Date("END_DATE", r.End),
		wire.Str("root", r.Root),
		wire.Date("exp", r.Exp),
		wire.Int("strike", r.Strike.Milli()),
		wire.Str("right", string(r.Right)),
		wire.Str("sec", string(theta.SecOption)),
		wire.Int("req", int64(r.Req)),
		wire.Bool("rth", r.RTH),
		wire.Int("IVL", r.TimeOfDay.Milliseconds()),
	}
}

// AtTimeStockRequest asks for the stock data in effect at a time-of-day
// over a date range.
type AtTimeStockRequest struct {
	Req       theta.StockReq
	Root      string
	Start     time.Time
	End       time.Time
	TimeOfDay time.Duration
	RTH       bool
}

func (r AtTimeStockRequest) fields() []wire.Field {
	return []wire.Field{
		wire.Date("START_DATE", r.Start),
		wire.Date("END_DATE", r.End),
		wire.Str("root", r.Root),
		wire.Str("sec", string(theta.SecStock)),
		wire.Int("req", int64(r.Req)),
		wire.Bool("rth", r.RTH),
		wire.Int("IVL", r.TimeOfDay.Milliseconds()),
	}
}

// LastOptionRequest asks for the most recent tick of an option contract.
type LastOptionRequest struct {
	Req    theta.OptionReq
	Root   string
	Exp    time.Time
	Strike theta.Strike
	Right  theta.Right
}

func (r LastOptionRequest) fields() []wire.Field {
	return []wire.Field{
		wire.Str("root", r.Root),
		wire.Date("exp", r.Exp),
		wire.Int("strike", r.Strike.Milli()),
		wire.Str("right", string(r.Right)),
		wire.Str("sec", string(theta.SecOption)),
		wire.Int("req", int64(r.Req)),
	}
}

// LastStockRequest asks for the most recent tick of a stock.
type LastStockRequest struct {
	Req  theta.StockReq
	Root string
}

func (r LastStockRequest) fields() []wire.Field {
	return []wire.Field{
		wire.Str("root", r.Root),
		wire.Str("sec", string(theta.SecStock)),
		wire.Int("req", int64(r.Req)),
	}
}

// DatesOptionRequest asks for the dates on which data exists for an option
// contract and request type.
type DatesOptionRequest struct {
	Req    theta.OptionReq
	Root   string
	Exp    time.Time
	Strike theta.Strike
	Right  theta.Right
}

func (r DatesOptionRequest) fields() []wire.Field {
	return []wire.Field{
		wire.Str("root", r.Root),
		wire.Date("exp", r.Exp),
		wire.Int("strike", r.Strike.Milli()),
		wire.Str("right", string(r.Right)),
		wire.Str("sec", string(theta.SecOption)),
		wire.Int("req", int64(r.Req)),
	}
}

// DatesStockRequest asks for the dates on which data exists for a stock
// and request type.
type DatesStockRequest struct {
	Req  theta.StockReq
	Root string
}

func (r DatesStockRequest) fields() []wire.Field {
	return []wire.Field{
		wire.Str("root", r.Root),
		wire.Str("sec", string(theta.SecStock)),
		wire.Int("req", int64(r.Req)),
	}
}

// DateRange is an inclusive date range restricting a strike listing.
type DateRange struct {
	Start time.Time
	End   time.Time
}
