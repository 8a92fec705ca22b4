package rest

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	theta "github.com/thetafeed/theta-go"
	"github.com/thetafeed/theta-go/tick"
)

// envelope is the Terminal's REST response wrapper. Every endpoint returns
// a header plus a response payload whose shape depends on the endpoint.
type envelope struct {
	Header   envelopeHeader  `json:"header"`
	Response json.RawMessage `json:"response"`
}

// envelopeHeader mirrors the binary response header in JSON form.
type envelopeHeader struct {
	ID        int64    `json:"id"`
	Latency   int64    `json:"latency"`
	ErrorType string   `json:"error_type"` // "null" when the request succeeded
	ErrorMsg  string   `json:"error_msg"`
	NextPage  string   `json:"next_page"`
	Format    []string `json:"format"` // column names for table responses
}

// check classifies a header-reported error with the same rules as the
// binary ERROR path.
func (h *envelopeHeader) check() error {
	if h.ErrorType == "" || strings.EqualFold(h.ErrorType, "null") {
		return nil
	}
	msg := h.ErrorMsg
	if msg == "" {
		msg = h.ErrorType
	}
	return theta.TerminalError(msg)
}

// buildTable converts JSON table pages into the same typed table the
// binary decoder produces. REST rows carry the same raw integer cells as
// the socket, PRICE_TYPE column included; the shared assembly step does
// the scaling and date conversion.
func buildTable(format []string, pages ...json.RawMessage) (*tick.Table, error) {
	if len(format) == 0 {
		return nil, fmt.Errorf("%w: response header carries no format", theta.ErrParse)
	}
	types := make([]tick.DataType, len(format))
	for i, name := range format {
		dt, err := tick.FromString(name)
		if err != nil {
			return nil, err
		}
		types[i] = dt
	}

	var rows [][]json.Number
	for _, raw := range pages {
		var page [][]json.Number
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("%w: response rows: %v", theta.ErrParse, err)
		}
		rows = append(rows, page...)
	}

	cols := make([][]int32, len(types))
	for c := range cols {
		cols[c] = make([]int32, len(rows))
	}
	for r, row := range rows {
		if len(row) != len(types) {
			return nil, fmt.Errorf("%w: row %d has %d cells, format has %d", theta.ErrParse, r, len(row), len(types))
		}
		for c, cell := range row {
			v, err := cell.Int64()
			if err != nil {
				return nil, fmt.Errorf("%w: row %d cell %d: %v", theta.ErrParse, r, c, err)
			}
			cols[c][r] = int32(v)
		}
	}

	return tick.Assemble(types, cols)
}

// decodeDates converts a JSON list response of YYYYMMDD integers.
func decodeDates(raw json.RawMessage) ([]time.Time, error) {
	var ints []int
	if err := json.Unmarshal(raw, &ints); err != nil {
		return nil, fmt.Errorf("%w: date list: %v", theta.ErrParse, err)
	}
	dates := make([]time.Time, len(ints))
	for i, v := range ints {
		d, err := theta.DateFromInt(v)
		if err != nil {
			return nil, err
		}
		dates[i] = d
	}
	return dates, nil
}

// decodeStrikes converts a JSON list response of milli-USD strikes.
func decodeStrikes(raw json.RawMessage) ([]theta.Strike, error) {
	var ints []int64
	if err := json.Unmarshal(raw, &ints); err != nil {
		return nil, fmt.Errorf("%w: strike list: %v", theta.ErrParse, err)
	}
	strikes := make([]theta.Strike, len(ints))
	for i, v := range ints {
		strikes[i] = theta.Strike(v)
	}
	return strikes, nil
}

// decodeStrings converts a JSON list response of symbols.
func decodeStrings(raw json.RawMessage) ([]string, error) {
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("%w: symbol list: %v", theta.ErrParse, err)
	}
	return list, nil
}

// HistParams selects a historical series over a date range.
type HistParams struct {
	Root   string
	Exp    time.Time // zero for stock requests
	Strike theta.Strike
	Right  theta.Right
	Start  time.Time
	End    time.Time
	// Interval downsamples intraday data; zero means tick-level.
	Interval time.Duration
	// RTH restricts rows to regular trading hours.
	RTH bool
}

func (p HistParams) values() url.Values {
	v := url.Values{}
	v.Set("root", p.Root)
	if !p.Exp.IsZero() {
		v.Set("exp", strconv.Itoa(theta.DateToInt(p.Exp)))
		v.Set("strike", strconv.FormatInt(p.Strike.Milli(), 10))
		v.Set("right", string(p.Right))
	}
	v.Set("start_date", strconv.Itoa(theta.DateToInt(p.Start)))
	v.Set("end_date", strconv.Itoa(theta.DateToInt(p.End)))
	if p.Interval > 0 {
		v.Set("ivl", strconv.FormatInt(p.Interval.Milliseconds(), 10))
	}
	v.Set("rth", strconv.FormatBool(p.RTH))
	return v
}

// AtTimeParams selects the data in effect at a time-of-day across a range
// of dates.
type AtTimeParams struct {
	Root      string
	Exp       time.Time
	Strike    theta.Strike
	Right     theta.Right
	Start     time.Time
	End       time.Time
	TimeOfDay time.Duration
	RTH       bool
}

func (p AtTimeParams) values() url.Values {
	v := url.Values{}
	v.Set("root", p.Root)
	if !p.Exp.IsZero() {
		v.Set("exp", strconv.Itoa(theta.DateToInt(p.Exp)))
		v.Set("strike", strconv.FormatInt(p.Strike.Milli(), 10))
		v.Set("right", string(p.Right))
	}
	v.Set("start_date", strconv.Itoa(theta.DateToInt(p.Start)))
	v.Set("end_date", strconv.Itoa(theta.DateToInt(p.End)))
	v.Set("ivl", strconv.FormatInt(p.TimeOfDay.Milliseconds(), 10))
	v.Set("rth", strconv.FormatBool(p.RTH))
	return v
}

// LastParams selects the most recent tick for a contract.
type LastParams struct {
	Root   string
	Exp    time.Time
	Strike theta.Strike
	Right  theta.Right
}

func (p LastParams) values() url.Values {
	return contractValues(p.Root, p.Exp, p.Strike, p.Right)
}

// DatesParams selects the listing of dates with stored data.
type DatesParams struct {
	Root   string
	Exp    time.Time
	Strike theta.Strike
	Right  theta.Right
}

func (p DatesParams) values() url.Values {
	return contractValues(p.Root, p.Exp, p.Strike, p.Right)
}

func contractValues(root string, exp time.Time, strike theta.Strike, right theta.Right) url.Values {
	v := url.Values{}
	v.Set("root", root)
	if !exp.IsZero() {
		v.Set("exp", strconv.Itoa(theta.DateToInt(exp)))
		v.Set("strike", strconv.FormatInt(strike.Milli(), 10))
		v.Set("right", string(right))
	}
	return v
}
