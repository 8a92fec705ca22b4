package benchmarks

import (
	"encoding/binary"
	"testing"

	"github.com/thetafeed/theta-go/tick"
)

// eodFormat is the column layout of an end-of-day response.
var eodFormat = []tick.DataType{
	tick.MsOfDay, tick.Open, tick.High, tick.Low, tick.Close,
	tick.Volume, tick.Count, tick.PriceType, tick.Date,
}

// quoteFormat is the column layout of a tick-level quote response.
var quoteFormat = []tick.DataType{
	tick.MsOfDay,
	tick.BidSize, tick.BidExchange, tick.Bid, tick.BidCondition,
	tick.AskSize, tick.AskExchange, tick.Ask, tick.AskCondition,
	tick.PriceType, tick.Date,
}

// createTickBody builds a wire-shaped tick body: the format tick, rows
// data rows, and the trailing all-zero sentinel row.
func createTickBody(format []tick.DataType, rows int, cell func(r, c int) int32) []byte {
	rowSize := len(format) * 4
	body := make([]byte, (rows+2)*rowSize)
	for c, dt := range format {
		binary.BigEndian.PutUint32(body[c*4:], uint32(dt))
	}
	for r := 0; r < rows; r++ {
		off := (r + 1) * rowSize
		for c := range format {
			binary.BigEndian.PutUint32(body[off+c*4:], uint32(cell(r, c)))
		}
	}
	return body
}

// eodCell fills one end-of-day cell: raw cents with price type 8.
func eodCell(r, c int) int32 {
	switch eodFormat[c] {
	case tick.MsOfDay:
		return 57600000
	case tick.PriceType:
		return 8
	case tick.Date:
		return int32(20221101 + r%28)
	case tick.Volume:
		return int32(1000000 + r)
	case tick.Count:
		return int32(5000 + r)
	default:
		return int32(15000 + r%50)
	}
}

// quoteCell fills one tick-level quote cell.
func quoteCell(r, c int) int32 {
	switch quoteFormat[c] {
	case tick.MsOfDay:
		return int32(34200000 + r)
	case tick.BidSize, tick.AskSize:
		return int32(10 + r%90)
	case tick.BidExchange, tick.AskExchange:
		return 5
	case tick.Bid:
		return int32(14995 + r%10)
	case tick.Ask:
		return int32(15005 + r%10)
	case tick.PriceType:
		return 8
	case tick.Date:
		return 20221216
	default:
		return 0
	}
}

// BenchmarkDecodeEODYear benchmarks decoding a year of end-of-day bars
func BenchmarkDecodeEODYear(b *testing.B) {
	body := createTickBody(eodFormat, 252, eodCell)
	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := tick.Decode(len(eodFormat), body); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkDecodeQuoteTape benchmarks decoding a 10k-row quote day
func BenchmarkDecodeQuoteTape(b *testing.B) {
	body := createTickBody(quoteFormat, 10000, quoteCell)
	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := tick.Decode(len(quoteFormat), body); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkAssemble benchmarks the shared column assembly step without
// the byte-swapping pass, isolating scaling and date conversion
func BenchmarkAssemble(b *testing.B) {
	const rows = 252
	raw := make([][]int32, len(eodFormat))
	for c := range raw {
		raw[c] = make([]int32, rows)
		for r := 0; r < rows; r++ {
			raw[c][r] = eodCell(r, c)
		}
	}
	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := tick.Assemble(eodFormat, raw); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkDecodeEODYearParallel benchmarks parallel end-of-day decoding
func BenchmarkDecodeEODYearParallel(b *testing.B) {
	body := createTickBody(eodFormat, 252, eodCell)
	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := tick.Decode(len(eodFormat), body); err != nil {
				b.Fatal(err)
			}
		}
	})
}
