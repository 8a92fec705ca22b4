package tick

import (
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	theta "github.com/thetafeed/theta-go"
)

// packBody packs rows of int32 cells into a big-endian tick body. The first
// row is the format tick.
func packBody(rows ...[]int32) []byte {
	if len(rows) == 0 {
		return nil
	}
	body := make([]byte, 0, len(rows)*len(rows[0])*4)
	var cell [4]byte
	for _, row := range rows {
		for _, v := range row {
			binary.BigEndian.PutUint32(cell[:], uint32(v))
			body = append(body, cell[:]...)
		}
	}
	return body
}

// TestDecodeEOD verifies a full EOD body: per-row price scaling, date
// conversion, PRICE_TYPE removal, and sentinel trimming.
func TestDecodeEOD(t *testing.T) {
	format := []int32{
		int32(MsOfDay), int32(Open), int32(High), int32(Low), int32(Close),
		int32(Volume), int32(Count), int32(PriceType), int32(Date),
	}
	body := packBody(
		format,
		// pt=8 scales by 0.01.
		[]int32{57600000, 15000, 15100, 14900, 15050, 1000000, 1234, 8, 20221101},
		// pt=7 scales by 0.001.
		[]int32{57600000, 152500, 153000, 151000, 152000, 2000000, 2345, 7, 20221102},
		[]int32{0, 0, 0, 0, 0, 0, 0, 0, 0},
	)

	table, err := Decode(len(format), body)
	require.NoError(t, err)

	assert.Equal(t, 2, table.NumRows())
	assert.Equal(t, 8, table.NumCols(), "PRICE_TYPE must not survive decoding")
	_, ok := table.Column(PriceType)
	assert.False(t, ok)

	open, ok := table.Column(Open)
	require.True(t, ok)
	assert.Equal(t, KindFloat, open.Kind())
	assert.Equal(t, []float64{150, 152.5}, open.Floats)

	low, ok := table.Column(Low)
	require.True(t, ok)
	assert.Equal(t, []float64{149, 151}, low.Floats)

	volume, ok := table.Column(Volume)
	require.True(t, ok)
	assert.Equal(t, KindInt, volume.Kind())
	assert.Equal(t, []int32{1000000, 2000000}, volume.Ints)

	date, ok := table.Column(Date)
	require.True(t, ok)
	assert.Equal(t, KindDate, date.Kind())
	assert.Equal(t, []time.Time{
		time.Date(2022, time.November, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2022, time.November, 2, 0, 0, 0, 0, time.UTC),
	}, date.Dates)
}

// TestDecodeSentinelTrim verifies the trailing all-zero row is dropped but a
// final row with any nonzero cell is kept.
func TestDecodeSentinelTrim(t *testing.T) {
	format := []int32{int32(MsOfDay), int32(Volume)}

	trimmed, err := Decode(2, packBody(format, []int32{34200000, 500}, []int32{0, 0}))
	require.NoError(t, err)
	assert.Equal(t, 1, trimmed.NumRows())

	kept, err := Decode(2, packBody(format, []int32{34200000, 500}, []int32{0, 1}))
	require.NoError(t, err)
	assert.Equal(t, 2, kept.NumRows())
}

// TestDecodeFormatOnly verifies a body holding just the format tick decodes
// to an empty table with the schema intact.
func TestDecodeFormatOnly(t *testing.T) {
	table, err := Decode(2, packBody([]int32{int32(MsOfDay), int32(Volume)}))
	require.NoError(t, err)
	assert.Equal(t, 0, table.NumRows())
	assert.Equal(t, 2, table.NumCols())
}

// TestDecodeNoPriceType verifies price columns stay int32 when the body
// carries no PRICE_TYPE column to scale them with.
func TestDecodeNoPriceType(t *testing.T) {
	format := []int32{int32(MsOfDay), int32(Price), int32(Size)}
	body := packBody(format, []int32{34200000, 15025, 100}, []int32{0, 0, 0})

	table, err := Decode(3, body)
	require.NoError(t, err)

	price, ok := table.Column(Price)
	require.True(t, ok)
	assert.Equal(t, KindInt, price.Kind())
	assert.Equal(t, []int32{15025}, price.Ints)
}

// TestDecodeErrors verifies malformed bodies classify as parse or enum
// errors rather than panicking or returning partial tables.
func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name      string
		formatLen int
		body      []byte
		want      error
	}{
		{"empty body", 2, nil, theta.ErrParse},
		{"zero format length", 0, packBody([]int32{1, 2}), theta.ErrParse},
		{"ragged body", 2, packBody([]int32{int32(MsOfDay), int32(Volume)})[:6], theta.ErrParse},
		{"unknown column code", 2, packBody([]int32{int32(MsOfDay), 999}), theta.ErrEnumParse},
		{
			"price type out of range",
			2,
			packBody([]int32{int32(Price), int32(PriceType)}, []int32{100, 25}, []int32{0, 0}),
			theta.ErrParse,
		},
		{
			"invalid date cell",
			1,
			packBody([]int32{int32(Date)}, []int32{20230230}),
			theta.ErrParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.formatLen, tt.body)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want))
		})
	}
}

// TestAssemble verifies the shared column typing path both transports end
// at: per-row multipliers, PRICE_TYPE removal, and the arity check.
func TestAssemble(t *testing.T) {
	types := []DataType{Bid, PriceType, BidSize}
	raw := [][]int32{
		{15000, 225000},
		{8, 7},
		{10, 20},
	}

	table, err := Assemble(types, raw)
	require.NoError(t, err)
	assert.Equal(t, 2, table.NumCols())

	bid, ok := table.Column(Bid)
	require.True(t, ok)
	assert.Equal(t, []float64{150, 225}, bid.Floats)

	size, ok := table.Column(BidSize)
	require.True(t, ok)
	assert.Equal(t, []int32{10, 20}, size.Ints)

	_, err = Assemble([]DataType{Bid}, raw)
	require.Error(t, err)
	assert.True(t, errors.Is(err, theta.ErrParse))
}

// TestPriceMultiplier verifies the multiplier table bounds.
func TestPriceMultiplier(t *testing.T) {
	m, err := PriceMultiplier(8)
	require.NoError(t, err)
	assert.Equal(t, 0.01, m)

	m, err = PriceMultiplier(10)
	require.NoError(t, err)
	assert.Equal(t, 1.0, m)

	m, err = PriceMultiplier(0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, m)

	m, err = PriceMultiplier(19)
	require.NoError(t, err)
	assert.Equal(t, 1000000000.0, m)

	_, err = PriceMultiplier(20)
	require.Error(t, err)
	assert.True(t, errors.Is(err, theta.ErrParse))

	_, err = PriceMultiplier(-1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, theta.ErrParse))
}

// TestColumnAccessors verifies Kind and Len across the three cell kinds.
func TestColumnAccessors(t *testing.T) {
	ints := Column{Type: Volume, Ints: []int32{1, 2, 3}}
	assert.Equal(t, KindInt, ints.Kind())
	assert.Equal(t, 3, ints.Len())

	floats := Column{Type: Bid, Floats: []float64{1.5}}
	assert.Equal(t, KindFloat, floats.Kind())
	assert.Equal(t, 1, floats.Len())

	dates := Column{Type: Date, Dates: []time.Time{{}, {}}}
	assert.Equal(t, KindDate, dates.Kind())
	assert.Equal(t, 2, dates.Len())
}
