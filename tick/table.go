package tick

import (
	"encoding/binary"
	"fmt"
	"time"

	theta "github.com/thetafeed/theta-go"
)

// priceMultipliers maps a PRICE_TYPE value to the multiplier that converts
// an integer price field into USD. Index 0 means "no price" and yields 0.
var priceMultipliers = [20]float64{
	0,
	0.000000001,
	0.00000001,
	0.0000001,
	0.000001,
	0.00001,
	0.0001,
	0.001,
	0.01,
	0.1,
	1,
	10.0,
	100.0,
	1000.0,
	10000.0,
	100000.0,
	1000000.0,
	10000000.0,
	100000000.0,
	1000000000.0,
}

// PriceMultiplier returns the USD multiplier for a PRICE_TYPE value.
func PriceMultiplier(pt int32) (float64, error) {
	if pt < 0 || int(pt) >= len(priceMultipliers) {
		return 0, fmt.Errorf("%w: price type %d out of range", theta.ErrParse, pt)
	}
	return priceMultipliers[pt], nil
}

// Kind describes the cell type of a decoded column.
type Kind int

// Column cell kinds.
const (
	KindInt Kind = iota
	KindFloat
	KindDate
)

// Column is one typed column of a decoded tick table. Exactly one of the
// slices is populated, selected by Kind.
type Column struct {
	Type   DataType
	Ints   []int32
	Floats []float64
	Dates  []time.Time
}

// Kind returns the column's cell kind.
func (c *Column) Kind() Kind {
	switch {
	case c.Floats != nil:
		return KindFloat
	case c.Dates != nil:
		return KindDate
	default:
		return KindInt
	}
}

// Len returns the number of rows in the column.
func (c *Column) Len() int {
	switch c.Kind() {
	case KindFloat:
		return len(c.Floats)
	case KindDate:
		return len(c.Dates)
	default:
		return len(c.Ints)
	}
}

// Table is a decoded tick body: a struct-of-arrays row batch whose schema
// came from the body's own format tick. Price columns are float64 USD, date
// columns are UTC midnights, and everything else stays int32. The
// PRICE_TYPE column never appears here; scaling already happened.
type Table struct {
	Columns []Column
}

// NumRows returns the number of data rows (the format tick and the sentinel
// row are never counted).
func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.Columns) }

// Column returns the column with the given DataType, if present.
func (t *Table) Column(dt DataType) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Type == dt {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// Decode interprets a tick body. The first formatLen 32-bit big-endian
// integers are column DataType codes (the format tick); every subsequent
// row holds formatLen 32-bit signed cells. A trailing all-zero row is a
// sentinel and is trimmed. When a PRICE_TYPE column is present, every
// price column is scaled by the per-row multiplier and PRICE_TYPE is
// dropped from the output.
func Decode(formatLen int, body []byte) (*Table, error) {
	if formatLen < 1 {
		return nil, fmt.Errorf("%w: format length %d", theta.ErrParse, formatLen)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty tick body", theta.ErrParse)
	}
	rowSize := formatLen * 4
	if len(body)%rowSize != 0 {
		return nil, fmt.Errorf("%w: body size %d not a multiple of row size %d", theta.ErrParse, len(body), rowSize)
	}

	// Format tick: the body describes its own schema.
	types := make([]DataType, formatLen)
	for i := range types {
		dt, err := FromCode(int32(binary.BigEndian.Uint32(body[i*4:])))
		if err != nil {
			return nil, err
		}
		types[i] = dt
	}

	nRows := len(body)/rowSize - 1
	raw := make([][]int32, formatLen)
	for c := range raw {
		raw[c] = make([]int32, nRows)
	}
	off := rowSize
	for r := 0; r < nRows; r++ {
		for c := 0; c < formatLen; c++ {
			raw[c][r] = int32(binary.BigEndian.Uint32(body[off:]))
			off += 4
		}
	}

	// Trim the trailing sentinel row if every cell is zero.
	if nRows > 0 {
		zero := true
		for c := 0; c < formatLen; c++ {
			if raw[c][nRows-1] != 0 {
				zero = false
				break
			}
		}
		if zero {
			nRows--
			for c := range raw {
				raw[c] = raw[c][:nRows]
			}
		}
	}

	return Assemble(types, raw)
}

// Assemble builds a typed table from column-major raw cells. Both the
// binary and the REST decoders end here, so the two transports produce
// identical tables: price columns scale by the per-row PRICE_TYPE
// multiplier (and PRICE_TYPE is dropped), date columns convert to UTC
// midnights, everything else stays int32. Price columns stay int32 when no
// PRICE_TYPE column is present.
func Assemble(types []DataType, raw [][]int32) (*Table, error) {
	if len(raw) != len(types) {
		return nil, fmt.Errorf("%w: %d raw columns for %d types", theta.ErrParse, len(raw), len(types))
	}
	nRows := 0
	if len(raw) > 0 {
		nRows = len(raw[0])
	}

	// Resolve the per-row price multipliers up front so scaling below is a
	// plain elementwise multiply.
	ptCol := -1
	for i, dt := range types {
		if dt == PriceType {
			ptCol = i
			break
		}
	}
	var mul []float64
	if ptCol >= 0 {
		mul = make([]float64, nRows)
		for r, pt := range raw[ptCol] {
			m, err := PriceMultiplier(pt)
			if err != nil {
				return nil, err
			}
			mul[r] = m
		}
	}

	cols := make([]Column, 0, len(types))
	for i, dt := range types {
		if i == ptCol {
			continue
		}
		col := Column{Type: dt}
		switch {
		case dt.IsPrice() && mul != nil:
			col.Floats = make([]float64, nRows)
			for r, v := range raw[i] {
				col.Floats[r] = float64(v) * mul[r]
			}
		case dt.IsDate():
			col.Dates = make([]time.Time, nRows)
			for r, v := range raw[i] {
				d, err := theta.DateFromInt(int(v))
				if err != nil {
					return nil, err
				}
				col.Dates[r] = d
			}
		default:
			col.Ints = raw[i]
		}
		cols = append(cols, col)
	}

	return &Table{Columns: cols}, nil
}
