// Package tick decodes Terminal response bodies: self-describing tick
// tables (historical, snapshot, and at-time data) and ASCII list bodies
// (roots, expirations, strikes, dates).
package tick

import (
	"fmt"
	"strings"

	theta "github.com/thetafeed/theta-go"
)

// DataType identifies a tick-table column. The vocabulary is closed and the
// codes must match the wire exactly; unknown codes fail the whole body.
type DataType int32

// Timestamp and bookkeeping columns.
const (
	Date       DataType = 0
	MsOfDay    DataType = 1
	Correction DataType = 2
	// PriceType is a per-row scale exponent, not data. The decoder folds it
	// into price columns and removes it from the output.
	PriceType DataType = 4
)

// Quote columns.
const (
	BidSize      DataType = 101
	BidExchange  DataType = 102
	Bid          DataType = 103
	BidCondition DataType = 104
	AskSize      DataType = 105
	AskExchange  DataType = 106
	Ask          DataType = 107
	AskCondition DataType = 108

	Midpoint DataType = 111
	VWAP     DataType = 112
	QWAP     DataType = 113
	WAP      DataType = 114
)

// Open interest.
const (
	OpenInterest DataType = 121
)

// Trade columns.
const (
	Sequence  DataType = 131
	Size      DataType = 132
	Condition DataType = 133
	Price     DataType = 134
)

// Volume columns.
const (
	Volume DataType = 141
	Count  DataType = 142
)

// First-order Greeks.
const (
	Theta   DataType = 151
	Vega    DataType = 152
	Delta   DataType = 153
	Rho     DataType = 154
	Epsilon DataType = 155
	Lambda  DataType = 156
)

// Second-order Greeks.
const (
	Gamma DataType = 161
	Vanna DataType = 162
	Charm DataType = 163
	Vomma DataType = 164
	Veta  DataType = 165
	Vera  DataType = 166
	SOPDK DataType = 167
)

// Third-order Greeks.
const (
	Speed  DataType = 171
	Zomma  DataType = 172
	Color  DataType = 173
	Ultima DataType = 174
)

// Other calcs.
const (
	D1        DataType = 181
	D2        DataType = 182
	DualDelta DataType = 183
	DualGamma DataType = 184
)

// OHLC.
const (
	Open  DataType = 191
	High  DataType = 192
	Low   DataType = 193
	Close DataType = 194
)

// Implied volatility.
const (
	ImpliedVol      DataType = 201
	BidImpliedVol   DataType = 202
	AskImpliedVol   DataType = 203
	UnderlyingPrice DataType = 204
)

// Ratings.
const (
	Ratio  DataType = 211
	Rating DataType = 212
)

// Dividends.
const (
	ExDate         DataType = 221
	RecordDate     DataType = 222
	PaymentDate    DataType = 223
	AnnDate        DataType = 224
	DividendAmount DataType = 225
	LessAmount     DataType = 226
)

type dataTypeInfo struct {
	name    string
	isPrice bool
	isDate  bool
}

var dataTypes = map[DataType]dataTypeInfo{
	Date:       {name: "DATE", isDate: true},
	MsOfDay:    {name: "MS_OF_DAY"},
	Correction: {name: "CORRECTION"},
	PriceType:  {name: "PRICE_TYPE"},

	BidSize:      {name: "BID_SIZE"},
	BidExchange:  {name: "BID_EXCHANGE"},
	Bid:          {name: "BID", isPrice: true},
	BidCondition: {name: "BID_CONDITION"},
	AskSize:      {name: "ASK_SIZE"},
	AskExchange:  {name: "ASK_EXCHANGE"},
	Ask:          {name: "ASK", isPrice: true},
	AskCondition: {name: "ASK_CONDITION"},

	Midpoint: {name: "MIDPOINT", isPrice: true},
	VWAP:     {name: "VWAP", isPrice: true},
	QWAP:     {name: "QWAP", isPrice: true},
	WAP:      {name: "WAP", isPrice: true},

	OpenInterest: {name: "OPEN_INTEREST", isPrice: true},

	Sequence:  {name: "SEQUENCE"},
	Size:      {name: "SIZE"},
	Condition: {name: "CONDITION"},
	Price:     {name: "PRICE", isPrice: true},

	Volume: {name: "VOLUME"},
	Count:  {name: "COUNT"},

	Theta:   {name: "THETA", isPrice: true},
	Vega:    {name: "VEGA", isPrice: true},
	Delta:   {name: "DELTA", isPrice: true},
	Rho:     {name: "RHO", isPrice: true},
	Epsilon: {name: "EPSILON", isPrice: true},
	Lambda:  {name: "LAMBDA", isPrice: true},

	Gamma: {name: "GAMMA", isPrice: true},
	Vanna: {name: "VANNA", isPrice: true},
	Charm: {name: "CHARM", isPrice: true},
	Vomma: {name: "VOMMA", isPrice: true},
	Veta:  {name: "VETA", isPrice: true},
	Vera:  {name: "VERA", isPrice: true},
	SOPDK: {name: "SOPDK", isPrice: true},

	Speed:  {name: "SPEED", isPrice: true},
	Zomma:  {name: "ZOMMA", isPrice: true},
	Color:  {name: "COLOR", isPrice: true},
	Ultima: {name: "ULTIMA", isPrice: true},

	D1:        {name: "D1", isPrice: true},
	D2:        {name: "D2", isPrice: true},
	DualDelta: {name: "DUAL_DELTA", isPrice: true},
	DualGamma: {name: "DUAL_GAMMA", isPrice: true},

	Open:  {name: "OPEN", isPrice: true},
	High:  {name: "HIGH", isPrice: true},
	Low:   {name: "LOW", isPrice: true},
	Close: {name: "CLOSE", isPrice: true},

	ImpliedVol:      {name: "IMPLIED_VOL", isPrice: true},
	BidImpliedVol:   {name: "BID_IMPLIED_VOL", isPrice: true},
	AskImpliedVol:   {name: "ASK_IMPLIED_VOL", isPrice: true},
	UnderlyingPrice: {name: "UNDERLYING_PRICE", isPrice: true},

	Ratio:  {name: "RATIO", isPrice: true},
	Rating: {name: "RATING", isPrice: true},

	ExDate:         {name: "EX_DATE", isDate: true},
	RecordDate:     {name: "RECORD_DATE", isDate: true},
	PaymentDate:    {name: "PAYMENT_DATE", isDate: true},
	AnnDate:        {name: "ANN_DATE", isDate: true},
	DividendAmount: {name: "DIVIDEND_AMOUNT", isPrice: true},
	LessAmount:     {name: "LESS_AMOUNT", isPrice: true},
}

var dataTypeByName = func() map[string]DataType {
	m := make(map[string]DataType, len(dataTypes))
	for dt, info := range dataTypes {
		m[info.name] = dt
	}
	return m
}()

// FromCode maps a wire code to a DataType.
func FromCode(code int32) (DataType, error) {
	dt := DataType(code)
	if _, ok := dataTypes[dt]; !ok {
		return 0, fmt.Errorf("%w: data type %d", theta.ErrEnumParse, code)
	}
	return dt, nil
}

// FromString maps a column name to a DataType, case-insensitively. The REST
// transport reports column formats by name.
func FromString(name string) (DataType, error) {
	if dt, ok := dataTypeByName[strings.ToUpper(name)]; ok {
		return dt, nil
	}
	return 0, fmt.Errorf("%w: data type %q", theta.ErrEnumParse, name)
}

// IsPrice reports whether the column holds a price that price-type scaling
// applies to.
func (dt DataType) IsPrice() bool { return dataTypes[dt].isPrice }

// IsDate reports whether the column holds YYYYMMDD dates.
func (dt DataType) IsDate() bool { return dataTypes[dt].isDate }

// String returns the column's wire name.
func (dt DataType) String() string {
	if info, ok := dataTypes[dt]; ok {
		return info.name
	}
	return fmt.Sprintf("DATA_TYPE(%d)", int32(dt))
}
