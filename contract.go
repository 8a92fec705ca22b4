// Package theta provides shared vocabulary for the Theta Terminal protocol:
// contracts, strikes, security types, exchanges, trade and quote conditions,
// and the error taxonomy used across the request, stream, and REST clients.
package theta

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Strike is an option strike price carried as an integer number of
// milli-USD (USD x 1000), exactly as it travels on the wire. Keeping the
// integer avoids binary floating-point drift; convert to decimal USD only
// for display.
type Strike int64

// StrikeFromUSD converts a USD amount to a Strike, rounding to the nearest
// milli-USD. Prefer constructing strikes from integer milli values where the
// exact wire value matters.
func StrikeFromUSD(usd float64) Strike {
	if usd >= 0 {
		return Strike(usd*1000 + 0.5)
	}
	return Strike(usd*1000 - 0.5)
}

// Milli returns the strike as integer milli-USD.
func (s Strike) Milli() int64 { return int64(s) }

// USD returns the strike as an exact decimal USD amount.
func (s Strike) USD() decimal.Decimal {
	return decimal.New(int64(s), -3)
}

// String renders the strike in USD with no trailing zeros: 150000 -> "150",
// 152500 -> "152.5", 1 -> "0.001".
func (s Strike) String() string {
	return s.USD().String()
}

// Right is the side of an option contract.
type Right string

// Option rights as they appear in request lines.
const (
	RightCall Right = "C"
	RightPut  Right = "P"
)

// ParseRight maps a wire string to a Right.
func ParseRight(s string) (Right, error) {
	switch s {
	case "C", "CALL", "c", "call":
		return RightCall, nil
	case "P", "PUT", "p", "put":
		return RightPut, nil
	}
	return "", fmt.Errorf("%w: option right %q", ErrEnumParse, s)
}

// SecurityType identifies the kind of instrument a request targets.
type SecurityType string

// Security types accepted by the Terminal.
const (
	SecOption  SecurityType = "OPTION"
	SecStock   SecurityType = "STOCK"
	SecFuture  SecurityType = "FUTURE"
	SecForward SecurityType = "FORWARD"
	SecSwap    SecurityType = "SWAP"
	SecDebt    SecurityType = "DEBT"
	SecCrypto  SecurityType = "CRYPTO"
	SecWarrant SecurityType = "WARRANT"
)

// ParseSecurityType maps a wire string to a SecurityType.
func ParseSecurityType(s string) (SecurityType, error) {
	switch SecurityType(s) {
	case SecOption, SecStock, SecFuture, SecForward, SecSwap, SecDebt, SecCrypto, SecWarrant:
		return SecurityType(s), nil
	}
	return "", fmt.Errorf("%w: security type %q", ErrEnumParse, s)
}

// Contract identifies an instrument: a stock root, or a full option
// (root, expiration, strike, right). It is the identity attached to every
// stream frame and historical request.
type Contract struct {
	Root     string
	IsOption bool

	// Option fields; zero values for stocks.
	Exp    time.Time
	Strike Strike
	Right  Right
}

// OptionContract builds an option contract identity.
func OptionContract(root string, exp time.Time, strike Strike, right Right) Contract {
	return Contract{Root: root, IsOption: true, Exp: exp, Strike: strike, Right: right}
}

// StockContract builds a stock contract identity.
func StockContract(root string) Contract {
	return Contract{Root: root}
}

// String renders the contract in a log-friendly form, e.g.
// "AAPL 2022-12-16 150 C" or "AAPL".
func (c Contract) String() string {
	if !c.IsOption {
		return c.Root
	}
	return fmt.Sprintf("%s %s %s %s", c.Root, c.Exp.Format("2006-01-02"), c.Strike, c.Right)
}

// DateToInt converts a date to the Terminal's YYYYMMDD integer form.
func DateToInt(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// DateFromInt converts a YYYYMMDD integer to a UTC midnight time.Time.
func DateFromInt(v int) (time.Time, error) {
	year := v / 10000
	month := (v / 100) % 100
	day := v % 100
	if year < 1 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("%w: invalid YYYYMMDD date %d", ErrParse, v)
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes out-of-range days (e.g. Feb 30); reject those.
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, fmt.Errorf("%w: invalid YYYYMMDD date %d", ErrParse, v)
	}
	return t, nil
}
