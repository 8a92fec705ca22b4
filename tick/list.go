package tick

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	theta "github.com/thetafeed/theta-go"
)

// DecodeList interprets a list body as comma-separated ASCII tokens.
// List bodies carry roots, expirations, strikes, and dates.
func DecodeList(body []byte) []string {
	if len(body) == 0 {
		return nil
	}
	return strings.Split(string(body), ",")
}

// DecodeDateList interprets a list body as YYYYMMDD dates.
func DecodeDateList(body []byte) ([]time.Time, error) {
	tokens := DecodeList(body)
	dates := make([]time.Time, len(tokens))
	for i, tok := range tokens {
		v, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil {
			return nil, fmt.Errorf("%w: date token %q: %v", theta.ErrParse, tok, err)
		}
		d, err := theta.DateFromInt(v)
		if err != nil {
			return nil, err
		}
		dates[i] = d
	}
	return dates, nil
}

// DecodeStrikeList interprets a list body as strikes. Tokens are integer
// milli-USD on the wire and stay integral in the result; Strike renders
// exact decimal USD without passing through binary floating point.
func DecodeStrikeList(body []byte) ([]theta.Strike, error) {
	tokens := DecodeList(body)
	strikes := make([]theta.Strike, len(tokens))
	for i, tok := range tokens {
		v, err := strconv.ParseInt(strings.TrimSpace(tok), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: strike token %q: %v", theta.ErrParse, tok, err)
		}
		strikes[i] = theta.Strike(v)
	}
	return strikes, nil
}
