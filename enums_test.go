package theta

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseOptionReq verifies name lookup is case-insensitive and unknown
// names classify as enum errors.
func TestParseOptionReq(t *testing.T) {
	tests := []struct {
		in      string
		want    OptionReq
		wantErr bool
	}{
		{"EOD", OptionReqEOD, false},
		{"eod", OptionReqEOD, false},
		{"QUOTE", OptionReqQuote, false},
		{"quote", OptionReqQuote, false},
		{"OPEN_INTEREST", OptionReqOpenInterest, false},
		{"IMPLIED_VOLATILITY", OptionReqImpliedVol, false},
		{"greeks", OptionReqGreeks, false},
		{"GREEKS_SECOND_ORDER", OptionReqGreeksSecond, false},
		{"TICK", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOptionReq(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrEnumParse))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestOptionReqString verifies every named code round-trips through its name
// and unknown codes render with the raw value.
func TestOptionReqString(t *testing.T) {
	for name, req := range optionReqNames {
		assert.Equal(t, name, req.String())
	}
	assert.Equal(t, "OPTION_REQ(999)", OptionReq(999).String())
}

// TestParseStockReq verifies the stock subset and that option-only request
// types are rejected.
func TestParseStockReq(t *testing.T) {
	got, err := ParseStockReq("trade")
	require.NoError(t, err)
	assert.Equal(t, StockReqTrade, got)

	got, err = ParseStockReq("EOD")
	require.NoError(t, err)
	assert.Equal(t, StockReqEOD, got)

	_, err = ParseStockReq("GREEKS")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEnumParse))
}

// TestExchangeFromCode verifies the closed exchange vocabulary.
func TestExchangeFromCode(t *testing.T) {
	tests := []struct {
		name    string
		code    int32
		want    Exchange
		wantErr bool
	}{
		{"opra", 0, ExchangeOPRA, false},
		{"cboe", 5, ExchangeCBOE, false},
		{"memx", 21, ExchangeMEMX, false},
		{"past end", 22, 0, true},
		{"negative", -1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExchangeFromCode(tt.code)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrEnumParse))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestExchangeString verifies known names and the fallback rendering.
func TestExchangeString(t *testing.T) {
	assert.Equal(t, "NYSE", ExchangeNYSE.String())
	assert.Equal(t, "EXCH(42)", Exchange(42).String())
}

// TestTradeConditionFromCode verifies unknown sale conditions degrade to the
// sentinel instead of failing.
func TestTradeConditionFromCode(t *testing.T) {
	assert.Equal(t, TradeCondRegular, TradeConditionFromCode(0))
	assert.Equal(t, TradeCondIntermarketSweep, TradeConditionFromCode(26))
	assert.Equal(t, TradeCondExtendedHours, TradeConditionFromCode(42))
	assert.Equal(t, TradeCondUndefined, TradeConditionFromCode(200))
	assert.Equal(t, TradeCondUndefined, TradeConditionFromCode(-5))
}

// TestTradeConditionString verifies name rendering including the sentinel.
func TestTradeConditionString(t *testing.T) {
	assert.Equal(t, "REGULAR", TradeCondRegular.String())
	assert.Equal(t, "SOLD_LAST", TradeCondSoldLast.String())
	assert.Equal(t, "UNDEFINED", TradeCondUndefined.String())
	assert.Equal(t, "UNDEFINED", TradeCondition(200).String())
}

// TestQuoteConditionFromCode verifies the quote condition table and its
// degrade-to-sentinel behavior.
func TestQuoteConditionFromCode(t *testing.T) {
	assert.Equal(t, QuoteCondRegular, QuoteConditionFromCode(0))
	assert.Equal(t, QuoteCondHalted, QuoteConditionFromCode(18))
	assert.Equal(t, QuoteCondOneSideFirm, QuoteConditionFromCode(20))
	assert.Equal(t, QuoteCondUndefined, QuoteConditionFromCode(21))
	assert.Equal(t, QuoteCondUndefined, QuoteConditionFromCode(-1))

	assert.Equal(t, "CROSSED", QuoteCondCrossed.String())
	assert.Equal(t, "UNDEFINED", QuoteCondUndefined.String())
}
