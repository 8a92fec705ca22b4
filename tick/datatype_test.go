package tick

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	theta "github.com/thetafeed/theta-go"
)

// TestFromCode verifies wire code lookup across the code ranges and the
// closed-vocabulary rejection.
func TestFromCode(t *testing.T) {
	tests := []struct {
		name    string
		code    int32
		want    DataType
		wantErr bool
	}{
		{"date", 0, Date, false},
		{"ms of day", 1, MsOfDay, false},
		{"price type", 4, PriceType, false},
		{"bid", 103, Bid, false},
		{"open interest", 121, OpenInterest, false},
		{"price", 134, Price, false},
		{"close", 194, Close, false},
		{"less amount", 226, LessAmount, false},
		{"gap", 3, 0, true},
		{"unknown", 999, 0, true},
		{"negative", -1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromCode(tt.code)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, theta.ErrEnumParse))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestFromString verifies name lookup is case-insensitive; the REST
// transport reports formats as lowercase names.
func TestFromString(t *testing.T) {
	got, err := FromString("ms_of_day")
	require.NoError(t, err)
	assert.Equal(t, MsOfDay, got)

	got, err = FromString("OPEN")
	require.NoError(t, err)
	assert.Equal(t, Open, got)

	got, err = FromString("Implied_Vol")
	require.NoError(t, err)
	assert.Equal(t, ImpliedVol, got)

	_, err = FromString("bogus")
	require.Error(t, err)
	assert.True(t, errors.Is(err, theta.ErrEnumParse))
}

// TestDataTypeClasses verifies the price and date classifications the
// decoder branches on.
func TestDataTypeClasses(t *testing.T) {
	assert.True(t, Bid.IsPrice())
	assert.True(t, Open.IsPrice())
	assert.True(t, Delta.IsPrice())
	assert.True(t, OpenInterest.IsPrice())
	assert.False(t, BidSize.IsPrice())
	assert.False(t, Volume.IsPrice())
	assert.False(t, Date.IsPrice())

	assert.True(t, Date.IsDate())
	assert.True(t, ExDate.IsDate())
	assert.False(t, MsOfDay.IsDate())
	assert.False(t, Bid.IsDate())
}

// TestDataTypeString verifies wire names and the numeric fallback.
func TestDataTypeString(t *testing.T) {
	assert.Equal(t, "MS_OF_DAY", MsOfDay.String())
	assert.Equal(t, "PRICE_TYPE", PriceType.String())
	assert.Equal(t, "UNDERLYING_PRICE", UnderlyingPrice.String())
	assert.Equal(t, "DATA_TYPE(999)", DataType(999).String())
}

// TestRoundTripNames verifies every known code survives String and
// FromString, keeping the REST name table aligned with the binary codes.
func TestRoundTripNames(t *testing.T) {
	for dt := range dataTypes {
		got, err := FromString(dt.String())
		require.NoError(t, err, "name %s", dt)
		assert.Equal(t, dt, got)
	}
}
