package theta

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTerminalError verifies ERROR bodies classify by substring,
// case-insensitively, and keep the Terminal's text in the message.
func TestTerminalError(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"no data", "No data for the specified timeframe & contract.", ErrNoData},
		{"no data lowercase", "no data found", ErrNoData},
		{"no data mixed case", "NO DATA for request", ErrNoData},
		{"disconnected", "Disconnected from Theta Data servers.", ErrReconnecting},
		{"disconnected embedded", "server disconnected, retrying", ErrReconnecting},
		{"permission", "You do not have permission to access this data.", ErrResponse},
		{"wrong id", "Wrong ID returned", ErrResponse},
		{"empty body", "", ErrResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := TerminalError(tt.body)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want))
			if tt.body != "" {
				assert.Contains(t, err.Error(), tt.body)
			}
		})
	}
}

// TestSessionStateErrors verifies the session-state errors classify as
// connection errors so callers need only one errors.Is branch.
func TestSessionStateErrors(t *testing.T) {
	assert.True(t, errors.Is(ErrNotConnected, ErrConnection))
	assert.True(t, errors.Is(ErrStreamClosed, ErrConnection))
	assert.False(t, errors.Is(ErrNotConnected, ErrTimeout))
}

// TestSentinelsDistinct verifies the taxonomy sentinels don't alias each
// other; classification code depends on exact matches.
func TestSentinelsDistinct(t *testing.T) {
	sentinels := []error{
		ErrConnection, ErrTimeout, ErrNoData, ErrReconnecting,
		ErrResponse, ErrParse, ErrEnumParse, ErrAlreadyConnected,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
		}
	}
}
