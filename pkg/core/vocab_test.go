package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderSide(t *testing.T) {
	assert.Equal(t, SideBuy, ParseOrderSide("BUY"))
	assert.Equal(t, SideSell, ParseOrderSide("Sell"))
	assert.Equal(t, OrderSide("unknown"), ParseOrderSide("UNKNOWN"))
}

func TestParseOrderType(t *testing.T) {
	tests := []struct {
		input    string
		expected OrderType
	}{
		{"limit", TypeLimit},
		{"MARKET", TypeMarket},
		{"Stop_Market", TypeStopMarket},
		{"instant", TypeInstant},
	}

	for _, tt := range tests {
		typ, err := ParseOrderType(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.expected, typ)
	}
}

func TestParseOrderTypeInvalid(t *testing.T) {
	for _, input := range []string{"", "SWAP", "TRAILING_STOP"} {
		_, err := ParseOrderType(input)
		require.Error(t, err, input)
		assert.True(t, IsInvalidOrderError(err), input)
		assert.True(t, IsErrorCode(err, ErrCodeInvalidOrder), input)
	}
}
