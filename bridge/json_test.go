package bridge

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	theta "github.com/thetafeed/theta-go"
	"github.com/thetafeed/theta-go/stream"
)

// TestEncodeMsg verifies the exact JSON shape for every event type the
// bridge publishes.
func TestEncodeMsg(t *testing.T) {
	day := time.Date(2022, 12, 16, 0, 0, 0, 0, time.UTC)
	option := theta.OptionContract("AAPL", day, theta.Strike(150000), theta.RightCall)
	stock := theta.StockContract("MSFT")

	tests := []struct {
		name string
		msg  stream.Msg
		want string
	}{
		{
			name: "trade",
			msg: stream.Msg{
				Type:     stream.MsgTrade,
				Contract: option,
				Trade: stream.Trade{
					MsOfDay:   34200000,
					Sequence:  987654,
					Size:      100,
					Condition: theta.TradeCondRegular,
					Price:     150.25,
					Exchange:  theta.ExchangeCBOE,
					Date:      day,
				},
			},
			want: `{"type":"TRADE","contract":{"root":"AAPL","is_option":true,"exp":20221216,"strike":150000,"right":"C"},` +
				`"trade":{"ms_of_day":34200000,"sequence":987654,"size":100,"condition":"REGULAR","price":150.25,"exchange":"CBOE","date":20221216}}`,
		},
		{
			name: "quote",
			msg: stream.Msg{
				Type:     stream.MsgQuote,
				Contract: stock,
				Quote: stream.Quote{
					MsOfDay:      34200000,
					BidSize:      10,
					BidExchange:  theta.ExchangeNYSE,
					Bid:          150,
					BidCondition: theta.QuoteCondRegular,
					AskSize:      20,
					AskExchange:  theta.ExchangeNYSE,
					Ask:          150.5,
					AskCondition: theta.QuoteCondRegular,
					Date:         day,
				},
			},
			want: `{"type":"QUOTE","contract":{"root":"MSFT","is_option":false},` +
				`"quote":{"ms_of_day":34200000,"bid_size":10,"bid_exchange":"NYSE","bid":150,"bid_condition":"REGULAR",` +
				`"ask_size":20,"ask_exchange":"NYSE","ask":150.5,"ask_condition":"REGULAR","date":20221216}}`,
		},
		{
			name: "ohlcvc",
			msg: stream.Msg{
				Type:     stream.MsgOHLCVC,
				Contract: stock,
				OHLCVC: stream.OHLCVC{
					MsOfDay: 36000000,
					Open:    150,
					High:    152.5,
					Low:     149.5,
					Close:   151,
					Volume:  120000,
					Count:   850,
					Date:    day,
				},
			},
			want: `{"type":"OHLCVC","contract":{"root":"MSFT","is_option":false},` +
				`"ohlcvc":{"ms_of_day":36000000,"open":150,"high":152.5,"low":149.5,"close":151,"volume":120000,"count":850,"date":20221216}}`,
		},
		{
			name: "open interest",
			msg: stream.Msg{
				Type:         stream.MsgOpenInterest,
				Contract:     option,
				OpenInterest: stream.OpenInterest{OpenInterest: 4500, Date: day},
			},
			want: `{"type":"OPEN_INTEREST","contract":{"root":"AAPL","is_option":true,"exp":20221216,"strike":150000,"right":"C"},` +
				`"open_interest":{"open_interest":4500,"date":20221216}}`,
		},
		{
			name: "req response",
			msg: stream.Msg{
				Type:        stream.MsgReqResponse,
				ReqResponse: stream.ReqResponse{ID: 3, Response: stream.Subscribed},
			},
			want: `{"type":"REQ_RESPONSE","req_response":{"id":3,"response":"SUBSCRIBED"}}`,
		},
		{
			name: "start",
			msg:  stream.Msg{Type: stream.MsgStart, Date: day},
			want: `{"type":"START","date":20221216}`,
		},
		{
			name: "stop",
			msg:  stream.Msg{Type: stream.MsgStop, Date: day},
			want: `{"type":"STOP","date":20221216}`,
		},
		{
			name: "error",
			msg:  stream.Msg{Type: stream.MsgError, Err: errors.New("short frame")},
			want: `{"type":"ERROR","error":"short frame"}`,
		},
		{
			name: "stream dead without detail",
			msg:  stream.Msg{Type: stream.MsgStreamDead},
			want: `{"type":"STREAM_DEAD"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeMsg(&tt.msg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}
