package rest

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	theta "github.com/thetafeed/theta-go"
	"github.com/thetafeed/theta-go/tick"
)

// testHeader and testEnvelope mirror the Terminal's JSON wrapper for
// building fixture responses.
type testHeader struct {
	ID        int64    `json:"id"`
	Latency   int64    `json:"latency"`
	ErrorType string   `json:"error_type"`
	ErrorMsg  string   `json:"error_msg"`
	NextPage  string   `json:"next_page"`
	Format    []string `json:"format,omitempty"`
}

type testEnvelope struct {
	Header   testHeader  `json:"header"`
	Response interface{} `json:"response"`
}

func okHeader(format ...string) testHeader {
	return testHeader{ErrorType: "null", NextPage: "null", Format: format}
}

func writeEnvelope(w http.ResponseWriter, status int, env testEnvelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env)
}

// newTestREST starts a fixture server and a client pointed at it.
func newTestREST(t *testing.T, handler http.Handler, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL, opts...)
	require.NoError(t, err)
	return c
}

// packBinary packs rows of int32 cells into a big-endian tick body, format
// tick first, for transport parity checks.
func packBinary(rows ...[]int32) []byte {
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

// TestHistOptionParity verifies a REST series decodes to the same typed
// table as the equivalent binary body, cell for cell.
func TestHistOptionParity(t *testing.T) {
	format := []string{"ms_of_day", "open", "high", "low", "close", "volume", "count", "price_type", "date"}
	rows := [][]int32{
		{57600000, 15000, 15100, 14900, 15050, 1000000, 1234, 8, 20221101},
		{57600000, 152500, 153000, 151000, 152000, 2000000, 2345, 7, 20221102},
	}

	c := newTestREST(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/hist/option/eod", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "AAPL", q.Get("root"))
		assert.Equal(t, "20221216", q.Get("exp"))
		assert.Equal(t, "150000", q.Get("strike"))
		assert.Equal(t, "C", q.Get("right"))
		assert.Equal(t, "20221101", q.Get("start_date"))
		assert.Equal(t, "20221130", q.Get("end_date"))
		assert.Equal(t, "true", q.Get("rth"))
		writeEnvelope(w, http.StatusOK, testEnvelope{Header: okHeader(format...), Response: rows})
	}))

	restTable, err := c.HistOption(context.Background(), theta.OptionReqEOD, HistParams{
		Root:   "AAPL",
		Exp:    time.Date(2022, time.December, 16, 0, 0, 0, 0, time.UTC),
		Strike: theta.Strike(150000),
		Right:  theta.RightCall,
		Start:  time.Date(2022, time.November, 1, 0, 0, 0, 0, time.UTC),
		End:    time.Date(2022, time.November, 30, 0, 0, 0, 0, time.UTC),
		RTH:    true,
	})
	require.NoError(t, err)

	binTable, err := tick.Decode(9, packBinary(
		[]int32{int32(tick.MsOfDay), int32(tick.Open), int32(tick.High), int32(tick.Low), int32(tick.Close), int32(tick.Volume), int32(tick.Count), int32(tick.PriceType), int32(tick.Date)},
		rows[0],
		rows[1],
		[]int32{0, 0, 0, 0, 0, 0, 0, 0, 0},
	))
	require.NoError(t, err)

	assert.Equal(t, binTable, restTable)
}

// TestTablePagination verifies continuation pages are fetched and
// concatenated in order.
func TestTablePagination(t *testing.T) {
	format := []string{"ms_of_day", "volume"}
	var calls int32

	c := newTestREST(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Query().Get("page") == "" {
			writeEnvelope(w, http.StatusOK, testEnvelope{
				Header: testHeader{
					ErrorType: "null",
					NextPage:  "http://" + r.Host + "/hist/stock/trade?page=2",
					Format:    format,
				},
				Response: [][]int32{{34200000, 100}},
			})
			return
		}
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		writeEnvelope(w, http.StatusOK, testEnvelope{
			Header:   okHeader(format...),
			Response: [][]int32{{34260000, 200}},
		})
	}))

	table, err := c.HistStock(context.Background(), theta.StockReqTrade, HistParams{
		Root:  "MSFT",
		Start: time.Date(2022, time.November, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2022, time.November, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	assert.Equal(t, 2, table.NumRows())
	volume, ok := table.Column(tick.Volume)
	require.True(t, ok)
	assert.Equal(t, []int32{100, 200}, volume.Ints)
}

// TestHeaderReportedError verifies a Terminal error inside the envelope
// classifies by message even when it rides a non-200 status.
func TestHeaderReportedError(t *testing.T) {
	c := newTestREST(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 472, testEnvelope{
			Header: testHeader{
				ErrorType: "NO_DATA",
				ErrorMsg:  "No data for the specified timeframe & contract.",
				NextPage:  "null",
			},
			Response: []interface{}{},
		})
	}))

	_, err := c.LastStock(context.Background(), theta.StockReqQuote, "AAPL")
	require.Error(t, err)
	assert.True(t, errors.Is(err, theta.ErrNoData))
}

// TestNon200WithoutEnvelope verifies a bare failure status classifies as a
// connection error.
func TestNon200WithoutEnvelope(t *testing.T) {
	c := newTestREST(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "terminal down", http.StatusInternalServerError)
	}))

	_, err := c.Roots(context.Background(), theta.SecStock)
	require.Error(t, err)
	assert.True(t, errors.Is(err, theta.ErrConnection))
}

// TestMalformedEnvelope verifies garbage on a 200 classifies as a parse
// error.
func TestMalformedEnvelope(t *testing.T) {
	c := newTestREST(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("not json"))
	}))

	_, err := c.Roots(context.Background(), theta.SecStock)
	require.Error(t, err)
	assert.True(t, errors.Is(err, theta.ErrParse))
}

// TestBreakerOpens verifies transport failures trip the breaker and the
// open breaker fails fast without touching the Terminal.
func TestBreakerOpens(t *testing.T) {
	var calls int32
	c := newTestREST(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "terminal down", http.StatusInternalServerError)
	}), WithBreaker(gobreaker.Settings{
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 2
		},
	}))

	for i := 0; i < 2; i++ {
		_, err := c.Roots(context.Background(), theta.SecStock)
		require.Error(t, err)
		assert.True(t, errors.Is(err, theta.ErrConnection))
	}

	_, err := c.Roots(context.Background(), theta.SecStock)
	require.Error(t, err)
	assert.True(t, errors.Is(err, theta.ErrConnection))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "open breaker must not reach the server")
}

// TestHeaderErrorNotBreakerFailure verifies Terminal-reported errors are
// valid responses and never count toward the breaker.
func TestHeaderErrorNotBreakerFailure(t *testing.T) {
	var calls int32
	c := newTestREST(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeEnvelope(w, http.StatusOK, testEnvelope{
			Header: testHeader{
				ErrorType: "NO_DATA",
				ErrorMsg:  "No data for the specified timeframe & contract.",
				NextPage:  "null",
			},
			Response: []interface{}{},
		})
	}), WithBreaker(gobreaker.Settings{
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 1
		},
	}))

	for i := 0; i < 3; i++ {
		_, err := c.LastStock(context.Background(), theta.StockReqQuote, "AAPL")
		require.Error(t, err)
		assert.True(t, errors.Is(err, theta.ErrNoData), "call %d: got %v", i, err)
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

// TestExpirations verifies the listing endpoint and date decoding.
func TestExpirations(t *testing.T) {
	c := newTestREST(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/list/expirations", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("root"))
		writeEnvelope(w, http.StatusOK, testEnvelope{
			Header:   okHeader(),
			Response: []int{20221216, 20230120},
		})
	}))

	dates, err := c.Expirations(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		time.Date(2022, time.December, 16, 0, 0, 0, 0, time.UTC),
		time.Date(2023, time.January, 20, 0, 0, 0, 0, time.UTC),
	}, dates)
}

// TestStrikes verifies the strike listing keeps integral milli-USD.
func TestStrikes(t *testing.T) {
	c := newTestREST(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/list/strikes", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("root"))
		assert.Equal(t, "20221216", r.URL.Query().Get("exp"))
		writeEnvelope(w, http.StatusOK, testEnvelope{
			Header:   okHeader(),
			Response: []int64{150000, 152500},
		})
	}))

	strikes, err := c.Strikes(context.Background(), "AAPL", time.Date(2022, time.December, 16, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []theta.Strike{150000, 152500}, strikes)
}

// TestRoots verifies the roots listing for a security type.
func TestRoots(t *testing.T) {
	c := newTestREST(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/list/roots", r.URL.Path)
		assert.Equal(t, "OPTION", r.URL.Query().Get("sec"))
		writeEnvelope(w, http.StatusOK, testEnvelope{
			Header:   okHeader(),
			Response: []string{"AAPL", "MSFT", "SPXW"},
		})
	}))

	roots, err := c.Roots(context.Background(), theta.SecOption)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT", "SPXW"}, roots)
}

// TestOptionDates verifies the stored-dates listing path layout.
func TestOptionDates(t *testing.T) {
	c := newTestREST(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/list/dates/option/quote", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "AAPL", q.Get("root"))
		assert.Equal(t, "20221216", q.Get("exp"))
		assert.Equal(t, "150000", q.Get("strike"))
		assert.Equal(t, "C", q.Get("right"))
		writeEnvelope(w, http.StatusOK, testEnvelope{
			Header:   okHeader(),
			Response: []int{20221101},
		})
	}))

	dates, err := c.OptionDates(context.Background(), theta.OptionReqQuote, DatesParams{
		Root:   "AAPL",
		Exp:    time.Date(2022, time.December, 16, 0, 0, 0, 0, time.UTC),
		Strike: theta.Strike(150000),
		Right:  theta.RightCall,
	})
	require.NoError(t, err)
	require.Len(t, dates, 1)
	assert.Equal(t, time.Date(2022, time.November, 1, 0, 0, 0, 0, time.UTC), dates[0])
}

// TestNewClientValidation verifies base URL validation and defaulting.
func TestNewClientValidation(t *testing.T) {
	_, err := NewClient("://bad")
	require.Error(t, err)

	c, err := NewClient("")
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.baseURL)

	c, err = NewClient("http://127.0.0.1:25510/")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:25510", c.baseURL, "trailing slash is trimmed")
}

// TestRateLimiterStats verifies the stats accessor wiring.
func TestRateLimiterStats(t *testing.T) {
	c, err := NewClient("", WithDefaultRateLimiter())
	require.NoError(t, err)
	assert.NotNil(t, c.GetRateLimiter())
	assert.NotNil(t, c.GetRateLimiterStats())

	bare, err := NewClient("")
	require.NoError(t, err)
	assert.Nil(t, bare.GetRateLimiter())
	assert.Nil(t, bare.GetRateLimiterStats())
}
