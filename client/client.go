// Package client implements the request/response session with the Theta
// Terminal over the control socket. A session is strictly one-in-flight:
// each operation writes one request line and fully reads one framed
// response before returning. The session is owned by its caller and must
// not be shared across goroutines without external synchronization.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	theta "github.com/thetafeed/theta-go"
	"github.com/thetafeed/theta-go/internal/wire"
	"github.com/thetafeed/theta-go/metrics"
	"github.com/thetafeed/theta-go/tick"
)

type sessionState int

const (
	stateDisconnected sessionState = iota
	stateConnecting
	stateReady
	stateRequesting
	stateClosed
	stateFailed
)

// Client is a control-socket session with a running Terminal.
type Client struct {
	cfg     *Config
	log     zerolog.Logger
	limiter *rate.Limiter
	metrics *metrics.RequestCollector

	state sessionState
	conn  net.Conn
	rd    *bufio.Reader
}

// NewClient creates a disconnected session. Call Connect before issuing
// requests, or use WithSession to scope the lifecycle.
func NewClient(opts ...Option) *Client {
	c := &Client{
		cfg: DefaultConfig(),
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithSession connects a session, runs fn, and closes the session on every
// exit path.
func WithSession(ctx context.Context, fn func(*Client) error, opts ...Option) error {
	c := NewClient(opts...)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}

// Connect dials the Terminal's control socket and performs the version
// handshake. Refused connections are retried up to the configured attempt
// count with a fixed delay, which covers the window where the Terminal is
// still starting up.
func (c *Client) Connect(ctx context.Context) error {
	if c.state == stateReady || c.state == stateRequesting {
		return theta.ErrAlreadyConnected
	}
	c.state = stateConnecting

	addr := net.JoinHostPort(c.cfg.Host, strconv.Itoa(c.cfg.Port))
	dialer := net.Dialer{Timeout: c.cfg.ConnectTimeout}

	var conn net.Conn
	var err error
	for attempt := 1; attempt <= c.cfg.ConnectAttempts; attempt++ {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
		if err == nil {
			break
		}
		if attempt == c.cfg.ConnectAttempts {
			break
		}
		c.log.Debug().Str("addr", addr).Int("attempt", attempt).Err(err).Msg("terminal dial failed, retrying")
		select {
		case <-ctx.Done():
			c.state = stateFailed
			return fmt.Errorf("%w: dial %s: %v", theta.ErrConnection, addr, ctx.Err())
		case <-time.After(c.cfg.RetryDelay):
		}
	}
	if err != nil {
		c.state = stateFailed
		return fmt.Errorf("%w: dial %s after %d attempts: %v", theta.ErrConnection, addr, c.cfg.ConnectAttempts, err)
	}

	c.conn = conn
	c.rd = bufio.NewReader(conn)

	// Version handshake. The line reuses the HIST message code; that is the
	// Terminal's observable protocol.
	handshake := wire.EncodeRequest(wire.MsgHist, wire.Str("version", c.cfg.Version))
	if _, err := c.conn.Write(handshake); err != nil {
		conn.Close()
		c.state = stateFailed
		return fmt.Errorf("%w: version handshake: %v", theta.ErrConnection, err)
	}

	c.state = stateReady
	c.log.Info().Str("addr", addr).Str("version", c.cfg.Version).Msg("connected to terminal")
	return nil
}

// Close closes the control socket. The session cannot be reused.
func (c *Client) Close() error {
	if c.conn == nil {
		c.state = stateClosed
		return nil
	}
	c.state = stateClosed
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Kill asks the Terminal process to exit and closes the session. Any
// subsequent call on this session fails; the client never reconnects on
// its own.
func (c *Client) Kill(ctx context.Context) error {
	if c.state != stateReady {
		return theta.ErrNotConnected
	}
	line := wire.EncodeRequest(wire.MsgKill)
	_, err := c.conn.Write(line)
	c.log.Info().Msg("sent kill to terminal")
	c.Close()
	if err != nil {
		return fmt.Errorf("%w: kill: %v", theta.ErrConnection, err)
	}
	return nil
}

// roundTrip writes one request line and reads one framed response. ERROR
// responses are classified into the error taxonomy; parse failures on the
// header poison the session because the byte stream can no longer be
// trusted.
func (c *Client) roundTrip(ctx context.Context, op wire.MessageType, line []byte) (wire.Header, []byte, error) {
	if c.state != stateReady {
		return wire.Header{}, nil, theta.ErrNotConnected
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return wire.Header{}, nil, fmt.Errorf("%w: rate limit: %v", theta.ErrTimeout, err)
		}
	}

	c.state = stateRequesting
	defer func() {
		if c.state == stateRequesting {
			c.state = stateReady
		}
	}()

	deadline := time.Now().Add(c.cfg.RequestTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = c.conn.SetDeadline(deadline)

	start := time.Now()
	if _, err := c.conn.Write(line); err != nil {
		c.fail()
		return wire.Header{}, nil, c.ioError("write request", err)
	}
	if c.metrics != nil {
		c.metrics.RecordRequest(op.String(), len(line))
	}

	hdr, err := wire.ReadHeader(c.rd)
	if err != nil {
		c.fail()
		if errors.Is(err, theta.ErrEnumParse) || errors.Is(err, theta.ErrParse) {
			return wire.Header{}, nil, err
		}
		return wire.Header{}, nil, c.ioError("read header", err)
	}

	body, err := wire.ReadBody(c.rd, int(hdr.BodySize))
	if err != nil {
		c.fail()
		return wire.Header{}, nil, c.ioError("read body", err)
	}
	if c.metrics != nil {
		c.metrics.RecordResponse(wire.HeaderSize+len(body), time.Since(start))
	}

	c.log.Debug().
		Stringer("type", hdr.Type).
		Uint32("body_size", hdr.BodySize).
		Uint16("latency_ms", hdr.Latency).
		Msg("response")

	if hdr.Type == wire.MsgError {
		return hdr, nil, theta.TerminalError(string(body))
	}
	return hdr, body, nil
}

// fail marks the session broken after an I/O or framing error.
func (c *Client) fail() {
	c.state = stateFailed
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// ioError classifies a socket error against the configured deadline.
func (c *Client) ioError(op string, err error) error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		if c.metrics != nil {
			c.metrics.RecordError(true)
		}
		return fmt.Errorf("%w: %s: %v", theta.ErrTimeout, op, err)
	}
	if c.metrics != nil {
		c.metrics.RecordError(false)
	}
	return fmt.Errorf("%w: %s: %v", theta.ErrConnection, op, err)
}

// table runs a request whose response body is a tick table.
func (c *Client) table(ctx context.Context, op wire.MessageType, fields []wire.Field) (*tick.Table, error) {
	hdr, body, err := c.roundTrip(ctx, op, wire.EncodeRequest(op, fields...))
	if err != nil {
		return nil, err
	}
	tbl, err := tick.Decode(int(hdr.FormatLen), body)
	if err != nil {
		return nil, err
	}
	return tbl, nil
}

// list runs a request whose response body is a comma list.
func (c *Client) list(ctx context.Context, op wire.MessageType, fields []wire.Field) ([]byte, error) {
	_, body, err := c.roundTrip(ctx, op, wire.EncodeRequest(op, fields...))
	if err != nil {
		return nil, err
	}
	return body, nil
}

// HistOption fetches a historical option series.
func (c *Client) HistOption(ctx context.Context, req HistOptionRequest) (*tick.Table, error) {
	tbl, err := c.table(ctx, wire.MsgHist, req.fields())
	if err != nil {
		return nil, fmt.Errorf("hist option: %w", err)
	}
	return tbl, nil
}

// HistStock fetches a historical stock series.
func (c *Client) HistStock(ctx context.Context, req HistStockRequest) (*tick.Table, error) {
	tbl, err := c.table(ctx, wire.MsgHist, req.fields())
	if err != nil {
		return nil, fmt.Errorf("hist stock: %w", err)
	}
	return tbl, nil
}

// OptionAtTime fetches the option data in effect at a time-of-day across a
// date range.
func (c *Client) OptionAtTime(ctx context.Context, req AtTimeOptionRequest) (*tick.Table, error) {
	tbl, err := c.table(ctx, wire.MsgAtTime, req.fields())
	if err != nil {
		return nil, fmt.Errorf("option at-time: %w", err)
	}
	return tbl, nil
}

// StockAtTime fetches the stock data in effect at a time-of-day across a
// date range.
func (c *Client) StockAtTime(ctx context.Context, req AtTimeStockRequest) (*tick.Table, error) {
	tbl, err := c.table(ctx, wire.MsgAtTime, req.fields())
	if err != nil {
		return nil, fmt.Errorf("stock at-time: %w", err)
	}
	return tbl, nil
}

// LastOption fetches the most recent tick for an option contract.
func (c *Client) LastOption(ctx context.Context, req LastOptionRequest) (*tick.Table, error) {
	tbl, err := c.table(ctx, wire.MsgLast, req.fields())
	if err != nil {
		return nil, fmt.Errorf("last option: %w", err)
	}
	return tbl, nil
}

// LastStock fetches the most recent tick for a stock.
func (c *Client) LastStock(ctx context.Context, req LastStockRequest) (*tick.Table, error) {
	tbl, err := c.table(ctx, wire.MsgLast, req.fields())
	if err != nil {
		return nil, fmt.Errorf("last stock: %w", err)
	}
	return tbl, nil
}

// Expirations lists the expiration dates of a root's option chain.
func (c *Client) Expirations(ctx context.Context, root string) ([]time.Time, error) {
	body, err := c.list(ctx, wire.MsgAllExpirations, []wire.Field{wire.Str("root", root)})
	if err != nil {
		return nil, fmt.Errorf("expirations: %w", err)
	}
	dates, err := tick.DecodeDateList(body)
	if err != nil {
		return nil, fmt.Errorf("expirations: %w", err)
	}
	return dates, nil
}

// Strikes lists the strike grid for (root, expiration). A non-nil dateRange
// restricts the listing to strikes traded inside the range.
func (c *Client) Strikes(ctx context.Context, root string, exp time.Time, dateRange *DateRange) ([]theta.Strike, error) {
	fields := []wire.Field{
		wire.Str("root", root),
		wire.Date("exp", exp),
	}
	if dateRange != nil {
		fields = append(fields,
			wire.Date("START_DATE", dateRange.Start),
			wire.Date("END_DATE", dateRange.End),
		)
	}
	body, err := c.list(ctx, wire.MsgAllStrikes, fields)
	if err != nil {
		return nil, fmt.Errorf("strikes: %w", err)
	}
	strikes, err := tick.DecodeStrikeList(body)
	if err != nil {
		return nil, fmt.Errorf("strikes: %w", err)
	}
	return strikes, nil
}

// Roots lists every root symbol for a security type.
func (c *Client) Roots(ctx context.Context, sec theta.SecurityType) ([]string, error) {
	body, err := c.list(ctx, wire.MsgAllRoots, []wire.Field{wire.Str("sec", string(sec))})
	if err != nil {
		return nil, fmt.Errorf("roots: %w", err)
	}
	return tick.DecodeList(body), nil
}

// OptionDates lists the dates with stored data for an option contract and
// request type.
func (c *Client) OptionDates(ctx context.Context, req DatesOptionRequest) ([]time.Time, error) {
	body, err := c.list(ctx, wire.MsgAllDates, req.fields())
	if err != nil {
		return nil, fmt.Errorf("option dates: %w", err)
	}
	dates, err := tick.DecodeDateList(body)
	if err != nil {
		return nil, fmt.Errorf("option dates: %w", err)
	}
	return dates, nil
}

// StockDates lists the dates with stored data for a stock and request type.
func (c *Client) StockDates(ctx context.Context, req DatesStockRequest) ([]time.Time, error) {
	body, err := c.list(ctx, wire.MsgAllDates, req.fields())
	if err != nil {
		return nil, fmt.Errorf("stock dates: %w", err)
	}
	dates, err := tick.DecodeDateList(body)
	if err != nil {
		return nil, fmt.Errorf("stock dates: %w", err)
	}
	return dates, nil
}

// Raw writes a pre-formatted request line and returns the raw response.
// The line's MSG_CODE is parsed for metrics only; a missing newline is
// appended.
func (c *Client) Raw(ctx context.Context, line string) (wire.Header, []byte, error) {
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	op := wire.MessageType(0)
	if code, ok := parseMsgCode(line); ok {
		op = wire.MessageType(code)
	}
	return c.roundTrip(ctx, op, []byte(line))
}

func parseMsgCode(line string) (int, bool) {
	const prefix = "MSG_CODE="
	if !strings.HasPrefix(line, prefix) {
		return 0, false
	}
	rest := line[len(prefix):]
	if i := strings.IndexAny(rest, "&\n"); i >= 0 {
		rest = rest[:i]
	}
	code, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return code, true
}
