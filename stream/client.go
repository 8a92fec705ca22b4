// Package stream implements the Terminal's stream-socket protocol: a
// receive loop that decodes tagged frames into typed events, and a
// subscription coordinator that correlates request ids with Terminal acks.
//
// A Session owns one TCP connection. The receiver goroutine is the only
// reader; consumers take events from Events() or install a Handler.
// Subscription calls may come from any goroutine.
package stream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	theta "github.com/thetafeed/theta-go"
	"github.com/thetafeed/theta-go/metrics"
	"github.com/thetafeed/theta-go/middleware"
	"github.com/thetafeed/theta-go/utils"
)

// Session is a stream-socket session with a running Terminal.
type Session struct {
	cfg        *Config
	log        zerolog.Logger
	metrics    *metrics.StreamCollector
	middleware middleware.FrameMiddleware
	handler    Handler

	ctx    context.Context
	cancel context.CancelFunc
	events chan Msg

	// mu guards the connection, the id counter, and the ack registry.
	// cond wakes Verify waiters on acks and on session death.
	mu     sync.Mutex
	cond   *sync.Cond
	conn   net.Conn
	rd     *bufio.Reader
	nextID int
	acks   map[int]ResponseType
	dead   bool
}

// NewSession creates a disconnected stream session.
func NewSession(opts ...Option) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		cfg:    DefaultConfig(),
		log:    zerolog.Nop(),
		ctx:    ctx,
		cancel: cancel,
		acks:   make(map[int]ResponseType),
	}
	s.cond = sync.NewCond(&s.mu)
	for _, opt := range opts {
		opt(s)
	}
	s.events = make(chan Msg, s.cfg.EventBuffer)
	return s
}

// Connect dials the Terminal's stream socket and starts the receiver.
// Refused connections are retried with the same policy as the control
// socket, covering Terminal startup.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.conn != nil {
		s.mu.Unlock()
		return theta.ErrAlreadyConnected
	}
	if s.dead || s.ctx.Err() != nil {
		s.mu.Unlock()
		return theta.ErrStreamClosed
	}
	s.mu.Unlock()

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	dialer := net.Dialer{Timeout: s.cfg.ConnectTimeout}

	var conn net.Conn
	var err error
	for attempt := 1; attempt <= s.cfg.ConnectAttempts; attempt++ {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
		if err == nil {
			break
		}
		if attempt == s.cfg.ConnectAttempts {
			break
		}
		s.log.Debug().Str("addr", addr).Int("attempt", attempt).Err(err).Msg("stream dial failed, retrying")
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: dial %s: %v", theta.ErrConnection, addr, ctx.Err())
		case <-time.After(s.cfg.RetryDelay):
		}
	}
	if err != nil {
		return fmt.Errorf("%w: dial %s after %d attempts: %v", theta.ErrConnection, addr, s.cfg.ConnectAttempts, err)
	}

	s.mu.Lock()
	s.conn = conn
	s.rd = bufio.NewReaderSize(conn, 64<<10)
	s.mu.Unlock()

	process := middleware.FrameHandler(s.processFrame)
	if s.middleware != nil {
		process = s.middleware(process)
	}

	if s.metrics != nil {
		s.metrics.RecordSession(true)
	}
	go s.receiveLoop(process)

	s.log.Info().Str("addr", addr).Msg("stream connected")
	return nil
}

// Events returns the event channel. The channel is closed after the final
// STREAM_DEAD event; ranging over it is the natural consumption loop. In
// handler mode the channel stays empty and only the close is meaningful.
func (s *Session) Events() <-chan Msg {
	return s.events
}

// Close tears the session down. The receiver emits STREAM_DEAD and closes
// the events channel; events not yet consumed may be dropped.
func (s *Session) Close() error {
	s.cancel()
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()
	if conn != nil {
		return conn.Close()
	}
	return nil
}

// receiveLoop reads frames until the socket or a frame fails. It is the
// only goroutine that touches the read side of the connection.
func (s *Session) receiveLoop(process middleware.FrameHandler) {
	defer close(s.events)
	if s.metrics != nil {
		defer s.metrics.RecordSession(false)
	}
	for {
		frame, err := s.readFrame()
		if err != nil {
			s.terminate(err)
			return
		}
		if s.metrics != nil {
			s.metrics.RecordFrame(MsgType(frame[0]).String(), len(frame))
		}
		err = process(s.ctx, frame)
		utils.PutBuffer(frame)
		if err != nil {
			s.terminate(err)
			return
		}
	}
}

// readFrame reads one full frame: tag, contract length, contract block,
// and the tag-implied payload. Frames are not self-delimiting, so an
// unknown tag makes the rest of the byte stream unreadable.
func (s *Session) readFrame() ([]byte, error) {
	s.mu.Lock()
	conn, rd := s.conn, s.rd
	s.mu.Unlock()
	if conn == nil {
		return nil, net.ErrClosed
	}
	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))

	var pre [2]byte
	if _, err := io.ReadFull(rd, pre[:]); err != nil {
		return nil, err
	}
	psize, ok := framePayloadSize(MsgType(pre[0]))
	if !ok {
		return nil, fmt.Errorf("%w: unknown stream frame tag %d", theta.ErrParse, pre[0])
	}

	// Frame buffers are pooled; decoded events copy everything out, so
	// the buffer is recycled as soon as processing returns.
	frame := utils.GetBuffer(2 + int(pre[1]) + psize)
	frame[0], frame[1] = pre[0], pre[1]
	if _, err := io.ReadFull(rd, frame[2:]); err != nil {
		return nil, err
	}
	return frame, nil
}

// framePayloadSize returns the fixed payload size that follows the
// contract block for a frame tag.
func framePayloadSize(tag MsgType) (int, bool) {
	switch tag {
	case MsgQuote:
		return quoteSize, true
	case MsgTrade:
		return tradeSize, true
	case MsgOHLCVC:
		return ohlcvcSize, true
	case MsgOpenInterest:
		return openInterestSize, true
	case MsgReqResponse:
		return reqResponseSize, true
	case MsgStart, MsgStop:
		return dateSize, true
	case MsgPing, MsgError, MsgDisconnected, MsgReconnected:
		return pingSize, true
	case MsgContract:
		return 0, true
	default:
		return 0, false
	}
}

// processFrame decodes one frame and delivers its event. A returned error
// is fatal to the session.
func (s *Session) processFrame(_ context.Context, frame []byte) error {
	tag := MsgType(frame[0])
	clen := int(frame[1])
	payload := frame[2+clen:]

	msg := Msg{Type: tag}
	if clen > 0 {
		contract, err := ParseContract(frame[2 : 2+clen])
		if err != nil {
			return err
		}
		msg.Contract = contract
	}

	switch tag {
	case MsgPing:
		// Keepalive; refreshes the read deadline, no event.
		return nil
	case MsgQuote:
		q, err := ParseQuote(payload)
		if err != nil {
			return err
		}
		msg.Quote = q
	case MsgTrade:
		t, err := ParseTrade(payload)
		if err != nil {
			return err
		}
		msg.Trade = t
	case MsgOHLCVC:
		b, err := ParseOHLCVC(payload)
		if err != nil {
			return err
		}
		msg.OHLCVC = b
	case MsgOpenInterest:
		oi, err := ParseOpenInterest(payload)
		if err != nil {
			return err
		}
		msg.OpenInterest = oi
	case MsgReqResponse:
		r, err := ParseReqResponse(payload)
		if err != nil {
			return err
		}
		msg.ReqResponse = r
		s.recordAck(r)
	case MsgStart, MsgStop:
		d, err := parseDate(payload)
		if err != nil {
			return err
		}
		msg.Date = d
	case MsgDisconnected, MsgReconnected:
		// Terminal-to-upstream connectivity change; payload is reserved.
	case MsgError:
		msg.Err = fmt.Errorf("%w: terminal stream error", theta.ErrResponse)
	case MsgContract:
		// Contract announcement; the contract block is the whole message.
	}

	s.deliver(msg)
	return nil
}

// terminate runs the one-time death sequence: mark dead, wake verifiers,
// emit ERROR for decode failures, then STREAM_DEAD. The caller closes the
// events channel afterwards.
func (s *Session) terminate(cause error) {
	s.mu.Lock()
	s.dead = true
	s.cond.Broadcast()
	s.mu.Unlock()

	if isDecodeError(cause) {
		if s.metrics != nil {
			s.metrics.RecordDecodeError()
		}
		s.log.Error().Err(cause).Msg("stream frame undecodable, tearing down session")
		s.deliver(Msg{Type: MsgError, Err: cause})
	} else {
		s.log.Debug().Err(cause).Msg("stream socket closed")
	}
	s.deliver(Msg{Type: MsgStreamDead, Err: cause})
}

func isDecodeError(err error) bool {
	return errors.Is(err, theta.ErrParse) || errors.Is(err, theta.ErrEnumParse)
}

// deliver hands an event to the consumer. Channel mode blocks when the
// buffer is full, applying backpressure to the socket; after Close,
// undeliverable events are dropped so the receiver can exit.
func (s *Session) deliver(m Msg) {
	if s.handler != nil {
		s.handler(m)
		if s.metrics != nil {
			s.metrics.RecordEvent()
		}
		return
	}
	select {
	case s.events <- m:
		if s.metrics != nil {
			s.metrics.RecordEvent()
		}
	case <-s.ctx.Done():
		if s.metrics != nil {
			s.metrics.RecordDrop()
		}
	}
}
