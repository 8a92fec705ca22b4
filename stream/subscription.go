package stream

import (
	"context"
	"fmt"
	"time"

	theta "github.com/thetafeed/theta-go"
	"github.com/thetafeed/theta-go/internal/wire"
)

// optionFields renders the contract part of a subscription line.
func optionFields(root string, exp time.Time, strike theta.Strike, right theta.Right) []wire.Field {
	return []wire.Field{
		wire.Str("root", root),
		wire.Date("exp", exp),
		wire.Int("strike", strike.Milli()),
		wire.Str("right", string(right)),
	}
}

// reqStream allocates a request id and writes a STREAM_REQ line. Id
// allocation and the socket write share the session mutex so ids hit the
// wire in allocation order; the Terminal echoes the id in its ack.
func (s *Session) reqStream(req theta.OptionReq, contract []wire.Field) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil || s.dead {
		return 0, theta.ErrStreamClosed
	}

	id := s.nextID
	s.nextID++

	fields := make([]wire.Field, 0, len(contract)+3)
	fields = append(fields,
		wire.Str("sec", string(theta.SecOption)),
		wire.Int("req", int64(req)),
	)
	fields = append(fields, contract...)
	fields = append(fields, wire.Int("id", int64(id)))

	if _, err := s.conn.Write(wire.EncodeRequest(wire.MsgStreamReq, fields...)); err != nil {
		return 0, fmt.Errorf("%w: stream request: %v", theta.ErrConnection, err)
	}
	s.log.Debug().Int("id", id).Int("req", int(req)).Msg("stream subscription requested")
	return id, nil
}

// removeStream writes a STREAM_REMOVE line. Removals carry id=-1; the
// Terminal does not ack them.
func (s *Session) removeStream(req theta.OptionReq, contract []wire.Field) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil || s.dead {
		return theta.ErrStreamClosed
	}

	fields := make([]wire.Field, 0, len(contract)+3)
	fields = append(fields,
		wire.Str("sec", string(theta.SecOption)),
		wire.Int("req", int64(req)),
	)
	fields = append(fields, contract...)
	fields = append(fields, wire.Int("id", -1))

	if _, err := s.conn.Write(wire.EncodeRequest(wire.MsgStreamRemove, fields...)); err != nil {
		return fmt.Errorf("%w: stream remove: %v", theta.ErrConnection, err)
	}
	return nil
}

// ReqTradeStreamOption subscribes to trades for one option contract and
// returns the request id for Verify.
func (s *Session) ReqTradeStreamOption(root string, exp time.Time, strike theta.Strike, right theta.Right) (int, error) {
	return s.reqStream(theta.OptionReqTrade, optionFields(root, exp, strike, right))
}

// ReqQuoteStreamOption subscribes to top-of-book quotes for one option
// contract and returns the request id for Verify.
func (s *Session) ReqQuoteStreamOption(root string, exp time.Time, strike theta.Strike, right theta.Right) (int, error) {
	return s.reqStream(theta.OptionReqQuote, optionFields(root, exp, strike, right))
}

// ReqFullTradeStreamOption subscribes to every option trade on the tape.
func (s *Session) ReqFullTradeStreamOption() (int, error) {
	return s.reqStream(theta.OptionReqTrade, nil)
}

// ReqFullOpenInterestStream subscribes to every option open interest print.
func (s *Session) ReqFullOpenInterestStream() (int, error) {
	return s.reqStream(theta.OptionReqOpenInterest, nil)
}

// RemoveTradeStreamOption cancels a per-contract trade subscription.
func (s *Session) RemoveTradeStreamOption(root string, exp time.Time, strike theta.Strike, right theta.Right) error {
	return s.removeStream(theta.OptionReqTrade, optionFields(root, exp, strike, right))
}

// RemoveQuoteStreamOption cancels a per-contract quote subscription.
func (s *Session) RemoveQuoteStreamOption(root string, exp time.Time, strike theta.Strike, right theta.Right) error {
	return s.removeStream(theta.OptionReqQuote, optionFields(root, exp, strike, right))
}

// RemoveFullTradeStreamOption cancels the full trade stream.
func (s *Session) RemoveFullTradeStreamOption() error {
	return s.removeStream(theta.OptionReqTrade, nil)
}

// RemoveFullOpenInterestStream cancels the full open interest stream.
func (s *Session) RemoveFullOpenInterestStream() error {
	return s.removeStream(theta.OptionReqOpenInterest, nil)
}

// recordAck stores the Terminal's verdict for a request id and wakes every
// Verify waiter. Runs on the receiver goroutine.
func (s *Session) recordAck(r ReqResponse) {
	s.mu.Lock()
	s.acks[r.ID] = r.Response
	s.cond.Broadcast()
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.RecordAck()
	}
}

// Verify blocks until the Terminal acks the request id, then returns the
// verdict. TimedOut is returned as a value when no ack arrives before the
// deadline (default from config, tightened by ctx); an error is returned
// only for cancellation or a dead session.
func (s *Session) Verify(ctx context.Context, id int) (ResponseType, error) {
	deadline := time.Now().Add(s.cfg.VerifyTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	wake := func() {
		s.mu.Lock()
		s.cond.Broadcast()
		s.mu.Unlock()
	}
	timer := time.AfterFunc(time.Until(deadline), wake)
	defer timer.Stop()
	stop := context.AfterFunc(ctx, wake)
	defer stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		if resp, ok := s.acks[id]; ok {
			return resp, nil
		}
		if s.dead {
			return TimedOut, theta.ErrStreamClosed
		}
		if err := ctx.Err(); err != nil {
			return TimedOut, fmt.Errorf("%w: verify id %d: %v", theta.ErrTimeout, id, err)
		}
		if !time.Now().Before(deadline) {
			return TimedOut, nil
		}
		s.cond.Wait()
	}
}
