package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"little-realm/server/errs"
	"little-realm/server/logger"
	"little-realm/server/messages"
)

// AbortAck is the acknowledgement a client sends to refuse the response.
const AbortAck = -1

var (
	// ErrNoData means the client closed the connection without sending.
	ErrNoData = errors.New("no data")
	// ErrAborted means the client acknowledged with AbortAck.
	ErrAborted = errors.New("client aborted the transfer")
)

// State is where a session is in the request handshake.
type State int

const (
	StateIdle State = iota
	StateAwaitingRequest
	StateDispatching
	StateAwaitingSizeAck
	StateSendingPayload
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingRequest:
		return "awaiting_request"
	case StateDispatching:
		return "dispatching"
	case StateAwaitingSizeAck:
		return "awaiting_size_ack"
	case StateSendingPayload:
		return "sending_payload"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Processor turns a request into a response.
type Processor interface {
	Process(ctx context.Context, req messages.Request) (messages.Response, error)
}

// Session runs the handshake for one connection: one request in, the size of
// the response out, the matching acknowledgement in, then the response out.
type Session struct {
	ID      string
	conn    Conn
	proc    Processor
	timeout time.Duration
	state   State
	log     *logrus.Entry
}

// NewSession prepares a session. The whole exchange must finish within
// timeout; zero disables the deadline.
func NewSession(id string, conn Conn, proc Processor, timeout time.Duration) *Session {
	return &Session{
		ID:      id,
		conn:    conn,
		proc:    proc,
		timeout: timeout,
		state:   StateIdle,
		log: logger.Log.WithFields(logrus.Fields{
			"session": id,
			"remote":  conn.RemoteAddr().String(),
		}),
	}
}

// State returns the current handshake state.
func (s *Session) State() State {
	return s.state
}

// Close drops the connection. A blocked Serve returns with an error.
func (s *Session) Close() error {
	return s.conn.Close()
}

// Serve runs the handshake to completion and closes the connection. Effects
// of a dispatched request stand even if the response is never delivered.
func (s *Session) Serve(ctx context.Context) error {
	defer func() {
		s.state = StateClosed
		if err := s.conn.Close(); err != nil && !errors.Is(err, io.ErrClosedPipe) {
			s.log.WithError(err).Debug("Close failed")
		}
	}()

	err := s.serve(ctx)
	switch {
	case err == nil:
		s.log.Debug("Response delivered")
	case errors.Is(err, ErrNoData), errors.Is(err, ErrAborted):
		s.log.WithField("state", s.state).Debug(err.Error())
	default:
		s.log.WithError(err).WithFields(logrus.Fields{
			"state": s.state,
			"kind":  errs.KindOf(err),
		}).Warn("Session failed")
	}
	return err
}

func (s *Session) serve(ctx context.Context) error {
	if s.timeout > 0 {
		if err := s.conn.SetDeadline(time.Now().Add(s.timeout)); err != nil {
			if errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed) {
				return ErrNoData
			}
			return fmt.Errorf("set deadline: %w", err)
		}
	}

	s.state = StateAwaitingRequest
	raw, err := s.read()
	if err != nil {
		return err
	}
	req, err := messages.DecodeRequest(raw)
	if err != nil {
		return err
	}

	s.state = StateDispatching
	resp, err := s.proc.Process(ctx, req)
	if err != nil {
		return fmt.Errorf("process %s: %w", req.Request, err)
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	s.state = StateAwaitingSizeAck
	size, _ := json.Marshal(len(payload))
	if err := s.conn.WriteMessage(size); err != nil {
		return fmt.Errorf("send size: %w", err)
	}
	raw, err = s.read()
	if err != nil {
		return err
	}
	var ack int
	if err := json.Unmarshal(raw, &ack); err != nil {
		return errs.Wrap(errs.MalformedRequest, "size acknowledgement is not an integer", err)
	}
	if ack == AbortAck {
		return ErrAborted
	}
	if ack != len(payload) {
		return errs.New(errs.PacketSizeMismatch,
			fmt.Sprintf("client acknowledged %d bytes, response is %d", ack, len(payload)))
	}

	s.state = StateSendingPayload
	if err := s.conn.WriteMessage(payload); err != nil {
		return fmt.Errorf("send response: %w", err)
	}
	return nil
}

func (s *Session) read() ([]byte, error) {
	raw, err := s.conn.ReadMessage()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoData
	}
	return raw, err
}
