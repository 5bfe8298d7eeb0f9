package network

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/gorilla/websocket"

	"little-realm/server/errs"
)

// Conn carries whole JSON values in both directions. ReadMessage returns
// io.EOF when the peer has gone away without sending anything.
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	SetDeadline(t time.Time) error
	Close() error
	RemoteAddr() net.Addr
}

// StreamConn frames JSON values on a byte stream such as TCP. Every value,
// the bare integer acknowledgement included, is terminated by a newline in
// both directions. A final value cut off by EOF is still accepted.
type StreamConn struct {
	conn     net.Conn
	r        *bufio.Reader
	w        *bufio.Writer
	maxBytes int
}

// NewStreamConn wraps conn. A single value may not exceed maxBytes.
func NewStreamConn(conn net.Conn, maxBytes int64) *StreamConn {
	return &StreamConn{
		conn:     conn,
		r:        bufio.NewReader(conn),
		w:        bufio.NewWriter(conn),
		maxBytes: int(maxBytes),
	}
}

// ReadMessage reads the next non-blank line and checks that it holds one JSON
// value.
func (c *StreamConn) ReadMessage() ([]byte, error) {
	for {
		line, err := c.readLine()
		if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
			return nil, err
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			if err != nil {
				return nil, io.EOF
			}
			continue
		}
		if !json.Valid(line) {
			return nil, errs.New(errs.MalformedRequest, "line does not hold a JSON value")
		}
		return line, nil
	}
}

func (c *StreamConn) readLine() ([]byte, error) {
	var line []byte
	for {
		chunk, err := c.r.ReadSlice('\n')
		if len(line)+len(chunk) > c.maxBytes {
			return nil, errs.New(errs.MalformedRequest,
				fmt.Sprintf("message exceeds %d bytes", c.maxBytes))
		}
		line = append(line, chunk...)
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return line, err
	}
}

// WriteMessage writes data followed by a newline.
func (c *StreamConn) WriteMessage(data []byte) error {
	if _, err := c.w.Write(data); err != nil {
		return err
	}
	if err := c.w.WriteByte('\n'); err != nil {
		return err
	}
	return c.w.Flush()
}

func (c *StreamConn) SetDeadline(t time.Time) error { return c.conn.SetDeadline(t) }
func (c *StreamConn) Close() error                  { return c.conn.Close() }
func (c *StreamConn) RemoteAddr() net.Addr          { return c.conn.RemoteAddr() }

// WSConn carries one JSON value per WebSocket text frame.
type WSConn struct {
	ws *websocket.Conn
}

// NewWSConn wraps ws and caps incoming frames at maxBytes.
func NewWSConn(ws *websocket.Conn, maxBytes int64) *WSConn {
	ws.SetReadLimit(maxBytes)
	return &WSConn{ws: ws}
}

// ReadMessage reads the next data frame. A close frame reads as io.EOF.
func (c *WSConn) ReadMessage() ([]byte, error) {
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		var closeErr *websocket.CloseError
		if errors.As(err, &closeErr) {
			return nil, io.EOF
		}
		return nil, err
	}
	return data, nil
}

// WriteMessage sends data as a text frame.
func (c *WSConn) WriteMessage(data []byte) error {
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// SetDeadline sets both the read and the write deadline.
func (c *WSConn) SetDeadline(t time.Time) error {
	if err := c.ws.SetReadDeadline(t); err != nil {
		return err
	}
	return c.ws.SetWriteDeadline(t)
}

// Close sends a normal close frame, best effort, then drops the connection.
func (c *WSConn) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return c.ws.Close()
}

func (c *WSConn) RemoteAddr() net.Addr { return c.ws.RemoteAddr() }
