package connection

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/yndnr/microcache-go/internal/protocol"
)

// ErrNotFound is returned by Get for a missing or expired key.
var ErrNotFound = errors.New("connection: key not found")

// ServerError is an -ERR response.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return "server error: " + e.Message
}

// DefaultTimeout bounds a single request when neither ctx nor the client
// sets a deadline.
const DefaultTimeout = 5 * time.Second

// Client is a cache protocol connection. It is safe for concurrent use;
// requests are serialized.
type Client struct {
	addr    string
	timeout time.Duration

	mu   sync.Mutex
	conn net.Conn
	br   *bufio.Reader
	buf  []byte
}

// Dial connects to addr.
func Dial(ctx context.Context, addr string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}
	return &Client{
		addr:    addr,
		timeout: timeout,
		conn:    conn,
		br:      bufio.NewReader(conn),
	}, nil
}

// Addr returns the server address.
func (c *Client) Addr() string { return c.addr }

// Close closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Do sends one raw frame and returns the response without its CRLF. A
// missing '\n' delimiter is added. -ERR responses are returned as
// *ServerError.
//
// Responses are read up to the first "\r\n", so values containing CRLF
// are truncated.
func (c *Client) Do(ctx context.Context, frame []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil, net.ErrClosed
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return nil, err
	}
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	c.buf = append(c.buf[:0], frame...)
	if len(c.buf) == 0 || c.buf[len(c.buf)-1] != '\n' {
		c.buf = append(c.buf, '\n')
	}
	if _, err := c.conn.Write(c.buf); err != nil {
		return nil, c.ioError(ctx, err)
	}

	resp, err := c.readResponse()
	if err != nil {
		return nil, c.ioError(ctx, err)
	}
	if protocol.IsError(resp) {
		return nil, &ServerError{Message: strings.TrimPrefix(string(resp), "-ERR ")}
	}
	return resp, nil
}

func (c *Client) readResponse() ([]byte, error) {
	var resp []byte
	for {
		line, err := c.br.ReadSlice('\n')
		resp = append(resp, line...)
		if err == nil && bytes.HasSuffix(resp, []byte("\r\n")) {
			return resp[:len(resp)-2], nil
		}
		if err != nil && !errors.Is(err, bufio.ErrBufferFull) {
			return nil, err
		}
	}
}

func (c *Client) ioError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	// The socket deadline may fire just before the context timer.
	if d, ok := ctx.Deadline(); ok && !time.Now().Before(d) {
		return context.DeadlineExceeded
	}
	return err
}

func (c *Client) send(ctx context.Context, req protocol.Request) ([]byte, error) {
	frame, err := protocol.AppendRequest(nil, req)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, frame)
}

// Get returns the value stored under key.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := c.send(ctx, protocol.Request{Kind: protocol.KindGet, Key: key})
	if err != nil {
		return nil, err
	}
	if bytes.Equal(resp, bytes.TrimSuffix(protocol.RespNil, []byte("\r\n"))) {
		return nil, ErrNotFound
	}
	return resp, nil
}

// Set stores value under key for ttl.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := c.send(ctx, protocol.Request{Kind: protocol.KindSet, Key: key, Value: value, TTL: ttl})
	return err
}

// Delete removes key.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.send(ctx, protocol.Request{Kind: protocol.KindDelete, Key: key})
	return err
}

// Stats is the server's operation counters.
type Stats struct {
	Gets    uint64 `json:"gets" yaml:"gets"`
	Sets    uint64 `json:"sets" yaml:"sets"`
	Deletes uint64 `json:"deletes" yaml:"deletes"`
}

// Stat returns the server's operation counters.
func (c *Client) Stat(ctx context.Context) (Stats, error) {
	resp, err := c.send(ctx, protocol.Request{Kind: protocol.KindStat})
	if err != nil {
		return Stats{}, err
	}
	return ParseStats(string(resp))
}

// ParseStats parses a STAT response such as
// "GET: 000001; SET: 000002; DELETE: 000000;".
func ParseStats(s string) (Stats, error) {
	var st Stats
	if _, err := fmt.Sscanf(s, "GET: %d; SET: %d; DELETE: %d;", &st.Gets, &st.Sets, &st.Deletes); err != nil {
		return Stats{}, fmt.Errorf("parse stat response %q: %w", s, err)
	}
	return st, nil
}
