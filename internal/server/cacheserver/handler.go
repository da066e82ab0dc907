package cacheserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yndnr/microcache-go/internal/dispatch"
	"github.com/yndnr/microcache-go/internal/protocol"
)

// Handler serves one client connection.
type Handler struct {
	id          string
	srv         *Server
	conn        net.Conn
	remote      string
	ip          string
	connectedAt time.Time
	logger      *slog.Logger

	alive      atomic.Bool
	closed     atomic.Bool
	byServer   atomic.Bool
	commands   atomic.Uint64
	reads      atomic.Uint64
	bytesRead  atomic.Uint64
	lastActive atomic.Int64

	release func()
}

func newHandler(srv *Server, id string, c net.Conn) *Handler {
	remote := c.RemoteAddr().String()
	ip := remote
	if host, _, err := net.SplitHostPort(remote); err == nil {
		ip = host
	}
	now := time.Now()
	h := &Handler{
		id:          id,
		srv:         srv,
		conn:        c,
		remote:      remote,
		ip:          ip,
		connectedAt: now,
		logger:      srv.logger.With("conn_id", id, "remote", remote),
		release: sync.OnceFunc(func() {
			srv.gate.Release(1)
		}),
	}
	h.alive.Store(true)
	h.lastActive.Store(now.UnixNano())
	return h
}

// ID returns the connection ID.
func (h *Handler) ID() string { return h.id }

// Alive reports whether the connection is still being served.
func (h *Handler) Alive() bool { return h.alive.Load() }

func (h *Handler) close() error {
	if !h.closed.CompareAndSwap(false, true) {
		return nil
	}
	return h.conn.Close()
}

// closeByServer flags the connection as dropped by the server.
func (h *Handler) closeByServer(reason string, args ...any) {
	h.byServer.Store(true)
	h.logger.Warn(reason, args...)
}

func (h *Handler) record() ConnectionRecord {
	return ConnectionRecord{
		ID:             h.id,
		Remote:         h.remote,
		ConnectedAt:    h.connectedAt,
		LastActive:     time.Unix(0, h.lastActive.Load()),
		Commands:       h.commands.Load(),
		Reads:          h.reads.Load(),
		BytesRead:      h.bytesRead.Load(),
		Alive:          h.alive.Load(),
		ClosedByServer: h.byServer.Load(),
	}
}

// serve runs the read loop until the client leaves, an I/O error occurs or
// ctx is done. On return every resource held by the handler is released.
func (h *Handler) serve(ctx context.Context) {
	recv := h.srv.recvPool.Get()
	accBuf := h.srv.accPool.Get()
	acc := protocol.NewAccumulator(*accBuf)
	stop := context.AfterFunc(ctx, func() { _ = h.close() })

	defer func() {
		stop()
		_ = h.close()
		acc.Reset()
		h.srv.accPool.Put(accBuf)
		h.srv.recvPool.Put(recv)
		byServer := h.byServer.Load()
		h.alive.Store(false)
		h.release()
		h.srv.metrics.ClientClosed(byServer)
		h.logger.Debug("connection closed",
			"commands", h.commands.Load(),
			"reads", h.reads.Load(),
			"bytes_read", h.bytesRead.Load(),
			"by_server", byServer,
		)
	}()

	h.logger.Debug("connection accepted")

	cfg := h.srv.cfg
	frames := make([]protocol.Frame, 0, 16)
	for {
		if err := h.conn.SetReadDeadline(time.Now().Add(cfg.IdleTimeout)); err != nil {
			return
		}
		n, err := h.conn.Read(*recv)
		if n > 0 {
			h.reads.Add(1)
			h.bytesRead.Add(uint64(n))
			h.lastActive.Store(time.Now().UnixNano())
			h.srv.metrics.AddBytesRead(n)

			if aerr := acc.Append((*recv)[:n]); aerr != nil {
				h.closeByServer("closing connection", "error", aerr)
				return
			}
			if !h.process(ctx, acc, &frames) {
				return
			}
		}
		if err != nil {
			h.readFailed(ctx, err)
			return
		}
	}
}

func (h *Handler) readFailed(ctx context.Context, err error) {
	var netErr net.Error
	switch {
	case errors.Is(err, io.EOF):
		h.logger.Debug("client disconnected")
	case ctx.Err() != nil:
		h.logger.Debug("connection cancelled", "error", ctx.Err())
	case errors.As(err, &netErr) && netErr.Timeout():
		h.byServer.Store(true)
		h.logger.Debug("connection idle timeout", "idle_timeout", h.srv.cfg.IdleTimeout)
	case errors.Is(err, net.ErrClosed):
	default:
		h.logger.Debug("connection read error", "error", err)
	}
}

// process executes every complete frame in the accumulator in order. It
// reports false when the connection must be closed.
func (h *Handler) process(ctx context.Context, acc *protocol.Accumulator, frames *[]protocol.Frame) bool {
	limit := h.srv.cfg.MaxCommandSize
	buf := acc.Unread()
	consumed, fs := protocol.Split(buf, (*frames)[:0])
	*frames = fs

	for _, f := range fs {
		if err := protocol.CheckFrame(f.Length, limit); err != nil {
			h.closeByServer("closing connection", "error", err, "length", f.Length, "limit", limit)
			return false
		}
		resp, keep := h.execute(ctx, f.Bytes(buf))
		if err := h.write(resp); err != nil {
			return false
		}
		if !keep {
			return false
		}
	}
	acc.Consume(consumed)

	// An unterminated frame that already reaches the limit can never pass.
	if err := protocol.CheckFrame(acc.Len(), limit); err != nil {
		h.closeByServer("closing connection", "error", err, "pending", acc.Len(), "limit", limit)
		return false
	}
	return true
}

// execute runs one frame and returns its response. keep is false when the
// connection should close after the response is written.
func (h *Handler) execute(ctx context.Context, frame []byte) (resp []byte, keep bool) {
	h.commands.Add(1)
	req := protocol.ParseCommand(frame)

	if !h.srv.limiter.allow(h.ip) {
		h.srv.metrics.CommandRateLimited()
		h.logger.Debug("command rate limited", "kind", req.Kind.String())
		return protocol.RespRateLimited, true
	}

	cmd := dispatch.NewCommand(req)
	if err := h.srv.disp.Submit(cmd); err != nil {
		return protocol.RespUnavailable, false
	}

	out, err := cmd.Completion.Wait(ctx)
	switch {
	case err == nil:
		return out, true
	case errors.Is(err, dispatch.ErrClosed), ctx.Err() != nil:
		return protocol.RespUnavailable, false
	default:
		h.logger.Error("command failed", "kind", req.Kind.String(), "key", req.Key, "error", err)
		return protocol.RespInternal, true
	}
}

func (h *Handler) write(resp []byte) error {
	if err := h.conn.SetWriteDeadline(time.Now().Add(h.srv.cfg.WriteTimeout)); err != nil {
		return err
	}
	if _, err := h.conn.Write(resp); err != nil {
		h.logger.Debug("connection write error", "error", err)
		return err
	}
	return nil
}
