package transport

import (
	"context"
	"net"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RawTCPStream is a NetStream over a plain, unencrypted net.Conn.
type RawTCPStream struct {
	conn net.Conn
	log  zerolog.Logger
}

// NewRawTCPStream wraps an already-established net.Conn.
func NewRawTCPStream(conn net.Conn) *RawTCPStream {
	return &RawTCPStream{
		conn: conn,
		log:  log.Logger.With().Str("caller", "transport<TCP>").Str("remote", conn.RemoteAddr().String()).Logger(),
	}
}

func (s *RawTCPStream) RecvUnbuffered(buf []byte, deadline Deadline) (int, error) {
	if err := applyReadDeadline(s.conn, deadline); err != nil {
		return 0, err
	}
	n, err := s.conn.Read(buf)
	if err != nil {
		if isTimeout(err) {
			return n, &TimeoutError{}
		}
		if n == 0 {
			return 0, nil
		}
		return n, &IOError{Op: "recv", Err: err}
	}
	return n, nil
}

func (s *RawTCPStream) Send(data []byte, deadline Deadline) error {
	if err := applyWriteDeadline(s.conn, deadline); err != nil {
		return err
	}
	_, err := s.conn.Write(data)
	if err != nil {
		if isTimeout(err) {
			return &TimeoutError{}
		}
		return &IOError{Op: "send", Err: err}
	}
	return nil
}

func (s *RawTCPStream) Close() error {
	s.log.Debug().Msg("closing raw tcp stream")
	return s.conn.Close()
}

func applyReadDeadline(conn net.Conn, deadline Deadline) error {
	if deadline.IsInfinite() {
		return conn.SetReadDeadline(time.Time{})
	}
	return conn.SetReadDeadline(time.Now().Add(deadline.Remaining()))
}

func applyWriteDeadline(conn net.Conn, deadline Deadline) error {
	if deadline.IsInfinite() {
		return conn.SetWriteDeadline(time.Time{})
	}
	return conn.SetWriteDeadline(time.Now().Add(deadline.Remaining()))
}

func isTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}

// RawConnector dials plain TCP connections, auto-detecting the address
// family (IPv4 vs IPv6) from the resolved host the way the reference
// DefaultConnector does.
type RawConnector struct{}

func (RawConnector) Connect(host string, port int, deadline Deadline) (NetStream, error) {
	dialer := net.Dialer{}
	if !deadline.IsInfinite() {
		dialer.Deadline = time.Now().Add(deadline.Remaining())
	}
	conn, err := dialer.Dial("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, &IOError{Op: "dial", Err: err}
	}
	return NewRawTCPStream(conn), nil
}

// RawListener accepts plain TCP connections on a single bound address,
// with SO_REUSEADDR set the way the reference RawListener configures its
// socket before bind.
type RawListener struct {
	ln  net.Listener
	log zerolog.Logger
}

// ListenRaw binds host:port with SO_REUSEADDR enabled.
func ListenRaw(host string, port int) (*RawListener, error) {
	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				sockErr = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1)
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}
	ln, err := lc.Listen(context.Background(), "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, &IOError{Op: "listen", Err: err}
	}
	return &RawListener{
		ln:  ln,
		log: log.Logger.With().Str("caller", "transport<TCP>").Str("addr", ln.Addr().String()).Logger(),
	}, nil
}

// AcceptNonBlocking returns the next pending connection if one is already
// queued, or (nil, nil) immediately if none is, matching the C9
// server loop's expectation of a non-blocking accept step (the reference
// passes Deadline.INSTANT for this).
func (l *RawListener) AcceptNonBlocking() (NetStream, error) {
	if err := l.ln.(interface {
		SetDeadline(time.Time) error
	}).SetDeadline(time.Now()); err != nil {
		return nil, &IOError{Op: "accept", Err: err}
	}
	conn, err := l.ln.Accept()
	if err != nil {
		if isTimeout(err) {
			return nil, nil
		}
		return nil, &IOError{Op: "accept", Err: err}
	}
	l.log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("accepted raw tcp connection")
	return NewRawTCPStream(conn), nil
}

func (l *RawListener) Close() error {
	return l.ln.Close()
}

func (l *RawListener) Addr() net.Addr {
	return l.ln.Addr()
}
