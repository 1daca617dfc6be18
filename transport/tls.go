package transport

import (
	"crypto/tls"
	"net"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Certificate is a PEM-encoded TLS server identity, loaded from disk the
// way the reference TlsServerCertificate does (a cert file and a key
// file, both PEM).
type Certificate struct {
	CertFile string
	KeyFile  string
}

// Load reads the certificate pair and builds a *tls.Config suitable for
// a listener. Errors surface as TlsConfigError so callers don't need to
// know crypto/tls's own error shapes.
func (c Certificate) Load() (*tls.Config, error) {
	pair, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
	if err != nil {
		return nil, &TlsConfigError{Reason: err.Error()}
	}
	return &tls.Config{Certificates: []tls.Certificate{pair}}, nil
}

// RawTlsStream is a NetStream over a *tls.Conn. The handshake itself is
// performed synchronously by the listener/connector before this type is
// constructed, matching the reference implementation's "handshake
// happens at accept time, not lazily on first read" behavior.
type RawTlsStream struct {
	conn *tls.Conn
	log  zerolog.Logger
}

func NewRawTlsStream(conn *tls.Conn) *RawTlsStream {
	return &RawTlsStream{
		conn: conn,
		log:  log.Logger.With().Str("caller", "transport<TLS>").Str("remote", conn.RemoteAddr().String()).Logger(),
	}
}

func (s *RawTlsStream) RecvUnbuffered(buf []byte, deadline Deadline) (int, error) {
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

func (s *RawTlsStream) Send(data []byte, deadline Deadline) error {
	if err := applyWriteDeadline(s.conn, deadline); err != nil {
		return err
	}
	if _, err := s.conn.Write(data); err != nil {
		if isTimeout(err) {
			return &TimeoutError{}
		}
		return &IOError{Op: "send", Err: err}
	}
	return nil
}

func (s *RawTlsStream) Close() error {
	s.log.Debug().Msg("closing tls stream")
	return s.conn.Close()
}

// TlsConnector dials TLS connections with SNI set from the target host.
type TlsConnector struct {
	Config *tls.Config
}

func (c TlsConnector) Connect(host string, port int, deadline Deadline) (NetStream, error) {
	cfg := c.Config
	if cfg == nil {
		cfg = &tls.Config{}
	}
	if cfg.ServerName == "" {
		cfg = cfg.Clone()
		cfg.ServerName = host
	}
	dialer := tls.Dialer{Config: cfg}
	ctxDeadline := time.Now().Add(deadline.Remaining())
	if deadline.IsInfinite() {
		ctxDeadline = time.Time{}
	}
	netDialer := &net.Dialer{Deadline: ctxDeadline}
	dialer.NetDialer = netDialer
	conn, err := dialer.Dial("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, &IOError{Op: "dial", Err: err}
	}
	return NewRawTlsStream(conn.(*tls.Conn)), nil
}

// TlsListener accepts TCP connections and synchronously performs the TLS
// handshake before handing back a NetStream, matching the reference's
// TlsListener.accept behavior (handshake happens inline at accept, not
// deferred to first read).
type TlsListener struct {
	raw    *RawListener
	config *tls.Config
	log    zerolog.Logger
}

// ListenTls binds host:port and wraps it with the given TLS config.
func ListenTls(host string, port int, config *tls.Config) (*TlsListener, error) {
	raw, err := ListenRaw(host, port)
	if err != nil {
		return nil, err
	}
	return &TlsListener{
		raw:    raw,
		config: config,
		log:    log.Logger.With().Str("caller", "transport<TLS>").Str("addr", raw.Addr().String()).Logger(),
	}, nil
}

// AcceptNonBlocking mirrors RawListener.AcceptNonBlocking but performs
// the TLS handshake synchronously before returning, so a HandshakeError
// surfaces to the caller immediately rather than on first use.
func (l *TlsListener) AcceptNonBlocking() (NetStream, error) {
	raw, err := l.raw.AcceptNonBlocking()
	if err != nil || raw == nil {
		return nil, err
	}
	tcpStream := raw.(*RawTCPStream)
	tlsConn := tls.Server(tcpStream.conn, l.config)
	if err := tlsConn.Handshake(); err != nil {
		l.log.Debug().Err(err).Msg("tls handshake failed")
		_ = tcpStream.conn.Close()
		return nil, &HandshakeError{Reason: err.Error()}
	}
	return NewRawTlsStream(tlsConn), nil
}

func (l *TlsListener) Close() error {
	return l.raw.Close()
}

func (l *TlsListener) Addr() net.Addr {
	return l.raw.Addr()
}
