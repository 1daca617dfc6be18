package hackvr

import (
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hackvr/hackvr/transport"
	"github.com/hackvr/hackvr/wire"
)

// pollInterval is the sleep between iterations of the accept/poll loop,
// matching the reference implementation's 0.01s cooperative yield.
const pollInterval = 10 * time.Millisecond

type acceptor interface {
	AcceptNonBlocking() (transport.NetStream, error)
	Close() error
	Addr() net.Addr
}

// binding is one listening socket plus the dialect it speaks.
type binding struct {
	protocol string
	secure   bool
	listener acceptor
}

// ServerConnection is one accepted client, from the moment its handshake
// completes until it disconnects.
type ServerConnection struct {
	*connection
	Handler wire.ServerHandler
	Remote  *wire.RemoteClient
}

// poll runs one non-blocking pass over this connection, dispatching any
// complete frames to Handler. It returns false once the peer has
// disconnected.
func (sc *ServerConnection) poll() bool {
	frames, ok, err := sc.pollFrames()
	if err != nil {
		sc.log.Debug().Err(err).Msg("error while polling connection")
		return false
	}
	if !ok {
		return false
	}
	for _, f := range frames {
		wire.ExecuteServerCommand(sc.Handler, f.Name, f.Params)
	}
	return true
}

// ServerOptions configures a Server via the functional-option pattern.
type ServerOptions struct {
	Metrics *transport.Metrics
}

// ServerOption mutates ServerOptions.
type ServerOption func(*ServerOptions)

// WithMetrics attaches a set of Prometheus counters to the server loop.
func WithMetrics(m *transport.Metrics) ServerOption {
	return func(o *ServerOptions) { o.Metrics = m }
}

// AcceptHandler is supplied by the application to produce a ServerHandler
// for each newly handshaken connection.
type AcceptHandler func(token transport.ConnectionToken) wire.ServerHandler

// Server owns a set of bindings (listening sockets, one per protocol
// dialect/address) and runs the cooperative accept/poll loop described
// in the protocol's server component.
type Server struct {
	bindings []*binding
	conns    []*ServerConnection
	accept   AcceptHandler
	metrics  *transport.Metrics
	log      zerolog.Logger
	stopped  bool
}

// NewServer constructs a Server that calls accept for every newly
// handshaken connection to obtain the application's command handler.
func NewServer(accept AcceptHandler, opts ...ServerOption) *Server {
	o := ServerOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		accept:  accept,
		metrics: o.Metrics,
		log:     log.Logger.With().Str("caller", "hackvr<server>").Logger(),
	}
}

// AddRawBinding listens for the plain hackvr dialect on host:port. A
// hostname of "*" binds both 0.0.0.0 and :: the way the reference
// add_binding does for wildcard hosts.
func (s *Server) AddRawBinding(host string, port int) error {
	return s.addBinding(host, port, "hackvr", false, nil)
}

// AddTlsBinding listens for the hackvrs dialect on host:port.
func (s *Server) AddTlsBinding(host string, port int, cert transport.Certificate) error {
	cfg, err := cert.Load()
	if err != nil {
		return err
	}
	return s.addBinding(host, port, "hackvrs", true, cfg)
}

func (s *Server) addBinding(host string, port int, protocol string, secure bool, tlsConfig *tls.Config) error {
	hosts := []string{host}
	if host == "*" {
		hosts = []string{"0.0.0.0", "::"}
	}
	added := make([]*binding, 0, len(hosts))
	for _, h := range hosts {
		var l acceptor
		var err error
		if secure {
			l, err = transport.ListenTls(h, port, tlsConfig)
		} else {
			l, err = transport.ListenRaw(h, port)
		}
		if err != nil {
			for _, b := range added {
				_ = b.listener.Close()
			}
			return fmt.Errorf("add binding %s:%d (%s): %w", h, port, protocol, err)
		}
		b := &binding{protocol: protocol, secure: secure, listener: l}
		added = append(added, b)
	}
	s.bindings = append(s.bindings, added...)
	return nil
}

// ServeForever runs the accept and poll phases in a loop until Stop is
// called. It is meant to be run on its own goroutine or as a program's
// main loop; it never returns until stopped.
func (s *Server) ServeForever() {
	for !s.stopped {
		s.acceptPhase()
		s.pollPhase()
		time.Sleep(pollInterval)
	}
}

func (s *Server) acceptPhase() {
	for _, b := range s.bindings {
		stream, err := b.listener.AcceptNonBlocking()
		if err != nil {
			s.log.Debug().Err(err).Str("protocol", b.protocol).Msg("accept error")
			continue
		}
		if stream == nil {
			continue
		}
		s.metrics.IncAccepted()
		s.completeHandshake(stream, b.protocol, b.secure)
	}
}

func (s *Server) completeHandshake(stream transport.NetStream, protocol string, secure bool) {
	buffered := transport.NewBufferedStream(stream, nil)
	deadline := transport.DefaultHelloDeadline()

	var token *transport.ConnectionToken
	var err error
	switch protocol {
	case "hackvr", "hackvrs":
		if serr := transport.SendServerHello(buffered, deadline, "v1"); serr != nil {
			err = serr
			break
		}
		token, err = transport.ReceiveClientHello(buffered, deadline, protocol, secure)
	case "http+hackvr", "https+hackvr":
		var req *transport.HTTPRequest
		req, err = transport.ReceiveHTTPUpgradeRequest(buffered, deadline)
		if err == nil {
			token, err = transport.ValidateUpgradeRequest(req, protocol, secure)
		}
		if err == nil {
			err = transport.SendUpgradeResponse(buffered, deadline, "v1")
		}
	default:
		err = &transport.UnsupportedSchemeError{Scheme: protocol}
	}

	if err != nil {
		s.metrics.IncHandshakeFailed()
		s.log.Debug().Err(err).Msg("handshake failed")
		_ = stream.Close()
		return
	}

	conn := newConnection(buffered, *token, s.metrics)
	handler := s.accept(*token)
	sc := &ServerConnection{connection: conn, Handler: handler}
	sc.Remote = &wire.RemoteClient{Sender: sc}
	s.conns = append(s.conns, sc)
}

func (s *Server) pollPhase() {
	live := s.conns[:0]
	for _, sc := range s.conns {
		if sc.poll() {
			live = append(live, sc)
			continue
		}
		s.metrics.IncDisconnected()
		_ = sc.close()
	}
	s.conns = live
}

// Stop ends ServeForever after its current iteration and closes every
// binding and connection.
func (s *Server) Stop() {
	s.stopped = true
	for _, b := range s.bindings {
		_ = b.listener.Close()
	}
	for _, sc := range s.conns {
		_ = sc.close()
	}
	s.conns = nil
}
