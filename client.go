package hackvr

import (
	"crypto/tls"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hackvr/hackvr/transport"
	"github.com/hackvr/hackvr/wire"
)

// ClientConnection is the client-side half of a live connection: frames
// arriving from the server are dispatched to Handler, and RemoteServer
// sends frames back.
type ClientConnection struct {
	*connection
	Handler wire.ClientHandler
	Remote  *wire.RemoteServer
}

// Poll runs one non-blocking pass over the connection, dispatching any
// frames the server sent to Handler. It returns false once the server
// has disconnected.
func (cc *ClientConnection) Poll() bool {
	frames, ok, err := cc.pollFrames()
	if err != nil {
		cc.log.Debug().Err(err).Msg("error while polling connection")
		return false
	}
	if !ok {
		return false
	}
	for _, f := range frames {
		wire.ExecuteClientCommand(cc.Handler, f.Name, f.Params)
	}
	return true
}

// Close ends the connection.
func (cc *ClientConnection) Close() error {
	return cc.close()
}

// Client dials a HackVR server, performs the handshake appropriate to
// the URL's scheme, and returns a live ClientConnection.
type Client struct {
	TlsConfig *tls.Config
	Metrics   *transport.Metrics
	log       zerolog.Logger
}

// NewClient returns a Client using the default TLS configuration (system
// root CAs) for the secure dialects.
func NewClient() *Client {
	return &Client{log: log.Logger.With().Str("caller", "hackvr<client>").Logger()}
}

// Connect dials target, which must use the hackvr, hackvrs, http+hackvr,
// or https+hackvr scheme. A #fragment on target is treated as an
// explicit session token to resume, the same as passing sessionToken.
func (c *Client) Connect(target string, sessionToken string, newHandler func(token transport.ConnectionToken) wire.ClientHandler) (*ClientConnection, error) {
	parsed, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("hackvr: parse connect url: %w", err)
	}

	host := parsed.Hostname()
	port, err := resolvePort(parsed)
	if err != nil {
		return nil, err
	}

	switch parsed.Scheme {
	case "hackvr":
		return c.connectHackvr(host, port, target, sessionToken, false, newHandler)
	case "hackvrs":
		return c.connectHackvr(host, port, target, sessionToken, true, newHandler)
	case "http+hackvr":
		return c.connectHTTP(host, port, target, sessionToken, false, newHandler)
	case "https+hackvr":
		return c.connectHTTP(host, port, target, sessionToken, true, newHandler)
	default:
		return nil, &transport.UnsupportedSchemeError{Scheme: parsed.Scheme}
	}
}

func resolvePort(u *url.URL) (int, error) {
	if u.Port() == "" {
		return defaultPortForScheme(u.Scheme), nil
	}
	return strconv.Atoi(u.Port())
}

func defaultPortForScheme(scheme string) int {
	switch scheme {
	case "hackvr":
		return 1913
	case "hackvrs":
		return 19133
	case "http+hackvr":
		return 80
	case "https+hackvr":
		return 443
	default:
		return 0
	}
}

func (c *Client) connectHackvr(host string, port int, sourceURL, sessionToken string, secure bool, newHandler func(transport.ConnectionToken) wire.ClientHandler) (*ClientConnection, error) {
	stream, err := c.dial(host, port, secure)
	if err != nil {
		return nil, err
	}
	buffered := transport.NewBufferedStream(stream, nil)
	deadline := transport.DefaultHelloDeadline()

	protocol := "hackvr"
	if secure {
		protocol = "hackvrs"
	}
	token, err := transport.ResolveClientSourceURL(sourceURL, sessionToken, protocol, secure)
	if err != nil {
		_ = stream.Close()
		return nil, err
	}

	version, err := transport.ReceiveServerHello(buffered, deadline)
	if err != nil {
		_ = stream.Close()
		return nil, err
	}
	c.log.Debug().Str("server_version", version).Msg("received server hello")

	if err := transport.SendClientHello(buffered, deadline, version, token.SourceURL, token.SessionToken); err != nil {
		_ = stream.Close()
		return nil, err
	}
	return c.finish(buffered, *token, newHandler), nil
}

func (c *Client) connectHTTP(host string, port int, sourceURL, sessionToken string, secure bool, newHandler func(transport.ConnectionToken) wire.ClientHandler) (*ClientConnection, error) {
	stream, err := c.dial(host, port, secure)
	if err != nil {
		return nil, err
	}
	buffered := transport.NewBufferedStream(stream, nil)
	deadline := transport.DefaultHelloDeadline()

	protocol := "http+hackvr"
	if secure {
		protocol = "https+hackvr"
	}

	token, err := transport.ResolveClientSourceURL(sourceURL, sessionToken, protocol, secure)
	if err != nil {
		_ = stream.Close()
		return nil, err
	}

	hostHeader := host
	if (secure && port != 443) || (!secure && port != 80) {
		hostHeader = fmt.Sprintf("%s:%d", host, port)
	}
	path := requestPath(token.SourceURL)

	if err := transport.SendUpgradeRequest(buffered, deadline, hostHeader, path, "v1", token.SessionToken); err != nil {
		_ = stream.Close()
		return nil, err
	}
	if err := transport.ReceiveUpgradeResponse(buffered, deadline); err != nil {
		_ = stream.Close()
		return nil, err
	}

	return c.finish(buffered, *token, newHandler), nil
}

// requestPath extracts the path (plus query, if any) from a source URL for
// use as an HTTP Upgrade request target.
func requestPath(sourceURL string) string {
	parsed, err := url.Parse(sourceURL)
	if err != nil {
		return "/"
	}
	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}
	if parsed.RawQuery != "" {
		path += "?" + parsed.RawQuery
	}
	return path
}

func (c *Client) dial(host string, port int, secure bool) (transport.NetStream, error) {
	if secure {
		cfg := c.TlsConfig
		if cfg == nil {
			cfg = &tls.Config{}
		}
		return transport.TlsConnector{Config: cfg}.Connect(host, port, transport.FromNowMs(5000))
	}
	return transport.RawConnector{}.Connect(host, port, transport.FromNowMs(5000))
}

func (c *Client) finish(buffered *transport.BufferedStream, token transport.ConnectionToken, newHandler func(transport.ConnectionToken) wire.ClientHandler) *ClientConnection {
	conn := newConnection(buffered, token, c.Metrics)
	cc := &ClientConnection{connection: conn, Handler: newHandler(token)}
	cc.Remote = &wire.RemoteServer{Sender: cc}
	return cc
}
