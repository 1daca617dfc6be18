package transport

import (
	"bufio"
	"fmt"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"github.com/hackvr/hackvr/wire"
)

// ConnectionToken is what every dialect converges on once its hello
// exchange has completed: enough information for the server to start a
// Connection and for client code to know what it connected to.
type ConnectionToken struct {
	SourceURL    string
	SessionToken string // session token text as carried on the wire; empty if none
	Protocol     string // dialect name: "hackvr", "hackvrs", "http+hackvr" or "https+hackvr"
	IsSecure     bool
}

const defaultHelloDeadlineMs = 500

// readHelloLine reads a handshake line byte-by-byte off a buffered
// stream, honoring a deadline on every byte the way the reference
// _receive_line does, so a peer that stalls mid-line is caught promptly
// rather than after an unbounded read.
func readHelloLine(stream *BufferedStream, deadline Deadline, maxLen int) (string, error) {
	var sb strings.Builder
	for {
		if err := deadline.Check(); err != nil {
			return "", err
		}
		b, err := stream.RecvByte(deadline)
		if err != nil {
			return "", &HandshakeError{Reason: "connection closed before hello completed: " + err.Error()}
		}
		if b == '\n' {
			s := sb.String()
			return strings.TrimSuffix(s, "\r"), nil
		}
		sb.WriteByte(b)
		if sb.Len() > maxLen {
			return "", &HandshakeError{Reason: "hello line exceeds maximum length"}
		}
	}
}

// ServerHello is sent first on the hackvr/hackvrs dialects: a single
// TAB-framed line announcing the protocol version the server speaks.
func SendServerHello(stream *BufferedStream, deadline Deadline, version string) error {
	return stream.Send([]byte("hackvr-hello\t"+version+"\r\n"), deadline)
}

// ReceiveServerHello is the client-side counterpart: read and validate
// the server's opening hello line.
func ReceiveServerHello(stream *BufferedStream, deadline Deadline) (string, error) {
	line, err := readHelloLine(stream, deadline, wire.MaxLineLength)
	if err != nil {
		return "", err
	}
	fields := strings.Split(line, "\t")
	if len(fields) != 2 || fields[0] != "hackvr-hello" {
		return "", &HandshakeError{Reason: "malformed server hello"}
	}
	return fields[1], nil
}

// SendClientHello is sent by the client after receiving the server
// hello: the same hackvr-hello frame name as the server uses, carrying
// the protocol version, the connect URL (source_url), and, if present,
// an explicit session token.
func SendClientHello(stream *BufferedStream, deadline Deadline, version, sourceURL, sessionToken string) error {
	line := "hackvr-hello\t" + version + "\t" + sourceURL
	if sessionToken != "" {
		line += "\t" + sessionToken
	}
	return stream.Send([]byte(line+"\r\n"), deadline)
}

// ReceiveClientHello is the server-side counterpart, producing a
// ConnectionToken once the URL/fragment/explicit-token resolution rules
// have been applied.
func ReceiveClientHello(stream *BufferedStream, deadline Deadline, protocol string, secure bool) (*ConnectionToken, error) {
	line, err := readHelloLine(stream, deadline, wire.MaxLineLength)
	if err != nil {
		return nil, err
	}
	fields := strings.Split(line, "\t")
	if fields[0] != "hackvr-hello" || (len(fields) != 3 && len(fields) != 4) {
		return nil, &HandshakeError{Reason: "client hello must include version and uri"}
	}
	if _, err := wire.ParseVersion(fields[1], false); err != nil {
		return nil, &HandshakeError{Reason: "invalid client hello version: " + err.Error()}
	}
	sessionToken := ""
	if len(fields) == 4 {
		sessionToken = fields[3]
	}
	return resolveSessionToken(fields[2], sessionToken, protocol, secure)
}

// resolveSessionToken strips any #fragment from rawURL and reconciles it
// against an explicit token, matching the reference's rule: if both are
// present they must be equal, and the fragment is always removed from
// the reported source_url regardless of which one "wins".
func resolveSessionToken(rawURL, explicitToken, protocol string, secure bool) (*ConnectionToken, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, &HandshakeError{Reason: "invalid source url: " + err.Error()}
	}
	fragmentToken := parsed.Fragment
	parsed.Fragment = ""
	strippedURL := parsed.String()

	token := explicitToken
	switch {
	case explicitToken != "" && fragmentToken != "" && explicitToken != fragmentToken:
		return nil, &SessionTokenMismatchError{}
	case explicitToken == "" && fragmentToken != "":
		token = fragmentToken
	}

	return &ConnectionToken{
		SourceURL:    strippedURL,
		SessionToken: token,
		Protocol:     protocol,
		IsSecure:     secure,
	}, nil
}

// ResolveClientSourceURL applies the same fragment-stripping and
// explicit-token/fragment-token reconciliation rules to a client's own
// connect URL that the server applies to the client hello it receives,
// so a #fragment session token and an explicitly passed one are
// resolved identically on both sides of the connection.
func ResolveClientSourceURL(rawURL, explicitToken, protocol string, secure bool) (*ConnectionToken, error) {
	return resolveSessionToken(rawURL, explicitToken, protocol, secure)
}

// --- HTTP+Upgrade dialect (http+hackvr / https+hackvr) ---

const maxHTTPHeaderBytes = 8192

// HTTPRequest is the minimally parsed request line plus headers needed to
// validate and respond to an Upgrade: hackvr handshake.
type HTTPRequest struct {
	Method  string
	Target  string
	Version string
	Headers textproto.MIMEHeader
}

// ReceiveHTTPUpgradeRequest reads and parses an HTTP/1.1 request from the
// stream, capped at maxHTTPHeaderBytes total, the way the reference
// _receive_http_request / _parse_headers pair does.
func ReceiveHTTPUpgradeRequest(stream *BufferedStream, deadline Deadline) (*HTTPRequest, error) {
	raw, err := readHTTPHeaderBlock(stream, deadline)
	if err != nil {
		return nil, err
	}
	reader := textproto.NewReader(bufio.NewReader(strings.NewReader(raw)))
	requestLine, err := reader.ReadLine()
	if err != nil {
		return nil, &HandshakeError{Reason: "missing HTTP request line"}
	}
	parts := strings.SplitN(requestLine, " ", 3)
	if len(parts) != 3 {
		return nil, &HandshakeError{Reason: "malformed HTTP request line"}
	}
	headers, err := reader.ReadMIMEHeader()
	if err != nil && headers == nil {
		return nil, &HandshakeError{Reason: "malformed HTTP headers: " + err.Error()}
	}
	return &HTTPRequest{Method: parts[0], Target: parts[1], Version: parts[2], Headers: headers}, nil
}

// readHTTPHeaderBlock reads bytes until the blank-line terminator
// ("\r\n\r\n") or the cap is exceeded.
func readHTTPHeaderBlock(stream *BufferedStream, deadline Deadline) (string, error) {
	var sb strings.Builder
	for {
		if err := deadline.Check(); err != nil {
			return "", err
		}
		b, err := stream.RecvByte(deadline)
		if err != nil {
			return "", &HandshakeError{Reason: "connection closed before headers completed: " + err.Error()}
		}
		sb.WriteByte(b)
		if sb.Len() > maxHTTPHeaderBytes {
			return "", &HandshakeError{Reason: "HTTP header block exceeds maximum size"}
		}
		if strings.HasSuffix(sb.String(), "\r\n\r\n") {
			return sb.String(), nil
		}
	}
}

// ValidateUpgradeRequest checks that req is asking to upgrade to the
// hackvr subprotocol with a valid HackVr-Version header, and builds the
// connect URL from the Host header and request target, with the session
// token taken from the HackVr-Session header.
func ValidateUpgradeRequest(req *HTTPRequest, protocol string, secure bool) (*ConnectionToken, error) {
	if !strings.EqualFold(req.Headers.Get("Upgrade"), "hackvr") {
		return nil, &HandshakeError{Reason: "missing or incorrect Upgrade header"}
	}
	if !strings.Contains(strings.ToLower(req.Headers.Get("Connection")), "upgrade") {
		return nil, &HandshakeError{Reason: "missing Connection: Upgrade header"}
	}
	if _, err := wire.ParseVersion(req.Headers.Get("HackVr-Version"), false); err != nil {
		return nil, &HandshakeError{Reason: "missing or invalid HackVr-Version header: " + err.Error()}
	}
	host := req.Headers.Get("Host")
	if host == "" {
		return nil, &HandshakeError{Reason: "missing Host header"}
	}
	scheme := "http+hackvr"
	if secure {
		scheme = "https+hackvr"
	}
	sourceURL := scheme + "://" + host + req.Target
	explicitToken := req.Headers.Get("HackVr-Session")
	return resolveSessionToken(sourceURL, explicitToken, protocol, secure)
}

// SendUpgradeResponse writes the 101 Switching Protocols response that
// completes the server side of the HTTP+Upgrade dialect.
func SendUpgradeResponse(stream *BufferedStream, deadline Deadline, version string) error {
	resp := "HTTP/1.1 101 Switching Protocols\r\nUpgrade: hackvr\r\nConnection: Upgrade\r\nHackVr-Version: " + version + "\r\n\r\n"
	return stream.Send([]byte(resp), deadline)
}

// SendUpgradeRequest writes the client's HTTP/1.1 Upgrade request. path is
// the request target (the source URL's path, plus query if any); host
// carries the Host header value (with port elided for the dialect's
// default port, per the caller).
func SendUpgradeRequest(stream *BufferedStream, deadline Deadline, host, path, version, sessionToken string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "GET %s HTTP/1.1\r\n", path)
	fmt.Fprintf(&b, "Host: %s\r\n", host)
	fmt.Fprintf(&b, "Upgrade: hackvr\r\n")
	fmt.Fprintf(&b, "Connection: Upgrade\r\n")
	fmt.Fprintf(&b, "HackVr-Version: %s\r\n", version)
	if sessionToken != "" {
		fmt.Fprintf(&b, "HackVr-Session: %s\r\n", sessionToken)
	}
	b.WriteString("\r\n")
	return stream.Send([]byte(b.String()), deadline)
}

// ReceiveUpgradeResponse reads and validates the server's 101 response.
func ReceiveUpgradeResponse(stream *BufferedStream, deadline Deadline) error {
	raw, err := readHTTPHeaderBlock(stream, deadline)
	if err != nil {
		return err
	}
	lines := strings.Split(raw, "\r\n")
	if len(lines) == 0 {
		return &HandshakeError{Reason: "empty HTTP response"}
	}
	statusParts := strings.SplitN(lines[0], " ", 3)
	if len(statusParts) < 2 {
		return &HandshakeError{Reason: "malformed HTTP status line"}
	}
	code, err := strconv.Atoi(statusParts[1])
	if err != nil || code != 101 {
		return &HandshakeError{Reason: "expected 101 Switching Protocols, got " + statusParts[1]}
	}
	reader := textproto.NewReader(bufio.NewReader(strings.NewReader(strings.Join(lines[1:], "\r\n"))))
	headers, err := reader.ReadMIMEHeader()
	if err != nil && headers == nil {
		return &HandshakeError{Reason: "malformed HTTP upgrade response headers: " + err.Error()}
	}
	if !strings.EqualFold(headers.Get("Upgrade"), "hackvr") {
		return &HandshakeError{Reason: "missing or incorrect Upgrade header in response"}
	}
	if !strings.Contains(strings.ToLower(headers.Get("Connection")), "upgrade") {
		return &HandshakeError{Reason: "missing Connection: Upgrade header in response"}
	}
	if _, err := wire.ParseVersion(headers.Get("HackVr-Version"), false); err != nil {
		return &HandshakeError{Reason: "missing or invalid HackVr-Version header in response: " + err.Error()}
	}
	return nil
}

// DefaultHelloDeadline returns a deadline 500ms from now, matching the
// reference implementation's default. Callers create one per handshake
// and pass it to every read and write of that exchange, so it bounds the
// whole exchange (of any dialect), not each byte separately.
func DefaultHelloDeadline() Deadline {
	return FromNowMs(defaultHelloDeadlineMs)
}
