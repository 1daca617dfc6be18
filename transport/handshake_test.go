package transport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerHelloRoundTrip(t *testing.T) {
	server, client := newFakeStreamPair()
	serverBuf := NewBufferedStream(server, nil)
	clientBuf := NewBufferedStream(client, nil)

	require.NoError(t, SendServerHello(serverBuf, NEVER, "v1"))

	version, err := ReceiveServerHello(clientBuf, NEVER)
	require.NoError(t, err)
	assert.Equal(t, "v1", version)
}

func TestClientHelloWithExplicitToken(t *testing.T) {
	server, client := newFakeStreamPair()
	serverBuf := NewBufferedStream(server, nil)
	clientBuf := NewBufferedStream(client, nil)

	require.NoError(t, SendClientHello(clientBuf, NEVER, "v1", "hackvr://example.com/world", "sometoken"))

	token, err := ReceiveClientHello(serverBuf, NEVER, "hackvr", false)
	require.NoError(t, err)
	assert.Equal(t, "hackvr://example.com/world", token.SourceURL)
	assert.Equal(t, "sometoken", token.SessionToken)
	assert.Equal(t, "hackvr", token.Protocol)
	assert.False(t, token.IsSecure)
}

func TestClientHelloFragmentBecomesToken(t *testing.T) {
	server, client := newFakeStreamPair()
	serverBuf := NewBufferedStream(server, nil)
	clientBuf := NewBufferedStream(client, nil)

	require.NoError(t, SendClientHello(clientBuf, NEVER, "v1", "hackvr://example.com/world#fragtoken", ""))

	token, err := ReceiveClientHello(serverBuf, NEVER, "hackvr", false)
	require.NoError(t, err)
	assert.Equal(t, "hackvr://example.com/world", token.SourceURL, "fragment must be stripped from the reported source url")
	assert.Equal(t, "fragtoken", token.SessionToken)
}

func TestClientHelloMismatchedTokenFails(t *testing.T) {
	server, client := newFakeStreamPair()
	serverBuf := NewBufferedStream(server, nil)
	clientBuf := NewBufferedStream(client, nil)

	require.NoError(t, SendClientHello(clientBuf, NEVER, "v1", "hackvr://example.com/world#aaa", "bbb"))

	_, err := ReceiveClientHello(serverBuf, NEVER, "hackvr", false)
	require.Error(t, err)
	var mismatch *SessionTokenMismatchError
	assert.ErrorAs(t, err, &mismatch)
}

func TestClientHelloUsesSameFrameNameAsServerHello(t *testing.T) {
	server, client := newFakeStreamPair()
	serverBuf := NewBufferedStream(server, nil)
	clientBuf := NewBufferedStream(client, nil)

	require.NoError(t, SendClientHello(clientBuf, NEVER, "v1", "hackvr://example.com/world", ""))

	token, err := ReceiveClientHello(serverBuf, NEVER, "hackvr", false)
	require.NoError(t, err)
	assert.Equal(t, "hackvr://example.com/world", token.SourceURL)
	assert.Empty(t, token.SessionToken, "the trailing session token field is optional")
}

func TestReceiveClientHelloRejectsBadVersion(t *testing.T) {
	server, client := newFakeStreamPair()
	serverBuf := NewBufferedStream(server, nil)
	clientBuf := NewBufferedStream(client, nil)

	require.NoError(t, SendClientHello(clientBuf, NEVER, "notaversion", "hackvr://example.com/world", ""))

	_, err := ReceiveClientHello(serverBuf, NEVER, "hackvr", false)
	require.Error(t, err)
}

func TestHTTPUpgradeRoundTrip(t *testing.T) {
	server, client := newFakeStreamPair()
	serverBuf := NewBufferedStream(server, nil)
	clientBuf := NewBufferedStream(client, nil)

	require.NoError(t, SendUpgradeRequest(clientBuf, NEVER, "example.com", "/world", "v1", "tok123"))

	req, err := ReceiveHTTPUpgradeRequest(serverBuf, NEVER)
	require.NoError(t, err)
	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "hackvr", req.Headers.Get("Upgrade"))
	assert.Equal(t, "v1", req.Headers.Get("HackVr-Version"))

	token, err := ValidateUpgradeRequest(req, "http+hackvr", false)
	require.NoError(t, err)
	assert.Equal(t, "http+hackvr://example.com/world", token.SourceURL)
	assert.Equal(t, "tok123", token.SessionToken)

	require.NoError(t, SendUpgradeResponse(serverBuf, NEVER, "v1"))
	require.NoError(t, ReceiveUpgradeResponse(clientBuf, NEVER))
}

func TestValidateUpgradeRequestRejectsMissingVersion(t *testing.T) {
	server, client := newFakeStreamPair()
	serverBuf := NewBufferedStream(server, nil)
	clientBuf := NewBufferedStream(client, nil)

	req := strings.Join([]string{
		"GET /world HTTP/1.1",
		"Host: example.com",
		"Upgrade: hackvr",
		"Connection: Upgrade",
		"",
		"",
	}, "\r\n")
	require.NoError(t, clientBuf.Send([]byte(req), NEVER))

	parsed, err := ReceiveHTTPUpgradeRequest(serverBuf, NEVER)
	require.NoError(t, err)
	_, err = ValidateUpgradeRequest(parsed, "http+hackvr", false)
	assert.Error(t, err, "HackVr-Version is a required header, not an optional one")
}
