package wire

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParserStreamBasicFrame(t *testing.T) {
	p := NewParserStream()
	p.Write([]byte("chat\thello\r\n"))
	f, ok, err := p.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "chat", f.Name)
	assert.Equal(t, []string{"hello"}, f.Params)

	_, ok, err = p.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParserStreamSplitAcrossWrites(t *testing.T) {
	p := NewParserStream()
	p.Write([]byte("ch"))
	_, ok, _ := p.Next()
	assert.False(t, ok)

	p.Write([]byte("at\thi\r\n"))
	f, ok, err := p.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "chat", f.Name)
}

func TestParserStreamMultipleFramesInOneWrite(t *testing.T) {
	p := NewParserStream()
	p.Write([]byte("chat\ta\r\nchat\tb\r\n"))

	f1, ok, _ := p.Next()
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, f1.Params)

	f2, ok, _ := p.Next()
	require.True(t, ok)
	assert.Equal(t, []string{"b"}, f2.Params)

	_, ok, _ = p.Next()
	assert.False(t, ok)
}

func TestParserStreamDropsOverlongFrame(t *testing.T) {
	p := NewParserStream()
	overlong := strings.Repeat("x", MaxLineLength+100)
	p.Write([]byte("chat\t" + overlong + "\r\n"))
	p.Write([]byte("chat\tgood\r\n"))

	f, ok, err := p.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"good"}, f.Params, "overlong frame must be skipped entirely, not delivered partially")
}

func TestParserStreamAcceptsLFInParam(t *testing.T) {
	p := NewParserStream()
	frame, err := Encode("chat", "line1\nline2")
	require.NoError(t, err)
	p.Write([]byte(frame))

	f, ok, err := p.Next()
	require.NoError(t, err)
	require.True(t, ok, "a param carrying a bare LF must not be dropped as malformed")
	assert.Equal(t, []string{"line1\nline2"}, f.Params)
}

func TestParserStreamDropsOtherControlCharsInParam(t *testing.T) {
	p := NewParserStream()
	p.Write([]byte("chat\thas\x00null\r\nchat\tgood\r\n"))

	f, ok, err := p.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"good"}, f.Params, "a param carrying a non-LF control char must be dropped")
}

func TestParserStreamDropsMalformedFrame(t *testing.T) {
	p := NewParserStream()
	p.Write([]byte("\r\nchat\tgood\r\n"))
	f, ok, err := p.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "chat", f.Name)
}

func TestParserStreamByteAtATime(t *testing.T) {
	p := NewParserStream()
	input := "chat\tpiece-by-piece\r\n"
	for i := 0; i < len(input); i++ {
		p.Write([]byte{input[i]})
	}
	f, ok, err := p.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "chat", f.Name)
	assert.Equal(t, []string{"piece-by-piece"}, f.Params)
}
