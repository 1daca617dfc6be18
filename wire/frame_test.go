package wire

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeBasic(t *testing.T) {
	frame, err := Encode("chat", "hello world")
	require.NoError(t, err)
	assert.Equal(t, "chat\thello world\r\n", frame)
}

func TestEncodeNormalizesNewlines(t *testing.T) {
	frame, err := Encode("chat", "line1\r\nline2\rline3")
	require.NoError(t, err)
	assert.Equal(t, "chat\tline1\nline2\nline3\r\n", frame)
}

func TestEncodeRejectsTabInName(t *testing.T) {
	_, err := Encode("bad\tname")
	assert.Error(t, err)
	var fe *InvalidFrameError
	assert.ErrorAs(t, err, &fe)
}

func TestEncodeRejectsTabInParam(t *testing.T) {
	_, err := Encode("chat", "has\ttab")
	assert.Error(t, err)
}

func TestEncodeAllowsLFInParam(t *testing.T) {
	frame, err := Encode("chat", "line1\nline2")
	require.NoError(t, err)
	assert.Equal(t, "chat\tline1\nline2\r\n", frame)
}

func TestEncodeRejectsOtherControlCharsInParam(t *testing.T) {
	_, err := Encode("chat", "has\x00null")
	assert.Error(t, err)

	_, err = Encode("chat", "has\x0bvtab")
	assert.Error(t, err)
}

func TestEncodeRejectsOverlongFrame(t *testing.T) {
	_, err := Encode("chat", strings.Repeat("x", MaxLineLength))
	require.Error(t, err)
	var lte *LineTooLongError
	assert.ErrorAs(t, err, &lte)
}

func TestEncodeAtExactBoundary(t *testing.T) {
	// "chat\t" (5) + N + "\r\n" (2) == MaxLineLength
	n := MaxLineLength - len("chat\t") - len("\r\n")
	frame, err := Encode("chat", strings.Repeat("x", n))
	require.NoError(t, err)
	assert.Len(t, frame, MaxLineLength)
}

func TestEncodeOneByteOverBoundary(t *testing.T) {
	n := MaxLineLength - len("chat\t") - len("\r\n") + 1
	_, err := Encode("chat", strings.Repeat("x", n))
	assert.Error(t, err)
}
