package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInt(t *testing.T) {
	v, err := ParseInt("42", false)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	_, err = ParseInt("007", false)
	assert.Error(t, err, "leading zeros must be rejected")

	_, err = ParseInt("-1", false)
	assert.Error(t, err, "negative ints are not representable")
}

func TestParseIntOptional(t *testing.T) {
	v, err := ParseInt("", true)
	require.NoError(t, err)
	assert.Nil(t, v.(*int))

	v, err = ParseInt("3", true)
	require.NoError(t, err)
	require.NotNil(t, v.(*int))
	assert.Equal(t, 3, *v.(*int))
}

func TestParseFloatRoundTrip(t *testing.T) {
	for _, f := range []float64{0, 1, -1, 3.5, -0.25, 100} {
		s := SerializeFloat(f)
		v, err := ParseFloat(s, false)
		require.NoError(t, err)
		assert.Equal(t, f, v.(float64))
	}
}

func TestParseBool(t *testing.T) {
	v, err := ParseBool("true", false)
	require.NoError(t, err)
	assert.Equal(t, true, v)

	_, err = ParseBool("yes", false)
	assert.Error(t, err)
}

func TestParseVec3RoundTrip(t *testing.T) {
	v3 := Vec3{X: 1, Y: -2.5, Z: 0}
	s := SerializeVec3(v3)
	parsed, err := ParseVec3(s, false)
	require.NoError(t, err)
	assert.Equal(t, v3, parsed.(Vec3))
}

func TestParseColor(t *testing.T) {
	v, err := ParseColor("#FF00aa", false)
	require.NoError(t, err)
	assert.Equal(t, Color("#ff00aa"), v)

	_, err = ParseColor("#ff00", false)
	assert.Error(t, err)
}

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion("v3", false)
	require.NoError(t, err)
	assert.Equal(t, Version(3), v)

	_, err = ParseVersion("v0", false)
	assert.Error(t, err, "v0 is not v[1-9][0-9]*")

	_, err = ParseVersion("3", false)
	assert.Error(t, err)
}

func TestParseSessionTokenRoundTrip(t *testing.T) {
	var raw SessionToken
	for i := range raw {
		raw[i] = byte(i)
	}
	s := SerializeSessionToken(raw)
	assert.Len(t, s, 43)
	parsed, err := ParseSessionToken(s, false)
	require.NoError(t, err)
	assert.Equal(t, raw, parsed.(SessionToken))
}

func TestParseSessionTokenWrongLength(t *testing.T) {
	_, err := ParseSessionToken("tooshort", false)
	assert.Error(t, err)
}

func TestParseObjectIDReservedForm(t *testing.T) {
	v, err := ParseObjectID("$world-root", false)
	require.NoError(t, err)
	assert.Equal(t, ObjectID("$world-root"), v)
}

func TestParseObjectIDInvalid(t *testing.T) {
	_, err := ParseObjectID("not a valid id!", false)
	assert.Error(t, err)
}

func TestParseTapKind(t *testing.T) {
	v, err := ParseTapKind("primary", false)
	require.NoError(t, err)
	assert.Equal(t, TapPrimary, v)

	_, err = ParseTapKind("tertiary", false)
	assert.Error(t, err)
}

func TestParseURI(t *testing.T) {
	v, err := ParseURI("https://example.com/a", false)
	require.NoError(t, err)
	assert.Equal(t, URI("https://example.com/a"), v)

	_, err = ParseURI("not a uri", false)
	assert.Error(t, err)

	_, err = ParseURI("relative/path", false)
	assert.Error(t, err, "a uri without a scheme must be rejected")
}

func TestParseUserID(t *testing.T) {
	_, err := ParseUserID("", false)
	assert.Error(t, err)

	_, err = ParseUserID(" padded ", false)
	assert.Error(t, err)

	v, err := ParseUserID("alice", false)
	require.NoError(t, err)
	assert.Equal(t, UserID("alice"), v)
}

func TestParseBytes32RoundTrip(t *testing.T) {
	var b Bytes32
	for i := range b {
		b[i] = byte(255 - i)
	}
	s := SerializeBytes32(b)
	v, err := ParseBytes32(s, false)
	require.NoError(t, err)
	assert.Equal(t, b, v.(Bytes32))
}
