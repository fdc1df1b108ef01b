package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "fleetgate/pkg/domain-errors"
)

func TestNew_NormalizesCaseAndWhitespace(t *testing.T) {
	variants := []string{
		"MA1TA2YS2F2K12345",
		"ma1ta2ys2f2k12345",
		"  MA1TA2YS2F2K12345  ",
		"\tMa1Ta2Ys2F2K12345\n",
	}

	want, err := New(variants[0])
	require.NoError(t, err)

	for _, v := range variants {
		got, err := New(v)
		require.NoError(t, err)
		assert.Equal(t, want, got, "variant %q should collide with canonical form", v)
	}
}

func TestNew_DistinctIdentifiersDiffer(t *testing.T) {
	a, err := New("MA1TA2YS2F2K12345")
	require.NoError(t, err)
	b, err := New("MA1TA2YS2F2K12346")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestNew_IsSHA256Hex(t *testing.T) {
	got, err := New("engine-7H19E1234567")
	require.NoError(t, err)
	assert.Len(t, got, 64)
	assert.Regexp(t, "^[0-9a-f]+$", got)
}

func TestNew_RejectsEmptyInput(t *testing.T) {
	for _, in := range []string{"", "   ", "\t\n"} {
		_, err := New(in)
		require.Error(t, err, "input %q", in)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	}
}

// Fixed vector so the digest stays stable across runtimes; downstream systems
// compare stored hashes byte for byte.
func TestNew_KnownVector(t *testing.T) {
	got, err := New("abc")
	require.NoError(t, err)
	// sha256("ABC")
	assert.Equal(t, "b5d4045c3f466fa91fe2cc6abe79232a1a57cdf104f7a26e716e0a1e2789df78", got)
}
