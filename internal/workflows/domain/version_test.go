package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParseVersion_Valid(t *testing.T) {
	major, minor, patch, err := ParseVersion("1.2.3")
	require.NoError(t, err)
	require.Equal(t, 1, major)
	require.Equal(t, 2, minor)
	require.Equal(t, 3, patch)
}

func TestParseVersion_Zero(t *testing.T) {
	major, minor, patch, err := ParseVersion("0.0.0")
	require.NoError(t, err)
	require.Equal(t, 0, major)
	require.Equal(t, 0, minor)
	require.Equal(t, 0, patch)
}

func TestParseVersion_Invalid(t *testing.T) {
	cases := []string{
		"",
		"1",
		"1.2",
		"1.2.3.4",
		"1.2.x",
		"a.b.c",
		"1..3",
		"-1.2.3",
		"1.2.-3",
		"01.2.3",
		"1.2.03",
		"+1.2.3",
		"1.2.3 ",
		"v1.2.3",
	}
	for _, tc := range cases {
		_, _, _, err := ParseVersion(tc)
		require.Error(t, err, "ParseVersion(%q) should fail", tc)

		var formatErr *VersionFormatError
		require.True(t, errors.As(err, &formatErr), "Error for %q should be VersionFormatError", tc)
		require.Equal(t, tc, formatErr.Value)
	}
}

func TestBumpPatch(t *testing.T) {
	bumped, err := BumpPatch("1.0.0")
	require.NoError(t, err)
	require.Equal(t, "1.0.1", bumped)

	bumped, err = BumpPatch("2.5.9")
	require.NoError(t, err)
	require.Equal(t, "2.5.10", bumped)
}

func TestBumpPatch_InvalidInput(t *testing.T) {
	_, err := BumpPatch("not-a-version")
	require.Error(t, err)
}

// TestBumpPatch_Properties checks that bumping preserves major and minor,
// strictly increments patch, and always yields a reparseable version.
func TestBumpPatch_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		major := rapid.IntRange(0, 100).Draw(t, "major")
		minor := rapid.IntRange(0, 100).Draw(t, "minor")
		patch := rapid.IntRange(0, 1000).Draw(t, "patch")
		version := fmt.Sprintf("%d.%d.%d", major, minor, patch)

		bumped, err := BumpPatch(version)
		require.NoError(t, err)

		gotMajor, gotMinor, gotPatch, err := ParseVersion(bumped)
		require.NoError(t, err, "Bumped version should reparse")
		require.Equal(t, major, gotMajor, "Major should be preserved")
		require.Equal(t, minor, gotMinor, "Minor should be preserved")
		require.Equal(t, patch+1, gotPatch, "Patch should increment by one")
	})
}
