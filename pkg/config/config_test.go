package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	opts := Default()
	require.NoError(t, opts.Validate())
	assert.Equal(t, NamespaceLenient, opts.NamespaceHandling)
	assert.False(t, opts.StrictCoordinateValidation)
}

func TestParse(t *testing.T) {
	opts, err := Parse([]byte(`
kml:
  strict_coordinate_validation: true
  coordinate_precision: 6
  namespace_handling: strict
`))
	require.NoError(t, err)
	assert.True(t, opts.StrictCoordinateValidation)
	assert.Equal(t, 6, opts.CoordinatePrecision)
	assert.Equal(t, NamespaceStrict, opts.NamespaceHandling)
	assert.False(t, opts.StrictLookups)
}

func TestParseKeepsDefaultsForMissingKeys(t *testing.T) {
	opts, err := Parse([]byte("kml:\n  strict_lookups: true\n"))
	require.NoError(t, err)
	assert.True(t, opts.StrictLookups)
	assert.Equal(t, NamespaceLenient, opts.NamespaceHandling)
}

func TestParseRejectsInvalidOptions(t *testing.T) {
	testCases := []struct {
		name string
		yaml string
	}{
		{"unknown namespace mode", "kml:\n  namespace_handling: loose\n"},
		{"negative precision", "kml:\n  coordinate_precision: -1\n"},
		{"malformed yaml", "kml: [unterminated"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoader(t *testing.T) {
	l := NewLoader(nil)

	opts, err := l.Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), opts)

	path := filepath.Join(t.TempDir(), "kmlorm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("kml:\n  namespace_handling: ignore\n"), 0o644))

	opts, err = l.Load(path)
	require.NoError(t, err)
	assert.Equal(t, NamespaceIgnore, opts.NamespaceHandling)

	_, err = l.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
