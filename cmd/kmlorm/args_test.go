package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1F47E/kmlorm/pkg/query"
)

func TestParseLookups(t *testing.T) {
	lookups, err := parseLookups([]string{
		"name__icontains=42",
		"visibility=true",
		"id='007'",
		"extended_data__rating__gte=4.5",
		"address__isnull=false",
		"id__in=a|b|3",
		"latitude__range=38,40",
		"description=null",
	})
	require.NoError(t, err)

	assert.Equal(t, query.Lookups{
		"name__icontains":            "42",
		"visibility":                 true,
		"id":                         "007",
		"extended_data__rating__gte": 4.5,
		"address__isnull":            false,
		"id__in":                     []any{"a", "b", int64(3)},
		"latitude__range":            []any{int64(38), int64(40)},
		"description":                nil,
	}, lookups)
}

func TestParseLookupsErrors(t *testing.T) {
	for _, pairs := range [][]string{
		{"name"},
		{"=value"},
		{"latitude__range=38"},
		{"address__isnull=maybe"},
	} {
		_, err := parseLookups(pairs)
		assert.Error(t, err, "%v", pairs)
	}
}

func TestCoerce(t *testing.T) {
	assert.Equal(t, int64(-12), coerce("-12"))
	assert.Equal(t, 1.5, coerce(" 1.5 "))
	assert.Equal(t, true, coerce("true"))
	assert.Equal(t, false, coerce("false"))
	assert.Nil(t, coerce("null"))
	assert.Equal(t, "null", coerce(`"null"`))
	assert.Equal(t, "Store", coerce("Store"))
	assert.Equal(t, "True", coerce("True"))
}

func TestParseNearAndBounds(t *testing.T) {
	lon, lat, km, err := parseNear("-76.6, 39.3, 60")
	require.NoError(t, err)
	assert.Equal(t, []float64{-76.6, 39.3, 60}, []float64{lon, lat, km})

	_, _, _, err = parseNear("-76.6,39.3")
	assert.Error(t, err)

	n, s, e, w, err := parseBounds("40,39,-76,-77")
	require.NoError(t, err)
	assert.Equal(t, []float64{40, 39, -76, -77}, []float64{n, s, e, w})

	_, _, _, _, err = parseBounds("40,39,-76,west")
	assert.Error(t, err)
}

func TestParsePoint(t *testing.T) {
	c, err := parsePoint("-76.6,39.3")
	require.NoError(t, err)
	assert.Equal(t, -76.6, c.Longitude)
	assert.Equal(t, 39.3, c.Latitude)

	_, err = parsePoint("200,0")
	assert.Error(t, err)
}
