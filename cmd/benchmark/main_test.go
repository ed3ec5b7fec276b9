package main

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1F47E/kmlorm/pkg/models"
	"github.com/1F47E/kmlorm/pkg/query"
)

func TestGenerateCoordinates(t *testing.T) {
	coords := generateCoordinates(1000, 42)
	require.Len(t, coords, 1000)
	for _, c := range coords {
		assert.NoError(t, models.ValidateLonLat(c.Longitude, c.Latitude))
	}
	assert.Equal(t, coords, generateCoordinates(1000, 42))
	assert.Empty(t, generateCoordinates(0, 42))
}

func TestGenerateDocument(t *testing.T) {
	doc := generateDocument(100, 3, 4, 7)

	assert.Len(t, query.Folders(doc).Children().Elements(), 3)
	assert.Equal(t, 12, query.Folders(doc).All().Count())
	assert.Equal(t, 100, query.Placemarks(doc).All().Count())
	assert.Equal(t, 100, query.Points(doc).All().Count())
	assert.Equal(t, 0, query.Placemarks(doc).Count())

	pm, err := query.Placemarks(doc).All().Get(query.Lookups{"id": "pm_0"})
	require.NoError(t, err)
	_, ok := pm.ExtendedData.Get("population")
	assert.True(t, ok)
}

func TestRunQueries(t *testing.T) {
	res, err := runQueries("count", func(*rand.Rand) (int, error) { return 2, nil }, 50, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "count", res.QueryType)
	assert.Equal(t, 50, res.TotalQueries)
	assert.Equal(t, int64(100), res.TotalResults)
	assert.InDelta(t, 2.0, res.AvgResults, 1e-9)
	assert.LessOrEqual(t, res.MinDuration, res.MaxDuration)

	boom := errors.New("boom")
	_, err = runQueries("fail", func(*rand.Rand) (int, error) { return 0, boom }, 5, 2, 1)
	assert.ErrorIs(t, err, boom)
}

func TestQueriesOverGeneratedDocument(t *testing.T) {
	doc := generateDocument(2000, 4, 3, 11)
	base := query.Placemarks(doc).All()
	o := benchOptions{
		minLat: 25, maxLat: 49, minLon: -125, maxLon: -66,
		boxSize: 5, radius: 500,
	}

	queries := map[string]queryFunc{
		"near":    nearQuery(base, o),
		"bounds":  boundsQuery(base, o),
		"filter":  filterQuery(base),
		"collect": collectQuery(doc),
	}
	for name, fn := range queries {
		t.Run(name, func(t *testing.T) {
			n, err := fn(rand.New(rand.NewSource(3)))
			require.NoError(t, err)
			assert.LessOrEqual(t, n, 2000)
		})
	}

	res, err := runMixed(queries, 40, 4)
	require.NoError(t, err)
	assert.Equal(t, "mixed", res.QueryType)
	assert.Equal(t, 40, res.TotalQueries)
}
