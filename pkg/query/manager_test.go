package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1F47E/kmlorm/pkg/config"
	"github.com/1F47E/kmlorm/pkg/kmlerr"
	"github.com/1F47E/kmlorm/pkg/models"
)

func TestManagerStoreScenario(t *testing.T) {
	_, a := storeTree(t)
	placemarks := Placemarks(a)

	assert.Equal(t, []string{"Store 1", "Store 2"}, names(placemarks.Children().Elements()))
	assert.Equal(t, []string{"Store 1", "Store 2", "Store 3"}, names(placemarks.All().Elements()))

	store3, err := placemarks.All().Get(Lookups{"name": "Store 3"})
	require.NoError(t, err)
	assert.Equal(t, "Store 3", store3.Name)

	_, err = placemarks.Children().Get(Lookups{"name": "Store 3"})
	var notFound *kmlerr.ElementNotFound
	assert.ErrorAs(t, err, &notFound)

	// shortcuts operate on direct children
	_, err = placemarks.Get(Lookups{"name": "Store 3"})
	assert.ErrorAs(t, err, &notFound)
	assert.Equal(t, 2, placemarks.Count())
	assert.True(t, placemarks.Exists())
}

func TestManagerAllIsRepeatable(t *testing.T) {
	doc, _ := storeTree(t)
	m := Points(doc)
	assert.Equal(t, m.All().Elements(), m.All().Elements())
	assert.Equal(t, 0, m.Count())
	assert.Equal(t, 3, m.All().Count())
}

func TestManagerShortcuts(t *testing.T) {
	_, a := storeTree(t)
	m := Placemarks(a)

	first, ok := m.First()
	require.True(t, ok)
	assert.Equal(t, "Store 1", first.Name)

	last, ok := m.Last()
	require.True(t, ok)
	assert.Equal(t, "Store 2", last.Name)

	ordered, err := m.OrderBy("-name")
	require.NoError(t, err)
	assert.Equal(t, []string{"Store 2", "Store 1"}, names(ordered.Elements()))

	near, err := m.Near(-76.6, 39.3, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Store 1"}, names(near.Elements()))

	boxed, err := m.WithinBounds(39.0, 38.0, -76.0, -78.0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Store 2"}, names(boxed.Elements()))

	excluded, err := m.Exclude(Lookups{"name": "Store 1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Store 2"}, names(excluded.Elements()))

	filtered, err := m.Filter(Lookups{"name__endswith": "1"})
	require.NoError(t, err)
	assert.Equal(t, 1, filtered.Count())

	assert.Equal(t, 2, m.HasCoordinates().Count())
	assert.Equal(t, 2, m.ValidCoordinates().Count())
	assert.Zero(t, m.None().Count())
}

func TestManagerKinds(t *testing.T) {
	doc := models.NewDocument("doc")
	poly := &models.Polygon{Attributes: models.NewAttributes("p1", "lake")}
	path := &models.Path{Attributes: models.NewAttributes("r1", "road")}
	mg := &models.MultiGeometry{}
	mg.Add(poly)
	folder := models.NewFolder("F")
	folder.Add(models.NewPlacemark("campus", mg), path)
	doc.Add(folder)

	assert.Equal(t, []string{"F"}, names(Folders(doc).Children().Elements()))
	assert.Equal(t, []string{"lake"}, names(Polygons(doc).All().Elements()))
	assert.Equal(t, []string{"road"}, names(Paths(doc).All().Elements()))
	assert.Equal(t, 1, MultiGeometries(doc).All().Count())
	assert.Zero(t, Paths(doc).Count())
}

func TestManagerCarriesOptions(t *testing.T) {
	_, a := storeTree(t)
	opts := config.Default()
	opts.StrictCoordinateValidation = true
	m := Placemarks(a, WithOptions(opts))

	_, err := m.Near(0, 95, 10)
	var ic *kmlerr.InvalidCoordinates
	assert.ErrorAs(t, err, &ic)

	_, err = m.WithinBounds(95, 0, 10, 0)
	assert.ErrorAs(t, err, &ic)
}
