package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1F47E/kmlorm/pkg/models"
)

func mustPoint(t *testing.T, name string, lon, lat float64) *models.Point {
	t.Helper()
	p, err := models.NewPoint(name, lon, lat, 0)
	require.NoError(t, err)
	return p
}

func names[T models.Element](elements []T) []string {
	out := make([]string, len(elements))
	for i, e := range elements {
		out[i] = e.Attrs().Name
	}
	return out
}

// storeTree builds Folder A { Store 1, Store 2, Folder B { Store 3 } }.
func storeTree(t *testing.T) (*models.Document, *models.Folder) {
	t.Helper()
	doc := models.NewDocument("doc")
	a := models.NewFolder("A")
	b := models.NewFolder("B")
	a.Add(
		models.NewPlacemark("Store 1", mustPoint(t, "", -76.6, 39.3)),
		models.NewPlacemark("Store 2", mustPoint(t, "", -77.0, 38.9)),
		b,
	)
	b.Add(models.NewPlacemark("Store 3", mustPoint(t, "", -76.0, 39.0)))
	doc.Add(a)
	return doc, a
}

func TestCollectPlacemarkScopes(t *testing.T) {
	_, a := storeTree(t)

	assert.Equal(t, []string{"Store 1", "Store 2"}, names(Collect[*models.Placemark](a, ScopeChildren)))
	assert.Equal(t, []string{"Store 1", "Store 2", "Store 3"}, names(Collect[*models.Placemark](a, ScopeAll)))
}

func TestCollectAllIsSupersetOfChildren(t *testing.T) {
	doc, _ := storeTree(t)
	doc.Add(models.NewPlacemark("Top", nil))

	children := Collect[*models.Placemark](doc, ScopeChildren)
	all := Collect[*models.Placemark](doc, ScopeAll)

	assert.GreaterOrEqual(t, len(all), len(children))
	for _, c := range children {
		assert.Contains(t, all, c)
	}
	assert.Len(t, all, 4)
}

func TestCollectFoldersPreOrder(t *testing.T) {
	doc := models.NewDocument("doc")
	a, b, c, d := models.NewFolder("A"), models.NewFolder("B"), models.NewFolder("C"), models.NewFolder("D")
	a.Add(b)
	b.Add(c)
	doc.Add(a, d)

	assert.Equal(t, []string{"A", "D"}, names(Collect[*models.Folder](doc, ScopeChildren)))
	assert.Equal(t, []string{"A", "D", "B", "C"}, names(Collect[*models.Folder](doc, ScopeAll)))
}

func TestCollectGeometryAggregation(t *testing.T) {
	doc := models.NewDocument("doc")
	standalone := mustPoint(t, "standalone", 1, 1)
	inPlacemark := mustPoint(t, "in placemark", 2, 2)
	inMulti := mustPoint(t, "in multigeometry", 3, 3)

	mg := &models.MultiGeometry{}
	mg.Add(inMulti)
	folder := models.NewFolder("F")
	folder.Add(models.NewPlacemark("multi", mg))

	doc.Add(standalone, models.NewPlacemark("pm", inPlacemark), folder)

	all := Collect[*models.Point](doc, ScopeAll)
	assert.Equal(t, []*models.Point{standalone, inPlacemark, inMulti}, all)

	children := Collect[*models.Point](doc, ScopeChildren)
	assert.Equal(t, []*models.Point{standalone}, children)
}

func TestCollectNestedMultiGeometries(t *testing.T) {
	inner := &models.MultiGeometry{Attributes: models.NewAttributes("inner", "inner")}
	innerPath := &models.Path{Attributes: models.NewAttributes("", "inner path")}
	inner.Add(innerPath)

	outer := &models.MultiGeometry{Attributes: models.NewAttributes("outer", "outer")}
	outerPath := &models.Path{Attributes: models.NewAttributes("", "outer path")}
	outer.Add(outerPath)
	outer.Add(inner)

	standalone := &models.MultiGeometry{Attributes: models.NewAttributes("standalone", "standalone")}
	nested := &models.MultiGeometry{Attributes: models.NewAttributes("nested", "nested")}
	standalone.Add(nested)

	doc := models.NewDocument("doc")
	doc.Add(models.NewPlacemark("pm", outer), standalone)

	assert.Equal(t, []string{"outer path", "inner path"}, names(Collect[*models.Path](doc, ScopeAll)))
	assert.Equal(t,
		[]string{"standalone", "outer", "inner", "nested"},
		names(Collect[*models.MultiGeometry](doc, ScopeAll)))
	assert.Equal(t, []string{"standalone"}, names(Collect[*models.MultiGeometry](doc, ScopeChildren)))
}

func TestCollectDeduplicatesSharedGeometry(t *testing.T) {
	shared := mustPoint(t, "shared", 5, 5)
	mg := &models.MultiGeometry{}
	mg.Add(shared)

	doc := models.NewDocument("doc")
	doc.Add(shared, models.NewPlacemark("a", shared), models.NewPlacemark("b", mg))

	all := Collect[*models.Point](doc, ScopeAll)
	require.Len(t, all, 1)
	assert.Same(t, shared, all[0])
}

func TestCollectIsDeterministic(t *testing.T) {
	doc, _ := storeTree(t)
	first := Collect[*models.Point](doc, ScopeAll)
	second := Collect[*models.Point](doc, ScopeAll)
	assert.Equal(t, first, second)
	assert.Len(t, first, 3)
}

func TestCollectDeepNesting(t *testing.T) {
	doc := models.NewDocument("doc")
	var parent models.Container = doc
	for i := 0; i < 10000; i++ {
		f := models.NewFolder("level")
		switch p := parent.(type) {
		case *models.Document:
			p.Add(f)
		case *models.Folder:
			p.Add(f)
		}
		parent = f
	}
	parent.(*models.Folder).Add(models.NewPlacemark("deepest", nil))

	all := Collect[*models.Placemark](doc, ScopeAll)
	require.Len(t, all, 1)
	assert.Equal(t, "deepest", all[0].Name)
}

func TestCollectNilContainer(t *testing.T) {
	assert.Empty(t, Collect[*models.Placemark](nil, ScopeAll))
}
