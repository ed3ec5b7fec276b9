package kml

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1F47E/kmlorm/pkg/config"
	"github.com/1F47E/kmlorm/pkg/kmlerr"
	"github.com/1F47E/kmlorm/pkg/models"
	"github.com/1F47E/kmlorm/pkg/query"
)

func kmz(t *testing.T, entries map[string]string, order ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(entries[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestFromStringQueries(t *testing.T) {
	f, err := FromString(storesKML)
	require.NoError(t, err)
	assert.Equal(t, "Stores", f.Name())
	assert.Equal(t, "Store locations", f.Description())

	a, err := f.Folders().Get(query.Lookups{"name": "A"})
	require.NoError(t, err)

	placemarks := query.Placemarks(a)
	store3, err := placemarks.All().Get(query.Lookups{"name": "Store 3"})
	require.NoError(t, err)
	assert.Equal(t, "s3", store3.ID)

	near, err := f.Placemarks().All().Near(-76.6, 39.3, 70)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Store 1", "Store 2", "Store 3"}, placemarkNames(near))

	rich, err := f.Placemarks().All().Filter(query.Lookups{"extended_data__population__gt": 500000})
	require.NoError(t, err)
	assert.Equal(t, []string{"Store 1"}, placemarkNames(rich))
}

func TestElementCounts(t *testing.T) {
	f, err := FromString(storesKML)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{
		"placemarks":      3,
		"folders":         1,
		"points":          0,
		"paths":           0,
		"polygons":        0,
		"multigeometries": 0,
	}, f.ElementCounts())

	assert.Equal(t, map[string]int{
		"placemarks":      6,
		"folders":         2,
		"points":          5,
		"paths":           1,
		"polygons":        1,
		"multigeometries": 2,
	}, f.DeepElementCounts())
}

func TestAllElements(t *testing.T) {
	f, err := FromString(storesKML)
	require.NoError(t, err)

	elements := f.AllElements()
	ids := make([]string, len(elements))
	for i, e := range elements {
		ids[i] = e.Attrs().ID
	}
	assert.Equal(t, []string{"route", "lake", "campus", "a"}, ids)
	assert.Equal(t, models.KindFolder, elements[3].Kind())

	empty, err := FromString(`<kml xmlns="http://www.opengis.net/kml/2.2"><Document/></kml>`)
	require.NoError(t, err)
	assert.Empty(t, empty.AllElements())
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()
	kmlPath := filepath.Join(dir, "stores.kml")
	require.NoError(t, os.WriteFile(kmlPath, []byte(storesKML), 0o644))

	f, err := FromFile(kmlPath)
	require.NoError(t, err)
	assert.Equal(t, kmlPath, f.Source)
	assert.Equal(t, 6, f.Placemarks().All().Count())

	_, err = FromFile(filepath.Join(dir, "missing.kml"))
	var pe *kmlerr.ParseError
	require.ErrorAs(t, err, &pe)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestFromFileKMZ(t *testing.T) {
	other := `<kml xmlns="http://www.opengis.net/kml/2.2"><Document><name>Other</name></Document></kml>`
	data := kmz(t, map[string]string{
		"files/other.kml": other,
		"doc.kml":         storesKML,
	}, "files/other.kml", "doc.kml")

	path := filepath.Join(t.TempDir(), "stores.kmz")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	f, err := FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Stores", f.Name(), "doc.kml wins over earlier entries")
}

func TestKMZWithoutDocKML(t *testing.T) {
	first := `<kml xmlns="http://www.opengis.net/kml/2.2"><Document><name>First</name></Document></kml>`
	data := kmz(t, map[string]string{
		"images/icon.png": "png",
		"a.kml":           first,
		"b.kml":           storesKML,
	}, "images/icon.png", "a.kml", "b.kml")

	f, err := FromReader(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "First", f.Name())

	empty := kmz(t, map[string]string{"readme.txt": "x"}, "readme.txt")
	_, err = FromReader(bytes.NewReader(empty))
	var pe *kmlerr.ParseError
	assert.ErrorAs(t, err, &pe)

	_, err = FromString("PK not really a zip")
	assert.ErrorAs(t, err, &pe)
}

func TestFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/stores.kml":
			w.Header().Set("Content-Type", "application/vnd.google-earth.kml+xml")
			_, _ = w.Write([]byte(storesKML))
		case "/stores.kmz":
			_, _ = w.Write(kmz(t, map[string]string{"doc.kml": storesKML}, "doc.kml"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	for _, p := range []string{"/stores.kml", "/stores.kmz"} {
		f, err := FromURL(ctx, srv.URL+p, WithHTTPClient(srv.Client()))
		require.NoError(t, err, p)
		assert.Equal(t, srv.URL+p, f.Source)
		assert.Equal(t, 6, f.Placemarks().All().Count())
	}

	_, err := FromURL(ctx, srv.URL+"/missing.kml")
	var pe *kmlerr.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Error(), "404")

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = FromURL(cancelled, srv.URL+"/stores.kml")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoaderOptions(t *testing.T) {
	bad := config.Default()
	bad.NamespaceHandling = "sloppy"
	_, err := FromString(storesKML, WithConfig(bad))
	var ve *kmlerr.ValidationError
	assert.ErrorAs(t, err, &ve)

	strict := config.Default()
	strict.StrictCoordinateValidation = true
	f, err := FromString(storesKML, WithConfig(strict), WithLogger(nil))
	require.NoError(t, err)
	assert.True(t, f.Options().StrictCoordinateValidation)

	_, err = f.Placemarks().Near(500, 0, 1)
	var ic *kmlerr.InvalidCoordinates
	assert.ErrorAs(t, err, &ic, "file managers carry the loader options")
}

func TestFromStringBOM(t *testing.T) {
	f, err := FromString("\xef\xbb\xbf" + storesKML)
	require.NoError(t, err)
	assert.Equal(t, "Stores", f.Name())
}

func placemarkNames(qs interface {
	Values(fields ...string) ([]map[string]any, error)
}) []string {
	rows, _ := qs.Values("name")
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i], _ = r["name"].(string)
	}
	return out
}
