package kml

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/1F47E/kmlorm/pkg/config"
	"github.com/1F47E/kmlorm/pkg/kmlerr"
	"github.com/1F47E/kmlorm/pkg/models"
	"github.com/1F47E/kmlorm/pkg/query"
	"github.com/1F47E/kmlorm/pkg/spatial"
)

// MaxDocumentSize bounds how much input a loader reads.
const MaxDocumentSize = 256 << 20

var utf8BOM = []byte("\xef\xbb\xbf")

// File is a parsed document plus the options it was loaded with.
type File struct {
	Document *models.Document
	// Source is the path or URL the document came from, empty for strings.
	Source string

	opts     config.Options
	strategy spatial.Strategy
}

func (f *File) queryOptions() []query.Option {
	return []query.Option{query.WithOptions(f.opts), query.WithStrategy(f.strategy)}
}

// Name returns the document name.
func (f *File) Name() string { return f.Document.Name }

// Description returns the document description.
func (f *File) Description() string { return f.Document.Description }

// Options returns the options the file was parsed with.
func (f *File) Options() config.Options { return f.opts }

func (f *File) Placemarks() *query.Manager[*models.Placemark] {
	return query.Placemarks(f.Document, f.queryOptions()...)
}

func (f *File) Folders() *query.Manager[*models.Folder] {
	return query.Folders(f.Document, f.queryOptions()...)
}

func (f *File) Points() *query.Manager[*models.Point] {
	return query.Points(f.Document, f.queryOptions()...)
}

func (f *File) Paths() *query.Manager[*models.Path] {
	return query.Paths(f.Document, f.queryOptions()...)
}

func (f *File) Polygons() *query.Manager[*models.Polygon] {
	return query.Polygons(f.Document, f.queryOptions()...)
}

func (f *File) MultiGeometries() *query.Manager[*models.MultiGeometry] {
	return query.MultiGeometries(f.Document, f.queryOptions()...)
}

// ElementCounts returns the number of direct children of each kind,
// keyed by lower-case plural names. Like the manager shortcuts it does not
// descend into folders; see DeepElementCounts.
func (f *File) ElementCounts() map[string]int {
	return map[string]int{
		"placemarks":      f.Placemarks().Count(),
		"folders":         f.Folders().Count(),
		"points":          f.Points().Count(),
		"paths":           f.Paths().Count(),
		"polygons":        f.Polygons().Count(),
		"multigeometries": f.MultiGeometries().Count(),
	}
}

// DeepElementCounts counts every element of each kind in the document,
// including nested folders and geometries embedded in placemarks.
func (f *File) DeepElementCounts() map[string]int {
	return map[string]int{
		"placemarks":      f.Placemarks().All().Count(),
		"folders":         f.Folders().All().Count(),
		"points":          f.Points().All().Count(),
		"paths":           f.Paths().All().Count(),
		"polygons":        f.Polygons().All().Count(),
		"multigeometries": f.MultiGeometries().All().Count(),
	}
}

// AllElements returns the document's direct children of every kind,
// grouped by kind in document order.
func (f *File) AllElements() []models.Element {
	return f.Document.Children().Elements()
}

// Option configures a loader.
type Option func(*loader)

type loader struct {
	opts     config.Options
	logger   *slog.Logger
	client   *http.Client
	strategy spatial.Strategy
}

// WithConfig sets parser and query options.
func WithConfig(opts config.Options) Option {
	return func(l *loader) { l.opts = opts }
}

// WithLogger sets the logger for parse warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(l *loader) { l.logger = logger }
}

// WithHTTPClient sets the client FromURL uses.
func WithHTTPClient(c *http.Client) Option {
	return func(l *loader) { l.client = c }
}

// WithStrategy sets the distance strategy used by the file's managers.
func WithStrategy(s spatial.Strategy) Option {
	return func(l *loader) { l.strategy = s }
}

func newLoader(opts []Option) (*loader, error) {
	l := &loader{
		opts:     config.Default(),
		logger:   slog.Default(),
		client:   &http.Client{Timeout: 30 * time.Second},
		strategy: spatial.Haversine{},
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	if err := l.opts.Validate(); err != nil {
		return nil, &kmlerr.ValidationError{Message: err.Error(), Field: "options", Value: l.opts}
	}
	return l, nil
}

func (l *loader) load(data []byte, source string) (*File, error) {
	if bytes.HasPrefix(data, []byte("PK")) {
		kml, err := extractKMZ(data)
		if err != nil {
			return nil, &kmlerr.ParseError{Message: "invalid KMZ archive", Source: source, Err: err}
		}
		l.logger.Debug("Extracted KML from KMZ archive", slog.String("source", source), slog.Int("bytes", len(kml)))
		data = kml
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	doc, err := NewParser(l.opts, l.logger).Parse(bytes.NewReader(data), source)
	if err != nil {
		return nil, err
	}
	return &File{Document: doc, Source: source, opts: l.opts, strategy: l.strategy}, nil
}

// FromString parses KML text, or KMZ bytes held in a string.
func FromString(content string, opts ...Option) (*File, error) {
	l, err := newLoader(opts)
	if err != nil {
		return nil, err
	}
	return l.load([]byte(content), "")
}

// FromReader parses a KML or KMZ stream.
func FromReader(r io.Reader, opts ...Option) (*File, error) {
	l, err := newLoader(opts)
	if err != nil {
		return nil, err
	}
	data, err := readLimited(r)
	if err != nil {
		return nil, &kmlerr.ParseError{Message: "failed to read input", Err: err}
	}
	return l.load(data, "")
}

// FromFile parses a .kml or .kmz file.
func FromFile(filePath string, opts ...Option) (*File, error) {
	l, err := newLoader(opts)
	if err != nil {
		return nil, err
	}
	fh, err := os.Open(filePath)
	if err != nil {
		return nil, &kmlerr.ParseError{Message: "failed to open file", Source: filePath, Err: err}
	}
	defer fh.Close()

	data, err := readLimited(fh)
	if err != nil {
		return nil, &kmlerr.ParseError{Message: "failed to read file", Source: filePath, Err: err}
	}
	return l.load(data, filePath)
}

// FromURL downloads and parses a KML or KMZ document.
func FromURL(ctx context.Context, url string, opts ...Option) (*File, error) {
	l, err := newLoader(opts)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &kmlerr.ParseError{Message: "invalid URL", Source: url, Err: err}
	}
	req.Header.Set("Accept", "application/vnd.google-earth.kml+xml, application/vnd.google-earth.kmz, */*")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, &kmlerr.ParseError{Message: "request failed", Source: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &kmlerr.ParseError{Message: fmt.Sprintf("unexpected status %s", resp.Status), Source: url}
	}

	data, err := readLimited(resp.Body)
	if err != nil {
		return nil, &kmlerr.ParseError{Message: "failed to read response", Source: url, Err: err}
	}
	l.logger.Debug("Downloaded document", slog.String("url", url), slog.Int("bytes", len(data)))
	return l.load(data, url)
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxDocumentSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxDocumentSize {
		return nil, fmt.Errorf("document exceeds %d bytes", MaxDocumentSize)
	}
	return data, nil
}

// extractKMZ returns doc.kml from the archive, or the first .kml entry.
func extractKMZ(data []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	var chosen *zip.File
	for _, f := range zr.File {
		if !strings.EqualFold(path.Ext(f.Name), ".kml") {
			continue
		}
		if path.Base(f.Name) == "doc.kml" {
			chosen = f
			break
		}
		if chosen == nil {
			chosen = f
		}
	}
	if chosen == nil {
		return nil, fmt.Errorf("no .kml file in archive")
	}

	rc, err := chosen.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return readLimited(rc)
}
