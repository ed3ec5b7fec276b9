// Package kml turns KML and KMZ documents into a models.Document tree and
// exposes query managers over it.
package kml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/1F47E/kmlorm/pkg/config"
	"github.com/1F47E/kmlorm/pkg/kmlerr"
	"github.com/1F47E/kmlorm/pkg/models"
)

const (
	NamespaceKML22      = "http://www.opengis.net/kml/2.2"
	namespaceGoogleKML  = "http://earth.google.com/kml/"
	NamespaceGoogleExt  = "http://www.google.com/kml/ext/2.2"
	NamespaceAtom       = "http://www.w3.org/2005/Atom"
	elementKML          = "kml"
	elementDocument     = "Document"
	elementFolder       = "Folder"
	elementPlacemark    = "Placemark"
	elementPoint        = "Point"
	elementLineString   = "LineString"
	elementPolygon      = "Polygon"
	elementMulti        = "MultiGeometry"
	elementCoordinates  = "coordinates"
	elementExtendedData = "ExtendedData"
)

// IsKMLNamespace reports whether space is one of the KML namespaces.
func IsKMLNamespace(space string) bool {
	return space == NamespaceKML22 || strings.HasPrefix(space, namespaceGoogleKML)
}

// node is a namespace-filtered XML element.
type node struct {
	local    string
	space    string
	attrs    map[string]string
	text     strings.Builder
	children []*node
}

func (n *node) attr(name string) string { return n.attrs[name] }

func (n *node) child(local string) *node {
	for _, c := range n.children {
		if c.local == local {
			return c
		}
	}
	return nil
}

func (n *node) all(local string) []*node {
	var out []*node
	for _, c := range n.children {
		if c.local == local {
			out = append(out, c)
		}
	}
	return out
}

func (n *node) value() string { return strings.TrimSpace(n.text.String()) }

func (n *node) childText(local string) string {
	if c := n.child(local); c != nil {
		return c.value()
	}
	return ""
}

// Parser builds element trees. A Parser is safe for concurrent use; it holds
// no per-document state.
type Parser struct {
	opts   config.Options
	logger *slog.Logger
}

// NewParser creates a parser. A nil logger uses slog.Default().
func NewParser(opts config.Options, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{opts: opts, logger: logger}
}

// Parse reads a KML document. Structural problems are returned as
// *kmlerr.ParseError; source is recorded on the error and may be empty.
func (p *Parser) Parse(r io.Reader, source string) (*models.Document, error) {
	root, err := p.decode(r)
	if err != nil {
		return nil, &kmlerr.ParseError{Message: "invalid KML", Source: source, Err: err}
	}

	doc, err := p.build(root)
	if err != nil {
		return nil, &kmlerr.ParseError{Message: "invalid KML", Source: source, Err: err}
	}

	p.logger.Debug("Parsed KML document",
		slog.String("source", source),
		slog.String("name", doc.Name),
		slog.Int("children", doc.Contents.Len()))
	return doc, nil
}

func (p *Parser) accept(space string) bool {
	switch p.opts.NamespaceHandling {
	case config.NamespaceIgnore:
		return true
	case config.NamespaceStrict:
		return IsKMLNamespace(space)
	default:
		return space == "" || IsKMLNamespace(space)
	}
}

func (p *Parser) decode(r io.Reader) (*node, error) {
	dec := xml.NewDecoder(r)
	if p.opts.NamespaceHandling != config.NamespaceStrict {
		// tolerate unescaped ampersands and HTML entities in descriptions
		dec.Strict = false
		dec.AutoClose = xml.HTMLAutoClose
		dec.Entity = xml.HTMLEntity
	}

	var (
		root  *node
		stack []*node
		skip  int
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if skip > 0 {
				skip++
				continue
			}
			if root == nil && p.opts.NamespaceHandling == config.NamespaceStrict &&
				(t.Name.Local != elementKML || !IsKMLNamespace(t.Name.Space)) {
				return nil, fmt.Errorf("root element must be <kml> in a KML namespace, got <%s> in %q", t.Name.Local, t.Name.Space)
			}
			if !p.accept(t.Name.Space) {
				skip = 1
				continue
			}

			n := &node{local: t.Name.Local, space: t.Name.Space, attrs: make(map[string]string, len(t.Attr))}
			for _, a := range t.Attr {
				n.attrs[a.Name.Local] = a.Value
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("multiple root elements")
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			}
			stack = append(stack, n)

		case xml.EndElement:
			if skip > 0 {
				skip--
				continue
			}
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}

		case xml.CharData:
			if skip == 0 && len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("document has no KML elements")
	}
	return root, nil
}

// adder is a container that accepts new children.
type adder interface {
	Add(elements ...models.Element) bool
}

func (p *Parser) build(root *node) (*models.Document, error) {
	doc := models.NewDocument("")
	body := root

	switch root.local {
	case elementKML:
		if d := root.child(elementDocument); d != nil {
			body = d
		}
	case elementDocument:
	default:
		// a bare feature or geometry
		body = &node{children: []*node{root}}
	}

	if body.local == elementDocument {
		doc.Attributes = p.attributes(body)
	}
	if err := p.fill(doc, body); err != nil {
		return nil, err
	}
	return doc, nil
}

func (p *Parser) attributes(n *node) models.Attributes {
	a := models.NewAttributes(n.attr("id"), n.childText("name"))
	a.Description = n.childText("description")
	if v := n.child("visibility"); v != nil {
		a.Visibility = parseBool(v.value())
	}
	return a
}

func (p *Parser) fill(c adder, n *node) error {
	for _, ch := range n.children {
		var (
			e   models.Element
			err error
		)
		switch ch.local {
		case elementDocument:
			err = p.fill(c, ch)
		case elementFolder:
			e, err = p.folder(ch)
		case elementPlacemark:
			e, err = p.placemark(ch)
		case elementPoint, elementLineString, elementPolygon, elementMulti:
			e, err = p.geometry(ch)
		}
		if err != nil {
			return err
		}
		if e != nil {
			c.Add(e)
		}
	}
	return nil
}

func (p *Parser) folder(n *node) (models.Element, error) {
	f := models.NewFolder("")
	f.Attributes = p.attributes(n)
	if err := p.fill(f, n); err != nil {
		return nil, err
	}
	return f, nil
}

func (p *Parser) placemark(n *node) (models.Element, error) {
	pm := &models.Placemark{
		Attributes:  p.attributes(n),
		Address:     n.childText("address"),
		PhoneNumber: n.childText("phoneNumber"),
		Snippet:     n.childText("Snippet"),
		StyleURL:    n.childText("styleUrl"),
	}
	if ed := n.child(elementExtendedData); ed != nil {
		pm.ExtendedData = extendedData(ed)
	}

	if gn := firstGeometry(n); gn != nil {
		g, err := p.geometryOf(gn)
		if err != nil {
			if err := p.invalid(n, err); err != nil {
				return nil, err
			}
			// skip the whole placemark
			return nil, nil
		}
		pm.Geometry = g
	}
	return pm, nil
}

// firstGeometry returns the first geometry child; a Placemark holds at
// most one.
func firstGeometry(n *node) *node {
	for _, ch := range n.children {
		switch ch.local {
		case elementPoint, elementLineString, elementPolygon, elementMulti:
			return ch
		}
	}
	return nil
}

// geometry parses a standalone geometry, applying the invalid coordinate
// policy.
func (p *Parser) geometry(n *node) (models.Element, error) {
	g, err := p.geometryOf(n)
	if err != nil {
		if err := p.invalid(n, err); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return g, nil
}

// invalid applies the coordinate validation policy: an error under strict
// validation, otherwise a warning and a skipped element.
func (p *Parser) invalid(n *node, err error) error {
	if p.opts.StrictCoordinateValidation {
		return fmt.Errorf("<%s id=%q>: %w", n.local, n.attr("id"), err)
	}
	p.logger.Warn("Skipping element with invalid coordinates",
		slog.String("element", n.local),
		slog.String("id", n.attr("id")),
		slog.String("name", n.childText("name")),
		slog.Any("error", err))
	return nil
}

func (p *Parser) geometryOf(n *node) (models.Geometry, error) {
	style := models.Style{
		Extrude:      parseBool(n.childText("extrude")),
		Tessellate:   parseBool(n.childText("tessellate")),
		AltitudeMode: n.childText("altitudeMode"),
	}

	switch n.local {
	case elementPoint:
		coords, err := p.coordinates(n)
		if err != nil {
			return nil, err
		}
		if len(coords) == 0 {
			return nil, &kmlerr.InvalidCoordinates{Message: "point has no coordinates", Field: elementCoordinates}
		}
		return &models.Point{Attributes: p.attributes(n), Style: style, Coordinates: coords[0]}, nil

	case elementLineString:
		coords, err := p.coordinates(n)
		if err != nil {
			return nil, err
		}
		return &models.Path{Attributes: p.attributes(n), Style: style, Coordinates: coords}, nil

	case elementPolygon:
		poly := &models.Polygon{Attributes: p.attributes(n), Style: style}
		if outer := n.child("outerBoundaryIs"); outer != nil {
			if ring := outer.child("LinearRing"); ring != nil {
				coords, err := p.coordinates(ring)
				if err != nil {
					return nil, err
				}
				poly.OuterBoundary = coords
			}
		}
		for _, inner := range n.all("innerBoundaryIs") {
			for _, ring := range inner.all("LinearRing") {
				coords, err := p.coordinates(ring)
				if err != nil {
					return nil, err
				}
				poly.InnerBoundaries = append(poly.InnerBoundaries, coords)
			}
		}
		return poly, nil

	case elementMulti:
		mg := &models.MultiGeometry{Attributes: p.attributes(n)}
		for _, ch := range n.children {
			switch ch.local {
			case elementPoint, elementLineString, elementPolygon, elementMulti:
				g, err := p.geometryOf(ch)
				if err != nil {
					if err := p.invalid(ch, err); err != nil {
						return nil, err
					}
					continue
				}
				mg.Add(g)
			}
		}
		return mg, nil
	}
	return nil, fmt.Errorf("unsupported geometry <%s>", n.local)
}

var commaSpace = regexp.MustCompile(`\s*,\s*`)

// coordinates parses the whitespace-separated "lon,lat[,alt]" tuples of
// n's coordinates child.
func (p *Parser) coordinates(n *node) ([]models.Coordinate, error) {
	text := commaSpace.ReplaceAllString(n.childText(elementCoordinates), ",")
	tuples := strings.Fields(text)
	out := make([]models.Coordinate, 0, len(tuples))
	for _, tuple := range tuples {
		parts := strings.Split(strings.Trim(tuple, ","), ",")
		values := make([]float64, 0, len(parts))
		for _, s := range parts {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, &kmlerr.InvalidCoordinates{
					Message:     "malformed coordinate tuple",
					Field:       elementCoordinates,
					Coordinates: tuple,
				}
			}
			values = append(values, v)
		}
		c, err := models.CoordinateFromSlice(values)
		if err != nil {
			return nil, err
		}
		out = append(out, c.Round(p.opts.CoordinatePrecision))
	}
	return out, nil
}

func extendedData(n *node) models.ExtendedData {
	var d models.ExtendedData
	for _, data := range n.all("Data") {
		name := data.attr("name")
		value := data.childText("value")
		if name != "" && value != "" {
			d.Set(name, value)
		}
	}
	for _, schema := range n.all("SchemaData") {
		for _, simple := range schema.all("SimpleData") {
			name := simple.attr("name")
			value := simple.value()
			if name != "" && value != "" {
				d.Set(name, value)
			}
		}
	}
	return d
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
